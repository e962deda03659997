package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travelmate/backend/logger"
	"travelmate/backend/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(logger.Nop())
	go hub.Run()
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	env, err := models.NewEnvelope(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

func read(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env models.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func joinRoom(t *testing.T, hub *Hub, conn *websocket.Conn, room string, want int) {
	t.Helper()
	send(t, conn, models.EventJoinRoom, room)
	require.Eventually(t, func() bool { return hub.RoomSize(room) == want }, 2*time.Second, 10*time.Millisecond)
}

func TestJoinNotifiesOthersOnly(t *testing.T) {
	hub, url := startHub(t)
	a, b := dial(t, url), dial(t, url)

	joinRoom(t, hub, a, "room-1", 1)
	joinRoom(t, hub, b, "room-1", 2)

	env := read(t, a)
	assert.Equal(t, models.EventUserJoined, env.Event)
	var presence models.PresencePayload
	require.NoError(t, json.Unmarshal(env.Data, &presence))
	assert.Len(t, presence.SocketID, 36)
	assert.False(t, presence.Timestamp.IsZero())

	assertSilent(t, b)
}

func TestRelayReachesWholeRoomIncludingSender(t *testing.T) {
	hub, url := startHub(t)
	a, b, other := dial(t, url), dial(t, url), dial(t, url)

	joinRoom(t, hub, a, "tokyo", 1)
	joinRoom(t, hub, b, "tokyo", 2)
	joinRoom(t, hub, other, "oslo", 1)
	_ = read(t, a) // b's user-joined

	send(t, a, models.EventSendMessage, models.MessagePayload{
		RoomID:    "tokyo",
		Message:   models.MessageInput{Content: "Hi"},
		UserEmail: "a@x.com",
		UserName:  "A",
	})

	for _, conn := range []*websocket.Conn{a, b} {
		env := read(t, conn)
		assert.Equal(t, models.EventNewMessage, env.Event)
		var p models.MessagePayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.Equal(t, "Hi", p.Message.Content)
		assert.Equal(t, "a@x.com", p.UserEmail)
		require.NotNil(t, p.Timestamp)
	}
	assertSilent(t, other)
}

func TestTypingAndVoteAreRelayed(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	joinRoom(t, hub, a, "r", 1)

	send(t, a, models.EventTyping, models.TypingPayload{RoomID: "r", UserName: "A", IsTyping: true})
	env := read(t, a)
	assert.Equal(t, models.EventUserTyping, env.Event)

	send(t, a, models.EventVotePoll, models.VotePayload{RoomID: "r", MessageID: "m1", OptionIndex: 2, UserEmail: "a@x.com", ClientID: "tab-1"})
	env = read(t, a)
	assert.Equal(t, models.EventPollVoted, env.Event)
	var vote models.VotePayload
	require.NoError(t, json.Unmarshal(env.Data, &vote))
	assert.Equal(t, 2, vote.OptionIndex)
	assert.Equal(t, "tab-1", vote.ClientID)
}

func TestInvalidEventsAreDropped(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	joinRoom(t, hub, a, "r", 1)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, a, "dance", map[string]string{"roomId": "r"})
	send(t, a, models.EventShareTip, map[string]string{"tip": "no room"})

	assertSilent(t, a)
	assert.Equal(t, 1, hub.RoomSize("r"))
}

func TestLeaveAndDisconnectUpdateRegistry(t *testing.T) {
	hub, url := startHub(t)
	a, b := dial(t, url), dial(t, url)
	joinRoom(t, hub, a, "r", 1)
	joinRoom(t, hub, b, "r", 2)
	_ = read(t, a)

	send(t, b, models.EventLeaveRoom, "r")
	env := read(t, a)
	assert.Equal(t, models.EventUserLeft, env.Event)
	require.Eventually(t, func() bool { return hub.RoomSize("r") == 1 }, 2*time.Second, 10*time.Millisecond)

	a.Close()
	require.Eventually(t, func() bool { return hub.RoomSize("r") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownClosesConnections(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	joinRoom(t, hub, a, "r", 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, hub.Shutdown(ctx))

	a.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := a.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived), "got %v", err)
	assert.Equal(t, 0, hub.RoomSize("r"))
}

func TestRoomFromData(t *testing.T) {
	room, err := roomFromData(json.RawMessage(`"abc"`))
	require.NoError(t, err)
	assert.Equal(t, "abc", room)

	room, err = roomFromData(json.RawMessage(`{"roomId":"def"}`))
	require.NoError(t, err)
	assert.Equal(t, "def", room)

	_, err = roomFromData(json.RawMessage(`{}`))
	assert.ErrorIs(t, err, errMissingRoom)
}
