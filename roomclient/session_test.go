package roomclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"travelmate/backend/chatroom"
	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/utils"
	realtime "travelmate/backend/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeAPI serves one room and applies mutations with the real transitions.
type fakeAPI struct {
	mu    sync.Mutex
	room  *models.ChatRoom
	gets  atomic.Int32
	delay time.Duration
}

func newFakeAPI() *fakeAPI {
	room := chatroom.New(models.CreateChatRoomRequest{
		Name: "Tokyo Squad", Description: "x", Destination: "Tokyo",
		Creator: "a@x.com", CreatorName: "A",
	})
	room.ID = primitive.NewObjectID()
	return &fakeAPI{room: room}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/chatrooms/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		f.gets.Add(1)
		time.Sleep(f.delay)
		f.mu.Lock()
		defer f.mu.Unlock()
		utils.WriteJSON(w, http.StatusOK, f.room)
	case http.MethodPut:
		var req models.UpdateChatRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload", "")
			return
		}
		if err := f.apply(req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		utils.WriteJSON(w, http.StatusOK, f.room)
	}
}

func (f *fakeAPI) apply(req models.UpdateChatRoomRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.room.Clone()
	if err := chatroom.Apply(next, req); err != nil {
		return err
	}
	next.Version++
	f.room = next
	return nil
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []models.Envelope
	events chan models.Envelope
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan models.Envelope, 16)}
}

func (t *fakeTransport) Send(event string, data interface{}) error {
	env, err := models.NewEnvelope(event, data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, env)
	return nil
}

func (t *fakeTransport) Events() <-chan models.Envelope { return t.events }

func (t *fakeTransport) Close() error { return nil }

func (t *fakeTransport) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.sent))
	for i, env := range t.sent {
		out[i] = env.Event
	}
	return out
}

func openSession(t *testing.T, api *fakeAPI, me Identity) (*Session, *fakeTransport) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	tr := newFakeTransport()
	s, err := Open(context.Background(), New(srv.URL, srv.Client()), tr, api.room.ID.Hex(), me, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, tr
}

func event(t *testing.T, name string, data interface{}) models.Envelope {
	t.Helper()
	env, err := models.NewEnvelope(name, data)
	require.NoError(t, err)
	return env
}

var bob = Identity{Email: "b@x.com", Name: "B"}

func TestOpenSubscribesToRoom(t *testing.T) {
	api := newFakeAPI()
	s, tr := openSession(t, api, bob)

	assert.Equal(t, []string{models.EventJoinRoom}, tr.Sent())
	assert.Equal(t, "Tokyo Squad", s.Room().Name)
}

func TestMutationsAdoptServerStateThenEmit(t *testing.T) {
	api := newFakeAPI()
	s, tr := openSession(t, api, bob)
	ctx := context.Background()

	require.NoError(t, s.Join(ctx))
	require.NoError(t, s.SendMessage(ctx, "Hi"))
	require.NoError(t, s.ShareTip(ctx, "Get a Suica card"))

	room := s.Room()
	assert.True(t, room.HasMember("b@x.com"))
	last := room.Messages[len(room.Messages)-1]
	assert.Equal(t, models.KindTip, last.MessageType)
	assert.False(t, last.ID.IsZero())
	assert.Equal(t, int64(3), room.Version)

	assert.Equal(t, []string{
		models.EventJoinRoom, models.EventMemberJoined, models.EventSendMessage, models.EventShareTip,
	}, tr.Sent())
}

func TestFailedMutationEmitsNothing(t *testing.T) {
	api := newFakeAPI()
	s, tr := openSession(t, api, Identity{Email: "a@x.com", Name: "A"})

	err := s.Join(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{models.EventJoinRoom}, tr.Sent())
	assert.Equal(t, int64(0), s.Room().Version)
}

func TestOwnEchoesAreIgnored(t *testing.T) {
	api := newFakeAPI()
	s, _ := openSession(t, api, bob)
	self := s.ClientID()
	require.NotEmpty(t, self)

	s.Handle(event(t, models.EventNewMessage, models.MessagePayload{UserEmail: bob.Email, ClientID: self}))
	s.Handle(event(t, models.EventPollVoted, models.VotePayload{UserEmail: bob.Email, MessageID: "x", ClientID: self}))
	s.Handle(event(t, models.EventRoomMemberLeft, models.MemberLeftPayload{MemberEmail: bob.Email, MemberName: bob.Name, ClientID: self}))
	s.fetches.Wait()

	assert.Equal(t, int32(1), api.gets.Load())
}

func TestEmittedEventsCarryClientID(t *testing.T) {
	api := newFakeAPI()
	s, tr := openSession(t, api, bob)
	ctx := context.Background()
	require.NoError(t, s.Join(ctx))
	require.NoError(t, s.SendMessage(ctx, "Hi"))

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.sent, 3)
	for _, env := range tr.sent[1:] {
		var p struct {
			ClientID string `json:"clientId"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.Equal(t, s.ClientID(), p.ClientID, env.Event)
	}
}

func TestSameUserInAnotherSessionIsNotAnEcho(t *testing.T) {
	api := newFakeAPI()
	tab1, _ := openSession(t, api, bob)
	tab2, _ := openSession(t, api, bob)
	require.NotEqual(t, tab1.ClientID(), tab2.ClientID())
	gets := api.gets.Load()

	require.NoError(t, tab2.Join(context.Background()))
	require.NoError(t, tab2.SendMessage(context.Background(), "From my phone"))

	tab1.Handle(event(t, models.EventNewMessage, models.MessagePayload{
		RoomID:    api.room.ID.Hex(),
		Message:   models.MessageInput{Content: "From my phone"},
		UserEmail: bob.Email,
		ClientID:  tab2.ClientID(),
	}))
	tab1.fetches.Wait()

	assert.Equal(t, gets+1, api.gets.Load())
	room := tab1.Room()
	assert.True(t, room.HasMember(bob.Email))
	assert.Equal(t, "From my phone", room.Messages[len(room.Messages)-1].Content)
}

func TestOthersMessagesTriggerRefetch(t *testing.T) {
	api := newFakeAPI()
	s, _ := openSession(t, api, bob)

	require.NoError(t, api.apply(models.UpdateChatRoomRequest{
		Action: models.ActionMessage, UserEmail: "a@x.com", UserName: "A",
		Message: &models.MessageInput{Content: "Ramen tonight?"},
	}))
	s.Handle(event(t, models.EventNewMessage, models.MessagePayload{
		RoomID:    api.room.ID.Hex(),
		Message:   models.MessageInput{Content: "Ramen tonight?"},
		UserEmail: "a@x.com",
	}))
	s.fetches.Wait()

	room := s.Room()
	assert.Equal(t, "Ramen tonight?", room.Messages[len(room.Messages)-1].Content)
}

func TestRefetchesAreCoalesced(t *testing.T) {
	api := newFakeAPI()
	api.delay = 50 * time.Millisecond
	s, _ := openSession(t, api, bob)

	for i := 0; i < 10; i++ {
		s.Handle(event(t, models.EventNewTip, models.TipPayload{UserEmail: "a@x.com", Tip: "t"}))
	}
	s.fetches.Wait()

	assert.LessOrEqual(t, api.gets.Load(), int32(3))
	assert.GreaterOrEqual(t, api.gets.Load(), int32(2))
}

func TestPollVotedMergesOntoPersistedPoll(t *testing.T) {
	api := newFakeAPI()
	s, _ := openSession(t, api, bob)
	ctx := context.Background()
	require.NoError(t, s.Join(ctx))
	require.NoError(t, s.CreatePoll(ctx, "Where to eat?", []string{"Sushi", "Ramen"}))

	room := s.Room()
	poll := room.Messages[len(room.Messages)-1]
	require.Equal(t, models.KindPoll, poll.MessageType)
	gets := api.gets.Load()

	vote := models.VotePayload{MessageID: poll.ID.Hex(), OptionIndex: 1, UserEmail: "a@x.com"}
	s.Handle(event(t, models.EventPollVoted, vote))
	s.Handle(event(t, models.EventPollVoted, vote))
	s.fetches.Wait()

	merged := s.Room().FindMessage(poll.ID)
	require.NotNil(t, merged)
	assert.Equal(t, 1, merged.VoterOption("a@x.com"))
	assert.Equal(t, []string{"a@x.com"}, merged.PollOptions[1].Votes)
	assert.Equal(t, gets, api.gets.Load())

	s.Handle(event(t, models.EventPollVoted, models.VotePayload{
		MessageID: primitive.NewObjectID().Hex(), OptionIndex: 0, UserEmail: "a@x.com",
	}))
	s.fetches.Wait()
	assert.Equal(t, gets+1, api.gets.Load())
}

func TestMemberEventsMergeByEmail(t *testing.T) {
	api := newFakeAPI()
	s, _ := openSession(t, api, bob)
	carol := models.Member{Email: "c@x.com", Name: "C", JoinedAt: time.Now()}

	s.Handle(event(t, models.EventRoomMemberJoined, models.MemberJoinedPayload{Member: carol}))
	s.Handle(event(t, models.EventRoomMemberJoined, models.MemberJoinedPayload{Member: carol}))

	s.mu.Lock()
	count := 0
	for _, m := range s.room.Members {
		if m.Email == carol.Email {
			count++
		}
	}
	s.mu.Unlock()
	assert.LessOrEqual(t, count, 1)

	s.Handle(event(t, models.EventRoomMemberLeft, models.MemberLeftPayload{MemberEmail: "a@x.com", MemberName: "A"}))
	s.fetches.Wait()
	assert.GreaterOrEqual(t, api.gets.Load(), int32(2))
}

func TestTypingEventsUpdateTypingSet(t *testing.T) {
	api := newFakeAPI()
	s, _ := openSession(t, api, bob)

	s.Handle(event(t, models.EventUserTyping, models.TypingPayload{UserName: "A", IsTyping: true}))
	s.Handle(event(t, models.EventUserTyping, models.TypingPayload{UserName: "B", IsTyping: true}))
	assert.Equal(t, []string{"A"}, s.Typing())

	s.Handle(event(t, models.EventUserTyping, models.TypingPayload{UserName: "A", IsTyping: false}))
	assert.Empty(t, s.Typing())
}

func TestTypistDebounce(t *testing.T) {
	tr := newFakeTransport()
	typist := NewTypist(tr, "r", "B", "tab-1")
	typist.idle = 40 * time.Millisecond
	defer typist.Stop()

	require.NoError(t, typist.Keystroke())
	require.NoError(t, typist.Keystroke())
	assert.Equal(t, []string{models.EventTyping, models.EventTyping}, tr.Sent())

	require.Eventually(t, func() bool { return len(tr.Sent()) == 3 }, time.Second, 5*time.Millisecond)
	tr.mu.Lock()
	var last models.TypingPayload
	require.NoError(t, json.Unmarshal(tr.sent[2].Data, &last))
	tr.mu.Unlock()
	assert.False(t, last.IsTyping)
	assert.Equal(t, "r", last.RoomID)
	assert.Equal(t, "tab-1", last.ClientID)
}

func TestTypistIdleNeverPrecedesTyping(t *testing.T) {
	tr := newFakeTransport()
	typist := NewTypist(tr, "r", "B", "tab-1")
	typist.idle = time.Nanosecond
	defer typist.Stop()

	for i := 0; i < 200; i++ {
		require.NoError(t, typist.Keystroke())
	}
	time.Sleep(20 * time.Millisecond)
	typist.Stop()

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.NotEmpty(t, tr.sent)
	var first models.TypingPayload
	require.NoError(t, json.Unmarshal(tr.sent[0].Data, &first))
	assert.True(t, first.IsTyping)

	typing := false
	for i, env := range tr.sent {
		var p models.TypingPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		if !p.IsTyping {
			assert.True(t, typing, "idle sent without a preceding keystroke at %d", i)
		}
		typing = p.IsTyping
	}
}

func TestTypistStopSuppressesIdle(t *testing.T) {
	tr := newFakeTransport()
	typist := NewTypist(tr, "r", "B", "tab-1")
	typist.idle = 20 * time.Millisecond

	require.NoError(t, typist.Keystroke())
	typist.Stop()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{models.EventTyping}, tr.Sent())
}

func TestFetchRoomTimeout(t *testing.T) {
	api := newFakeAPI()
	api.delay = 300 * time.Millisecond
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := New(srv.URL, nil)
	c.fetchTimeout = 20 * time.Millisecond
	_, err := c.FetchRoom(context.Background(), api.room.ID.Hex())
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestWSTransportThroughHub(t *testing.T) {
	hub := realtime.NewHub(logger.Nop())
	go hub.Run()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	}()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx := context.Background()
	a, err := Dial(ctx, url)
	require.NoError(t, err)
	defer a.Close()
	b, err := Dial(ctx, url)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Send(models.EventJoinRoom, "r"))
	require.Eventually(t, func() bool { return hub.RoomSize("r") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, b.Send(models.EventJoinRoom, "r"))
	require.Eventually(t, func() bool { return hub.RoomSize("r") == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Send(models.EventShareTip, models.TipPayload{RoomID: "r", Tip: "Bring cash", UserEmail: "a@x.com"}))

	select {
	case env := <-b.Events():
		assert.Equal(t, models.EventNewTip, env.Event)
		var p models.TipPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.Equal(t, "Bring cash", p.Tip)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
