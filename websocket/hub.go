package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"travelmate/backend/logger"
	"travelmate/backend/models"
)

// relayed maps each inbound room event to the event rebroadcast to the whole
// room, sender included.
var relayed = map[string]string{
	models.EventSendMessage:  models.EventNewMessage,
	models.EventCreatePoll:   models.EventNewPoll,
	models.EventVotePoll:     models.EventPollVoted,
	models.EventShareTip:     models.EventNewTip,
	models.EventTyping:       models.EventUserTyping,
	models.EventMemberJoined: models.EventRoomMemberJoined,
	models.EventMemberLeft:   models.EventRoomMemberLeft,
}

var errHubClosed = errors.New("hub is shut down")

type membership struct {
	client *Client
	room   string
}

type outbound struct {
	room   string
	frame  []byte
	except *Client
}

type roomSizeQuery struct {
	room  string
	reply chan int
}

// Hub 維護所有活躍的 WebSocket 客戶端與其加入的聊天室，並處理訊息的廣播。
// 所有映射表只由 Run 的 goroutine 存取。
type Hub struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	broadcast  chan outbound
	roomSize   chan roomSizeQuery

	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once

	log *logger.Logger
	now func() time.Time
}

// NewHub 創建並返回一個新的 Hub 實例，呼叫端需以 go hub.Run() 啟動
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		broadcast:  make(chan outbound),
		roomSize:   make(chan roomSizeQuery),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		now:        time.Now,
	}
}

// Run 啟動 Hub 的運行迴圈，直到 Shutdown 被呼叫
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.WithField("socket_id", client.ID).Debug("Client registered")

		case client := <-h.unregister:
			h.drop(client)

		case m := <-h.join:
			if !h.clients[m.client] {
				continue
			}
			if _, ok := h.rooms[m.room]; !ok {
				h.rooms[m.room] = make(map[*Client]bool)
			}
			h.rooms[m.room][m.client] = true
			m.client.rooms[m.room] = true
			h.log.LogRoomEvent(m.room, models.EventJoinRoom, map[string]interface{}{
				"socket_id": m.client.ID,
				"members":   len(h.rooms[m.room]),
			})

		case m := <-h.leave:
			h.removeFromRoom(m.client, m.room)
			h.log.LogRoomEvent(m.room, models.EventLeaveRoom, map[string]interface{}{"socket_id": m.client.ID})

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.room] {
				if client == msg.except {
					continue
				}
				select {
				case client.send <- msg.frame:
				default:
					h.log.WithField("socket_id", client.ID).Warnf("Client send queue is full (%d frames), dropping connection", cap(client.send))
					h.drop(client)
				}
			}

		case q := <-h.roomSize:
			q.reply <- len(h.rooms[q.room])

		case <-h.quit:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Shutdown stops Run and closes every client's send queue, which makes the
// write pumps send a close frame.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.quitOnce.Do(func() { close(h.quit) })
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RoomSize returns the number of connections currently joined to room.
func (h *Hub) RoomSize(room string) int {
	q := roomSizeQuery{room: room, reply: make(chan int, 1)}
	select {
	case h.roomSize <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// drop removes client from every room and closes its send queue.
func (h *Hub) drop(client *Client) {
	if !h.clients[client] {
		return
	}
	for room := range client.rooms {
		h.removeFromRoom(client, room)
	}
	delete(h.clients, client)
	close(client.send)
	h.log.WithField("socket_id", client.ID).Debug("Client unregistered")
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	delete(client.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room) // 如果房間沒有客戶端了，就刪除房間
	}
}

// submit hands a request to the Run loop unless the hub has stopped.
func submit[T any](h *Hub, ch chan T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-h.done:
		return errHubClosed
	}
}

// dispatch handles one inbound envelope from client.
func (h *Hub) dispatch(client *Client, env models.Envelope) error {
	switch env.Event {
	case models.EventJoinRoom, models.EventLeaveRoom:
		room, err := roomFromData(env.Data)
		if err != nil {
			return err
		}
		m := membership{client: client, room: room}
		event := models.EventUserJoined
		if env.Event == models.EventJoinRoom {
			err = submit(h, h.join, m)
		} else {
			event = models.EventUserLeft
			err = submit(h, h.leave, m)
		}
		if err != nil {
			return err
		}
		frame, err := encode(event, models.PresencePayload{SocketID: client.ID, Timestamp: h.now()})
		if err != nil {
			return err
		}
		return submit(h, h.broadcast, outbound{room: room, frame: frame, except: client})

	default:
		out, ok := relayed[env.Event]
		if !ok {
			return errUnknownEvent
		}
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload == nil {
			return errBadPayload
		}
		var room string
		if err := json.Unmarshal(payload["roomId"], &room); err != nil || room == "" {
			return errMissingRoom
		}
		ts, err := json.Marshal(h.now())
		if err != nil {
			return err
		}
		payload["timestamp"] = ts

		frame, err := encode(out, payload)
		if err != nil {
			return err
		}
		return submit(h, h.broadcast, outbound{room: room, frame: frame})
	}
}

var (
	errUnknownEvent = errors.New("unknown event")
	errBadPayload   = errors.New("event data must be a JSON object")
	errMissingRoom  = errors.New("roomId is required")
)

// roomFromData accepts either a bare room id string or {"roomId": "..."}.
func roomFromData(data json.RawMessage) (string, error) {
	var room string
	if err := json.Unmarshal(data, &room); err == nil && room != "" {
		return room, nil
	}
	var obj struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.RoomID != "" {
		return obj.RoomID, nil
	}
	return "", errMissingRoom
}

func encode(event string, data interface{}) ([]byte, error) {
	env, err := models.NewEnvelope(event, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
