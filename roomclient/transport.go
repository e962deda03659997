package roomclient

import (
	"context"
	"sync"
	"time"

	"travelmate/backend/models"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Transport carries realtime events for a session.
type Transport interface {
	Send(event string, data interface{}) error
	// Events is closed when the connection ends.
	Events() <-chan models.Envelope
	Close() error
}

// WSTransport is a Transport over a websocket connection to /ws.
type WSTransport struct {
	conn   *websocket.Conn
	events chan models.Envelope
	mu     sync.Mutex // 寫入需序列化
}

// Dial connects to the realtime endpoint, e.g. ws://host:8080/ws.
func Dial(ctx context.Context, url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	t := &WSTransport{conn: conn, events: make(chan models.Envelope, 64)}
	go t.readLoop()
	return t, nil
}

func (t *WSTransport) readLoop() {
	defer close(t.events)
	for {
		var env models.Envelope
		if err := t.conn.ReadJSON(&env); err != nil {
			return
		}
		t.events <- env
	}
}

func (t *WSTransport) Send(event string, data interface{}) error {
	env, err := models.NewEnvelope(event, data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteJSON(env)
}

func (t *WSTransport) Events() <-chan models.Envelope {
	return t.events
}

// Close sends a close frame and closes the connection.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.mu.Unlock()
	return t.conn.Close()
}
