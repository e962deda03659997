package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"travelmate/backend/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// 將訊息寫入到遠端對等點的最長時間
	writeWait = 10 * time.Second

	// 允許從遠端對等點讀取下一個 pong 訊息的最長時間。
	pongWait = 60 * time.Second

	// 發送 ping 訊息給遠端對等點的週期。
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	sendQueueSize = 256
)

// upgrader 用於將 HTTP 連線升級為 WebSocket 連線
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 跨來源限制由 HTTP 層的 CORS 處理
		return true
	},
}

// Client 代表一個 WebSocket 連線，可同時加入多個聊天室
type Client struct {
	ID    string // 連線識別碼，廣播時作為 socketId
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool // 只由 Hub 的 goroutine 存取
}

// 讀取用戶傳來的事件，並丟給 Hub
func (c *Client) readPump() {
	defer func() {
		_ = submit(c.hub, c.hub.unregister, c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	log := c.hub.log.WithField("socket_id", c.ID)
	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("Error reading message")
			} else {
				log.Debug("Client disconnected")
			}
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(p, &env); err != nil {
			log.WithError(err).Warn("Error unmarshalling event")
			continue
		}
		if err := c.hub.dispatch(c, env); err != nil {
			if err == errHubClosed {
				return
			}
			log.WithError(err).WithField("event", env.Event).Warn("Dropping event")
		}
	}
}

// 接收 Hub 廣播來的事件，丟給前端
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 如果這個 channel 被關閉了（ok == false），就送出 CloseMessage
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.hub.log.WithField("socket_id", c.ID).WithError(err).Debug("Error writing message")
				return
			}

		// 定時 ping 以保持連線活躍並檢測客戶端是否仍在線。
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeHTTP 處理 WebSocket 連線請求 (GET /ws)
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithContext(r.Context()).WithError(err).Warn("Failed to upgrade to WebSocket")
		return
	}

	client := &Client{
		ID:    uuid.NewString(),
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendQueueSize),
		rooms: make(map[string]bool),
	}
	if err := submit(h, h.register, client); err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
