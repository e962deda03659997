package models

import (
	"encoding/json"
	"time"
)

// 即時事件名稱 (client -> server)
const (
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventSendMessage  = "send-message"
	EventCreatePoll   = "create-poll"
	EventVotePoll     = "vote-poll"
	EventShareTip     = "share-tip"
	EventTyping       = "typing"
	EventMemberJoined = "member-joined"
	EventMemberLeft   = "member-left"
)

// 即時事件名稱 (server -> client)
const (
	EventUserJoined       = "user-joined"
	EventUserLeft         = "user-left"
	EventNewMessage       = "new-message"
	EventNewPoll          = "new-poll"
	EventPollVoted        = "poll-voted"
	EventNewTip           = "new-tip"
	EventUserTyping       = "user-typing"
	EventRoomMemberJoined = "room-member-joined"
	EventRoomMemberLeft   = "room-member-left"
)

// Envelope is one websocket frame: a named event with a JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope.
func NewEnvelope(event string, data interface{}) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}

type PresencePayload struct {
	SocketID  string    `json:"socketId"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagePayload carries a chat message. ClientID on this and the other room
// payloads identifies the sending session, so two tabs of one user can tell
// their own echoes apart.
type MessagePayload struct {
	RoomID    string       `json:"roomId,omitempty"`
	Message   MessageInput `json:"message"`
	UserEmail string       `json:"userEmail"`
	UserName  string       `json:"userName"`
	ClientID  string       `json:"clientId,omitempty"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
}

type PollPayload struct {
	RoomID    string       `json:"roomId,omitempty"`
	Poll      MessageInput `json:"poll"`
	UserEmail string       `json:"userEmail"`
	UserName  string       `json:"userName"`
	ClientID  string       `json:"clientId,omitempty"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
}

type VotePayload struct {
	RoomID      string     `json:"roomId,omitempty"`
	MessageID   string     `json:"messageId"`
	OptionIndex int        `json:"optionIndex"`
	UserEmail   string     `json:"userEmail"`
	ClientID    string     `json:"clientId,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

type TipPayload struct {
	RoomID    string     `json:"roomId,omitempty"`
	Tip       string     `json:"tip"`
	UserEmail string     `json:"userEmail"`
	UserName  string     `json:"userName"`
	ClientID  string     `json:"clientId,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type TypingPayload struct {
	RoomID    string     `json:"roomId,omitempty"`
	UserName  string     `json:"userName"`
	IsTyping  bool       `json:"isTyping"`
	ClientID  string     `json:"clientId,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type MemberJoinedPayload struct {
	RoomID    string     `json:"roomId,omitempty"`
	Member    Member     `json:"member"`
	ClientID  string     `json:"clientId,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type MemberLeftPayload struct {
	RoomID      string     `json:"roomId,omitempty"`
	MemberEmail string     `json:"memberEmail"`
	MemberName  string     `json:"memberName"`
	ClientID    string     `json:"clientId,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}
