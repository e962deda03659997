package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxMembers 聊天室預設人數上限
const DefaultMaxMembers = 50

// TravelDates 旅行日期區間
type TravelDates struct {
	StartDate *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// Member 聊天室成員
type Member struct {
	Email    string    `bson:"email" json:"email"`
	Name     string    `bson:"name" json:"name"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
}

// ChatRoom 代表一個主題聊天室，成員與訊息內嵌於文件中
type ChatRoom struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Destination string             `bson:"destination" json:"destination"`
	Continent   Continent          `bson:"continent,omitempty" json:"continent,omitempty"`
	TravelDates *TravelDates       `bson:"travelDates,omitempty" json:"travelDates,omitempty"`
	MaxMembers  int                `bson:"maxMembers" json:"maxMembers"`
	Creator     string             `bson:"creator" json:"creator"` // email, immutable
	CreatorName string             `bson:"creatorName" json:"creatorName"`
	Members     []Member           `bson:"members" json:"members"`
	Messages    []Message          `bson:"messages" json:"messages"`
	Tags        []string           `bson:"tags" json:"tags"`
	Category    RoomCategory       `bson:"category" json:"category"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	RoomImage   string             `bson:"roomImage" json:"roomImage"`
	Version     int64              `bson:"version" json:"version"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether email is on the roster.
func (r *ChatRoom) HasMember(email string) bool {
	for _, m := range r.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}

// FindMessage returns a pointer into Messages, or nil.
func (r *ChatRoom) FindMessage(id primitive.ObjectID) *Message {
	for i := range r.Messages {
		if r.Messages[i].ID == id {
			return &r.Messages[i]
		}
	}
	return nil
}

// Clone returns a deep copy so a transition can be applied without touching
// the original on failure.
func (r *ChatRoom) Clone() *ChatRoom {
	c := *r
	if r.TravelDates != nil {
		td := *r.TravelDates
		c.TravelDates = &td
	}
	c.Members = cloneSlice(r.Members)
	c.Tags = cloneSlice(r.Tags)
	c.Messages = cloneSlice(r.Messages)
	for i := range c.Messages {
		opts := cloneSlice(c.Messages[i].PollOptions)
		for j := range opts {
			opts[j].Votes = cloneSlice(opts[j].Votes)
		}
		c.Messages[i].PollOptions = opts
	}
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// CreateChatRoomRequest 定義創建聊天室的請求體
type CreateChatRoomRequest struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Destination string       `json:"destination" validate:"required"`
	Continent   Continent    `json:"continent,omitempty" validate:"omitempty,continent"`
	TravelDates *TravelDates `json:"travelDates,omitempty"`
	MaxMembers  int          `json:"maxMembers,omitempty" validate:"omitempty,min=1"`
	Creator     string       `json:"creator" validate:"required"`
	CreatorName string       `json:"creatorName" validate:"required"`
	Tags        []string     `json:"tags,omitempty"`
	Category    RoomCategory `json:"category,omitempty" validate:"omitempty,room_category"`
	RoomImage   string       `json:"roomImage,omitempty"`
}

// MessageInput is the message part of a room mutation.
type MessageInput struct {
	Content     string       `json:"content"`
	MessageType MessageKind  `json:"messageType,omitempty"`
	PollOptions []PollOption `json:"pollOptions,omitempty"`
}

// PollVote identifies the poll message and chosen option of a vote.
type PollVote struct {
	MessageID   string `json:"messageId"`
	OptionIndex *int   `json:"optionIndex"`
}

// RoomAction 聊天室操作類型
type RoomAction string

const (
	ActionJoin    RoomAction = "join"
	ActionLeave   RoomAction = "leave"
	ActionMessage RoomAction = "message"
	ActionVote    RoomAction = "vote"
	ActionTip     RoomAction = "tip"
)

// UpdateChatRoomRequest 定義更新聊天室的請求體 (PUT /chatrooms/{id})
type UpdateChatRoomRequest struct {
	Action    RoomAction    `json:"action"`
	UserEmail string        `json:"userEmail"`
	UserName  string        `json:"userName"`
	Message   *MessageInput `json:"message,omitempty"`
	PollData  *PollVote     `json:"pollData,omitempty"`
}

// RoomFilter holds the listing filters of GET /chatrooms. Empty fields are
// not applied.
type RoomFilter struct {
	Destination string
	Continent   Continent
	Category    RoomCategory
	Query       string
}
