package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SystemSender 系統訊息的發送者
	SystemSender = "system"
	// SystemSenderName 系統訊息顯示的名稱
	SystemSenderName = "Travel Companion"
)

// PollOption 投票選項，Votes 為投票者的 email
type PollOption struct {
	Option string   `bson:"option" json:"option"`
	Votes  []string `bson:"votes" json:"votes"`
}

// Message 代表聊天室內嵌的一則訊息
type Message struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Sender      string             `bson:"sender" json:"sender"`
	SenderName  string             `bson:"senderName" json:"senderName"`
	Content     string             `bson:"content" json:"content"`
	MessageType MessageKind        `bson:"messageType" json:"messageType"`
	PollOptions []PollOption       `bson:"pollOptions,omitempty" json:"pollOptions,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// VoterOption returns the index of the option holding voter, or -1.
func (m *Message) VoterOption(voter string) int {
	for i, opt := range m.PollOptions {
		for _, v := range opt.Votes {
			if v == voter {
				return i
			}
		}
	}
	return -1
}
