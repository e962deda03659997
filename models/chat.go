package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat 代表一對一或小型群組聊天。訊息內容不存放在此文件中。
type Chat struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Members     []primitive.ObjectID `bson:"members" json:"members"` // 排序後的成員 ID
	IsGroupChat bool                 `bson:"isGroupChat" json:"isGroupChat"`
	Name        string               `bson:"name,omitempty" json:"name,omitempty"`
	GroupPhoto  string               `bson:"groupPhoto,omitempty" json:"groupPhoto,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	// LastMessageAt 由訊息服務更新，本服務只讀取
	LastMessageAt *time.Time `bson:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
}

// CreateChatRequest 定義創建聊天的請求體
type CreateChatRequest struct {
	CurrentUserID string   `json:"currentUserID" validate:"required"`
	Members       []string `json:"members"`
	IsGroupChat   bool     `json:"isGroupChat"`
	Name          string   `json:"name,omitempty"`
	GroupPhoto    string   `json:"groupPhoto,omitempty"`
}

// ExistingChatResponse is returned with 200 when find-or-create found a match.
type ExistingChatResponse struct {
	Message string `json:"message"`
	Chat    *Chat  `json:"chat"`
}

// PopulatedChat is a Chat with its member references resolved.
type PopulatedChat struct {
	ID          primitive.ObjectID `json:"id"`
	Members     []User             `json:"members"`
	IsGroupChat bool               `json:"isGroupChat"`
	Name        string             `json:"name,omitempty"`
	GroupPhoto  string             `json:"groupPhoto,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ChatDetails is the derived header view of a chat for one viewer.
type ChatDetails struct {
	IsGroup       bool    `json:"isGroup"`
	GroupName     *string `json:"groupName"`
	GroupPic      *string `json:"groupPic"`
	Members       []User  `json:"members"`
	OtherUserName *string `json:"otherUserName"`
	OtherUserPic  *string `json:"otherUserPic"`
}
