package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterRequest 結構體用於處理註冊請求
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest 登入請求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 登入成功後回傳給前端的資料
type LoginResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileUpdate holds the editable profile fields. Nil fields are left as-is.
type ProfileUpdate struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=60"`
	Bio           *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfileImage  *string `json:"profileImage,omitempty"`
	TravelCity    *string `json:"travelCity,omitempty"`
	TravelCountry *string `json:"travelCountry,omitempty"`
}

// ErrorResponse 結構體用於返回 JSON 格式的錯誤訊息
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// User 結構體定義了使用者資料的欄位
type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string               `bson:"name" json:"name"`
	Email         string               `bson:"email" json:"email"` // unique index
	Password      string               `bson:"password" json:"-"`  // bcrypt hash
	Bio           string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage  string               `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	TravelCity    string               `bson:"travelCity,omitempty" json:"travelCity,omitempty"`
	TravelCountry string               `bson:"travelCountry,omitempty" json:"travelCountry,omitempty"`
	Chats         []primitive.ObjectID `bson:"chats" json:"chats"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName falls back to the e-mail address when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
