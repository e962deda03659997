package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"travelmate/backend/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// contextKey 是儲存在 context 中的值的鍵型別
type contextKey string

// UserEmailKey 儲存已驗證使用者的 email
const UserEmailKey contextKey = "userEmail"

// TokenTTL JWT 的有效期限
const TokenTTL = 24 * time.Hour

// Claims 是 token 中攜帶的使用者資訊
type Claims struct {
	UserID primitive.ObjectID
	Email  string
	Name   string
}

// GetUserEmailFromContext 從 context 中提取使用者 email
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok && email != ""
}

// WithClaims 將 token 資訊放入 context
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, UserEmailKey, c.Email)
}

// ParseToken 驗證 JWT token 並取出使用者資訊
func ParseToken(tokenString string, jwtSecret string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userIDStr, ok := claims["userId"].(string)
	if !ok {
		return nil, errors.New("user ID not found in token claims")
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user ID format in token")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &Claims{UserID: userID, Email: email, Name: name}, nil
}

// SortObjectIDs 對 primitive.ObjectID 切片進行排序 (按 Hex 字串)
func SortObjectIDs(ids []primitive.ObjectID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Hex() < ids[j].Hex()
	})
}

// UniqueObjectIDs 去除重複後排序
func UniqueObjectIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	SortObjectIDs(out)
	return out
}

// GenerateJWT 為用戶生成 JWT Token
func GenerateJWT(user *models.User, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"name":   user.Name,
		"exp":    now.Add(TokenTTL).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return tokenString, nil
}

// WriteJSON 以指定狀態碼輸出 JSON，回傳編碼錯誤讓呼叫端記錄
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError 統一發送 JSON 格式錯誤響應，details 為空時不輸出
func WriteError(w http.ResponseWriter, status int, message, details string) error {
	return WriteJSON(w, status, models.ErrorResponse{Message: message, Details: details})
}
