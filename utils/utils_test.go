package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelmate/backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateJWT(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "Aiko", Email: "aiko@x.com"}
	secret := "test-secret"

	tokenString, err := GenerateJWT(user, secret)
	require.NoError(t, err, "生成 JWT 不應該返回錯誤")
	assert.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		assert.True(t, ok, "非預期的簽名演算法")
		return []byte(secret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.Hex(), claims["userId"])
	assert.Equal(t, "aiko@x.com", claims["email"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok, "exp claim 格式錯誤")
	assert.Greater(t, int64(exp), time.Now().Unix(), "過期時間應該在未來")
}

func TestParseToken(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "Aiko", Email: "aiko@x.com"}
	tokenString, err := GenerateJWT(user, "s3cret")
	require.NoError(t, err)

	claims, err := ParseToken(tokenString, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "aiko@x.com", claims.Email)
	assert.Equal(t, "Aiko", claims.Name)

	_, err = ParseToken(tokenString, "other")
	assert.Error(t, err)
	_, err = ParseToken("garbage", "s3cret")
	assert.Error(t, err)
}

func TestClaimsContext(t *testing.T) {
	ctx := WithClaims(context.Background(), &Claims{UserID: primitive.NewObjectID(), Email: "a@x.com"})

	email, ok := GetUserEmailFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", email)

	_, ok = GetUserEmailFromContext(context.Background())
	assert.False(t, ok)
}

func TestUniqueObjectIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	out := UniqueObjectIDs([]primitive.ObjectID{b, a, b, a})

	assert.Equal(t, []primitive.ObjectID{a, b}, out)
}

func TestWriteErrorOmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteError(rec, http.StatusNotFound, "Chat room not found", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"message": "Chat room not found"}, body)
}

func TestWriteJSONReturnsEncodeError(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}
