package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"travelmate/backend/logger"
	"travelmate/backend/models"
	"travelmate/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJWTMiddleware(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Name: "A", Email: "a@x.com"}
	token, err := utils.GenerateJWT(user, "secret")
	require.NoError(t, err)

	var gotEmail string
	protected := JWTMiddleware("secret", logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail, _ = utils.GetUserEmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad format", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/users/a@x.com", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
	assert.Equal(t, "a@x.com", gotEmail)
}

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})

	h := RequestIDMiddleware(LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/chatrooms", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/chatrooms", entry["endpoint"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status_code"])
}

func TestRequestIDGenerated(t *testing.T) {
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}
