package handlers

import (
	"net/http"

	"travelmate/backend/models"
	"travelmate/backend/services"

	"github.com/gorilla/mux"
)

// ChatHandler 處理一對一與群組聊天 (/chats)
type ChatHandler struct {
	chats *services.ChatService
	responder
}

func newChatHandler(chats *services.ChatService, rp responder) *ChatHandler {
	return &ChatHandler{chats: chats, responder: rp}
}

// CreateChat 找到既有聊天或建立新的聊天 (POST /chats)
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if !h.decode(w, r, &req) {
		return
	}
	chat, created, err := h.chats.FindOrCreate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Failed to create chat")
		return
	}
	if !created {
		h.ok(w, http.StatusOK, models.ExistingChatResponse{Message: "Chat already exists", Chat: chat})
		return
	}
	h.ok(w, http.StatusCreated, chat)
}

// GetUserChats (GET /chats?userEmail=)
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chats.ListForUser(r.Context(), r.URL.Query().Get("userEmail"))
	if err != nil {
		h.fail(w, r, err, "Failed to fetch chats")
		return
	}
	h.ok(w, http.StatusOK, chats)
}

// GetChatDetails (GET /chats/{id}?userId=)
func (h *ChatHandler) GetChatDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.chats.Details(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("userId"))
	if err != nil {
		h.fail(w, r, err, "Failed to get chat details")
		return
	}
	h.ok(w, http.StatusOK, details)
}
