package handlers

import (
	"net/http"

	"travelmate/backend/services"
)

type chatbotRequest struct {
	Message string `json:"message"`
}

type chatbotResponse struct {
	Response string `json:"response"`
}

// ChatbotHandler 旅遊助理 (POST /chatbot)
type ChatbotHandler struct {
	assistant *services.Assistant
	responder
}

func newChatbotHandler(assistant *services.Assistant, rp responder) *ChatbotHandler {
	return &ChatbotHandler{assistant: assistant, responder: rp}
}

func (h *ChatbotHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req chatbotRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply, err := h.assistant.Ask(r.Context(), req.Message)
	if err != nil {
		h.fail(w, r, err, "Failed to get response from chatbot")
		return
	}
	h.ok(w, http.StatusOK, chatbotResponse{Response: reply})
}
