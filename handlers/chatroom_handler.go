package handlers

import (
	"net/http"
	"strings"

	"travelmate/backend/models"
	"travelmate/backend/services"

	"github.com/gorilla/mux"
)

// ChatRoomHandler 處理 /chatrooms 路由
type ChatRoomHandler struct {
	rooms *services.ChatRoomService
	responder
}

func newChatRoomHandler(rooms *services.ChatRoomService, rp responder) *ChatRoomHandler {
	return &ChatRoomHandler{rooms: rooms, responder: rp}
}

// CreateChatRoom 處理創建聊天室的請求 (POST /chatrooms)
func (h *ChatRoomHandler) CreateChatRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRoomRequest
	if !h.decode(w, r, &req) {
		return
	}
	room, err := h.rooms.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Failed to create chat room")
		return
	}
	h.ok(w, http.StatusCreated, room)
}

// ListChatRooms 依篩選條件列出啟用中的聊天室 (GET /chatrooms)
func (h *ChatRoomHandler) ListChatRooms(w http.ResponseWriter, r *http.Request) {
	f, err := ParseRoomFilter(r)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch chat rooms")
		return
	}
	rooms, err := h.rooms.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch chat rooms")
		return
	}
	h.ok(w, http.StatusOK, rooms)
}

// GetChatRoom (GET /chatrooms/{id})
func (h *ChatRoomHandler) GetChatRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err, "Failed to fetch chat room")
		return
	}
	h.ok(w, http.StatusOK, room)
}

// UpdateChatRoom 執行 join / leave / message / vote / tip (PUT /chatrooms/{id})
func (h *ChatRoomHandler) UpdateChatRoom(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateChatRoomRequest
	if !h.decode(w, r, &req) {
		return
	}
	room, err := h.rooms.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.fail(w, r, err, "Failed to update chat room")
		return
	}
	h.ok(w, http.StatusOK, room)
}

// DeleteChatRoom 只有建立者可以刪除 (DELETE /chatrooms/{id}?userEmail=)
func (h *ChatRoomHandler) DeleteChatRoom(w http.ResponseWriter, r *http.Request) {
	err := h.rooms.Delete(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("userEmail"))
	if err != nil {
		h.fail(w, r, err, "Failed to delete chat room")
		return
	}
	h.ok(w, http.StatusOK, map[string]string{"message": "Chat room deleted"})
}

// ParseRoomFilter reads the listing filters; "all" and empty disable one.
func ParseRoomFilter(r *http.Request) (models.RoomFilter, error) {
	q := r.URL.Query()
	f := models.RoomFilter{
		Destination: filterValue(q.Get("destination")),
		Query:       filterValue(q.Get("query")),
	}
	if v := filterValue(q.Get("continent")); v != "" {
		c, err := models.ParseContinent(v)
		if err != nil {
			return f, err
		}
		f.Continent = c
	}
	if v := filterValue(q.Get("category")); v != "" {
		c, err := models.ParseRoomCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = c
	}
	return f, nil
}

func filterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
