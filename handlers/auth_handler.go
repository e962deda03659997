package handlers

import (
	"net/http"

	"travelmate/backend/models"
	"travelmate/backend/services"
	"travelmate/backend/utils"

	"github.com/gorilla/mux"
)

// AuthHandler 處理註冊、登入與個人資料
type AuthHandler struct {
	accounts *services.AccountService
	responder
}

func newAuthHandler(accounts *services.AccountService, rp responder) *AuthHandler {
	return &AuthHandler{accounts: accounts, responder: rp}
}

// RegisterUser 處理使用者註冊請求 (POST /register)
func (h *AuthHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Failed to register user")
		return
	}
	h.ok(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"id":      user.ID.Hex(),
	})
}

// LoginUser 處理使用者登入請求 (POST /login)
func (h *AuthHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Failed to log in")
		return
	}
	h.ok(w, http.StatusOK, resp)
}

// GetAllUsers 處理獲取所有使用者列表的請求 (GET /users)
func (h *AuthHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch users")
		return
	}
	h.ok(w, http.StatusOK, users)
}

// GetUser (GET /users/{email})
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Get(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		h.fail(w, r, err, "Failed to fetch user")
		return
	}
	h.ok(w, http.StatusOK, user)
}

// UpdateProfile 更新自己的個人資料 (PUT /users/{email}，需要 JWT)
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !h.decode(w, r, &upd) {
		return
	}
	requester, _ := utils.GetUserEmailFromContext(r.Context())
	user, err := h.accounts.UpdateProfile(r.Context(), requester, mux.Vars(r)["email"], upd)
	if err != nil {
		h.fail(w, r, err, "Failed to update profile")
		return
	}
	h.ok(w, http.StatusOK, user)
}
