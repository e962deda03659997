package handlers

import (
	"context"
	"fmt"
	"net/http"

	"travelmate/backend/logger"
	"travelmate/backend/middleware"
	"travelmate/backend/services"

	"github.com/gorilla/mux"
)

// Deps 是建立路由所需的服務
type Deps struct {
	ChatRooms    *services.ChatRoomService
	Chats        *services.ChatService
	Destinations *services.DestinationService
	Accounts     *services.AccountService
	Assistant    *services.Assistant
	// Realtime serves GET /ws; nil leaves the route out.
	Realtime http.Handler
	// Health checks the storage backend for GET /health.
	Health func(ctx context.Context) error

	JWTSecret   string
	ShowDetails bool
	Log         *logger.Logger
}

// NewRouter 註冊所有 API 路由
func NewRouter(d Deps) *mux.Router {
	rp := responder{log: d.Log, showDetails: d.ShowDetails}
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware, middleware.LoggingMiddleware(d.Log))

	// 健康檢查路由
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				rp.log.WithContext(r.Context()).WithError(err).Warn("Health check failed")
				rp.writeError(w, http.StatusServiceUnavailable, "Database unavailable", rp.details(err))
				return
			}
		}
		fmt.Fprintf(w, "Backend is running!")
	}).Methods(http.MethodGet)

	rooms := newChatRoomHandler(d.ChatRooms, rp)
	router.HandleFunc("/chatrooms", rooms.CreateChatRoom).Methods(http.MethodPost)
	router.HandleFunc("/chatrooms", rooms.ListChatRooms).Methods(http.MethodGet)
	router.HandleFunc("/chatrooms/{id}", rooms.GetChatRoom).Methods(http.MethodGet)
	router.HandleFunc("/chatrooms/{id}", rooms.UpdateChatRoom).Methods(http.MethodPut)
	router.HandleFunc("/chatrooms/{id}", rooms.DeleteChatRoom).Methods(http.MethodDelete)

	chats := newChatHandler(d.Chats, rp)
	router.HandleFunc("/chats", chats.CreateChat).Methods(http.MethodPost)
	router.HandleFunc("/chats", chats.GetUserChats).Methods(http.MethodGet)
	router.HandleFunc("/chats/{id}", chats.GetChatDetails).Methods(http.MethodGet)

	destinations := newDestinationHandler(d.Destinations, rp)
	router.HandleFunc("/destinations", destinations.ListDestinations).Methods(http.MethodGet)
	router.HandleFunc("/destinations", destinations.CreateDestination).Methods(http.MethodPost)
	router.HandleFunc("/destinations/{id}", destinations.GetDestination).Methods(http.MethodGet)
	router.HandleFunc("/destinations/{id}", destinations.DeleteDestination).Methods(http.MethodDelete)

	auth := newAuthHandler(d.Accounts, rp)
	router.HandleFunc("/register", auth.RegisterUser).Methods(http.MethodPost)
	router.HandleFunc("/login", auth.LoginUser).Methods(http.MethodPost)
	router.HandleFunc("/users", auth.GetAllUsers).Methods(http.MethodGet)
	router.HandleFunc("/users/{email}", auth.GetUser).Methods(http.MethodGet)

	protected := router.PathPrefix("/users").Subrouter()
	protected.Use(middleware.JWTMiddleware(d.JWTSecret, d.Log))
	protected.HandleFunc("/{email}", auth.UpdateProfile).Methods(http.MethodPut)

	router.HandleFunc("/chatbot", newChatbotHandler(d.Assistant, rp).Ask).Methods(http.MethodPost)

	if d.Realtime != nil {
		router.Handle("/ws", d.Realtime).Methods(http.MethodGet)
	}
	return router
}
