package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelmate/backend/cache"
	"travelmate/backend/config"
	"travelmate/backend/database"
	"travelmate/backend/handlers"
	"travelmate/backend/jobs"
	"travelmate/backend/logger"
	"travelmate/backend/services"
	"travelmate/backend/websocket"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and realtime server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg)

	db, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			log.WithError(err).Error("Error disconnecting from MongoDB")
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	catalogCache, closeCache, err := newCache(cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	rooms := services.NewChatRoomService(database.NewChatRoomStore(db), log)
	users := database.NewUserStore(db)

	hub := websocket.NewHub(log)
	go hub.Run()

	archiver, err := jobs.NewScheduler(cfg.ArchiveSchedule, rooms, log)
	if err != nil {
		return fmt.Errorf("archive schedule %q: %w", cfg.ArchiveSchedule, err)
	}
	archiver.Start()

	router := handlers.NewRouter(handlers.Deps{
		ChatRooms:    rooms,
		Chats:        services.NewChatService(database.NewChatStore(db), users, log),
		Destinations: services.NewDestinationService(database.NewDestinationStore(db), catalogCache, log),
		Accounts:     services.NewAccountService(users, cfg.JWTSecret, log),
		Assistant: services.NewAssistant(services.AssistantConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.GroqModel,
		}),
		Realtime:    hub,
		Health:      db.Ping,
		JWTSecret:   cfg.JWTSecret,
		ShowDetails: !cfg.IsProduction(),
		Log:         log,
	})

	// 設置 CORS 中介軟體，AllowedOrigins 限制為設定中的前端網域
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      c.Handler(router),
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 75 * time.Second, // 旅遊助理最多等 60 秒
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	//當按下 Ctrl+C，程式會收到 SIGINT
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	select {
	case sig := <-sigChan:
		log.Infof("Received signal %s, shutting down server...", sig)
	case err := <-errCh:
		return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
	}

	//最多等30秒關閉，避免資料損壞，請求中斷
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Realtime hub did not stop in time")
	}
	if err := archiver.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Archive job did not stop in time")
	}

	log.Info("Server exited gracefully.")
	return nil
}

// newCache uses Redis when REDIS_ADDR is set and an in-process LRU otherwise.
func newCache(cfg *config.Config, log *logger.Logger) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		lru, err := cache.NewLRUCache(cfg.CacheSize)
		if err != nil {
			return nil, nil, fmt.Errorf("create LRU cache: %w", err)
		}
		log.WithField("size", cfg.CacheSize).Info("Using in-process destination cache")
		return lru, func() {}, nil
	}

	rc, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "travelmate:",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to Redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("Using Redis destination cache")
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.WithError(err).Warn("Error closing Redis client")
		}
	}, nil
}
