package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	apiadapter "chatsync/internal/infrastructure/apiclient/adapter"
	"chatsync/internal/infrastructure/realtime"
	wsadapter "chatsync/internal/infrastructure/transport/adapter"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/engine"

	v1 "chatsync/cmd/api/router/v1"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg(".env file not found or could not be loaded")
	}

	userID, err := strconv.ParseInt(os.Getenv("CHAT_USER_ID"), 10, 64)
	if err != nil || userID <= 0 {
		log.Fatal().Msg("CHAT_USER_ID must be set to a positive integer")
	}
	self := domain.User{ID: userID, Username: os.Getenv("CHAT_USERNAME")}

	api, err := apiadapter.NewRESTClientFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build chat API client")
	}

	stream, err := wsadapter.NewWSStreamFromEnv(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build event stream")
	}

	eng := engine.New(engine.Config{
		Self:      self,
		API:       api,
		Stream:    stream,
		TypingTTL: typingTTLFromEnv(),
		Logger:    log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := eng.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("engine initialization failed")
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn().Err(err).Msg("engine shutdown")
		}
	}()

	hub := realtime.NewHub(log)
	defer hub.Close()
	changes, unsubscribe := eng.Subscribe()
	defer unsubscribe()
	go hub.Run(context.Background(), changes)

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
			"phase":  string(eng.Phase()),
		})
	})

	v1.RegisterRoutes(r, eng, hub)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Start HTTP server (blocks until shutdown)
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func typingTTLFromEnv() time.Duration {
	if v := os.Getenv("TYPING_TTL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 0 // engine default
}
