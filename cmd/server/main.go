package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyflow-backend/internal/config"
	"studyflow-backend/internal/database"
	"studyflow-backend/internal/handlers"
	"studyflow-backend/internal/middleware"
	"studyflow-backend/internal/repository"
	"studyflow-backend/internal/router"
	"studyflow-backend/internal/services"
	"studyflow-backend/internal/websocket"
	"studyflow-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting StudyFlow Backend...")

	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	contentRepo := repository.NewContentRepo(pool)
	jobRepo := repository.NewJobRepo(pool)
	eventRepo := repository.NewEventRepo(pool)

	// Services
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, redisClients.Queue)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	youtubeService := services.NewYouTubeService()
	fileExtractService := services.NewFileExtractService()
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	contentHandler := handlers.NewContentHandler(contentRepo, jobRepo, redisClients.Queue, cfg.StoragePath)
	eventHandler := handlers.NewEventHandler(eventRepo, contentRepo, redisClients.Queue)
	generateHandler := handlers.NewGenerateHandler(contentRepo, jobRepo, eventRepo, geminiService, redisClients.Queue)
	statsHandler := handlers.NewStatsHandler(eventRepo, redisClients.Queue)
	userHandler := handlers.NewUserHandler(userRepo)
	jobHandler := handlers.NewJobHandler(jobRepo)

	// Worker pool
	workerPool := worker.NewPool(
		redisClients.Queue,
		geminiService,
		youtubeService,
		fileExtractService,
		jobRepo,
		contentRepo,
		eventRepo,
		cfg.StoragePath,
		cfg.WorkerCount,
	)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// WebSocket hub
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	r := router.New(
		jwtAuth,
		authHandler,
		contentHandler,
		eventHandler,
		generateHandler,
		statsHandler,
		userHandler,
		jobHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StudyFlow Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
