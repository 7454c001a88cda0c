package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyflow-backend/internal/handlers"
	"studyflow-backend/internal/middleware"
	"studyflow-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	contentHandler *handlers.ContentHandler,
	eventHandler *handlers.EventHandler,
	generateHandler *handlers.GenerateHandler,
	statsHandler *handlers.StatsHandler,
	userHandler *handlers.UserHandler,
	jobHandler *handlers.JobHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Content routes
		r.Route("/content", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/notes", contentHandler.AddNotes)
			r.Post("/youtube", contentHandler.AddYouTube)
			r.Post("/upload", contentHandler.Upload)
			r.Get("/{id}", contentHandler.GetContent)
		})

		// Study activity routes
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", eventHandler.StartSession)
		})

		r.Route("/results", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/quiz", eventHandler.SubmitQuizResult)
			r.Post("/exam", eventHandler.SubmitExamResult)
		})

		// Generation routes
		r.Route("/generate", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/{kind}", generateHandler.Generate)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", generateHandler.Chat)
		})

		// Dashboard routes
		r.Route("/stats", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", statsHandler.Stats)
			r.Get("/history", statsHandler.History)
		})

		// User routes
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
		})

		// Job routes
		r.Route("/jobs", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", jobHandler.GetJob)
			r.Delete("/{id}", jobHandler.CancelJob)
		})

		// WebSocket
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
