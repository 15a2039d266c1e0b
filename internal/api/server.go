package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/textguard/textguard/internal/advisor"
	"github.com/textguard/textguard/internal/auth"
	"github.com/textguard/textguard/internal/engine"
	"github.com/textguard/textguard/internal/storage"
)

// Config holds the server's collaborators. Engine and AuthService are
// required; the rest may be nil and the matching endpoints degrade.
type Config struct {
	Engine       *engine.Engine
	AuthService  auth.Service
	Analyses     storage.AnalysisRepository
	Fingerprints storage.FingerprintRepository
	Advisor      *advisor.Advisor
}

type Server struct {
	router       *chi.Mux
	engine       *engine.Engine
	authService  auth.Service
	analyses     storage.AnalysisRepository
	fingerprints storage.FingerprintRepository
	advisor      *advisor.Advisor
}

func NewServer(config Config) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:       r,
		engine:       config.Engine,
		authService:  config.AuthService,
		analyses:     config.Analyses,
		fingerprints: config.Fingerprints,
		advisor:      config.Advisor,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	authHandlers := auth.NewHandlers(s.authService)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/register", authHandlers.Register)
		r.Post("/auth/login", authHandlers.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authService))

			r.Get("/auth/me", authHandlers.Me)
			r.Post("/auth/keys", authHandlers.CreateKey)

			r.Post("/analyze", s.handleAnalyze)
			r.Route("/analyses", func(r chi.Router) {
				r.Get("/", s.handleListAnalyses)
				r.Get("/{analysisID}", s.handleGetAnalysis)
				r.Delete("/{analysisID}", s.handleDeleteAnalysis)
				r.Get("/{analysisID}/similar-style", s.handleSimilarStyle)
				r.Get("/{analysisID}/commentary", s.handleCommentary)
			})
		})
	})
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
