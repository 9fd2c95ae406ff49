package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atlas-digital/agency-engine/internal/admin"
	"github.com/atlas-digital/agency-engine/internal/calculator"
	"github.com/atlas-digital/agency-engine/internal/chat"
	"github.com/atlas-digital/agency-engine/internal/config"
	"github.com/atlas-digital/agency-engine/internal/storage"
	"github.com/atlas-digital/agency-engine/internal/submit"
)

// Server represents the HTTP API server
type Server struct {
	config     config.ServerConfig
	router     *chi.Mux
	repo       storage.Repository
	calculator *calculator.Service
	admin      *admin.Service
	submitter  *submit.Service
	hub        *chat.Hub
	auth       *Auth
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	repo storage.Repository,
	calc *calculator.Service,
	adminSvc *admin.Service,
	submitter *submit.Service,
	hub *chat.Hub,
	auth *Auth,
) *Server {
	s := &Server{
		config:     cfg,
		repo:       repo,
		calculator: calc,
		admin:      adminSvc,
		submitter:  submitter,
		hub:        hub,
		auth:       auth,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Chat push connections stay open indefinitely and must not run
		// under the request timeout
		r.Get("/chat/ws", s.handleChatSocket)
		r.Get("/chat/events", s.handleChatEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Public calculator surface
			r.Get("/calculator", s.handleGetCalculatorConfig)
			r.Post("/calculator/quote", s.handleQuote)

			// Submissions
			r.Post("/submissions/calculator", s.handleSubmitCalculator)
			r.Post("/submissions/contact", s.handleSubmitContact)

			// Support chat
			r.Post("/chat/sessions", s.handleStartChatSession)
			r.Get("/chat/messages", s.handleChatHistory)
			r.Post("/chat/messages", s.handlePostChatMessage)

			// Admin surface
			r.Route("/admin", func(r chi.Router) {
				// Session lifecycle stays outside the auth guard
				r.Post("/login", s.handleAdminLogin)
				r.Post("/logout", s.handleAdminLogout)

				r.Group(func(r chi.Router) {
					r.Use(s.auth.Authenticate)

					r.Get("/session", s.handleAdminSession)
					r.Get("/submissions", s.handleListSubmissions)
					r.Post("/chat/messages", s.handlePostAgentMessage)

					r.Route("/project-types", func(r chi.Router) {
						r.Get("/", s.handleListProjectTypes)
						r.Post("/", s.handleCreateProjectType)
						r.Put("/{id}", s.handleUpdateProjectType)
						r.Delete("/{id}", s.handleDeleteProjectType)
					})

					r.Route("/design-levels", func(r chi.Router) {
						r.Get("/", s.handleListDesignLevels)
						r.Post("/", s.handleCreateDesignLevel)
						r.Put("/{id}", s.handleUpdateDesignLevel)
						r.Delete("/{id}", s.handleDeleteDesignLevel)
					})

					r.Route("/feature-categories", func(r chi.Router) {
						r.Get("/", s.handleListFeatureCategories)
						r.Post("/", s.handleCreateFeatureCategory)
						r.Put("/{id}", s.handleUpdateFeatureCategory)
						r.Delete("/{id}", s.handleDeleteFeatureCategory)
					})

					r.Route("/features", func(r chi.Router) {
						r.Get("/", s.handleListFeatures)
						r.Post("/", s.handleCreateFeature)
						r.Put("/{id}", s.handleUpdateFeature)
						r.Delete("/{id}", s.handleDeleteFeature)
					})

					r.Route("/scope-modifiers", func(r chi.Router) {
						r.Get("/", s.handleListScopeModifiers)
						r.Post("/", s.handleCreateScopeModifier)
						r.Put("/{id}", s.handleUpdateScopeModifier)
						r.Delete("/{id}", s.handleDeleteScopeModifier)
					})

					r.Route("/scope-modifier-options", func(r chi.Router) {
						r.Get("/", s.handleListScopeModifierOptions)
						r.Post("/", s.handleCreateScopeModifierOption)
						r.Put("/{id}", s.handleUpdateScopeModifierOption)
						r.Delete("/{id}", s.handleDeleteScopeModifierOption)
					})
				})
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
