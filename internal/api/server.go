package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/config"
	"github.com/terra-clan/box-office/internal/health"
	"github.com/terra-clan/box-office/internal/render"
)

// Server represents the HTTP API server
type Server struct {
	config          config.ServerConfig
	router          *chi.Mux
	store           *catalog.Store
	engine          *catalog.Engine
	renderer        render.Renderer
	health          *health.Monitor
	defaultCategory catalog.Category
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	store *catalog.Store,
	engine *catalog.Engine,
	renderer render.Renderer,
	monitor *health.Monitor,
	defaultCategory catalog.Category,
) *Server {
	if !defaultCategory.Valid() {
		defaultCategory = catalog.DefaultCategory
	}

	s := &Server{
		config:          cfg,
		store:           store,
		engine:          engine,
		renderer:        renderer,
		health:          monitor,
		defaultCategory: defaultCategory,
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

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Every request sees one catalog state, even if a reload lands meanwhile
	r.Use(s.snapshotMiddleware)

	// The page session outlives the request timeout
	r.Get("/ws", s.handlePageWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)

		// HTML pages
		r.Get("/", s.handleIndexPage)
		r.Get("/categories/{category}", s.handleCategoryPage)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/state", s.handleGetState)
			r.Get("/movies", s.handleListMovies)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Get("/{category}/movies", s.handleCategoryMovies)
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
