// Package web serves the upload form that turns a development sheet into a zip of BOMs.
package web

import (
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"bom-gen/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

//go:embed index.html
var indexHTML string

// Options configures a Server.
type Options struct {
	Bundle         *config.Bundle
	TemplateRoot   string
	MaxUploadBytes int64
	// AllowedOrigins enables CORS for these origins; empty means same-origin only.
	AllowedOrigins []string
	// GeneratePerMinute limits POST /generate per client IP; 0 disables the limit.
	GeneratePerMinute int
}

// Server holds dependencies for HTTP handlers. Every request builds its own
// generator from the uploaded source; the server keeps no state between requests.
type Server struct {
	opts     Options
	index    *template.Template
	validate *validator.Validate
	router   *chi.Mux
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options, logger *slog.Logger) (*Server, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		index:    tmpl,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		router:   chi.NewRouter(),
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	if len(s.opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			ExposedHeaders: []string{headerGenerated, headerFailed, "Content-Disposition"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Get("/", s.handleIndex)
	s.router.Post("/codes", s.handleCodes)
	s.router.Group(func(r chi.Router) {
		if s.opts.GeneratePerMinute > 0 {
			r.Use(s.rateLimit(newIPLimiter(s.opts.GeneratePerMinute, s.opts.GeneratePerMinute)))
		}
		r.Post("/generate", s.handleGenerate)
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
