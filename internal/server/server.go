package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/clipscreen/clipscreen/internal/analysis"
	"github.com/clipscreen/clipscreen/internal/auth"
	"github.com/clipscreen/clipscreen/internal/database"
	"github.com/clipscreen/clipscreen/internal/geoip"
	"github.com/clipscreen/clipscreen/internal/inference"
	"github.com/clipscreen/clipscreen/internal/moderation"
	"github.com/clipscreen/clipscreen/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	DB               database.DBTX
	Pinger           Pinger
	Analyzer         inference.Analyzer
	Generator        moderation.TextGenerator
	Store            analysis.ObjectStore
	GeoIP            *geoip.Resolver
	JWTSecret        string
	BaseURL          string
	S3PublicEndpoint string
	MonthlyLimit     int
	MaxUploadBytes   int64
}

type Server struct {
	router           chi.Router
	pinger           Pinger
	authHandler      *auth.Handler
	analysisHandler  *analysis.Handler
	inferenceHandler http.HandlerFunc
	moderateHandler  http.HandlerFunc
	db               database.DBTX
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.S3PublicEndpoint,
	}))

	s := &Server{router: r, pinger: cfg.Pinger, db: cfg.DB}

	if cfg.DB != nil {
		jwtSecret := cfg.JWTSecret
		if jwtSecret == "" {
			log.Fatal("JWT_SECRET is required; set the environment variable")
		}

		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:8080"
		}

		secureCookies := strings.HasPrefix(baseURL, "https://")
		s.authHandler = auth.NewHandler(cfg.DB, jwtSecret, secureCookies)

		auditor := analysis.NewAuditor(cfg.DB, cfg.GeoIP)
		pipeline := analysis.NewPipeline(cfg.Analyzer, cfg.Generator)
		s.analysisHandler = analysis.NewHandler(cfg.DB, pipeline, cfg.Store, auditor, cfg.MonthlyLimit, cfg.MaxUploadBytes)
		s.inferenceHandler = inference.Handler(cfg.DB, cfg.Analyzer, cfg.MonthlyLimit, cfg.MaxUploadBytes, auditor.Record)
	}

	if cfg.Generator != nil {
		s.moderateHandler = moderation.Handler(cfg.Generator)
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/", s.handleAppPage)
	s.router.Post("/results", s.handleResultsFragment)

	if s.authHandler != nil {
		authLimiter := ratelimit.NewLimiter(0.5, 5)
		s.router.Route("/api/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", s.authHandler.Register)
			r.Post("/login", s.authHandler.Login)
			r.Post("/refresh", s.authHandler.Refresh)
			r.Post("/logout", s.authHandler.Logout)
		})

		keysLimiter := ratelimit.NewLimiter(2, 10)
		s.router.Route("/api/keys", func(r chi.Router) {
			r.Use(keysLimiter.Middleware)
			r.Use(s.authHandler.Middleware)
			r.Post("/", auth.GenerateAPIKey(s.db))
			r.Get("/", auth.ListAPIKeys(s.db))
			r.Delete("/{id}", auth.DeleteAPIKey(s.db))
		})
	}

	if s.inferenceHandler != nil {
		inferenceLimiter := ratelimit.NewLimiter(1, 5)
		s.router.Route("/api/inference", func(r chi.Router) {
			r.Use(inferenceLimiter.Middleware)
			r.Use(auth.KeyMiddleware(s.db))
			r.Post("/", s.inferenceHandler)
		})
	}

	if s.analysisHandler != nil {
		authEither := apiKeyOrJWTMiddleware(s.db, s.authHandler.Middleware)
		analyzeLimiter := ratelimit.NewLimiter(1, 5)
		s.router.Route("/api/analyze", func(r chi.Router) {
			r.Use(analyzeLimiter.Middleware)
			r.Use(authEither)
			r.Post("/", s.analysisHandler.Analyze)
		})
		s.router.Route("/api/uploads", func(r chi.Router) {
			r.Use(authEither)
			r.Get("/", s.analysisHandler.Uploads)
		})
		s.router.Route("/api/usage", func(r chi.Router) {
			r.Use(authEither)
			r.Get("/", s.analysisHandler.Usage)
		})
	}

	if s.moderateHandler != nil {
		moderateLimiter := ratelimit.NewLimiter(1, 5)
		s.router.Route("/api/moderation", func(r chi.Router) {
			r.Use(moderateLimiter.Middleware)
			r.Post("/", s.moderateHandler)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
