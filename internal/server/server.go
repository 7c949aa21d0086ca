package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/job-assistant/internal/analysis"
	"github.com/jonathan/job-assistant/internal/apperrors"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/extract"
	"github.com/jonathan/job-assistant/internal/generation"
	"github.com/jonathan/job-assistant/internal/intake"
	"github.com/jonathan/job-assistant/internal/jobs"
	"github.com/jonathan/job-assistant/internal/llm"
	"github.com/jonathan/job-assistant/internal/server/middleware"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
)

// multipartOverhead is the slack allowed above the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	handler       http.Handler
	closeDB       func()
	ping          func(context.Context) error
	llmClient     llm.Client
	rateLimiter   *ratelimit.Limiter
	intake        *intake.Service
	catalog       *jobs.Catalog
	generator     *generation.Generator
	authHandler   *AuthHandler
	googleHandler *GoogleAuthHandler
	authenticate  func(http.Handler) http.Handler
	allowedOrigin string
	maxUpload     int64
}

// Config holds server configuration
type Config struct {
	Port              int
	DatabaseURL       string
	APIKey            string
	AllowedOrigin     string
	Model             string
	GenerationTimeout time.Duration
	IntakeWorkers     int
}

// Deps are the collaborators a Server is assembled from.
type Deps struct {
	Users     DBClient
	Passwords *config.PasswordConfig
	JWT       *config.JWTConfig
	Google    *config.GoogleOAuthConfig
	// GoogleExchanger overrides the OAuth code exchange built from Google.
	GoogleExchanger CodeExchanger
	// ValidateIDToken overrides idtoken.Validate.
	ValidateIDToken IDTokenValidator
	LLM             llm.Client
	RateLimit       *ratelimit.Config
	Catalog         *jobs.Catalog
	// Extractor and Analyzer override the PDF and entity pipeline stages.
	Extractor intake.Extractor
	Analyzer  intake.Analyzer
	// Ping reports database reachability for /health. Nil skips the check.
	Ping func(context.Context) error
}

// New connects to the database and the model, then assembles the server
// from environment configuration.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	rateLimit, err := ratelimit.LoadConfig()
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.Model)
	}
	llmClient, err := llm.NewGeminiClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, err
	}

	catalog, err := jobs.Default()
	if err != nil {
		database.Close()
		_ = llmClient.Close()
		return nil, err
	}

	s := NewWithDeps(cfg, Deps{
		Users:     database,
		Passwords: passwordConfig,
		JWT:       jwtConfig,
		Google:    config.NewGoogleOAuthConfig(),
		LLM:       llmClient,
		RateLimit: rateLimit,
		Catalog:   catalog,
		Ping:      database.Ping,
	})
	s.closeDB = database.Close
	return s, nil
}

// NewWithDeps assembles a server from explicit collaborators.
func NewWithDeps(cfg Config, deps Deps) *Server {
	if deps.RateLimit == nil {
		deps.RateLimit = ratelimit.DefaultConfig()
	}
	if deps.Google == nil {
		deps.Google = &config.GoogleOAuthConfig{}
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.New()
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.New(nil)
	}
	if deps.Catalog == nil {
		deps.Catalog = jobs.MustDefault()
	}
	if deps.GoogleExchanger == nil {
		deps.GoogleExchanger = deps.Google.OAuth2()
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = config.DefaultAllowedOrigin
	}

	s := &Server{
		llmClient:     deps.LLM,
		ping:          deps.Ping,
		allowedOrigin: cfg.AllowedOrigin,
		maxUpload:     extract.DefaultMaxBytes + multipartOverhead,
	}

	// One limiter instance shared by every rate-limited operation
	s.rateLimiter = ratelimit.NewLimiter(deps.RateLimit)
	s.intake = intake.NewService(s.rateLimiter, deps.Extractor, deps.Analyzer, cfg.IntakeWorkers)
	s.catalog = deps.Catalog
	s.generator = generation.New(deps.LLM, cfg.GenerationTimeout)

	userService := NewUserService(deps.Users, deps.Passwords)
	jwtService := NewJWTService(deps.JWT)
	s.authHandler = NewAuthHandler(userService, jwtService)
	s.googleHandler = NewGoogleAuthHandler(deps.GoogleExchanger, deps.Google.ClientID, deps.ValidateIDToken, userService, s.authHandler)
	s.authenticate = middleware.AuthMiddleware(jwtService.AsTokenValidator(), userService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /register", s.authHandler.Register)
	mux.HandleFunc("POST /login", s.authHandler.Login)
	mux.HandleFunc("POST /logout", s.authHandler.Logout)
	mux.HandleFunc("GET /auth/google", s.googleHandler.AuthURL)
	mux.HandleFunc("GET /auth/google/callback", s.googleHandler.Callback)
	mux.Handle("GET /check-auth", s.authenticate(http.HandlerFunc(s.authHandler.CheckAuth)))

	// Résumé intake charges the limiter itself, after the file type check.
	mux.Handle("POST /upload_resume/{$}", s.authenticate(http.HandlerFunc(s.handleUploadResume)))
	mux.Handle("GET /search_jobs/{$}", s.authenticate(s.withRateLimit(http.HandlerFunc(s.handleSearchJobs))))
	mux.Handle("POST /generate_resume/{$}", s.authenticate(s.withRateLimit(http.HandlerFunc(s.handleGenerateResume))))

	s.handler = s.withLogging(s.withCORS(mux))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // Covers the generation timeout
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close stops the limiter sweep and releases the database and model clients.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Error closing LLM client: %v", err)
		}
	}
	if s.closeDB != nil {
		s.closeDB()
	}
}

// withCORS allows the web client origin, with credentials
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.allowedOrigin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Expose-Headers", "Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit charges the shared limiter for the client address
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r))
		setRateLimitHeaders(w, info)
		if !allowed {
			log.Printf("[rate-limit] Rate limit exceeded: client=%s path=%s Limit=%d Reset=%s",
				extractClientID(r), r.URL.Path, info.Limit, info.ResetTime.Format(time.RFC3339))
			writeError(w, &apperrors.ErrRateLimitExceeded{RetryAfter: info.RetryAfter})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			log.Printf("Health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeDetail writes an error body of the form {"detail": message}
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// writeError maps err onto its status code and detail message
func writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}

	var limited *apperrors.ErrRateLimitExceeded
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limited.RetryAfter)))
	}
	writeDetail(w, status, errorDetail(err))
}

// retryAfterSeconds rounds up, never below one second
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// extractClientID returns the client IP from RemoteAddr.
// X-Forwarded-For is ignored since no trusted proxy is configured.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}
