// Package http serves the JSON REST API under /api.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"fincontrol/internal/log"
	"fincontrol/internal/middleware/ratelimit"
	"fincontrol/internal/middleware/security"
	"fincontrol/internal/middleware/trace"
	"fincontrol/internal/ports"
)

// Pinger reports whether the data backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the use cases the API exposes.
type Services struct {
	Auth         AuthService
	Transactions TransactionService
	Bills        BillService
	Goals        GoalService
	Dashboard    DashboardService
	Taxonomy     ports.TaxonomyReader
	Health       Pinger
}

type Options struct {
	Addr               string
	CORSOrigins        []string
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc      Services
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	validate *validator.Validate

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, svc Services) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:      svc,
		logger:   logger,
		detector: security.NewDetector(),
		validate: newValidator(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           []string{http.MethodPost, http.MethodPut, http.MethodDelete},
		}),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr: opts.Addr,
		Handler: chain(mux,
			s.recoverer,
			sentryMiddleware(),
			s.tracer.Middleware,
			log.Middleware(logger),
			log.RequestIDMiddleware(trace.RequestID),
			security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
			s.detector.Middleware(logger),
			cors(opts.CORSOrigins),
			s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/investments/tips", s.handleInvestmentTips)

	mux.Handle("GET /api/profile", s.authed(s.handleGetProfile))
	mux.Handle("PUT /api/profile", s.authed(s.handleUpdateProfile))
	mux.Handle("GET /api/categories", s.authed(s.handleCategories))

	mux.Handle("GET /api/dashboard/stats", s.authed(s.handleDashboardStats))
	mux.Handle("GET /api/analytics/category-breakdown", s.authed(s.handleCategoryBreakdown))
	mux.Handle("GET /api/analytics/monthly-comparison", s.authed(s.handleMonthlyComparison))
	mux.Handle("GET /api/analytics/upcoming-bills", s.authed(s.handleUpcomingBills))

	mux.Handle("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.authed(s.handleCreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.authed(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))

	mux.Handle("GET /api/bills", s.authed(s.handleListBills))
	mux.Handle("POST /api/bills", s.authed(s.handleCreateBill))
	mux.Handle("PUT /api/bills/{id}", s.authed(s.handleUpdateBill))
	mux.Handle("DELETE /api/bills/{id}", s.authed(s.handleDeleteBill))

	mux.Handle("GET /api/goals", s.authed(s.handleListGoals))
	mux.Handle("POST /api/goals", s.authed(s.handleCreateGoal))
	mux.Handle("PUT /api/goals/{id}", s.authed(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", s.authed(s.handleDeleteGoal))
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Health.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeDetail(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes")
}
