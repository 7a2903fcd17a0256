// Package http exposes the household dashboard as a JSON API.
package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"flathub/internal/log"
	"flathub/internal/middleware/ratelimit"
	"flathub/internal/middleware/security"
	"flathub/internal/services"
)

// Server wraps http.Server with the dashboard routes.
type Server struct {
	http.Server

	household    *services.Household
	feedLimit    int
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server. feedLimit
// is the default page size of the activity feed; rateLimit is the
// per-client requests-per-minute ceiling.
func NewServer(addr string, household *services.Household, feedLimit, rateLimit int, logger *log.Logger) *Server {
	s := &Server{
		household: household,
		feedLimit: feedLimit,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: rateLimit}),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/flatmates", s.handleGetFlatmates)
	mux.HandleFunc("GET /api/flatmates/{id}/balance", s.handleFlatmateBalance)

	mux.HandleFunc("GET /api/tasks", s.handleGetTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}/complete", s.handleCompleteTask)

	mux.HandleFunc("GET /api/grocery-items", s.handleGetGroceryItems)
	mux.HandleFunc("POST /api/grocery-items", s.handleCreateGroceryItem)
	mux.HandleFunc("PATCH /api/grocery-items/{id}", s.handleUpdateGroceryItem)
	mux.HandleFunc("DELETE /api/grocery-items/{id}", s.handleDeleteGroceryItem)

	mux.HandleFunc("GET /api/expenses", s.handleGetExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expense-shares", s.handleGetExpenseShares)
	mux.HandleFunc("PATCH /api/expense-shares/{id}", s.handleUpdateExpenseShare)

	mux.HandleFunc("GET /api/activities", s.handleGetActivities)
	mux.HandleFunc("GET /api/dashboard/stats", s.handleDashboardStats)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(clientIP, s.rateLimited)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = headers.Middleware(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	s.respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// Handler returns the routed handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
