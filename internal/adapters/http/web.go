package web

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"rollcall/internal/adapters/http/middleware"
	attendanceStore "rollcall/internal/adapters/storage/attendance"
	memberStore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/observability/metrics"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore     memberStore.Store
	AttendanceStore attendanceStore.Store
}

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config carries the HTTP-facing settings.
type Config struct {
	Development        bool     // expose error detail in responses
	CSRFKey            []byte   // 32 bytes
	SecureCookies      bool     // set in production
	TrustedOrigins     []string // extra origins allowed for form posts
	RateLimitPerSecond int      // per-IP request budget
	SlowRequest        time.Duration
}

// Server serves the JSON API.
type Server struct {
	stores  Stores
	db      Pinger
	cfg     Config
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
	handler http.Handler
	now     func() time.Time
}

// NewServer wires routes and middleware.
// PRE: stores are non-nil; cfg.CSRFKey is 32 bytes
// POST: Returned server is ready to serve; call Close to release background work
func NewServer(cfg Config, stores Stores, db Pinger, logger logrus.FieldLogger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 20
	}
	s := &Server{
		stores:  stores,
		db:      db,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.limiter = middleware.NewRateLimiter(cfg.RateLimitPerSecond, time.Second, logger)

	// Chain order is inner to outer: Route -> RateLimit -> CSRF -> SecurityHeaders -> Timing.
	s.handler = middleware.Chain(mux,
		middleware.Route,
		middleware.RateLimit(s.limiter),
		middleware.CSRF(middleware.CSRFConfig{
			Key:            cfg.CSRFKey,
			Secure:         cfg.SecureCookies,
			TrustedOrigins: cfg.TrustedOrigins,
		}),
		middleware.SecurityHeaders,
		middleware.Timing(middleware.TimingConfig{
			Logger:      logger,
			Metrics:     m,
			SlowRequest: cfg.SlowRequest,
		}),
	)
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/members", s.handleListMembers)
	mux.HandleFunc("POST /api/members", s.handleCreateMember)
	mux.HandleFunc("GET /api/members/{id}", s.handleGetMember)
	mux.HandleFunc("PUT /api/members/{id}", s.handleUpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", s.handleDeleteMember)
	mux.HandleFunc("GET /api/members/{id}/attendance", s.handleGetMemberAttendance)

	mux.HandleFunc("GET /api/attendance/{date}", s.handleGetAttendanceForDate)
	mux.HandleFunc("POST /api/attendance", s.handleSaveAttendance)

	mux.HandleFunc("GET /api/reports/attendance", s.handleGetAttendanceReport)

	mux.HandleFunc("GET /api/csrf-token", s.handleCSRFToken)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}
