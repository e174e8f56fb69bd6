package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/roomsync/internal/chore"
	"github.com/dukerupert/roomsync/internal/compatibility"
	"github.com/dukerupert/roomsync/internal/config"
	"github.com/dukerupert/roomsync/internal/events"
	"github.com/dukerupert/roomsync/internal/handler"
	"github.com/dukerupert/roomsync/internal/metrics"
	"github.com/dukerupert/roomsync/internal/middleware"
	"github.com/dukerupert/roomsync/internal/store"
	ws "github.com/dukerupert/roomsync/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	coordinationH  *handler.CoordinationHandler
	profileH       *handler.ProfileHandler
	sessionStore   *store.SessionStore
	rateLimiter    *middleware.RateLimiter
	metrics        *metrics.Metrics
	scoreRateLimit int
	allowedOrigins []string
	logger         *slog.Logger
}

// New wires stores, the chore service and handlers. Chore events always go to
// the room's websocket clients and additionally to every publisher in extra.
// m may be nil, which disables metrics.
func New(db *sql.DB, cfg *config.Config, extra []events.Publisher, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	duties, err := cfg.DutySet()
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	publishers := events.Multi{events.NewHubPublisher(hub)}
	publishers = append(publishers, extra...)

	userStore := store.NewUserStore(db)
	roomStore := store.NewRoomStore(db)
	sessionStore := store.NewSessionStore(db)
	profileStore := store.NewProfileStore(db)
	rotationStore := store.NewRotationStore(db)

	opts := []chore.Option{
		chore.WithPublisher(publishers),
		chore.WithLogger(logger.With("component", "chore")),
	}
	var scores handler.ScoreRecorder
	if m != nil {
		opts = append(opts, chore.WithRecorder(m))
		scores = m
	}
	choreSvc := chore.NewService(rotationStore, duties, cfg.RotationInterval, opts...)

	scorer := compatibility.NewScorer(compatibility.WithSmokeSensitiveConditions(cfg.SmokeSensitiveConditions))

	return &Server{
		db:             db,
		hub:            hub,
		coordinationH:  handler.NewCoordinationHandler(choreSvc, roomStore, userStore, profileStore, scorer, scores, logger.With("component", "coordination")),
		profileH:       handler.NewProfileHandler(profileStore, roomStore, logger.With("component", "profile")),
		sessionStore:   sessionStore,
		rateLimiter:    middleware.NewRateLimiter(),
		metrics:        m,
		scoreRateLimit: cfg.ScoreRateLimit,
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	}, nil
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("GET /health", s.healthHandler)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.registerProtectedRoutes(mux)

	var h http.Handler = mux
	if s.metrics != nil {
		h = middleware.Metrics(s.metrics)(h)
	}
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":            status,
		"websocket_clients": s.hub.ClientCount(),
	})
}

func (s *Server) rateLimited(h http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.CallerKey, s.scoreRateLimit, time.Minute)(h)
}

// registerProtectedRoutes wraps each route in RequireAuth individually so the
// mux records the matched pattern on the request the metrics middleware sees.
func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	protect := middleware.RequireAuth(s.sessionStore)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protect(h))
	}

	// Chore rotation
	handle("GET /api/chores/today", s.coordinationH.TodayChores)
	handle("POST /api/chores/{duty}/done", s.coordinationH.MarkDone)

	// Compatibility
	mux.Handle("POST /api/compatibility-score", protect(s.rateLimited(http.HandlerFunc(s.coordinationH.CompatibilityScore))))

	// Profiles
	handle("GET /api/profile", s.profileH.GetMine)
	handle("PUT /api/profile", s.profileH.PutMine)
	handle("GET /api/rooms/{id}/profile", s.profileH.GetRoom)
	handle("PUT /api/rooms/{id}/profile", s.profileH.PutRoom)

	// Live updates for the caller's room
	handle("GET /ws", ws.HandleWebSocket(s.hub, s.coordinationH.RoomForRequest, s.allowedOrigins, s.logger.With("component", "websocket")))
}
