package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/studytrack/internal/gamification"
	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/store"
)

const maxRequestBytes = 1 << 20

type methodFunc func(ctx context.Context, body []byte) (any, error)

func query[A, R any](fn func(ctx context.Context, args A) (R, error)) methodFunc {
	return func(ctx context.Context, body []byte) (any, error) {
		var args A
		if len(body) > 0 {
			if err := json.Unmarshal(body, &args); err != nil {
				return nil, &requestError{err: err}
			}
		}
		return fn(ctx, args)
	}
}

func command[A any](fn func(ctx context.Context, args A) error) methodFunc {
	return query(func(ctx context.Context, args A) (struct{}, error) {
		return struct{}{}, fn(ctx, args)
	})
}

type Server struct {
	methods       map[string]methodFunc
	allowedOrigin string
}

type ServerOption func(*Server)

// WithAllowedOrigin lets a browser page on origin call the bridge.
func WithAllowedOrigin(origin string) ServerOption {
	return func(s *Server) {
		s.allowedOrigin = origin
	}
}

func NewServer(gw store.Gateway, opts ...ServerOption) *Server {
	s := &Server{
		methods: map[string]methodFunc{
			"Ping": command(func(ctx context.Context, _ struct{}) error {
				return gw.Ping(ctx)
			}),

			"FindTopic": query(func(ctx context.Context, a entityArgs) (*learning.Topic, error) {
				return gw.FindTopic(ctx, a.UserID, a.ID)
			}),
			"FindTopics": query(func(ctx context.Context, a userArgs) ([]learning.Topic, error) {
				return gw.FindTopics(ctx, a.UserID)
			}),
			"SaveTopic": command(func(ctx context.Context, topic learning.Topic) error {
				return gw.SaveTopic(ctx, &topic)
			}),
			"DeleteTopic": command(func(ctx context.Context, a entityArgs) error {
				return gw.DeleteTopic(ctx, a.UserID, a.ID)
			}),

			"FindItem": query(func(ctx context.Context, a entityArgs) (*learning.Item, error) {
				return gw.FindItem(ctx, a.UserID, a.ID)
			}),
			"FindItems": query(func(ctx context.Context, filter learning.ItemFilter) ([]learning.Item, error) {
				return gw.FindItems(ctx, filter)
			}),
			"SaveItem": command(func(ctx context.Context, item learning.Item) error {
				return gw.SaveItem(ctx, &item)
			}),
			"DeleteItem": command(func(ctx context.Context, a entityArgs) error {
				return gw.DeleteItem(ctx, a.UserID, a.ID)
			}),

			"CreateReviewSession": command(func(ctx context.Context, session learning.ReviewSession) error {
				return gw.CreateReviewSession(ctx, &session)
			}),
			"FindReviewSessions": query(func(ctx context.Context, filter learning.SessionFilter) ([]learning.ReviewSession, error) {
				return gw.FindReviewSessions(ctx, filter)
			}),

			"FindStats": query(func(ctx context.Context, a userArgs) (*gamification.Stats, error) {
				return gw.FindStats(ctx, a.UserID)
			}),
			"SaveStats": command(func(ctx context.Context, stats gamification.Stats) error {
				return gw.SaveStats(ctx, &stats)
			}),

			"FindAchievements": query(func(ctx context.Context, a userArgs) ([]gamification.Achievement, error) {
				return gw.FindAchievements(ctx, a.UserID)
			}),
			"CreateAchievement": command(func(ctx context.Context, achievement gamification.Achievement) error {
				return gw.CreateAchievement(ctx, &achievement)
			}),

			"FindDailyStats": query(func(ctx context.Context, a dailyArgs) (*gamification.DailyStats, error) {
				return gw.FindDailyStats(ctx, a.UserID, a.Date)
			}),
			"FindDailyStatsRange": query(func(ctx context.Context, a rangeArgs) ([]gamification.DailyStats, error) {
				return gw.FindDailyStatsRange(ctx, a.UserID, a.From, a.To)
			}),
			"SaveDailyStats": command(func(ctx context.Context, daily gamification.DailyStats) error {
				return gw.SaveDailyStats(ctx, &daily)
			}),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler serves the bridge over HTTP/1.1 and cleartext HTTP/2.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+PathPrefix+"{method}", s)
	return s.cors(h2c.NewHandler(mux, &http2.Server{}))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("method")
	if name == "" {
		name = strings.TrimPrefix(r.URL.Path, PathPrefix)
	}
	method, ok := s.methods[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, response[any]{Error: &errorBody{Kind: kindUnknownMethod, Message: name}})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response[any]{Error: newErrorBody(&requestError{err: err})})
		return
	}

	result, err := method(r.Context(), body)
	if err != nil {
		errBody := newErrorBody(err)
		slog.Default().Warn("bridge call failed", "method", name, "kind", errBody.Kind, "error", err)
		writeJSON(w, statusOf(errBody.Kind), response[any]{Error: errBody})
		return
	}
	writeJSON(w, http.StatusOK, response[any]{Result: result})
}

func statusOf(kind errorKind) int {
	switch kind {
	case kindPersistence:
		return http.StatusServiceUnavailable
	case kindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to write bridge response", "error", err)
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	if s.allowedOrigin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
