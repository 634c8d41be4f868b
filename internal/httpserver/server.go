// Package httpserver exposes the Evolution API webhook and the health and
// stats endpoints.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/m3rciful/iptvbot/core/logger"
	"github.com/m3rciful/iptvbot/internal/evolution"
	"github.com/m3rciful/iptvbot/internal/models"
)

// MessageHandler consumes one inbound WhatsApp message.
type MessageHandler interface {
	HandleIncomingMessage(ctx context.Context, phone, text string) error
}

// StatsSource supplies the dashboard counters for the stats endpoint.
type StatsSource interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// QueueStats reports outbound delivery counters.
type QueueStats interface {
	SentCount() int64
	ErrorCount() int64
}

// Server handles webhook traffic from the gateway.
type Server struct {
	handler MessageHandler
	stats   StatsSource
	queue   QueueStats
	started time.Time
}

// New builds the server. queue may be nil when no dispatcher is wired.
func New(handler MessageHandler, stats StatsSource, queue QueueStats) *Server {
	return &Server{
		handler: handler,
		stats:   stats,
		queue:   queue,
		started: time.Now(),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	// Evolution API posts every event to the base path; some deployments
	// append the event name.
	r.Post("/webhook", s.handleWebhook)
	r.Post("/webhook/messages-upsert", s.handleWebhook)
	r.Post("/webhook/messages-update", s.handleIgnoredEvent)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := chimw.GetReqID(r.Context())
		ctx := logger.WithRID(r.Context(), rid)

		next.ServeHTTP(w, r.WithContext(ctx))

		logger.Debug(ctx, "httpserver", "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Float64("duration_ms", logger.RoundMS(time.Since(start))),
		)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"service": "iptvbot",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Stats(r.Context())
	if err != nil {
		logger.Error(r.Context(), "httpserver", "stats_failed", logger.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "stats unavailable"})
		return
	}

	payload := map[string]any{
		"users":                 st.Users,
		"pending_tests":         st.PendingTests,
		"pending_subscriptions": st.PendingSubscriptions,
		"pending_renewals":      st.PendingRenewals,
		"active_tests":          st.ActiveTests,
		"active_subscriptions":  st.ActiveSubscriptions,
		"open_support":          st.OpenSupport,
		"messages_today":        st.MessagesToday,
	}
	if s.queue != nil {
		payload["messages_sent"] = s.queue.SentCount()
		payload["send_errors"] = s.queue.ErrorCount()
	}
	render.JSON(w, r, payload)
}

// handleWebhook always answers 200: the gateway retries on failure statuses
// and a retry would replay the same message into the conversation.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var event evolution.WebhookEvent
	if err := render.DecodeJSON(r.Body, &event); err != nil {
		logger.Warn(ctx, "httpserver", "webhook_bad_payload", logger.Err(err))
		render.JSON(w, r, map[string]string{"status": "ignored"})
		return
	}

	in, ok := event.Extract()
	if !ok {
		render.JSON(w, r, map[string]string{"status": "ignored"})
		return
	}

	logger.Info(ctx, "httpserver", "webhook_received",
		slog.String("phone", in.Phone),
		slog.String("preview", logger.SanitizeLimit(in.Text, 60)),
	)

	if err := s.handler.HandleIncomingMessage(ctx, in.Phone, in.Text); err != nil {
		logger.Error(ctx, "httpserver", "webhook_handler_failed", logger.Err(err))
		render.JSON(w, r, map[string]string{"status": "error"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "processed"})
}

func (s *Server) handleIgnoredEvent(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ignored"})
}
