package hrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"payments-engine/internal/domain"
	"payments-engine/internal/handler/ws"
	"payments-engine/internal/repository"
	"payments-engine/internal/response"
	"payments-engine/internal/usecase"
)

// EngineRestHandler exposes the event intake and account views over HTTP.
// All writes and reads go through the sequencer so HTTP traffic can never
// reorder events or observe a half-applied one.
type EngineRestHandler struct {
	seq    *usecase.Sequencer
	hub    *ws.Hub
	logger *zap.Logger
}

func NewEngineRestHandler(seq *usecase.Sequencer, hub *ws.Hub, logger *zap.Logger) *EngineRestHandler {
	return &EngineRestHandler{
		seq:    seq,
		hub:    hub,
		logger: logger,
	}
}

// Router assembles the chi router with the service middleware chain.
func (h *EngineRestHandler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", h.SubmitEvent)
		r.Get("/accounts", h.ListAccounts)
		r.Get("/accounts/{clientID}", h.GetAccount)
		if h.hub != nil {
			r.Get("/ws", h.hub.ServeWS)
		}
	})

	return r
}

func (h *EngineRestHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"service": "payments-engine"})
}

// SubmitEvent queues one event and waits for its outcome.
func (h *EngineRestHandler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ev.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.seq.Submit(r.Context(), ev)
	if err != nil {
		if errors.Is(err, usecase.ErrSequencerClosed) {
			response.Error(w, http.StatusServiceUnavailable, "engine is shutting down")
			return
		}
		h.logger.Error("event submission failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	if !out.IsApplied() {
		response.Error(w, http.StatusUnprocessableEntity, fmt.Sprintf("event rejected: %s", out.Reason))
		return
	}
	response.JSON(w, http.StatusAccepted, out)
}

// ListAccounts returns the snapshot of every account in first-touch order.
func (h *EngineRestHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	var views []domain.AccountView
	err := h.seq.Inspect(r.Context(), func(book *repository.AccountBook) {
		views = book.Snapshot()
	})
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "engine is shutting down")
		return
	}
	response.JSON(w, http.StatusOK, views)
}

// GetAccount returns a single account view.
func (h *EngineRestHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "clientID")
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var (
		view  domain.AccountView
		found bool
	)
	err = h.seq.Inspect(r.Context(), func(book *repository.AccountBook) {
		if acc, ok := book.Get(domain.ClientID(id)); ok {
			view = acc.View()
			found = true
		}
	})
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "engine is shutting down")
		return
	}
	if !found {
		response.Error(w, http.StatusNotFound, "unknown client")
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// LoggerMiddleware logs every request with the service logger.
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}
