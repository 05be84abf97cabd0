// Package api exposes the sync core over HTTP: manual smart syncs per
// account and the scheduled-sync trigger, plus health and metrics.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/vnavash/banksync/db"
	"github.com/vnavash/banksync/pkg/models"
	"github.com/vnavash/banksync/pkg/services"
)

// Server is the banksync HTTP API server
type Server struct {
	orchestrator *services.Orchestrator
	scheduler    *services.Scheduler
	db           db.DBInterface
	now          func() time.Time
}

// NewServer creates a new API server
func NewServer(orchestrator *services.Orchestrator, scheduler *services.Scheduler, database db.DBInterface) *Server {
	return &Server{
		orchestrator: orchestrator,
		scheduler:    scheduler,
		db:           database,
		now:          time.Now,
	}
}

// Handler returns the chi router with all routes mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/accounts/{id}/smart-sync", s.handleSmartSync)
	r.Post("/sync/scheduled", s.handleScheduledSync)
	r.Get("/sync/logs", s.handleSyncLogs)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

type smartSyncRequest struct {
	Scopes []string `json:"scopes"`
}

func (s *Server) handleSmartSync(w http.ResponseWriter, r *http.Request) {
	accountId := chi.URLParam(r, "id")

	var req smartSyncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	// Default to all three scopes; let the quota ledger decide what is
	// actually affordable
	scopes := models.AllScopes
	if len(req.Scopes) > 0 {
		scopes = make([]models.Scope, 0, len(req.Scopes))
		for _, raw := range req.Scopes {
			scope, err := models.ParseScope(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			scopes = append(scopes, scope)
		}
	}

	result, err := s.orchestrator.SyncAccount(r.Context(), accountId, scopes)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("account", accountId).Msg("smart sync failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type scheduledSyncResponse struct {
	Success    bool           `json:"success"`
	SyncType   string         `json:"syncType,omitempty"`
	ExecutedAt *time.Time     `json:"executedAt,omitempty"`
	Scopes     []models.Scope `json:"scopes,omitempty"`
	Message    string         `json:"message,omitempty"`
}

func (s *Server) handleScheduledSync(w http.ResponseWriter, r *http.Request) {
	slot, ok := services.SlotForHour(s.now().Hour())
	if !ok {
		writeJSON(w, http.StatusOK, scheduledSyncResponse{
			Success: false,
			Message: "No scheduled sync for current hour",
		})
		return
	}

	syncLog, err := s.scheduler.RunSlot(r.Context(), slot)
	if err != nil {
		log.Error().Err(err).Str("slot", slot.Name).Msg("scheduled sync failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, scheduledSyncResponse{
		Success:    true,
		SyncType:   syncLog.SyncType,
		ExecutedAt: &syncLog.ExecutedAt,
		Scopes:     slot.Scopes,
	})
}

func (s *Server) handleSyncLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.GetRecentSyncLogs(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []*models.SyncLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
