package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/engine"
	"github.com/consolehq/sitemonitor/internal/httpapi/middleware"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// CheckRunner triggers a full check cycle for one monitor.
type CheckRunner interface {
	RunCheck(ctx context.Context, id domain.MonitorID) (*domain.CheckResult, error)
}

// StatsProvider computes rolling-window summaries.
type StatsProvider interface {
	MonitorStats(ctx context.Context, id domain.MonitorID, window time.Duration) (*domain.StatsSummary, error)
	OrgStats(ctx context.Context, org domain.OrgID, window time.Duration) (*domain.StatsSummary, error)
}

type Server struct {
	Logger   *zap.Logger
	Monitors repo.MonitorStore
	Results  repo.ResultStore
	Runner   CheckRunner
	Stats    StatsProvider
	Registry *prometheus.Registry
	Keys     middleware.Keys

	PublicRPM   int
	PublicBurst int
	AdminRPM    int
	AdminBurst  int
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAny(s.Keys))
			r.Use(middleware.RateLimit(s.PublicRPM, s.PublicBurst))

			r.Get("/monitors/{id}", s.handleGetMonitor)
			r.Get("/monitors/{id}/history", s.handleHistory)
			r.Get("/monitors/{id}/stats", s.handleMonitorStats)
			r.Get("/orgs/{org}/monitors", s.handleListByOrg)
			r.Get("/orgs/{org}/stats", s.handleOrgStats)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(s.Keys))
			r.Use(middleware.RateLimit(s.AdminRPM, s.AdminBurst))

			r.Post("/monitors", s.handleAddMonitor)
			r.Post("/monitors/{id}/check", s.handleRunCheck)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type addMonitorPayload struct {
	ID     string               `json:"id"`
	OrgID  string               `json:"orgId"`
	URL    string               `json:"url"`
	Name   string               `json:"name"`
	Checks domain.EnabledChecks `json:"checks"`
}

func (s *Server) handleAddMonitor(w http.ResponseWriter, r *http.Request) {
	var p addMonitorPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.ID == "" || p.URL == "" {
		writeErr(w, http.StatusBadRequest, "id and url are required")
		return
	}
	if u, err := url.Parse(p.URL); err != nil || u.Hostname() == "" {
		writeErr(w, http.StatusBadRequest, "url is not absolute")
		return
	}
	if p.Checks.None() {
		writeErr(w, http.StatusBadRequest, "at least one check must be enabled")
		return
	}
	m := &domain.MonitorConfig{
		ID:        domain.MonitorID(p.ID),
		OrgID:     domain.OrgID(p.OrgID),
		URL:       p.URL,
		Name:      p.Name,
		Checks:    p.Checks,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Monitors.Put(r.Context(), m); err != nil {
		s.Logger.Error("monitor_put_error", zap.String("monitor_id", p.ID), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "could not store monitor")
		return
	}
	s.Logger.Info("monitor_added", zap.String("monitor_id", p.ID), zap.String("url", p.URL))
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMonitor(w http.ResponseWriter, r *http.Request) {
	id := domain.MonitorID(chi.URLParam(r, "id"))
	m, err := s.Monitors.Get(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "lookup error")
		return
	}
	if m == nil {
		writeErr(w, http.StatusNotFound, "monitor not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListByOrg(w http.ResponseWriter, r *http.Request) {
	org := domain.OrgID(chi.URLParam(r, "org"))
	ms, err := s.Monitors.ListByOrg(r.Context(), org)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "list error")
		return
	}
	if ms == nil {
		ms = []*domain.MonitorConfig{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	id := domain.MonitorID(chi.URLParam(r, "id"))
	cr, err := s.Runner.RunCheck(r.Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrMonitorNotFound) {
			writeErr(w, http.StatusNotFound, "monitor not found")
			return
		}
		s.Logger.Error("check_run_error", zap.String("monitor_id", string(id)), zap.Error(err))
		writeErr(w, http.StatusBadGateway, "check failed")
		return
	}
	writeJSON(w, http.StatusOK, cr)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := domain.MonitorID(chi.URLParam(r, "id"))
	hours := queryInt(r, "hours", 24)
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	var statusFilter domain.Verdict
	if sv := r.URL.Query().Get("status"); sv != "" {
		statusFilter = domain.Verdict(sv)
		if !statusFilter.Valid() {
			writeErr(w, http.StatusBadRequest, "unknown status filter")
			return
		}
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	rows, err := s.Results.HistoryByMonitor(r.Context(), id, since, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "history error")
		return
	}
	if statusFilter != "" {
		kept := rows[:0]
		for _, cr := range rows {
			if cr.OverallStatus == statusFilter {
				kept = append(kept, cr)
			}
		}
		rows = kept
	}
	if rows == nil {
		rows = []*domain.CheckResult{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMonitorStats(w http.ResponseWriter, r *http.Request) {
	id := domain.MonitorID(chi.URLParam(r, "id"))
	window := time.Duration(queryInt(r, "hours", 24)) * time.Hour
	sum, err := s.Stats.MonitorStats(r.Context(), id, window)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "stats error")
		return
	}
	if sum == nil {
		writeErr(w, http.StatusNotFound, "monitor not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleOrgStats(w http.ResponseWriter, r *http.Request) {
	org := domain.OrgID(chi.URLParam(r, "org"))
	window := time.Duration(queryInt(r, "hours", 24)) * time.Hour
	sum, err := s.Stats.OrgStats(r.Context(), org, window)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "stats error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
