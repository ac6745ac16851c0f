package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/finance-insights/internal/config"
	"github.com/Dan9191/finance-insights/internal/middleware"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter wires the public health check and the JWT-protected insight routes
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")

	// Protected routes
	auth := r.PathPrefix("/").Subrouter()
	auth.Use(middleware.AuthMiddleware(cfg))
	auth.HandleFunc("/insights", h.Insights).Methods("GET")
	auth.HandleFunc("/insights/trends", h.Trends).Methods("GET")
	auth.HandleFunc("/insights/predictions", h.Predictions).Methods("GET")
	auth.HandleFunc("/insights/suggestions", h.Suggestions).Methods("GET")
	auth.HandleFunc("/insights/health-score", h.HealthScore).Methods("GET")
	auth.HandleFunc("/aggregates/period", h.PeriodTotal).Methods("GET")
	auth.HandleFunc("/aggregates/grouped", h.GroupedTotal).Methods("GET")
	auth.HandleFunc("/aggregates/weekday", h.WeekdayPattern).Methods("GET")
	auth.HandleFunc("/aggregates/daily", h.DailyTotals).Methods("GET")
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Insights returns every section; refresh=true bypasses the cache
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	h.writeJSON(w, http.StatusOK, h.svc.GetInsights(r.Context(), userID, refresh))
}

// Trends returns the trend report
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetTrends(r.Context(), userID)
	h.respond(w, res, err)
}

// Predictions returns the month-end, goal and next-month predictions
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetPredictions(r.Context(), userID)
	h.respond(w, res, err)
}

// Suggestions returns the ranked savings suggestions
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetSuggestions(r.Context(), userID)
	h.respond(w, res, err)
}

// HealthScore returns the financial health score
func (h *Handler) HealthScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetHealthScore(r.Context(), userID)
	h.respond(w, res, err)
}

// PeriodTotal handles ?kind=expense&start=2025-06-01&end=2025-06-30
func (h *Handler) PeriodTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	kind, win, err := kindAndWindow(r)
	if err != nil {
		h.respond(w, nil, err)
		return
	}
	res, err := h.svc.PeriodTotal(r.Context(), userID, kind, win)
	h.respond(w, res, err)
}

// GroupedTotal handles ?kind=expense&start=2025-06-01&end=2025-06-30
func (h *Handler) GroupedTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	kind, win, err := kindAndWindow(r)
	if err != nil {
		h.respond(w, nil, err)
		return
	}
	res, err := h.svc.GroupedTotal(r.Context(), userID, kind, win)
	h.respond(w, res, err)
}

// WeekdayPattern handles ?months=3
func (h *Handler) WeekdayPattern(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	months := 3
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.respond(w, nil, fmt.Errorf("%w: months must be a number", service.ErrInvalidArgument))
			return
		}
		months = n
	}
	res, err := h.svc.WeekdayPattern(r.Context(), userID, months)
	h.respond(w, res, err)
}

// DailyTotals handles ?kind=expense&year=2025&month=6
func (h *Handler) DailyTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	kind, ok := models.ParseRecordKind(q.Get("kind"))
	if !ok {
		h.respond(w, nil, fmt.Errorf("%w: kind must be income or expense", service.ErrInvalidArgument))
		return
	}
	year, yerr := strconv.Atoi(q.Get("year"))
	month, merr := strconv.Atoi(q.Get("month"))
	if yerr != nil || merr != nil {
		h.respond(w, nil, fmt.Errorf("%w: year and month are required", service.ErrInvalidArgument))
		return
	}
	res, err := h.svc.DailyTotals(r.Context(), userID, kind, year, time.Month(month))
	h.respond(w, res, err)
}

func kindAndWindow(r *http.Request) (models.RecordKind, models.Window, error) {
	q := r.URL.Query()
	kind, ok := models.ParseRecordKind(q.Get("kind"))
	if !ok {
		return "", models.Window{}, fmt.Errorf("%w: kind must be income or expense", service.ErrInvalidArgument)
	}
	start, err := time.Parse(dateLayout, q.Get("start"))
	if err != nil {
		return "", models.Window{}, fmt.Errorf("%w: start must be YYYY-MM-DD", service.ErrInvalidArgument)
	}
	end, err := time.Parse(dateLayout, q.Get("end"))
	if err != nil {
		return "", models.Window{}, fmt.Errorf("%w: end must be YYYY-MM-DD", service.ErrInvalidArgument)
	}
	// the end date is included in full
	return kind, models.Window{Start: start, End: end.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "user ID not found in context")
	}
	return id, ok
}

func (h *Handler) respond(w http.ResponseWriter, body interface{}, err error) {
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, body)
	case errors.Is(err, service.ErrInvalidArgument):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Errorf("Request failed: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}
