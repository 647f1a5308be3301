package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleFigures serves the five chart specs for the filter in the query
// string. Without a city parameter every city is selected; city= with an
// empty value selects none.
func (h *APIHandlers) HandleFigures(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	figures, err := h.dashboard.Update(r.Context(), filter)
	if err != nil {
		errors.WriteError(r.Context(), w, h.logger, err)
		return
	}

	errors.WriteSuccess(w, figures)
}

func (h *APIHandlers) filterFromQuery(r *http.Request) (models.Filter, error) {
	query := r.URL.Query()
	filter := h.dashboard.DefaultFilter()

	if values, ok := query["city"]; ok {
		filter.Cities = nil
		for _, v := range values {
			for _, c := range strings.Split(v, ",") {
				if c = strings.TrimSpace(c); c != "" {
					filter.Cities = append(filter.Cities, c)
				}
			}
		}
	}

	if v := query.Get("metric"); v != "" {
		metric, err := models.ParseMetric(v)
		if err != nil {
			return models.Filter{}, errors.InvalidMetric(v)
		}
		filter.Metric = metric
	}

	return filter, nil
}

func (h *APIHandlers) HandleCities(w http.ResponseWriter, r *http.Request) {
	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, h.dashboard.Dataset().Cities(), headers)
}

type metricInfo struct {
	Label    string          `json:"label"`
	Column   string          `json:"column"`
	Operator models.Operator `json:"operator"`
}

func (h *APIHandlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := make([]metricInfo, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		metrics = append(metrics, metricInfo{
			Label:    m.Label(),
			Column:   m.Column(),
			Operator: m.Operator(),
		})
	}

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, metrics, headers)
}

// HandleHealth reports unavailable while the loaded dataset has no rows.
func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.dashboard.Dataset().Len() == 0 {
		errors.WriteError(r.Context(), w, h.logger, errors.ServiceUnavailable("dataset has no records"))
		return
	}

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.dashboard.Dataset().Stats()

	errors.WriteSuccess(w, stats)
}
