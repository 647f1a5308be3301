package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
	"supermarket-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	pageTitle     = "Supermarket Sales Analysis"
)

type PageHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleDashboard renders the page with every city selected and gross income
// as the metric, figures already computed.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	data, err := h.pageData(ctx)
	if err != nil {
		h.logger.Error("build dashboard page", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := templates.Dashboard(data).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func (h *PageHandlers) pageData(ctx context.Context) (templates.DashboardData, error) {
	filter := h.dashboard.DefaultFilter()

	figures, err := h.dashboard.Update(ctx, filter)
	if err != nil {
		return templates.DashboardData{}, err
	}

	signals, err := json.Marshal(map[string]any{
		"cities":      filter.Cities,
		"metric":      filter.Metric.Label(),
		figuresSignal: figures,
	})
	if err != nil {
		return templates.DashboardData{}, err
	}

	return templates.DashboardData{
		Title:    pageTitle,
		Cities:   h.dashboard.Dataset().Cities(),
		Selected: filter.Cities,
		Metrics:  models.Metrics,
		Metric:   filter.Metric,
		Rows:     figures.Rows,
		Signals:  string(signals),
	}, nil
}
