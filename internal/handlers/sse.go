package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
	"supermarket-dashboard/internal/ui/templates"
)

// Signals are the controls Datastar sends with every /sse/update request.
type Signals struct {
	Cities []string `json:"cities"`
	Metric string   `json:"metric"`
}

// figuresSignal holds the chart specs. The leading underscore makes it a
// local signal, so the browser never sends it back.
const figuresSignal = "_figures"

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleUpdate recomputes the figures for the page's current controls and
// patches them back as signals, along with a fresh summary line.
func (h *SSEHandlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(r.Context(), w, h.logger, errors.BadRequestWrap(err, "invalid signals"))
		return
	}

	sse := datastar.NewSSE(w, r)

	metric, err := models.ParseMetric(signals.Metric)
	if err != nil {
		h.patchError(sse, r, errors.InvalidMetric(signals.Metric), fmt.Sprintf("unsupported metric %q", signals.Metric))
		return
	}

	figures, err := h.dashboard.Update(r.Context(), models.Filter{Cities: signals.Cities, Metric: metric})
	if err != nil {
		h.patchError(sse, r, err, "update failed")
		return
	}

	jsonData, err := json.Marshal(map[string]any{
		figuresSignal: figures,
	})
	if err != nil {
		h.logger.Error("marshal figures", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Error("patch figures", "error", err)
		return
	}

	var summary strings.Builder
	if err := templates.Summary(figures.Rows, metric, len(signals.Cities)).Render(r.Context(), &summary); err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}
	if err := sse.PatchElements(summary.String()); err != nil {
		h.logger.Error("patch summary", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, r *http.Request, err error, message string) {
	h.logger.Warn("dashboard update failed", "error", err)

	var buf strings.Builder
	if renderErr := templates.UpdateError(message).Render(r.Context(), &buf); renderErr != nil {
		h.logger.Error("render update error", "error", renderErr)
		return
	}
	if patchErr := sse.PatchElements(buf.String()); patchErr != nil {
		h.logger.Error("patch update error", "error", patchErr)
	}
}
