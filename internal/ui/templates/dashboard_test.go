package templates

import (
	"context"
	"strings"
	"testing"

	"supermarket-dashboard/internal/models"
)

func renderString(t *testing.T, render func(*strings.Builder) error) string {
	t.Helper()
	var sb strings.Builder
	if err := render(&sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func TestDashboard(t *testing.T) {
	data := DashboardData{
		Title:    "Sales <Q1>",
		Cities:   []string{"Yangon", "Mandalay"},
		Selected: []string{"Mandalay"},
		Metrics:  models.Metrics,
		Metric:   models.Rating,
		Rows:     4,
		Signals:  `{"cities":["Mandalay"]}`,
	}
	got := renderString(t, func(sb *strings.Builder) error {
		return Dashboard(data).Render(context.Background(), sb)
	})

	expected := []string{
		"<!doctype html>",
		"<title>Sales &lt;Q1&gt;</title>",
		`data-signals="{&#34;cities&#34;:[&#34;Mandalay&#34;]}"`,
		`value="Yangon">Yangon</label>`,
		`value="Mandalay" checked>Mandalay</label>`,
		`value="Gross income">Gross income</label>`,
		`value="Rating" checked>Rating</label>`,
		`<p id="summary" class="summary">4 sales in 1 cities, Rating</p>`,
		`data-effect="window.renderFigures && window.renderFigures($_figures)"`,
		`<div id="city_fig" class="chart"></div>`,
		`<div id="income_per_product_fig" class="chart wide"></div>`,
		"window.renderFigures = function (figures)",
	}
	for _, content := range expected {
		if !strings.Contains(got, content) {
			t.Errorf("expected dashboard to contain %q", content)
		}
	}
	if strings.Index(got, `id="payment_fig"`) > strings.Index(got, `id="income_per_date_fig"`) {
		t.Error("narrow charts must come before the wide ones")
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		cities int
		want   string
	}{
		{"with rows", 12, 3, `<p id="summary" class="summary">12 sales in 3 cities, Gross income</p>`},
		{"no rows", 0, 0, `<p id="summary" class="summary">0 cities selected</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderString(t, func(sb *strings.Builder) error {
				return Summary(tt.rows, models.GrossIncome, tt.cities).Render(context.Background(), sb)
			})
			if got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpdateError(t *testing.T) {
	got := renderString(t, func(sb *strings.Builder) error {
		return UpdateError(`unsupported metric "<b>"`).Render(context.Background(), sb)
	})
	want := `<p id="summary" class="summary error">unsupported metric &#34;&lt;b&gt;&#34;</p>`
	if got != want {
		t.Errorf("UpdateError() = %q, want %q", got, want)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sb strings.Builder
	if err := Summary(1, models.GrossIncome, 1).Render(ctx, &sb); err == nil {
		t.Error("expected an error for a cancelled context")
	}
	if sb.Len() != 0 {
		t.Errorf("expected nothing written, got %q", sb.String())
	}
}
