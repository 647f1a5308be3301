package templates

import (
	"fmt"

	"supermarket-dashboard/internal/models"
)

// DashboardData is the initial state the page is rendered with. Signals is
// the JSON object seeded into Datastar, figures included, so the first paint
// needs no round trip.
type DashboardData struct {
	Title    string
	Cities   []string
	Selected []string
	Metrics  []models.Metric
	Metric   models.Metric
	Rows     int
	Signals  string
}

// chart slots in screen order: three side by side, then two full width
var chartSlots = []struct {
	ID   string
	Wide bool
}{
	{"city_fig", false},
	{"gender_fig", false},
	{"payment_fig", false},
	{"income_per_date_fig", true},
	{"income_per_product_fig", true},
}

func summaryText(rows int, metric models.Metric, cities int) string {
	if rows == 0 {
		return fmt.Sprintf("%d cities selected", cities)
	}
	return fmt.Sprintf("%d sales in %d cities, %s", rows, cities, metric.Label())
}
