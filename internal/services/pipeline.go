package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	apperrors "supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/observability"
)

const dateKeyLayout = "2006-01-02"

// Dashboard recomputes the five charts from the loaded dataset on every
// update. It keeps no state between calls.
type Dashboard struct {
	dataset *Dataset
	logger  *slog.Logger
}

func NewDashboard(dataset *Dataset, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{dataset: dataset, logger: logger}
}

func (d *Dashboard) Dataset() *Dataset {
	return d.dataset
}

// DefaultFilter is the initial control state: every city, gross income.
func (d *Dashboard) DefaultFilter() models.Filter {
	return models.Filter{Cities: d.dataset.Cities(), Metric: models.GrossIncome}
}

// Update filters the dataset by city, aggregates it five ways with the
// selected metric and returns a chart spec per aggregation.
func (d *Dashboard) Update(ctx context.Context, filter models.Filter) (*models.Figures, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.update")

	if !filter.Metric.Valid() {
		err := apperrors.InvalidMetric(filter.Metric.String())
		span.SetError(err)
		span.Finish()
		d.logger.WarnContext(ctx, "dashboard update rejected", "span", span)
		return nil, err
	}
	span.SetAttr("metric", filter.Metric.Label())
	span.SetAttr("cities", len(filter.Cities))

	rows := FilterByCity(d.dataset.sales, filter.Cities)
	aggs := Aggregate(rows, filter.Metric)

	figures := &models.Figures{
		Payment:     PaymentChart(aggs.Payment, filter.Metric),
		ProductLine: ProductLineChart(aggs.ProductLine, filter.Metric),
		City:        CityChart(aggs.City, filter.Metric),
		Date:        DateChart(aggs.Date, filter.Metric),
		Gender:      GenderChart(aggs.Gender, filter.Metric),
		Metric:      filter.Metric,
		Rows:        len(rows),
		Aggregates:  aggs,
	}

	span.SetAttr("rows", len(rows))
	span.Finish()
	d.logger.DebugContext(ctx, "dashboard updated", "span", span)
	return figures, nil
}

// FilterByCity keeps the sales whose city is selected, in source order.
func FilterByCity(sales []models.Sale, cities []string) []models.Sale {
	if len(cities) == 0 {
		return nil
	}
	selected := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		selected[c] = struct{}{}
	}

	var out []models.Sale
	for _, s := range sales {
		if _, ok := selected[s.City]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Aggregate computes the five groupings over already filtered rows.
func Aggregate(sales []models.Sale, metric models.Metric) models.Aggregates {
	date := GroupBy(sales, metric, []string{ColumnDate}, func(s models.Sale) []string {
		return []string{s.Date.Format(dateKeyLayout)}
	})
	SortByValueDesc(date.Points)

	product := GroupBy(sales, metric, []string{ColumnProductLine, ColumnCity}, func(s models.Sale) []string {
		return []string{s.ProductLine, s.City}
	})
	SortByValueDesc(product.Points)

	return models.Aggregates{
		City: GroupBy(sales, metric, []string{ColumnCity}, func(s models.Sale) []string {
			return []string{s.City}
		}),
		Gender: GroupBy(sales, metric, []string{ColumnGender, ColumnCity}, func(s models.Sale) []string {
			return []string{s.Gender, s.City}
		}),
		Payment: GroupBy(sales, metric, []string{ColumnPayment}, func(s models.Sale) []string {
			return []string{s.Payment}
		}),
		Date:        date,
		ProductLine: product,
	}
}

type accumulator struct {
	key   []string
	sum   float64
	count int
}

// GroupBy reduces sales sharing a key with the metric's operator. Groups are
// emitted in order of first appearance; only keys present in sales appear.
func GroupBy(sales []models.Sale, metric models.Metric, groupBy []string, key func(models.Sale) []string) models.Aggregate {
	index := make(map[string]int)
	var groups []*accumulator

	for _, s := range sales {
		k := key(s)
		id := compositeKey(k)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, &accumulator{key: k})
		}
		groups[i].sum += metric.Value(s)
		groups[i].count++
	}

	points := make([]models.Point, 0, len(groups))
	for _, g := range groups {
		value := g.sum
		if metric.Operator() == models.Mean {
			value = g.sum / float64(g.count)
		}
		points = append(points, models.Point{Key: g.key, Value: value})
	}

	return models.Aggregate{GroupBy: groupBy, Points: points}
}

// SortByValueDesc orders points by descending value. Ties keep their
// first-appearance order.
func SortByValueDesc(points []models.Point) {
	slices.SortStableFunc(points, func(a, b models.Point) int {
		return cmp.Compare(b.Value, a.Value)
	})
}

func compositeKey(parts []string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = append(buf, p...)
		buf = append(buf, 0)
	}
	return string(buf)
}
