package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"supermarket-dashboard/internal/models"
)

const (
	chartKindBar     = "bar"
	orientVertical   = "v"
	orientHorizontal = "h"
	barModeGroup     = "group"
	barModeRelative  = "relative"
	orderTotalAsc    = "total ascending"
	transparent      = "rgba(0,0,0,0)"
	currencyPrefix   = "R$ "

	// smallest float64 exponent; no finite value needs more digits
	exactFloatExponent = -1074
)

// hiddenAxis drops the title, gridlines and tick labels.
func hiddenAxis() models.Axis {
	return models.Axis{}
}

func baseChart(metric models.Metric, title string) models.ChartSpec {
	return models.ChartSpec{
		Kind:        chartKindBar,
		Orientation: orientVertical,
		Title:       fmt.Sprintf("%s by %s", metric.Label(), title),
		Rows:        []models.ChartRow{},
		XAxis:       models.DefaultAxis(),
		YAxis:       models.DefaultAxis(),
	}
}

// CityChart draws one vertical bar per city with the value axis hidden.
func CityChart(agg models.Aggregate, metric models.Metric) models.ChartSpec {
	spec := baseChart(metric, "City")
	spec.X = ColumnCity
	spec.Y = metric.Column()
	spec.Color = ColumnCity
	spec.TextAuto = true
	spec.XAxis.ShowTitle = false
	spec.YAxis = hiddenAxis()

	for _, p := range agg.Points {
		spec.Rows = append(spec.Rows, models.ChartRow{X: p.Key[0], Y: p.Value, Color: p.Key[0]})
	}
	return spec
}

// PaymentChart draws horizontal bars per payment method, smallest total at
// the bottom of the category axis.
func PaymentChart(agg models.Aggregate, metric models.Metric) models.ChartSpec {
	spec := baseChart(metric, "Payment Type")
	spec.Orientation = orientHorizontal
	spec.X = metric.Column()
	spec.Y = ColumnPayment
	spec.Color = ColumnPayment
	spec.TextAuto = true
	spec.PlotBackground = transparent
	spec.XAxis = hiddenAxis()
	spec.YAxis.ShowTitle = false
	spec.YAxis.CategoryOrder = orderTotalAsc
	spec.YAxis.Ticks = "outside"

	for _, p := range agg.Points {
		spec.Rows = append(spec.Rows, models.ChartRow{X: p.Value, Y: p.Key[0], Color: p.Key[0]})
	}
	return spec
}

// GenderChart groups bars by gender with one sub-bar per city.
func GenderChart(agg models.Aggregate, metric models.Metric) models.ChartSpec {
	spec := baseChart(metric, "Gender")
	spec.X = ColumnGender
	spec.Y = metric.Column()
	spec.Color = ColumnCity
	spec.BarMode = barModeGroup
	spec.TextAuto = true
	spec.YAxis = hiddenAxis()

	for _, p := range agg.Points {
		spec.Rows = append(spec.Rows, models.ChartRow{X: p.Key[0], Y: p.Value, Color: p.Key[1]})
	}
	return spec
}

// DateChart keeps the aggregate's order, which is by value rather than by
// date.
func DateChart(agg models.Aggregate, metric models.Metric) models.ChartSpec {
	spec := baseChart(metric, "Date")
	spec.X = ColumnDate
	spec.Y = metric.Column()
	spec.BarMode = barModeRelative
	spec.YAxis = hiddenAxis()

	for _, p := range agg.Points {
		spec.Rows = append(spec.Rows, models.ChartRow{X: p.Key[0], Y: p.Value})
	}
	return spec
}

// ProductLineChart draws horizontal bars per product line colored by city,
// labelled as currency.
func ProductLineChart(agg models.Aggregate, metric models.Metric) models.ChartSpec {
	spec := baseChart(metric, "Product line")
	spec.Orientation = orientHorizontal
	spec.X = metric.Column()
	spec.Y = ColumnProductLine
	spec.Color = ColumnCity
	spec.BarMode = barModeRelative
	spec.XAxis = hiddenAxis()
	spec.YAxis = models.Axis{ShowTickLabels: true, CategoryOrder: orderTotalAsc}
	spec.Margin = &models.Margin{Top: 40, Bottom: 20, Left: 0, Right: 0}

	for _, p := range agg.Points {
		spec.Rows = append(spec.Rows, models.ChartRow{
			X:     p.Value,
			Y:     p.Key[0],
			Color: p.Key[1],
			Text:  CurrencyLabel(p.Value),
		})
	}
	return spec
}

// CurrencyLabel formats a value as "R$ 1234.57". The float is expanded to its
// exact binary value before rounding half to even, so labels agree with %.2f.
func CurrencyLabel(v float64) string {
	return currencyPrefix + decimal.NewFromFloatWithExponent(v, exactFloatExponent).RoundBank(2).StringFixed(2)
}
