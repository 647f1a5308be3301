package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Metric selects the column an update aggregates and how.
type Metric int

const (
	GrossIncome Metric = iota + 1
	Rating
)

// Operator is the reduction applied to a metric column within a group.
type Operator string

const (
	Sum  Operator = "sum"
	Mean Operator = "mean"
)

// Metrics lists the selectable metrics in display order.
var Metrics = []Metric{GrossIncome, Rating}

// UnknownMetricError reports a metric value outside the supported set.
type UnknownMetricError struct {
	Value string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Value)
}

// ParseMetric maps a UI label or column name to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gross income", "gross_income", "grossincome":
		return GrossIncome, nil
	case "rating":
		return Rating, nil
	}
	return 0, &UnknownMetricError{Value: s}
}

func (m Metric) Valid() bool {
	return m == GrossIncome || m == Rating
}

// Label is the human readable name shown in the selector and chart titles.
func (m Metric) Label() string {
	switch m {
	case GrossIncome:
		return "Gross income"
	case Rating:
		return "Rating"
	}
	return ""
}

// Column is the dataset header the metric reads.
func (m Metric) Column() string {
	switch m {
	case GrossIncome:
		return "gross income"
	case Rating:
		return "Rating"
	}
	return ""
}

func (m Metric) Operator() Operator {
	switch m {
	case GrossIncome:
		return Sum
	case Rating:
		return Mean
	}
	return ""
}

// Value reads the metric's column from a sale.
func (m Metric) Value(s Sale) float64 {
	if m == Rating {
		return s.Rating
	}
	return s.GrossIncome
}

func (m Metric) String() string {
	if l := m.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, &UnknownMetricError{Value: m.String()}
	}
	return json.Marshal(m.Label())
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMetric(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
