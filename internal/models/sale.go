package models

import (
	"strings"
	"time"
)

// Sale is one row of the supermarket sales dataset. Only the columns the
// dashboard reads are kept.
type Sale struct {
	City        string
	Gender      string
	Payment     string
	ProductLine string
	Date        time.Time
	GrossIncome float64
	Rating      float64
}

// Filter is the dashboard's control state, re-supplied on every update.
type Filter struct {
	Cities []string `json:"cities"`
	Metric Metric   `json:"metric"`
}

// Point is one (group key, aggregated value) pair. Key holds one element per
// grouping column.
type Point struct {
	Key   []string `json:"key"`
	Value float64  `json:"value"`
}

func (p Point) Label() string {
	return strings.Join(p.Key, " / ")
}

// Aggregate is an ordered sequence of points for one grouping.
type Aggregate struct {
	GroupBy []string `json:"group_by"`
	Points  []Point  `json:"points"`
}

func (a Aggregate) Len() int {
	return len(a.Points)
}

// Aggregates holds the five groupings an update computes.
type Aggregates struct {
	City        Aggregate `json:"city"`
	Gender      Aggregate `json:"gender"`
	Payment     Aggregate `json:"payment"`
	Date        Aggregate `json:"date"`
	ProductLine Aggregate `json:"product_line"`
}

// Figures is the result of one dashboard update.
type Figures struct {
	Payment     ChartSpec  `json:"payment"`
	ProductLine ChartSpec  `json:"product_line"`
	City        ChartSpec  `json:"city"`
	Date        ChartSpec  `json:"date"`
	Gender      ChartSpec  `json:"gender"`
	Metric      Metric     `json:"metric"`
	Rows        int        `json:"rows"`
	Aggregates  Aggregates `json:"aggregates"`
}

type DatasetStats struct {
	Records      int       `json:"record_count"`
	Cities       int       `json:"cities"`
	Genders      int       `json:"genders"`
	Payments     int       `json:"payments"`
	ProductLines int       `json:"product_lines"`
	FirstDate    time.Time `json:"first_date"`
	LastDate     time.Time `json:"last_date"`
	LoadedAt     time.Time `json:"loaded_at"`
}
