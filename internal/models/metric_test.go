package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"Gross income", GrossIncome, false},
		{"gross income", GrossIncome, false},
		{"gross_income", GrossIncome, false},
		{" Rating ", Rating, false},
		{"rating", Rating, false},
		{"Total", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				var unknown *UnknownMetricError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, tt.in, unknown.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricResolution(t *testing.T) {
	assert.Equal(t, "Gross income", GrossIncome.Label())
	assert.Equal(t, "gross income", GrossIncome.Column())
	assert.Equal(t, Sum, GrossIncome.Operator())

	assert.Equal(t, "Rating", Rating.Label())
	assert.Equal(t, "Rating", Rating.Column())
	assert.Equal(t, Mean, Rating.Operator())

	var zero Metric
	assert.False(t, zero.Valid())
	assert.Empty(t, zero.Label())
	assert.Empty(t, string(zero.Operator()))
	assert.Equal(t, "Metric(0)", zero.String())
}

func TestMetricValue(t *testing.T) {
	s := Sale{GrossIncome: 12.5, Rating: 7.1}
	assert.Equal(t, 12.5, GrossIncome.Value(s))
	assert.Equal(t, 7.1, Rating.Value(s))
}

func TestMetricJSON(t *testing.T) {
	data, err := json.Marshal(Filter{Cities: []string{"Yangon"}, Metric: Rating})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cities":["Yangon"],"metric":"Rating"}`, string(data))

	var f Filter
	require.NoError(t, json.Unmarshal([]byte(`{"cities":[],"metric":"Gross income"}`), &f))
	assert.Equal(t, GrossIncome, f.Metric)

	err = json.Unmarshal([]byte(`{"metric":"Quantity"}`), &f)
	assert.Error(t, err)

	_, err = json.Marshal(Metric(9))
	assert.Error(t, err)
}

func TestPointLabel(t *testing.T) {
	assert.Equal(t, "", Point{}.Label())
	assert.Equal(t, "Yangon", Point{Key: []string{"Yangon"}}.Label())
	assert.Equal(t, "Female / Yangon", Point{Key: []string{"Female", "Yangon"}}.Label())
}
