package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestDashboard() *services.Dashboard {
	day := func(d int) time.Time { return time.Date(2019, 1, d, 0, 0, 0, 0, time.UTC) }
	sales := []models.Sale{
		{City: "Yangon", Gender: "Female", Payment: "Cash", ProductLine: "Health and beauty", Date: day(1), GrossIncome: 10, Rating: 8},
		{City: "Yangon", Gender: "Male", Payment: "Cash", ProductLine: "Sports and travel", Date: day(2), GrossIncome: 5, Rating: 6},
		{City: "Mandalay", Gender: "Female", Payment: "Ewallet", ProductLine: "Health and beauty", Date: day(1), GrossIncome: 7, Rating: 9},
	}
	return services.NewDashboard(services.NewDataset(sales), testLogger())
}

type figuresResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Metric     string `json:"metric"`
		Rows       int    `json:"rows"`
		Aggregates struct {
			City    models.Aggregate `json:"city"`
			Payment models.Aggregate `json:"payment"`
		} `json:"aggregates"`
		City models.ChartSpec `json:"city"`
	} `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func getFigures(t *testing.T, target string) (*httptest.ResponseRecorder, figuresResponse) {
	t.Helper()
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handlers.HandleFigures(w, req)

	var resp figuresResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return w, resp
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewAPIHandlers(dashboard, testLogger())

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewAPIHandlers() should set dashboard field")
	}
}

func TestAPIHandlers_HandleFigures_DefaultFilter(t *testing.T) {
	w, resp := getFigures(t, "/api/figures")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !resp.Success {
		t.Error("expected success=true in response")
	}
	if resp.Data.Metric != "Gross income" {
		t.Errorf("metric = %q, want Gross income", resp.Data.Metric)
	}
	if resp.Data.Rows != 3 {
		t.Errorf("rows = %d, want 3", resp.Data.Rows)
	}

	city := resp.Data.Aggregates.City.Points
	if len(city) != 2 || city[0].Key[0] != "Yangon" || city[0].Value != 15 || city[1].Key[0] != "Mandalay" || city[1].Value != 7 {
		t.Errorf("unexpected city aggregation: %+v", city)
	}
	if resp.Data.City.Title != "Gross income by City" {
		t.Errorf("city title = %q", resp.Data.City.Title)
	}
}

func TestAPIHandlers_HandleFigures_Filters(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantRows   int
		wantCities []string
		wantMetric string
	}{
		{"single city", "/api/figures?city=Mandalay", 1, []string{"Mandalay"}, "Gross income"},
		{"comma list", "/api/figures?city=Mandalay,Yangon", 3, []string{"Yangon", "Mandalay"}, "Gross income"},
		{"repeated params", "/api/figures?city=Yangon&city=Mandalay&metric=Rating", 3, []string{"Yangon", "Mandalay"}, "Rating"},
		{"no cities", "/api/figures?city=", 0, nil, "Gross income"},
		{"unknown city", "/api/figures?city=Atlantis&metric=rating", 0, nil, "Rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := getFigures(t, tt.target)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if resp.Data.Rows != tt.wantRows {
				t.Errorf("rows = %d, want %d", resp.Data.Rows, tt.wantRows)
			}
			if resp.Data.Metric != tt.wantMetric {
				t.Errorf("metric = %q, want %q", resp.Data.Metric, tt.wantMetric)
			}
			var got []string
			for _, p := range resp.Data.Aggregates.City.Points {
				got = append(got, p.Key[0])
			}
			if len(got) != len(tt.wantCities) {
				t.Fatalf("cities = %v, want %v", got, tt.wantCities)
			}
			for i := range got {
				if got[i] != tt.wantCities[i] {
					t.Errorf("cities = %v, want %v", got, tt.wantCities)
				}
			}
		})
	}
}

func TestAPIHandlers_HandleFigures_InvalidMetric(t *testing.T) {
	w, resp := getFigures(t, "/api/figures?metric=Quantity")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error.Code != "INVALID_METRIC" {
		t.Errorf("error code = %q, want INVALID_METRIC", resp.Error.Code)
	}
}

func TestAPIHandlers_HandleCities(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
	w := httptest.NewRecorder()
	handlers.HandleCities(w, req)

	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
	}

	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0] != "Yangon" || resp.Data[1] != "Mandalay" {
		t.Errorf("cities = %v", resp.Data)
	}
}

func TestAPIHandlers_HandleMetrics(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	handlers.HandleMetrics(w, req)

	var resp struct {
		Data []metricInfo `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	want := []metricInfo{
		{Label: "Gross income", Column: "gross income", Operator: models.Sum},
		{Label: "Rating", Column: "Rating", Operator: models.Mean},
	}
	if len(resp.Data) != len(want) {
		t.Fatalf("metrics = %+v", resp.Data)
	}
	for i := range want {
		if resp.Data[i] != want[i] {
			t.Errorf("metric %d = %+v, want %+v", i, resp.Data[i], want[i])
		}
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatal("expected data field in response")
	}
	if data["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", data["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	handlers.HandleStats(w, req)

	var resp struct {
		Data models.DatasetStats `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if resp.Data.Records != 3 || resp.Data.Cities != 2 || resp.Data.Payments != 2 {
		t.Errorf("unexpected stats: %+v", resp.Data)
	}
}

func TestAPIHandlers_HandleHealth_EmptyDataset(t *testing.T) {
	dashboard := services.NewDashboard(services.NewDataset(nil), testLogger())
	handlers := NewAPIHandlers(dashboard, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handlers.HandleHealth(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}
