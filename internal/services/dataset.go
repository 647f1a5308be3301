package services

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
)

const (
	batchSize    = 256
	maxWorkers   = 8
	cacheVersion = "v2"
)

// Column headers the loader requires. Matching is case-insensitive.
const (
	ColumnCity        = "City"
	ColumnGender      = "Gender"
	ColumnPayment     = "Payment"
	ColumnProductLine = "Product line"
	ColumnDate        = "Date"
	ColumnGrossIncome = "gross income"
	ColumnRating      = "Rating"
)

var requiredColumns = []string{
	ColumnCity,
	ColumnGender,
	ColumnPayment,
	ColumnProductLine,
	ColumnDate,
	ColumnGrossIncome,
	ColumnRating,
}

var dateLayouts = []string{"1/2/2006", "2006-01-02"}

// Dataset is the in-memory sales table. It is never mutated after
// construction, so concurrent readers need no locking.
type Dataset struct {
	sales    []models.Sale
	cities   []string
	loadedAt time.Time
}

// NewDataset builds a dataset from already parsed rows. The slice is copied.
func NewDataset(sales []models.Sale) *Dataset {
	d := &Dataset{
		sales:    make([]models.Sale, len(sales)),
		loadedAt: time.Now().UTC(),
	}
	copy(d.sales, sales)
	d.cities = distinct(d.sales, func(s models.Sale) string { return s.City })
	return d
}

func (d *Dataset) Len() int {
	return len(d.sales)
}

// Sales returns a copy of the rows in source order.
func (d *Dataset) Sales() []models.Sale {
	out := make([]models.Sale, len(d.sales))
	copy(out, d.sales)
	return out
}

// Cities returns the distinct cities in order of first appearance.
func (d *Dataset) Cities() []string {
	out := make([]string, len(d.cities))
	copy(out, d.cities)
	return out
}

func (d *Dataset) Stats() models.DatasetStats {
	stats := models.DatasetStats{
		Records:      len(d.sales),
		Cities:       len(d.cities),
		Genders:      len(distinct(d.sales, func(s models.Sale) string { return s.Gender })),
		Payments:     len(distinct(d.sales, func(s models.Sale) string { return s.Payment })),
		ProductLines: len(distinct(d.sales, func(s models.Sale) string { return s.ProductLine })),
		LoadedAt:     d.loadedAt,
	}
	for i, s := range d.sales {
		if i == 0 || s.Date.Before(stats.FirstDate) {
			stats.FirstDate = s.Date
		}
		if i == 0 || s.Date.After(stats.LastDate) {
			stats.LastDate = s.Date
		}
	}
	return stats
}

func distinct(sales []models.Sale, key func(models.Sale) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range sales {
		k := key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Loader reads the sales CSV once at startup.
type Loader struct {
	cacheDir string
	logger   *slog.Logger
}

// NewLoader returns a loader. An empty cacheDir disables the parsed-row cache.
func NewLoader(logger *slog.Logger, cacheDir string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cacheDir: cacheDir, logger: logger}
}

// Load parses the CSV at path. Every failure is a DataLoad error.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.DataLoad(err, fmt.Sprintf("dataset %s not found", path))
	}

	if cached, err := l.loadFromCache(path); err == nil {
		if cached.matches(info) {
			l.logger.Info("loaded dataset from cache", "path", path, "records", len(cached.Sales))
			return NewDataset(cached.Sales), nil
		}
	}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.DataLoad(err, fmt.Sprintf("open dataset %s", path))
	}
	defer f.Close()

	sales, err := ParseSales(ctx, f)
	if err != nil {
		return nil, err
	}

	if err := l.saveToCache(path, info, sales); err != nil {
		l.logger.Warn("failed to save dataset cache", "error", err)
	}

	l.logger.Info("dataset parsed",
		"path", path,
		"records", len(sales),
		"duration", time.Since(start),
	)
	return NewDataset(sales), nil
}

// ParseSales reads a header row followed by sales rows. Rows are parsed in
// parallel batches; the returned slice keeps source order.
func ParseSales(ctx context.Context, r io.Reader) ([]models.Sale, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.DataLoad(err, "dataset is empty")
	}
	if err != nil {
		return nil, apperrors.DataLoad(err, "read dataset header")
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.DataLoad(err, "read dataset rows")
	}

	sales := make([]models.Sale, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				sale, err := parseSale(rows[i], index)
				if err != nil {
					// header is line 1
					return apperrors.DataLoad(err, fmt.Sprintf("parse dataset line %d", i+2))
				}
				sales[i] = sale
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if apperrors.IsDataLoad(err) {
			return nil, err
		}
		return nil, apperrors.DataLoad(err, "parse dataset")
	}

	return sales, nil
}

type columns map[string]int

func columnIndex(header []string) (columns, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := byName[name]; !dup {
			byName[name] = i
		}
	}

	index := make(columns, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i, ok := byName[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, apperrors.DataLoad(
			fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")),
			"dataset header does not match the sales schema",
		)
	}
	return index, nil
}

func parseSale(record []string, index columns) (models.Sale, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[index[col]])
	}

	date, err := parseDate(field(ColumnDate))
	if err != nil {
		return models.Sale{}, err
	}

	income, err := strconv.ParseFloat(field(ColumnGrossIncome), 64)
	if err != nil {
		return models.Sale{}, fmt.Errorf("gross income: %w", err)
	}

	rating, err := strconv.ParseFloat(field(ColumnRating), 64)
	if err != nil {
		return models.Sale{}, fmt.Errorf("rating: %w", err)
	}

	return models.Sale{
		City:        field(ColumnCity),
		Gender:      field(ColumnGender),
		Payment:     field(ColumnPayment),
		ProductLine: field(ColumnProductLine),
		Date:        date,
		GrossIncome: income,
		Rating:      rating,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q does not match %s", s, strings.Join(dateLayouts, " or "))
}

// Cache management

// cachedDataset records the size and mtime of the CSV it was parsed from. A
// cache entry is only used while both still match the file on disk.
type cachedDataset struct {
	Version       string
	SourceSize    int64
	SourceModTime time.Time
	Sales         []models.Sale
}

func (c *cachedDataset) matches(info os.FileInfo) bool {
	return c.SourceSize == info.Size() && c.SourceModTime.Equal(info.ModTime())
}

func (l *Loader) cacheFilename(csvPath string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(csvPath)
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Loader) saveToCache(csvPath string, source os.FileInfo, sales []models.Sale) error {
	if l.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedDataset{
		Version:       cacheVersion,
		SourceSize:    source.Size(),
		SourceModTime: source.ModTime(),
		Sales:         sales,
	})
}

func (l *Loader) loadFromCache(csvPath string) (*cachedDataset, error) {
	if l.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(l.cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedDataset
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	if data.Version != cacheVersion {
		return nil, fmt.Errorf("cache version %q, want %q", data.Version, cacheVersion)
	}
	return &data, nil
}
