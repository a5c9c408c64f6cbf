package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sandeepkv93/invotrac/internal/client"
	"github.com/sandeepkv93/invotrac/internal/domain"
	"github.com/sandeepkv93/invotrac/internal/observability"
)

var (
	ErrImportEmpty         = errors.New("import file has no header row")
	ErrImportMissingColumn = errors.New("import file is missing a required column")
)

// ProductCreator is the write side the importer needs.
type ProductCreator interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
}

type RowFailure struct {
	Line   int
	ID     string
	Reason string
}

type ImportReport struct {
	Total    int
	Created  int
	Failures []RowFailure
}

type Importer struct {
	creator     ProductCreator
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

// NewImporter paces creates at rps requests per second with at most
// concurrency in flight. A non-positive rps disables pacing.
func NewImporter(creator ProductCreator, rps float64, concurrency int, logger *slog.Logger) *Importer {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		creator:     creator,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: concurrency,
		logger:      logger,
	}
}

type importRow struct {
	line    int
	product domain.Product
}

func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	rows, failures, err := parseImport(r)
	if err != nil {
		return ImportReport{}, err
	}
	for range failures {
		observability.RecordImportRow(ctx, "invalid")
	}
	report := ImportReport{Total: len(rows) + len(failures), Failures: failures}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for _, row := range rows {
		g.Go(func() error {
			if err := im.limiter.Wait(gctx); err != nil {
				return err
			}
			_, err := im.creator.Create(gctx, row.product)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				observability.RecordImportRow(gctx, "failed")
				report.Failures = append(report.Failures, RowFailure{
					Line:   row.line,
					ID:     fmt.Sprint(row.product.ID),
					Reason: client.DetailOf(err, err.Error()),
				})
				return nil
			}
			observability.RecordImportRow(gctx, "created")
			report.Created++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("import interrupted: %w", err)
	}
	slices.SortFunc(report.Failures, func(a, b RowFailure) int { return a.Line - b.Line })
	im.logger.InfoContext(ctx, "product import finished", "total", report.Total, "created", report.Created, "failed", len(report.Failures))
	return report, nil
}

func parseImport(r io.Reader) ([]importRow, []RowFailure, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, ErrImportEmpty
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read import header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	for _, required := range csvHeader {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrImportMissingColumn, required)
		}
	}

	var rows []importRow
	var failures []RowFailure
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read import line %d: %w", line, err)
		}
		field := func(name string) string {
			if i := columns[name]; i < len(record) {
				return record[i]
			}
			return ""
		}
		form := domain.ProductForm{
			ID:          field("id"),
			Name:        field("name"),
			Description: field("description"),
			Price:       field("price"),
			Quantity:    field("quantity"),
		}
		p, err := form.ToProduct()
		if err != nil {
			failures = append(failures, RowFailure{Line: line, ID: strings.TrimSpace(form.ID), Reason: err.Error()})
			continue
		}
		rows = append(rows, importRow{line: line, product: p})
	}
	return rows, failures, nil
}
