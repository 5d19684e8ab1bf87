// Package importer loads catalog data from CSV files, the formats the
// distributor's shops already export.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

// Service imports products, lots and monthly sales. Lot and sales rows
// reference products by SKU.
type Service struct {
	products repository.ProductRepository
	lots     repository.LotRepository
	sales    repository.SalesRepository
}

func NewService(products repository.ProductRepository, lots repository.LotRepository, sales repository.SalesRepository) *Service {
	return &Service{products: products, lots: lots, sales: sales}
}

// Result summarizes one import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (r *Result) skip(line int, format string, args ...interface{}) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

// header column sets, by position:
//
//	products: name,sku,category,pack_size,lead_time_days,moq,unit_cost,shelf_life_days
//	lots:     sku,lot_number,status,quantity_remaining,received_qty,received_date,expiry_date
//	sales:    sku,month,quantity_sold
const (
	productColumns = 8
	lotColumns     = 7
	salesColumns   = 3
)

func readRows(r io.Reader, want int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = want
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	// Drop the header row.
	return rows[1:], nil
}

func (s *Service) ImportProducts(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := readRows(r, productColumns)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		line := i + 2
		packSize, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			result.skip(line, "invalid pack_size %q", row[3])
			continue
		}
		leadTime, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			result.skip(line, "invalid lead_time_days %q", row[4])
			continue
		}
		moq, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			result.skip(line, "invalid moq %q", row[5])
			continue
		}
		unitCost, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			result.skip(line, "invalid unit_cost %q", row[6])
			continue
		}
		shelfLife := 0
		if v := strings.TrimSpace(row[7]); v != "" {
			shelfLife, err = strconv.Atoi(v)
			if err != nil {
				result.skip(line, "invalid shelf_life_days %q", row[7])
				continue
			}
		}

		product := domain.Product{
			Name:          strings.TrimSpace(row[0]),
			SKU:           strings.TrimSpace(row[1]),
			Category:      strings.TrimSpace(row[2]),
			PackSize:      packSize,
			LeadTimeDays:  leadTime,
			MOQ:           moq,
			UnitCost:      unitCost,
			ShelfLifeDays: shelfLife,
		}
		if product.SKU == "" {
			result.skip(line, "missing sku")
			continue
		}

		if err := s.products.Create(ctx, &product); err != nil {
			result.skip(line, "create failed: %v", err)
			continue
		}
		result.Imported++
	}

	log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("importer: products done")
	return result, nil
}

func (s *Service) ImportLots(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := readRows(r, lotColumns)
	if err != nil {
		return nil, err
	}

	bySKU, err := s.productsBySKU(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		line := i + 2
		product, ok := bySKU[strings.TrimSpace(row[0])]
		if !ok {
			result.skip(line, "unknown sku %q", row[0])
			continue
		}
		status, ok := domain.ParseLotStatus(row[2])
		if !ok {
			result.skip(line, "invalid status %q", row[2])
			continue
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			result.skip(line, "invalid quantity_remaining %q", row[3])
			continue
		}
		received, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			result.skip(line, "invalid received_qty %q", row[4])
			continue
		}
		receivedDate, err := parseOptionalDate(row[5])
		if err != nil {
			result.skip(line, "invalid received_date %q", row[5])
			continue
		}
		expiryDate, err := parseOptionalDate(row[6])
		if err != nil {
			result.skip(line, "invalid expiry_date %q", row[6])
			continue
		}

		lot := domain.Lot{
			ProductID:         product.ID,
			LotNumber:         strings.TrimSpace(row[1]),
			Status:            status,
			QuantityRemaining: qty,
			ReceivedQty:       received,
			ReceivedDate:      receivedDate,
			ExpiryDate:        expiryDate,
		}
		if err := s.lots.Create(ctx, &lot); err != nil {
			result.skip(line, "create failed: %v", err)
			continue
		}
		result.Imported++
	}

	log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("importer: lots done")
	return result, nil
}

func (s *Service) ImportSales(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := readRows(r, salesColumns)
	if err != nil {
		return nil, err
	}

	bySKU, err := s.productsBySKU(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		line := i + 2
		product, ok := bySKU[strings.TrimSpace(row[0])]
		if !ok {
			result.skip(line, "unknown sku %q", row[0])
			continue
		}
		month := strings.TrimSpace(row[1])
		if _, err := time.Parse("2006-01", month); err != nil {
			result.skip(line, "invalid month %q", row[1])
			continue
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			result.skip(line, "invalid quantity_sold %q", row[2])
			continue
		}

		record := domain.SalesRecord{ProductID: product.ID, Month: month, QuantitySold: qty}
		if err := s.sales.Upsert(ctx, &record); err != nil {
			result.skip(line, "upsert failed: %v", err)
			continue
		}
		result.Imported++
	}

	log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("importer: sales done")
	return result, nil
}

func (s *Service) productsBySKU(ctx context.Context) (map[string]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	bySKU := make(map[string]domain.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}
	return bySKU, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
