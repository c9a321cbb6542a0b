package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/shopspring/decimal"
)

// expectedHeaders enforces strict column ordering for trade import files.
// If the header doesn't match EXACTLY (order + count), the file is rejected.
var expectedHeaders = []string{
	"commodity",
	"quantity",
	"unit_price",
	"buyer_id",
	"supplier_id",
	"creator_role",
	"deposit_pct",
	"finance_pct",
	"insurance_applied",
}

// FileResult counts what happened to the rows of one file.
type FileResult struct {
	Imported int
	Rejected int
}

// importFile opens, validates and parses one file, creating a trade per row.
//
// It fails the whole file on:
//   - header not matching expected order/length
//   - a row with the wrong column count or an unparsable cell
//   - unrecoverable I/O errors or an infrastructure error from the creator
//
// Rows the lifecycle rejects as invalid or forbidden (same buyer and
// supplier, percentages not summing to 100) are logged and counted as
// rejected; the rest of the file still imports.
func importFile(ctx context.Context, path string, creator TradeCreator, caller models.Caller) (FileResult, error) {
	var res FileResult

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.Comment = '#'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return res, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) != expectedHeaders[i] {
			return res, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return res, fmt.Errorf("read line after %d: %w", line, err)
		}
		line++

		if len(rec) != len(expectedHeaders) {
			return res, fmt.Errorf("invalid column count on line %d: expected %d got %d", line, len(expectedHeaders), len(rec))
		}
		p, err := recordToParams(rec)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		if _, err := creator.CreateTrade(ctx, caller, p); err != nil {
			switch lifecycle.Kind(err) {
			case lifecycle.ErrValidation, lifecycle.ErrForbidden:
				log.Warn().Str("file", path).Int("line", line).Err(err).Msg("row rejected")
				res.Rejected++
				continue
			}
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Imported++
	}

	return res, nil
}

// recordToParams converts one record (length already checked) into
// lifecycle.CreateParams. Amounts accept a comma as decimal separator.
// Range checks are left to the lifecycle service.
//
// Column order:
//
//	0 commodity          → Commodity
//	1 quantity           → Quantity (decimal)
//	2 unit_price         → UnitPrice (decimal)
//	3 buyer_id           → BuyerID
//	4 supplier_id        → SupplierID
//	5 creator_role       → CreatorRole ("buyer" | "supplier")
//	6 deposit_pct        → DepositPct (int)
//	7 finance_pct        → FinancePct (int)
//	8 insurance_applied  → InsuranceApplied (bool, empty → false)
func recordToParams(rec []string) (lifecycle.CreateParams, error) {
	var p lifecycle.CreateParams

	p.Commodity = strings.TrimSpace(rec[0])

	qty, err := parseAmount(rec[1])
	if err != nil {
		return p, fmt.Errorf("invalid quantity: %w", err)
	}
	p.Quantity = qty

	price, err := parseAmount(rec[2])
	if err != nil {
		return p, fmt.Errorf("invalid unit_price: %w", err)
	}
	p.UnitPrice = price

	p.BuyerID = strings.TrimSpace(rec[3])
	p.SupplierID = strings.TrimSpace(rec[4])
	p.CreatorRole = models.Role(strings.ToLower(strings.TrimSpace(rec[5])))

	if p.DepositPct, err = strconv.Atoi(strings.TrimSpace(rec[6])); err != nil {
		return p, fmt.Errorf("invalid deposit_pct: %w", err)
	}
	if p.FinancePct, err = strconv.Atoi(strings.TrimSpace(rec[7])); err != nil {
		return p, fmt.Errorf("invalid finance_pct: %w", err)
	}

	if s := strings.TrimSpace(rec[8]); s != "" {
		if p.InsuranceApplied, err = strconv.ParseBool(s); err != nil {
			return p, fmt.Errorf("invalid insurance_applied: %w", err)
		}
	}

	return p, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, errors.New("empty")
	}
	return decimal.NewFromString(s)
}
