package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/shopspring/decimal"
)

const header = "commodity;quantity;unit_price;buyer_id;supplier_id;creator_role;deposit_pct;finance_pct;insurance_applied\n"

var admin = models.Caller{ID: "importer", Admin: true}

type fakeCreator struct {
	mu      sync.Mutex
	created []lifecycle.CreateParams
	err     error
}

func (f *fakeCreator) CreateTrade(_ context.Context, _ models.Caller, p lifecycle.CreateParams) (*models.Trade, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p.BuyerID == p.SupplierID {
		return nil, lifecycle.ErrValidation
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return &models.Trade{ID: p.BuyerID}, nil
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return p
}

func TestImportFile_TableDriven(t *testing.T) {
	dir := t.TempDir()
	validRow := "cocoa;100;7,5;B;S;supplier;30;70;true\n"

	cases := []struct {
		name         string
		content      string
		creatorErr   error
		wantErr      bool
		wantImported int
		wantRejected int
	}{
		{name: "ok single row", content: header + validRow, wantImported: 1},
		{name: "comment and blank insurance", content: header + "# seed\n" + "coffee;10;2.25;B;S;buyer;40;60;\n", wantImported: 1},
		{name: "bad header order", content: "quantity;commodity\n", wantErr: true},
		{name: "bad col count", content: header + "a;b\n", wantErr: true},
		{name: "invalid price", content: header + "cocoa;100;abc;B;S;buyer;30;70;true\n", wantErr: true},
		{name: "invalid pct", content: header + "cocoa;100;1;B;S;buyer;x;70;true\n", wantErr: true},
		{name: "lifecycle rejection counted", content: header + validRow + "cocoa;1;1;B;B;buyer;30;70;false\n", wantImported: 1, wantRejected: 1},
		{name: "infrastructure error aborts", content: header + validRow, creatorErr: errors.New("store down"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, dir, "file.csv", tc.content)
			c := &fakeCreator{err: tc.creatorErr}
			res, err := importFile(context.Background(), path, c, admin)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Imported != tc.wantImported || res.Rejected != tc.wantRejected {
				t.Fatalf("got %+v, want imported=%d rejected=%d", res, tc.wantImported, tc.wantRejected)
			}
		})
	}
}

func TestRecordToParams(t *testing.T) {
	p, err := recordToParams([]string{" cocoa ", "100", "7,5", "B", "S", "Supplier", "30", "70", "TRUE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Commodity != "cocoa" || p.CreatorRole != models.RoleSupplier || !p.InsuranceApplied {
		t.Fatalf("unexpected %+v", p)
	}
	if !p.UnitPrice.Equal(decimal.RequireFromString("7.5")) || !p.Quantity.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("amounts: qty=%s price=%s", p.Quantity, p.UnitPrice)
	}
	if p.DepositPct != 30 || p.FinancePct != 70 {
		t.Fatalf("pcts: %d/%d", p.DepositPct, p.FinancePct)
	}

	if _, err := recordToParams([]string{"cocoa", "", "1", "B", "S", "buyer", "30", "70", ""}); err == nil {
		t.Fatalf("empty quantity should fail")
	}
	if _, err := recordToParams([]string{"cocoa", "1", "1", "B", "S", "buyer", "30", "70", "maybe"}); err == nil {
		t.Fatalf("bad bool should fail")
	}
}

func TestImportFile_ContextCancelled(t *testing.T) {
	path := writeTempFile(t, t.TempDir(), "file.csv", header+"cocoa;1;1;B;S;buyer;30;70;true\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := importFile(ctx, path, &fakeCreator{}, admin); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
