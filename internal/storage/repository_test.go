package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/jmoiron/sqlx"
	pq "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var rowColumns = []string{
	"id", "commodity", "quantity", "unit_price", "buyer_id", "supplier_id", "creator_role",
	"deposit_pct", "finance_pct", "insurance_applied", "status",
	"buyer_deposit_paid", "supplier_confirmed", "docs_verified", "final_paid", "released",
	"docs_files", "key_code", "version", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*postgresTradeStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	store := &postgresTradeStore{db: sqlx.NewDb(db, "postgres")}
	return store, mock, func() { _ = db.Close() }
}

func sampleTrade() *models.Trade {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	return &models.Trade{
		ID:          "t-1",
		Commodity:   "cocoa",
		Quantity:    decimal.NewFromInt(100),
		UnitPrice:   decimal.RequireFromString("7.5"),
		BuyerID:     "buyer",
		SupplierID:  "supplier",
		CreatorRole: models.RoleBuyer,
		DepositPct:  30,
		FinancePct:  70,
		Status:      models.StatusAwaitingDepositAndConfirm,
		DocsFiles:   []models.Document{{ID: "d1", Name: "bill.pdf", Provider: "dhl"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func addRow(rows *sqlmock.Rows, tr *models.Trade) *sqlmock.Rows {
	return rows.AddRow(
		tr.ID, tr.Commodity, tr.Quantity.String(), tr.UnitPrice.String(), tr.BuyerID, tr.SupplierID, string(tr.CreatorRole),
		tr.DepositPct, tr.FinancePct, tr.InsuranceApplied, string(tr.Status),
		tr.BuyerDepositPaid, tr.SupplierConfirmed, tr.DocsVerified, tr.FinalPaid, tr.Released,
		[]byte(`[{"id":"d1","name":"bill.pdf","provider":"dhl","uploaded_at":"0001-01-01T00:00:00Z"}]`),
		tr.KeyCode, tr.Version, tr.CreatedAt, tr.UpdatedAt,
	)
}

func TestPostgresTradeStore_Create(t *testing.T) {
	cases := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "ok"},
		{name: "duplicate", execErr: &pq.Error{Code: "23505"}, wantErr: ErrDuplicate},
		{name: "driver error", execErr: errors.New("boom")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock, done := newMockStore(t)
			defer done()

			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trades"))
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			out, err := store.Create(context.Background(), sampleTrade())
			switch {
			case tc.execErr == nil:
				if err != nil || out == nil || out.ID != "t-1" {
					t.Fatalf("unexpected out=%+v err=%v", out, err)
				}
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
			default:
				if err == nil {
					t.Fatalf("expected error")
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresTradeStore_Get(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	query := regexp.QuoteMeta("FROM trades WHERE id = $1")
	mock.ExpectQuery(query).WithArgs("t-1").WillReturnRows(addRow(sqlmock.NewRows(rowColumns), sampleTrade()))
	mock.ExpectQuery(query).WithArgs("missing").WillReturnRows(sqlmock.NewRows(rowColumns))

	got, err := store.Get(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Commodity != "cocoa" || !got.UnitPrice.Equal(decimal.RequireFromString("7.5")) || got.Status != models.StatusAwaitingDepositAndConfirm {
		t.Fatalf("unexpected trade: %+v", got)
	}
	if len(got.DocsFiles) != 1 || got.DocsFiles[0].Provider != "dhl" {
		t.Fatalf("documents not decoded: %+v", got.DocsFiles)
	}

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresTradeStore_Update(t *testing.T) {
	update := regexp.QuoteMeta("UPDATE trades SET")
	exists := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM trades WHERE id = $1)")

	cases := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "ok",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "stale version",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(exists).WithArgs("t-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: ErrConflict,
		},
		{
			name: "missing row",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(exists).WithArgs("t-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: ErrNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock, done := newMockStore(t)
			defer done()
			tc.setup(mock)

			in := sampleTrade()
			in.Version = 3
			out, err := store.Update(context.Background(), in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
			} else {
				if err != nil || out.Version != 4 {
					t.Fatalf("unexpected out=%+v err=%v", out, err)
				}
				if in.Version != 3 {
					t.Fatalf("input mutated: version=%d", in.Version)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresTradeStore_List(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	rows := sqlmock.NewRows(rowColumns)
	addRow(rows, sampleTrade())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("buyer", "").
		WillReturnRows(rows)

	out, err := store.List(context.Background(), models.TradeFilter{PartyID: "buyer"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].ID != "t-1" {
		t.Fatalf("unexpected list: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
