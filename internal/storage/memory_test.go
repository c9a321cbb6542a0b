package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/guttosm/tradeflow/internal/domain/models"
)

// storeFactories lets the same contract tests run against every map-backed store.
func storeFactories(t *testing.T) map[string]func() TradeStore {
	t.Helper()
	return map[string]func() TradeStore{
		"memory": func() TradeStore { return NewMemoryTradeStore() },
		"file": func() TradeStore {
			s, err := OpenFileTradeStore(filepath.Join(t.TempDir(), "nested", "trades.json"))
			if err != nil {
				t.Fatalf("open file store: %v", err)
			}
			return s
		},
	}
}

func TestTradeStore_Contract(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore()

			in := sampleTrade()
			if _, err := s.Create(ctx, in); err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, err := s.Create(ctx, in); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("want ErrDuplicate, got %v", err)
			}

			got, err := s.Get(ctx, in.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			// returned copies must not alias the stored record
			got.DocsFiles[0].Name = "changed"
			again, _ := s.Get(ctx, in.ID)
			if again.DocsFiles[0].Name != "bill.pdf" {
				t.Fatalf("store shares memory with callers")
			}

			got, _ = s.Get(ctx, in.ID)
			got.BuyerDepositPaid = true
			updated, err := s.Update(ctx, got)
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Version != got.Version+1 || !updated.BuyerDepositPaid {
				t.Fatalf("unexpected update result: %+v", updated)
			}

			// the pre-update copy is now stale
			if _, err := s.Update(ctx, got); !errors.Is(err, ErrConflict) {
				t.Fatalf("want ErrConflict, got %v", err)
			}

			if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
			ghost := sampleTrade()
			ghost.ID = "ghost"
			if _, err := s.Update(ctx, ghost); !errors.Is(err, ErrNotFound) {
				t.Fatalf("want ErrNotFound on update, got %v", err)
			}
		})
	}
}

func TestTradeStore_ListFilters(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore()

			base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, row := range []struct {
				id, buyer, supplier string
				status              models.Status
			}{
				{"a", "b1", "s1", models.StatusConfirmed},
				{"b", "b2", "s1", models.StatusAwaitingBuyerDeposit},
				{"c", "b1", "s2", models.StatusConfirmed},
			} {
				tr := sampleTrade()
				tr.ID, tr.BuyerID, tr.SupplierID, tr.Status = row.id, row.buyer, row.supplier, row.status
				tr.CreatedAt = base.Add(time.Duration(i) * time.Hour)
				if _, err := s.Create(ctx, tr); err != nil {
					t.Fatalf("create %s: %v", row.id, err)
				}
			}

			cases := []struct {
				name   string
				filter models.TradeFilter
				want   []string
			}{
				{name: "all newest first", filter: models.TradeFilter{}, want: []string{"c", "b", "a"}},
				{name: "by buyer", filter: models.TradeFilter{PartyID: "b1"}, want: []string{"c", "a"}},
				{name: "by supplier", filter: models.TradeFilter{PartyID: "s1"}, want: []string{"b", "a"}},
				{name: "by status", filter: models.TradeFilter{Status: models.StatusConfirmed}, want: []string{"c", "a"}},
				{name: "party and status", filter: models.TradeFilter{PartyID: "s1", Status: models.StatusConfirmed}, want: []string{"a"}},
				{name: "no match", filter: models.TradeFilter{PartyID: "zzz"}, want: nil},
			}
			for _, tc := range cases {
				out, err := s.List(ctx, tc.filter)
				if err != nil {
					t.Fatalf("%s: list: %v", tc.name, err)
				}
				if len(out) != len(tc.want) {
					t.Fatalf("%s: got %d trades, want %d", tc.name, len(out), len(tc.want))
				}
				for i := range out {
					if out[i].ID != tc.want[i] {
						t.Fatalf("%s: position %d got %s want %s", tc.name, i, out[i].ID, tc.want[i])
					}
				}
			}
		})
	}
}

func TestFileTradeStore_ReloadsFromDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trades.json")

	s, err := OpenFileTradeStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Path() != path {
		t.Fatalf("path = %q", s.Path())
	}
	tr := sampleTrade()
	tr.KeyCode = "ABCD2345"
	if _, err := s.Create(ctx, tr); err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened, err := OpenFileTradeStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if !got.Quantity.Equal(tr.Quantity) || got.KeyCode != "ABCD2345" || len(got.DocsFiles) != 1 {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestFileSettingsStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trades.json")
	defaults := models.PlatformSettings{EscrowWallet: "from-config"}

	s, err := OpenFileTradeStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	settings := s.SettingsStore(defaults)
	got, _ := settings.Get(ctx)
	if got.EscrowWallet != "from-config" {
		t.Fatalf("defaults not served before first save: %+v", got)
	}
	if _, err := s.Create(ctx, sampleTrade()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := settings.Save(ctx, models.PlatformSettings{EscrowWallet: "admin-set", FeePercent: sampleTrade().UnitPrice}); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := OpenFileTradeStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err = reopened.SettingsStore(defaults).Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EscrowWallet != "admin-set" || !got.FeePercent.Equal(sampleTrade().UnitPrice) {
		t.Fatalf("settings lost on reopen: %+v", got)
	}
	if _, err := reopened.Get(ctx, sampleTrade().ID); err != nil {
		t.Fatalf("trade lost alongside settings: %v", err)
	}
}

func TestMemorySettingsStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySettingsStore(models.PlatformSettings{EscrowWallet: "w1"})
	got, _ := s.Get(ctx)
	if got.EscrowWallet != "w1" {
		t.Fatalf("unexpected initial settings: %+v", got)
	}
	if err := s.Save(ctx, models.PlatformSettings{EscrowWallet: "w2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = s.Get(ctx)
	if got.EscrowWallet != "w2" {
		t.Fatalf("save not visible: %+v", got)
	}
}
