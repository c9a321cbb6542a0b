package ingestion

import (
	"context"
	"testing"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/guttosm/tradeflow/internal/storage"
	"github.com/shopspring/decimal"
)

func TestImportDirectory_AllFiles(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "a.csv", header+"cocoa;100;7.5;B;S;supplier;30;70;true\n")
	writeTempFile(t, dir, "b.CSV", header+"coffee;10;2;C;D;buyer;50;50;false\n"+"tea;1;1;E;E;buyer;50;50;false\n")
	writeTempFile(t, dir, "notes.txt", "ignored")

	c := &fakeCreator{}
	sum, err := ImportDirectory(context.Background(), dir, c, admin, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Files != 2 || sum.Imported != 2 || sum.Rejected != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestImportDirectory_Errors(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{name: "missing dir", setup: func(t *testing.T) string { return "/does/not/exist" }},
		{name: "no csv files", setup: func(t *testing.T) string {
			dir := t.TempDir()
			writeTempFile(t, dir, "readme.md", "x")
			return dir
		}},
		{name: "one bad file fails the run", setup: func(t *testing.T) string {
			dir := t.TempDir()
			writeTempFile(t, dir, "a.csv", header+"cocoa;100;7.5;B;S;supplier;30;70;true\n")
			writeTempFile(t, dir, "b.csv", "wrong;header\n")
			return dir
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ImportDirectory(context.Background(), tc.setup(t), &fakeCreator{}, admin, 1); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestImportDirectory_ThroughLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "seed.csv", header+
		"cocoa;100;7,5;B;S;supplier;30;70;true\n"+
		"coffee;10;2;B;S;buyer;60;50;false\n")

	store := storage.NewMemoryTradeStore()
	svc := lifecycle.NewService(store, storage.NewMemorySettingsStore(models.PlatformSettings{FeePercent: decimal.NewFromInt(1)}), nil, lifecycle.Options{})

	sum, err := ImportDirectory(context.Background(), dir, svc, admin, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Imported != 1 || sum.Rejected != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	trades, err := store.List(context.Background(), models.TradeFilter{})
	if err != nil || len(trades) != 1 {
		t.Fatalf("list: %v len=%d", err, len(trades))
	}
	if trades[0].Status != models.StatusAwaitingBuyerDeposit {
		t.Fatalf("status=%s", trades[0].Status)
	}
}
