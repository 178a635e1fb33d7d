package storage

import (
	"context"
	"path/filepath"
	"testing"

	"studioledger/internal/catalog"
	"studioledger/internal/core"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "studioledger.db"), catalog.Default())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptyStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	txs, err := s.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("LoadTransactions() error = %v", err)
	}
	if txs != nil {
		t.Errorf("LoadTransactions() = %+v, want nil before first save", txs)
	}
	entries, err := s.LoadLedger(ctx)
	if err != nil || entries != nil {
		t.Errorf("LoadLedger() = %+v, %v, want nil, nil", entries, err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{ID: "t1", Date: "2023-11-04", Customer: "Lin Wei", Staff: "zoe",
			Payment: core.MethodCash, Deposit: 6000, Burn: 4000, Product: "Pack"},
	}
	entries := []core.LedgerEntry{
		{ID: "e1", Date: "2023-11-04", Staff: "zoe", Income: 6000, Consumption: 4000},
	}

	if err := s.SaveTransactions(ctx, txs); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if err := s.SaveLedger(ctx, entries); err != nil {
		t.Fatalf("SaveLedger() error = %v", err)
	}

	gotTxs, err := s.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("LoadTransactions() error = %v", err)
	}
	if len(gotTxs) != 1 || gotTxs[0] != txs[0] {
		t.Errorf("LoadTransactions() = %+v, want %+v", gotTxs, txs)
	}

	gotEntries, err := s.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if len(gotEntries) != 1 || gotEntries[0] != entries[0] {
		t.Errorf("LoadLedger() = %+v, want %+v", gotEntries, entries)
	}
}

func TestLoadRemapsLegacyStaff(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveTransactions(ctx, []core.Transaction{
		{ID: "t1", Date: "2023-11-04", Customer: "A", Staff: "Partner A", Payment: core.MethodCash},
		{ID: "t2", Date: "2023-11-04", Customer: "B", Staff: "Anna Keller", Payment: core.MethodCash},
	}); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if err := s.SaveLedger(ctx, []core.LedgerEntry{
		{ID: "e1", Date: "2023-11-04", Staff: "Partner B", Income: 100},
	}); err != nil {
		t.Fatalf("SaveLedger() error = %v", err)
	}

	txs, err := s.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("LoadTransactions() error = %v", err)
	}
	if txs[0].Staff != "zoe" || txs[1].Staff != "anna" {
		t.Errorf("remapped staff = %q, %q, want zoe, anna", txs[0].Staff, txs[1].Staff)
	}

	entries, err := s.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}
	if entries[0].Staff != "omar" {
		t.Errorf("remapped ledger staff = %q, want omar", entries[0].Staff)
	}
}

func TestVersionIncrements(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if v, _ := s.Version(ctx, KeyTransactions); v != 0 {
		t.Errorf("Version() before first save = %d", v)
	}
	for i := 0; i < 3; i++ {
		if err := s.SaveTransactions(ctx, nil); err != nil {
			t.Fatalf("SaveTransactions() error = %v", err)
		}
	}
	v, err := s.Version(ctx, KeyTransactions)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v != 3 {
		t.Errorf("Version() = %d, want 3", v)
	}
}
