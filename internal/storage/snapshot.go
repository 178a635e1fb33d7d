// Package storage persists whole-state snapshots to SQLite. The store keeps
// a single JSON document per key rather than normalized rows: reads hydrate
// the entire in-memory state at startup, writes replace it after each
// mutation.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"studioledger/internal/catalog"
	"studioledger/internal/core"

	_ "modernc.org/sqlite"
)

// Versioned snapshot keys. The v2 suffix marks the canonical-staff-code
// format; older payloads saved under these keys may still carry legacy
// staff names, which the loaders remap on every read.
const (
	KeyTransactions = "studioledger.transactions.v2"
	KeyLedger       = "studioledger.ledger.v2"
)

type SnapshotStore struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func Open(dbPath string, cat *catalog.Catalog) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotStore{db: db, cat: cat}, nil
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SnapshotStore) save(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, version, updated_at)
		VALUES (?, ?, 1, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			payload    = excluded.payload,
			version    = snapshots.version + 1,
			updated_at = excluded.updated_at`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

// load returns false without error when the key has never been written.
func (s *SnapshotStore) load(ctx context.Context, key string, out any) (bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return true, nil
}

func (s *SnapshotStore) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	return s.save(ctx, KeyTransactions, txs)
}

func (s *SnapshotStore) SaveLedger(ctx context.Context, entries []core.LedgerEntry) error {
	return s.save(ctx, KeyLedger, entries)
}

// LoadTransactions hydrates the transaction log. Staff codes pass through
// the catalog remap so payloads written before a staff rename come back
// canonical; the remap is idempotent, so current payloads are unchanged.
func (s *SnapshotStore) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	found, err := s.load(ctx, KeyTransactions, &txs)
	if err != nil || !found {
		return nil, err
	}
	for i := range txs {
		txs[i].Staff = s.cat.CanonicalStaff(string(txs[i].Staff))
	}
	return txs, nil
}

// LoadLedger hydrates the daily ledger with the same staff remap as
// LoadTransactions.
func (s *SnapshotStore) LoadLedger(ctx context.Context) ([]core.LedgerEntry, error) {
	var entries []core.LedgerEntry
	found, err := s.load(ctx, KeyLedger, &entries)
	if err != nil || !found {
		return nil, err
	}
	for i := range entries {
		entries[i].Staff = s.cat.CanonicalStaff(string(entries[i].Staff))
	}
	return entries, nil
}

// Version reports the write counter for a key, 0 when absent.
func (s *SnapshotStore) Version(ctx context.Context, key string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM snapshots WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot version %s: %w", key, err)
	}
	return v, nil
}
