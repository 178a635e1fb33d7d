// Package services orchestrates the dashboard operations across the
// in-memory store, SQLite snapshots and the mutation queue.
package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"studioledger/internal/amqp"
	"studioledger/internal/cache"
	"studioledger/internal/catalog"
	"studioledger/internal/core"
	"studioledger/internal/csvio"
	"studioledger/internal/forecast"
	"studioledger/internal/ledger"
	"studioledger/internal/log"
	"studioledger/internal/metrics"
	"studioledger/internal/stats"
	"studioledger/internal/storage"
)

// Dashboard owns the live store and fans every mutation out to persistence
// and the mirror queue. Snapshots and events are written after the mutation
// commits in memory; a failed snapshot or publish is logged and counted but
// never fails the request.
type Dashboard struct {
	store     *ledger.Store
	cat       *catalog.Catalog
	snapshots *storage.SnapshotStore
	events    *amqp.Client
	forecasts *cache.Cache[forecast.Projection]
	logger    *log.Logger

	wg sync.WaitGroup
}

func NewDashboard(store *ledger.Store, cat *catalog.Catalog, snapshots *storage.SnapshotStore, events *amqp.Client, cacheTTL time.Duration, logger *log.Logger) *Dashboard {
	return &Dashboard{
		store:     store,
		cat:       cat,
		snapshots: snapshots,
		events:    events,
		forecasts: cache.New[forecast.Projection](16, cacheTTL),
		logger:    logger.WithComponent("dashboard"),
	}
}

// Hydrate loads persisted state into the store. A store that has never been
// written gets the demo ledger so the dashboard has something to show.
func (d *Dashboard) Hydrate(ctx context.Context) error {
	if d.snapshots == nil {
		d.store.Load(nil, ledger.SeedEntries())
		return nil
	}

	txs, err := d.snapshots.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	entries, err := d.snapshots.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	d.store.Load(txs, entries)
	if d.store.Empty() {
		entries = ledger.SeedEntries()
		d.store.Load(nil, entries)
	}

	d.logger.InfoContext(ctx, "Hydrated store",
		"transactions", len(txs),
		"ledger_entries", len(entries))
	return nil
}

// AddTransaction records one transaction and posts it to the daily ledger.
func (d *Dashboard) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Staff = d.cat.CanonicalStaff(string(tx.Staff))
	tx.Payment = d.cat.CanonicalPayment(string(tx.Payment))
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := d.store.Insert(tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	d.finish(ctx, amqp.NewMutationMessage(amqp.KindInsert, saved.ID, 0))
	return saved, nil
}

// UpdateTransaction replaces a transaction and rebalances the ledger.
func (d *Dashboard) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Staff = d.cat.CanonicalStaff(string(tx.Staff))
	tx.Payment = d.cat.CanonicalPayment(string(tx.Payment))
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := d.store.Update(tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	d.finish(ctx, amqp.NewMutationMessage(amqp.KindUpdate, saved.ID, 0))
	return saved, nil
}

// DeleteTransaction removes the transaction from the log. The daily ledger
// keeps the amounts the transaction posted; deletion does not rebalance.
func (d *Dashboard) DeleteTransaction(ctx context.Context, id string) error {
	if !d.store.Delete(id) {
		return ledger.ErrNotFound
	}
	d.finish(ctx, amqp.NewMutationMessage(amqp.KindDelete, id, 0))
	return nil
}

// ImportCSV parses the stream and bulk-inserts every valid row. Returns the
// number of imported rows and the number of skipped rows.
func (d *Dashboard) ImportCSV(ctx context.Context, r io.Reader) (int, int, error) {
	txs, skipped, err := csvio.Import(r, d.cat)
	if err != nil {
		return 0, 0, fmt.Errorf("parse import: %w", err)
	}

	imported := d.store.BulkInsert(txs)
	metrics.ImportRowsTotal.WithLabelValues("imported").Add(float64(imported))
	metrics.ImportRowsTotal.WithLabelValues("skipped").Add(float64(skipped + len(txs) - imported))

	d.finish(ctx, amqp.NewMutationMessage(amqp.KindImport, "", imported))
	d.logger.InfoContext(ctx, "Imported transactions",
		"imported", imported, "skipped", skipped)
	return imported, skipped, nil
}

// ExportCSV writes the full transaction log in interchange form.
func (d *Dashboard) ExportCSV(w io.Writer) error {
	return csvio.Export(w, d.store.Transactions(), d.cat)
}

// Transactions returns the log newest first, filtered by the search query
// when one is given.
func (d *Dashboard) Transactions(query string) []core.Transaction {
	if query == "" {
		return d.store.Transactions()
	}
	return d.store.Search(query)
}

// Entries returns the daily ledger, optionally for a single staff member.
func (d *Dashboard) Entries(staff core.StaffCode) []core.LedgerEntry {
	return d.store.Entries(staff)
}

// Forecast projects the month for a staff member ("" for everyone). Results
// are cached until the next mutation or TTL expiry.
func (d *Dashboard) Forecast(staff core.StaffCode) forecast.Projection {
	key := string(staff)
	if p, ok := d.forecasts.Get(key); ok {
		metrics.ForecastCacheHits.WithLabelValues("hit").Inc()
		return p
	}
	metrics.ForecastCacheHits.WithLabelValues("miss").Inc()

	p := forecast.Project(d.store.Entries(staff))
	d.forecasts.Set(key, p)
	return p
}

// VisitStats classifies the (optionally filtered) transactions.
func (d *Dashboard) VisitStats(query string) stats.Visits {
	return stats.CountVisits(d.Transactions(query), d.cat)
}

// PaymentStats totals the (optionally filtered) transactions per method.
func (d *Dashboard) PaymentStats(query string) []stats.PaymentBucket {
	return stats.PaymentTotals(d.Transactions(query), d.cat)
}

// finish runs the post-mutation fanout: count it, drop stale forecasts,
// snapshot in the background and notify the mirror queue.
func (d *Dashboard) finish(ctx context.Context, msg *amqp.MutationMessage) {
	metrics.MutationsTotal.WithLabelValues(string(msg.Kind)).Inc()
	d.forecasts.Purge()

	txs := d.store.Transactions()
	entries := d.store.Entries("")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.persist(txs, entries)
	}()

	if d.events == nil {
		return
	}
	if err := d.events.PublishMutation(ctx, msg); err != nil {
		metrics.PublishFailures.Inc()
		d.logger.ErrorContext(ctx, "Failed to publish mutation message",
			"kind", msg.Kind, "tx_id", msg.TxID, "error", err)
		// Don't fail the request - the mutation is committed locally
	}
}

func (d *Dashboard) persist(txs []core.Transaction, entries []core.LedgerEntry) {
	if d.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.snapshots.SaveTransactions(ctx, txs); err != nil {
		metrics.PersistFailures.Inc()
		d.logger.Error("Failed to persist transactions", "error", err)
	}
	if err := d.snapshots.SaveLedger(ctx, entries); err != nil {
		metrics.PersistFailures.Inc()
		d.logger.Error("Failed to persist ledger", "error", err)
	}
}

// Close flushes pending snapshot writes and closes the outbound clients.
func (d *Dashboard) Close() error {
	d.wg.Wait()

	var errs []error
	if d.snapshots != nil {
		if err := d.snapshots.Close(); err != nil {
			errs = append(errs, fmt.Errorf("snapshots: %w", err))
		}
	}
	if d.events != nil {
		if err := d.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close dashboard: %v", errs)
	}
	return nil
}
