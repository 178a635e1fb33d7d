// Package worker runs the mirror consumer: it reads mutation messages from
// the queue and pushes current state to the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"

	"studioledger/internal/amqp"
	"studioledger/internal/core"
	"studioledger/internal/log"
	"studioledger/internal/mirror"
)

// TransactionSource is where the worker reads current state. The snapshot
// store satisfies it; tests use a stub.
type TransactionSource interface {
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
}

type MirrorWorker struct {
	source TransactionSource
	writer mirror.Writer
	logger *log.Logger
}

func NewMirrorWorker(source TransactionSource, writer mirror.Writer, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		source: source,
		writer: writer,
		logger: logger.WithComponent("mirror-worker"),
	}
}

// HandleMutation applies one queued mutation to the mirror. Inserts append
// the single new row; every other kind rewrites the whole sheet, because the
// mirror has no row identity to update or delete in place.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	switch msg.Kind {
	case amqp.KindInsert:
		return w.appendOne(ctx, msg.TxID)
	case amqp.KindUpdate, amqp.KindDelete, amqp.KindImport:
		return w.ResyncAll(ctx)
	default:
		// Unknown kinds are acked and dropped; requeueing them would loop.
		w.logger.WarnContext(ctx, "Ignoring unknown mutation kind", "kind", msg.Kind)
		return nil
	}
}

func (w *MirrorWorker) appendOne(ctx context.Context, txID string) error {
	txs, err := w.source.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.ID == txID {
			ref, err := w.writer.Append(ctx, tx)
			if err != nil {
				return fmt.Errorf("append transaction %s: %w", txID, err)
			}
			w.logger.InfoContext(ctx, "Appended transaction to mirror",
				"tx_id", txID, "ref", ref)
			return nil
		}
	}
	// The transaction was deleted before we got to it. The delete message
	// behind us will resync; nothing to do here.
	w.logger.WarnContext(ctx, "Transaction gone before mirror append", "tx_id", txID)
	return nil
}

// ResyncAll rewrites the mirror from current state.
func (w *MirrorWorker) ResyncAll(ctx context.Context) error {
	txs, err := w.source.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if err := w.writer.Replace(ctx, txs); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	w.logger.InfoContext(ctx, "Resynced mirror", "rows", len(txs))
	return nil
}
