// Package mirror defines the outbound port for the spreadsheet copy of the
// transaction log. Adapters live in subpackages; callers depend only on the
// interfaces here.
package mirror

import (
	"context"

	"studioledger/internal/core"
)

// Writer pushes transactions to the external mirror. Append adds one row;
// Replace rewrites the whole sheet from current state and is the recovery
// path for updates, deletes and imports.
type Writer interface {
	Append(ctx context.Context, tx core.Transaction) (string, error)
	Replace(ctx context.Context, txs []core.Transaction) error
}
