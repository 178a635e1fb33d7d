// Package ledger owns the two top-level collections of the dashboard: the
// ordered transaction log and the per-(date, staff) daily ledger. The Store
// is the sole writer allowed to touch both in a single operation; everything
// else reads snapshot copies.
package ledger

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"studioledger/internal/core"
)

var ErrNotFound = errors.New("transaction not found")

// Key addresses one daily ledger entry. Lookup is exact equality on the
// opaque day string and the staff code.
type Key struct {
	Date  core.Day
	Staff core.StaffCode
}

type delta struct {
	income      int64
	consumption int64
}

// Store holds the transaction log (newest-first) and the daily ledger
// (indexed by Key). Mutations are serialized by the mutex and run to
// completion before any derived view can observe them.
type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	entries map[Key]*core.LedgerEntry
}

func NewStore() *Store {
	return &Store{entries: make(map[Key]*core.LedgerEntry)}
}

// Load replaces the store's state with a persisted snapshot.
func (s *Store) Load(txs []core.Transaction, entries []core.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = append([]core.Transaction(nil), txs...)
	sortNewestFirst(s.txs)

	s.entries = make(map[Key]*core.LedgerEntry, len(entries))
	for _, e := range entries {
		e := e
		s.entries[Key{Date: e.Date, Staff: e.Staff}] = &e
	}
}

// Insert adds one transaction and posts its amounts to the ledger entry at
// (date, staff), creating the entry on first use.
func (s *Store) Insert(tx core.Transaction) (core.Transaction, error) {
	if strings.TrimSpace(tx.Customer) == "" {
		return core.Transaction{}, core.ErrEmptyCustomer
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = append(s.txs, tx)
	sortNewestFirst(s.txs)
	s.apply(Key{Date: tx.Date, Staff: tx.Staff}, tx.Deposit, tx.Burn)
	return tx, nil
}

// Update edits a transaction in place. The ledger is reconciled in two
// unconditional steps: the old contribution is reversed at the transaction's
// original (date, staff) key, then the new amounts are applied at the new
// key exactly as Insert would. The keys may be identical (amount edit) or
// different (date/staff reassignment); both take the same path, because a
// shortcut for the same-key case silently corrupts the cross-key one.
func (s *Store) Update(tx core.Transaction) (core.Transaction, error) {
	if strings.TrimSpace(tx.Customer) == "" {
		return core.Transaction{}, core.ErrEmptyCustomer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.txs {
		if s.txs[i].ID == tx.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Transaction{}, ErrNotFound
	}
	old := s.txs[idx]

	s.reverse(Key{Date: old.Date, Staff: old.Staff}, old.Deposit, old.Burn)
	s.apply(Key{Date: tx.Date, Staff: tx.Staff}, tx.Deposit, tx.Burn)

	s.txs[idx] = tx
	sortNewestFirst(s.txs)
	return tx, nil
}

// BulkInsert ingests an ordered batch, typically a file import. Deposit and
// burn deltas are first accumulated per (date, staff) key, then each
// accumulated delta is posted once with find-or-create semantics, so a large
// import touches every ledger key a single time. Rows with an empty customer
// name are dropped. Returns the number of transactions inserted.
func (s *Store) BulkInsert(txs []core.Transaction) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deltas := make(map[Key]delta)
	inserted := 0
	for _, tx := range txs {
		if strings.TrimSpace(tx.Customer) == "" {
			continue
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		s.txs = append(s.txs, tx)
		inserted++

		k := Key{Date: tx.Date, Staff: tx.Staff}
		d := deltas[k]
		d.income += tx.Deposit
		d.consumption += tx.Burn
		deltas[k] = d
	}

	for k, d := range deltas {
		s.apply(k, d.income, d.consumption)
	}
	sortNewestFirst(s.txs)
	return inserted
}

// Delete removes a transaction from the log. It deliberately does NOT
// reverse the transaction's ledger contribution: the daily ledger keeps the
// amounts the deleted transaction posted, and drifts from the transaction
// set from that point on. This mirrors the behavior the dashboard has always
// had; callers that need a clean ledger must edit the transaction to zero
// before deleting it.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return true
		}
	}
	return false
}

// apply posts amounts at k, creating the entry lazily on first use.
func (s *Store) apply(k Key, income, consumption int64) {
	if e, ok := s.entries[k]; ok {
		e.Income += income
		e.Consumption += consumption
		return
	}
	s.entries[k] = &core.LedgerEntry{
		ID:          uuid.NewString(),
		Date:        k.Date,
		Staff:       k.Staff,
		Income:      income,
		Consumption: consumption,
	}
}

// reverse subtracts amounts at k, flooring both axes at zero. An entry can
// decay to zero but is never pruned. A missing entry is a no-op.
func (s *Store) reverse(k Key, income, consumption int64) {
	e, ok := s.entries[k]
	if !ok {
		return
	}
	e.Income = max0(e.Income - income)
	e.Consumption = max0(e.Consumption - consumption)
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Transaction looks up one transaction by id.
func (s *Store) Transaction(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Transactions returns a newest-first snapshot copy of the log.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

// Search filters the log by case-insensitive substring match over customer
// name, product label, staff code, and payment method. An empty query
// returns everything.
func (s *Store) Search(query string) []core.Transaction {
	all := s.Transactions()
	if query == "" {
		return all
	}
	q := strings.ToLower(query)
	out := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if strings.Contains(strings.ToLower(tx.Customer), q) ||
			strings.Contains(strings.ToLower(tx.Product), q) ||
			strings.Contains(strings.ToLower(string(tx.Staff)), q) ||
			strings.Contains(strings.ToLower(string(tx.Payment)), q) {
			out = append(out, tx)
		}
	}
	return out
}

// Entries returns a snapshot of the daily ledger sorted ascending by date
// then staff. A non-empty staff code filters to that staff member's entries.
func (s *Store) Entries(staff core.StaffCode) []core.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.LedgerEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if staff != "" && e.Staff != staff {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Staff < out[j].Staff
	})
	return out
}

// Entry returns the ledger entry at (date, staff), if one exists.
func (s *Store) Entry(date core.Day, staff core.StaffCode) (core.LedgerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[Key{Date: date, Staff: staff}]
	if !ok {
		return core.LedgerEntry{}, false
	}
	return *e, true
}

// Empty reports whether the store holds no transactions and no entries.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs) == 0 && len(s.entries) == 0
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})
}
