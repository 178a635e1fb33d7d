package ledger

import (
	"github.com/google/uuid"

	"studioledger/internal/core"
)

// SeedEntries returns the demo ledger a fresh install starts from, so the
// forecast chart is not empty before the first real transaction lands.
func SeedEntries() []core.LedgerEntry {
	seed := []struct {
		date        core.Day
		staff       core.StaffCode
		income      int64
		consumption int64
	}{
		{"2023-11-01", "zoe", 6000, 4000},
		{"2023-11-01", "omar", 6000, 4000},
		{"2023-11-02", "zoe", 15000, 9500},
		{"2023-11-03", "omar", 5000, 5000},
		{"2023-11-04", "zoe", 18000, 10500},
		{"2023-11-05", "omar", 10000, 6000},
	}

	out := make([]core.LedgerEntry, len(seed))
	for i, s := range seed {
		out[i] = core.LedgerEntry{
			ID:          uuid.NewString(),
			Date:        s.date,
			Staff:       s.staff,
			Income:      s.income,
			Consumption: s.consumption,
		}
	}
	return out
}
