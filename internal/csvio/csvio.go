// Package csvio implements the spreadsheet interchange format: delimited
// text, one transaction per row, 11 ordered fields.
//
// The round trip is lossy by design: export collapses deposit and burn to a
// single max() amount plus a derived burn-method label, so a transaction
// that carried both axes cannot be reconstructed from its exported row. This
// is an accepted format limitation, not a bug to patch.
package csvio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"studioledger/internal/catalog"
	"studioledger/internal/core"
)

// Column layout shared by import and export.
const (
	colDate = iota
	colCustomer
	colStaff
	colPayment
	colProduct
	colAmount
	colBurnMethod
	colNewClientPurchase
	colNewClientReservation
	colReturningRenewal
	colReturningReservation

	minFields = 7
)

var exportHeader = []string{
	"Date", "Customer", "Staff", "Payment", "Product", "Amount", "BurnMethod",
	"NewClientPurchase", "NewClientReservation", "ReturningRenewal", "ReturningReservation",
}

// splitFields is a lenient, quote-aware splitter. Quotes toggle literal
// mode and are dropped from the output; fields are trimmed. Unbalanced
// quotes don't error, they just swallow the rest of the line into the
// current field, which the short-row check then rejects.
func splitFields(line string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}

func flagSet(cols []string, i int) bool {
	if i >= len(cols) {
		return false
	}
	return strings.Contains(strings.ToUpper(cols[i]), "TRUE")
}

// parseRow converts one data row. ok is false for rows that must be skipped
// (too few fields, unusable date); a skipped row never shifts column
// alignment for the rows after it.
func parseRow(line string, cat *catalog.Catalog) (core.Transaction, bool) {
	cols := splitFields(line)
	if len(cols) < minFields {
		return core.Transaction{}, false
	}

	day, err := core.DayFromCompact(cols[colDate])
	if err != nil {
		return core.Transaction{}, false
	}

	amount := core.ParseAmount(cols[colAmount])
	method := cat.CanonicalPayment(cols[colPayment])
	burnMethod := strings.TrimSpace(cols[colBurnMethod])

	// The two axes are independent: the amount posts to deposit unless the
	// payment method is the prepaid-points sentinel, and to burn unless the
	// burn-method label is the course-purchase sentinel. Both, either, or
	// neither can end up set.
	var deposit, burn int64
	if !cat.IsPointsMethod(method) {
		deposit = amount
	}
	if !strings.EqualFold(burnMethod, cat.CoursePurchaseLabel()) {
		burn = amount
	}

	return core.Transaction{
		Date:     day,
		Customer: cols[colCustomer],
		Staff:    cat.CanonicalStaff(cols[colStaff]),
		Payment:  method,
		Deposit:  deposit,
		Burn:     burn,
		Product:  cols[colProduct],

		NewClientPurchase:    flagSet(cols, colNewClientPurchase),
		NewClientReservation: flagSet(cols, colNewClientReservation),
		ReturningRenewal:     flagSet(cols, colReturningRenewal),
		ReturningReservation: flagSet(cols, colReturningReservation),
	}, true
}

// Import parses the whole stream. The first row is the header and is always
// skipped; blank rows and malformed rows are dropped silently. Returns the
// parsed transactions (without IDs; the store assigns them) and the number
// of data rows that were skipped.
func Import(r io.Reader, cat *catalog.Catalog) ([]core.Transaction, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var txs []core.Transaction
	skipped := 0
	row := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		row++
		if row == 1 || line == "" {
			continue
		}
		tx, ok := parseRow(line, cat)
		if !ok {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read import stream: %w", err)
	}
	return txs, skipped, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

func flagLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// ExportRow renders one transaction as the ordered field list, already in
// interchange form (compact date, collapsed amount, derived burn label).
// Shared with the spreadsheet mirror so both outputs stay in lockstep.
func ExportRow(tx core.Transaction, cat *catalog.Catalog) []string {
	burnMethod := cat.CoursePurchaseLabel()
	if tx.Burn > 0 {
		burnMethod = cat.UsePointsLabel()
	}
	return []string{
		tx.Date.Compact(),
		tx.Customer,
		string(tx.Staff),
		string(tx.Payment),
		tx.Product,
		fmt.Sprintf("%d", tx.Amount()),
		burnMethod,
		flagLiteral(tx.NewClientPurchase),
		flagLiteral(tx.NewClientReservation),
		flagLiteral(tx.ReturningRenewal),
		flagLiteral(tx.ReturningReservation),
	}
}

// Export writes the full backup: UTF-8 with a leading byte-order mark, one
// header row, then one row per transaction with the text fields quoted.
func Export(w io.Writer, txs []core.Transaction, cat *catalog.Catalog) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("\uFEFF"); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	if _, err := bw.WriteString(strings.Join(exportHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		fields := ExportRow(tx, cat)
		// Text fields quoted, flag literals bare.
		for i := colDate; i <= colBurnMethod; i++ {
			fields[i] = quote(fields[i])
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}
