// Package stats computes the two stateless transaction reductions shown on
// the dashboard: visit counts and payment-method totals. Both operate on a
// filtered snapshot of the transaction log and are independent of the daily
// ledger.
package stats

import (
	"studioledger/internal/catalog"
	"studioledger/internal/core"
)

// Visits is the visit-count breakdown. New/Returning come from product-label
// marker matching; the four campaign tallies come from the transaction
// flags, counted independently of each other and of the marker buckets.
type Visits struct {
	New       int `json:"new"`
	Returning int `json:"returning"`
	Total     int `json:"total"`

	NewClientPurchases    int `json:"new_client_purchases"`
	NewClientReservations int `json:"new_client_reservations"`
	ReturningRenewals     int `json:"returning_renewals"`
	ReturningReservations int `json:"returning_reservations"`
}

// CountVisits classifies every transaction by product label and tallies the
// flags. Unclassified products count toward neither visit bucket (Total is
// New+Returning, not the row count).
func CountVisits(txs []core.Transaction, cat *catalog.Catalog) Visits {
	var v Visits
	for _, tx := range txs {
		switch cat.ClassifyVisit(tx.Product) {
		case catalog.VisitNew:
			v.New++
		case catalog.VisitReturning:
			v.Returning++
		}
		if tx.NewClientPurchase {
			v.NewClientPurchases++
		}
		if tx.NewClientReservation {
			v.NewClientReservations++
		}
		if tx.ReturningRenewal {
			v.ReturningRenewals++
		}
		if tx.ReturningReservation {
			v.ReturningReservations++
		}
	}
	v.Total = v.New + v.Returning
	return v
}

// PaymentBucket is one fixed payment-method bucket and its running total.
type PaymentBucket struct {
	Method core.PaymentMethod `json:"method"`
	Total  int64              `json:"total"`
}

// PaymentTotals sums each transaction's deposit (or its burn when the
// deposit is zero) into the bucket for its payment method. Every bucket in
// the catalog's fixed set is reported, zero or not; transactions with an
// unrecognized method are silently ignored.
func PaymentTotals(txs []core.Transaction, cat *catalog.Catalog) []PaymentBucket {
	methods := cat.PaymentMethods()
	index := make(map[core.PaymentMethod]int, len(methods))
	out := make([]PaymentBucket, len(methods))
	for i, m := range methods {
		out[i] = PaymentBucket{Method: m}
		index[m] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Payment]
		if !ok {
			continue
		}
		amount := tx.Deposit
		if amount == 0 {
			amount = tx.Burn
		}
		out[i].Total += amount
	}
	return out
}
