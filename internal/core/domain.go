package core

import (
	"errors"
	"strings"
)

// StaffCode identifies the staff member credited with a transaction. It is
// also the ledger's secondary key. The canonical set lives in the catalog;
// unrecognized codes pass through untouched.
type StaffCode string

// PaymentMethod is the payment bucket a transaction settles through.
type PaymentMethod string

const (
	MethodPoints   PaymentMethod = "points"
	MethodCash     PaymentMethod = "cash"
	MethodJKOPay   PaymentMethod = "jkopay"
	MethodLinePay  PaymentMethod = "linepay"
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
	MethodKLook    PaymentMethod = "klook"
)

// PaymentMethods returns the fixed bucket set in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		MethodPoints,
		MethodCash,
		MethodJKOPay,
		MethodLinePay,
		MethodTransfer,
		MethodCard,
		MethodKLook,
	}
}

type (
	// Transaction is one customer sale. Deposit and Burn are independent
	// axes: the same transaction can carry either, both, or neither amount.
	Transaction struct {
		ID       string        `json:"id"`
		Date     Day           `json:"date"`
		Customer string        `json:"customer"`
		Staff    StaffCode     `json:"staff"`
		Payment  PaymentMethod `json:"payment"`
		Deposit  int64         `json:"deposit"`
		Burn     int64         `json:"burn"`
		Product  string        `json:"product"`

		NewClientPurchase    bool `json:"new_client_purchase"`
		NewClientReservation bool `json:"new_client_reservation"`
		ReturningRenewal     bool `json:"returning_renewal"`
		ReturningReservation bool `json:"returning_reservation"`
	}

	// LedgerEntry aggregates income (sum of deposits) and consumption
	// (sum of burns) for one (date, staff) pair. At most one entry exists
	// per pair.
	LedgerEntry struct {
		ID          string    `json:"id"`
		Date        Day       `json:"date"`
		Staff       StaffCode `json:"staff"`
		Income      int64     `json:"income"`
		Consumption int64     `json:"consumption"`
	}
)

var (
	ErrEmptyCustomer  = errors.New("empty customer name")
	ErrNegativeAmount = errors.New("negative amount")
	ErrInvalidDate    = errors.New("invalid date")
)

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Customer) == "" {
		return ErrEmptyCustomer
	}
	if t.Deposit < 0 || t.Burn < 0 {
		return ErrNegativeAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Amount is the single collapsed figure used by the export format:
// max(deposit, burn). The collapse is lossy for transactions carrying both
// axes; see the csvio package contract.
func (t Transaction) Amount() int64 {
	if t.Burn > t.Deposit {
		return t.Burn
	}
	return t.Deposit
}
