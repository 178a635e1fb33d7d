package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:     "2023-11-01",
		Customer: "Mia Lin",
		Staff:    "zoe",
		Payment:  MethodCash,
		Deposit:  6000,
		Burn:     4000,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{
			name:   "empty customer",
			mutate: func(tx *Transaction) { tx.Customer = "  " },
			want:   ErrEmptyCustomer,
		},
		{
			name:   "negative deposit",
			mutate: func(tx *Transaction) { tx.Deposit = -1 },
			want:   ErrNegativeAmount,
		},
		{
			name:   "negative burn",
			mutate: func(tx *Transaction) { tx.Burn = -1 },
			want:   ErrNegativeAmount,
		},
		{
			name:   "garbage date",
			mutate: func(tx *Transaction) { tx.Date = "november first" },
			want:   ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionAmount(t *testing.T) {
	tests := []struct {
		name          string
		deposit, burn int64
		want          int64
	}{
		{"deposit only", 5000, 0, 5000},
		{"burn only", 0, 3000, 3000},
		{"both axes collapse to max", 6000, 4000, 6000},
		{"neither", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Deposit: tt.deposit, Burn: tt.burn}
			if got := tx.Amount(); got != tt.want {
				t.Errorf("Amount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDayFromCompact(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{"20231101", "2023-11-01", false},
		{"20240229", "2024-02-29", false},
		{"20230229", "", true}, // not a leap year
		{"2023110", "", true},  // too short
		{"notadate", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DayFromCompact(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DayFromCompact(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DayFromCompact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDayCalendar(t *testing.T) {
	tests := []struct {
		day         Day
		dayOfMonth  int
		daysInMonth int
	}{
		{"2023-11-15", 15, 30},
		{"2023-12-01", 1, 31},
		{"2024-02-10", 10, 29}, // leap February
		{"2023-02-10", 10, 28},
		{"bogus", 0, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.day), func(t *testing.T) {
			if got := tt.day.DayOfMonth(); got != tt.dayOfMonth {
				t.Errorf("DayOfMonth() = %d, want %d", got, tt.dayOfMonth)
			}
			if got := tt.day.DaysInMonth(); got != tt.daysInMonth {
				t.Errorf("DaysInMonth() = %d, want %d", got, tt.daysInMonth)
			}
		})
	}
}

func TestDayCompact(t *testing.T) {
	if got := Day("2023-11-01").Compact(); got != "20231101" {
		t.Errorf("Compact() = %q, want %q", got, "20231101")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"6000", 6000},
		{"1,280", 1280},
		{`"12,500"`, 12500},
		{" 300 ", 300},
		{"1500.0", 1500},
		{"", 0},
		{"free", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseAmount(tt.in); got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
