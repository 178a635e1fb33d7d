package forecast

import (
	"testing"

	"studioledger/internal/core"
)

func TestFitDeterministic(t *testing.T) {
	l, ok := fit([]float64{1, 2}, []float64{100, 200})
	if !ok {
		t.Fatal("fit() not ok for two distinct points")
	}
	if l.slope != 100 || l.intercept != 0 {
		t.Fatalf("fit() = slope %v intercept %v, want 100/0", l.slope, l.intercept)
	}
	if got := l.predict(3); got != 300 {
		t.Errorf("predict(3) = %d, want 300", got)
	}
}

func TestFitUndefined(t *testing.T) {
	if _, ok := fit(nil, nil); ok {
		t.Error("fit() ok for zero points")
	}
	if _, ok := fit([]float64{5}, []float64{100}); ok {
		t.Error("fit() ok for one point")
	}
	// Same day twice: vertical line, denominator zero.
	if _, ok := fit([]float64{5, 5}, []float64{100, 200}); ok {
		t.Error("fit() ok for coincident x values")
	}
}

func TestPredictClampsAtZero(t *testing.T) {
	l := line{slope: -50, intercept: 40}
	if got := l.predict(10); got != 0 {
		t.Errorf("predict() = %d, want 0 (clamped)", got)
	}
}

func TestProjectEmpty(t *testing.T) {
	p := Project(nil)
	if len(p.Rows) != 0 || p.DaysInMonth != 0 {
		t.Errorf("Project(nil) = %+v, want zero projection", p)
	}
}

func TestProjectSingleton(t *testing.T) {
	p := Project([]core.LedgerEntry{
		{Date: "2023-11-04", Staff: "zoe", Income: 18000, Consumption: 10500},
	})
	if p.DaysInMonth != 30 {
		t.Fatalf("DaysInMonth = %d, want 30", p.DaysInMonth)
	}
	for _, row := range p.Rows {
		if row.PredictedIncome != 0 || row.PredictedConsumption != 0 {
			t.Fatalf("day %d predicted %d/%d, want all-zero for singleton series",
				row.Day, row.PredictedIncome, row.PredictedConsumption)
		}
	}
	// The actual value still shows on its day.
	row := p.Rows[3]
	if row.ActualIncome == nil || *row.ActualIncome != 18000 {
		t.Errorf("day 4 actual income = %v, want 18000", row.ActualIncome)
	}
	if p.Summary.CurrentIncome != 18000 || p.Summary.ProjectedIncome != 0 {
		t.Errorf("summary = %+v", p.Summary)
	}
}

func TestProjectLinearSeries(t *testing.T) {
	// Perfectly linear: 100 per day cumulative income, 60 consumption.
	entries := []core.LedgerEntry{
		{Date: "2023-11-01", Staff: "zoe", Income: 100, Consumption: 60},
		{Date: "2023-11-02", Staff: "zoe", Income: 100, Consumption: 60},
		{Date: "2023-11-03", Staff: "zoe", Income: 100, Consumption: 60},
	}
	p := Project(entries)
	if p.DaysInMonth != 30 {
		t.Fatalf("DaysInMonth = %d, want 30 (November)", p.DaysInMonth)
	}
	if len(p.Rows) != 30 {
		t.Fatalf("rows = %d, want 30", len(p.Rows))
	}

	if got := p.Rows[29].PredictedIncome; got != 3000 {
		t.Errorf("month-end predicted income = %d, want 3000", got)
	}
	if got := p.Rows[29].PredictedConsumption; got != 1800 {
		t.Errorf("month-end predicted consumption = %d, want 1800", got)
	}
	if p.Rows[29].ActualIncome != nil {
		t.Error("day 30 has no entry but reports an actual value")
	}

	day2 := p.Rows[1]
	if day2.ActualIncome == nil || *day2.ActualIncome != 200 {
		t.Errorf("day 2 actual = %v, want 200", day2.ActualIncome)
	}
	if day2.DayIncome != 100 || day2.DayConsumption != 60 {
		t.Errorf("day 2 daily figures = %d/%d, want 100/60", day2.DayIncome, day2.DayConsumption)
	}

	if p.Summary.CurrentIncome != 300 || p.Summary.ProjectedIncome != 3000 {
		t.Errorf("summary = %+v", p.Summary)
	}
	if p.Summary.IncomeDelta != 2700 || p.Summary.ConsumptionDelta != 1620 {
		t.Errorf("deltas = %d/%d, want 2700/1620", p.Summary.IncomeDelta, p.Summary.ConsumptionDelta)
	}
}

func TestProjectLastEntryOfDayWins(t *testing.T) {
	// Two staff posted on day 1; the cumulative after the second entry is
	// what the table must show for that day.
	entries := []core.LedgerEntry{
		{Date: "2023-11-01", Staff: "omar", Income: 6000, Consumption: 4000},
		{Date: "2023-11-01", Staff: "zoe", Income: 6000, Consumption: 4000},
		{Date: "2023-11-02", Staff: "zoe", Income: 15000, Consumption: 9500},
	}
	p := Project(entries)
	day1 := p.Rows[0]
	if day1.ActualIncome == nil || *day1.ActualIncome != 12000 {
		t.Errorf("day 1 actual income = %v, want 12000", day1.ActualIncome)
	}
}

func TestProjectLeapFebruary(t *testing.T) {
	entries := []core.LedgerEntry{
		{Date: "2024-02-01", Staff: "zoe", Income: 100},
		{Date: "2024-02-02", Staff: "zoe", Income: 100},
	}
	p := Project(entries)
	if p.DaysInMonth != 29 {
		t.Errorf("DaysInMonth = %d, want 29 for 2024-02", p.DaysInMonth)
	}
}
