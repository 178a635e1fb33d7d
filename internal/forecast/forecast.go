// Package forecast fits month-end projections over the daily ledger. The
// engine is purely data-driven: it has no notion of "today" and works only
// from the dates present in the entries it is handed.
package forecast

import (
	"math"

	"studioledger/internal/core"
)

type (
	// Row is one day of the merged actual-plus-predicted month table.
	// Actual values are present only for days that have a ledger entry.
	Row struct {
		Day                  int    `json:"day"`
		ActualIncome         *int64 `json:"actual_income"`
		ActualConsumption    *int64 `json:"actual_consumption"`
		PredictedIncome      int64  `json:"predicted_income"`
		PredictedConsumption int64  `json:"predicted_consumption"`
		DayIncome            int64  `json:"day_income"`
		DayConsumption       int64  `json:"day_consumption"`
	}

	// Summary carries the dashboard card figures: where the month stands
	// now, where the fitted lines say it ends, and the gap between the two.
	Summary struct {
		CurrentIncome        int64 `json:"current_income"`
		CurrentConsumption   int64 `json:"current_consumption"`
		ProjectedIncome      int64 `json:"projected_income"`
		ProjectedConsumption int64 `json:"projected_consumption"`
		IncomeDelta          int64 `json:"income_delta"`
		ConsumptionDelta     int64 `json:"consumption_delta"`
		Entries              int   `json:"entries"`
	}

	Projection struct {
		DaysInMonth int     `json:"days_in_month"`
		Rows        []Row   `json:"rows"`
		Summary     Summary `json:"summary"`
	}
)

type line struct {
	slope     float64
	intercept float64
}

// fit computes an ordinary-least-squares line over the points. The fit is
// undefined with fewer than two points, or when every x coincides; callers
// report zero projections in that case instead of dividing by zero.
func fit(xs, ys []float64) (line, bool) {
	n := float64(len(xs))
	if len(xs) < 2 {
		return line{}, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return line{}, false
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return line{slope: slope, intercept: intercept}, true
}

// predict rounds the fitted value and clamps at zero; the dashboard never
// shows negative projected revenue.
func (l line) predict(day int) int64 {
	v := math.Round(l.slope*float64(day) + l.intercept)
	if v < 0 {
		return 0
	}
	return int64(v)
}

type point struct {
	dayOfMonth  int
	cumIncome   int64
	cumConsumed int64
	dayIncome   int64
	dayConsumed int64
}

// Project builds the full-month table for a date-sorted ascending entry
// view. The month length comes from the last entry's date (28-31,
// leap-aware). Days with an entry carry the actual cumulative value; every
// day carries the predicted one.
func Project(entries []core.LedgerEntry) Projection {
	if len(entries) == 0 {
		return Projection{}
	}

	points := make([]point, len(entries))
	var accIncome, accConsumed int64
	for i, e := range entries {
		accIncome += e.Income
		accConsumed += e.Consumption
		points[i] = point{
			dayOfMonth:  e.Date.DayOfMonth(),
			cumIncome:   accIncome,
			cumConsumed: accConsumed,
			dayIncome:   e.Income,
			dayConsumed: e.Consumption,
		}
	}

	xs := make([]float64, len(points))
	incomeYs := make([]float64, len(points))
	consumedYs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.dayOfMonth)
		incomeYs[i] = float64(p.cumIncome)
		consumedYs[i] = float64(p.cumConsumed)
	}
	incomeLine, incomeOK := fit(xs, incomeYs)
	consumedLine, consumedOK := fit(xs, consumedYs)

	daysInMonth := entries[len(entries)-1].Date.DaysInMonth()
	if daysInMonth == 0 {
		daysInMonth = 30
	}

	rows := make([]Row, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		row := Row{Day: day}
		if incomeOK {
			row.PredictedIncome = incomeLine.predict(day)
		}
		if consumedOK {
			row.PredictedConsumption = consumedLine.predict(day)
		}
		// Last entry of the day wins when several staff posted that day.
		for i := len(points) - 1; i >= 0; i-- {
			if points[i].dayOfMonth == day {
				income, consumed := points[i].cumIncome, points[i].cumConsumed
				row.ActualIncome = &income
				row.ActualConsumption = &consumed
				row.DayIncome = points[i].dayIncome
				row.DayConsumption = points[i].dayConsumed
				break
			}
		}
		rows = append(rows, row)
	}

	last := points[len(points)-1]
	end := rows[len(rows)-1]
	return Projection{
		DaysInMonth: daysInMonth,
		Rows:        rows,
		Summary: Summary{
			CurrentIncome:        last.cumIncome,
			CurrentConsumption:   last.cumConsumed,
			ProjectedIncome:      end.PredictedIncome,
			ProjectedConsumption: end.PredictedConsumption,
			IncomeDelta:          end.PredictedIncome - last.cumIncome,
			ConsumptionDelta:     end.PredictedConsumption - last.cumConsumed,
			Entries:              len(entries),
		},
	}
}
