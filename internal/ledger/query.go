package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// In-memory aggregation shared by the file and memory stores. The file
// store re-reads and re-aggregates per query; the ledger is small enough
// that this beats keeping derived state in sync with the file.

func filterByDay(recs []SaleRecord, day string) []SaleRecord {
	out := make([]SaleRecord, 0, len(recs))
	for _, r := range recs {
		if r.Day() == day {
			out = append(out, r)
		}
	}
	return out
}

func filterByPeriod(recs []SaleRecord, period string) []SaleRecord {
	out := make([]SaleRecord, 0, len(recs))
	for _, r := range recs {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out
}

// topProducts sums units sold per product over the whole ledger, every
// period and day included. Order: units descending, then name, so the
// result is deterministic.
func topProducts(recs []SaleRecord) []ProductTotal {
	units := make(map[string]int)
	for _, r := range recs {
		units[r.ProductName] += r.QuantitySold
	}

	out := make([]ProductTotal, 0, len(units))
	for name, n := range units {
		out = append(out, ProductTotal{ProductName: name, UnitsSold: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold != out[j].UnitsSold {
			return out[i].UnitsSold > out[j].UnitsSold
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}

// revenueByDay buckets revenue by the record's calendar day for one month.
// Every day the month actually has appears in the result, zero-sale days
// as 0, so the trend chart never skips a day.
func revenueByDay(recs []SaleRecord, year int, month time.Month) []DayRevenue {
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	out := make([]DayRevenue, daysInMonth)
	for i := range out {
		out[i].Day = time.Date(year, month, i+1, 0, 0, 0, 0, time.Local).Format(DayLayout)
		out[i].Revenue = decimal.Zero
	}

	for _, r := range recs {
		if r.Timestamp.Year() != year || r.Timestamp.Month() != month {
			continue
		}
		d := r.Timestamp.Day() - 1
		out[d].Revenue = out[d].Revenue.Add(r.TotalAmount)
	}
	return out
}

func summarize(recs []SaleRecord, today string) Totals {
	t := Totals{TotalRevenue: decimal.Zero, TodayRevenue: decimal.Zero}
	for _, r := range recs {
		t.Transactions++
		t.TotalRevenue = t.TotalRevenue.Add(r.TotalAmount)
		if r.Day() == today {
			t.TodayRevenue = t.TodayRevenue.Add(r.TotalAmount)
		}
	}
	return t
}
