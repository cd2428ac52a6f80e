package core

import (
	"sort"
	"strings"
)

// Aggregation over transaction collections. All functions are pure and
// total: malformed records (unknown type, non-positive amount) are
// skipped rather than poisoning a sum.

type (
	// DailyPoint is the net signed sum (income - expense) for one date.
	DailyPoint struct {
		Date string  `json:"date"`
		Net  float64 `json:"net"`
	}

	// MonthlyPoint is the net signed sum for one YYYY-MM month.
	MonthlyPoint struct {
		Month string  `json:"month"`
		Net   float64 `json:"net"`
	}

	// MonthlyFlow splits one month into its income and expense totals.
	MonthlyFlow struct {
		Month    string  `json:"month"`
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
	}

	// CategoryAmount is an expense total for one inferred category.
	CategoryAmount struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}

	// DayTotals holds income and expense totals for a single date.
	DayTotals struct {
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
	}
)

// CategoryOther is the fallback bucket for expenses whose description
// matches none of the known category keywords.
const CategoryOther = "Other"

// categoryKeywords is the fixed vocabulary for category inference.
// Order matters: the first matching keyword wins.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"food", "Food"},
	{"transport", "Transport"},
	{"shopping", "Shopping"},
	{"entertainment", "Entertainment"},
}

// signed returns the contribution of tx to a net sum, skipping records
// with an unknown type or non-positive amount.
func signed(tx Transaction) float64 {
	if tx.Amount <= 0 {
		return 0
	}
	switch tx.Type {
	case Income:
		return tx.Amount
	case Expense:
		return -tx.Amount
	default:
		return 0
	}
}

// TotalBalance is income minus expenses over the whole collection.
func TotalBalance(txs []Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += signed(tx)
	}
	return total
}

// TotalIncome sums the amounts of all income transactions.
func TotalIncome(txs []Transaction) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Type == Income && tx.Amount > 0 {
			total += tx.Amount
		}
	}
	return total
}

// TotalExpenses sums the amounts of all expense transactions.
func TotalExpenses(txs []Transaction) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Type == Expense && tx.Amount > 0 {
			total += tx.Amount
		}
	}
	return total
}

// DailySeries computes the net sum per date for a caller-supplied date
// sequence. Dates with no matching transactions yield 0.
func DailySeries(txs []Transaction, dates []string) []DailyPoint {
	byDate := make(map[string]float64, len(dates))
	for _, tx := range txs {
		byDate[tx.Date] += signed(tx)
	}
	points := make([]DailyPoint, len(dates))
	for i, d := range dates {
		points[i] = DailyPoint{Date: d, Net: byDate[d]}
	}
	return points
}

// DistinctDates returns every date present in the collection, sorted
// ascending. Useful as the date sequence for DailySeries.
func DistinctDates(txs []Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	var dates []string
	for _, tx := range txs {
		if _, ok := seen[tx.Date]; ok {
			continue
		}
		seen[tx.Date] = struct{}{}
		dates = append(dates, tx.Date)
	}
	sort.Strings(dates)
	return dates
}

// MonthlySeries groups by the YYYY-MM prefix of the date, net signed sum
// per month, sorted ascending. String sort is chronological because the
// format is zero-padded.
func MonthlySeries(txs []Transaction) []MonthlyPoint {
	byMonth := make(map[string]float64)
	for _, tx := range txs {
		if len(tx.Date) < 7 {
			continue
		}
		byMonth[tx.Date[:7]] += signed(tx)
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	points := make([]MonthlyPoint, len(months))
	for i, m := range months {
		points[i] = MonthlyPoint{Month: m, Net: byMonth[m]}
	}
	return points
}

// MonthlyFlows computes income and expense totals per caller-supplied
// YYYY-MM month. Months with no transactions yield zero flows.
func MonthlyFlows(txs []Transaction, months []string) []MonthlyFlow {
	flows := make([]MonthlyFlow, len(months))
	for i, m := range months {
		flows[i].Month = m
	}
	index := make(map[string]int, len(months))
	for i, m := range months {
		index[m] = i
	}
	for _, tx := range txs {
		if len(tx.Date) < 7 || tx.Amount <= 0 {
			continue
		}
		i, ok := index[tx.Date[:7]]
		if !ok {
			continue
		}
		switch tx.Type {
		case Income:
			flows[i].Income += tx.Amount
		case Expense:
			flows[i].Expenses += tx.Amount
		}
	}
	return flows
}

// InferCategory maps a free-text description to a category by
// case-insensitive substring match, first-matching-keyword-wins.
// Empty or non-matching descriptions fall into the Other bucket.
func InferCategory(description string) string {
	lower := strings.ToLower(description)
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.category
		}
	}
	return CategoryOther
}

// CategoryBreakdown groups expense transactions by inferred category.
// Buckets are returned in vocabulary order with Other last; empty
// buckets are omitted.
func CategoryBreakdown(txs []Transaction) []CategoryAmount {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != Expense || tx.Amount <= 0 {
			continue
		}
		totals[InferCategory(tx.Description)] += tx.Amount
	}
	var breakdown []CategoryAmount
	for _, kw := range categoryKeywords {
		if total, ok := totals[kw.category]; ok {
			breakdown = append(breakdown, CategoryAmount{Category: kw.category, Total: total})
		}
	}
	if total, ok := totals[CategoryOther]; ok {
		breakdown = append(breakdown, CategoryAmount{Category: CategoryOther, Total: total})
	}
	return breakdown
}

// AverageAmount is the mean transaction amount, 0 for an empty collection.
func AverageAmount(txs []Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	var total float64
	for _, tx := range txs {
		if tx.Amount > 0 {
			total += tx.Amount
		}
	}
	return total / float64(len(txs))
}

// SavingRate is (income - expenses) / income as a percentage, 0 when
// there is no income. Guarded so it never produces NaN.
func SavingRate(txs []Transaction) float64 {
	income := TotalIncome(txs)
	if income == 0 {
		return 0
	}
	return (income - TotalExpenses(txs)) / income * 100
}

// MonthlyAvgExpense spreads total expenses over the days of the current
// month. daysInMonth values below 1 yield 0.
func MonthlyAvgExpense(txs []Transaction, daysInMonth int) float64 {
	if daysInMonth < 1 {
		return 0
	}
	return TotalExpenses(txs) / float64(daysInMonth)
}

// DaySummary computes income and expense totals for a single date.
func DaySummary(txs []Transaction, date string) DayTotals {
	var totals DayTotals
	for _, tx := range txs {
		if tx.Date != date || tx.Amount <= 0 {
			continue
		}
		switch tx.Type {
		case Income:
			totals.Income += tx.Amount
		case Expense:
			totals.Expenses += tx.Amount
		}
	}
	return totals
}
