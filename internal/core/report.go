package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// MethodAmount is an amount aggregated under a payment method.
type MethodAmount struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// DailyAmount is the sum spent on a single calendar day.
type DailyAmount struct {
	Date   Date            `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Overview is the full report derived from one ledger snapshot.
type Overview struct {
	Count           int              `json:"count"`
	Total           decimal.Decimal  `json:"total"`
	Average         decimal.Decimal  `json:"average"`
	ByCategory      []CategoryAmount `json:"by_category"`
	ByPaymentMethod []MethodAmount   `json:"by_payment_method"`
	Daily           []DailyAmount    `json:"daily_series"`
}

// The aggregations below are pure functions over a snapshot as returned by
// the store's listing. Identical input always yields identical output.

// Total sums every amount in the snapshot. Zero for an empty snapshot.
func Total(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Average returns Total divided by the record count, or zero for an empty
// snapshot. Callers that need to distinguish "empty" from "cheap" should
// check the count themselves.
func Average(expenses []Expense) decimal.Decimal {
	if len(expenses) == 0 {
		return decimal.Zero
	}
	return Total(expenses).Div(decimal.NewFromInt(int64(len(expenses))))
}

type groupSum struct {
	label string
	sum   decimal.Decimal
}

// groupBy sums amounts per label, descending by sum. Groups with equal sums
// keep the order in which their label was first encountered.
func groupBy(expenses []Expense, label func(Expense) string) []groupSum {
	index := make(map[string]int, len(expenses))
	var groups []groupSum
	for _, e := range expenses {
		l := label(e)
		i, ok := index[l]
		if !ok {
			i = len(groups)
			index[l] = i
			groups = append(groups, groupSum{label: l, sum: decimal.Zero})
		}
		groups[i].sum = groups[i].sum.Add(e.Amount)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].sum.GreaterThan(groups[j].sum)
	})
	return groups
}

// ByCategory returns per-category sums, largest first, truncated to the topN
// largest. topN <= 0 disables truncation.
func ByCategory(expenses []Expense, topN int) []CategoryAmount {
	groups := groupBy(expenses, func(e Expense) string { return e.Category })
	if topN > 0 && len(groups) > topN {
		groups = groups[:topN]
	}
	out := make([]CategoryAmount, len(groups))
	for i, g := range groups {
		out[i] = CategoryAmount{Name: g.label, Amount: g.sum}
	}
	return out
}

// ByPaymentMethod returns per-method sums, largest first, unbounded.
func ByPaymentMethod(expenses []Expense) []MethodAmount {
	groups := groupBy(expenses, func(e Expense) string { return e.PaymentMethod })
	out := make([]MethodAmount, len(groups))
	for i, g := range groups {
		out[i] = MethodAmount{Method: g.label, Amount: g.sum}
	}
	return out
}

// DailySeries buckets the snapshot by calendar day, ascending, with one
// entry per day between the earliest and latest record dates inclusive.
// Days with no expenses appear with a zero amount. Nil for an empty snapshot.
func DailySeries(expenses []Expense) []DailyAmount {
	if len(expenses) == 0 {
		return nil
	}

	sums := make(map[string]decimal.Decimal, len(expenses))
	min, max := expenses[0].Date, expenses[0].Date
	for _, e := range expenses {
		day := e.Date.String()
		sums[day] = sums[day].Add(e.Amount)
		if e.Date.Before(min.Time) {
			min = e.Date
		}
		if e.Date.After(max.Time) {
			max = e.Date
		}
	}

	var series []DailyAmount
	for d := min; !d.After(max.Time); d = d.Next() {
		amount, ok := sums[d.String()]
		if !ok {
			amount = decimal.Zero
		}
		series = append(series, DailyAmount{Date: d, Amount: amount})
	}
	return series
}

// BuildOverview derives the complete report for a snapshot.
func BuildOverview(expenses []Expense, topCategories int) Overview {
	return Overview{
		Count:           len(expenses),
		Total:           Total(expenses),
		Average:         Average(expenses),
		ByCategory:      ByCategory(expenses, topCategories),
		ByPaymentMethod: ByPaymentMethod(expenses),
		Daily:           DailySeries(expenses),
	}
}
