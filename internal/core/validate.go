package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Thresholds for the regime data checks. Tourism margins typically sit in
// the 5-25% band; anything above 40% or any very large document is worth a
// second look before filing.
var (
	suspiciousAmount = decimal.NewFromInt(50000)
	highMarginPct    = decimal.NewFromInt(40)
)

// RegimeValidation is the outcome of checking a dataset against the
// margin-regime rules. Errors make the dataset unfit for the regime;
// warnings are advisory.
type RegimeValidation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Valid    bool     `json:"is_valid"`
}

// ValidateRegimeData checks sales and costs for margin-regime fitness.
// Under CIVA Art. 308º a margin-regime sale must not carry separate VAT:
// VAT is assessed on the margin at calculation time.
func ValidateRegimeData(s *Session) RegimeValidation {
	var v RegimeValidation

	for _, sale := range s.Sales {
		if !sale.VATAmount.IsZero() {
			v.Errors = append(v.Errors,
				fmt.Sprintf("sale %s: separate VAT not allowed under the margin regime", sale.Number))
		}
		if sale.Amount.GreaterThan(suspiciousAmount) {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("sale %s: unusually large amount (€%s)", sale.Number, sale.Amount.StringFixed(2)))
		} else if sale.Amount.IsZero() {
			v.Warnings = append(v.Warnings, fmt.Sprintf("sale %s: zero amount", sale.Number))
		}
	}

	for _, cost := range s.Costs {
		if cost.Amount.GreaterThan(suspiciousAmount) {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("cost from %s: unusually large amount (€%s)", cost.Supplier, cost.Amount.StringFixed(2)))
		}
	}

	totalSales := decimal.Zero
	for _, sale := range s.Sales {
		if sale.Amount.IsPositive() {
			totalSales = totalSales.Add(sale.Amount)
		}
	}
	totalCosts := decimal.Zero
	for _, cost := range s.Costs {
		totalCosts = totalCosts.Add(cost.Amount)
	}

	if totalSales.IsPositive() {
		marginPct := totalSales.Sub(totalCosts).Div(totalSales).Mul(oneHundred)
		if marginPct.GreaterThan(highMarginPct) {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("estimated margin %s%% is high; tourism is typically 5-25%%", marginPct.StringFixed(1)))
		} else if marginPct.IsNegative() {
			v.Warnings = append(v.Warnings,
				fmt.Sprintf("estimated margin %s%% is negative; check associations", marginPct.StringFixed(1)))
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}
