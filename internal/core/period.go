package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Region selects the regional VAT rate applicable to the agency.
type Region string

const (
	RegionContinental  Region = "continental"
	RegionMadeira      Region = "madeira"
	RegionAzores       Region = "azores"
	RegionIntermediate Region = "intermediate"
	RegionReduced      Region = "reduced"
)

// RateForRegion returns the VAT percentage for a region, defaulting to the
// continental rate for unknown values.
func RateForRegion(r Region) decimal.Decimal {
	switch r {
	case RegionMadeira:
		return decimal.NewFromInt(22)
	case RegionAzores:
		return decimal.NewFromInt(18)
	case RegionIntermediate:
		return decimal.NewFromInt(13)
	case RegionReduced:
		return decimal.NewFromInt(6)
	default:
		return decimal.NewFromInt(23)
	}
}

// Period is an inclusive date window in the engine's date layout.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SaleMargin is the per-sale detail line of a period calculation.
type SaleMargin struct {
	SaleID         string          `json:"sale_id"`
	Number         string          `json:"number"`
	Amount         decimal.Decimal `json:"amount"`
	AllocatedCosts decimal.Decimal `json:"allocated_costs"`
	Margin         decimal.Decimal `json:"margin"`
}

// PeriodResult is the outcome of a period VAT computation with
// negative-margin compensation.
type PeriodResult struct {
	Period            Period          `json:"period"`
	VATRate           decimal.Decimal `json:"vat_rate"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalCosts        decimal.Decimal `json:"total_costs"`
	GrossMargin       decimal.Decimal `json:"gross_margin"`
	CompensatedMargin decimal.Decimal `json:"compensated_margin"`
	VATAmount         decimal.Decimal `json:"vat_amount"`
	CarryForward      decimal.Decimal `json:"carry_forward"`
	SaleMargins       []SaleMargin    `json:"sale_margins"`
}

// CalculatePeriod computes the VAT due for a declaration period. Unlike
// the per-sale calculation, the period margin is total period sales minus
// ALL period costs, associated or not, as the declaration covers every
// direct cost of the period. previousNegativeMargin is the magnitude of
// the loss carried in from earlier periods; it reduces the taxable margin,
// and any remaining loss is returned as CarryForward (a negative value).
func CalculatePeriod(s *Session, period Period, previousNegativeMargin, vatRate decimal.Decimal) (*PeriodResult, error) {
	if vatRate.IsNegative() || vatRate.GreaterThan(oneHundred) {
		return nil, &InvalidArgumentError{Field: "vat_rate", Reason: "must be between 0 and 100"}
	}
	if previousNegativeMargin.IsNegative() {
		return nil, &InvalidArgumentError{Field: "previous_negative_margin", Reason: "must not be negative"}
	}
	start, err := ParseDate(period.Start)
	if err != nil {
		return nil, &InvalidArgumentError{Field: "period.start", Reason: err.Error()}
	}
	end, err := ParseDate(period.End)
	if err != nil {
		return nil, &InvalidArgumentError{Field: "period.end", Reason: err.Error()}
	}
	if end.Before(start) {
		return nil, &InvalidArgumentError{Field: "period", Reason: "end precedes start"}
	}

	allocation, err := Allocate(s)
	if err != nil {
		return nil, err
	}

	totalSales := decimal.Zero
	var saleMargins []SaleMargin
	for _, sale := range s.Sales {
		if !inPeriod(sale.Date, start, end) {
			continue
		}
		totalSales = totalSales.Add(sale.Amount)
		allocated := allocation.TotalForSale(sale.ID)
		saleMargins = append(saleMargins, SaleMargin{
			SaleID:         sale.ID,
			Number:         sale.Number,
			Amount:         sale.Amount.Round(2),
			AllocatedCosts: allocated.Round(2),
			Margin:         sale.Amount.Sub(allocated).Round(2),
		})
	}

	totalCosts := decimal.Zero
	for _, cost := range s.Costs {
		if inPeriod(cost.Date, start, end) {
			totalCosts = totalCosts.Add(cost.Amount)
		}
	}

	gross := totalSales.Sub(totalCosts)
	compensated := gross.Sub(previousNegativeMargin)

	vatBase := compensated
	if vatBase.IsNegative() {
		vatBase = decimal.Zero
	}
	carry := decimal.Zero
	if compensated.IsNegative() {
		carry = compensated
	}

	return &PeriodResult{
		Period:            period,
		VATRate:           vatRate,
		TotalSales:        totalSales.Round(2),
		TotalCosts:        totalCosts.Round(2),
		GrossMargin:       gross.Round(2),
		CompensatedMargin: compensated.Round(2),
		VATAmount:         vatBase.Mul(vatRate).Div(oneHundred).Round(2),
		CarryForward:      carry.Round(2),
		SaleMargins:       saleMargins,
	}, nil
}

// inPeriod reports whether a document date falls inside [start, end].
// Unparseable dates are treated as outside the period.
func inPeriod(date string, start, end time.Time) bool {
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	return !d.Before(start) && !d.After(end)
}
