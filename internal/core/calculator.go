package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// CalculationResult is the margin-regime outcome for a single sale. All
// monetary fields are rounded to 2 decimal places at this presentation
// boundary; intermediate math stays unrounded.
type CalculationResult struct {
	SaleID           string           `json:"sale_id"`
	InvoiceNumber    string           `json:"invoice_number"`
	InvoiceType      string           `json:"invoice_type"`
	Date             string           `json:"date"`
	Client           string           `json:"client"`
	SaleAmount       decimal.Decimal  `json:"sale_amount"`
	AllocatedCosts   decimal.Decimal  `json:"total_allocated_costs"`
	GrossMargin      decimal.Decimal  `json:"gross_margin"`
	VATRate          decimal.Decimal  `json:"vat_rate"`
	VATAmount        decimal.Decimal  `json:"vat_amount"`
	NetMargin        decimal.Decimal  `json:"net_margin"`
	MarginPercentage decimal.Decimal  `json:"margin_percentage"`
	LinkedCosts      []CostAllocation `json:"linked_costs"`
}

// AggregateReport sums the per-sale results. Totals are computed from the
// unrounded values and rounded once, so shared costs are never double
// counted and rounding drift does not accumulate.
type AggregateReport struct {
	TotalSales          decimal.Decimal `json:"total_sales"`
	TotalCosts          decimal.Decimal `json:"total_costs"`
	TotalGrossMargin    decimal.Decimal `json:"total_gross_margin"`
	TotalVAT            decimal.Decimal `json:"total_vat"`
	TotalNetMargin      decimal.Decimal `json:"total_net_margin"`
	AverageMarginPct    decimal.Decimal `json:"average_margin_percentage"`
	EffectiveRate       decimal.Decimal `json:"effective_rate"`
	DocumentsProcessed  int             `json:"documents_processed"`
	DocumentsWithMargin int             `json:"documents_with_margin"`
	DocumentsWithLoss   int             `json:"documents_with_loss"`
}

// ReviewIssue is an operator-facing warning produced while reviewing a
// calculation run. Issues never fail the calculation.
type ReviewIssue struct {
	Severity      string `json:"severity"` // "warning" or "info"
	InvoiceNumber string `json:"invoice_number"`
	Message       string `json:"message"`
}

// CalculateAll computes the margin-regime VAT for every sale in the
// snapshot. VAT is due only on positive gross margins: a loss or
// break-even sale owes zero VAT, the regime grants no refund on negative
// margins. vatRate is a percentage in [0, 100].
func CalculateAll(s *Session, vatRate decimal.Decimal) ([]CalculationResult, *AggregateReport, error) {
	if vatRate.IsNegative() || vatRate.GreaterThan(oneHundred) {
		return nil, nil, &InvalidArgumentError{Field: "vat_rate", Reason: "must be between 0 and 100"}
	}

	allocation, err := Allocate(s)
	if err != nil {
		return nil, nil, err
	}

	results := make([]CalculationResult, 0, len(s.Sales))
	agg := &AggregateReport{DocumentsProcessed: len(s.Sales)}
	totalSales := decimal.Zero
	totalCosts := decimal.Zero
	totalGross := decimal.Zero
	totalVAT := decimal.Zero
	totalNet := decimal.Zero

	for _, sale := range s.Sales {
		allocated := allocation.TotalForSale(sale.ID)
		gross := sale.Amount.Sub(allocated)

		vat := decimal.Zero
		if gross.IsPositive() {
			vat = gross.Mul(vatRate).Div(oneHundred)
		}
		net := gross.Sub(vat)

		marginPct := decimal.Zero
		if !sale.Amount.IsZero() {
			marginPct = gross.Div(sale.Amount).Mul(oneHundred)
		}

		if gross.IsPositive() {
			agg.DocumentsWithMargin++
		} else if gross.IsNegative() {
			agg.DocumentsWithLoss++
		}

		totalSales = totalSales.Add(sale.Amount)
		totalCosts = totalCosts.Add(allocated)
		totalGross = totalGross.Add(gross)
		totalVAT = totalVAT.Add(vat)
		totalNet = totalNet.Add(net)

		results = append(results, CalculationResult{
			SaleID:           sale.ID,
			InvoiceNumber:    sale.Number,
			InvoiceType:      sale.InvoiceType(),
			Date:             sale.Date,
			Client:           sale.Client,
			SaleAmount:       sale.Amount.Round(2),
			AllocatedCosts:   allocated.Round(2),
			GrossMargin:      gross.Round(2),
			VATRate:          vatRate,
			VATAmount:        vat.Round(2),
			NetMargin:        net.Round(2),
			MarginPercentage: marginPct.Round(2),
			LinkedCosts:      roundAllocations(allocation.ForSale(sale.ID)),
		})
	}

	agg.TotalSales = totalSales.Round(2)
	agg.TotalCosts = totalCosts.Round(2)
	agg.TotalGrossMargin = totalGross.Round(2)
	agg.TotalVAT = totalVAT.Round(2)
	agg.TotalNetMargin = totalNet.Round(2)
	if totalSales.IsPositive() {
		agg.AverageMarginPct = totalGross.Div(totalSales).Mul(oneHundred).Round(2)
	}
	if totalGross.IsPositive() {
		agg.EffectiveRate = totalVAT.Div(totalGross).Mul(oneHundred).Round(2)
	}

	return results, agg, nil
}

// ReviewCalculations flags results an operator should look at: sales with
// no costs at all, negative margins, and unusually high margins. These are
// normal outcomes, surfaced for visibility only.
func ReviewCalculations(results []CalculationResult) []ReviewIssue {
	var issues []ReviewIssue
	for _, r := range results {
		if len(r.LinkedCosts) == 0 && r.SaleAmount.IsPositive() {
			issues = append(issues, ReviewIssue{
				Severity:      "warning",
				InvoiceNumber: r.InvoiceNumber,
				Message:       "sale has no associated costs, full amount counts as margin",
			})
		}
		if r.GrossMargin.IsNegative() {
			issues = append(issues, ReviewIssue{
				Severity:      "warning",
				InvoiceNumber: r.InvoiceNumber,
				Message:       fmt.Sprintf("negative margin: €%s", r.GrossMargin.StringFixed(2)),
			})
		}
		if r.MarginPercentage.GreaterThan(decimal.NewFromInt(80)) {
			issues = append(issues, ReviewIssue{
				Severity:      "info",
				InvoiceNumber: r.InvoiceNumber,
				Message:       fmt.Sprintf("high margin: %s%%", r.MarginPercentage.StringFixed(2)),
			})
		}
	}
	return issues
}

func roundAllocations(allocs []CostAllocation) []CostAllocation {
	rounded := make([]CostAllocation, len(allocs))
	for i, a := range allocs {
		a.AllocatedAmount = a.AllocatedAmount.Round(2)
		a.AllocatedVAT = a.AllocatedVAT.Round(2)
		rounded[i] = a
	}
	return rounded
}
