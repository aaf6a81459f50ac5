package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ConservationTolerance is the maximum acceptable drift between a cost's
// amount and the sum of its per-sale allocations.
var ConservationTolerance = decimal.NewFromFloat(0.01)

// CostAllocation is the share of one cost document attributed to one sale.
type CostAllocation struct {
	CostID          string          `json:"cost_id"`
	Supplier        string          `json:"supplier"`
	Description     string          `json:"description"`
	DocumentNumber  string          `json:"document_number,omitempty"`
	Date            string          `json:"date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	AllocatedVAT    decimal.Decimal `json:"allocated_vat"`
	SharedWith      int             `json:"shared_with"`
}

// AllocationReport is the derived per-sale view of the association graph.
// It is computed from a snapshot and holds no references into it.
type AllocationReport struct {
	bySale map[string][]CostAllocation

	// UnallocatedCosts lists costs linked to no sale. They contribute to no
	// calculation and are surfaced for operator visibility.
	UnallocatedCosts []Cost
}

// ForSale returns the cost shares attributed to a sale, ordered by cost id.
func (r *AllocationReport) ForSale(saleID string) []CostAllocation {
	return r.bySale[saleID]
}

// TotalForSale sums the allocated amounts for a sale. Zero for a sale with
// no linked costs; that is a legitimate outcome, not an error.
func (r *AllocationReport) TotalForSale(saleID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.bySale[saleID] {
		total = total.Add(a.AllocatedAmount)
	}
	return total
}

// Allocate resolves the association graph into per-sale cost shares using
// the equal-split-per-claim policy: a cost linked to n sales contributes
// amount/n to each of them, regardless of the sale values. Shared costs
// such as a group flight are split evenly among travellers, not by ticket
// price, so the even split is the documented policy here.
//
// The computation is pure and deterministic: linked-id sets are kept
// sorted, amounts stay decimal end to end, and no rounding is applied.
func Allocate(s *Session) (*AllocationReport, error) {
	report := &AllocationReport{bySale: make(map[string][]CostAllocation, len(s.Sales))}

	for _, cost := range s.Costs {
		n := len(cost.LinkedSales)
		if n == 0 {
			report.UnallocatedCosts = append(report.UnallocatedCosts, cost)
			continue
		}

		claims := decimal.NewFromInt(int64(n))
		share := cost.Amount.Div(claims)
		shareVAT := cost.VATAmount.Div(claims)

		// Conservation: the shares must reassemble into the cost's amount
		// within tolerance. A violation means the graph is corrupted and
		// must fail loudly rather than be clamped.
		if drift := share.Mul(claims).Sub(cost.Amount).Abs(); drift.GreaterThan(ConservationTolerance) {
			return nil, &ConsistencyError{
				CostID:    cost.ID,
				Allocated: share.Mul(claims),
				Amount:    cost.Amount,
			}
		}

		for _, saleID := range cost.LinkedSales {
			report.bySale[saleID] = append(report.bySale[saleID], CostAllocation{
				CostID:          cost.ID,
				Supplier:        cost.Supplier,
				Description:     cost.Description,
				DocumentNumber:  cost.DocumentNumber,
				Date:            cost.Date,
				TotalAmount:     cost.Amount,
				AllocatedAmount: share,
				AllocatedVAT:    shareVAT,
				SharedWith:      n,
			})
		}
	}

	for saleID := range report.bySale {
		allocs := report.bySale[saleID]
		sort.Slice(allocs, func(i, j int) bool { return allocs[i].CostID < allocs[j].CostID })
	}

	return report, nil
}
