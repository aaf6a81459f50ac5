package core_test

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"iva-margem-engine/internal/core"
)

// sharedCostSession builds a €1200 group cost claimed by a variable number
// of sales.
func sharedCostSession(t *testing.T, claims int) *core.Session {
	t.Helper()
	s := &core.Session{ID: "sess-alloc"}
	saleIDs := make([]string, 0, claims)
	for i := 0; i < claims; i++ {
		id := string(rune('a' + i))
		saleIDs = append(saleIDs, "s-"+id)
		s.Sales = append(s.Sales, core.Sale{
			ID: "s-" + id, Number: "FT 2025/00" + id, Date: "2025-02-01",
			Amount: decimal.NewFromInt(1000),
		})
	}
	s.Costs = []core.Cost{{
		ID: "c1", Supplier: "TAP Air Portugal", Description: "Voo de grupo",
		Date: "2025-01-28", Amount: decimal.NewFromInt(1200),
	}}
	if _, err := core.Associate(s, saleIDs, []string{"c1"}); err != nil {
		t.Fatalf("associate: %v", err)
	}
	return s
}

func TestAllocate_EqualSplit(t *testing.T) {
	tests := []struct {
		claims int
		want   string
	}{
		{2, "600.00"},
		{3, "400.00"},
	}

	for _, tt := range tests {
		s := sharedCostSession(t, tt.claims)
		report, err := core.Allocate(s)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		for _, sale := range s.Sales {
			got := report.TotalForSale(sale.ID)
			if got.StringFixed(2) != tt.want {
				t.Errorf("%d claims: sale %s allocated %s, want %s", tt.claims, sale.ID, got.StringFixed(2), tt.want)
			}
		}
	}
}

func TestAllocate_Conservation(t *testing.T) {
	// 1000/3 does not divide evenly; the shares must still reassemble into
	// the cost amount within the 0.01 tolerance.
	s := sharedCostSession(t, 3)
	s.Costs[0].Amount = decimal.NewFromInt(1000)

	report, err := core.Allocate(s)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	sum := decimal.Zero
	for _, sale := range s.Sales {
		sum = sum.Add(report.TotalForSale(sale.ID))
	}
	drift := sum.Sub(s.Costs[0].Amount).Abs()
	if drift.GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("allocation drift %s exceeds tolerance", drift)
	}
}

func TestAllocate_OrphanCostReported(t *testing.T) {
	s := &core.Session{
		ID:    "sess-orphan",
		Sales: []core.Sale{{ID: "s1", Amount: decimal.NewFromInt(500), Date: "2025-02-01"}},
		Costs: []core.Cost{{ID: "c1", Supplier: "Hotel", Amount: decimal.NewFromInt(300), Date: "2025-01-30"}},
	}

	report, err := core.Allocate(s)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(report.UnallocatedCosts) != 1 || report.UnallocatedCosts[0].ID != "c1" {
		t.Errorf("expected c1 reported as unallocated, got %+v", report.UnallocatedCosts)
	}
	if !report.TotalForSale("s1").IsZero() {
		t.Error("orphan cost must contribute nothing to any sale")
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	s := sharedCostSession(t, 3)
	s.Costs = append(s.Costs, core.Cost{
		ID: "c2", Supplier: "Hotel Pestana", Description: "Alojamento",
		Date: "2025-01-29", Amount: decimal.NewFromFloat(333.33),
	})
	if _, err := core.Associate(s, []string{"s-a", "s-b"}, []string{"c2"}); err != nil {
		t.Fatalf("associate: %v", err)
	}

	first, err := core.Allocate(s)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	second, err := core.Allocate(s)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	for _, sale := range s.Sales {
		a, b := first.ForSale(sale.ID), second.ForSale(sale.ID)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("sale %s: allocation differs between identical runs", sale.ID)
		}
	}
}
