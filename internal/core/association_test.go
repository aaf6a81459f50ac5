package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"iva-margem-engine/internal/core"
)

func newGraphSession() *core.Session {
	return &core.Session{
		ID: "sess-1",
		Sales: []core.Sale{
			{ID: "s1", Number: "FT 2025/001", Date: "2025-01-15", Client: "João Silva", Amount: decimal.NewFromInt(1000)},
			{ID: "s2", Number: "FT 2025/002", Date: "2025-01-18", Client: "Maria Costa", Amount: decimal.NewFromInt(800)},
		},
		Costs: []core.Cost{
			{ID: "c1", Supplier: "TAP Air Portugal", Description: "Voo de grupo", Date: "2025-01-10", Amount: decimal.NewFromInt(1200)},
			{ID: "c2", Supplier: "Hotel Pestana", Description: "Alojamento", Date: "2025-01-12", Amount: decimal.NewFromInt(450)},
		},
	}
}

func TestAssociate_CartesianProduct(t *testing.T) {
	s := newGraphSession()

	added, err := core.Associate(s, []string{"s1", "s2"}, []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 4 {
		t.Errorf("expected 4 edges added, got %d", added)
	}

	for _, saleID := range []string{"s1", "s2"} {
		sale := s.SaleByID(saleID)
		if len(sale.LinkedCosts) != 2 {
			t.Errorf("sale %s: expected 2 linked costs, got %v", saleID, sale.LinkedCosts)
		}
	}
	for _, costID := range []string{"c1", "c2"} {
		cost := s.CostByID(costID)
		if len(cost.LinkedSales) != 2 {
			t.Errorf("cost %s: expected 2 linked sales, got %v", costID, cost.LinkedSales)
		}
	}
}

func TestAssociate_Idempotent(t *testing.T) {
	s := newGraphSession()

	if _, err := core.Associate(s, []string{"s1"}, []string{"c1", "c2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := core.Associate(s, []string{"s1"}, []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 {
		t.Errorf("re-association should add 0 edges, got %d", added)
	}
	if got := len(s.SaleByID("s1").LinkedCosts); got != 2 {
		t.Errorf("expected 2 linked costs after re-association, got %d", got)
	}
	if got := len(s.CostByID("c1").LinkedSales); got != 1 {
		t.Errorf("expected 1 linked sale after re-association, got %d", got)
	}
}

func TestAssociate_UnknownIDIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		saleIDs []string
		costIDs []string
	}{
		{"unknown sale", []string{"s1", "missing"}, []string{"c1"}},
		{"unknown cost", []string{"s1"}, []string{"c1", "missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newGraphSession()
			_, err := core.Associate(s, tt.saleIDs, tt.costIDs)
			if !core.IsNotFound(err) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
			if got := len(s.Edges()); got != 0 {
				t.Errorf("rejected call must apply nothing, found %d edges", got)
			}
		})
	}
}

func TestUnlink(t *testing.T) {
	s := newGraphSession()
	if _, err := core.Associate(s, []string{"s1"}, []string{"c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := core.Unlink(s, "s1", "c1")
	if err != nil || !removed {
		t.Fatalf("expected edge removal, got removed=%v err=%v", removed, err)
	}
	if got := len(s.Edges()); got != 0 {
		t.Errorf("expected 0 edges after unlink, got %d", got)
	}

	removed, err = core.Unlink(s, "s1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("unlinking a missing edge should report false")
	}
}

func TestClearAssociations(t *testing.T) {
	s := newGraphSession()
	if _, err := core.Associate(s, []string{"s1", "s2"}, []string{"c1", "c2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleared := core.ClearAssociations(s)
	if cleared != 4 {
		t.Errorf("expected 4 cleared edges, got %d", cleared)
	}
	if len(s.Sales) != 2 || len(s.Costs) != 2 {
		t.Error("clearing associations must not delete entities")
	}
	if got := len(s.Edges()); got != 0 {
		t.Errorf("expected empty graph, got %d edges", got)
	}
}
