package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"iva-margem-engine/internal/core"
)

func periodSession() *core.Session {
	return &core.Session{
		ID: "sess-period",
		Sales: []core.Sale{
			{ID: "s1", Number: "FT 2025/010", Date: "2025-04-05", Amount: decimal.NewFromInt(2000)},
			{ID: "s2", Number: "FT 2025/011", Date: "2025-04-20", Amount: decimal.NewFromInt(1500)},
			{ID: "s3", Number: "FT 2025/012", Date: "2025-05-03", Amount: decimal.NewFromInt(900)},
		},
		Costs: []core.Cost{
			{ID: "c1", Supplier: "TAP Air Portugal", Date: "2025-04-02", Amount: decimal.NewFromInt(1200)},
			{ID: "c2", Supplier: "Hotel Pestana", Date: "2025-04-15", Amount: decimal.NewFromInt(800)},
			{ID: "c3", Supplier: "Douro Azul", Date: "2025-05-01", Amount: decimal.NewFromInt(400)},
		},
	}
}

func TestCalculatePeriod_WindowAndVAT(t *testing.T) {
	s := periodSession()
	april := core.Period{Start: "2025-04-01", End: "2025-04-30"}

	// April: sales 3500, costs 2000, margin 1500, VAT 23% = 345.
	result, err := core.CalculatePeriod(s, april, decimal.Zero, decimal.NewFromInt(23))
	if err != nil {
		t.Fatalf("calculate period: %v", err)
	}
	if result.TotalSales.StringFixed(2) != "3500.00" {
		t.Errorf("total sales = %s, want 3500.00", result.TotalSales.StringFixed(2))
	}
	if result.TotalCosts.StringFixed(2) != "2000.00" {
		t.Errorf("total costs = %s, want 2000.00", result.TotalCosts.StringFixed(2))
	}
	if result.VATAmount.StringFixed(2) != "345.00" {
		t.Errorf("vat = %s, want 345.00", result.VATAmount.StringFixed(2))
	}
	if !result.CarryForward.IsZero() {
		t.Errorf("no loss to carry, got %s", result.CarryForward)
	}
	if len(result.SaleMargins) != 2 {
		t.Errorf("expected 2 sales inside the period, got %d", len(result.SaleMargins))
	}
}

func TestCalculatePeriod_NegativeMarginCompensation(t *testing.T) {
	s := periodSession()
	april := core.Period{Start: "2025-04-01", End: "2025-04-30"}

	// A 1600 carried loss shrinks the taxable margin from 1500 to -100:
	// no VAT due, and the remaining 100 carries forward.
	result, err := core.CalculatePeriod(s, april, decimal.NewFromInt(1600), decimal.NewFromInt(23))
	if err != nil {
		t.Fatalf("calculate period: %v", err)
	}
	if result.CompensatedMargin.StringFixed(2) != "-100.00" {
		t.Errorf("compensated margin = %s, want -100.00", result.CompensatedMargin.StringFixed(2))
	}
	if !result.VATAmount.IsZero() {
		t.Errorf("no VAT due on a compensated loss, got %s", result.VATAmount)
	}
	if result.CarryForward.StringFixed(2) != "-100.00" {
		t.Errorf("carry forward = %s, want -100.00", result.CarryForward.StringFixed(2))
	}
}

func TestCalculatePeriod_PartialCompensation(t *testing.T) {
	s := periodSession()
	april := core.Period{Start: "2025-04-01", End: "2025-04-30"}

	// A 500 carried loss leaves a 1000 taxable margin.
	result, err := core.CalculatePeriod(s, april, decimal.NewFromInt(500), decimal.NewFromInt(23))
	if err != nil {
		t.Fatalf("calculate period: %v", err)
	}
	if result.VATAmount.StringFixed(2) != "230.00" {
		t.Errorf("vat = %s, want 230.00", result.VATAmount.StringFixed(2))
	}
	if !result.CarryForward.IsZero() {
		t.Errorf("loss fully absorbed, carry forward should be 0, got %s", result.CarryForward)
	}
}

func TestCalculatePeriod_InvalidArguments(t *testing.T) {
	s := periodSession()
	tests := []struct {
		name     string
		period   core.Period
		previous decimal.Decimal
		rate     decimal.Decimal
	}{
		{"bad start date", core.Period{Start: "05/04/2025", End: "2025-04-30"}, decimal.Zero, decimal.NewFromInt(23)},
		{"end before start", core.Period{Start: "2025-04-30", End: "2025-04-01"}, decimal.Zero, decimal.NewFromInt(23)},
		{"negative previous margin", core.Period{Start: "2025-04-01", End: "2025-04-30"}, decimal.NewFromInt(-50), decimal.NewFromInt(23)},
		{"rate out of range", core.Period{Start: "2025-04-01", End: "2025-04-30"}, decimal.Zero, decimal.NewFromInt(150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.CalculatePeriod(s, tt.period, tt.previous, tt.rate)
			if !core.IsInvalidArgument(err) {
				t.Errorf("expected InvalidArgumentError, got %v", err)
			}
		})
	}
}

func TestRateForRegion(t *testing.T) {
	tests := []struct {
		region core.Region
		want   int64
	}{
		{core.RegionContinental, 23},
		{core.RegionMadeira, 22},
		{core.RegionAzores, 18},
		{core.RegionIntermediate, 13},
		{core.RegionReduced, 6},
		{core.Region("unknown"), 23},
	}

	for _, tt := range tests {
		if got := core.RateForRegion(tt.region); !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("RateForRegion(%s) = %s, want %d", tt.region, got, tt.want)
		}
	}
}
