// Package demo provides the sample Portuguese travel-agency dataset used
// by seed-demo and the engine self-check. Amounts are margin-regime
// values: sales carry no separate VAT.
package demo

import (
	"github.com/shopspring/decimal"

	"iva-margem-engine/internal/core"
)

func Sales() []core.Sale {
	return []core.Sale{
		{ID: "s1", Number: "FT E2025/1", Date: "2025-01-15", Client: "João Silva - Viagem Paris", Amount: decimal.NewFromFloat(1500.00)},
		{ID: "s2", Number: "FT E2025/2", Date: "2025-01-22", Client: "Maria Costa - Circuito Douro", Amount: decimal.NewFromFloat(890.00)},
		{ID: "s3", Number: "FT E2025/3", Date: "2025-02-03", Client: "Empresa XYZ - Incentivo Madeira", Amount: decimal.NewFromFloat(4200.00)},
		{ID: "s4", Number: "FR E2025/4", Date: "2025-02-14", Client: "Pedro Santos - Escapada Barcelona", Amount: decimal.NewFromFloat(650.00)},
		{ID: "s5", Number: "NC E2025/1", Date: "2025-02-20", Client: "Maria Costa - Circuito Douro", Amount: decimal.NewFromFloat(-150.00)},
	}
}

func Costs() []core.Cost {
	return []core.Cost{
		{ID: "c1", Supplier: "TAP Air Portugal", Description: "Voos Lisboa-Paris ida e volta", Date: "2025-01-10", Amount: decimal.NewFromFloat(620.00), DocumentNumber: "TAP-2025-0144"},
		{ID: "c2", Supplier: "Hotel Le Marais", Description: "Alojamento Paris 3 noites", Date: "2025-01-12", Amount: decimal.NewFromFloat(480.00), DocumentNumber: "LM-88412"},
		{ID: "c3", Supplier: "Douro Azul", Description: "Cruzeiro Douro 2 dias", Date: "2025-01-18", Amount: decimal.NewFromFloat(510.00), DocumentNumber: "DA-2025-031"},
		{ID: "c4", Supplier: "Hotel Savoy Palace", Description: "Grupo incentivo Madeira 12 pax", Date: "2025-01-30", Amount: decimal.NewFromFloat(2760.00), DocumentNumber: "SV-2025-207"},
		{ID: "c5", Supplier: "Vueling", Description: "Voos Lisboa-Barcelona", Date: "2025-02-10", Amount: decimal.NewFromFloat(210.00), DocumentNumber: "VY-55021"},
		{ID: "c6", Supplier: "Hotel Catalonia", Description: "Alojamento Barcelona 2 noites", Date: "2025-02-11", Amount: decimal.NewFromFloat(240.00), DocumentNumber: "CAT-10233"},
		{ID: "c7", Supplier: "Seguros Fidelidade", Description: "Seguro viagem anual", Date: "2025-01-05", Amount: decimal.NewFromFloat(95.00), DocumentNumber: "FID-2025-9"},
	}
}
