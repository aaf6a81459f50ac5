package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the document date format used throughout the engine.
// Matches the normalized records produced by the upstream parsers.
const DateLayout = "2006-01-02"

// Sale is a sales document under the margin regime (CIVA Art. 308º).
// Amount excludes VAT: VAT is computed later on the margin, never carried
// on the sale itself. A negative Amount denotes a credit note.
type Sale struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	Date        string          `json:"date"`
	Client      string          `json:"client"`
	Amount      decimal.Decimal `json:"amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	GrossTotal  decimal.Decimal `json:"gross_total"`
	LinkedCosts []string        `json:"linked_costs"`
}

// Cost is a supplier document. Amount is the full document value and is
// never mutated by allocation; allocation is a derived, read-time value.
type Cost struct {
	ID             string          `json:"id"`
	Supplier       string          `json:"supplier"`
	Description    string          `json:"description"`
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	GrossTotal     decimal.Decimal `json:"gross_total"`
	DocumentNumber string          `json:"document_number,omitempty"`
	LinkedSales    []string        `json:"linked_sales"`
}

// InvoiceType maps the Portuguese document number prefix to its type name.
func (s Sale) InvoiceType() string {
	switch {
	case strings.HasPrefix(s.Number, "FT"):
		return "Fatura"
	case strings.HasPrefix(s.Number, "FR"):
		return "Fatura-Recibo"
	case strings.HasPrefix(s.Number, "NC"):
		return "Nota de Crédito"
	case strings.HasPrefix(s.Number, "ND"):
		return "Nota de Débito"
	case strings.HasPrefix(s.Number, "FS"):
		return "Fatura Simplificada"
	default:
		return "Outro"
	}
}

// Edge is one sale-cost association. The graph is stored bidirectionally
// on the entities; Edge is the derived, order-independent view of it.
type Edge struct {
	SaleID string `json:"sale_id"`
	CostID string `json:"cost_id"`
}

// Session is the full working dataset for one client session. It is the
// unit of storage: stores move whole snapshots, and all engine operations
// work on a private clone so a committed snapshot is never mutated.
type Session struct {
	ID          string    `json:"session_id"`
	Sales       []Sale    `json:"sales"`
	Costs       []Cost    `json:"costs"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Clone returns a deep copy of the session snapshot.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Sales = make([]Sale, len(s.Sales))
	for i, sale := range s.Sales {
		sale.LinkedCosts = append([]string(nil), sale.LinkedCosts...)
		dup.Sales[i] = sale
	}
	dup.Costs = make([]Cost, len(s.Costs))
	for i, cost := range s.Costs {
		cost.LinkedSales = append([]string(nil), cost.LinkedSales...)
		dup.Costs[i] = cost
	}
	return &dup
}

// SaleByID returns a pointer into the session's Sales slice, or nil.
func (s *Session) SaleByID(id string) *Sale {
	for i := range s.Sales {
		if s.Sales[i].ID == id {
			return &s.Sales[i]
		}
	}
	return nil
}

// CostByID returns a pointer into the session's Costs slice, or nil.
func (s *Session) CostByID(id string) *Cost {
	for i := range s.Costs {
		if s.Costs[i].ID == id {
			return &s.Costs[i]
		}
	}
	return nil
}

// Edges derives the association edge list, sorted by (sale_id, cost_id)
// so the view is stable regardless of insertion order.
func (s *Session) Edges() []Edge {
	var edges []Edge
	for _, sale := range s.Sales {
		for _, costID := range sale.LinkedCosts {
			edges = append(edges, Edge{SaleID: sale.ID, CostID: costID})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SaleID == edges[j].SaleID {
			return edges[i].CostID < edges[j].CostID
		}
		return edges[i].SaleID < edges[j].SaleID
	})
	return edges
}

// ParseDate parses a document date in the engine's date layout.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// insertID adds id to the set slice keeping it sorted. No-op on duplicates.
func insertID(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	ids = append(ids, id)
	sort.Strings(ids)
	return ids
}

// removeID deletes id from the set slice, reporting whether it was present.
func removeID(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
