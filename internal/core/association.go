package core

// Associate links every (sale, cost) pair in the cartesian product of the
// two id sets, updating both sides of the graph. Existing pairs are left
// untouched and not counted. All ids are validated before any edge is
// written, so an unknown id rejects the whole call with nothing applied.
// Returns the number of edges actually added.
func Associate(s *Session, saleIDs, costIDs []string) (int, error) {
	for _, id := range saleIDs {
		if s.SaleByID(id) == nil {
			return 0, &NotFoundError{Kind: "sale", ID: id}
		}
	}
	for _, id := range costIDs {
		if s.CostByID(id) == nil {
			return 0, &NotFoundError{Kind: "cost", ID: id}
		}
	}

	added := 0
	for _, saleID := range saleIDs {
		sale := s.SaleByID(saleID)
		for _, costID := range costIDs {
			if containsID(sale.LinkedCosts, costID) {
				continue
			}
			cost := s.CostByID(costID)
			sale.LinkedCosts = insertID(sale.LinkedCosts, costID)
			cost.LinkedSales = insertID(cost.LinkedSales, saleID)
			added++
		}
	}
	return added, nil
}

// Unlink removes a single sale-cost edge from both sides of the graph.
// Removing an edge that does not exist is a no-op reported as false.
func Unlink(s *Session, saleID, costID string) (bool, error) {
	sale := s.SaleByID(saleID)
	if sale == nil {
		return false, &NotFoundError{Kind: "sale", ID: saleID}
	}
	cost := s.CostByID(costID)
	if cost == nil {
		return false, &NotFoundError{Kind: "cost", ID: costID}
	}

	var removed bool
	sale.LinkedCosts, removed = removeID(sale.LinkedCosts, costID)
	if removed {
		cost.LinkedSales, _ = removeID(cost.LinkedSales, saleID)
	}
	return removed, nil
}

// ClearAssociations removes every edge in the session, returning the count
// of removed edges. The sale and cost entities themselves are kept.
func ClearAssociations(s *Session) int {
	cleared := 0
	for i := range s.Sales {
		cleared += len(s.Sales[i].LinkedCosts)
		s.Sales[i].LinkedCosts = nil
	}
	for i := range s.Costs {
		s.Costs[i].LinkedSales = nil
	}
	return cleared
}
