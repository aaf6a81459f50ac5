package app

import "iva-margem-engine/internal/core"

// SessionResult is returned by session lifecycle operations.
type SessionResult struct {
	Session *core.Session
}

// AssociateResult is returned by the graph mutation operations. Edges is
// the full edge list after the mutation; Changed counts the edges the
// call actually added or removed.
type AssociateResult struct {
	Session *core.Session
	Edges   []core.Edge
	Changed int
}

// SuggestResult is returned by SuggestMatches.
type SuggestResult struct {
	Suggestions []core.Suggestion
	Threshold   float64
}

// CalculationReport is returned by Calculate.
type CalculationReport struct {
	Results   []core.CalculationResult
	Aggregate *core.AggregateReport
	Issues    []core.ReviewIssue
	VATRate   string
}
