package app

import (
	"context"

	"github.com/shopspring/decimal"

	"iva-margem-engine/internal/core"
)

// EngineService is the single interface all adapters (CLI, future HTTP)
// call. It decouples presentation from the margin-regime logic.
// Implementations must contain no fmt.Println and no display logic of
// any kind.
type EngineService interface {
	// CreateOrReplaceSession commits a fresh session snapshot. An empty
	// SessionID gets a generated one; a known id is replaced wholesale.
	CreateOrReplaceSession(ctx context.Context, req CreateSessionRequest) (*SessionResult, error)

	// GetSession returns the current snapshot for a session.
	GetSession(ctx context.Context, sessionID string) (*SessionResult, error)

	// DeleteSession removes a session and everything in it.
	DeleteSession(ctx context.Context, sessionID string) error

	// Associate links every listed sale to every listed cost. The call is
	// all-or-nothing: one unknown id rejects the whole request.
	Associate(ctx context.Context, req AssociateRequest) (*AssociateResult, error)

	// Unlink removes a single sale-cost association. Removing an absent
	// edge is not an error.
	Unlink(ctx context.Context, sessionID, saleID, costID string) (*AssociateResult, error)

	// ClearAssociations removes every edge in the session, keeping the
	// documents themselves.
	ClearAssociations(ctx context.Context, sessionID string) (*AssociateResult, error)

	// SuggestMatches scores unlinked costs against sales and returns
	// suggestions at or above the confidence threshold. Suggestions are
	// advisory: the session is never modified, the caller decides what to
	// pass to Associate.
	SuggestMatches(ctx context.Context, req SuggestRequest) (*SuggestResult, error)

	// Calculate runs the margin-regime VAT calculation over the whole
	// session at the given rate and returns per-sale results, aggregate
	// totals and review issues.
	Calculate(ctx context.Context, req CalculateRequest) (*CalculationReport, error)

	// CalculatePeriod computes the VAT due for a declaration period with
	// negative-margin compensation from earlier periods.
	CalculatePeriod(ctx context.Context, req PeriodRequest) (*core.PeriodResult, error)

	// ValidateRegime checks the session's documents for margin-regime
	// fitness (no separate VAT on sales, plausibility warnings).
	ValidateRegime(ctx context.Context, sessionID string) (*core.RegimeValidation, error)
}

// CreateSessionRequest carries the documents for a new or replaced session.
type CreateSessionRequest struct {
	SessionID string
	Sales     []core.Sale
	Costs     []core.Cost
}

// AssociateRequest links a set of sales to a set of costs in one call.
type AssociateRequest struct {
	SessionID string
	SaleIDs   []string
	CostIDs   []string
}

// SuggestRequest tunes one auto-match run. Threshold is optional — nil
// falls back to the service default, a pointer to 0 is the literal
// threshold 0. MaxMatches of zero falls back to the default.
type SuggestRequest struct {
	SessionID  string
	Threshold  *float64
	MaxMatches int
}

// CalculateRequest selects the VAT rate for a calculation run. A zero
// rate falls back to the service default; Region, when set, overrides
// the rate with the regional one.
type CalculateRequest struct {
	SessionID string
	VATRate   decimal.Decimal
	Region    core.Region
}

// PeriodRequest asks for the VAT due in one declaration period.
// PreviousNegativeMargin is the magnitude of the loss carried in from
// earlier periods.
type PeriodRequest struct {
	SessionID              string
	Period                 core.Period
	PreviousNegativeMargin decimal.Decimal
	VATRate                decimal.Decimal
}
