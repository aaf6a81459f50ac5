package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"iva-margem-engine/internal/core"
	"iva-margem-engine/internal/session"
)

// Defaults are the service-wide fallbacks applied when a request leaves
// the tunable fields zero. Zero-value Defaults resolve to the standard
// continental setup: rate 23, threshold 60, max 10 matches.
type Defaults struct {
	VATRate        decimal.Decimal
	MatchThreshold float64
	MatchMax       int
}

func (d Defaults) withFallbacks() Defaults {
	if d.VATRate.IsZero() {
		d.VATRate = core.RateForRegion(core.RegionContinental)
	}
	if d.MatchThreshold == 0 {
		d.MatchThreshold = 60
	}
	if d.MatchMax == 0 {
		d.MatchMax = 10
	}
	return d
}

type engineService struct {
	sessions *session.Manager
	match    core.MatchConfig
	defaults Defaults
	log      *zap.Logger
}

// NewEngineService constructs an engineService that satisfies EngineService.
func NewEngineService(sessions *session.Manager, match core.MatchConfig, defaults Defaults, log *zap.Logger) EngineService {
	if log == nil {
		log = zap.NewNop()
	}
	return &engineService{
		sessions: sessions,
		match:    match,
		defaults: defaults.withFallbacks(),
		log:      log,
	}
}

// CreateOrReplaceSession commits a fresh session snapshot.
func (e *engineService) CreateOrReplaceSession(ctx context.Context, req CreateSessionRequest) (*SessionResult, error) {
	seen := make(map[string]bool, len(req.Sales))
	for _, sale := range req.Sales {
		if sale.ID == "" {
			return nil, &core.InvalidArgumentError{Field: "sales", Reason: "sale with empty id"}
		}
		if seen[sale.ID] {
			return nil, &core.InvalidArgumentError{Field: "sales", Reason: "duplicate sale id " + sale.ID}
		}
		seen[sale.ID] = true
	}
	seen = make(map[string]bool, len(req.Costs))
	for _, cost := range req.Costs {
		if cost.ID == "" {
			return nil, &core.InvalidArgumentError{Field: "costs", Reason: "cost with empty id"}
		}
		if seen[cost.ID] {
			return nil, &core.InvalidArgumentError{Field: "costs", Reason: "duplicate cost id " + cost.ID}
		}
		seen[cost.ID] = true
	}

	s, err := e.sessions.CreateOrReplace(ctx, req.SessionID, req.Sales, req.Costs)
	if err != nil {
		return nil, err
	}
	return &SessionResult{Session: s}, nil
}

// GetSession returns the current snapshot for a session.
func (e *engineService) GetSession(ctx context.Context, sessionID string) (*SessionResult, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, mapSessionErr(err, sessionID)
	}
	return &SessionResult{Session: s}, nil
}

// DeleteSession removes a session and everything in it.
func (e *engineService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return mapSessionErr(err, sessionID)
	}
	e.log.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// Associate links every listed sale to every listed cost, all-or-nothing.
func (e *engineService) Associate(ctx context.Context, req AssociateRequest) (*AssociateResult, error) {
	var added int
	s, err := e.sessions.Mutate(ctx, req.SessionID, func(s *core.Session) error {
		var err error
		added, err = core.Associate(s, req.SaleIDs, req.CostIDs)
		return err
	})
	if err != nil {
		return nil, mapSessionErr(err, req.SessionID)
	}
	e.log.Info("associations added", zap.String("session_id", req.SessionID), zap.Int("edges", added))
	return &AssociateResult{Session: s, Edges: s.Edges(), Changed: added}, nil
}

// Unlink removes a single sale-cost association.
func (e *engineService) Unlink(ctx context.Context, sessionID, saleID, costID string) (*AssociateResult, error) {
	var removed bool
	s, err := e.sessions.Mutate(ctx, sessionID, func(s *core.Session) error {
		var err error
		removed, err = core.Unlink(s, saleID, costID)
		return err
	})
	if err != nil {
		return nil, mapSessionErr(err, sessionID)
	}
	changed := 0
	if removed {
		changed = 1
	}
	return &AssociateResult{Session: s, Edges: s.Edges(), Changed: changed}, nil
}

// ClearAssociations removes every edge in the session.
func (e *engineService) ClearAssociations(ctx context.Context, sessionID string) (*AssociateResult, error) {
	var cleared int
	s, err := e.sessions.Mutate(ctx, sessionID, func(s *core.Session) error {
		cleared = core.ClearAssociations(s)
		return nil
	})
	if err != nil {
		return nil, mapSessionErr(err, sessionID)
	}
	e.log.Info("associations cleared", zap.String("session_id", sessionID), zap.Int("edges", cleared))
	return &AssociateResult{Session: s, Edges: nil, Changed: cleared}, nil
}

// SuggestMatches scores unlinked costs against sales. Advisory only.
func (e *engineService) SuggestMatches(ctx context.Context, req SuggestRequest) (*SuggestResult, error) {
	threshold := e.defaults.MatchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	maxMatches := req.MaxMatches
	if maxMatches == 0 {
		maxMatches = e.defaults.MatchMax
	}

	s, err := e.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, mapSessionErr(err, req.SessionID)
	}
	suggestions, err := core.Suggest(s, threshold, maxMatches, e.match)
	if err != nil {
		return nil, err
	}
	return &SuggestResult{Suggestions: suggestions, Threshold: threshold}, nil
}

// Calculate runs the margin-regime VAT calculation over the whole session.
func (e *engineService) Calculate(ctx context.Context, req CalculateRequest) (*CalculationReport, error) {
	rate := req.VATRate
	if req.Region != "" {
		rate = core.RateForRegion(req.Region)
	}
	if rate.IsZero() {
		rate = e.defaults.VATRate
	}

	s, err := e.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, mapSessionErr(err, req.SessionID)
	}
	results, aggregate, err := core.CalculateAll(s, rate)
	if err != nil {
		return nil, err
	}
	e.log.Info("calculation completed",
		zap.String("session_id", req.SessionID),
		zap.String("vat_rate", rate.String()),
		zap.Int("documents", aggregate.DocumentsProcessed))
	return &CalculationReport{
		Results:   results,
		Aggregate: aggregate,
		Issues:    core.ReviewCalculations(results),
		VATRate:   rate.String(),
	}, nil
}

// CalculatePeriod computes the VAT due for a declaration period.
func (e *engineService) CalculatePeriod(ctx context.Context, req PeriodRequest) (*core.PeriodResult, error) {
	rate := req.VATRate
	if rate.IsZero() {
		rate = e.defaults.VATRate
	}

	s, err := e.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, mapSessionErr(err, req.SessionID)
	}
	return core.CalculatePeriod(s, req.Period, req.PreviousNegativeMargin, rate)
}

// ValidateRegime checks the session's documents for margin-regime fitness.
func (e *engineService) ValidateRegime(ctx context.Context, sessionID string) (*core.RegimeValidation, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, mapSessionErr(err, sessionID)
	}
	v := core.ValidateRegimeData(s)
	return &v, nil
}

// mapSessionErr turns the store's sentinel into the engine's typed error
// so callers see one error taxonomy regardless of backend.
func mapSessionErr(err error, sessionID string) error {
	if errors.Is(err, session.ErrNotFound) {
		return &core.NotFoundError{Kind: "session", ID: sessionID}
	}
	return err
}
