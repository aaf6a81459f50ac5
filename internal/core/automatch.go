package core

import (
	"fmt"
	"sort"
	"strings"
)

// MatchConfig holds the tunable weights of the auto-match scoring
// heuristic. The weights were implicit constants in earlier versions of
// the matcher; they are an explicit structure so the heuristic stays
// auditable and testable in isolation.
type MatchConfig struct {
	// Date proximity. Full credit decays linearly inside NearWindowDays;
	// beyond it the pair starts at DateWeight/2 and loses FarSlope points
	// per day up to FarWindowDays, then zero.
	DateWeight     float64
	NearWindowDays int
	FarWindowDays  int
	FarSlope       float64

	// Amount plausibility. A cost scores when it is a plausible fraction
	// of the sale amount, between RatioMin and RatioMax. A cost at or
	// above the sale amount scores zero.
	AmountWeight float64
	RatioMin     float64
	RatioMax     float64

	// Text correlation between cost supplier/description tokens and the
	// sale's client text, after stopword removal.
	KeywordWeight float64
	KeywordMax    float64
	Stopwords     []string

	// SequenceBonus is granted when the cost is dated before an invoice
	// (FT) sale, the usual ordering for direct costs.
	SequenceBonus float64
}

// DefaultMatchConfig returns the production weights: 40 points for date
// proximity, 30 for amount plausibility, 30 for text correlation, plus a
// 10 point ordering bonus, on a 0-100 confidence scale.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		DateWeight:     40,
		NearWindowDays: 7,
		FarWindowDays:  30,
		FarSlope:       0.5,
		AmountWeight:   30,
		RatioMin:       0.10,
		RatioMax:       0.80,
		KeywordWeight:  10,
		KeywordMax:     30,
		Stopwords:      []string{"de", "da", "do", "e"},
		SequenceBonus:  10,
	}
}

// Suggestion proposes linking a set of costs to one sale. Suggestions are
// advisory: the caller decides whether to commit them via Associate.
type Suggestion struct {
	SaleID     string   `json:"sale_id"`
	CostIDs    []string `json:"cost_ids"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
}

type scoredPair struct {
	saleID  string
	costID  string
	score   float64
	reasons []string
}

// Suggest scores every (sale, cost) candidate pair where the cost is not
// yet linked to any sale, and returns at most maxMatches qualifying pairs
// grouped as one suggestion per sale, best pairs first. A cost that
// qualifies for several sales is claimed by its highest-scoring sale
// only, so committing every suggestion never splits a cost across sales.
// The session is never mutated: calling Suggest twice with the same
// inputs yields the same ordered result.
//
// Candidates without a parseable date are skipped rather than failing the
// whole run. An empty session yields an empty suggestion list.
func Suggest(s *Session, threshold float64, maxMatches int, cfg MatchConfig) ([]Suggestion, error) {
	if threshold < 0 || threshold > 100 {
		return nil, &InvalidArgumentError{Field: "threshold", Reason: "must be between 0 and 100"}
	}
	if maxMatches < 1 {
		return nil, &InvalidArgumentError{Field: "max_matches", Reason: "must be at least 1"}
	}

	var pairs []scoredPair
	for _, cost := range s.Costs {
		if len(cost.LinkedSales) > 0 {
			continue
		}
		costDate, err := ParseDate(cost.Date)
		if err != nil {
			continue
		}
		for _, sale := range s.Sales {
			saleDate, err := ParseDate(sale.Date)
			if err != nil {
				continue
			}
			score, reasons := scorePair(sale, cost, saleDate.Sub(costDate).Hours()/24, cfg)
			if score >= threshold {
				pairs = append(pairs, scoredPair{saleID: sale.ID, costID: cost.ID, score: score, reasons: reasons})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		if pairs[i].saleID != pairs[j].saleID {
			return pairs[i].saleID < pairs[j].saleID
		}
		return pairs[i].costID < pairs[j].costID
	})
	// Each cost goes to its best-scoring sale; later pairs for the same
	// cost are dropped. The sort above makes "first seen" mean "best".
	claimed := make(map[string]bool, len(pairs))
	kept := pairs[:0]
	for _, p := range pairs {
		if claimed[p.costID] {
			continue
		}
		claimed[p.costID] = true
		kept = append(kept, p)
	}
	pairs = kept

	if len(pairs) > maxMatches {
		pairs = pairs[:maxMatches]
	}

	// One suggestion entry per sale: qualifying cost ids in score order,
	// confidence and reason taken from the sale's best pair.
	bySale := make(map[string]*Suggestion)
	var order []string
	for _, p := range pairs {
		entry, ok := bySale[p.saleID]
		if !ok {
			entry = &Suggestion{
				SaleID:     p.saleID,
				Confidence: p.score,
				Reason:     strings.Join(p.reasons, "; "),
			}
			bySale[p.saleID] = entry
			order = append(order, p.saleID)
		}
		entry.CostIDs = append(entry.CostIDs, p.costID)
	}

	suggestions := make([]Suggestion, 0, len(order))
	for _, saleID := range order {
		suggestions = append(suggestions, *bySale[saleID])
	}
	return suggestions, nil
}

// scorePair computes the confidence for one candidate pair. signedDays is
// saleDate minus costDate in days, so a positive value means the cost
// precedes the sale.
func scorePair(sale Sale, cost Cost, signedDays float64, cfg MatchConfig) (float64, []string) {
	var score float64
	var reasons []string

	days := signedDays
	if days < 0 {
		days = -days
	}
	switch {
	case days <= float64(cfg.NearWindowDays):
		slope := cfg.DateWeight / (float64(cfg.NearWindowDays) + 1)
		score += cfg.DateWeight - slope*days
		reasons = append(reasons, fmt.Sprintf("date proximity (%.0f days)", days))
	case days <= float64(cfg.FarWindowDays):
		base := cfg.DateWeight / 2
		if d := base - cfg.FarSlope*(days-float64(cfg.NearWindowDays)); d > 0 {
			score += d
			reasons = append(reasons, fmt.Sprintf("date within window (%.0f days)", days))
		}
	}

	if cost.Amount.LessThan(sale.Amount) && sale.Amount.IsPositive() {
		ratio := cost.Amount.Div(sale.Amount).InexactFloat64()
		if ratio >= cfg.RatioMin && ratio <= cfg.RatioMax {
			score += cfg.AmountWeight * ratio
			reasons = append(reasons, fmt.Sprintf("value ratio %.0f%%", ratio*100))
		}
	}

	if shared := sharedKeywords(sale, cost, cfg.Stopwords); len(shared) > 0 {
		kw := float64(len(shared)) * cfg.KeywordWeight
		if kw > cfg.KeywordMax {
			kw = cfg.KeywordMax
		}
		score += kw
		reasons = append(reasons, "keywords: "+strings.Join(shared, ", "))
	}

	if sale.InvoiceType() == "Fatura" && signedDays > 0 {
		score += cfg.SequenceBonus
		reasons = append(reasons, "cost before invoice")
	}

	return score, reasons
}

// sharedKeywords returns the sorted, case-insensitive token overlap between
// the cost's supplier/description and the sale's client text.
func sharedKeywords(sale Sale, cost Cost, stopwords []string) []string {
	costTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(cost.Description + " " + cost.Supplier)) {
		costTokens[tok] = struct{}{}
	}

	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stop[w] = struct{}{}
	}

	seen := make(map[string]struct{})
	var shared []string
	for _, tok := range strings.Fields(strings.ToLower(sale.Client)) {
		if _, isStop := stop[tok]; isStop {
			continue
		}
		if _, ok := costTokens[tok]; !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		shared = append(shared, tok)
	}
	sort.Strings(shared)
	return shared
}
