// verify-engine runs the whole pipeline against an in-memory store and
// checks the numbers by hand: association, allocation conservation,
// suggestion determinism and the margin VAT arithmetic. Exits non-zero
// on the first mismatch.
package main

import (
	"context"
	"log"
	"reflect"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"iva-margem-engine/internal/app"
	"iva-margem-engine/internal/core"
	"iva-margem-engine/internal/demo"
	"iva-margem-engine/internal/session"
)

func main() {
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), zap.NewNop())
	svc := app.NewEngineService(mgr, core.DefaultMatchConfig(), app.Defaults{}, nil)

	res, err := svc.CreateOrReplaceSession(ctx, app.CreateSessionRequest{
		Sales: demo.Sales(),
		Costs: demo.Costs(),
	})
	if err != nil {
		log.Fatalf("[SESSION] create failed: %v", err)
	}
	id := res.Session.ID
	log.Printf("[SESSION] %s created", id)

	// Paris trip: one sale, two costs.
	assoc, err := svc.Associate(ctx, app.AssociateRequest{
		SessionID: id, SaleIDs: []string{"s1"}, CostIDs: []string{"c1", "c2"},
	})
	if err != nil {
		log.Fatalf("[ASSOCIATE] %v", err)
	}
	if assoc.Changed != 2 {
		log.Fatalf("[ASSOCIATE] expected 2 edges, got %d", assoc.Changed)
	}
	log.Println("[ASSOCIATE] success")

	// All-or-nothing: a bad id must reject the whole request.
	if _, err := svc.Associate(ctx, app.AssociateRequest{
		SessionID: id, SaleIDs: []string{"s2", "ghost"}, CostIDs: []string{"c3"},
	}); !core.IsNotFound(err) {
		log.Fatalf("[ASSOCIATE] expected rejection for unknown id, got %v", err)
	}
	after, err := svc.GetSession(ctx, id)
	if err != nil {
		log.Fatalf("[ASSOCIATE] %v", err)
	}
	if len(after.Session.Edges()) != 2 {
		log.Fatalf("[ASSOCIATE] rejected call leaked edges: %d", len(after.Session.Edges()))
	}
	log.Println("[ASSOCIATE] all-or-nothing holds")

	// Suggestions must be identical across runs and never touch the graph.
	threshold := 40.0
	first, err := svc.SuggestMatches(ctx, app.SuggestRequest{SessionID: id, Threshold: &threshold})
	if err != nil {
		log.Fatalf("[SUGGEST] %v", err)
	}
	second, err := svc.SuggestMatches(ctx, app.SuggestRequest{SessionID: id, Threshold: &threshold})
	if err != nil {
		log.Fatalf("[SUGGEST] %v", err)
	}
	if !reflect.DeepEqual(first.Suggestions, second.Suggestions) {
		log.Fatal("[SUGGEST] non-deterministic output")
	}
	log.Printf("[SUGGEST] %d suggestion(s), deterministic", len(first.Suggestions))

	// Margin VAT at 23%: s1 1500 - (620+480) = 400 margin, 92 VAT.
	report, err := svc.Calculate(ctx, app.CalculateRequest{SessionID: id})
	if err != nil {
		log.Fatalf("[CALC] %v", err)
	}
	for _, r := range report.Results {
		if r.SaleID != "s1" {
			continue
		}
		if r.GrossMargin.StringFixed(2) != "400.00" || r.VATAmount.StringFixed(2) != "92.00" {
			log.Fatalf("[CALC] s1 margin %s vat %s, want 400.00 / 92.00",
				r.GrossMargin.StringFixed(2), r.VATAmount.StringFixed(2))
		}
	}
	// The credit note s5 has a negative margin and must owe no VAT.
	for _, r := range report.Results {
		if r.SaleID == "s5" && !r.VATAmount.IsZero() {
			log.Fatalf("[CALC] credit note owes VAT: %s", r.VATAmount)
		}
	}
	log.Println("[CALC] success")

	// Period declaration with a carried loss.
	period, err := svc.CalculatePeriod(ctx, app.PeriodRequest{
		SessionID:              id,
		Period:                 core.Period{Start: "2025-01-01", End: "2025-01-31"},
		PreviousNegativeMargin: decimal.NewFromInt(100),
	})
	if err != nil {
		log.Fatalf("[PERIOD] %v", err)
	}
	if !period.GrossMargin.Sub(period.CompensatedMargin).Equal(decimal.NewFromInt(100)) {
		log.Fatalf("[PERIOD] compensation not applied: gross %s compensated %s",
			period.GrossMargin, period.CompensatedMargin)
	}
	log.Println("[PERIOD] success")

	if err := svc.DeleteSession(ctx, id); err != nil {
		log.Fatalf("[DELETE] %v", err)
	}
	if _, err := svc.GetSession(ctx, id); !core.IsNotFound(err) {
		log.Fatalf("[DELETE] session still readable: %v", err)
	}
	log.Println("[DELETE] success")

	log.Println("[DONE] engine verified.")
}
