package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"iva-margem-engine/internal/app"
	"iva-margem-engine/internal/core"
	"iva-margem-engine/internal/demo"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.EngineService, args []string) {
	switch args[0] {
	case "seed":
		res, err := svc.CreateOrReplaceSession(ctx, app.CreateSessionRequest{
			Sales: demo.Sales(),
			Costs: demo.Costs(),
		})
		if err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		fmt.Printf("Session created: %s (%d sales, %d costs)\n",
			res.Session.ID, len(res.Session.Sales), len(res.Session.Costs))

	case "show":
		requireArgs(args, 2, "show <session-id>")
		res, err := svc.GetSession(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to load session: %v", err)
		}
		printSession(res.Session)

	case "associate", "link":
		requireArgs(args, 4, "associate <session-id> <sale-ids> <cost-ids>")
		res, err := svc.Associate(ctx, app.AssociateRequest{
			SessionID: args[1],
			SaleIDs:   splitIDs(args[2]),
			CostIDs:   splitIDs(args[3]),
		})
		if err != nil {
			log.Fatalf("Associate failed: %v", err)
		}
		fmt.Printf("%d edge(s) added, %d total\n", res.Changed, len(res.Edges))

	case "unlink":
		requireArgs(args, 4, "unlink <session-id> <sale-id> <cost-id>")
		res, err := svc.Unlink(ctx, args[1], args[2], args[3])
		if err != nil {
			log.Fatalf("Unlink failed: %v", err)
		}
		if res.Changed == 0 {
			fmt.Println("No such edge.")
		} else {
			fmt.Printf("Edge removed, %d left\n", len(res.Edges))
		}

	case "clear":
		requireArgs(args, 2, "clear <session-id>")
		res, err := svc.ClearAssociations(ctx, args[1])
		if err != nil {
			log.Fatalf("Clear failed: %v", err)
		}
		fmt.Printf("%d edge(s) removed\n", res.Changed)

	case "suggest":
		requireArgs(args, 2, "suggest <session-id> [threshold]")
		req := app.SuggestRequest{SessionID: args[1]}
		if len(args) > 2 {
			t, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				log.Fatalf("Invalid threshold: %v", err)
			}
			req.Threshold = &t
		}
		res, err := svc.SuggestMatches(ctx, req)
		if err != nil {
			log.Fatalf("Suggest failed: %v", err)
		}
		printSuggestions(res)

	case "calc", "calculate":
		requireArgs(args, 2, "calc <session-id> [rate|region]")
		req := app.CalculateRequest{SessionID: args[1]}
		if len(args) > 2 {
			if rate, err := decimal.NewFromString(args[2]); err == nil {
				req.VATRate = rate
			} else {
				req.Region = core.Region(args[2])
			}
		}
		report, err := svc.Calculate(ctx, req)
		if err != nil {
			log.Fatalf("Calculation failed: %v", err)
		}
		printReport(report)

	case "period":
		requireArgs(args, 4, "period <session-id> <start> <end> [carried-loss]")
		req := app.PeriodRequest{
			SessionID: args[1],
			Period:    core.Period{Start: args[2], End: args[3]},
		}
		if len(args) > 4 {
			carried, err := decimal.NewFromString(args[4])
			if err != nil {
				log.Fatalf("Invalid carried loss: %v", err)
			}
			req.PreviousNegativeMargin = carried
		}
		result, err := svc.CalculatePeriod(ctx, req)
		if err != nil {
			log.Fatalf("Period calculation failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)

	case "validate":
		requireArgs(args, 2, "validate <session-id>")
		v, err := svc.ValidateRegime(ctx, args[1])
		if err != nil {
			log.Fatalf("Validation failed: %v", err)
		}
		for _, e := range v.Errors {
			fmt.Println("ERROR:", e)
		}
		for _, w := range v.Warnings {
			fmt.Println("warning:", w)
		}
		if v.Valid {
			fmt.Println("Dataset is fit for the margin regime.")
		} else {
			os.Exit(1)
		}

	case "delete":
		requireArgs(args, 2, "delete <session-id>")
		if err := svc.DeleteSession(ctx, args[1]); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Println("Session deleted.")

	default:
		log.Fatalf("Unknown command: %s\nAvailable: seed, show, associate, unlink, clear, suggest, calc, period, validate, delete", args[0])
	}
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		log.Fatalf("Usage: app %s", usage)
	}
}

// splitIDs parses a comma-separated id list.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func printSession(s *core.Session) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  SESSION %s\n", s.ID)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("  SALES")
	for _, sale := range s.Sales {
		fmt.Printf("  %-4s %-14s %-10s %10s  %s\n",
			sale.ID, sale.Number, sale.Date, sale.Amount.StringFixed(2), sale.Client)
	}
	fmt.Println("  COSTS")
	for _, cost := range s.Costs {
		fmt.Printf("  %-4s %-24s %-10s %10s  %s\n",
			cost.ID, cost.Supplier, cost.Date, cost.Amount.StringFixed(2), cost.Description)
	}
	edges := s.Edges()
	fmt.Printf("  EDGES (%d)\n", len(edges))
	for _, e := range edges {
		fmt.Printf("  %s -> %s\n", e.SaleID, e.CostID)
	}
	fmt.Println(strings.Repeat("=", 70))
}

func printSuggestions(res *app.SuggestResult) {
	if len(res.Suggestions) == 0 {
		fmt.Printf("No matches at or above %.0f%% confidence.\n", res.Threshold)
		return
	}
	fmt.Printf("%-6s %-16s %10s  %s\n", "SALE", "COSTS", "CONFIDENCE", "REASON")
	for _, sg := range res.Suggestions {
		fmt.Printf("%-6s %-16s %9.1f%%  %s\n",
			sg.SaleID, strings.Join(sg.CostIDs, ","), sg.Confidence, sg.Reason)
	}
}

func printReport(report *app.CalculationReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  MARGIN VAT CALCULATION (rate %s%%)\n", report.VATRate)
	fmt.Println(strings.Repeat("-", 78))
	fmt.Printf("  %-14s %10s %10s %10s %9s %10s\n",
		"INVOICE", "SALE", "COSTS", "MARGIN", "VAT", "NET")
	for _, r := range report.Results {
		fmt.Printf("  %-14s %10s %10s %10s %9s %10s\n",
			r.InvoiceNumber,
			r.SaleAmount.StringFixed(2),
			r.AllocatedCosts.StringFixed(2),
			r.GrossMargin.StringFixed(2),
			r.VATAmount.StringFixed(2),
			r.NetMargin.StringFixed(2))
	}
	agg := report.Aggregate
	fmt.Println(strings.Repeat("-", 78))
	fmt.Printf("  %-14s %10s %10s %10s %9s %10s\n", "TOTAL",
		agg.TotalSales.StringFixed(2),
		agg.TotalCosts.StringFixed(2),
		agg.TotalGrossMargin.StringFixed(2),
		agg.TotalVAT.StringFixed(2),
		agg.TotalNetMargin.StringFixed(2))
	fmt.Printf("  Average margin %s%%, effective rate %s%%\n",
		agg.AverageMarginPct.StringFixed(2), agg.EffectiveRate.StringFixed(2))
	for _, issue := range report.Issues {
		fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.InvoiceNumber, issue.Message)
	}
	fmt.Println(strings.Repeat("=", 78))
}
