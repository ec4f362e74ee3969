package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"delphi/internal/adapters/ai"
	"delphi/internal/agents"
)

const sectionWidth = 80

// printSection renders a framed section header.
func printSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", sectionWidth))
	fmt.Fprintf(w, " %s \n", center(title, sectionWidth-2))
	fmt.Fprintln(w, strings.Repeat("=", sectionWidth))
}

// printAnalysisSummary renders the human-readable report for one completed
// analysis. Sections for agents missing from the envelope are skipped.
func printAnalysisSummary(w io.Writer, result *agents.Result) {
	printSection(w, "TRADING ANALYSIS SUMMARY")

	fmt.Fprintf(w, "\nTicker: %s\n", result.Ticker)
	fmt.Fprintf(w, "Date: %s\n", result.Date)
	fmt.Fprintf(w, "Final Decision: %s\n", strings.ToUpper(result.Decision))
	fmt.Fprintf(w, "Confidence: %s\n", percent(result.Confidence))

	if news := result.Agents.News; news != nil {
		printSection(w, "NEWS ANALYSIS")
		fmt.Fprintf(w, "Overall Sentiment: %s\n", strings.ToUpper(news.OverallSentiment))
		fmt.Fprintf(w, "Confidence: %s\n", percent(news.ConfidenceScore))
		fmt.Fprintf(w, "Summary: %s\n", news.AnalysisSummary)
	}

	if market := result.Agents.Market; market != nil {
		printSection(w, "MARKET ANALYSIS (Technical)")
		fmt.Fprintf(w, "Market Sentiment: %s\n", strings.ToUpper(market.MarketSentiment))
		fmt.Fprintf(w, "Confidence: %s\n", percent(market.ConfidenceScore))
		fmt.Fprintf(w, "Summary: %s\n", market.AnalysisSummary)
	}

	if fund := result.Agents.Fundamentals; fund != nil {
		printSection(w, "FUNDAMENTAL ANALYSIS (Financial)")
		fmt.Fprintf(w, "Fundamental Rating: %s\n", labelize(fund.FundamentalRating))
		fmt.Fprintf(w, "Confidence: %s\n", percent(fund.ConfidenceScore))
		fmt.Fprintf(w, "Summary: %s\n", fund.AnalysisSummary)

		fmt.Fprintf(w, "\nValuation Verdict: %s\n", labelize(fund.Valuation.ValuationVerdict))

		health := fund.FinancialHealth
		fmt.Fprintf(w, "Financial Health: %s\n", strings.ToUpper(health.OverallHealth))
		fmt.Fprintf(w, "  - Liquidity Score: %g/10\n", health.LiquidityScore)
		fmt.Fprintf(w, "  - Leverage Score: %g/10\n", health.LeverageScore)
		fmt.Fprintf(w, "  - Profitability Score: %g/10\n", health.ProfitabilityScore)
		fmt.Fprintf(w, "  - Cash Flow Score: %g/10\n", health.CashFlowScore)
	}

	bull, bear := result.Agents.Bull, result.Agents.Bear
	if bull != nil || bear != nil {
		printSection(w, "DEBATE RESULTS")

		if bull != nil {
			fmt.Fprintf(w, "\nBull Case Conviction: %s\n", percent(bull.ConvictionScore))
			fmt.Fprintf(w, "Bull Recommendation: %s\n", labelize(bull.RecommendedAction))
			fmt.Fprintf(w, "Bull Summary: %s\n", bull.ThesisSummary)
		}

		if bear != nil {
			fmt.Fprintf(w, "\nBear Case Conviction: %s\n", percent(bear.ConvictionScore))
			fmt.Fprintf(w, "Bear Recommendation: %s\n", labelize(bear.RecommendedAction))
			fmt.Fprintf(w, "Bear Summary: %s\n", bear.ThesisSummary)
		}
	}

	printSection(w, "FINAL RECOMMENDATION")
	fmt.Fprintf(w, "\n%s\n", result.Rationale)

	if sup := result.Agents.Supervisor; sup != nil {
		printSection(w, "RISK-TIERED RECOMMENDATIONS")

		printRiskTier(w, "🛡️  LOW RISK (Conservative Investors)", sup.LowRisk)
		printRiskTier(w, "⚖️  MEDIUM RISK (Balanced Investors)", sup.MediumRisk)
		printRiskTier(w, "🚀 HIGH RISK (Aggressive Traders)", sup.HighRisk)

		fmt.Fprintf(w, "\n📊 Bull vs Bear Strength:\n")
		fmt.Fprintf(w, "  Bull Case Strength: %g/10\n", sup.BullCaseStrength)
		fmt.Fprintf(w, "  Bear Case Strength: %g/10\n", sup.BearCaseStrength)
	}
}

// printRiskTier renders the supervisor's guidance for one investor profile.
func printRiskTier(w io.Writer, header string, rec agents.RiskRecommendation) {
	fmt.Fprintf(w, "\n%s:\n", header)
	fmt.Fprintf(w, "  Action: %s\n", labelize(rec.Action))
	fmt.Fprintf(w, "  Position Size: %s\n", strings.ToUpper(rec.PositionSize))
	fmt.Fprintf(w, "  Entry Strategy: %s\n", rec.EntryStrategy)
	if rec.StopLoss != nil && *rec.StopLoss != "" {
		fmt.Fprintf(w, "  Stop Loss: %s\n", *rec.StopLoss)
	}
	fmt.Fprintf(w, "  Rationale: %s\n", rec.Rationale)
}

// printDetailedResults dumps each agent's full structured output as JSON.
func printDetailedResults(w io.Writer, result *agents.Result) {
	printSection(w, "DETAILED RESULTS (JSON)")

	sections := []struct {
		title string
		data  interface{}
	}{
		{"NEWS ANALYSIS", result.Agents.News},
		{"MARKET ANALYSIS", result.Agents.Market},
		{"FUNDAMENTAL ANALYSIS", result.Agents.Fundamentals},
		{"BULL ARGUMENT", result.Agents.Bull},
		{"BEAR ARGUMENT", result.Agents.Bear},
	}

	for _, s := range sections {
		fmt.Fprintf(w, "\n%s:\n", s.title)
		fmt.Fprintln(w, strings.Repeat("-", sectionWidth))

		data, err := json.MarshalIndent(s.data, "", "  ")
		if err != nil {
			fmt.Fprintf(w, "could not encode: %v\n", err)
			continue
		}
		fmt.Fprintln(w, string(data))
	}
}

// printUsageSummary renders token counts and estimated spend per model.
func printUsageSummary(w io.Writer, usage *ai.UsageTracker) {
	snapshot := usage.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	printSection(w, "TOKEN USAGE")

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w)
	for _, k := range keys {
		u := snapshot[k]
		fmt.Fprintf(w, "%s/%s: %d calls, %s in / %s out tokens, $%.4f\n",
			u.Provider, u.Model, u.Calls,
			humanize.Comma(u.InputTokens), humanize.Comma(u.OutputTokens), u.CostUSD)
	}

	in, out, cost := usage.Totals()
	fmt.Fprintf(w, "\nTotal: %s input / %s output tokens, $%.4f estimated\n",
		humanize.Comma(in), humanize.Comma(out), cost)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// labelize turns an enum value like "strong_buy" into "STRONG BUY".
func labelize(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "_", " "))
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
