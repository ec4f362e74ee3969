package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/adapters/ai"
	"delphi/internal/agents"
)

func fullResult() *agents.Result {
	entryStop := "5% below entry"
	trailingStop := "8% trailing stop"
	return &agents.Result{
		Ticker:     "NVDA",
		Date:       "2025-11-01",
		Decision:   "bullish",
		Confidence: 0.68,
		Rationale:  "Bull case narrowly wins on momentum.",
		Agents: agents.AgentOutputs{
			News: &agents.NewsAnalysis{
				AnalysisSummary:  "Coverage skews positive on new product demand.",
				OverallSentiment: "bullish",
				ConfidenceScore:  0.72,
			},
			Market: &agents.MarketAnalysis{
				AnalysisSummary: "Uptrend intact above the 50-day average.",
				MarketSentiment: "bullish",
				ConfidenceScore: 0.64,
			},
			Fundamentals: &agents.FundamentalAnalysis{
				AnalysisSummary: "Margins expanding on datacenter demand.",
				Valuation: agents.ValuationMetrics{
					ValuationVerdict: "fairly_valued",
				},
				FinancialHealth: agents.FinancialHealthMetrics{
					LiquidityScore:     8,
					LeverageScore:      7,
					ProfitabilityScore: 9,
					CashFlowScore:      8.5,
					OverallHealth:      "good",
				},
				FundamentalRating: "buy",
				ConfidenceScore:   0.7,
			},
			Bull: &agents.BullCase{
				ThesisSummary:     "Earnings momentum and expanding margins.",
				ConvictionScore:   0.8,
				RecommendedAction: "strong_buy",
			},
			Bear: &agents.BearCase{
				ThesisSummary:     "Valuation leaves no room for execution slips.",
				ConvictionScore:   0.45,
				RecommendedAction: "avoid",
			},
			Supervisor: &agents.SupervisorDecision{
				ExecutiveSummary:   "Bull case narrowly wins on momentum.",
				BullCaseStrength:   7.5,
				BearCaseStrength:   4,
				ConsensusDirection: "bullish",
				LowRisk: agents.RiskRecommendation{
					Action:        "hold",
					PositionSize:  "quarter",
					EntryStrategy: "Wait for a pullback to the 50-day average",
					StopLoss:      &entryStop,
					Rationale:     "Preserve capital while the trend confirms.",
				},
				MediumRisk: agents.RiskRecommendation{
					Action:        "buy",
					PositionSize:  "half",
					EntryStrategy: "Scale in over two weeks",
					Rationale:     "Balanced exposure to the momentum trade.",
				},
				HighRisk: agents.RiskRecommendation{
					Action:        "strong_buy",
					PositionSize:  "full",
					EntryStrategy: "Enter immediately",
					StopLoss:      &trailingStop,
					Rationale:     "Maximum exposure while momentum holds.",
				},
				FinalConfidence: 0.68,
			},
		},
	}
}

func TestPrintAnalysisSummarySections(t *testing.T) {
	var buf bytes.Buffer
	printAnalysisSummary(&buf, fullResult())
	out := buf.String()

	t.Run("header", func(t *testing.T) {
		assert.Contains(t, out, "TRADING ANALYSIS SUMMARY")
		assert.Contains(t, out, "Ticker: NVDA")
		assert.Contains(t, out, "Date: 2025-11-01")
		assert.Contains(t, out, "Final Decision: BULLISH")
		assert.Contains(t, out, "Confidence: 68.00%")
	})

	t.Run("analysts", func(t *testing.T) {
		assert.Contains(t, out, "NEWS ANALYSIS")
		assert.Contains(t, out, "Overall Sentiment: BULLISH")
		assert.Contains(t, out, "MARKET ANALYSIS (Technical)")
		assert.Contains(t, out, "Uptrend intact above the 50-day average.")
		assert.Contains(t, out, "FUNDAMENTAL ANALYSIS (Financial)")
		assert.Contains(t, out, "Fundamental Rating: BUY")
		assert.Contains(t, out, "Valuation Verdict: FAIRLY VALUED")
		assert.Contains(t, out, "Financial Health: GOOD")
		assert.Contains(t, out, "- Liquidity Score: 8/10")
		assert.Contains(t, out, "- Cash Flow Score: 8.5/10")
	})

	t.Run("debate", func(t *testing.T) {
		assert.Contains(t, out, "DEBATE RESULTS")
		assert.Contains(t, out, "Bull Case Conviction: 80.00%")
		assert.Contains(t, out, "Bull Recommendation: STRONG BUY")
		assert.Contains(t, out, "Bear Case Conviction: 45.00%")
		assert.Contains(t, out, "Bear Recommendation: AVOID")
	})

	t.Run("recommendations", func(t *testing.T) {
		assert.Contains(t, out, "FINAL RECOMMENDATION")
		assert.Contains(t, out, "Bull case narrowly wins on momentum.")
		assert.Contains(t, out, "RISK-TIERED RECOMMENDATIONS")
		assert.Contains(t, out, "LOW RISK (Conservative Investors):")
		assert.Contains(t, out, "Action: HOLD")
		assert.Contains(t, out, "Position Size: QUARTER")
		assert.Contains(t, out, "Stop Loss: 5% below entry")
		assert.Contains(t, out, "HIGH RISK (Aggressive Traders):")
		assert.Contains(t, out, "Bull Case Strength: 7.5/10")
		assert.Contains(t, out, "Bear Case Strength: 4/10")
	})
}

func TestPrintAnalysisSummarySkipsMissingSections(t *testing.T) {
	result := fullResult()
	result.Agents.News = nil
	result.Agents.Bull = nil
	result.Agents.Bear = nil

	var buf bytes.Buffer
	printAnalysisSummary(&buf, result)
	out := buf.String()

	assert.NotContains(t, out, "NEWS ANALYSIS")
	assert.NotContains(t, out, "DEBATE RESULTS")
	assert.Contains(t, out, "MARKET ANALYSIS (Technical)")
	assert.Contains(t, out, "RISK-TIERED RECOMMENDATIONS")
}

func TestPrintRiskTierOmitsEmptyStopLoss(t *testing.T) {
	var buf bytes.Buffer
	printRiskTier(&buf, "⚖️  MEDIUM RISK (Balanced Investors)", fullResult().Agents.Supervisor.MediumRisk)
	out := buf.String()

	assert.Contains(t, out, "Action: BUY")
	assert.Contains(t, out, "Entry Strategy: Scale in over two weeks")
	assert.NotContains(t, out, "Stop Loss:")
}

func TestPrintDetailedResultsDumpsAgentJSON(t *testing.T) {
	var buf bytes.Buffer
	printDetailedResults(&buf, fullResult())
	out := buf.String()

	assert.Contains(t, out, "DETAILED RESULTS (JSON)")
	assert.Contains(t, out, "BULL ARGUMENT:")
	assert.Contains(t, out, `"conviction_score": 0.8`)
	assert.Contains(t, out, `"thesis_summary": "Valuation leaves no room for execution slips."`)
}

func TestPrintUsageSummary(t *testing.T) {
	usage := ai.NewUsageTracker()
	usage.Record(ai.ModelInfo{
		Name:            "gemini-2.5-flash",
		InputCostPer1K:  0.0003,
		OutputCostPer1K: 0.0025,
	}, ai.ProviderNameGemini, 1200, 400)

	var buf bytes.Buffer
	printUsageSummary(&buf, usage)
	out := buf.String()

	assert.Contains(t, out, "TOKEN USAGE")
	assert.Contains(t, out, "gemini/gemini-2.5-flash: 1 calls, 1,200 in / 400 out tokens, $0.0014")
	assert.Contains(t, out, "Total: 1,200 input / 400 output tokens, $0.0014 estimated")
}

func TestPrintUsageSummaryEmptyTrackerPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	printUsageSummary(&buf, ai.NewUsageTracker())
	assert.Empty(t, buf.String())
}

func TestWriteResultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis_NVDA_2025-11-01.json")
	require.NoError(t, writeResultFile(path, fullResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded agents.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "NVDA", decoded.Ticker)
	assert.Equal(t, "bullish", decoded.Decision)
	require.NotNil(t, decoded.Agents.Supervisor)
	assert.InDelta(t, 7.5, decoded.Agents.Supervisor.BullCaseStrength, 1e-9)
}

func TestCachedNote(t *testing.T) {
	saved := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	note := cachedNote(&agents.Result{CachedAt: saved})
	assert.Contains(t, note, "2 hours ago")
	assert.Contains(t, note, "--no-cache")

	note = cachedNote(&agents.Result{CachedAt: "unknown"})
	assert.Equal(t, "Using cached analysis. Pass --no-cache to rerun the pipeline.", note)
}

func TestCenterPadsBothSides(t *testing.T) {
	assert.Equal(t, "  AB  ", center("AB", 6))
	assert.Equal(t, " ABC  ", center("ABC", 6))
	assert.Equal(t, "ABCDEF", center("ABCDEF", 4))
}

func TestLabelize(t *testing.T) {
	assert.Equal(t, "STRONG BUY", labelize("strong_buy"))
	assert.Equal(t, "FAIRLY VALUED", labelize("fairly_valued"))
	assert.Equal(t, "68.50%", percent(0.685))
}
