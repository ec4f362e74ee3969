package agents

import (
	"fmt"
	"strings"

	"delphi/pkg/errors"
)

// Step outputs mirror the response schemas the models are held to. Validate
// is called after decoding; it checks enum fields and numeric ranges so
// downstream consumers never see out-of-vocabulary values.

// NewsItem is one article kept by the news analyst.
type NewsItem struct {
	Title          string   `json:"title"`
	PublishedAt    string   `json:"published_at"`
	Source         string   `json:"source"`
	URL            string   `json:"url"`
	Tags           []string `json:"tags"`
	Sentiment      string   `json:"sentiment"`
	ImpactScope    string   `json:"impact_scope"`
	RelevanceScore float64  `json:"relevance_score"`
	Summary        string   `json:"summary"`
}

// MacroTheme is a macro or sector theme affecting the company.
type MacroTheme struct {
	Theme                string   `json:"theme"`
	Direction            string   `json:"direction"`
	EvidenceCount        int      `json:"evidence_count"`
	RepresentativeTitles []string `json:"representative_titles"`
}

// CompanyImpact summarizes transmission channels from news to the company.
type CompanyImpact struct {
	DemandOutlook   string `json:"demand_outlook"`
	CostPressure    string `json:"cost_pressure"`
	RegulatoryRisk  string `json:"regulatory_risk"`
	ValuationImpact string `json:"valuation_impact"`
	Reasoning       string `json:"reasoning"`
}

// CoverageStats counts the article set behind a news analysis.
type CoverageStats struct {
	Articles     int `json:"articles"`
	Sources      int `json:"sources"`
	UniqueTopics int `json:"unique_topics"`
	RawArticles  int `json:"raw_articles"`
}

// NewsAnalysis is the news analyst's structured output.
type NewsAnalysis struct {
	AnalysisSummary     string        `json:"analysis_summary"`
	LookbackWindowDays  int           `json:"lookback_window_days"`
	CoverageStats       CoverageStats `json:"coverage_stats"`
	MacroThemes         []MacroTheme  `json:"macro_themes"`
	CompanyImpact       CompanyImpact `json:"company_impact"`
	Catalysts           []string      `json:"catalysts"`
	RiskRadar           []string      `json:"risk_radar"`
	OverallSentiment    string        `json:"overall_sentiment"`
	ConfidenceScore     float64       `json:"confidence_score"`
	HighlightedArticles []NewsItem    `json:"highlighted_articles"`
	Sources             []string      `json:"sources"`
}

func (n *NewsAnalysis) Validate() error {
	m := &errors.MultiError{}
	checkRequired(m, "analysis_summary", n.AnalysisSummary)
	checkEnum(m, "overall_sentiment", n.OverallSentiment, "bullish", "bearish", "neutral")
	checkRange(m, "confidence_score", n.ConfidenceScore, 0, 1)
	checkEnum(m, "company_impact.demand_outlook", n.CompanyImpact.DemandOutlook, "positive", "negative", "neutral", "uncertain")
	checkEnum(m, "company_impact.cost_pressure", n.CompanyImpact.CostPressure, "increasing", "decreasing", "stable", "uncertain")
	checkEnum(m, "company_impact.regulatory_risk", n.CompanyImpact.RegulatoryRisk, "elevated", "moderate", "low", "uncertain")
	checkEnum(m, "company_impact.valuation_impact", n.CompanyImpact.ValuationImpact, "expansion", "compression", "neutral", "uncertain")
	for i, theme := range n.MacroThemes {
		checkEnum(m, fmt.Sprintf("macro_themes[%d].direction", i), theme.Direction, "tailwind", "headwind", "mixed")
	}
	for i, item := range n.HighlightedArticles {
		checkEnum(m, fmt.Sprintf("highlighted_articles[%d].sentiment", i), item.Sentiment, "bullish", "bearish", "neutral")
		checkEnum(m, fmt.Sprintf("highlighted_articles[%d].impact_scope", i), item.ImpactScope, "company", "sector", "macro")
		checkRange(m, fmt.Sprintf("highlighted_articles[%d].relevance_score", i), item.RelevanceScore, 0, 1)
	}
	return violation(m)
}

// SelectedIndicator is one technical indicator the market analyst chose to
// highlight along with its reading.
type SelectedIndicator struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Interpretation string  `json:"interpretation"`
	Signal         string  `json:"signal"`
}

// TrendAnalysis rates the trend across three horizons.
type TrendAnalysis struct {
	ShortTerm  string `json:"short_term"`
	MediumTerm string `json:"medium_term"`
	LongTerm   string `json:"long_term"`
}

// MarketAnalysis is the market analyst's structured output.
type MarketAnalysis struct {
	AnalysisSummary    string              `json:"analysis_summary"`
	SelectedIndicators []SelectedIndicator `json:"selected_indicators"`
	TrendAnalysis      TrendAnalysis       `json:"trend_analysis"`
	KeyInsights        []string            `json:"key_insights"`
	RiskFactors        []string            `json:"risk_factors"`
	MarketSentiment    string              `json:"market_sentiment"`
	ConfidenceScore    float64             `json:"confidence_score"`
}

func (a *MarketAnalysis) Validate() error {
	m := &errors.MultiError{}
	checkRequired(m, "analysis_summary", a.AnalysisSummary)
	checkEnum(m, "market_sentiment", a.MarketSentiment, "bullish", "bearish", "neutral")
	checkRange(m, "confidence_score", a.ConfidenceScore, 0, 1)
	checkEnum(m, "trend_analysis.short_term", a.TrendAnalysis.ShortTerm, "bullish", "bearish", "neutral")
	checkEnum(m, "trend_analysis.medium_term", a.TrendAnalysis.MediumTerm, "bullish", "bearish", "neutral")
	checkEnum(m, "trend_analysis.long_term", a.TrendAnalysis.LongTerm, "bullish", "bearish", "neutral")
	for i, ind := range a.SelectedIndicators {
		checkEnum(m, fmt.Sprintf("selected_indicators[%d].signal", i), ind.Signal, "bullish", "bearish", "neutral")
	}
	return violation(m)
}

// ValuationMetrics carries the fundamentals analyst's valuation view. Ratio
// fields are nil when the underlying data was unavailable.
type ValuationMetrics struct {
	PERatio            *float64 `json:"pe_ratio"`
	PEGRatio           *float64 `json:"peg_ratio"`
	PriceToBook        *float64 `json:"price_to_book"`
	ValuationVerdict   string   `json:"valuation_verdict"`
	ValuationReasoning string   `json:"valuation_reasoning"`
}

// FinancialHealthMetrics scores balance sheet quality on a 0-10 scale.
type FinancialHealthMetrics struct {
	LiquidityScore     float64 `json:"liquidity_score"`
	LeverageScore      float64 `json:"leverage_score"`
	ProfitabilityScore float64 `json:"profitability_score"`
	CashFlowScore      float64 `json:"cash_flow_score"`
	OverallHealth      string  `json:"overall_health"`
	HealthReasoning    string  `json:"health_reasoning"`
}

// GrowthMetrics rates revenue and earnings trajectories.
type GrowthMetrics struct {
	RevenueGrowthTrend   string   `json:"revenue_growth_trend"`
	EarningsGrowthTrend  string   `json:"earnings_growth_trend"`
	GrowthSustainability string   `json:"growth_sustainability"`
	GrowthDrivers        []string `json:"growth_drivers"`
}

// FundamentalAnalysis is the fundamentals analyst's structured output.
type FundamentalAnalysis struct {
	AnalysisSummary       string                 `json:"analysis_summary"`
	Valuation             ValuationMetrics       `json:"valuation"`
	FinancialHealth       FinancialHealthMetrics `json:"financial_health"`
	Growth                GrowthMetrics          `json:"growth"`
	KeyStrengths          []string               `json:"key_strengths"`
	RedFlags              []string               `json:"red_flags"`
	CompetitiveAdvantages []string               `json:"competitive_advantages"`
	FundamentalRating     string                 `json:"fundamental_rating"`
	ConfidenceScore       float64                `json:"confidence_score"`
}

func (f *FundamentalAnalysis) Validate() error {
	m := &errors.MultiError{}
	checkRequired(m, "analysis_summary", f.AnalysisSummary)
	checkEnum(m, "valuation.valuation_verdict", f.Valuation.ValuationVerdict, "undervalued", "fairly_valued", "overvalued", "insufficient_data")
	checkEnum(m, "financial_health.overall_health", f.FinancialHealth.OverallHealth, "excellent", "good", "fair", "poor", "critical")
	checkRange(m, "financial_health.liquidity_score", f.FinancialHealth.LiquidityScore, 0, 10)
	checkRange(m, "financial_health.leverage_score", f.FinancialHealth.LeverageScore, 0, 10)
	checkRange(m, "financial_health.profitability_score", f.FinancialHealth.ProfitabilityScore, 0, 10)
	checkRange(m, "financial_health.cash_flow_score", f.FinancialHealth.CashFlowScore, 0, 10)
	growthTrends := []string{"accelerating", "steady", "slowing", "declining", "volatile"}
	checkEnum(m, "growth.revenue_growth_trend", f.Growth.RevenueGrowthTrend, growthTrends...)
	checkEnum(m, "growth.earnings_growth_trend", f.Growth.EarningsGrowthTrend, growthTrends...)
	checkEnum(m, "growth.growth_sustainability", f.Growth.GrowthSustainability, "high", "medium", "low", "uncertain")
	checkEnum(m, "fundamental_rating", f.FundamentalRating, "strong_buy", "buy", "hold", "sell", "strong_sell")
	checkRange(m, "confidence_score", f.ConfidenceScore, 0, 1)
	return violation(m)
}

// BullishSignals splits the bull's evidence by discipline.
type BullishSignals struct {
	TechnicalSignals   []string `json:"technical_signals"`
	FundamentalSignals []string `json:"fundamental_signals"`
}

// BullishCatalysts lists what could push the price up, by horizon.
type BullishCatalysts struct {
	NearTerm []string `json:"near_term"`
	LongTerm []string `json:"long_term"`
}

// RiskAcknowledgment keeps the bull honest about its thesis risks.
type RiskAcknowledgment struct {
	KeyRisks       []string `json:"key_risks"`
	RiskMitigation string   `json:"risk_mitigation"`
}

// BullCase is the bull debater's structured output.
type BullCase struct {
	ThesisSummary        string             `json:"thesis_summary"`
	BullishSignals       BullishSignals     `json:"bullish_signals"`
	Catalysts            BullishCatalysts   `json:"catalysts"`
	TargetPriceDirection string             `json:"target_price_direction"`
	TimeHorizon          string             `json:"time_horizon"`
	RiskAcknowledgment   RiskAcknowledgment `json:"risk_acknowledgment"`
	ConvictionScore      float64            `json:"conviction_score"`
	RecommendedAction    string             `json:"recommended_action"`
}

func (b *BullCase) Validate() error {
	m := &errors.MultiError{}
	checkRequired(m, "thesis_summary", b.ThesisSummary)
	checkEnum(m, "target_price_direction", b.TargetPriceDirection, "significantly_higher", "moderately_higher", "slightly_higher")
	checkEnum(m, "time_horizon", b.TimeHorizon, "short_term", "medium_term", "long_term", "multi_timeframe")
	checkEnum(m, "recommended_action", b.RecommendedAction, "strong_buy", "buy", "accumulate")
	checkRange(m, "conviction_score", b.ConvictionScore, 0, 1)
	return violation(m)
}

// BearishSignals splits the bear's evidence by discipline.
type BearishSignals struct {
	TechnicalSignals   []string `json:"technical_signals"`
	FundamentalSignals []string `json:"fundamental_signals"`
}

// DownsideRisks lists what could push the price down, by horizon.
type DownsideRisks struct {
	NearTerm []string `json:"near_term"`
	LongTerm []string `json:"long_term"`
}

// CounterArguments rebuts the bull case directly.
type CounterArguments struct {
	BullCaseWeaknesses []string `json:"bull_case_weaknesses"`
	WhyBullsAreWrong   string   `json:"why_bulls_are_wrong"`
}

// BearCase is the bear debater's structured output.
type BearCase struct {
	ThesisSummary        string           `json:"thesis_summary"`
	BearishSignals       BearishSignals   `json:"bearish_signals"`
	DownsideRisks        DownsideRisks    `json:"downside_risks"`
	TargetPriceDirection string           `json:"target_price_direction"`
	TimeHorizon          string           `json:"time_horizon"`
	CounterArguments     CounterArguments `json:"counter_arguments"`
	ConvictionScore      float64          `json:"conviction_score"`
	RecommendedAction    string           `json:"recommended_action"`
}

func (b *BearCase) Validate() error {
	m := &errors.MultiError{}
	checkRequired(m, "thesis_summary", b.ThesisSummary)
	checkEnum(m, "target_price_direction", b.TargetPriceDirection, "significantly_lower", "moderately_lower", "slightly_lower")
	checkEnum(m, "time_horizon", b.TimeHorizon, "short_term", "medium_term", "long_term", "multi_timeframe")
	checkEnum(m, "recommended_action", b.RecommendedAction, "strong_sell", "sell", "avoid")
	checkRange(m, "conviction_score", b.ConvictionScore, 0, 1)
	return violation(m)
}

// RiskRecommendation is the supervisor's guidance for one risk profile.
type RiskRecommendation struct {
	Action        string  `json:"action"`
	PositionSize  string  `json:"position_size"`
	EntryStrategy string  `json:"entry_strategy"`
	StopLoss      *string `json:"stop_loss"`
	Rationale     string  `json:"rationale"`
}

// TimeHorizonOutlook rates the outlook across three horizons.
type TimeHorizonOutlook struct {
	ShortTerm  string `json:"short_term"`
	MediumTerm string `json:"medium_term"`
	LongTerm   string `json:"long_term"`
}

// SupervisorDecision is the final synthesis across all prior steps.
type SupervisorDecision struct {
	ExecutiveSummary   string             `json:"executive_summary"`
	MarketThesis       string             `json:"market_thesis"`
	FundamentalThesis  string             `json:"fundamental_thesis"`
	BullCaseStrength   float64            `json:"bull_case_strength"`
	BearCaseStrength   float64            `json:"bear_case_strength"`
	ConsensusDirection string             `json:"consensus_direction"`
	LowRisk            RiskRecommendation `json:"low_risk_recommendation"`
	MediumRisk         RiskRecommendation `json:"medium_risk_recommendation"`
	HighRisk           RiskRecommendation `json:"high_risk_recommendation"`
	TimeHorizonOutlook TimeHorizonOutlook `json:"time_horizon_outlook"`
	KeyDecisionFactors []string           `json:"key_decision_factors"`
	MonitoringPoints   []string           `json:"monitoring_points"`
	FinalConfidence    float64            `json:"final_confidence"`
}

func (d *SupervisorDecision) Validate() error {
	m := &errors.MultiError{}
	checkRequired(m, "executive_summary", d.ExecutiveSummary)
	checkEnum(m, "consensus_direction", d.ConsensusDirection, "bullish", "bearish", "neutral", "mixed")
	checkRange(m, "bull_case_strength", d.BullCaseStrength, 0, 10)
	checkRange(m, "bear_case_strength", d.BearCaseStrength, 0, 10)
	checkRange(m, "final_confidence", d.FinalConfidence, 0, 1)
	for profile, rec := range map[string]RiskRecommendation{
		"low_risk_recommendation":    d.LowRisk,
		"medium_risk_recommendation": d.MediumRisk,
		"high_risk_recommendation":   d.HighRisk,
	} {
		checkEnum(m, profile+".action", rec.Action, "strong_buy", "buy", "accumulate", "hold", "reduce", "sell", "strong_sell")
		checkEnum(m, profile+".position_size", rec.PositionSize, "full", "half", "quarter", "minimal", "zero")
	}
	checkEnum(m, "time_horizon_outlook.short_term", d.TimeHorizonOutlook.ShortTerm, "bullish", "bearish", "neutral")
	checkEnum(m, "time_horizon_outlook.medium_term", d.TimeHorizonOutlook.MediumTerm, "bullish", "bearish", "neutral")
	checkEnum(m, "time_horizon_outlook.long_term", d.TimeHorizonOutlook.LongTerm, "bullish", "bearish", "neutral")
	return violation(m)
}

func checkEnum(m *errors.MultiError, field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	m.Add(errors.Newf("%s: %q is not one of %s", field, value, strings.Join(allowed, "|")))
}

func checkRange(m *errors.MultiError, field string, v, lo, hi float64) {
	if v < lo || v > hi {
		m.Add(errors.Newf("%s: %v is outside [%v, %v]", field, v, lo, hi))
	}
}

func checkRequired(m *errors.MultiError, field, value string) {
	if strings.TrimSpace(value) == "" {
		m.Add(errors.Newf("%s: required field is empty", field))
	}
}

func violation(m *errors.MultiError) error {
	if !m.HasErrors() {
		return nil
	}
	return errors.Wrap(errors.ErrSchemaValidation, m.Error())
}
