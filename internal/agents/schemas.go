package agents

import "google.golang.org/genai"

// Response schemas handed to providers that support constrained decoding.
// Shapes and descriptions match the output structs in outputs.go exactly.

func float64Ptr(v float64) *float64 {
	return &v
}

var sentimentEnum = []string{"bullish", "bearish", "neutral"}

func stringListSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        "ARRAY",
		Description: desc,
		Items:       &genai.Schema{Type: "STRING"},
	}
}

func confidenceSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        "NUMBER",
		Description: desc,
		Minimum:     float64Ptr(0),
		Maximum:     float64Ptr(1),
	}
}

// NewsAnalysisSchema constrains the news analyst's output.
var NewsAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"analysis_summary": {
			Type:        "STRING",
			Description: "3-4 sentence executive summary grounded in kept company-relevant news",
		},
		"lookback_window_days": {
			Type:        "INTEGER",
			Description: "Days looked back",
			Minimum:     float64Ptr(1),
			Maximum:     float64Ptr(30),
		},
		"coverage_stats": {
			Type:        "OBJECT",
			Description: "Counts over the kept and raw article sets",
			Properties: map[string]*genai.Schema{
				"articles":      {Type: "INTEGER", Description: "Number of kept articles"},
				"sources":       {Type: "INTEGER", Description: "Number of distinct kept sources"},
				"unique_topics": {Type: "INTEGER", Description: "Estimated distinct topics in kept set"},
				"raw_articles":  {Type: "INTEGER", Description: "Number of articles before filtering"},
			},
			Required: []string{"articles", "sources", "unique_topics", "raw_articles"},
		},
		"macro_themes": {
			Type:        "ARRAY",
			Description: "2-5 macro/sector themes relevant to the company",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"theme": {Type: "STRING", Description: "Short name of the macro/sector theme"},
					"direction": {
						Type:        "STRING",
						Description: "Net impact direction",
						Enum:        []string{"tailwind", "headwind", "mixed"},
					},
					"evidence_count": {
						Type:        "INTEGER",
						Description: "How many supporting articles in the kept set",
						Minimum:     float64Ptr(0),
					},
					"representative_titles": stringListSchema("1-3 representative headlines from kept articles"),
				},
				Required: []string{"theme", "direction", "evidence_count", "representative_titles"},
			},
		},
		"company_impact": {
			Type:        "OBJECT",
			Description: "Company-specific impact synthesis",
			Properties: map[string]*genai.Schema{
				"demand_outlook": {
					Type: "STRING",
					Enum: []string{"positive", "negative", "neutral", "uncertain"},
				},
				"cost_pressure": {
					Type: "STRING",
					Enum: []string{"increasing", "decreasing", "stable", "uncertain"},
				},
				"regulatory_risk": {
					Type: "STRING",
					Enum: []string{"elevated", "moderate", "low", "uncertain"},
				},
				"valuation_impact": {
					Type: "STRING",
					Enum: []string{"expansion", "compression", "neutral", "uncertain"},
				},
				"reasoning": {
					Type:        "STRING",
					Description: "2-3 sentences grounded in kept news evidence",
				},
			},
			Required: []string{"demand_outlook", "cost_pressure", "regulatory_risk", "valuation_impact", "reasoning"},
		},
		"catalysts":  stringListSchema("2-5 near-term catalysts to watch, with timing if possible"),
		"risk_radar": stringListSchema("3-6 key risks inferred from kept news"),
		"overall_sentiment": {
			Type:        "STRING",
			Description: "Topline sentiment for the company",
			Enum:        sentimentEnum,
		},
		"confidence_score": confidenceSchema("Confidence 0-1 given breadth/consistency of kept news"),
		"highlighted_articles": {
			Type:        "ARRAY",
			Description: "3-10 high-signal, company-relevant articles",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"title":        {Type: "STRING", Description: "Headline"},
					"published_at": {Type: "STRING", Description: "ISO-8601 datetime of the article"},
					"source":       {Type: "STRING", Description: "Publisher/source name"},
					"url":          {Type: "STRING", Description: "Canonical URL"},
					"tags":         stringListSchema("1-5 tags summarizing the topic"),
					"sentiment": {
						Type:        "STRING",
						Description: "Article-level sentiment",
						Enum:        sentimentEnum,
					},
					"impact_scope": {
						Type:        "STRING",
						Description: "Scope of impact",
						Enum:        []string{"company", "sector", "macro"},
					},
					"relevance_score": confidenceSchema("Estimated relevance to the target company (0-1)"),
					"summary":         {Type: "STRING", Description: "At most 60-word abstractive summary of the article"},
				},
				Required: []string{"title", "published_at", "source", "url", "tags", "sentiment", "impact_scope", "relevance_score", "summary"},
			},
		},
		"sources": stringListSchema("Distinct source domains used among kept articles"),
	},
	Required: []string{
		"analysis_summary", "lookback_window_days", "coverage_stats", "macro_themes",
		"company_impact", "catalysts", "risk_radar", "overall_sentiment",
		"confidence_score", "highlighted_articles", "sources",
	},
}

// MarketAnalysisSchema constrains the market analyst's output.
var MarketAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"analysis_summary": {
			Type:        "STRING",
			Description: "2-3 sentence executive summary of the market analysis",
		},
		"selected_indicators": {
			Type:        "ARRAY",
			Description: "List of analyzed technical indicators (max 8)",
			Items: &genai.Schema{
				Type: "OBJECT",
				Properties: map[string]*genai.Schema{
					"name":           {Type: "STRING", Description: "Indicator name (e.g., RSI, SMA_50)"},
					"value":          {Type: "NUMBER", Description: "Current indicator value"},
					"interpretation": {Type: "STRING", Description: "Brief explanation of what this value means"},
					"signal": {
						Type:        "STRING",
						Description: "Trading signal from this indicator",
						Enum:        sentimentEnum,
					},
				},
				Required: []string{"name", "value", "interpretation", "signal"},
			},
		},
		"trend_analysis": {
			Type:        "OBJECT",
			Description: "Multi-timeframe trend assessment",
			Properties: map[string]*genai.Schema{
				"short_term":  {Type: "STRING", Description: "Short-term trend (1-5 days)", Enum: sentimentEnum},
				"medium_term": {Type: "STRING", Description: "Medium-term trend (1-4 weeks)", Enum: sentimentEnum},
				"long_term":   {Type: "STRING", Description: "Long-term trend (1-3 months)", Enum: sentimentEnum},
			},
			Required: []string{"short_term", "medium_term", "long_term"},
		},
		"key_insights": stringListSchema("3-5 actionable insights for traders"),
		"risk_factors": stringListSchema("2-4 key risk factors to monitor"),
		"market_sentiment": {
			Type:        "STRING",
			Description: "Overall market sentiment",
			Enum:        sentimentEnum,
		},
		"confidence_score": confidenceSchema("Confidence in analysis (0-1 scale)"),
	},
	Required: []string{
		"analysis_summary", "selected_indicators", "trend_analysis",
		"key_insights", "risk_factors", "market_sentiment", "confidence_score",
	},
}

// FundamentalAnalysisSchema constrains the fundamentals analyst's output.
var FundamentalAnalysisSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"analysis_summary": {
			Type:        "STRING",
			Description: "3-4 sentence executive summary of fundamental analysis",
		},
		"valuation": {
			Type:        "OBJECT",
			Description: "Valuation assessment",
			Properties: map[string]*genai.Schema{
				"pe_ratio":      {Type: "NUMBER", Description: "P/E ratio if available", Nullable: genai.Ptr(true)},
				"peg_ratio":     {Type: "NUMBER", Description: "PEG ratio if available", Nullable: genai.Ptr(true)},
				"price_to_book": {Type: "NUMBER", Description: "P/B ratio if available", Nullable: genai.Ptr(true)},
				"valuation_verdict": {
					Type:        "STRING",
					Description: "Overall valuation assessment",
					Enum:        []string{"undervalued", "fairly_valued", "overvalued", "insufficient_data"},
				},
				"valuation_reasoning": {
					Type:        "STRING",
					Description: "2-3 sentence explanation of valuation verdict",
				},
			},
			Required: []string{"pe_ratio", "peg_ratio", "price_to_book", "valuation_verdict", "valuation_reasoning"},
		},
		"financial_health": {
			Type:        "OBJECT",
			Description: "Financial health metrics and scores",
			Properties: map[string]*genai.Schema{
				"liquidity_score": {
					Type:        "NUMBER",
					Description: "Liquidity strength (0-10 scale)",
					Minimum:     float64Ptr(0),
					Maximum:     float64Ptr(10),
				},
				"leverage_score": {
					Type:        "NUMBER",
					Description: "Debt management quality (0-10 scale)",
					Minimum:     float64Ptr(0),
					Maximum:     float64Ptr(10),
				},
				"profitability_score": {
					Type:        "NUMBER",
					Description: "Profitability strength (0-10 scale)",
					Minimum:     float64Ptr(0),
					Maximum:     float64Ptr(10),
				},
				"cash_flow_score": {
					Type:        "NUMBER",
					Description: "Cash generation quality (0-10 scale)",
					Minimum:     float64Ptr(0),
					Maximum:     float64Ptr(10),
				},
				"overall_health": {
					Type:        "STRING",
					Description: "Overall financial health rating",
					Enum:        []string{"excellent", "good", "fair", "poor", "critical"},
				},
				"health_reasoning": {
					Type:        "STRING",
					Description: "Explanation of health assessment",
				},
			},
			Required: []string{"liquidity_score", "leverage_score", "profitability_score", "cash_flow_score", "overall_health", "health_reasoning"},
		},
		"growth": {
			Type:        "OBJECT",
			Description: "Growth analysis",
			Properties: map[string]*genai.Schema{
				"revenue_growth_trend": {
					Type:        "STRING",
					Description: "Revenue growth trajectory",
					Enum:        []string{"accelerating", "steady", "slowing", "declining", "volatile"},
				},
				"earnings_growth_trend": {
					Type:        "STRING",
					Description: "Earnings growth trajectory",
					Enum:        []string{"accelerating", "steady", "slowing", "declining", "volatile"},
				},
				"growth_sustainability": {
					Type:        "STRING",
					Description: "Likelihood growth can continue",
					Enum:        []string{"high", "medium", "low", "uncertain"},
				},
				"growth_drivers": stringListSchema("2-4 key factors driving or hindering growth"),
			},
			Required: []string{"revenue_growth_trend", "earnings_growth_trend", "growth_sustainability", "growth_drivers"},
		},
		"key_strengths":          stringListSchema("3-5 key fundamental strengths"),
		"red_flags":              stringListSchema("2-5 concerns or risk factors identified in fundamentals"),
		"competitive_advantages": stringListSchema("2-4 moats or competitive advantages if identifiable"),
		"fundamental_rating": {
			Type:        "STRING",
			Description: "Overall fundamental investment rating",
			Enum:        []string{"strong_buy", "buy", "hold", "sell", "strong_sell"},
		},
		"confidence_score": confidenceSchema("Confidence in analysis (0-1 scale)"),
	},
	Required: []string{
		"analysis_summary", "valuation", "financial_health", "growth",
		"key_strengths", "red_flags", "competitive_advantages",
		"fundamental_rating", "confidence_score",
	},
}

// BullCaseSchema constrains the bull debater's output.
var BullCaseSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"thesis_summary": {
			Type:        "STRING",
			Description: "3-4 sentence executive summary of why this is a BUY",
		},
		"bullish_signals": {
			Type:        "OBJECT",
			Description: "Technical and fundamental bullish evidence",
			Properties: map[string]*genai.Schema{
				"technical_signals":   stringListSchema("3-5 bullish technical indicators/patterns"),
				"fundamental_signals": stringListSchema("3-5 bullish fundamental strengths"),
			},
			Required: []string{"technical_signals", "fundamental_signals"},
		},
		"catalysts": {
			Type:        "OBJECT",
			Description: "What could drive upside",
			Properties: map[string]*genai.Schema{
				"near_term": stringListSchema("1-3 catalysts that could drive price up in days/weeks"),
				"long_term": stringListSchema("1-3 catalysts for sustained growth over months"),
			},
			Required: []string{"near_term", "long_term"},
		},
		"target_price_direction": {
			Type:        "STRING",
			Description: "Expected price movement magnitude",
			Enum:        []string{"significantly_higher", "moderately_higher", "slightly_higher"},
		},
		"time_horizon": {
			Type:        "STRING",
			Description: "When the bullish case is expected to play out",
			Enum:        []string{"short_term", "medium_term", "long_term", "multi_timeframe"},
		},
		"risk_acknowledgment": {
			Type:        "OBJECT",
			Description: "Honest risks to this thesis",
			Properties: map[string]*genai.Schema{
				"key_risks":       stringListSchema("2-4 main risks to the bullish thesis"),
				"risk_mitigation": {Type: "STRING", Description: "1-2 sentences on how to manage these risks"},
			},
			Required: []string{"key_risks", "risk_mitigation"},
		},
		"conviction_score": confidenceSchema("Conviction in bullish case (0-1)"),
		"recommended_action": {
			Type:        "STRING",
			Description: "Recommended bullish action",
			Enum:        []string{"strong_buy", "buy", "accumulate"},
		},
	},
	Required: []string{
		"thesis_summary", "bullish_signals", "catalysts", "target_price_direction",
		"time_horizon", "risk_acknowledgment", "conviction_score", "recommended_action",
	},
}

// BearCaseSchema constrains the bear debater's output.
var BearCaseSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"thesis_summary": {
			Type:        "STRING",
			Description: "3-4 sentence executive summary of why this is a SELL or AVOID",
		},
		"bearish_signals": {
			Type:        "OBJECT",
			Description: "Technical and fundamental bearish evidence",
			Properties: map[string]*genai.Schema{
				"technical_signals":   stringListSchema("3-5 bearish technical indicators/patterns"),
				"fundamental_signals": stringListSchema("3-5 bearish fundamental weaknesses"),
			},
			Required: []string{"technical_signals", "fundamental_signals"},
		},
		"downside_risks": {
			Type:        "OBJECT",
			Description: "What could drive price lower",
			Properties: map[string]*genai.Schema{
				"near_term": stringListSchema("1-3 risks that could drive price down in days/weeks"),
				"long_term": stringListSchema("1-3 structural risks over months"),
			},
			Required: []string{"near_term", "long_term"},
		},
		"target_price_direction": {
			Type:        "STRING",
			Description: "Expected price movement magnitude",
			Enum:        []string{"significantly_lower", "moderately_lower", "slightly_lower"},
		},
		"time_horizon": {
			Type:        "STRING",
			Description: "When the bearish case is expected to play out",
			Enum:        []string{"short_term", "medium_term", "long_term", "multi_timeframe"},
		},
		"counter_arguments": {
			Type:        "OBJECT",
			Description: "Rebuttals to bullish thesis",
			Properties: map[string]*genai.Schema{
				"bull_case_weaknesses": stringListSchema("2-4 flaws or risks in the bullish argument"),
				"why_bulls_are_wrong":  {Type: "STRING", Description: "2-3 sentences explaining why bulls may be overlooking key risks"},
			},
			Required: []string{"bull_case_weaknesses", "why_bulls_are_wrong"},
		},
		"conviction_score": confidenceSchema("Conviction in bearish case (0-1)"),
		"recommended_action": {
			Type:        "STRING",
			Description: "Recommended bearish action",
			Enum:        []string{"strong_sell", "sell", "avoid"},
		},
	},
	Required: []string{
		"thesis_summary", "bearish_signals", "downside_risks", "target_price_direction",
		"time_horizon", "counter_arguments", "conviction_score", "recommended_action",
	},
}

func riskRecommendationSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        "OBJECT",
		Description: desc,
		Properties: map[string]*genai.Schema{
			"action": {
				Type:        "STRING",
				Description: "Recommended trading action",
				Enum:        []string{"strong_buy", "buy", "accumulate", "hold", "reduce", "sell", "strong_sell"},
			},
			"position_size": {
				Type:        "STRING",
				Description: "Suggested position sizing relative to normal allocation",
				Enum:        []string{"full", "half", "quarter", "minimal", "zero"},
			},
			"entry_strategy": {
				Type:        "STRING",
				Description: "How to enter/exit position (e.g., 'Scale in over 3 days', 'Immediate exit')",
			},
			"stop_loss": {
				Type:        "STRING",
				Description: "Suggested stop-loss level or condition (if applicable)",
				Nullable:    genai.Ptr(true),
			},
			"rationale": {
				Type:        "STRING",
				Description: "2-3 sentences explaining recommendation for this risk profile",
			},
		},
		Required: []string{"action", "position_size", "entry_strategy", "stop_loss", "rationale"},
	}
}

// SupervisorDecisionSchema constrains the supervisor's final synthesis.
var SupervisorDecisionSchema = &genai.Schema{
	Type: "OBJECT",
	Properties: map[string]*genai.Schema{
		"executive_summary": {
			Type:        "STRING",
			Description: "4-5 sentence synthesis of all analysis, the complete picture",
		},
		"market_thesis": {
			Type:        "STRING",
			Description: "2-3 sentences on overall market/technical view",
		},
		"fundamental_thesis": {
			Type:        "STRING",
			Description: "2-3 sentences on overall fundamental view",
		},
		"bull_case_strength": {
			Type:        "NUMBER",
			Description: "Strength of bullish arguments (0-10 scale)",
			Minimum:     float64Ptr(0),
			Maximum:     float64Ptr(10),
		},
		"bear_case_strength": {
			Type:        "NUMBER",
			Description: "Strength of bearish arguments (0-10 scale)",
			Minimum:     float64Ptr(0),
			Maximum:     float64Ptr(10),
		},
		"consensus_direction": {
			Type:        "STRING",
			Description: "Overall directional bias after weighing all evidence",
			Enum:        []string{"bullish", "bearish", "neutral", "mixed"},
		},
		"low_risk_recommendation":    riskRecommendationSchema("Conservative recommendation for risk-averse investors"),
		"medium_risk_recommendation": riskRecommendationSchema("Balanced recommendation for moderate risk tolerance"),
		"high_risk_recommendation":   riskRecommendationSchema("Aggressive recommendation for high risk tolerance"),
		"time_horizon_outlook": {
			Type:        "OBJECT",
			Description: "Outlook across time horizons",
			Properties: map[string]*genai.Schema{
				"short_term":  {Type: "STRING", Description: "Days to weeks outlook", Enum: sentimentEnum},
				"medium_term": {Type: "STRING", Description: "Weeks to months outlook", Enum: sentimentEnum},
				"long_term":   {Type: "STRING", Description: "Months to years outlook", Enum: sentimentEnum},
			},
			Required: []string{"short_term", "medium_term", "long_term"},
		},
		"key_decision_factors": stringListSchema("3-5 most important factors driving these recommendations"),
		"monitoring_points":    stringListSchema("2-4 key metrics/events to watch that could change the thesis"),
		"final_confidence":     confidenceSchema("Overall confidence in analysis (0-1)"),
	},
	Required: []string{
		"executive_summary", "market_thesis", "fundamental_thesis",
		"bull_case_strength", "bear_case_strength", "consensus_direction",
		"low_risk_recommendation", "medium_risk_recommendation", "high_risk_recommendation",
		"time_horizon_outlook", "key_decision_factors", "monitoring_points", "final_confidence",
	},
}
