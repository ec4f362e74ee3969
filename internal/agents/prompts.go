package agents

import (
	"encoding/json"
	"fmt"
)

// Prompt builders for each step. The JSON shape block stays in the user
// prompt even when the provider enforces a response schema natively, so
// providers without constrained decoding still return the right shape.

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

// jsonOrNote renders a prior step's output for embedding in a later prompt,
// or the note when the step has not produced one.
func jsonOrNote[T any](v *T, note string) string {
	if v == nil {
		return note
	}
	return mustJSON(v)
}

const newsShape = `{
  "analysis_summary": "string (3-4 sentences)",
  "lookback_window_days": number,
  "coverage_stats": {"articles": number, "sources": number, "unique_topics": number, "raw_articles": number},
  "macro_themes": [
    {"theme": "string", "direction": "tailwind|headwind|mixed", "evidence_count": number, "representative_titles": ["string"]}
  ],
  "company_impact": {
    "demand_outlook": "positive|negative|neutral|uncertain",
    "cost_pressure": "increasing|decreasing|stable|uncertain",
    "regulatory_risk": "elevated|moderate|low|uncertain",
    "valuation_impact": "expansion|compression|neutral|uncertain",
    "reasoning": "string"
  },
  "catalysts": ["string"],
  "risk_radar": ["string"],
  "overall_sentiment": "bullish|bearish|neutral",
  "confidence_score": number (0.0-1.0),
  "highlighted_articles": [
    {
      "title": "string",
      "published_at": "YYYY-MM-DDTHH:MM:SS",
      "source": "string",
      "url": "string",
      "tags": ["string"],
      "sentiment": "bullish|bearish|neutral",
      "impact_scope": "company|sector|macro",
      "relevance_score": number (0.0-1.0),
      "summary": "string"
    }
  ],
  "sources": ["string"]
}`

func newsPrompts(ticker, date string, lookbackDays, keptCount, keptSources, uniqueTopics, rawTotal int, articlesJSON string) (string, string) {
	system := "You are a company-focused markets news analyst. You produce strictly structured JSON analysis grounded only in the articles you are given."
	user := fmt.Sprintf(`Using ONLY the provided company-relevant articles below (already filtered for relevance to %[1]s), produce a strictly structured JSON analysis for %[1]s as of %[2]s.

All items are relevant to the company either directly (company scope), indirectly via sector dynamics (sector scope), or through macro transmission channels (macro scope). Ignore any speculation not grounded in these items.

### COMPANY-RELEVANT ARTICLES (deduped, filtered, %[3]d items)
%[4]s

GUIDELINES:
1) Use ONLY the kept articles above; do not invent information.
2) Assign article-level sentiment (bullish/bearish/neutral) and respect the given impact_scope.
3) Synthesize 2-5 macro/sector themes that materially affect the company; mark direction = tailwind/headwind/mixed and cite 1-3 representative titles.
4) Infer company impact on demand/cost/regulatory/valuation and state reasoning grounded in article evidence.
5) Extract 2-5 upcoming catalysts (events, decisions, data prints) and 3-6 risks.
6) Set overall_sentiment; calibrate confidence by breadth/diversity/consistency of the kept set.
7) Output ONLY valid JSON matching EXACTLY the schema below. No markdown, no prose outside JSON.

REQUIRED JSON SHAPE:
%[5]s

CONTEXT TO RESPECT:
- lookback_window_days = %[6]d
- kept_articles_count = %[3]d
- kept_sources_count = %[7]d
- kept_unique_topics_est = %[8]d
- raw_articles_total = %[9]d`,
		ticker, date, keptCount, articlesJSON, newsShape, lookbackDays, keptSources, uniqueTopics, rawTotal)
	return system, user
}

const marketShape = `{
  "analysis_summary": "string",
  "selected_indicators": [
    {
      "name": "string",
      "value": number,
      "interpretation": "string",
      "signal": "bullish|bearish|neutral"
    }
  ],
  "trend_analysis": {
    "short_term": "bullish|bearish|neutral",
    "medium_term": "bullish|bearish|neutral",
    "long_term": "bullish|bearish|neutral"
  },
  "key_insights": ["string"],
  "risk_factors": ["string"],
  "market_sentiment": "bullish|bearish|neutral",
  "confidence_score": number
}`

func marketPrompts(ticker, date, stockData, technicalData string) (string, string) {
	system := "You are an expert market analyst producing data-driven technical analysis as structured JSON."
	user := fmt.Sprintf(`Analyze the following market data for %s as of %s.

**Stock Data:**
%s

**Technical Indicators:**
%s

Provide a comprehensive technical analysis with the following requirements:

1. **Analysis Summary**: 2-3 sentence executive summary
2. **Indicator Analysis**: Analyze the most relevant technical indicators (up to 8) with specific values and interpretations
3. **Trend Analysis**: Assess short-term (1-5 days), medium-term (1-4 weeks), and long-term (1-3 months) trends
4. **Key Insights**: Provide 3-5 actionable insights for traders based on the data
5. **Risk Factors**: Identify 2-4 key risk factors or concerns
6. **Market Sentiment**: Determine overall sentiment (bullish/bearish/neutral)
7. **Confidence Score**: Rate your confidence in this analysis (0.0 to 1.0)

Be specific, data-driven, and avoid generic statements. Focus on what the numbers actually indicate.

Respond ONLY with valid JSON matching this exact structure (no markdown, no extra text):
%s`, ticker, date, stockData, technicalData, marketShape)
	return system, user
}

const fundamentalShape = `{
  "analysis_summary": "string",
  "valuation": {
    "pe_ratio": number or null,
    "peg_ratio": number or null,
    "price_to_book": number or null,
    "valuation_verdict": "undervalued|fairly_valued|overvalued|insufficient_data",
    "valuation_reasoning": "string"
  },
  "financial_health": {
    "liquidity_score": number (0-10),
    "leverage_score": number (0-10),
    "profitability_score": number (0-10),
    "cash_flow_score": number (0-10),
    "overall_health": "excellent|good|fair|poor|critical",
    "health_reasoning": "string"
  },
  "growth": {
    "revenue_growth_trend": "accelerating|steady|slowing|declining|volatile",
    "earnings_growth_trend": "accelerating|steady|slowing|declining|volatile",
    "growth_sustainability": "high|medium|low|uncertain",
    "growth_drivers": ["string"]
  },
  "key_strengths": ["string"],
  "red_flags": ["string"],
  "competitive_advantages": ["string"],
  "fundamental_rating": "strong_buy|buy|hold|sell|strong_sell",
  "confidence_score": number (0.0-1.0)
}`

func fundamentalsPrompts(ticker, date, dataBlocks string) (string, string) {
	system := "You are an expert fundamental analyst specializing in financial statement analysis and company valuation."
	user := fmt.Sprintf(`Analyze the following comprehensive fundamental data for %s as of %s.

%s

---

Perform a DEEP fundamental analysis with the following requirements:

**1. ANALYSIS SUMMARY (3-4 sentences)**
- Executive summary of fundamental health and investment thesis

**2. VALUATION ASSESSMENT**
- Analyze P/E, PEG, P/B, and other valuation multiples
- Determine if the stock is undervalued, fairly valued, or overvalued
- Provide clear reasoning (2-3 sentences)

**3. FINANCIAL HEALTH SCORING (0-10 scale for each)**
- Liquidity Score: current ratio, quick ratio, cash position
- Leverage Score: debt-to-equity, interest coverage, debt trends
- Profitability Score: margins (gross, operating, net), ROE, ROA
- Cash Flow Score: operating cash flow, free cash flow, cash conversion
- Overall Health: excellent/good/fair/poor/critical, with reasoning

**4. GROWTH ANALYSIS**
- Revenue and earnings growth trends (accelerating/steady/slowing/declining/volatile)
- Growth sustainability (high/medium/low/uncertain) and 2-4 key growth drivers

**5. KEY STRENGTHS (3-5 items)** - strongest fundamental attributes with specific data points

**6. RED FLAGS (2-5 items)** - concerning trends in the data, e.g. declining margins, rising debt, negative FCF, negative earnings surprises

**7. COMPETITIVE ADVANTAGES (2-4 items)** - potential moats, only if evidence exists in the data

**8. FUNDAMENTAL RATING** - strong_buy / buy / hold / sell / strong_sell

**9. CONFIDENCE SCORE (0.0 to 1.0)** - given data quality and completeness

**CRITICAL ANALYSIS GUIDELINES:**
- Be data-driven and specific, cite actual numbers and trends
- Compare multiple periods to identify improving/deteriorating trends
- Look for divergences (e.g., revenue growth but FCF declining)
- Be honest about red flags, don't sugarcoat concerning trends

Respond ONLY with valid JSON matching this exact structure (no markdown, no extra text):
%s`, ticker, date, dataBlocks, fundamentalShape)
	return system, user
}

const bullShape = `{
  "thesis_summary": "string",
  "bullish_signals": {
    "technical_signals": ["string"],
    "fundamental_signals": ["string"]
  },
  "catalysts": {
    "near_term": ["string"],
    "long_term": ["string"]
  },
  "target_price_direction": "significantly_higher|moderately_higher|slightly_higher",
  "time_horizon": "short_term|medium_term|long_term|multi_timeframe",
  "risk_acknowledgment": {
    "key_risks": ["string"],
    "risk_mitigation": "string"
  },
  "conviction_score": number (0.0-1.0),
  "recommended_action": "strong_buy|buy|accumulate"
}`

func bullPrompts(ticker, news, market, fundamentals string) (string, string) {
	system := fmt.Sprintf("You are an expert BULL analyst making the strongest possible case for BUYING %s.", ticker)
	user := fmt.Sprintf(`Your role is to advocate for the BULLISH position by:
1. Extracting ALL positive signals from the analysis
2. Identifying catalysts that could drive the price higher
3. Building a compelling investment thesis for why this stock will RISE
4. Being intellectually honest about risks (but still maintaining bullish stance)

**NEWS ANALYSIS (Company-relevant):**
%[1]s

**MARKET ANALYSIS:**
%[2]s

**FUNDAMENTAL ANALYSIS:**
%[3]s

---

IMPORTANT NEWS GUIDANCE:
- Use positive/constructive items from NEWS for bullish signals and catalysts (e.g., demand strength, easing regulation, favorable sector flows).
- If referencing articles, use their titles or themes only (NO URLs; do not fabricate details).
- Include near-term NEWS catalysts with dates/timings when available.
- Use macro/sector items ONLY if they are relevant to %[4]s per the news analysis.

**YOUR TASK: BUILD THE STRONGEST BULL CASE**

1. **Thesis Summary (3-4 sentences)**: why is %[4]s a BUY right now, and what makes the opportunity compelling?
2. **Bullish Signals**: 3-5 technical signals and 3-5 fundamental signals, specific with values and metrics.
3. **Catalysts**: 1-3 near-term (days/weeks) and 1-3 long-term (months) drivers of upside.
4. **Target Price Direction**: significantly_higher (20%%+), moderately_higher (10-20%%), or slightly_higher (5-10%%).
5. **Time Horizon**: short_term, medium_term, long_term, or multi_timeframe.
6. **Risk Acknowledgment**: 2-4 key risks to the thesis and 1-2 sentences of risk mitigation.
7. **Conviction Score (0.0 to 1.0)**: strength of the bullish case given the evidence.
8. **Recommended Action**: strong_buy, buy, or accumulate.

**DEBATE GUIDELINES:**
- Extract EVERY bullish signal from the provided analysis
- Steelman the bullish position and make it as strong as possible
- Use specific data points and metrics to support your case
- Do NOT invent facts beyond what is provided

Respond ONLY with valid JSON matching this exact structure (no markdown, no extra text):
%[5]s`, news, market, fundamentals, ticker, bullShape)
	return system, user
}

const bearShape = `{
  "thesis_summary": "string",
  "bearish_signals": {
    "technical_signals": ["string"],
    "fundamental_signals": ["string"]
  },
  "downside_risks": {
    "near_term": ["string"],
    "long_term": ["string"]
  },
  "target_price_direction": "significantly_lower|moderately_lower|slightly_lower",
  "time_horizon": "short_term|medium_term|long_term|multi_timeframe",
  "counter_arguments": {
    "bull_case_weaknesses": ["string"],
    "why_bulls_are_wrong": "string"
  },
  "conviction_score": number (0.0-1.0),
  "recommended_action": "strong_sell|sell|avoid"
}`

func bearPrompts(ticker, news, market, fundamentals string) (string, string) {
	system := fmt.Sprintf("You are an expert BEAR analyst making the strongest possible case for SELLING or AVOIDING %s.", ticker)
	user := fmt.Sprintf(`Your role is to advocate for the BEARISH position by:
1. Extracting ALL negative signals from the analysis
2. Identifying downside risks that could drive the price lower
3. Building a compelling case for why this stock will FALL or underperform
4. Providing counter-arguments to any bullish thesis
5. Being a critical skeptic who finds flaws and risks

**NEWS ANALYSIS (Company-relevant):**
%[1]s

**MARKET ANALYSIS:**
%[2]s

**FUNDAMENTAL ANALYSIS:**
%[3]s

---

**YOUR TASK: BUILD THE STRONGEST BEAR CASE**

1. **Thesis Summary (3-4 sentences)**: why is %[4]s a SELL or AVOID right now?
2. **Bearish Signals**: 3-5 technical signals and 3-5 fundamental weaknesses, specific with values and metrics.
3. **Downside Risks**: 1-3 near-term (days/weeks) and 1-3 structural long-term (months) risks.
4. **Target Price Direction**: significantly_lower (20%%+ downside), moderately_lower (10-20%%), or slightly_lower (5-10%%).
5. **Time Horizon**: short_term, medium_term, long_term, or multi_timeframe.
6. **Counter-Arguments to Bulls**: 2-4 bull case weaknesses, plus 2-3 sentences on why bulls may be overlooking key risks.
7. **Conviction Score (0.0 to 1.0)**: strength of the bearish case given the evidence.
8. **Recommended Action**: strong_sell, sell, or avoid.

**DEBATE GUIDELINES:**
- Extract EVERY bearish signal from the provided analysis
- Steelman the bearish position and make it as strong as possible
- Act as a critical skeptic looking for flaws and risks
- Challenge bullish narratives with evidence
- Cite evidence from technical, news and fundamental analysis
- Be intellectually honest but maintain bearish stance

Respond ONLY with valid JSON matching this exact structure (no markdown, no extra text):
%[5]s`, news, market, fundamentals, ticker, bearShape)
	return system, user
}

const supervisorShape = `{
  "executive_summary": "string",
  "market_thesis": "string",
  "fundamental_thesis": "string",
  "bull_case_strength": number (0-10),
  "bear_case_strength": number (0-10),
  "consensus_direction": "bullish|bearish|neutral|mixed",
  "low_risk_recommendation": {
    "action": "strong_buy|buy|accumulate|hold|reduce|sell|strong_sell",
    "position_size": "full|half|quarter|minimal|zero",
    "entry_strategy": "string",
    "stop_loss": "string or null",
    "rationale": "string"
  },
  "medium_risk_recommendation": {
    "action": "strong_buy|buy|accumulate|hold|reduce|sell|strong_sell",
    "position_size": "full|half|quarter|minimal|zero",
    "entry_strategy": "string",
    "stop_loss": "string or null",
    "rationale": "string"
  },
  "high_risk_recommendation": {
    "action": "strong_buy|buy|accumulate|hold|reduce|sell|strong_sell",
    "position_size": "full|half|quarter|minimal|zero",
    "entry_strategy": "string",
    "stop_loss": "string or null",
    "rationale": "string"
  },
  "time_horizon_outlook": {
    "short_term": "bullish|bearish|neutral",
    "medium_term": "bullish|bearish|neutral",
    "long_term": "bullish|bearish|neutral"
  },
  "key_decision_factors": ["string"],
  "monitoring_points": ["string"],
  "final_confidence": number (0.0-1.0)
}`

func supervisorPrompts(ticker, news, market, fundamentals, bull, bear string) (string, string) {
	system := fmt.Sprintf("You are the CHIEF INVESTMENT OFFICER making final trading recommendations for %s.", ticker)
	user := fmt.Sprintf(`You have received comprehensive analysis from your team:
1. News Analyst (company + industry + macro news)
2. Market Analyst (technical analysis)
3. Fundamental Analyst (financial analysis)
4. Bull Advocate (strongest bullish case)
5. Bear Advocate (strongest bearish case)

Your role is to:
- Synthesize all perspectives into a coherent investment thesis
- Weigh the strength of bull vs bear arguments
- Provide RISK-TIERED recommendations for different investor profiles
- Give clear, actionable guidance with specific entry/exit strategies

**NEWS ANALYSIS (Company-relevant):**
%[1]s

**MARKET ANALYSIS (Technical):**
%[2]s

**FUNDAMENTAL ANALYSIS (Financial):**
%[3]s

**BULL CASE:**
%[4]s

**BEAR CASE:**
%[5]s

---

IMPORTANT NEWS GUIDANCE:
- Integrate NEWS themes/catalysts/risks into your synthesis where they materially affect %[6]s.
- Prefer dated catalysts and concrete events for monitoring_points (earnings dates, product launches, regulatory milestones).
- Reference titles/themes only (no URLs) and do NOT invent facts beyond the provided analyses.

**YOUR TASK: PROVIDE FINAL INVESTMENT DECISION**

1. **Executive Summary (4-5 sentences)**: the complete picture for %[6]s across technicals, fundamentals, news and the bull/bear debate.
2. **Market Thesis (2-3 sentences)**: your view on the technical setup.
3. **Fundamental Thesis (2-3 sentences)**: your view on financial health.
4. **Bull vs Bear Strength (0-10 each)**: rate each side by quality of signals, conviction and catalyst strength.
5. **Consensus Direction**: bullish, bearish, neutral (balanced or insufficient conviction), or mixed (conflicting signals across timeframes).
6. **Risk-Tiered Recommendations**: separate action, position size, entry strategy, optional stop loss and rationale for LOW RISK (conservative), MEDIUM RISK (balanced) and HIGH RISK (aggressive) profiles.
7. **Time Horizon Outlook**: short-term (days to weeks), medium-term (weeks to months), long-term (months to years).
8. **Key Decision Factors (3-5 items)**: the data and signals that matter most, including material NEWS themes if applicable.
9. **Monitoring Points (2-4 items)**: levels, metrics or dated events that would invalidate or strengthen the thesis.
10. **Final Confidence (0.0 to 1.0)**: given data quality, signal clarity and consensus among analyses.

**SUPERVISION GUIDELINES:**
- Be impartial: favor EVIDENCE, not bulls or bears
- Weight arguments by quality of evidence, not just conviction scores
- Risk-tiered recommendations should be DIFFERENT across profiles
- Low risk means more conservative: holds, smaller positions, tighter stops
- High risk means more aggressive: willing to trade on weaker signals
- Be specific with entry/exit strategies, acknowledge uncertainty where it exists

Respond ONLY with valid JSON matching this exact structure (no markdown, no extra text):
%[7]s`, news, market, fundamentals, bull, bear, ticker, supervisorShape)
	return system, user
}
