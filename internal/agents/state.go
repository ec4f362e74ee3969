package agents

import (
	"strings"
	"time"
)

// AnalysisState accumulates step outputs across one pipeline run. Steps
// receive it by value and return an updated copy; a step only ever sets its
// own field, so earlier outputs are never overwritten.
type AnalysisState struct {
	Ticker string `json:"ticker"`
	Date   string `json:"date"`

	News         *NewsAnalysis        `json:"news_analysis,omitempty"`
	Market       *MarketAnalysis      `json:"market_analysis,omitempty"`
	Fundamentals *FundamentalAnalysis `json:"fundamental_analysis,omitempty"`
	Bull         *BullCase            `json:"bull_argument,omitempty"`
	Bear         *BearCase            `json:"bear_argument,omitempty"`
	Supervisor   *SupervisorDecision  `json:"supervisor_decision,omitempty"`

	// Filled from the supervisor output when the run completes.
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// NewState seeds a run state. The ticker is canonicalized to upper case
// and an empty date defaults to today (UTC).
func NewState(ticker, date string) AnalysisState {
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	return AnalysisState{
		Ticker:   strings.ToUpper(strings.TrimSpace(ticker)),
		Date:     date,
		Decision: "neutral",
	}
}

// AgentOutputs groups the six step outputs under their wire names.
type AgentOutputs struct {
	News         *NewsAnalysis        `json:"news_analyst"`
	Market       *MarketAnalysis      `json:"market_analyst"`
	Fundamentals *FundamentalAnalysis `json:"fundamentals_analyst"`
	Bull         *BullCase            `json:"bull_debater"`
	Bear         *BearCase            `json:"bear_debater"`
	Supervisor   *SupervisorDecision  `json:"supervisor"`
}

// Result is the envelope delivered to clients and persisted in the cache.
type Result struct {
	Ticker     string       `json:"ticker"`
	Date       string       `json:"date"`
	Decision   string       `json:"decision"`
	Confidence float64      `json:"confidence"`
	Rationale  string       `json:"rationale"`
	Agents     AgentOutputs `json:"agents"`
	FromCache  bool         `json:"from_cache"`
	CachedAt   string       `json:"cached_at,omitempty"`
}

// Result assembles the client-facing envelope from a completed state.
func (s AnalysisState) Result() *Result {
	return &Result{
		Ticker:     s.Ticker,
		Date:       s.Date,
		Decision:   s.Decision,
		Confidence: s.Confidence,
		Rationale:  s.Rationale,
		Agents: AgentOutputs{
			News:         s.News,
			Market:       s.Market,
			Fundamentals: s.Fundamentals,
			Bull:         s.Bull,
			Bear:         s.Bear,
			Supervisor:   s.Supervisor,
		},
	}
}
