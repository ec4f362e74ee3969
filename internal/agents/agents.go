// Package agents implements the six analysis steps behind an equity
// recommendation: news, market and fundamentals analysts, bull and bear
// debaters, and the supervisor that synthesizes their output into a final
// decision. Each step reads the accumulated state, calls its model with a
// structured response schema and returns an updated copy of the state.
package agents

import "strings"

// Kind identifies one analysis step.
type Kind string

const (
	KindNews         Kind = "news_analyst"
	KindMarket       Kind = "market_analyst"
	KindFundamentals Kind = "fundamentals_analyst"
	KindBull         Kind = "bull_debater"
	KindBear         Kind = "bear_debater"
	KindSupervisor   Kind = "supervisor"
)

// AllKinds returns the six step kinds in pipeline order.
func AllKinds() []Kind {
	return []Kind{KindNews, KindMarket, KindFundamentals, KindBull, KindBear, KindSupervisor}
}

func (k Kind) String() string {
	return string(k)
}

// DisplayName renders the kind for progress messages, e.g. "News Analyst".
func (k Kind) DisplayName() string {
	words := strings.Split(string(k), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
