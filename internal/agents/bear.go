package agents

import "context"

// DebateBear builds the strongest bearish case from the three analyst
// reads. The bear argues from the same evidence as the bull, not against
// the bull's text, so both cases stand on independent footing when the
// supervisor weighs them.
func (t *Team) DebateBear(ctx context.Context, st AnalysisState) (AnalysisState, error) {
	system, user := bearPrompts(
		st.Ticker,
		jsonOrNote(st.News, "No news analysis available"),
		jsonOrNote(st.Market, "No market analysis available"),
		jsonOrNote(st.Fundamentals, "No fundamental analysis available"),
	)

	var out BearCase
	if err := t.generate(ctx, KindBear, system, user, BearCaseSchema, &out); err != nil {
		return st, err
	}
	st.Bear = &out
	return st, nil
}
