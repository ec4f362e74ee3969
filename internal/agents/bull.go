package agents

import "context"

// DebateBull builds the strongest bullish case from the three analyst
// reads accumulated so far.
func (t *Team) DebateBull(ctx context.Context, st AnalysisState) (AnalysisState, error) {
	system, user := bullPrompts(
		st.Ticker,
		jsonOrNote(st.News, "No news analysis available"),
		jsonOrNote(st.Market, "No market analysis available"),
		jsonOrNote(st.Fundamentals, "No fundamental analysis available"),
	)

	var out BullCase
	if err := t.generate(ctx, KindBull, system, user, BullCaseSchema, &out); err != nil {
		return st, err
	}
	st.Bull = &out
	return st, nil
}
