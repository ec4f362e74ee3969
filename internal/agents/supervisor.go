package agents

import "context"

// Supervise synthesizes all five prior outputs into the final risk-tiered
// decision and promotes the headline fields onto the state.
func (t *Team) Supervise(ctx context.Context, st AnalysisState) (AnalysisState, error) {
	system, user := supervisorPrompts(
		st.Ticker,
		jsonOrNote(st.News, "No news analysis available"),
		jsonOrNote(st.Market, "No market analysis available"),
		jsonOrNote(st.Fundamentals, "No fundamental analysis available"),
		jsonOrNote(st.Bull, "No bull case available"),
		jsonOrNote(st.Bear, "No bear case available"),
	)

	var out SupervisorDecision
	if err := t.generate(ctx, KindSupervisor, system, user, SupervisorDecisionSchema, &out); err != nil {
		return st, err
	}
	st.Supervisor = &out
	st.Decision = out.ConsensusDirection
	st.Confidence = out.FinalConfidence
	st.Rationale = out.ExecutiveSummary
	return st, nil
}
