package agents

import (
	"context"

	"delphi/internal/adapters/fmp"
	"delphi/internal/indicators"
	"delphi/pkg/errors"
)

// Daily candles shown verbatim in the prompt, newest last.
const recentCandleCount = 10

// AnalyzeMarket loads price history, computes the technical indicator
// snapshot and asks the market analyst for a structured read. Market data
// failures abort the step; without prices there is nothing to analyze.
func (t *Team) AnalyzeMarket(ctx context.Context, st AnalysisState) (AnalysisState, error) {
	candles, err := t.fmp.HistoricalPrices(ctx, st.Ticker, t.candleLookback)
	if err != nil {
		return st, errors.Wrapf(err, "load price history for %s", st.Ticker)
	}
	snapshot, err := indicators.Compute(candles)
	if err != nil {
		return st, errors.Wrapf(err, "compute indicators for %s", st.Ticker)
	}
	quote, err := t.fmp.Quote(ctx, st.Ticker)
	if err != nil {
		return st, errors.Wrapf(err, "load quote for %s", st.Ticker)
	}

	recent := candles
	if len(recent) > recentCandleCount {
		recent = recent[len(recent)-recentCandleCount:]
	}
	stock := struct {
		Quote         *fmp.Quote   `json:"quote"`
		RecentCandles []fmp.Candle `json:"recent_daily_candles"`
	}{quote, recent}

	system, user := marketPrompts(st.Ticker, st.Date, mustJSON(stock), mustJSON(snapshot))

	var out MarketAnalysis
	if err := t.generate(ctx, KindMarket, system, user, MarketAnalysisSchema, &out); err != nil {
		return st, err
	}
	st.Market = &out
	return st, nil
}
