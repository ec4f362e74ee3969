package agents

import (
	"context"
	"fmt"
	"strings"

	"delphi/internal/adapters/fmp"
	"delphi/pkg/errors"
)

const (
	statementQuarters   = 4
	earningsSurpriseQty = 8
)

// AnalyzeFundamentals prefetches profile, ratios and three financial
// statements and asks the fundamentals analyst for a structured read.
// Statement failures abort the step. Earnings surprise history is
// supplementary; a ticker without one (recent IPOs, some foreign listings)
// just analyzes without it.
func (t *Team) AnalyzeFundamentals(ctx context.Context, st AnalysisState) (AnalysisState, error) {
	profile, err := t.fmp.Profile(ctx, st.Ticker)
	if err != nil {
		return st, errors.Wrapf(err, "load company profile for %s", st.Ticker)
	}
	ratios, err := t.fmp.RatiosTTM(ctx, st.Ticker)
	if err != nil {
		return st, errors.Wrapf(err, "load TTM ratios for %s", st.Ticker)
	}
	income, err := t.fmp.IncomeStatements(ctx, st.Ticker, fmp.PeriodQuarter, statementQuarters)
	if err != nil {
		return st, errors.Wrapf(err, "load income statements for %s", st.Ticker)
	}
	balance, err := t.fmp.BalanceSheets(ctx, st.Ticker, fmp.PeriodQuarter, statementQuarters)
	if err != nil {
		return st, errors.Wrapf(err, "load balance sheets for %s", st.Ticker)
	}
	cashflow, err := t.fmp.CashFlowStatements(ctx, st.Ticker, fmp.PeriodQuarter, statementQuarters)
	if err != nil {
		return st, errors.Wrapf(err, "load cash flow statements for %s", st.Ticker)
	}
	surprises, err := t.fmp.EarningsSurprises(ctx, st.Ticker, earningsSurpriseQty)
	if err != nil {
		if !errors.Is(err, errors.ErrNoData) {
			return st, errors.Wrapf(err, "load earnings surprises for %s", st.Ticker)
		}
		t.log.Debugw("earnings surprise history unavailable", "ticker", st.Ticker)
		surprises = nil
	}

	var b strings.Builder
	section := func(title string, v any) {
		fmt.Fprintf(&b, "**%s:**\n%s\n\n", title, mustJSON(v))
	}
	section("COMPANY PROFILE", profile)
	section("KEY RATIOS (TTM)", ratios)
	section("INCOME STATEMENTS (Quarterly, newest first)", income)
	section("BALANCE SHEETS (Quarterly, newest first)", balance)
	section("CASH FLOW STATEMENTS (Quarterly, newest first)", cashflow)
	if len(surprises) > 0 {
		section("EARNINGS SURPRISES (actual vs estimated EPS, newest first)", surprises)
	} else {
		fmt.Fprintf(&b, "**EARNINGS SURPRISES:**\nNo earnings surprise history available\n\n")
	}

	system, user := fundamentalsPrompts(st.Ticker, st.Date, strings.TrimSpace(b.String()))

	var out FundamentalAnalysis
	if err := t.generate(ctx, KindFundamentals, system, user, FundamentalAnalysisSchema, &out); err != nil {
		return st, err
	}
	st.Fundamentals = &out
	return st, nil
}
