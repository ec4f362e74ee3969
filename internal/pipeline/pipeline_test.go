package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/adapters/ai"
	"delphi/internal/adapters/alphavantage"
	"delphi/internal/adapters/config"
	"delphi/internal/adapters/fmp"
	"delphi/internal/agents"
	"delphi/internal/cache"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// scriptedSteps builds six descriptors in pipeline order whose Run functions
// fill their own state field, recording execution order as they go.
func scriptedSteps(executed *[]agents.Kind) []Step {
	mark := func(kind agents.Kind, fill func(st *agents.AnalysisState)) func(context.Context, agents.AnalysisState) (agents.AnalysisState, error) {
		return func(_ context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
			*executed = append(*executed, kind)
			fill(&st)
			return st, nil
		}
	}

	return []Step{
		{Kind: agents.KindNews, Weight: 20, Run: mark(agents.KindNews, func(st *agents.AnalysisState) {
			st.News = &agents.NewsAnalysis{AnalysisSummary: "quiet week", OverallSentiment: "neutral"}
		})},
		{Kind: agents.KindMarket, Weight: 15, Run: mark(agents.KindMarket, func(st *agents.AnalysisState) {
			st.Market = &agents.MarketAnalysis{AnalysisSummary: "uptrend intact", MarketSentiment: "bullish"}
		})},
		{Kind: agents.KindFundamentals, Weight: 15, Run: mark(agents.KindFundamentals, func(st *agents.AnalysisState) {
			st.Fundamentals = &agents.FundamentalAnalysis{AnalysisSummary: "healthy balance sheet"}
		})},
		{Kind: agents.KindBull, Weight: 15, Run: mark(agents.KindBull, func(st *agents.AnalysisState) {
			st.Bull = &agents.BullCase{ThesisSummary: "earnings momentum"}
		})},
		{Kind: agents.KindBear, Weight: 15, Run: mark(agents.KindBear, func(st *agents.AnalysisState) {
			st.Bear = &agents.BearCase{ThesisSummary: "rich valuation"}
		})},
		{Kind: agents.KindSupervisor, Weight: 15, Run: mark(agents.KindSupervisor, func(st *agents.AnalysisState) {
			st.Supervisor = &agents.SupervisorDecision{
				ExecutiveSummary:   "bull case narrowly wins",
				ConsensusDirection: "bullish",
				FinalConfidence:    0.68,
			}
			st.Decision = "bullish"
			st.Confidence = 0.68
			st.Rationale = st.Supervisor.ExecutiveSummary
		})},
	}
}

func collectEvents(events *[]Event) EmitFunc {
	return func(e Event) { *events = append(*events, e) }
}

func newTestRunner(t *testing.T, steps []Step, store *cache.Store) *Runner {
	t.Helper()
	return NewRunner(steps, store, config.PipelineConfig{RunTimeout: 30 * time.Second}, logger.Get())
}

func TestRunEmitsOrderedProgressStream(t *testing.T) {
	var executed []agents.Kind
	var events []Event

	runner := newTestRunner(t, scriptedSteps(&executed), nil)
	result, err := runner.Run(context.Background(), "nvda", "2025-11-01", collectEvents(&events))
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, events, 11)

	assert.Equal(t, EventStart, events[0].Type)
	assert.Equal(t, "NVDA", events[0].Ticker)
	assert.Equal(t, "2025-11-01", events[0].Date)

	wantProgress := []struct {
		agent   string
		percent int
	}{
		{"initializing", 0},
		{"initializing", 5},
		{"news_analyst", 20},
		{"market_analyst", 35},
		{"fundamentals_analyst", 50},
		{"bull_debater", 65},
		{"bear_debater", 80},
		{"supervisor", 95},
		{"complete", 100},
	}
	for i, want := range wantProgress {
		evt := events[i+1]
		assert.Equal(t, EventProgress, evt.Type, "event %d", i+1)
		assert.Equal(t, want.agent, evt.Agent, "event %d", i+1)
		assert.Equal(t, want.percent, evt.Percent(), "event %d", i+1)
	}
	assert.Equal(t, "Running News Analyst...", events[3].Message)
	assert.Equal(t, "Analysis complete!", events[9].Message)

	last := events[len(events)-1]
	assert.Equal(t, EventComplete, last.Type)
	require.NotNil(t, last.Result)
	assert.Equal(t, "bullish", last.Result.Decision)
	assert.Equal(t, 0.68, last.Result.Confidence)
	assert.False(t, last.Result.FromCache)

	assert.Equal(t, agents.AllKinds(), executed)
}

func TestRunProgressIsMonotonic(t *testing.T) {
	var executed []agents.Kind
	var events []Event

	runner := newTestRunner(t, scriptedSteps(&executed), nil)
	_, err := runner.Run(context.Background(), "AAPL", "2025-08-15", collectEvents(&events))
	require.NoError(t, err)

	prev := -1
	sawHundred := false
	for _, evt := range events {
		if evt.Type != EventProgress {
			continue
		}
		assert.GreaterOrEqual(t, evt.Percent(), prev)
		prev = evt.Percent()
		if evt.Percent() == 100 {
			sawHundred = true
			// 100 only arrives once every step has run.
			assert.Len(t, executed, 6)
		}
	}
	assert.True(t, sawHundred)
	assert.Equal(t, 100, prev)
}

func TestRunThreadsStateThroughSteps(t *testing.T) {
	var executed []agents.Kind
	steps := scriptedSteps(&executed)

	// The supervisor must see every prior output in its state copy.
	supervise := steps[5].Run
	steps[5].Run = func(ctx context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
		require.NotNil(t, st.News)
		require.NotNil(t, st.Market)
		require.NotNil(t, st.Fundamentals)
		require.NotNil(t, st.Bull)
		require.NotNil(t, st.Bear)
		return supervise(ctx, st)
	}

	runner := newTestRunner(t, steps, nil)
	result, err := runner.Run(context.Background(), "AAPL", "2025-08-15", nil)
	require.NoError(t, err)

	assert.NotNil(t, result.Agents.News)
	assert.NotNil(t, result.Agents.Market)
	assert.NotNil(t, result.Agents.Fundamentals)
	assert.NotNil(t, result.Agents.Bull)
	assert.NotNil(t, result.Agents.Bear)
	assert.NotNil(t, result.Agents.Supervisor)
}

func TestRunFailsFastOnStepError(t *testing.T) {
	var executed []agents.Kind
	var events []Event

	steps := scriptedSteps(&executed)
	steps[2].Run = func(_ context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
		executed = append(executed, agents.KindFundamentals)
		return st, errors.Wrap(errors.ErrExternalAPI, "fmp: balance sheets")
	}

	store, err := cache.NewStore(config.CacheConfig{Directory: t.TempDir()})
	require.NoError(t, err)

	runner := newTestRunner(t, steps, store)
	result, runErr := runner.Run(context.Background(), "NVDA", "2025-11-01", collectEvents(&events))
	require.Error(t, runErr)
	assert.Nil(t, result)
	assert.ErrorIs(t, runErr, errors.ErrExternalAPI)
	assert.Contains(t, runErr.Error(), "pipeline failed at fundamentals_analyst")

	// Later steps never ran.
	assert.Equal(t, []agents.Kind{agents.KindNews, agents.KindMarket, agents.KindFundamentals}, executed)

	// Exactly one error event, no complete event, and it closes the stream.
	var errorCount, completeCount int
	for _, evt := range events {
		switch evt.Type {
		case EventError:
			errorCount++
		case EventComplete:
			completeCount++
		}
	}
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, 0, completeCount)
	assert.Equal(t, EventError, events[len(events)-1].Type)
	assert.Contains(t, events[len(events)-1].Message, "fundamentals_analyst")

	// A failed run writes no cache entry.
	assert.False(t, store.Check("NVDA", "2025-11-01"))
}

func TestRunSavesCompletedRunToCache(t *testing.T) {
	var executed []agents.Kind
	var events []Event

	store, err := cache.NewStore(config.CacheConfig{Directory: t.TempDir()})
	require.NoError(t, err)

	runner := newTestRunner(t, scriptedSteps(&executed), store)
	result, err := runner.Run(context.Background(), "NVDA", "2025-11-01", collectEvents(&events))
	require.NoError(t, err)

	require.True(t, store.Check("NVDA", "2025-11-01"))

	cached, err := store.Load("NVDA", "2025-11-01")
	require.NoError(t, err)

	// The cached entry round-trips to the result the complete event carried.
	assert.Equal(t, result.Ticker, cached.Ticker)
	assert.Equal(t, result.Date, cached.Date)
	assert.Equal(t, result.Decision, cached.Decision)
	assert.Equal(t, result.Confidence, cached.Confidence)
	assert.Equal(t, result.Rationale, cached.Rationale)
	require.NotNil(t, cached.Agents.Supervisor)
	assert.Equal(t, result.Agents.Supervisor.ExecutiveSummary, cached.Agents.Supervisor.ExecutiveSummary)
	assert.True(t, cached.FromCache)
	assert.False(t, result.FromCache)
}

func TestRunTimesOut(t *testing.T) {
	var events []Event

	steps := []Step{{
		Kind:   agents.KindNews,
		Weight: 20,
		Run: func(ctx context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
			<-ctx.Done()
			return st, ctx.Err()
		},
	}}

	runner := NewRunner(steps, nil, config.PipelineConfig{RunTimeout: 50 * time.Millisecond}, logger.Get())
	_, err := runner.Run(context.Background(), "AAPL", "2025-08-15", collectEvents(&events))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTimeout)

	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Contains(t, last.Message, "timed out")
}

func TestRunRecoversStepPanic(t *testing.T) {
	var events []Event

	steps := []Step{{
		Kind:   agents.KindNews,
		Weight: 20,
		Run: func(_ context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
			panic("nil candle window")
		},
	}}

	runner := newTestRunner(t, steps, nil)
	_, err := runner.Run(context.Background(), "AAPL", "2025-08-15", collectEvents(&events))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInternal)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, EventError, events[len(events)-1].Type)
}

func TestRunWithNilEmit(t *testing.T) {
	var executed []agents.Kind

	runner := newTestRunner(t, scriptedSteps(&executed), nil)
	result, err := runner.Run(context.Background(), "AAPL", "2025-08-15", nil)
	require.NoError(t, err)
	assert.Equal(t, "bullish", result.Decision)
}

func TestNewRunnerDefaultsTimeout(t *testing.T) {
	runner := NewRunner(nil, nil, config.PipelineConfig{}, logger.Get())
	assert.Equal(t, 5*time.Minute, runner.timeout)
}

func TestAnalysisStepsOrderAndWeights(t *testing.T) {
	team := agents.NewTeam(
		ai.NewProviderRegistry(),
		fmp.NewClient(config.MarketDataConfig{FMPAPIKey: "test"}, logger.Get()),
		alphavantage.NewClient(config.MarketDataConfig{AlphaVantageAPIKey: "test"}, logger.Get()),
		config.AIConfig{DefaultProvider: "gemini", FastModel: "fast", DeepModel: "deep"},
		config.MarketDataConfig{},
		logger.Get(),
	)

	steps := AnalysisSteps(team)
	require.Len(t, steps, 6)

	total := 0
	for i, step := range steps {
		assert.Equal(t, agents.AllKinds()[i], step.Kind)
		assert.NotNil(t, step.Run)
		total += step.Weight
	}
	assert.Equal(t, 95, total)
	assert.Equal(t, 20, steps[0].Weight)
}

func TestEventWireShapes(t *testing.T) {
	data, err := json.Marshal(NewProgressEvent("initializing", 0, "Initializing trading agents..."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"progress","agent":"initializing","progress":0,"message":"Initializing trading agents..."}`, string(data))

	data, err = json.Marshal(NewStartEvent("NVDA", "2025-11-01"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"start","ticker":"NVDA","date":"2025-11-01"}`, string(data))

	data, err = json.Marshal(NewErrorEvent("pipeline failed at news_analyst: boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"pipeline failed at news_analyst: boom"}`, string(data))

	assert.True(t, NewErrorEvent("x").Terminal())
	assert.True(t, NewCompleteEvent(nil).Terminal())
	assert.False(t, NewProgressEvent("supervisor", 95, "").Terminal())
}
