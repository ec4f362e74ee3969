package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/adapters/ai"
	"delphi/internal/adapters/config"
	"delphi/internal/agents"
	"delphi/internal/api/health"
	"delphi/internal/cache"
	"delphi/internal/pipeline"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// scriptedSteps builds six instant pipeline steps that fill their own state
// fields, ending in a bullish supervisor verdict.
func scriptedSteps() []pipeline.Step {
	fill := func(f func(st *agents.AnalysisState)) func(context.Context, agents.AnalysisState) (agents.AnalysisState, error) {
		return func(_ context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
			f(&st)
			return st, nil
		}
	}

	return []pipeline.Step{
		{Kind: agents.KindNews, Weight: 20, Run: fill(func(st *agents.AnalysisState) {
			st.News = &agents.NewsAnalysis{AnalysisSummary: "quiet week", OverallSentiment: "neutral"}
		})},
		{Kind: agents.KindMarket, Weight: 15, Run: fill(func(st *agents.AnalysisState) {
			st.Market = &agents.MarketAnalysis{AnalysisSummary: "uptrend intact", MarketSentiment: "bullish"}
		})},
		{Kind: agents.KindFundamentals, Weight: 15, Run: fill(func(st *agents.AnalysisState) {
			st.Fundamentals = &agents.FundamentalAnalysis{AnalysisSummary: "healthy balance sheet"}
		})},
		{Kind: agents.KindBull, Weight: 15, Run: fill(func(st *agents.AnalysisState) {
			st.Bull = &agents.BullCase{ThesisSummary: "earnings momentum"}
		})},
		{Kind: agents.KindBear, Weight: 15, Run: fill(func(st *agents.AnalysisState) {
			st.Bear = &agents.BearCase{ThesisSummary: "rich valuation"}
		})},
		{Kind: agents.KindSupervisor, Weight: 15, Run: fill(func(st *agents.AnalysisState) {
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

// newTestServer wires the full route table around a scripted runner and
// returns a live httptest server.
func newTestServer(t *testing.T, steps []pipeline.Step, store *cache.Store) *httptest.Server {
	t.Helper()

	log := logger.Get()
	runner := pipeline.NewRunner(steps, store, config.PipelineConfig{RunTimeout: 30 * time.Second}, log)
	healthHandler := health.New(log, store, ai.NewProviderRegistry(), "delphi", "test")

	srv := NewServer(
		ServerConfig{ServiceName: "delphi", Version: "test"},
		healthHandler,
		NewWebSocketHandler(runner, log),
		NewCacheHandler(store, log),
		log,
	)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readStream drains events until the server closes the connection,
// asserting the closure is a clean one.
func readStream(t *testing.T, conn *websocket.Conn) []pipeline.Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var events []pipeline.Event
	for {
		var ev pipeline.Event
		if err := conn.ReadJSON(&ev); err != nil {
			require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
				"expected normal closure, got %v", err)
			return events
		}
		events = append(events, ev)
	}
}

func TestWebSocketStreamsFullRun(t *testing.T) {
	store := newTestStore(t)
	ts := newTestServer(t, scriptedSteps(), store)

	conn := dialWS(t, ts)
	require.NoError(t, conn.WriteJSON(map[string]string{"ticker": "nvda", "date": "2025-11-01"}))

	events := readStream(t, conn)
	require.Len(t, events, 11)

	assert.Equal(t, pipeline.EventStart, events[0].Type)
	assert.Equal(t, "NVDA", events[0].Ticker)
	assert.Equal(t, "2025-11-01", events[0].Date)

	for _, ev := range events[1 : len(events)-1] {
		assert.Equal(t, pipeline.EventProgress, ev.Type)
	}

	last := events[len(events)-1]
	require.Equal(t, pipeline.EventComplete, last.Type)
	require.NotNil(t, last.Result)
	assert.Equal(t, "bullish", last.Result.Decision)
	assert.InDelta(t, 0.68, last.Result.Confidence, 1e-9)
	assert.False(t, last.Result.FromCache)

	// The finished run landed in the cache
	assert.True(t, store.Check("NVDA", "2025-11-01"))
}

func TestWebSocketAppliesRequestDefaults(t *testing.T) {
	ts := newTestServer(t, scriptedSteps(), newTestStore(t))

	conn := dialWS(t, ts)
	require.NoError(t, conn.WriteJSON(map[string]string{}))

	events := readStream(t, conn)
	require.NotEmpty(t, events)
	assert.Equal(t, pipeline.EventStart, events[0].Type)
	assert.Equal(t, "AAPL", events[0].Ticker)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), events[0].Date)
}

func TestWebSocketRejectsMalformedRequest(t *testing.T) {
	ts := newTestServer(t, scriptedSteps(), newTestStore(t))

	conn := dialWS(t, ts)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	events := readStream(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, pipeline.EventError, events[0].Type)
	assert.Contains(t, events[0].Message, "invalid analysis request")
}

func TestWebSocketStreamsErrorEvent(t *testing.T) {
	store := newTestStore(t)
	steps := scriptedSteps()
	steps[2].Run = func(_ context.Context, st agents.AnalysisState) (agents.AnalysisState, error) {
		return st, errors.Wrap(errors.ErrExternalAPI, "fmp: balance sheets")
	}
	ts := newTestServer(t, steps, store)

	conn := dialWS(t, ts)
	require.NoError(t, conn.WriteJSON(map[string]string{"ticker": "NVDA", "date": "2025-11-01"}))

	events := readStream(t, conn)
	require.Len(t, events, 7)

	last := events[len(events)-1]
	assert.Equal(t, pipeline.EventError, last.Type)
	assert.Contains(t, last.Message, "fundamentals_analyst")

	// Failed runs never reach the cache
	assert.False(t, store.Check("NVDA", "2025-11-01"))
}
