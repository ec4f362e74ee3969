package agents

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateDefaults(t *testing.T) {
	st := NewState(" nvda ", "")

	assert.Equal(t, "NVDA", st.Ticker)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), st.Date)
	assert.Equal(t, "neutral", st.Decision)
	assert.Nil(t, st.News)
	assert.Nil(t, st.Supervisor)
}

func TestNewStateKeepsExplicitDate(t *testing.T) {
	st := NewState("AAPL", "2025-08-15")
	assert.Equal(t, "2025-08-15", st.Date)
}

func TestStateResultEnvelope(t *testing.T) {
	news := validNewsAnalysis()
	market := validMarketAnalysis()
	fundamentals := validFundamentalAnalysis()
	bull := validBullCase()
	bear := validBearCase()
	decision := validSupervisorDecision()

	st := NewState("AAPL", "2025-08-15")
	st.News = &news
	st.Market = &market
	st.Fundamentals = &fundamentals
	st.Bull = &bull
	st.Bear = &bear
	st.Supervisor = &decision
	st.Decision = decision.ConsensusDirection
	st.Confidence = decision.FinalConfidence
	st.Rationale = decision.ExecutiveSummary

	result := st.Result()
	require.NotNil(t, result)

	assert.Equal(t, "AAPL", result.Ticker)
	assert.Equal(t, "2025-08-15", result.Date)
	assert.Equal(t, "bullish", result.Decision)
	assert.InDelta(t, 0.71, result.Confidence, 1e-9)
	assert.NotEmpty(t, result.Rationale)
	assert.False(t, result.FromCache)
	assert.Same(t, st.News, result.Agents.News)
	assert.Same(t, st.Supervisor, result.Agents.Supervisor)
}

func TestResultWireKeys(t *testing.T) {
	news := validNewsAnalysis()
	st := NewState("AAPL", "2025-08-15")
	st.News = &news

	raw, err := json.Marshal(st.Result())
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"ticker", "date", "decision", "confidence", "rationale", "agents", "from_cache"} {
		assert.Contains(t, decoded, key)
	}

	var agents map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["agents"], &agents))
	for _, key := range []string{"news_analyst", "market_analyst", "fundamentals_analyst", "bull_debater", "bear_debater", "supervisor"} {
		assert.Contains(t, agents, key)
	}
}

func TestStateWireKeys(t *testing.T) {
	market := validMarketAnalysis()
	st := NewState("AAPL", "2025-08-15")
	st.Market = &market

	raw, err := json.Marshal(st)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "market_analysis")
	assert.NotContains(t, decoded, "news_analysis")
	assert.NotContains(t, decoded, "bull_argument")
}
