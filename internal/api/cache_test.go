package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/adapters/config"
	"delphi/internal/agents"
	"delphi/internal/cache"
	"delphi/pkg/logger"
)

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.NewStore(config.CacheConfig{Directory: t.TempDir()})
	require.NoError(t, err)
	return store
}

func completedState(ticker, date, decision string, confidence float64) agents.AnalysisState {
	st := agents.NewState(ticker, date)
	st.Supervisor = &agents.SupervisorDecision{
		ExecutiveSummary:   "Momentum and fundamentals support the position.",
		ConsensusDirection: decision,
		FinalConfidence:    confidence,
	}
	st.Decision = decision
	st.Confidence = confidence
	st.Rationale = st.Supervisor.ExecutiveSummary
	return st
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleCheckReportsCachedEntry(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(completedState("NVDA", "2025-11-01", "bullish", 0.72)))
	h := NewCacheHandler(store, logger.Get())

	w := httptest.NewRecorder()
	h.HandleCheck(w, httptest.NewRequest(http.MethodGet, "/api/cache/check?ticker=NVDA&date=2025-11-01", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["has_cache"])

	cacheData, ok := body["cache_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, cacheData["exists"])
	assert.Equal(t, "NVDA", cacheData["ticker"])
	assert.Equal(t, "2025-11-01", cacheData["date"])
	assert.Equal(t, "bullish", cacheData["decision"])
	assert.InDelta(t, 0.72, cacheData["confidence"], 1e-9)
	assert.NotEmpty(t, cacheData["cached_at"])
}

func TestHandleCheckMissingEntry(t *testing.T) {
	h := NewCacheHandler(newTestStore(t), logger.Get())

	w := httptest.NewRecorder()
	h.HandleCheck(w, httptest.NewRequest(http.MethodGet, "/api/cache/check?ticker=NVDA&date=2025-11-01", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["has_cache"])
	assert.Contains(t, body, "cache_data")
	assert.Nil(t, body["cache_data"])
}

func TestHandleCheckRequiresTickerAndDate(t *testing.T) {
	h := NewCacheHandler(newTestStore(t), logger.Get())

	w := httptest.NewRecorder()
	h.HandleCheck(w, httptest.NewRequest(http.MethodGet, "/api/cache/check?ticker=NVDA", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "required")
}

func TestHandleLoadReturnsEnvelope(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(completedState("NVDA", "2025-11-01", "bullish", 0.72)))
	h := NewCacheHandler(store, logger.Get())

	w := httptest.NewRecorder()
	h.HandleLoad(w, httptest.NewRequest(http.MethodGet, "/api/cache/load?ticker=NVDA&date=2025-11-01", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var result agents.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "NVDA", result.Ticker)
	assert.Equal(t, "2025-11-01", result.Date)
	assert.Equal(t, "bullish", result.Decision)
	assert.True(t, result.FromCache)
	assert.NotEmpty(t, result.CachedAt)
	require.NotNil(t, result.Agents.Supervisor)
	assert.Equal(t, "bullish", result.Agents.Supervisor.ConsensusDirection)
}

func TestHandleLoadMissingEntry(t *testing.T) {
	h := NewCacheHandler(newTestStore(t), logger.Get())

	w := httptest.NewRecorder()
	h.HandleLoad(w, httptest.NewRequest(http.MethodGet, "/api/cache/load?ticker=NVDA&date=2025-11-01", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Cache not found", body["error"])
	assert.Equal(t, "NVDA", body["ticker"])
	assert.Equal(t, "2025-11-01", body["date"])
}

func TestHandleListReturnsEntriesAndStats(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(completedState("NVDA", "2025-11-01", "bullish", 0.72)))
	require.NoError(t, store.Save(completedState("AAPL", "2025-11-01", "neutral", 0.55)))
	h := NewCacheHandler(store, logger.Get())

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/cache/list", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	analyses, ok := body["cached_analyses"].([]interface{})
	require.True(t, ok)
	assert.Len(t, analyses, 2)

	stats, ok := body["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, stats["total_analyses"])
	assert.NotEmpty(t, stats["cache_directory"])
}

func TestHandleListEmptyStore(t *testing.T) {
	h := NewCacheHandler(newTestStore(t), logger.Get())

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest(http.MethodGet, "/api/cache/list", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	// Empty store serves [] rather than null
	analyses, ok := body["cached_analyses"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, analyses)
}

func TestHandleDeleteReportsRemoval(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(completedState("NVDA", "2025-11-01", "bullish", 0.72)))
	h := NewCacheHandler(store, logger.Get())

	w := httptest.NewRecorder()
	h.HandleDelete(w, httptest.NewRequest(http.MethodDelete, "/api/cache/delete?ticker=NVDA&date=2025-11-01", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "NVDA", body["ticker"])
	assert.Equal(t, "2025-11-01", body["date"])
	assert.False(t, store.Check("NVDA", "2025-11-01"))

	// Deleting the same pair again is a reported no-op
	w = httptest.NewRecorder()
	h.HandleDelete(w, httptest.NewRequest(http.MethodDelete, "/api/cache/delete?ticker=NVDA&date=2025-11-01", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestHandleClearEmptiesStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(completedState("NVDA", "2025-11-01", "bullish", 0.72)))
	require.NoError(t, store.Save(completedState("AAPL", "2025-11-02", "neutral", 0.55)))
	h := NewCacheHandler(store, logger.Get())

	w := httptest.NewRecorder()
	h.HandleClear(w, httptest.NewRequest(http.MethodDelete, "/api/cache/clear", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "All cache cleared", body["message"])
	assert.Empty(t, store.List())
}

func TestCacheHandlersEnforceMethods(t *testing.T) {
	h := NewCacheHandler(newTestStore(t), logger.Get())

	w := httptest.NewRecorder()
	h.HandleClear(w, httptest.NewRequest(http.MethodGet, "/api/cache/clear", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.HandleCheck(w, httptest.NewRequest(http.MethodPost, "/api/cache/check?ticker=NVDA&date=2025-11-01", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.HandleDelete(w, httptest.NewRequest(http.MethodGet, "/api/cache/delete?ticker=NVDA&date=2025-11-01", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
