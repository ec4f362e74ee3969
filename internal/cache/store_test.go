package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delphi/internal/adapters/config"
	"delphi/internal/agents"
	"delphi/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(config.CacheConfig{Directory: t.TempDir()})
	require.NoError(t, err)
	return store
}

func completedState(ticker, date, decision string, confidence float64) agents.AnalysisState {
	st := agents.NewState(ticker, date)
	st.Supervisor = &agents.SupervisorDecision{
		ExecutiveSummary:   "Momentum and fundamentals support a long position.",
		ConsensusDirection: decision,
		FinalConfidence:    confidence,
	}
	st.Decision = decision
	st.Confidence = confidence
	st.Rationale = st.Supervisor.ExecutiveSummary
	return st
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	st := completedState("NVDA", "2025-11-01", "bullish", 0.74)
	require.NoError(t, store.Save(st))

	assert.True(t, store.Check("NVDA", "2025-11-01"))

	result, err := store.Load("NVDA", "2025-11-01")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", result.Ticker)
	assert.Equal(t, "2025-11-01", result.Date)
	assert.Equal(t, "bullish", result.Decision)
	assert.Equal(t, 0.74, result.Confidence)
	assert.Equal(t, st.Rationale, result.Rationale)
	require.NotNil(t, result.Agents.Supervisor)
	assert.Equal(t, "bullish", result.Agents.Supervisor.ConsensusDirection)
	assert.True(t, result.FromCache)
	assert.NotEmpty(t, result.CachedAt)
	assert.NotEqual(t, "unknown", result.CachedAt)
}

func TestStoreKeyIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(completedState(" nvda ", "2025-11-01", "bullish", 0.7)))

	assert.True(t, store.Check("NVDA", "2025-11-01"))
	assert.True(t, store.Check("nvda", "2025-11-01"))

	result, err := store.Load("Nvda", "2025-11-01")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", result.Ticker)
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(completedState("AAPL", "2025-08-15", "bullish", 0.8)))
	require.NoError(t, store.Save(completedState("AAPL", "2025-08-15", "bearish", 0.6)))

	entries := store.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "AAPL_2025-08-15", entries[0].CacheKey)
	assert.Equal(t, "bearish", entries[0].Decision)

	result, err := store.Load("AAPL", "2025-08-15")
	require.NoError(t, err)
	assert.Equal(t, "bearish", result.Decision)

	paths, err := filepath.Glob(filepath.Join(store.dir, "AAPL_*.json"))
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestLoadMissingEntry(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("TSLA", "2025-01-01")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLoadRejectsPathElements(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("../etc", "2025-01-01")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.False(t, store.Check("../etc", "2025-01-01"))

	_, err = store.Load("", "2025-01-01")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestDeleteAbsentKeyIsNoOp(t *testing.T) {
	store := newTestStore(t)

	removed, err := store.Delete("MSFT", "2024-12-31")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteRemovesEntry(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(completedState("MSFT", "2025-03-03", "neutral", 0.5)))

	removed, err := store.Delete("MSFT", "2025-03-03")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, store.Check("MSFT", "2025-03-03"))
	assert.Empty(t, store.List())
}

func TestClearEmptiesStore(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(completedState("AAPL", "2025-08-15", "bullish", 0.8)))
	require.NoError(t, store.Save(completedState("NVDA", "2025-08-15", "bearish", 0.9)))

	require.NoError(t, store.Clear())

	assert.Empty(t, store.List())
	assert.Equal(t, 0, store.Stats().TotalAnalyses)

	// Payload files are gone but the index file survives, now empty.
	paths, err := filepath.Glob(filepath.Join(store.dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, indexFile, filepath.Base(paths[0]))
}

func TestListOrdersByCachedAtDescending(t *testing.T) {
	store := newTestStore(t)

	index := map[string]indexEntry{
		"AAPL_2025-08-13": {Ticker: "AAPL", Date: "2025-08-13", CachedAt: "2025-08-13T10:00:00Z", Decision: "neutral", Confidence: 0.5, File: "AAPL_2025-08-13.json"},
		"NVDA_2025-08-15": {Ticker: "NVDA", Date: "2025-08-15", CachedAt: "2025-08-15T09:00:00Z", Decision: "bullish", Confidence: 0.8, File: "NVDA_2025-08-15.json"},
		"MSFT_2025-08-14": {Ticker: "MSFT", Date: "2025-08-14", CachedAt: "2025-08-14T12:00:00Z", Decision: "bearish", Confidence: 0.6, File: "MSFT_2025-08-14.json"},
	}
	data, err := json.Marshal(index)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, indexFile), data, 0o644))

	reloaded, err := NewStore(config.CacheConfig{Directory: store.dir})
	require.NoError(t, err)

	entries := reloaded.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "NVDA_2025-08-15", entries[0].CacheKey)
	assert.Equal(t, "MSFT_2025-08-14", entries[1].CacheKey)
	assert.Equal(t, "AAPL_2025-08-13", entries[2].CacheKey)
}

func TestCorruptedIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFile), []byte("{not json"), 0o644))

	store, err := NewStore(config.CacheConfig{Directory: dir})
	require.NoError(t, err)
	assert.Empty(t, store.List())

	// The store still works after discarding the bad index.
	require.NoError(t, store.Save(completedState("AAPL", "2025-08-15", "bullish", 0.8)))
	assert.Len(t, store.List(), 1)
}

func TestEntryReturnsIndexMetadata(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Entry("AAPL", "2025-08-15")
	assert.False(t, ok)

	require.NoError(t, store.Save(completedState("AAPL", "2025-08-15", "bullish", 0.8)))

	entry, ok := store.Entry("aapl", "2025-08-15")
	require.True(t, ok)
	assert.Equal(t, "AAPL_2025-08-15", entry.CacheKey)
	assert.Equal(t, "AAPL", entry.Ticker)
	assert.Equal(t, "bullish", entry.Decision)
	assert.Equal(t, 0.8, entry.Confidence)
	assert.NotEmpty(t, entry.CachedAt)
}

func TestStatsCountsFootprint(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(completedState("AAPL", "2025-08-15", "bullish", 0.8)))

	stats := store.Stats()
	assert.Equal(t, 1, stats.TotalAnalyses)
	assert.Greater(t, stats.CacheSizeBytes, int64(0))
	assert.GreaterOrEqual(t, stats.CacheSizeMB, 0.0)
	assert.True(t, filepath.IsAbs(stats.CacheDirectory))
}
