package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerServiceInfoAndNotFound(t *testing.T) {
	ts := newTestServer(t, scriptedSteps(), newTestStore(t))

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "delphi", info["service"])
	assert.Equal(t, "test", info["version"])
	assert.Equal(t, "running", info["status"])

	missing, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServerRegistersCacheAliases(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(completedState("NVDA", "2025-11-01", "bullish", 0.72)))
	ts := newTestServer(t, scriptedSteps(), store)

	for _, path := range []string{"/api/cache/check", "/cache/check"} {
		resp, err := http.Get(ts.URL + path + "?ticker=NVDA&date=2025-11-01")
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, true, body["has_cache"], path)
	}
}

func TestServerProbesAndMetrics(t *testing.T) {
	ts := newTestServer(t, scriptedSteps(), newTestStore(t))

	live, err := http.Get(ts.URL + "/live")
	require.NoError(t, err)
	live.Body.Close()
	assert.Equal(t, http.StatusOK, live.StatusCode)

	// The fixture registers no chat providers, so readiness reports 503
	ready, err := http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, ready.StatusCode)

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}
