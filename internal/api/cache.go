package api

import (
	"net/http"

	"delphi/internal/cache"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// CacheHandler serves the cached-analysis REST endpoints used by the
// dashboard.
type CacheHandler struct {
	store *cache.Store
	log   *logger.Logger
}

// NewCacheHandler creates a cache REST handler backed by store.
func NewCacheHandler(store *cache.Store, log *logger.Logger) *CacheHandler {
	return &CacheHandler{
		store: store,
		log:   log,
	}
}

// HandleCheck reports whether a cached analysis exists for a ticker/date
// pair, with the index metadata when it does.
func (h *CacheHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	ticker, date, ok := tickerDateParams(w, r)
	if !ok {
		return
	}

	hasCache := h.store.Check(ticker, date)

	var cacheData map[string]interface{}
	if hasCache {
		entry, _ := h.store.Entry(ticker, date)
		cacheData = map[string]interface{}{
			"exists":     true,
			"ticker":     ticker,
			"date":       date,
			"cached_at":  entry.CachedAt,
			"decision":   entry.Decision,
			"confidence": entry.Confidence,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"has_cache":  hasCache,
		"cache_data": cacheData,
	})
}

// HandleLoad returns the full cached result envelope for a ticker/date pair.
func (h *CacheHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	ticker, date, ok := tickerDateParams(w, r)
	if !ok {
		return
	}

	result, err := h.store.Load(ticker, date)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			h.log.Warnw("Cache load failed", "ticker", ticker, "date", date, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":  "Cache not found",
			"ticker": ticker,
			"date":   date,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleList returns all cached analyses with aggregate cache stats.
func (h *CacheHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cached_analyses": h.store.List(),
		"stats":           h.store.Stats(),
	})
}

// HandleDelete removes a single cached analysis.
func (h *CacheHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	ticker, date, ok := tickerDateParams(w, r)
	if !ok {
		return
	}

	removed, err := h.store.Delete(ticker, date)
	if err != nil {
		h.log.Errorw("Cache delete failed", "ticker", ticker, "date", date, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": err == nil && removed,
		"ticker":  ticker,
		"date":    date,
	})
}

// HandleClear removes every cached analysis.
func (h *CacheHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}

	err := h.store.Clear()
	if err != nil {
		h.log.Errorw("Cache clear failed", "error", err)
	}

	message := "All cache cleared"
	if err != nil {
		message = "Failed to clear cache"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": err == nil,
		"message": message,
	})
}
