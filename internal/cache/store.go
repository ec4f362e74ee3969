package cache

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"delphi/internal/adapters/config"
	"delphi/internal/agents"
	"delphi/internal/metrics"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

const indexFile = "index.json"

// indexEntry is one row of index.json, keyed by the cache key.
type indexEntry struct {
	Ticker     string  `json:"ticker"`
	Date       string  `json:"date"`
	CachedAt   string  `json:"cached_at"`
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	File       string  `json:"file"`
}

// Summary describes one cached analysis in listings.
type Summary struct {
	CacheKey   string  `json:"cache_key"`
	Ticker     string  `json:"ticker"`
	Date       string  `json:"date"`
	CachedAt   string  `json:"cached_at"`
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
}

// Stats reports the cache footprint.
type Stats struct {
	TotalAnalyses  int     `json:"total_analyses"`
	CacheSizeBytes int64   `json:"cache_size_bytes"`
	CacheSizeMB    float64 `json:"cache_size_mb"`
	CacheDirectory string  `json:"cache_directory"`
}

// Store persists completed runs as one JSON file per (ticker, date) key in a
// flat directory, with index.json carrying the listing metadata. Concurrent
// writes to the same key are last write wins; the mutex only guards the
// in-memory index and the index file.
type Store struct {
	dir string
	log *logger.Logger

	mu    sync.Mutex
	index map[string]indexEntry
}

// NewStore opens or creates the cache directory and loads the index. A
// missing or corrupted index starts empty instead of failing the store.
func NewStore(cfg config.CacheConfig) (*Store, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "analysis_cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache directory %s", dir)
	}

	s := &Store{
		dir:   dir,
		log:   logger.Get().With("component", "cache"),
		index: make(map[string]indexEntry),
	}
	s.loadIndex()
	return s, nil
}

func (s *Store) loadIndex() {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnw("cache index unreadable, starting empty", "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &s.index); err != nil {
		s.log.Warnw("cache index corrupted, starting empty", "error", err)
		s.index = make(map[string]indexEntry)
	}
}

// cacheKey canonicalizes a (ticker, date) pair into the {TICKER}_{DATE}
// key used for file names and index rows.
func cacheKey(ticker, date string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	date = strings.TrimSpace(date)
	if ticker == "" || date == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "ticker and date are required")
	}
	key := ticker + "_" + date
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", errors.Wrap(errors.ErrInvalidInput, "ticker and date must not contain path elements")
	}
	return key, nil
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Check reports whether a completed analysis exists for the pair.
func (s *Store) Check(ticker, date string) bool {
	key, err := cacheKey(ticker, date)
	if err != nil {
		return false
	}
	_, err = os.Stat(s.pathFor(key))
	return err == nil
}

// Entry returns the index metadata for the pair without reading the payload.
func (s *Store) Entry(ticker, date string) (Summary, bool) {
	key, err := cacheKey(ticker, date)
	if err != nil {
		return Summary{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.index[key]
	if !ok {
		return Summary{}, false
	}
	return Summary{
		CacheKey:   key,
		Ticker:     entry.Ticker,
		Date:       entry.Date,
		CachedAt:   entry.CachedAt,
		Decision:   entry.Decision,
		Confidence: entry.Confidence,
	}, true
}

// Load reads the cached run state for the pair and rebuilds the result
// envelope, tagged as a cache hit with its cached_at timestamp.
func (s *Store) Load(ticker, date string) (*agents.Result, error) {
	key, err := cacheKey(ticker, date)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		metrics.RecordCacheLookup(false)
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "no cached analysis for %s", key)
		}
		return nil, errors.Wrapf(err, "read cache entry %s", key)
	}

	var st agents.AnalysisState
	if err := json.Unmarshal(data, &st); err != nil {
		metrics.RecordCacheLookup(false)
		return nil, errors.Wrapf(err, "decode cache entry %s", key)
	}
	metrics.RecordCacheLookup(true)

	result := st.Result()
	result.FromCache = true
	result.CachedAt = "unknown"
	s.mu.Lock()
	if entry, ok := s.index[key]; ok {
		result.CachedAt = entry.CachedAt
	}
	s.mu.Unlock()

	s.log.Debugw("cache hit", "key", key, "cached_at", result.CachedAt)
	return result, nil
}

// Save writes the run state under its key, overwriting any previous entry,
// and refreshes the index row. Repeated saves of one key keep one entry.
func (s *Store) Save(st agents.AnalysisState) error {
	key, err := cacheKey(st.Ticker, st.Date)
	if err != nil {
		metrics.RecordCacheOperation("save", err)
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		metrics.RecordCacheOperation("save", err)
		return errors.Wrapf(err, "encode cache entry %s", key)
	}
	if err := os.WriteFile(s.pathFor(key), data, 0o644); err != nil {
		metrics.RecordCacheOperation("save", err)
		return errors.Wrapf(err, "write cache entry %s", key)
	}

	s.mu.Lock()
	s.index[key] = indexEntry{
		Ticker:     strings.ToUpper(strings.TrimSpace(st.Ticker)),
		Date:       st.Date,
		CachedAt:   time.Now().UTC().Format(time.RFC3339),
		Decision:   st.Decision,
		Confidence: st.Confidence,
		File:       key + ".json",
	}
	err = s.writeIndexLocked()
	s.mu.Unlock()

	metrics.RecordCacheOperation("save", err)
	if err == nil {
		s.log.Infow("analysis cached", "key", key, "decision", st.Decision)
	}
	return err
}

// List returns every cached analysis, most recently cached first.
func (s *Store) List() []Summary {
	s.mu.Lock()
	out := make([]Summary, 0, len(s.index))
	for key, entry := range s.index {
		out = append(out, Summary{
			CacheKey:   key,
			Ticker:     entry.Ticker,
			Date:       entry.Date,
			CachedAt:   entry.CachedAt,
			Decision:   entry.Decision,
			Confidence: entry.Confidence,
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CachedAt != out[j].CachedAt {
			return out[i].CachedAt > out[j].CachedAt
		}
		return out[i].CacheKey < out[j].CacheKey
	})
	return out
}

// Delete removes one cached analysis. Deleting an absent key is a no-op
// reported as (false, nil).
func (s *Store) Delete(ticker, date string) (bool, error) {
	key, err := cacheKey(ticker, date)
	if err != nil {
		metrics.RecordCacheOperation("delete", err)
		return false, err
	}

	removed := false
	if err := os.Remove(s.pathFor(key)); err == nil {
		removed = true
	} else if !os.IsNotExist(err) {
		metrics.RecordCacheOperation("delete", err)
		return false, errors.Wrapf(err, "delete cache entry %s", key)
	}

	var indexErr error
	s.mu.Lock()
	if _, ok := s.index[key]; ok {
		delete(s.index, key)
		removed = true
		indexErr = s.writeIndexLocked()
	}
	s.mu.Unlock()

	metrics.RecordCacheOperation("delete", indexErr)
	if removed && indexErr == nil {
		s.log.Infow("cache entry deleted", "key", key)
	}
	return removed, indexErr
}

// Clear removes every cached analysis and resets the index.
func (s *Store) Clear() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		metrics.RecordCacheOperation("clear", err)
		return errors.Wrap(err, "scan cache directory")
	}

	var merr errors.MultiError
	removed := 0
	for _, path := range paths {
		if filepath.Base(path) == indexFile {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			merr.Add(errors.Wrapf(err, "delete %s", filepath.Base(path)))
			continue
		}
		removed++
	}

	s.mu.Lock()
	s.index = make(map[string]indexEntry)
	if err := s.writeIndexLocked(); err != nil {
		merr.Add(err)
	}
	s.mu.Unlock()

	err = merr.ToError()
	metrics.RecordCacheOperation("clear", err)
	if err == nil {
		s.log.Infow("cache cleared", "removed", removed)
	}
	return err
}

// Ping verifies the cache directory is still reachable. Used by the
// readiness probe.
func (s *Store) Ping() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return errors.Wrapf(err, "cache directory %s inaccessible", s.dir)
	}
	if !info.IsDir() {
		return errors.Newf("cache path %s is not a directory", s.dir)
	}
	return nil
}

// Stats totals the cache footprint, index file included.
func (s *Store) Stats() Stats {
	var size int64
	paths, _ := filepath.Glob(filepath.Join(s.dir, "*.json"))
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			size += info.Size()
		}
	}

	dir := s.dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	s.mu.Lock()
	total := len(s.index)
	s.mu.Unlock()

	return Stats{
		TotalAnalyses:  total,
		CacheSizeBytes: size,
		CacheSizeMB:    math.Round(float64(size)/(1024*1024)*100) / 100,
		CacheDirectory: dir,
	}
}

func (s *Store) writeIndexLocked() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode cache index")
	}
	if err := os.WriteFile(filepath.Join(s.dir, indexFile), data, 0o644); err != nil {
		return errors.Wrap(err, "write cache index")
	}
	return nil
}
