package alphavantage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"delphi/internal/adapters/config"
	"delphi/internal/metrics"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

const (
	// Alpha Vantage timestamp layout, e.g. 20250822T153000
	timestampLayout = "20060102T150405"

	// Default topics for macro coverage
	macroTopics = "economy,financial_markets,earnings"

	maxArticleLimit = 50

	defaultHTTPTimeout = 30 * time.Second
)

// Article is one NEWS_SENTIMENT feed item.
type Article struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	TimePublished         string            `json:"time_published"`
	Source                string            `json:"source"`
	Summary               string            `json:"summary"`
	OverallSentimentLabel string            `json:"overall_sentiment_label"`
	OverallSentimentScore float64           `json:"overall_sentiment_score"`
	Topics                []Topic           `json:"topics"`
	TickerSentiment       []TickerSentiment `json:"ticker_sentiment"`
}

// Topic tags an article with a coverage area. Relevance comes back as a
// stringified float.
type Topic struct {
	Topic          string `json:"topic"`
	RelevanceScore string `json:"relevance_score"`
}

// TickerSentiment is per-ticker sentiment attached to an article.
type TickerSentiment struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
	SentimentLabel string `json:"ticker_sentiment_label"`
}

// PublishedAtISO converts the feed timestamp to ISO 8601, returning the
// raw value when it does not parse.
func (a Article) PublishedAtISO() string {
	if a.TimePublished == "" {
		return ""
	}
	ts, err := time.Parse(timestampLayout, a.TimePublished)
	if err != nil {
		return a.TimePublished
	}
	return ts.Format("2006-01-02T15:04:05")
}

// RelevanceFor returns the article's relevance score for the ticker,
// zero when the ticker is not tagged.
func (a Article) RelevanceFor(ticker string) float64 {
	for _, ts := range a.TickerSentiment {
		if strings.EqualFold(ts.Ticker, ticker) {
			score, err := strconv.ParseFloat(ts.RelevanceScore, 64)
			if err != nil {
				return 0
			}
			return score
		}
	}
	return 0
}

// Client talks to the Alpha Vantage NEWS_SENTIMENT API.
type Client struct {
	queryURL   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates an Alpha Vantage client from market data configuration.
func NewClient(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	perMin := cfg.RequestsPerMin
	if perMin <= 0 {
		perMin = 30
	}

	return &Client{
		queryURL:   cfg.AlphaVantageURL,
		apiKey:     cfg.AlphaVantageAPIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(perMin)/60.0), 5),
		log:        log,
	}
}

// CompanyNews returns articles tagged with the ticker inside the window,
// newest first.
func (c *Client) CompanyNews(ctx context.Context, ticker string, from, to time.Time, limit int) ([]Article, error) {
	if ticker == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ticker is required for company news")
	}
	return c.fetchNews(ctx, strings.ToUpper(ticker), "", from, to, limit)
}

// MacroNews returns economy and market-wide articles inside the window,
// newest first.
func (c *Client) MacroNews(ctx context.Context, from, to time.Time, limit int) ([]Article, error) {
	return c.fetchNews(ctx, "", macroTopics, from, to, limit)
}

func (c *Client) fetchNews(ctx context.Context, tickers, topics string, from, to time.Time, limit int) ([]Article, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "Alpha Vantage API key not configured")
	}

	if limit < 1 {
		limit = 1
	}
	if limit > maxArticleLimit {
		limit = maxArticleLimit
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "alphavantage news: %v", err)
	}

	params := url.Values{
		"function":  []string{"NEWS_SENTIMENT"},
		"apikey":    []string{c.apiKey},
		"time_from": []string{from.UTC().Format(timestampLayout)},
		"time_to":   []string{to.UTC().Format(timestampLayout)},
		"sort":      []string{"LATEST"},
		"limit":     []string{strconv.Itoa(limit)},
	}
	if tickers != "" {
		params.Set("tickers", tickers)
	}
	if topics != "" {
		params.Set("topics", topics)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create Alpha Vantage request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		apiErr := errors.Wrapf(errors.ErrExternalAPI, "alphavantage news: %v", err)
		metrics.RecordDataAPICall("alphavantage", "news-sentiment", latency, apiErr)
		return nil, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		readErr := errors.Wrap(err, "read Alpha Vantage response")
		metrics.RecordDataAPICall("alphavantage", "news-sentiment", latency, readErr)
		return nil, readErr
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := errors.Wrapf(errors.ErrExternalAPI, "alphavantage news (%d): %s", resp.StatusCode, string(payload))
		metrics.RecordDataAPICall("alphavantage", "news-sentiment", latency, apiErr)
		return nil, apiErr
	}

	var body struct {
		Feed         []Article `json:"feed"`
		Note         string    `json:"Note"`
		Information  string    `json:"Information"`
		ErrorMessage string    `json:"Error Message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		parseErr := errors.Wrap(err, "unmarshal Alpha Vantage response")
		metrics.RecordDataAPICall("alphavantage", "news-sentiment", latency, parseErr)
		return nil, parseErr
	}

	// The API reports throttling and auth failures inside a 200 body
	var bodyErr error
	switch {
	case body.Note != "":
		bodyErr = errors.Wrapf(errors.ErrRateLimitExceeded, "alphavantage news: %s", body.Note)
	case body.Information != "":
		bodyErr = errors.Wrapf(errors.ErrRateLimitExceeded, "alphavantage news: %s", body.Information)
	case body.ErrorMessage != "":
		bodyErr = errors.Wrapf(errors.ErrExternalAPI, "alphavantage news: %s", body.ErrorMessage)
	}
	if bodyErr != nil {
		metrics.RecordDataAPICall("alphavantage", "news-sentiment", latency, bodyErr)
		return nil, bodyErr
	}

	metrics.RecordDataAPICall("alphavantage", "news-sentiment", latency, nil)

	articles := make([]Article, 0, len(body.Feed))
	for _, item := range body.Feed {
		if item.Title == "" || item.URL == "" {
			continue
		}
		articles = append(articles, item)
		if len(articles) == limit {
			break
		}
	}

	c.log.Debugw("alphavantage news fetched",
		"tickers", tickers,
		"topics", topics,
		"articles", len(articles),
	)

	return articles, nil
}
