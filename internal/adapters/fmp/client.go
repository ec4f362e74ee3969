package fmp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"delphi/internal/adapters/config"
	"delphi/internal/metrics"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

const (
	apiV3Path = "/api/v3"
	apiV4Path = "/api/v4"

	defaultHTTPTimeout = 30 * time.Second
)

// Client talks to the Financial Modeling Prep REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates an FMP client from market data configuration.
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
		baseURL:    cfg.FMPBaseURL,
		apiKey:     cfg.FMPAPIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(perMin)/60.0), 5),
		log:        log,
	}
}

// HistoricalPrices returns up to days daily candles for the ticker, oldest
// first so indicator windows can be applied directly.
func (c *Client) HistoricalPrices(ctx context.Context, ticker string, days int) ([]Candle, error) {
	if days <= 0 {
		days = 30
	}

	data, err := c.get(ctx, "historical-price", apiV4Path+"/historical-price/"+url.PathEscape(ticker), url.Values{})
	if err != nil {
		return nil, err
	}

	var candles []Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, errors.Wrapf(err, "unmarshal historical prices for %s", ticker)
	}
	if len(candles) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "no historical data for %s", ticker)
	}

	// ISO dates sort lexicographically
	sort.Slice(candles, func(i, j int) bool { return candles[i].Date < candles[j].Date })
	if len(candles) > days {
		candles = candles[len(candles)-days:]
	}

	return candles, nil
}

// Quote returns the latest quote snapshot for the ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (*Quote, error) {
	data, err := c.get(ctx, "quote", apiV3Path+"/quote/"+url.PathEscape(ticker), url.Values{})
	if err != nil {
		return nil, err
	}

	var quotes []Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, errors.Wrapf(err, "unmarshal quote for %s", ticker)
	}
	if len(quotes) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "no quote for %s", ticker)
	}

	return &quotes[0], nil
}

// Profile returns the company profile for the ticker.
func (c *Client) Profile(ctx context.Context, ticker string) (*CompanyProfile, error) {
	data, err := c.get(ctx, "profile", apiV3Path+"/profile/"+url.PathEscape(ticker), url.Values{})
	if err != nil {
		return nil, err
	}

	var profiles []CompanyProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, errors.Wrapf(err, "unmarshal profile for %s", ticker)
	}
	if len(profiles) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "no profile for %s", ticker)
	}

	return &profiles[0], nil
}

// RatiosTTM returns trailing-twelve-month ratios for the ticker.
func (c *Client) RatiosTTM(ctx context.Context, ticker string) (*RatiosTTM, error) {
	data, err := c.get(ctx, "ratios-ttm", apiV3Path+"/ratios-ttm/"+url.PathEscape(ticker), url.Values{})
	if err != nil {
		return nil, err
	}

	var ratios []RatiosTTM
	if err := json.Unmarshal(data, &ratios); err != nil {
		return nil, errors.Wrapf(err, "unmarshal ratios for %s", ticker)
	}
	if len(ratios) == 0 {
		return nil, errors.Wrapf(errors.ErrNoData, "no TTM ratios for %s", ticker)
	}

	return &ratios[0], nil
}

// BalanceSheets returns the most recent balance sheet statements,
// newest first.
func (c *Client) BalanceSheets(ctx context.Context, ticker string, period Period, limit int) ([]BalanceSheet, error) {
	data, err := c.get(ctx, "balance-sheet", apiV3Path+"/balance-sheet-statement/"+url.PathEscape(ticker), statementParams(period, limit))
	if err != nil {
		return nil, err
	}

	var sheets []BalanceSheet
	if err := json.Unmarshal(data, &sheets); err != nil {
		return nil, errors.Wrapf(err, "unmarshal balance sheets for %s", ticker)
	}

	return sheets, nil
}

// IncomeStatements returns the most recent income statements, newest first.
func (c *Client) IncomeStatements(ctx context.Context, ticker string, period Period, limit int) ([]IncomeStatement, error) {
	data, err := c.get(ctx, "income-statement", apiV3Path+"/income-statement/"+url.PathEscape(ticker), statementParams(period, limit))
	if err != nil {
		return nil, err
	}

	var statements []IncomeStatement
	if err := json.Unmarshal(data, &statements); err != nil {
		return nil, errors.Wrapf(err, "unmarshal income statements for %s", ticker)
	}

	return statements, nil
}

// CashFlowStatements returns the most recent cash flow statements,
// newest first.
func (c *Client) CashFlowStatements(ctx context.Context, ticker string, period Period, limit int) ([]CashFlowStatement, error) {
	data, err := c.get(ctx, "cash-flow", apiV3Path+"/cash-flow-statement/"+url.PathEscape(ticker), statementParams(period, limit))
	if err != nil {
		return nil, err
	}

	var statements []CashFlowStatement
	if err := json.Unmarshal(data, &statements); err != nil {
		return nil, errors.Wrapf(err, "unmarshal cash flow statements for %s", ticker)
	}

	return statements, nil
}

// EarningsSurprises returns up to limit reported quarters with estimates,
// newest first.
func (c *Client) EarningsSurprises(ctx context.Context, ticker string, limit int) ([]EarningsSurprise, error) {
	data, err := c.get(ctx, "earnings-surprises", apiV3Path+"/earnings-surprises/"+url.PathEscape(ticker), url.Values{})
	if err != nil {
		return nil, err
	}

	var surprises []EarningsSurprise
	if err := json.Unmarshal(data, &surprises); err != nil {
		return nil, errors.Wrapf(err, "unmarshal earnings surprises for %s", ticker)
	}
	if limit > 0 && len(surprises) > limit {
		surprises = surprises[:limit]
	}

	return surprises, nil
}

func statementParams(period Period, limit int) url.Values {
	if period == "" {
		period = PeriodQuarter
	}
	if limit <= 0 {
		limit = 4
	}
	return url.Values{
		"period": []string{string(period)},
		"limit":  []string{strconv.Itoa(limit)},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "FMP API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "fmp %s: %v", endpoint, err)
	}

	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create FMP request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		apiErr := errors.Wrapf(errors.ErrExternalAPI, "fmp %s: %v", endpoint, err)
		metrics.RecordDataAPICall("fmp", endpoint, latency, apiErr)
		return nil, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		readErr := errors.Wrapf(err, "read FMP %s response", endpoint)
		metrics.RecordDataAPICall("fmp", endpoint, latency, readErr)
		return nil, readErr
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr error
		if msg := apiErrorMessage(payload); msg != "" {
			apiErr = errors.Wrapf(errors.ErrExternalAPI, "fmp %s (%d): %s", endpoint, resp.StatusCode, msg)
		} else {
			apiErr = errors.Wrapf(errors.ErrExternalAPI, "fmp %s (%d): %s", endpoint, resp.StatusCode, string(payload))
		}
		metrics.RecordDataAPICall("fmp", endpoint, latency, apiErr)
		return nil, apiErr
	}

	// FMP reports some failures as 200 with an error body
	if msg := apiErrorMessage(payload); msg != "" {
		apiErr := errors.Wrapf(errors.ErrExternalAPI, "fmp %s: %s", endpoint, msg)
		metrics.RecordDataAPICall("fmp", endpoint, latency, apiErr)
		return nil, apiErr
	}

	metrics.RecordDataAPICall("fmp", endpoint, latency, nil)
	c.log.Debugw("fmp request completed", "endpoint", endpoint, "latency", latency)

	return payload, nil
}

func apiErrorMessage(payload []byte) string {
	var apiErr struct {
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		return apiErr.ErrorMessage
	}
	return ""
}
