// internal/pricing/client.go
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	"github.com/rovshanmuradov/dex2k/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	quotesPath     = "/cryptocurrency/quotes/latest"
	historicalPath = "/cryptocurrency/ohlcv/historical"
	apiKeyHeader   = "X-CMC_PRO_API_KEY"
)

// Oracle returns the current USD price of a token.
type Oracle interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// MarketQuote is the USD quote of a token with 24h stats.
type MarketQuote struct {
	Symbol           string
	Price            float64
	Volume24h        float64
	MarketCap        float64
	PercentChange24h float64
	UpdatedAt        time.Time
}

// Candle is one OHLCV bucket.
type Candle struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Options configures the client.
type Options struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	Retries      int     // extra attempts after the first, 0 disables retry
	RateLimitRPS float64 // 0 disables client-side limiting
	Metrics      *Metrics
}

// OptionsFromConfig maps the application config onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:      cfg.PriceAPIURL,
		APIKey:       cfg.APIKey,
		Timeout:      time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		Retries:      cfg.Retries,
		RateLimitRPS: cfg.RateLimitRPS,
	}
}

// Client talks to the CoinMarketCap quotes API. It never caches: every call
// is a fresh round trip.
type Client struct {
	http    *resty.Client
	opts    Options
	limiter *rate.Limiter
	metrics *Metrics
	logger  *zap.Logger
}

// NewClient creates a price client.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultPriceAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader(apiKeyHeader, opts.APIKey)

	c := &Client{
		http:    httpClient,
		opts:    opts,
		metrics: opts.Metrics,
		logger:  logger.Named("pricing"),
	}
	if opts.RateLimitRPS > 0 {
		burst := int(opts.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	return c
}

type apiStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type usdQuote struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	MarketCap        float64 `json:"market_cap"`
	PercentChange24h float64 `json:"percent_change_24h"`
	LastUpdated      string  `json:"last_updated"`
}

type quotesResponse struct {
	Status apiStatus `json:"status"`
	Data   map[string]struct {
		Symbol string              `json:"symbol"`
		Quote  map[string]usdQuote `json:"quote"`
	} `json:"data"`
}

type historicalResponse struct {
	Status apiStatus `json:"status"`
	Data   struct {
		Quotes []struct {
			Quote map[string]struct {
				Open      float64 `json:"open"`
				High      float64 `json:"high"`
				Low       float64 `json:"low"`
				Close     float64 `json:"close"`
				Volume    float64 `json:"volume"`
				Timestamp string  `json:"timestamp"`
			} `json:"quote"`
		} `json:"quotes"`
	} `json:"data"`
}

// GetPrice implements Oracle.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	q, err := c.GetQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return q.Price, nil
}

// GetQuote fetches the latest USD quote for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (MarketQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var out MarketQuote
	err := c.withRetry(ctx, symbol, func() error {
		q, err := c.fetchQuote(ctx, symbol)
		if err != nil {
			return err
		}
		out = q
		return nil
	})
	return out, err
}

// GetHistorical fetches OHLCV candles for symbol at the given interval
// ("1h", "daily", ...).
func (c *Client) GetHistorical(ctx context.Context, symbol, interval string) ([]Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if interval == "" {
		interval = "1h"
	}

	var candles []Candle
	err := c.withRetry(ctx, symbol, func() error {
		var body historicalResponse
		if err := c.get(ctx, symbol, historicalPath, map[string]string{
			"symbol":   symbol,
			"interval": interval,
		}, &body.Status, &body); err != nil {
			return err
		}

		candles = candles[:0]
		for _, q := range body.Data.Quotes {
			usd, ok := q.Quote["USD"]
			if !ok {
				continue
			}
			ts, _ := time.Parse(time.RFC3339, usd.Timestamp)
			candles = append(candles, Candle{
				Open:      usd.Open,
				High:      usd.High,
				Low:       usd.Low,
				Close:     usd.Close,
				Volume:    usd.Volume,
				Timestamp: ts,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candles, nil
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (MarketQuote, error) {
	var body quotesResponse
	if err := c.get(ctx, symbol, quotesPath, map[string]string{"symbol": symbol}, &body.Status, &body); err != nil {
		return MarketQuote{}, err
	}

	entry, ok := body.Data[symbol]
	if !ok {
		return MarketQuote{}, &PriceFetchError{Symbol: symbol, Message: "symbol missing from response"}
	}
	usd, ok := entry.Quote["USD"]
	if !ok {
		return MarketQuote{}, &PriceFetchError{Symbol: symbol, Message: "USD quote missing from response"}
	}
	if usd.Price <= 0 {
		return MarketQuote{}, &PriceFetchError{Symbol: symbol, Message: fmt.Sprintf("non-positive price %v", usd.Price)}
	}

	updated, _ := time.Parse(time.RFC3339, usd.LastUpdated)
	return MarketQuote{
		Symbol:           symbol,
		Price:            usd.Price,
		Volume24h:        usd.Volume24h,
		MarketCap:        usd.MarketCap,
		PercentChange24h: usd.PercentChange24h,
		UpdatedAt:        updated,
	}, nil
}

// get performs one request and decodes the body into out. status points
// into out so the API error code can be checked after decoding.
func (c *Client) get(ctx context.Context, symbol, path string, query map[string]string, status *apiStatus, out interface{}) (err error) {
	start := time.Now()
	defer func() { c.metrics.observe(start, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &PriceFetchError{Symbol: symbol, Message: "rate limiter", Err: err}
		}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return &PriceFetchError{Symbol: symbol, Message: "request failed", Err: err}
	}

	decodeErr := json.Unmarshal(resp.Body(), out)

	if resp.IsError() {
		msg := resp.Status()
		if decodeErr == nil && status.ErrorMessage != "" {
			msg = status.ErrorMessage
		}
		return &PriceFetchError{Symbol: symbol, StatusCode: resp.StatusCode(), APICode: status.ErrorCode, Message: msg}
	}
	if decodeErr != nil {
		return &PriceFetchError{Symbol: symbol, StatusCode: resp.StatusCode(), Message: "malformed response", Err: decodeErr}
	}
	if status.ErrorCode != 0 {
		msg := status.ErrorMessage
		if msg == "" {
			msg = "failed to fetch price"
		}
		return &PriceFetchError{Symbol: symbol, StatusCode: resp.StatusCode(), APICode: status.ErrorCode, Message: msg}
	}
	return nil
}

// withRetry runs op once, or with bounded exponential backoff when retries
// are configured. Client errors other than 429 are not retried.
func (c *Client) withRetry(ctx context.Context, symbol string, op func() error) error {
	if c.opts.Retries <= 0 {
		err := op()
		if err != nil {
			c.logger.Debug("Price fetch failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	notify := func(err error, d time.Duration) {
		c.logger.Info("Retrying price fetch",
			zap.String("symbol", symbol),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	operation := func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		var pfe *PriceFetchError
		if errors.As(err, &pfe) && !pfe.retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.Retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		c.logger.Warn("Price fetch failed after retries", zap.String("symbol", symbol), zap.Error(err))
		// Retry hands back the *backoff.PermanentError wrapper, not its cause.
		var pfe *PriceFetchError
		if errors.As(err, &pfe) {
			return pfe
		}
		return &PriceFetchError{Symbol: symbol, Message: "retry aborted", Err: err}
	}
	return nil
}
