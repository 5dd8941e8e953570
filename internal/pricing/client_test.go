package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const solQuoteBody = `{
  "status": {"error_code": 0, "error_message": null},
  "data": {
    "SOL": {
      "symbol": "SOL",
      "quote": {
        "USD": {
          "price": 98.45,
          "volume_24h": 2400000000,
          "market_cap": 42000000000,
          "percent_change_24h": 2.3,
          "last_updated": "2024-05-01T12:00:00Z"
        }
      }
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	if opts.APIKey == "" {
		opts.APIKey = "test-key"
	}
	return NewClient(opts, zap.NewNop())
}

func TestClientGetPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, quotesPath, r.URL.Path)
		assert.Equal(t, "SOL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.Header.Get(apiKeyHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(solQuoteBody))
	}, Options{})

	price, err := client.GetPrice(context.Background(), "sol")
	require.NoError(t, err)
	assert.Equal(t, 98.45, price)
}

func TestClientGetQuoteStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(solQuoteBody))
	}, Options{})

	q, err := client.GetQuote(context.Background(), "SOL")
	require.NoError(t, err)
	assert.Equal(t, 2.3, q.PercentChange24h)
	assert.Equal(t, 2.4e9, q.Volume24h)
	assert.Equal(t, 4.2e10, q.MarketCap)
	assert.Equal(t, 2024, q.UpdatedAt.Year())
}

func TestClientServerErrorIsPriceFetchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{})

	price, err := client.GetPrice(context.Background(), "SOL")
	require.Error(t, err)
	assert.Zero(t, price)
	assert.True(t, errors.Is(err, ErrPriceFetch))

	var pfe *PriceFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, http.StatusInternalServerError, pfe.StatusCode)
	assert.Equal(t, "SOL", pfe.Symbol)
}

func TestClientAPIErrorCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"error_code":1002,"error_message":"API key missing."}}`))
	}, Options{})

	_, err := client.GetPrice(context.Background(), "SOL")
	var pfe *PriceFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, 1002, pfe.APICode)
	assert.Equal(t, "API key missing.", pfe.Message)
}

func TestClientMissingSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"error_code":0},"data":{}}`))
	}, Options{})

	_, err := client.GetPrice(context.Background(), "XYZ")
	assert.ErrorIs(t, err, ErrPriceFetch)
}

func TestClientMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, Options{})

	_, err := client.GetPrice(context.Background(), "SOL")
	assert.ErrorIs(t, err, ErrPriceFetch)
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(Options{BaseURL: url, Timeout: time.Second}, zap.NewNop())
	_, err := client.GetPrice(context.Background(), "SOL")
	var pfe *PriceFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Zero(t, pfe.StatusCode)
}

func TestClientNoRetryByDefault(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, Options{})

	_, err := client.GetPrice(context.Background(), "SOL")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(solQuoteBody))
	}, Options{Retries: 3})

	price, err := client.GetPrice(context.Background(), "SOL")
	require.NoError(t, err)
	assert.Equal(t, 98.45, price)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":{"error_code":1001,"error_message":"This API Key is invalid."}}`))
	}, Options{Retries: 3})

	_, err := client.GetPrice(context.Background(), "SOL")
	var pfe *PriceFetchError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, http.StatusUnauthorized, pfe.StatusCode)
	assert.Equal(t, "This API Key is invalid.", pfe.Message)
	assert.Equal(t, 1001, pfe.APICode)
	assert.Nil(t, pfe.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientGetHistorical(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, historicalPath, r.URL.Path)
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"status":{"error_code":0},"data":{"quotes":[
			{"quote":{"USD":{"open":97,"high":99,"low":96,"close":98.45,"volume":10,"timestamp":"2024-05-01T12:00:00Z"}}},
			{"quote":{"EUR":{"open":1}}}
		]}}`))
	}, Options{})

	candles, err := client.GetHistorical(context.Background(), "SOL", "")
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 98.45, candles[0].Close)
	assert.Equal(t, 99.0, candles[0].High)
}

func TestClientMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	var fail int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&fail) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(solQuoteBody))
	}, Options{Metrics: metrics})

	_, err = client.GetPrice(context.Background(), "SOL")
	require.NoError(t, err)
	atomic.StoreInt32(&fail, 1)
	_, _ = client.GetPrice(context.Background(), "SOL")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeError)))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestFetchManyPartial(t *testing.T) {
	oracle := NewStatic(map[string]float64{"SOL": 98.45, "USDC": 1})

	res, err := FetchMany(context.Background(), oracle, []string{"SOL", "usdc", "NOPE"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 98.45, res.Prices["SOL"])
	assert.Equal(t, 1.0, res.Prices["USDC"])
	assert.ErrorIs(t, res.Errors["NOPE"], ErrPriceFetch)
}

func TestFetchManyAllFailed(t *testing.T) {
	oracle := NewStatic(nil)

	res, err := FetchMany(context.Background(), oracle, []string{"A", "B"}, 0)
	assert.ErrorIs(t, err, ErrAllFailed)
	assert.Len(t, res.Errors, 2)

	res, err = FetchMany(context.Background(), oracle, nil, 0)
	assert.NoError(t, err)
	assert.Empty(t, res.Prices)
}

func TestStaticOracle(t *testing.T) {
	oracle := NewStatic(map[string]float64{"sol": 1})
	oracle.Set("SOL", 2)

	p, err := oracle.GetPrice(context.Background(), " sol ")
	require.NoError(t, err)
	assert.Equal(t, 2.0, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = oracle.GetPrice(ctx, "SOL")
	assert.ErrorIs(t, err, ErrPriceFetch)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPriceFetchErrorMessage(t *testing.T) {
	err := &PriceFetchError{Symbol: "SOL", StatusCode: 500, Message: "boom"}
	assert.Equal(t, "price fetch SOL: status 500: boom", err.Error())

	err = &PriceFetchError{Symbol: "SOL", Err: fmt.Errorf("dial tcp")}
	assert.Equal(t, "price fetch SOL: dial tcp", err.Error())
}
