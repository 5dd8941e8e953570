package main

import (
	"context"
	"errors"
	"testing"

	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunQuote(t *testing.T) {
	oracle := pricing.NewStatic(map[string]float64{"SOL": 98.45, "USDC": 1})

	res, err := runQuote(context.Background(), oracle, "sol", " usdc ", "2", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "SOL", res.From)
	assert.Equal(t, "USDC", res.To)
	assert.Equal(t, "196.900000", quote.Format(res.ToAmount))
	assert.InDelta(t, 196.9*0.995, res.MinReceived, 1e-9)
}

func TestRunQuoteErrors(t *testing.T) {
	oracle := pricing.NewStatic(map[string]float64{"SOL": 98.45})
	ctx := context.Background()

	_, err := runQuote(ctx, oracle, "SOL", "", "1", 0)
	assert.Error(t, err)

	_, err = runQuote(ctx, oracle, "SOL", "USDC", "abc", 0)
	assert.True(t, errors.Is(err, quote.ErrInvalidAmount))

	_, err = runQuote(ctx, oracle, "SOL", "USDC", "1", 0)
	assert.True(t, errors.Is(err, pricing.ErrPriceFetch))
}

func TestPrintPricesReportsPartialFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	oracle := pricing.NewStatic(map[string]float64{"SOL": 98.45, "JUP": 0.67})

	err := printPrices(context.Background(), oracle, []string{"sol", "jup", "nope"}, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("Price updated").Len())
	failed := logs.FilterMessage("Price fetch failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "NOPE", failed[0].ContextMap()["symbol"])

	err = printPrices(context.Background(), oracle, []string{"nope"}, zap.New(core))
	assert.True(t, errors.Is(err, pricing.ErrAllFailed))
}

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"SOL", "JUP"}, splitSymbols(" sol, ,jup"))
	assert.Nil(t, splitSymbols(""))
}
