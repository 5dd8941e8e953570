// internal/ui/screen/deps.go
package screen

import (
	"context"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/appstate"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/logger"
	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/swap"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"go.uber.org/zap"
)

// HistorySource serves candles for the trading chart. Optional.
type HistorySource interface {
	GetHistorical(ctx context.Context, symbol, interval string) ([]pricing.Candle, error)
}

// Deps is everything the screens share. Built once in main.
type Deps struct {
	Ctx      context.Context
	Catalog  *token.Catalog
	Oracle   pricing.Oracle
	History  HistorySource
	Recorder *swap.Recorder
	State    *appstate.State
	Hooks    token.HookPolicy
	Bus      events.Publisher
	Logs     *logger.LogBuffer
	Logger   *zap.Logger

	Slippage     float64
	NetworkFee   string
	PriceTimeout time.Duration
	ExportDir    string
	// OracleLabel is shown in headers, e.g. "CoinMarketCap" or "offline".
	OracleLabel string
}

func (d *Deps) ctx() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

func (d *Deps) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Deps) publish(e events.Event) {
	if d.Bus == nil {
		return
	}
	if err := d.Bus.Publish(e); err != nil {
		d.log().Debug("Event dropped", zap.String("type", string(e.Type())), zap.Error(err))
	}
}
