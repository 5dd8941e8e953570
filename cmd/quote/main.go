// ====================================
// File: cmd/quote/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rovshanmuradov/dex2k/internal/config"
	"github.com/rovshanmuradov/dex2k/internal/logger"
	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/quote"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"go.uber.org/zap"
)

const fetchConcurrency = 4

// QuoteResult is one computed conversion.
type QuoteResult struct {
	From        string
	To          string
	FromAmount  float64
	ToAmount    float64
	MinReceived float64
}

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	from := flag.String("from", "", "Source token symbol")
	to := flag.String("to", "", "Target token symbol")
	amount := flag.String("amount", "", "Amount of the source token")
	symbols := flag.String("symbols", "", "Comma separated symbols for the price table (default: trading list)")
	metricsAddr := flag.String("metrics", "", "Serve /metrics on this address and wait for a signal")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.CreatePrettyLogger(*debug)
	defer func() { _ = log.Sync() }()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Error("Failed to load config", zap.Error(err))
		os.Exit(1)
	}

	catalog, err := token.FromConfig(cfg)
	if err != nil {
		log.Error("Failed to build token catalog", zap.Error(err))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	metrics, err := pricing.NewMetrics(reg)
	if err != nil {
		log.Error("Failed to register metrics", zap.Error(err))
		os.Exit(1)
	}

	var oracle pricing.Oracle
	if cfg.APIKey != "" {
		opts := pricing.OptionsFromConfig(cfg)
		opts.Metrics = metrics
		oracle = pricing.NewClient(opts, log)
	} else {
		log.Warn("No api_key configured, using catalog prices")
		oracle = pricing.NewStatic(catalog.Prices())
	}

	if *from != "" || *to != "" || *amount != "" {
		res, err := runQuote(ctx, oracle, *from, *to, *amount, cfg.Slippage)
		if err != nil {
			log.Error("Quote failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("Quote",
			zap.String("from_amount", quote.Format(res.FromAmount)),
			zap.String("from", res.From),
			zap.String("to_amount", quote.Format(res.ToAmount)),
			zap.String("to", res.To))
		log.Debug("Min received", zap.Float64("amount", res.MinReceived), zap.Float64("slippage", cfg.Slippage))
	} else {
		list := splitSymbols(*symbols)
		if len(list) == 0 {
			list = catalog.Symbols(token.VariantTrading)
		}
		if err := printPrices(ctx, oracle, list, log); err != nil {
			log.Error("Failed to fetch token data", zap.Error(err))
			os.Exit(1)
		}
	}

	if *metricsAddr != "" {
		serveMetrics(ctx, *metricsAddr, reg, log)
	}
}

// runQuote prices both tokens and converts amount from one to the other.
func runQuote(ctx context.Context, oracle pricing.Oracle, from, to, amountText string, slippage float64) (QuoteResult, error) {
	from, to = token.NormalizeSymbol(from), token.NormalizeSymbol(to)
	if from == "" || to == "" {
		return QuoteResult{}, errors.New("both -from and -to are required")
	}
	amount, err := quote.ParseAmount(amountText)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("invalid -amount: %w", err)
	}

	batch, err := pricing.FetchMany(ctx, oracle, []string{from, to}, 2)
	if err != nil {
		return QuoteResult{}, err
	}
	for _, sym := range []string{from, to} {
		if e, ok := batch.Errors[sym]; ok {
			return QuoteResult{}, e
		}
	}

	out, err := quote.ComputeCounterpart(amount, batch.Prices[from], batch.Prices[to])
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{
		From:        from,
		To:          to,
		FromAmount:  amount,
		ToAmount:    out,
		MinReceived: quote.MinReceived(out, slippage),
	}, nil
}

// printPrices logs one line per symbol. Partial failures are reported
// per symbol; an error is returned only when nothing could be priced.
func printPrices(ctx context.Context, oracle pricing.Oracle, symbols []string, log *zap.Logger) error {
	batch, err := pricing.FetchMany(ctx, oracle, symbols, fetchConcurrency)
	if err != nil {
		return err
	}

	sorted := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sorted = append(sorted, token.NormalizeSymbol(sym))
	}
	sort.Strings(sorted)

	for _, sym := range sorted {
		if e, ok := batch.Errors[sym]; ok {
			log.Warn("Price fetch failed", zap.String("symbol", sym), zap.Error(e))
			continue
		}
		log.Info("Price updated", zap.String("symbol", sym), zap.String("price", quote.FormatPlaces(batch.Prices[sym], 4)))
	}
	return nil
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if sym := token.NormalizeSymbol(s); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics listener failed", zap.Error(err))
		}
	}()
	log.Info("Metrics listening", zap.String("addr", addr))

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
