package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rovshanmuradov/dex2k/internal/appstate"
	"github.com/rovshanmuradov/dex2k/internal/config"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/lifecycle"
	"github.com/rovshanmuradov/dex2k/internal/logger"
	"github.com/rovshanmuradov/dex2k/internal/monitor"
	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/swap"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/screen"
	"go.uber.org/zap"
)

const (
	logBufferSize   = 1000
	busBufferSize   = 256
	updateQueueSize = 256
	csvFlushEvery   = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	resetOnboarding := flag.Bool("reset-onboarding", false, "Show the welcome screens again")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(rootCtx, *configPath, *debug, *resetOnboarding); err != nil {
		fmt.Fprintf(os.Stderr, "dex2k: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, debug, resetOnboarding bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logBuffer, err := logger.NewLogBuffer(logBufferSize, "", nil)
	if err != nil {
		return err
	}

	opts := logger.DefaultOptions()
	opts.Debug = cfg.DebugLogging || debug
	opts.File = cfg.LogFile
	opts.Buffer = logBuffer
	appLogger, closeLogger, err := logger.New(opts)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	shutdown := lifecycle.NewShutdownHandler(appLogger, lifecycle.DefaultTimeout)
	shutdown.Add("log_buffer", logBuffer)
	shutdown.AddFunc("logger", closeLogger)
	defer func() {
		if err := shutdown.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	appLogger.Info("Starting dex2k", zap.String("config", configPath), zap.Bool("debug", opts.Debug))

	catalog, err := token.FromConfig(cfg)
	if err != nil {
		return err
	}

	bus := events.NewBus(appLogger, busBufferSize)
	shutdown.AddFunc("event_bus", func() error { return bus.Shutdown(context.Background()) })

	sender := ui.NewUpdateSender(updateQueueSize, appLogger)
	bridge := sender.Bridge(bus)
	shutdown.AddFunc("ui_bridge", func() error {
		bridge.Unsubscribe()
		sender.Close()
		return nil
	})

	history := monitor.NewPriceHistory(monitor.DefaultMaxPoints, appLogger.Named("monitor"))
	history.Seed(catalog.Prices())
	alertCfg := monitor.DefaultAlertConfig()
	alertCfg.MovePercent = cfg.PriceAlertPct
	alerts := monitor.NewAlertManager(alertCfg, bus, appLogger.Named("monitor"))
	historySub := bus.Subscribe(events.PriceUpdated, events.On(history.Observe))
	alertSub := bus.Subscribe(events.PriceUpdated, events.On(alerts.Observe))
	shutdown.AddFunc("monitor", func() error {
		historySub.Unsubscribe()
		alertSub.Unsubscribe()
		return nil
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics, err := pricing.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, appLogger)
		shutdown.AddFunc("metrics", func() error { return srv.Shutdown(context.Background()) })
	}

	deps := &screen.Deps{
		Ctx:          ctx,
		Catalog:      catalog,
		Hooks:        token.NewStaticPolicy(cfg.HookWhitelist...),
		Bus:          bus,
		Logs:         logBuffer,
		Logger:       appLogger,
		Slippage:     cfg.Slippage,
		NetworkFee:   cfg.NetworkFee,
		PriceTimeout: time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		ExportDir:    cfg.ExportDir,
	}

	if cfg.APIKey != "" {
		clientOpts := pricing.OptionsFromConfig(cfg)
		clientOpts.Metrics = metrics
		client := pricing.NewClient(clientOpts, appLogger)
		deps.Oracle = client
		deps.History = client
		deps.OracleLabel = "CoinMarketCap"
	} else {
		appLogger.Warn("No api_key configured, using catalog prices")
		deps.Oracle = pricing.NewStatic(catalog.Prices())
		deps.History = history
		deps.OracleLabel = "offline"
	}

	recorder := swap.NewRecorder(swap.DefaultHistorySize, bus, appLogger)
	if cfg.HistoryFile != "" {
		csvWriter, err := logger.NewSafeCSVWriter(cfg.HistoryFile, logger.CSVOptions{
			Header:        swap.HistoryHeader,
			FlushInterval: csvFlushEvery,
			RotateDaily:   cfg.RotateHistory,
		}, appLogger.Named("history"))
		if err != nil {
			return fmt.Errorf("failed to open swap history: %w", err)
		}
		recorder.SetSink(csvWriter)
		shutdown.Add("swap_history", csvWriter)
	}
	deps.Recorder = recorder

	store, err := appstate.OpenSQLite(ctx, cfg.StateDB, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	state := appstate.New(store)
	shutdown.Add("state", state)
	deps.State = state

	if resetOnboarding {
		if err := state.ResetOnboarding(ctx); err != nil {
			return err
		}
	}
	onboarded, err := state.Onboarded(ctx)
	if err != nil {
		appLogger.Warn("Failed to read onboarding flag", zap.Error(err))
	}

	app := NewAppModel(deps, sender, onboarded)
	program := tea.NewProgram(
		ui.NewSafeModel(app, appLogger),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		appLogger.Error("TUI application failed", zap.Error(err))
		return err
	}

	appLogger.Info("Shutting down dex2k")
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics listener started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics listener failed", zap.Error(err))
		}
	}()
	return srv
}
