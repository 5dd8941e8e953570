package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"go.uber.org/zap"
)

// AlertType represents different types of alerts
type AlertType string

const (
	AlertTypePriceRise AlertType = "price_rise"
	AlertTypePriceDrop AlertType = "price_drop"
)

// Alert represents a triggered alert
type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Baseline  float64   `json:"baseline"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	Threshold float64   `json:"threshold"`
}

// AlertConfig holds alert configuration
type AlertConfig struct {
	// MovePercent is the absolute move from the session baseline that
	// triggers an alert. 0 disables alerts.
	MovePercent float64
	// Cooldown between two alerts for the same symbol.
	Cooldown time.Duration
}

// DefaultAlertConfig returns default alert configuration
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		MovePercent: 5.0,
		Cooldown:    5 * time.Minute,
	}
}

// AlertManager watches applied prices and raises a notification when a
// token moved by more than the configured percentage since the first price
// seen in this session. The baseline moves to the alerted price.
type AlertManager struct {
	mu        sync.Mutex
	config    AlertConfig
	pub       events.Publisher
	logger    *zap.Logger
	now       func() time.Time
	baseline  map[string]float64
	lastAlert map[string]time.Time
	alerts    []Alert
	maxAlerts int
}

// NewAlertManager creates a new alert manager
func NewAlertManager(config AlertConfig, pub events.Publisher, logger *zap.Logger) *AlertManager {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertManager{
		config:    config,
		pub:       pub,
		logger:    logger,
		now:       time.Now,
		baseline:  make(map[string]float64),
		lastAlert: make(map[string]time.Time),
		maxAlerts: 100,
	}
}

// Observe checks an applied price. Subscribe it with events.On.
func (am *AlertManager) Observe(_ context.Context, u events.PriceUpdatedEvent) error {
	am.Check(u.Symbol, u.Price)
	return nil
}

// Check evaluates one price and returns the alert it raised, if any.
func (am *AlertManager) Check(symbol string, price float64) (Alert, bool) {
	symbol = token.NormalizeSymbol(symbol)
	if am.config.MovePercent <= 0 || symbol == "" || price <= 0 {
		return Alert{}, false
	}

	am.mu.Lock()
	base, seen := am.baseline[symbol]
	if !seen {
		am.baseline[symbol] = price
		am.mu.Unlock()
		return Alert{}, false
	}

	change := (price - base) / base * 100
	if change < am.config.MovePercent && change > -am.config.MovePercent {
		am.mu.Unlock()
		return Alert{}, false
	}

	now := am.now()
	if last, ok := am.lastAlert[symbol]; ok && now.Sub(last) < am.config.Cooldown {
		am.mu.Unlock()
		return Alert{}, false
	}

	alert := Alert{
		ID:        uuid.New().String(),
		Type:      AlertTypePriceRise,
		Timestamp: now,
		Symbol:    symbol,
		Baseline:  base,
		Price:     price,
		ChangePct: change,
		Threshold: am.config.MovePercent,
	}
	if change < 0 {
		alert.Type = AlertTypePriceDrop
	}
	alert.Message = fmt.Sprintf("%s moved %+.1f%% to $%.4f", symbol, change, price)

	am.baseline[symbol] = price
	am.lastAlert[symbol] = now
	if len(am.alerts) >= am.maxAlerts {
		am.alerts = am.alerts[1:]
	}
	am.alerts = append(am.alerts, alert)
	am.mu.Unlock()

	level := events.LevelInfo
	if alert.Type == AlertTypePriceDrop {
		level = events.LevelError
	}
	am.logger.Info("Price alert",
		zap.String("symbol", symbol),
		zap.Float64("change_pct", change),
		zap.Float64("price", price))
	if err := am.pub.Publish(events.Notify(level, "Price alert", alert.Message)); err != nil {
		am.logger.Debug("Price alert dropped", zap.Error(err))
	}
	return alert, true
}

// GetAlerts returns the raised alerts, oldest first.
func (am *AlertManager) GetAlerts() []Alert {
	am.mu.Lock()
	defer am.mu.Unlock()

	out := make([]Alert, len(am.alerts))
	copy(out, am.alerts)
	return out
}
