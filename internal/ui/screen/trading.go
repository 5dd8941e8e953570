// internal/ui/screen/trading.go
package screen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/quote"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
	"go.uber.org/zap"
)

const (
	fetchConcurrency = 4
	historyInterval  = "1h"
	chartWidth       = 40
)

// OrderSide of the order ticket.
type OrderSide int

const (
	SideBuy OrderSide = iota
	SideSell
)

func (s OrderSide) String() string {
	if s == SideSell {
		return "Sell"
	}
	return "Buy"
}

// MarketSort orders the market table.
type MarketSort int

const (
	SortTrending MarketSort = iota
	SortGainers
	SortLosers
)

func (m MarketSort) String() string {
	switch m {
	case SortGainers:
		return "Top Gainers"
	case SortLosers:
		return "Top Losers"
	default:
		return "Trending"
	}
}

type pricesLoadedMsg struct {
	result pricing.BatchResult
	err    error
}

type historyLoadedMsg struct {
	symbol  string
	candles []pricing.Candle
	err     error
}

// TradingScreen lists market prices with a chart and an order ticket.
type TradingScreen struct {
	deps   *Deps
	keyMap ui.KeyMap
	width  int
	height int

	table   *component.Table
	chart   *component.Sparkline
	amount  textinput.Model
	helpBar *component.HelpBar

	symbols    []string
	side       OrderSide
	sortBy     MarketSort
	loading    bool
	fetchErr   string
	chartFor   string
	orderError string
}

// NewTradingScreen creates the trading screen.
func NewTradingScreen(deps *Deps) *TradingScreen {
	keyMap := ui.DefaultKeyMap()

	amount := textinput.New()
	amount.Placeholder = "Amount"
	amount.CharLimit = 32
	amount.Width = 16
	amount.Focus()

	return &TradingScreen{
		deps:   deps,
		keyMap: keyMap,
		table: component.NewTable().
			AddColumn("Token", 8, lipgloss.Left).
			AddColumn("Name", 16, lipgloss.Left).
			AddColumn("Price", 14, lipgloss.Right).
			AddColumn("24h", 9, lipgloss.Right).
			SetEmptyText("No tokens"),
		chart:   component.NewSparkline(chartWidth),
		amount:  amount,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteTrading)),
	}
}

func (s *TradingScreen) Route() ui.Route { return ui.RouteTrading }

func (s *TradingScreen) Init() tea.Cmd {
	s.rebuildTable()
	return tea.Batch(textinput.Blink, s.fetchPrices(), s.fetchHistory())
}

func (s *TradingScreen) fetchPrices() tea.Cmd {
	if s.deps.Oracle == nil {
		return nil
	}
	s.loading = true
	ctx, oracle := s.deps.ctx(), s.deps.Oracle
	symbols := s.deps.Catalog.Symbols(token.VariantTrading)
	return func() tea.Msg {
		res, err := pricing.FetchMany(ctx, oracle, symbols, fetchConcurrency)
		return pricesLoadedMsg{result: res, err: err}
	}
}

func (s *TradingScreen) fetchHistory() tea.Cmd {
	sym := s.selectedSymbol()
	if s.deps.History == nil || sym == "" || sym == s.chartFor {
		return nil
	}
	s.chartFor = sym
	ctx, history := s.deps.ctx(), s.deps.History
	return func() tea.Msg {
		candles, err := history.GetHistorical(ctx, sym, historyInterval)
		return historyLoadedMsg{symbol: sym, candles: candles, err: err}
	}
}

func (s *TradingScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Back):
			return s, ui.Back()
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
			return s, s.fetchHistory()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
			return s, s.fetchHistory()
		case key.Matches(msg, s.keyMap.ToggleSide):
			if s.side == SideBuy {
				s.side = SideSell
			} else {
				s.side = SideBuy
			}
			return s, nil
		case key.Matches(msg, s.keyMap.SortMarket):
			s.sortBy = (s.sortBy + 1) % 3
			s.rebuildTable()
			return s, s.fetchHistory()
		case key.Matches(msg, s.keyMap.Refresh):
			return s, s.fetchPrices()
		case key.Matches(msg, s.keyMap.Submit):
			return s, s.placeOrder()
		}

		var cmd tea.Cmd
		s.amount, cmd = s.amount.Update(msg)
		s.orderError = ""
		return s, cmd

	case pricesLoadedMsg:
		s.applyPrices(msg)
		return s, nil

	case historyLoadedMsg:
		if msg.symbol != s.selectedSymbol() {
			return s, nil
		}
		if msg.err != nil {
			s.deps.log().Debug("History unavailable", zap.String("symbol", msg.symbol), zap.Error(msg.err))
			s.chart.SetData(nil)
			return s, nil
		}
		closes := make([]float64, len(msg.candles))
		for i, c := range msg.candles {
			closes[i] = c.Close
		}
		s.chart.SetData(closes)
	}

	return s, nil
}

// applyPrices stores every price that arrived. The error banner is shown
// only when nothing could be fetched.
func (s *TradingScreen) applyPrices(msg pricesLoadedMsg) {
	s.loading = false

	for sym, price := range msg.result.Prices {
		prev := 0.0
		if t, err := s.deps.Catalog.Get(sym); err == nil {
			prev = t.Price
		}
		if err := s.deps.Catalog.UpdatePrice(sym, price); err != nil {
			continue
		}
		s.deps.publish(events.PriceUpdatedEvent{
			BaseEvent: events.NewBase(events.PriceUpdated),
			Symbol:    sym,
			Price:     price,
			Previous:  prev,
		})
	}
	for sym, err := range msg.result.Errors {
		s.deps.publish(events.PriceFailedEvent{
			BaseEvent: events.NewBase(events.PriceFailed),
			Symbol:    sym,
			Error:     err,
		})
	}

	if errors.Is(msg.err, pricing.ErrAllFailed) {
		s.fetchErr = "Failed to fetch token data"
	} else if msg.err != nil {
		s.fetchErr = msg.err.Error()
	} else {
		s.fetchErr = ""
	}
	s.rebuildTable()
}

func (s *TradingScreen) rebuildTable() {
	list := s.deps.Catalog.Tokens(token.VariantTrading)
	switch s.sortBy {
	case SortGainers:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Change24h > list[j].Change24h })
	case SortLosers:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Change24h < list[j].Change24h })
	}
	s.symbols = s.symbols[:0]
	rows := make([][]string, len(list))
	for i, t := range list {
		s.symbols = append(s.symbols, t.Symbol)
		rows[i] = []string{t.Symbol, t.Name, t.PriceLabel(), t.ChangeLabel()}
	}
	s.table.SetRows(rows)
	for i, t := range list {
		s.table.SetCellStyle(i, 3, style.Change(t.Change24h))
	}
}

func (s *TradingScreen) selectedSymbol() string {
	idx := s.table.GetSelectedRow()
	if idx < 0 || idx >= len(s.symbols) {
		return ""
	}
	return s.symbols[idx]
}

func (s *TradingScreen) placeOrder() tea.Cmd {
	sym := s.selectedSymbol()
	t, err := s.deps.Catalog.Get(sym)
	if err != nil {
		s.orderError = "select a token"
		return nil
	}

	amount, err := quote.ParseAmount(s.amount.Value())
	if err != nil || amount <= 0 {
		s.orderError = "enter an amount greater than zero"
		return nil
	}
	if s.side == SideSell && amount > t.Balance {
		s.orderError = fmt.Sprintf("insufficient %s balance: have %s", t.Symbol, quote.Format(t.Balance))
		return nil
	}

	total := quote.OrderTotal(amount, t.Price)
	text := fmt.Sprintf("%s %s %s for $%s", s.side, quote.Format(amount), t.Symbol, total)

	s.deps.log().Info("Order placed",
		zap.String("side", s.side.String()),
		zap.String("symbol", t.Symbol),
		zap.Float64("amount", amount),
		zap.String("total", total))
	s.deps.publish(events.Notify(events.LevelSuccess, "Order placed", text))

	s.amount.SetValue("")
	s.orderError = ""
	return nil
}

// Side returns the order ticket side.
func (s *TradingScreen) Side() OrderSide { return s.side }

// Symbols returns the table order.
func (s *TradingScreen) Symbols() []string { return append([]string(nil), s.symbols...) }

// FetchError returns the banner shown when no price could be fetched.
func (s *TradingScreen) FetchError() string { return s.fetchErr }

func (s *TradingScreen) View() string {
	palette := style.DefaultPalette()

	var content strings.Builder
	title := style.Title().Render("Trading") + style.Muted().Render("  "+s.sortBy.String())
	if s.loading {
		title += style.Muted().Render("  refreshing…")
	}
	content.WriteString(title)
	content.WriteString("\n\n")

	if s.fetchErr != "" {
		content.WriteString(lipgloss.NewStyle().Foreground(palette.Error).Render("✗ " + s.fetchErr))
		content.WriteString("\n\n")
	}

	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.table.View(), "  ", s.renderTicket()))
	content.WriteString("\n")
	content.WriteString(s.helpBar.SetWidth(s.width).View())
	return content.String()
}

func (s *TradingScreen) renderTicket() string {
	palette := style.DefaultPalette()
	sym := s.selectedSymbol()
	t, _ := s.deps.Catalog.Get(sym)

	sideColor := palette.Buy
	if s.side == SideSell {
		sideColor = palette.Sell
	}
	sideLabel := lipgloss.NewStyle().Foreground(palette.Background).Background(sideColor).Bold(true).Padding(0, 1).Render(s.side.String())

	total := "0.00"
	if amount, err := quote.ParseAmount(s.amount.Value()); err == nil {
		total = quote.OrderTotal(amount, t.Price)
	}

	chart := s.chart.View()
	if s.chart.Len() > 1 {
		chart += " " + style.Change(s.chart.ChangePercent()).Render(fmt.Sprintf("%+.2f%%", s.chart.ChangePercent()))
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(sym) + "  " + t.PriceLabel(),
		chart,
		"",
		sideLabel,
		"Amount " + s.amount.View(),
		fmt.Sprintf("Total  $%s", total),
		style.Muted().Render(fmt.Sprintf("Balance %s", quote.Format(t.Balance))),
	}
	if s.orderError != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(palette.Error).Render(s.orderError))
	}
	return style.Panel().Render(strings.Join(lines, "\n"))
}

func (s *TradingScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}
