// internal/ui/screen/swap.go
package screen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/export"
	"github.com/rovshanmuradov/dex2k/internal/quote"
	"github.com/rovshanmuradov/dex2k/internal/swap"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
	"go.uber.org/zap"
)

type priceResultMsg struct {
	result swap.PriceResult
}

type swapDoneMsg struct {
	receipt swap.Receipt
	err     error
}

// SwapScreen is the two-sided swap form.
type SwapScreen struct {
	deps   *Deps
	keyMap ui.KeyMap
	width  int
	height int

	ctrl      *swap.Controller
	refresher *swap.Refresher

	fromInput textinput.Model
	toInput   textinput.Model
	focusTo   bool

	errText string

	helpBar *component.HelpBar
}

// NewSwapScreen creates the swap form with the first two swap tokens.
func NewSwapScreen(deps *Deps) *SwapScreen {
	keyMap := ui.DefaultKeyMap()

	list := deps.Catalog.Tokens(token.VariantSwap)
	var from, to token.Token
	if len(list) > 0 {
		from = list[0]
	}
	if len(list) > 1 {
		to = list[1]
	}

	s := &SwapScreen{
		deps:   deps,
		keyMap: keyMap,
		ctrl: swap.NewController(from, to, deps.Recorder,
			swap.WithSlippage(deps.Slippage),
			swap.WithNetworkFee(deps.NetworkFee),
			swap.WithLogger(deps.log().Named("swap"))),
		refresher: swap.NewRefresher(deps.Oracle, deps.PriceTimeout),
		fromInput: newAmountInput(),
		toInput:   newAmountInput(),
		helpBar:   component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteSwap)),
	}
	s.fromInput.Focus()
	return s
}

func newAmountInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "0.0"
	ti.CharLimit = 32
	ti.Width = 20
	ti.Prompt = ""
	return ti
}

func (s *SwapScreen) Route() ui.Route { return ui.RouteSwap }

func (s *SwapScreen) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, s.refreshPrices())
}

// refreshPrices requests fresh prices for both sides of the form.
func (s *SwapScreen) refreshPrices() tea.Cmd {
	if s.deps.Oracle == nil {
		return nil
	}
	v := s.ctrl.View()
	symbols := []string{v.From.Symbol}
	if v.To.Symbol != v.From.Symbol {
		symbols = append(symbols, v.To.Symbol)
	}

	cmds := make([]tea.Cmd, 0, len(symbols))
	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		seq := s.ctrl.BeginPriceRefresh(sym)
		sym := sym
		ctx := s.deps.ctx()
		refresher := s.refresher
		cmds = append(cmds, func() tea.Msg {
			return priceResultMsg{result: refresher.Fetch(ctx, seq, sym)}
		})
	}
	return tea.Batch(cmds...)
}

func (s *SwapScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case priceResultMsg:
		return s, s.applyPrice(msg.result)

	case swapDoneMsg:
		return s, s.finishSubmit(msg)
	}

	return s, nil
}

func (s *SwapScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keyMap.Back):
		return s, ui.Back()

	case key.Matches(msg, s.keyMap.Tab), key.Matches(msg, s.keyMap.ShiftTab):
		s.setFocus(!s.focusTo)
		return s, nil

	case key.Matches(msg, s.keyMap.Flip):
		s.ctrl.SwapSides()
		s.errText = ""
		s.syncInputs()
		return s, nil

	case key.Matches(msg, s.keyMap.NextFrom):
		s.cycleToken(swap.SideFrom)
		return s, s.refreshPrices()

	case key.Matches(msg, s.keyMap.NextTo):
		s.cycleToken(swap.SideTo)
		return s, s.refreshPrices()

	case key.Matches(msg, s.keyMap.ClearForm):
		s.ctrl.Clear()
		s.errText = ""
		s.syncInputs()
		return s, nil

	case key.Matches(msg, s.keyMap.Refresh):
		return s, s.refreshPrices()

	case key.Matches(msg, s.keyMap.Export):
		return s, s.exportHistory()

	case key.Matches(msg, s.keyMap.Submit):
		return s, s.submit()
	}

	var cmd tea.Cmd
	if s.focusTo {
		s.toInput, cmd = s.toInput.Update(msg)
		s.edit(swap.SideTo, s.toInput.Value())
	} else {
		s.fromInput, cmd = s.fromInput.Update(msg)
		s.edit(swap.SideFrom, s.fromInput.Value())
	}
	return s, cmd
}

// edit pushes the typed text into the controller and mirrors the computed
// counterpart into the other field.
func (s *SwapScreen) edit(side swap.Side, text string) {
	var err error
	if side == swap.SideTo {
		err = s.ctrl.SetToAmount(text)
	} else {
		err = s.ctrl.SetFromAmount(text)
	}
	if err != nil {
		s.errText = err.Error()
	} else {
		s.errText = ""
	}

	v := s.ctrl.View()
	if side == swap.SideTo {
		s.fromInput.SetValue(v.FromAmount)
	} else {
		s.toInput.SetValue(v.ToAmount)
	}
}

func (s *SwapScreen) syncInputs() {
	v := s.ctrl.View()
	s.fromInput.SetValue(v.FromAmount)
	s.toInput.SetValue(v.ToAmount)
}

func (s *SwapScreen) setFocus(to bool) {
	s.focusTo = to
	if to {
		s.fromInput.Blur()
		s.toInput.Focus()
	} else {
		s.toInput.Blur()
		s.fromInput.Focus()
	}
}

// cycleToken selects the next swap token for side, skipping the token on the
// other side.
func (s *SwapScreen) cycleToken(side swap.Side) {
	list := s.deps.Catalog.Tokens(token.VariantSwap)
	if len(list) < 2 {
		return
	}

	v := s.ctrl.View()
	current, other := v.From.Symbol, v.To.Symbol
	if side == swap.SideTo {
		current, other = other, current
	}

	idx := 0
	for i, t := range list {
		if t.Symbol == current {
			idx = i
			break
		}
	}

	for step := 1; step <= len(list); step++ {
		next := list[(idx+step)%len(list)]
		if next.Symbol == other || next.Symbol == current {
			continue
		}
		var err error
		if side == swap.SideTo {
			err = s.ctrl.SelectToToken(next)
		} else {
			err = s.ctrl.SelectFromToken(next)
		}
		if err != nil {
			s.errText = err.Error()
		} else {
			s.errText = ""
		}
		s.syncInputs()
		return
	}
}

func (s *SwapScreen) applyPrice(res swap.PriceResult) tea.Cmd {
	applied, err := swap.Apply(s.ctrl, res)
	if !applied {
		return nil
	}

	if res.Err != nil {
		s.deps.publish(events.PriceFailedEvent{
			BaseEvent: events.NewBase(events.PriceFailed),
			Symbol:    res.Symbol,
			Error:     res.Err,
		})
		return nil
	}

	previous := 0.0
	if t, getErr := s.deps.Catalog.Get(res.Symbol); getErr == nil {
		previous = t.Price
	}
	if err == nil {
		if updErr := s.deps.Catalog.UpdatePrice(res.Symbol, res.Price); updErr != nil {
			s.deps.log().Debug("Price not stored in catalog", zap.String("symbol", res.Symbol), zap.Error(updErr))
		}
		s.deps.publish(events.PriceUpdatedEvent{
			BaseEvent: events.NewBase(events.PriceUpdated),
			Symbol:    res.Symbol,
			Price:     res.Price,
			Previous:  previous,
			Seq:       res.Seq,
		})
	} else {
		s.errText = err.Error()
	}

	// the controller recomputed from the edited side
	s.syncInputs()
	return nil
}

func (s *SwapScreen) submit() tea.Cmd {
	if _, err := s.ctrl.Validate(); err != nil {
		s.errText = err.Error()
		s.deps.publish(events.SwapRejectedEvent{
			BaseEvent: events.NewBase(events.SwapRejected),
			Reason:    err.Error(),
		})
		return nil
	}

	// the executor is in-process, so Submit runs on the event loop and the
	// controller is never touched from another goroutine
	receipt, err := s.ctrl.Submit(s.deps.ctx())
	return func() tea.Msg { return swapDoneMsg{receipt: receipt, err: err} }
}

func (s *SwapScreen) finishSubmit(msg swapDoneMsg) tea.Cmd {
	if msg.err != nil {
		s.errText = msg.err.Error()
		var verr *swap.ValidationError
		if errors.As(msg.err, &verr) {
			s.deps.publish(events.SwapRejectedEvent{
				BaseEvent: events.NewBase(events.SwapRejected),
				Reason:    verr.Error(),
			})
			return nil
		}
		return ui.Toast(events.LevelError, "Swap failed", msg.err.Error())
	}

	v := s.ctrl.View()
	for _, t := range []token.Token{v.From, v.To} {
		if err := s.deps.Catalog.SetBalance(t.Symbol, t.Balance); err != nil {
			s.deps.log().Debug("Balance not stored in catalog", zap.String("symbol", t.Symbol), zap.Error(err))
		}
	}

	s.errText = ""
	s.syncInputs()
	s.setFocus(false)

	q := msg.receipt.Quote
	return ui.Toast(events.LevelSuccess, "Swap executed",
		fmt.Sprintf("%s %s → %s %s", quote.Format(q.FromAmount), q.From.Symbol, quote.Format(q.ToAmount), q.To.Symbol))
}

// Controller exposes the form state.
func (s *SwapScreen) Controller() *swap.Controller { return s.ctrl }

// Error returns the inline error under the form, if any.
func (s *SwapScreen) Error() string { return s.errText }

func (s *SwapScreen) View() string {
	palette := style.DefaultPalette()
	v := s.ctrl.View()

	label := lipgloss.NewStyle().Foreground(palette.TextMuted)
	active := lipgloss.NewStyle().Foreground(palette.Primary).Bold(true)

	fromLabel, toLabel := label.Render("From"), label.Render("To")
	if s.focusTo {
		toLabel = active.Render("To")
	} else {
		fromLabel = active.Render("From")
	}

	row := func(lbl string, t token.Token, input textinput.Model) string {
		sym := lipgloss.NewStyle().Bold(true).Width(8).Render(t.Symbol)
		bal := style.Muted().Render(fmt.Sprintf("balance %s · %s", quote.Format(t.Balance), t.PriceLabel()))
		return lipgloss.JoinVertical(lipgloss.Left, lbl, sym+" "+input.View(), bal)
	}

	var details strings.Builder
	if v.Rate > 0 {
		details.WriteString(fmt.Sprintf("Rate          1 %s = %s %s\n", v.From.Symbol, quote.Format(v.Rate), v.To.Symbol))
	} else {
		details.WriteString("Rate          -\n")
	}
	details.WriteString(fmt.Sprintf("Slippage      %.2f%%\n", v.Slippage))
	details.WriteString(fmt.Sprintf("Price impact  %.2f%%\n", v.PriceImpact))
	if v.MinReceived > 0 {
		details.WriteString(fmt.Sprintf("Min received  %s %s\n", quote.Format(v.MinReceived), v.To.Symbol))
	}
	if v.NetworkFee != "" {
		details.WriteString(fmt.Sprintf("Network fee   %s\n", v.NetworkFee))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		row(fromLabel, v.From, s.fromInput),
		style.Muted().Render("   ⇅"),
		row(toLabel, v.To, s.toInput),
		"",
		strings.TrimRight(details.String(), "\n"),
	)

	var content strings.Builder
	content.WriteString(style.Title().Render("Swap"))
	content.WriteString("\n\n")
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		style.Panel().Render(body), "  ", s.renderRecent()))
	content.WriteString("\n")
	if v.Notice != "" {
		content.WriteString(style.Muted().Render(v.Notice))
		content.WriteString("\n")
	}
	if s.errText != "" {
		content.WriteString(lipgloss.NewStyle().Foreground(palette.Error).Render("✗ " + s.errText))
		content.WriteString("\n")
	}
	content.WriteString(s.helpBar.SetWidth(s.width).View())
	return content.String()
}

const recentSwapRows = 5

// exportHistory writes the whole recent swaps list as CSV off the update
// loop and reports the outcome as a toast.
func (s *SwapScreen) exportHistory() tea.Cmd {
	if s.deps.Recorder == nil {
		return nil
	}
	receipts := s.deps.Recorder.Recent(0)
	opts := export.Options{Format: export.FormatCSV, OutputDir: s.deps.ExportDir}
	exporter := export.NewExporter(s.deps.log().Named("export"))
	return func() tea.Msg {
		path, err := exporter.Export(receipts, opts)
		switch {
		case errors.Is(err, export.ErrNothingToExport):
			return ui.ToastMsg{Level: events.LevelInfo, Title: "Export", Text: "No swaps to export yet"}
		case err != nil:
			return ui.ErrorMsg{Title: "Export failed", Error: err}
		default:
			return ui.ToastMsg{Level: events.LevelSuccess, Title: "Swaps exported", Text: path}
		}
	}
}

func (s *SwapScreen) renderRecent() string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render("Recent Swaps")}
	var recent []swap.Receipt
	if s.deps.Recorder != nil {
		recent = s.deps.Recorder.Recent(recentSwapRows)
	}
	if len(recent) == 0 {
		lines = append(lines, style.Muted().Render("No swaps yet"))
	}
	for _, rc := range recent {
		lines = append(lines, fmt.Sprintf("%s  %s %s → %s %s",
			style.Muted().Render(rc.ExecutedAt.Format("15:04")),
			quote.Format(rc.Quote.FromAmount), rc.Quote.From.Symbol,
			quote.Format(rc.Quote.ToAmount), rc.Quote.To.Symbol))
	}
	return style.Panel().Render(strings.Join(lines, "\n"))
}

func (s *SwapScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}
