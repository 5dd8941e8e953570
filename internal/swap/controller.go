// internal/swap/controller.go
package swap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rovshanmuradov/dex2k/internal/quote"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"go.uber.org/zap"
)

// Controller owns the swap form. It is not safe for concurrent use: the
// event loop that owns it is the only caller, and async price results come
// back to it as messages tagged with a sequence number.
type Controller struct {
	from token.Token
	to   token.Token

	// text is what the user sees; value keeps full precision for chaining.
	fromText  string
	toText    string
	fromValue float64
	toValue   float64

	state       State
	slippage    float64
	priceImpact float64
	networkFee  string

	seq    uint64
	latest map[string]uint64
	notice string

	executor Executor
	logger   *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithSlippage sets the slippage tolerance in percent.
func WithSlippage(pct float64) Option {
	return func(c *Controller) { c.slippage = pct }
}

// WithNetworkFee sets the fee label shown with the quote.
func WithNetworkFee(label string) Option {
	return func(c *Controller) { c.networkFee = label }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a form swapping from into to.
func NewController(from, to token.Token, executor Executor, opts ...Option) *Controller {
	c := &Controller{
		from:     from,
		to:       to,
		state:    StateIdle,
		latest:   make(map[string]uint64),
		executor: executor,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View is a read-only snapshot for rendering.
type View struct {
	From        token.Token
	To          token.Token
	FromAmount  string
	ToAmount    string
	State       State
	Rate        float64
	Slippage    float64
	PriceImpact float64
	NetworkFee  string
	MinReceived float64
	Notice      string
}

// View returns the current form snapshot.
func (c *Controller) View() View {
	v := View{
		From:        c.from,
		To:          c.to,
		FromAmount:  c.fromText,
		ToAmount:    c.toText,
		State:       c.state,
		Slippage:    c.slippage,
		PriceImpact: c.priceImpact,
		NetworkFee:  c.networkFee,
		Notice:      c.notice,
	}
	if r, err := quote.Rate(c.from.Price, c.to.Price); err == nil {
		v.Rate = r
	}
	if c.toValue > 0 {
		v.MinReceived = quote.MinReceived(c.toValue, c.slippage)
	}
	return v
}

func (c *Controller) State() State { return c.state }

// Amounts returns the full-precision amounts behind the displayed text.
func (c *Controller) Amounts() (from, to float64) { return c.fromValue, c.toValue }

// SetFromAmount handles a keystroke in the from field and recomputes the
// to field. An empty field clears the form. On a calculator error the typed
// text is kept and the to field is left as it was.
func (c *Controller) SetFromAmount(text string) error {
	return c.edit(SideFrom, text)
}

// SetToAmount is the mirror of SetFromAmount using the inverse conversion.
func (c *Controller) SetToAmount(text string) error {
	return c.edit(SideTo, text)
}

func (c *Controller) edit(side Side, text string) error {
	if strings.TrimSpace(text) == "" {
		c.Clear()
		return nil
	}

	if side == SideFrom {
		c.fromText = text
		c.state = StateEditingFrom
	} else {
		c.toText = text
		c.state = StateEditingTo
	}

	amount, err := quote.ParseAmount(text)
	if err != nil {
		return err
	}
	if side == SideFrom {
		c.fromValue = amount
	} else {
		c.toValue = amount
	}
	return c.recompute()
}

// recompute derives the counterpart of the side being edited from current
// prices. The counterpart is left untouched on error.
func (c *Controller) recompute() error {
	switch c.state {
	case StateEditingFrom:
		out, err := quote.ComputeCounterpart(c.fromValue, c.from.Price, c.to.Price)
		if err != nil {
			return err
		}
		c.toValue = out
		c.toText = quote.Format(out)
	case StateEditingTo:
		out, err := quote.ComputeCounterpart(c.toValue, c.to.Price, c.from.Price)
		if err != nil {
			return err
		}
		c.fromValue = out
		c.fromText = quote.Format(out)
	}
	return nil
}

// SwapSides exchanges the from and to assignments. Applying it twice
// restores the original form.
func (c *Controller) SwapSides() {
	c.from, c.to = c.to, c.from
	c.fromText, c.toText = c.toText, c.fromText
	c.fromValue, c.toValue = c.toValue, c.fromValue

	switch c.state {
	case StateEditingFrom:
		c.state = StateEditingTo
	case StateEditingTo:
		c.state = StateEditingFrom
	}
}

// SelectFromToken changes the input token. Picking the current output token
// swaps sides instead.
func (c *Controller) SelectFromToken(t token.Token) error {
	if t.Symbol == c.to.Symbol {
		c.SwapSides()
		return nil
	}
	c.from = t
	return c.recompute()
}

// SelectToToken changes the output token. Picking the current input token
// swaps sides instead.
func (c *Controller) SelectToToken(t token.Token) error {
	if t.Symbol == c.from.Symbol {
		c.SwapSides()
		return nil
	}
	c.to = t
	return c.recompute()
}

// SetSlippage updates the slippage tolerance in percent.
func (c *Controller) SetSlippage(pct float64) error {
	if pct < 0 || pct >= 100 {
		return &ValidationError{Field: "slippage", Reason: "must be between 0 and 100"}
	}
	c.slippage = pct
	return nil
}

// SetPriceImpact records an externally supplied price impact in percent.
func (c *Controller) SetPriceImpact(pct float64) {
	c.priceImpact = pct
}

// Clear empties both fields and returns to Idle.
func (c *Controller) Clear() {
	c.fromText, c.toText = "", ""
	c.fromValue, c.toValue = 0, 0
	c.state = StateIdle
}

// BeginPriceRefresh issues the sequence number for a new price request.
// Only the response carrying the latest number for a symbol is applied.
func (c *Controller) BeginPriceRefresh(symbol string) uint64 {
	c.seq++
	c.latest[token.NormalizeSymbol(symbol)] = c.seq
	return c.seq
}

// stale reports whether seq was superseded for symbol.
func (c *Controller) stale(seq uint64, symbol string) bool {
	latest, ok := c.latest[symbol]
	return !ok || seq < latest
}

// ApplyPrice stores a fetched price and recomputes the counterpart of the
// side last edited. It returns false when the response is stale.
func (c *Controller) ApplyPrice(seq uint64, symbol string, price float64) (bool, error) {
	symbol = token.NormalizeSymbol(symbol)
	if c.stale(seq, symbol) {
		c.logger.Debug("Discarding stale price",
			zap.String("symbol", symbol),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.latest[symbol]))
		return false, nil
	}
	delete(c.latest, symbol)

	if price <= 0 {
		c.notice = fmt.Sprintf("%s price unavailable", symbol)
		return true, fmt.Errorf("%w: %s price %v", quote.ErrInvalidPrice, symbol, price)
	}

	if c.from.Symbol == symbol {
		c.from.Price = price
	}
	if c.to.Symbol == symbol {
		c.to.Price = price
	}
	c.notice = ""
	return true, c.recompute()
}

// ApplyPriceError records a failed request. The displayed price stays; a
// muted notice is set. Returns false when the response is stale.
func (c *Controller) ApplyPriceError(seq uint64, symbol string, err error) bool {
	symbol = token.NormalizeSymbol(symbol)
	if c.stale(seq, symbol) {
		return false
	}
	delete(c.latest, symbol)

	c.notice = fmt.Sprintf("Couldn't refresh %s price, showing last known", symbol)
	c.logger.Warn("Price refresh failed", zap.String("symbol", symbol), zap.Error(err))
	return true
}

// Validate builds the quote the form currently describes or explains why
// it cannot be submitted.
func (c *Controller) Validate() (Quote, error) {
	if strings.TrimSpace(c.fromText) == "" || strings.TrimSpace(c.toText) == "" {
		return Quote{}, &ValidationError{Reason: "Please fill in all required fields"}
	}
	from, err := quote.ParseAmount(c.fromText)
	if err != nil {
		return Quote{}, &ValidationError{Field: "from", Reason: "amount is not a number"}
	}
	if _, err := quote.ParseAmount(c.toText); err != nil {
		return Quote{}, &ValidationError{Field: "to", Reason: "amount is not a number"}
	}
	if from <= 0 {
		return Quote{}, &ValidationError{Field: "from", Reason: "amount must be positive"}
	}
	if c.from.Symbol == c.to.Symbol {
		return Quote{}, &ValidationError{Reason: "cannot swap a token for itself"}
	}
	if c.fromValue > c.from.Balance {
		return Quote{}, &ValidationError{
			Field:  "from",
			Reason: fmt.Sprintf("insufficient %s balance: have %g, need %g", c.from.Symbol, c.from.Balance, c.fromValue),
		}
	}

	rate, err := quote.Rate(c.from.Price, c.to.Price)
	if err != nil {
		return Quote{}, &ValidationError{Reason: "price unavailable"}
	}

	return Quote{
		From:        c.from,
		To:          c.to,
		FromAmount:  c.fromValue,
		ToAmount:    c.toValue,
		Rate:        rate,
		Slippage:    c.slippage,
		PriceImpact: c.priceImpact,
		MinReceived: quote.MinReceived(c.toValue, c.slippage),
		NetworkFee:  c.networkFee,
	}, nil
}

// Submit validates the form and hands the quote to the executor. On a
// validation error nothing changes and the executor is not called.
func (c *Controller) Submit(ctx context.Context) (Receipt, error) {
	q, err := c.Validate()
	if err != nil {
		c.logger.Info("Swap rejected", zap.Error(err))
		return Receipt{}, err
	}
	if c.executor == nil {
		return Receipt{}, errors.New("no swap executor configured")
	}

	receipt, err := c.executor.ExecuteSwap(ctx, q)
	if err != nil {
		return Receipt{}, fmt.Errorf("execute swap: %w", err)
	}

	c.logger.Info("Swap submitted",
		zap.String("id", receipt.ID),
		zap.String("from", q.From.Symbol),
		zap.String("to", q.To.Symbol),
		zap.Float64("amount_in", q.FromAmount),
		zap.Float64("amount_out", q.ToAmount))

	c.from.Balance -= q.FromAmount
	c.to.Balance += q.ToAmount
	c.Clear()
	return receipt, nil
}
