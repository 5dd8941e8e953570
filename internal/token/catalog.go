// internal/token/catalog.go
package token

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rovshanmuradov/dex2k/internal/config"
)

// Variant selects which tokens a view lists. Each former copy of a screen
// is a variant over one catalog.
type Variant string

const (
	VariantSwap    Variant = "swap"
	VariantTrading Variant = "trading"
	VariantHome    Variant = "home"
)

var ErrUnknownToken = errors.New("unknown token")

// Pool is a liquidity pool row on the pools screen.
type Pool struct {
	ID        string
	Base      string
	Quote     string
	Liquidity float64 // USD
	Volume24h float64 // USD
	APR       float64 // percent
	Change    float64 // percent
	Share     float64 // user share of the pool, percent
	Value     float64 // user position value, USD
	Mine      bool
}

// Pair returns "BASE/QUOTE".
func (p Pool) Pair() string {
	return p.Base + "/" + p.Quote
}

type entry struct {
	token    Token
	variants map[Variant]struct{}
	order    int
}

// Catalog is the single canonical token and pool list.
type Catalog struct {
	mu     sync.RWMutex
	tokens map[string]*entry
	pools  []Pool
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tokens: make(map[string]*entry)}
}

// Add registers a token for the given variants. No variants means all.
func (c *Catalog) Add(t Token, variants ...Variant) error {
	t.Symbol = NormalizeSymbol(t.Symbol)
	if t.Symbol == "" {
		return errors.New("token symbol is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tokens[t.Symbol]; exists {
		return fmt.Errorf("token %s already registered", t.Symbol)
	}
	e := &entry{token: t, order: len(c.tokens)}
	if len(variants) > 0 {
		e.variants = make(map[Variant]struct{}, len(variants))
		for _, v := range variants {
			e.variants[v] = struct{}{}
		}
	}
	c.tokens[t.Symbol] = e
	return nil
}

// AddPool appends a pool row.
func (c *Catalog) AddPool(p Pool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.Base = NormalizeSymbol(p.Base)
	p.Quote = NormalizeSymbol(p.Quote)
	c.pools = append(c.pools, p)
}

// Get returns a copy of the token with the given symbol.
func (c *Catalog) Get(symbol string) (Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tokens[NormalizeSymbol(symbol)]
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	return e.token, nil
}

// UpdatePrice stores a freshly fetched price.
func (c *Catalog) UpdatePrice(symbol string, price float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tokens[NormalizeSymbol(symbol)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	e.token.Price = price
	return nil
}

// SetBalance stores the wallet balance shown for a token.
func (c *Catalog) SetBalance(symbol string, balance float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.tokens[NormalizeSymbol(symbol)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	e.token.Balance = balance
	return nil
}

// Portfolio sums balance*price over the tokens of a variant and returns the
// value-weighted 24h change.
func (c *Catalog) Portfolio(v Variant) (value, changePct float64) {
	var weighted float64
	for _, t := range c.Tokens(v) {
		if t.Balance <= 0 || t.Price <= 0 {
			continue
		}
		holding := t.Balance * t.Price
		value += holding
		weighted += holding * t.Change24h
	}
	if value > 0 {
		changePct = weighted / value
	}
	return value, changePct
}

// Tokens lists the tokens of a variant in registration order.
func (c *Catalog) Tokens(v Variant) []Token {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*entry, 0, len(c.tokens))
	for _, e := range c.tokens {
		if e.variants == nil {
			list = append(list, e)
			continue
		}
		if _, ok := e.variants[v]; ok {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })

	out := make([]Token, len(list))
	for i, e := range list {
		out[i] = e.token
	}
	return out
}

// Symbols lists the symbols of a variant.
func (c *Catalog) Symbols(v Variant) []string {
	tokens := c.Tokens(v)
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Symbol
	}
	return out
}

// Pools returns the user's pools when mine is true, otherwise all pools.
func (c *Catalog) Pools(mine bool) []Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Pool, 0, len(c.pools))
	for _, p := range c.pools {
		if mine && !p.Mine {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TotalLiquidity sums the liquidity of the selected pools.
func (c *Catalog) TotalLiquidity(mine bool) float64 {
	var total float64
	for _, p := range c.Pools(mine) {
		if mine {
			total += p.Value
		} else {
			total += p.Liquidity
		}
	}
	return total
}

// FromConfig builds the catalog from configuration, falling back to the
// built-in list when the config carries no tokens.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	if cfg == nil || len(cfg.Tokens) == 0 {
		c := DefaultCatalog()
		if cfg != nil {
			for _, p := range cfg.Pools {
				c.AddPool(poolFromConfig(p))
			}
		}
		return c, nil
	}

	c := NewCatalog()
	for _, tc := range cfg.Tokens {
		variants := make([]Variant, 0, len(tc.Variants))
		for _, v := range tc.Variants {
			variants = append(variants, Variant(v))
		}
		err := c.Add(Token{
			Symbol:    tc.Symbol,
			Name:      tc.Name,
			Address:   tc.Address,
			Price:     tc.Price,
			Change24h: tc.Change24h,
			Balance:   tc.Balance,
		}, variants...)
		if err != nil {
			return nil, err
		}
	}
	if len(cfg.Pools) == 0 {
		for _, p := range defaultPools() {
			c.AddPool(p)
		}
	}
	for _, p := range cfg.Pools {
		c.AddPool(poolFromConfig(p))
	}
	return c, nil
}

func poolFromConfig(p config.PoolConfig) Pool {
	return Pool{
		ID:        p.ID,
		Base:      p.Base,
		Quote:     p.Quote,
		Liquidity: p.Liquidity,
		Volume24h: p.Volume24h,
		APR:       p.APR,
		Change:    p.Change,
		Share:     p.Share,
		Value:     p.Value,
		Mine:      p.Mine,
	}
}

// DefaultCatalog returns the built-in token list.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	all := []Variant{VariantSwap, VariantTrading, VariantHome}
	swapOnly := []Variant{VariantSwap, VariantHome}
	tradingOnly := []Variant{VariantTrading}

	_ = c.Add(Token{Symbol: "SOL", Name: "Solana", Address: "So11111111111111111111111111111111111111112", Price: 98.45, Change24h: 2.3, Balance: 12.5}, all...)
	_ = c.Add(Token{Symbol: "USDC", Name: "USD Coin", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Price: 1.00, Change24h: 0, Balance: 1250}, swapOnly...)
	_ = c.Add(Token{Symbol: "RWA", Name: "RWA Token", Price: 1.25, Change24h: 5.2, Balance: 500}, all...)
	_ = c.Add(Token{Symbol: "ENT", Name: "Enterprise Coin", Price: 0.89, Change24h: -2.1, Balance: 0}, all...)
	_ = c.Add(Token{Symbol: "BONK", Name: "Bonk", Price: 0.0234, Change24h: 12.4}, tradingOnly...)
	_ = c.Add(Token{Symbol: "JUP", Name: "Jupiter", Price: 0.67, Change24h: -1.5}, tradingOnly...)

	for _, p := range defaultPools() {
		c.AddPool(p)
	}
	return c
}

func defaultPools() []Pool {
	return []Pool{
		{ID: "1", Base: "SOL", Quote: "USDC", Liquidity: 2_400_000, Volume24h: 156_000, APR: 24.5, Change: 5.2, Share: 0.12, Value: 1234, Mine: true},
		{ID: "2", Base: "RWA", Quote: "SOL", Liquidity: 890_000, Volume24h: 45_000, APR: 18.7, Change: -2.1, Share: 0.08, Value: 567, Mine: true},
		{ID: "3", Base: "ENT", Quote: "USDC", Liquidity: 567_000, Volume24h: 23_000, APR: 15.3, Change: 8.9},
	}
}

// Prices returns the last known price of every token.
func (c *Catalog) Prices() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64, len(c.tokens))
	for sym, e := range c.tokens {
		out[sym] = e.token.Price
	}
	return out
}
