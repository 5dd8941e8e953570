package token

import (
	"errors"
	"testing"

	"github.com/rovshanmuradov/dex2k/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	token2022Program = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	memoProgram      = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"
)

func TestDefaultCatalogVariants(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"SOL", "USDC", "RWA", "ENT"}, c.Symbols(VariantSwap))
	assert.Equal(t, []string{"SOL", "RWA", "ENT", "BONK", "JUP"}, c.Symbols(VariantTrading))

	sol, err := c.Get("sol")
	require.NoError(t, err)
	assert.Equal(t, 98.45, sol.Price)
	assert.Equal(t, 12.5, sol.Balance)

	_, err = c.Get("DOGE")
	assert.True(t, errors.Is(err, ErrUnknownToken))
}

func TestCatalogAddRejectsDuplicates(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(Token{Symbol: "sol"}))
	assert.Error(t, c.Add(Token{Symbol: " SOL "}))
	assert.Error(t, c.Add(Token{Symbol: ""}))

	// no variants means the token is listed everywhere
	assert.Equal(t, []string{"SOL"}, c.Symbols(VariantTrading))
}

func TestCatalogUpdatePrice(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.UpdatePrice("SOL", 101.5))

	sol, err := c.Get("SOL")
	require.NoError(t, err)
	assert.Equal(t, 101.5, sol.Price)

	assert.Error(t, c.UpdatePrice("NOPE", 1))

	prices := c.Prices()
	assert.Equal(t, 101.5, prices["SOL"])
	assert.Equal(t, 1.0, prices["USDC"])
	assert.Contains(t, prices, "JUP")
}

func TestCatalogPools(t *testing.T) {
	c := DefaultCatalog()

	assert.Len(t, c.Pools(false), 3)
	mine := c.Pools(true)
	require.Len(t, mine, 2)
	assert.Equal(t, "SOL/USDC", mine[0].Pair())
	assert.InDelta(t, 1234+567, c.TotalLiquidity(true), 1e-9)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Tokens: []config.TokenConfig{
			{Symbol: "sol", Name: "Solana", Price: 100, Variants: []string{"swap"}},
			{Symbol: "USDC", Name: "USD Coin", Price: 1},
		},
		Pools: []config.PoolConfig{{ID: "x", Base: "sol", Quote: "usdc", Mine: true}},
	}

	c, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL", "USDC"}, c.Symbols(VariantSwap))
	assert.Equal(t, []string{"USDC"}, c.Symbols(VariantTrading))

	mine := c.Pools(true)
	require.NotEmpty(t, mine)
	assert.Equal(t, "SOL/USDC", mine[len(mine)-1].Pair())

	def, err := FromConfig(nil)
	require.NoError(t, err)
	assert.Contains(t, def.Symbols(VariantSwap), "SOL")
}

func TestTokenLabels(t *testing.T) {
	assert.Equal(t, "+2.3%", Token{Change24h: 2.3}.ChangeLabel())
	assert.Equal(t, "-2.1%", Token{Change24h: -2.1}.ChangeLabel())
	assert.Equal(t, "$98.45", Token{Price: 98.45}.PriceLabel())
	assert.Equal(t, "$0.8900", Token{Price: 0.89}.PriceLabel())
	assert.Equal(t, "$0.004500", Token{Price: 0.0045}.PriceLabel())
	assert.Equal(t, "$-", Token{}.PriceLabel())
}

func TestStaticPolicy(t *testing.T) {
	p := NewStaticPolicy(token2022Program, " ")

	assert.True(t, p.IsHookWhitelisted(""), "no hook is always allowed")
	assert.True(t, p.IsHookWhitelisted(token2022Program))
	assert.False(t, p.IsHookWhitelisted(memoProgram))

	p.Allow(memoProgram)
	assert.True(t, p.IsHookWhitelisted(memoProgram))
}

func TestTransferHookConfigValidate(t *testing.T) {
	policy := NewStaticPolicy(token2022Program)

	tests := []struct {
		name    string
		cfg     TransferHookConfig
		wantErr error
	}{
		{name: "disabled ignores everything", cfg: TransferHookConfig{HookProgramID: "garbage", TransferFeePercent: 500}},
		{name: "enabled without hook", cfg: TransferHookConfig{Enabled: true, TransferFeePercent: 1}},
		{name: "whitelisted hook", cfg: TransferHookConfig{Enabled: true, HookProgramID: token2022Program, MinTransferAmount: 1, MaxTransferAmount: 10}},
		{name: "not whitelisted", cfg: TransferHookConfig{Enabled: true, HookProgramID: memoProgram}, wantErr: ErrHookNotWhitelisted},
		{name: "malformed id", cfg: TransferHookConfig{Enabled: true, HookProgramID: "not-a-key"}, wantErr: ErrInvalidHookConfig},
		{name: "min above max", cfg: TransferHookConfig{Enabled: true, MinTransferAmount: 10, MaxTransferAmount: 1}, wantErr: ErrInvalidHookConfig},
		{name: "negative min", cfg: TransferHookConfig{Enabled: true, MinTransferAmount: -1}, wantErr: ErrInvalidHookConfig},
		{name: "fee out of range", cfg: TransferHookConfig{Enabled: true, TransferFeePercent: 101}, wantErr: ErrInvalidHookConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(policy)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var hookErr *HookError
			assert.True(t, errors.As(err, &hookErr))
		})
	}
}

func TestCheckHookProgramWithFuncPolicy(t *testing.T) {
	denyAll := HookPolicyFunc(func(string) bool { return false })
	assert.NoError(t, CheckHookProgram("", denyAll))
	assert.ErrorIs(t, CheckHookProgram(token2022Program, denyAll), ErrHookNotWhitelisted)
	assert.NoError(t, CheckHookProgram(token2022Program, nil))
}

func TestCheckTransfer(t *testing.T) {
	cfg := TransferHookConfig{Enabled: true, MinTransferAmount: 1, MaxTransferAmount: 100, TransferFeePercent: 2}

	fee, err := cfg.CheckTransfer(50)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fee, 1e-12)

	_, err = cfg.CheckTransfer(0.5)
	assert.Error(t, err)
	_, err = cfg.CheckTransfer(101)
	assert.Error(t, err)

	fee, err = TransferHookConfig{}.CheckTransfer(1e9)
	require.NoError(t, err)
	assert.Zero(t, fee)
}

func TestDraftValidate(t *testing.T) {
	policy := NewStaticPolicy(token2022Program)

	d := NewDraft()
	d.Name = "Enterprise Coin"
	d.Symbol = "ent"
	d.Supply = 1_000_000
	d.Liquidity = 1000
	d.InitialPrice = 0.89
	require.NoError(t, d.Validate(policy))
	assert.InDelta(t, 890_000, d.MarketCap(), 1e-6)

	bad := d
	bad.Symbol = "TOO-LONG-SYMBOL"
	assert.ErrorIs(t, bad.Validate(policy), ErrInvalidDraft)

	bad = d
	bad.PoolFee = "5%"
	assert.ErrorIs(t, bad.Validate(policy), ErrInvalidDraft)

	bad = d
	bad.Hook = TransferHookConfig{Enabled: true, HookProgramID: memoProgram}
	assert.ErrorIs(t, bad.Validate(policy), ErrHookNotWhitelisted)

	bad = d
	bad.InitialPrice = 0
	assert.ErrorIs(t, bad.ValidateLiquidity(), ErrInvalidDraft)
}

func TestCatalogPortfolio(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Add(Token{Symbol: "SOL", Price: 100, Change24h: 2, Balance: 1}, VariantHome))
	require.NoError(t, c.Add(Token{Symbol: "USDC", Price: 1, Balance: 100}, VariantHome))
	require.NoError(t, c.Add(Token{Symbol: "BONK", Price: 0.02, Balance: 1000}, VariantTrading))

	value, change := c.Portfolio(VariantHome)
	assert.InDelta(t, 200, value, 1e-9)
	assert.InDelta(t, 1, change, 1e-9)

	require.NoError(t, c.SetBalance("sol", 3))
	value, _ = c.Portfolio(VariantHome)
	assert.InDelta(t, 400, value, 1e-9)

	assert.ErrorIs(t, c.SetBalance("NOPE", 1), ErrUnknownToken)

	value, change = NewCatalog().Portfolio(VariantHome)
	assert.Zero(t, value)
	assert.Zero(t, change)
}
