// internal/swap/mocks_test.go
package swap

import (
	"context"

	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/stretchr/testify/mock"
)

// MockExecutor records ExecuteSwap calls.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) ExecuteSwap(ctx context.Context, q Quote) (Receipt, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(Receipt), args.Error(1)
}

// MockOracle is a pricing.Oracle double.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) GetPrice(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

var (
	testSOL  = token.Token{Symbol: "SOL", Name: "Solana", Price: 98.45, Balance: 12.5}
	testUSDC = token.Token{Symbol: "USDC", Name: "USD Coin", Price: 1.00, Balance: 1250}
	testRWA  = token.Token{Symbol: "RWA", Name: "RWA Token", Price: 1.25, Balance: 500}
)
