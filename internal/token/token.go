// internal/token/token.go
package token

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Token is a tradable Token-2022 asset as shown in the terminal.
type Token struct {
	Symbol    string  // short uppercase identifier, unique within a catalog
	Name      string  // display name
	Address   string  // mint address, opaque
	Price     float64 // unit price in USD
	Change24h float64 // 24h price change in percent
	Balance   float64 // wallet balance (mocked)
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidAddress reports whether addr is a base58 Solana public key.
func ValidAddress(addr string) bool {
	if addr == "" {
		return false
	}
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}

// ChangeLabel renders the 24h change the way the token lists show it.
func (t Token) ChangeLabel() string {
	if t.Change24h > 0 {
		return fmt.Sprintf("+%.1f%%", t.Change24h)
	}
	return fmt.Sprintf("%.1f%%", t.Change24h)
}

// PriceLabel renders the USD price, keeping precision for sub-cent tokens.
func (t Token) PriceLabel() string {
	switch {
	case t.Price <= 0:
		return "$-"
	case t.Price < 0.01:
		return fmt.Sprintf("$%.6f", t.Price)
	case t.Price < 1:
		return fmt.Sprintf("$%.4f", t.Price)
	default:
		return fmt.Sprintf("$%.2f", t.Price)
	}
}
