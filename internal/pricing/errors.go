// internal/pricing/errors.go
package pricing

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrPriceFetch matches every *PriceFetchError via errors.Is.
var ErrPriceFetch = errors.New("price fetch failed")

// PriceFetchError reports an unreachable or failing quote source.
type PriceFetchError struct {
	Symbol     string
	StatusCode int    // HTTP status, 0 when the request never completed
	APICode    int    // status.error_code from the API body
	Message    string // status.error_message or a local reason
	Err        error
}

func (e *PriceFetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("price fetch %s: status %d: %s", e.Symbol, e.StatusCode, msg)
	}
	return fmt.Sprintf("price fetch %s: %s", e.Symbol, msg)
}

func (e *PriceFetchError) Unwrap() error { return e.Err }

func (e *PriceFetchError) Is(target error) bool { return target == ErrPriceFetch }

// retryable reports whether another attempt can succeed.
func (e *PriceFetchError) retryable() bool {
	switch {
	case e.StatusCode == 0:
		return e.Err != nil
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}
