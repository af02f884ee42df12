package okx

import (
	"errors"
	"fmt"
)

// Sentinel errors for the aggregator client. Parameter and credential errors
// fail fast and are never retried.
var (
	// ErrMissingCredentials is returned before any network call when one of
	// the four required credential values is absent.
	ErrMissingCredentials = errors.New("missing OKX API credentials")

	// ErrInvalidParameters is returned when required request parameters are
	// missing or zero-valued.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrEmptyQuote is returned when the provider answers with no quote entries.
	ErrEmptyQuote = errors.New("no quote data received")

	// ErrEmptyCatalog is returned when the provider answers with no tokens.
	ErrEmptyCatalog = errors.New("no token data received")

	// ErrMalformedResponse is returned when the provider response is missing
	// an expected field.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrInvalidOutput is returned when a swap response carries no output amount.
	ErrInvalidOutput = errors.New("invalid or missing output amount")
)

// ProviderStatusError carries a non-zero provider status code together with
// the provider's own diagnostic message. It is surfaced verbatim to callers
// after retries are exhausted.
type ProviderStatusError struct {
	Endpoint string
	Code     string
	Msg      string
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("okx %s: %s (code %s)", e.Endpoint, e.Msg, e.Code)
}
