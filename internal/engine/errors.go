package engine

import "errors"

// ErrInvalidPayload means the transaction payload could not be decoded in
// either wire format. It fails fast and is never retried.
var ErrInvalidPayload = errors.New("invalid transaction payload")
