package chain

import (
	"errors"
	"fmt"
)

// ErrBlockhashExpired means the chain advanced past the block-validity height
// of the attempt before the transaction was confirmed.
var ErrBlockhashExpired = errors.New("blockhash expired before confirmation")

// OnChainExecutionError reports a transaction that was included on-chain but
// failed during execution. It is retryable at the engine level.
type OnChainExecutionError struct {
	Signature string
	Detail    string
}

func (e *OnChainExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed on-chain: %s", e.Signature, e.Detail)
}
