package chain

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/mr-tron/base58"
)

// ComputeUnitLimit bounds the execution cost of every versioned transaction
// we sign.
const ComputeUnitLimit uint32 = 300_000

// TxFormat tags the wire format a payload decoded as. The format decides the
// signing path and whether extra instructions may be appended.
type TxFormat int

const (
	FormatVersioned TxFormat = iota
	FormatLegacy
)

func (f TxFormat) String() string {
	if f == FormatVersioned {
		return "versioned"
	}
	return "legacy"
}

// DecodedTx is a provider-supplied transaction after base-58 decoding,
// tagged with the format that parsed successfully.
type DecodedTx struct {
	Format TxFormat
	Tx     *solana.Transaction
}

// Decode parses a base-58 transaction payload. The versioned format is tried
// first; on failure the legacy fixed layout is attempted before giving up.
func Decode(payload string) (*DecodedTx, error) {
	raw, err := base58.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if tx, err := decodeVersioned(raw); err == nil {
		return &DecodedTx{Format: FormatVersioned, Tx: tx}, nil
	}

	tx, err := decodeLegacy(raw)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &DecodedTx{Format: FormatLegacy, Tx: tx}, nil
}

func decodeVersioned(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, err
	}
	if tx.Message.GetVersion() != solana.MessageVersionV0 {
		return nil, errors.New("not a versioned transaction")
	}
	return tx, nil
}

func decodeLegacy(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, err
	}
	if tx.Message.GetVersion() != solana.MessageVersionLegacy {
		return nil, errors.New("not a legacy transaction")
	}
	return tx, nil
}

// AttachComputeBudget appends a set-compute-unit-limit instruction to a
// versioned transaction. Legacy transactions have a fixed instruction set and
// are left untouched.
//
// When the program key is not already static it is appended as a readonly
// unsigned account, so the header's readonly count grows with it and the
// existing readonly window keeps covering the same keys. Growing the static
// key list also shifts the combined account-index space: every instruction
// index that pointed past the old static length (a lookup-table resolved
// account) is renumbered one slot up.
func (d *DecodedTx) AttachComputeBudget(units uint32) error {
	if d.Format != FormatVersioned {
		return nil
	}

	ix := computebudget.NewSetComputeUnitLimitInstruction(units).Build()
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("build compute budget instruction: %w", err)
	}

	msg := &d.Tx.Message
	programIdx := -1
	for i, key := range msg.AccountKeys {
		if key.Equals(computebudget.ProgramID) {
			programIdx = i
			break
		}
	}
	if programIdx < 0 {
		oldStatic := uint16(len(msg.AccountKeys))
		msg.AccountKeys = append(msg.AccountKeys, computebudget.ProgramID)
		msg.Header.NumReadonlyUnsignedAccounts++
		for i := range msg.Instructions {
			in := &msg.Instructions[i]
			if in.ProgramIDIndex >= oldStatic {
				in.ProgramIDIndex++
			}
			for j, acct := range in.Accounts {
				if acct >= oldStatic {
					in.Accounts[j] = acct + 1
				}
			}
		}
		programIdx = int(oldStatic)
	}

	msg.Instructions = append(msg.Instructions, solana.CompiledInstruction{
		ProgramIDIndex: uint16(programIdx),
		Data:           solana.Base58(data),
	})
	return nil
}

// SetBlockhash stamps the attempt's block reference into the message.
func (d *DecodedTx) SetBlockhash(hash solana.Hash) {
	d.Tx.Message.RecentBlockhash = hash
}

// Sign signs the transaction with the fee payer key. Versioned transactions
// require a signature for every signer slot; legacy payloads may carry
// signatures from other parties already, so they are partially signed.
func (d *DecodedTx) Sign(signer solana.PrivateKey) error {
	getter := func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(signer.PublicKey()) {
			return &signer
		}
		return nil
	}

	var err error
	if d.Format == FormatVersioned {
		_, err = d.Tx.Sign(getter)
	} else {
		_, err = d.Tx.PartialSign(getter)
	}
	if err != nil {
		return fmt.Errorf("sign %s transaction: %w", d.Format, err)
	}
	return nil
}
