package chain

import (
	"encoding/binary"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTx(t *testing.T, version solana.MessageVersion, payer solana.PublicKey) *solana.Transaction {
	t.Helper()
	msg := solana.Message{
		Header: solana.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []solana.PublicKey{payer, solana.MemoProgramID},
		RecentBlockhash: solana.Hash{1},
		Instructions: []solana.CompiledInstruction{
			{ProgramIDIndex: 1, Data: solana.Base58("swap")},
		},
	}
	if version == solana.MessageVersionV0 {
		msg.SetVersion(solana.MessageVersionV0)
	}
	return &solana.Transaction{
		Signatures: []solana.Signature{{}},
		Message:    msg,
	}
}

func encodeTx(t *testing.T, tx *solana.Transaction) string {
	t.Helper()
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base58.Encode(raw)
}

// ─── Decoding ────────────────────────────────────────────────────────────────

func TestDecode_Versioned(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	payload := encodeTx(t, buildTx(t, solana.MessageVersionV0, payer))

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, FormatVersioned, decoded.Format)
	assert.Equal(t, payer, decoded.Tx.Message.AccountKeys[0])
}

func TestDecode_LegacyFallback(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	payload := encodeTx(t, buildTx(t, solana.MessageVersionLegacy, payer))

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, FormatLegacy, decoded.Format)
}

func TestDecode_InvalidBase58(t *testing.T) {
	_, err := Decode("not-base58-!!!")
	assert.Error(t, err)
}

func TestDecode_GarbageBytes(t *testing.T) {
	_, err := Decode(base58.Encode([]byte{0xff, 0x01}))
	assert.Error(t, err)
}

// ─── Compute budget ──────────────────────────────────────────────────────────

func TestAttachComputeBudget_Versioned(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	decoded := &DecodedTx{Format: FormatVersioned, Tx: buildTx(t, solana.MessageVersionV0, payer)}

	require.NoError(t, decoded.AttachComputeBudget(ComputeUnitLimit))

	msg := decoded.Tx.Message
	require.Len(t, msg.Instructions, 2)
	budgetIx := msg.Instructions[1]
	assert.Equal(t, computebudget.ProgramID, msg.AccountKeys[budgetIx.ProgramIDIndex])

	data := []byte(budgetIx.Data)
	require.Len(t, data, 5)
	assert.EqualValues(t, 2, data[0], "set-compute-unit-limit discriminator")
	assert.Equal(t, ComputeUnitLimit, binary.LittleEndian.Uint32(data[1:]))
}

func TestAttachComputeBudget_GrowsReadonlyWindow(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	msg := solana.Message{
		Header: solana.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 2,
		},
		AccountKeys: []solana.PublicKey{
			payer,
			solana.TokenProgramID,
			solana.MemoProgramID,
		},
		RecentBlockhash: solana.Hash{1},
		Instructions: []solana.CompiledInstruction{
			{ProgramIDIndex: 2, Accounts: []uint16{1}, Data: solana.Base58("swap")},
		},
	}
	msg.SetVersion(solana.MessageVersionV0)
	decoded := &DecodedTx{Format: FormatVersioned, Tx: &solana.Transaction{
		Signatures: []solana.Signature{{}},
		Message:    msg,
	}}

	require.NoError(t, decoded.AttachComputeBudget(ComputeUnitLimit))

	m := decoded.Tx.Message
	assert.EqualValues(t, 3, m.Header.NumReadonlyUnsignedAccounts)
	windowStart := len(m.AccountKeys) - int(m.Header.NumReadonlyUnsignedAccounts)
	for i, key := range m.AccountKeys {
		if key.Equals(solana.TokenProgramID) || key.Equals(solana.MemoProgramID) {
			assert.GreaterOrEqual(t, i, windowStart, "program keys must stay in the readonly window")
		}
	}
	assert.Equal(t, computebudget.ProgramID, m.AccountKeys[len(m.AccountKeys)-1])
}

func TestAttachComputeBudget_RenumbersLookupResolvedAccounts(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	table := solana.NewWallet().PublicKey()
	msg := solana.Message{
		Header: solana.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []solana.PublicKey{payer, solana.MemoProgramID},
		RecentBlockhash: solana.Hash{1},
		Instructions: []solana.CompiledInstruction{
			// Indices 2 and 3 resolve through the lookup table (static length 2).
			{ProgramIDIndex: 1, Accounts: []uint16{0, 2, 3}, Data: solana.Base58("swap")},
		},
		AddressTableLookups: []solana.MessageAddressTableLookup{
			{AccountKey: table, WritableIndexes: []uint8{0}, ReadonlyIndexes: []uint8{1}},
		},
	}
	msg.SetVersion(solana.MessageVersionV0)
	decoded := &DecodedTx{Format: FormatVersioned, Tx: &solana.Transaction{
		Signatures: []solana.Signature{{}},
		Message:    msg,
	}}

	require.NoError(t, decoded.AttachComputeBudget(ComputeUnitLimit))

	m := decoded.Tx.Message
	swapIx := m.Instructions[0]
	assert.Equal(t, []uint16{0, 3, 4}, swapIx.Accounts, "lookup-resolved indices shift past the appended key")
	assert.EqualValues(t, 1, swapIx.ProgramIDIndex, "static program index is unchanged")

	budgetIx := m.Instructions[1]
	assert.EqualValues(t, 2, budgetIx.ProgramIDIndex, "program key lands at the old static length")
	assert.Equal(t, computebudget.ProgramID, m.AccountKeys[budgetIx.ProgramIDIndex])
}

func TestAttachComputeBudget_ReusesExistingProgramKey(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	tx := buildTx(t, solana.MessageVersionV0, payer)
	tx.Message.AccountKeys = append(tx.Message.AccountKeys, computebudget.ProgramID)
	decoded := &DecodedTx{Format: FormatVersioned, Tx: tx}

	require.NoError(t, decoded.AttachComputeBudget(ComputeUnitLimit))
	assert.Len(t, decoded.Tx.Message.AccountKeys, 3, "program key must not be duplicated")
}

func TestAttachComputeBudget_LegacyNoOp(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	decoded := &DecodedTx{Format: FormatLegacy, Tx: buildTx(t, solana.MessageVersionLegacy, payer)}

	require.NoError(t, decoded.AttachComputeBudget(ComputeUnitLimit))
	assert.Len(t, decoded.Tx.Message.Instructions, 1, "legacy payloads sign as-is")
}

// ─── Signing ─────────────────────────────────────────────────────────────────

func TestSign_Versioned(t *testing.T) {
	wallet := solana.NewWallet()
	payload := encodeTx(t, buildTx(t, solana.MessageVersionV0, wallet.PublicKey()))

	decoded, err := Decode(payload)
	require.NoError(t, err)

	decoded.SetBlockhash(solana.Hash{7})
	require.NoError(t, decoded.Sign(wallet.PrivateKey))

	require.Len(t, decoded.Tx.Signatures, 1)
	assert.NotEqual(t, solana.Signature{}, decoded.Tx.Signatures[0])
}

func TestSign_Legacy(t *testing.T) {
	wallet := solana.NewWallet()
	payload := encodeTx(t, buildTx(t, solana.MessageVersionLegacy, wallet.PublicKey()))

	decoded, err := Decode(payload)
	require.NoError(t, err)

	decoded.SetBlockhash(solana.Hash{7})
	require.NoError(t, decoded.Sign(wallet.PrivateKey))

	require.Len(t, decoded.Tx.Signatures, 1)
	assert.NotEqual(t, solana.Signature{}, decoded.Tx.Signatures[0])
}
