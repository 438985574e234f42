// internal/blockchain/metaplex/instruction.go
package metaplex

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	instructionTransfer = 49
	transferArgsV1      = 0
)

// TransferV1Accounts - аккаунты инструкции Transfer программы Token Metadata.
// Пустые необязательные аккаунты заменяются ID программы.
type TransferV1Accounts struct {
	Token                  solana.PublicKey
	TokenOwner             solana.PublicKey
	Destination            solana.PublicKey
	DestinationOwner       solana.PublicKey
	Mint                   solana.PublicKey
	Metadata               solana.PublicKey
	Edition                solana.PublicKey // optional
	OwnerTokenRecord       solana.PublicKey // optional
	DestinationTokenRecord solana.PublicKey // optional
	Authority              solana.PublicKey
	Payer                  solana.PublicKey
	AuthorizationRules     solana.PublicKey // optional
}

func orProgram(pk solana.PublicKey) solana.PublicKey {
	if pk.IsZero() {
		return TokenMetadataProgramID
	}
	return pk
}

// NewTransferV1Instruction собирает Transfer(TransferArgs::V1{amount, authorization_data: None}).
func NewTransferV1Instruction(accs TransferV1Accounts, amount uint64) (solana.Instruction, error) {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if err := enc.WriteUint8(instructionTransfer); err != nil {
		return nil, fmt.Errorf("encode discriminator: %w", err)
	}
	if err := enc.WriteUint8(transferArgsV1); err != nil {
		return nil, fmt.Errorf("encode args variant: %w", err)
	}
	if err := enc.WriteUint64(amount, bin.LE); err != nil {
		return nil, fmt.Errorf("encode amount: %w", err)
	}
	// authorization_data: None
	if err := enc.WriteUint8(0); err != nil {
		return nil, fmt.Errorf("encode authorization data: %w", err)
	}

	authRulesProgram := TokenMetadataProgramID
	if !accs.AuthorizationRules.IsZero() {
		authRulesProgram = AuthorizationRulesProgramID
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(accs.Token).WRITE(),
		solana.Meta(accs.TokenOwner),
		solana.Meta(accs.Destination).WRITE(),
		solana.Meta(accs.DestinationOwner),
		solana.Meta(accs.Mint),
		solana.Meta(accs.Metadata).WRITE(),
		solana.Meta(orProgram(accs.Edition)),
		optionalWritable(accs.OwnerTokenRecord),
		optionalWritable(accs.DestinationTokenRecord),
		solana.Meta(accs.Authority).SIGNER(),
		solana.Meta(accs.Payer).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarInstructionsPubkey),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(authRulesProgram),
		solana.Meta(orProgram(accs.AuthorizationRules)),
	}

	return solana.NewInstruction(TokenMetadataProgramID, metas, buf.Bytes()), nil
}

func optionalWritable(pk solana.PublicKey) *solana.AccountMeta {
	if pk.IsZero() {
		return solana.Meta(TokenMetadataProgramID)
	}
	return solana.Meta(pk).WRITE()
}
