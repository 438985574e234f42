// internal/blockchain/metaplex/pda.go
package metaplex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// TokenMetadataProgramID - программа Metaplex Token Metadata
	TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	// AuthorizationRulesProgramID - программа правил для pNFT
	AuthorizationRulesProgramID = solana.MustPublicKeyFromBase58("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg")
)

var (
	seedMetadata    = []byte("metadata")
	seedEdition     = []byte("edition")
	seedTokenRecord = []byte("token_record")
)

// MetadataAddress возвращает PDA аккаунта метаданных для mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		seedMetadata,
		TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
	}, TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("metadata PDA: %w", err)
	}
	return addr, nil
}

// MasterEditionAddress возвращает PDA master edition для mint.
func MasterEditionAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		seedMetadata,
		TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
		seedEdition,
	}, TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("edition PDA: %w", err)
	}
	return addr, nil
}

// TokenRecordAddress возвращает PDA token record для пары mint + токен-аккаунт.
func TokenRecordAddress(mint, tokenAccount solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		seedMetadata,
		TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
		seedTokenRecord,
		tokenAccount.Bytes(),
	}, TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("token record PDA: %w", err)
	}
	return addr, nil
}
