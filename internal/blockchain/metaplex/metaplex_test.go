package metaplex

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metadataFixture struct {
	authority, mint solana.PublicKey
	creator         solana.PublicKey
	name, uri       string
	standard        *uint8
	ruleSet         *solana.PublicKey
	truncate        bool
}

func borshString(buf *bytes.Buffer, s string, padTo int) {
	b := []byte(s)
	if padTo > len(b) {
		b = append(b, make([]byte, padTo-len(b))...)
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}

func (f metadataFixture) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte(keyMetadataV1)
	buf.Write(f.authority.Bytes())
	buf.Write(f.mint.Bytes())
	borshString(&buf, f.name, 32)
	borshString(&buf, "APE", 10)
	borshString(&buf, f.uri, 200)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(500))
	// creators: Some([creator])
	buf.WriteByte(1)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(1))
	buf.Write(f.creator.Bytes())
	buf.WriteByte(1)
	buf.WriteByte(100)
	buf.WriteByte(1) // primary sale
	buf.WriteByte(1) // mutable
	if f.truncate {
		return buf.Bytes()
	}
	// edition nonce: Some(254)
	buf.WriteByte(1)
	buf.WriteByte(254)
	if f.standard != nil {
		buf.WriteByte(1)
		buf.WriteByte(*f.standard)
	} else {
		buf.WriteByte(0)
	}
	buf.WriteByte(0) // collection
	buf.WriteByte(0) // uses
	buf.WriteByte(0) // collection details
	if f.ruleSet != nil {
		buf.WriteByte(1) // programmable config
		buf.WriteByte(0) // V1
		buf.WriteByte(1)
		buf.Write(f.ruleSet.Bytes())
	} else {
		buf.WriteByte(0)
	}
	// zero padding, как у реальных аккаунтов
	buf.Write(make([]byte, 64))
	return buf.Bytes()
}

func TestDecodeMetadata_Programmable(t *testing.T) {
	pnft := uint8(TokenStandardProgrammableNonFungible)
	ruleSet := solana.NewWallet().PublicKey()
	f := metadataFixture{
		authority: solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
		creator:   solana.NewWallet().PublicKey(),
		name:      "Ape #1",
		uri:       "https://arweave.net/abc",
		standard:  &pnft,
		ruleSet:   &ruleSet,
	}

	md, err := DecodeMetadata(f.bytes())
	require.NoError(t, err)
	assert.Equal(t, f.authority, md.UpdateAuthority)
	assert.Equal(t, f.mint, md.Mint)
	assert.Equal(t, "Ape #1", md.Name)
	assert.Equal(t, "APE", md.Symbol)
	assert.Equal(t, "https://arweave.net/abc", md.URI)
	assert.Equal(t, uint16(500), md.SellerFeeBasisPoints)
	require.Len(t, md.Creators, 1)
	assert.Equal(t, f.creator, md.Creators[0].Address)
	assert.True(t, md.IsProgrammable())
	require.NotNil(t, md.RuleSet)
	assert.Equal(t, ruleSet, *md.RuleSet)
	require.NotNil(t, md.EditionNonce)
	assert.Equal(t, uint8(254), *md.EditionNonce)
}

func TestDecodeMetadata_LegacyTruncated(t *testing.T) {
	f := metadataFixture{
		authority: solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
		creator:   solana.NewWallet().PublicKey(),
		name:      "Old",
		uri:       "ipfs://x",
		truncate:  true,
	}

	md, err := DecodeMetadata(f.bytes())
	require.NoError(t, err)
	assert.Equal(t, "Old", md.Name)
	assert.False(t, md.IsProgrammable())
	assert.Nil(t, md.TokenStandard)
	assert.Nil(t, md.RuleSet)
}

func TestDecodeMetadata_Invalid(t *testing.T) {
	_, err := DecodeMetadata(nil)
	assert.ErrorIs(t, err, ErrInvalidMetadata)

	_, err = DecodeMetadata([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestPDAs(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	tokenAccount := solana.NewWallet().PublicKey()

	md, err := MetadataAddress(mint)
	require.NoError(t, err)
	edition, err := MasterEditionAddress(mint)
	require.NoError(t, err)
	record, err := TokenRecordAddress(mint, tokenAccount)
	require.NoError(t, err)

	assert.NotEqual(t, md, edition)
	assert.NotEqual(t, edition, record)

	again, err := MetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, md, again)
}

func TestNewTransferV1Instruction(t *testing.T) {
	accs := TransferV1Accounts{
		Token:            solana.NewWallet().PublicKey(),
		TokenOwner:       solana.NewWallet().PublicKey(),
		Destination:      solana.NewWallet().PublicKey(),
		DestinationOwner: solana.NewWallet().PublicKey(),
		Mint:             solana.NewWallet().PublicKey(),
		Metadata:         solana.NewWallet().PublicKey(),
		Authority:        solana.NewWallet().PublicKey(),
		Payer:            solana.NewWallet().PublicKey(),
	}

	ix, err := NewTransferV1Instruction(accs, 1)
	require.NoError(t, err)
	assert.Equal(t, TokenMetadataProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{49, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0}, data)

	metas := ix.Accounts()
	require.Len(t, metas, 17)
	assert.Equal(t, TokenMetadataProgramID, metas[6].PublicKey, "edition placeholder")
	assert.Equal(t, TokenMetadataProgramID, metas[15].PublicKey, "auth rules program placeholder")
	assert.True(t, metas[9].IsSigner)
	assert.True(t, metas[10].IsSigner)
	assert.True(t, metas[10].IsWritable)

	rules := solana.NewWallet().PublicKey()
	accs.AuthorizationRules = rules
	ix, err = NewTransferV1Instruction(accs, 1)
	require.NoError(t, err)
	metas = ix.Accounts()
	assert.Equal(t, AuthorizationRulesProgramID, metas[15].PublicKey)
	assert.Equal(t, rules, metas[16].PublicKey)
}
