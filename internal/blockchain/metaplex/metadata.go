// internal/blockchain/metaplex/metadata.go
package metaplex

import (
	"errors"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrInvalidMetadata возникает, когда данные аккаунта не похожи на Metadata.
var ErrInvalidMetadata = errors.New("invalid metadata account")

const keyMetadataV1 = 4

// TokenStandard соответствует перечислению Token Metadata.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
	TokenStandardProgrammableNonFungibleEdition
)

type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

// Metadata - декодированный аккаунт метаданных.
type Metadata struct {
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	RuleSet              *solana.PublicKey
}

// IsProgrammable сообщает, является ли токен pNFT.
func (m *Metadata) IsProgrammable() bool {
	if m.TokenStandard == nil {
		return false
	}
	return *m.TokenStandard == TokenStandardProgrammableNonFungible ||
		*m.TokenStandard == TokenStandardProgrammableNonFungibleEdition
}

// DecodeMetadata разбирает borsh данные аккаунта метаданных.
// Поля после is_mutable необязательны: старые аккаунты их не содержат.
func DecodeMetadata(data []byte) (*Metadata, error) {
	dec := bin.NewBorshDecoder(data)

	key, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if key != keyMetadataV1 {
		return nil, fmt.Errorf("%w: unexpected key %d", ErrInvalidMetadata, key)
	}

	md := &Metadata{}
	if md.UpdateAuthority, err = readPublicKey(dec); err != nil {
		return nil, fmt.Errorf("%w: update authority: %v", ErrInvalidMetadata, err)
	}
	if md.Mint, err = readPublicKey(dec); err != nil {
		return nil, fmt.Errorf("%w: mint: %v", ErrInvalidMetadata, err)
	}
	if md.Name, err = readString(dec); err != nil {
		return nil, fmt.Errorf("%w: name: %v", ErrInvalidMetadata, err)
	}
	if md.Symbol, err = readString(dec); err != nil {
		return nil, fmt.Errorf("%w: symbol: %v", ErrInvalidMetadata, err)
	}
	if md.URI, err = readString(dec); err != nil {
		return nil, fmt.Errorf("%w: uri: %v", ErrInvalidMetadata, err)
	}
	if md.SellerFeeBasisPoints, err = dec.ReadUint16(bin.LE); err != nil {
		return nil, fmt.Errorf("%w: seller fee: %v", ErrInvalidMetadata, err)
	}
	if md.Creators, err = readCreators(dec); err != nil {
		return nil, fmt.Errorf("%w: creators: %v", ErrInvalidMetadata, err)
	}
	if md.PrimarySaleHappened, err = dec.ReadBool(); err != nil {
		return nil, fmt.Errorf("%w: primary sale: %v", ErrInvalidMetadata, err)
	}
	if md.IsMutable, err = dec.ReadBool(); err != nil {
		return nil, fmt.Errorf("%w: is mutable: %v", ErrInvalidMetadata, err)
	}

	// Хвост разбираем без ошибок: обрезанный аккаунт просто заканчивается раньше.
	decodeOptionalTail(dec, md)
	return md, nil
}

func decodeOptionalTail(dec *bin.Decoder, md *Metadata) {
	if ok, v := readOptionU8(dec); ok {
		md.EditionNonce = v
	} else {
		return
	}

	if ok, v := readOptionU8(dec); ok {
		if v != nil {
			ts := TokenStandard(*v)
			md.TokenStandard = &ts
		}
	} else {
		return
	}

	// collection: Option<{verified bool, key Pubkey}>
	present, ok := readOptionTag(dec)
	if !ok {
		return
	}
	if present {
		verified, err := dec.ReadBool()
		if err != nil {
			return
		}
		k, err := readPublicKey(dec)
		if err != nil {
			return
		}
		md.Collection = &Collection{Verified: verified, Key: k}
	}

	// uses: Option<{use_method u8, remaining u64, total u64}>
	present, ok = readOptionTag(dec)
	if !ok {
		return
	}
	if present {
		if _, err := dec.ReadNBytes(1 + 8 + 8); err != nil {
			return
		}
	}

	// collection_details: Option<enum { V1{size u64}, V2{padding [8]u8} }>
	present, ok = readOptionTag(dec)
	if !ok {
		return
	}
	if present {
		if _, err := dec.ReadNBytes(1 + 8); err != nil {
			return
		}
	}

	// programmable_config: Option<enum { V1{rule_set Option<Pubkey>} }>
	present, ok = readOptionTag(dec)
	if !ok || !present {
		return
	}
	if _, err := dec.ReadUint8(); err != nil {
		return
	}
	present, ok = readOptionTag(dec)
	if !ok || !present {
		return
	}
	if rs, err := readPublicKey(dec); err == nil {
		md.RuleSet = &rs
	}
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	b, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b), nil
}

// readString читает borsh строку (u32 длина) и убирает NUL-паддинг.
func readString(dec *bin.Decoder) (string, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", err
	}
	if int(n) > dec.Remaining() {
		return "", fmt.Errorf("string length %d exceeds remaining %d", n, dec.Remaining())
	}
	b, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

func readCreators(dec *bin.Decoder) ([]Creator, error) {
	present, err := dec.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if int(n)*(solana.PublicKeyLength+2) > dec.Remaining() {
		return nil, fmt.Errorf("creators count %d exceeds data", n)
	}
	creators := make([]Creator, 0, n)
	for i := uint32(0); i < n; i++ {
		addr, err := readPublicKey(dec)
		if err != nil {
			return nil, err
		}
		verified, err := dec.ReadBool()
		if err != nil {
			return nil, err
		}
		share, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		creators = append(creators, Creator{Address: addr, Verified: verified, Share: share})
	}
	return creators, nil
}

// readOptionTag возвращает (present, ok). ok=false, если данные кончились.
func readOptionTag(dec *bin.Decoder) (bool, bool) {
	if dec.Remaining() < 1 {
		return false, false
	}
	tag, err := dec.ReadUint8()
	if err != nil {
		return false, false
	}
	return tag == 1, true
}

func readOptionU8(dec *bin.Decoder) (bool, *uint8) {
	present, ok := readOptionTag(dec)
	if !ok {
		return false, nil
	}
	if !present {
		return true, nil
	}
	v, err := dec.ReadUint8()
	if err != nil {
		return false, nil
	}
	return true, &v
}
