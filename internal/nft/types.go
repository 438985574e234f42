// internal/nft/types.go
package nft

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/metaplex"
)

var ErrMetadataUnavailable = errors.New("metadata unavailable")

// Holding - токен-аккаунт, похожий на NFT (amount 1, decimals 0).
type Holding struct {
	Account solana.PublicKey
	Mint    solana.PublicKey
}

// Creator из off-chain JSON.
type Creator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}

type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// ExternalMetadata - JSON по адресу uri из on-chain метаданных.
type ExternalMetadata struct {
	Name                 string      `json:"name"`
	Symbol               string      `json:"symbol"`
	Description          string      `json:"description"`
	Image                string      `json:"image"`
	ExternalURL          string      `json:"external_url"`
	Edition              int         `json:"edition"`
	SellerFeeBasisPoints int         `json:"seller_fee_basis_points"`
	Attributes           []Attribute `json:"attributes"`
	Properties           struct {
		Category string    `json:"category"`
		Creators []Creator `json:"creators"`
	} `json:"properties"`
}

// NFT объединяет on-chain и off-chain данные одного mint.
type NFT struct {
	Mint     solana.PublicKey
	Onchain  *metaplex.Metadata
	External *ExternalMetadata
	// ImageURL - адрес картинки после NormalizeURI.
	ImageURL string
}

// Name предпочитает off-chain имя.
func (n NFT) Name() string {
	if n.External != nil && n.External.Name != "" {
		return n.External.Name
	}
	if n.Onchain != nil {
		return n.Onchain.Name
	}
	return ""
}
