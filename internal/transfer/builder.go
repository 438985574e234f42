// internal/transfer/builder.go
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/computebudget"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/metaplex"
)

const lamportsPerSOL = 1_000_000_000

var (
	// ErrAssetNotFound возникает, когда запись NFT не найдена или не читается.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidAmount возникает при неположительной или слишком большой сумме.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Builder превращает намерение перевода в список инструкций. Только чтение из сети.
type Builder struct {
	client blockchain.Client
	budget computebudget.Config
	logger *zap.Logger
}

// Option настраивает Builder.
type Option func(*Builder)

// WithComputeBudget добавляет инструкции compute budget в начало каждого перевода.
func WithComputeBudget(cfg computebudget.Config) Option {
	return func(b *Builder) {
		b.budget = cfg
	}
}

func NewBuilder(client blockchain.Client, logger *zap.Logger, opts ...Option) *Builder {
	b := &Builder{
		client: client,
		logger: logger.Named("transfer-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// toBaseUnits переводит amount в целые единицы с округлением.
func toBaseUnits(amount float64, decimals uint8) (uint64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	units := math.Round(amount * math.Pow10(int(decimals)))
	if units < 1 || units >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return uint64(units), nil
}

func (b *Builder) prelude(budget computebudget.Config) ([]solana.Instruction, error) {
	if budget.IsZero() {
		return nil, nil
	}
	return budget.Instructions()
}

// Native строит перевод SOL: одна инструкция на amount * 10^9 лампортов.
func (b *Builder) Native(from, to solana.PublicKey, amount float64) ([]solana.Instruction, error) {
	lamports, err := toBaseUnits(amount, 9)
	if err != nil {
		return nil, err
	}

	ixs, err := b.prelude(b.budget)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, system.NewTransferInstruction(lamports, from, to).Build())

	b.logger.Debug("Native transfer built",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint64("lamports", lamports))
	return ixs, nil
}

// Fungible строит перевод SPL токена, создавая ATA получателя при необходимости.
func (b *Builder) Fungible(ctx context.Context, from, to, mint solana.PublicKey, amount float64) ([]solana.Instruction, error) {
	if math.IsNaN(amount) || amount <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	supply, err := b.client.GetTokenSupply(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("get token supply: %w", err)
	}
	units, err := toBaseUnits(amount, supply.Decimals)
	if err != nil {
		return nil, err
	}

	source, _, err := solana.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return nil, fmt.Errorf("sender ATA: %w", err)
	}
	destination, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return nil, fmt.Errorf("recipient ATA: %w", err)
	}

	ixs, err := b.prelude(b.budget)
	if err != nil {
		return nil, err
	}

	create, err := b.createATAIfMissing(ctx, from, to, mint, destination)
	if err != nil {
		return nil, err
	}
	if create != nil {
		ixs = append(ixs, create)
	}

	ixs = append(ixs, token.NewTransferCheckedInstruction(
		units,
		supply.Decimals,
		source,
		mint,
		destination,
		from,
		nil,
	).Build())

	b.logger.Debug("Fungible transfer built",
		zap.String("mint", mint.String()),
		zap.Uint64("amount", units),
		zap.Bool("create_ata", create != nil))
	return ixs, nil
}

// createATAIfMissing возвращает инструкцию создания ATA или nil, если аккаунт уже существует.
func (b *Builder) createATAIfMissing(ctx context.Context, payer, owner, mint, ata solana.PublicKey) (solana.Instruction, error) {
	_, err := b.client.GetAccountInfo(ctx, ata)
	switch {
	case err == nil:
		return nil, nil
	case errors.Is(err, blockchain.ErrAccountNotFound):
		return associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build(), nil
	default:
		return nil, fmt.Errorf("get recipient account: %w", err)
	}
}

// NonFungible строит перевод NFT. pNFT переводятся через Token Metadata с rule set,
// обычные NFT - простым SPL переводом одной единицы.
func (b *Builder) NonFungible(ctx context.Context, owner, to, mint solana.PublicKey) ([]solana.Instruction, error) {
	md, err := b.fetchMetadata(ctx, mint)
	if err != nil {
		return nil, err
	}

	source, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("sender ATA: %w", err)
	}
	destination, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return nil, fmt.Errorf("recipient ATA: %w", err)
	}

	if md.IsProgrammable() {
		return b.programmableTransfer(owner, to, mint, source, destination, md)
	}

	ixs, err := b.prelude(b.budget)
	if err != nil {
		return nil, err
	}
	create, err := b.createATAIfMissing(ctx, owner, to, mint, destination)
	if err != nil {
		return nil, err
	}
	if create != nil {
		ixs = append(ixs, create)
	}
	ixs = append(ixs, token.NewTransferInstruction(1, source, destination, owner, nil).Build())

	b.logger.Debug("NFT transfer built",
		zap.String("mint", mint.String()),
		zap.String("name", md.Name))
	return ixs, nil
}

func (b *Builder) fetchMetadata(ctx context.Context, mint solana.PublicKey) (*metaplex.Metadata, error) {
	addr, err := metaplex.MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	info, err := b.client.GetAccountInfo(ctx, addr)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, mint)
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata account: %w", err)
	}
	if info.Value == nil || info.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, mint)
	}
	md, err := metaplex.DecodeMetadata(info.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}
	return md, nil
}

func (b *Builder) programmableTransfer(owner, to, mint, source, destination solana.PublicKey, md *metaplex.Metadata) ([]solana.Instruction, error) {
	metadataAddr, err := metaplex.MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	edition, err := metaplex.MasterEditionAddress(mint)
	if err != nil {
		return nil, err
	}
	ownerRecord, err := metaplex.TokenRecordAddress(mint, source)
	if err != nil {
		return nil, err
	}
	destRecord, err := metaplex.TokenRecordAddress(mint, destination)
	if err != nil {
		return nil, err
	}

	accs := metaplex.TransferV1Accounts{
		Token:                  source,
		TokenOwner:             owner,
		Destination:            destination,
		DestinationOwner:       to,
		Mint:                   mint,
		Metadata:               metadataAddr,
		Edition:                edition,
		OwnerTokenRecord:       ownerRecord,
		DestinationTokenRecord: destRecord,
		Authority:              owner,
		Payer:                  owner,
	}
	if md.RuleSet != nil {
		accs.AuthorizationRules = *md.RuleSet
	}

	budget := b.budget
	if budget.Units == 0 {
		budget.Units = computebudget.ProgrammableUnits
	}
	ixs, err := b.prelude(budget)
	if err != nil {
		return nil, err
	}

	ix, err := metaplex.NewTransferV1Instruction(accs, 1)
	if err != nil {
		return nil, fmt.Errorf("build pNFT transfer: %w", err)
	}
	ixs = append(ixs, ix)

	b.logger.Debug("pNFT transfer built",
		zap.String("mint", mint.String()),
		zap.Bool("rule_set", md.RuleSet != nil))
	return ixs, nil
}
