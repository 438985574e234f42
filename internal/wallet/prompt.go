// internal/wallet/prompt.go
package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// PromptAdapter - терминальный кошелёк: показывает сводку и спрашивает подтверждение.
type PromptAdapter struct {
	keypair *Keypair
	in      *bufio.Reader
	out     io.Writer
}

var _ Adapter = (*PromptAdapter)(nil)

func NewPromptAdapter(keypair *Keypair, in io.Reader, out io.Writer) *PromptAdapter {
	return &PromptAdapter{
		keypair: keypair,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

func (p *PromptAdapter) Connected() bool {
	return p.keypair != nil
}

func (p *PromptAdapter) PublicKey() solana.PublicKey {
	return p.keypair.PublicKey()
}

func (p *PromptAdapter) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if len(tx.Message.AccountKeys) > 0 {
		fmt.Fprintf(p.out, "\nFee payer:    %s\n", tx.Message.AccountKeys[0])
	}
	fmt.Fprintf(p.out, "Instructions: %d\n", len(tx.Message.Instructions))
	fmt.Fprintf(p.out, "Blockhash:    %s\n", tx.Message.RecentBlockhash)
	fmt.Fprint(p.out, "Approve transaction? [y/N]: ")

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer != "y" && answer != "yes" {
		return nil, nil
	}

	signed := *tx
	signed.Signatures = nil
	if err := p.keypair.SignTransaction(ctx, &signed); err != nil {
		return nil, err
	}
	return &signed, nil
}
