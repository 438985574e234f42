package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cryptothud/solana-next-typescript-starter/internal/app"
	"github.com/cryptothud/solana-next-typescript-starter/internal/blockchain/solbc/transaction"
	"github.com/cryptothud/solana-next-typescript-starter/internal/config"
	"github.com/cryptothud/solana-next-typescript-starter/internal/export"
	"github.com/cryptothud/solana-next-typescript-starter/internal/logger"
	"github.com/cryptothud/solana-next-typescript-starter/internal/nft"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
	"github.com/cryptothud/solana-next-typescript-starter/internal/transfer"
	"github.com/cryptothud/solana-next-typescript-starter/internal/utils"
	"github.com/cryptothud/solana-next-typescript-starter/internal/wallet"
)

type submitter interface {
	Submit(ctx context.Context, req transaction.Request) (*transaction.Result, error)
}

type options struct {
	configPath  string
	walletName  string
	v0          bool
	interactive bool

	in  io.Reader
	out io.Writer
}

// env - всё, что нужно одной команде. Закрывается через close.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	app     *app.App
	signer  transaction.Signer
	builder *transfer.Builder
	engine  submitter
	journal storage.Journal
}

func (o *options) setup(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.v0 {
		cfg.TxFormat = string(transaction.FormatV0)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Debug = cfg.DebugLogging
	logCfg.Pretty = true
	log := logger.New(logCfg)

	name, kp, err := app.SelectWallet(cfg.WalletsFile, o.walletName)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}

	a, err := app.New(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, app: a}

	if err := a.ConnectAMQP(); err != nil {
		log.Warn("AMQP sink disabled", zap.Error(err))
	}
	journal, err := a.OpenJournal(ctx)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("journal: %w", err)
	}

	var signer transaction.Signer = kp
	if o.interactive {
		signer = wallet.NewAdapterSigner(wallet.NewPromptAdapter(kp, o.in, o.out))
	}
	e.signer = signer
	e.builder = transfer.NewBuilder(a.Client, log.Logger, transfer.WithComputeBudget(a.ComputeBudget()))
	e.engine = a.NewEngine(journal)
	e.journal = journal

	log.Info("Wallet selected",
		zap.String("wallet", name),
		zap.String("address", utils.ShortenAddress(kp.PublicKey().String())))
	return e, nil
}

func (e *env) close() {
	if err := e.app.Close(context.Background()); err != nil {
		e.log.Error("Shutdown failed", zap.Error(err))
	}
	_ = e.log.Sync()
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	o := &options{in: in, out: out}

	root := &cobra.Command{
		Use:           "transfer",
		Short:         "Build and submit Solana transfers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetIn(in)

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "configs/config.yaml", "path to config file")
	flags.StringVar(&o.walletName, "wallet", "", "wallet name from wallets file (default: first)")
	flags.BoolVar(&o.v0, "v0", false, "send versioned (v0) transactions")
	flags.BoolVar(&o.interactive, "interactive", false, "ask for confirmation before signing")

	root.AddCommand(
		newSOLCmd(o),
		newSPLCmd(o),
		newNFTCmd(o),
		newBalanceCmd(o),
		newNFTsCmd(o),
		newHistoryCmd(o),
	)
	return root
}

func newSOLCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sol <recipient> <amount>",
		Short: "Send SOL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseKey("recipient", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return o.run(cmd.Context(), "send-sol", func(ctx context.Context, e *env) ([]solana.Instruction, error) {
				return e.builder.Native(e.signer.PublicKey(), to, amount)
			})
		},
	}
}

func newSPLCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "spl <mint> <recipient> <amount>",
		Short: "Send fungible SPL tokens",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			to, err := parseKey("recipient", args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return o.run(cmd.Context(), "send-spl", func(ctx context.Context, e *env) ([]solana.Instruction, error) {
				return e.builder.Fungible(ctx, e.signer.PublicKey(), to, mint, amount)
			})
		},
	}
}

func newNFTCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nft <mint> <recipient>",
		Short: "Transfer an NFT (programmable NFTs included)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			to, err := parseKey("recipient", args[1])
			if err != nil {
				return err
			}
			return o.run(cmd.Context(), "transfer-nft", func(ctx context.Context, e *env) ([]solana.Instruction, error) {
				return e.builder.NonFungible(ctx, e.signer.PublicKey(), to, mint)
			})
		},
	}
}

func newBalanceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show SOL balance (default: selected wallet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			owner, err := ownerFromArgs(args, e.signer)
			if err != nil {
				return err
			}
			sol, err := nft.SOLBalance(cmd.Context(), e.app.Client, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(o.out, "%s: %.2f SOL\n", utils.ShortenAddress(owner.String()), sol)
			return nil
		},
	}
}

func newNFTsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nfts [address]",
		Short: "List NFTs held by a wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			owner, err := ownerFromArgs(args, e.signer)
			if err != nil {
				return err
			}
			collector, err := e.app.NewCollector()
			if err != nil {
				return err
			}
			nfts, err := collector.Collect(cmd.Context(), owner)
			if err != nil {
				return err
			}
			printNFTs(o.out, nfts)
			return nil
		},
	}
}

type historyFlags struct {
	limit  int
	format string
	output string
	label  string
	status string
}

func newHistoryCmd(o *options) *cobra.Command {
	f := &historyFlags{}
	cmd := &cobra.Command{
		Use:   "history [address]",
		Short: "Show or export the transaction journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var format export.Format
			if f.format != "" {
				var err error
				if format, err = export.ParseFormat(f.format); err != nil {
					return err
				}
			}
			if f.limit <= 0 {
				return fmt.Errorf("invalid limit %d", f.limit)
			}

			e, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			owner, err := ownerFromArgs(args, e.signer)
			if err != nil {
				return err
			}
			return history(cmd.Context(), e.journal, owner, format, f, e.log.Logger, o.out)
		},
	}
	cmd.Flags().IntVar(&f.limit, "limit", 50, "max records to read")
	cmd.Flags().StringVar(&f.format, "format", "", "export format: csv or json (default: table)")
	cmd.Flags().StringVar(&f.output, "output", "", "write the export into this directory instead of stdout")
	cmd.Flags().StringVar(&f.label, "label", "", "filter by label (send-sol, send-spl, transfer-nft)")
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status")
	return cmd
}

func history(ctx context.Context, journal storage.Journal, owner solana.PublicKey, format export.Format,
	f *historyFlags, log *zap.Logger, out io.Writer) error {
	txs, err := journal.List(ctx, owner.String(), f.limit, 0)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	exporter := export.NewJournalExporter(log)
	opts := export.Options{Format: format, Label: f.label, Status: f.status, OutputDir: f.output}

	switch {
	case format == "":
		filtered := exporter.Filter(txs, opts)
		if len(filtered) == 0 {
			fmt.Fprintln(out, "No transactions recorded")
			return nil
		}
		for _, tx := range filtered {
			fmt.Fprintf(out, "%s  %-12s  %-17s  %d attempt(s)  %s\n",
				tx.CreatedAt.Format(time.DateTime), tx.Label, tx.Status, tx.Attempts, tx.Signature)
		}
		return nil
	case f.output != "":
		path, err := exporter.ExportToDir(txs, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported to %s\n", path)
		return nil
	default:
		_, err := exporter.Export(out, txs, opts)
		return err
	}
}

type buildFunc func(ctx context.Context, e *env) ([]solana.Instruction, error)

func (o *options) run(ctx context.Context, label string, build buildFunc) error {
	e, err := o.setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	return submit(ctx, e, label, build, o.out)
}

// submit строит инструкции и отправляет их через движок.
func submit(ctx context.Context, e *env, label string, build buildFunc, out io.Writer) error {
	instructions, err := build(ctx, e)
	if err != nil {
		return fmt.Errorf("build %s: %w", label, err)
	}

	result, err := e.engine.Submit(ctx, transaction.Request{
		Instructions: instructions,
		Signer:       e.signer,
		Label:        label,
	})
	if err != nil {
		if result != nil && len(result.Attempts) > 0 {
			fmt.Fprintf(out, "Transaction not confirmed after %d attempt(s)\n", len(result.Attempts))
		}
		return err
	}
	fmt.Fprintf(out, "Transaction %s: %s (%d attempt(s), %s)\n",
		result.Status, result.Signature, len(result.Attempts), result.Duration.Round(time.Millisecond))
	return nil
}

func printNFTs(out io.Writer, nfts []nft.NFT) {
	if len(nfts) == 0 {
		fmt.Fprintln(out, "No NFTs found")
		return
	}
	for _, n := range nfts {
		fmt.Fprintf(out, "%s  %s", utils.ShortenAddress(n.Mint.String()), n.Name())
		if n.ImageURL != "" {
			fmt.Fprintf(out, "  %s", n.ImageURL)
		}
		fmt.Fprintln(out)
	}
}

func ownerFromArgs(args []string, signer transaction.Signer) (solana.PublicKey, error) {
	if len(args) == 0 {
		return signer.PublicKey(), nil
	}
	return parseKey("address", args[0])
}

func parseKey(name, s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return key, nil
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %s", transfer.ErrInvalidAmount, s)
	}
	return amount, nil
}
