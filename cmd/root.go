package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"vault-cli/storage"
	"vault-cli/vaultmvp"
)

var (
	rpcFlag      string
	feedFlag     string
	keypairFlag  string
	profileFlag  string
	simulateFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "vault-cli",
	Short: "vault-cli manages on-chain investment vaults.",
	Long:  `A command-line interface to inspect vault valuations, collect management fees and administer the vault factory.`,
	Run: func(cmd *cobra.Command, args []string) {
		myFigure := figure.NewFigure("VAULT", "larry3d", true)
		fmt.Println(titleStyle.Render(myFigure.String()))
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC endpoint (overrides RPC_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&feedFlag, "price-feed", "", "price feed URL (overrides PRICE_FEED_URL)")
	rootCmd.PersistentFlags().StringVar(&keypairFlag, "keypair", "", "path to a solana-keygen keypair file")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "named keyring profile to sign with")
	rootCmd.PersistentFlags().BoolVar(&simulateFlag, "simulate", false, "simulate instead of broadcasting")
}

// submitMode maps the --simulate flag onto the client's submit mode.
func submitMode() vaultmvp.SubmitMode {
	if simulateFlag {
		return vaultmvp.ModeSimulate
	}
	return vaultmvp.ModeCommit
}

// resolveSigner picks the signing key: an explicit keypair file wins, then a
// keyring profile, then the default wallet (created on first use).
func resolveSigner() (solana.PrivateKey, error) {
	if keypairFlag != "" {
		wallet, err := vaultmvp.LoadKeypairFile(keypairFlag)
		if err != nil {
			return nil, err
		}
		return wallet.PrivateKey, nil
	}

	if profileFlag != "" {
		kr, err := storage.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open keyring: %w", err)
		}
		profile, err := kr.GetProfile(profileFlag)
		if err != nil {
			return nil, err
		}
		return solana.PrivateKey(profile.PrivateKey), nil
	}

	wallet, err := vaultmvp.LoadOrCreateWallet()
	if err != nil {
		return nil, err
	}
	return wallet.PrivateKey, nil
}

// newClient builds a signing client from flags and environment.
func newClient() (*vaultmvp.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	signer, err := resolveSigner()
	if err != nil {
		return nil, err
	}
	client := vaultmvp.NewClient(cfg, signer)
	client.Logf = logStep
	return client, nil
}

// newReadOnlyClient builds a client for commands that never sign.
func newReadOnlyClient() (*vaultmvp.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client := vaultmvp.NewReadOnlyClient(cfg)
	client.Logf = logStep
	return client, nil
}

// logStep prints the pipeline step the client is executing, so a failed run
// shows exactly how far it got.
func logStep(format string, args ...interface{}) {
	fmt.Println(infoStyle.Render(fmt.Sprintf("   "+format, args...)))
}

// commandContext returns the context commands run under. Submission waits on
// confirmations, so the deadline is generous.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 90*time.Second)
}

// printResult reports the outcome of a submission in either mode.
func printResult(result *vaultmvp.SubmitResult) {
	if result.Mode == vaultmvp.ModeSimulate {
		fmt.Println(titleStyle.Render("\n✅ Simulation Passed!"))
		for _, line := range result.Logs {
			fmt.Println(promptStyle.Render("   " + line))
		}
		return
	}
	fmt.Println(titleStyle.Render("\n✅ Transaction Confirmed!"))
	fmt.Printf("   Transaction Signature: %s\n", result.Signature.String())
}

// fail prints the error and exits non-zero. Commands abort on the first
// failed step; there is no partial result to salvage.
func fail(err error) {
	fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf("\n❌ %v", err)))
	os.Exit(1)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
