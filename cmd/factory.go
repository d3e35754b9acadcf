package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"vault-cli/vaultmvp"
)

var (
	entryFeeBps          uint16
	exitFeeBps           uint16
	vaultCreationFeeUsdc uint64
	minManagementFeeBps  uint16
	maxManagementFeeBps  uint16
	creatorFeeRatioBps   uint16
	platformFeeRatioBps  uint16
	feeRecipientStr      string
)

var factoryInfoCmd = &cobra.Command{
	Use:   "factory-info",
	Short: "Show the factory's configuration and state.",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newReadOnlyClient()
		if err != nil {
			fail(err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		factory, factoryAddr, err := client.FetchFactory(ctx)
		if err != nil {
			fail(err)
		}

		fmt.Println(titleStyle.Render("\n🏭 Factory"))
		fmt.Printf("   Address:        %s\n", factoryAddr)
		fmt.Printf("   Layout:         v%d\n", factory.Layout)
		fmt.Printf("   State:          %d\n", factory.State)
		fmt.Printf("   Admin:          %s\n", factory.Admin)
		fmt.Printf("   Fee recipient:  %s\n", factory.FeeRecipient)
		fmt.Printf("   Vault count:    %d\n", factory.VaultCount)
		fmt.Printf("   Entry fee:      %d bps\n", factory.EntryFeeBps)
		fmt.Printf("   Exit fee:       %d bps\n", factory.ExitFeeBps)
		fmt.Printf("   Creation fee:   %d (USDC base units)\n", factory.VaultCreationFeeUsdc)
		fmt.Printf("   Mgmt fee range: %d-%d bps\n", factory.MinManagementFeeBps, factory.MaxManagementFeeBps)
		fmt.Printf("   Fee split:      creator %d / platform %d bps\n", factory.VaultCreatorFeeRatioBps, factory.PlatformFeeRatioBps)
	},
}

var initFactoryCmd = &cobra.Command{
	Use:   "init-factory",
	Short: "Initialize the factory (one-time setup).",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := feeParamsFromFlags()
		if err != nil {
			fail(err)
		}
		feeRecipient, err := solana.PublicKeyFromBase58(feeRecipientStr)
		if err != nil {
			fail(fmt.Errorf("invalid fee recipient address: %w", err))
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission(fmt.Sprintf("Initialize the factory with admin %s?", client.Signer.PublicKey())) {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.InitializeFactory(ctx, params, feeRecipient, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

var updateFeesCmd = &cobra.Command{
	Use:   "update-fees",
	Short: "Update the factory's global fee parameters (admin only).",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := feeParamsFromFlags()
		if err != nil {
			fail(err)
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission("Update the factory fee parameters?") {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.UpdateFactoryFees(ctx, params, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

var updateAdminCmd = &cobra.Command{
	Use:   "update-admin <new-admin>",
	Short: "Rotate the factory admin to a new address (admin only).",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		newAdmin, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			fail(fmt.Errorf("invalid new admin address: %w", err))
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission(fmt.Sprintf("Hand factory admin over to %s? This cannot be undone by the old key.", newAdmin)) {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.UpdateFactoryAdmin(ctx, newAdmin, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

// feeParamsFromFlags validates the fee flags into the instruction argument
// struct. The program enforces the same bounds on-chain; checking here just
// saves a doomed transaction.
func feeParamsFromFlags() (vaultmvp.FactoryFeeParams, error) {
	params := vaultmvp.FactoryFeeParams{
		EntryFeeBps:             entryFeeBps,
		ExitFeeBps:              exitFeeBps,
		VaultCreationFeeUsdc:    vaultCreationFeeUsdc,
		MinManagementFeeBps:     minManagementFeeBps,
		MaxManagementFeeBps:     maxManagementFeeBps,
		VaultCreatorFeeRatioBps: creatorFeeRatioBps,
		PlatformFeeRatioBps:     platformFeeRatioBps,
	}
	if params.MinManagementFeeBps > params.MaxManagementFeeBps {
		return params, fmt.Errorf("min management fee (%d bps) exceeds max (%d bps)", params.MinManagementFeeBps, params.MaxManagementFeeBps)
	}
	if params.MaxManagementFeeBps > vaultmvp.MaxBps {
		return params, fmt.Errorf("max management fee %d bps exceeds %d", params.MaxManagementFeeBps, vaultmvp.MaxBps)
	}
	if total := uint32(params.VaultCreatorFeeRatioBps) + uint32(params.PlatformFeeRatioBps); total != vaultmvp.MaxBps {
		return params, fmt.Errorf("fee split must sum to %d bps, got %d", vaultmvp.MaxBps, total)
	}
	return params, nil
}

// confirmSubmission asks before anything is broadcast. Simulations skip the
// prompt since nothing moves.
func confirmSubmission(message string) bool {
	if simulateFlag {
		return true
	}
	confirm := false
	prompt := &survey.Confirm{Message: message, Default: false}
	survey.AskOne(prompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nCancelled."))
	}
	return confirm
}

func addFeeFlags(cmd *cobra.Command) {
	cmd.Flags().Uint16Var(&entryFeeBps, "entry-fee-bps", 0, "entry fee in basis points")
	cmd.Flags().Uint16Var(&exitFeeBps, "exit-fee-bps", 0, "exit fee in basis points")
	cmd.Flags().Uint64Var(&vaultCreationFeeUsdc, "creation-fee", 0, "vault creation fee in USDC base units")
	cmd.Flags().Uint16Var(&minManagementFeeBps, "min-mgmt-fee-bps", 0, "minimum management fee in basis points")
	cmd.Flags().Uint16Var(&maxManagementFeeBps, "max-mgmt-fee-bps", 200, "maximum management fee in basis points")
	cmd.Flags().Uint16Var(&creatorFeeRatioBps, "creator-ratio-bps", 7000, "vault creator's share of collected fees in basis points")
	cmd.Flags().Uint16Var(&platformFeeRatioBps, "platform-ratio-bps", 3000, "platform's share of collected fees in basis points")
}

func init() {
	addFeeFlags(initFactoryCmd)
	initFactoryCmd.Flags().StringVar(&feeRecipientStr, "fee-recipient", "", "platform fee recipient address")
	initFactoryCmd.MarkFlagRequired("fee-recipient")
	addFeeFlags(updateFeesCmd)

	rootCmd.AddCommand(factoryInfoCmd, initFactoryCmd, updateFeesCmd, updateAdminCmd)
}
