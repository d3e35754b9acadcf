package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"vault-cli/vaultmvp"
)

var (
	vaultNameFlag   string
	vaultSymbolFlag string
	vaultAssetsFlag []string
	vaultFeeBpsFlag uint16
)

var createVaultCmd = &cobra.Command{
	Use:   "create-vault",
	Short: "Create a new vault with an underlying asset basket.",
	Long: `Creates a vault whose index is the factory's current vault count.
Each --asset takes the form <mint>:<bps>; the allocations must sum to
10000 basis points.`,
	Run: func(cmd *cobra.Command, args []string) {
		assets, err := parseAssetAllocations(vaultAssetsFlag)
		if err != nil {
			fail(err)
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission(fmt.Sprintf("Create vault %q (%s) with %d assets at %d bps management fee?",
			vaultNameFlag, vaultSymbolFlag, len(assets), vaultFeeBpsFlag)) {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.CreateVault(ctx, vaultNameFlag, vaultSymbolFlag, assets, vaultFeeBpsFlag, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

// parseAssetAllocations turns <mint>:<bps> pairs into a basket, checking the
// allocations sum to exactly 100%.
func parseAssetAllocations(specs []string) ([]vaultmvp.UnderlyingAsset, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --asset <mint>:<bps> is required")
	}
	assets := make([]vaultmvp.UnderlyingAsset, 0, len(specs))
	var total uint32
	for _, spec := range specs {
		sep := strings.LastIndex(spec, ":")
		if sep < 0 {
			return nil, fmt.Errorf("asset %q is not in <mint>:<bps> form", spec)
		}
		mint, err := solana.PublicKeyFromBase58(spec[:sep])
		if err != nil {
			return nil, fmt.Errorf("invalid asset mint in %q: %w", spec, err)
		}
		bps, err := strconv.ParseUint(spec[sep+1:], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation in %q: %w", spec, err)
		}
		assets = append(assets, vaultmvp.UnderlyingAsset{MintAddress: mint, MintBps: uint16(bps)})
		total += uint32(bps)
	}
	if total != vaultmvp.MaxBps {
		return nil, fmt.Errorf("allocations sum to %d bps, must be exactly %d", total, vaultmvp.MaxBps)
	}
	return assets, nil
}

var valuationCmd = &cobra.Command{
	Use:   "valuation <vault-index>",
	Short: "Compute a vault's gross/net asset value and accrued fees.",
	Long: `Runs the full read-side pipeline for one vault: derives its addresses,
reads and decodes its accounts, fetches live prices and computes the
valuation off-chain. Nothing is written on-chain.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vaultIndex, err := parseVaultIndex(args[0])
		if err != nil {
			fail(err)
		}

		client, err := newReadOnlyClient()
		if err != nil {
			fail(err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		snap, err := client.Valuation(ctx, vaultIndex)
		if err != nil {
			fail(err)
		}
		printSnapshot(snap)
	},
}

var collectFeesCmd = &cobra.Command{
	Use:   "collect-fees <vault-index>",
	Short: "Collect a vault's accrued management fees.",
	Long: `Sweeps the vault's accrued management fees out of its reserve account.
The on-chain program splits the amount between the vault creator and the
platform fee recipient at the factory's configured ratio.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vaultIndex, err := parseVaultIndex(args[0])
		if err != nil {
			fail(err)
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission(fmt.Sprintf("Collect accrued fees from vault %d?", vaultIndex)) {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.CollectFees(ctx, vaultIndex, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <vault-index> <amount>",
	Short: "Transfer reserve tokens from a vault to your stablecoin account.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		vaultIndex, err := parseVaultIndex(args[0])
		if err != nil {
			fail(err)
		}
		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fail(fmt.Errorf("invalid amount %q: %w", args[1], err))
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission(fmt.Sprintf("Transfer %d reserve base units out of vault %d?", amount, vaultIndex)) {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.TransferVaultToUser(ctx, vaultIndex, amount, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <vault-index>",
	Short: "Record a valuation snapshot on-chain with live prices.",
	Long: `Submits the program's own valuation instruction with freshly fetched
prices, so the accrual is computed and recorded by the ledger's integer
math rather than derived off-chain.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vaultIndex, err := parseVaultIndex(args[0])
		if err != nil {
			fail(err)
		}

		client, err := newClient()
		if err != nil {
			fail(err)
		}

		if !confirmSubmission(fmt.Sprintf("Record an on-chain valuation snapshot for vault %d? This updates its accrual state.", vaultIndex)) {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := client.SnapshotOnChain(ctx, vaultIndex, submitMode())
		if err != nil {
			fail(err)
		}
		printResult(result)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause <vault-index>",
	Short: "Pause a vault (factory admin only).",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetPaused(args[0], true)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <vault-index>",
	Short: "Resume a paused vault (factory admin only).",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSetPaused(args[0], false)
	},
}

var vaultInfoCmd = &cobra.Command{
	Use:   "vault-info <vault-index>",
	Short: "Show a vault's on-chain state.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vaultIndex, err := parseVaultIndex(args[0])
		if err != nil {
			fail(err)
		}

		client, err := newReadOnlyClient()
		if err != nil {
			fail(err)
		}

		ctx, cancel := commandContext()
		defer cancel()

		_, factoryAddr, err := client.FetchFactory(ctx)
		if err != nil {
			fail(err)
		}
		vault, vaultAddr, err := client.FetchVault(ctx, factoryAddr, vaultIndex)
		if err != nil {
			fail(err)
		}

		fmt.Println(titleStyle.Render(fmt.Sprintf("\n🗄  Vault %d: %s (%s)", vault.VaultIndex, vault.VaultName, vault.VaultSymbol)))
		fmt.Printf("   Address:          %s\n", vaultAddr)
		fmt.Printf("   State:            %s\n", vault.State)
		fmt.Printf("   Admin:            %s\n", vault.Admin)
		fmt.Printf("   Management fee:   %d bps\n", vault.ManagementFees)
		fmt.Printf("   Total assets:     %d\n", vault.TotalAssets)
		fmt.Printf("   Total supply:     %d\n", vault.TotalSupply)
		fmt.Printf("   Accrued fees:     %d (micro-USD)\n", vault.AccruedManagementFees)
		fmt.Printf("   Last accrual:     %d\n", vault.LastFeeAccrualTs)
		fmt.Println(promptStyle.Render("   Basket:"))
		for _, asset := range vault.UnderlyingAssets {
			fmt.Printf("     %s  %d bps\n", asset.MintAddress, asset.MintBps)
		}
	},
}

func runSetPaused(indexArg string, paused bool) {
	vaultIndex, err := parseVaultIndex(indexArg)
	if err != nil {
		fail(err)
	}

	client, err := newClient()
	if err != nil {
		fail(err)
	}

	verb := "Pause"
	if !paused {
		verb = "Resume"
	}
	if !confirmSubmission(fmt.Sprintf("%s vault %d?", verb, vaultIndex)) {
		return
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := client.SetVaultPaused(ctx, vaultIndex, paused, submitMode())
	if err != nil {
		fail(err)
	}
	printResult(result)
}

func parseVaultIndex(arg string) (uint32, error) {
	index, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid vault index %q: %w", arg, err)
	}
	return uint32(index), nil
}

func printSnapshot(snap *vaultmvp.ValuationSnapshot) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("\n📊 Vault %d Valuation", snap.VaultIndex)))
	fmt.Println(promptStyle.Render("   Holdings (micro-USD):"))
	for i, asset := range snap.Assets {
		label := "reserve"
		if i > 0 {
			label = asset.Mint.String()
		}
		fmt.Printf("     %-44s  amount=%d  price=%d  value=%d\n", label, asset.Amount, asset.PriceUsd, asset.ValueUsd)
	}
	fmt.Printf("   Gross asset value:  %s USD\n", formatMicroUsd(snap.GrossAssetValue))
	fmt.Printf("   Accrued fees:       %s USD (%s previously + %s new)\n",
		formatMicroUsd(snap.TotalAccrued), formatMicroUsd(snap.PreviouslyAccrued), formatMicroUsd(snap.NewlyAccrued))
	fmt.Printf("   Net asset value:    %s USD\n", formatMicroUsd(snap.NetAssetValue))
	fmt.Printf("   Management fee:     %d bps over %d s\n", snap.ManagementFeeBps, snap.ElapsedSeconds)
	if !snap.Actionable {
		fmt.Println(warningStyle.Render("   Vault is closed; figures are informational only."))
	}
}

// formatMicroUsd renders a micro-USD integer as a six-decimal USD string.
func formatMicroUsd(v uint64) string {
	return fmt.Sprintf("%d.%06d", v/vaultmvp.PriceScale, v%vaultmvp.PriceScale)
}

func init() {
	createVaultCmd.Flags().StringVar(&vaultNameFlag, "name", "", "Vault name")
	createVaultCmd.Flags().StringVar(&vaultSymbolFlag, "symbol", "", "Vault token symbol")
	createVaultCmd.Flags().StringArrayVar(&vaultAssetsFlag, "asset", nil, "Underlying asset as <mint>:<bps>, repeatable")
	createVaultCmd.Flags().Uint16Var(&vaultFeeBpsFlag, "mgmt-fee-bps", 0, "Management fee in basis points")
	createVaultCmd.MarkFlagRequired("name")
	createVaultCmd.MarkFlagRequired("symbol")
	createVaultCmd.MarkFlagRequired("asset")

	rootCmd.AddCommand(createVaultCmd, valuationCmd, collectFeesCmd, transferCmd, snapshotCmd, pauseCmd, resumeCmd, vaultInfoCmd)
}
