package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"vault-cli/storage"
	"vault-cli/vaultmvp"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage signing profiles in the local keyring.",
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles and their addresses.",
	Run: func(cmd *cobra.Command, args []string) {
		kr, err := storage.Open()
		if err != nil {
			fail(err)
		}
		names, err := kr.Names()
		if err != nil {
			fail(err)
		}
		if len(names) == 0 {
			fmt.Println(promptStyle.Render("No profiles stored yet. Use 'wallet import' or 'wallet new'."))
			return
		}

		fmt.Println(titleStyle.Render("\n🔑 Stored Profiles"))
		for _, name := range names {
			profile, err := kr.GetProfile(name)
			if err != nil {
				fail(err)
			}
			key := solana.PrivateKey(profile.PrivateKey)
			fmt.Printf("   %-16s %s\n", name, key.PublicKey())
		}
	},
}

var walletNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Generate a new keypair and store it under a profile name.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kr, err := storage.Open()
		if err != nil {
			fail(err)
		}

		newWallet := solana.NewWallet()
		if err := kr.SaveProfile(args[0], newWallet.PrivateKey); err != nil {
			fail(fmt.Errorf("failed to save profile: %w", err))
		}

		fmt.Println(titleStyle.Render("\n✅ Profile Created!"))
		fmt.Printf("   Name:    %s\n", args[0])
		fmt.Printf("   Address: %s\n", newWallet.PublicKey())
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import an existing private key into the keyring.",
	Long: `Prompts for a private key and stores it under the given profile name.
Accepted formats: base58, hex, a JSON byte array, or comma-separated bytes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		keyInput := ""
		prompt := &survey.Password{Message: "Paste the private key:"}
		if err := survey.AskOne(prompt, &keyInput, survey.WithValidator(survey.Required)); err != nil {
			fail(err)
		}

		privateKey, err := vaultmvp.ParsePrivateKey(keyInput)
		if err != nil {
			fail(err)
		}

		kr, err := storage.Open()
		if err != nil {
			fail(err)
		}
		if err := kr.SaveProfile(args[0], privateKey); err != nil {
			fail(fmt.Errorf("failed to save profile: %w", err))
		}

		fmt.Println(titleStyle.Render("\n✅ Profile Imported!"))
		fmt.Printf("   Name:    %s\n", args[0])
		fmt.Printf("   Address: %s\n", privateKey.PublicKey())
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's address.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kr, err := storage.Open()
		if err != nil {
			fail(err)
		}
		profile, err := kr.GetProfile(args[0])
		if err != nil {
			fail(err)
		}
		key := solana.PrivateKey(profile.PrivateKey)
		fmt.Println(titleStyle.Render("\n🔑 " + profile.Name))
		fmt.Println("   " + key.PublicKey().String())
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a profile's private key (UNSAFE).",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(warningStyle.Render("\n⚠️ WARNING: EXPORTING YOUR PRIVATE KEY ⚠️"))
		fmt.Println(promptStyle.Render("Sharing your private key can result in the permanent loss of your funds."))
		confirm := false
		prompt := &survey.Confirm{Message: "Are you absolutely sure?", Default: false}
		survey.AskOne(prompt, &confirm)
		if !confirm {
			fmt.Println(promptStyle.Render("\nExport cancelled."))
			return
		}

		kr, err := storage.Open()
		if err != nil {
			fail(err)
		}
		profile, err := kr.GetProfile(args[0])
		if err != nil {
			fail(err)
		}
		key := solana.PrivateKey(profile.PrivateKey)
		fmt.Println(titleStyle.Render("\n🔐 Your Private Key (Base58):"))
		fmt.Println(key.String())
	},
}

var walletDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a profile from the keyring.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete profile %q? The key is not recoverable unless backed up.", args[0]),
			Default: false,
		}
		survey.AskOne(prompt, &confirm)
		if !confirm {
			fmt.Println(promptStyle.Render("\nCancelled."))
			return
		}

		kr, err := storage.Open()
		if err != nil {
			fail(err)
		}
		if err := kr.DeleteProfile(args[0]); err != nil {
			fail(err)
		}
		fmt.Println(titleStyle.Render("\n✅ Profile Deleted."))
	},
}

func init() {
	walletCmd.AddCommand(walletListCmd, walletNewCmd, walletImportCmd, walletShowCmd, walletExportCmd, walletDeleteCmd)
	rootCmd.AddCommand(walletCmd)
}
