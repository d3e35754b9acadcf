package vaultmvp

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const (
	defaultConfigDirName = ".config"
	cliConfigDirName     = "vault-cli"
	walletFileName       = "wallet.json"
)

// Wallet holds the Solana keypair the CLI signs with.
type Wallet struct {
	PrivateKey solana.PrivateKey
}

// PublicKey returns the public key of the wallet.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.PrivateKey.PublicKey()
}

// LoadOrCreateWallet loads the wallet from the default path, or creates a
// new one if it doesn't exist.
func LoadOrCreateWallet() (*Wallet, error) {
	walletPath, err := getWalletPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet path: %w", err)
	}

	if _, err := os.Stat(walletPath); os.IsNotExist(err) {
		fmt.Println("No existing wallet found. Creating a new one...")
		return createNewWallet(walletPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check for wallet file: %w", err)
	}

	return loadWalletFromFile(walletPath)
}

// LoadKeypairFile loads a wallet from a solana-keygen style JSON file.
func LoadKeypairFile(path string) (*Wallet, error) {
	privateKey, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", path, err)
	}
	return &Wallet{PrivateKey: privateKey}, nil
}

// ParsePrivateKey accepts a private key in any of the formats people paste:
// base58, hex, a JSON byte array, or comma-separated bytes. All normalize to
// the same 64-byte key.
func ParsePrivateKey(input string) (solana.PrivateKey, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty private key")
	}

	if strings.HasPrefix(input, "[") {
		var raw []byte
		if err := json.Unmarshal([]byte(input), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse private key as JSON array: %w", err)
		}
		return privateKeyFromBytes(raw)
	}

	if strings.Contains(input, ",") {
		parts := strings.Split(input, ",")
		raw := make([]byte, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if err != nil {
				return nil, fmt.Errorf("failed to parse private key byte %q: %w", part, err)
			}
			raw = append(raw, byte(n))
		}
		return privateKeyFromBytes(raw)
	}

	if raw, err := hex.DecodeString(strings.TrimPrefix(input, "0x")); err == nil && len(raw) == solana.PrivateKeyLength {
		return privateKeyFromBytes(raw)
	}

	raw, err := base58.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key as base58: %w", err)
	}
	return privateKeyFromBytes(raw)
}

func privateKeyFromBytes(raw []byte) (solana.PrivateKey, error) {
	if len(raw) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(raw))
	}
	return solana.PrivateKey(raw), nil
}

// createNewWallet generates a new private key and saves it to the specified path.
func createNewWallet(path string) (*Wallet, error) {
	wallet := &Wallet{PrivateKey: solana.NewWallet().PrivateKey}

	if err := saveWalletToFile(wallet, path); err != nil {
		return nil, fmt.Errorf("failed to save new wallet: %w", err)
	}

	fmt.Println("✅ New wallet created and saved successfully.")
	fmt.Println("   Address:", wallet.PublicKey().String())
	return wallet, nil
}

// loadWalletFromFile loads a private key from a solana-keygen style file.
func loadWalletFromFile(path string) (*Wallet, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet file: %w", err)
	}

	var privateKeyBytes []byte
	if err := json.Unmarshal(bytes, &privateKeyBytes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet file: %w", err)
	}

	privateKey, err := privateKeyFromBytes(privateKeyBytes)
	if err != nil {
		return nil, err
	}
	return &Wallet{PrivateKey: privateKey}, nil
}

// saveWalletToFile saves the wallet's private key to a file.
func saveWalletToFile(wallet *Wallet, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create wallet directory: %w", err)
	}

	// The private key is a slice of 64 bytes.
	bytes, err := json.Marshal(wallet.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := os.WriteFile(path, bytes, 0600); err != nil {
		return fmt.Errorf("failed to write wallet file: %w", err)
	}

	return nil
}

// getWalletPath returns the default absolute path for the wallet file,
// e.g. /home/user/.config/vault-cli/wallet.json.
func getWalletPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, defaultConfigDirName, cliConfigDirName, walletFileName), nil
}
