package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"

	"vault-cli/vaultmvp"
)

const (
	defaultRpcEndpoint  = "https://api.devnet.solana.com"
	defaultPriceFeedURL = "https://api.jup.ag/price/v2"
)

// loadConfig assembles the client configuration from flags and environment,
// with flags winning. Every command builds its own Config and hands it to
// the client explicitly.
func loadConfig() (vaultmvp.Config, error) {
	// Load .env file from the current directory.
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, using defaults.")
	}

	cfg := vaultmvp.Config{
		RpcEndpoint:  defaultRpcEndpoint,
		PriceFeedURL: defaultPriceFeedURL,
	}

	if endpoint := os.Getenv("RPC_ENDPOINT"); endpoint != "" {
		cfg.RpcEndpoint = endpoint
	}
	if heliusApiKey := os.Getenv("HELIUS_API_KEY"); heliusApiKey != "" {
		cfg.RpcEndpoint = fmt.Sprintf("https://devnet.helius-rpc.com/?api-key=%s", heliusApiKey)
		log.Println("Info: Using Helius RPC endpoint.")
	}
	if feedURL := os.Getenv("PRICE_FEED_URL"); feedURL != "" {
		cfg.PriceFeedURL = feedURL
	}
	if mintStr := os.Getenv("STABLECOIN_MINT"); mintStr != "" {
		mint, err := solana.PublicKeyFromBase58(mintStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid STABLECOIN_MINT %q: %w", mintStr, err)
		}
		cfg.StablecoinMint = mint
	}

	if rpcFlag != "" {
		cfg.RpcEndpoint = rpcFlag
	}
	if feedFlag != "" {
		cfg.PriceFeedURL = feedFlag
	}

	return cfg, nil
}
