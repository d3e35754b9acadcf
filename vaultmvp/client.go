package vaultmvp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// DefaultStablecoinMint is USDC, the reserve asset vaults settle in.
var DefaultStablecoinMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

// Config carries the endpoints a command needs injected. Commands never
// reach for package-level state.
type Config struct {
	RpcEndpoint    string
	PriceFeedURL   string
	StablecoinMint solana.PublicKey
}

// Client talks to the vault program on behalf of one signer.
type Client struct {
	Rpc    *rpc.Client
	Signer solana.PrivateKey
	Oracle *OracleClient
	Config Config

	// Logf reports the pipeline step currently running, so a failure can be
	// attributed to derive, read, decode, price, compute, build or submit.
	// Nil disables step logging.
	Logf func(format string, args ...interface{})
}

// NewClient creates a client with a signer for transaction-submitting
// commands.
func NewClient(cfg Config, signer solana.PrivateKey) *Client {
	if cfg.StablecoinMint.IsZero() {
		cfg.StablecoinMint = DefaultStablecoinMint
	}
	return &Client{
		Rpc:    rpc.New(cfg.RpcEndpoint),
		Signer: signer,
		Oracle: NewOracleClient(cfg.PriceFeedURL, nil),
		Config: cfg,
	}
}

// NewReadOnlyClient creates a client for read-only commands. A throwaway
// keypair stands in as the signer so simulate paths still work.
func NewReadOnlyClient(cfg Config) *Client {
	return NewClient(cfg, solana.NewWallet().PrivateKey)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// FetchFactory locates, reads and decodes the singleton factory account.
func (c *Client) FetchFactory(ctx context.Context) (*Factory, solana.PublicKey, error) {
	c.logf("step: derive factory address")
	factoryAddr, _, err := FindFactoryAddress()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	c.logf("step: read factory account %s", factoryAddr)
	data, err := c.fetchAccountData(ctx, factoryAddr)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("factory: %w", err)
	}

	c.logf("step: decode factory account (%d bytes)", len(data))
	factory, err := DecodeFactory(data)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return factory, factoryAddr, nil
}

// FetchVault locates, reads and decodes the vault at the given index.
func (c *Client) FetchVault(ctx context.Context, factoryAddr solana.PublicKey, vaultIndex uint32) (*Vault, solana.PublicKey, error) {
	c.logf("step: derive vault address for index %d", vaultIndex)
	vaultAddr, _, err := FindVaultAddress(factoryAddr, vaultIndex)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	c.logf("step: read vault account %s", vaultAddr)
	data, err := c.fetchAccountData(ctx, vaultAddr)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("vault %d: %w", vaultIndex, err)
	}

	c.logf("step: decode vault account (%d bytes)", len(data))
	vault, err := DecodeVault(data)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return vault, vaultAddr, nil
}

func (c *Client) fetchAccountData(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	resp, err := c.Rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if err == rpc.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
		}
		return nil, fmt.Errorf("failed to get account info for %s: %w", addr, err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return resp.Value.Data.GetBinary(), nil
}

// TokenBalance returns the amount and decimals of a token account. A missing
// account reads as a zero balance, since vault asset accounts are created
// lazily on first deposit.
func (c *Client) TokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, uint8, error) {
	balance, err := c.Rpc.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentConfirmed)
	if err != nil {
		if err == rpc.ErrNotFound || strings.Contains(err.Error(), "could not find account") {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to get token balance for %s: %w", tokenAccount, err)
	}
	if balance.Value == nil {
		return 0, 0, nil
	}
	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse token amount for %s: %w", tokenAccount, err)
	}
	return amount, balance.Value.Decimals, nil
}

// VaultAssetAccounts derives the vault's associated token account for every
// underlying asset, in the basket's declared order.
func (c *Client) VaultAssetAccounts(vault *Vault, vaultAddr solana.PublicKey) ([]solana.PublicKey, error) {
	accounts := make([]solana.PublicKey, 0, len(vault.UnderlyingAssets))
	for _, asset := range vault.UnderlyingAssets {
		ata, _, err := FindAssetTokenAddress(vaultAddr, asset.MintAddress)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, ata)
	}
	return accounts, nil
}

// Valuation runs the whole read-side pipeline for one vault: derive, read,
// decode, price, compute. The timestamp is taken once up front so the
// computation itself stays deterministic.
func (c *Client) Valuation(ctx context.Context, vaultIndex uint32) (*ValuationSnapshot, error) {
	factory, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}
	vault, vaultAddr, err := c.FetchVault(ctx, factoryAddr, vaultIndex)
	if err != nil {
		return nil, err
	}

	c.logf("step: read reserve balance")
	reserveAddr, _, err := FindVaultStablecoinAddress(vaultAddr)
	if err != nil {
		return nil, err
	}
	reserveBalance, _, err := c.TokenBalance(ctx, reserveAddr)
	if err != nil {
		return nil, err
	}

	c.logf("step: read %d asset balances", len(vault.UnderlyingAssets))
	assetAccounts, err := c.VaultAssetAccounts(vault, vaultAddr)
	if err != nil {
		return nil, err
	}
	balances := make([]AssetBalance, 0, len(assetAccounts))
	for i, acc := range assetAccounts {
		amount, decimals, err := c.TokenBalance(ctx, acc)
		if err != nil {
			return nil, err
		}
		balances = append(balances, AssetBalance{
			Mint:     vault.UnderlyingAssets[i].MintAddress,
			Amount:   amount,
			Decimals: decimals,
		})
	}

	c.logf("step: fetch prices for %d assets", len(vault.UnderlyingAssets))
	prices, err := c.fetchBasketPrices(ctx, vault)
	if err != nil {
		return nil, err
	}

	c.logf("step: compute valuation")
	return ComputeValuation(vault, factory, reserveBalance, balances, prices, time.Now().Unix())
}

// CollectFees drives fee collection for one vault end to end. In simulate
// mode nothing moves; in commit mode the split lands in the creator's and
// platform's stablecoin accounts.
func (c *Client) CollectFees(ctx context.Context, vaultIndex uint32, mode SubmitMode) (*SubmitResult, error) {
	factory, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}
	vault, vaultAddr, err := c.FetchVault(ctx, factoryAddr, vaultIndex)
	if err != nil {
		return nil, err
	}
	if vault.State == VaultClosed {
		return nil, fmt.Errorf("vault %d is closed: %w", vaultIndex, ErrStaleState)
	}

	c.logf("step: derive fee collection accounts")
	vaultStablecoin, _, err := FindVaultStablecoinAddress(vaultAddr)
	if err != nil {
		return nil, err
	}
	adminStablecoin, _, err := FindAssetTokenAddress(vault.Admin, c.Config.StablecoinMint)
	if err != nil {
		return nil, err
	}
	recipientStablecoin, _, err := FindAssetTokenAddress(factory.FeeRecipient, c.Config.StablecoinMint)
	if err != nil {
		return nil, err
	}

	c.logf("step: build collect-fees instruction")
	instruction, err := NewCollectFeesInstruction(vaultIndex, CollectFeesAccounts{
		Collector:            c.Signer.PublicKey(),
		Factory:              factoryAddr,
		Vault:                vaultAddr,
		VaultStablecoin:      vaultStablecoin,
		VaultAdminStablecoin: adminStablecoin,
		FeeRecipientStable:   recipientStablecoin,
	})
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// TransferVaultToUser drives a reserve-token transfer from the vault to the
// signer's stablecoin account.
func (c *Client) TransferVaultToUser(ctx context.Context, vaultIndex uint32, amount uint64, mode SubmitMode) (*SubmitResult, error) {
	_, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}
	vault, vaultAddr, err := c.FetchVault(ctx, factoryAddr, vaultIndex)
	if err != nil {
		return nil, err
	}
	if vault.State != VaultActive {
		return nil, fmt.Errorf("vault %d is %s, transfers require an active vault", vaultIndex, vault.State)
	}

	c.logf("step: derive transfer accounts")
	vaultStablecoin, _, err := FindVaultStablecoinAddress(vaultAddr)
	if err != nil {
		return nil, err
	}
	userStablecoin, _, err := FindAssetTokenAddress(c.Signer.PublicKey(), c.Config.StablecoinMint)
	if err != nil {
		return nil, err
	}

	c.logf("step: build transfer instruction")
	instruction, err := NewTransferVaultToUserInstruction(
		vaultIndex, amount,
		c.Signer.PublicKey(), factoryAddr, vaultAddr, vaultStablecoin, userStablecoin,
	)
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// InitializeFactory drives the one-time factory setup.
func (c *Client) InitializeFactory(ctx context.Context, params FactoryFeeParams, feeRecipient solana.PublicKey, mode SubmitMode) (*SubmitResult, error) {
	c.logf("step: derive factory address")
	factoryAddr, _, err := FindFactoryAddress()
	if err != nil {
		return nil, err
	}

	c.logf("step: build initialize-factory instruction")
	instruction, err := NewInitializeFactoryInstruction(params, c.Signer.PublicKey(), factoryAddr, feeRecipient)
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// CreateVault drives vault creation. The new vault takes the factory's
// current vault count as its index; its PDAs are derived against that index
// before submission.
func (c *Client) CreateVault(ctx context.Context, vaultName, vaultSymbol string, assets []UnderlyingAsset, managementFeeBps uint16, mode SubmitMode) (*SubmitResult, error) {
	factory, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}

	c.logf("step: derive vault accounts for index %d", factory.VaultCount)
	vaultAddr, _, err := FindVaultAddress(factoryAddr, factory.VaultCount)
	if err != nil {
		return nil, err
	}
	vaultMint, _, err := FindVaultMintAddress(vaultAddr)
	if err != nil {
		return nil, err
	}
	vaultTokenAccount, _, err := FindVaultTokenAccountAddress(vaultAddr)
	if err != nil {
		return nil, err
	}
	adminStablecoin, _, err := FindAssetTokenAddress(c.Signer.PublicKey(), c.Config.StablecoinMint)
	if err != nil {
		return nil, err
	}
	factoryAdminStablecoin, _, err := FindAssetTokenAddress(factory.Admin, c.Config.StablecoinMint)
	if err != nil {
		return nil, err
	}

	c.logf("step: build create-vault instruction")
	instruction, err := NewCreateVaultInstruction(vaultName, vaultSymbol, assets, managementFeeBps, CreateVaultAccounts{
		Admin:                  c.Signer.PublicKey(),
		Factory:                factoryAddr,
		Vault:                  vaultAddr,
		VaultMint:              vaultMint,
		VaultTokenAccount:      vaultTokenAccount,
		StablecoinMint:         c.Config.StablecoinMint,
		AdminStablecoin:        adminStablecoin,
		FactoryAdminStablecoin: factoryAdminStablecoin,
	})
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// UpdateFactoryFees drives the admin-only global fee update.
func (c *Client) UpdateFactoryFees(ctx context.Context, params FactoryFeeParams, mode SubmitMode) (*SubmitResult, error) {
	_, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}

	c.logf("step: build update-fees instruction")
	instruction, err := NewUpdateFactoryFeesInstruction(params, c.Signer.PublicKey(), factoryAddr)
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// UpdateFactoryAdmin rotates the factory admin to a new identity.
func (c *Client) UpdateFactoryAdmin(ctx context.Context, newAdmin solana.PublicKey, mode SubmitMode) (*SubmitResult, error) {
	_, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}

	c.logf("step: build update-admin instruction")
	instruction, err := NewUpdateFactoryAdminInstruction(c.Signer.PublicKey(), factoryAddr, newAdmin)
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// SetVaultPaused pauses or resumes a vault.
func (c *Client) SetVaultPaused(ctx context.Context, vaultIndex uint32, paused bool, mode SubmitMode) (*SubmitResult, error) {
	_, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}
	_, vaultAddr, err := c.FetchVault(ctx, factoryAddr, vaultIndex)
	if err != nil {
		return nil, err
	}

	c.logf("step: build set-vault-paused instruction")
	instruction, err := NewSetVaultPausedInstruction(vaultIndex, paused, c.Signer.PublicKey(), factoryAddr, vaultAddr)
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// SnapshotOnChain submits the program's own valuation instruction with live
// prices, so the ledger's integer math produces and records the accrual.
// Every basket asset's account rides along in declared order, existing or
// not.
func (c *Client) SnapshotOnChain(ctx context.Context, vaultIndex uint32, mode SubmitMode) (*SubmitResult, error) {
	_, factoryAddr, err := c.FetchFactory(ctx)
	if err != nil {
		return nil, err
	}
	vault, vaultAddr, err := c.FetchVault(ctx, factoryAddr, vaultIndex)
	if err != nil {
		return nil, err
	}

	c.logf("step: fetch prices for %d assets", len(vault.UnderlyingAssets))
	prices, err := c.fetchBasketPrices(ctx, vault)
	if err != nil {
		return nil, err
	}
	assetPrices := make([]AssetPrice, 0, len(vault.UnderlyingAssets))
	for _, asset := range vault.UnderlyingAssets {
		assetPrices = append(assetPrices, AssetPrice{
			MintAddress: asset.MintAddress,
			PriceUsd:    prices[asset.MintAddress],
		})
	}

	c.logf("step: derive snapshot accounts")
	vaultStablecoin, _, err := FindVaultStablecoinAddress(vaultAddr)
	if err != nil {
		return nil, err
	}
	assetAccounts, err := c.VaultAssetAccounts(vault, vaultAddr)
	if err != nil {
		return nil, err
	}

	c.logf("step: build snapshot instruction")
	instruction, err := NewGetAccruedFeesInstruction(
		vaultIndex, assetPrices, factoryAddr, vaultAddr, vaultStablecoin, assetAccounts,
	)
	if err != nil {
		return nil, err
	}

	c.logf("step: submit (%s)", mode)
	return c.Submit(ctx, mode, instruction)
}

// fetchBasketPrices quotes every basket mint and rekeys the result by mint.
func (c *Client) fetchBasketPrices(ctx context.Context, vault *Vault) (map[solana.PublicKey]uint64, error) {
	ids := make([]string, 0, len(vault.UnderlyingAssets))
	for _, asset := range vault.UnderlyingAssets {
		ids = append(ids, asset.MintAddress.String())
	}
	quoted, err := c.Oracle.FetchPrices(ctx, ids)
	if err != nil {
		return nil, err
	}
	prices := make(map[solana.PublicKey]uint64, len(quoted))
	for _, asset := range vault.UnderlyingAssets {
		prices[asset.MintAddress] = quoted[asset.MintAddress.String()]
	}
	return prices, nil
}
