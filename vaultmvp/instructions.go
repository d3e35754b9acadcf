package vaultmvp

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators, derived from the handler names the program
// exports.
var (
	ixInitializeFactory   = instructionDiscriminator("initialize_factory")
	ixCreateVault         = instructionDiscriminator("create_vault")
	ixUpdateFactoryFees   = instructionDiscriminator("update_factory_fees")
	ixUpdateFactoryAdmin  = instructionDiscriminator("update_factory_admin")
	ixCollectFees         = instructionDiscriminator("collect_weekly_management_fees")
	ixTransferVaultToUser = instructionDiscriminator("transfer_vault_to_user")
	ixGetAccruedFees      = instructionDiscriminator("get_accrued_management_fees")
	ixSetVaultPaused      = instructionDiscriminator("set_vault_paused")
)

// FactoryFeeParams are the global fee parameters shared by the initialize
// and update instructions.
type FactoryFeeParams struct {
	EntryFeeBps             uint16
	ExitFeeBps              uint16
	VaultCreationFeeUsdc    uint64
	MinManagementFeeBps     uint16
	MaxManagementFeeBps     uint16
	VaultCreatorFeeRatioBps uint16
	PlatformFeeRatioBps     uint16
}

// AssetPrice is the Borsh argument shape the program expects for live
// prices: mint plus micro-USD price.
type AssetPrice struct {
	MintAddress solana.PublicKey
	PriceUsd    uint64
}

// CollectFeesAccounts are the ordered accounts for fee collection. The
// order, writability and signers must match the program's context exactly;
// a deviation is rejected generically by the ledger, not with a descriptive
// error.
type CollectFeesAccounts struct {
	Collector            solana.PublicKey
	Factory              solana.PublicKey
	Vault                solana.PublicKey
	VaultStablecoin      solana.PublicKey
	VaultAdminStablecoin solana.PublicKey
	FeeRecipientStable   solana.PublicKey
}

// NewInitializeFactoryInstruction creates the one-time factory setup
// instruction.
func NewInitializeFactoryInstruction(
	params FactoryFeeParams,
	admin solana.PublicKey,
	factory solana.PublicKey,
	feeRecipient solana.PublicKey,
) (solana.Instruction, error) {
	data, err := encodeInstruction(ixInitializeFactory, params)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(admin).WRITE().SIGNER(),
		solana.Meta(factory).WRITE(),
		solana.Meta(feeRecipient),
		solana.Meta(solana.SystemProgramID),
	}, data), nil
}

// CreateVaultAccounts are the ordered accounts for vault creation. The
// vault index is taken from the factory's current count, so the vault,
// mint and token-account PDAs must be derived against that index.
type CreateVaultAccounts struct {
	Admin                  solana.PublicKey
	Factory                solana.PublicKey
	Vault                  solana.PublicKey
	VaultMint              solana.PublicKey
	VaultTokenAccount      solana.PublicKey
	StablecoinMint         solana.PublicKey
	AdminStablecoin        solana.PublicKey
	FactoryAdminStablecoin solana.PublicKey
}

// NewCreateVaultInstruction creates a vault with the given basket. The
// creation fee moves from the admin's stablecoin account to the factory
// admin's.
func NewCreateVaultInstruction(
	vaultName string,
	vaultSymbol string,
	underlyingAssets []UnderlyingAsset,
	managementFeeBps uint16,
	accounts CreateVaultAccounts,
) (solana.Instruction, error) {
	args := struct {
		VaultName        string
		VaultSymbol      string
		UnderlyingAssets []UnderlyingAsset
		ManagementFees   uint16
	}{vaultName, vaultSymbol, underlyingAssets, managementFeeBps}
	data, err := encodeInstruction(ixCreateVault, args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(accounts.Admin).WRITE().SIGNER(),
		solana.Meta(accounts.Factory).WRITE(),
		solana.Meta(accounts.Vault).WRITE(),
		solana.Meta(accounts.VaultMint).WRITE(),
		solana.Meta(accounts.VaultTokenAccount).WRITE(),
		solana.Meta(accounts.StablecoinMint),
		solana.Meta(accounts.AdminStablecoin).WRITE(),
		solana.Meta(accounts.FactoryAdminStablecoin).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}, data), nil
}

// NewUpdateFactoryFeesInstruction creates the admin-only fee update.
func NewUpdateFactoryFeesInstruction(
	params FactoryFeeParams,
	admin solana.PublicKey,
	factory solana.PublicKey,
) (solana.Instruction, error) {
	data, err := encodeInstruction(ixUpdateFactoryFees, params)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(admin).WRITE().SIGNER(),
		solana.Meta(factory).WRITE(),
	}, data), nil
}

// NewUpdateFactoryAdminInstruction rotates the factory admin. The new admin
// is passed as an account, not an argument.
func NewUpdateFactoryAdminInstruction(
	admin solana.PublicKey,
	factory solana.PublicKey,
	newAdmin solana.PublicKey,
) (solana.Instruction, error) {
	data, err := encodeInstruction(ixUpdateFactoryAdmin)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(admin).WRITE().SIGNER(),
		solana.Meta(factory).WRITE(),
		solana.Meta(newAdmin),
	}, data), nil
}

// NewCollectFeesInstruction creates the accrued-fee collection instruction.
// The split between vault creator and platform happens on-chain from the
// factory's configured ratios.
func NewCollectFeesInstruction(vaultIndex uint32, accounts CollectFeesAccounts) (solana.Instruction, error) {
	data, err := encodeInstruction(ixCollectFees, vaultIndex)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(accounts.Collector).WRITE().SIGNER(),
		solana.Meta(accounts.Factory),
		solana.Meta(accounts.Vault).WRITE(),
		solana.Meta(accounts.VaultStablecoin).WRITE(),
		solana.Meta(accounts.VaultAdminStablecoin).WRITE(),
		solana.Meta(accounts.FeeRecipientStable).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
	}, data), nil
}

// NewTransferVaultToUserInstruction moves reserve tokens from the vault to
// an authorized user account.
func NewTransferVaultToUserInstruction(
	vaultIndex uint32,
	amount uint64,
	user solana.PublicKey,
	factory solana.PublicKey,
	vault solana.PublicKey,
	vaultStablecoin solana.PublicKey,
	userStablecoin solana.PublicKey,
) (solana.Instruction, error) {
	args := struct {
		VaultIndex uint32
		Amount     uint64
	}{vaultIndex, amount}
	data, err := encodeInstruction(ixTransferVaultToUser, args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(user).WRITE().SIGNER(),
		solana.Meta(factory),
		solana.Meta(vault).WRITE(),
		solana.Meta(vaultStablecoin).WRITE(),
		solana.Meta(userStablecoin).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
	}, data), nil
}

// NewGetAccruedFeesInstruction creates the on-chain valuation snapshot
// instruction. assetAccounts are the vault's token accounts for every
// underlying asset, in exactly the basket's declared order; accounts that do
// not exist on-chain yet must still appear, and must be created before
// submission. There is no partial mode.
func NewGetAccruedFeesInstruction(
	vaultIndex uint32,
	prices []AssetPrice,
	factory solana.PublicKey,
	vault solana.PublicKey,
	vaultStablecoin solana.PublicKey,
	assetAccounts []solana.PublicKey,
) (solana.Instruction, error) {
	args := struct {
		VaultIndex  uint32
		AssetPrices []AssetPrice
	}{vaultIndex, prices}
	data, err := encodeInstruction(ixGetAccruedFees, args)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(factory),
		solana.Meta(vault).WRITE(),
		solana.Meta(vaultStablecoin),
	}
	for _, acc := range assetAccounts {
		metas = append(metas, solana.Meta(acc))
	}
	return solana.NewInstruction(ProgramID, metas, data), nil
}

// NewSetVaultPausedInstruction pauses or resumes a vault (factory admin
// only).
func NewSetVaultPausedInstruction(
	vaultIndex uint32,
	paused bool,
	admin solana.PublicKey,
	factory solana.PublicKey,
	vault solana.PublicKey,
) (solana.Instruction, error) {
	args := struct {
		VaultIndex uint32
		Paused     bool
	}{vaultIndex, paused}
	data, err := encodeInstruction(ixSetVaultPaused, args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(admin).WRITE().SIGNER(),
		solana.Meta(factory),
		solana.Meta(vault).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}, data), nil
}

// encodeInstruction serializes the 8-byte discriminator followed by the
// Borsh-encoded arguments in order.
func encodeInstruction(disc [8]byte, args ...interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)
	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("encoding instruction args: %w", err)
		}
	}
	return buf.Bytes(), nil
}
