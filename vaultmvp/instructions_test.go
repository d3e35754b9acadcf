package vaultmvp

import (
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instructionData(t *testing.T, inst solana.Instruction) []byte {
	t.Helper()
	data, err := inst.Data()
	require.NoError(t, err)
	return data
}

func TestNewCollectFeesInstruction(t *testing.T) {
	accounts := CollectFeesAccounts{
		Collector:            solana.NewWallet().PublicKey(),
		Factory:              solana.NewWallet().PublicKey(),
		Vault:                solana.NewWallet().PublicKey(),
		VaultStablecoin:      solana.NewWallet().PublicKey(),
		VaultAdminStablecoin: solana.NewWallet().PublicKey(),
		FeeRecipientStable:   solana.NewWallet().PublicKey(),
	}

	inst, err := NewCollectFeesInstruction(9, accounts)
	require.NoError(t, err)
	assert.Equal(t, ProgramID, inst.ProgramID())

	metas := inst.Accounts()
	require.Len(t, metas, 8)
	assert.Equal(t, accounts.Collector, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.True(t, metas[0].IsWritable)
	assert.Equal(t, accounts.Factory, metas[1].PublicKey)
	assert.False(t, metas[1].IsWritable)
	assert.Equal(t, accounts.Vault, metas[2].PublicKey)
	assert.True(t, metas[2].IsWritable)
	assert.Equal(t, accounts.VaultStablecoin, metas[3].PublicKey)
	assert.True(t, metas[3].IsWritable)
	assert.Equal(t, accounts.VaultAdminStablecoin, metas[4].PublicKey)
	assert.True(t, metas[4].IsWritable)
	assert.Equal(t, accounts.FeeRecipientStable, metas[5].PublicKey)
	assert.True(t, metas[5].IsWritable)
	assert.Equal(t, solana.TokenProgramID, metas[6].PublicKey)
	assert.Equal(t, solana.SystemProgramID, metas[7].PublicKey)

	data := instructionData(t, inst)
	require.Len(t, data, 12)
	assert.Equal(t, ixCollectFees[:], data[:8])
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(data[8:]))
}

func TestNewTransferVaultToUserInstruction(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	inst, err := NewTransferVaultToUserInstruction(
		2, 1_500_000,
		user,
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	)
	require.NoError(t, err)

	metas := inst.Accounts()
	require.Len(t, metas, 7)
	assert.Equal(t, user, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)

	data := instructionData(t, inst)
	require.Len(t, data, 20)
	assert.Equal(t, ixTransferVaultToUser[:], data[:8])
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, uint64(1_500_000), binary.LittleEndian.Uint64(data[12:]))
}

func TestNewGetAccruedFeesInstruction(t *testing.T) {
	factory := solana.NewWallet().PublicKey()
	vault := solana.NewWallet().PublicKey()
	stablecoin := solana.NewWallet().PublicKey()

	prices := []AssetPrice{
		{MintAddress: solana.NewWallet().PublicKey(), PriceUsd: 100_000_000},
		{MintAddress: solana.NewWallet().PublicKey(), PriceUsd: 50_000_000},
	}
	assetAccounts := []solana.PublicKey{
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	}

	inst, err := NewGetAccruedFeesInstruction(3, prices, factory, vault, stablecoin, assetAccounts)
	require.NoError(t, err)

	// Fixed accounts first, then one meta per basket asset in declared
	// order.
	metas := inst.Accounts()
	require.Len(t, metas, 5)
	assert.Equal(t, factory, metas[0].PublicKey)
	assert.Equal(t, vault, metas[1].PublicKey)
	assert.True(t, metas[1].IsWritable)
	assert.Equal(t, stablecoin, metas[2].PublicKey)
	assert.Equal(t, assetAccounts[0], metas[3].PublicKey)
	assert.Equal(t, assetAccounts[1], metas[4].PublicKey)

	data := instructionData(t, inst)
	assert.Equal(t, ixGetAccruedFees[:], data[:8])

	var decoded struct {
		VaultIndex  uint32
		AssetPrices []AssetPrice
	}
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&decoded))
	assert.Equal(t, uint32(3), decoded.VaultIndex)
	assert.Equal(t, prices, decoded.AssetPrices)
}

func TestNewInitializeFactoryInstructionEncodesParams(t *testing.T) {
	params := FactoryFeeParams{
		EntryFeeBps:             25,
		ExitFeeBps:              50,
		VaultCreationFeeUsdc:    5_000_000,
		MinManagementFeeBps:     10,
		MaxManagementFeeBps:     200,
		VaultCreatorFeeRatioBps: 7_000,
		PlatformFeeRatioBps:     3_000,
	}

	inst, err := NewInitializeFactoryInstruction(
		params,
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	)
	require.NoError(t, err)

	data := instructionData(t, inst)
	assert.Equal(t, ixInitializeFactory[:], data[:8])

	var decoded FactoryFeeParams
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&decoded))
	assert.Equal(t, params, decoded)
}

func TestNewCreateVaultInstruction(t *testing.T) {
	accounts := CreateVaultAccounts{
		Admin:                  solana.NewWallet().PublicKey(),
		Factory:                solana.NewWallet().PublicKey(),
		Vault:                  solana.NewWallet().PublicKey(),
		VaultMint:              solana.NewWallet().PublicKey(),
		VaultTokenAccount:      solana.NewWallet().PublicKey(),
		StablecoinMint:         solana.NewWallet().PublicKey(),
		AdminStablecoin:        solana.NewWallet().PublicKey(),
		FactoryAdminStablecoin: solana.NewWallet().PublicKey(),
	}
	basket := []UnderlyingAsset{
		{MintAddress: solana.NewWallet().PublicKey(), MintBps: 6_000},
		{MintAddress: solana.NewWallet().PublicKey(), MintBps: 4_000},
	}

	inst, err := NewCreateVaultInstruction("Blue Chip", "BLUE", basket, 150, accounts)
	require.NoError(t, err)
	assert.Equal(t, ProgramID, inst.ProgramID())

	metas := inst.Accounts()
	require.Len(t, metas, 11)
	assert.Equal(t, accounts.Admin, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.True(t, metas[0].IsWritable)
	assert.Equal(t, accounts.Factory, metas[1].PublicKey)
	assert.True(t, metas[1].IsWritable)
	assert.Equal(t, accounts.Vault, metas[2].PublicKey)
	assert.True(t, metas[2].IsWritable)
	assert.Equal(t, accounts.VaultMint, metas[3].PublicKey)
	assert.True(t, metas[3].IsWritable)
	assert.Equal(t, accounts.VaultTokenAccount, metas[4].PublicKey)
	assert.True(t, metas[4].IsWritable)
	assert.Equal(t, accounts.StablecoinMint, metas[5].PublicKey)
	assert.False(t, metas[5].IsWritable)
	assert.Equal(t, accounts.AdminStablecoin, metas[6].PublicKey)
	assert.True(t, metas[6].IsWritable)
	assert.Equal(t, accounts.FactoryAdminStablecoin, metas[7].PublicKey)
	assert.True(t, metas[7].IsWritable)
	assert.Equal(t, solana.TokenProgramID, metas[8].PublicKey)
	assert.Equal(t, solana.SystemProgramID, metas[9].PublicKey)
	assert.Equal(t, solana.SysVarRentPubkey, metas[10].PublicKey)

	data := instructionData(t, inst)
	assert.Equal(t, ixCreateVault[:], data[:8])

	var decoded struct {
		VaultName        string
		VaultSymbol      string
		UnderlyingAssets []UnderlyingAsset
		ManagementFees   uint16
	}
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&decoded))
	assert.Equal(t, "Blue Chip", decoded.VaultName)
	assert.Equal(t, "BLUE", decoded.VaultSymbol)
	assert.Equal(t, basket, decoded.UnderlyingAssets)
	assert.Equal(t, uint16(150), decoded.ManagementFees)
}

func TestNewSetVaultPausedInstruction(t *testing.T) {
	inst, err := NewSetVaultPausedInstruction(
		4, true,
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	)
	require.NoError(t, err)

	data := instructionData(t, inst)
	require.Len(t, data, 13)
	assert.Equal(t, ixSetVaultPaused[:], data[:8])
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, byte(1), data[12])
}

func TestInstructionDiscriminatorsDistinct(t *testing.T) {
	seen := map[[8]byte]bool{}
	for _, disc := range [][8]byte{
		ixInitializeFactory, ixCreateVault, ixUpdateFactoryFees, ixUpdateFactoryAdmin,
		ixCollectFees, ixTransferVaultToUser, ixGetAccruedFees, ixSetVaultPaused,
		Account_Factory, Account_Vault,
	} {
		assert.False(t, seen[disc], "duplicate discriminator %x", disc)
		seen[disc] = true
	}
}
