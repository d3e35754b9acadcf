package vaultmvp

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PDA seeds used by the program. Any deviation from these exact byte strings
// derives a different, usually empty, address.
var (
	seedFactory           = []byte("factory_v2")
	seedVault             = []byte("vault")
	seedVaultStablecoin   = []byte("vault_stablecoin_account")
	seedVaultMint         = []byte("vault_mint")
	seedVaultTokenAccount = []byte("vault_token_account")
)

// FindFactoryAddress returns the singleton Factory PDA.
func FindFactoryAddress() (solana.PublicKey, uint8, error) {
	return findProgramAddress(seedFactory)
}

// FindVaultAddress returns the Vault PDA for a vault index. The index is
// serialized as 4-byte little-endian; any other width or endianness derives
// the wrong address.
func FindVaultAddress(factory solana.PublicKey, vaultIndex uint32) (solana.PublicKey, uint8, error) {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], vaultIndex)
	return findProgramAddress(seedVault, factory.Bytes(), idx[:])
}

// FindVaultStablecoinAddress returns the vault's reserve (stablecoin) token
// account PDA.
func FindVaultStablecoinAddress(vault solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress(seedVaultStablecoin, vault.Bytes())
}

// FindVaultMintAddress returns the vault's share-token mint PDA.
func FindVaultMintAddress(vault solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress(seedVaultMint, vault.Bytes())
}

// FindVaultTokenAccountAddress returns the vault's own share-token account
// PDA (holds the seed supply minted at creation).
func FindVaultTokenAccountAddress(vault solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findProgramAddress(seedVaultTokenAccount, vault.Bytes())
}

// FindAssetTokenAddress returns the associated token account for an owner
// and mint. This is the token-standard program's derivation, not ours.
func FindAssetTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: associated token for %s: %v", ErrAddressDerivation, mint, err)
	}
	return addr, bump, nil
}

func findProgramAddress(seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %v", ErrAddressDerivation, err)
	}
	return addr, bump, nil
}
