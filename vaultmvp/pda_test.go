package vaultmvp

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFactoryAddressDeterministic(t *testing.T) {
	addr1, bump1, err := FindFactoryAddress()
	require.NoError(t, err)
	addr2, bump2, err := FindFactoryAddress()
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
	assert.False(t, addr1.IsZero())
	assert.False(t, addr1.IsOnCurve())
}

func TestFindFactoryAddressKnownValue(t *testing.T) {
	// The deployed program's factory PDA. A seed or program-ID typo would
	// still derive consistently, so the derivation is pinned to the live
	// address rather than only compared against itself.
	addr, bump, err := FindFactoryAddress()
	require.NoError(t, err)

	assert.Equal(t, solana.MustPublicKeyFromBase58("ABHa1qGeW6oHRfr4FacAkQUpvMaxoYHxGrm1nzms3vF9"), addr)
	assert.Equal(t, uint8(255), bump)
}

func TestFindVaultAddressVariesByIndex(t *testing.T) {
	factory, _, err := FindFactoryAddress()
	require.NoError(t, err)

	seen := make(map[solana.PublicKey]uint32)
	for _, index := range []uint32{0, 1, 2, 255, 256, 1 << 24} {
		addr, _, err := FindVaultAddress(factory, index)
		require.NoError(t, err)
		if prev, dup := seen[addr]; dup {
			t.Fatalf("index %d derived the same address as index %d", index, prev)
		}
		seen[addr] = index
		assert.False(t, addr.IsOnCurve())
	}
}

func TestFindVaultAddressIndexEncoding(t *testing.T) {
	factory, _, err := FindFactoryAddress()
	require.NoError(t, err)

	// Indexes 1 and 256 differ only in byte position; a wrong-endian or
	// wrong-width seed would collapse or swap them.
	addr1, _, err := FindVaultAddress(factory, 1)
	require.NoError(t, err)

	want, _, err := solana.FindProgramAddress([][]byte{
		[]byte("vault"), factory.Bytes(), {1, 0, 0, 0},
	}, ProgramID)
	require.NoError(t, err)
	assert.Equal(t, want, addr1)
}

func TestVaultSubAccountsDifferPerVault(t *testing.T) {
	factory, _, err := FindFactoryAddress()
	require.NoError(t, err)
	vaultA, _, err := FindVaultAddress(factory, 0)
	require.NoError(t, err)
	vaultB, _, err := FindVaultAddress(factory, 1)
	require.NoError(t, err)

	for name, derive := range map[string]func(solana.PublicKey) (solana.PublicKey, uint8, error){
		"stablecoin": FindVaultStablecoinAddress,
		"mint":       FindVaultMintAddress,
		"token":      FindVaultTokenAccountAddress,
	} {
		a, _, err := derive(vaultA)
		require.NoError(t, err, name)
		b, _, err := derive(vaultB)
		require.NoError(t, err, name)
		assert.NotEqual(t, a, b, name)
	}
}

func TestFindAssetTokenAddressMatchesStandardDerivation(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	got, _, err := FindAssetTokenAddress(owner, mint)
	require.NoError(t, err)

	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
