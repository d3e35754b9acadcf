package vaultmvp

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the deployed vault-mvp program.
var ProgramID = solana.MustPublicKeyFromBase58("5tAdLifeaGj3oUVVpr7gG5ntjW6c2Lg3sY2ftBCi8MkZ")

var (
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// Account discriminators. Anchor tags every account with the first 8 bytes
// of sha256("account:<StructName>").
var (
	Account_Factory = accountDiscriminator("Factory")
	Account_Vault   = accountDiscriminator("Vault")
)

func accountDiscriminator(name string) [8]byte {
	return discriminator("account:" + name)
}

// instructionDiscriminator returns the 8-byte Anchor tag for a global
// instruction handler, derived from its snake_case name.
func instructionDiscriminator(name string) [8]byte {
	return discriminator("global:" + name)
}

func discriminator(preimage string) [8]byte {
	sum := sha256.Sum256([]byte(preimage))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}
