package vaultmvp

import "errors"

// Error taxonomy for the client pipeline. Every one of these aborts the
// current command; nothing is silently recovered, because a recovered error
// here means reporting wrong financial figures.
var (
	// ErrAddressDerivation: no off-curve candidate found for a seed set.
	// Should not occur with a correct program ID.
	ErrAddressDerivation = errors.New("address derivation failed")

	// ErrAccountNotFound: a derived address holds no on-chain record.
	// Usually an uninitialized factory/vault, or a seed/version mismatch.
	ErrAccountNotFound = errors.New("account not found on-chain")

	// ErrDecode: account bytes do not match any known layout version.
	ErrDecode = errors.New("account decode failed")

	// ErrOracle: the price feed was unreachable or returned a bad response.
	ErrOracle = errors.New("price oracle request failed")

	// ErrMissingPrice: the feed answered but omitted a requested asset.
	// Valuation must never proceed with partial prices.
	ErrMissingPrice = errors.New("price missing from oracle response")

	// ErrStaleState: the vault is closed; figures are computable but not
	// actionable.
	ErrStaleState = errors.New("vault is closed")

	// ErrTransactionRejected: the ledger rejected a submitted or simulated
	// transaction. The raw reason is attached; there is no automatic retry.
	ErrTransactionRejected = errors.New("transaction rejected")
)
