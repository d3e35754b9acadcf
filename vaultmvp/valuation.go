package vaultmvp

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

const secondsPerYear = 365 * 24 * 60 * 60

// AssetBalance is one underlying holding: the raw on-chain amount and the
// mint's decimal precision.
type AssetBalance struct {
	Mint     solana.PublicKey
	Amount   uint64
	Decimals uint8
}

// AssetValuation is the priced form of an AssetBalance, all USD figures in
// micro-USD.
type AssetValuation struct {
	Mint     solana.PublicKey
	Amount   uint64
	PriceUsd uint64
	ValueUsd uint64
}

// ValuationSnapshot is the derived record for one vault at one instant. It
// is never persisted; every call recomputes it fresh.
type ValuationSnapshot struct {
	VaultIndex        uint32
	GrossAssetValue   uint64
	NetAssetValue     uint64
	ManagementFeeBps  uint16
	PreviouslyAccrued uint64
	NewlyAccrued      uint64
	TotalAccrued      uint64
	LastFeeAccrualTs  int64
	ComputedAt        int64
	ElapsedSeconds    int64
	Assets            []AssetValuation

	// Actionable is false when the vault is closed: the figures are still
	// meaningful but no fee collection should be driven from them.
	Actionable bool
}

// ComputeValuation combines decoded vault state, live balances and prices
// into gross/net asset value and accrued management fees, using the same
// integer arithmetic as the program. The caller supplies "now" explicitly;
// identical inputs always produce identical output.
//
// Prices are micro-USD integers keyed by mint. A basket mint without a price
// is an ErrMissingPrice; a closed vault computes but comes back flagged
// non-actionable.
func ComputeValuation(
	vault *Vault,
	factory *Factory,
	reserveBalance uint64,
	balances []AssetBalance,
	prices map[solana.PublicKey]uint64,
	now int64,
) (*ValuationSnapshot, error) {
	if len(balances) != len(vault.UnderlyingAssets) {
		return nil, fmt.Errorf("vault %d: got %d balances for %d underlying assets",
			vault.VaultIndex, len(balances), len(vault.UnderlyingAssets))
	}

	snap := &ValuationSnapshot{
		VaultIndex:        vault.VaultIndex,
		ManagementFeeBps:  clampFeeBps(vault.ManagementFees, factory),
		PreviouslyAccrued: vault.AccruedManagementFees,
		LastFeeAccrualTs:  vault.LastFeeAccrualTs,
		ComputedAt:        now,
		Actionable:        vault.State != VaultClosed,
		Assets:            make([]AssetValuation, 0, len(balances)+1),
	}

	// The reserve asset is the program's unit of account: priced at exactly
	// 1.000000 USD, so its balance contributes to GAV as-is.
	gav := reserveBalance
	snap.Assets = append(snap.Assets, AssetValuation{
		Amount:   reserveBalance,
		PriceUsd: PriceScale,
		ValueUsd: reserveBalance,
	})

	for i, asset := range vault.UnderlyingAssets {
		bal := balances[i]
		if bal.Mint != asset.MintAddress {
			return nil, fmt.Errorf("vault %d: balance %d is for mint %s, expected %s",
				vault.VaultIndex, i, bal.Mint, asset.MintAddress)
		}
		price, ok := prices[asset.MintAddress]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPrice, asset.MintAddress)
		}

		value, err := mulDiv(bal.Amount, price, pow10(bal.Decimals))
		if err != nil {
			return nil, fmt.Errorf("vault %d: valuing %s: %w", vault.VaultIndex, asset.MintAddress, err)
		}
		var overflow bool
		if gav, overflow = addChecked(gav, value); overflow {
			return nil, fmt.Errorf("vault %d: gross asset value overflows", vault.VaultIndex)
		}
		snap.Assets = append(snap.Assets, AssetValuation{
			Mint:     asset.MintAddress,
			Amount:   bal.Amount,
			PriceUsd: price,
			ValueUsd: value,
		})
	}
	snap.GrossAssetValue = gav

	if now > vault.LastFeeAccrualTs {
		snap.ElapsedSeconds = now - vault.LastFeeAccrualTs
	}
	snap.NewlyAccrued = accruedFee(gav, snap.ManagementFeeBps, snap.ElapsedSeconds)

	var overflow bool
	if snap.TotalAccrued, overflow = addChecked(snap.PreviouslyAccrued, snap.NewlyAccrued); overflow {
		return nil, fmt.Errorf("vault %d: accrued fees overflow", vault.VaultIndex)
	}

	// NAV subtracts uncollected fee liabilities; floored at zero, as the
	// program does.
	if snap.TotalAccrued < gav {
		snap.NetAssetValue = gav - snap.TotalAccrued
	}
	return snap, nil
}

// accruedFee is the program's time-weighted accrual:
// gav * bps * elapsed / (MaxBps * secondsPerYear), with 128-bit
// intermediates so the figure matches the ledger bit-for-bit.
func accruedFee(gav uint64, feeBps uint16, elapsed int64) uint64 {
	if gav == 0 || feeBps == 0 || elapsed <= 0 {
		return 0
	}
	num := new(big.Int).SetUint64(gav)
	num.Mul(num, big.NewInt(int64(feeBps)))
	num.Mul(num, big.NewInt(elapsed))
	num.Quo(num, big.NewInt(MaxBps*secondsPerYear))
	return num.Uint64()
}

// clampFeeBps bounds a vault's stored rate to the factory's configured
// range. Vaults admitted under older bounds still accrue within the current
// ones.
func clampFeeBps(bps uint16, factory *Factory) uint16 {
	if bps < factory.MinManagementFeeBps {
		return factory.MinManagementFeeBps
	}
	if bps > factory.MaxManagementFeeBps {
		return factory.MaxManagementFeeBps
	}
	return bps
}

// mulDiv computes a*b/den with a 128-bit intermediate product.
func mulDiv(a, b, den uint64) (uint64, error) {
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	prod.Quo(prod, new(big.Int).SetUint64(den))
	if !prod.IsUint64() {
		return 0, fmt.Errorf("value %d*%d/%d overflows", a, b, den)
	}
	return prod.Uint64(), nil
}

func addChecked(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

func pow10(n uint8) uint64 {
	out := uint64(1)
	for i := uint8(0); i < n; i++ {
		out *= 10
	}
	return out
}
