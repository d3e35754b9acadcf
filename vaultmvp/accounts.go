package vaultmvp

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	// MaxBps is 100% in basis points; underlying-asset allocations sum to it.
	MaxBps = 10_000

	// factoryLenV1 is the original Factory layout. factoryLenV2 appends the
	// creator/platform fee-split ratios (two u16), observed when the account
	// grew from 94 to 98 bytes across a program upgrade.
	factoryLenV1 = 94
	factoryLenV2 = 98
)

type FactoryState uint8

const (
	FactoryActive FactoryState = iota
	FactoryPaused
	FactoryDeprecated
)

type VaultState uint8

const (
	VaultActive VaultState = iota
	VaultPaused
	VaultClosed
)

func (s VaultState) String() string {
	switch s {
	case VaultActive:
		return "active"
	case VaultPaused:
		return "paused"
	case VaultClosed:
		return "closed"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// FactoryLayout identifies which byte layout a Factory account was decoded
// from.
type FactoryLayout uint8

const (
	FactoryLayoutV1 FactoryLayout = 1
	FactoryLayoutV2 FactoryLayout = 2
)

// Factory is the singleton registry account.
type Factory struct {
	Bump                 uint8
	Admin                solana.PublicKey
	FeeRecipient         solana.PublicKey
	VaultCount           uint32
	State                FactoryState
	EntryFeeBps          uint16
	ExitFeeBps           uint16
	VaultCreationFeeUsdc uint64
	MinManagementFeeBps  uint16
	MaxManagementFeeBps  uint16

	// Present only in the v2 layout; v1 accounts predate configurable
	// splits and report the program's fixed 70/30 here.
	VaultCreatorFeeRatioBps uint16
	PlatformFeeRatioBps     uint16

	Layout FactoryLayout `bin:"-"`
}

// UnderlyingAsset is one entry of a vault's basket: mint plus allocation in
// basis points.
type UnderlyingAsset struct {
	MintAddress solana.PublicKey
	MintBps     uint16
}

// Vault is one basket-product account, located at
// ["vault", factory, u32-LE(index)].
type Vault struct {
	Bump                  uint8
	VaultIndex            uint32
	Factory               solana.PublicKey
	Admin                 solana.PublicKey
	VaultName             string
	VaultSymbol           string
	UnderlyingAssets      []UnderlyingAsset
	ManagementFees        uint16
	State                 VaultState
	TotalAssets           uint64
	TotalSupply           uint64
	CreatedAt             int64
	LastFeeAccrualTs      int64
	AccruedManagementFees uint64
}

// AllocationBps sums the basket allocations. The program enforces the sum is
// exactly MaxBps at creation; recomputing here is informational only.
func (v *Vault) AllocationBps() uint32 {
	var total uint32
	for _, a := range v.UnderlyingAssets {
		total += uint32(a.MintBps)
	}
	return total
}

// DecodeFactory parses a raw Factory account. The layout version is decided
// from the account length; anything but the two known widths is rejected
// outright rather than sliced leniently.
func DecodeFactory(data []byte) (*Factory, error) {
	if err := checkDiscriminator(data, Account_Factory, "Factory"); err != nil {
		return nil, err
	}

	var layout FactoryLayout
	switch len(data) {
	case factoryLenV1:
		layout = FactoryLayoutV1
	case factoryLenV2:
		layout = FactoryLayoutV2
	default:
		return nil, fmt.Errorf("%w: Factory account is %d bytes, expected %d (v1) or %d (v2)",
			ErrDecode, len(data), factoryLenV1, factoryLenV2)
	}

	dec := bin.NewBorshDecoder(data[8:])
	f := &Factory{Layout: layout}
	fields := []interface{}{
		&f.Bump, &f.Admin, &f.FeeRecipient, &f.VaultCount, &f.State,
		&f.EntryFeeBps, &f.ExitFeeBps, &f.VaultCreationFeeUsdc,
		&f.MinManagementFeeBps, &f.MaxManagementFeeBps,
	}
	if layout == FactoryLayoutV2 {
		fields = append(fields, &f.VaultCreatorFeeRatioBps, &f.PlatformFeeRatioBps)
	}
	for _, field := range fields {
		if err := dec.Decode(field); err != nil {
			return nil, fmt.Errorf("%w: Factory field: %v", ErrDecode, err)
		}
	}
	if layout == FactoryLayoutV1 {
		f.VaultCreatorFeeRatioBps = 7_000
		f.PlatformFeeRatioBps = 3_000
	}
	return f, nil
}

// DecodeVault parses a raw Vault account. Vault accounts are allocated at a
// fixed maximum size, so trailing zero padding beyond the encoded fields is
// expected; a buffer that ends before the declared fields is a DecodeError.
func DecodeVault(data []byte) (*Vault, error) {
	if err := checkDiscriminator(data, Account_Vault, "Vault"); err != nil {
		return nil, err
	}

	dec := bin.NewBorshDecoder(data[8:])
	v := &Vault{}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("%w: Vault: %v", ErrDecode, err)
	}
	return v, nil
}

func checkDiscriminator(data []byte, want [8]byte, kind string) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: %s account is %d bytes, too short for a discriminator",
			ErrDecode, kind, len(data))
	}
	if !bytes.Equal(data[:8], want[:]) {
		return fmt.Errorf("%w: discriminator %x is not a %s account", ErrDecode, data[:8], kind)
	}
	return nil
}
