package vaultmvp

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKeyFormats(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	parts := make([]string, len(key))
	for i, b := range key {
		parts[i] = fmt.Sprintf("%d", b)
	}

	inputs := map[string]string{
		"base58":     key.String(),
		"hex":        hex.EncodeToString(key),
		"0x-hex":     "0x" + hex.EncodeToString(key),
		"json-array": "[" + strings.Join(parts, ",") + "]",
		"csv":        strings.Join(parts, ", "),
	}

	for name, input := range inputs {
		parsed, err := ParsePrivateKey(input)
		require.NoError(t, err, name)
		assert.Equal(t, key, parsed, name)
	}
}

func TestParsePrivateKeyWhitespace(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	parsed, err := ParsePrivateKey("  " + key.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	for _, input := range []string{
		"",
		"not a key",
		"[1,2,3]",
		"1,2,3",
		hex.EncodeToString([]byte{1, 2, 3}),
	} {
		_, err := ParsePrivateKey(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParsePrivateKeyRejectsWrongLength(t *testing.T) {
	short := solana.NewWallet().PrivateKey[:32]
	_, err := ParsePrivateKey(hex.EncodeToString(short))
	assert.Error(t, err)
}
