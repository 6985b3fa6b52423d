package script

import (
	"encoding/base64"
	"testing"

	"github.com/SherkeyXD/BydTools-sub000/internal/cipher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKeyAndRoundTripDecrypt(t *testing.T) {
	seed := [28]byte{}
	for i := range seed {
		seed[i] = byte('A' + i%26)
	}
	wantKey := "0123456789abcdefghijklmnopq" // 27 chars, padded to 28 below
	wantKey += "r"

	plain := make([]byte, 28)
	for i, c := range []byte(wantKey) {
		plain[i] = byte((int(c) + int(seed[i])) % 256)
	}
	// 28 bytes % 3 == 1, so StdEncoding always pads this with exactly "==";
	// stripping and re-appending "==" below reconstructs the same string,
	// mirroring how DeriveMasterKey reassembles its real obfuscated
	// fragments.
	encoded := base64.StdEncoding.EncodeToString(plain)
	// split into 4 fragments plus the trailing "==" the function re-appends
	trimmed := encoded
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '=' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	quarter := len(trimmed) / 4
	var fragments [4]string
	for i := 0; i < 4; i++ {
		start := i * quarter
		end := start + quarter
		if i == 3 {
			end = len(trimmed)
		}
		fragments[i] = trimmed[start:end]
	}

	gotKey, err := DeriveMasterKey(fragments, seed)
	require.NoError(t, err)
	assert.Equal(t, wantKey, gotKey)
}

func TestDecryptRoundTripsWithXXTEA(t *testing.T) {
	var key [16]byte
	for i := range key {
		key[i] = byte(i + 1)
	}
	plain := []byte("return function() print('hi') end")
	padded := append([]byte(nil), plain...)
	for len(padded)%4 != 0 {
		padded = append(padded, 0)
	}
	enc := append([]byte(nil), padded...)
	cipher.XXTEAEncrypt(enc, key)
	body := base64.StdEncoding.EncodeToString(enc)

	got, err := Decrypt(body, string(key[:]))
	require.NoError(t, err)
	assert.Equal(t, padded, got)
}

func TestLooksLikeLuaDetectsBytecodeAndSource(t *testing.T) {
	assert.True(t, LooksLikeLua([]byte{0x1B, 'L', 'u', 'a', 0x51}))
	assert.True(t, LooksLikeLua([]byte("local function f() return 1 end")))
	assert.False(t, LooksLikeLua([]byte{0x00, 0x01, 0x02, 0x03}))
	assert.False(t, LooksLikeLua([]byte("just some random binary junk without keywords")))
}
