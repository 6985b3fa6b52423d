// Package script recovers Lua scripts that were encrypted with XXTEA under
// a key derived from obfuscated embedded fragments (spec.md §4.11).
//
// Grounded on inAudible-NG-core's pattern of deriving a playback key from
// embedded constants via a subtractive unmask before decrypting audio
// blobs — the closest domain analogue in the corpus to "recover a key from
// obfuscated fragments, then run a block cipher."
package script

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/SherkeyXD/BydTools-sub000/internal/cipher"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// luaMagic is the Lua 5.x bytecode signature.
var luaMagic = [4]byte{0x1B, 'L', 'u', 'a'}

// luaKeywordPattern matches common Lua source tokens, used to heuristically
// accept a decrypted buffer as Lua source when it isn't bytecode (spec.md
// §4.11 "looks like Lua source (common keywords...)").
var luaKeywordPattern = regexp.MustCompile(`\b(function|local|end|require|return)\b`)

// DeriveMasterKey concatenates the four obfuscated fragments plus "==",
// base64-decodes the result, then subtracts a 28-byte ASCII seed modulo 256
// position-wise to recover the UTF-8 master key (spec.md §4.11 "Key
// derivation"). The fragments and seed are supplied by the caller — see
// DESIGN.md for why this module carries no baked-in values.
func DeriveMasterKey(fragments [4]string, seed [28]byte) (string, error) {
	var concatenated string
	for _, f := range fragments {
		concatenated += f
	}
	concatenated += "=="

	decoded, err := base64.StdEncoding.DecodeString(concatenated)
	if err != nil {
		return "", fmt.Errorf("base64-decoding key fragments: %w", err)
	}
	if len(decoded) < len(seed) {
		return "", fmt.Errorf("decoded key material shorter than seed: %w", xerr.ErrTruncatedInput)
	}

	key := make([]byte, len(seed))
	for i := range seed {
		key[i] = byte((int(decoded[i]) - int(seed[i]) + 256) % 256)
	}
	return string(key), nil
}

// Decrypt base64-decodes an encrypted script body and runs XXTEA with the
// master key padded/truncated to 16 bytes (spec.md §4.11 "Decryption").
func Decrypt(body string, masterKey string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("base64-decoding script body: %w", err)
	}
	key := cipher.PadKey([]byte(masterKey))
	cipher.XXTEADecrypt(raw, key)
	return raw, nil
}

// LooksLikeLua reports whether data should be treated as a recovered Lua
// script: it starts with the bytecode magic, or looks like Lua source
// (spec.md §4.11 "Output is accepted only if..."). Anything else is
// treated as non-Lua and the caller should fall back to writing raw bytes.
func LooksLikeLua(data []byte) bool {
	if len(data) >= len(luaMagic) && data[0] == luaMagic[0] && data[1] == luaMagic[1] && data[2] == luaMagic[2] && data[3] == luaMagic[3] {
		return true
	}
	return looksLikeLuaSource(data)
}

func looksLikeLuaSource(data []byte) bool {
	n := len(data)
	if n > 256 {
		n = 256
	}
	if !utf8.Valid(data[:n]) {
		return false
	}
	return luaKeywordPattern.Match(data)
}
