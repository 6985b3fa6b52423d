// Package config holds the tunables that sit outside CLI flags but are
// still environment-shaped: the default cipher key, the block-type table,
// and output-layout defaults. Loading follows the same small JSON-file
// shape WiCOS64's internal/config/config.go uses for its own settings,
// adapted here from storage-server policy to asset-extraction settings.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// defaultChaCha20KeyB64 is a placeholder default key. spec.md §9 notes the
// real constant "has been observed to shift across builds"; callers are
// expected to override it via --key or Settings.ChaChaKeyB64, which is why
// this is deliberately not the production value.
const defaultChaCha20KeyB64 = "MDEyMzQ1Njc4OUFCQ0RFRjAxMjM0NTY3ODlBQkNERUY="

// ProtocolVersion is the expected BLC protocol version (spec.md §6
// Constants), also echoed into the per-file nonce.
const ProtocolVersion = 3

// Settings is the optional on-disk configuration for a dispatch. All
// fields have usable zero-value defaults; this is not a required file.
type Settings struct {
	// ChaChaKeyB64 overrides the default ChaCha20 key (base64 of 32 raw
	// bytes). Empty means use the built-in default.
	ChaChaKeyB64 string `json:"chacha_key_base64,omitempty"`

	// OutputLayout maps block-type names to output directory names. It is
	// loaded from the settings file, but no extraction path reads it: VFS
	// files are written under the output directory at the path their block
	// index names, with no per-block-type subdirectory.
	OutputLayout map[string]string `json:"output_layout,omitempty"`

	// ScriptMasterKeyB64 is the already-derived script.Decrypt master key
	// (base64), not the raw obfuscated fragments/seed spec.md §4.11
	// describes deriving it from. This module has no real copies of those
	// proprietary fragment constants to embed (see DESIGN.md); supplying
	// the derived key directly here lets a caller who does have them feed
	// the result in without this package ever baking in game-specific
	// values. Empty means LuaProcessor decrypts with an all-zero 16-byte
	// key; a body that fails to decode, or output that fails LooksLikeLua,
	// falls back to the dispatcher's raw write.
	ScriptMasterKeyB64 string `json:"script_master_key_base64,omitempty"`
}

// Load reads Settings from a JSON file. A missing path returns the zero
// Settings with no error, since the file is optional.
func Load(path string) (Settings, error) {
	if path == "" {
		return Settings{}, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return s, nil
}

// ChaCha20Key decodes the effective 32-byte ChaCha20 key: the override if
// set, otherwise the built-in default.
func (s Settings) ChaCha20Key() ([32]byte, error) {
	b64 := s.ChaChaKeyB64
	if b64 == "" {
		b64 = defaultChaCha20KeyB64
	}
	return DecodeKey(b64)
}

// ScriptMasterKey decodes the configured script master key, or returns an
// empty string if none is configured.
func (s Settings) ScriptMasterKey() (string, error) {
	if s.ScriptMasterKeyB64 == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(s.ScriptMasterKeyB64)
	if err != nil {
		return "", fmt.Errorf("decoding script master key: %w", err)
	}
	return string(raw), nil
}

// DecodeKey decodes a base64-encoded 32-byte ChaCha20 key, as accepted by
// the CLI's --key flag (spec.md §6).
func DecodeKey(b64 string) ([32]byte, error) {
	var key [32]byte
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return key, fmt.Errorf("decoding key: %w", err)
	}
	if len(raw) != 32 {
		return key, fmt.Errorf("key must decode to 32 bytes, got %d", len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
