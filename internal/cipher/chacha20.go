// Package cipher implements the two stream/block ciphers the VFS and script
// formats use: ChaCha20 (spec.md §4.1) for BLC/CHK payloads, and XXTEA
// (spec.md §4.11) for Lua script blobs.
package cipher

import (
	"golang.org/x/crypto/chacha20"
)

// KeySize is the ChaCha20 key size in bytes (256 bits).
const KeySize = chacha20.KeySize

// NonceSize is the ChaCha20 nonce size in bytes (96 bits), matching the
// BLC/CHK 12-byte nonce and per-file nonce layout (spec.md §4.2, §4.4).
const NonceSize = chacha20.NonceSize

// InitialCounter is the block counter the VFS format starts streaming from.
// spec.md §9: "Always start at 1, matching the original; a ChaCha20
// implementation that starts at 0 will silently produce wrong results for
// every non-empty read."
const InitialCounter = 1

// ChaCha20XOR XORs data in place with the ChaCha20 keystream for the given
// 32-byte key and 12-byte nonce, starting at InitialCounter. Encryption and
// decryption are the same operation (spec.md §4.1: "Encrypt == decrypt").
func ChaCha20XOR(key [KeySize]byte, nonce [NonceSize]byte, data []byte) error {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return err
	}
	c.SetCounter(InitialCounter)
	c.XORKeyStream(data, data)
	return nil
}

// FileNonce builds the 12-byte per-file nonce from the protocol version and
// ivSeed (spec.md §4.4): version_le(4) || ivSeed_le(8).
func FileNonce(version uint32, ivSeed uint64) [NonceSize]byte {
	var n [NonceSize]byte
	n[0] = byte(version)
	n[1] = byte(version >> 8)
	n[2] = byte(version >> 16)
	n[3] = byte(version >> 24)
	n[4] = byte(ivSeed)
	n[5] = byte(ivSeed >> 8)
	n[6] = byte(ivSeed >> 16)
	n[7] = byte(ivSeed >> 24)
	n[8] = byte(ivSeed >> 32)
	n[9] = byte(ivSeed >> 40)
	n[10] = byte(ivSeed >> 48)
	n[11] = byte(ivSeed >> 56)
	return n
}
