package cipher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaCha20RoundTrip(t *testing.T) {
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	var nonce [NonceSize]byte
	for i := range nonce {
		nonce[i] = byte(0x10 + i)
	}

	for _, n := range []int{0, 1, 17, 64, 4097} {
		plain := bytes.Repeat([]byte{0xAB}, n)
		enc := append([]byte(nil), plain...)
		require.NoError(t, ChaCha20XOR(key, nonce, enc))
		if n > 0 {
			assert.NotEqual(t, plain, enc)
		}
		dec := append([]byte(nil), enc...)
		require.NoError(t, ChaCha20XOR(key, nonce, dec))
		assert.Equal(t, plain, dec)
	}
}

func TestFileNonceLayout(t *testing.T) {
	// spec.md §8 scenario 2.
	n := FileNonce(3, 0x0123456789ABCDEF)
	want := []byte{0x03, 0x00, 0x00, 0x00, 0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01}
	assert.Equal(t, want, n[:])
}

func TestXXTEARoundTrip(t *testing.T) {
	key := PadKey([]byte("0123456789abcdef"))

	for _, n := range []int{2, 3, 5, 16, 129} {
		data := make([]byte, n*4)
		for i := range data {
			data[i] = byte(i * 7)
		}
		orig := append([]byte(nil), data...)

		XXTEAEncrypt(data, key)
		assert.NotEqual(t, orig, data)

		XXTEADecrypt(data, key)
		assert.Equal(t, orig, data)
	}
}

func TestXXTEAShortBufferIsNoop(t *testing.T) {
	key := PadKey([]byte("k"))
	data := []byte{1, 2, 3}
	orig := append([]byte(nil), data...)
	XXTEADecrypt(data, key)
	assert.Equal(t, orig, data)
}

func TestPadKeyTruncatesAndPads(t *testing.T) {
	k := PadKey([]byte("short"))
	assert.Equal(t, byte('s'), k[0])
	assert.Equal(t, byte(0), k[15])

	long := PadKey([]byte("this key is far too long for sixteen bytes"))
	assert.Equal(t, byte('t'), long[0])
	assert.Len(t, long, 16)
}
