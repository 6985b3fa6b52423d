package binreader

import (
	"testing"

	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveReadsAdvanceCursor(t *testing.T) {
	r := New([]byte{
		0x01,                   // U8 / Bool
		0x34, 0x12,             // U16 LE = 0x1234
		0x78, 0x56, 0x34, 0x12, // U32 LE = 0x12345678
		0x12, 0x34, 0x56, // U24BE = 0x123456
	})

	u8, err := r.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	u24, err := r.U24BE()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x123456), u24)

	assert.Equal(t, 0, r.Len())
}

func TestLPString16RoundTrip(t *testing.T) {
	r := New([]byte{0x05, 0x00, 'h', 'e', 'l', 'l', 'o'})
	s, err := r.LPString16()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestSeekOutOfRangeFails(t *testing.T) {
	r := New([]byte{1, 2, 3})
	assert.ErrorIs(t, r.Seek(10), xerr.ErrTruncatedInput)
	assert.ErrorIs(t, r.Seek(-1), xerr.ErrTruncatedInput)
	require.NoError(t, r.Seek(3))
}

func TestRawPastEndFails(t *testing.T) {
	r := New([]byte{1, 2})
	_, err := r.Raw(3)
	assert.ErrorIs(t, err, xerr.ErrTruncatedInput)
}

func TestUTF16OrUTF8NulTerminatedDetectsEncoding(t *testing.T) {
	utf8Bytes := append([]byte("abc"), 0)
	r := New(utf8Bytes)
	s, err := r.UTF16OrUTF8NulTerminated()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	utf16Bytes := []byte{'a', 0, 'b', 0, 0, 0}
	r2 := New(utf16Bytes)
	s2, err := r2.UTF16OrUTF8NulTerminated()
	require.NoError(t, err)
	assert.Equal(t, "ab", s2)
}
