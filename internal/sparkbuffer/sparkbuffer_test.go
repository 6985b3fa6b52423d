package sparkbuffer

import (
	"encoding/binary"
	"testing"

	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileBuilder assembles a SparkBuffer byte stream section by section,
// tracking absolute offsets so alignment padding always lines up with
// what Decoder computes from the same absolute positions.
type fileBuilder struct {
	buf []byte
}

func (b *fileBuilder) pos() int { return len(b.buf) }

func (b *fileBuilder) raw(p []byte) { b.buf = append(b.buf, p...) }

func (b *fileBuilder) u8(v uint8) { b.buf = append(b.buf, v) }

func (b *fileBuilder) u16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.raw(tmp[:])
}

func (b *fileBuilder) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.raw(tmp[:])
}

func (b *fileBuilder) i32(v int32) { b.u32(uint32(v)) }

func (b *fileBuilder) align4() {
	for b.pos()%4 != 0 {
		b.u8(0)
	}
}

// lpstring16 writes a length-prefixed UTF-8 string and returns the offset
// at which it starts (for use as a string-pool reference elsewhere).
func (b *fileBuilder) lpstring16(s string) int {
	off := b.pos()
	b.u16(uint16(len(s)))
	b.raw([]byte(s))
	return off
}

// TestDecodeMapOfIntToInt reproduces spec.md §8 scenario 5 verbatim:
// root descriptor Map<Int, Int>, data sector count=2, 16 bytes of
// bookkeeping, then (1, 10), (2, 20).
func TestDecodeMapOfIntToInt(t *testing.T) {
	var b fileBuilder
	b.raw(make([]byte, 12)) // header placeholder, patched below

	typeDefOff := b.pos()
	b.u32(0) // no bean/enum types needed

	rootDefOff := b.pos()
	b.u16(0)          // empty name
	b.u8(uint8(TagMap))
	b.u8(uint8(TagInt)) // key tag
	b.u8(uint8(TagInt)) // value tag

	dataOff := b.pos()
	b.u32(2)                // count
	b.raw(make([]byte, 16)) // bookkeeping
	b.i32(1)
	b.i32(10)
	b.i32(2)
	b.i32(20)

	binary.LittleEndian.PutUint32(b.buf[0:4], uint32(typeDefOff))
	binary.LittleEndian.PutUint32(b.buf[4:8], uint32(rootDefOff))
	binary.LittleEndian.PutUint32(b.buf[8:12], uint32(dataOff))

	got, err := NewDecoder(b.buf).Decode()
	require.NoError(t, err)

	want := OrderedObject{
		{Key: "1", Value: int32(10)},
		{Key: "2", Value: int32(20)},
	}
	assert.Equal(t, want, got)

	jsonBytes, err := DecodeToJSON(b.buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1": 10, "2": 20}`, string(jsonBytes))
}

// TestDecodeBeanWithBoolAlignmentAndNullPointer exercises field order
// preservation, the "align after bool unless next is bool too" rule, the
// 4-byte-align-before-type-hash rule, string-pool resolution, and a null
// bean pointer decoding to JSON null (spec.md §4.8 rules 3-4, §3 null
// semantics).
func TestDecodeBeanWithBoolAlignmentAndNullPointer(t *testing.T) {
	var b fileBuilder
	b.raw(make([]byte, 12))

	const widgetHash = 0xAAAA0001
	const childHash = 0xBBBB0002

	typeDefOff := b.pos()
	b.u32(1) // one registered type

	b.align4()
	b.u8(uint8(TagBean))
	b.u32(widgetHash)
	b.lpstring16("Widget")
	b.u32(5) // field count

	// flag1 bool
	b.lpstring16("flag1")
	b.u8(uint8(TagBool))
	// flag2 bool
	b.lpstring16("flag2")
	b.u8(uint8(TagBool))
	// count int
	b.lpstring16("count")
	b.u8(uint8(TagInt))
	// label string
	b.lpstring16("label")
	b.u8(uint8(TagString))
	// child bean pointer
	b.lpstring16("child")
	b.u8(uint8(TagBean))
	b.align4()
	b.u32(childHash)

	rootDefOff := b.pos()
	b.u16(0) // empty root name
	b.u8(uint8(TagBean))
	b.align4()
	b.u32(widgetHash)

	labelOff := b.lpstring16("Hello")

	dataOff := b.pos()
	b.u8(1) // flag1 = true
	b.u8(0) // flag2 = false
	b.align4()
	b.u32(7)              // count
	b.u32(uint32(labelOff)) // label -> string pool
	b.align4()
	b.i32(-1) // child = null

	binary.LittleEndian.PutUint32(b.buf[0:4], uint32(typeDefOff))
	binary.LittleEndian.PutUint32(b.buf[4:8], uint32(rootDefOff))
	binary.LittleEndian.PutUint32(b.buf[8:12], uint32(dataOff))

	got, err := NewDecoder(b.buf).Decode()
	require.NoError(t, err)

	want := OrderedObject{
		{Key: "flag1", Value: true},
		{Key: "flag2", Value: false},
		{Key: "count", Value: int32(7)},
		{Key: "label", Value: "Hello"},
		{Key: "child", Value: nil},
	}
	assert.Equal(t, want, got)
}

// TestDecodeByteTagIsFatal covers the explicit edge case in spec.md §4.8:
// a field tag of byte is not representable in JSON and must fail with
// ErrUnsupportedField.
func TestDecodeByteTagIsFatal(t *testing.T) {
	var b fileBuilder
	b.raw(make([]byte, 12))

	typeDefOff := b.pos()
	b.u32(0)

	rootDefOff := b.pos()
	b.u16(0)
	b.u8(uint8(TagByte))

	dataOff := b.pos()
	b.u8(0xFF)

	binary.LittleEndian.PutUint32(b.buf[0:4], uint32(typeDefOff))
	binary.LittleEndian.PutUint32(b.buf[4:8], uint32(rootDefOff))
	binary.LittleEndian.PutUint32(b.buf[8:12], uint32(dataOff))

	_, err := NewDecoder(b.buf).Decode()
	assert.ErrorIs(t, err, xerr.ErrUnsupportedField)
}

// TestDecodeArrayOfInts exercises the Array branch: element count followed
// by elements decoded per the declared element tag.
func TestDecodeArrayOfInts(t *testing.T) {
	var b fileBuilder
	b.raw(make([]byte, 12))

	typeDefOff := b.pos()
	b.u32(0)

	rootDefOff := b.pos()
	b.u16(0)
	b.u8(uint8(TagArray))
	b.u8(uint8(TagInt)) // element tag

	dataOff := b.pos()
	b.u32(3)
	b.i32(100)
	b.i32(200)
	b.i32(300)

	binary.LittleEndian.PutUint32(b.buf[0:4], uint32(typeDefOff))
	binary.LittleEndian.PutUint32(b.buf[4:8], uint32(rootDefOff))
	binary.LittleEndian.PutUint32(b.buf[8:12], uint32(dataOff))

	got, err := NewDecoder(b.buf).Decode()
	require.NoError(t, err)
	assert.Equal(t, []any{int32(100), int32(200), int32(300)}, got)
}
