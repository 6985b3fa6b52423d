// Package binreader is a small little-endian cursor over a byte slice,
// shared by every format decoder in this module (BLC, PCK/AKPK, BNK,
// SparkBuffer, USM, ESFM). It generalizes the cursor style of WiCOS64's
// internal/proto.Decoder (itself a minimal hand-rolled reader "to keep
// dependencies low and behavior deterministic") with the extra primitive
// and length-prefixed-string reads this module's formats need.
package binreader

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// Reader is a little-endian cursor over an in-memory buffer. Reads advance
// the cursor; Seek moves it to any absolute offset.
type Reader struct {
	b   []byte
	off int
}

// New returns a Reader positioned at the start of b.
func New(b []byte) *Reader {
	return &Reader{b: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.b) - r.off }

// Offset returns the current cursor position.
func (r *Reader) Offset() int { return r.off }

// Seek moves the cursor to an absolute offset. TruncatedInput if out of
// range (spec.md §7).
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.b) {
		return fmt.Errorf("seek to %d in buffer of %d: %w", off, len(r.b), xerr.ErrTruncatedInput)
	}
	r.off = off
	return nil
}

// Bytes returns the underlying buffer.
func (r *Reader) Bytes() []byte { return r.b }

func (r *Reader) need(n int) error {
	if n < 0 || r.Len() < n {
		return fmt.Errorf("need %d bytes, have %d: %w", n, r.Len(), xerr.ErrTruncatedInput)
	}
	return nil
}

// Raw reads n raw bytes and advances the cursor.
func (r *Reader) Raw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.b[r.off : r.off+n]
	r.off += n
	return v, nil
}

// U8 reads an unsigned 8-bit integer.
func (r *Reader) U8() (uint8, error) {
	v, err := r.Raw(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// Bool reads a byte and interprets nonzero as true.
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	v, err := r.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	v, err := r.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	v, err := r.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v), nil
}

// U32BE reads a big-endian uint32 (used by USM block headers, spec.md §4.9).
func (r *Reader) U32BE() (uint32, error) {
	v, err := r.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}

// U16BE reads a big-endian uint16 (used by USM block headers).
func (r *Reader) U16BE() (uint16, error) {
	v, err := r.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(v), nil
}

// U24BE reads a big-endian 24-bit unsigned integer (used by ESFM's sector
// descriptors, spec.md §4.10).
func (r *Reader) U24BE() (uint32, error) {
	v, err := r.Raw(3)
	if err != nil {
		return 0, err
	}
	return uint32(v[0])<<16 | uint32(v[1])<<8 | uint32(v[2]), nil
}

// MD5 reads a 128-bit identifier (16 raw bytes).
func (r *Reader) MD5() ([16]byte, error) {
	var out [16]byte
	v, err := r.Raw(16)
	if err != nil {
		return out, err
	}
	copy(out[:], v)
	return out, nil
}

// LPString16 reads a 2-byte little-endian length-prefixed UTF-8 string
// (spec.md §3 fileName/groupCfgName, §9 "treat length as uint16 LE").
func (r *Reader) LPString16() (string, error) {
	n, err := r.U16()
	if err != nil {
		return "", err
	}
	v, err := r.Raw(int(n))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// UTF16OrUTF8NulTerminated reads a string that is either UTF-8 or
// UTF-16LE, auto-detected by a zero byte within the first two bytes
// (spec.md §3 PCK language table), terminated by a NUL (or NUL pair for
// UTF-16).
func (r *Reader) UTF16OrUTF8NulTerminated() (string, error) {
	start := r.off
	if r.Len() < 2 {
		return "", fmt.Errorf("reading language name: %w", xerr.ErrTruncatedInput)
	}
	isUTF16 := r.b[start] == 0 || r.b[start+1] == 0

	if isUTF16 {
		var units []uint16
		for {
			u, err := r.U16()
			if err != nil {
				return "", err
			}
			if u == 0 {
				break
			}
			units = append(units, u)
		}
		return string(utf16.Decode(units)), nil
	}

	var b []byte
	for {
		c, err := r.U8()
		if err != nil {
			return "", err
		}
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b), nil
}
