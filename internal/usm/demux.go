// Package usm demultiplexes CRI USM video containers (spec.md §4.9): a
// sequence of tagged blocks is scanned from the first "CRID" magic, payload
// fragments are routed into per-stream accumulators keyed by
// (streamId, signature), and each stream is trimmed of its header/metadata/
// contents markers before being classified and written out.
//
// The scan-concatenated-blocks-into-per-stream-buffers shape follows
// WiCOS64's packet router (`internal/transport`: dispatch by a small header
// field into one of several named accumulators) generalized to USM's
// variable-length block headers.
package usm

import (
	"bytes"
	"fmt"

	"github.com/SherkeyXD/BydTools-sub000/internal/binreader"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

const (
	sigCRID = "CRID"
	sigSFV  = "@SFV"
	sigSFA  = "@SFA"
)

var (
	headerEndMarker   = []byte("#HEADER END")
	metadataEndMarker = []byte("#METADATA END")
	contentsEndMarker = []byte("#CONTENTS END")
)

// markerSpan is the fixed size both END markers occupy on disk (spec.md
// §4.9: "both markers are 32 bytes").
const markerSpan = 32

// Stream is one demultiplexed elementary stream, ready to be classified and
// written.
type Stream struct {
	// Key is (streamId<<32 | signature) as described in spec.md §4.9,
	// unique per accumulator.
	Key      uint64
	Kind     Kind
	Data     []byte
	Ext      string // file extension chosen by classify
}

// Kind distinguishes video from audio streams.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
)

// Demux scans raw for CRI USM blocks starting at the first "CRID" magic and
// returns one Stream per distinct (streamId, signature) accumulator,
// trimmed and classified. Streams whose final payload length is <= 0 are
// silently dropped (spec.md §4.9 "Failure").
func Demux(raw []byte) ([]Stream, error) {
	start := bytes.Index(raw, []byte(sigCRID))
	if start < 0 {
		return nil, fmt.Errorf("no CRID magic found: %w", xerr.ErrCorruptOrWrongKey)
	}

	type accum struct {
		key  uint64
		sig  string
		data []byte
	}
	order := make([]uint64, 0, 4)
	accums := make(map[uint64]*accum)

	r := binreader.New(raw)
	if err := r.Seek(start); err != nil {
		return nil, err
	}

	for r.Len() >= 8 {
		blockStart := r.Offset()
		sigBytes, err := r.Raw(4)
		if err != nil {
			break
		}
		sig := string(sigBytes)
		blockSize, err := r.U32BE()
		if err != nil {
			break
		}
		if blockStart+8+int(blockSize) > len(raw) {
			break
		}

		var headerSkip, footerSkip uint16
		var streamID uint8
		if blockSize >= 4 && blockStart+12 <= len(raw) {
			headerSkip = beU16(raw, blockStart+8)
			footerSkip = beU16(raw, blockStart+10)
		}
		if sig == sigSFA && blockSize >= 5 && blockStart+13 <= len(raw) {
			streamID = raw[blockStart+12]
		}

		payloadLen := int(blockSize) - int(headerSkip) - int(footerSkip)
		payloadStart := blockStart + 8 + int(headerSkip)
		if payloadLen > 0 && payloadStart >= 0 && payloadStart+payloadLen <= len(raw) {
			key := streamKey(streamID, sig)
			a, ok := accums[key]
			if !ok {
				a = &accum{key: key, sig: sig}
				accums[key] = a
				order = append(order, key)
			}
			a.data = append(a.data, raw[payloadStart:payloadStart+payloadLen]...)
		}

		next := blockStart + 8 + int(blockSize)
		if next <= blockStart {
			break
		}
		if err := r.Seek(next); err != nil {
			break
		}
	}

	streams := make([]Stream, 0, len(order))
	for _, key := range order {
		a := accums[key]
		trimmed := trimStream(a.data)
		if len(trimmed) <= 0 {
			continue
		}
		kind, ext := classify(a.sig, trimmed)
		streams = append(streams, Stream{Key: key, Kind: kind, Data: trimmed, Ext: ext})
	}
	return streams, nil
}

func streamKey(streamID uint8, sig string) uint64 {
	var sigU32 uint32
	for _, c := range []byte(sig) {
		sigU32 = sigU32<<8 | uint32(c)
	}
	return uint64(streamID)<<32 | uint64(sigU32)
}

func beU16(b []byte, off int) uint16 {
	return uint16(b[off])<<8 | uint16(b[off+1])
}

// trimStream locates the furthest of #HEADER END / #METADATA END (data
// begins markerSpan bytes past it, or at 0 if neither is present), then
// bounds the result at #CONTENTS END if present (spec.md §4.9 "Finalize
// each stream").
func trimStream(data []byte) []byte {
	dataStart := 0
	if idx := lastIndexOfEither(data, headerEndMarker, metadataEndMarker); idx >= 0 {
		dataStart = idx + markerSpan
	}
	if dataStart > len(data) {
		return nil
	}
	rest := data[dataStart:]
	if idx := bytes.Index(rest, contentsEndMarker); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

func lastIndexOfEither(data, a, b []byte) int {
	ia := bytes.LastIndex(data, a)
	ib := bytes.LastIndex(data, b)
	if ia > ib {
		return ia
	}
	return ib
}

// classify picks an output Kind and file extension per spec.md §4.9: video
// streams (@SFV) are always .m2v; audio streams (@SFA) are classified by
// the first bytes of payload.
func classify(sig string, payload []byte) (Kind, string) {
	if sig == sigSFV {
		return KindVideo, ".m2v"
	}
	switch {
	case bytes.HasPrefix(payload, []byte("AIXF")):
		return KindAudio, ".aix"
	case len(payload) > 0 && payload[0] == 0x80:
		return KindAudio, ".adx"
	case bytes.HasPrefix(payload, []byte("HCA\x00")):
		return KindAudio, ".hca"
	default:
		return KindAudio, ".bin"
	}
}
