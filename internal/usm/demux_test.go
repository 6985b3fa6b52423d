package usm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockBuilder assembles a minimal CRID + block sequence byte-for-byte.
type blockBuilder struct {
	buf []byte
}

func (b *blockBuilder) raw(p []byte) { b.buf = append(b.buf, p...) }

func (b *blockBuilder) beU32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.raw(tmp[:])
}

func (b *blockBuilder) beU16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.raw(tmp[:])
}

// writeBlock writes one USM block: 4-byte signature, BE32 blockSize, a
// 2-byte headerSkip, 2-byte footerSkip, optional streamId byte (for
// @SFA only, padded out to offset 12 first), then payload bytes sized so
// the trailing skip bytes are included in blockSize.
func (b *blockBuilder) writeBlock(sig string, headerSkip, footerSkip uint16, streamID uint8, payload []byte) {
	body := make([]byte, 0, 8+len(payload))
	hdr := make([]byte, headerSkip)
	binary.BigEndian.PutUint16(hdr[0:2], headerSkip)
	if len(hdr) > 2 {
		binary.BigEndian.PutUint16(hdr[2:4], footerSkip)
	}
	if sig == sigSFA && len(hdr) > 4 {
		hdr[4] = streamID
	}
	body = append(body, hdr...)
	body = append(body, payload...)
	body = append(body, make([]byte, footerSkip)...)

	b.raw([]byte(sig))
	b.beU32(uint32(len(body)))
	b.raw(body)
}

// TestDemuxRoutesVideoAndAudioStreams reproduces spec.md §8 scenario 6: one
// @SFV block and one @SFA block, each size=24 skip=8 footer=0 payload=16
// bytes, must yield two streams: a 16-byte .m2v and an audio stream
// classified by its payload's first four bytes.
func TestDemuxRoutesVideoAndAudioStreams(t *testing.T) {
	videoPayload := make([]byte, 16)
	for i := range videoPayload {
		videoPayload[i] = byte(0xC0 + i)
	}
	audioPayload := make([]byte, 16)
	copy(audioPayload, []byte("HCA\x00"))

	var b blockBuilder
	b.raw([]byte(sigCRID))
	b.beU32(0) // minimal CRID header block, no payload routed from it

	b.writeBlock(sigSFV, 8, 0, 0, videoPayload)
	b.writeBlock(sigSFA, 8, 0, 0, audioPayload)

	streams, err := Demux(b.buf)
	require.NoError(t, err)
	require.Len(t, streams, 2)

	var video, audio *Stream
	for i := range streams {
		switch streams[i].Kind {
		case KindVideo:
			video = &streams[i]
		case KindAudio:
			audio = &streams[i]
		}
	}
	require.NotNil(t, video)
	require.NotNil(t, audio)

	assert.Equal(t, ".m2v", video.Ext)
	assert.Len(t, video.Data, 16)
	assert.Equal(t, videoPayload, video.Data)

	assert.Equal(t, ".hca", audio.Ext)
	assert.Len(t, audio.Data, 16)
}

func TestDemuxNoCRIDMagicIsCorrupt(t *testing.T) {
	_, err := Demux([]byte("not a usm file"))
	assert.Error(t, err)
}

func TestClassifyAudioByMagic(t *testing.T) {
	cases := []struct {
		payload []byte
		wantExt string
	}{
		{append([]byte("AIXF"), make([]byte, 12)...), ".aix"},
		{append([]byte{0x80}, make([]byte, 15)...), ".adx"},
		{append([]byte("HCA\x00"), make([]byte, 12)...), ".hca"},
		{make([]byte, 16), ".bin"},
	}
	for _, c := range cases {
		_, ext := classify(sigSFA, c.payload)
		assert.Equal(t, c.wantExt, ext)
	}
}

func TestRecoverVideoNameFindsUSMSuffix(t *testing.T) {
	raw := make([]byte, 0, 128)
	raw = append(raw, []byte("CRID")...)
	raw = append(raw, []byte(dirStreamTag)...)
	raw = append(raw, make([]byte, 18)...) // 18-byte gap before the string table
	raw = append(raw, []byte("C:\\Game\\Movies\\intro.usm")...)
	raw = append(raw, 0)

	got := RecoverVideoName(raw)
	assert.Equal(t, "Game/Movies/intro.usm", got)
}

func TestRecoverVideoNameMissingTagReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", RecoverVideoName([]byte("no tag here")))
}
