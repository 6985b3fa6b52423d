package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
)

// PCMFormat describes raw PCM samples a native decode library handed back,
// ungrounded in any container of its own.
type PCMFormat struct {
	NumChannels   uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// riffChunkFmt is the canonical little-endian "fmt " chunk body, grounded on
// inAudible-NG-core/AA-ng.go's writeHeader (same field set and order).
type riffChunkFmt struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	BytesPerSec   uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

const wavFormatPCM = 1

// WriteWAV assembles a minimal RIFF/WAVE/fmt/data container around pcm,
// following the same chunk layout and field order as AA-ng.go's
// writeHeader: RIFF size, WAVE, "fmt " (16-byte PCM body), "data" plus size.
func WriteWAV(format PCMFormat, pcm []byte) ([]byte, error) {
	if format.NumChannels == 0 || format.SampleRate == 0 || format.BitsPerSample == 0 {
		return nil, fmt.Errorf("incomplete PCM format: %+v", format)
	}

	blockAlign := format.NumChannels * (format.BitsPerSample / 8)
	chunkFmt := riffChunkFmt{
		AudioFormat:   wavFormatPCM,
		NumChannels:   format.NumChannels,
		SampleRate:    format.SampleRate,
		BytesPerSec:   format.SampleRate * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: format.BitsPerSample,
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, chunkFmt)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// PCMExtractor is the native decode library's side of the boundary: turn a
// WEM payload into raw PCM samples plus their format. spec.md §9 treats the
// subprocess driver and an in-process native-library driver as equally valid
// Decoder implementations; NativeDecoder is the latter.
type PCMExtractor func(wem []byte) ([]byte, PCMFormat, error)

// NativeDecoder implements Decoder over an in-process PCM extraction
// library, assembling the WAV container itself rather than shelling out.
type NativeDecoder struct {
	Extract PCMExtractor
}

func (d NativeDecoder) Decode(_ context.Context, wem []byte) ([]byte, error) {
	pcm, format, err := d.Extract(wem)
	if err != nil {
		return nil, fmt.Errorf("extracting PCM: %w", err)
	}
	return WriteWAV(format, pcm)
}
