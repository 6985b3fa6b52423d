package pck

import (
	"fmt"
	"path"
	"strings"

	"github.com/SherkeyXD/BydTools-sub000/internal/namemap"
)

// Kind classifies an extracted PCK entry by its leading magic bytes
// (spec.md §4.6 "Dispatch by first-four-byte magic").
type Kind int

const (
	KindWEM Kind = iota
	KindBNK
	KindPlugin
	KindUnknown
)

var sigRIFF = []byte("RIFF")
var sigRIFX = []byte("RIFX")
var sigBKHD = []byte("BKHD")
var sigPLUG = []byte("PLUG")

// ExtractedFile is one entry pulled out of a PCK archive body.
type ExtractedFile struct {
	FileID   uint64
	Kind     Kind
	Data     []byte
	Name     string
	Embedded []EmbeddedWEM
}

// EmbeddedWEM is one WEM carved out of a BNK's DATA section (spec.md §4.7).
type EmbeddedWEM struct {
	ID   uint32
	Data []byte
}

// Source provides the raw bytes backing a PCK archive body: either the
// whole file (offsets absolute from file start) or a read-at-offset view
// over it. Kept as an interface so callers can back it with an os.File
// section reader instead of an in-memory buffer.
type Source interface {
	ReadAt(offset uint64, size uint32) ([]byte, error)
}

// ByteSource is a Source backed by an in-memory buffer.
type ByteSource []byte

func (b ByteSource) ReadAt(offset uint64, size uint32) ([]byte, error) {
	end := offset + uint64(size)
	if end > uint64(len(b)) {
		return nil, fmt.Errorf("read [%d,%d) exceeds archive body of %d bytes", offset, end, len(b))
	}
	return b[offset:end], nil
}

// Mode controls whether an Extractor expands BNK-embedded WEMs or leaves
// the BNK whole (SPEC_FULL.md §5.3, `--mode raw` in spec.md §6).
type Mode int

const (
	// ModeDecoded expands BNK-embedded WEMs into ExtractedFile.Embedded.
	ModeDecoded Mode = iota
	// ModeRaw leaves BNK payloads whole; Embedded is always empty.
	ModeRaw
)

// Extractor fetches and decodes PCK entries against a fixed name mapper and
// mode.
type Extractor struct {
	Mapper *namemap.Catalog // may be nil
	Mode   Mode

	// SaveUnknown opts in to writing entries whose magic bytes match none
	// of the known signatures as `<fileId>.unknown` (spec.md:145 "may
	// optionally be saved"); such entries are skipped by default.
	SaveUnknown bool
}

// Extract fetches and decodes one entry (spec.md §4.6). Under ModeRaw,
// BNK-embedded WEMs are left unexpanded (SPEC_FULL.md §5.3).
func (x Extractor) Extract(src Source, e FileEntry, obfuscated bool) (*ExtractedFile, error) {
	data, err := src.ReadAt(e.AbsoluteOffset(), uint32(e.Size))
	if err != nil {
		return nil, fmt.Errorf("reading entry %d: %w", e.FileID, err)
	}
	data = append([]byte(nil), data...)

	if obfuscated {
		xorStream(uint32(e.FileID&0xFFFFFFFF), 0, data)
	}

	out := &ExtractedFile{FileID: e.FileID, Data: data}
	out.Kind, out.Name = classify(e.FileID, data)
	out.Name = resolveName(out.Name, e.FileID, x.Mapper)

	if out.Kind == KindBNK && x.Mode == ModeDecoded {
		entries, err := ParseBNK(data)
		if err == nil {
			out.Embedded = make([]EmbeddedWEM, 0, len(entries))
			for _, be := range entries {
				end := be.Offset + uint64(be.Size)
				if end > uint64(len(data)) {
					continue
				}
				out.Embedded = append(out.Embedded, EmbeddedWEM{ID: be.ID, Data: data[be.Offset:end]})
			}
		}
	}

	return out, nil
}

// ExtractEntry extracts under ModeDecoded, kept for callers that have no
// need for the raw-mode switch.
func ExtractEntry(src Source, e FileEntry, obfuscated bool, mapper *namemap.Catalog) (*ExtractedFile, error) {
	return Extractor{Mapper: mapper, Mode: ModeDecoded}.Extract(src, e, obfuscated)
}

func classify(fileID uint64, data []byte) (Kind, string) {
	switch {
	case hasPrefix(data, sigRIFF), hasPrefix(data, sigRIFX):
		return KindWEM, fmt.Sprintf("%d.wem", fileID)
	case hasPrefix(data, sigBKHD):
		return KindBNK, fmt.Sprintf("%d.bnk", fileID)
	case hasPrefix(data, sigPLUG):
		return KindPlugin, fmt.Sprintf("%d.plg", fileID)
	default:
		return KindUnknown, fmt.Sprintf("%d.unknown", fileID)
	}
}

func hasPrefix(data, sig []byte) bool {
	return len(data) >= len(sig) && string(data[:len(sig)]) == string(sig)
}

// resolveName replaces the unmapped placeholder with a structured path if
// mapper resolves fileID (spec.md §4.6 "Name mapping when a mapper is
// present").
func resolveName(fallback string, fileID uint64, mapper *namemap.Catalog) string {
	if mapper == nil {
		return path.Join("unmapped", fallback)
	}
	resolved, err := mapper.Resolve(uint32(fileID))
	if err != nil {
		return path.Join("unmapped", fallback)
	}
	return strings.ReplaceAll(resolved, `\`, "/")
}

// ResolveEmbeddedName names a BNK-embedded WEM, keyed by (bankID, wemID)
// when unmapped (spec.md §4.6 "For BNK-embedded WEMs, key by the embedded
// WEM id").
func ResolveEmbeddedName(bankID uint64, wemID uint32, mapper *namemap.Catalog) string {
	if mapper == nil {
		return path.Join("unmapped", fmt.Sprintf("%d_%d", bankID, wemID))
	}
	resolved, err := mapper.Resolve(wemID)
	if err != nil {
		return path.Join("unmapped", fmt.Sprintf("%d_%d", bankID, wemID))
	}
	return strings.ReplaceAll(resolved, `\`, "/")
}
