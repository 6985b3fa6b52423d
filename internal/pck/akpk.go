package pck

import (
	"fmt"

	"github.com/SherkeyXD/BydTools-sub000/internal/binreader"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

var akpkMagic = [4]byte{'A', 'K', 'P', 'K'}

// LanguageEntry is one row of the PCK language table (spec.md §4.5).
type LanguageEntry struct {
	ID   uint32
	Name string
}

// FileEntry is one row of a PCK banks/sounds/externals sector.
type FileEntry struct {
	FileID     uint64
	BlockSize  uint32
	Size       uint64
	RawOffset  uint32
	LanguageID uint32
}

// AbsoluteOffset computes the on-disk byte offset for e (spec.md §4.5
// "Actual on-disk offset").
func (e FileEntry) AbsoluteOffset() uint64 {
	if e.BlockSize == 0 {
		return uint64(e.RawOffset)
	}
	return uint64(e.RawOffset) * uint64(e.BlockSize)
}

// Header is a fully decoded PCK header (spec.md §4.5).
type Header struct {
	HeaderSize uint32
	Obfuscated bool
	Languages  []LanguageEntry
	Banks      []FileEntry
	Sounds     []FileEntry
	Externals  []FileEntry
}

// ParseHeader reads the PCK magic/headerSize prefix, deciphers an
// obfuscated payload if present, and parses the resulting sectors.
func ParseHeader(raw []byte) (*Header, error) {
	r := binreader.New(raw)

	magic, err := r.Raw(4)
	if err != nil {
		return nil, fmt.Errorf("reading PCK magic: %w", err)
	}
	headerSize, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading PCK header size: %w", err)
	}
	payload, err := r.Raw(int(headerSize))
	if err != nil {
		return nil, fmt.Errorf("reading PCK header payload: %w", err)
	}

	h := &Header{HeaderSize: headerSize}

	plain := payload
	if string(magic) != string(akpkMagic[:]) {
		h.Obfuscated = true
		plain = append([]byte(nil), payload...)
		xorStream(headerSize, 0, plain)
	}

	if err := h.parseSectors(plain); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) parseSectors(plain []byte) error {
	pr := binreader.New(plain)

	flag, err := pr.U32()
	if err != nil {
		return fmt.Errorf("reading PCK endianness flag: %w", err)
	}
	if flag != 1 {
		return fmt.Errorf("PCK endianness flag %#x: %w", flag, xerr.ErrUnsupportedEndianness)
	}

	languagesSize, err := pr.U32()
	if err != nil {
		return fmt.Errorf("reading languages sector size: %w", err)
	}
	banksSize, err := pr.U32()
	if err != nil {
		return fmt.Errorf("reading banks sector size: %w", err)
	}
	soundsSize, err := pr.U32()
	if err != nil {
		return fmt.Errorf("reading sounds sector size: %w", err)
	}

	const overheadWithoutExternals = 4 + 4 + 4 + 4 // flag + 3 sizes
	sum3 := int(languagesSize) + int(banksSize) + int(soundsSize)

	var externalsSize uint32
	hasExternals := len(plain)-overheadWithoutExternals > sum3
	if hasExternals {
		externalsSize, err = pr.U32()
		if err != nil {
			return fmt.Errorf("reading externals sector size: %w", err)
		}
	}

	languages, err := pr.Raw(int(languagesSize))
	if err != nil {
		return fmt.Errorf("reading languages sector: %w", err)
	}
	banks, err := pr.Raw(int(banksSize))
	if err != nil {
		return fmt.Errorf("reading banks sector: %w", err)
	}
	sounds, err := pr.Raw(int(soundsSize))
	if err != nil {
		return fmt.Errorf("reading sounds sector: %w", err)
	}
	var externals []byte
	if hasExternals {
		externals, err = pr.Raw(int(externalsSize))
		if err != nil {
			return fmt.Errorf("reading externals sector: %w", err)
		}
	}

	h.Languages, err = parseLanguageSector(languages)
	if err != nil {
		return fmt.Errorf("parsing language table: %w", err)
	}
	h.Banks, err = parseFileSector(banks, false)
	if err != nil {
		return fmt.Errorf("parsing banks sector: %w", err)
	}
	h.Sounds, err = parseFileSector(sounds, false)
	if err != nil {
		return fmt.Errorf("parsing sounds sector: %w", err)
	}
	if hasExternals {
		h.Externals, err = parseFileSector(externals, true)
		if err != nil {
			return fmt.Errorf("parsing externals sector: %w", err)
		}
	}
	return nil
}

func parseLanguageSector(data []byte) ([]LanguageEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r := binreader.New(data)
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	entries := make([]LanguageEntry, count)
	for i := range entries {
		id, err := r.U32()
		if err != nil {
			return nil, err
		}
		name, err := r.UTF16OrUTF8NulTerminated()
		if err != nil {
			return nil, err
		}
		entries[i] = LanguageEntry{ID: id, Name: name}
	}
	return entries, nil
}

// parseFileSector decodes a banks/sounds/externals sector, auto-detecting
// standard (20-byte) vs alt-mode (24-byte) entries (spec.md §4.5 "Entry-size
// auto-detect").
func parseFileSector(data []byte, isExternals bool) ([]FileEntry, error) {
	if len(data) < 4 {
		return nil, nil
	}
	r := binreader.New(data)
	count, err := r.U32()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	entrySize := (len(data) - 4) / int(count)
	altMode := entrySize >= 24

	entries := make([]FileEntry, count)
	for i := range entries {
		var e FileEntry
		if isExternals && altMode {
			e.FileID, err = r.U64()
		} else {
			var v uint32
			v, err = r.U32()
			e.FileID = uint64(v)
		}
		if err != nil {
			return nil, fmt.Errorf("reading entry %d fileId: %w", i, err)
		}

		e.BlockSize, err = r.U32()
		if err != nil {
			return nil, fmt.Errorf("reading entry %d blockSize: %w", i, err)
		}

		if !isExternals && altMode {
			e.Size, err = r.U64()
		} else {
			var v uint32
			v, err = r.U32()
			e.Size = uint64(v)
		}
		if err != nil {
			return nil, fmt.Errorf("reading entry %d size: %w", i, err)
		}

		e.RawOffset, err = r.U32()
		if err != nil {
			return nil, fmt.Errorf("reading entry %d rawOffset: %w", i, err)
		}
		e.LanguageID, err = r.U32()
		if err != nil {
			return nil, fmt.Errorf("reading entry %d languageId: %w", i, err)
		}

		entries[i] = e
	}
	return entries, nil
}
