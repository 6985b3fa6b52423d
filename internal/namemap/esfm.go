// Package namemap resolves numeric Wwise identifiers to human-readable
// paths via a compact binary catalogue file, custom format "ESFM"
// (spec.md §4.10). Only PCK extraction consults this package, and only
// when a caller supplies a catalogue path — it has no effect on VFS
// extraction.
//
// The "parse a handful of fixed-size sector descriptors, then resolve
// on demand by walking offset chains into each sector" shape follows the
// same cursor-and-sector style as internal/pck's AKPK header, generalized
// to ESFM's language/strings/words/files/keys/music layout.
package namemap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SherkeyXD/BydTools-sub000/internal/binreader"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

var esfmMagic = [4]byte{'E', 'S', 'F', 'M'}
var esfmVersion = [2]byte{0x33, 0x30}

// keyRecordSize is the fixed size of one keys-sector record: 3 packed
// bytes (language index + file offset) followed by a 4-byte big-endian
// Wwise identifier. The spec names the packed prefix exactly but leaves
// the trailing identifier's width to the Wwise convention of a 32-bit
// short ID (see DESIGN.md's Open Question log).
const keyRecordSize = 7

// musicRoot is the literal folder name music-key paths are rooted under.
// Not specified in the source catalogue; chosen as a stable, readable
// default (see DESIGN.md).
const musicRoot = "Music"

type sector struct {
	offset uint32
	size   uint32
}

// Catalog is a parsed ESFM name-mapping catalogue.
type Catalog struct {
	GameName  string
	Languages []string

	raw        []byte
	strings    sector
	words      sector
	files      sector
	keys       sector
	music      sector
	musicByID  map[uint32]string
}

// Parse reads an ESFM catalogue from raw bytes.
func Parse(raw []byte) (*Catalog, error) {
	r := binreader.New(raw)

	magic, err := r.Raw(4)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != string(esfmMagic[:]) {
		return nil, fmt.Errorf("magic %q, want %q: %w", magic, esfmMagic, xerr.ErrCorruptOrWrongKey)
	}
	if _, err := r.Raw(2); err != nil { // reserved
		return nil, err
	}
	ver, err := r.Raw(2)
	if err != nil {
		return nil, err
	}
	if ver[0] != esfmVersion[0] || ver[1] != esfmVersion[1] {
		return nil, fmt.Errorf("version %x, want %x: %w", ver, esfmVersion, xerr.ErrCorruptOrWrongKey)
	}
	if _, err := r.Raw(2); err != nil { // reserved
		return nil, err
	}
	gameName, err := r.LPString16()
	if err != nil {
		return nil, fmt.Errorf("reading game name: %w", err)
	}
	if _, err := r.U8(); err != nil { // opaque version byte, see DESIGN.md
		return nil, err
	}

	langSector, err := readSector(r)
	if err != nil {
		return nil, fmt.Errorf("reading languages sector descriptor: %w", err)
	}
	stringsSector, err := readSector(r)
	if err != nil {
		return nil, fmt.Errorf("reading strings sector descriptor: %w", err)
	}
	wordsSector, err := readSector(r)
	if err != nil {
		return nil, fmt.Errorf("reading words sector descriptor: %w", err)
	}
	filesSector, err := readSector(r)
	if err != nil {
		return nil, fmt.Errorf("reading files sector descriptor: %w", err)
	}
	keysSector, err := readSector(r)
	if err != nil {
		return nil, fmt.Errorf("reading keys sector descriptor: %w", err)
	}
	musicSector, err := readSector(r)
	if err != nil {
		return nil, fmt.Errorf("reading music sector descriptor: %w", err)
	}

	langs, err := parseLanguages(raw, langSector)
	if err != nil {
		return nil, fmt.Errorf("parsing languages sector: %w", err)
	}
	musicByID, err := parseMusic(raw, musicSector)
	if err != nil {
		return nil, fmt.Errorf("parsing music sector: %w", err)
	}

	return &Catalog{
		GameName:  gameName,
		Languages: langs,
		raw:       raw,
		strings:   stringsSector,
		words:     wordsSector,
		files:     filesSector,
		keys:      keysSector,
		music:     musicSector,
		musicByID: musicByID,
	}, nil
}

func readSector(r *binreader.Reader) (sector, error) {
	off, err := r.U24BE()
	if err != nil {
		return sector{}, err
	}
	size, err := r.U24BE()
	if err != nil {
		return sector{}, err
	}
	return sector{offset: off, size: size}, nil
}

func parseLanguages(raw []byte, s sector) ([]string, error) {
	if s.size == 0 {
		return nil, nil
	}
	r := binreader.New(raw)
	if err := r.Seek(int(s.offset)); err != nil {
		return nil, err
	}
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	names := make([]string, count)
	for i := range names {
		name, err := r.LPString16()
		if err != nil {
			return nil, fmt.Errorf("language %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}

func parseMusic(raw []byte, s sector) (map[uint32]string, error) {
	out := make(map[uint32]string)
	if s.size == 0 {
		return out, nil
	}
	r := binreader.New(raw)
	if err := r.Seek(int(s.offset)); err != nil {
		return nil, err
	}
	end := int(s.offset) + int(s.size)
	for r.Offset() < end {
		id, err := r.U32BE()
		if err != nil {
			return nil, err
		}
		name, err := r.LPString16()
		if err != nil {
			return nil, fmt.Errorf("music record for id %d: %w", id, err)
		}
		out[id] = name
	}
	return out, nil
}

// Resolve translates a numeric Wwise identifier to a human-readable path
// (spec.md §4.10 "Resolution"). Music-sector entries take priority; failing
// that, the keys sector is scanned for a matching identifier and its
// language/file-offset pair is walked through the files/words/strings
// sector chain.
func (c *Catalog) Resolve(id uint32) (string, error) {
	if name, ok := c.musicByID[id]; ok {
		return musicRoot + `\` + name, nil
	}

	langIdx, fileOffset, found, err := c.findKey(id)
	if err != nil {
		return "", fmt.Errorf("scanning keys sector: %w", err)
	}
	if !found {
		return "", fmt.Errorf("identifier %d not found in catalogue: %w", id, xerr.ErrNotFound)
	}
	_ = langIdx // language selects which entry set applies; not part of the output path itself

	segments, err := c.readFileSegments(fileOffset)
	if err != nil {
		return "", fmt.Errorf("resolving file offset %d: %w", fileOffset, err)
	}
	return strings.Join(segments, `\`), nil
}

func (c *Catalog) findKey(id uint32) (langIdx uint8, fileOffset uint32, found bool, err error) {
	r := binreader.New(c.raw)
	if err := r.Seek(int(c.keys.offset)); err != nil {
		return 0, 0, false, err
	}
	end := int(c.keys.offset) + int(c.keys.size)
	for r.Offset()+keyRecordSize <= end {
		packed, err := r.U24BE()
		if err != nil {
			return 0, 0, false, err
		}
		wwiseID, err := r.U32BE()
		if err != nil {
			return 0, 0, false, err
		}
		if wwiseID == id {
			return uint8(packed >> 22), packed & 0x3FFFFF, true, nil
		}
	}
	return 0, 0, false, nil
}

// readFileSegments walks one files-sector record into its ordered list of
// path segments (spec.md §4.10 "Resolution"; §4.10 "path segments by \").
func (c *Catalog) readFileSegments(fileOffset uint32) ([]string, error) {
	r := binreader.New(c.raw)
	if err := r.Seek(int(c.files.offset) + int(fileOffset)); err != nil {
		return nil, err
	}
	partCount, err := r.U8()
	if err != nil {
		return nil, err
	}
	segments := make([]string, partCount)
	for i := range segments {
		wordOff, err := r.U24BE()
		if err != nil {
			return nil, fmt.Errorf("word offset %d: %w", i, err)
		}
		seg, err := c.readWordSegment(wordOff)
		if err != nil {
			return nil, fmt.Errorf("word at offset %d: %w", wordOff, err)
		}
		segments[i] = seg
	}
	return segments, nil
}

// readWordSegment reads one words-sector record: a count of string-pool
// offsets whose resolved pieces are joined with "_" (spec.md §4.10 "Parts
// are joined by _").
func (c *Catalog) readWordSegment(wordOffset uint32) (string, error) {
	r := binreader.New(c.raw)
	if err := r.Seek(int(c.words.offset) + int(wordOffset)); err != nil {
		return "", err
	}
	partCount, err := r.U8()
	if err != nil {
		return "", err
	}
	parts := make([]string, partCount)
	for i := range parts {
		strOff, err := r.U16()
		if err != nil {
			return "", fmt.Errorf("string offset %d: %w", i, err)
		}
		p, err := c.readStringRecord(uint32(strOff))
		if err != nil {
			return "", fmt.Errorf("string at offset %d: %w", strOff, err)
		}
		parts[i] = p
	}
	return strings.Join(parts, "_"), nil
}

// readStringRecord reads one strings-sector entry: a lead byte that is
// either a direct UTF-8 length (<=128) or, when >128, a marker that the
// following (lead-128) big-endian bytes are a packed numeric value
// (spec.md §4.10 "A string record is either a UTF-8 byte sequence or a
// packed numeric").
func (c *Catalog) readStringRecord(off uint32) (string, error) {
	r := binreader.New(c.raw)
	if err := r.Seek(int(c.strings.offset) + int(off)); err != nil {
		return "", err
	}
	lead, err := r.U8()
	if err != nil {
		return "", err
	}
	if lead > 128 {
		n := int(lead) - 128
		b, err := r.Raw(n)
		if err != nil {
			return "", err
		}
		var v uint64
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return strconv.FormatUint(v, 10), nil
	}
	b, err := r.Raw(int(lead))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
