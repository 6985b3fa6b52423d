package pck

import (
	"fmt"

	"github.com/SherkeyXD/BydTools-sub000/internal/binreader"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// BNKEntry is one WEM embedded in a Wwise soundbank, with its offset already
// rebased onto the DATA section (spec.md §4.7).
type BNKEntry struct {
	ID     uint32
	Offset uint64
	Size   uint32
}

// ParseBNK scans a BNK's sequential sections, collecting DIDX's entry
// triples and rebasing them against DATA's absolute start.
func ParseBNK(raw []byte) ([]BNKEntry, error) {
	r := binreader.New(raw)

	var entries []BNKEntry
	dataBase := -1

	for r.Len() >= 8 {
		sectionStart := r.Offset()
		sig, err := r.Raw(4)
		if err != nil {
			return nil, fmt.Errorf("reading BNK section signature: %w", err)
		}
		size, err := r.U32()
		if err != nil {
			return nil, fmt.Errorf("reading BNK section size: %w", err)
		}

		switch string(sig) {
		case "DIDX":
			count := int(size) / 12
			entries = make([]BNKEntry, count)
			for i := 0; i < count; i++ {
				id, err := r.U32()
				if err != nil {
					return nil, fmt.Errorf("reading DIDX entry %d id: %w", i, err)
				}
				off, err := r.U32()
				if err != nil {
					return nil, fmt.Errorf("reading DIDX entry %d offset: %w", i, err)
				}
				entrySize, err := r.U32()
				if err != nil {
					return nil, fmt.Errorf("reading DIDX entry %d size: %w", i, err)
				}
				entries[i] = BNKEntry{ID: id, Offset: uint64(off), Size: entrySize}
			}
		case "DATA":
			dataBase = r.Offset()
		}

		next := sectionStart + 8 + int(size)
		if next <= sectionStart {
			break
		}
		if err := r.Seek(next); err != nil {
			break
		}
	}

	if dataBase < 0 {
		return nil, fmt.Errorf("BNK has no DATA section: %w", xerr.ErrCorruptOrWrongKey)
	}
	for i := range entries {
		entries[i].Offset += uint64(dataBase)
	}
	return entries, nil
}
