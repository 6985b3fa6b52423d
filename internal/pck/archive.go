package pck

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/summary"
)

// ExtractAll writes every bank, sound, and external entry in h to
// outputDir, expanding BNK-embedded WEMs unless x.Mode is ModeRaw
// (spec.md §4.6, SPEC_FULL.md §5.3). Entries whose magic matched none of
// the known signatures are skipped unless x.SaveUnknown is set (spec.md:145
// "may optionally be saved as <fileId>.unknown"). A per-entry failure is
// recorded and does not abort the remaining entries, the same recovery
// policy internal/vfs.Dispatcher applies per file.
func (x Extractor) ExtractAll(src Source, h *Header, outputDir string, log logging.Logger) summary.Tally {
	if log == nil {
		log = logging.Nop()
	}
	var tally summary.Tally

	extractSet := func(entries []FileEntry) {
		for _, e := range entries {
			out, err := x.Extract(src, e, h.Obfuscated)
			if err != nil {
				log.Error(err, "extracting entry failed, skipping", "fileId", e.FileID)
				tally.RecordFailed()
				continue
			}
			if out.Kind == KindUnknown && !x.SaveUnknown {
				log.Verbose("unrecognized entry magic, skipping (SaveUnknown is off)", "fileId", e.FileID)
				continue
			}
			if err := writeEntry(outputDir, out.Name, out.Data); err != nil {
				log.Error(err, "writing entry failed", "name", out.Name)
				tally.RecordFailed()
				continue
			}
			tally.RecordRaw()

			for _, emb := range out.Embedded {
				name := ResolveEmbeddedName(out.FileID, emb.ID, x.Mapper)
				if err := writeEntry(outputDir, name, emb.Data); err != nil {
					log.Error(err, "writing embedded WEM failed", "name", name)
					tally.RecordFailed()
					continue
				}
				tally.RecordRaw()
			}
		}
	}

	extractSet(h.Banks)
	extractSet(h.Sounds)
	extractSet(h.Externals)

	return tally
}

func writeEntry(outputDir, name string, data []byte) error {
	dest := filepath.Join(outputDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(dest, data, 0o644)
}
