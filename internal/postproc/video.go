package postproc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/usm"
)

// VideoProcessor demultiplexes a USM container into its elementary
// streams, writing one file per stream beside destPath's base name
// (spec.md §4.12 "video → USM demux (writing multiple files beside the
// original base name)").
type VideoProcessor struct{}

func (VideoProcessor) Process(payload []byte, destPath string, log logging.Logger) Result {
	streams, err := usm.Demux(payload)
	if err != nil {
		return Result{Err: fmt.Errorf("demuxing USM: %w", err)}
	}

	base := strings.TrimSuffix(destPath, filepath.Ext(destPath))
	used := make(map[string]bool, len(streams))
	for _, s := range streams {
		name := uniqueName(base, s.Ext, used)
		if err := os.WriteFile(name, s.Data, 0o644); err != nil {
			return Result{Err: fmt.Errorf("writing %s: %w", name, err)}
		}
		log.Verbose("wrote demuxed stream", "path", name, "kind", s.Kind)
	}
	return Result{Handled: true}
}

// uniqueName picks base+ext, appending an incrementing "_N" suffix on
// collision (spec.md §4.9 "On output name collision, append an
// incrementing suffix _N").
func uniqueName(base, ext string, used map[string]bool) string {
	name := base + ext
	for n := 1; used[name]; n++ {
		name = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	used[name] = true
	return name
}

func renameExt(p, newExt string) string {
	ext := filepath.Ext(p)
	if ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	return p + newExt
}
