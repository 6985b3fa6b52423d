package postproc

import (
	"fmt"
	"os"

	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/sparkbuffer"
)

// TableProcessor decodes a SparkBuffer typed-binary payload to JSON,
// renaming the destination's extension to ".json" (spec.md §4.12 "table →
// SparkBuffer to JSON").
type TableProcessor struct{}

func (TableProcessor) Process(payload []byte, destPath string, log logging.Logger) Result {
	out, err := sparkbuffer.DecodeToJSON(payload)
	if err != nil {
		return Result{Err: fmt.Errorf("decoding SparkBuffer table: %w", err)}
	}

	outPath := renameExt(destPath, ".json")
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return Result{Err: fmt.Errorf("writing %s: %w", outPath, err)}
	}
	log.Verbose("decoded table", "path", outPath)
	return Result{Handled: true}
}
