// Package summary accumulates per-dispatch file-outcome tallies and
// renders the final "Done" line spec.md §7 requires ("a final 'Done' line
// with extracted/failed/raw tallies"). It holds no behavior beyond
// bookkeeping; the dispatcher calls into it once per file.
package summary

import "fmt"

// Tally is the per-dispatch running count of how each file was handled.
type Tally struct {
	Extracted int // a post-processor fully handled the file
	Raw       int // written verbatim, whether by choice or fallback
	Failed    int // could not be read, decrypted or written at all
}

// RecordExtracted counts one post-processor-handled file.
func (t *Tally) RecordExtracted() { t.Extracted++ }

// RecordRaw counts one verbatim (or post-processor-fallback) write.
func (t *Tally) RecordRaw() { t.Raw++ }

// RecordFailed counts one file that could not be produced at all.
func (t *Tally) RecordFailed() { t.Failed++ }

// Total is the number of files accounted for across all three outcomes.
func (t Tally) Total() int { return t.Extracted + t.Raw + t.Failed }

// Line renders the final "Done" summary line (spec.md §7).
func (t Tally) Line() string {
	return fmt.Sprintf("Done: extracted=%d raw=%d failed=%d", t.Extracted, t.Raw, t.Failed)
}
