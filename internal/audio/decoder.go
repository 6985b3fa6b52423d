// Package audio models the pluggable WEM→WAV decoding boundary spec.md §1
// and §9 describe as "an external capability" the core must not depend on.
// It defines the Decoder interface plus a bounded parallel fan-out helper
// for the §5 "parallel map over independent audio decode jobs" concurrency
// model.
package audio

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Decoder turns a WEM payload into WAV bytes. Implementations are equally
// valid external collaborators (spec.md §9): a subprocess driver shelling
// out to a decoder binary, or an in-process/native one. The core only ever
// depends on this interface.
type Decoder interface {
	Decode(ctx context.Context, wem []byte) ([]byte, error)
}

// Job is one independent audio-decode unit: a WEM payload bound for an
// output path.
type Job struct {
	WEM  []byte
	Dest string
}

// JobResult is the outcome of decoding one Job. Err is set on
// DecodingFallback (spec.md §7): the caller is expected to write WEM
// verbatim with its original extension and count the file as raw instead
// of extracted.
type JobResult struct {
	Job Job
	Err error
}

// DecodeAll runs dec over jobs with a bounded parallel fan-out, capped at
// runtime.NumCPU() (spec.md §5 "degree ≤ logical processor count"). Each
// job owns its own input buffer and output path, matching §5's "no
// cross-task communication primitive" model; a decode failure is recorded
// in the corresponding JobResult rather than aborting the others.
func DecodeAll(ctx context.Context, dec Decoder, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()))

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			wav, err := dec.Decode(ctx, job.WEM)
			if err != nil {
				results[i] = JobResult{Job: job, Err: fmt.Errorf("decoding %s: %w", job.Dest, err)}
				return nil
			}
			results[i] = JobResult{Job: Job{WEM: wav, Dest: job.Dest}}
			return nil
		})
	}
	_ = g.Wait() // individual errors are captured per-result, never aborts the group
	return results
}
