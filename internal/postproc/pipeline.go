// Package postproc implements the post-processor pipeline (spec.md §4.12):
// a registry mapping block type to a capability object that may transform,
// rename, or reject a payload before it is written. This follows the
// design note in spec.md §9 ("Plugin-style post-processor map... Model as
// a mapping from block type to a capability object... registration is at
// construction time"), in the shape of WiCOS64's capability-map-style
// internal dispatch (named handlers registered once, looked up by key).
package postproc

import (
	"github.com/SherkeyXD/BydTools-sub000/internal/config"
	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
)

// Result is the explicit outcome of a post-processor run, replacing the
// exception-driven control flow spec.md §9 flags for re-architecture.
type Result struct {
	// Handled is true if the processor fully wrote its own output(s) and
	// the dispatcher should not also write the raw payload.
	Handled bool
	// Err is non-nil on PostProcessorFailure (spec.md §7): the dispatcher
	// recovers by writing the raw payload to destPath.
	Err error
}

// Processor transforms, renames, or rejects a payload bound for destPath.
// A Processor that returns Handled==true is responsible for writing
// whatever files it wants to disk itself (possibly more than one, as USM
// demux does); one that returns an error or Handled==false leaves the raw
// write to the dispatcher.
type Processor interface {
	Process(payload []byte, destPath string, log logging.Logger) Result
}

// Pipeline is the per-block-type processor registry.
type Pipeline struct {
	processors map[config.BlockType]Processor
}

// New constructs an empty Pipeline. Use Register to populate it.
func New() *Pipeline {
	return &Pipeline{processors: make(map[config.BlockType]Processor)}
}

// Register binds a Processor to a block type, overwriting any previous
// registration. Call during construction, before any dispatch runs.
func (p *Pipeline) Register(bt config.BlockType, proc Processor) {
	p.processors[bt] = proc
}

// Lookup returns the Processor registered for bt, if any.
func (p *Pipeline) Lookup(bt config.BlockType) (Processor, bool) {
	proc, ok := p.processors[bt]
	return proc, ok
}

// Run applies the processor registered for bt, if any, to payload/destPath.
// Returns Handled==false with a nil error when no processor is registered,
// which the dispatcher treats identically to an explicit pass-through.
func (p *Pipeline) Run(bt config.BlockType, payload []byte, destPath string, log logging.Logger) Result {
	proc, ok := p.processors[bt]
	if !ok {
		return Result{Handled: false}
	}
	return proc.Process(payload, destPath, log)
}
