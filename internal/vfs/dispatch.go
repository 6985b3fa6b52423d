package vfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/SherkeyXD/BydTools-sub000/internal/config"
	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/postproc"
	"github.com/SherkeyXD/BydTools-sub000/internal/summary"
	"github.com/SherkeyXD/BydTools-sub000/internal/usm"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// Dispatcher drives one VFS extraction run (spec.md §4.3): resolving a
// block type's directory hash, loading its BLC index, and walking every
// chunk/file in index order.
type Dispatcher struct {
	Root      string
	Key       [32]byte
	OutputDir string
	Pipeline  *postproc.Pipeline // may be nil; every file is then written raw
	Log       logging.Logger
}

// NewDispatcher constructs a Dispatcher. log may be logging.Nop().
func NewDispatcher(root, outputDir string, key [32]byte, pipeline *postproc.Pipeline, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{Root: root, Key: key, OutputDir: outputDir, Pipeline: pipeline, Log: log}
}

// Dispatch extracts every file for one block type (spec.md §4.3). A BLC
// parse failure or hash mismatch aborts and is returned directly, as does
// any chunk open error other than a missing chunk file. A missing chunk
// file and per-file failures are recovered and reflected in the returned
// tally.
func (d *Dispatcher) Dispatch(bt config.BlockType) (summary.Tally, error) {
	var tally summary.Tally

	hash, ok := config.DirectoryHash(bt)
	if !ok {
		return tally, fmt.Errorf("no directory hash registered for block type %d: %w", bt, xerr.ErrNotFound)
	}

	dir := filepath.Join(d.Root, hash)
	blcPath := filepath.Join(dir, hash+".blc")
	idx, err := LoadBlockIndex(blcPath, hash, d.Key)
	if err != nil {
		return tally, err
	}

	d.Log.Info("dispatching block", "blockType", bt, "hash", hash, "chunks", len(idx.Chunks))

	for _, c := range idx.Chunks {
		cr, err := OpenChunk(dir, c)
		if err != nil {
			if errors.Is(err, xerr.ErrNotFound) {
				d.Log.Verbose("chunk file missing, skipping", "chunk", c.FileName())
				tally.Failed += len(c.Files)
				continue
			}
			return tally, err
		}
		d.dispatchChunk(bt, idx.Version, c, cr, &tally)
		cr.Close()
	}

	return tally, nil
}

func (d *Dispatcher) dispatchChunk(bt config.BlockType, version uint32, c Chunk, cr *ChunkReader, tally *summary.Tally) {
	for _, f := range c.Files {
		payload, err := cr.ReadFile(f, version, d.Key)
		if err != nil {
			d.Log.Error(err, "reading file failed, skipping", "file", f.Name, "chunk", c.FileName())
			tally.Failed++
			continue
		}

		destPath := filepath.Join(d.OutputDir, destinationName(bt, f, payload))
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			d.Log.Error(err, "creating output directory failed, skipping", "path", destPath)
			tally.Failed++
			continue
		}

		var res postproc.Result
		if d.Pipeline != nil {
			res = d.Pipeline.Run(bt, payload, destPath, d.Log)
		}
		if res.Err != nil {
			d.Log.Verbose("post-processor failed, falling back to raw write", "path", destPath, "err", res.Err)
		}
		if res.Handled {
			tally.RecordExtracted()
			continue
		}
		if err := os.WriteFile(destPath, payload, 0o644); err != nil {
			d.Log.Error(err, "raw write failed", "path", destPath)
			tally.RecordFailed()
			continue
		}
		tally.RecordRaw()
	}
}

// destinationName computes a file's output-relative path (spec.md §4.3
// "Per file, compute the destination path"). An empty name on a video
// block attempts USM header recovery, falling back to a hash-derived
// synthetic name.
func destinationName(bt config.BlockType, f File, payload []byte) string {
	if f.Name != "" {
		return f.Name
	}
	if bt == config.Video {
		if name := usm.RecoverVideoName(payload); name != "" {
			return name
		}
		return fmt.Sprintf("Video/%016X.usm", f.NameHash)
	}
	return fmt.Sprintf("%016X.bin", f.NameHash)
}

// BlockSummary describes one block type's presence/shape under a VFS root
// without reading any chunk payload (SPEC_FULL.md §5.1).
type BlockSummary struct {
	BlockType    config.BlockType
	Hash         string
	Present      bool
	GroupCfgName string
	ChunkCount   int
	FileCount    int
	Err          error
}

// Describe enumerates every known block type under root, parsing each
// present BLC header (but never its chunk files) for a --debug listing
// (SPEC_FULL.md §5.1).
func Describe(root string, key [32]byte) []BlockSummary {
	types := config.AllBlockTypes()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	out := make([]BlockSummary, 0, len(types))
	for _, bt := range types {
		hash, _ := config.DirectoryHash(bt)
		path := filepath.Join(root, hash, hash+".blc")

		if _, err := os.Stat(path); err != nil {
			out = append(out, BlockSummary{BlockType: bt, Hash: hash, Present: false})
			continue
		}

		idx, err := LoadBlockIndex(path, hash, key)
		if err != nil {
			out = append(out, BlockSummary{BlockType: bt, Hash: hash, Present: true, Err: err})
			continue
		}

		fileCount := 0
		for _, c := range idx.Chunks {
			fileCount += len(c.Files)
		}
		out = append(out, BlockSummary{
			BlockType:    bt,
			Hash:         hash,
			Present:      true,
			GroupCfgName: idx.GroupCfgName,
			ChunkCount:   len(idx.Chunks),
			FileCount:    fileCount,
		})
	}
	return out
}
