package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// SubprocessDecoder drives an external WEM→WAV decoder binary (e.g.
// vgmstream-cli), one of the two equally valid Decoder implementations
// spec.md §9 allows (the other being an in-process/native driver). Input
// and output are staged through a scoped temp directory per spec.md §5
// ("Temporary directories created during PCK audio decoding are owned
// exclusively by that dispatch"), removed on every exit path.
type SubprocessDecoder struct {
	// Command is the decoder binary, e.g. "vgmstream-cli".
	Command string
	// Args are extra arguments inserted before the input/output paths.
	Args []string
	// TempDir is the scratch directory for staged input/output files.
	TempDir string
}

func (d SubprocessDecoder) Decode(ctx context.Context, wem []byte) ([]byte, error) {
	dir, err := os.MkdirTemp(d.TempDir, "bydtools-decode-*")
	if err != nil {
		return nil, fmt.Errorf("creating decode scratch dir: %w", err)
	}
	defer removeDirWithRetry(dir)

	inPath := filepath.Join(dir, "in.wem")
	outPath := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(inPath, wem, 0o600); err != nil {
		return nil, fmt.Errorf("staging decoder input: %w", err)
	}

	args := append(append([]string{}, d.Args...), "-o", outPath, inPath)
	cmd := exec.CommandContext(ctx, d.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s: %w (%s)", d.Command, err, stderr.String())
	}

	wav, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading decoder output: %w", err)
	}
	return wav, nil
}

// removeDirWithRetry deletes dir, retrying up to three times spaced 500ms
// apart before falling back to best-effort per-file removal (spec.md §5
// "retries on rmdir failure use three bounded attempts spaced 500ms apart,
// then best-effort per-file deletion").
func removeDirWithRetry(dir string) {
	const attempts = 3
	for i := 0; i < attempts; i++ {
		if err := os.RemoveAll(dir); err == nil {
			return
		}
		if i < attempts-1 {
			time.Sleep(500 * time.Millisecond)
		}
	}
	bestEffortRemove(dir)
}

func bestEffortRemove(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
	_ = os.Remove(dir)
}
