package vfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SherkeyXD/BydTools-sub000/internal/cipher"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// ChunkReader opens one .chk file and reads individual entries from it by
// offset/length, decrypting per-file as needed (spec.md §4.3-§4.4).
type ChunkReader struct {
	f    *os.File
	path string
}

// OpenChunk opens the chunk file for c under dir (<root>/<hash>/<chunkMd5>.chk).
func OpenChunk(dir string, c Chunk) (*ChunkReader, error) {
	path := filepath.Join(dir, c.FileName())
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("opening chunk %q: %w", path, xerr.ErrNotFound)
		}
		return nil, fmt.Errorf("opening chunk %q: %w", path, err)
	}
	return &ChunkReader{f: f, path: path}, nil
}

// Close closes the underlying chunk file.
func (cr *ChunkReader) Close() error {
	return cr.f.Close()
}

// ReadFile reads a File's raw payload and, if it is encrypted, decrypts it
// in place with the BLC key and a nonce built from version+ivSeed
// (spec.md §4.4).
func (cr *ChunkReader) ReadFile(f File, version uint32, key [32]byte) ([]byte, error) {
	if _, err := cr.f.Seek(f.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking in chunk %q: %w", cr.path, err)
	}

	buf := make([]byte, f.Len)
	if _, err := io.ReadFull(cr.f, buf); err != nil {
		return nil, fmt.Errorf("reading %d bytes from chunk %q at offset %d: %w", f.Len, cr.path, f.Offset, xerr.ErrTruncatedInput)
	}

	if !f.UseEncrypt {
		return buf, nil
	}

	nonce := cipher.FileNonce(version, f.IVSeed)
	if err := cipher.ChaCha20XOR(key, nonce, buf); err != nil {
		return nil, fmt.Errorf("decrypting file payload: %w", err)
	}
	return buf, nil
}
