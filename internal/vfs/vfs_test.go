package vfs

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/SherkeyXD/BydTools-sub000/internal/cipher"
	"github.com/SherkeyXD/BydTools-sub000/internal/config"
	"github.com/SherkeyXD/BydTools-sub000/internal/postproc"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blcBuilder struct {
	buf []byte
}

func (b *blcBuilder) u8(v uint8)  { b.buf = append(b.buf, v) }
func (b *blcBuilder) raw(p []byte) { b.buf = append(b.buf, p...) }
func (b *blcBuilder) u16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.raw(tmp[:])
}
func (b *blcBuilder) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.raw(tmp[:])
}
func (b *blcBuilder) u64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.raw(tmp[:])
}
func (b *blcBuilder) lpstring16(s string) {
	b.u16(uint16(len(s)))
	b.raw([]byte(s))
}
func (b *blcBuilder) md5(fill byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = fill
	}
	b.raw(out[:])
	return out
}

// hashField appends the 8-byte groupCfgHashName field whose first 4 bytes,
// reversed, hex-encode (uppercase) to want (spec.md §3's little-endian
// hash field; see decodeBlockIndex's reverseBytes).
func (b *blcBuilder) hashField(want [4]byte) {
	var rev [4]byte
	for i := range want {
		rev[i] = want[len(want)-1-i]
	}
	b.raw(rev[:])
	b.raw([]byte{0, 0, 0, 0})
}

// buildBLC assembles a full block index body (unencrypted) whose
// groupCfgHashName encodes to hashHex: no chunks when files is empty,
// otherwise one chunk holding every file in files.
func buildBLC(t *testing.T, hashHex [4]byte, files []fileSpec) []byte {
	t.Helper()
	var b blcBuilder
	b.u32(3) // version
	b.raw(make([]byte, 12))
	b.lpstring16("cfg")
	b.hashField(hashHex)
	b.u32(0)         // groupFileInfoNum
	b.u64(0)         // groupChunksLength
	b.u8(14)         // blockType (Table)
	if len(files) == 0 {
		b.u32(0) // chunkCount
		return b.buf
	}

	b.u32(1) // one chunk
	chunkMD5 := [16]byte{}
	for i := range chunkMD5 {
		chunkMD5[i] = 0xCC
	}
	b.raw(chunkMD5[:])
	b.md5(0xDD) // contentMD5
	b.u64(64)   // chunk length
	b.u8(14)
	b.u32(uint32(len(files)))
	for _, f := range files {
		b.lpstring16(f.name)
		b.u64(f.nameHash)
		b.raw(chunkMD5[:])
		b.md5(0xEE)
		b.u64(uint64(f.offset))
		b.u64(uint64(f.length))
		b.u8(14)
		if f.encrypted {
			b.u8(1)
			b.u64(f.ivSeed)
		} else {
			b.u8(0)
		}
	}
	return b.buf
}

type fileSpec struct {
	name      string
	nameHash  uint64
	offset    int64
	length    int64
	encrypted bool
	ivSeed    uint64
}

func testKey() [32]byte {
	var k [32]byte
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func encryptBLC(body []byte, key [32]byte) []byte {
	var nonce [12]byte
	for i := range nonce {
		nonce[i] = byte(0x40 + i)
	}
	enc := append([]byte(nil), body...)
	_ = cipher.ChaCha20XOR(key, nonce, enc)
	return append(append([]byte{}, nonce[:]...), enc...)
}

// TestParseBlockIndexHashCheck covers spec.md §8 scenario 1.
func TestParseBlockIndexHashCheck(t *testing.T) {
	key := testKey()
	body := buildBLC(t, [4]byte{0x07, 0xA1, 0xBB, 0x91}, nil)
	raw := encryptBLC(body, key)

	idx, err := ParseBlockIndex(raw, "07A1BB91", key)
	require.NoError(t, err)
	assert.Equal(t, "07A1BB91", idx.GroupCfgHashName)

	_, err = ParseBlockIndex(raw, "DEADBEEF", key)
	assert.ErrorIs(t, err, xerr.ErrCorruptOrWrongKey)
}

func TestDispatchWritesRawFileAndTalliesIt(t *testing.T) {
	key := testKey()
	payload := []byte("hello world, this is raw payload data")

	body := buildBLC(t, [4]byte{0x42, 0xA8, 0xFC, 0xA6}, []fileSpec{
		{name: "greeting.bin", nameHash: 1, offset: 0, length: int64(len(payload))},
	})
	raw := encryptBLC(body, key)

	root := t.TempDir()
	hash := "42A8FCA6"
	dir := filepath.Join(root, hash)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, hash+".blc"), raw, 0o644))

	idx, err := ParseBlockIndex(raw, hash, key)
	require.NoError(t, err)
	chunkPath := filepath.Join(dir, idx.Chunks[0].FileName())
	require.NoError(t, os.WriteFile(chunkPath, payload, 0o644))

	outDir := filepath.Join(root, "out")
	d := NewDispatcher(root, outDir, key, postproc.New(), nil)
	tally, err := d.Dispatch(config.Table)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Raw)
	assert.Equal(t, 0, tally.Failed)

	got, err := os.ReadFile(filepath.Join(outDir, "greeting.bin"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDescribeReportsPresentAndAbsentBlocks(t *testing.T) {
	key := testKey()
	body := buildBLC(t, [4]byte{0x42, 0xA8, 0xFC, 0xA6}, nil)
	raw := encryptBLC(body, key)

	root := t.TempDir()
	hash := "42A8FCA6"
	dir := filepath.Join(root, hash)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, hash+".blc"), raw, 0o644))

	results := Describe(root, key)
	var found bool
	for _, r := range results {
		if r.BlockType == config.Table {
			found = true
			assert.True(t, r.Present)
			assert.NoError(t, r.Err)
			assert.Equal(t, 0, r.ChunkCount)
		}
		if r.BlockType == config.Video {
			assert.False(t, r.Present)
		}
	}
	assert.True(t, found)
}
