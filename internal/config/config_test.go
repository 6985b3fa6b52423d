package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
}

func TestLoadParsesJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"output_layout":{"Table":"tables"}}`), 0o644))

	s, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "tables", s.OutputLayout["Table"])
}

func TestChaCha20KeyDefaultsWhenUnset(t *testing.T) {
	s := Settings{}
	key, err := s.ChaCha20Key()
	require.NoError(t, err)
	assert.NotZero(t, key)
}

func TestChaCha20KeyRejectsWrongLength(t *testing.T) {
	_, err := DecodeKey("dG9vc2hvcnQ=")
	assert.Error(t, err)
}

func TestScriptMasterKeyEmptyWhenUnset(t *testing.T) {
	k, err := Settings{}.ScriptMasterKey()
	require.NoError(t, err)
	assert.Empty(t, k)
}

func TestScriptMasterKeyDecodesOverride(t *testing.T) {
	s := Settings{ScriptMasterKeyB64: "c2VjcmV0"} // "secret"
	k, err := s.ScriptMasterKey()
	require.NoError(t, err)
	assert.Equal(t, "secret", k)
}

func TestDirectoryHashAndBlockTypeByName(t *testing.T) {
	h, ok := DirectoryHash(Table)
	require.True(t, ok)
	assert.Equal(t, "42A8FCA6", h)

	bt, ok := BlockTypeByName("table")
	require.True(t, ok)
	assert.Equal(t, Table, bt)

	_, ok = BlockTypeByName("NoSuchBlock")
	assert.False(t, ok)
}

func TestBlockTypeByNameResolvesNumericString(t *testing.T) {
	bt, ok := BlockTypeByName("14")
	require.True(t, ok)
	assert.Equal(t, Table, bt)

	_, ok = BlockTypeByName("200")
	assert.False(t, ok, "200 is not a registered block type")
}

func TestAllBlockTypesCoversTable(t *testing.T) {
	all := AllBlockTypes()
	assert.Len(t, all, 19)
}

func TestBlockTypeNameRoundTripsWithBlockTypeByName(t *testing.T) {
	assert.Equal(t, "Table", Table.Name())

	bt, ok := BlockTypeByName(Video.Name())
	require.True(t, ok)
	assert.Equal(t, Video, bt)

	assert.Equal(t, "BlockType(200)", BlockType(200).Name())
}
