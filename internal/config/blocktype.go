package config

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockType enumerates the VFS block kinds addressed by the static
// directory-hash table in spec.md §6.
type BlockType uint8

const (
	InitAudio          BlockType = 1
	InitBundle         BlockType = 2
	BundleManifest     BlockType = 3
	InitialExtendData  BlockType = 5
	Audio              BlockType = 11
	Bundle             BlockType = 12
	DynamicStreaming   BlockType = 13
	Table              BlockType = 14
	Video              BlockType = 15
	IV                 BlockType = 16
	Streaming          BlockType = 17
	JsonData           BlockType = 18
	Lua                BlockType = 19
	IFixPatchOut       BlockType = 21
	ExtendData         BlockType = 22
	AudioChinese       BlockType = 30
	AudioEnglish       BlockType = 31
	AudioJapanese      BlockType = 32
	AudioKorean        BlockType = 33
)

// blockDirectories is the exact, case-insensitive block-type → directory
// hash mapping from spec.md §6.
var blockDirectories = map[BlockType]string{
	InitAudio:         "07A1BB91",
	InitBundle:        "0CE8FA57",
	BundleManifest:    "1CDDBF1F",
	InitialExtendData: "3C9D9D2D",
	Audio:             "24ED34CF",
	Bundle:            "7064D8E2",
	DynamicStreaming:  "23D53F5D",
	Table:             "42A8FCA6",
	Video:             "55FC21C6",
	IV:                "A63D7E6A",
	Streaming:         "C3442D43",
	JsonData:          "775A31D1",
	Lua:               "19E3AE45",
	IFixPatchOut:      "DAFE52C9",
	ExtendData:        "D6E622F7",
	AudioChinese:      "E1E7D7CE",
	AudioEnglish:      "A31457D0",
	AudioJapanese:     "F668D4EE",
	AudioKorean:       "E9D31017",
}

// blockNames is the reverse lookup used by the CLI's
// --blocktype NameOrNumeric parsing (spec.md §6): the canonical name of
// every block type in blockDirectories.
var blockNames = map[string]BlockType{
	"InitAudio":          InitAudio,
	"InitBundle":         InitBundle,
	"BundleManifest":     BundleManifest,
	"InitialExtendData":  InitialExtendData,
	"Audio":              Audio,
	"Bundle":             Bundle,
	"DynamicStreaming":   DynamicStreaming,
	"Table":              Table,
	"Video":              Video,
	"IV":                 IV,
	"Streaming":          Streaming,
	"JsonData":           JsonData,
	"Lua":                Lua,
	"IFixPatchOut":       IFixPatchOut,
	"ExtendData":         ExtendData,
	"AudioChinese":       AudioChinese,
	"AudioEnglish":       AudioEnglish,
	"AudioJapanese":      AudioJapanese,
	"AudioKorean":        AudioKorean,
}

// DirectoryHash returns the upper-case hex directory name for a block
// type, and whether it is known.
func DirectoryHash(bt BlockType) (string, bool) {
	h, ok := blockDirectories[bt]
	return h, ok
}

// BlockTypeByName resolves a block type by its canonical name
// (case-insensitive) or by numeric string, for the CLI's
// --blocktype NameOrNumeric flag (spec.md §6). The CLI owns turning raw
// flag text into calls here; this function only knows names and numbers.
func BlockTypeByName(name string) (BlockType, bool) {
	for n, bt := range blockNames {
		if strings.EqualFold(n, name) {
			return bt, true
		}
	}
	if n, err := strconv.ParseUint(name, 10, 8); err == nil {
		bt := BlockType(n)
		if _, ok := blockDirectories[bt]; ok {
			return bt, true
		}
	}
	return 0, false
}

// AllBlockTypes returns every known block type, for --debug enumeration
// (SPEC_FULL.md §5.1).
func AllBlockTypes() []BlockType {
	out := make([]BlockType, 0, len(blockDirectories))
	for bt := range blockDirectories {
		out = append(out, bt)
	}
	return out
}

// Name returns bt's canonical name, for CLI/debug output.
func (bt BlockType) Name() string {
	for n, v := range blockNames {
		if v == bt {
			return n
		}
	}
	return fmt.Sprintf("BlockType(%d)", uint8(bt))
}
