package usm

import (
	"bytes"
	"strings"
)

const dirStreamTag = "CRIUSF_DIR_STREAM"

// RecoverVideoName locates the CRID header's "CRIUSF_DIR_STREAM" tag and
// walks NUL-terminated strings starting 18 bytes past it until one ends in
// ".usm" (case-insensitive), returning its path with any drive/root prefix
// stripped (spec.md §4.9 "Video name recovery"). Returns "" if no such
// string is found.
func RecoverVideoName(raw []byte) string {
	tagIdx := bytes.Index(raw, []byte(dirStreamTag))
	if tagIdx < 0 {
		return ""
	}
	pos := tagIdx + len(dirStreamTag) + 18
	for pos < len(raw) {
		end := bytes.IndexByte(raw[pos:], 0)
		if end < 0 {
			break
		}
		s := string(raw[pos : pos+end])
		if end == 0 {
			pos += 1
			continue
		}
		if strings.HasSuffix(strings.ToLower(s), ".usm") {
			return stripRoot(s)
		}
		pos += end + 1
	}
	return ""
}

// stripRoot removes a leading drive letter or path separator so the result
// is relative (spec.md §4.9: "Strip any drive/root prefix").
func stripRoot(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	if i := strings.Index(s, ":"); i >= 0 && i+1 < len(s) && s[i+1] == '/' {
		s = s[i+2:]
	}
	return strings.TrimPrefix(s, "/")
}
