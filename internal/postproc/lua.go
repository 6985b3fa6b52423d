package postproc

import (
	"fmt"
	"os"

	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/script"
)

// LuaProcessor decrypts an XXTEA-encrypted script block and, if the
// decrypted bytes pass script.LooksLikeLua, writes them with a ".lua"
// extension (spec.md §4.12 "lua → script decryption (renaming to .lua)").
// A payload that decrypts to something that doesn't look like Lua reports
// Handled: false so the dispatcher falls back to writing the raw bytes
// (spec.md §4.11 "Otherwise the script is treated as non-Lua").
type LuaProcessor struct {
	MasterKey string
}

func (p LuaProcessor) Process(payload []byte, destPath string, log logging.Logger) Result {
	decrypted, err := script.Decrypt(string(payload), p.MasterKey)
	if err != nil {
		return Result{Err: fmt.Errorf("decrypting script: %w", err)}
	}
	if !script.LooksLikeLua(decrypted) {
		log.Verbose("decrypted payload doesn't look like Lua, falling back to raw write", "path", destPath)
		return Result{Handled: false}
	}

	outPath := renameExt(destPath, ".lua")
	if err := os.WriteFile(outPath, decrypted, 0o644); err != nil {
		return Result{Err: fmt.Errorf("writing %s: %w", outPath, err)}
	}
	log.Verbose("decrypted script", "path", outPath)
	return Result{Handled: true}
}
