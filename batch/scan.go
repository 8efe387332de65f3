package batch

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/filepg/fpg/tools"
)

// Scan lists the working directory and builds one Unit per regular
// file whose extension is in the configured allow-list. The order is
// the directory-listing order, not sorted. A stat failure on any
// candidate aborts the scan; no partial inventory is returned.
func Scan(dir string, cfg Config, fops tools.FileOps, debugLvl uint8) ([]*Unit, error) {
	// debug (0=off, 1=debug, 2=high)
	debug := debugLvl >= DebugLow

	// list dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	units := make([]*Unit, 0, len(entries))
	for _, e := range entries {
		// regular files only
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if !detected(name, cfg.DetectedExtensions) {
			if debugLvl >= DebugHigh {
				log.Printf("DEBUG: %s/Scan: skip '%s'", packageName, name)
			}
			continue
		}

		// size snapshot (pre-encryption, never refreshed)
		size, err := fops.Size(filepath.Join(dir, name))
		if err != nil {
			log.Printf("ERROR: %s/Scan: stat '%s': %v", packageName, name, err)
			return nil, err
		}

		if debug {
			log.Printf("DEBUG: %s/Scan: detected '%s' (%s)", packageName, name, humanize.Bytes(uint64(size)))
		}
		units = append(units, NewUnit(dir, name, size))
	}

	// success
	return units, nil
}

// detected checks the final extension against the allow-list.
func detected(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, "."+ext) {
			return true
		}
	}
	return false
}
