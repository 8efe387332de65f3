package tools

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
)

var _ Splitter = (*ExecSplit)(nil)
var _ Splitter = (*NativeSplit)(nil)

// ExecSplit shells out to GNU split(1). The piece count is taken from
// the line count of the --verbose output (one 'creating file ...' line
// per piece).
type ExecSplit struct {
	bin string
}

// NewExecSplit returns the GNU split backend.
func NewExecSplit() *ExecSplit {
	return &ExecSplit{bin: "split"}
}

// Split runs: split --bytes=N --numeric-suffixes --suffix-length=2 --verbose in in.
func (s *ExecSplit) Split(input string, chunkSize int64) (int, error) {
	cmd := exec.Command(s.bin,
		fmt.Sprintf("--bytes=%d", chunkSize),
		"--numeric-suffixes",
		"--suffix-length=2",
		"--verbose",
		input,
		input+".")

	out, err := cmd.Output()
	if err != nil {
		log.Printf("ERROR: %s/Split: '%s': %v", packageName, input, err)
		return 0, fmt.Errorf("split: %w", err)
	}

	// one verbose line per created piece
	pieces := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			pieces++
		}
	}
	if pieces < 1 {
		return 0, errors.New("split: no pieces reported")
	}

	// success
	return pieces, nil
}

//--------------------------------------------------------------------------------------------------------------------//

// NativeSplit chunks a file in-process. It pairs with the age backend
// so a run can work without any external binaries.
type NativeSplit struct{}

// NewNativeSplit returns the in-process chunker backend.
func NewNativeSplit() *NativeSplit {
	return &NativeSplit{}
}

// Split copies input into 'input.00', 'input.01', ... pieces of at
// most chunkSize bytes. Pieces already written are not cleaned up on
// error; the caller aborts the run anyway.
func (s *NativeSplit) Split(input string, chunkSize int64) (int, error) {
	if chunkSize < 1 {
		return 0, errors.New("split: chunk size must be positive")
	}

	// open combined file
	in, err := os.Open(input)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	// PIECE LOOP
	pieces := 0
	for {
		n, err := writePiece(in, fmt.Sprintf("%s.%02d", input, pieces), chunkSize)
		if err != nil {
			log.Printf("ERROR: %s/Split: piece %d of '%s': %v", packageName, pieces, input, err)
			return 0, err
		}

		// EXIT LOOP (nothing left to read)
		// the first piece is written even for an empty file
		if n == 0 && pieces > 0 {
			_ = os.Remove(fmt.Sprintf("%s.%02d", input, pieces))
			break
		}
		pieces++

		// short piece = end of input
		if n < chunkSize {
			break
		}
	}

	// success
	return pieces, nil
}

// writePiece copies up to chunkSize bytes into path and reports the
// copied byte count.
func writePiece(in io.Reader, path string, chunkSize int64) (int64, error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, io.LimitReader(in, chunkSize))
	if err2 := out.Close(); err == nil {
		err = err2
	}
	return n, err
}
