package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/filepg/fpg/tools"
	"golang.org/x/term"
)

// ErrAborted marks a run that ended early: a declined confirmation, an
// explicit quit at a prompt, or the recovery loop after an encryption
// failure. The files already written stay on disk.
var ErrAborted = errors.New("run aborted")

// isTerminal is a test seam; real runs check os.Stdout.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Pipeline drives one batch over a working directory:
//
//	Validate -> Scan -> SpaceCheck -> Confirm -> EncryptAll ->
//	KeyReveal -> Rename (optional) -> SplitAll -> Done
//
// Strictly linear and single-threaded; every backend call blocks until
// the operation completes. The only cancellation points are the
// prompts between the stages.
type Pipeline struct {
	cfg      Config
	enc      tools.Encryptor
	split    tools.Splitter
	fops     tools.FileOps
	in       *bufio.Reader
	out      io.Writer
	debugLvl uint8

	units []*Unit // owned by this run, in inventory order
}

// NewPipeline wires a pipeline with its backends and its interactive
// surface. in/out are injectable so tests can script a whole run.
func NewPipeline(cfg Config, enc tools.Encryptor, split tools.Splitter, fops tools.FileOps, in io.Reader, out io.Writer, debugLvl uint8) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		enc:      enc,
		split:    split,
		fops:     fops,
		in:       bufio.NewReader(in),
		out:      out,
		debugLvl: debugLvl,
	}
}

// Run processes the batch in dir. It returns nil on normal completion,
// ErrAborted when the operator stopped the run and any other error for
// fatal external failures. No stage is ever re-entered.
func (p *Pipeline) Run(dir string) error {

	// ---- Validate ----
	if r := Validate(p.cfg, p.enc); r != ValidationOK {
		fmt.Fprintf(p.out, "%s. Exiting.\n", r)
		return fmt.Errorf("%w: %s", ErrAborted, r)
	}
	fmt.Fprintf(p.out, "Platform and config validated\n\n")

	// ---- Scan ----
	units, err := Scan(dir, p.cfg, p.fops, p.debugLvl)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		fmt.Fprintln(p.out, "No supported files detected. Exiting.")
		return fmt.Errorf("%w: empty inventory", ErrAborted)
	}
	p.units = units

	// ---- SpaceCheck (advisory only) ----
	free, err := p.fops.FreeSpace(dir)
	if err != nil {
		return err
	}
	printSpace(p.out, free, TotalSizeMB(p.units))
	printMemoryAdvisory(p.out)

	// ---- Confirm ----
	p.printInventory()
	in, err := p.prompt("Enter 'y' to begin encryption with the above parameters")
	if err != nil {
		return err
	}
	if in != "y" {
		// nothing was touched yet
		return ErrAborted
	}

	// ---- EncryptAll ----
	if err := p.encryptAll(); err != nil {
		return err
	}

	// ---- KeyReveal ----
	if err := p.revealKeys(); err != nil {
		return err
	}

	// ---- Rename (optional) ----
	if err := p.renameStage(); err != nil {
		return err
	}

	// ---- SplitAll ----
	if err := p.splitAll(); err != nil {
		return err
	}

	// Done
	return nil
}

//--------------------------------------------------------------------------------------------------------------------//

// encryptAll iterates the units in inventory order. A single backend
// failure aborts the whole batch; the recovery loop only offers to
// reveal the passphrases captured so far.
func (p *Pipeline) encryptAll() error {
	overall := time.Now()

	for _, u := range p.units {
		fmt.Fprintf(p.out, "Working on %s, %.2f MB\n", u, u.SizeMB())

		start := time.Now()
		if err := u.Encrypt(p.cfg, p.enc); err != nil {
			fmt.Fprintf(p.out, "Encryption error for %s!\n", u)
			if p.debugLvl >= DebugLow {
				log.Printf("DEBUG: %s/encryptAll: '%s': %v", packageName, u, err)
			}
			return p.recoveryLoop()
		}
		elapsed := time.Since(start)

		fp, _ := u.Fingerprint()
		fmt.Fprintf(p.out, "%s encrypted in %.2f sec\n", u, elapsed.Seconds())
		fmt.Fprintf(p.out, "Average speed: %.2f MB/s\n", u.EncryptionSpeed(elapsed))
		fmt.Fprintf(p.out, "Ciphertext fingerprint: %s\n\n", fp)
	}

	fmt.Fprintf(p.out, "All files encrypted in %.2f sec\n\n", time.Since(overall).Seconds())
	return nil
}

// recoveryLoop is the bounded prompt after an encryption failure.
// There is no retry and no continuation: both answers end the run,
// 'v' after a last chance to record the already-generated secrets.
func (p *Pipeline) recoveryLoop() error {
	for {
		in, err := p.prompt("Enter 'v' to view keys, 'q' to quit")
		if err != nil {
			return err
		}
		switch in {
		case "q":
			return ErrAborted
		case "v":
			p.printKeys()
			return ErrAborted
		}
	}
}

// revealKeys blocks until the operator explicitly asks for the
// passphrases, then prints them. This printout is the only durable
// record; nothing is ever written to disk.
func (p *Pipeline) revealKeys() error {
	for {
		in, err := p.prompt("Enter 'v' to view passphrases")
		if err != nil {
			return err
		}
		if in == "v" {
			break
		}
	}
	p.printKeys()
	fmt.Fprintf(p.out, "This is your only chance to record these!\n\n")
	return nil
}

// renameStage offers manual or randomized renaming of the ciphertext
// files. All units or none; a failed mv is fatal. Renaming MUST happen
// before splitting, chunk files keep their name.
func (p *Pipeline) renameStage() error {
	in, err := p.prompt("Enter 'r' to rename manually, 'a' for randomized names, any other key to skip")
	if err != nil {
		return err
	}

	switch in {
	case "r":
		for _, u := range p.units {
			fmt.Fprintf(p.out, "For file: %s\n", u)
			newName, err := p.prompt("Enter new name:")
			if err != nil {
				return err
			}
			if newName == "" {
				fmt.Fprintf(p.out, "Name unchanged\n")
				continue
			}
			if err := u.Rename(newName, p.cfg, p.fops); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Renamed\n\n")
		}

	case "a":
		for _, u := range p.units {
			newName, err := RandomName(p.cfg.RandomRenamePrefix, p.cfg.RandomRenameDigits, u.Extension())
			if err != nil {
				return err
			}
			old := u.Name()
			if err := u.Rename(newName, p.cfg, p.fops); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "%s -> %s\n", old, newName)
		}
		fmt.Fprintln(p.out)
	}

	return nil
}

// splitAll runs the split decision over every unit, in inventory
// order. Chunking failures are fatal for the whole run.
func (p *Pipeline) splitAll() error {
	fmt.Fprintln(p.out, "Splitting files if needed...")
	for _, u := range p.units {
		outcome, err := u.SplitIfNeeded(p.cfg, p.split, p.fops)
		if err != nil {
			return err
		}
		if outcome.Split {
			fmt.Fprintf(p.out, "%s was split into %d pieces\n", u, outcome.Pieces)
		} else {
			fmt.Fprintf(p.out, "%s was not split\n", u)
		}
	}
	return nil
}

// ----------  HELPER  -----------------------------------------------------------------------------------------------//

// prompt prints a message and reads one trimmed line of input.
// EOF on the input means the operator is gone: the run cannot continue.
func (p *Pipeline) prompt(msg string) (string, error) {
	fmt.Fprintln(p.out, msg)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: no operator input", ErrAborted)
	}
	return strings.TrimSpace(line), nil
}

// printInventory lists the detected units and the run parameters.
func (p *Pipeline) printInventory() {
	fmt.Fprintf(p.out, "%d files detected:\n", len(p.units))
	for _, u := range p.units {
		fmt.Fprintf(p.out, "%s - %.2f MB\n", u, u.SizeMB())
	}
	fmt.Fprintln(p.out, "...........................................")
	fmt.Fprintf(p.out, "%s %s %d-char-passphrases %d-MB-splitting %s-extension %d-compression\n\n",
		p.cfg.Cipher, p.cfg.Digest, p.cfg.PassphraseLength,
		p.cfg.SplitThresholdMB, p.cfg.OutputExtension, p.cfg.CompressionLevel)
}

// printKeys prints one 'name : passphrase' line per encrypted unit.
func (p *Pipeline) printKeys() {
	if !isTerminal() {
		fmt.Fprintln(p.out, "WARNING: output is not a terminal, the passphrases below may be captured!")
	}
	for _, u := range p.units {
		if !u.Encrypted() {
			continue
		}
		pass, err := u.Passphrase()
		if err != nil {
			continue // cannot happen, Encrypted() was true
		}
		fmt.Fprintf(p.out, "%s : %s\n", u, pass)
	}
}
