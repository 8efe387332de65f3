package batch

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/filepg/fpg/tools"
	"golang.org/x/crypto/blake2b"
)

// ErrNotEncrypted is returned when the passphrase or a split is
// requested before the unit was encrypted. In normal pipeline flow
// this cannot happen; hitting it is an internal error.
var ErrNotEncrypted = errors.New("file has not been encrypted yet")

// State of one processing unit. There is no way back from Encrypted.
type State uint8

const (
	// Pending: the file is inventoried, nothing happened yet.
	Pending State = iota
	// Encrypted: the ciphertext exists and the passphrase is set.
	Encrypted
)

// Unit tracks one file through encrypt -> (rename) -> split.
//
// The size is a snapshot taken at construction, BEFORE encryption.
// Later split decisions use this pre-encryption size even though the
// ciphertext is typically a bit larger. That is a deliberate,
// documented simplification.
type Unit struct {
	dir  string  // working directory, fixed
	name string  // current on-disk name (changes on rename)
	ext  string  // original extension, fixed
	size float64 // size in MB at construction, fixed

	passphrase  string // set on successful encryption only
	fingerprint string // BLAKE2b-256 of the ciphertext, hex
	state       State
}

// NewUnit builds a unit for one inventoried file.
// sizeBytes comes from the scanner's stat query.
func NewUnit(dir, name string, sizeBytes int64) *Unit {
	return &Unit{
		dir:   dir,
		name:  name,
		ext:   strings.TrimPrefix(filepath.Ext(name), "."),
		size:  float64(sizeBytes) / (1024 * 1024),
		state: Pending,
	}
}

// Name is the current on-disk file name (without the output extension).
func (u *Unit) Name() string {
	return u.name
}

// Extension is the original file extension, captured at construction.
func (u *Unit) Extension() string {
	return u.ext
}

// SizeMB returns the pre-encryption size in MB, rounded to 2 decimals.
func (u *Unit) SizeMB() float64 {
	return round2(u.size)
}

// Encrypted reports whether encryption has succeeded.
func (u *Unit) Encrypted() bool {
	return u.state == Encrypted
}

// Passphrase returns the generated passphrase.
// return ErrNotEncrypted before a successful Encrypt
func (u *Unit) Passphrase() (string, error) {
	if u.state != Encrypted {
		return "", ErrNotEncrypted
	}
	return u.passphrase, nil
}

// Fingerprint returns the hex BLAKE2b-256 of the ciphertext, taken
// right after encryption. It lets the operator verify a later chunk
// reassembly without decrypting.
// return ErrNotEncrypted before a successful Encrypt
func (u *Unit) Fingerprint() (string, error) {
	if u.state != Encrypted {
		return "", ErrNotEncrypted
	}
	return u.fingerprint, nil
}

// EncryptionSpeed returns MB/s for a measured encryption time,
// rounded to 2 decimals. Very fast runs are floored to 1ms.
func (u *Unit) EncryptionSpeed(elapsed time.Duration) float64 {
	sec := float64(elapsed) / float64(time.Second)
	if sec < 0.001 {
		sec = 0.001
	}
	return round2(u.size / sec)
}

// String returns the display name of the unit.
func (u *Unit) String() string {
	return u.name
}

//--------------------------------------------------------------------------------------------------------------------//

// Encrypt generates a fresh passphrase and writes 'name + EXT' next to
// the untouched cleartext file. On a backend error the unit stays
// Pending and no passphrase is retained.
func (u *Unit) Encrypt(cfg Config, enc tools.Encryptor) error {
	// fresh passphrase (CSPRNG)
	pass, err := NewPassphrase(cfg.PassphraseLength)
	if err != nil {
		return err
	}

	// blocking call into the backend
	in := filepath.Join(u.dir, u.name)
	out := in + cfg.OutputExtension
	if err := enc.Encrypt(in, out, pass); err != nil {
		return err
	}

	// ciphertext fingerprint for later integrity checks
	fp, err := fingerprintFile(out)
	if err != nil {
		log.Printf("ERROR: %s/Encrypt: fingerprint '%s': %v", packageName, out, err)
		return err
	}

	u.passphrase = pass
	u.fingerprint = fp
	u.state = Encrypted
	return nil
}

// SplitOutcome distinguishes "not split" from "split into N pieces".
type SplitOutcome struct {
	Split  bool
	Pieces int
}

// SplitIfNeeded chunks the ciphertext if the pre-encryption size
// exceeds the threshold and removes the combined file afterwards.
// Below the threshold nothing happens and Pieces is 1 (one whole file).
// return ErrNotEncrypted before a successful Encrypt
func (u *Unit) SplitIfNeeded(cfg Config, sp tools.Splitter, fops tools.FileOps) (SplitOutcome, error) {
	if u.state != Encrypted {
		return SplitOutcome{}, ErrNotEncrypted
	}

	// small file: keep the single whole file
	if u.size <= float64(cfg.SplitThresholdMB) {
		return SplitOutcome{Split: false, Pieces: 1}, nil
	}

	// chunk with the threshold as fixed piece size
	target := filepath.Join(u.dir, u.name) + cfg.OutputExtension
	pieces, err := sp.Split(target, int64(cfg.SplitThresholdMB)*1024*1024)
	if err != nil {
		return SplitOutcome{}, err
	}

	// the combined ciphertext is now redundant
	if err := fops.Remove(target); err != nil {
		log.Printf("ERROR: %s/SplitIfNeeded: remove '%s': %v", packageName, target, err)
		return SplitOutcome{}, err
	}

	// success
	return SplitOutcome{Split: true, Pieces: pieces}, nil
}

// Rename moves the CIPHERTEXT to 'newName + EXT' and updates the unit.
// Must run before SplitIfNeeded: chunk files keep their name.
func (u *Unit) Rename(newName string, cfg Config, fops tools.FileOps) error {
	oldPath := filepath.Join(u.dir, u.name) + cfg.OutputExtension
	newPath := filepath.Join(u.dir, newName) + cfg.OutputExtension
	if err := fops.Rename(oldPath, newPath); err != nil {
		log.Printf("ERROR: %s/Rename: '%s' -> '%s': %v", packageName, oldPath, newPath, err)
		return err
	}
	u.name = newName
	return nil
}

// ----------  HELPER  -----------------------------------------------------------------------------------------------//

// fingerprintFile hashes a file with BLAKE2b-256.
func fingerprintFile(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	hh, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(hh, fh); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hh.Sum(nil)), nil
}
