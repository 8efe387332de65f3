package tools

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/schollz/progressbar/v3"
)

var _ Encryptor = (*Age)(nil)

// Age encrypts in-process with the age format (scrypt passphrase
// recipient). No external binary is needed.
//
// ATTENTION: unlike gpg, age has no built-in compression. With a
// compression level > 0 the payload is a zstd frame; after decryption
// with 'age -d' the result must be decompressed with 'zstd -d'.
type Age struct {
	compressLevel int
	showProgress  bool
}

// NewAge returns the in-process age backend.
// showProgress renders a byte progress bar on stderr while streaming.
func NewAge(compressLevel int, showProgress bool) *Age {
	return &Age{
		compressLevel: compressLevel,
		showProgress:  showProgress,
	}
}

// Probe returns a synthetic capability string. The tokens mirror what
// the format actually uses, so the startup validation applies to this
// backend the same way it applies to gpg.
func (a *Age) Probe() (string, error) {
	return "age (filippo.io/age) 2.x built-in\n" +
		"Cipher: CHACHA20POLY1305\n" +
		"KDF: SCRYPT\n", nil
}

// Encrypt streams input through (optional) zstd and age into output.
// A partial output file is removed on error.
func (a *Age) Encrypt(input, output, passphrase string) error {
	// open cleartext
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	// create ciphertext file (secrets inside -> 0600)
	out, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	err = a.encrypt(in, out, st.Size(), filepath.Base(input), passphrase)
	if err2 := out.Close(); err == nil {
		err = err2
	}

	// don't leave half a ciphertext behind
	if err != nil {
		_ = os.Remove(output)
		log.Printf("ERROR: %s/Encrypt: '%s': %v", packageName, input, err)
		return err
	}

	// success
	return nil
}

// ----------  HELPER  -----------------------------------------------------------------------------------------------//

// encrypt writes the age stream. The writer chain is
// src -> [zstd] -> age -> out and is closed inside out.
func (a *Age) encrypt(src io.Reader, out io.Writer, size int64, name, passphrase string) error {
	// passphrase recipient
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("scrypt recipient: %w", err)
	}

	// age writer
	aw, err := age.Encrypt(out, recipient)
	if err != nil {
		return fmt.Errorf("init age writer: %w", err)
	}

	// optional zstd writer on top
	var dst io.Writer = aw
	var zw *zstd.Encoder
	if a.compressLevel > 0 {
		lvl := zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(a.compressLevel))
		zw, err = zstd.NewWriter(aw, lvl)
		if err != nil {
			return fmt.Errorf("init zstd writer: %w", err)
		}
		dst = zw
	}

	// optional progress bar on the plain side
	if a.showProgress {
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetDescription(fmt.Sprintf("Encrypting %s", name)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		src = io.TeeReader(src, bar)
	}

	// stream all bytes
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	// close the chain plain-side first
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return aw.Close()
}
