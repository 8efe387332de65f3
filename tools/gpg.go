package tools

import (
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"strconv"
)

var _ Encryptor = (*GPG)(nil)

// GPG shells out to the GnuPG binary for symmetric encryption.
// This is the default backend and matches the classic invocation:
//
//	gpg --batch --passphrase ... --digest-algo SHA256 --symmetric
//	    --cipher-algo AES256 --compress-level 0 --output file.enc file
//
// There is no timeout: a hanging gpg hangs the run.
type GPG struct {
	bin           string
	cipher        string
	digest        string
	compressLevel int
}

// NewGPG returns a GnuPG backend with the given cipher, digest and
// compression level. The identifiers are passed to gpg verbatim.
func NewGPG(cipher, digest string, compressLevel int) *GPG {
	return &GPG{
		bin:           "gpg",
		cipher:        cipher,
		digest:        digest,
		compressLevel: compressLevel,
	}
}

// Probe calls 'gpg --version' and returns the combined output.
// The output lists the version in the first line and the supported
// cipher and hash algorithms further down.
func (g *GPG) Probe() (string, error) {
	out, err := exec.Command(g.bin, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", g.bin, err)
	}
	return string(out), nil
}

// Encrypt runs gpg in batch mode and blocks until it exits.
// The cleartext input stays on disk; one new file output is created.
func (g *GPG) Encrypt(input, output, passphrase string) error {
	cmd := exec.Command(g.bin,
		"--batch", "--passphrase", passphrase,
		"--digest-algo", g.digest,
		"--symmetric",
		"--cipher-algo", g.cipher,
		"--compress-level", strconv.Itoa(g.compressLevel),
		"--output", output,
		input)

	// gpg writes diagnostics to stderr
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("ERROR: %s/Encrypt: '%s': %v", packageName, input, err)
		return fmt.Errorf("gpg: %w: %s", err, bytes.TrimSpace(out))
	}

	// success
	return nil
}
