package batch

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passAlphabet is the passphrase character set: A-Z, a-z, 0-9.
const passAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewPassphrase draws n characters uniformly from passAlphabet using
// crypto/rand. A weaker source here would be a correctness defect, not
// a style issue: the passphrase is the only secret in the system.
func NewPassphrase(n int) (string, error) {
	return randString(passAlphabet, n)
}

// RandomName builds a randomized file name for the rename stage:
// prefix + digits + '.' + ext. The digits come from the same CSPRNG
// as the passphrases.
func RandomName(prefix string, digits int, ext string) (string, error) {
	d, err := randString("0123456789", digits)
	if err != nil {
		return "", err
	}
	if ext == "" {
		return prefix + d, nil
	}
	return prefix + d + "." + ext, nil
}

// randString draws n characters uniformly from the given alphabet.
func randString(alphabet string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("invalid length %d", n)
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		// rand.Int is uniform (rejection sampling inside)
		x, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[x.Int64()]
	}
	return string(b), nil
}
