package batch

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/filepg/fpg/tools"
)

// fakeEncryptor records calls and writes a dummy ciphertext file.
type fakeEncryptor struct {
	capability string
	probeErr   error
	failOn     string // base name of the input that fails
	calls      []string
}

func (f *fakeEncryptor) Probe() (string, error) {
	if f.probeErr != nil {
		return "", f.probeErr
	}
	return f.capability, nil
}

func (f *fakeEncryptor) Encrypt(input, output, passphrase string) error {
	f.calls = append(f.calls, filepath.Base(input))
	if f.failOn != "" && filepath.Base(input) == f.failOn {
		return errors.New("backend exploded")
	}
	return os.WriteFile(output, []byte("ciphertext of "+filepath.Base(input)), 0600)
}

// fakeSplitter reports a fixed piece count.
type fakeSplitter struct {
	pieces int
	err    error
	calls  []string
}

func (f *fakeSplitter) Split(input string, chunkSize int64) (int, error) {
	f.calls = append(f.calls, filepath.Base(input))
	if f.err != nil {
		return 0, f.err
	}
	return f.pieces, nil
}

// fakeFileOps wraps the real filesystem but records mutations and
// returns a fixed free-space value.
type fakeFileOps struct {
	free    uint64
	removed []string
	renamed [][2]string
}

func (f *fakeFileOps) Size(path string) (int64, error) {
	return tools.OSFileOps{}.Size(path)
}

func (f *fakeFileOps) FreeSpace(path string) (uint64, error) {
	return f.free, nil
}

func (f *fakeFileOps) Rename(oldPath, newPath string) error {
	f.renamed = append(f.renamed, [2]string{filepath.Base(oldPath), filepath.Base(newPath)})
	return os.Rename(oldPath, newPath)
}

func (f *fakeFileOps) Remove(path string) error {
	f.removed = append(f.removed, filepath.Base(path))
	return os.Remove(path)
}

// goodCapability passes all checks with DefaultConfig.
const goodCapability = "gpg (GnuPG) 2.4.4\nCipher: AES128, AES192, AES256\nHash: SHA256, SHA512\n"
