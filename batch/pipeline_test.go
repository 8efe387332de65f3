package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testPipeline builds a pipeline over a temp dir with the given files
// and scripted operator input.
func testPipeline(t *testing.T, cfg Config, enc *fakeEncryptor, sp *fakeSplitter, fops *fakeFileOps, input string, files map[string]int) (*Pipeline, string, *bytes.Buffer) {
	t.Helper()

	oldOS := hostOS
	oldTTY := isTerminal
	t.Cleanup(func() { hostOS = oldOS; isTerminal = oldTTY })
	hostOS = "linux"
	isTerminal = func() bool { return true }

	dir := t.TempDir()
	for name, size := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte("x"), size), 0600))
	}

	out := &bytes.Buffer{}
	p := NewPipeline(cfg, enc, sp, fops, strings.NewReader(input), out, DebugOff)
	return p, dir, out
}

func TestRunHappyPath(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	sp := &fakeSplitter{pieces: 1}
	fops := &fakeFileOps{free: 1 << 40}

	// confirm, reveal, skip rename
	p, dir, out := testPipeline(t, DefaultConfig(), enc, sp, fops, "y\nv\nx\n",
		map[string]int{"a.zip": 100, "b.7z": 200, "notes.txt": 300})

	require.NoError(t, p.Run(dir))

	// only the allow-listed files were processed, in listing order
	require.Equal(t, []string{"a.zip", "b.7z"}, enc.calls)
	require.Contains(t, out.String(), "2 files detected")

	// both passphrases were revealed
	for _, u := range p.units {
		pass, err := u.Passphrase()
		require.NoError(t, err)
		require.Contains(t, out.String(), u.Name()+" : "+pass)
	}
	require.Contains(t, out.String(), "This is your only chance to record these!")

	// nothing was split (tiny files), ciphertexts exist
	require.Contains(t, out.String(), "a.zip was not split")
	require.Empty(t, sp.calls)
	_, err := os.Stat(filepath.Join(dir, "a.zip.enc"))
	require.NoError(t, err)
}

func TestRunDeclinedConfirm(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	p, dir, _ := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "n\n",
		map[string]int{"a.zip": 100})

	require.ErrorIs(t, p.Run(dir), ErrAborted)

	// nothing was touched
	require.Empty(t, enc.calls)
	_, err := os.Stat(filepath.Join(dir, "a.zip.enc"))
	require.True(t, os.IsNotExist(err))
}

func TestRunValidationFailure(t *testing.T) {
	enc := &fakeEncryptor{capability: "gpg (GnuPG) 1.4.23\n"}
	p, dir, out := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "",
		map[string]int{"a.zip": 100})

	require.ErrorIs(t, p.Run(dir), ErrAborted)
	require.Contains(t, out.String(), "untested encryption tool version")
}

func TestRunEmptyInventory(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	p, dir, out := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "",
		map[string]int{"notes.txt": 100})

	require.ErrorIs(t, p.Run(dir), ErrAborted)
	require.Contains(t, out.String(), "No supported files detected. Exiting.")
}

func TestRunEncryptFailureRecovery(t *testing.T) {
	// the second unit fails; the third must never be attempted
	enc := &fakeEncryptor{capability: goodCapability, failOn: "b.zip"}
	p, dir, out := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "y\nv\n",
		map[string]int{"a.zip": 100, "b.zip": 100, "c.zip": 100})

	require.ErrorIs(t, p.Run(dir), ErrAborted)
	require.Equal(t, []string{"a.zip", "b.zip"}, enc.calls)

	// the recovery reveal shows the key captured for the first unit only
	pass, err := p.units[0].Passphrase()
	require.NoError(t, err)
	require.Contains(t, out.String(), "a.zip : "+pass)
	require.NotContains(t, out.String(), "b.zip : ")
	require.NotContains(t, out.String(), "c.zip : ")
}

func TestRunRecoveryQuit(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability, failOn: "a.zip"}
	// junk answers are re-prompted until 'q'
	p, dir, out := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "y\nzzz\nq\n",
		map[string]int{"a.zip": 100})

	require.ErrorIs(t, p.Run(dir), ErrAborted)
	require.NotContains(t, out.String(), "a.zip : ")
}

func TestRunRandomRename(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	fops := &fakeFileOps{free: 1 << 40}
	cfg := DefaultConfig()

	p, dir, _ := testPipeline(t, cfg, enc, &fakeSplitter{}, fops, "y\nv\na\n",
		map[string]int{"secret.zip": 100})

	require.NoError(t, p.Run(dir))
	require.Len(t, fops.renamed, 1)

	// prefix + digits + original extension + output extension
	newName := p.units[0].Name()
	require.Regexp(t, `^fpg[0-9]{8}\.zip$`, newName)
	_, err := os.Stat(filepath.Join(dir, newName+".enc"))
	require.NoError(t, err)
}

func TestRunManualRename(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	p, dir, _ := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "y\nv\nr\nholiday-pics\n",
		map[string]int{"secret.zip": 100})

	require.NoError(t, p.Run(dir))
	require.Equal(t, "holiday-pics", p.units[0].Name())
	_, err := os.Stat(filepath.Join(dir, "holiday-pics.enc"))
	require.NoError(t, err)
}

func TestRunSplitLargeFile(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	sp := &fakeSplitter{pieces: 2}
	fops := &fakeFileOps{free: 1 << 40}

	cfg := DefaultConfig()
	cfg.SplitThresholdMB = 1

	// 1.5 MB file, threshold 1 MB
	p, dir, out := testPipeline(t, cfg, enc, sp, fops, "y\nv\nx\n",
		map[string]int{"big.zip": 1572864})

	require.NoError(t, p.Run(dir))
	require.Contains(t, out.String(), "big.zip was split into 2 pieces")
	require.Equal(t, []string{"big.zip.enc"}, sp.calls)
	require.Equal(t, []string{"big.zip.enc"}, fops.removed)
	_, err := os.Stat(filepath.Join(dir, "big.zip.enc"))
	require.True(t, os.IsNotExist(err))
}

func TestRunRevealLoopInsists(t *testing.T) {
	enc := &fakeEncryptor{capability: goodCapability}
	// the reveal prompt repeats until the operator types 'v'
	p, dir, out := testPipeline(t, DefaultConfig(), enc, &fakeSplitter{}, &fakeFileOps{free: 1 << 40}, "y\nno\nlater\nv\nx\n",
		map[string]int{"a.zip": 100})

	require.NoError(t, p.Run(dir))
	require.Equal(t, 3, strings.Count(out.String(), "Enter 'v' to view passphrases"))
}
