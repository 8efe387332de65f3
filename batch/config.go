// Package batch implements the interactive per-file processing
// pipeline: validate the environment, inventory the working directory,
// encrypt every detected file with a fresh passphrase, reveal the
// passphrases once, optionally rename the outputs and split large
// ciphertexts into numbered chunks.
package batch

// packageName is used for debug and error messages
const packageName = "batch"

// debug levels for debugLvl parameters (0=off, 1=debug, 2=high)
const (
	DebugOff  uint8 = 0
	DebugLow  uint8 = 1
	DebugHigh uint8 = 2
)

// MinPassphraseLength is the safety floor for generated passphrases.
// Shorter configurations fail the startup validation.
const MinPassphraseLength = 10

// Config is the immutable run configuration. There are no flags and no
// config files for these values; a build ships with fixed parameters.
type Config struct {

	// Cipher and Digest are backend algorithm identifiers. They must
	// appear in the capability string reported by the Encryptor.
	Cipher string
	Digest string

	// DetectedExtensions is the allow-list of file extensions
	// (without dot) that the scanner picks up.
	DetectedExtensions []string

	// PassphraseLength is the length of generated passphrases
	// (alphanumeric, CSPRNG; see MinPassphraseLength).
	PassphraseLength int

	// SplitThresholdMB: ciphertexts of files larger than this are
	// split into chunks of exactly this size. The compare uses the
	// PRE-encryption size snapshot, a documented approximation.
	SplitThresholdMB int

	// OutputExtension is appended to encrypted file names. Never empty.
	OutputExtension string

	// CompressionLevel is handed to the encryption backend
	// (0 = off, recommended for already-compressed archives).
	CompressionLevel int

	// RandomRenamePrefix and RandomRenameDigits control the randomized
	// rename option: prefix + digits + '.' + original extension.
	RandomRenamePrefix string
	RandomRenameDigits int

	// ToolVersionPrefix is the expected start of the Encryptor version
	// string. Other version families abort the run (untested).
	ToolVersionPrefix string
}

// DefaultConfig pairs with the GnuPG backend (tools.GPG).
func DefaultConfig() Config {
	return Config{
		Cipher:             "AES256",
		Digest:             "SHA256",
		DetectedExtensions: []string{"zip", "7z"},
		PassphraseLength:   20,
		SplitThresholdMB:   1000,
		OutputExtension:    ".enc",
		CompressionLevel:   0,
		RandomRenamePrefix: "fpg",
		RandomRenameDigits: 8,
		ToolVersionPrefix:  "gpg (GnuPG) 2.",
	}
}

// AgeConfig pairs with the in-process age backend (tools.Age).
// Cipher and digest identifiers match the tokens of tools.Age.Probe.
func AgeConfig() Config {
	cfg := DefaultConfig()
	cfg.Cipher = "CHACHA20POLY1305"
	cfg.Digest = "SCRYPT"
	cfg.ToolVersionPrefix = "age (filippo.io"
	return cfg
}
