package batch

import (
	"runtime"
	"strings"

	"github.com/filepg/fpg/tools"
)

// hostOS is a test seam for the platform check.
var hostOS = runtime.GOOS

// ValidationResult identifies the first failed startup check.
// ValidationOK means all checks passed.
type ValidationResult uint8

const (
	ValidationOK ValidationResult = iota
	BadPlatform
	ToolNotInvocable
	ToolVersionMismatch
	PassphraseTooShort
	CipherUnsupported
	DigestUnsupported
	EmptyOutputExtension
)

// String returns the operator-facing reason for a failed check.
func (r ValidationResult) String() string {
	switch r {
	case ValidationOK:
		return "platform and config validated"
	case BadPlatform:
		return "tool should be run on Linux"
	case ToolNotInvocable:
		return "encryption tool cannot be called"
	case ToolVersionMismatch:
		return "untested encryption tool version"
	case PassphraseTooShort:
		return "passphrase length should be longer"
	case CipherUnsupported:
		return "cipher not supported"
	case DigestUnsupported:
		return "digest not supported"
	default:
		return "output extension too short"
	}
}

// Validate runs the startup checks in fixed priority order; the first
// failure wins and the remaining checks are skipped. Validation is
// cheap and fail-fast, there is no partial remediation.
func Validate(cfg Config, enc tools.Encryptor) ValidationResult {
	// 1) host platform
	if hostOS != "linux" {
		return BadPlatform
	}

	// 2) backend invocable?
	capability, err := enc.Probe()
	if err != nil {
		return ToolNotInvocable
	}

	// 3) version family (other majors are untested)
	if !strings.HasPrefix(capability, cfg.ToolVersionPrefix) {
		return ToolVersionMismatch
	}

	// 4) passphrase safety floor
	if cfg.PassphraseLength < MinPassphraseLength {
		return PassphraseTooShort
	}

	// 5+6) algorithms must appear in the capability string
	if !strings.Contains(capability, cfg.Cipher) {
		return CipherUnsupported
	}
	if !strings.Contains(capability, cfg.Digest) {
		return DigestUnsupported
	}

	// 7) output extension
	if len(cfg.OutputExtension) < 1 {
		return EmptyOutputExtension
	}

	return ValidationOK
}
