// Package tools contains the external collaborators of the pipeline:
// the encryption primitive, the chunking utility and the filesystem
// queries. The pipeline only depends on the interfaces in this file;
// the concrete backends may shell out or link a library.
package tools

// packageName is used for debug and error messages
const packageName = "tools"

// Encryptor is the symmetric encryption primitive.
// Encrypt must run non-interactively (the passphrase is supplied by the
// caller) and must leave the input file untouched on disk.
type Encryptor interface {

	// Probe returns the raw version/capability string of the backend.
	// The string is matched against the configured version prefix and
	// must contain the supported cipher and digest identifiers.
	Probe() (string, error)

	// Encrypt writes the ciphertext of input to output.
	// A non-zero exit or write error is returned unchanged.
	Encrypt(input, output, passphrase string) error
}

// Splitter divides a file into fixed-size chunks with zero-padded
// 2-digit numeric suffixes: 'file.00', 'file.01', ...
// The combined input file is NOT removed; that is the caller's job.
type Splitter interface {

	// Split chunks input into pieces of at most chunkSize bytes
	// and returns the number of pieces produced.
	Split(input string, chunkSize int64) (int, error)
}

// FileOps bundles the filesystem queries and mutations of the pipeline.
type FileOps interface {

	// Size returns the size of a regular file in bytes.
	Size(path string) (int64, error)

	// FreeSpace returns the available bytes on the filesystem
	// that contains path (block size * available blocks).
	FreeSpace(path string) (uint64, error)

	// Rename moves a file. Chunked files are never renamed.
	Rename(oldPath, newPath string) error

	// Remove deletes a single file.
	Remove(path string) error
}
