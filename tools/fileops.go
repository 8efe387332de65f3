package tools

import (
	"errors"
	"log"
	"os"

	"golang.org/x/sys/unix"
)

var _ FileOps = OSFileOps{}

// OSFileOps implements FileOps on the local filesystem.
type OSFileOps struct{}

// Size returns the size of a regular file in bytes.
// return error if file not exist or is a folder
func (OSFileOps) Size(path string) (int64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, err // file not exist
	}
	if st.IsDir() {
		log.Printf("ERROR: %s/Size: file is a folder: '%s'", packageName, path)
		return 0, errors.New("file is a folder")
	}
	return st.Size(), nil
}

// FreeSpace returns block size * available blocks for the filesystem
// that contains path.
func (OSFileOps) FreeSpace(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return uint64(st.Bsize) * st.Bavail, nil
}

// Rename moves a file (atomic within one filesystem).
func (OSFileOps) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Remove deletes a single file.
func (OSFileOps) Remove(path string) error {
	return os.Remove(path)
}
