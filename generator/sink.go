package generator

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Sink stores generated source files.
type Sink interface {
	WriteFile(path string, data []byte) error
}

// DirSink writes to the local file system, creating parent directories on
// demand and replacing existing files.
type DirSink struct{}

func (DirSink) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
