// Package classpath loads class files from directories, jar files and any
// other fs.FS, delegating to a parent loader first.
package classpath

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/implgen/classfile"
	"github.com/dhamidi/implgen/java"
)

var log = commonlog.GetLogger("implgen.classpath")

// ErrInvalidPath marks paths that cannot serve as a class path entry.
var ErrInvalidPath = errors.New("invalid class path entry")

// Source is one class path entry.
type Source struct {
	Name   string
	FS     fs.FS
	closer io.Closer
}

// NewSource wraps an arbitrary file system, e.g. an fstest.MapFS or one
// module of a runtime image.
func NewSource(name string, fsys fs.FS) Source {
	return Source{Name: name, FS: fsys}
}

func (s Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ValidatePath rejects paths that can never name a class path entry: the
// empty string and paths containing NUL.
func ValidatePath(path string) error {
	if path == "" {
		return errors.Wrap(ErrInvalidPath, "empty path")
	}
	if strings.ContainsRune(path, 0) {
		return errors.Wrapf(ErrInvalidPath, "%q contains NUL", path)
	}
	return nil
}

// Open returns a source for a directory or a jar file. A missing path
// reports fs.ErrNotExist; anything else that is neither a directory nor a
// .jar reports ErrInvalidPath.
func Open(path string) (Source, error) {
	if err := ValidatePath(path); err != nil {
		return Source{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, errors.Wrapf(err, "class path entry %s", path)
	}
	if info.IsDir() {
		return Source{Name: path, FS: os.DirFS(path)}, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".jar") {
		return OpenJar(path)
	}
	return Source{}, errors.Wrapf(ErrInvalidPath, "%s is neither a directory nor a jar file", path)
}

func OpenJar(path string) (Source, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Source{}, errors.Wrapf(err, "open jar %s", path)
	}
	return Source{Name: path, FS: r, closer: r}, nil
}

// NewZipSource reads a zip archive that starts at offset within r. Jmod files
// are zip archives behind a four byte header.
func NewZipSource(name string, r io.ReaderAt, offset, size int64) (Source, error) {
	zr, err := zip.NewReader(io.NewSectionReader(r, offset, size-offset), size-offset)
	if err != nil {
		return Source{}, errors.Wrapf(err, "read zip %s", name)
	}
	return Source{Name: name, FS: zr}, nil
}

// Split parses a class path string separated by os.PathListSeparator. Empty
// elements are skipped.
func Split(classPath string) []string {
	var paths []string
	for _, p := range filepath.SplitList(classPath) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Loader resolves classes from its sources in order after asking the parent.
// It is safe for concurrent use.
type Loader struct {
	parent  java.Loader
	sources []Source

	mu    sync.Mutex
	cache map[string]*java.Class
}

func New(parent java.Loader, sources ...Source) *Loader {
	return &Loader{
		parent:  parent,
		sources: sources,
		cache:   make(map[string]*java.Class),
	}
}

// LoadClass loads a class by binary name, e.g. "java.util.Map$Entry".
func (l *Loader) LoadClass(name string) (*java.Class, error) {
	if l.parent != nil {
		c, err := l.parent.LoadClass(name)
		if err == nil {
			return c, nil
		}
		if !java.IsNotFound(err) {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[name]; ok {
		return c, nil
	}
	c, err := l.find(name)
	if err != nil {
		return nil, err
	}
	l.cache[name] = c
	return c, nil
}

func (l *Loader) find(name string) (*java.Class, error) {
	internal := classfile.SourceToInternalName(name)
	resource := internal + ".class"
	if !fs.ValidPath(resource) {
		return nil, errors.Wrapf(java.ErrClassNotFound, "%q is not a valid class name", name)
	}

	for _, src := range l.sources {
		data, err := fs.ReadFile(src.FS, resource)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s from %s", resource, src.Name)
		}
		cf, err := classfile.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s from %s", resource, src.Name)
		}
		if got := cf.ClassName(); got != internal {
			log.Warningf("%s in %s declares class %s", resource, src.Name, got)
			continue
		}
		log.Debugf("loaded %s from %s", name, src.Name)
		return java.NewClass(cf, l), nil
	}
	return nil, errors.Wrapf(java.ErrClassNotFound, "%s", name)
}

// Close releases open jar files.
func (l *Loader) Close() error {
	var errs []error
	for _, src := range l.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
