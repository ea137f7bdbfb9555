// Package jdk locates an installed Java runtime and loads the standard
// library's class files from it.
package jdk

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/implgen/classpath"
	"github.com/dhamidi/implgen/java"
	"github.com/dhamidi/implgen/jimage"
)

var log = commonlog.GetLogger("implgen.jdk")

var ErrNoRuntime = errors.New("no Java runtime found")

// Layout names the way a Java home stores its classes.
type Layout string

const (
	LayoutImage Layout = "lib/modules"
	LayoutJmods Layout = "jmods"
	LayoutRtJar Layout = "rt.jar"
)

var jmodMagic = []byte{'J', 'M', 0x01, 0x00}

var javaHomePattern = regexp.MustCompile(`java\.home\s*=\s*(.+)`)

// FindHome returns $JAVA_HOME, or asks the java launcher on PATH for its
// java.home property.
func FindHome(ctx context.Context) (string, error) {
	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		return jh, nil
	}

	cmd := exec.CommandContext(ctx, "java", "-XshowSettings:properties", "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "run java"), ErrNoRuntime)
	}
	return parseJavaHome(output)
}

func parseJavaHome(output []byte) (string, error) {
	matches := javaHomePattern.FindSubmatch(output)
	if len(matches) < 2 {
		return "", errors.Wrap(ErrNoRuntime, "could not find java.home in output")
	}
	return strings.TrimSpace(string(matches[1])), nil
}

// ParseRelease reads the KEY="value" lines of a Java home's release file.
func ParseRelease(r io.Reader) (map[string]string, error) {
	props := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return props, errors.Wrap(scanner.Err(), "read release")
}

// Runtime loads classes from a Java home. It is safe for concurrent use.
type Runtime struct {
	Home    string
	Layout  Layout
	Modules []string

	loader  *classpath.Loader
	closers []io.Closer
}

// Discover finds a Java home and opens it.
func Discover(ctx context.Context) (*Runtime, error) {
	home, err := FindHome(ctx)
	if err != nil {
		return nil, err
	}
	return Open(home)
}

// Open inspects home for a runtime image, a jmods directory or an rt.jar, in
// that order.
func Open(home string) (*Runtime, error) {
	rt := &Runtime{Home: home}

	var (
		sources []classpath.Source
		err     error
	)
	switch {
	case exists(filepath.Join(home, "lib", "modules")):
		sources, err = rt.openImage()
	case exists(filepath.Join(home, "jmods")):
		sources, err = rt.openJmods()
	case exists(filepath.Join(home, "jre", "lib", "rt.jar")):
		sources, err = rt.openRtJar(filepath.Join(home, "jre", "lib", "rt.jar"))
	case exists(filepath.Join(home, "lib", "rt.jar")):
		sources, err = rt.openRtJar(filepath.Join(home, "lib", "rt.jar"))
	default:
		return nil, errors.Wrapf(ErrNoRuntime, "no class files under %s", home)
	}
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.loader = classpath.New(nil, sources...)
	log.Infof("using %s runtime at %s (%d modules)", rt.Layout, home, len(rt.Modules))
	return rt, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rt *Runtime) release() map[string]string {
	f, err := os.Open(filepath.Join(rt.Home, "release"))
	if err != nil {
		return nil
	}
	defer f.Close()
	props, err := ParseRelease(f)
	if err != nil {
		log.Warningf("%s", err)
	}
	return props
}

// orderModules puts java.base first since it answers most lookups.
func orderModules(modules []string) []string {
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i] == "java.base" && modules[j] != "java.base"
	})
	return modules
}

func (rt *Runtime) openImage() ([]classpath.Source, error) {
	rt.Layout = LayoutImage
	img, err := jimage.Open(filepath.Join(rt.Home, "lib", "modules"))
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, img)

	rt.Modules = strings.Fields(rt.release()["MODULES"])
	if len(rt.Modules) == 0 {
		rt.Modules = []string{"java.base"}
	}
	rt.Modules = orderModules(rt.Modules)

	sources := make([]classpath.Source, len(rt.Modules))
	for i, module := range rt.Modules {
		sources[i] = classpath.NewSource("jrt:/"+module, img.ModuleFS(module))
	}
	return sources, nil
}

func (rt *Runtime) openJmods() ([]classpath.Source, error) {
	rt.Layout = LayoutJmods
	paths, err := filepath.Glob(filepath.Join(rt.Home, "jmods", "*.jmod"))
	if err != nil {
		return nil, errors.Wrap(err, "list jmods")
	}
	for _, path := range paths {
		rt.Modules = append(rt.Modules, strings.TrimSuffix(filepath.Base(path), ".jmod"))
	}
	rt.Modules = orderModules(rt.Modules)

	var sources []classpath.Source
	for _, module := range rt.Modules {
		src, err := rt.openJmod(filepath.Join(rt.Home, "jmods", module+".jmod"))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (rt *Runtime) openJmod(path string) (classpath.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return classpath.Source{}, errors.Wrap(err, "open jmod")
	}
	rt.closers = append(rt.closers, f)

	info, err := f.Stat()
	if err != nil {
		return classpath.Source{}, errors.Wrap(err, "stat jmod")
	}
	header := make([]byte, len(jmodMagic))
	if _, err := f.ReadAt(header, 0); err != nil || !bytes.Equal(header, jmodMagic) {
		return classpath.Source{}, errors.Newf("%s is not a jmod file", path)
	}

	src, err := classpath.NewZipSource(path, f, int64(len(jmodMagic)), info.Size())
	if err != nil {
		return classpath.Source{}, err
	}
	classes, err := fs.Sub(src.FS, "classes")
	if err != nil {
		return classpath.Source{}, errors.Wrap(err, "jmod classes")
	}
	return classpath.NewSource(path, classes), nil
}

func (rt *Runtime) openRtJar(path string) ([]classpath.Source, error) {
	rt.Layout = LayoutRtJar
	src, err := classpath.OpenJar(path)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, src)
	return []classpath.Source{src}, nil
}

// LoadClass loads a standard library class by binary name.
func (rt *Runtime) LoadClass(name string) (*java.Class, error) {
	return rt.loader.LoadClass(name)
}

func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
