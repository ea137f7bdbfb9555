// Package generator produces Java stub classes: given an interface or an
// abstract class it writes <Name>Impl.java, a concrete subtype whose methods
// return zero values.
package generator

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/implgen/classpath"
	"github.com/dhamidi/implgen/format"
	"github.com/dhamidi/implgen/java"
)

const (
	// DefaultBuiltinPrefix marks packages whose stubs go to the default
	// package, since user code may not declare classes in them.
	DefaultBuiltinPrefix = "java."

	implSuffix = "Impl"
)

// Generator writes stubs below an output directory. It holds no state
// between calls and is safe for concurrent use as long as its runtime
// loader is.
type Generator struct {
	outputDir     string
	runtime       java.Loader
	builtinPrefix string
	sink          Sink
	log           commonlog.Logger
}

type Option func(*Generator)

// WithRuntime sets the loader for standard library classes. Directory loads
// delegate to it first.
func WithRuntime(l java.Loader) Option {
	return func(g *Generator) { g.runtime = l }
}

func WithBuiltinPrefix(prefix string) Option {
	return func(g *Generator) { g.builtinPrefix = prefix }
}

func WithSink(s Sink) Option {
	return func(g *Generator) { g.sink = s }
}

func WithLogger(log commonlog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

func New(outputDir string, opts ...Option) *Generator {
	g := &Generator{
		outputDir:     outputDir,
		builtinPrefix: DefaultBuiltinPrefix,
		sink:          DirSink{},
		log:           commonlog.GetLogger("implgen.generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) OutputDir() string {
	return g.outputDir
}

// ImplementFromDirectory loads name from the class files under dir, which
// may also be a jar, and writes its stub. It returns the stub's fully
// qualified name.
func (g *Generator) ImplementFromDirectory(dir, name string) (string, error) {
	class, loader, err := g.LoadFromDirectory(dir, name)
	if err != nil {
		return "", err
	}
	defer loader.Close()
	return g.Implement(class, false)
}

// ImplementFromStandardLibrary loads name from the runtime and writes its stub
// into the default package.
func (g *Generator) ImplementFromStandardLibrary(name string) (string, error) {
	class, err := g.LoadFromStandardLibrary(name)
	if err != nil {
		return "", err
	}
	return g.Implement(class, true)
}

// LoadFromDirectory validates dir and loads name from it. Closing the
// returned loader releases an opened jar.
func (g *Generator) LoadFromDirectory(dir, name string) (*java.Class, *classpath.Loader, error) {
	src, err := classpath.Open(dir)
	switch {
	case errors.Is(err, classpath.ErrInvalidPath):
		return nil, nil, newError(KindPathInvalid, err, "invalid input path %q", dir)
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil, newError(KindTypeNotFound, err, "class %s not found: no directory %s", name, dir)
	case err != nil:
		return nil, nil, newError(KindTypeNotFound, err, "class %s not found in %s", name, dir)
	}

	loader := classpath.New(g.runtime, src)
	class, err := g.load(loader, name)
	if err != nil {
		loader.Close()
		return nil, nil, err
	}
	return class, loader, nil
}

func (g *Generator) LoadFromStandardLibrary(name string) (*java.Class, error) {
	if g.runtime == nil {
		cause := errors.WithHint(errors.Wrap(java.ErrClassNotFound, name),
			"set JAVA_HOME or put java on PATH so the runtime can be located")
		return nil, newError(KindTypeNotFound, cause, "class %s not found: no Java runtime", name)
	}
	return g.load(g.runtime, name)
}

func (g *Generator) load(l java.Loader, name string) (*java.Class, error) {
	if name == "" {
		return nil, newError(KindTypeNotFound, nil, "empty class name")
	}
	class, err := l.LoadClass(name)
	if err != nil {
		return nil, newError(KindTypeNotFound, err, "class %s not found", name)
	}
	return class, nil
}

// Implement plans and writes the stub for class and returns its fully
// qualified name. Standard library classes are always placed in the default
// package.
func (g *Generator) Implement(class *java.Class, stdlib bool) (string, error) {
	stub, err := g.Plan(class, stdlib)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := format.NewJavaEncoder(&buf).Encode(stub); err != nil {
		return "", newError(KindWriteFailed, err, "render %s", stub.QualifiedName())
	}
	path := g.Path(stub)
	if err := g.sink.WriteFile(path, buf.Bytes()); err != nil {
		return "", newError(KindWriteFailed, err, "cannot write generated class %s", path)
	}

	g.log.Infof("wrote %s (%d methods)", path, len(stub.Methods))
	return stub.QualifiedName(), nil
}

// Path returns where the stub's source file goes.
func (g *Generator) Path(stub *format.Stub) string {
	return filepath.Join(g.outputDir, filepath.FromSlash(stub.RelativePath()))
}

// Plan resolves everything the stub for class contains without writing it.
func (g *Generator) Plan(class *java.Class, stdlib bool) (*format.Stub, error) {
	if err := checkExtendable(class); err != nil {
		return nil, err
	}

	methods, err := Obligations(class)
	if err != nil {
		return nil, newError(KindTypeNotFound, err, "resolve supertypes of %s", class.Name())
	}
	ctor, err := SelectConstructor(class)
	if err != nil {
		return nil, newError(KindTypeNotFound, err, "read constructors of %s", class.Name())
	}

	stub := &format.Stub{
		Package:     g.effectivePackage(class, stdlib),
		SimpleName:  class.SimpleName() + implSuffix,
		Relation:    format.Extends,
		Supertype:   class.CanonicalName(),
		Constructor: ctor,
		Methods:     methods,
	}
	if class.IsInterface() {
		stub.Relation = format.Implements
	}
	g.log.Debugf("%s %s %s: %d methods, constructor %v",
		stub.QualifiedName(), stub.Relation, stub.Supertype, len(methods), ctor != nil)
	return stub, nil
}

func (g *Generator) effectivePackage(class *java.Class, stdlib bool) string {
	pkg := class.Package()
	if stdlib || (g.builtinPrefix != "" && strings.HasPrefix(pkg, g.builtinPrefix)) {
		return ""
	}
	return pkg
}

func checkExtendable(c *java.Class) error {
	name := c.Name()
	switch {
	case c.IsModule():
		return newError(KindCannotExtend, nil, "%s is a module descriptor", name)
	case c.IsEnum():
		return newError(KindCannotExtend, nil, "%s is an enum", name)
	case c.IsRecord():
		return newError(KindCannotExtend, nil, "%s is a record", name)
	case c.IsSealed():
		return newError(KindCannotExtend, nil, "%s is sealed", name)
	case c.IsLocalOrAnonymous():
		return newError(KindCannotExtend, nil, "%s is a local or anonymous class", name)
	case c.Modifiers().IsPrivate():
		return newError(KindCannotExtend, nil, "%s is private", name)
	case c.IsInterface():
		return nil
	case c.IsFinal():
		return newError(KindCannotExtend, nil, "%s is final", name)
	case !c.IsAbstract():
		return newError(KindCannotExtend, nil, "%s is neither an interface nor an abstract class", name)
	case c.IsNested() && !c.Modifiers().IsStatic():
		return newError(KindCannotExtend, nil, "%s is an inner class", name)
	}

	private, err := allConstructorsPrivate(c)
	if err != nil {
		return newError(KindTypeNotFound, err, "read constructors of %s", name)
	}
	if private {
		return newError(KindCannotExtend, nil, "%s has only private constructors", name)
	}
	return nil
}
