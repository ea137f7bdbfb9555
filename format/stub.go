package format

import (
	"strings"

	"github.com/dhamidi/implgen/java"
)

// Relation is the keyword that ties a stub to the type it implements.
type Relation string

const (
	Implements Relation = "implements"
	Extends    Relation = "extends"
)

// Stub is a generated implementation class: everything the encoders need and
// nothing else.
type Stub struct {
	Package    string
	SimpleName string
	Relation   Relation

	// Supertype is the canonical name of the implemented type.
	Supertype string

	// Constructor is the parent constructor the stub delegates to, or nil.
	Constructor *java.Method

	Methods []java.Method
}

// QualifiedName returns the stub's fully qualified name, or just the simple
// name in the default package.
func (s *Stub) QualifiedName() string {
	if s.Package == "" {
		return s.SimpleName
	}
	return s.Package + "." + s.SimpleName
}

// RelativePath returns the slash separated source path, e.g.
// "study/MyInterfaceImpl.java".
func (s *Stub) RelativePath() string {
	name := s.SimpleName + ".java"
	if s.Package == "" {
		return name
	}
	return strings.ReplaceAll(s.Package, ".", "/") + "/" + name
}
