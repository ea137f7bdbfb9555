package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/implgen/java"
)

type JSONEncoder struct {
	w    io.Writer
	stub *Stub
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(stub *Stub) error {
	e.stub = stub
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err = e.w.Write([]byte("\n"))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildStubData(), "", "  ")
}

type jsonStub struct {
	Name        string       `json:"name"`
	SimpleName  string       `json:"simpleName"`
	Package     string       `json:"package"`
	Path        string       `json:"path"`
	Relation    string       `json:"relation"`
	Supertype   string       `json:"supertype"`
	Constructor *jsonMethod  `json:"constructor,omitempty"`
	Methods     []jsonMethod `json:"methods"`
}

type jsonMethod struct {
	Name           string     `json:"name"`
	ReturnType     *jsonType  `json:"returnType,omitempty"`
	Parameters     []jsonType `json:"parameters,omitempty"`
	Throws         []jsonType `json:"throws,omitempty"`
	Modifiers      []string   `json:"modifiers,omitempty"`
	DeclaringClass string     `json:"declaringClass,omitempty"`
}

type jsonType struct {
	Name       string `json:"name"`
	ArrayDepth int    `json:"arrayDepth,omitempty"`
	Default    string `json:"default"`
}

func (e *JSONEncoder) buildStubData() jsonStub {
	s := e.stub
	data := jsonStub{
		Name:       s.QualifiedName(),
		SimpleName: s.SimpleName,
		Package:    s.Package,
		Path:       s.RelativePath(),
		Relation:   string(s.Relation),
		Supertype:  s.Supertype,
		Methods:    make([]jsonMethod, len(s.Methods)),
	}
	if s.Constructor != nil {
		ctor := buildMethod(*s.Constructor)
		ctor.ReturnType = nil
		data.Constructor = &ctor
	}
	for i, m := range s.Methods {
		data.Methods[i] = buildMethod(m)
	}
	return data
}

func buildMethod(m java.Method) jsonMethod {
	rt := buildType(m.ReturnType)
	return jsonMethod{
		Name:           m.Name,
		ReturnType:     &rt,
		Parameters:     buildTypes(m.ParameterTypes),
		Throws:         buildTypes(m.ThrownTypes),
		Modifiers:      strings.Fields(m.Modifiers.String()),
		DeclaringClass: m.DeclaringClass,
	}
}

func buildType(t java.TypeRef) jsonType {
	return jsonType{
		Name:       t.Name,
		ArrayDepth: t.ArrayDepth,
		Default:    java.DefaultValue(t),
	}
}

func buildTypes(types []java.TypeRef) []jsonType {
	if len(types) == 0 {
		return nil
	}
	result := make([]jsonType, len(types))
	for i, t := range types {
		result[i] = buildType(t)
	}
	return result
}
