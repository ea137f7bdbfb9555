package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/implgen/java"
)

const indent = "    "

// JavaEncoder renders a stub as a compilable Java source file. All type names
// are canonical, so the file needs no imports.
type JavaEncoder struct {
	w    io.Writer
	stub *Stub
}

func NewJavaEncoder(w io.Writer) *JavaEncoder {
	return &JavaEncoder{w: w}
}

func (e *JavaEncoder) Encode(stub *Stub) error {
	e.stub = stub
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JavaEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	s := e.stub

	if s.Package != "" {
		sb.WriteString("package ")
		sb.WriteString(s.Package)
		sb.WriteString(";\n\n")
	}

	sb.WriteString("public class ")
	sb.WriteString(s.SimpleName)
	sb.WriteString(" ")
	sb.WriteString(string(s.Relation))
	sb.WriteString(" ")
	sb.WriteString(s.Supertype)
	sb.WriteString(" {\n")

	first := true
	separate := func() {
		if !first {
			sb.WriteString("\n")
		}
		first = false
	}

	if s.Constructor != nil {
		separate()
		e.writeConstructor(&sb, s.Constructor)
	}
	for _, m := range s.Methods {
		separate()
		e.writeMethod(&sb, m)
	}

	sb.WriteString("}\n")
	return []byte(sb.String()), nil
}

func (e *JavaEncoder) writeConstructor(sb *strings.Builder, parent *java.Method) {
	sb.WriteString(indent)
	sb.WriteString("public ")
	sb.WriteString(e.stub.SimpleName)
	sb.WriteString("()")
	writeThrows(sb, parent.ThrownTypes)
	sb.WriteString(" {\n")

	sb.WriteString(indent + indent)
	sb.WriteString("super(")
	for i, p := range parent.ParameterTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		sb.WriteString(p.String())
		sb.WriteString(") ")
		sb.WriteString(java.DefaultValue(p))
	}
	sb.WriteString(");\n")

	sb.WriteString(indent)
	sb.WriteString("}\n")
}

// bodyless modifiers cannot appear on a method that has a body.
const bodyless = java.ModAbstract | java.ModNative | java.ModStrict

func (e *JavaEncoder) writeMethod(sb *strings.Builder, m java.Method) {
	sb.WriteString(indent)
	sb.WriteString("@Override\n")

	sb.WriteString(indent)
	if mods := (m.Modifiers &^ bodyless).String(); mods != "" {
		sb.WriteString(mods)
		sb.WriteString(" ")
	}
	sb.WriteString(m.ReturnType.String())
	sb.WriteString(" ")
	sb.WriteString(m.Name)

	sb.WriteString("(")
	for i, p := range m.ParameterTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
		sb.WriteString(" param")
		sb.WriteString(strconv.Itoa(i))
	}
	sb.WriteString(")")
	writeThrows(sb, m.ThrownTypes)
	sb.WriteString(" {\n")

	if !m.ReturnType.IsVoid() {
		sb.WriteString(indent + indent)
		sb.WriteString("return ")
		sb.WriteString(java.DefaultValue(m.ReturnType))
		sb.WriteString(";\n")
	}

	sb.WriteString(indent)
	sb.WriteString("}\n")
}

func writeThrows(sb *strings.Builder, thrown []java.TypeRef) {
	if len(thrown) == 0 {
		return
	}
	sb.WriteString(" throws ")
	for i, t := range thrown {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
}
