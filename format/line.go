package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/implgen/java"
)

// LineEncoder writes a stub plan as tab separated records, one per line:
//
//	stub	<qualified name>	<relation>	<supertype>
//	constructor	<parameters>	<throws>
//	method	<name>	<return type>	<parameters>	<modifiers>	<throws>	<declared by>
//
// Empty columns are written as "-".
type LineEncoder struct {
	w    io.Writer
	stub *Stub
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(stub *Stub) error {
	e.stub = stub
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	s := e.stub

	fmt.Fprintf(&sb, "stub\t%s\t%s\t%s\n", s.QualifiedName(), s.Relation, s.Supertype)

	if c := s.Constructor; c != nil {
		fmt.Fprintf(&sb, "constructor\t%s\t%s\n",
			typesStr(c.ParameterTypes),
			typesStr(c.ThrownTypes),
		)
	}

	for _, m := range s.Methods {
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Name,
			m.ReturnType.String(),
			typesStr(m.ParameterTypes),
			modifiersStr(m.Modifiers),
			typesStr(m.ThrownTypes),
			orDash(m.DeclaringClass),
		)
	}

	return []byte(sb.String()), nil
}

func modifiersStr(mods java.Modifiers) string {
	return orDash(strings.ReplaceAll(mods.String(), " ", ","))
}

func typesStr(types []java.TypeRef) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return orDash(strings.Join(parts, ","))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
