package classfile

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// FieldType is a decoded field descriptor. Exactly one of BaseType and
// ClassName is set; ClassName is an internal name.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type in Java source syntax using the binary name of
// class types, e.g. "java.util.Map$Entry[]".
func (ft FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (ft FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

// MethodDescriptor is a decoded method descriptor. ReturnType is nil for
// void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if md.ReturnType != nil {
		sb.WriteString(" ")
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString(" void")
	}
	return sb.String()
}

func ParseFieldDescriptor(desc string) (FieldType, error) {
	ft, n := parseFieldType(desc, 0)
	if n == 0 || n != len(desc) {
		return FieldType{}, errors.Newf("invalid field descriptor %q", desc)
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, errors.Newf("invalid method descriptor %q", desc)
	}

	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, consumed := parseFieldType(desc, i)
		if consumed == 0 {
			return nil, errors.Newf("invalid parameter at offset %d in method descriptor %q", i, desc)
		}
		md.Parameters = append(md.Parameters, ft)
		i += consumed
	}
	if i >= len(desc) {
		return nil, errors.Newf("unterminated parameter list in method descriptor %q", desc)
	}
	i++

	if i < len(desc) && desc[i] == 'V' && i+1 == len(desc) {
		return md, nil
	}
	ret, consumed := parseFieldType(desc, i)
	if consumed == 0 || i+consumed != len(desc) {
		return nil, errors.Newf("invalid return type in method descriptor %q", desc)
	}
	md.ReturnType = &ret
	return md, nil
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

// parseFieldType decodes one field type starting at start and reports how
// many bytes it consumed, 0 on malformed input.
func parseFieldType(desc string, start int) (FieldType, int) {
	var ft FieldType
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return FieldType{}, 0
	}

	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i - start + 1
	}
	if desc[i] != 'L' {
		return FieldType{}, 0
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon <= 1 {
		return FieldType{}, 0
	}
	ft.ClassName = desc[i+1 : i+semicolon]
	return ft, i - start + semicolon + 1
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
