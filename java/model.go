package java

import "strings"

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
	ClassKindRecord     ClassKind = "record"
	ClassKindModule     ClassKind = "module"
)

// Modifiers is the set of Java language modifiers of a class or member. The
// bit values follow java.lang.reflect.Modifier.
type Modifiers uint16

const (
	ModPublic       Modifiers = 0x0001
	ModPrivate      Modifiers = 0x0002
	ModProtected    Modifiers = 0x0004
	ModStatic       Modifiers = 0x0008
	ModFinal        Modifiers = 0x0010
	ModSynchronized Modifiers = 0x0020
	ModNative       Modifiers = 0x0100
	ModInterface    Modifiers = 0x0200
	ModAbstract     Modifiers = 0x0400
	ModStrict       Modifiers = 0x0800
)

var modifierOrder = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModAbstract, "abstract"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModSynchronized, "synchronized"},
	{ModNative, "native"},
	{ModStrict, "strictfp"},
	{ModInterface, "interface"},
}

func (m Modifiers) Has(mod Modifiers) bool { return m&mod != 0 }

func (m Modifiers) IsPublic() bool    { return m.Has(ModPublic) }
func (m Modifiers) IsProtected() bool { return m.Has(ModProtected) }
func (m Modifiers) IsPrivate() bool   { return m.Has(ModPrivate) }
func (m Modifiers) IsStatic() bool    { return m.Has(ModStatic) }
func (m Modifiers) IsFinal() bool     { return m.Has(ModFinal) }
func (m Modifiers) IsAbstract() bool  { return m.Has(ModAbstract) }

// String renders the modifiers space separated in the order javac and
// java.lang.reflect.Modifier use.
func (m Modifiers) String() string {
	var parts []string
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, " ")
}

// TypeRef names a type as it appears in a member signature. Name is the
// canonical name of the element type, a primitive keyword, or "void".
type TypeRef struct {
	Name       string
	ArrayDepth int
}

var Void = TypeRef{Name: "void"}

func (t TypeRef) String() string {
	if t.ArrayDepth == 0 {
		return t.Name
	}
	return t.Name + strings.Repeat("[]", t.ArrayDepth)
}

func (t TypeRef) IsPrimitive() bool {
	if t.ArrayDepth > 0 {
		return false
	}
	switch t.Name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double":
		return true
	}
	return false
}

func (t TypeRef) IsArray() bool {
	return t.ArrayDepth > 0
}

func (t TypeRef) IsVoid() bool {
	return t.Name == "void" && t.ArrayDepth == 0
}

// Method is a declared method or constructor. Constructors carry the name
// "<init>" and a void return type.
type Method struct {
	Name           string
	Modifiers      Modifiers
	ReturnType     TypeRef
	ParameterTypes []TypeRef
	ThrownTypes    []TypeRef
	IsBridge       bool
	IsSynthetic    bool
	IsVarargs      bool
	Signature      string

	// DeclaringClass is the canonical name of the declaring type.
	DeclaringClass string
}

func (m Method) IsConstructor() bool {
	return m.Name == "<init>"
}

func (m Method) String() string {
	var sb strings.Builder
	if mods := m.Modifiers.String(); mods != "" {
		sb.WriteString(mods)
		sb.WriteString(" ")
	}
	if !m.IsConstructor() {
		sb.WriteString(m.ReturnType.String())
		sb.WriteString(" ")
	}
	sb.WriteString(m.Name)
	sb.WriteString("(")
	for i, p := range m.ParameterTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	return sb.String()
}
