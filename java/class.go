package java

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dhamidi/implgen/classfile"
)

// Class is a reflective view of a compiled Java type. Supertypes are
// resolved lazily through the Loader the class was read by.
type Class struct {
	cf     *classfile.ClassFile
	loader Loader

	// nested maps the internal name of every member class referenced by
	// this class file to its InnerClasses row.
	nested map[string]classfile.InnerClass
}

func NewClass(cf *classfile.ClassFile, loader Loader) *Class {
	c := &Class{
		cf:     cf,
		loader: loader,
		nested: make(map[string]classfile.InnerClass),
	}
	for _, ic := range cf.InnerClasses() {
		c.nested[ic.InnerClass] = ic
	}
	return c
}

func ParseClass(r io.Reader, loader Loader) (*Class, error) {
	cf, err := classfile.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewClass(cf, loader), nil
}

func (c *Class) ClassFile() *classfile.ClassFile {
	return c.cf
}

// InternalName returns the slash separated name, e.g. "java/util/Map$Entry".
func (c *Class) InternalName() string {
	return c.cf.ClassName()
}

// Name returns the binary name, e.g. "java.util.Map$Entry".
func (c *Class) Name() string {
	return classfile.InternalToSourceName(c.cf.ClassName())
}

func (c *Class) Package() string {
	internal := c.InternalName()
	if i := strings.LastIndexByte(internal, '/'); i >= 0 {
		return classfile.InternalToSourceName(internal[:i])
	}
	return ""
}

// SimpleName returns the name as written in source: "Entry" for
// java.util.Map$Entry.
func (c *Class) SimpleName() string {
	if ic, ok := c.nested[c.InternalName()]; ok && ic.InnerName != "" {
		return ic.InnerName
	}
	internal := c.InternalName()
	return internal[strings.LastIndexByte(internal, '/')+1:]
}

// CanonicalName returns the dotted source name, e.g. "java.util.Map.Entry".
func (c *Class) CanonicalName() string {
	return c.TypeName(c.InternalName())
}

// TypeName renders a class referenced by this class file under its canonical
// name. Member classes are recognized from the InnerClasses attribute, which
// javac emits for every nested class a class file refers to. Names without
// such a row keep their binary form.
func (c *Class) TypeName(internal string) string {
	return c.typeName(internal, 0)
}

func (c *Class) typeName(internal string, depth int) string {
	ic, ok := c.nested[internal]
	if !ok || ic.OuterClass == "" || ic.InnerName == "" || depth > len(c.nested) {
		return classfile.InternalToSourceName(internal)
	}
	return c.typeName(ic.OuterClass, depth+1) + "." + ic.InnerName
}

func (c *Class) typeRef(ft classfile.FieldType) TypeRef {
	ref := TypeRef{Name: ft.BaseType, ArrayDepth: ft.ArrayDepth}
	if ft.BaseType == "" {
		ref.Name = c.TypeName(ft.ClassName)
	}
	return ref
}

func (c *Class) Kind() ClassKind {
	switch {
	case c.cf.IsModule():
		return ClassKindModule
	case c.cf.IsAnnotation():
		return ClassKindAnnotation
	case c.cf.IsInterface():
		return ClassKindInterface
	case c.cf.IsEnum():
		return ClassKindEnum
	case c.cf.IsRecord():
		return ClassKindRecord
	}
	return ClassKindClass
}

const classModifierMask = ModPublic | ModPrivate | ModProtected | ModStatic |
	ModFinal | ModInterface | ModAbstract

// Modifiers returns the source level modifiers. For member classes they are
// taken from the class's own InnerClasses row, which carries private,
// protected and static.
func (c *Class) Modifiers() Modifiers {
	flags := c.cf.AccessFlags
	if ic, ok := c.nested[c.InternalName()]; ok {
		flags = ic.AccessFlags
	}
	return Modifiers(flags) & classModifierMask
}

// IsNested reports whether the class is declared inside another class,
// including local and anonymous classes.
func (c *Class) IsNested() bool {
	_, ok := c.nested[c.InternalName()]
	return ok
}

// IsLocalOrAnonymous reports a nested class that has no enclosing member
// declaration, which makes it unreachable by name.
func (c *Class) IsLocalOrAnonymous() bool {
	ic, ok := c.nested[c.InternalName()]
	return ok && (ic.OuterClass == "" || ic.InnerName == "")
}

func (c *Class) IsInterface() bool { return c.cf.IsInterface() }
func (c *Class) IsAbstract() bool  { return c.cf.AccessFlags.IsAbstract() }
func (c *Class) IsFinal() bool     { return c.cf.AccessFlags.IsFinal() }
func (c *Class) IsEnum() bool      { return c.cf.IsEnum() }
func (c *Class) IsRecord() bool    { return c.cf.IsRecord() }
func (c *Class) IsSealed() bool    { return c.cf.IsSealed() }
func (c *Class) IsModule() bool    { return c.cf.IsModule() }

// SuperclassName returns the binary name of the superclass, or "" for
// interfaces and java.lang.Object. Interfaces record java/lang/Object in
// their class file but have no superclass in the Java type system.
func (c *Class) SuperclassName() string {
	if c.cf.IsInterface() || c.cf.SuperClass == 0 {
		return ""
	}
	return classfile.InternalToSourceName(c.cf.SuperClassName())
}

// Superclass loads the superclass. It returns nil without error when there
// is none.
func (c *Class) Superclass() (*Class, error) {
	name := c.SuperclassName()
	if name == "" {
		return nil, nil
	}
	super, err := c.load(name)
	if err != nil {
		return nil, errors.Wrapf(err, "superclass of %s", c.Name())
	}
	return super, nil
}

// InterfaceNames returns the binary names of the direct superinterfaces in
// declaration order.
func (c *Class) InterfaceNames() []string {
	internal := c.cf.InterfaceNames()
	names := make([]string, len(internal))
	for i, name := range internal {
		names[i] = classfile.InternalToSourceName(name)
	}
	return names
}

func (c *Class) Interfaces() ([]*Class, error) {
	names := c.InterfaceNames()
	result := make([]*Class, 0, len(names))
	for _, name := range names {
		iface, err := c.load(name)
		if err != nil {
			return nil, errors.Wrapf(err, "interface of %s", c.Name())
		}
		result = append(result, iface)
	}
	return result, nil
}

func (c *Class) load(name string) (*Class, error) {
	if c.loader == nil {
		return nil, errors.Wrapf(ErrClassNotFound, "%s: no loader", name)
	}
	return c.loader.LoadClass(name)
}

// DeclaredMethods returns the methods declared by this class in class file
// order, excluding constructors and the static initializer.
func (c *Class) DeclaredMethods() ([]Method, error) {
	return c.members(func(m *classfile.MemberInfo) bool {
		return !m.IsConstructor(c.cf.ConstantPool) && !m.IsStaticInitializer(c.cf.ConstantPool)
	})
}

// DeclaredConstructors returns the constructors in class file order.
func (c *Class) DeclaredConstructors() ([]Method, error) {
	return c.members(func(m *classfile.MemberInfo) bool {
		return m.IsConstructor(c.cf.ConstantPool)
	})
}

func (c *Class) members(keep func(*classfile.MemberInfo) bool) ([]Method, error) {
	var result []Method
	for i := range c.cf.Methods {
		info := &c.cf.Methods[i]
		if !keep(info) {
			continue
		}
		m, err := methodFromMemberInfo(c, info)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", c.Name(), info.Name(c.cf.ConstantPool))
		}
		result = append(result, m)
	}
	return result, nil
}

func (c *Class) String() string {
	return string(c.Kind()) + " " + c.CanonicalName()
}
