package classfile

import "encoding/binary"

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []MemberInfo
	Methods      []MemberInfo
	Attributes   []AttributeInfo
}

// MemberInfo is a field_info or method_info structure; both share the same
// layout.
type MemberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

type AttributeInfo struct {
	Name string
	Info []byte
}

// InnerClass is one row of the InnerClasses attribute, with constant pool
// references already resolved. OuterClass and InnerName are empty for local
// and anonymous classes.
type InnerClass struct {
	InnerClass  string
	OuterClass  string
	InnerName   string
	AccessFlags AccessFlags
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsInterface() bool  { return cf.AccessFlags.IsInterface() }
func (cf *ClassFile) IsAnnotation() bool { return cf.AccessFlags.IsAnnotation() }
func (cf *ClassFile) IsEnum() bool       { return cf.AccessFlags.IsEnum() }
func (cf *ClassFile) IsModule() bool     { return cf.AccessFlags.IsModule() }

func (cf *ClassFile) IsRecord() bool {
	return !cf.IsInterface() && findAttribute(cf.Attributes, AttrRecord) != nil
}

func (cf *ClassFile) IsSealed() bool {
	return findAttribute(cf.Attributes, AttrPermittedSubclasses) != nil
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	return findAttribute(cf.Attributes, name)
}

// InnerClasses decodes the InnerClasses attribute. A class file lists every
// nested class it references, which is what canonical name rendering needs.
func (cf *ClassFile) InnerClasses() []InnerClass {
	attr := cf.GetAttribute(AttrInnerClasses)
	if attr == nil || len(attr.Info) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(attr.Info))
	if len(attr.Info) < 2+count*8 {
		return nil
	}
	cp := cf.ConstantPool
	result := make([]InnerClass, count)
	for i := 0; i < count; i++ {
		row := attr.Info[2+i*8:]
		result[i] = InnerClass{
			InnerClass:  cp.GetClassName(binary.BigEndian.Uint16(row[0:2])),
			OuterClass:  cp.GetClassName(binary.BigEndian.Uint16(row[2:4])),
			InnerName:   cp.GetUtf8(binary.BigEndian.Uint16(row[4:6])),
			AccessFlags: AccessFlags(binary.BigEndian.Uint16(row[6:8])),
		}
	}
	return result
}

func (cf *ClassFile) GetMethods(name string) []*MemberInfo {
	var methods []*MemberInfo
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (m *MemberInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MemberInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MemberInfo) GetAttribute(name string) *AttributeInfo {
	return findAttribute(m.Attributes, name)
}

func (m *MemberInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MemberInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

// IsSynthetic reports the ACC_SYNTHETIC flag or the pre-Java 5 Synthetic
// attribute.
func (m *MemberInfo) IsSynthetic() bool {
	return m.AccessFlags.IsSynthetic() || m.GetAttribute(AttrSynthetic) != nil
}

// Exceptions returns the internal names listed in the Exceptions attribute.
func (m *MemberInfo) Exceptions(cp ConstantPool) []string {
	attr := m.GetAttribute(AttrExceptions)
	if attr == nil || len(attr.Info) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(attr.Info))
	if len(attr.Info) < 2+count*2 {
		return nil
	}
	names := make([]string, count)
	for i := 0; i < count; i++ {
		names[i] = cp.GetClassName(binary.BigEndian.Uint16(attr.Info[2+i*2:]))
	}
	return names
}

// Signature returns the generic signature string, or "" when the member has
// none.
func (m *MemberInfo) Signature(cp ConstantPool) string {
	attr := m.GetAttribute(AttrSignature)
	if attr == nil || len(attr.Info) < 2 {
		return ""
	}
	return cp.GetUtf8(binary.BigEndian.Uint16(attr.Info))
}

func (m *MemberInfo) ParsedDescriptor(cp ConstantPool) (*MethodDescriptor, error) {
	return ParseMethodDescriptor(m.Descriptor(cp))
}

func findAttribute(attrs []AttributeInfo, name string) *AttributeInfo {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}
	return nil
}
