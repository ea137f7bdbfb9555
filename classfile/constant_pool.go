package classfile

// Constant is a single constant pool slot. Only the fields relevant to the
// tag are populated: Utf8 for CONSTANT_Utf8, Index for the single-index
// kinds (Class, String, MethodType, Module, Package), Index and Index2 for
// the two-index kinds, and Bits for the numeric kinds.
type Constant struct {
	Tag    ConstantTag
	Utf8   string
	Index  uint16
	Index2 uint16
	Bits   uint64
}

// ConstantPool is indexed the way the JVM indexes it: slot 0 is unused and
// the second half of a long or double is an empty Constant.
type ConstantPool []Constant

func (cp ConstantPool) entry(index uint16, tag ConstantTag) (Constant, bool) {
	if index == 0 || int(index) >= len(cp) {
		return Constant{}, false
	}
	c := cp[index]
	if c.Tag != tag {
		return Constant{}, false
	}
	return c, true
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	c, _ := cp.entry(index, ConstantUtf8)
	return c.Utf8
}

// GetClassName returns the internal name (slash separated) of a
// CONSTANT_Class entry.
func (cp ConstantPool) GetClassName(index uint16) string {
	c, ok := cp.entry(index, ConstantClass)
	if !ok {
		return ""
	}
	return cp.GetUtf8(c.Index)
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	c, ok := cp.entry(index, ConstantNameAndType)
	if !ok {
		return "", ""
	}
	return cp.GetUtf8(c.Index), cp.GetUtf8(c.Index2)
}

func (cp ConstantPool) GetString(index uint16) string {
	c, ok := cp.entry(index, ConstantString)
	if !ok {
		return ""
	}
	return cp.GetUtf8(c.Index)
}

func (cp ConstantPool) GetPackageName(index uint16) string {
	c, ok := cp.entry(index, ConstantPackage)
	if !ok {
		return ""
	}
	return cp.GetUtf8(c.Index)
}
