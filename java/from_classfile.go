package java

import (
	"github.com/dhamidi/implgen/classfile"
)

const methodModifierMask = ModPublic | ModPrivate | ModProtected | ModStatic |
	ModFinal | ModSynchronized | ModNative | ModAbstract | ModStrict

func methodFromMemberInfo(c *Class, m *classfile.MemberInfo) (Method, error) {
	cp := c.cf.ConstantPool
	desc, err := m.ParsedDescriptor(cp)
	if err != nil {
		return Method{}, err
	}

	method := Method{
		Name:           m.Name(cp),
		Modifiers:      Modifiers(m.AccessFlags) & methodModifierMask,
		ReturnType:     Void,
		IsBridge:       m.AccessFlags.IsBridge(),
		IsSynthetic:    m.IsSynthetic(),
		IsVarargs:      m.AccessFlags.IsVarargs(),
		Signature:      m.Signature(cp),
		DeclaringClass: c.CanonicalName(),
	}
	if desc.ReturnType != nil {
		method.ReturnType = c.typeRef(*desc.ReturnType)
	}
	for _, p := range desc.Parameters {
		method.ParameterTypes = append(method.ParameterTypes, c.typeRef(p))
	}
	for _, ex := range m.Exceptions(cp) {
		method.ThrownTypes = append(method.ThrownTypes, TypeRef{Name: c.TypeName(ex)})
	}
	return method, nil
}
