// Package classfiletest assembles class files in memory so that tests can
// describe Java types without a Java compiler.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/dhamidi/implgen/classfile"
)

// Builder accumulates a single class. Names are internal names
// ("java/util/Map$Entry").
type Builder struct {
	name       string
	flags      classfile.AccessFlags
	super      string
	interfaces []string
	methods    []method
	inner      []classfile.InnerClass
	permitted  []string
	record     bool
	major      uint16

	pool  []poolEntry
	index map[poolEntry]uint16
}

type method struct {
	flags      classfile.AccessFlags
	name       string
	descriptor string
	exceptions []string
	signature  string
}

type poolEntry struct {
	tag classfile.ConstantTag
	s   string
	a   uint16
	b   uint16
}

// MethodOption customizes a method added with Method.
type MethodOption func(*method)

// Throws lists checked exceptions in the Exceptions attribute.
func Throws(internalNames ...string) MethodOption {
	return func(m *method) { m.exceptions = append(m.exceptions, internalNames...) }
}

// Signature attaches a generic Signature attribute.
func Signature(sig string) MethodOption {
	return func(m *method) { m.signature = sig }
}

// Class starts a public class extending java/lang/Object.
func Class(name string) *Builder {
	return &Builder{
		name:  name,
		flags: classfile.AccPublic | classfile.AccSuper,
		super: "java/lang/Object",
		major: 52,
		index: make(map[poolEntry]uint16),
	}
}

// Interface starts a public interface. Interfaces record java/lang/Object
// as their super class, as javac emits them.
func Interface(name string) *Builder {
	b := Class(name)
	b.flags = classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract
	return b
}

// Flags replaces the class access flags.
func (b *Builder) Flags(flags classfile.AccessFlags) *Builder {
	b.flags = flags
	return b
}

// Abstract adds ACC_ABSTRACT.
func (b *Builder) Abstract() *Builder {
	b.flags |= classfile.AccAbstract
	return b
}

// Final adds ACC_FINAL.
func (b *Builder) Final() *Builder {
	b.flags |= classfile.AccFinal
	return b
}

// Extends sets the super class; an empty name writes index 0, as
// java/lang/Object does.
func (b *Builder) Extends(name string) *Builder {
	b.super = name
	return b
}

func (b *Builder) Implements(names ...string) *Builder {
	b.interfaces = append(b.interfaces, names...)
	return b
}

func (b *Builder) Method(flags classfile.AccessFlags, name, descriptor string, opts ...MethodOption) *Builder {
	m := method{flags: flags, name: name, descriptor: descriptor}
	for _, opt := range opts {
		opt(&m)
	}
	b.methods = append(b.methods, m)
	return b
}

// Constructor adds an <init> method.
func (b *Builder) Constructor(flags classfile.AccessFlags, descriptor string, opts ...MethodOption) *Builder {
	return b.Method(flags, "<init>", descriptor, opts...)
}

// Nested records an InnerClasses row for a member class.
func (b *Builder) Nested(inner, outer, simpleName string, flags classfile.AccessFlags) *Builder {
	b.inner = append(b.inner, classfile.InnerClass{
		InnerClass:  inner,
		OuterClass:  outer,
		InnerName:   simpleName,
		AccessFlags: flags,
	})
	return b
}

// Permits adds a PermittedSubclasses attribute.
func (b *Builder) Permits(names ...string) *Builder {
	b.permitted = append(b.permitted, names...)
	return b
}

// Record marks the class as a record by adding an empty Record attribute.
func (b *Builder) Record() *Builder {
	b.record = true
	return b
}

func (b *Builder) constant(e poolEntry) uint16 {
	if idx, ok := b.index[e]; ok {
		return idx
	}
	b.pool = append(b.pool, e)
	idx := uint16(len(b.pool))
	b.index[e] = idx
	return idx
}

func (b *Builder) utf8(s string) uint16 {
	return b.constant(poolEntry{tag: classfile.ConstantUtf8, s: s})
}

func (b *Builder) class(name string) uint16 {
	if name == "" {
		return 0
	}
	return b.constant(poolEntry{tag: classfile.ConstantClass, a: b.utf8(name)})
}

type attribute struct {
	name uint16
	info []byte
}

func u2(v ...uint16) []byte {
	out := make([]byte, 2*len(v))
	for i, x := range v {
		binary.BigEndian.PutUint16(out[2*i:], x)
	}
	return out
}

// Bytes serializes the class file.
func (b *Builder) Bytes() []byte {
	b.pool = nil
	b.index = make(map[poolEntry]uint16)

	this := b.class(b.name)
	super := b.class(b.super)
	ifaces := make([]uint16, len(b.interfaces))
	for i, name := range b.interfaces {
		ifaces[i] = b.class(name)
	}

	methodAttrs := make([][]attribute, len(b.methods))
	type member struct{ flags, name, desc uint16 }
	members := make([]member, len(b.methods))
	for i, m := range b.methods {
		members[i] = member{uint16(m.flags), b.utf8(m.name), b.utf8(m.descriptor)}
		if len(m.exceptions) > 0 {
			info := u2(uint16(len(m.exceptions)))
			for _, ex := range m.exceptions {
				info = append(info, u2(b.class(ex))...)
			}
			methodAttrs[i] = append(methodAttrs[i], attribute{b.utf8(classfile.AttrExceptions), info})
		}
		if m.signature != "" {
			methodAttrs[i] = append(methodAttrs[i], attribute{b.utf8(classfile.AttrSignature), u2(b.utf8(m.signature))})
		}
	}

	var classAttrs []attribute
	if len(b.inner) > 0 {
		info := u2(uint16(len(b.inner)))
		for _, ic := range b.inner {
			var nameIdx uint16
			if ic.InnerName != "" {
				nameIdx = b.utf8(ic.InnerName)
			}
			info = append(info, u2(b.class(ic.InnerClass), b.class(ic.OuterClass), nameIdx, uint16(ic.AccessFlags))...)
		}
		classAttrs = append(classAttrs, attribute{b.utf8(classfile.AttrInnerClasses), info})
	}
	if len(b.permitted) > 0 {
		info := u2(uint16(len(b.permitted)))
		for _, p := range b.permitted {
			info = append(info, u2(b.class(p))...)
		}
		classAttrs = append(classAttrs, attribute{b.utf8(classfile.AttrPermittedSubclasses), info})
	}
	if b.record {
		classAttrs = append(classAttrs, attribute{b.utf8(classfile.AttrRecord), u2(0)})
	}

	var out bytes.Buffer
	write := func(v any) { _ = binary.Write(&out, binary.BigEndian, v) }
	write(uint32(classfile.Magic))
	write(uint16(0))
	write(b.major)
	write(uint16(len(b.pool) + 1))
	for _, e := range b.pool {
		write(uint8(e.tag))
		switch e.tag {
		case classfile.ConstantUtf8:
			if len(e.s) > math.MaxUint16 {
				panic("classfiletest: utf8 constant too long")
			}
			write(uint16(len(e.s)))
			out.WriteString(e.s)
		case classfile.ConstantClass:
			write(e.a)
		}
	}
	write(uint16(b.flags))
	write(this)
	write(super)
	write(uint16(len(ifaces)))
	for _, idx := range ifaces {
		write(idx)
	}
	write(uint16(0)) // fields
	write(uint16(len(members)))
	for i, m := range members {
		write(m.flags)
		write(m.name)
		write(m.desc)
		writeAttributes(&out, methodAttrs[i])
	}
	writeAttributes(&out, classAttrs)
	return out.Bytes()
}

func writeAttributes(out *bytes.Buffer, attrs []attribute) {
	_ = binary.Write(out, binary.BigEndian, uint16(len(attrs)))
	for _, a := range attrs {
		_ = binary.Write(out, binary.BigEndian, a.name)
		_ = binary.Write(out, binary.BigEndian, uint32(len(a.info)))
		out.Write(a.info)
	}
}
