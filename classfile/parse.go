package classfile

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// reader latches the first error so that a run of reads can be checked once.
type reader struct {
	r   io.Reader
	err error
}

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	var buf [1]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	var buf [2]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	var buf [4]byte
	_, r.err = io.ReadFull(r.r, buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open class file")
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a class file. Method bodies and attributes the reflective
// view does not need are retained as raw bytes.
func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.readU4()
	if r.err != nil {
		return nil, errors.Wrap(r.err, "read magic")
	}
	if magic != Magic {
		return nil, errors.Newf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	count := r.readU2()
	if r.err != nil {
		return nil, errors.Wrap(r.err, "read header")
	}
	if count == 0 {
		return nil, errors.New("invalid constant pool count 0")
	}

	cf.ConstantPool = make(ConstantPool, count)
	for i := uint16(1); i < count; i++ {
		c, err := readConstant(r)
		if err != nil {
			return nil, errors.Wrapf(err, "read constant pool entry %d", i)
		}
		cf.ConstantPool[i] = c
		if c.Tag == ConstantLong || c.Tag == ConstantDouble {
			i++
		}
	}

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()
	cf.Interfaces = make([]uint16, r.readU2())
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.readU2()
	}
	if r.err != nil {
		return nil, errors.Wrap(r.err, "read class info")
	}

	var err error
	if cf.Fields, err = readMembers(r, cf.ConstantPool); err != nil {
		return nil, errors.Wrap(err, "read fields")
	}
	if cf.Methods, err = readMembers(r, cf.ConstantPool); err != nil {
		return nil, errors.Wrap(err, "read methods")
	}
	if cf.Attributes, err = readAttributes(r, cf.ConstantPool); err != nil {
		return nil, errors.Wrap(err, "read class attributes")
	}
	return cf, nil
}

func readConstant(r *reader) (Constant, error) {
	c := Constant{Tag: ConstantTag(r.readU1())}
	switch c.Tag {
	case ConstantUtf8:
		c.Utf8 = decodeModifiedUtf8(r.readBytes(int(r.readU2())))
	case ConstantInteger, ConstantFloat:
		c.Bits = uint64(r.readU4())
	case ConstantLong, ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		c.Bits = uint64(high)<<32 | uint64(low)
	case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
		c.Index = r.readU2()
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
		ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
		c.Index = r.readU2()
		c.Index2 = r.readU2()
	case ConstantMethodHandle:
		c.Index = uint16(r.readU1())
		c.Index2 = r.readU2()
	default:
		if r.err == nil {
			return Constant{}, errors.Newf("unknown constant pool tag: %d", c.Tag)
		}
	}
	return c, r.err
}

func readMembers(r *reader, cp ConstantPool) ([]MemberInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	members := make([]MemberInfo, count)
	for i := range members {
		members[i] = MemberInfo{
			AccessFlags:     AccessFlags(r.readU2()),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, errors.Wrapf(err, "member %d", i)
		}
		members[i].Attributes = attrs
	}
	return members, nil
}

func readAttributes(r *reader, cp ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		nameIndex := r.readU2()
		length := r.readU4()
		attrs[i] = AttributeInfo{
			Name: cp.GetUtf8(nameIndex),
			Info: r.readBytes(int(length)),
		}
	}
	return attrs, r.err
}

// decodeModifiedUtf8 decodes the JVM's modified UTF-8, where NUL is two
// bytes and supplementary characters are encoded as surrogate pairs.
func decodeModifiedUtf8(b []byte) string {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			runes = append(runes, rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3]&0xF0 == 0xE0 {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+(r-0xD800)<<10+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(c))
			i++
		}
	}
	return string(runes)
}
