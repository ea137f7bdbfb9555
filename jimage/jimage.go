// Package jimage reads the runtime image (lib/modules) that ships with JDK 9
// and later. Only uncompressed resources are supported.
package jimage

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	Magic      = 0xCAFEDADA
	HeaderSize = 28

	// HashSeed is the FNV-1a style multiplier the JDK uses for both the
	// redirect table and the perfect hash.
	HashSeed = 0x01000193
)

// Location attribute kinds.
const (
	attrEnd = iota
	attrModule
	attrParent
	attrBase
	attrExtension
	attrOffset
	attrCompressed
	attrUncompressed
	attrCount
)

var ErrCompressed = errors.New("compressed jimage resources are not supported")

type Header struct {
	Version       uint32
	Flags         uint32
	ResourceCount uint32
	TableLength   uint32
	LocationsSize uint32
	StringsSize   uint32
}

// Image is an opened jimage file.
type Image struct {
	r      io.ReaderAt
	closer io.Closer
	order  binary.ByteOrder
	header Header

	redirect  []int32
	offsets   []uint32
	locations []byte
	strings   []byte
}

// Open reads the index of the image at path. The resources themselves are
// read on demand.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open jimage")
	}
	img, err := NewImage(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "read jimage %s", path)
	}
	img.closer = f
	return img, nil
}

// NewImage reads the index from r. The header is written in the byte order of
// the machine that built the image, so both orders are tried.
func NewImage(r io.ReaderAt) (*Image, error) {
	var raw [HeaderSize]byte
	if _, err := r.ReadAt(raw[:], 0); err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	img := &Image{r: r}
	switch {
	case binary.LittleEndian.Uint32(raw[:]) == Magic:
		img.order = binary.LittleEndian
	case binary.BigEndian.Uint32(raw[:]) == Magic:
		img.order = binary.BigEndian
	default:
		return nil, errors.Newf("invalid magic number: 0x%X", binary.BigEndian.Uint32(raw[:]))
	}

	o := img.order
	img.header = Header{
		Version:       o.Uint32(raw[4:]),
		Flags:         o.Uint32(raw[8:]),
		ResourceCount: o.Uint32(raw[12:]),
		TableLength:   o.Uint32(raw[16:]),
		LocationsSize: o.Uint32(raw[20:]),
		StringsSize:   o.Uint32(raw[24:]),
	}
	h := img.header

	index := make([]byte, int64(h.TableLength)*8+int64(h.LocationsSize)+int64(h.StringsSize))
	if _, err := r.ReadAt(index, HeaderSize); err != nil {
		return nil, errors.Wrap(err, "read index")
	}

	n := int(h.TableLength)
	img.redirect = make([]int32, n)
	img.offsets = make([]uint32, n)
	for i := 0; i < n; i++ {
		img.redirect[i] = int32(o.Uint32(index[i*4:]))
		img.offsets[i] = o.Uint32(index[(n+i)*4:])
	}
	rest := index[n*8:]
	img.locations = rest[:h.LocationsSize]
	img.strings = rest[h.LocationsSize:]
	return img, nil
}

func (img *Image) Header() Header {
	return img.header
}

func (img *Image) Close() error {
	if img.closer == nil {
		return nil
	}
	return img.closer.Close()
}

func (img *Image) indexSize() int64 {
	h := img.header
	return HeaderSize + int64(h.TableLength)*8 + int64(h.LocationsSize) + int64(h.StringsSize)
}

// Hash computes the JDK's string hash of name for the given seed.
func Hash(name string, seed int32) int32 {
	h := seed
	for i := 0; i < len(name); i++ {
		h = (h * HashSeed) ^ int32(name[i])
	}
	return h & 0x7FFFFFFF
}

// Location describes one resource.
type Location struct {
	Module, Parent, Base, Extension string

	Offset           uint64
	CompressedSize   uint64
	UncompressedSize uint64
}

// FullName reconstructs "/module/parent/base.ext".
func (l Location) FullName() string {
	var sb strings.Builder
	if l.Module != "" {
		sb.WriteString("/")
		sb.WriteString(l.Module)
		sb.WriteString("/")
	}
	if l.Parent != "" {
		sb.WriteString(l.Parent)
		sb.WriteString("/")
	}
	sb.WriteString(l.Base)
	if l.Extension != "" {
		sb.WriteString(".")
		sb.WriteString(l.Extension)
	}
	return sb.String()
}

// Find looks up a resource by its full name, e.g.
// "/java.base/java/lang/Object.class".
func (img *Image) Find(name string) (Location, bool) {
	n := int32(len(img.redirect))
	if n == 0 {
		return Location{}, false
	}
	index := img.redirect[Hash(name, HashSeed)%n]
	switch {
	case index < 0:
		index = -1 - index
	case index > 0:
		index = Hash(name, index) % n
	default:
		return Location{}, false
	}
	if index >= n {
		return Location{}, false
	}

	loc, err := img.location(img.offsets[index])
	if err != nil || loc.FullName() != name {
		return Location{}, false
	}
	return loc, true
}

func (img *Image) location(offset uint32) (Location, error) {
	var attrs [attrCount]uint64
	b := img.locations
	i := int(offset)
	for i < len(b) {
		data := b[i]
		i++
		if data <= 0x7 {
			break
		}
		kind := data >> 3
		length := int(data&0x7) + 1
		if kind >= attrCount || i+length > len(b) {
			return Location{}, errors.Newf("corrupt location at offset %d", offset)
		}
		var value uint64
		for j := 0; j < length; j++ {
			value = value<<8 | uint64(b[i+j])
		}
		attrs[kind] = value
		i += length
	}

	return Location{
		Module:           img.stringAt(attrs[attrModule]),
		Parent:           img.stringAt(attrs[attrParent]),
		Base:             img.stringAt(attrs[attrBase]),
		Extension:        img.stringAt(attrs[attrExtension]),
		Offset:           attrs[attrOffset],
		CompressedSize:   attrs[attrCompressed],
		UncompressedSize: attrs[attrUncompressed],
	}, nil
}

func (img *Image) stringAt(offset uint64) string {
	if offset >= uint64(len(img.strings)) {
		return ""
	}
	s := img.strings[offset:]
	if end := bytes.IndexByte(s, 0); end >= 0 {
		s = s[:end]
	}
	return string(s)
}

// Resource returns the content of the resource at loc.
func (img *Image) Resource(loc Location) ([]byte, error) {
	if loc.CompressedSize != 0 {
		return nil, errors.Wrap(ErrCompressed, loc.FullName())
	}
	buf := make([]byte, loc.UncompressedSize)
	if _, err := img.r.ReadAt(buf, img.indexSize()+int64(loc.Offset)); err != nil {
		return nil, errors.Wrapf(err, "read %s", loc.FullName())
	}
	return buf, nil
}

// ReadFile returns the content of path inside module.
func (img *Image) ReadFile(module, path string) ([]byte, error) {
	loc, ok := img.Find("/" + module + "/" + path)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: module + "/" + path, Err: fs.ErrNotExist}
	}
	return img.Resource(loc)
}

// ModuleFS exposes the resources of one module as a file system rooted at
// the module, so "java/lang/Object.class" opens
// "/java.base/java/lang/Object.class". Directories cannot be listed.
func (img *Image) ModuleFS(module string) fs.FS {
	return moduleFS{img: img, module: module}
}

type moduleFS struct {
	img    *Image
	module string
}

func (m moduleFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	data, err := m.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &file{Reader: bytes.NewReader(data), name: name, size: int64(len(data))}, nil
}

func (m moduleFS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return m.img.ReadFile(m.module, name)
}

type file struct {
	*bytes.Reader
	name string
	size int64
}

func (f *file) Stat() (fs.FileInfo, error) { return f, nil }
func (f *file) Close() error               { return nil }

func (f *file) Name() string       { return f.name[strings.LastIndexByte(f.name, '/')+1:] }
func (f *file) Size() int64        { return f.size }
func (f *file) Mode() fs.FileMode  { return 0o444 }
func (f *file) ModTime() time.Time { return time.Time{} }
func (f *file) IsDir() bool        { return false }
func (f *file) Sys() any           { return nil }
