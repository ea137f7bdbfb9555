// Package jimagetest writes small jimage files for tests.
package jimagetest

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/dhamidi/implgen/jimage"
)

// Image collects resources keyed by full name ("/java.base/java/lang/Object.class").
type Image struct {
	order     binary.ByteOrder
	resources map[string][]byte
}

func New() *Image {
	return &Image{order: binary.LittleEndian, resources: make(map[string][]byte)}
}

// BigEndian makes Bytes write the header and tables in big endian order.
func (img *Image) BigEndian() *Image {
	img.order = binary.BigEndian
	return img
}

// Add stores data as path inside module.
func (img *Image) Add(module, path string, data []byte) *Image {
	img.resources["/"+module+"/"+path] = data
	return img
}

type stringTable struct {
	buf   bytes.Buffer
	index map[string]uint64
}

func (s *stringTable) add(str string) uint64 {
	if off, ok := s.index[str]; ok {
		return off
	}
	off := uint64(s.buf.Len())
	s.buf.WriteString(str)
	s.buf.WriteByte(0)
	s.index[str] = off
	return off
}

func writeAttr(buf *bytes.Buffer, kind byte, value uint64) {
	n := 1
	for v := value >> 8; v != 0; v >>= 8 {
		n++
	}
	buf.WriteByte(kind<<3 | byte(n-1))
	for i := n - 1; i >= 0; i-- {
		buf.WriteByte(byte(value >> (8 * i)))
	}
}

func split(name string) (module, parent, base, ext string) {
	rest := strings.TrimPrefix(name, "/")
	module, rest, _ = strings.Cut(rest, "/")
	if i := strings.LastIndexByte(rest, '/'); i >= 0 {
		parent, rest = rest[:i], rest[i+1:]
	}
	base = rest
	if i := strings.LastIndexByte(rest, '.'); i > 0 {
		base, ext = rest[:i], rest[i+1:]
	}
	return
}

// Bytes serializes the image with a perfect hash table over all resources.
func (img *Image) Bytes() []byte {
	names := make([]string, 0, len(img.resources))
	for name := range img.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	strs := &stringTable{index: make(map[string]uint64)}
	strs.add("")

	var locations, content bytes.Buffer
	locOffsets := make(map[string]uint32, len(names))
	for _, name := range names {
		module, parent, base, ext := split(name)
		locOffsets[name] = uint32(locations.Len())
		writeAttr(&locations, 1, strs.add(module))
		if parent != "" {
			writeAttr(&locations, 2, strs.add(parent))
		}
		writeAttr(&locations, 3, strs.add(base))
		if ext != "" {
			writeAttr(&locations, 4, strs.add(ext))
		}
		writeAttr(&locations, 5, uint64(content.Len()))
		writeAttr(&locations, 7, uint64(len(img.resources[name])))
		locations.WriteByte(0)
		content.Write(img.resources[name])
	}

	redirect, slots := perfectHash(names)
	n := len(names)

	var out bytes.Buffer
	w := func(v uint32) { _ = binary.Write(&out, img.order, v) }
	w(jimage.Magic)
	w(1 << 16)
	w(0)
	w(uint32(n))
	w(uint32(n))
	w(uint32(locations.Len()))
	w(uint32(strs.buf.Len()))
	for _, r := range redirect {
		w(uint32(r))
	}
	for _, name := range slots {
		w(locOffsets[name])
	}
	out.Write(locations.Bytes())
	out.Write(strs.buf.Bytes())
	out.Write(content.Bytes())
	return out.Bytes()
}

// perfectHash assigns every name a slot the way the JDK image builder does:
// colliding buckets get a seed that spreads them over free slots, singleton
// buckets point straight at a slot with a negative redirect.
func perfectHash(names []string) ([]int32, []string) {
	n := int32(len(names))
	redirect := make([]int32, n)
	slots := make([]string, n)
	if n == 0 {
		return redirect, slots
	}

	buckets := make([][]string, n)
	for _, name := range names {
		b := jimage.Hash(name, jimage.HashSeed) % n
		buckets[b] = append(buckets[b], name)
	}
	order := make([]int32, n)
	for i := range order {
		order[i] = int32(i)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(buckets[order[i]]) > len(buckets[order[j]])
	})

	used := make([]bool, n)
	for _, b := range order {
		bucket := buckets[b]
		if len(bucket) <= 1 {
			continue
		}
	seeds:
		for seed := int32(1); ; seed++ {
			taken := make(map[int32]bool, len(bucket))
			for _, name := range bucket {
				slot := jimage.Hash(name, seed) % n
				if used[slot] || taken[slot] {
					continue seeds
				}
				taken[slot] = true
			}
			for _, name := range bucket {
				slot := jimage.Hash(name, seed) % n
				used[slot] = true
				slots[slot] = name
			}
			redirect[b] = seed
			break
		}
	}

	free := int32(0)
	for _, b := range order {
		if len(buckets[b]) != 1 {
			continue
		}
		for used[free] {
			free++
		}
		used[free] = true
		slots[free] = buckets[b][0]
		redirect[b] = -1 - free
	}
	return redirect, slots
}
