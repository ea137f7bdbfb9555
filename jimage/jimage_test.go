package jimage_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/implgen/jimage"
	"github.com/dhamidi/implgen/jimage/jimagetest"
)

func sampleImage() *jimagetest.Image {
	img := jimagetest.New()
	img.Add("java.base", "java/lang/Object.class", []byte("object"))
	img.Add("java.base", "java/lang/String.class", []byte("string"))
	img.Add("java.base", "java/util/Map$Entry.class", []byte("entry"))
	img.Add("java.base", "module-info.class", []byte("module"))
	img.Add("java.sql", "java/sql/Connection.class", []byte("connection"))
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		img.Add("study", "pkg/"+name+".class", []byte(name))
	}
	return img
}

func TestFindAndRead(t *testing.T) {
	for _, order := range []string{"little endian", "big endian"} {
		t.Run(order, func(t *testing.T) {
			builder := sampleImage()
			if order == "big endian" {
				builder.BigEndian()
			}
			img, err := jimage.NewImage(bytes.NewReader(builder.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, uint32(13), img.Header().ResourceCount)

			tests := map[string]string{
				"/java.base/java/lang/Object.class":    "object",
				"/java.base/java/lang/String.class":    "string",
				"/java.base/java/util/Map$Entry.class": "entry",
				"/java.base/module-info.class":         "module",
				"/java.sql/java/sql/Connection.class":  "connection",
				"/study/pkg/E.class":                   "E",
			}
			for name, want := range tests {
				loc, ok := img.Find(name)
				require.True(t, ok, "Find(%q)", name)
				assert.Equal(t, name, loc.FullName())
				data, err := img.Resource(loc)
				require.NoError(t, err)
				assert.Equal(t, want, string(data))
			}

			for _, missing := range []string{
				"/java.base/java/lang/Missing.class",
				"/java.sql/java/lang/Object.class",
				"java/lang/Object.class",
				"",
			} {
				_, ok := img.Find(missing)
				assert.False(t, ok, "Find(%q)", missing)
			}
		})
	}
}

func TestModuleFS(t *testing.T) {
	img, err := jimage.NewImage(bytes.NewReader(sampleImage().Bytes()))
	require.NoError(t, err)

	base := img.ModuleFS("java.base")
	data, err := fs.ReadFile(base, "java/lang/Object.class")
	require.NoError(t, err)
	assert.Equal(t, "object", string(data))

	f, err := base.Open("java/util/Map$Entry.class")
	require.NoError(t, err)
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "Map$Entry.class", info.Name())
	assert.Equal(t, int64(5), info.Size())
	require.NoError(t, f.Close())

	_, err = fs.ReadFile(base, "java/sql/Connection.class")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = base.Open("../escape")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules")
	require.NoError(t, os.WriteFile(path, sampleImage().Bytes(), 0o644))

	img, err := jimage.Open(path)
	require.NoError(t, err)
	defer img.Close()

	data, err := img.ReadFile("java.sql", "java/sql/Connection.class")
	require.NoError(t, err)
	assert.Equal(t, "connection", string(data))
}

func TestRejectsBadMagic(t *testing.T) {
	_, err := jimage.NewImage(bytes.NewReader(make([]byte, jimage.HeaderSize)))
	assert.Error(t, err)

	_, err = jimage.NewImage(bytes.NewReader([]byte{0xDA, 0xDA}))
	assert.Error(t, err)
}

func TestEmptyImage(t *testing.T) {
	img, err := jimage.NewImage(bytes.NewReader(jimagetest.New().Bytes()))
	require.NoError(t, err)
	_, ok := img.Find("/java.base/java/lang/Object.class")
	assert.False(t, ok)
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, jimage.Hash("", jimage.HashSeed), int32(jimage.HashSeed))
	h := jimage.Hash("/java.base/java/lang/Object.class", jimage.HashSeed)
	assert.GreaterOrEqual(t, h, int32(0))
	assert.Equal(t, h, jimage.Hash("/java.base/java/lang/Object.class", jimage.HashSeed))
	assert.NotEqual(t, h, jimage.Hash("/java.base/java/lang/Object.class", 2))
}
