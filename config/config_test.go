package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/implgen/config"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Output)
	assert.Equal(t, "java.", cfg.BuiltinPrefix)
	assert.Equal(t, "250ms", cfg.Debounce)
	assert.Empty(t, cfg.JavaHome)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
output = "generated"
java_home = "/opt/jdk"
classpath = "lib/a.jar:classes"
verbose = 2
`), 0o644))

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "generated", cfg.Output)
	assert.Equal(t, "/opt/jdk", cfg.JavaHome)
	assert.Equal(t, "lib/a.jar:classes", cfg.ClassPath)
	assert.Equal(t, 2, cfg.Verbose)
	assert.Equal(t, "java.", cfg.BuiltinPrefix)
	assert.Equal(t, path, cfg.File)
}

func TestFindsProjectFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte(`output = "stubs"`), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "stubs", cfg.Output)
	assert.Equal(t, config.FileName, filepath.Base(cfg.File))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(`output = "from-file"`), 0o644))
	t.Setenv("IMPLGEN_OUTPUT", "from-env")
	t.Setenv("IMPLGEN_BUILTIN_PREFIX", "javax.")

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output)
	assert.Equal(t, "javax.", cfg.BuiltinPrefix)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("output = [unterminated"), 0o644))

	_, err := config.Load(config.New(), path)
	assert.Error(t, err)
}
