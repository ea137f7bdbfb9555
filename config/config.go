// Package config loads implgen settings from implgen.toml, IMPLGEN_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	FileName  = "implgen.toml"
	EnvPrefix = "IMPLGEN"
)

// Config is the resolved configuration.
type Config struct {
	// Output is the root directory generated sources are written below.
	Output string `mapstructure:"output"`
	// JavaHome selects the runtime; when empty it is discovered from
	// JAVA_HOME or the java on PATH.
	JavaHome string `mapstructure:"java_home"`
	// ClassPath lists extra directories and jars, separated like PATH,
	// searched after the runtime.
	ClassPath string `mapstructure:"classpath"`
	// BuiltinPrefix marks packages whose stubs go to the default package.
	BuiltinPrefix string `mapstructure:"builtin_prefix"`
	Verbose       int    `mapstructure:"verbose"`
	// Debounce is how long the watcher waits for class file changes to
	// settle, e.g. "250ms".
	Debounce string `mapstructure:"debounce"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", ".")
	v.SetDefault("java_home", "")
	v.SetDefault("classpath", "")
	v.SetDefault("builtin_prefix", "java.")
	v.SetDefault("verbose", 0)
	v.SetDefault("debounce", "250ms")
}

// New returns a viper instance with defaults and environment binding in
// place. Flags can be bound to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads path into v, or the nearest implgen.toml above the working
// directory when path is empty. A missing implicit file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = findProjectConfig()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode configuration")
	}
	cfg.File = path
	return &cfg, nil
}

// findProjectConfig walks up from the working directory looking for
// implgen.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
