package expand

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/macrokit/internal"
	"github.com/gnolang/macrokit/internal/macros"
	tt "github.com/gnolang/macrokit/internal/types"
)

// DefaultConfigFile is the configuration looked up when none is given.
const DefaultConfigFile = ".macrokit.yaml"

// Config is the content of a .macrokit.yaml file.
type Config struct {
	Name        string                    `yaml:"name"`
	Macros      map[string]tt.ConfigMacro `yaml:"macros"`
	Hierarchy   macros.HierarchyConfig    `yaml:"hierarchy"`
	Log         LogConfig                 `yaml:"log"`
	Extensions  []string                  `yaml:"extensions"`
	IgnorePaths []string                  `yaml:"ignore_paths,omitempty"`
}

type LogConfig struct {
	FullPath bool `yaml:"full_path"`
}

func DefaultConfig() Config {
	return Config{
		Name:       "macrokit",
		Macros:     map[string]tt.ConfigMacro{},
		Hierarchy:  macros.DefaultHierarchyConfig(),
		Extensions: []string{".swift"},
	}
}

// EngineOptions maps the configuration onto engine options.
func (c Config) EngineOptions() internal.Options {
	return internal.Options{
		Macros:    c.Macros,
		Hierarchy: c.Hierarchy,
		FullPath:  c.Log.FullPath,
	}
}

// Options maps the configuration onto path processing options.
func (c Config) Options() Options {
	return Options{
		Extensions:  c.Extensions,
		IgnorePaths: c.IgnorePaths,
	}
}

// LoadConfig reads a configuration file over the defaults. A missing
// file yields the defaults.
func LoadConfig(configurationPath string) (Config, error) {
	if configurationPath == "" {
		configurationPath = DefaultConfigFile
	}
	f, err := os.Open(configurationPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	return ParseConfig(f)
}

// ParseConfig decodes a configuration over the defaults and validates it.
func ParseConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("error parsing configuration: %w", err)
	}
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Macros == nil {
		c.Macros = map[string]tt.ConfigMacro{}
	}
	known := macros.Builtin(c.Hierarchy)
	for name := range c.Macros {
		if _, ok := known.Lookup(name); !ok {
			return fmt.Errorf("unknown macro %q in configuration", name)
		}
	}
	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return fmt.Errorf("empty extension in configuration")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	for _, pattern := range c.IgnorePaths {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}

// WriteConfig stores c as YAML at configurationPath.
func WriteConfig(configurationPath string, c Config) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
