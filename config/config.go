// Package config reads and writes the .pmconv.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	tt "github.com/gnolang/pmconv/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when --config is not set.
const DefaultFile = ".pmconv.yaml"

type RulesMode string

const (
	// ModeExtend appends the user rules after the built-in table.
	ModeExtend RulesMode = "extend"
	// ModeReplace uses only the user rules.
	ModeReplace RulesMode = "replace"
)

type Rules struct {
	File string    `yaml:"file,omitempty"`
	Mode RulesMode `yaml:"mode,omitempty"`
}

type Output struct {
	TestDir string `yaml:"test_dir"`
	EnvDir  string `yaml:"env_dir"`
}

// Config is the project configuration.
type Config struct {
	Name        string `yaml:"name"`
	Rules       Rules  `yaml:"rules"`
	MaxRewrites int    `yaml:"max_rewrites"`
	Output      Output `yaml:"output"`
	// Strict makes warnings from the output check fatal.
	Strict bool `yaml:"strict"`
	// Checks overrides the severity of output check rules.
	Checks map[string]tt.ConfigRule `yaml:"checks,omitempty"`
}

func Default() Config {
	return Config{
		Name:        "pmconv",
		Rules:       Rules{Mode: ModeExtend},
		MaxRewrites: 32,
		Output:      Output{TestDir: "test", EnvDir: "env"},
	}
}

// Load reads the configuration at path. Unset fields keep their defaults
// and a relative rules file is resolved against the config directory.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}

	if cfg.Rules.File != "" && !filepath.IsAbs(cfg.Rules.File) {
		cfg.Rules.File = filepath.Join(filepath.Dir(path), cfg.Rules.File)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c Config) Validate() error {
	switch c.Rules.Mode {
	case "", ModeExtend:
	case ModeReplace:
		if c.Rules.File == "" {
			return errors.New("rules.mode replace needs rules.file")
		}
	default:
		return fmt.Errorf("unknown rules.mode %q", c.Rules.Mode)
	}
	if c.MaxRewrites < 0 {
		return fmt.Errorf("max_rewrites must not be negative, got %d", c.MaxRewrites)
	}
	if c.Output.TestDir == "" || c.Output.EnvDir == "" {
		return errors.New("output.test_dir and output.env_dir must be set")
	}
	return nil
}

// Write stores c at path as YAML.
func Write(path string, c Config) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
