// Package config handles brim.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/brim/vm"
)

// FileName is the name of the configuration file looked up by Load and
// FindAndLoad.
const FileName = "brim.toml"

// Config represents a brim.toml file.
type Config struct {
	GC    GC    `toml:"gc"`
	Log   Log   `toml:"log"`
	Store Store `toml:"store"`
	LSP   LSP   `toml:"lsp"`

	// Dir is the directory containing the brim.toml file (set at load time).
	Dir string `toml:"-"`
}

// GC configures the collector.
type GC struct {
	Threshold int `toml:"threshold"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Store configures the snapshot database.
type Store struct {
	Path string `toml:"path"`
}

// LSP configures the language server.
type LSP struct {
	Name string `toml:"name"`
}

// Default returns the configuration used when no brim.toml exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.GC.Threshold <= 0 {
		c.GC.Threshold = vm.DefaultThreshold
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(".brim", "store.db")
	}
	if c.LSP.Name == "" {
		c.LSP.Name = "brim-lsp"
	}
}

// Load parses a brim.toml file from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path. Relative paths inside it
// resolve against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}

	dir := filepath.Dir(path)
	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	c.applyDefaults()
	return &c, nil
}

// FindAndLoad walks up from startDir to find a brim.toml file, then loads
// and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// RuntimeOptions converts the collector settings to vm.Options.
func (c *Config) RuntimeOptions() vm.Options {
	return vm.Options{Threshold: c.GC.Threshold}
}

// StorePath returns the snapshot database path, resolved against Dir when
// it is relative.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) || c.Dir == "" {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// LogFile returns the log file path resolved against Dir, or "" for stderr.
func (c *Config) LogFile() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) || c.Dir == "" {
		return c.Log.File
	}
	return filepath.Join(c.Dir, c.Log.File)
}
