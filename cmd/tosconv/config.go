package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/R-Hidayatullah/tos-parser/converter"
	"gopkg.in/yaml.v2"
)

// Config is the optional YAML file given with -config.
type Config struct {
	Scale             float32  `yaml:"scale"`
	TextureDir        string   `yaml:"texture_dir"`
	TextureFormat     string   `yaml:"texture_format"`
	TextureLimit      int      `yaml:"texture_limit"`
	TextureScale      float32  `yaml:"texture_scale"`
	TextureRecompress bool     `yaml:"texture_recompress"`
	TextureExtensions []string `yaml:"texture_extensions"`
	Unlit             bool     `yaml:"unlit"`
	Collision         bool     `yaml:"collision"`
	ZUp               bool     `yaml:"z_up"`
	Workers           int      `yaml:"workers"`

	// Embed moves external images of glTF inputs into the output file.
	Embed bool `yaml:"embed"`
}

// LoadConfig reads a YAML config file. Fields not set in the file keep their zero values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scale      float64
	TextureDir string
	WebP       bool
	TexLimit   int
	Unlit      bool
	ZUp        bool
	Workers    int
}

// Resolve applies non-zero flags over the file values and fills in defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Scale != 0 {
		c.Scale = float32(flags.Scale)
	}
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.WebP {
		c.TextureFormat = "webp"
	}
	if flags.TexLimit > 0 {
		c.TextureLimit = flags.TexLimit
	}
	if flags.Unlit {
		c.Unlit = true
	}
	if flags.ZUp {
		c.ZUp = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *Config) converterOption() *converter.XACToGLTFOption {
	return &converter.XACToGLTFOption{
		Scale:                  c.Scale,
		ForceUnlit:             c.Unlit,
		TextureReCompress:      c.TextureRecompress,
		TextureResolutionLimit: c.TextureLimit,
		TextureScale:           c.TextureScale,
		TextureFormat:          c.TextureFormat,
		TextureExtensions:      c.TextureExtensions,
		IncludeCollisionMeshes: c.Collision,
		ZUp:                    c.ZUp,
	}
}
