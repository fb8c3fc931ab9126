package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"des-level-obj/internal/imageout"
)

// Config holds the converter's paths and output settings.
type Config struct {
	// Paths
	GameDir      string `json:"game_dir"`
	OutputDir    string `json:"output_dir"`
	TextureRemap string `json:"texture_remap"`
	TextureDir   string `json:"texture_dir"`

	// Output settings
	ImageFormat    string `json:"image_format"`
	MaxTextureSize int    `json:"max_texture_size"`
	DumpTextures   bool   `json:"dump_textures"`
	Workers        int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	GameDir        string
	OutputDir      string
	TextureRemap   string
	TextureDir     string
	ImageFormat    string
	MaxTextureSize int
	DumpTextures   bool
	Workers        int
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.GameDir != "" {
		c.GameDir = flags.GameDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TextureRemap != "" {
		c.TextureRemap = flags.TextureRemap
	}
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.ImageFormat != "" {
		c.ImageFormat = flags.ImageFormat
	}
	if flags.MaxTextureSize > 0 {
		c.MaxTextureSize = flags.MaxTextureSize
	}
	if flags.DumpTextures {
		c.DumpTextures = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Auto-detect game dir if still empty
	if c.GameDir == "" {
		c.GameDir = detectGameDir()
	}

	// Relative paths are taken from the game dir
	if c.GameDir != "" {
		if c.TextureRemap == "" {
			if p := filepath.Join(c.GameDir, "texture_remap.json"); fileExists(p) {
				c.TextureRemap = p
			}
		} else if !filepath.IsAbs(c.TextureRemap) && !fileExists(c.TextureRemap) {
			c.TextureRemap = filepath.Join(c.GameDir, c.TextureRemap)
		}
		if c.TextureDir != "" && !filepath.IsAbs(c.TextureDir) && !dirExists(c.TextureDir) {
			c.TextureDir = filepath.Join(c.GameDir, c.TextureDir)
		}
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	f, err := imageout.ParseFormat(c.ImageFormat)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.ImageFormat = string(f)
	if c.MaxTextureSize < 0 {
		c.MaxTextureSize = 0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Format returns the resolved image format.
func (c *Config) Format() imageout.Format {
	return imageout.Format(c.ImageFormat)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// gameMarkers are files whose presence identifies a game data directory.
var gameMarkers = []string{"descent2.hog", "d3.hog", "descent.hog"}

func isGameDir(dir string) bool {
	for _, m := range gameMarkers {
		if fileExists(filepath.Join(dir, m)) {
			return true
		}
	}
	return false
}

func detectGameDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if isGameDir(base) {
				return base
			}
		}
	}

	// Try current working directory and its parent
	cwd, _ := os.Getwd()
	if isGameDir(cwd) {
		return cwd
	}
	if parent := filepath.Dir(cwd); isGameDir(parent) {
		return parent
	}

	return ""
}
