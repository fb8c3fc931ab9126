// Package imageout writes decoded textures as PNG, TGA or WebP files.
package imageout

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Format selects the output encoding.
type Format string

const (
	PNG  Format = "png"
	TGA  Format = "tga"
	WebP Format = "webp"
)

// ParseFormat accepts a format name or file extension, in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case PNG, TGA, WebP:
		return f, nil
	case "":
		return PNG, nil
	}
	return "", fmt.Errorf("imageout: unknown image format %q", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case TGA:
		err = tga.Encode(w, img)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("imageout: unknown image format %q", string(f))
	}
	if err != nil {
		return fmt.Errorf("imageout: %s encode: %w", f, err)
	}
	return nil
}

// Save writes img to path, creating parent directories.
func Save(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("imageout: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageout: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("imageout: close %s: %w", path, err)
	}
	return nil
}
