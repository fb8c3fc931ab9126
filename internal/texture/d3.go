package texture

import (
	"errors"
	"fmt"
	"image"
	"io/fs"

	"des-level-obj/internal/hog"
	"des-level-obj/internal/ogf"
	"des-level-obj/internal/table"
)

// D3Source resolves texture names through the table file to bitmaps stored
// in one or more archives. Earlier archives take precedence.
type D3Source struct {
	Table    *table.Table
	Archives []*hog.Archive
}

// Filename returns the bitmap file the table lists for name.
func (s *D3Source) Filename(name string) (string, bool) {
	if s.Table == nil {
		return "", false
	}
	tex, ok := s.Table.Lookup(name)
	if !ok || tex.Filename == "" {
		return "", false
	}
	return tex.Filename, true
}

// Resolve decodes the first frame of the bitmap behind a texture name.
func (s *D3Source) Resolve(name string) (*image.NRGBA, error) {
	file, ok := s.Filename(name)
	if !ok {
		return nil, notFound("table", name)
	}
	for _, a := range s.Archives {
		data, err := a.ReadFile(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("texture: %s: %w", name, err)
		}
		bm, err := ogf.DecodeEntry(file, data)
		if err != nil {
			return nil, fmt.Errorf("texture: %s: %w", name, err)
		}
		return bm.NRGBA(), nil
	}
	return nil, notFound("archives", file)
}
