// Package texture turns level texture names into decoded images. Sources
// are archive bitmaps (OGF through the table file, or PIG through the HAM
// texture list) and loose replacement images on disk.
package texture

import (
	"errors"
	"image"
	"io/fs"

	"des-level-obj/internal/format"
)

// Resolver resolves a texture name to a decoded image. Unknown names give
// an error matching fs.ErrNotExist.
type Resolver interface {
	Resolve(name string) (*image.NRGBA, error)
}

func notFound(source, name string) error {
	return &format.NotFoundError{Archive: source, Name: name}
}

// Chain tries each resolver in order and returns the first hit. A resolver
// that fails with anything other than a missing name stops the search.
type Chain []Resolver

func (c Chain) Resolve(name string) (*image.NRGBA, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		img, err := r.Resolve(name)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, notFound("texture", name)
}
