package texture

import (
	"image"
	"os"
	"path/filepath"
	"strings"
)

// imageExts ranks loose file types; formats that carry alpha win over
// those that do not when two files share a stem.
var imageExts = map[string]int{
	".png":  2,
	".tga":  2,
	".jpg":  1,
	".jpeg": 1,
}

// Index maps lowercase texture stems to loose image files.
type Index struct {
	dir     string
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dir and its subdirectories for replacement images. A
// missing dir yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{dir: dir, entries: make(map[string]string)}
	if dir == "" {
		return idx
	}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, ok := imageExts[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		existing, exists := idx.entries[stem]
		if !exists || rank > imageExts[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})
	return idx
}

// ResolvePath returns the file for a texture name, or ("", false). Any
// directory part and image extension of the name are ignored, and spaces
// may appear as underscores in the file name.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	stem := strings.ToLower(filepath.Base(texName))
	if _, ok := imageExts[filepath.Ext(stem)]; ok {
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	}

	if path, ok := idx.entries[stem]; ok {
		return path, true
	}
	path, ok := idx.entries[strings.ReplaceAll(stem, " ", "_")]
	return path, ok
}

// Resolve loads the replacement image for texName.
func (idx *Index) Resolve(texName string) (*image.NRGBA, error) {
	path, ok := idx.ResolvePath(texName)
	if !ok {
		return nil, notFound(idx.dir, texName)
	}
	return LoadImage(path)
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
