package objexport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"des-level-obj/internal/imageout"
	"des-level-obj/internal/texture"
)

// ConvertOptions extend Options with texture output.
type ConvertOptions struct {
	Options

	// Textures, when set with DumpTextures, supplies the images written
	// next to the OBJ, one per exported texture name.
	Textures       texture.Resolver
	DumpTextures   bool
	ImageFormat    imageout.Format
	MaxTextureSize int
}

// Stats summarizes one conversion.
type Stats struct {
	Vertices  int
	UVs       int
	Faces     int
	Materials int
	Images    int
	Missing   []string // textures that could not be written
}

// Convert writes m to objPath and the material library next to it. Both
// files are written to temporaries and renamed into place, so a failed run
// leaves earlier output untouched. Texture images already present are kept.
func Convert(objPath string, m *Mesh, opts ConvertOptions) (Stats, error) {
	if opts.ImageFormat == "" {
		opts.ImageFormat = imageout.PNG
	}
	base := strings.TrimSuffix(filepath.Base(objPath), filepath.Ext(objPath))
	mtlPath := strings.TrimSuffix(objPath, filepath.Ext(objPath)) + ".mtl"
	if opts.Object == "" {
		opts.Object = strings.ReplaceAll(base, " ", "_")
	}
	opts.MtlLib = filepath.Base(mtlPath)
	opts.ImageExt = opts.ImageFormat.Ext()

	dir := filepath.Dir(objPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Stats{}, fmt.Errorf("objexport: %w", err)
	}
	objTmp, err := os.CreateTemp(dir, "."+base+"-*.obj")
	if err != nil {
		return Stats{}, fmt.Errorf("objexport: %w", err)
	}
	defer os.Remove(objTmp.Name())
	defer objTmp.Close()
	mtlTmp, err := os.CreateTemp(dir, "."+base+"-*.mtl")
	if err != nil {
		return Stats{}, fmt.Errorf("objexport: %w", err)
	}
	defer os.Remove(mtlTmp.Name())
	defer mtlTmp.Close()

	if err := Write(objTmp, mtlTmp, m, opts.Options); err != nil {
		return Stats{}, err
	}
	if err := errors.Join(objTmp.Close(), mtlTmp.Close()); err != nil {
		return Stats{}, fmt.Errorf("objexport: %w", err)
	}
	if err := os.Rename(objTmp.Name(), objPath); err != nil {
		return Stats{}, fmt.Errorf("objexport: %w", err)
	}
	if err := os.Rename(mtlTmp.Name(), mtlPath); err != nil {
		return Stats{}, fmt.Errorf("objexport: %w", err)
	}

	st := Stats{
		Vertices:  len(m.Positions),
		UVs:       len(m.UVs),
		Faces:     len(m.Faces),
		Materials: len(m.Materials),
	}
	if opts.DumpTextures && opts.Textures != nil {
		dumpTextures(dir, m, opts, &st)
	}
	return st, nil
}

// dumpTextures writes one image per exported texture name. Failures are
// logged and counted; they do not fail the conversion.
func dumpTextures(dir string, m *Mesh, opts ConvertOptions, st *Stats) {
	log := opts.logger()
	exported := ExportNames(m, Options{Remap: opts.Remap})
	seen := make(map[string]bool)
	for i := range m.Materials {
		out := filepath.Join(dir, exported[i].Texture+opts.ImageFormat.Ext())
		if seen[out] {
			continue
		}
		seen[out] = true
		if _, err := os.Stat(out); err == nil {
			continue
		}
		name := m.Materials[i].Texture
		img, err := opts.Textures.Resolve(name)
		if err != nil {
			log.Warn().Err(err).Str("texture", name).Msg("texture not resolved")
			st.Missing = append(st.Missing, name)
			continue
		}
		img = imageout.Fit(img, opts.MaxTextureSize)
		if err := imageout.Save(out, img, opts.ImageFormat); err != nil {
			log.Warn().Err(err).Str("file", out).Msg("texture not written")
			st.Missing = append(st.Missing, name)
			continue
		}
		st.Images++
	}
}
