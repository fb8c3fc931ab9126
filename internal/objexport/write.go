package objexport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"des-level-obj/internal/remap"
)

// Options control naming in the written files.
type Options struct {
	Object   string     // "o" name; omitted when empty
	MtlLib   string     // material library referenced by the OBJ
	ImageExt string     // extension of map_Kd images, default ".png"
	Remap    *remap.Map // optional material renames
	Log      *zerolog.Logger
}

func (o *Options) logger() *zerolog.Logger {
	if o.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Log
}

// Exported is the final name pair of a material.
type Exported struct {
	Material string
	Texture  string // image base name
}

// ExportNames applies the rename list to the mesh materials, logging each
// rename. The result is parallel to m.Materials.
func ExportNames(m *Mesh, opts Options) []Exported {
	log := opts.logger()
	out := make([]Exported, len(m.Materials))
	for i, mat := range m.Materials {
		out[i] = Exported{Material: mat.Name, Texture: mat.Name}
		if t, ok := opts.Remap.Lookup(mat.Name); ok {
			log.Info().Str("texture", mat.Name).
				Msgf("Renaming texture '%s' to '%s', '%s'", mat.Name, t.Material, t.Texture)
			out[i] = Exported{Material: t.Material, Texture: t.Texture}
		}
	}
	return out
}

func formatFloat(v float32) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// Write emits the OBJ geometry to obj and the material library to mtl.
// Faces are grouped by material in ascending texture number.
func Write(obj, mtl io.Writer, m *Mesh, opts Options) error {
	names := ExportNames(m, opts)
	if err := writeOBJ(obj, m, names, opts); err != nil {
		return fmt.Errorf("objexport: write obj: %w", err)
	}
	if err := writeMTL(mtl, names, opts); err != nil {
		return fmt.Errorf("objexport: write mtl: %w", err)
	}
	return nil
}

func writeOBJ(w io.Writer, m *Mesh, names []Exported, opts Options) error {
	bw := bufio.NewWriter(w)
	if opts.MtlLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", opts.MtlLib)
	}
	if opts.Object != "" {
		fmt.Fprintf(bw, "o %s\n", opts.Object)
	}
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p.X()), formatFloat(p.Y()), formatFloat(p.Z()))
	}
	for _, t := range m.UVs {
		fmt.Fprintf(bw, "vt %s %s\n", formatFloat(t.X()), formatFloat(t.Y()))
	}

	groups := make([][]int, len(m.Materials))
	for i, f := range m.Faces {
		groups[f.Material] = append(groups[f.Material], i)
	}
	for mi, faces := range groups {
		if len(faces) == 0 {
			continue
		}
		fmt.Fprintf(bw, "usemtl %s\n", names[mi].Material)
		bw.WriteString("s off\n")
		for _, fi := range faces {
			bw.WriteString("f")
			for _, c := range m.Faces[fi].Corners {
				fmt.Fprintf(bw, " %d/%d", c.V+1, c.T+1)
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

const mtlTemplate = `newmtl %s
illum 2
Kd 1.00 1.00 1.00
Ka 0.00 0.00 0.00
Ks 0.00 0.00 0.00
d 1.0
map_Kd %s%s
`

func writeMTL(w io.Writer, names []Exported, opts Options) error {
	ext := opts.ImageExt
	if ext == "" {
		ext = ".png"
	}
	bw := bufio.NewWriter(w)
	seen := make(map[string]bool)
	for _, n := range names {
		// Several textures may be renamed to one material.
		if seen[n.Material] {
			continue
		}
		seen[n.Material] = true
		fmt.Fprintf(bw, mtlTemplate, n.Material, n.Texture, ext)
	}
	return bw.Flush()
}
