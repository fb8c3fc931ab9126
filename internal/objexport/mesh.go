// Package objexport turns decoded levels into Wavefront OBJ geometry with a
// companion MTL material library.
package objexport

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"des-level-obj/internal/classic"
	"des-level-obj/internal/d3level"
	"des-level-obj/internal/format"
)

// Mesh is level geometry in export space: x mirrored, centered on the mean
// of the cell centroids, v texture coordinates negated.
type Mesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Faces     []Face
	Materials []Material // ascending Source
}

// Face is a polygon; corners index Positions and UVs from zero.
type Face struct {
	Material int // index into Mesh.Materials
	Corners  []Corner
}

// Corner pairs a position with a texture coordinate.
type Corner struct {
	V, T int
}

// Material is one texture used by the level.
type Material struct {
	Source  int    // texture number in the level
	Name    string // texture name, spaces replaced by underscores
	Texture string // texture name as the game stores it
}

// TextureNamer names the texture numbers of a classic level.
type TextureNamer interface {
	TextureName(tmap int) (string, bool)
}

// materialSet collects materials in first-use order and sorts them once
// the mesh is complete.
type materialSet struct {
	bySource map[int]int
	list     []Material
}

func (s *materialSet) index(source int, name func() string) int {
	if s.bySource == nil {
		s.bySource = make(map[int]int)
	}
	if i, ok := s.bySource[source]; ok {
		return i
	}
	s.bySource[source] = len(s.list)
	n := name()
	s.list = append(s.list, Material{Source: source, Name: materialName(n), Texture: n})
	return len(s.list) - 1
}

// finish sorts materials by source number and renumbers the faces.
func (s *materialSet) finish(m *Mesh) {
	order := make([]int, len(s.list))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(s.list[a].Source, s.list[b].Source) })
	remap := make([]int, len(s.list))
	m.Materials = make([]Material, len(s.list))
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
		m.Materials[newIdx] = s.list[oldIdx]
	}
	for i := range m.Faces {
		m.Faces[i].Material = remap[m.Faces[i].Material]
	}
}

func materialName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// toExport mirrors x and moves center to the origin.
func toExport(p, center mgl32.Vec3) mgl32.Vec3 {
	d := p.Sub(center)
	return mgl32.Vec3{-d.X(), d.Y(), d.Z()}
}

func meanOf(points []mgl32.Vec3) mgl32.Vec3 {
	var c mgl32.Vec3
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Mul(1 / float32(len(points)))
}

// FromClassic builds a mesh from a classic mine. Every rendered side
// becomes two triangles split along its shorter diagonal. names may be nil,
// in which case materials are named by texture number.
func FromClassic(mine classic.Mine, names TextureNamer) (*Mesh, error) {
	verts := make([]mgl32.Vec3, len(mine.Vertices))
	for i, v := range mine.Vertices {
		verts[i] = mgl32.Vec3{float32(v.X.Float()), float32(v.Y.Float()), float32(v.Z.Float())}
	}

	centroids := make([]mgl32.Vec3, 0, len(mine.Segments))
	for si := range mine.Segments {
		seg := &mine.Segments[si]
		corners := make([]mgl32.Vec3, 0, len(seg.Verts))
		for _, vi := range seg.Verts {
			if int(vi) < 0 || int(vi) >= len(verts) {
				return nil, format.Errorf("classic", "segment %d: vertex %d out of range", si, vi)
			}
			corners = append(corners, verts[vi])
		}
		centroids = append(centroids, meanOf(corners))
	}
	center := meanOf(centroids)

	m := &Mesh{Positions: make([]mgl32.Vec3, len(verts))}
	for i, v := range verts {
		m.Positions[i] = toExport(v, center)
	}

	var mats materialSet
	for si := range mine.Segments {
		seg := &mine.Segments[si]
		for side := 0; side < classic.NumSides; side++ {
			if !seg.HasSide(side) {
				continue
			}
			s := &seg.Sides[side]
			tmap := int(s.TMap)
			mat := mats.index(tmap, func() string {
				if names != nil {
					if n, ok := names.TextureName(tmap); ok {
						return n
					}
				}
				return fmt.Sprintf("tmap%d", tmap)
			})

			t0 := len(m.UVs)
			for _, uvl := range s.UVLs {
				m.UVs = append(m.UVs, mgl32.Vec2{float32(uvl.U.Float()), -float32(uvl.V.Float())})
			}
			// Corners in reverse for the mirrored x axis.
			var quad [4]Corner
			for j := 0; j < 4; j++ {
				quad[3-j] = Corner{V: int(seg.Verts[classic.SideVerts[side][j]]), T: t0 + j}
			}
			for _, tri := range splitQuad(quad, m.Positions) {
				m.Faces = append(m.Faces, Face{Material: mat, Corners: tri})
			}
		}
	}
	mats.finish(m)
	return m, nil
}

// splitQuad triangulates a quad across its shorter diagonal, keeping the
// winding.
func splitQuad(q [4]Corner, pos []mgl32.Vec3) [2][]Corner {
	d02 := pos[q[0].V].Sub(pos[q[2].V]).Len()
	d13 := pos[q[1].V].Sub(pos[q[3].V]).Len()
	if d02 <= d13 {
		return [2][]Corner{{q[0], q[1], q[2]}, {q[0], q[2], q[3]}}
	}
	return [2][]Corner{{q[1], q[2], q[3]}, {q[1], q[3], q[0]}}
}

// FromD3 builds a mesh from a room level. Faces keep their polygons.
// Missing rooms and faces with fewer than three vertices are skipped.
func FromD3(lvl *d3level.Level) (*Mesh, error) {
	var centroids []mgl32.Vec3
	for _, rm := range lvl.Rooms {
		if rm != nil && len(rm.Verts) > 0 {
			centroids = append(centroids, rm.Centroid())
		}
	}
	center := meanOf(centroids)

	m := &Mesh{}
	var mats materialSet
	for ri, rm := range lvl.Rooms {
		if rm == nil {
			continue
		}
		base := len(m.Positions)
		for _, v := range rm.Verts {
			m.Positions = append(m.Positions, toExport(v, center))
		}
		for fi := range rm.Faces {
			f := &rm.Faces[fi]
			n := len(f.Verts)
			if n < 3 {
				continue
			}
			tex := int(f.Texture)
			mat := mats.index(tex, func() string {
				if tex >= 0 && tex < len(lvl.Textures) {
					return lvl.Textures[tex]
				}
				return fmt.Sprintf("texture%d", tex)
			})
			t0 := len(m.UVs)
			for _, uv := range f.UVLs {
				m.UVs = append(m.UVs, mgl32.Vec2{uv.U, -uv.V})
			}
			corners := make([]Corner, 0, n)
			for i := n - 1; i >= 0; i-- {
				vi := int(f.Verts[i])
				if vi < 0 || vi >= len(rm.Verts) {
					return nil, format.Errorf("d3level", "room %d face %d: vertex %d out of range", ri, fi, vi)
				}
				corners = append(corners, Corner{V: base + vi, T: t0 + i})
			}
			m.Faces = append(m.Faces, Face{Material: mat, Corners: corners})
		}
	}
	mats.finish(m)
	return m, nil
}

// FromBytes decodes a level file of either format and builds its mesh.
func FromBytes(data []byte, names TextureNamer) (*Mesh, error) {
	switch {
	case bytes.HasPrefix(data, []byte("D3LV")):
		lvl, err := d3level.DecodeBytes(data)
		if err != nil {
			return nil, err
		}
		return FromD3(lvl)
	case bytes.HasPrefix(data, []byte("LVLP")):
		lvl, err := classic.DecodeBytes(data)
		if err != nil {
			return nil, err
		}
		return FromClassic(lvl.Mine, names)
	}
	return nil, format.Wrap("objexport", format.ErrBadMagic, "not a level file")
}
