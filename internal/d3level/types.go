package d3level

import "github.com/go-gl/mathgl/mgl32"

// Level is a decoded room-based level. Rooms is indexed by room number;
// numbers the file never stored leave nil slots.
type Level struct {
	Version  int32
	Textures []string
	Rooms    []*Room
}

// Room is a convex cell with its own vertex pool.
type Room struct {
	Name        string
	PathPoint   mgl32.Vec3
	Flags       uint32
	PulseTime   uint8
	PulseOffset uint8
	MirrorFace  int16

	Verts   []mgl32.Vec3
	Faces   []Face
	Portals []Portal

	// Decoded for completeness; the exporter does not use them.
	VolumeLights *VolumeLights
	Fog          Fog
	AmbientSound string
	Reverb       uint8
	Damage       float32
	DamageType   uint8
}

// Centroid returns the mean of the room's vertices.
func (rm *Room) Centroid() mgl32.Vec3 {
	var c mgl32.Vec3
	if len(rm.Verts) == 0 {
		return c
	}
	for _, v := range rm.Verts {
		c = c.Add(v)
	}
	return c.Mul(1 / float32(len(rm.Verts)))
}

// Fog holds the room fog parameters.
type Fog struct {
	Depth float32
	Color mgl32.Vec3
}

// VolumeLights is a width*height*depth grid of light samples.
type VolumeLights struct {
	Width, Height, Depth int32
	Cells                []byte
}

// UVL is the per-vertex texture data of a face.
type UVL struct {
	U, V   float32
	U2, V2 float32 // lightmap coordinates, within [0,1]
	Alpha  uint8
}

// Face is a polygon of a room. Verts index the room's vertex pool and
// Texture indexes Level.Textures.
type Face struct {
	Verts          []int16
	UVLs           []UVL
	Flags          uint16
	PortalNum      int16
	Texture        int16
	LightmapHandle uint16
	LightMultiple  uint8
}

// Portal connects a face of a room to a portal of another room.
type Portal struct {
	Flags         uint32
	Face          int16
	Room          int32
	Portal        int32
	Node          int16
	PathPoint     mgl32.Vec3
	CombineMaster int32
}
