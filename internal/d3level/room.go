package d3level

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
	"des-level-obj/internal/rle"
)

const (
	opaque = 255

	// A light multiple of 186 is a known bad value in shipped levels.
	badLightMultiple     = 186
	defaultLightMultiple = 4

	maxVolumeCells = 1 << 24
)

var roomHeader = fields[Room]{
	{name: "name", versions: since(96), read: func(r *binio.Reader, rm *Room) { rm.Name = r.CString() }},
	{name: "path point", versions: since(63), read: func(r *binio.Reader, rm *Room) { rm.PathPoint = r.Vec3() }},
}

var vertexExtras = fields[mgl32.Vec3]{
	{name: "vertex light", versions: between(52, 67), read: skip[mgl32.Vec3](2)},
	{name: "vertex normal", versions: between(68, 70), read: skip[mgl32.Vec3](12 + 2)},
}

// onDoor limits a read to rooms flagged as doors.
func onDoor(read func(*binio.Reader, *Room)) func(*binio.Reader, *Room) {
	return func(r *binio.Reader, rm *Room) {
		if rm.Flags&format.RoomDoor != 0 {
			read(r, rm)
		}
	}
}

// The door sub-record is consumed but not kept.
var roomTrailer = fields[Room]{
	{name: "flags", versions: always, read: func(r *binio.Reader, rm *Room) { rm.Flags = r.U32() }},
	{name: "old static light", versions: before(29), read: skip[Room](4)},
	{name: "pulse", versions: since(68), read: func(r *binio.Reader, rm *Room) {
		rm.PulseTime = r.U8()
		rm.PulseOffset = r.U8()
	}},
	{name: "mirror face", versions: since(79),
		read:   func(r *binio.Reader, rm *Room) { rm.MirrorFace = r.I16() },
		absent: func(rm *Room) { rm.MirrorFace = -1 }},
	{name: "door link", versions: between(33, 105), read: onDoor(skip[Room](4))},
	{name: "door flags", versions: since(33), read: onDoor(skip[Room](1))},
	{name: "door keys", versions: since(36), read: onDoor(skip[Room](1))},
	{name: "door number", versions: since(28), read: onDoor(skip[Room](4))},
	{name: "door position", versions: since(106), read: onDoor(skip[Room](4))},
	{name: "old door position", versions: between(28, 105), read: onDoor(skip[Room](3 * 4))},
	{name: "volume lights", versions: since(67), read: readVolumeLights},
	{name: "fog", versions: since(73), read: func(r *binio.Reader, rm *Room) {
		rm.Fog.Depth = r.F32()
		rm.Fog.Color = r.Vec3()
	}},
	{name: "ambient sound", versions: since(78), read: func(r *binio.Reader, rm *Room) { rm.AmbientSound = r.CString() }},
	{name: "reverb", versions: since(98), read: func(r *binio.Reader, rm *Room) { rm.Reverb = r.U8() }},
	{name: "damage", versions: since(108), read: func(r *binio.Reader, rm *Room) {
		rm.Damage = r.F32()
		rm.DamageType = r.U8()
	}},
}

func readVolumeLights(r *binio.Reader, rm *Room) {
	if r.U8() != 1 {
		return
	}
	w, h, d := r.I32(), r.I32(), r.I32()
	if r.Err() != nil {
		return
	}
	total := int64(w) * int64(h) * int64(d)
	if w < 0 || h < 0 || d < 0 || total > maxVolumeCells {
		r.Fail(format.Errorf("d3level", "volume light grid %dx%dx%d", w, h, d))
		return
	}
	vl := &VolumeLights{Width: w, Height: h, Depth: d}
	if total > 0 {
		if r.U8() == 0 {
			vl.Cells = r.Bytes(int(total))
		} else {
			cells, err := rle.Decode(r, int(total), rle.U8)
			if err != nil {
				r.Fail(err)
				return
			}
			vl.Cells = cells
		}
	}
	rm.VolumeLights = vl
}

var uvlFields = fields[UVL]{
	{name: "uv", versions: always, read: func(r *binio.Reader, u *UVL) {
		u.U = r.F32()
		u.V = r.F32()
	}},
	{name: "old lrgb", versions: before(56), read: skip[UVL](4 * 4)},
	{name: "alpha", versions: between(21, 60), read: func(r *binio.Reader, u *UVL) { u.Alpha = uint8(int32(r.F32() * 255)) }},
	{name: "alpha", versions: since(61), read: func(r *binio.Reader, u *UVL) { u.Alpha = r.U8() }},
}

// faceState carries what the face layout needs beyond the Face itself.
type faceState struct {
	Face
	lightmap bool // lightmap block stored after the texture index
}

func (s *faceState) hasAlpha() bool {
	for _, u := range s.UVLs {
		if u.Alpha != opaque {
			return true
		}
	}
	return false
}

func onLightmap(read func(*binio.Reader, *faceState)) func(*binio.Reader, *faceState) {
	return func(r *binio.Reader, s *faceState) {
		if s.lightmap {
			read(r, s)
		}
	}
}

var faceFields = fields[faceState]{
	{name: "flags", versions: before(27), read: func(r *binio.Reader, s *faceState) { s.Flags = uint16(r.U8()) }},
	{name: "flags", versions: since(27), read: func(r *binio.Reader, s *faceState) { s.Flags = r.U16() }},
	{name: "old portal trigger", versions: before(103), read: func(_ *binio.Reader, s *faceState) {
		s.Flags &^= format.FaceOldPortalTrig
	}},
	{name: "vertex alpha", versions: always, read: func(_ *binio.Reader, s *faceState) {
		if s.hasAlpha() {
			s.Flags |= format.FaceVertexAlpha
		} else {
			s.Flags &^= format.FaceVertexAlpha
		}
	}},
	{name: "portal", versions: before(23), read: func(r *binio.Reader, s *faceState) { s.PortalNum = r.I16() }},
	{name: "portal", versions: since(23), read: func(r *binio.Reader, s *faceState) { s.PortalNum = int16(r.U8()) }},
	{name: "texture", versions: always, read: func(r *binio.Reader, s *faceState) { s.Texture = r.I16() }},
	{name: "lightmap", versions: since(19), read: func(_ *binio.Reader, s *faceState) {
		s.lightmap = s.Flags&format.FaceLightmap != 0
	}},
	{name: "old lightmap", versions: between(19, 29), read: onLightmap(func(r *binio.Reader, s *faceState) {
		w, h := int64(r.U8()), int64(r.U8())
		r.Skip(w * h * 2)
		s.Flags &^= format.FaceLightmap
	})},
	{name: "lightmap handle", versions: since(30), read: onLightmap(func(r *binio.Reader, s *faceState) {
		s.LightmapHandle = r.U16()
	})},
	{name: "lightmap padding", versions: between(30, 88), read: onLightmap(skip[faceState](4))},
	{name: "lightmap uvs", versions: since(19), read: onLightmap(func(r *binio.Reader, s *faceState) {
		for i := range s.UVLs {
			s.UVLs[i].U2 = mgl32.Clamp(r.F32(), 0, 1)
			s.UVLs[i].V2 = mgl32.Clamp(r.F32(), 0, 1)
		}
	})},
	{name: "old normal", versions: between(22, 29), read: skip[faceState](12)},
	{name: "shadow face", versions: between(40, 60), read: skip[faceState](2 * 2)},
	{name: "light multiple", versions: since(50),
		read: func(r *binio.Reader, s *faceState) {
			s.LightMultiple = r.U8()
			if s.LightMultiple == badLightMultiple {
				s.LightMultiple = defaultLightMultiple
			}
		},
		absent: func(s *faceState) { s.LightMultiple = defaultLightMultiple }},
	{name: "light multiple scale", versions: between(50, 52), read: func(_ *binio.Reader, s *faceState) {
		s.LightMultiple *= 4
	}},
	{name: "old specular", versions: between(71, 76), read: func(r *binio.Reader, _ *faceState) {
		if r.U8() != 0 {
			r.Skip(1 + 12 + 2)
		}
	}},
	{name: "specular", versions: between(77, 116), read: skipSpecular(false)},
	{name: "specular", versions: since(117), read: skipSpecular(true)},
}

func skipSpecular(smoothable bool) func(*binio.Reader, *faceState) {
	return func(r *binio.Reader, _ *faceState) {
		if r.U8() == 0 {
			return
		}
		r.U8() // type
		num := int64(r.U8())
		var smoothVerts int64
		if smoothable && r.U8() != 0 {
			smoothVerts = int64(r.U8())
		}
		r.Skip(num * (12 + 2))
		r.Skip(smoothVerts * 12)
	}
}

var portalFields = fields[Portal]{
	{name: "flags", versions: always, read: func(r *binio.Reader, p *Portal) { p.Flags = r.U32() }},
	{name: "old trigger", versions: before(103), read: func(_ *binio.Reader, p *Portal) {
		p.Flags &^= format.PortalOldHasTrigger
	}},
	{name: "old geometry", versions: before(80), read: func(r *binio.Reader, _ *Portal) {
		if n := int64(r.I16()); n > 0 {
			r.Skip(n * 2)
		}
		r.I16() // face count
	}},
	{name: "face", versions: always, read: func(r *binio.Reader, p *Portal) { p.Face = r.I16() }},
	{name: "connection", versions: always, read: func(r *binio.Reader, p *Portal) {
		p.Room = r.I32()
		p.Portal = r.I32()
	}},
	{name: "node", versions: since(123),
		read:   func(r *binio.Reader, p *Portal) { p.Node = r.I16() },
		absent: func(p *Portal) { p.Node = -1 }},
	{name: "path point", versions: since(63), read: func(r *binio.Reader, p *Portal) { p.PathPoint = r.Vec3() }},
	{name: "combine master", versions: since(100), read: func(r *binio.Reader, p *Portal) { p.CombineMaster = r.I32() }},
}

// DecodeFace reads one face record of the given file version.
func DecodeFace(r *binio.Reader, version int32) (Face, error) {
	n := int(r.U8())
	s := faceState{Face: Face{Verts: make([]int16, n), UVLs: make([]UVL, n)}}
	for i := range s.Verts {
		s.Verts[i] = r.I16()
	}
	if err := r.Err(); err != nil {
		return Face{}, fmt.Errorf("vertices: %w", err)
	}
	for i := range s.UVLs {
		s.UVLs[i].Alpha = opaque
		if err := uvlFields.decode(r, version, &s.UVLs[i]); err != nil {
			return Face{}, fmt.Errorf("uvl %d: %w", i, err)
		}
	}
	if err := faceFields.decode(r, version, &s); err != nil {
		return Face{}, err
	}
	return s.Face, nil
}

// DecodePortal reads one portal record of the given file version.
func DecodePortal(r *binio.Reader, version int32) (Portal, error) {
	var p Portal
	err := portalFields.decode(r, version, &p)
	return p, err
}

// DecodeRoom reads one room record of the given file version.
func DecodeRoom(r *binio.Reader, version int32) (*Room, error) {
	nverts, nfaces, nportals := r.I32(), r.I32(), r.I32()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	// Every vertex, face and portal takes at least 12, 3 and 10 bytes.
	if nverts < 0 || nfaces < 0 || nportals < 0 ||
		int64(nverts)*12+int64(nfaces)*3+int64(nportals)*10 > r.Remaining() {
		return nil, format.Errorf("d3level", "room counts %d/%d/%d exceed data", nverts, nfaces, nportals)
	}

	rm := &Room{}
	if err := roomHeader.decode(r, version, rm); err != nil {
		return nil, err
	}
	rm.Verts = make([]mgl32.Vec3, nverts)
	for i := range rm.Verts {
		rm.Verts[i] = r.Vec3()
		if err := vertexExtras.decode(r, version, &rm.Verts[i]); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}
	rm.Faces = make([]Face, nfaces)
	for i := range rm.Faces {
		f, err := DecodeFace(r, version)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		rm.Faces[i] = f
	}
	rm.Portals = make([]Portal, nportals)
	for i := range rm.Portals {
		p, err := DecodePortal(r, version)
		if err != nil {
			return nil, fmt.Errorf("portal %d: %w", i, err)
		}
		rm.Portals[i] = p
	}
	if err := roomTrailer.decode(r, version, rm); err != nil {
		return nil, err
	}
	return rm, nil
}
