package d3level

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

type writer struct{ bytes.Buffer }

func (w *writer) put(vs ...any) {
	for _, v := range vs {
		binary.Write(&w.Buffer, binary.LittleEndian, v)
	}
}

func (w *writer) cstring(s string) {
	w.WriteString(s)
	w.WriteByte(0)
}

// The encoders below follow the on-disk layout as plain version checks so
// the field tables are tested against an independent rendition.

func (w *writer) face(v int32) {
	w.put(uint8(3), []int16{0, 1, 2})
	uvs := [][2]float32{{0, 0}, {1, 0}, {0, 1}}
	alphas := []uint8{255, 0, 255}
	for i := range uvs {
		w.put(uvs[i])
		if v < 56 {
			w.put([4]float32{})
		}
		if v >= 21 {
			if v < 61 {
				w.put(float32(alphas[i]) / 255)
			} else {
				w.put(alphas[i])
			}
		}
	}
	flags := uint16(format.FaceLightmap | format.FaceOldPortalTrig)
	if v < 27 {
		w.put(uint8(flags))
	} else {
		w.put(flags)
	}
	if v >= 23 {
		w.put(uint8(1))
	} else {
		w.put(int16(1))
	}
	w.put(int16(5))
	if v >= 19 {
		if v <= 29 {
			w.put(uint8(2), uint8(3), make([]int16, 6))
		} else {
			w.put(uint16(77))
			if v <= 88 {
				w.put([4]byte{})
			}
		}
		for range 3 {
			w.put(float32(-0.5), float32(1.5))
		}
	}
	if v >= 22 && v <= 29 {
		w.put([3]float32{})
	}
	if v >= 40 && v <= 60 {
		w.put(int16(0), int16(0))
	}
	if v >= 50 {
		w.put(uint8(2))
	}
	if v >= 71 {
		w.put(uint8(1))
		if v < 77 {
			w.put(uint8(0), [3]float32{}, int16(0))
		} else {
			w.put(uint8(1), uint8(2))
			if v >= 117 {
				w.put(uint8(1), uint8(2))
			}
			for range 2 {
				w.put([3]float32{}, uint16(0))
			}
			if v >= 117 {
				for range 2 {
					w.put([3]float32{})
				}
			}
		}
	}
}

func (w *writer) portal(v int32) {
	w.put(uint32(5))
	if v < 80 {
		w.put(int16(2), int16(0), int16(1), int16(1))
	}
	w.put(int16(0), int32(1), int32(0))
	if v >= 123 {
		w.put(int16(9))
	}
	if v >= 63 {
		w.put([3]float32{1, 2, 3})
	}
	if v >= 100 {
		w.put(int32(3))
	}
}

var testVerts = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (w *writer) room(v int32) {
	w.put(int32(len(testVerts)), int32(1), int32(1))
	if v >= 96 {
		w.cstring("lobby")
	}
	if v >= 63 {
		w.put([3]float32{4, 5, 6})
	}
	for _, p := range testVerts {
		w.put([3]float32(p))
		if v >= 52 && v <= 67 {
			w.put(int16(0))
		} else if v >= 68 && v <= 70 {
			w.put([3]float32{}, int16(0))
		}
	}
	w.face(v)
	w.portal(v)
	w.put(uint32(format.RoomDoor | format.RoomFog))
	if v < 29 {
		w.put(float32(0))
	}
	if v >= 68 {
		w.put(uint8(10), uint8(20))
	}
	if v >= 79 {
		w.put(int16(2))
	}
	if v >= 28 && v <= 32 {
		w.put(int32(7))
	} else if v >= 33 {
		if v < 106 {
			w.put(int32(0))
		}
		w.put(uint8(0))
		if v >= 36 {
			w.put(uint8(0))
		}
		w.put(int32(7))
		if v >= 106 {
			w.put(float32(0))
		}
	}
	if v >= 28 && v < 106 {
		w.put([3]float32{})
	}
	if v >= 67 {
		w.put(uint8(1), int32(2), int32(2), int32(1))
		w.put(uint8(1), uint8(3), uint8(7), uint8(0), uint8(9))
	}
	if v >= 73 {
		w.put(float32(0.5), [3]float32{1, 0, 0})
	}
	if v >= 78 {
		w.cstring("drip")
	}
	if v >= 98 {
		w.put(uint8(4))
	}
	if v >= 108 {
		w.put(float32(2.5), uint8(1))
	}
}

func expectRoom(v int32) *Room {
	f := Face{
		Verts:         []int16{0, 1, 2},
		UVLs:          []UVL{{U: 0, V: 0, Alpha: 255}, {U: 1, V: 0, Alpha: 255}, {U: 0, V: 1, Alpha: 255}},
		Flags:         format.FaceLightmap | format.FaceOldPortalTrig,
		PortalNum:     1,
		Texture:       5,
		LightMultiple: 4,
	}
	if v < 103 {
		f.Flags &^= format.FaceOldPortalTrig
	}
	if v >= 21 {
		f.UVLs[1].Alpha = 0
		f.Flags |= format.FaceVertexAlpha
	}
	if v >= 19 {
		for i := range f.UVLs {
			f.UVLs[i].U2, f.UVLs[i].V2 = 0, 1
		}
		if v <= 29 {
			f.Flags &^= format.FaceLightmap
		} else {
			f.LightmapHandle = 77
		}
	}
	if v >= 50 {
		f.LightMultiple = 2
		if v <= 52 {
			f.LightMultiple = 8
		}
	}

	p := Portal{Flags: 5, Room: 1, Node: -1}
	if v < 103 {
		p.Flags = 1
	}
	if v >= 123 {
		p.Node = 9
	}
	if v >= 63 {
		p.PathPoint = mgl32.Vec3{1, 2, 3}
	}
	if v >= 100 {
		p.CombineMaster = 3
	}

	rm := &Room{
		Flags:      format.RoomDoor | format.RoomFog,
		MirrorFace: -1,
		Verts:      testVerts,
		Faces:      []Face{f},
		Portals:    []Portal{p},
	}
	if v >= 96 {
		rm.Name = "lobby"
	}
	if v >= 63 {
		rm.PathPoint = mgl32.Vec3{4, 5, 6}
	}
	if v >= 68 {
		rm.PulseTime, rm.PulseOffset = 10, 20
	}
	if v >= 79 {
		rm.MirrorFace = 2
	}
	if v >= 67 {
		rm.VolumeLights = &VolumeLights{Width: 2, Height: 2, Depth: 1, Cells: []byte{7, 7, 7, 9}}
	}
	if v >= 73 {
		rm.Fog = Fog{Depth: 0.5, Color: mgl32.Vec3{1, 0, 0}}
	}
	if v >= 78 {
		rm.AmbientSound = "drip"
	}
	if v >= 98 {
		rm.Reverb = 4
	}
	if v >= 108 {
		rm.Damage, rm.DamageType = 2.5, 1
	}
	return rm
}

func decodeRoomAt(t *testing.T, v int32) *Room {
	t.Helper()
	var w writer
	w.room(v)
	r := binio.FromBytes(w.Bytes())
	rm, err := DecodeRoom(r, v)
	if err != nil {
		t.Fatalf("version %d: %v", v, err)
	}
	if n := r.Remaining(); n != 0 {
		t.Fatalf("version %d: %d bytes left after room", v, n)
	}
	return rm
}

func TestRoomEveryVersion(t *testing.T) {
	for v := int32(format.LevelOldestVersion); v <= format.LevelNewestVersion; v++ {
		got := decodeRoomAt(t, v)
		if want := expectRoom(v); !reflect.DeepEqual(got, want) {
			t.Errorf("version %d:\n got %+v\nwant %+v", v, got, want)
		}
	}
}

func TestVersionGates(t *testing.T) {
	gates := []struct {
		name    string
		since   int32
		present func(*Room) bool
	}{
		{"room name", 96, func(r *Room) bool { return r.Name != "" }},
		{"room path point", 63, func(r *Room) bool { return r.PathPoint != mgl32.Vec3{} }},
		{"pulse", 68, func(r *Room) bool { return r.PulseTime != 0 }},
		{"mirror face", 79, func(r *Room) bool { return r.MirrorFace != -1 }},
		{"volume lights", 67, func(r *Room) bool { return r.VolumeLights != nil }},
		{"fog", 73, func(r *Room) bool { return r.Fog.Depth != 0 }},
		{"ambient sound", 78, func(r *Room) bool { return r.AmbientSound != "" }},
		{"reverb", 98, func(r *Room) bool { return r.Reverb != 0 }},
		{"damage", 108, func(r *Room) bool { return r.Damage != 0 }},
		{"vertex alpha", 21, func(r *Room) bool { return r.Faces[0].UVLs[1].Alpha != 255 }},
		{"vertex alpha flag", 21, func(r *Room) bool { return r.Faces[0].Flags&format.FaceVertexAlpha != 0 }},
		{"lightmap uvs", 19, func(r *Room) bool { return r.Faces[0].UVLs[0].V2 == 1 }},
		{"lightmap handle", 30, func(r *Room) bool { return r.Faces[0].LightmapHandle != 0 }},
		{"light multiple", 50, func(r *Room) bool { return r.Faces[0].LightMultiple != 4 }},
		{"face trigger flag kept", 103, func(r *Room) bool { return r.Faces[0].Flags&format.FaceOldPortalTrig != 0 }},
		{"portal trigger flag kept", 103, func(r *Room) bool { return r.Portals[0].Flags&format.PortalOldHasTrigger != 0 }},
		{"portal node", 123, func(r *Room) bool { return r.Portals[0].Node != -1 }},
		{"portal path point", 63, func(r *Room) bool { return r.Portals[0].PathPoint != mgl32.Vec3{} }},
		{"combine master", 100, func(r *Room) bool { return r.Portals[0].CombineMaster != 0 }},
	}
	for _, g := range gates {
		if g.present(decodeRoomAt(t, g.since-1)) {
			t.Errorf("%s present at version %d", g.name, g.since-1)
		}
		if !g.present(decodeRoomAt(t, g.since)) {
			t.Errorf("%s absent at version %d", g.name, g.since)
		}
	}
}

func TestLightMultipleSentinel(t *testing.T) {
	// empty face: count, flags, portal, texture, shadow face, light multiple
	data := []byte{0, 0, 0, 0, 5, 0, 0, 0, 0, 0, 186}
	for _, tt := range []struct {
		version int32
		want    uint8
	}{
		{50, 16},
		{53, 4},
	} {
		f, err := DecodeFace(binio.FromBytes(data), tt.version)
		if err != nil {
			t.Fatal(err)
		}
		if f.LightMultiple != tt.want || f.Texture != 5 {
			t.Errorf("version %d: light multiple %d texture %d, want %d and 5", tt.version, f.LightMultiple, f.Texture, tt.want)
		}
	}
}

func TestVolumeLights(t *testing.T) {
	var raw writer
	raw.put(uint8(1), int32(3), int32(1), int32(1), uint8(0), []byte{1, 2, 3})
	var rm Room
	r := binio.FromBytes(raw.Bytes())
	readVolumeLights(r, &rm)
	if r.Err() != nil || rm.VolumeLights == nil || !bytes.Equal(rm.VolumeLights.Cells, []byte{1, 2, 3}) {
		t.Errorf("raw volume lights = %+v, err %v", rm.VolumeLights, r.Err())
	}

	var bad writer
	bad.put(uint8(1), int32(3), int32(1), int32(1), uint8(1), uint8(251), uint8(0))
	r = binio.FromBytes(bad.Bytes())
	readVolumeLights(r, &Room{})
	var fe *format.FormatError
	if !errors.As(r.Err(), &fe) {
		t.Errorf("bad run err = %v, want FormatError", r.Err())
	}

	var empty writer
	empty.put(uint8(1), int32(0), int32(4), int32(4))
	rm = Room{}
	r = binio.FromBytes(empty.Bytes())
	readVolumeLights(r, &rm)
	if r.Remaining() != 0 || rm.VolumeLights == nil || rm.VolumeLights.Cells != nil {
		t.Errorf("empty grid = %+v, %d bytes left", rm.VolumeLights, r.Remaining())
	}
}

func chunk(tag string, payload []byte) []byte {
	var w writer
	w.put(format.Tag(tag), int32(len(payload)+4))
	w.Write(payload)
	return w.Bytes()
}

func levelFile(version int32, chunks ...[]byte) []byte {
	var w writer
	w.put(format.LevelFileTag, version)
	for _, c := range chunks {
		w.Write(c)
	}
	return w.Bytes()
}

func textureChunk(names ...string) []byte {
	var w writer
	w.put(int32(len(names)))
	for _, n := range names {
		w.cstring(n)
	}
	return chunk("TXNM", w.Bytes())
}

func roomChunk(v int32, nums ...int16) []byte {
	var w writer
	w.put(int32(len(nums)))
	if v >= 85 {
		w.put([4]int32{})
	}
	for _, n := range nums {
		if v >= 96 {
			w.put(n)
		}
		w.room(v)
	}
	return chunk("ROOM", w.Bytes())
}

func TestChunkSkip(t *testing.T) {
	for _, v := range []int32{60, 95, 132} {
		plain := levelFile(v, textureChunk("Rock", "Lava"), roomChunk(v, 0, 1))
		noisy := levelFile(v,
			chunk("TERR", []byte("terrain bytes")),
			textureChunk("Rock", "Lava"),
			chunk("XXXX", nil),
			roomChunk(v, 0, 1),
			chunk("OBJS", make([]byte, 37)),
		)
		want, err := DecodeBytes(plain)
		if err != nil {
			t.Fatalf("version %d: %v", v, err)
		}
		got, err := DecodeBytes(noisy)
		if err != nil {
			t.Fatalf("version %d with extra chunks: %v", v, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("version %d: extra chunks changed the result", v)
		}
		if len(want.Rooms) != 2 || want.Textures[1] != "Lava" {
			t.Errorf("version %d: %d rooms, textures %q", v, len(want.Rooms), want.Textures)
		}
	}
}

func TestShortChunkRead(t *testing.T) {
	// A recognized chunk with trailing bytes the decoder does not read.
	payload := append(textureChunk("Rock")[8:], 1, 2, 3, 4)
	lvl, err := DecodeBytes(levelFile(132, chunk("TXNM", payload), roomChunk(132, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if len(lvl.Textures) != 1 || len(lvl.Rooms) != 1 {
		t.Errorf("textures %q, %d rooms", lvl.Textures, len(lvl.Rooms))
	}
}

func TestRoomSlots(t *testing.T) {
	lvl, err := DecodeBytes(levelFile(132, roomChunk(132, 3, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if len(lvl.Rooms) != 4 {
		t.Fatalf("len(Rooms) = %d, want 4", len(lvl.Rooms))
	}
	for i, rm := range lvl.Rooms {
		if (rm != nil) != (i == 0 || i == 3) {
			t.Errorf("Rooms[%d] = %v", i, rm)
		}
	}
}

func TestRejectHeader(t *testing.T) {
	badTag := levelFile(132)
	badTag[0] = 'X'
	for _, tt := range []struct {
		name string
		data []byte
		want error
	}{
		{"tag", badTag, format.ErrBadMagic},
		{"too old", levelFile(format.LevelOldestVersion - 1), format.ErrUnsupportedVersion},
		{"too new", levelFile(format.LevelNewestVersion + 1), format.ErrUnsupportedVersion},
	} {
		lvl, err := DecodeBytes(tt.data)
		var fe *format.FormatError
		if lvl != nil || !errors.As(err, &fe) || !errors.Is(err, tt.want) {
			t.Errorf("%s: level %v, err %v", tt.name, lvl, err)
		}
	}
	for _, v := range []int32{format.LevelOldestVersion, format.LevelNewestVersion} {
		if _, err := DecodeBytes(levelFile(v)); err != nil {
			t.Errorf("version %d: %v", v, err)
		}
	}
}

func TestBadChunkLength(t *testing.T) {
	var w writer
	w.put(format.Tag("TERR"), int32(3))
	_, err := DecodeBytes(levelFile(132, w.Bytes()))
	var fe *format.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want FormatError", err)
	}

	w.Reset()
	w.put(format.Tag("TERR"), int32(100))
	if _, err := DecodeBytes(levelFile(132, w.Bytes())); err == nil {
		t.Error("chunk past end of file decoded")
	}
}

func TestChunks(t *testing.T) {
	data := levelFile(120, textureChunk("Rock"), chunk("XXXX", nil))
	v, chunks, err := Chunks(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if v != 120 || len(chunks) != 2 {
		t.Fatalf("version %d, %d chunks", v, len(chunks))
	}
	if chunks[0].Name() != "TXNM" || chunks[0].Offset != 8 || chunks[1].Size != 4 {
		t.Errorf("chunks = %+v", chunks)
	}
}

func TestCentroid(t *testing.T) {
	rm := Room{Verts: testVerts}
	if c := rm.Centroid(); !c.ApproxEqual(mgl32.Vec3{0.25, 0.25, 0.25}) {
		t.Errorf("Centroid() = %v", c)
	}
	if c := (&Room{}).Centroid(); c != (mgl32.Vec3{}) {
		t.Errorf("empty Centroid() = %v", c)
	}
}
