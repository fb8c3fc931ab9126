package classic

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

type writer struct{ bytes.Buffer }

func (w *writer) put(vs ...any) {
	for _, v := range vs {
		binary.Write(&w.Buffer, binary.LittleEndian, v)
	}
}

type testSide struct {
	tmap  uint16
	tmap2 uint16
	uvl   [4][3]int16
}

type testSegment struct {
	children [NumSides]int16 // -1 leaves the mask bit clear
	verts    [8]int16
	special  bool
	light    uint16
	walls    [NumSides]int // -1 leaves the wall mask bit clear
	sides    [NumSides]testSide
}

func openSegment(verts [8]int16) testSegment {
	s := testSegment{verts: verts}
	for i := range s.children {
		s.children[i] = -1
		s.walls[i] = -1
	}
	return s
}

func (w *writer) segment(s testSegment) {
	var mask uint8
	for i, c := range s.children {
		if c != -1 {
			mask |= 1 << i
		}
	}
	if s.special {
		mask |= specialBit
	}
	w.put(mask)
	for _, c := range s.children {
		if c != -1 {
			w.put(c)
		}
	}
	w.put(s.verts)
	if s.special {
		w.put(uint8(3), int8(-2), int16(77))
	}
	w.put(s.light)
	var wallMask uint8
	for i, wn := range s.walls {
		if wn != -1 {
			wallMask |= 1 << i
		}
	}
	w.put(wallMask)
	for _, wn := range s.walls {
		if wn != -1 {
			w.put(uint8(wn))
		}
	}
	for i, side := range s.sides {
		hasWall := s.walls[i] != -1 && s.walls[i] != wallNone
		if s.children[i] != -1 && !hasWall {
			continue
		}
		w.put(side.tmap)
		if side.tmap&tmap2Flag != 0 {
			w.put(side.tmap2)
		}
		for _, c := range side.uvl {
			w.put(c[0], c[1], uint16(c[2]))
		}
	}
}

func buildLevel(verts [][3]int32, segs []testSegment, game []byte) []byte {
	var mine writer
	mine.put(uint8(0), int16(len(verts)), int16(len(segs)))
	for _, v := range verts {
		mine.put(v)
	}
	for _, s := range segs {
		mine.segment(s)
	}
	var w writer
	mineOffset := int32(20)
	gameOffset := int32(0)
	if game != nil {
		gameOffset = mineOffset + int32(mine.Len())
	}
	w.put(uint32(format.ClassicLevelTag), int32(1), mineOffset, gameOffset, int32(0))
	w.Write(mine.Bytes())
	w.Write(game)
	return w.Bytes()
}

func cube(base int16) [8]int16 {
	var v [8]int16
	for i := range v {
		v[i] = base + int16(i)
	}
	return v
}

func TestSegmentMasks(t *testing.T) {
	s := openSegment(cube(0))
	s.children[2] = 5
	s.children[4] = 9
	s.walls[2] = 255
	s.walls[4] = 12
	s.light = 0x1234
	s.sides[0] = testSide{tmap: 0x8000 | 42, tmap2: 7, uvl: [4][3]int16{{1, -2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}}}
	var w writer
	w.segment(s)
	w.put(uint32(0xdeadbeef))

	r := binio.FromBytes(w.Bytes())
	seg := DecodeSegment(r)
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if got := r.U32(); got != 0xdeadbeef {
		t.Fatalf("segment consumed wrong number of bytes, trailer = %#x", got)
	}
	wantChildren := [NumSides]int16{-1, -1, 5, -1, 9, -1}
	if seg.Children != wantChildren {
		t.Errorf("Children = %v, want %v", seg.Children, wantChildren)
	}
	if seg.Special != 0 || seg.MatcenNum != -1 || seg.Value != 0 {
		t.Errorf("special block = %d/%d/%d, want 0/-1/0", seg.Special, seg.MatcenNum, seg.Value)
	}
	if seg.StaticLight != 0x1234<<4 {
		t.Errorf("StaticLight = %#x, want %#x", int32(seg.StaticLight), 0x1234<<4)
	}
	if seg.Sides[2].WallNum != -1 {
		t.Errorf("wall 255 decoded as %d, want -1", seg.Sides[2].WallNum)
	}
	if seg.Sides[4].WallNum != 12 {
		t.Errorf("wall = %d, want 12", seg.Sides[4].WallNum)
	}
	if seg.HasSide(2) {
		t.Error("side 2 (neighbor, no wall) reported as present")
	}
	if !seg.HasSide(4) {
		t.Error("side 4 (wall on open connection) reported as absent")
	}
	side := seg.Sides[0]
	if side.TMap != 42 || side.TMap2 != 7 {
		t.Errorf("tmap = %d/%d, want 42/7", side.TMap, side.TMap2)
	}
	if side.UVLs[0].U != 1<<5 || side.UVLs[0].V != -2<<5 || side.UVLs[0].L != 3<<1 {
		t.Errorf("uvl[0] = %+v", side.UVLs[0])
	}
}

func TestSpecialBlock(t *testing.T) {
	s := openSegment(cube(0))
	s.special = true
	var w writer
	w.segment(s)
	r := binio.FromBytes(w.Bytes())
	seg := DecodeSegment(r)
	if r.Err() != nil || r.Remaining() != 0 {
		t.Fatalf("err=%v remaining=%d", r.Err(), r.Remaining())
	}
	if seg.Special != 3 || seg.MatcenNum != -2 || seg.Value != 77 {
		t.Errorf("special block = %d/%d/%d, want 3/-2/77", seg.Special, seg.MatcenNum, seg.Value)
	}
}

func TestFixedPointShifts(t *testing.T) {
	for _, l := range []uint16{0, 1, 0x7fff, 0xffff} {
		s := openSegment(cube(0))
		s.light = l
		for i := range s.sides {
			s.sides[i].uvl[1] = [3]int16{int16(l), -int16(l), int16(l)}
		}
		var w writer
		w.segment(s)
		seg := DecodeSegment(binio.FromBytes(w.Bytes()))
		if int32(seg.StaticLight) != int32(l)<<4 {
			t.Errorf("light %#x -> %#x, want %#x", l, int32(seg.StaticLight), int32(l)<<4)
		}
		uvl := seg.Sides[3].UVLs[1]
		if int32(uvl.U) != int32(int16(l))<<5 || int32(uvl.V) != int32(-int16(l))<<5 || int32(uvl.L) != int32(l)<<1 {
			t.Errorf("uvl %#x -> %+v", l, uvl)
		}
	}
}

func TestDecodeLevel(t *testing.T) {
	verts := make([][3]int32, 12)
	for i := range verts {
		verts[i] = [3]int32{int32(i) << 16, 0, -1 << 16}
	}
	a := openSegment(cube(0))
	a.children[4] = 1
	b := openSegment([8]int16{4, 5, 6, 7, 8, 9, 10, 11})
	b.children[5] = 0

	var game writer
	game.put(uint16(format.GameInfoSignature), uint16(19), int32(0))
	fixed := game.Len()
	var name [mineFilenameLen]byte
	copy(name[:], "level01.min")
	game.put(name, int32(1), int32(1), int32(-1), int32(0))
	for i := 0; i < 7; i++ {
		game.put(int32(-1), int32(0), int32(0))
	}
	size := game.Len()
	data := game.Bytes()
	binary.LittleEndian.PutUint32(data[fixed-4:], uint32(size))
	data = append(data, "Descent Lvl\x00"...)
	data = append(data, 1, 0)
	pof := make([]byte, pofNameLen)
	copy(pof, "robot09.pof")
	data = append(data, pof...)

	lvl, err := DecodeBytes(buildLevel(verts, []testSegment{a, b}, data))
	if err != nil {
		t.Fatal(err)
	}
	if len(lvl.Mine.Vertices) != 12 || len(lvl.Mine.Segments) != 2 {
		t.Fatalf("mine = %d verts %d segs", len(lvl.Mine.Vertices), len(lvl.Mine.Segments))
	}
	if v := lvl.Mine.Vertices[3]; v.X.Float() != 3 || v.Z.Float() != -1 {
		t.Errorf("vertex 3 = %v", v)
	}
	if lvl.Mine.Segments[1].Children[5] != 0 {
		t.Errorf("segment 1 children = %v", lvl.Mine.Segments[1].Children)
	}
	g := lvl.Game
	if g == nil {
		t.Fatal("no game info")
	}
	if g.MineFilename != "level01.min" || g.LevelName != "Descent Lvl" {
		t.Errorf("game info names = %q / %q", g.MineFilename, g.LevelName)
	}
	if len(g.PofNames) != 1 || g.PofNames[0] != "robot09.pof" {
		t.Errorf("PofNames = %q", g.PofNames)
	}
}

// objectSlot is the position of the object table offset in the game info.
const objectSlot = 8 + mineFilenameLen + 4 + 4 + 4 + 4

// gameInfo is a version 19 game info block without level name or models.
func gameInfo(objOffset, objCount int32) []byte {
	var game writer
	game.put(uint16(format.GameInfoSignature), uint16(19), int32(0))
	game.put([mineFilenameLen]byte{}, int32(1), int32(1), int32(-1), int32(0))
	game.put(objOffset, objCount, int32(32))
	for i := 0; i < 6; i++ {
		game.put(int32(-1), int32(0), int32(0))
	}
	data := game.Bytes()
	binary.LittleEndian.PutUint32(data[4:], uint32(len(data)))
	return append(data, 0, 0, 0)
}

func TestObjectTableOffset(t *testing.T) {
	verts := make([][3]int32, 20)
	seg := openSegment(cube(0))
	base := buildLevel(verts, []testSegment{seg}, gameInfo(-1, 0))
	tableAt := int32(len(base))
	table := make([]byte, 64)

	tests := []struct {
		name    string
		offset  int32
		wantErr bool
	}{
		{"after game data", tableAt, false},
		{"past end", tableAt + int32(len(table)) + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(buildLevel(verts, []testSegment{seg}, gameInfo(tt.offset, 2)), table...)
			if got := int32(binary.LittleEndian.Uint32(data[len(base)-len(gameInfo(0, 0))+objectSlot:])); got != tt.offset {
				t.Fatalf("object offset stored as %d", got)
			}
			lvl, err := DecodeBytes(data)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if n := len(lvl.Game.ObjectSlots); n != 2 {
				t.Errorf("got %d object slots, want 2", n)
			}
		})
	}
}

func TestHeaderErrors(t *testing.T) {
	good := buildLevel(nil, nil, nil)

	badTag := append([]byte{}, good...)
	badTag[0] = 'X'
	badVersion := append([]byte{}, good...)
	badVersion[4] = 2
	badMine := append([]byte{}, good...)
	badMine[20] = 1

	for _, tt := range []struct {
		name string
		data []byte
		want error
	}{
		{"tag", badTag, format.ErrBadMagic},
		{"version", badVersion, format.ErrUnsupportedVersion},
		{"mine version", badMine, format.ErrUnsupportedVersion},
	} {
		_, err := DecodeBytes(tt.data)
		var fe *format.FormatError
		if !errors.As(err, &fe) || !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want FormatError(%v)", tt.name, err, tt.want)
		}
	}
	if _, err := DecodeBytes(good); err != nil {
		t.Errorf("empty mine: %v", err)
	}
}

func TestBadGameSignature(t *testing.T) {
	var game writer
	game.put(uint16(0x1234), uint16(1), int32(0))
	_, err := DecodeBytes(buildLevel(nil, nil, game.Bytes()))
	if !errors.Is(err, format.ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}
