package classic

import "des-level-obj/internal/format"

// NumSides is the number of faces of a segment.
const NumSides = 6

// NoNeighbor marks a side without an adjacent segment, and a side without a
// wall.
const NoNeighbor = -1

// SideVerts lists, for each side, the four segment vertex slots of that face
// in order: left, top, right, bottom, back, front.
var SideVerts = [NumSides][4]int{
	{7, 6, 2, 3},
	{0, 4, 7, 3},
	{0, 1, 5, 4},
	{2, 6, 5, 1},
	{4, 5, 6, 7},
	{3, 2, 1, 0},
}

// Vector is a fixed-point position.
type Vector struct {
	X, Y, Z format.Fix
}

// UVL is one side corner: texture coordinates and light.
type UVL struct {
	U, V, L format.Fix
}

// Side is one face of a segment. TMap2 is zero unless the stored texture
// word carried the overlay bit.
type Side struct {
	WallNum int16
	TMap    int16
	TMap2   uint16
	UVLs    [4]UVL
}

// Segment is a hexahedral cell of the mine.
type Segment struct {
	Children    [NumSides]int16
	Verts       [8]int16
	Special     uint8
	MatcenNum   int8
	Value       int16
	StaticLight format.Fix
	Sides       [NumSides]Side
}

// HasSide reports whether side n is rendered: it has no neighbor, or it
// carries a wall on an open connection.
func (s *Segment) HasSide(n int) bool {
	return s.Children[n] == NoNeighbor || s.Sides[n].WallNum != NoNeighbor
}

// Mine is the level geometry. Segments refer to vertices and to each other
// by index.
type Mine struct {
	Vertices []Vector
	Segments []Segment
}

// Object is a placeholder for an entry of the game object table. Objects are
// counted but their contents are not decoded.
type Object struct{}

// Table locates one of the game data sub-tables.
type Table struct {
	Offset, Count, Size int32
}

// GameInfo is the game data header of a level. Only the object table is
// acted on; the other tables are recorded as found.
type GameInfo struct {
	Version      uint16
	Size         int32
	MineFilename string
	Level        int32

	Player   Table
	Objects  Table
	Walls    Table
	Doors    Table
	Triggers Table
	Links    Table
	Control  Table
	Matcens  Table

	LevelName   string
	PofNames    []string
	ObjectSlots []Object
}

// Level is a decoded classic level file.
type Level struct {
	Mine Mine
	Game *GameInfo // nil when the file has no game data
}
