// Package format holds the constants fixed by the game file formats: magic
// numbers, chunk tags, version limits and flag bits, plus the error types
// shared by every decoder.
package format

// Tag packs four ASCII characters into the little-endian uint32 used by
// chunked files.
func Tag(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// TagString is the inverse of Tag, for diagnostics.
func TagString(t uint32) string {
	b := []byte{byte(t), byte(t >> 8), byte(t >> 16), byte(t >> 24)}
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			b[i] = '?'
		}
	}
	return string(b)
}

// Chunked level file.
var (
	LevelFileTag = Tag("D3LV")

	ChunkTextureNames = Tag("TXNM")
	ChunkRooms        = Tag("ROOM")
)

const (
	LevelOldestVersion = 13
	LevelNewestVersion = 132
)

// KnownChunks names every chunk tag a level file may carry. Only
// ChunkTextureNames and ChunkRooms are decoded; the rest are skipped by
// length and listed here for diagnostics.
var KnownChunks = map[uint32]string{
	Tag("TXNM"): "texture names",
	Tag("GNNM"): "generic names",
	Tag("RBNM"): "robot names",
	Tag("PWNM"): "powerup names",
	Tag("DRNM"): "door names",
	Tag("ROOM"): "rooms",
	Tag("RWND"): "room wind",
	Tag("OBJS"): "objects",
	Tag("TERR"): "terrain",
	Tag("EDIT"): "editor info",
	Tag("SCPT"): "script",
	Tag("TERH"): "terrain height",
	Tag("TETM"): "terrain tmaps/flags",
	Tag("TLNK"): "terrain links",
	Tag("TSKY"): "terrain sky",
	Tag("TEND"): "terrain end",
	Tag("CODE"): "script code",
	Tag("TRIG"): "triggers",
	Tag("LMAP"): "lightmaps",
	Tag("CBSP"): "bsp",
	Tag("OHND"): "object handles",
	Tag("PATH"): "game paths",
	Tag("CBOA"): "boa",
	Tag("CNBS"): "new bsp",
	Tag("INFO"): "level info",
	Tag("PSTR"): "player starts",
	Tag("MTCN"): "matcen data",
	Tag("LVLG"): "level goals",
	Tag("AABB"): "room aabb",
	Tag("NLMP"): "new lightmaps",
	Tag("LIFE"): "alife data",
	Tag("TSND"): "terrain sound",
	Tag("NODE"): "bnodes",
	Tag("OSND"): "override sounds",
	Tag("FFTM"): "fft mod",
}

// Face flags.
const (
	FaceLightmap      = 0x0001
	FaceVertexAlpha   = 0x0002
	FaceCorona        = 0x0004
	FaceOldPortalTrig = 0x0020 // reused as FaceSpecInvisible from version 103
	FaceVolumetric    = 0x0100
)

// PortalOldHasTrigger was dropped from portal flags at version 103.
const PortalOldHasTrigger = 4

// Room flags.
const (
	RoomDoor     = 1 << 1
	RoomExternal = 1 << 2
	RoomFog      = 1 << 9
)

// Door flags.
const DoorAuto = 2

// Classic level file.
const (
	ClassicLevelTag     = 0x504c564c // "LVLP"
	ClassicLevelVersion = 1
	GameInfoSignature   = 0x6705
)

// Texture table pages.
const (
	PageTexture = 1
	PageDoor    = 5
	PageSound   = 7
	PageGeneric = 10

	TextureKnownVersion = 7

	TextureProcedural = 1 << 24
)

// OutRage bitmap image types.
const (
	ImageTGA2              = 2
	ImageTGA10             = 10
	Image4444CompressedMip = 121
	Image1555CompressedMip = 122
	ImageNewCompressedMip  = 123
	ImageCompressedMip     = 124
	ImageCompressedOGF8Bit = 125
	ImageOutrageTGA        = 126
	ImageCompressedOGF     = 127
	BitmapNameLen          = 35
)
