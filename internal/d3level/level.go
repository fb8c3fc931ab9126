// Package d3level decodes chunked room/portal level files.
//
// A level file is a tag, a version and a run of chunks. Each chunk is a tag
// and a length counted from the length field itself; chunks other than the
// texture names and the rooms are skipped by that length alone. Record
// layouts inside the rooms chunk change with the file version and are
// declared as field tables in room.go.
package d3level

import (
	"fmt"
	"io"

	"des-level-obj/internal/binio"
	"des-level-obj/internal/format"
)

const (
	roomSummaryVersion = 85 // room chunk carries vertex/face/portal totals
	roomNumberVersion  = 96 // each room is preceded by its number
)

// Chunk locates one chunk of a level file.
type Chunk struct {
	Tag    uint32
	Offset int64 // of the tag
	Size   int32 // from the length field to the next chunk
}

// Name returns the chunk tag as text.
func (c Chunk) Name() string { return format.TagString(c.Tag) }

// Decode reads a level from rs. Files whose tag or version is not
// understood yield a *format.FormatError and no level.
func Decode(rs io.ReadSeeker) (*Level, error) {
	return decode(binio.NewReader(rs))
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(b []byte) (*Level, error) {
	return decode(binio.FromBytes(b))
}

func decode(r *binio.Reader) (*Level, error) {
	version, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	lvl := &Level{Version: version}
	err = walkChunks(r, func(c Chunk) error {
		switch c.Tag {
		case format.ChunkTextureNames:
			names, err := decodeTextureNames(r)
			if err != nil {
				return fmt.Errorf("d3level: texture names: %w", err)
			}
			lvl.Textures = names
		case format.ChunkRooms:
			rooms, err := decodeRooms(r, version)
			if err != nil {
				return fmt.Errorf("d3level: %w", err)
			}
			lvl.Rooms = rooms
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lvl, nil
}

// Chunks lists the chunks of a level file without decoding them.
func Chunks(rs io.ReadSeeker) (version int32, chunks []Chunk, err error) {
	r := binio.NewReader(rs)
	if version, err = readHeader(r); err != nil {
		return 0, nil, err
	}
	err = walkChunks(r, func(c Chunk) error {
		chunks = append(chunks, c)
		return nil
	})
	return version, chunks, err
}

func readHeader(r *binio.Reader) (int32, error) {
	tag := r.U32()
	version := r.I32()
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("d3level: read header: %w", err)
	}
	if tag != format.LevelFileTag {
		return 0, format.Wrap("d3level", format.ErrBadMagic, "level tag %q", format.TagString(tag))
	}
	if version < format.LevelOldestVersion || version > format.LevelNewestVersion {
		return 0, format.Wrap("d3level", format.ErrUnsupportedVersion, "level version %d not in [%d, %d]",
			version, format.LevelOldestVersion, format.LevelNewestVersion)
	}
	return version, nil
}

// walkChunks calls fn with the reader positioned after each chunk's length
// field, then moves to the next chunk by the declared length whatever fn
// consumed.
func walkChunks(r *binio.Reader, fn func(Chunk) error) error {
	end := r.Len()
	for r.Pos() < end {
		c := Chunk{Offset: r.Pos()}
		c.Tag = r.U32()
		start := r.Pos()
		c.Size = r.I32()
		if err := r.Err(); err != nil {
			return fmt.Errorf("d3level: chunk at %d: %w", c.Offset, err)
		}
		if c.Size < 4 {
			return format.Errorf("d3level", "chunk %q at %d: length %d", c.Name(), c.Offset, c.Size)
		}
		if err := fn(c); err != nil {
			return err
		}
		r.Seek(start + int64(c.Size))
		if err := r.Err(); err != nil {
			return fmt.Errorf("d3level: chunk %q at %d: %w", c.Name(), c.Offset, err)
		}
	}
	return nil
}

func decodeTextureNames(r *binio.Reader) ([]string, error) {
	n := r.I32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if n < 0 || int64(n) > r.Remaining() {
		return nil, format.Errorf("d3level", "%d texture names", n)
	}
	names := make([]string, n)
	for i := range names {
		names[i] = r.CString()
	}
	return names, r.Err()
}

func decodeRooms(r *binio.Reader, version int32) ([]*Room, error) {
	count := r.I32()
	if version >= roomSummaryVersion {
		r.Skip(4 * 4)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("rooms: %w", err)
	}
	if count < 0 || int64(count) > r.Remaining() {
		return nil, format.Errorf("d3level", "%d rooms", count)
	}

	type slot struct {
		num  int
		room *Room
	}
	decoded := make([]slot, 0, count)
	size := int(count)
	for i := 0; i < int(count); i++ {
		num := i
		if version >= roomNumberVersion {
			num = int(r.I16())
			if err := r.Err(); err != nil {
				return nil, fmt.Errorf("room %d: %w", i, err)
			}
			if num < 0 {
				return nil, format.Errorf("d3level", "room %d: number %d", i, num)
			}
		}
		rm, err := DecodeRoom(r, version)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", num, err)
		}
		decoded = append(decoded, slot{num, rm})
		size = max(size, num+1)
	}
	rooms := make([]*Room, size)
	for _, s := range decoded {
		rooms[s.num] = s.room
	}
	return rooms, nil
}
