// Package hog reads the two HOG archive generations. Entries are exposed as
// independent io.SectionReaders over the one underlying file.
package hog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"des-level-obj/internal/format"
)

// Kind tells the archive generations apart.
type Kind int

const (
	// DHF is the classic archive: "DHF" then (name, length, data) records.
	DHF Kind = iota + 1
	// HOG2 has a directory block and a separate data area.
	HOG2
)

func (k Kind) String() string {
	switch k {
	case DHF:
		return "DHF"
	case HOG2:
		return "HOG2"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const (
	dhfNameLen    = 13
	dhfRecordSize = dhfNameLen + 4

	hog2HeaderSize = 64 // block after the 4-byte signature
	hog2NameLen    = 36 // 35 characters + NUL
	hog2RecordSize = hog2NameLen + 12
)

// Entry describes one file stored in an archive.
type Entry struct {
	Name      string
	Size      int64
	Offset    int64 // absolute offset of the data
	Flags     uint32
	Timestamp uint32
}

// Archive is an opened HOG file.
type Archive struct {
	r       io.ReaderAt
	c       io.Closer
	size    int64
	name    string
	kind    Kind
	entries []Entry
	names   map[string]int // lower-case name → index
}

type hog2Header struct {
	Magic      [4]byte
	Count      uint32
	DataOffset uint32
}

type hog2Record struct {
	Name      [hog2NameLen]byte
	Flags     uint32
	Size      uint32
	Timestamp uint32
}

// Open opens the archive at path. The file stays open until Close.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	a, err := NewReader(f, fi.Size(), path)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.c = f
	return a, nil
}

// NewReader reads the directory of an archive held by r.
func NewReader(r io.ReaderAt, size int64, name string) (*Archive, error) {
	a := &Archive{r: r, size: size, name: name}
	var magic [4]byte
	n, _ := r.ReadAt(magic[:], 0)
	var err error
	switch {
	case n == 4 && bytes.Equal(magic[:], []byte("HOG2")):
		a.kind = HOG2
		err = a.readHOG2()
	case n >= 3 && bytes.Equal(magic[:3], []byte("DHF")):
		a.kind = DHF
		err = a.readDHF()
	default:
		return nil, format.Wrap("hog", format.ErrBadMagic, "%s: signature %q", name, magic[:])
	}
	if err != nil {
		return nil, err
	}
	a.names = make(map[string]int, len(a.entries))
	for i, e := range a.entries {
		key := strings.ToLower(e.Name)
		if _, dup := a.names[key]; !dup {
			a.names[key] = i
		}
	}
	return a, nil
}

func (a *Archive) readDHF() error {
	off := int64(3)
	var rec [dhfRecordSize]byte
	for off < a.size {
		if off+dhfRecordSize > a.size {
			return format.Errorf("hog", "%s: truncated record at %d", a.name, off)
		}
		if _, err := a.r.ReadAt(rec[:], off); err != nil {
			return fmt.Errorf("hog: read %s: %w", a.name, err)
		}
		n := int64(int32(binary.LittleEndian.Uint32(rec[dhfNameLen:])))
		data := off + dhfRecordSize
		if n < 0 || data+n > a.size {
			return format.Errorf("hog", "%s: entry at %d has bad length %d", a.name, off, n)
		}
		a.entries = append(a.entries, Entry{
			Name:   cstring(rec[:dhfNameLen]),
			Size:   n,
			Offset: data,
		})
		off = data + n
	}
	return nil
}

func (a *Archive) readHOG2() error {
	sr := io.NewSectionReader(a.r, 0, a.size)
	var h hog2Header
	if err := binary.Read(sr, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("hog: read %s header: %w", a.name, err)
	}
	if int64(h.Count)*hog2RecordSize > a.size {
		return format.Errorf("hog", "%s: entry count %d exceeds file size", a.name, h.Count)
	}
	if _, err := sr.Seek(4+hog2HeaderSize, io.SeekStart); err != nil {
		return err
	}
	records := make([]hog2Record, h.Count)
	if err := binary.Read(sr, binary.LittleEndian, records); err != nil {
		return fmt.Errorf("hog: read %s directory: %w", a.name, err)
	}
	off := int64(h.DataOffset)
	a.entries = make([]Entry, len(records))
	for i, rec := range records {
		a.entries[i] = Entry{
			Name:      cstring(rec.Name[:]),
			Size:      int64(rec.Size),
			Offset:    off,
			Flags:     rec.Flags,
			Timestamp: rec.Timestamp,
		}
		off += int64(rec.Size)
	}
	return nil
}

// Kind returns the archive generation.
func (a *Archive) Kind() Kind { return a.kind }

func (a *Archive) String() string { return a.name }

// Entries returns the directory in stored order.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// Lookup finds an entry by case-insensitive name.
func (a *Archive) Lookup(name string) (Entry, bool) {
	i, ok := a.names[strings.ToLower(name)]
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Open returns a reader bounded to the named entry. Readers are independent
// and may be used while other entries are read.
func (a *Archive) Open(name string) (*io.SectionReader, error) {
	e, ok := a.Lookup(name)
	if !ok {
		return nil, &format.NotFoundError{Archive: a.name, Name: name}
	}
	return io.NewSectionReader(a.r, e.Offset, e.Size), nil
}

// ReadFile returns the contents of the named entry.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	sr, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	b := make([]byte, sr.Size())
	if _, err := io.ReadFull(sr, b); err != nil {
		return nil, fmt.Errorf("hog: read %s:%s: %w", a.name, name, err)
	}
	return b, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	if a.c == nil {
		return nil
	}
	return a.c.Close()
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
