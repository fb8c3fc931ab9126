package gamefiles

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"des-level-obj/internal/hog"
)

// LevelExts are the level file extensions, lowercase.
var LevelExts = []string{".rdl", ".rl2", ".d3l"}

// IsLevelName reports whether name carries a level file extension.
func IsLevelName(name string) bool {
	return slices.Contains(LevelExts, strings.ToLower(path.Ext(name)))
}

// LevelNames lists the level entries of a, in archive order.
func LevelNames(a *hog.Archive) []string {
	var names []string
	for _, e := range a.Entries() {
		if IsLevelName(e.Name) {
			names = append(names, e.Name)
		}
	}
	return names
}

// Level is level file data together with where it came from.
type Level struct {
	Name    string       // file or entry name
	Archive *hog.Archive // nil for a loose file
	Data    []byte
}

// Close releases the archive the level was read from.
func (l *Level) Close() error {
	if l.Archive == nil {
		return nil
	}
	return l.Archive.Close()
}

func isArchive(file string) (bool, error) {
	f, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var magic [4]byte
	n, _ := f.Read(magic[:])
	return n >= 3 && (bytes.Equal(magic[:3], []byte("DHF")) || bytes.Equal(magic[:], []byte("HOG2"))), nil
}

// ReadLevel loads a loose level file, or an entry of an archive. With an
// archive and no entry name the first level in the archive is used. The
// archive stays open so its bitmaps can be searched; Close releases it.
func ReadLevel(file, entry string) (*Level, error) {
	arch, err := isArchive(file)
	if err != nil {
		return nil, fmt.Errorf("gamefiles: %w", err)
	}
	if !arch {
		if entry != "" {
			return nil, fmt.Errorf("gamefiles: %s is not an archive", file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("gamefiles: %w", err)
		}
		return &Level{Name: filepath.Base(file), Data: data}, nil
	}

	a, err := hog.Open(file)
	if err != nil {
		return nil, err
	}
	if entry == "" {
		names := LevelNames(a)
		if len(names) == 0 {
			a.Close()
			return nil, fmt.Errorf("gamefiles: %s holds no levels", file)
		}
		entry = names[0]
	}
	data, err := a.ReadFile(entry)
	if err != nil {
		a.Close()
		return nil, err
	}
	e, _ := a.Lookup(entry)
	return &Level{Name: e.Name, Data: data, Archive: a}, nil
}
