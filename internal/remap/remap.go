// Package remap loads the texture rename list: groups of source texture
// names, each renamed to one material and image name on export.
package remap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Target is what a matched texture is exported as.
type Target struct {
	Material string `json:"Material"`
	Texture  string `json:"Texture"`
}

// Entry renames every texture in Textures to RemapTo.
type Entry struct {
	Textures []string `json:"Textures"`
	RemapTo  Target   `json:"RemapTo"`
}

type file struct {
	TextureRemap []Entry `json:"TextureRemap"`
}

// Map looks up rename targets by source name, ignoring case. When a name
// appears in several entries the first entry wins.
type Map struct {
	Entries []Entry
	byName  map[string]int
}

// New builds a Map from entries in priority order.
func New(entries []Entry) *Map {
	m := &Map{Entries: entries, byName: make(map[string]int)}
	for i, e := range entries {
		for _, name := range e.Textures {
			key := strings.ToLower(name)
			if _, dup := m.byName[key]; !dup {
				m.byName[key] = i
			}
		}
	}
	return m
}

// Load reads a rename list from a JSON file.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("remap: open %s: %w", path, err)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("remap: %s: %w", path, err)
	}
	return m, nil
}

// Decode parses a rename list.
func Decode(r io.Reader) (*Map, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	for i, e := range f.TextureRemap {
		if e.RemapTo.Material == "" || e.RemapTo.Texture == "" {
			return nil, fmt.Errorf("entry %d: RemapTo needs Material and Texture", i)
		}
	}
	return New(f.TextureRemap), nil
}

// Lookup returns the target for a source texture name. A nil Map matches
// nothing.
func (m *Map) Lookup(name string) (Target, bool) {
	if m == nil {
		return Target{}, false
	}
	i, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return Target{}, false
	}
	return m.Entries[i].RemapTo, true
}

// Len returns the number of source names with a target.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byName)
}
