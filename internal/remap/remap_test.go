package remap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{
  "TextureRemap": [
    {"Textures": ["Rock_Wall", "rock_wall2"], "RemapTo": {"Material": "stone", "Texture": "stone_diffuse"}},
    {"Textures": ["ROCK_WALL", "Lava"], "RemapTo": {"Material": "hot", "Texture": "hot_diffuse"}}
  ]
}`

func TestLookup(t *testing.T) {
	m, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want Target
		ok   bool
	}{
		{"rock_wall", Target{"stone", "stone_diffuse"}, true},
		{"ROCK_WALL2", Target{"stone", "stone_diffuse"}, true},
		{"lava", Target{"hot", "hot_diffuse"}, true},
		{"Ice", Target{}, false},
	}
	for _, tt := range tests {
		got, ok := m.Lookup(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestNilMap(t *testing.T) {
	var m *Map
	if _, ok := m.Lookup("x"); ok || m.Len() != 0 {
		t.Error("nil map matched")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remap.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Lookup("Lava"); !ok {
		t.Error("Lava not mapped")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{
		`{"TextureRemap": [`,
		`{"TextureRemap": [{"Textures": ["a"], "RemapTo": {"Material": "m"}}]}`,
	} {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%s) succeeded", in)
		}
	}
}
