package gamefiles

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadLevel(t *testing.T) {
	dir := t.TempDir()
	hogPath := filepath.Join(dir, "mission.hog")
	writeFile(t, hogPath, dhfBytes(
		[]string{"briefing.txb", "LEVEL01.RDL", "level02.rl2"},
		[][]byte{{9}, []byte("one"), []byte("two")},
	))
	loose := filepath.Join(dir, "single.d3l")
	writeFile(t, loose, []byte("D3LV"))

	tests := []struct {
		name        string
		file, entry string
		wantName    string
		wantData    string
		archived    bool
	}{
		{"first level", hogPath, "", "LEVEL01.RDL", "one", true},
		{"named entry", hogPath, "LEVEL02.RL2", "level02.rl2", "two", true},
		{"loose file", loose, "", "single.d3l", "D3LV", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := ReadLevel(tt.file, tt.entry)
			if err != nil {
				t.Fatal(err)
			}
			defer lvl.Close()
			if lvl.Name != tt.wantName || string(lvl.Data) != tt.wantData || (lvl.Archive != nil) != tt.archived {
				t.Errorf("ReadLevel = %q %q archived=%v", lvl.Name, lvl.Data, lvl.Archive != nil)
			}
		})
	}

	if _, err := ReadLevel(hogPath, "missing.rdl"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing entry: err = %v", err)
	}
	if _, err := ReadLevel(loose, "x.rdl"); err == nil {
		t.Error("entry name on a loose file: expected an error")
	}
	if _, err := ReadLevel(filepath.Join(dir, "none.rdl"), ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}

	empty := filepath.Join(dir, "empty.hog")
	writeFile(t, empty, dhfBytes([]string{"a.txt"}, [][]byte{{1}}))
	if _, err := ReadLevel(empty, ""); err == nil {
		t.Error("archive without levels: expected an error")
	}
}

func TestIsLevelName(t *testing.T) {
	got := []bool{}
	for _, n := range []string{"a.RDL", "b.rl2", "c.d3l", "d.hog", "e"} {
		got = append(got, IsLevelName(n))
	}
	if want := []bool{true, true, true, false, false}; !reflect.DeepEqual(got, want) {
		t.Errorf("IsLevelName = %v, want %v", got, want)
	}
}
