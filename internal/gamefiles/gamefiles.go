// Package gamefiles locates the installed game data that level textures are
// drawn from and assembles a texture resolver over it.
package gamefiles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"des-level-obj/internal/hog"
	"des-level-obj/internal/pig"
	"des-level-obj/internal/table"
	"des-level-obj/internal/texture"
)

// Game identifies which data set was found.
type Game int

const (
	None Game = iota
	Descent1
	Descent2
	Descent3
)

func (g Game) String() string {
	switch g {
	case Descent1:
		return "descent1"
	case Descent2:
		return "descent2"
	case Descent3:
		return "descent3"
	}
	return "none"
}

const (
	d2Hog     = "descent2.hog"
	d2Ham     = "descent2.ham"
	d2Pig     = "groupa.pig"
	d2Palette = "groupa.256"

	d1Hog = "descent.hog"
	d1Pig = "descent.pig"

	d3Hog   = "d3.hog"
	d3Table = "table.gam"
)

// Add-on archives searched after d3.hog when present.
var d3Extras = []string{"extra.hog", "extra1.hog", "extra13.hog", "merc.hog"}

// Files is an opened game data set.
type Files struct {
	Game    Game
	Dir     string
	Archive *hog.Archive // main archive
	Extras  []*hog.Archive

	classic *texture.ClassicSource
	table   *table.Table
}

func exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// Detect reports which game's data files are present in dir.
func Detect(dir string) Game {
	switch {
	case exists(filepath.Join(dir, d2Hog)) && exists(filepath.Join(dir, d2Ham)) && exists(filepath.Join(dir, d2Pig)):
		return Descent2
	case exists(filepath.Join(dir, d1Hog)) && exists(filepath.Join(dir, d1Pig)):
		return Descent1
	case exists(filepath.Join(dir, d3Hog)):
		return Descent3
	}
	return None
}

// Open detects and loads the game data in dir. The returned error wraps
// fs.ErrNotExist when dir holds no known data set, and errors.ErrUnsupported
// for first-game data, whose textures live inside the PIG file.
func Open(dir string, log *zerolog.Logger) (*Files, error) {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	f := &Files{Game: Detect(dir), Dir: dir}
	var err error
	switch f.Game {
	case Descent2:
		err = f.openD2()
	case Descent3:
		err = f.openD3(log)
	case Descent1:
		return nil, fmt.Errorf("gamefiles: %s data in %s: %w", f.Game, dir, errors.ErrUnsupported)
	default:
		return nil, fmt.Errorf("gamefiles: no game data in %s: %w", dir, fs.ErrNotExist)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	log.Debug().Str("game", f.Game.String()).Str("dir", dir).Int("archives", 1+len(f.Extras)).Msg("game data loaded")
	return f, nil
}

func (f *Files) openD2() error {
	a, err := hog.Open(filepath.Join(f.Dir, d2Hog))
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	f.Archive = a
	palData, err := a.ReadFile(d2Palette)
	if err != nil {
		return fmt.Errorf("gamefiles: palette: %w", err)
	}
	pal, err := pig.DecodePalette(palData)
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	hamData, err := os.ReadFile(filepath.Join(f.Dir, d2Ham))
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	list, err := pig.DecodeHAM(hamData)
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	pigData, err := os.ReadFile(filepath.Join(f.Dir, d2Pig))
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	p, err := pig.Decode(pigData)
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	f.classic = texture.NewClassicSource(list, p, pal)
	return nil
}

func (f *Files) openD3(log *zerolog.Logger) error {
	a, err := hog.Open(filepath.Join(f.Dir, d3Hog))
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	f.Archive = a
	for _, name := range d3Extras {
		path := filepath.Join(f.Dir, name)
		if !exists(path) {
			continue
		}
		x, err := hog.Open(path)
		if err != nil {
			log.Warn().Err(err).Str("archive", name).Msg("skipping archive")
			continue
		}
		f.Extras = append(f.Extras, x)
	}

	// A loose table file overrides the archived one.
	data, err := os.ReadFile(filepath.Join(f.Dir, d3Table))
	if errors.Is(err, fs.ErrNotExist) {
		data, err = a.ReadFile(d3Table)
	}
	if err != nil {
		return fmt.Errorf("gamefiles: table: %w", err)
	}
	f.table, err = table.DecodeBytes(data)
	if err != nil {
		return fmt.Errorf("gamefiles: %w", err)
	}
	return nil
}

// Namer names classic texture numbers. It is nil unless classic data was
// loaded.
func (f *Files) Namer() interface{ TextureName(int) (string, bool) } {
	if f == nil || f.classic == nil {
		return nil
	}
	return f.classic
}

// Resolver builds a cached texture resolver. Images in textureDir, when
// given, replace game bitmaps of the same name. Archives in levelHogs are
// searched before the game archives, so a mission's own bitmaps win.
func (f *Files) Resolver(textureDir string, levelHogs ...*hog.Archive) texture.Resolver {
	var chain texture.Chain
	if textureDir != "" {
		chain = append(chain, texture.BuildIndex(textureDir))
	}
	if f != nil {
		switch {
		case f.classic != nil:
			chain = append(chain, f.classic)
		case f.table != nil:
			archives := append([]*hog.Archive{}, levelHogs...)
			archives = append(archives, f.Archive)
			archives = append(archives, f.Extras...)
			chain = append(chain, &texture.D3Source{Table: f.table, Archives: archives})
		}
	}
	return texture.NewCache(chain)
}

// Close releases every opened archive.
func (f *Files) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	if f.Archive != nil {
		errs = append(errs, f.Archive.Close())
	}
	for _, x := range f.Extras {
		errs = append(errs, x.Close())
	}
	return errors.Join(errs...)
}
