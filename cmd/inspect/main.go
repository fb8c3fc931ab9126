package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"des-level-obj/internal/classic"
	"des-level-obj/internal/d3level"
	"des-level-obj/internal/gamefiles"
)

func inspectRooms(data []byte, showRooms bool) error {
	version, chunks, err := d3level.Chunks(bytes.NewReader(data))
	if err != nil {
		return err
	}
	fmt.Printf("Room level, version %d, %d chunks\n", version, len(chunks))
	for _, c := range chunks {
		fmt.Printf("  %s  @%-8d %8d bytes\n", c.Name(), c.Offset, c.Size)
	}

	lvl, err := d3level.DecodeBytes(data)
	if err != nil {
		return err
	}
	var used, verts, faces, portals int
	for _, rm := range lvl.Rooms {
		if rm == nil {
			continue
		}
		used++
		verts += len(rm.Verts)
		faces += len(rm.Faces)
		portals += len(rm.Portals)
	}
	fmt.Printf("Textures: %d\n", len(lvl.Textures))
	fmt.Printf("Rooms: %d (%d slots), Verts: %d, Faces: %d, Portals: %d\n", used, len(lvl.Rooms), verts, faces, portals)
	if !showRooms {
		return nil
	}
	for i, rm := range lvl.Rooms {
		if rm == nil {
			continue
		}
		c := rm.Centroid()
		fmt.Printf("  Room[%d] %q: verts=%d, faces=%d, portals=%d, center=(%.1f, %.1f, %.1f)\n",
			i, rm.Name, len(rm.Verts), len(rm.Faces), len(rm.Portals), c.X(), c.Y(), c.Z())
	}
	return nil
}

func inspectMine(data []byte, showSegments bool) error {
	lvl, err := classic.DecodeBytes(data)
	if err != nil {
		return err
	}
	mine := lvl.Mine
	sides, walls := 0, 0
	for si := range mine.Segments {
		for n := 0; n < classic.NumSides; n++ {
			if mine.Segments[si].HasSide(n) {
				sides++
			}
			if mine.Segments[si].Sides[n].WallNum != classic.NoNeighbor {
				walls++
			}
		}
	}
	fmt.Printf("Classic level\n")
	fmt.Printf("Vertices: %d, Segments: %d, Rendered sides: %d, Walls: %d\n",
		len(mine.Vertices), len(mine.Segments), sides, walls)
	if g := lvl.Game; g != nil {
		fmt.Printf("Game data version %d: %q (mine file %q)\n", g.Version, g.LevelName, g.MineFilename)
		fmt.Printf("Objects: %d, Walls: %d, Triggers: %d, Robot centers: %d\n",
			g.Objects.Count, g.Walls.Count, g.Triggers.Count, g.Matcens.Count)
		for _, pof := range g.PofNames {
			fmt.Printf("  model %s\n", pof)
		}
	}
	if !showSegments {
		return nil
	}
	for i, s := range mine.Segments {
		fmt.Printf("  Segment[%d]: children=%v, verts=%v, light=%s\n", i, s.Children, s.Verts, s.StaticLight)
	}
	return nil
}

func main() {
	detail := flag.Bool("detail", false, "List every room or segment")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: inspect [-detail] <level file|archive.hog> [entry]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}
	lvl, err := gamefiles.ReadLevel(flag.Arg(0), flag.Arg(1))
	if err != nil {
		log.Fatal().Err(err).Msg("reading level")
	}
	defer lvl.Close()
	fmt.Printf("%s: %d bytes\n", lvl.Name, len(lvl.Data))

	switch {
	case bytes.HasPrefix(lvl.Data, []byte("D3LV")):
		err = inspectRooms(lvl.Data, *detail)
	case bytes.HasPrefix(lvl.Data, []byte("LVLP")):
		err = inspectMine(lvl.Data, *detail)
	default:
		err = fmt.Errorf("%s: not a level file", lvl.Name)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("inspect")
	}
}
