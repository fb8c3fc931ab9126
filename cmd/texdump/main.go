package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"des-level-obj/internal/gamefiles"
	"des-level-obj/internal/hog"
	"des-level-obj/internal/imageout"
	"des-level-obj/internal/ogf"
)

type dumper struct {
	outDir  string
	format  imageout.Format
	maxSize int
}

func (d *dumper) save(name string, img *image.NRGBA) error {
	stem := strings.TrimSuffix(name, path.Ext(name))
	out := filepath.Join(d.outDir, strings.ReplaceAll(stem, " ", "_")+d.format.Ext())
	img = imageout.Fit(img, d.maxSize)
	if err := imageout.Save(out, img, d.format); err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Printf("OK  %s -> %s  (%dx%d)\n", name, out, b.Dx(), b.Dy())
	return nil
}

// dumpArchive decodes bitmap entries of an archive; with no names, every
// .ogf entry.
func (d *dumper) dumpArchive(file string, names []string) (errs int) {
	a, err := hog.Open(file)
	if err != nil {
		log.Error().Err(err).Msg("opening archive")
		return 1
	}
	defer a.Close()
	if len(names) == 0 {
		for _, e := range a.Entries() {
			if strings.EqualFold(path.Ext(e.Name), ".ogf") {
				names = append(names, e.Name)
			}
		}
	}
	for _, name := range names {
		data, err := a.ReadFile(name)
		if err == nil {
			var bm *ogf.Bitmap
			if bm, err = ogf.DecodeEntry(name, data); err == nil {
				err = d.save(name, bm.NRGBA())
			}
		}
		if err != nil {
			log.Error().Err(err).Str("entry", name).Msg("not dumped")
			errs++
		}
	}
	return errs
}

// dumpNamed resolves level texture names through the game data.
func (d *dumper) dumpNamed(gameDir, textureDir string, names []string) (errs int) {
	files, err := gamefiles.Open(gameDir, &log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("loading game data")
		return 1
	}
	defer files.Close()
	res := files.Resolver(textureDir)
	for _, name := range names {
		img, err := res.Resolve(name)
		if err == nil {
			err = d.save(name, img)
		}
		if err != nil {
			log.Error().Err(err).Str("texture", name).Msg("not dumped")
			errs++
		}
	}
	return errs
}

func main() {
	gameDir := flag.String("game", "", "Resolve texture names through the game data in this directory")
	textureDir := flag.String("textures", "", "Directory of replacement texture images (with -game)")
	outputDir := flag.String("output", ".", "Output directory")
	formatName := flag.String("format", "png", "Image format: png, tga or webp")
	maxSize := flag.Int("max", 0, "Scale images down to at most this size")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: texdump [flags] <archive.hog> [entry.ogf]...\n")
		fmt.Fprintf(os.Stderr, "       texdump -game <dir> [flags] <texture name>...\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	f, err := imageout.ParseFormat(*formatName)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -format")
	}
	d := &dumper{outDir: *outputDir, format: f, maxSize: *maxSize}

	var errs int
	switch {
	case *gameDir != "" && flag.NArg() > 0:
		errs = d.dumpNamed(*gameDir, *textureDir, flag.Args())
	case *gameDir == "" && flag.NArg() > 0:
		errs = d.dumpArchive(flag.Arg(0), flag.Args()[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}

	if errs > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errs)
		os.Exit(1)
	}
	fmt.Println("\nDone.")
}
