package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"des-level-obj/internal/config"
	"des-level-obj/internal/gamefiles"
	"des-level-obj/internal/objexport"
	"des-level-obj/internal/remap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: levelobj [flags] <level.rdl|level.rl2|level.d3l|archive.hog> [entry]\n\n")
	flag.PrintDefaults()
}

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	gameDir := flag.String("game", "", "Game data directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	outFile := flag.String("o", "", "Output .obj path (overrides -output)")
	remapFile := flag.String("remap", "", "Texture rename list (JSON)")
	textureDir := flag.String("textures", "", "Directory of replacement texture images")
	imageFormat := flag.String("format", "", "Texture image format: png, tga or webp (default: png)")
	maxTexture := flag.Int("max-texture", 0, "Scale textures down to at most this size")
	dump := flag.Bool("dump", false, "Write texture images next to the .obj")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = usage
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		os.Exit(2)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
	}
	if err := cfg.Resolve(config.Flags{
		GameDir:        *gameDir,
		OutputDir:      *outputDir,
		TextureRemap:   *remapFile,
		TextureDir:     *textureDir,
		ImageFormat:    *imageFormat,
		MaxTextureSize: *maxTexture,
		DumpTextures:   *dump,
	}); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	var rm *remap.Map
	if cfg.TextureRemap != "" {
		var err error
		rm, err = remap.Load(cfg.TextureRemap)
		if err != nil {
			log.Fatal().Err(err).Msg("loading texture remap")
		}
		log.Debug().Str("file", cfg.TextureRemap).Int("entries", rm.Len()).Msg("texture remap loaded")
	}

	var files *gamefiles.Files
	if cfg.GameDir != "" {
		var err error
		files, err = gamefiles.Open(cfg.GameDir, &log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("exporting without game textures")
		}
		defer files.Close()
	}

	entry := ""
	if flag.NArg() == 2 {
		entry = flag.Arg(1)
	}
	lvl, err := gamefiles.ReadLevel(flag.Arg(0), entry)
	if err != nil {
		log.Fatal().Err(err).Msg("reading level")
	}
	defer lvl.Close()

	mesh, err := objexport.FromBytes(lvl.Data, files.Namer())
	if err != nil {
		log.Fatal().Err(err).Str("level", lvl.Name).Msg("decoding level")
	}

	objPath := *outFile
	if objPath == "" {
		stem := strings.TrimSuffix(lvl.Name, filepath.Ext(lvl.Name))
		objPath = filepath.Join(cfg.OutputDir, stem+".obj")
	}

	opts := objexport.ConvertOptions{
		Options:        objexport.Options{Remap: rm, Log: &log.Logger},
		DumpTextures:   cfg.DumpTextures,
		ImageFormat:    cfg.Format(),
		MaxTextureSize: cfg.MaxTextureSize,
	}
	if cfg.DumpTextures {
		if lvl.Archive != nil {
			opts.Textures = files.Resolver(cfg.TextureDir, lvl.Archive)
		} else {
			opts.Textures = files.Resolver(cfg.TextureDir)
		}
	}
	st, err := objexport.Convert(objPath, mesh, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("writing obj")
	}

	fmt.Printf("%s -> %s\n", lvl.Name, objPath)
	fmt.Printf("Vertices: %d, UVs: %d, Faces: %d, Materials: %d\n", st.Vertices, st.UVs, st.Faces, st.Materials)
	if cfg.DumpTextures {
		fmt.Printf("Textures written: %d, missing: %d\n", st.Images, len(st.Missing))
	}
}
