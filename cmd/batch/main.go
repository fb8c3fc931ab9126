package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"des-level-obj/internal/batch"
	"des-level-obj/internal/config"
	"des-level-obj/internal/gamefiles"
	"des-level-obj/internal/hog"
	"des-level-obj/internal/remap"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Convert only the first N levels")
	match := flag.String("level", "", "Convert only levels whose name contains this text")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	gameDir := flag.String("game", "", "Game data directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	remapFile := flag.String("remap", "", "Texture rename list (JSON)")
	textureDir := flag.String("textures", "", "Directory of replacement texture images")
	imageFormat := flag.String("format", "", "Texture image format: png, tga or webp (default: png)")
	maxTexture := flag.Int("max-texture", 0, "Scale textures down to at most this size")
	dump := flag.Bool("dump", false, "Write texture images next to each .obj")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: batch [flags] <archive.hog>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() != 1 {
		flag.Usage()
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

	// CLI flags override config file
	if err := cfg.Resolve(config.Flags{
		GameDir:        *gameDir,
		OutputDir:      *outputDir,
		TextureRemap:   *remapFile,
		TextureDir:     *textureDir,
		ImageFormat:    *imageFormat,
		MaxTextureSize: *maxTexture,
		DumpTextures:   *dump,
		Workers:        *workers,
	}); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	archive, err := hog.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("opening archive")
	}
	defer archive.Close()

	levels := gamefiles.LevelNames(archive)
	if *match != "" {
		var filtered []string
		for _, name := range levels {
			if strings.Contains(strings.ToLower(name), strings.ToLower(*match)) {
				filtered = append(filtered, name)
			}
		}
		levels = filtered
	}

	// Limit for testing
	if *testN > 0 && *testN < len(levels) {
		levels = levels[:*testN]
	}

	if len(levels) == 0 {
		fmt.Println("No levels to convert.")
		os.Exit(0)
	}

	var rm *remap.Map
	if cfg.TextureRemap != "" {
		rm, err = remap.Load(cfg.TextureRemap)
		if err != nil {
			log.Fatal().Err(err).Msg("loading texture remap")
		}
	}

	var files *gamefiles.Files
	if cfg.GameDir != "" {
		files, err = gamefiles.Open(cfg.GameDir, &log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("exporting without game textures")
		}
		defer files.Close()
	}

	// Print summary
	fmt.Printf("Level → OBJ: %s\n", flag.Arg(0))
	fmt.Printf("Levels: %d, Workers: %d\n", len(levels), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Archive:        archive,
		OutputDir:      cfg.OutputDir,
		Files:          files,
		TextureDir:     cfg.TextureDir,
		Remap:          rm,
		ImageFormat:    cfg.Format(),
		MaxTextureSize: cfg.MaxTextureSize,
		DumpTextures:   cfg.DumpTextures,
		Workers:        cfg.Workers,
		Log:            &log.Logger,
	}, levels)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	var failures []batch.Result
	for _, r := range results {
		if !r.Success {
			failures = append(failures, r)
		}
	}
	fmt.Printf("Converted: %d/%d\n", len(results)-len(failures), len(results))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		for _, r := range failures[:min(20, len(failures))] {
			fmt.Printf("  %s: %s\n", r.Level, r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		log.Warn().Err(err).Msg("manifest write failed")
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}
