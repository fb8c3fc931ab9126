package batch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"des-level-obj/internal/gamefiles"
	"des-level-obj/internal/hog"
	"des-level-obj/internal/imageout"
	"des-level-obj/internal/objexport"
	"des-level-obj/internal/remap"
	"des-level-obj/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Archive        *hog.Archive
	OutputDir      string
	Files          *gamefiles.Files // nil exports without game textures
	TextureDir     string
	Remap          *remap.Map
	ImageFormat    imageout.Format
	MaxTextureSize int
	DumpTextures   bool
	Workers        int
	Log            *zerolog.Logger
}

// Result holds the outcome of converting one level.
type Result struct {
	Level   string
	Output  string // OBJ path relative to the output directory
	Stats   objexport.Stats
	Success bool
	Error   string
}

// Run converts the named levels using a worker pool. Each level is written
// to its own directory under cfg.OutputDir.
func Run(cfg Config, levels []string) []Result {
	if cfg.Log == nil {
		nop := zerolog.Nop()
		cfg.Log = &nop
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	textures := cfg.Files.Resolver(cfg.TextureDir, cfg.Archive)

	total := len(levels)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f levels/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	levelChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range levelChan {
				results[idx] = processLevel(cfg, textures, levels[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range levels {
		levelChan <- i
	}
	close(levelChan)

	wg.Wait()
	close(done)

	return results
}

func processLevel(cfg Config, textures texture.Resolver, name string) Result {
	log := cfg.Log.With().Str("level", name).Logger()
	stem := strings.TrimSuffix(name, path.Ext(name))
	rel := filepath.Join(stem, stem+".obj")

	data, err := cfg.Archive.ReadFile(name)
	if err != nil {
		return Result{Level: name, Error: err.Error()}
	}
	m, err := objexport.FromBytes(data, cfg.Files.Namer())
	if err != nil {
		return Result{Level: name, Error: err.Error()}
	}
	st, err := objexport.Convert(filepath.Join(cfg.OutputDir, rel), m, objexport.ConvertOptions{
		Options:        objexport.Options{Remap: cfg.Remap, Log: &log},
		Textures:       textures,
		DumpTextures:   cfg.DumpTextures,
		ImageFormat:    cfg.ImageFormat,
		MaxTextureSize: cfg.MaxTextureSize,
	})
	if err != nil {
		return Result{Level: name, Error: err.Error()}
	}
	log.Debug().Int("faces", st.Faces).Int("materials", st.Materials).Msg("converted")
	return Result{Level: name, Output: filepath.ToSlash(rel), Stats: st, Success: true}
}
