package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"des-level-obj/internal/gamefiles"
	"des-level-obj/internal/hog"
)

func main() {
	levelsOnly := flag.Bool("levels", false, "List level entries only")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hogls [-levels] <archive.hog>...\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		a, err := hog.Open(path)
		if err != nil {
			log.Error().Err(err).Str("archive", path).Msg("cannot open")
			failed++
			continue
		}
		entries := a.Entries()
		fmt.Printf("%s (%s, %d entries)\n", path, a.Kind(), len(entries))
		var total int64
		for _, e := range entries {
			if *levelsOnly && !gamefiles.IsLevelName(e.Name) {
				continue
			}
			fmt.Printf("  %-36s %10d  @%-10d\n", e.Name, e.Size, e.Offset)
			total += e.Size
		}
		fmt.Printf("  %-36s %10d\n", "total", total)
		a.Close()
	}
	if failed > 0 {
		os.Exit(1)
	}
}
