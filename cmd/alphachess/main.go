package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajurian/AlphaChess/internal/book"
	"github.com/ajurian/AlphaChess/internal/engine"
	"github.com/ajurian/AlphaChess/internal/storage"
	"github.com/ajurian/AlphaChess/internal/uci"
)

var (
	hashMB     = flag.Int("hash", 16, "transposition table size in MB")
	bookDepth  = flag.Int("bookdepth", 8, "last game ply played from the book")
	bookFile   = flag.String("book", "", "opening book text file, one line of UCI moves per row")
	pgnFile    = flag.String("pgn", "", "PGN file to import as the opening book")
	pgnPlies   = flag.Int("pgnplies", 16, "plies kept from each imported PGN game")
	dataDir    = flag.String("data", "", "settings directory (default: platform data directory)")
	noStore    = flag.Bool("nostore", false, "do not load or save settings")
	logLevel   = flag.String("loglevel", "info", "log level: debug, info, warn, error")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -loglevel %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("file", *cpuprofile).Msg("CPU profiling enabled")
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("alphachess")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store *storage.Storage
	if !*noStore {
		var err error
		if *dataDir != "" {
			store, err = storage.Open(*dataDir)
		} else {
			store, err = storage.OpenDefault()
		}
		if err != nil {
			log.Warn().Err(err).Msg("running without persistent settings")
			store = nil
		} else {
			defer store.Close()
		}
	}

	settings := loadSettings(store)
	// SetSettings below resizes the table when the settings differ.
	eng := engine.NewEngine(storage.DefaultSettings().HashMB)

	bk, err := loadBook(store)
	if err != nil {
		return err
	}
	log.Info().Int("lines", bk.Len()).Msg("opening book loaded")

	var protocol *uci.UCI
	if store != nil {
		protocol = uci.New(eng, bk, store, os.Stdin, os.Stdout)
	} else {
		protocol = uci.New(eng, bk, nil, os.Stdin, os.Stdout)
	}
	protocol.SetSettings(settings)
	return protocol.Run(ctx)
}

// loadSettings returns the stored settings overridden by explicit flags.
func loadSettings(store *storage.Storage) storage.Settings {
	settings := storage.DefaultSettings()
	if store != nil {
		stored, err := store.LoadSettings()
		if err != nil {
			log.Warn().Err(err).Msg("loading settings")
		} else {
			settings = stored
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hash":
			settings.HashMB = *hashMB
		case "bookdepth":
			settings.BookDepth = *bookDepth
		}
	})
	if clamped := settings.Clamp(); clamped != settings {
		log.Warn().
			Int("hash", clamped.HashMB).
			Int("bookdepth", clamped.BookDepth).
			Msg("settings out of range, clamped")
		settings = clamped
	}
	return settings
}

// loadBook reads the book named on the command line and stores its lines, or
// falls back to the stored lines and then to the built-in book.
func loadBook(store *storage.Storage) (*book.Book, error) {
	var (
		bk  *book.Book
		err error
	)
	switch {
	case *pgnFile != "":
		bk, err = readBook(*pgnFile, func(f *os.File) (*book.Book, error) {
			return book.ImportPGN(f, *pgnPlies)
		})
	case *bookFile != "":
		bk, err = readBook(*bookFile, func(f *os.File) (*book.Book, error) {
			return book.Parse(f)
		})
	default:
		return storedBook(store), nil
	}
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.SaveBookLines(bk.Lines()); err != nil {
			log.Warn().Err(err).Msg("saving book lines")
		}
	}
	return bk, nil
}

func readBook(path string, parse func(*os.File) (*book.Book, error)) (*book.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening book: %w", err)
	}
	defer f.Close()
	bk, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bk, nil
}

func storedBook(store *storage.Storage) *book.Book {
	if store == nil {
		return book.Default()
	}
	lines, err := store.LoadBookLines()
	if err != nil {
		log.Warn().Err(err).Msg("loading book lines")
		return book.Default()
	}
	if len(lines) == 0 {
		return book.Default()
	}
	bk, err := book.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		log.Warn().Err(err).Msg("stored book lines are invalid")
		return book.Default()
	}
	return bk
}
