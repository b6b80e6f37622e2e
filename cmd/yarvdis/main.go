// Command yarvdis loads a serialized instruction sequence, disassembles
// it, and optionally runs it.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chazu/yarvm/internal/config"
	"github.com/chazu/yarvm/pkg/cache"
	"github.com/chazu/yarvm/pkg/disasm"
	"github.com/chazu/yarvm/pkg/vm"
	"github.com/chazu/yarvm/pkg/wire"
)

func main() {
	verbose := flag.Bool("v", false, "verbose logging")
	run := flag.Bool("run", false, "execute the unit after loading it")
	noDisasm := flag.Bool("no-disasm", false, "skip printing the disassembly listing")
	configPath := flag.String("config", "", "path to a TOML config file (defaults baked in if omitted)")
	cachePath := flag.String("cache", "", "override the cache database path from config")
	noCache := flag.Bool("no-cache", false, "don't open or populate the iseq cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: yarvdis [options] <unit.yarvc>\n\n")
		fmt.Fprintf(os.Stderr, "Loads a CBOR-encoded instruction sequence and disassembles it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  yarvdis prog.yarvc            # disassemble\n")
		fmt.Fprintf(os.Stderr, "  yarvdis -run prog.yarvc       # disassemble, then execute\n")
		fmt.Fprintf(os.Stderr, "  yarvdis -no-disasm -run prog.yarvc  # execute only\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	var logger *zap.SugaredLogger
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "yarvdis: building logger: %v\n", err)
			os.Exit(1)
		}
		logger = l.Sugar()
	} else {
		logger = zap.NewNop().Sugar()
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "yarvdis: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "yarvdis: reading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	unit, err := wire.Unmarshal(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yarvdis: decoding %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	if !*noCache {
		store, err := cache.Open(cfg.CachePath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "yarvdis: opening cache: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		h, err := store.Put(unit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "yarvdis: caching unit: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			logger.Infow("cached unit", "hash", h.String())
		}
	}

	if !*noDisasm {
		fmt.Print(disasm.New(unit).String())
	}

	if *run {
		machine := vm.New(cfg, logger)
		result, err := machine.Run(unit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "yarvdis: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("=> %s\n", result.Inspect())
	}
}
