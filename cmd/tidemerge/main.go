// Command tidemerge combines several tide files into one sorted table.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/secretyv/ASur/pkg/tide"
)

func main() {
	output := flag.String("o", "", "Output file (default stdout)")
	verbose := flag.Bool("v", false, "Log debug messages")
	flag.Usage = func() {
		flag.CommandLine.Output().Write([]byte("Usage: tidemerge [-o output] [-v] file...\n"))
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	tables := make([]*tide.Table, 0, flag.NArg())
	for _, path := range flag.Args() {
		tbl, err := tide.Load(path)
		if err != nil {
			logger.Error("Failed to load tide file", "path", path, "error", err)
			os.Exit(1)
		}
		first, last := tbl.Span()
		logger.Debug("Loaded tide file", "path", path, "records", tbl.Len(), "start", first, "end", last)
		tables = append(tables, tbl)
	}

	merged := tide.Merge(logger, tables...)

	w := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("Failed to create output file", "path", *output, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := merged.Dump(w); err != nil {
		logger.Error("Failed to write merged table", "error", err)
		os.Exit(1)
	}
	logger.Info("Merged tide files", "files", len(tables), "records", merged.Len())
}
