// Package main validates a trait table file, or the embedded default, and
// prints its contents grouped for review.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cod/internal/config"
	"github.com/cory-johannsen/cod/internal/game/trait"
	"github.com/cory-johannsen/cod/internal/observability"
)

func main() {
	file := flag.String("file", "", "trait table YAML (default: embedded tables)")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *level, Format: "console"}, "traits")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var registry *trait.Registry
	if *file == "" {
		registry = trait.DefaultRegistry()
	} else if registry, err = trait.LoadFile(*file); err != nil {
		logger.Fatal("invalid trait tables", zap.String("file", *file), zap.Error(err))
	}
	logger.Info("trait tables valid",
		zap.String("locale", registry.Locale()),
		zap.String("initiative", registry.Initiative().Template),
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range registry.Groups() {
		fmt.Fprintf(w, "\n[%s] %s\n", g.Key, g.DisplayName)
		for _, def := range registry.ListByGroup(g.Key) {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", def.Kind, def.Key, def.DisplayName)
		}
	}

	fmt.Fprintln(w, "\n[attacks]")
	for _, a := range registry.Attacks() {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Key, a.DisplayName, a.Pool)
	}

	fmt.Fprintln(w, "\n[splats]")
	for _, s := range registry.Splats() {
		fmt.Fprintf(w, "  %s\t%s\n", s.Key, s.DisplayName)
	}

	fmt.Fprintln(w, "\n[merits]")
	for _, m := range registry.Merits() {
		if m.Header {
			fmt.Fprintf(w, "  %s\n", m.DisplayName)
			continue
		}
		fmt.Fprintf(w, "    %s\t%s\n", m.Key, m.DisplayName)
	}
	if err := w.Flush(); err != nil {
		logger.Fatal("writing tables", zap.Error(err))
	}
}
