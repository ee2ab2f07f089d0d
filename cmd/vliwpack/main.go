// Command vliwpack packetizes a program for a VLIW target and prints the
// resulting issue packets.
//
// Usage:
//
//	vliwpack -program loop.yaml [-target dual|path.yaml] [-workers N] [-no-cache] [-v]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/coregx/packetizer"
	"github.com/coregx/packetizer/target"
)

func main() {
	targetName := flag.String("target", "dual", "builtin target name or path to a target description")
	programPath := flag.String("program", "", "path to the program file to packetize")
	workers := flag.Int("workers", 0, "blocks packetized at once (0 uses GOMAXPROCS)")
	noCache := flag.Bool("no-cache", false, "disable the DFA transition cache")
	verbose := flag.Bool("v", false, "log packet decisions to stderr")
	listTargets := flag.Bool("list-targets", false, "print the builtin targets and exit")
	flag.Parse()

	if *listTargets {
		out, err := renderTargets(target.BuiltinNames())
		if err != nil {
			die("list targets: %v", err)
		}
		fmt.Println(out)
		return
	}
	if strings.TrimSpace(*programPath) == "" {
		die("-program is required")
	}

	tgt, err := target.Resolve(*targetName)
	if err != nil {
		die("load target: %v", err)
	}
	if *noCache {
		tgt = tgt.WithConfig(tgt.Config().WithCache(false))
	}
	fn, err := tgt.LoadProgram(*programPath)
	if err != nil {
		die("load program: %v", err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stats, err := packetizer.Run(ctx, fn, tgt, packetizer.RunConfig{
		Workers: *workers,
		Logger:  logger.With("target", tgt.Name()),
	})
	if err != nil {
		die("packetize %s: %v", fn.Name, err)
	}

	fmt.Println(renderFunction(tgt, fn))
	fmt.Println(renderStats(stats))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
