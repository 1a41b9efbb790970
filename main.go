// Package main provides the sunclock entry point and CLI interface.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cloudeng.io/logging/ctxlog"
	"github.com/devskill-org/sunclock/config"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("sunclock", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	config.RegisterFlags(global)
	help := global.BoolP("help", "h", false, "Show help message")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			showHelp(stdout, global)
			return 0
		}
		return 2
	}
	rest := global.Args()
	if *help || len(rest) == 0 {
		showHelp(stdout, global)
		if *help {
			return 0
		}
		return 2
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		showHelp(stderr, global)
		return 2
	}

	fs := pflag.NewFlagSet(rest[0], pflag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := cmd.flags(fs)
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(global)
	if err != nil {
		fmt.Fprintln(stderr, "Error loading configuration:", err)
		return 1
	}

	logger := cfg.NewLogger(stderr)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger.With("command", rest[0]))

	if err := cmd.run(ctx, cfg, opts, stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		logger.Error("command failed", "command", rest[0], "error", err)
		return 1
	}
	return 0
}

func showHelp(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "sunclock - sunrise, sunset, twilight and solar position for any place on Earth")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  sunclock [OPTIONS] <COMMAND> [COMMAND OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMMANDS:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, global.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  # Today's report for the configured location")
	fmt.Fprintln(w, "  sunclock report")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Report for Cape Town on the winter solstice, as JSON")
	fmt.Fprintln(w, "  sunclock -l -33.9249 -o 18.4241 -d 2022-06-21 -t +02:00 report --json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Live position of the Sun, updated every second")
	fmt.Fprintln(w, "  sunclock poll --watch")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Run a command 30 minutes before sunset")
	fmt.Fprintln(w, "  sunclock wait --event sunset --offset -30m && lights on")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  # Serve reports and the live stream on the configured port")
	fmt.Fprintln(w, "  sunclock serve")
}
