package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"grammarlex/internal/lexer"
	"grammarlex/internal/lexerspec"
	"grammarlex/internal/scan"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup happens before
// main exits.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lexscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	specPath := fs.String("spec", "", "lexeme spec file (required)")
	level := fs.String("log-level", getEnv("GRAMMARLEX_LOG_LEVEL", "info"), "debug, info, warn or error")
	trace := fs.Bool("trace", false, "log every lexer transition (needs -log-level debug)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *specPath == "" || fs.NArg() > 1 {
		fmt.Fprintln(stderr, "usage: lexscan -spec <file> [-log-level L] [-trace] [input]")
		fs.PrintDefaults()
		return 2
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{
		Level: parseLogLevel(*level),
	}))

	spec, err := lexerspec.Load(*specPath)
	if err != nil {
		fmt.Fprintf(stderr, "load spec: %v\n", err)
		return 1
	}

	opts := lexer.DefaultOptions()
	opts.Logger = logger
	lx, err := lexer.New(spec, opts)
	if err != nil {
		fmt.Fprintf(stderr, "build lexer: %v\n", err)
		return 1
	}
	defer lx.Close()

	logger.Info("lexer ready",
		"version", Version,
		"spec", *specPath,
		"lexemes", spec.Len(),
		"greedy", spec.Greedy,
	)

	in := stdin
	if fs.NArg() == 1 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "open input: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	sc := scan.New(lx, scan.Options{Logger: logger, Trace: *trace})
	_, err = io.Copy(sc, bufio.NewReader(in))
	if err == nil {
		err = sc.Close()
	}

	out := bufio.NewWriter(stdout)
	for _, tok := range sc.Tokens() {
		fmt.Fprintf(out, "%d\t%s\t%q\n", tok.Offset, tok.Name, tok.Text)
	}
	out.Flush()

	logger.Info("scan finished", "tokens", len(sc.Tokens()), "dfa_states", lx.Engine().NumStates())
	if lx.Engine().Exhausted() {
		logger.Warn("state table limit reached; some transitions were cut off")
	}
	if err != nil {
		fmt.Fprintf(stderr, "scan: %v\n", err)
		return 1
	}
	return 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
