package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"grammarlex/internal/lexer"
	"grammarlex/internal/lexerspec"
	"grammarlex/internal/regexlib"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("lexviz", flag.ContinueOnError)
	var patterns []string
	specPath := fs.String("spec", "", "lexeme spec file")
	fs.Func("re", "pattern (repeatable, instead of -spec)", func(s string) error {
		patterns = append(patterns, s)
		return nil
	})
	input := fs.String("input", "", "only build the states visited by this input")
	limit := fs.Int("limit", 512, "max states to explore without -input")
	outFile := fs.String("o", "graph.dot", "output file")
	pngFlag := fs.Bool("png", false, "render PNG via dot -Tpng")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if (*specPath == "") == (len(patterns) == 0) {
		fmt.Fprintln(os.Stderr, "usage: lexviz (-spec <file> | -re <pattern> ...) [-input s] [-limit n] [-o file] [-png]")
		fs.PrintDefaults()
		return 2
	}

	spec := lexerspec.New()
	if *specPath != "" {
		var err error
		spec, err = lexerspec.Load(*specPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load spec: %v\n", err)
			return 1
		}
	} else {
		for i, p := range patterns {
			spec.AddRegex(fmt.Sprintf("re%d", i), p)
		}
	}

	lx, err := lexer.New(spec, lexer.DefaultOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build lexer: %v\n", err)
		return 1
	}
	defer lx.Close()

	vec := lx.Engine()
	start := lx.StartState(lx.VobSet().All(), lexer.NoByte)
	if *input != "" {
		s := vec.TransitionBytes(start, []byte(*input))
		fmt.Fprintf(os.Stderr, "input %q ends in %v\n", *input, s)
	} else {
		n := vec.Explore(start, *limit)
		fmt.Fprintf(os.Stderr, "%d states explored\n", n)
	}

	var buf bytes.Buffer
	regexlib.ExportDOT(&buf, vec, start, spec.Names())

	if err := writeGraph(buf.Bytes(), *outFile, *pngFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// writeGraph stores the DOT source at path, or renders it there with
// Graphviz when png is set. "-" means stdout.
func writeGraph(dot []byte, path string, png bool) error {
	if png {
		cmd := exec.Command("dot", "-Tpng", "-o", path)
		cmd.Stdin = bytes.NewReader(dot)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("dot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "PNG written to %s\n", path)
		return nil
	}
	if path == "-" {
		_, err := os.Stdout.Write(dot)
		return err
	}
	if err := os.WriteFile(path, dot, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "DOT written to %s\n", path)
	return nil
}
