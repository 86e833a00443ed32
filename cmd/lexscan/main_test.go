package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const kvSpec = `
token KEY   = /[a-z]+/;
token EQ    = "=";
token NUM   = /[0-9]+/;
token SPACE = /[ \n]+/;
`

func TestRunFromStdin(t *testing.T) {
	spec := writeFile(t, t.TempDir(), "kv.lex", kvSpec)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-spec", spec, "-log-level", "error"}, strings.NewReader("a=12"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	want := "0\tKEY\t\"a\"\n1\tEQ\t\"=\"\n2\tNUM\t\"12\"\n"
	if stdout.String() != want {
		t.Fatalf("stdout %q", stdout.String())
	}
}

func TestRunFromFile(t *testing.T) {
	dir := t.TempDir()
	spec := writeFile(t, dir, "kv.lex", kvSpec)
	input := writeFile(t, dir, "in.txt", "x = 1\n")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-spec", spec, input}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if n := strings.Count(stdout.String(), "\n"); n != 6 {
		t.Fatalf("want 6 tokens, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), `"msg":"scan finished"`) {
		t.Fatalf("missing summary log: %s", stderr.String())
	}
}

func TestRunScanError(t *testing.T) {
	spec := writeFile(t, t.TempDir(), "kv.lex", kvSpec)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-spec", spec, "-log-level", "error"}, strings.NewReader("a=@"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stderr.String(), "scan:") {
		t.Fatalf("stderr %q", stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "0\tKEY") {
		t.Fatalf("tokens before the error should still print: %q", stdout.String())
	}
}

func TestRunUsageAndLoadErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("missing -spec: exit %d", code)
	}
	if code := run([]string{"-bogus"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("unknown flag: exit %d", code)
	}
	missing := filepath.Join(t.TempDir(), "none.lex")
	if code := run([]string{"-spec", missing}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("missing spec file: exit %d", code)
	}
	spec := writeFile(t, t.TempDir(), "kv.lex", kvSpec)
	if code := run([]string{"-spec", spec, filepath.Join(t.TempDir(), "none.txt")}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("missing input file: exit %d", code)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("%q: got %v", in, got)
		}
	}
}
