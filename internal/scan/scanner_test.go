package scan

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"grammarlex/internal/lexer"
	"grammarlex/internal/lexerspec"
	"grammarlex/internal/vobset"
)

// ------------------------------------------------------------------- helpers

func build(t *testing.T, spec *lexerspec.Spec) *lexer.Lexer {
	t.Helper()
	lx, err := lexer.New(spec, lexer.DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(lx.Close)
	return lx
}

func render(toks []Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		parts[i] = tok.Name + ":" + tok.Text
	}
	return strings.Join(parts, " ")
}

func miniLang(t *testing.T) *lexer.Lexer {
	t.Helper()
	spec, err := lexerspec.Load("../lexerspec/testdata/minilang.lex")
	if err != nil {
		t.Fatal(err)
	}
	return build(t, spec)
}

// ------------------------------------------------------------------- greedy

func TestTokenizeGreedy(t *testing.T) {
	lx := miniLang(t)
	toks, err := Tokenize(lx, []byte(`while (whilex <= 3.14) if "a\"b";`))
	if err != nil {
		t.Fatal(err)
	}
	want := `KW_WHILE:while SPACE:  PUNCT:( IDENT:whilex SPACE:  OP:<= SPACE:  NUMBER:3.14 PUNCT:) SPACE:  KW_IF:if SPACE:  STRING:"a\"b" PUNCT:;`
	if got := render(toks); got != want {
		t.Fatalf("\nwant %s\ngot  %s", want, got)
	}
}

func TestOffsets(t *testing.T) {
	lx := miniLang(t)
	toks, err := Tokenize(lx, []byte("ab 12"))
	if err != nil {
		t.Fatal(err)
	}
	offs := []int{0, 2, 3}
	if len(toks) != len(offs) {
		t.Fatalf("tokens %s", render(toks))
	}
	for i, tok := range toks {
		if tok.Offset != offs[i] {
			t.Fatalf("token %d at %d, want %d", i, tok.Offset, offs[i])
		}
	}
}

func TestStopBytesAreReplayed(t *testing.T) {
	lx := miniLang(t)
	toks, err := Tokenize(lx, []byte("// note\nx"))
	if err != nil {
		t.Fatal(err)
	}
	if got := render(toks); got != "COMMENT:// note SPACE:\n IDENT:x" {
		t.Fatalf("got %q", got)
	}
	if toks[0].Hidden != 1 {
		t.Fatalf("comment hidden %d", toks[0].Hidden)
	}
}

func TestCloseChoosesLowestAllowed(t *testing.T) {
	lx := miniLang(t)
	toks, err := Tokenize(lx, []byte("x while"))
	if err != nil {
		t.Fatal(err)
	}
	last := toks[len(toks)-1]
	if last.Name != "KW_WHILE" || last.Text != "while" {
		t.Fatalf("last token %+v", last)
	}
}

func TestCloseUnfinishedLexeme(t *testing.T) {
	lx := miniLang(t)
	toks, err := Tokenize(lx, []byte(`x "abc`))
	var se *Error
	if !errors.As(err, &se) || !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("got %v", err)
	}
	if se.Offset != 6 {
		t.Fatalf("offset %d", se.Offset)
	}
	if render(toks) != "IDENT:x SPACE: " {
		t.Fatalf("tokens %q", render(toks))
	}
}

func TestCloseBodyWithoutStop(t *testing.T) {
	lx := miniLang(t)
	toks, err := Tokenize(lx, []byte("// trailing"))
	if err != nil {
		t.Fatal(err)
	}
	if got := render(toks); got != "COMMENT:// trailing" {
		t.Fatalf("got %q", got)
	}
}

func TestNoMatch(t *testing.T) {
	lx := miniLang(t)
	_, err := Tokenize(lx, []byte("a @"))
	var se *Error
	if !errors.As(err, &se) || !errors.Is(err, ErrNoMatch) {
		t.Fatalf("got %v", err)
	}
	if se.Offset != 2 || se.Byte != '@' {
		t.Fatalf("error at %d %q", se.Offset, se.Byte)
	}
}

func TestEmptyInput(t *testing.T) {
	toks, err := Tokenize(miniLang(t), nil)
	if err != nil || len(toks) != 0 {
		t.Fatalf("%v %v", toks, err)
	}
}

func TestNoProgress(t *testing.T) {
	spec := lexerspec.New()
	spec.AddRegex("A", "a*")
	_, err := Tokenize(build(t, spec), []byte("b"))
	if !errors.Is(err, ErrNoProgress) {
		t.Fatalf("got %v", err)
	}
}

func TestHighByteIsInput(t *testing.T) {
	spec := lexerspec.New()
	spec.AddRegex("A", "a")
	spec.AddRegex("FF", `\xff`)
	toks, err := Tokenize(build(t, spec), []byte("a\xffa"))
	if err != nil {
		t.Fatal(err)
	}
	if got := render(toks); got != "A:a FF:\xff A:a" {
		t.Fatalf("got %q", got)
	}
}

func TestHiddenIsWinnersStop(t *testing.T) {
	spec := lexerspec.New()
	spec.AddRegex("C", "ab")
	spec.AddStop("D", "a", "bc")
	spec.AddRegex("B", "b")
	spec.AddRegex("Q", "q")
	toks, err := Tokenize(build(t, spec), []byte("abq"))
	if err != nil {
		t.Fatal(err)
	}
	if got := render(toks); got != "C:ab Q:q" {
		t.Fatalf("got %q", got)
	}
	if toks[0].Hidden != 0 {
		t.Fatalf("C hidden %d", toks[0].Hidden)
	}
}

// ------------------------------------------------------------------- lazy

func TestTokenizeLazy(t *testing.T) {
	spec := lexerspec.New()
	spec.Greedy = false
	spec.AddStop("FIELD", "[^,\n]+", ",")
	spec.AddRegex("NL", "\n")
	spec.AddRegex("COMMA", ",")
	toks, err := Tokenize(build(t, spec), []byte("a,bc,\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := render(toks); got != "FIELD:a COMMA:, FIELD:bc COMMA:, NL:\n" {
		t.Fatalf("got %q", got)
	}
}

// ------------------------------------------------------------------- streaming

func TestStreamingMatchesOneShot(t *testing.T) {
	lx := miniLang(t)
	input := `while (n1 != 0) { n1 = n1 - 1; } // done` + "\n"
	want, err := Tokenize(lx, []byte(input))
	if err != nil {
		t.Fatal(err)
	}

	s := New(lx, Options{})
	if _, err := io.Copy(s, iotest.OneByteReader(strings.NewReader(input))); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if render(s.Tokens()) != render(want) {
		t.Fatalf("\nstream  %s\noneshot %s", render(s.Tokens()), render(want))
	}
}

func TestStickyErrorAndClosed(t *testing.T) {
	lx := miniLang(t)
	s := New(lx, Options{})
	if _, err := s.Write([]byte("@")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Write([]byte("x")); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("error not sticky: %v", err)
	}

	s = New(lx, Options{})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v", err)
	}
}

// ------------------------------------------------------------------- allowed sets

func TestAllowedCallback(t *testing.T) {
	spec := lexerspec.New()
	key := spec.AddRegex("KEY", "[a-z]+")
	eq := spec.AddLiteral("EQ", "=")
	val := spec.AddRegex("VAL", "[a-z0-9]+")
	lx := build(t, spec)
	vs := lx.VobSet()

	s := New(lx, Options{Allowed: func(prev []Token) vobset.AllowedSet {
		if len(prev) == 0 {
			return vs.Of(int(key))
		}
		switch prev[len(prev)-1].Idx {
		case key:
			return vs.Of(int(eq))
		case eq:
			return vs.Of(int(val))
		}
		return vs.Empty()
	}})
	if _, err := s.Write([]byte("abc=abc")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if got := render(s.Tokens()); got != "KEY:abc EQ:= VAL:abc" {
		t.Fatalf("got %q", got)
	}
}
