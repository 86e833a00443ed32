package lexerspec

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"grammarlex/internal/regexlib"
)

// The spec file format:
//
//	# comment
//	mode greedy;                       # or: mode lazy;
//	token KW_WHILE = "while";          # literal
//	token IDENT    = /[a-z]+/;         # regex
//	token LINE     = /[^\n]*/ stop "\n";
type specFile struct {
	Entries []*entry `parser:"@@*"`
}

type entry struct {
	Mode  *modeDecl  `parser:"  @@ ';'"`
	Token *tokenDecl `parser:"| @@ ';'"`
}

type modeDecl struct {
	Pos  lexer.Position
	Mode string `parser:"'mode' @('greedy' | 'lazy')"`
}

type tokenDecl struct {
	Pos     lexer.Position
	Name    string  `parser:"'token' @Ident '='"`
	Literal *string `parser:"( @String"`
	Regex   *string `parser:"| @Regex )"`
	Stop    *string `parser:"( 'stop' @String )?"`
}

var specLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Regex", Pattern: `/(\\.|[^/\\\n])*/`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[=;]`},
})

var specParser = participle.MustBuild[specFile](
	participle.Lexer(specLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.Map(stripSlashes, "Regex"),
)

// stripSlashes turns /a\/b/ into a/b. Other escapes are left for the regex
// parser.
func stripSlashes(t lexer.Token) (lexer.Token, error) {
	body := t.Value[1 : len(t.Value)-1]
	t.Value = strings.ReplaceAll(body, `\/`, `/`)
	return t, nil
}

// Parse reads a spec from src. filename is only used in error positions.
func Parse(filename, src string) (*Spec, error) {
	file, err := specParser.ParseString(filename, src)
	if err != nil {
		return nil, err
	}
	spec := New()
	modeSet := false
	for _, e := range file.Entries {
		switch {
		case e.Mode != nil:
			if modeSet {
				return nil, fmt.Errorf("%s: mode declared twice", e.Mode.Pos)
			}
			modeSet = true
			spec.Greedy = e.Mode.Mode == "greedy"
		case e.Token != nil:
			t := e.Token
			rx := ""
			if t.Literal != nil {
				rx = regexlib.QuoteRegex(*t.Literal)
			} else {
				rx = *t.Regex
			}
			stop := ""
			if t.Stop != nil {
				if *t.Stop == "" {
					return nil, fmt.Errorf("%s: token %s: empty stop string", t.Pos, t.Name)
				}
				stop = *t.Stop
			}
			spec.add(Lexeme{Name: t.Name, Rx: rx, Stop: stop})
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return spec, nil
}

// Load parses the spec file at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(data))
}
