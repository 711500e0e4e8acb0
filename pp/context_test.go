package pp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preprocess runs src through a Context and joins the output spellings with
// single spaces.
func preprocess(t *testing.T, src string, opts Options) (string, *Context) {
	t.Helper()
	c := NewContext(src, opts)
	toks, _ := c.Tokenize()
	words := make([]string, len(toks))
	for i, tok := range toks {
		words[i] = tok.Text()
	}
	return strings.Join(words, " "), c
}

func messages(c *Context, severity Severity) []string {
	var out []string
	for _, d := range c.Diagnostics() {
		if d.Severity == severity {
			out = append(out, d.Message)
		}
	}
	return out
}

func TestMacroExpansion(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"object", "#define X 1\nX + X\n", "1 + 1"},
		{"function", "#define ADD(a, b) ((a) + (b))\nADD(1, 2)\n", "( ( 1 ) + ( 2 ) )"},
		{"nested argument", "#define ONE 1\n#define ID(x) x\nID(ONE)\n", "1"},
		{"parenthesized argument", "#define F(x) [x]\nF((1, 2))\n", "[ ( 1 , 2 ) ]"},
		{"self reference", "#define foo foo + 1\nfoo\n", "foo + 1"},
		{"chained", "#define A B\n#define B 7\nA\n", "7"},
		{"function name alone", "#define F(x) x\nF + 1\n", "F + 1"},
		{"empty parameter list", "#define F() 3\nF()\n", "3"},
		{"arguments across lines", "#define F(a, b) a b\nF(1,\n 2)\n", "1 2"},
		{"paste identifiers", "#define CAT(a, b) a ## b\nCAT(foo, bar)\n", "foobar"},
		{"paste in body", "#define V x ## 1\nV\n", "x1"},
		{"paste numbers", "#define N(a) a ## 0\nN(1)\n", "10"},
		{"paste result expands", "#define AB 5\n#define CAT(a, b) a ## b\nCAT(A, B)\n", "5"},
		{"pasted argument not expanded", "#define X 9\n#define P(a) a ## _x\nP(X)\n", "X_x"},
		{"paste empty right argument", "#define CAT(a, b) a ## b\nCAT(x, ) + 1\n", "x + 1"},
		{"paste empty left argument", "#define CAT(a, b) a ## b\nCAT(, y)\n", "y"},
		{"paste both arguments empty", "#define CAT(a, b) a ## b\nCAT(,) z\n", "z"},
		{"paste empty middle argument", "#define CAT3(a, b, c) a ## b ## c\nCAT3(x, , z)\n", "xz"},
		{"undef", "#define X 1\n#undef X\nX\n", "X"},
		{"predefined", "__LINE__\n__VERSION__\n", "1 450"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, c := preprocess(t, tt.src, Options{Version: 450})
			assert.Empty(t, messages(c, SeverityError))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPastedNumberValue(t *testing.T) {
	c := NewContext("#define N(a) a ## 0\nN(1)\n", Options{Version: 450})
	toks, err := c.Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, AtomConstInt, toks[0].Atom)
	assert.Equal(t, int64(10), toks[0].Int64())
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"if true", "#define A 2\n#if A > 1 && defined(A)\nyes\n#else\nno\n#endif\n", "yes"},
		{"if false", "#if 0\nyes\n#else\nno\n#endif\n", "no"},
		{"elif", "#if 0\na\n#elif 1\nb\n#else\nc\n#endif\n", "b"},
		{"elif after taken branch", "#if 1\na\n#elif 1\nb\n#endif\n", "a"},
		{"ifdef", "#define X\n#ifdef X\nx\n#endif\n#ifndef X\ny\n#endif\n", "x"},
		{"nested skip", "#ifdef NOPE\n#if 1\nx\n#endif\ny\n#endif\nz\n", "z"},
		{"undefined is zero", "#if UNKNOWN\na\n#else\nb\n#endif\n", "b"},
		{"precedence", "#if 1 + 2 * 3 == 7 && (8 >> 1) == 4 && -1 < 0 && !0 && ~0 == -1\nok\n#endif\n", "ok"},
		{"defined without parens", "#define Q\n#if defined Q || 0\nq\n#endif\n", "q"},
		{"short circuit", "#if 0 && (1 / 0)\na\n#else\nb\n#endif\n", "b"},
		{"core profile", "#ifdef GL_core_profile\ncore\n#endif\n", "core"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, c := preprocess(t, tt.src, Options{})
			assert.Empty(t, messages(c, SeverityError))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		want string
	}{
		{"else after else", "#if 1\n#else\n#else\n#endif\n", Options{}, "#else after #else"},
		{"mismatched endif", "#endif\n", Options{}, "mismatched statements"},
		{"missing endif", "#if 1\nx\n", Options{}, "missing #endif"},
		{"division by zero", "#if 1 / 0\n#endif\n", Options{}, "division by 0"},
		{"bad expression", "#if\n#endif\n", Options{}, "bad expression"},
		{"es undefined macro", "#if UNDEFINED_THING\n#endif\n", Options{ES: true, Version: 300}, "undefined macro in expression not allowed in es profile"},
		{"too few args", "#define F(a, b) a\nF(1)\n", Options{}, "Too few args in Macro"},
		{"too many args", "#define F(a) a\nF(1, 2)\n", Options{}, "Too many args in macro"},
		{"end of input in macro", "#define F(a) a\nF(1", Options{}, "End of input in macro"},
		{"redefinition", "#define A 1\n#define A 2\n", Options{}, "Macro redefined; different substitutions:"},
		{"redefinition arity", "#define A(x) x\n#define A(x, y) x\n", Options{}, "Macro redefined; different number of arguments:"},
		{"duplicate parameter", "#define F(a, a) a\n", Options{}, "duplicate macro parameter"},
		{"reserved prefix", "#define GL_FOO 1\n", Options{}, `names beginning with "GL_" can't be (un)defined: GL_FOO`},
		{"directive after token", "a # define X\n", Options{}, "preprocessor directive cannot be preceded by another token"},
		{"version not first", "int x;\n#version 450\n", Options{}, "must occur first in shader"},
		{"bad profile", "#version 450 fancy\n", Options{}, "bad profile name; use es, core, or compatibility"},
		{"error directive", "#error bad thing\n", Options{}, "bad thing"},
		{"invalid directive", "#frobnicate\n", Options{}, "invalid directive:"},
		{"invalid paste", "#define P(a, b) a ## b\nP(+, /)\n", Options{}, "combined token is invalid"},
		{"leading paste", "#define Q ## x\nQ\n", Options{}, "unexpected location"},
		{"bad extension behavior", "#extension GL_EXT_foo : maybe\n", Options{}, "behavior not supported:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := preprocess(t, tt.src, tt.opts)
			assert.Contains(t, messages(c, SeverityError), tt.want)
		})
	}
}

func TestPastingRequiresVersion(t *testing.T) {
	src := "#define CAT(a, b) a ## b\nCAT(x, y)\n"

	_, old := preprocess(t, src, Options{Version: 120})
	assert.Contains(t, messages(old, SeverityError), "token pasting (##) requires version 130 (non-ES) or 300 (ES)")

	got, es := preprocess(t, src, Options{Version: 300, ES: true})
	assert.Empty(t, es.Diagnostics())
	assert.Equal(t, "xy", got)
}

func TestIdenticalRedefinitionIsAllowed(t *testing.T) {
	_, c := preprocess(t, "#define A 1 + 2\n#define A 1  +  2\nA\n", Options{})
	assert.Empty(t, c.Diagnostics())
}

func TestReservedUnderscoreWarning(t *testing.T) {
	got, c := preprocess(t, "#define a__b 1\na__b\n", Options{})
	assert.Equal(t, "1", got)
	assert.Empty(t, messages(c, SeverityError))
	assert.Len(t, messages(c, SeverityWarning), 1)

	_, es := preprocess(t, "#define a__b 1\n", Options{ES: true})
	assert.Len(t, messages(es, SeverityError), 1)
}

func TestTokenizeReturnsErrors(t *testing.T) {
	c := NewContext("#error stop\nx\n", Options{})
	toks, err := c.Tokenize()
	require.Error(t, err)

	var list Errors
	require.ErrorAs(t, err, &list)
	assert.True(t, list.HasErrors())
	require.Len(t, toks, 1)
	assert.Equal(t, "x", toks[0].Name)
}

type recordingHandler struct {
	version    int
	profile    string
	extensions map[string]string
	pragmas    [][]string
}

func (h *recordingHandler) Version(_ SourceLoc, version int, profile string) {
	h.version = version
	h.profile = profile
}

func (h *recordingHandler) Extension(_ SourceLoc, name, behavior string) {
	if h.extensions == nil {
		h.extensions = make(map[string]string)
	}
	h.extensions[name] = behavior
}

func (h *recordingHandler) Pragma(_ SourceLoc, tokens []string) {
	h.pragmas = append(h.pragmas, tokens)
}

func TestHandlerDirectives(t *testing.T) {
	h := &recordingHandler{}
	src := "#version 310 es\n#extension GL_EXT_foo : enable\n#pragma optimize(off)\n__VERSION__\n"
	got, c := preprocess(t, src, Options{Handler: h})

	assert.Empty(t, c.Diagnostics())
	assert.Equal(t, "310", got)
	assert.Equal(t, 310, h.version)
	assert.Equal(t, "es", h.profile)
	assert.Equal(t, map[string]string{"GL_EXT_foo": "enable"}, h.extensions)
	assert.Equal(t, [][]string{{"optimize", "(", "off", ")"}}, h.pragmas)
	assert.True(t, c.ES())
	assert.True(t, c.IsDefined("GL_es_profile"))
	assert.False(t, c.IsDefined("GL_core_profile"))
}

func TestLineDirective(t *testing.T) {
	c := NewContext("#version 330\n#line 10\nfoo\n__LINE__\n", Options{})
	toks, err := c.Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, 10, toks[0].Loc.Line)
	assert.Equal(t, int64(11), toks[1].Int64())

	old := NewContext("#line 10\nfoo\n", Options{})
	toks, err = old.Tokenize()
	require.NoError(t, err)
	assert.Equal(t, 11, toks[0].Loc.Line)
}

func TestPredefines(t *testing.T) {
	got, c := preprocess(t, "N * N\n", Options{Predefines: map[string]string{"N": "4"}})
	assert.Empty(t, c.Diagnostics())
	assert.Equal(t, "4 * 4", got)
}

func TestTokenLocations(t *testing.T) {
	c := NewContext("a\n  b", Options{SourceName: "shader.vert"})
	toks, err := c.Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, SourceLoc{Name: "shader.vert", Line: 2, Column: 3}, toks[1].Loc)
	assert.True(t, toks[1].Space)
}

func TestTokenSpaceFlags(t *testing.T) {
	c := NewContext("a b + c\nd(e)  f", Options{})
	toks, err := c.Tokenize()
	require.NoError(t, err)

	var spaces []bool
	for _, tok := range toks {
		spaces = append(spaces, tok.Space)
	}
	assert.Equal(t, []bool{false, true, true, true, false, false, false, false, true}, spaces)
}
