package pp

import (
	"strings"
	"testing"
)

// benchShader exercises macros, pasting and conditionals.
const benchShader = `#version 450 core
#define SQR(x) ((x) * (x))
#define FIELD(n) member_ ## n
#define COUNT 4
#if COUNT > 2 && defined(SQR)
#define BIG 1
#else
#define BIG 0
#endif
struct S { float FIELD(a); float FIELD(b); };
void main() {
    float v = SQR(1.5) + SQR(COUNT) * BIG;
    gl_Position = vec4(v, v, 0.0, 1.0);
}
`

func BenchmarkTokenize(b *testing.B) {
	src := strings.Repeat(benchShader[strings.Index(benchShader, "struct"):], 50)
	src = benchShader[:strings.Index(benchShader, "struct")] + src
	b.SetBytes(int64(len(src)))
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c := NewContext(src, Options{})
		if _, err := c.Tokenize(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenStreamReplay(b *testing.B) {
	ts := NewTokenStream()
	toks, _ := scanAll(benchShader)
	for _, tok := range toks {
		ts.PutToken(tok)
	}
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		r := ts.NewReader()
		n := 0
		for r.GetToken(nil).Atom != EndOfInput {
			n++
		}
		if n != len(toks) {
			b.Fatalf("replayed %d tokens, want %d", n, len(toks))
		}
	}
}
