package pp

import (
	"math"
	"strings"
	"testing"
)

func scanAll(src string) ([]Token, []string) {
	var errs []string
	s := newScanner(src, SourceLoc{}, func(_ SourceLoc, msg, _ string) { errs = append(errs, msg) })
	var toks []Token
	for {
		var tok Token
		atom := s.scan(&tok)
		if atom == EndOfInput {
			break
		}
		tok.Atom = atom
		toks = append(toks, tok)
	}
	return toks, errs
}

func TestScannerLiterals(t *testing.T) {
	tests := []struct {
		input string
		atom  Atom
		name  string
		value uint64
	}{
		{"123", AtomConstInt, "123", 123},
		{"0x1Fu", AtomConstUint, "0x1Fu", 31},
		{"017", AtomConstInt, "017", 15},
		{"5000000000l", AtomConstInt64, "5000000000l", 5000000000},
		{"7ul", AtomConstUint64, "7ul", 7},
		{"10s", AtomConstInt16, "10s", 10},
		{"10us", AtomConstUint16, "10us", 10},
		{"4294967295", AtomConstInt, "4294967295", math.MaxUint64},
		{"1.5", AtomConstFloat, "1.5", math.Float64bits(1.5)},
		{"2.0lf", AtomConstDouble, "2.0lf", math.Float64bits(2)},
		{"1.0hf", AtomConstFloat16, "1.0hf", math.Float64bits(1)},
		{"1e3", AtomConstFloat, "1e3", math.Float64bits(1000)},
		{".5", AtomConstFloat, ".5", math.Float64bits(0.5)},
		{"3f", AtomConstFloat, "3f", math.Float64bits(3)},
		{`"hi there"`, AtomConstString, "hi there", 0},
	}

	for _, tt := range tests {
		toks, errs := scanAll(tt.input)
		if len(errs) != 0 {
			t.Errorf("%q: unexpected errors %v", tt.input, errs)
			continue
		}
		if len(toks) != 1 {
			t.Errorf("%q: expected 1 token, got %d", tt.input, len(toks))
			continue
		}
		tok := toks[0]
		if tok.Atom != tt.atom || tok.Name != tt.name || tok.Value != tt.value {
			t.Errorf("%q: got %v %q %#x, want %v %q %#x", tt.input, tok.Atom, tok.Name, tok.Value, tt.atom, tt.name, tt.value)
		}
	}
}

func TestScannerLiteralErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"4294967296", "integer literal too big"},
		{"70000s", "16-bit integer literal too big"},
		{"99999999999999999999l", "64-bit integer literal too big"},
		{"08", "bad digit in octal literal"},
		{"0x", "bad digit in hexadecimal literal"},
		{"1e+", "bad character in float exponent"},
		{"1.0l", "l suffix must be followed by f"},
		{"1.0h", "h suffix must be followed by f"},
		{"\"open", "end of line in string"},
		{"/* never closed", "end of input in comment"},
	}

	for _, tt := range tests {
		_, errs := scanAll(tt.input)
		found := false
		for _, e := range errs {
			if e == tt.msg {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: expected error %q, got %v", tt.input, tt.msg, errs)
		}
	}
}

func TestScannerOperators(t *testing.T) {
	toks, errs := scanAll("<<= >>= ## # :: ++ -- && || ^^ == != <= >= += -= *= /= %= &= |= ^=")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	expected := []Atom{
		AtomLeftAssign, AtomRightAssign, AtomPaste, '#', AtomColonColon,
		AtomIncrement, AtomDecrement, AtomAnd, AtomOr, AtomXor,
		AtomEQ, AtomNE, AtomLE, AtomGE, AtomAddAssign, AtomSubAssign,
		AtomMulAssign, AtomDivAssign, AtomModAssign, AtomAndAssign,
		AtomOrAssign, AtomXorAssign,
	}
	if len(toks) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(toks))
	}
	for i, tok := range toks {
		if tok.Atom != expected[i] {
			t.Errorf("token %d: expected %v, got %v", i, expected[i], tok.Atom)
		}
		if tok.Text() != expected[i].String() {
			t.Errorf("token %d: spelling %q, want %q", i, tok.Text(), expected[i].String())
		}
	}
}

func TestScannerSpacingAndLines(t *testing.T) {
	toks, _ := scanAll("a /* c */ b\\\nc\n// line\nd")
	var got []string
	for _, tok := range toks {
		got = append(got, tok.Text())
	}
	if strings.Join(got, "|") != "a|bc|\n|\n|d" {
		t.Fatalf("unexpected tokens %q", got)
	}
	if toks[0].Space {
		t.Error("first token should not have leading space")
	}
	if !toks[1].Space {
		t.Error("token after comment should have leading space")
	}
	if toks[4].Loc.Line != 4 {
		t.Errorf("d: expected line 4, got %d", toks[4].Loc.Line)
	}
}

func TestScannerLongName(t *testing.T) {
	toks, errs := scanAll(strings.Repeat("x", MaxTokenLength+10))
	if len(errs) != 1 || errs[0] != "name too long" {
		t.Fatalf("expected name too long, got %v", errs)
	}
	if len(toks[0].Name) != MaxTokenLength {
		t.Errorf("name length %d, want %d", len(toks[0].Name), MaxTokenLength)
	}
}
