// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import "strconv"

// Atom identifies the lexical category of a token.
//
// Single-character operators use their character code as the atom.
// Everything else has a named atom above maxSingleAtom.
type Atom int

const (
	// EndOfInput is returned when a source or stream is exhausted.
	EndOfInput Atom = -1

	// atomMarker terminates a pushed macro argument during prescan.
	atomMarker Atom = -3

	// atomPlacemarker stands for an empty argument next to ##.
	atomPlacemarker Atom = -4
)

// AtomSpace is the subtoken recorded in a TokenStream for white space
// preceding a token.
const AtomSpace Atom = ' '

const maxSingleAtom Atom = 127

// Multi-character operators, literals, identifiers and preprocessor keywords.
const (
	AtomBadToken Atom = iota + maxSingleAtom + 1

	AtomAddAssign   // +=
	AtomSubAssign   // -=
	AtomMulAssign   // *=
	AtomDivAssign   // /=
	AtomModAssign   // %=
	AtomRight       // >>
	AtomLeft        // <<
	AtomRightAssign // >>=
	AtomLeftAssign  // <<=
	AtomAndAssign   // &=
	AtomOrAssign    // |=
	AtomXorAssign   // ^=
	AtomAnd         // &&
	AtomOr          // ||
	AtomXor         // ^^
	AtomEQ          // ==
	AtomNE          // !=
	AtomGE          // >=
	AtomLE          // <=
	AtomDecrement   // --
	AtomIncrement   // ++
	AtomColonColon  // ::
	AtomPaste       // ##

	// Literals
	AtomConstInt
	AtomConstUint
	AtomConstInt64
	AtomConstUint64
	AtomConstInt16
	AtomConstUint16
	AtomConstFloat
	AtomConstDouble
	AtomConstFloat16
	AtomConstString

	AtomIdentifier

	// Preprocessor keywords
	AtomDefine
	AtomUndef
	AtomIf
	AtomIfdef
	AtomIfndef
	AtomElse
	AtomElif
	AtomEndif
	AtomLine
	AtomPragma
	AtomError
	AtomVersion
	AtomExtension
	AtomInclude
	AtomDefined

	// Builtin macros
	AtomLineMacro    // __LINE__
	AtomFileMacro    // __FILE__
	AtomVersionMacro // __VERSION__

	atomLast
)

var operatorSpellings = map[Atom]string{
	AtomAddAssign:   "+=",
	AtomSubAssign:   "-=",
	AtomMulAssign:   "*=",
	AtomDivAssign:   "/=",
	AtomModAssign:   "%=",
	AtomRight:       ">>",
	AtomLeft:        "<<",
	AtomRightAssign: ">>=",
	AtomLeftAssign:  "<<=",
	AtomAndAssign:   "&=",
	AtomOrAssign:    "|=",
	AtomXorAssign:   "^=",
	AtomAnd:         "&&",
	AtomOr:          "||",
	AtomXor:         "^^",
	AtomEQ:          "==",
	AtomNE:          "!=",
	AtomGE:          ">=",
	AtomLE:          "<=",
	AtomDecrement:   "--",
	AtomIncrement:   "++",
	AtomColonColon:  "::",
	AtomPaste:       "##",
}

// keywordAtoms maps the spelling of preprocessor keywords and builtin macros
// to their atoms. Identifiers keep AtomIdentifier in the token stream; the
// keyword atom is looked up only where a directive or macro is expected.
var keywordAtoms = map[string]Atom{
	"define":      AtomDefine,
	"undef":       AtomUndef,
	"if":          AtomIf,
	"ifdef":       AtomIfdef,
	"ifndef":      AtomIfndef,
	"else":        AtomElse,
	"elif":        AtomElif,
	"endif":       AtomEndif,
	"line":        AtomLine,
	"pragma":      AtomPragma,
	"error":       AtomError,
	"version":     AtomVersion,
	"extension":   AtomExtension,
	"include":     AtomInclude,
	"defined":     AtomDefined,
	"__LINE__":    AtomLineMacro,
	"__FILE__":    AtomFileMacro,
	"__VERSION__": AtomVersionMacro,
}

// lookupKeyword returns the keyword atom for name, or AtomIdentifier.
func lookupKeyword(name string) Atom {
	if a, ok := keywordAtoms[name]; ok {
		return a
	}
	return AtomIdentifier
}

// SaveName reports whether a token of this atom carries a backing name
// that must be recorded and restored by a TokenStream.
func SaveName(a Atom) bool {
	switch a {
	case AtomIdentifier, AtomConstString,
		AtomConstInt, AtomConstUint, AtomConstInt64, AtomConstUint64,
		AtomConstInt16, AtomConstUint16,
		AtomConstFloat, AtomConstDouble, AtomConstFloat16:
		return true
	default:
		return false
	}
}

// SaveValue reports whether a token of this atom carries a 64-bit numeric
// payload that must be recorded and restored by a TokenStream.
func SaveValue(a Atom) bool {
	switch a {
	case AtomConstInt, AtomConstUint, AtomConstInt64, AtomConstUint64,
		AtomConstInt16, AtomConstUint16,
		AtomConstFloat, AtomConstDouble, AtomConstFloat16:
		return true
	default:
		return false
	}
}

// IsIntegerLiteral reports whether a is one of the integer literal atoms.
func (a Atom) IsIntegerLiteral() bool {
	switch a {
	case AtomConstInt, AtomConstUint, AtomConstInt64, AtomConstUint64,
		AtomConstInt16, AtomConstUint16:
		return true
	}
	return false
}

// IsFloatLiteral reports whether a is one of the floating-point literal atoms.
func (a Atom) IsFloatLiteral() bool {
	return a == AtomConstFloat || a == AtomConstDouble || a == AtomConstFloat16
}

// String returns the spelling of operator atoms and a descriptive name for
// the others.
func (a Atom) String() string {
	switch {
	case a == EndOfInput:
		return "EOF"
	case a == atomMarker:
		return "marker"
	case a == atomPlacemarker:
		return "placemarker"
	case a >= 0 && a <= maxSingleAtom:
		if a == '\n' {
			return "newline"
		}
		return string(rune(a))
	}
	if s, ok := operatorSpellings[a]; ok {
		return s
	}
	switch a {
	case AtomBadToken:
		return "bad token"
	case AtomConstInt:
		return "int literal"
	case AtomConstUint:
		return "uint literal"
	case AtomConstInt64:
		return "int64 literal"
	case AtomConstUint64:
		return "uint64 literal"
	case AtomConstInt16:
		return "int16 literal"
	case AtomConstUint16:
		return "uint16 literal"
	case AtomConstFloat:
		return "float literal"
	case AtomConstDouble:
		return "double literal"
	case AtomConstFloat16:
		return "float16 literal"
	case AtomConstString:
		return "string literal"
	case AtomIdentifier:
		return "identifier"
	}
	for name, kw := range keywordAtoms {
		if kw == a {
			return name
		}
	}
	return "atom(" + strconv.Itoa(int(a)) + ")"
}
