// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import (
	"fmt"
	"math"
	"strconv"
)

// MaxTokenLength is the longest name a token may carry.
const MaxTokenLength = 1024

// SourceLoc identifies a position in the shader source.
type SourceLoc struct {
	Name   string // Source file name, if known
	Source int    // Index of the source string
	Line   int
	Column int
}

// String formats the location as name:line:column, or string:line:column
// when no name is known.
func (l SourceLoc) String() string {
	if l.Name != "" {
		return fmt.Sprintf("%s:%d:%d", l.Name, l.Line, l.Column)
	}
	return fmt.Sprintf("%d:%d:%d", l.Source, l.Line, l.Column)
}

// Token is a single preprocessing token.
//
// Name is set only for atoms where SaveName is true. Value is set only for
// atoms where SaveValue is true; floating-point literals store the IEEE bits
// of their float64 value.
type Token struct {
	Atom  Atom
	Name  string
	Value uint64
	Space bool // Preceded by white space
	Loc   SourceLoc
}

// Int64 returns the payload as a signed integer.
func (t Token) Int64() int64 { return int64(t.Value) }

// Uint64 returns the payload as an unsigned integer.
func (t Token) Uint64() uint64 { return t.Value }

// Float64 returns the payload of a floating-point literal.
func (t Token) Float64() float64 { return math.Float64frombits(t.Value) }

// Text returns the spelling of the token.
func (t Token) Text() string {
	if SaveName(t.Atom) {
		if t.Atom == AtomConstString {
			return strconv.Quote(t.Name)
		}
		return t.Name
	}
	if t.Atom >= 0 && t.Atom <= maxSingleAtom {
		return string(rune(t.Atom))
	}
	if s, ok := operatorSpellings[t.Atom]; ok {
		return s
	}
	return ""
}

// equal reports whether two tokens have the same atom, spelling, value and
// spacing. Locations are ignored.
func (t Token) equal(o Token) bool {
	return t.Atom == o.Atom && t.Name == o.Name && t.Value == o.Value && t.Space == o.Space
}

func intToken(value int, loc SourceLoc) Token {
	return Token{
		Atom:  AtomConstInt,
		Name:  strconv.Itoa(value),
		Value: uint64(int64(value)),
		Loc:   loc,
	}
}
