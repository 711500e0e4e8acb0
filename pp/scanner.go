// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import (
	"math"
	"strconv"
	"strings"
)

// scanner splits shader source text into preprocessing tokens.
// Newlines are returned as '\n' atoms so directives can find their end.
type scanner struct {
	src  string
	pos  int
	loc  SourceLoc
	errf func(loc SourceLoc, message, token string)
}

func newScanner(src string, loc SourceLoc, errf func(SourceLoc, string, string)) *scanner {
	if loc.Line == 0 {
		loc.Line = 1
	}
	if loc.Column == 0 {
		loc.Column = 1
	}
	return &scanner{src: src, loc: loc, errf: errf}
}

func (s *scanner) error(loc SourceLoc, message, token string) {
	if s.errf != nil {
		s.errf(loc, message, token)
	}
}

func (s *scanner) newline() {
	s.loc.Line++
	s.loc.Column = 1
}

// skipContinuations steps over backslash-newline pairs.
func (s *scanner) skipContinuations() {
	for s.pos+1 < len(s.src) && s.src[s.pos] == '\\' {
		switch {
		case s.src[s.pos+1] == '\n':
			s.pos += 2
		case s.src[s.pos+1] == '\r' && s.pos+2 < len(s.src) && s.src[s.pos+2] == '\n':
			s.pos += 3
		default:
			return
		}
		s.newline()
	}
}

func (s *scanner) peek() int {
	s.skipContinuations()
	if s.pos >= len(s.src) {
		return -1
	}
	return int(s.src[s.pos])
}

func (s *scanner) advance() int {
	c := s.peek()
	if c < 0 {
		return c
	}
	s.pos++
	if c == '\n' {
		s.newline()
	} else {
		s.loc.Column++
	}
	return c
}

func (s *scanner) match(c int) bool {
	if s.peek() == c {
		s.advance()
		return true
	}
	return false
}

// scan reads the next token into tok and returns its atom.
//
//nolint:gocyclo,cyclop // One case per operator family
func (s *scanner) scan(tok *Token) Atom {
	*tok = Token{}

	for {
		tok.Loc = s.loc
		c := s.advance()

		switch c {
		case -1:
			return EndOfInput
		case ' ', '\t', '\r', '\v', '\f':
			tok.Space = true
			continue
		case '\n':
			return '\n'
		case '/':
			if s.match('/') {
				for c := s.peek(); c != '\n' && c != -1; c = s.peek() {
					s.advance()
				}
				tok.Space = true
				continue
			}
			if s.match('*') {
				if !s.blockComment() {
					s.error(tok.Loc, "end of input in comment", "")
					return EndOfInput
				}
				tok.Space = true
				continue
			}
			if s.match('=') {
				return AtomDivAssign
			}
			return '/'
		case '+':
			if s.match('+') {
				return AtomIncrement
			}
			if s.match('=') {
				return AtomAddAssign
			}
			return '+'
		case '-':
			if s.match('-') {
				return AtomDecrement
			}
			if s.match('=') {
				return AtomSubAssign
			}
			return '-'
		case '*':
			if s.match('=') {
				return AtomMulAssign
			}
			return '*'
		case '%':
			if s.match('=') {
				return AtomModAssign
			}
			return '%'
		case '<':
			if s.match('<') {
				if s.match('=') {
					return AtomLeftAssign
				}
				return AtomLeft
			}
			if s.match('=') {
				return AtomLE
			}
			return '<'
		case '>':
			if s.match('>') {
				if s.match('=') {
					return AtomRightAssign
				}
				return AtomRight
			}
			if s.match('=') {
				return AtomGE
			}
			return '>'
		case '=':
			if s.match('=') {
				return AtomEQ
			}
			return '='
		case '!':
			if s.match('=') {
				return AtomNE
			}
			return '!'
		case '&':
			if s.match('&') {
				return AtomAnd
			}
			if s.match('=') {
				return AtomAndAssign
			}
			return '&'
		case '|':
			if s.match('|') {
				return AtomOr
			}
			if s.match('=') {
				return AtomOrAssign
			}
			return '|'
		case '^':
			if s.match('^') {
				return AtomXor
			}
			if s.match('=') {
				return AtomXorAssign
			}
			return '^'
		case ':':
			if s.match(':') {
				return AtomColonColon
			}
			return ':'
		case '#':
			if s.match('#') {
				return AtomPaste
			}
			return '#'
		case '.':
			if isDigit(s.peek()) {
				return s.number('.', tok)
			}
			return '.'
		case '"':
			return s.str(tok)
		}

		switch {
		case isDigit(c):
			return s.number(c, tok)
		case isIdentStart(c):
			return s.identifier(c, tok)
		case c > int(maxSingleAtom):
			s.error(tok.Loc, "invalid character", string(rune(c)))
			return AtomBadToken
		}
		return Atom(c)
	}
}

func (s *scanner) blockComment() bool {
	for {
		c := s.advance()
		if c == -1 {
			return false
		}
		if c == '*' && s.match('/') {
			return true
		}
	}
}

func (s *scanner) identifier(first int, tok *Token) Atom {
	var sb strings.Builder
	sb.WriteByte(byte(first))
	tooLong := false
	for isIdentPart(s.peek()) {
		c := s.advance()
		if sb.Len() < MaxTokenLength {
			sb.WriteByte(byte(c))
		} else {
			tooLong = true
		}
	}
	if tooLong {
		s.error(tok.Loc, "name too long", "")
	}
	tok.Name = sb.String()
	return AtomIdentifier
}

func (s *scanner) str(tok *Token) Atom {
	var sb strings.Builder
	for {
		c := s.peek()
		if c == -1 || c == '\n' {
			s.error(tok.Loc, "end of line in string", "string")
			tok.Name = sb.String()
			return AtomConstString
		}
		s.advance()
		if c == '"' {
			break
		}
		if sb.Len() < MaxTokenLength {
			sb.WriteByte(byte(c))
		}
	}
	tok.Name = sb.String()
	return AtomConstString
}

// number scans an integer or floating-point literal whose first character
// has already been consumed.
//
//nolint:gocognit,gocyclo,cyclop // Literal grammar has many suffix forms
func (s *scanner) number(first int, tok *Token) Atom {
	var digits strings.Builder
	digits.WriteByte(byte(first))

	if first == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		digits.WriteByte(byte(s.advance()))
		start := digits.Len()
		for isHexDigit(s.peek()) {
			digits.WriteByte(byte(s.advance()))
		}
		if digits.Len() == start {
			s.error(tok.Loc, "bad digit in hexadecimal literal", "")
		}
		text := digits.String()
		value, err := strconv.ParseUint(text[2:], 16, 64)
		overflow := err != nil && digits.Len() > start
		return s.intSuffix(tok, text, value, overflow, &digits)
	}

	isFloat := first == '.'
	for isDigit(s.peek()) {
		digits.WriteByte(byte(s.advance()))
	}
	if !isFloat && s.peek() == '.' {
		isFloat = true
		digits.WriteByte(byte(s.advance()))
		for isDigit(s.peek()) {
			digits.WriteByte(byte(s.advance()))
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		isFloat = true
		digits.WriteByte(byte(s.advance()))
		if s.peek() == '+' || s.peek() == '-' {
			digits.WriteByte(byte(s.advance()))
		}
		if !isDigit(s.peek()) {
			s.error(tok.Loc, "bad character in float exponent", "")
		}
		for isDigit(s.peek()) {
			digits.WriteByte(byte(s.advance()))
		}
	}

	if !isFloat && (s.peek() == 'f' || s.peek() == 'F') {
		isFloat = true
	}

	if isFloat {
		return s.floatSuffix(tok, &digits)
	}

	text := digits.String()
	var value uint64
	var err error
	if len(text) > 1 && text[0] == '0' {
		value, err = strconv.ParseUint(text[1:], 8, 64)
		if err != nil && strings.ContainsAny(text, "89") {
			s.error(tok.Loc, "bad digit in octal literal", text)
			err = nil
		}
	} else {
		value, err = strconv.ParseUint(text, 10, 64)
	}
	return s.intSuffix(tok, text, value, err != nil, &digits)
}

func (s *scanner) intSuffix(tok *Token, text string, value uint64, overflow bool, spelling *strings.Builder) Atom {
	unsigned, is64, is16 := false, false, false
	switch c := s.peek(); c {
	case 'u', 'U':
		unsigned = true
		spelling.WriteByte(byte(s.advance()))
		switch s.peek() {
		case 'l', 'L':
			is64 = true
			spelling.WriteByte(byte(s.advance()))
		case 's', 'S':
			is16 = true
			spelling.WriteByte(byte(s.advance()))
		}
	case 'l', 'L':
		is64 = true
		spelling.WriteByte(byte(s.advance()))
	case 's', 'S':
		is16 = true
		spelling.WriteByte(byte(s.advance()))
	}

	tok.Name = spelling.String()
	tok.Value = value

	switch {
	case is64:
		if overflow {
			s.error(tok.Loc, "64-bit integer literal too big", text)
		}
		if unsigned {
			return AtomConstUint64
		}
		return AtomConstInt64
	case is16:
		if overflow || value > math.MaxUint16 {
			s.error(tok.Loc, "16-bit integer literal too big", text)
		}
		if unsigned {
			tok.Value = uint64(uint16(value))
			return AtomConstUint16
		}
		tok.Value = uint64(int64(int16(value)))
		return AtomConstInt16
	}

	if overflow || value > math.MaxUint32 {
		s.error(tok.Loc, "integer literal too big", text)
	}
	if unsigned {
		tok.Value = uint64(uint32(value))
		return AtomConstUint
	}
	tok.Value = uint64(int64(int32(uint32(value))))
	return AtomConstInt
}

func (s *scanner) floatSuffix(tok *Token, spelling *strings.Builder) Atom {
	text := spelling.String()
	atom := AtomConstFloat
	switch s.peek() {
	case 'f', 'F':
		spelling.WriteByte(byte(s.advance()))
	case 'l', 'L':
		spelling.WriteByte(byte(s.advance()))
		if s.peek() == 'f' || s.peek() == 'F' {
			spelling.WriteByte(byte(s.advance()))
			atom = AtomConstDouble
		} else {
			s.error(tok.Loc, "l suffix must be followed by f", "")
		}
	case 'h', 'H':
		spelling.WriteByte(byte(s.advance()))
		if s.peek() == 'f' || s.peek() == 'F' {
			spelling.WriteByte(byte(s.advance()))
			atom = AtomConstFloat16
		} else {
			s.error(tok.Loc, "h suffix must be followed by f", "")
		}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !isRangeError(err) {
		s.error(tok.Loc, "bad float literal", text)
	}
	tok.Name = spelling.String()
	tok.Value = math.Float64bits(value)
	return atom
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func isDigit(c int) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c int) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }

func isIdentStart(c int) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c int) bool { return isIdentStart(c) || isDigit(c) }
