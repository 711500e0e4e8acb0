// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import (
	"bytes"
	"encoding/binary"
)

// TokenStream records tokens into a byte buffer for later playback.
//
// Each token is serialized as its atom (uvarint), followed by its
// zero-terminated name when SaveName(atom) holds, followed by its 8-byte
// little-endian value when SaveValue(atom) holds. White space before a token
// is recorded as a separate AtomSpace subtoken.
//
// The stream carries one read cursor. Recording and replay through the stream
// itself must not overlap with other goroutines; NewReader gives each replay
// its own cursor over the same bytes.
type TokenStream struct {
	data []byte
	rd   StreamReader
}

// NewTokenStream returns an empty stream in record mode.
func NewTokenStream() *TokenStream {
	ts := &TokenStream{}
	ts.rd.ts = ts
	return ts
}

// PutToken appends tok to the end of the stream.
func (ts *TokenStream) PutToken(tok Token) {
	if tok.Space || tok.Atom == AtomSpace {
		ts.putAtom(AtomSpace)
		if tok.Atom == AtomSpace {
			return
		}
	}

	ts.putAtom(tok.Atom)

	if SaveName(tok.Atom) {
		ts.data = append(ts.data, tok.Name...)
		ts.data = append(ts.data, 0)
	}

	if SaveValue(tok.Atom) {
		ts.data = binary.LittleEndian.AppendUint64(ts.data, tok.Value)
	}
}

func (ts *TokenStream) putAtom(a Atom) {
	ts.data = binary.AppendUvarint(ts.data, uint64(a))
}

// GetToken reads the next token. At the end of the stream it returns a token
// whose Atom is EndOfInput.
func (ts *TokenStream) GetToken(r Reporter) Token { return ts.rd.GetToken(r) }

// PeekTokenizedPasting reports whether the next token pastes with the
// current one. See StreamReader.PeekTokenizedPasting.
func (ts *TokenStream) PeekTokenizedPasting(lastTokenPastes bool) bool {
	return ts.rd.PeekTokenizedPasting(lastTokenPastes)
}

// PeekUntokenizedPasting reports whether the next two non-space subtokens
// are consecutive '#'. See StreamReader.PeekUntokenizedPasting.
func (ts *TokenStream) PeekUntokenizedPasting() bool { return ts.rd.PeekUntokenizedPasting() }

// Unget backs the stream cursor up by the token most recently read.
func (ts *TokenStream) Unget() { ts.rd.Unget() }

// Reset rewinds the stream cursor to the first token.
func (ts *TokenStream) Reset() { ts.rd.Reset() }

// AtEnd reports whether the cursor has consumed all recorded bytes.
func (ts *TokenStream) AtEnd() bool { return ts.rd.AtEnd() }

// Len returns the size of the recorded buffer in bytes.
func (ts *TokenStream) Len() int { return len(ts.data) }

// NewReader returns an independent cursor positioned at the start of the
// stream. Readers must not be used while the stream is still being recorded.
func (ts *TokenStream) NewReader() *StreamReader {
	return &StreamReader{ts: ts}
}

// StreamReader is a read cursor over a TokenStream.
type StreamReader struct {
	ts      *TokenStream
	current int
	last    int // start of the most recently read token, for Unget
}

// Reset rewinds the cursor.
func (r *StreamReader) Reset() {
	r.current = 0
	r.last = 0
}

// AtEnd reports whether the cursor is past the last recorded byte.
func (r *StreamReader) AtEnd() bool { return r.current >= len(r.ts.data) }

func (r *StreamReader) getAtom() Atom {
	data := r.ts.data
	if r.current >= len(data) {
		return EndOfInput
	}
	v, n := binary.Uvarint(data[r.current:])
	if n <= 0 {
		r.current = len(data)
		return EndOfInput
	}
	r.current += n
	return Atom(v)
}

// Unget backs the cursor up by one token, including any space subtokens
// that preceded it. Only a single step is remembered.
func (r *StreamReader) Unget() {
	r.current = r.last
}

// GetToken reads the next token, folding any preceding space subtokens into
// the Space flag. Diagnostics go to rep, which may be nil.
//
// A name longer than MaxTokenLength is reported as "token too long" and
// truncated; the remaining characters are skipped so the stream stays
// aligned on token boundaries.
func (r *StreamReader) GetToken(rep Reporter) Token {
	var tok Token
	start := r.current
	defer func() { r.last = start }()

	atom := r.getAtom()
	for atom == AtomSpace {
		tok.Space = true
		atom = r.getAtom()
	}
	tok.Atom = atom
	if atom == EndOfInput {
		return tok
	}
	if rep != nil {
		tok.Loc = rep.CurrentLoc()
	}

	data := r.ts.data
	if SaveName(atom) {
		end := bytes.IndexByte(data[r.current:], 0)
		if end < 0 {
			tok.Name = string(data[r.current:])
			r.current = len(data)
			if rep != nil {
				rep.Error(tok.Loc, "unterminated token name", tok.Name)
			}
			tok.Atom = AtomBadToken
			return tok
		}
		name := data[r.current : r.current+end]
		r.current += end + 1
		if len(name) > MaxTokenLength {
			if rep != nil {
				rep.Error(tok.Loc, "token too long", "")
			}
			name = name[:MaxTokenLength]
		}
		tok.Name = string(name)
	}

	if SaveValue(atom) {
		if len(data)-r.current < 8 {
			r.current = len(data)
			if rep != nil {
				rep.Error(tok.Loc, "truncated token value", tok.Name)
			}
			tok.Atom = AtomBadToken
			return tok
		}
		tok.Value = binary.LittleEndian.Uint64(data[r.current:])
		r.current += 8
	}

	return tok
}

// PeekTokenizedPasting reports whether the token just read is pasted with
// what follows. That is the case when:
//  1. the next non-space subtoken is the paste operator, or
//  2. lastTokenPastes is set (the whole stream precedes a ## in its
//     enclosing context) and no non-space token remains.
//
// The cursor is left unchanged.
func (r *StreamReader) PeekTokenizedPasting(lastTokenPastes bool) bool {
	savePos := r.current

	atom := r.getAtom()
	for atom == AtomSpace {
		atom = r.getAtom()
	}
	r.current = savePos
	if atom == AtomPaste {
		return true
	}

	if !lastTokenPastes {
		return false
	}

	moreTokens := false
	for {
		atom = r.getAtom()
		if atom == EndOfInput {
			break
		}
		if atom != AtomSpace {
			moreTokens = true
			break
		}
	}
	r.current = savePos

	return !moreTokens
}

// PeekUntokenizedPasting reports whether the next non-space subtokens are
// two '#' recorded back to back. The cursor is left unchanged.
func (r *StreamReader) PeekUntokenizedPasting() bool {
	savePos := r.current

	atom := r.getAtom()
	for atom == AtomSpace {
		atom = r.getAtom()
	}

	pasting := false
	if atom == '#' {
		if r.getAtom() == '#' {
			pasting = true
		}
	}

	r.current = savePos
	return pasting
}
