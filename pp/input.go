// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

// input is one level of the preprocessor's input stack: the source text,
// a macro body being replayed, a recorded argument, or a single pushed-back
// token.
type input interface {
	scan(tok *Token) Atom
	peekPasting() bool
	endOfReplacementList() bool
	isMacroInput() bool
}

type baseInput struct{}

func (baseInput) peekPasting() bool          { return false }
func (baseInput) endOfReplacementList() bool { return false }
func (baseInput) isMacroInput() bool         { return false }

// stringInput scans source text.
type stringInput struct {
	baseInput
	ctx *Context
	s   *scanner
}

func (in *stringInput) scan(tok *Token) Atom {
	atom := in.s.scan(tok)
	in.ctx.currentLoc = in.s.loc
	return atom
}

// tokenInput replays a recorded token stream, typically a macro argument.
// lastTokenPastes is set when the stream is followed by ## in the macro body.
type tokenInput struct {
	baseInput
	ctx             *Context
	rd              *StreamReader
	lastTokenPastes bool
}

func (in *tokenInput) scan(tok *Token) Atom {
	*tok = in.rd.GetToken(in.ctx)
	return tok.Atom
}

func (in *tokenInput) peekPasting() bool {
	return in.rd.PeekTokenizedPasting(in.lastTokenPastes)
}

// macroInput replays a macro body, substituting arguments.
type macroInput struct {
	baseInput
	ctx          *Context
	mac          *Macro
	rd           *StreamReader
	args         []*TokenStream
	expandedArgs []*TokenStream
	prepaste     bool // next token is ##
	postpaste    bool // previous token was ##
}

func (in *macroInput) scan(tok *Token) Atom {
	if in.rd.PeekUntokenizedPasting() {
		first := in.rd.GetToken(in.ctx)
		in.rd.GetToken(in.ctx)
		*tok = Token{Atom: AtomPaste, Space: first.Space, Loc: first.Loc}
	} else {
		*tok = in.rd.GetToken(in.ctx)
	}
	atom := tok.Atom

	// A parameter adjacent to ## is replaced by its unexpanded argument.
	pasting := false
	if in.postpaste {
		pasting = true
		in.postpaste = false
	}

	if in.prepaste {
		in.prepaste = false
		in.postpaste = true
	}

	if in.rd.PeekTokenizedPasting(false) || in.rd.PeekUntokenizedPasting() {
		in.prepaste = true
		pasting = true
	}

	// HLSL expands macros before concatenation
	if pasting && in.ctx.opts.ReadingHLSL {
		pasting = false
	}

	if atom == AtomIdentifier {
		if i := in.mac.paramIndex(tok.Name); i >= 0 {
			arg := in.expandedArgs[i]
			if arg == nil || pasting {
				arg = in.args[i]
			}
			if pasting && arg.Len() == 0 {
				*tok = Token{Atom: atomPlacemarker, Space: tok.Space, Loc: tok.Loc}
				return atomPlacemarker
			}
			in.ctx.pushTokenStreamInput(arg, in.prepaste)
			return in.ctx.scanToken(tok)
		}
	}

	if atom == EndOfInput {
		in.mac.busy = false
	}

	return atom
}

func (in *macroInput) peekPasting() bool          { return in.prepaste }
func (in *macroInput) endOfReplacementList() bool { return in.rd.AtEnd() }
func (in *macroInput) isMacroInput() bool         { return true }

// markerInput terminates an argument pushed for prescan.
type markerInput struct {
	baseInput
	done bool
}

func (in *markerInput) scan(*Token) Atom {
	if in.done {
		return EndOfInput
	}
	in.done = true
	return atomMarker
}

// ungotTokenInput returns one pushed-back token.
type ungotTokenInput struct {
	baseInput
	tok  Token
	done bool
}

func (in *ungotTokenInput) scan(tok *Token) Atom {
	if in.done {
		return EndOfInput
	}
	*tok = in.tok
	in.done = true
	return tok.Atom
}

// zeroInput supplies the value of an undefined macro in an #if expression.
type zeroInput struct {
	baseInput
	loc  SourceLoc
	done bool
}

func (in *zeroInput) scan(tok *Token) Atom {
	if in.done {
		return EndOfInput
	}
	*tok = intToken(0, in.loc)
	in.done = true
	return AtomConstInt
}
