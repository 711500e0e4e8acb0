// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import (
	"strconv"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("glfront.pp")

// MaxMacroArgs is the largest number of parameters a macro may declare.
const MaxMacroArgs = 64

// maxIfNesting bounds #if/#ifdef/#ifndef nesting.
const maxIfNesting = 65

// Handler receives directives that the preprocessor does not consume itself.
type Handler interface {
	// Version is called for #version; profile is empty when omitted.
	Version(loc SourceLoc, version int, profile string)
	// Extension is called for #extension name : behavior.
	Extension(loc SourceLoc, name, behavior string)
	// Pragma is called with the spelling of every token after #pragma.
	Pragma(loc SourceLoc, tokens []string)
}

// Options configures a preprocessing Context.
type Options struct {
	SourceName string
	// Version is the language version assumed until a #version directive.
	// Zero selects 100 for ES and 110 otherwise.
	Version int
	ES      bool
	// Predefines are object-like macros defined before the source is read.
	// The value is scanned as a replacement list.
	Predefines map[string]string
	Handler    Handler
	// ReadingHLSL enables HLSL preprocessing differences.
	ReadingHLSL bool
	// RelaxedErrors downgrades portability errors to warnings.
	RelaxedErrors bool
}

// Macro is a preprocessor macro definition.
type Macro struct {
	Name         string
	Params       []string
	FunctionLike bool
	Body         *TokenStream
	Loc          SourceLoc

	busy  bool
	undef bool
}

func (m *Macro) paramIndex(name string) int {
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	return -1
}

type expandResult int

const (
	expandNotStarted expandResult = iota
	expandError
	expandStarted
	expandUndef
)

// Context preprocesses one shader source string.
type Context struct {
	opts    Options
	source  string
	version int
	es      bool

	macros map[string]*Macro
	inputs []input
	base   *scanner

	currentLoc    SourceLoc
	diags         Errors
	previousToken Atom
	versionSeen   bool
	tokenSeen     bool
	inElseSkip    bool
	finished      bool

	ifDepth     int
	elseTracker int
	elseSeen    [maxIfNesting + 2]bool
}

// NewContext returns a preprocessor reading source.
func NewContext(source string, opts Options) *Context {
	c := &Context{
		opts:          opts,
		source:        source,
		version:       opts.Version,
		es:            opts.ES,
		macros:        make(map[string]*Macro),
		previousToken: '\n',
	}
	if c.version == 0 {
		c.version = 110
		if c.es {
			c.version = 100
		}
	}
	if c.version == 100 {
		c.es = true
	}

	c.predefineProfile()
	for name, value := range opts.Predefines {
		c.Define(name, value)
	}

	loc := SourceLoc{Name: opts.SourceName, Line: 1, Column: 1}
	c.base = newScanner(source, loc, c.scanError)
	c.currentLoc = loc
	c.pushInput(&stringInput{ctx: c, s: c.base})
	return c
}

// Version returns the language version in effect.
func (c *Context) Version() int { return c.version }

// ES reports whether the source is an ES shader.
func (c *Context) ES() bool { return c.es }

// Diagnostics returns every error and warning reported so far.
func (c *Context) Diagnostics() Errors { return c.diags }

// CurrentLoc returns the location of the most recently scanned source token.
func (c *Context) CurrentLoc() SourceLoc { return c.currentLoc }

// Error records an error diagnostic.
func (c *Context) Error(loc SourceLoc, message, token string) {
	log.Debugf("%s: error: %s %s", loc, message, token)
	c.diags = append(c.diags, &Error{Severity: SeverityError, Loc: loc, Message: message, Token: token})
}

// Warn records a warning diagnostic.
func (c *Context) Warn(loc SourceLoc, message, token string) {
	log.Debugf("%s: warning: %s %s", loc, message, token)
	c.diags = append(c.diags, &Error{Severity: SeverityWarning, Loc: loc, Message: message, Token: token})
}

// relaxed reports message as a warning when relaxed errors are enabled.
func (c *Context) relaxed(loc SourceLoc, message, token string) {
	if c.opts.RelaxedErrors {
		c.Warn(loc, message, token)
	} else {
		c.Error(loc, message, token)
	}
}

func (c *Context) scanError(loc SourceLoc, message, token string) {
	if c.inElseSkip {
		return
	}
	c.Error(loc, message, token)
}

// Define adds an object-like macro whose replacement list is value.
// An existing definition is replaced.
func (c *Context) Define(name, value string) {
	body := NewTokenStream()
	s := newScanner(value, SourceLoc{Source: -1, Line: 1}, c.scanError)
	first := true
	var tok Token
	for a := s.scan(&tok); a != EndOfInput && a != '\n'; a = s.scan(&tok) {
		tok.Atom = a
		if first {
			tok.Space = false
			first = false
		}
		body.PutToken(tok)
	}
	c.macros[name] = &Macro{Name: name, Body: body, Loc: SourceLoc{Source: -1}}
}

// Undef removes a macro definition.
func (c *Context) Undef(name string) {
	if m, ok := c.macros[name]; ok {
		m.undef = true
	}
}

// IsDefined reports whether name is currently a defined macro.
func (c *Context) IsDefined(name string) bool {
	return c.lookupMacro(name) != nil
}

func (c *Context) lookupMacro(name string) *Macro {
	m, ok := c.macros[name]
	if !ok || m.undef {
		return nil
	}
	return m
}

func (c *Context) predefineProfile() {
	if c.es {
		c.Undef("GL_core_profile")
		c.Define("GL_es_profile", "1")
	} else {
		c.Undef("GL_es_profile")
		c.Define("GL_core_profile", "1")
	}
}

func (c *Context) pastingSupported() bool {
	if c.opts.ReadingHLSL {
		return true
	}
	if c.es {
		return c.version >= 300
	}
	return c.version >= 130
}

// lineDirectiveSetsNextLine reports whether "#line N" names the following
// line rather than the directive's own line.
func (c *Context) lineDirectiveSetsNextLine() bool {
	if c.es {
		return c.version >= 300
	}
	return c.version >= 330
}

func (c *Context) pushInput(in input) {
	c.inputs = append(c.inputs, in)
}

func (c *Context) popInput() {
	c.inputs = c.inputs[:len(c.inputs)-1]
}

func (c *Context) pushTokenStreamInput(ts *TokenStream, prepasting bool) {
	c.pushInput(&tokenInput{ctx: c, rd: ts.NewReader(), lastTokenPastes: prepasting})
}

func (c *Context) ungetToken(atom Atom, tok Token) {
	tok.Atom = atom
	c.pushInput(&ungotTokenInput{tok: tok})
}

// scanToken returns the next raw token from the input stack, popping
// exhausted inputs.
func (c *Context) scanToken(tok *Token) Atom {
	for len(c.inputs) > 0 {
		atom := c.inputs[len(c.inputs)-1].scan(tok)
		if atom != EndOfInput {
			tok.Atom = atom
			return atom
		}
		c.popInput()
	}
	*tok = Token{Atom: EndOfInput, Loc: c.currentLoc}
	return EndOfInput
}

func (c *Context) peekPasting() bool {
	return len(c.inputs) > 0 && c.inputs[len(c.inputs)-1].peekPasting()
}

func (c *Context) endOfReplacementList() bool {
	return len(c.inputs) == 0 || c.inputs[len(c.inputs)-1].endOfReplacementList()
}

func (c *Context) isMacroInput() bool {
	return len(c.inputs) > 0 && c.inputs[len(c.inputs)-1].isMacroInput()
}

// Next returns the next fully preprocessed token. At the end of input it
// returns a token whose atom is EndOfInput.
func (c *Context) Next() Token {
	var tok Token
	for {
		atom := c.scanToken(&tok)
		atom = c.tokenPaste(atom, &tok)

		if atom == EndOfInput {
			return c.finish(tok)
		}

		if atom == '#' {
			if c.previousToken == '\n' {
				if c.readCPPline(&tok) == EndOfInput {
					return c.finish(tok)
				}
				continue
			}
			c.Error(tok.Loc, "preprocessor directive cannot be preceded by another token", "#")
			c.skipLine(&tok)
			continue
		}

		c.previousToken = atom
		if atom == '\n' {
			continue
		}
		c.tokenSeen = true

		// A failed expansion has already been reported; keep going.
		if atom == AtomIdentifier && c.macroExpand(&tok, false, true) != expandNotStarted {
			continue
		}

		tok.Atom = atom
		return tok
	}
}

func (c *Context) finish(tok Token) Token {
	if !c.finished {
		c.finished = true
		if c.ifDepth > 0 {
			c.Error(c.currentLoc, "missing #endif", "")
		}
		log.Debugf("%s: preprocessed with %d diagnostics", c.opts.SourceName, len(c.diags))
	}
	tok.Atom = EndOfInput
	return tok
}

// Tokenize preprocesses the whole source. The returned error is an Errors
// list when any error-severity diagnostic was reported; the tokens produced
// are returned either way.
func (c *Context) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok := c.Next()
		if tok.Atom == EndOfInput {
			break
		}
		toks = append(toks, tok)
	}
	if c.diags.HasErrors() {
		return toks, c.diags
	}
	return toks, nil
}

// tokenPaste applies ## operators following the token just scanned.
func (c *Context) tokenPaste(atom Atom, tok *Token) Atom {
	if atom == AtomPaste {
		c.Error(tok.Loc, "unexpected location", "##")
		return c.scanToken(tok)
	}

	result := atom
	for c.peekPasting() {
		var pasted Token
		if c.scanToken(&pasted) != AtomPaste {
			c.ungetToken(pasted.Atom, pasted)
			break
		}

		if c.endOfReplacementList() {
			c.Error(tok.Loc, "unexpected location; end of replacement list", "##")
			break
		}

		a := c.scanToken(&pasted)
		if a == atomMarker || a == EndOfInput {
			c.Error(tok.Loc, "unexpected location; end of argument", "##")
			return result
		}

		if !c.pastingSupported() {
			c.Error(tok.Loc, "token pasting (##) requires version 130 (non-ES) or 300 (ES)", "##")
		}

		// An empty argument leaves the other operand unchanged.
		if a == atomPlacemarker {
			continue
		}
		if result == atomPlacemarker {
			pasted.Space = tok.Space
			*tok = pasted
			result = a
			continue
		}

		combined := tok.Text() + pasted.Text()
		if len(combined) > MaxTokenLength {
			c.Error(tok.Loc, "combined tokens are too long", "##")
			return result
		}

		joined, ok := c.rescan(combined, tok.Loc)
		if !ok {
			c.Error(tok.Loc, "combined token is invalid", combined)
			return result
		}
		joined.Space = tok.Space
		*tok = joined
		result = joined.Atom
	}

	if result == atomPlacemarker {
		return c.tokenPaste(c.scanToken(tok), tok)
	}
	return result
}

// rescan scans text, which must form exactly one token.
func (c *Context) rescan(text string, loc SourceLoc) (Token, bool) {
	failed := false
	s := newScanner(text, loc, func(SourceLoc, string, string) { failed = true })
	var tok, extra Token
	atom := s.scan(&tok)
	if atom == EndOfInput || atom == '\n' || tok.Space || failed {
		return Token{}, false
	}
	if s.scan(&extra) != EndOfInput || failed {
		return Token{}, false
	}
	tok.Atom = atom
	tok.Loc = loc
	return tok, true
}

// macroExpand starts expanding the identifier in tok if it names a macro.
// With undefToZero, an undefined name expands to 0.
//
//nolint:gocognit,gocyclo,cyclop // Argument collection follows the C rules
func (c *Context) macroExpand(tok *Token, undefToZero, newLineOkay bool) expandResult {
	name := tok.Name

	switch lookupKeyword(name) {
	case AtomLineMacro:
		line := int(tok.Value)
		if line == 0 {
			line = c.currentLoc.Line
		}
		c.ungetToken(AtomConstInt, intToken(line, tok.Loc))
		return expandStarted
	case AtomFileMacro:
		if c.currentLoc.Name != "" {
			c.ungetToken(AtomConstString, Token{Name: c.currentLoc.Name, Loc: tok.Loc})
		} else {
			c.ungetToken(AtomConstInt, intToken(c.currentLoc.Source, tok.Loc))
		}
		return expandStarted
	case AtomVersionMacro:
		c.ungetToken(AtomConstInt, intToken(c.version, tok.Loc))
		return expandStarted
	}

	mac, exists := c.macros[name]
	if exists && mac.busy {
		return expandNotStarted
	}
	undefined := !exists || mac.undef
	if undefined && !undefToZero {
		return expandNotStarted
	}
	if undefined {
		c.pushInput(&zeroInput{loc: tok.Loc})
		return expandUndef
	}

	in := &macroInput{ctx: c, mac: mac}
	loc := tok.Loc

	if mac.FunctionLike {
		// Look ahead for '(' in a separate token.
		var t Token
		atom := c.scanToken(&t)
		if newLineOkay {
			for atom == '\n' {
				atom = c.scanToken(&t)
			}
		}
		if atom != '(' {
			c.ungetToken(atom, t)
			return expandNotStarted
		}

		nparams := len(mac.Params)
		in.args = make([]*TokenStream, nparams)
		for i := range in.args {
			in.args[i] = NewTokenStream()
		}
		in.expandedArgs = make([]*TokenStream, nparams)

		arg := 0
		tokenRecorded := false
		for {
			var nest []Atom
			for {
				atom = c.scanToken(&t)
				if atom == EndOfInput || atom == atomMarker {
					c.Error(loc, "End of input in macro", name)
					return expandError
				}
				if atom == '\n' {
					if !newLineOkay {
						c.Error(loc, "End of line in macro substitution:", name)
						return expandError
					}
					continue
				}
				if atom == '#' {
					c.Error(t.Loc, "unexpected '#'", name)
					return expandError
				}
				if nparams == 0 && atom != ')' {
					break
				}
				if len(nest) == 0 && (atom == ',' || atom == ')') {
					break
				}
				switch {
				case atom == '(':
					nest = append(nest, ')')
				case atom == '{' && c.opts.ReadingHLSL:
					nest = append(nest, '}')
				case len(nest) > 0 && atom == nest[len(nest)-1]:
					nest = nest[:len(nest)-1]
				}

				// __LINE__ in an argument names the line of the call.
				if atom == AtomIdentifier && t.Name == "__LINE__" {
					t = intToken(c.currentLoc.Line, t.Loc)
				}

				in.args[arg].PutToken(t)
				tokenRecorded = true
			}

			if atom == ')' {
				if nparams == 1 && !tokenRecorded {
					break
				}
				arg++
				break
			}
			arg++
			if arg >= nparams {
				break
			}
		}

		if arg < nparams {
			c.Error(loc, "Too few args in Macro", name)
		} else if atom != ')' {
			depth := 0
			for atom != EndOfInput && (depth > 0 || atom != ')') {
				if atom == ')' || atom == '}' {
					depth--
				}
				atom = c.scanToken(&t)
				if atom == '(' || atom == '{' {
					depth++
				}
			}
			if atom == EndOfInput {
				c.Error(loc, "End of input in macro", name)
				return expandError
			}
			c.Error(loc, "Too many args in macro", name)
		}

		for i := range in.args {
			in.expandedArgs[i] = c.prescanMacroArg(in.args[i], newLineOkay)
		}
	}

	in.rd = mac.Body.NewReader()
	c.pushInput(in)
	mac.busy = true
	return expandStarted
}

// prescanMacroArg fully expands an argument. It returns nil when the
// argument could not be expanded cleanly.
func (c *Context) prescanMacroArg(arg *TokenStream, newLineOkay bool) *TokenStream {
	expanded := NewTokenStream()
	c.pushInput(&markerInput{})
	c.pushTokenStreamInput(arg, false)

	var tok Token
	var atom Atom
	for {
		atom = c.scanToken(&tok)
		if atom == atomMarker || atom == EndOfInput {
			break
		}
		atom = c.tokenPaste(atom, &tok)
		if atom == AtomIdentifier {
			switch c.macroExpand(&tok, false, newLineOkay) {
			case expandNotStarted:
			case expandError:
				for atom != atomMarker && atom != EndOfInput {
					atom = c.scanToken(&tok)
				}
			case expandStarted, expandUndef:
				continue
			}
		}
		if atom == atomMarker || atom == EndOfInput {
			break
		}
		tok.Atom = atom
		expanded.PutToken(tok)
	}

	if atom != atomMarker {
		return nil
	}
	return expanded
}

// skipLine discards tokens through the end of the current line.
func (c *Context) skipLine(tok *Token) Atom {
	atom := tok.Atom
	for atom != '\n' && atom != EndOfInput {
		atom = c.scanToken(tok)
	}
	return atom
}

func atoiToken(tok Token) int {
	if tok.Atom.IsIntegerLiteral() {
		return int(tok.Int64())
	}
	n, _ := strconv.Atoi(tok.Name)
	return n
}
