// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

import (
	"strings"
)

// readCPPline handles the directive following a '#' at the start of a line.
// It returns the atom that ended the directive, '\n' or EndOfInput.
//
//nolint:gocyclo,cyclop // One case per directive
func (c *Context) readCPPline(tok *Token) Atom {
	atom := c.scanToken(tok)

	if atom == AtomIdentifier {
		switch lookupKeyword(tok.Name) {
		case AtomDefine:
			atom = c.cppDefine(tok)
		case AtomElse:
			if c.elseSeen[c.elseTracker] {
				c.Error(tok.Loc, "#else after #else", "#else")
			}
			c.elseSeen[c.elseTracker] = true
			if c.ifDepth == 0 {
				c.Error(tok.Loc, "mismatched statements", "#else")
			}
			c.extraTokenCheck(AtomElse, tok, c.scanToken(tok))
			atom = c.cppElse(false, tok)
		case AtomElif:
			if c.ifDepth == 0 {
				c.Error(tok.Loc, "mismatched statements", "#elif")
			}
			if c.elseSeen[c.elseTracker] {
				c.Error(tok.Loc, "#elif after #else", "#elif")
			}
			// The condition is irrelevant once a branch has been taken.
			atom = c.scanToken(tok)
			for atom != '\n' && atom != EndOfInput {
				atom = c.scanToken(tok)
			}
			atom = c.cppElse(false, tok)
		case AtomEndif:
			if c.ifDepth == 0 {
				c.Error(tok.Loc, "mismatched statements", "#endif")
			} else {
				c.elseSeen[c.elseTracker] = false
				c.elseTracker--
				c.ifDepth--
			}
			atom = c.extraTokenCheck(AtomEndif, tok, c.scanToken(tok))
		case AtomIf:
			atom = c.cppIf(tok)
		case AtomIfdef:
			atom = c.cppIfdef(true, tok)
		case AtomIfndef:
			atom = c.cppIfdef(false, tok)
		case AtomLine:
			atom = c.cppLine(tok)
		case AtomInclude:
			c.Error(tok.Loc, "#include is not supported", "#include")
		case AtomPragma:
			atom = c.cppPragma(tok)
		case AtomUndef:
			atom = c.cppUndef(tok)
		case AtomError:
			atom = c.cppError(tok)
		case AtomVersion:
			atom = c.cppVersion(tok)
		case AtomExtension:
			atom = c.cppExtension(tok)
		default:
			c.Error(tok.Loc, "invalid directive:", tok.Name)
		}
	} else if atom != '\n' && atom != EndOfInput {
		c.Error(tok.Loc, "invalid directive", "#")
	}

	for atom != '\n' && atom != EndOfInput {
		atom = c.scanToken(tok)
	}
	return atom
}

// extraTokenCheck reports and discards anything after a complete directive.
func (c *Context) extraTokenCheck(directive Atom, tok *Token, atom Atom) Atom {
	if atom == '\n' || atom == EndOfInput {
		return atom
	}

	label := ""
	switch directive {
	case AtomIf, AtomIfdef, AtomIfndef, AtomElse, AtomElif, AtomEndif, AtomLine:
		label = "#" + keywordSpelling(directive)
	}
	c.relaxed(tok.Loc, "unexpected tokens following directive", label)

	for atom != '\n' && atom != EndOfInput {
		atom = c.scanToken(tok)
	}
	return atom
}

func keywordSpelling(a Atom) string {
	for name, k := range keywordAtoms {
		if k == a {
			return name
		}
	}
	return ""
}

// reservedCheck rejects names that user code may not define or undefine.
func (c *Context) reservedCheck(loc SourceLoc, name, op string) {
	switch {
	case strings.HasPrefix(name, "GL_"):
		c.Error(loc, `names beginning with "GL_" can't be (un)defined: `+name, op)
	case name == "defined":
		c.relaxed(loc, `"defined" can't be (un)defined: `+name, op)
	case strings.Contains(name, "__"):
		predefined := name == "__LINE__" || name == "__FILE__" || name == "__VERSION__"
		switch {
		case c.es && c.version >= 300 && predefined:
			c.Error(loc, "predefined names can't be (un)defined: "+name, op)
		case c.es && c.version < 300 && !c.opts.RelaxedErrors:
			c.Error(loc, "names containing consecutive underscores are reserved, and an error if version < 300: "+name, op)
		default:
			c.Warn(loc, "names containing consecutive underscores are reserved: "+name, op)
		}
	}
}

//nolint:gocognit,gocyclo,cyclop // Definition parsing and redefinition comparison
func (c *Context) cppDefine(tok *Token) Atom {
	atom := c.scanToken(tok)
	if atom != AtomIdentifier {
		c.Error(tok.Loc, "must be followed by macro name", "#define")
		return atom
	}
	if tok.Loc.Source >= 0 {
		c.reservedCheck(tok.Loc, tok.Name, "#define")
	}

	mac := &Macro{Name: tok.Name, Body: NewTokenStream(), Loc: tok.Loc}

	atom = c.scanToken(tok)
	if atom == '(' && !tok.Space {
		mac.FunctionLike = true
		for {
			atom = c.scanToken(tok)
			if len(mac.Params) == 0 && atom == ')' {
				break
			}
			if atom != AtomIdentifier {
				c.Error(tok.Loc, "bad argument", "#define")
				return atom
			}
			if mac.paramIndex(tok.Name) >= 0 {
				c.Error(tok.Loc, "duplicate macro parameter", "#define")
			} else if len(mac.Params) >= MaxMacroArgs {
				c.Error(tok.Loc, "too many macro parameters", "#define")
			} else {
				mac.Params = append(mac.Params, tok.Name)
			}
			atom = c.scanToken(tok)
			if atom != ',' {
				break
			}
		}
		if atom != ')' {
			c.Error(tok.Loc, "missing parenthesis", "#define")
			return atom
		}
		atom = c.scanToken(tok)
	} else if atom != '\n' && atom != EndOfInput && !tok.Space {
		c.Warn(tok.Loc, "missing space after macro name", "#define")
		return atom
	}

	// Leading white space of the replacement list is not significant.
	first := true
	for atom != '\n' && atom != EndOfInput {
		if first {
			tok.Space = false
			first = false
		}
		tok.Atom = atom
		mac.Body.PutToken(*tok)
		atom = c.scanToken(tok)
	}

	if existing, ok := c.macros[mac.Name]; ok && !existing.undef {
		switch {
		case existing.FunctionLike != mac.FunctionLike:
			c.Error(mac.Loc, "Macro redefined; function-like versus object-like:", mac.Name)
		case len(existing.Params) != len(mac.Params):
			c.Error(mac.Loc, "Macro redefined; different number of arguments:", mac.Name)
		default:
			if !equalStrings(existing.Params, mac.Params) {
				c.Error(mac.Loc, "Macro redefined; different argument names:", mac.Name)
			}
			if !sameReplacement(c, existing.Body, mac.Body) {
				c.Error(mac.Loc, "Macro redefined; different substitutions:", mac.Name)
			}
		}
	}

	log.Debugf("%s: define %s (%d params)", mac.Loc, mac.Name, len(mac.Params))
	c.macros[mac.Name] = mac
	return '\n'
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sameReplacement compares two replacement lists token by token. All white
// space separations are considered identical.
func sameReplacement(rep Reporter, a, b *TokenStream) bool {
	ra, rb := a.NewReader(), b.NewReader()
	for {
		ta, tb := ra.GetToken(rep), rb.GetToken(rep)
		if !ta.equal(tb) {
			return false
		}
		if ta.Atom == EndOfInput {
			return true
		}
	}
}

func (c *Context) cppUndef(tok *Token) Atom {
	atom := c.scanToken(tok)
	if atom != AtomIdentifier {
		c.Error(tok.Loc, "must be followed by macro name", "#undef")
		return atom
	}
	c.reservedCheck(tok.Loc, tok.Name, "#undef")
	c.Undef(tok.Name)

	atom = c.scanToken(tok)
	if atom != '\n' {
		c.Error(tok.Loc, "can only be followed by a single macro name", "#undef")
	}
	return atom
}

func (c *Context) pushConditional(tok *Token, directive string) bool {
	if c.ifDepth >= maxIfNesting || c.elseTracker >= maxIfNesting {
		c.Error(tok.Loc, "maximum nesting depth exceeded", directive)
		return false
	}
	c.elseTracker++
	c.ifDepth++
	return true
}

func (c *Context) cppIf(tok *Token) Atom {
	atom := c.scanToken(tok)
	if !c.pushConditional(tok, "#if") {
		return EndOfInput
	}

	res, atom, err := c.eval(atom, precMin, false, tok)
	atom = c.extraTokenCheck(AtomIf, tok, atom)
	if res == 0 && !err {
		atom = c.cppElse(true, tok)
	}
	return atom
}

func (c *Context) cppIfdef(defined bool, tok *Token) Atom {
	atom := c.scanToken(tok)
	directive := "#ifdef"
	if !defined {
		directive = "#ifndef"
	}
	if !c.pushConditional(tok, directive) {
		return EndOfInput
	}

	if atom != AtomIdentifier {
		c.Error(tok.Loc, "must be followed by macro name", directive)
		return atom
	}

	isDefined := c.lookupMacro(tok.Name) != nil
	atom = c.scanToken(tok)
	if atom != '\n' {
		c.Error(tok.Loc, "unexpected tokens following "+directive+" directive - expected a newline", "")
		for atom != '\n' && atom != EndOfInput {
			atom = c.scanToken(tok)
		}
	}
	if isDefined != defined {
		atom = c.cppElse(true, tok)
	}
	return atom
}

// cppElse skips a conditional group. With matchElse it stops at an #else or
// at an #elif whose condition holds; otherwise it skips to the #endif.
//
//nolint:gocognit,gocyclo,cyclop // Mirrors the nesting rules of conditional groups
func (c *Context) cppElse(matchElse bool, tok *Token) Atom {
	c.inElseSkip = true
	defer func() { c.inElseSkip = false }()

	depth := 0
	atom := c.scanToken(tok)

	for atom != EndOfInput {
		if atom != '#' {
			for atom != '\n' && atom != EndOfInput {
				atom = c.scanToken(tok)
			}
			if atom == EndOfInput {
				return atom
			}
			atom = c.scanToken(tok)
			continue
		}

		if atom = c.scanToken(tok); atom != AtomIdentifier {
			continue
		}

		switch next := lookupKeyword(tok.Name); {
		case next == AtomIf || next == AtomIfdef || next == AtomIfndef:
			depth++
			if !c.pushConditional(tok, "#if") {
				return EndOfInput
			}
		case next == AtomEndif:
			atom = c.extraTokenCheck(next, tok, c.scanToken(tok))
			c.elseSeen[c.elseTracker] = false
			c.elseTracker--
			if depth == 0 {
				if c.ifDepth > 0 {
					c.ifDepth--
				}
				return atom
			}
			depth--
			c.ifDepth--
		case matchElse && depth == 0 && next == AtomElse:
			c.elseSeen[c.elseTracker] = true
			return c.extraTokenCheck(next, tok, c.scanToken(tok))
		case matchElse && depth == 0 && next == AtomElif:
			if c.elseSeen[c.elseTracker] {
				c.Error(tok.Loc, "#elif after #else", "#elif")
			}
			// cppIf pushes the level again
			if c.ifDepth > 0 {
				c.ifDepth--
				c.elseSeen[c.elseTracker] = false
				c.elseTracker--
			}
			c.inElseSkip = false
			return c.cppIf(tok)
		case next == AtomElse:
			if c.elseSeen[c.elseTracker] {
				c.Error(tok.Loc, "#else after #else", "#else")
			} else {
				c.elseSeen[c.elseTracker] = true
			}
			atom = c.extraTokenCheck(next, tok, c.scanToken(tok))
		case next == AtomElif:
			if c.elseSeen[c.elseTracker] {
				c.Error(tok.Loc, "#elif after #else", "#elif")
			}
		}
	}
	return atom
}

func (c *Context) cppLine(tok *Token) Atom {
	atom := c.scanToken(tok)
	directiveLoc := tok.Loc
	if atom == '\n' {
		c.Error(tok.Loc, "must by followed by an integral literal", "#line")
		return atom
	}

	line, atom, lineErr := c.eval(atom, precMin, false, tok)
	if lineErr {
		return c.extraTokenCheck(AtomLine, tok, atom)
	}

	next := line
	if atom == '\n' {
		next++
	}
	if c.lineDirectiveSetsNextLine() {
		next--
	}
	c.base.loc.Line = next
	c.currentLoc.Line = next

	if atom != '\n' && atom != EndOfInput {
		if atom == AtomConstString {
			c.base.loc.Name = tok.Name
			atom = c.scanToken(tok)
		} else {
			var file int
			var fileErr bool
			file, atom, fileErr = c.eval(atom, precMin, false, tok)
			if !fileErr {
				c.base.loc.Source = file
			}
		}
	}
	log.Debugf("%s: #line %d", directiveLoc, line)

	return c.extraTokenCheck(AtomLine, tok, atom)
}

func (c *Context) cppError(tok *Token) Atom {
	atom := c.scanToken(tok)
	loc := tok.Loc
	var words []string
	for atom != '\n' && atom != EndOfInput {
		words = append(words, tok.Text())
		atom = c.scanToken(tok)
	}
	c.Error(loc, strings.Join(words, " "), "#error")
	return atom
}

func (c *Context) cppPragma(tok *Token) Atom {
	loc := tok.Loc
	var words []string
	atom := c.scanToken(tok)
	for atom != '\n' && atom != EndOfInput {
		words = append(words, tok.Text())
		atom = c.scanToken(tok)
	}

	if atom == EndOfInput {
		c.Error(loc, "directive must end with a newline", "#pragma")
	} else if c.opts.Handler != nil {
		c.opts.Handler.Pragma(loc, words)
	}
	return atom
}

func (c *Context) cppVersion(tok *Token) Atom {
	loc := tok.Loc
	atom := c.scanToken(tok)

	if c.tokenSeen || c.versionSeen {
		if c.opts.ReadingHLSL {
			c.Error(tok.Loc, "invalid preprocessor command", "#version")
		} else {
			c.Error(tok.Loc, "must occur first in shader", "#version")
		}
	}
	c.versionSeen = true

	if atom == '\n' {
		c.Error(tok.Loc, "must be followed by version number", "#version")
		return atom
	}
	if atom != AtomConstInt {
		c.Error(tok.Loc, "must be followed by version number", "#version")
	}
	version := atoiToken(*tok)

	atom = c.scanToken(tok)
	profile := ""
	if atom != '\n' && atom != EndOfInput {
		profile = tok.Name
		if atom != AtomIdentifier || (profile != "core" && profile != "compatibility" && profile != "es") {
			c.Error(tok.Loc, "bad profile name; use es, core, or compatibility", "#version")
		}
		atom = c.scanToken(tok)
		if atom != '\n' && atom != EndOfInput {
			c.Error(tok.Loc, "bad tokens following profile -- expected newline", "#version")
		}
	}

	c.version = version
	c.es = profile == "es" || version == 100
	c.predefineProfile()
	log.Infof("%s: #version %d %s", loc, version, profile)

	if c.opts.Handler != nil {
		c.opts.Handler.Version(loc, version, profile)
	}
	return atom
}

func (c *Context) cppExtension(tok *Token) Atom {
	loc := tok.Loc
	atom := c.scanToken(tok)

	if atom == '\n' {
		c.Error(tok.Loc, "extension name not specified", "#extension")
		return atom
	}
	if atom != AtomIdentifier {
		c.Error(tok.Loc, "extension name expected", "#extension")
	}
	name := tok.Name

	atom = c.scanToken(tok)
	if atom != ':' {
		c.Error(tok.Loc, "':' missing after extension name", "#extension")
		return atom
	}

	atom = c.scanToken(tok)
	if atom != AtomIdentifier {
		c.Error(tok.Loc, "behavior for extension not specified", "#extension")
		return atom
	}
	behavior := tok.Name
	switch behavior {
	case "require", "enable", "warn", "disable":
		if name == "all" && (behavior == "require" || behavior == "enable") {
			c.Error(tok.Loc, "extension 'all' cannot have 'require' or 'enable' behavior", "#extension")
		} else if c.opts.Handler != nil {
			c.opts.Handler.Extension(loc, name, behavior)
		}
	default:
		c.Error(tok.Loc, "behavior not supported:", behavior)
	}

	atom = c.scanToken(tok)
	if atom != '\n' && atom != EndOfInput {
		c.Error(tok.Loc, "extra tokens -- expected newline", "#extension")
	}
	return atom
}
