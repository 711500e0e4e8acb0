// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package pp

// Operator precedence in #if expressions, lowest first.
const (
	precMin = iota
	precCond
	precLogOr
	precLogAnd
	precOr
	precXor
	precAnd
	precEqual
	precRelation
	precShift
	precAdd
	precMul
	precUnary
)

type binop struct {
	prec int
	fn   func(a, b int) int
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var binops = map[Atom]binop{
	AtomOr:  {precLogOr, func(a, b int) int { return boolInt(a != 0 || b != 0) }},
	AtomAnd: {precLogAnd, func(a, b int) int { return boolInt(a != 0 && b != 0) }},
	'|':     {precOr, func(a, b int) int { return a | b }},
	'^':     {precXor, func(a, b int) int { return a ^ b }},
	'&':     {precAnd, func(a, b int) int { return a & b }},
	AtomEQ:  {precEqual, func(a, b int) int { return boolInt(a == b) }},
	AtomNE:  {precEqual, func(a, b int) int { return boolInt(a != b) }},
	'>':     {precRelation, func(a, b int) int { return boolInt(a > b) }},
	AtomGE:  {precRelation, func(a, b int) int { return boolInt(a >= b) }},
	'<':     {precRelation, func(a, b int) int { return boolInt(a < b) }},
	AtomLE:  {precRelation, func(a, b int) int { return boolInt(a <= b) }},
	AtomLeft: {precShift, func(a, b int) int {
		return int(int32(a) << (uint(b) & 31))
	}},
	AtomRight: {precShift, func(a, b int) int {
		return int(int32(a) >> (uint(b) & 31))
	}},
	'+': {precAdd, func(a, b int) int { return int(int32(a + b)) }},
	'-': {precAdd, func(a, b int) int { return int(int32(a - b)) }},
	'*': {precMul, func(a, b int) int { return int(int32(a * b)) }},
	'/': {precMul, func(a, b int) int {
		if b == 0 {
			return 0
		}
		return a / b
	}},
	'%': {precMul, func(a, b int) int {
		if b == 0 {
			return 0
		}
		return a % b
	}},
}

var unops = map[Atom]func(int) int{
	'+': func(a int) int { return a },
	'-': func(a int) int { return int(int32(-a)) },
	'~': func(a int) int { return ^a },
	'!': func(a int) int { return boolInt(a == 0) },
}

// eval evaluates an #if expression starting at atom, consuming operators
// that bind tighter than prec. It returns the value, the first unconsumed
// atom, and whether an error was reported. Inside a short-circuited operand
// undefined macros and division by zero are not diagnosed.
//
//nolint:gocognit,gocyclo,cyclop // Precedence climbing with macro expansion
func (c *Context) eval(atom Atom, prec int, shortCircuit bool, tok *Token) (res int, next Atom, failed bool) {
	loc := tok.Loc

	switch {
	case atom == AtomIdentifier && tok.Name == "defined":
		if !c.opts.ReadingHLSL && c.isMacroInput() {
			c.relaxed(tok.Loc, "cannot use in preprocessor expression when expanded from macros", "defined")
		}
		needClose := false
		atom = c.scanToken(tok)
		if atom == '(' {
			needClose = true
			atom = c.scanToken(tok)
		}
		if atom != AtomIdentifier {
			c.Error(tok.Loc, "incorrect directive, expected identifier", "preprocessor evaluation")
			return 0, atom, true
		}
		res = boolInt(c.lookupMacro(tok.Name) != nil)
		atom = c.scanToken(tok)
		if needClose {
			if atom != ')' {
				c.Error(tok.Loc, "expected ')'", "preprocessor evaluation")
				return 0, atom, true
			}
			atom = c.scanToken(tok)
		}
	case atom == AtomIdentifier:
		res, atom, failed = c.evalToToken(atom, shortCircuit, tok)
		if failed {
			return res, atom, failed
		}
		return c.eval(atom, prec, shortCircuit, tok)
	case atom.IsIntegerLiteral():
		res = int(int32(tok.Int64()))
		atom = c.scanToken(tok)
	case atom == '(':
		atom = c.scanToken(tok)
		res, atom, failed = c.eval(atom, precMin, shortCircuit, tok)
		if !failed {
			if atom != ')' {
				c.Error(tok.Loc, "expected ')'", "preprocessor evaluation")
				return 0, atom, true
			}
			atom = c.scanToken(tok)
		}
	default:
		op, ok := unops[atom]
		if !ok {
			c.Error(loc, "bad expression", "preprocessor evaluation")
			return 0, atom, true
		}
		atom = c.scanToken(tok)
		res, atom, failed = c.eval(atom, precUnary, shortCircuit, tok)
		res = op(res)
	}

	if !failed {
		var r int
		r, atom, failed = c.evalToToken(atom, shortCircuit, tok)
		if failed {
			res = r
		}
	}

	for !failed {
		if atom == ')' || atom == '\n' {
			break
		}
		op, ok := binops[atom]
		if !ok || op.prec <= prec {
			break
		}
		left := res
		opAtom := atom

		// Once short-circuited, the rest of the subexpression stays so.
		sc := shortCircuit
		if !sc && ((opAtom == AtomOr && left != 0) || (opAtom == AtomAnd && left == 0)) {
			sc = true
		}

		atom = c.scanToken(tok)
		res, atom, failed = c.eval(atom, op.prec, sc, tok)

		if (opAtom == '/' || opAtom == '%') && res == 0 {
			if !sc {
				c.Error(loc, "division by 0", "preprocessor evaluation")
			}
			res = 1
		}
		res = op.fn(left, res)
	}

	return res, atom, failed
}

// evalToToken expands macros until a token that is not a macro name is
// reached. Undefined names expand to 0.
func (c *Context) evalToToken(atom Atom, shortCircuit bool, tok *Token) (res int, next Atom, failed bool) {
	for atom == AtomIdentifier && tok.Name != "defined" {
		name := tok.Name
		switch c.macroExpand(tok, true, false) {
		case expandNotStarted, expandError:
			c.Error(tok.Loc, "can't evaluate expression", "preprocessor evaluation")
			failed = true
		case expandStarted:
		case expandUndef:
			if !shortCircuit && c.es {
				c.relaxed(tok.Loc, "undefined macro in expression not allowed in es profile", name)
			}
		}
		atom = c.scanToken(tok)
		if failed {
			break
		}
	}
	return 0, atom, failed
}
