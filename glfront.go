// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glfront is the front end of a GLSL/HLSL shader compiler: it
// preprocesses shader source and builds, merges and checks the
// intermediate tree that backends lower.
//
// The package provides a small high-level API over the pp, ir and config
// packages:
//
//	opts, err := config.Load("shader.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	unit, err := glfront.NewUnit(opts, "shader.frag", source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// A parser builds unit.Intermediate from unit.Tokens.
//	program, err := glfront.Link(opts.KeepUncalled, unit.Intermediate)
//
// For finer control use the pp and ir packages directly.
package glfront

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/gogpu/glfront/config"
	"github.com/gogpu/glfront/ir"
	"github.com/gogpu/glfront/pp"
)

var log = commonlog.GetLogger("glfront")

// ErrNoUnits is returned by Link when called without units.
var ErrNoUnits = errors.New("glfront: no units to link")

// Preprocess runs source through the preprocessor and returns the token
// sequence. The error, if any, is a pp.Errors list; the tokens produced are
// returned either way.
func Preprocess(source string, opts pp.Options) ([]pp.Token, error) {
	return pp.NewContext(source, opts).Tokenize()
}

// Render spells tokens back as text, one output line per source line.
func Render(tokens []pp.Token) string {
	var sb strings.Builder
	line := 0
	for i, tok := range tokens {
		switch {
		case i == 0:
		case tok.Loc.Line > line:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
		line = max(line, tok.Loc.Line)
		sb.WriteString(tok.Text())
	}
	return sb.String()
}

// Unit is one preprocessed compilation unit together with its program
// state, ready for a parser to build the tree into.
type Unit struct {
	Intermediate *ir.Intermediate
	Tokens       []pp.Token
}

// NewUnit creates the program state described by opts and preprocesses
// source into it. #version and #extension directives update the program
// state as they are seen.
func NewUnit(opts *config.Options, name, source string) (*Unit, error) {
	in, err := opts.NewIntermediate()
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	in.SetSourceFile(name)
	in.SetSourceText(source)

	ppOpts := pp.Options{
		SourceName:  name,
		Version:     opts.Version,
		ES:          in.IsES(),
		Predefines:  opts.Defines,
		Handler:     &unitHandler{in: in},
		ReadingHLSL: in.Source() == ir.SourceHLSL,
	}
	tokens, err := Preprocess(source, ppOpts)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", name, err)
	}
	log.Debugf("%s: %d tokens", name, len(tokens))
	return &Unit{Intermediate: in, Tokens: tokens}, nil
}

// unitHandler forwards the directives the preprocessor does not consume
// into the unit's program state.
type unitHandler struct {
	in *ir.Intermediate
}

func (h *unitHandler) Version(loc pp.SourceLoc, version int, profile string) {
	h.in.SetVersion(version)
	if p, ok := ir.ParseProfile(profile); ok && profile != "" {
		h.in.SetProfile(p)
	}
}

func (h *unitHandler) Extension(loc pp.SourceLoc, name, behavior string) {
	if behavior == "disable" {
		return
	}
	h.in.AddRequestedExtension(name)
}

func (h *unitHandler) Pragma(loc pp.SourceLoc, tokens []string) {
	log.Debugf("%s: ignoring #pragma %s", loc, strings.Join(tokens, " "))
}

// Link merges every unit into the first one and runs the whole-program
// checks. The merged program is returned even when linking reports
// errors, so that callers can print the diagnostics.
func Link(keepUncalled bool, units ...*ir.Intermediate) (*ir.Intermediate, error) {
	if len(units) == 0 {
		return nil, ErrNoUnits
	}
	program := units[0]
	for _, unit := range units[1:] {
		program.Merge(unit)
	}
	if err := program.FinalCheck(keepUncalled); err != nil {
		return program, fmt.Errorf("link %s stage: %w", program.Stage(), err)
	}
	if program.NumErrors() > 0 {
		return program, fmt.Errorf("link %s stage: %w", program.Stage(), program.InfoSink().Filter(ir.SeverityError))
	}
	return program, nil
}
