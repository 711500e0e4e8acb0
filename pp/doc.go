// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package pp implements the GLSL preprocessor.
//
// The preprocessor consumes shader source text and produces a flat sequence
// of tokens for the parser. It handles:
//   - Object-like and function-like macros (#define, #undef)
//   - Token pasting (##) with correct re-expansion of macro arguments
//   - Conditional compilation (#if, #ifdef, #ifndef, #elif, #else, #endif)
//   - #version, #extension and #pragma, forwarded to a Handler
//   - #line, #error and the __LINE__, __FILE__ and __VERSION__ macros
//
// # Token Streams
//
// Macro bodies and macro arguments are recorded into a TokenStream, a compact
// byte buffer of serialized tokens. Replaying a stream reproduces the recorded
// tokens exactly, which is what makes argument substitution and ## lookahead
// possible:
//
//	ts := pp.NewTokenStream()
//	ts.PutToken(pp.Token{Atom: pp.AtomIdentifier, Name: "x"})
//	ts.Reset()
//	tok := ts.GetToken(reporter)
//
// A TokenStream owns a single cursor. Use NewReader for independent cursors
// when replaying the same recorded stream from several goroutines.
package pp
