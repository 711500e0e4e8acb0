// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package report exports what a finished compilation unit learned about
// itself: the process log, counts, the used-resource tables and the
// linker objects. Backends and tooling consume it as canonical CBOR or as
// JSON.
package report

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"

	"github.com/gogpu/glfront/ir"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Report is the exported state of one unit.
type Report struct {
	Stage      string `cbor:"1,keyasint" json:"stage"`
	Source     string `cbor:"2,keyasint" json:"source"`
	Profile    string `cbor:"3,keyasint" json:"profile"`
	Version    int    `cbor:"4,keyasint" json:"version"`
	EntryPoint string `cbor:"5,keyasint,omitempty" json:"entryPoint,omitempty"`

	Processes  []string `cbor:"6,keyasint,omitempty" json:"processes,omitempty"`
	Extensions []string `cbor:"7,keyasint,omitempty" json:"extensions,omitempty"`
	Counts     Counts   `cbor:"8,keyasint" json:"counts"`

	Recursive         bool `cbor:"9,keyasint,omitempty" json:"recursive,omitempty"`
	NeedsLegalization bool `cbor:"10,keyasint,omitempty" json:"needsLegalization,omitempty"`

	Locations   []Location  `cbor:"11,keyasint,omitempty" json:"locations,omitempty"`
	Atomics     []Offsets   `cbor:"12,keyasint,omitempty" json:"atomics,omitempty"`
	Xfb         []XfbBuffer `cbor:"13,keyasint,omitempty" json:"xfb,omitempty"`
	ConstantIDs []int       `cbor:"14,keyasint,omitempty" json:"constantIds,omitempty"`
	IoAccessed  []string    `cbor:"15,keyasint,omitempty" json:"ioAccessed,omitempty"`

	// Types holds each distinct linker-object type once; Objects refer to
	// it by index.
	Types       []string     `cbor:"16,keyasint,omitempty" json:"types,omitempty"`
	Objects     []Object     `cbor:"17,keyasint,omitempty" json:"objects,omitempty"`
	Diagnostics []Diagnostic `cbor:"18,keyasint,omitempty" json:"diagnostics,omitempty"`
}

// Counts are the unit's running totals.
type Counts struct {
	EntryPoints   int `cbor:"1,keyasint" json:"entryPoints"`
	Errors        int `cbor:"2,keyasint" json:"errors"`
	PushConstants int `cbor:"3,keyasint" json:"pushConstants"`
}

// Span is a closed integer interval.
type Span struct {
	Start int `cbor:"1,keyasint" json:"start"`
	Last  int `cbor:"2,keyasint" json:"last"`
}

// Location is one entry of a used-location table.
type Location struct {
	Kind      string `cbor:"1,keyasint" json:"kind"`
	Location  Span   `cbor:"2,keyasint" json:"location"`
	Component Span   `cbor:"3,keyasint" json:"component"`
	Basic     string `cbor:"4,keyasint" json:"basic"`
	Index     int    `cbor:"5,keyasint,omitempty" json:"index,omitempty"`
}

// Offsets is one atomic-counter range.
type Offsets struct {
	Binding Span `cbor:"1,keyasint" json:"binding"`
	Offset  Span `cbor:"2,keyasint" json:"offset"`
}

// XfbBuffer is a transform-feedback buffer that is in use.
type XfbBuffer struct {
	Buffer         int    `cbor:"1,keyasint" json:"buffer"`
	Stride         int    `cbor:"2,keyasint" json:"stride"`
	ImplicitStride int    `cbor:"3,keyasint" json:"implicitStride"`
	ContainsDouble bool   `cbor:"4,keyasint,omitempty" json:"containsDouble,omitempty"`
	Ranges         []Span `cbor:"5,keyasint,omitempty" json:"ranges,omitempty"`
}

// Object is a linker object: a global visible across units.
type Object struct {
	Name string `cbor:"1,keyasint" json:"name"`
	Type int    `cbor:"2,keyasint" json:"type"`
}

// Diagnostic is one info-sink message.
type Diagnostic struct {
	Severity string `cbor:"1,keyasint" json:"severity"`
	Line     int    `cbor:"2,keyasint,omitempty" json:"line,omitempty"`
	Message  string `cbor:"3,keyasint" json:"message"`
}

// Build collects the report of in.
func Build(in *ir.Intermediate) *Report {
	r := &Report{
		Stage:      in.Stage().String(),
		Source:     in.Source().String(),
		Profile:    in.Profile().String(),
		Version:    in.Version(),
		EntryPoint: in.EntryPointName(),
		Processes:  in.Processes(),
		Extensions: in.RequestedExtensions(),
		Counts: Counts{
			EntryPoints:   in.NumEntryPoints(),
			Errors:        in.NumErrors(),
			PushConstants: in.NumPushConstants(),
		},
		Recursive:         in.IsRecursive(),
		NeedsLegalization: in.NeedsLegalization(),
		ConstantIDs:       in.UsedConstantIDs(),
		IoAccessed:        in.IoAccessed(),
	}

	for _, kind := range []ir.IoKind{ir.IoIn, ir.IoOut, ir.IoUniform, ir.IoBuffer} {
		for _, u := range in.UsedIo(kind) {
			r.Locations = append(r.Locations, Location{
				Kind:      kind.String(),
				Location:  span(u.Location),
				Component: span(u.Component),
				Basic:     u.Basic.String(),
				Index:     u.Index,
			})
		}
	}
	for _, a := range in.UsedAtomics() {
		r.Atomics = append(r.Atomics, Offsets{Binding: span(a.Binding), Offset: span(a.Offset)})
	}
	for b := 0; b < ir.MaxXfbBuffers; b++ {
		buf := in.XfbBuffer(b)
		if buf.Stride == ir.LayoutNotSet && len(buf.Ranges) == 0 {
			continue
		}
		x := XfbBuffer{
			Buffer:         b,
			Stride:         buf.Stride,
			ImplicitStride: buf.ImplicitStride,
			ContainsDouble: buf.ContainsDouble,
		}
		for _, rg := range buf.Ranges {
			x.Ranges = append(x.Ranges, span(rg))
		}
		r.Xfb = append(r.Xfb, x)
	}

	if objects := in.LinkerObjects(); objects != nil {
		types := ir.NewTypeRegistry()
		for _, n := range objects.Seq {
			sym := ir.AsSymbol(n)
			if sym == nil {
				continue
			}
			h := types.GetOrCreate(sym.Type())
			r.Objects = append(r.Objects, Object{Name: sym.Name, Type: int(h)})
		}
		for _, t := range types.Types() {
			r.Types = append(r.Types, t.CompleteString())
		}
	}

	for _, d := range in.InfoSink().Diagnostics() {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Severity: d.Severity.String(),
			Line:     d.Loc.Line,
			Message:  d.Message,
		})
	}
	return r
}

func span(r ir.Range) Span { return Span{Start: r.Start, Last: r.Last} }

// MarshalCBOR serializes r with canonical CBOR, so equal reports encode to
// equal bytes.
func MarshalCBOR(r *Report) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalCBOR deserializes a report from CBOR bytes.
func UnmarshalCBOR(data []byte) (*Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: unmarshal: %w", err)
	}
	return &r, nil
}

// MarshalJSON renders r as indented JSON.
func MarshalJSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
