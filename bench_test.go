// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glfront

import (
	"fmt"
	"testing"

	"github.com/gogpu/glfront/config"
	"github.com/gogpu/glfront/ir"
	"github.com/gogpu/glfront/report"
)

// ---------------------------------------------------------------------------
// Test shader sources at different complexity levels
// ---------------------------------------------------------------------------

// shaderSmallVertex is a minimal vertex shader.
const shaderSmallVertex = `#version 450
layout(location = 0) in vec2 pos;
void main() {
    gl_Position = vec4(pos, 0.0, 1.0);
}
`

// shaderMediumCompute uses macros, pasting and conditional compilation.
const shaderMediumCompute = `#version 450
#extension GL_EXT_shader_explicit_arithmetic_types_int64 : enable
#define GROUP 64
#define IDX(a, b) ((a) * GROUP + (b))
#define FIELD(n) value_ ## n
#if GROUP >= 64 && defined(IDX)
#define WIDE 1
#else
#define WIDE 0
#endif
layout(local_size_x = GROUP) in;
struct Item { float FIELD(x); float FIELD(y); };
layout(std430, binding = 0) buffer Items { Item items[]; };
void main() {
    uint i = gl_GlobalInvocationID.x;
    float d = sqrt(items[i].value_x * items[i].value_x + items[i].value_y);
#if WIDE
    items[IDX(i, 1)].value_x = clamp(d / 200.0, 0.0, 1.0);
#endif
}
`

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

func BenchmarkNewUnit(b *testing.B) {
	shaders := []struct {
		name, stage, source string
	}{
		{"SmallVertex", "vert", shaderSmallVertex},
		{"MediumCompute", "comp", shaderMediumCompute},
	}
	for _, s := range shaders {
		b.Run(s.name, func(b *testing.B) {
			opts := config.Default()
			opts.Stage = s.stage
			b.SetBytes(int64(len(s.source)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := NewUnit(opts, s.name, s.source); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

type noSymbols struct{}

func (noSymbols) Find(string) *ir.Variable { return nil }

// linkableUnit returns a fragment unit with n outputs; only the first unit
// carries main.
func linkableUnit(b *testing.B, first bool, n int) *ir.Intermediate {
	opts := config.Default()
	opts.Stage = "frag"
	in, err := opts.NewIntermediate()
	if err != nil {
		b.Fatal(err)
	}
	root := ir.NewAggregate(ir.OpSequence)
	if first {
		main := ir.NewAggregate(ir.OpFunction)
		main.Name = "main("
		root.Seq = append(root.Seq, main)
		in.SetEntryPointMangledName("main(")
		in.IncrementEntryPointCount()
	}
	in.SetTreeRoot(root)

	var linkage *ir.Aggregate
	for i := 0; i < n; i++ {
		t := ir.NewVector(ir.BasicFloat, 4, ir.StorageVaryingOut)
		t.Qualifier.Location = i
		linkage = in.AddLinkerObject(linkage, &ir.Variable{ID: int64(i + 1), Name: fmt.Sprintf("out%d", i), Type: t})
	}
	in.AddSymbolLinkageNodes(linkage, noSymbols{})
	return in
}

func BenchmarkLink(b *testing.B) {
	for _, units := range []int{2, 8} {
		b.Run(fmt.Sprintf("Units%d", units), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				list := make([]*ir.Intermediate, units)
				for u := range list {
					list[u] = linkableUnit(b, u == 0, 8)
				}
				b.StartTimer()
				if _, err := Link(false, list...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkReport(b *testing.B) {
	program, err := Link(false, linkableUnit(b, true, 16))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := report.MarshalCBOR(report.Build(program)); err != nil {
			b.Fatal(err)
		}
	}
}
