// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glfront

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glfront/config"
	"github.com/gogpu/glfront/ir"
	"github.com/gogpu/glfront/pp"
)

func TestPreprocess(t *testing.T) {
	src := "#define SCALE 2.0\n#define MUL(a) (a * SCALE)\nfloat x = MUL(y);\nfloat z;\n"
	tokens, err := Preprocess(src, pp.Options{Version: 450})
	require.NoError(t, err)
	assert.Equal(t, "float x = ( y * 2.0 ) ;\nfloat z ;", Render(tokens))
}

func TestPreprocess_Errors(t *testing.T) {
	_, err := Preprocess("#error boom\n", pp.Options{Version: 450})
	require.Error(t, err)

	var list pp.Errors
	require.True(t, errors.As(err, &list))
	assert.True(t, list.HasErrors())
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

func fragmentOptions() *config.Options {
	o := config.Default()
	o.Stage = "frag"
	return o
}

// withMain gives the unit a tree holding an entry point.
func withMain(in *ir.Intermediate, names ...string) *ir.Intermediate {
	root := ir.NewAggregate(ir.OpSequence)
	for _, name := range names {
		fn := ir.NewAggregate(ir.OpFunction)
		fn.Name = name
		root.Seq = append(root.Seq, fn)
	}
	in.SetTreeRoot(root)
	in.SetEntryPointMangledName("main(")
	in.IncrementEntryPointCount()
	return in
}

func TestNewUnit(t *testing.T) {
	src := "#version 310 es\n#extension GL_EXT_foo : enable\n#extension GL_EXT_bar : disable\nvoid main() {}\n"
	unit, err := NewUnit(fragmentOptions(), "shader.frag", src)
	require.NoError(t, err)

	in := unit.Intermediate
	assert.Equal(t, ir.StageFragment, in.Stage())
	assert.Equal(t, 310, in.Version())
	assert.Equal(t, ir.ProfileES, in.Profile())
	assert.Equal(t, []string{"GL_EXT_foo"}, in.RequestedExtensions())
	assert.Equal(t, "shader.frag", in.SourceFile())
	assert.Equal(t, src, in.SourceText())
	assert.Equal(t, "void main ( ) { }", Render(unit.Tokens))
}

func TestNewUnit_Errors(t *testing.T) {
	o := fragmentOptions()
	o.Stage = "pixel"
	_, err := NewUnit(o, "a.frag", "")
	assert.Error(t, err)

	_, err = NewUnit(fragmentOptions(), "a.frag", "#if\n#endif\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocess a.frag")
}

func TestLink(t *testing.T) {
	a, err := fragmentOptions().NewIntermediate()
	require.NoError(t, err)
	b, err := fragmentOptions().NewIntermediate()
	require.NoError(t, err)
	b.SetTreeRoot(ir.NewAggregate(ir.OpSequence))

	program, err := Link(false, withMain(a, "main("), b)
	require.NoError(t, err)
	assert.Same(t, a, program)
	assert.Equal(t, 1, program.NumEntryPoints())
}

func TestLink_Errors(t *testing.T) {
	_, err := Link(false)
	assert.ErrorIs(t, err, ErrNoUnits)

	empty, err := fragmentOptions().NewIntermediate()
	require.NoError(t, err)
	_, err = Link(false, empty)
	assert.ErrorIs(t, err, ir.ErrNoTree)

	a, err := fragmentOptions().NewIntermediate()
	require.NoError(t, err)
	b, err := fragmentOptions().NewIntermediate()
	require.NoError(t, err)
	program, err := Link(false, withMain(a, "main("), withMain(b, "main("))
	require.Error(t, err)
	require.NotNil(t, program)

	var diags ir.Diagnostics
	require.True(t, errors.As(err, &diags))
	assert.Contains(t, diags[0].Message, "Multiple function bodies")
}
