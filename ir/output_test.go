package ir

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func output(t *testing.T, in *Intermediate, tree bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, in.Output(&buf, tree))
	return buf.String()
}

func TestOutput_Header(t *testing.T) {
	in := glslUnit(StageCompute)
	in.AddRequestedExtension("GL_KHR_shader_subgroup_basic")
	in.SetXfbMode()
	require.True(t, in.SetLocalSize(0, 8))

	got := output(t, in, false)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	assert.Equal(t, []string{
		"Shader version: 450",
		"Requested GL_KHR_shader_subgroup_basic",
		"in xfb mode",
		"local_size = (8, 1, 1)",
	}, lines)

	require.True(t, in.SetLocalSizeSpecID(1, 3))
	assert.Contains(t, output(t, in, false), "local_size ids = (-1, 3, -1)\n")
}

func TestOutput_Fragment(t *testing.T) {
	in := glslUnit(StageFragment)
	in.SetOriginUpperLeft()
	in.SetEarlyFragmentTests()

	got := output(t, in, false)
	assert.Contains(t, got, "gl_FragCoord origin is upper left\n")
	assert.Contains(t, got, "using early_fragment_tests\n")
	assert.NotContains(t, got, "pixel center")
}

func TestOutput_Tree(t *testing.T) {
	in := linkUnit(StageFragment, variable("color", outAt(BasicFloat, 4, 0)))
	main := AsAggregate(in.TreeRoot().Seq[0])
	main.Seq = append(main.Seq, in.AddIntConstant(7, SourceLoc{Line: 2}, true))

	got := output(t, in, true)
	assert.Contains(t, got, "0:?  Sequence\n")
	assert.Contains(t, got, "0:?    Function Definition: main(")
	assert.Contains(t, got, "0:2      Constant:\n")
	assert.Contains(t, got, "0:2        7 (const int)\n")
	assert.Contains(t, got, "0:?    Linker Objects\n")
	assert.Contains(t, got, "'color' (")

	assert.NotContains(t, output(t, in, false), "Sequence")
}

func TestOutput_BinaryDouble(t *testing.T) {
	in := linkUnit(StageFragment)
	main := AsAggregate(in.TreeRoot().Seq[0])
	main.Seq = append(main.Seq, NewConstantUnion(ConstArray{ConstDouble(1)}, NewScalar(BasicDouble, StorageConst), SourceLoc{Line: 1}))
	in.SetBinaryDoubleOutput()

	assert.Contains(t, output(t, in, true), "1.000000 : 0x3ff0000000000000\n")
}
