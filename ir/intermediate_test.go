package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIntermediate_Defaults(t *testing.T) {
	in := NewIntermediate(StageCompute, 450, ProfileCore)

	assert.Equal(t, StageCompute, in.Stage())
	assert.Equal(t, SourceNone, in.Source())
	assert.Equal(t, 450, in.Version())
	assert.Equal(t, LayoutNotSet, in.Invocations())
	assert.Equal(t, LayoutNotSet, in.Vertices())
	for dim := 0; dim < 3; dim++ {
		assert.Equal(t, 1, in.LocalSize(dim))
		assert.Equal(t, LayoutNotSet, in.LocalSizeSpecID(dim))
	}
	for b := 0; b < MaxXfbBuffers; b++ {
		assert.Equal(t, LayoutNotSet, in.XfbBufferStride(b))
	}
	assert.Equal(t, DefaultResources(), in.Resources())
	assert.Nil(t, in.TreeRoot())
	assert.Empty(t, in.Processes())
}

func TestSetOnce(t *testing.T) {
	in := NewIntermediate(StageTessControl, 450, ProfileCore)

	assert.True(t, in.SetVertices(4))
	assert.True(t, in.SetVertices(4), "repeating the same value succeeds")
	assert.False(t, in.SetVertices(8))
	assert.Equal(t, 4, in.Vertices())

	assert.True(t, in.SetInvocations(2))
	assert.False(t, in.SetInvocations(3))
	assert.Equal(t, 2, in.Invocations())

	assert.True(t, in.SetInputPrimitive(GeometryTriangles))
	assert.False(t, in.SetInputPrimitive(GeometryQuads))
	assert.Equal(t, GeometryTriangles, in.InputPrimitive())

	assert.True(t, in.SetVertexSpacing(SpacingEqual))
	assert.False(t, in.SetVertexSpacing(SpacingFractionalOdd))

	assert.True(t, in.SetVertexOrder(OrderCw))
	assert.True(t, in.SetVertexOrder(OrderCw))
	assert.False(t, in.SetVertexOrder(OrderCcw))
	assert.Equal(t, OrderCw, in.VertexOrder())

	assert.True(t, in.SetXfbBufferStride(0, 32))
	assert.False(t, in.SetXfbBufferStride(0, 16))
	assert.Equal(t, 32, in.XfbBufferStride(0))
}

func TestSetLocalSize(t *testing.T) {
	in := NewIntermediate(StageCompute, 450, ProfileCore)

	// The default of 1 may be overwritten once.
	assert.True(t, in.SetLocalSize(0, 8))
	assert.True(t, in.SetLocalSize(0, 8))
	assert.False(t, in.SetLocalSize(0, 16))
	assert.Equal(t, 8, in.LocalSize(0))

	assert.True(t, in.SetLocalSizeSpecID(1, 3))
	assert.False(t, in.SetLocalSizeSpecID(1, 4))
	assert.Equal(t, 3, in.LocalSizeSpecID(1))
}

func TestSetDepth(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	assert.True(t, in.SetDepth(DepthGreater))
	assert.False(t, in.SetDepth(DepthLess))
	assert.Equal(t, DepthGreater, in.Depth())
}

func TestSetSpv_Processes(t *testing.T) {
	tests := []struct {
		name string
		spv  SpvVersion
		want []string
	}{
		{"vulkan 1.0", SpvVersion{Vulkan: TargetVulkan10}, []string{"client vulkan100", "target-env vulkan1.0"}},
		{"vulkan 1.1", SpvVersion{Vulkan: TargetVulkan11}, []string{"client vulkan100", "target-env vulkan1.1"}},
		{"vulkan unknown", SpvVersion{Vulkan: 7}, []string{"client vulkan100", "target-env vulkanUnknown"}},
		{"opengl", SpvVersion{OpenGL: TargetOpenGL45}, []string{"client opengl100", "target-env opengl"}},
		{"none", SpvVersion{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewIntermediate(StageVertex, 450, ProfileCore)
			in.SetSpv(tt.spv)
			assert.Equal(t, tt.want, in.Processes())
			assert.Equal(t, tt.spv, in.Spv())
		})
	}
}

func TestProcesses_Ordering(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)

	in.SetEntryPointName("main")
	in.SetShiftBinding(ResourceTexture, 0)
	in.SetShiftBinding(ResourceSampler, 4)
	in.SetShiftBindingForSet(ResourceUBO, 8, 2)
	in.SetShiftBindingForSet(ResourceUBO, 0, 3)
	in.SetResourceSetBinding([]string{"tex", "1", "2"})
	in.SetAutoMapBindings(true)
	in.SetAutoMapLocations(false)
	in.SetInvertY(true)

	assert.Equal(t, []string{
		"entry-point main",
		"shift-sampler-binding 4",
		"shift-UBO-binding 8 2",
		"resource-set-binding tex 1 2",
		"auto-map-bindings",
		"invert-y",
	}, in.Processes())

	assert.Equal(t, 4, in.ShiftBinding(ResourceSampler))
	shift, ok := in.ShiftBindingForSet(ResourceUBO, 2)
	assert.True(t, ok)
	assert.Equal(t, 8, shift)
	_, ok = in.ShiftBindingForSet(ResourceUBO, 3)
	assert.False(t, ok)
}

func TestProcesses_ArgumentWithoutEntry(t *testing.T) {
	var p Processes
	p.AddArgument(3)
	assert.Empty(t, p.List())

	p.AddIfNonZero("x", 0)
	p.AddIfNonZero("y", -2)
	assert.Equal(t, []string{"y -2"}, p.List())
}

func TestRequestedExtensions_Sorted(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	in.AddRequestedExtension("GL_OES_standard_derivatives")
	in.AddRequestedExtension("GL_EXT_shader_io_blocks")
	in.AddRequestedExtension("GL_OES_standard_derivatives")

	assert.True(t, in.RequestedExtension("GL_EXT_shader_io_blocks"))
	assert.False(t, in.RequestedExtension("GL_ARB_gpu_shader5"))
	assert.Equal(t, []string{"GL_EXT_shader_io_blocks", "GL_OES_standard_derivatives"}, in.RequestedExtensions())
}

func TestError_PrefixesStage(t *testing.T) {
	in := NewIntermediate(StageGeometry, 450, ProfileCore)
	in.Error("something broke")
	in.Warn("something odd")

	assert.Equal(t, 1, in.NumErrors())
	diags := in.InfoSink().Diagnostics()
	if assert.Len(t, diags, 2) {
		assert.Equal(t, SeverityError, diags[0].Severity)
		assert.Equal(t, "Linking geometry stage: something broke", diags[0].Message)
		assert.Equal(t, SeverityWarning, diags[1].Severity)
	}
	assert.Error(t, in.InfoSink().Err())
}

func TestInfoSink_NoErrors(t *testing.T) {
	var s InfoSink
	s.Info(SourceLoc{}, "note")
	assert.NoError(t, s.Err())
	assert.Equal(t, "INFO: note\n", s.String())
}
