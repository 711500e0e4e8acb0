package ir

import (
	"strings"

	"github.com/gogpu/glfront/pp"
)

// SourceLoc is a position in shader source, shared with the preprocessor.
type SourceLoc = pp.SourceLoc

// Stage identifies a pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessControl
	StageTessEvaluation
	StageGeometry
	StageFragment
	StageCompute

	StageCount
)

var stageNames = [...]string{
	StageVertex:         "vertex",
	StageTessControl:    "tessellation control",
	StageTessEvaluation: "tessellation evaluation",
	StageGeometry:       "geometry",
	StageFragment:       "fragment",
	StageCompute:        "compute",
}

func (s Stage) String() string {
	if s < StageCount {
		return stageNames[s]
	}
	return "unknown stage"
}

// ParseStage accepts a short file-extension style name ("vert", "frag", ...)
// or the long form ("vertex", "fragment", ...).
func ParseStage(name string) (Stage, bool) {
	switch strings.ToLower(name) {
	case "vert", "vertex":
		return StageVertex, true
	case "tesc", "tesscontrol", "tessellation control":
		return StageTessControl, true
	case "tese", "tesseval", "tessellation evaluation":
		return StageTessEvaluation, true
	case "geom", "geometry":
		return StageGeometry, true
	case "frag", "fragment":
		return StageFragment, true
	case "comp", "compute":
		return StageCompute, true
	}
	return 0, false
}

// Source is the source language of a compilation unit.
type Source uint8

const (
	SourceNone Source = iota
	SourceGLSL
	SourceHLSL
)

func (s Source) String() string {
	switch s {
	case SourceGLSL:
		return "GLSL"
	case SourceHLSL:
		return "HLSL"
	}
	return "none"
}

// ParseSource maps "glsl" or "hlsl" to a Source.
func ParseSource(name string) (Source, bool) {
	switch strings.ToLower(name) {
	case "glsl", "":
		return SourceGLSL, true
	case "hlsl":
		return SourceHLSL, true
	}
	return SourceNone, false
}

// Profile is a bitmask so that rules can name several profiles at once.
type Profile uint8

const (
	ProfileNone          Profile = 1 << iota // desktop, pre-profile versions
	ProfileCore                              // desktop core
	ProfileCompatibility                     // desktop compatibility
	ProfileES                                // OpenGL ES
)

func (p Profile) String() string {
	switch p {
	case ProfileNone:
		return "none"
	case ProfileCore:
		return "core"
	case ProfileCompatibility:
		return "compatibility"
	case ProfileES:
		return "es"
	}
	return "unknown profile"
}

// ParseProfile maps a #version profile name to a Profile. The empty name is
// ProfileNone.
func ParseProfile(name string) (Profile, bool) {
	switch name {
	case "", "none":
		return ProfileNone, true
	case "core":
		return ProfileCore, true
	case "compatibility":
		return ProfileCompatibility, true
	case "es":
		return ProfileES, true
	}
	return 0, false
}

// BasicType is the scalar or aggregate kind of a Type.
type BasicType uint8

const (
	BasicVoid BasicType = iota
	BasicFloat
	BasicDouble
	BasicFloat16
	BasicInt8
	BasicUint8
	BasicInt16
	BasicUint16
	BasicInt
	BasicUint
	BasicInt64
	BasicUint64
	BasicBool
	BasicAtomicUint
	BasicSampler
	BasicStruct
	BasicBlock
	BasicString
)

var basicTypeNames = [...]string{
	BasicVoid:       "void",
	BasicFloat:      "float",
	BasicDouble:     "double",
	BasicFloat16:    "float16_t",
	BasicInt8:       "int8_t",
	BasicUint8:      "uint8_t",
	BasicInt16:      "int16_t",
	BasicUint16:     "uint16_t",
	BasicInt:        "int",
	BasicUint:       "uint",
	BasicInt64:      "int64_t",
	BasicUint64:     "uint64_t",
	BasicBool:       "bool",
	BasicAtomicUint: "atomic_uint",
	BasicSampler:    "sampler/image",
	BasicStruct:     "structure",
	BasicBlock:      "block",
	BasicString:     "string",
}

func (b BasicType) String() string {
	if int(b) < len(basicTypeNames) {
		return basicTypeNames[b]
	}
	return "unknown type"
}

// IsFloat reports float, double and float16.
func (b BasicType) IsFloat() bool {
	return b == BasicFloat || b == BasicDouble || b == BasicFloat16
}

// IsInteger reports every signed and unsigned integer width.
func (b BasicType) IsInteger() bool {
	switch b {
	case BasicInt8, BasicUint8, BasicInt16, BasicUint16, BasicInt, BasicUint, BasicInt64, BasicUint64:
		return true
	}
	return false
}

// IsUnsigned reports the unsigned integer kinds.
func (b BasicType) IsUnsigned() bool {
	switch b {
	case BasicUint8, BasicUint16, BasicUint, BasicUint64:
		return true
	}
	return false
}

// IsNumeric reports integers and floats.
func (b BasicType) IsNumeric() bool { return b.IsFloat() || b.IsInteger() }

// Is64Bit reports double, int64 and uint64.
func (b BasicType) Is64Bit() bool {
	return b == BasicDouble || b == BasicInt64 || b == BasicUint64
}

// Is16Bit reports float16, int16 and uint16.
func (b BasicType) Is16Bit() bool {
	return b == BasicFloat16 || b == BasicInt16 || b == BasicUint16
}

// Is8Bit reports int8 and uint8.
func (b BasicType) Is8Bit() bool { return b == BasicInt8 || b == BasicUint8 }

// StorageQualifier is where a variable lives.
type StorageQualifier uint8

const (
	StorageTemporary StorageQualifier = iota
	StorageGlobal
	StorageConst
	StorageVaryingIn
	StorageVaryingOut
	StorageUniform
	StorageBuffer
	StorageShared
	StorageIn
	StorageOut
	StorageInOut
	StorageConstReadOnly
)

var storageNames = [...]string{
	StorageTemporary:     "temp",
	StorageGlobal:        "global",
	StorageConst:         "const",
	StorageVaryingIn:     "in",
	StorageVaryingOut:    "out",
	StorageUniform:       "uniform",
	StorageBuffer:        "buffer",
	StorageShared:        "shared",
	StorageIn:            "in param",
	StorageOut:           "out param",
	StorageInOut:         "inout param",
	StorageConstReadOnly: "const (read only)",
}

func (s StorageQualifier) String() string {
	if int(s) < len(storageNames) {
		return storageNames[s]
	}
	return "unknown qualifier"
}

// Precision is a GLSL precision qualifier.
type Precision uint8

const (
	PrecisionNone Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

func (p Precision) String() string {
	switch p {
	case PrecisionLow:
		return "lowp"
	case PrecisionMedium:
		return "mediump"
	case PrecisionHigh:
		return "highp"
	}
	return ""
}

// BuiltIn names the built-in variable a declaration stands for.
type BuiltIn uint8

const (
	BuiltInNone BuiltIn = iota
	BuiltInVertexID
	BuiltInInstanceID
	BuiltInVertexIndex
	BuiltInInstanceIndex
	BuiltInPosition
	BuiltInPointSize
	BuiltInClipVertex
	BuiltInClipDistance
	BuiltInCullDistance
	BuiltInPrimitiveID
	BuiltInInvocationID
	BuiltInLayer
	BuiltInViewportIndex
	BuiltInTessLevelOuter
	BuiltInTessLevelInner
	BuiltInTessCoord
	BuiltInPatchVertices
	BuiltInFragCoord
	BuiltInPointCoord
	BuiltInFace
	BuiltInFragColor
	BuiltInFragData
	BuiltInFragDepth
	BuiltInSampleID
	BuiltInSamplePosition
	BuiltInSampleMask
	BuiltInNumWorkGroups
	BuiltInWorkGroupSize
	BuiltInWorkGroupID
	BuiltInLocalInvocationID
	BuiltInGlobalInvocationID
	BuiltInLocalInvocationIndex
)

// LayoutGeometry is an input or output primitive layout.
type LayoutGeometry uint8

const (
	GeometryNone LayoutGeometry = iota
	GeometryPoints
	GeometryLines
	GeometryLinesAdjacency
	GeometryLineStrip
	GeometryTriangles
	GeometryTrianglesAdjacency
	GeometryTriangleStrip
	GeometryQuads
	GeometryIsolines
)

var geometryNames = [...]string{
	GeometryNone:               "none",
	GeometryPoints:             "points",
	GeometryLines:              "lines",
	GeometryLinesAdjacency:     "lines_adjacency",
	GeometryLineStrip:          "line_strip",
	GeometryTriangles:          "triangles",
	GeometryTrianglesAdjacency: "triangles_adjacency",
	GeometryTriangleStrip:      "triangle_strip",
	GeometryQuads:              "quads",
	GeometryIsolines:           "isolines",
}

func (g LayoutGeometry) String() string {
	if int(g) < len(geometryNames) {
		return geometryNames[g]
	}
	return "unknown geometry"
}

// VertexSpacing is a tessellation spacing mode.
type VertexSpacing uint8

const (
	SpacingNone VertexSpacing = iota
	SpacingEqual
	SpacingFractionalEven
	SpacingFractionalOdd
)

func (v VertexSpacing) String() string {
	switch v {
	case SpacingEqual:
		return "equal_spacing"
	case SpacingFractionalEven:
		return "fractional_even_spacing"
	case SpacingFractionalOdd:
		return "fractional_odd_spacing"
	}
	return "none"
}

// VertexOrder is a tessellation winding order.
type VertexOrder uint8

const (
	OrderNone VertexOrder = iota
	OrderCw
	OrderCcw
)

func (v VertexOrder) String() string {
	switch v {
	case OrderCw:
		return "cw"
	case OrderCcw:
		return "ccw"
	}
	return "none"
}

// LayoutDepth is the fragment depth redeclaration layout.
type LayoutDepth uint8

const (
	DepthNone LayoutDepth = iota
	DepthAny
	DepthGreater
	DepthLess
	DepthUnchanged
)

func (d LayoutDepth) String() string {
	switch d {
	case DepthAny:
		return "depth_any"
	case DepthGreater:
		return "depth_greater"
	case DepthLess:
		return "depth_less"
	case DepthUnchanged:
		return "depth_unchanged"
	}
	return "none"
}

// LayoutPacking is a block memory layout.
type LayoutPacking uint8

const (
	PackingNone LayoutPacking = iota
	PackingShared
	PackingStd140
	PackingStd430
	PackingPacked
)

func (p LayoutPacking) String() string {
	switch p {
	case PackingShared:
		return "shared"
	case PackingStd140:
		return "std140"
	case PackingStd430:
		return "std430"
	case PackingPacked:
		return "packed"
	}
	return "none"
}

// LayoutMatrix is a matrix storage order.
type LayoutMatrix uint8

const (
	MatrixNone LayoutMatrix = iota
	MatrixRowMajor
	MatrixColumnMajor
)

// BlendEquationShift is a bit index into the blend-equation mask.
type BlendEquationShift uint8

const (
	BlendMultiply BlendEquationShift = iota
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColordodge
	BlendColorburn
	BlendHardlight
	BlendSoftlight
	BlendDifference
	BlendExclusion
	BlendHslHue
	BlendHslSaturation
	BlendHslColor
	BlendHslLuminosity
	BlendAllEquations

	BlendCount
)

var blendNames = [...]string{
	"blend_support_multiply",
	"blend_support_screen",
	"blend_support_overlay",
	"blend_support_darken",
	"blend_support_lighten",
	"blend_support_colordodge",
	"blend_support_colorburn",
	"blend_support_hardlight",
	"blend_support_softlight",
	"blend_support_difference",
	"blend_support_exclusion",
	"blend_support_hsl_hue",
	"blend_support_hsl_saturation",
	"blend_support_hsl_color",
	"blend_support_hsl_luminosity",
	"blend_support_all_equations",
}

func (b BlendEquationShift) String() string {
	if b < BlendCount {
		return blendNames[b]
	}
	return "unknown blend equation"
}

// TextureSamplerTransformMode controls how HLSL texture/sampler pairs are
// rewritten.
type TextureSamplerTransformMode uint8

const (
	TextureSamplerKeep TextureSamplerTransformMode = iota
	TextureSamplerUpgradeTextureRemoveSampler
)

// ResourceType is a binding class that can be shifted independently.
type ResourceType uint8

const (
	ResourceSampler ResourceType = iota
	ResourceTexture
	ResourceImage
	ResourceUBO
	ResourceSSBO
	ResourceUAV

	ResourceCount
)

var resourceNames = [...]string{
	"shift-sampler-binding",
	"shift-texture-binding",
	"shift-image-binding",
	"shift-UBO-binding",
	"shift-ssbo-binding",
	"shift-uav-binding",
}

// ProcessName is the process-log name of the shift setting for r.
func (r ResourceType) ProcessName() string {
	if r < ResourceCount {
		return resourceNames[r]
	}
	return "shift-unknown-binding"
}

// ParseResourceType maps short names ("sampler", "texture", "image", "ubo",
// "ssbo", "uav") to a ResourceType.
func ParseResourceType(name string) (ResourceType, bool) {
	switch strings.ToLower(name) {
	case "sampler":
		return ResourceSampler, true
	case "texture":
		return ResourceTexture, true
	case "image":
		return ResourceImage, true
	case "ubo", "cbuffer":
		return ResourceUBO, true
	case "ssbo":
		return ResourceSSBO, true
	case "uav":
		return ResourceUAV, true
	}
	return 0, false
}
