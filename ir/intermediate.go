package ir

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("glfront.ir")

// MaxXfbBuffers is the number of transform-feedback buffers tracked.
const MaxXfbBuffers = 15

// Vulkan and OpenGL client versions accepted by SetSpv.
const (
	TargetVulkan10 = 1 << 22
	TargetVulkan11 = 1<<22 | 1<<12
	TargetOpenGL45 = 450
)

// SpvVersion describes the client API a unit is compiled for. Zero fields
// mean "not targeting".
type SpvVersion struct {
	Spv        uint32
	VulkanGLSL int
	Vulkan     int
	OpenGL     int
}

// Resources holds implementation limits consulted while linking.
type Resources struct {
	MaxTransformFeedbackBuffers               int
	MaxTransformFeedbackInterleavedComponents int
}

// DefaultResources returns the limits used when none are configured.
func DefaultResources() Resources {
	return Resources{
		MaxTransformFeedbackBuffers:               4,
		MaxTransformFeedbackInterleavedComponents: 64,
	}
}

// SymbolTable is the lookup capability consumed when building linkage
// nodes. Find returns nil for unknown names.
type SymbolTable interface {
	Find(name string) *Variable
}

// Variable is a declared symbol as seen through a SymbolTable.
type Variable struct {
	ID    int64
	Name  string
	Type  *Type
	Const ConstArray
}

// Intermediate is the program state of one compilation unit: the tree
// under construction plus everything learned about the unit on the way.
// It is owned by the single pass that builds it.
type Intermediate struct {
	stage   Stage
	source  Source
	profile Profile
	version int
	spv     SpvVersion

	entryPointName        string
	entryPointMangledName string

	treeRoot            *Aggregate
	requestedExtensions *treeset.Set
	resources           Resources

	numEntryPoints   int
	numErrors        int
	numPushConstants int
	recursive        bool

	invocations        int
	vertices           int
	inputPrimitive     LayoutGeometry
	outputPrimitive    LayoutGeometry
	pixelCenterInteger bool
	originUpperLeft    bool
	vertexSpacing      VertexSpacing
	vertexOrder        VertexOrder
	pointMode          bool
	localSize          [3]int
	localSizeSpecID    [3]int
	earlyFragmentTests bool
	postDepthCoverage  bool
	depthLayout        LayoutDepth
	depthReplacing     bool
	blendEquations     uint32
	xfbMode            bool
	multiStream        bool

	hlslFunctionality1     bool
	layoutOverrideCoverage bool
	geoPassthroughEXT      bool

	shiftBinding         [ResourceCount]int
	shiftBindingForSet   [ResourceCount]map[int]int
	resourceSetBinding   []string
	autoMapBindings      bool
	autoMapLocations     bool
	invertY              bool
	flattenUniformArrays bool
	useUnknownFormat     bool
	hlslOffsets          bool
	useStorageBuffer     bool
	hlslIoMapping        bool

	textureSamplerTransformMode TextureSamplerTransformMode
	needToLegalize              bool
	binaryDoubleOutput          bool

	callGraph      []CallEdge
	ioAccessed     *treeset.Set
	usedIo         [usedIoKinds][]IoRange
	usedAtomics    []OffsetRange
	xfbBuffers     [MaxXfbBuffers]XfbBuffer
	usedConstantID *treeset.Set
	semanticNames  *treeset.Set

	sourceFile string
	sourceText string
	processes  Processes
	sink       InfoSink
	uniqueID   int64
}

// NewIntermediate returns the empty program state of a unit for stage.
func NewIntermediate(stage Stage, version int, profile Profile) *Intermediate {
	in := &Intermediate{
		stage:               stage,
		source:              SourceNone,
		profile:             profile,
		version:             version,
		resources:           DefaultResources(),
		invocations:         LayoutNotSet,
		vertices:            LayoutNotSet,
		localSize:           [3]int{1, 1, 1},
		localSizeSpecID:     [3]int{LayoutNotSet, LayoutNotSet, LayoutNotSet},
		requestedExtensions: treeset.NewWithStringComparator(),
		ioAccessed:          treeset.NewWithStringComparator(),
		usedConstantID:      treeset.NewWithIntComparator(),
		semanticNames:       treeset.NewWithStringComparator(),
	}
	for i := range in.xfbBuffers {
		in.xfbBuffers[i] = newXfbBuffer()
	}
	return in
}

// ImplicitThisName is the name of the hidden object parameter of member
// functions.
const ImplicitThisName = "@this"

// ImplicitCounterName returns the name of the counter buffer paired with
// the structured buffer called name.
func ImplicitCounterName(name string) string { return name + "@count" }

func (in *Intermediate) Stage() Stage { return in.stage }

func (in *Intermediate) Source() Source        { return in.source }
func (in *Intermediate) SetSource(s Source)    { in.source = s }
func (in *Intermediate) Profile() Profile      { return in.profile }
func (in *Intermediate) SetProfile(p Profile)  { in.profile = p }
func (in *Intermediate) Version() int          { return in.version }
func (in *Intermediate) SetVersion(v int)      { in.version = v }
func (in *Intermediate) Spv() SpvVersion       { return in.spv }
func (in *Intermediate) Resources() Resources  { return in.resources }
func (in *Intermediate) SetResources(r Resources) {
	in.resources = r
}

// IsES reports the ES profile.
func (in *Intermediate) IsES() bool { return in.profile == ProfileES }

// SetSpv records the client API and logs the matching client and
// target-environment processes.
func (in *Intermediate) SetSpv(s SpvVersion) {
	in.spv = s

	if s.Vulkan > 0 {
		in.processes.Add("client vulkan100")
	}
	if s.OpenGL > 0 {
		in.processes.Add("client opengl100")
	}

	switch s.Vulkan {
	case 0:
	case TargetVulkan10:
		in.processes.Add("target-env vulkan1.0")
	case TargetVulkan11:
		in.processes.Add("target-env vulkan1.1")
	default:
		in.processes.Add("target-env vulkanUnknown")
	}
	if s.OpenGL > 0 {
		in.processes.Add("target-env opengl")
	}
}

// TreeRoot returns the root aggregate, or nil before any code was added.
func (in *Intermediate) TreeRoot() *Aggregate { return in.treeRoot }

// SetTreeRoot replaces the root.
func (in *Intermediate) SetTreeRoot(root *Aggregate) { in.treeRoot = root }

// AddRequestedExtension records an extension enabled by #extension.
func (in *Intermediate) AddRequestedExtension(ext string) {
	in.requestedExtensions.Add(ext)
}

// RequestedExtension reports whether ext was requested.
func (in *Intermediate) RequestedExtension(ext string) bool {
	return in.requestedExtensions.Contains(ext)
}

// RequestedExtensions returns the requested extensions in sorted order.
func (in *Intermediate) RequestedExtensions() []string {
	return stringValues(in.requestedExtensions)
}

func (in *Intermediate) SetEntryPointName(name string) {
	in.entryPointName = name
	in.processes.Add("entry-point")
	in.processes.AddArgumentString(name)
}

func (in *Intermediate) EntryPointName() string            { return in.entryPointName }
func (in *Intermediate) SetEntryPointMangledName(n string) { in.entryPointMangledName = n }
func (in *Intermediate) EntryPointMangledName() string     { return in.entryPointMangledName }

func (in *Intermediate) IncrementEntryPointCount() { in.numEntryPoints++ }
func (in *Intermediate) NumEntryPoints() int       { return in.numEntryPoints }
func (in *Intermediate) AddPushConstantCount()     { in.numPushConstants++ }
func (in *Intermediate) NumPushConstants() int     { return in.numPushConstants }
func (in *Intermediate) NumErrors() int            { return in.numErrors }
func (in *Intermediate) IsRecursive() bool         { return in.recursive }

// InfoSink returns the diagnostics collected so far.
func (in *Intermediate) InfoSink() *InfoSink { return &in.sink }

// Processes returns the provenance log.
func (in *Intermediate) Processes() []string { return in.processes.List() }

// SetShiftBinding sets the binding offset applied to resources of kind res.
func (in *Intermediate) SetShiftBinding(res ResourceType, shift int) {
	in.shiftBinding[res] = shift
	in.processes.AddIfNonZero(res.ProcessName(), shift)
}

func (in *Intermediate) ShiftBinding(res ResourceType) int { return in.shiftBinding[res] }

// SetShiftBindingForSet sets the binding offset for kind res within one
// descriptor set. A zero shift is ignored.
func (in *Intermediate) SetShiftBindingForSet(res ResourceType, shift, set int) {
	if shift == 0 {
		return
	}
	if in.shiftBindingForSet[res] == nil {
		in.shiftBindingForSet[res] = make(map[int]int)
	}
	in.shiftBindingForSet[res][set] = shift

	in.processes.Add(res.ProcessName())
	in.processes.AddArgument(shift)
	in.processes.AddArgument(set)
}

// ShiftBindingForSet returns the per-set shift and whether one was set.
func (in *Intermediate) ShiftBindingForSet(res ResourceType, set int) (int, bool) {
	shift, ok := in.shiftBindingForSet[res][set]
	return shift, ok
}

func (in *Intermediate) SetResourceSetBinding(bindings []string) {
	in.resourceSetBinding = bindings
	if len(bindings) > 0 {
		in.processes.Add("resource-set-binding")
		for _, b := range bindings {
			in.processes.AddArgumentString(b)
		}
	}
}

func (in *Intermediate) ResourceSetBinding() []string { return in.resourceSetBinding }

func (in *Intermediate) SetAutoMapBindings(v bool) {
	in.autoMapBindings = v
	if v {
		in.processes.Add("auto-map-bindings")
	}
}

func (in *Intermediate) AutoMapBindings() bool { return in.autoMapBindings }

func (in *Intermediate) SetAutoMapLocations(v bool) {
	in.autoMapLocations = v
	if v {
		in.processes.Add("auto-map-locations")
	}
}

func (in *Intermediate) AutoMapLocations() bool { return in.autoMapLocations }

func (in *Intermediate) SetInvertY(v bool) {
	in.invertY = v
	if v {
		in.processes.Add("invert-y")
	}
}

func (in *Intermediate) InvertY() bool { return in.invertY }

func (in *Intermediate) SetFlattenUniformArrays(v bool) {
	in.flattenUniformArrays = v
	if v {
		in.processes.Add("flatten-uniform-arrays")
	}
}

func (in *Intermediate) FlattenUniformArrays() bool { return in.flattenUniformArrays }

func (in *Intermediate) SetNoStorageFormat(v bool) {
	in.useUnknownFormat = v
	if v {
		in.processes.Add("no-storage-format")
	}
}

func (in *Intermediate) UseUnknownFormat() bool { return in.useUnknownFormat }

func (in *Intermediate) SetHlslOffsets() {
	in.hlslOffsets = true
	in.processes.Add("hlsl-offsets")
}

func (in *Intermediate) UsingHlslOffsets() bool { return in.hlslOffsets }

func (in *Intermediate) SetUseStorageBuffer() {
	in.useStorageBuffer = true
	in.processes.Add("use-storage-buffer")
}

func (in *Intermediate) UsingStorageBuffer() bool { return in.useStorageBuffer }

func (in *Intermediate) SetHlslIoMapping(v bool) {
	in.hlslIoMapping = v
	if v {
		in.processes.Add("hlsl-iomap")
	}
}

func (in *Intermediate) UsingHlslIoMapping() bool { return in.hlslIoMapping }

func (in *Intermediate) SetTextureSamplerTransformMode(m TextureSamplerTransformMode) {
	in.textureSamplerTransformMode = m
}

func (in *Intermediate) TextureSamplerTransformMode() TextureSamplerTransformMode {
	return in.textureSamplerTransformMode
}

// SetNeedsLegalization flags constructs a backend must rewrite before the
// tree can be lowered directly.
func (in *Intermediate) SetNeedsLegalization()   { in.needToLegalize = true }
func (in *Intermediate) NeedsLegalization() bool { return in.needToLegalize }

func (in *Intermediate) SetBinaryDoubleOutput()     { in.binaryDoubleOutput = true }
func (in *Intermediate) BinaryDoubleOutput() bool   { return in.binaryDoubleOutput }
func (in *Intermediate) SetHlslFunctionality1()     { in.hlslFunctionality1 = true }
func (in *Intermediate) HlslFunctionality1() bool   { return in.hlslFunctionality1 }
func (in *Intermediate) SetLayoutOverrideCoverage() { in.layoutOverrideCoverage = true }
func (in *Intermediate) LayoutOverrideCoverage() bool {
	return in.layoutOverrideCoverage
}
func (in *Intermediate) SetGeoPassthroughEXT()   { in.geoPassthroughEXT = true }
func (in *Intermediate) GeoPassthroughEXT() bool { return in.geoPassthroughEXT }

// The setters below are first-write-wins: once a value is set, a later call
// succeeds only when it repeats the same value.

func (in *Intermediate) SetInvocations(n int) bool {
	if in.invocations != LayoutNotSet {
		return in.invocations == n
	}
	in.invocations = n
	return true
}

func (in *Intermediate) Invocations() int { return in.invocations }

func (in *Intermediate) SetVertices(n int) bool {
	if in.vertices != LayoutNotSet {
		return in.vertices == n
	}
	in.vertices = n
	return true
}

func (in *Intermediate) Vertices() int { return in.vertices }

func (in *Intermediate) SetInputPrimitive(p LayoutGeometry) bool {
	if in.inputPrimitive != GeometryNone {
		return in.inputPrimitive == p
	}
	in.inputPrimitive = p
	return true
}

func (in *Intermediate) InputPrimitive() LayoutGeometry { return in.inputPrimitive }

func (in *Intermediate) SetOutputPrimitive(p LayoutGeometry) bool {
	if in.outputPrimitive != GeometryNone {
		return in.outputPrimitive == p
	}
	in.outputPrimitive = p
	return true
}

func (in *Intermediate) OutputPrimitive() LayoutGeometry { return in.outputPrimitive }

func (in *Intermediate) SetVertexSpacing(s VertexSpacing) bool {
	if in.vertexSpacing != SpacingNone {
		return in.vertexSpacing == s
	}
	in.vertexSpacing = s
	return true
}

func (in *Intermediate) VertexSpacing() VertexSpacing { return in.vertexSpacing }

func (in *Intermediate) SetVertexOrder(o VertexOrder) bool {
	if in.vertexOrder != OrderNone {
		return in.vertexOrder == o
	}
	in.vertexOrder = o
	return true
}

func (in *Intermediate) VertexOrder() VertexOrder { return in.vertexOrder }

func (in *Intermediate) SetDepth(d LayoutDepth) bool {
	if in.depthLayout != DepthNone {
		return in.depthLayout == d
	}
	in.depthLayout = d
	return true
}

func (in *Intermediate) Depth() LayoutDepth { return in.depthLayout }

// SetLocalSize sets one work-group dimension. The default of 1 counts as
// unset.
func (in *Intermediate) SetLocalSize(dim, size int) bool {
	if in.localSize[dim] > 1 {
		return in.localSize[dim] == size
	}
	in.localSize[dim] = size
	return true
}

func (in *Intermediate) LocalSize(dim int) int { return in.localSize[dim] }

func (in *Intermediate) SetLocalSizeSpecID(dim, id int) bool {
	if in.localSizeSpecID[dim] != LayoutNotSet {
		return in.localSizeSpecID[dim] == id
	}
	in.localSizeSpecID[dim] = id
	return true
}

func (in *Intermediate) LocalSizeSpecID(dim int) int { return in.localSizeSpecID[dim] }

// SetXfbBufferStride sets the declared stride of an xfb buffer. It fails
// for a buffer index outside [0, MaxXfbBuffers).
func (in *Intermediate) SetXfbBufferStride(buffer, stride int) bool {
	if !validXfbBuffer(buffer) {
		return false
	}
	b := &in.xfbBuffers[buffer]
	if b.Stride != LayoutNotSet {
		return b.Stride == stride
	}
	b.Stride = stride
	return true
}

func (in *Intermediate) XfbBufferStride(buffer int) int {
	if !validXfbBuffer(buffer) {
		return LayoutNotSet
	}
	return in.xfbBuffers[buffer].Stride
}

// XfbBuffer returns the bookkeeping of one xfb buffer, or nil for an
// index out of range.
func (in *Intermediate) XfbBuffer(buffer int) *XfbBuffer {
	if !validXfbBuffer(buffer) {
		return nil
	}
	return &in.xfbBuffers[buffer]
}

func validXfbBuffer(buffer int) bool { return buffer >= 0 && buffer < MaxXfbBuffers }

func (in *Intermediate) SetPointMode()              { in.pointMode = true }
func (in *Intermediate) PointMode() bool            { return in.pointMode }
func (in *Intermediate) SetPixelCenterInteger()     { in.pixelCenterInteger = true }
func (in *Intermediate) PixelCenterInteger() bool   { return in.pixelCenterInteger }
func (in *Intermediate) SetOriginUpperLeft()        { in.originUpperLeft = true }
func (in *Intermediate) OriginUpperLeft() bool      { return in.originUpperLeft }
func (in *Intermediate) SetEarlyFragmentTests()     { in.earlyFragmentTests = true }
func (in *Intermediate) EarlyFragmentTests() bool   { return in.earlyFragmentTests }
func (in *Intermediate) SetPostDepthCoverage()      { in.postDepthCoverage = true }
func (in *Intermediate) PostDepthCoverage() bool    { return in.postDepthCoverage }
func (in *Intermediate) SetDepthReplacing()         { in.depthReplacing = true }
func (in *Intermediate) IsDepthReplacing() bool     { return in.depthReplacing }
func (in *Intermediate) SetXfbMode()                { in.xfbMode = true }
func (in *Intermediate) XfbMode() bool              { return in.xfbMode }
func (in *Intermediate) SetMultiStream()            { in.multiStream = true }
func (in *Intermediate) IsMultiStream() bool        { return in.multiStream }
func (in *Intermediate) BlendEquations() uint32     { return in.blendEquations }
func (in *Intermediate) AddBlendEquation(b BlendEquationShift) {
	in.blendEquations |= 1 << b
}

// AddIoAccessed records that the named IO variable is read or written.
func (in *Intermediate) AddIoAccessed(name string) { in.ioAccessed.Add(name) }

// InIoAccessed reports whether name was recorded by AddIoAccessed.
func (in *Intermediate) InIoAccessed(name string) bool { return in.ioAccessed.Contains(name) }

// IoAccessed returns the accessed IO names in sorted order.
func (in *Intermediate) IoAccessed() []string { return stringValues(in.ioAccessed) }

// AddSemanticName interns an HLSL semantic name.
func (in *Intermediate) AddSemanticName(name string) string {
	in.semanticNames.Add(name)
	return name
}

// SemanticNames returns the interned semantic names in sorted order.
func (in *Intermediate) SemanticNames() []string { return stringValues(in.semanticNames) }

func (in *Intermediate) SetSourceFile(file string) { in.sourceFile = file }
func (in *Intermediate) SourceFile() string        { return in.sourceFile }
func (in *Intermediate) SetSourceText(text string) { in.sourceText = text }
func (in *Intermediate) SourceText() string        { return in.sourceText }

// Error records a linker-style error and counts it.
func (in *Intermediate) Error(message string) {
	in.sink.Error(SourceLoc{}, fmt.Sprintf("Linking %s stage: %s", in.stage, message))
	in.numErrors++
}

// Warn records a linker-style warning.
func (in *Intermediate) Warn(message string) {
	in.sink.Warn(SourceLoc{}, fmt.Sprintf("Linking %s stage: %s", in.stage, message))
}

// SourceError records an error at loc and counts it.
func (in *Intermediate) SourceError(loc SourceLoc, message string) {
	in.sink.Error(loc, message)
	in.numErrors++
}

// nextID returns a fresh identifier for compiler-generated symbols.
func (in *Intermediate) nextID() int64 {
	in.uniqueID++
	return -in.uniqueID
}

func stringValues(set *treeset.Set) []string {
	vals := set.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.(string)
	}
	return out
}
