package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTree is returned by FinalCheck for a unit that has no tree.
var ErrNoTree = errors.New("ir: unit has no tree")

// Merge folds unit into in. Both must be for the same stage. Conflicts
// are reported through the info sink; the first unit's values win.
func (in *Intermediate) Merge(unit *Intermediate) {
	log.Debugf("merging %s unit (version %d) into version %d", unit.stage, unit.version, in.version)

	if in.stage != unit.stage {
		in.Error("can't link compilation units from different stages")
		return
	}
	if in.source == SourceNone {
		in.source = unit.source
	}
	if in.source != unit.source {
		in.Error("can't link compilation units from different source languages")
	}
	if (in.profile == ProfileES) != (unit.profile == ProfileES) {
		in.Error("Cannot cross link ES and desktop profiles")
	}

	if in.source == SourceHLSL && unit.entryPointName != "" {
		if in.entryPointName != "" {
			in.Error("can't handle multiple entry points per stage")
		} else {
			in.entryPointName = unit.entryPointName
			in.entryPointMangledName = unit.entryPointMangledName
		}
	}
	in.numEntryPoints += unit.numEntryPoints
	in.numErrors += unit.numErrors
	in.numPushConstants += unit.numPushConstants
	in.callGraph = append(in.callGraph, unit.callGraph...)

	in.mergeModes(unit)

	if unit.treeRoot == nil {
		return
	}
	if in.treeRoot == nil {
		in.treeRoot = unit.treeRoot
		in.version = unit.version
		in.requestedExtensions.Add(unit.requestedExtensions.Values()...)
		in.ioAccessed.Add(unit.ioAccessed.Values()...)
		return
	}

	in.version = max(in.version, unit.version)
	in.requestedExtensions.Add(unit.requestedExtensions.Values()...)

	linkerObjects, unitLinkerObjects := in.LinkerObjects(), unit.LinkerObjects()
	in.mergeBodies(unit.treeRoot.Seq, unitLinkerObjects != nil)
	switch {
	case unitLinkerObjects == nil:
	case linkerObjects == nil:
		in.treeRoot.Seq = append(in.treeRoot.Seq, unitLinkerObjects)
	default:
		in.mergeLinkerObjects(linkerObjects, unitLinkerObjects)
	}

	in.ioAccessed.Add(unit.ioAccessed.Values()...)
}

func (in *Intermediate) mergeModes(unit *Intermediate) {
	if in.invocations == LayoutNotSet {
		in.invocations = unit.invocations
	} else if unit.invocations != LayoutNotSet && in.invocations != unit.invocations {
		in.Error("number of invocations must match between compilation units")
	}

	if in.originUpperLeft != unit.originUpperLeft || in.pixelCenterInteger != unit.pixelCenterInteger {
		in.Error("gl_FragCoord redeclarations must match across shaders")
	}
	in.earlyFragmentTests = in.earlyFragmentTests || unit.earlyFragmentTests
	in.postDepthCoverage = in.postDepthCoverage || unit.postDepthCoverage

	if in.depthLayout == DepthNone {
		in.depthLayout = unit.depthLayout
	} else if unit.depthLayout != DepthNone && in.depthLayout != unit.depthLayout {
		in.Error("Contradictory depth layouts")
	}
	in.depthReplacing = in.depthReplacing || unit.depthReplacing
	in.blendEquations |= unit.blendEquations

	if in.inputPrimitive == GeometryNone {
		in.inputPrimitive = unit.inputPrimitive
	} else if unit.inputPrimitive != GeometryNone && in.inputPrimitive != unit.inputPrimitive {
		in.Error("Contradictory input layout primitives")
	}
	if in.outputPrimitive == GeometryNone {
		in.outputPrimitive = unit.outputPrimitive
	} else if unit.outputPrimitive != GeometryNone && in.outputPrimitive != unit.outputPrimitive {
		in.Error("Contradictory output layout primitives")
	}

	if in.vertices == LayoutNotSet {
		in.vertices = unit.vertices
	} else if unit.vertices != LayoutNotSet && in.vertices != unit.vertices {
		switch in.stage {
		case StageGeometry:
			in.Error("Contradictory layout max_vertices values")
		case StageTessControl:
			in.Error("Contradictory layout vertices values")
		}
	}

	if in.vertexSpacing == SpacingNone {
		in.vertexSpacing = unit.vertexSpacing
	} else if unit.vertexSpacing != SpacingNone && in.vertexSpacing != unit.vertexSpacing {
		in.Error("Contradictory input vertex spacing")
	}
	if in.vertexOrder == OrderNone {
		in.vertexOrder = unit.vertexOrder
	} else if unit.vertexOrder != OrderNone && in.vertexOrder != unit.vertexOrder {
		in.Error("Contradictory triangle ordering")
	}
	in.pointMode = in.pointMode || unit.pointMode

	for i := range in.localSize {
		if in.localSize[i] == 1 {
			in.localSize[i] = unit.localSize[i]
		} else if unit.localSize[i] != 1 && in.localSize[i] != unit.localSize[i] {
			in.Error("Contradictory local size")
		}
		if in.localSizeSpecID[i] == LayoutNotSet {
			in.localSizeSpecID[i] = unit.localSizeSpecID[i]
		} else if unit.localSizeSpecID[i] != LayoutNotSet && in.localSizeSpecID[i] != unit.localSizeSpecID[i] {
			in.Error("Contradictory local size specialization ids")
		}
	}

	in.xfbMode = in.xfbMode || unit.xfbMode
	in.multiStream = in.multiStream || unit.multiStream
	for b := range in.xfbBuffers {
		buf, ubuf := &in.xfbBuffers[b], &unit.xfbBuffers[b]
		if buf.Stride == LayoutNotSet {
			buf.Stride = ubuf.Stride
		} else if ubuf.Stride != LayoutNotSet && buf.Stride != ubuf.Stride {
			in.Error("Contradictory xfb_stride")
		}
		buf.ImplicitStride = max(buf.ImplicitStride, ubuf.ImplicitStride)
		buf.ContainsDouble = buf.ContainsDouble || ubuf.ContainsDouble
		buf.Ranges = append(buf.Ranges, ubuf.Ranges...)
	}
}

// mergeBodies reports function bodies defined in both units and splices
// the unit's globals in front of the linker objects.
func (in *Intermediate) mergeBodies(unitGlobals []Node, unitHasLinkerObjects bool) {
	if unitHasLinkerObjects {
		unitGlobals = unitGlobals[:len(unitGlobals)-1]
	}
	globals := in.treeRoot.Seq
	linkerObjects := in.LinkerObjects()
	if linkerObjects != nil {
		globals = globals[:len(globals)-1]
	}

	for _, g := range globals {
		body := AsAggregate(g)
		if body == nil || body.Op != OpFunction {
			continue
		}
		for _, ug := range unitGlobals {
			if unitBody := AsAggregate(ug); unitBody != nil && unitBody.Op == OpFunction && unitBody.Name == body.Name {
				in.Error("Multiple function bodies in multiple compilation units for the same signature in the same stage:")
				in.sink.Info(SourceLoc{}, "    "+body.Name)
			}
		}
	}

	merged := make([]Node, 0, len(globals)+len(unitGlobals)+1)
	merged = append(merged, globals...)
	merged = append(merged, unitGlobals...)
	if linkerObjects != nil {
		merged = append(merged, linkerObjects)
	}
	in.treeRoot.Seq = merged
}

// mergeLinkerObjects adds the unit's linker objects, matching by name
// objects both units declare.
func (in *Intermediate) mergeLinkerObjects(linkerObjects, unitLinkerObjects *Aggregate) {
	initial := len(linkerObjects.Seq)
	for _, un := range unitLinkerObjects.Seq {
		unitSymbol := AsSymbol(un)
		if unitSymbol == nil {
			continue
		}
		merge := true
		for _, n := range linkerObjects.Seq[:initial] {
			symbol := AsSymbol(n)
			if symbol == nil || symbol.Name != unitSymbol.Name {
				continue
			}
			merge = false

			// Take over an initializer or binding only one side has.
			if len(symbol.ConstArray) == 0 && len(unitSymbol.ConstArray) > 0 {
				symbol.ConstArray = unitSymbol.ConstArray
			}
			sq, uq := QualifierOf(symbol), QualifierOf(unitSymbol)
			if !sq.HasBinding() && uq.HasBinding() {
				sq.Binding = uq.Binding
			}
			mergeImplicitArraySizes(symbol.Type(), unitSymbol.Type())
			in.mergeErrorCheck(symbol, unitSymbol, false)
		}
		if merge {
			linkerObjects.Seq = append(linkerObjects.Seq, un)
		}
	}
}

func mergeImplicitArraySizes(t, unit *Type) {
	if t.IsUnsizedArray() {
		switch {
		case unit.IsUnsizedArray():
			t.Arrays.UpdateImplicitSize(unit.Arrays.ImplicitSize)
			if unit.Arrays.VariablyIndexed {
				t.Arrays.VariablyIndexed = true
			}
		case unit.IsSizedArray():
			t.Arrays.SetOuterSize(unit.OuterArraySize())
		}
	}
	if !t.IsStruct() || !unit.IsStruct() || len(t.Members) != len(unit.Members) {
		return
	}
	for i := range t.Members {
		mergeImplicitArraySizes(t.Members[i].Type, unit.Members[i].Type)
	}
}

// mergeErrorCheck reports differences between two declarations of one
// linker object. crossStage relaxes the checks that only apply within a
// stage.
func (in *Intermediate) mergeErrorCheck(symbol, unitSymbol *Symbol, crossStage bool) {
	t, ut := symbol.Type(), unitSymbol.Type()
	q, uq := &t.Qualifier, &ut.Qualifier
	writeTypeComparison := false
	fail := func(msg string) {
		in.Error(msg)
		writeTypeComparison = true
	}

	if !sameShape(t, ut) {
		// An implicitly sized array may meet a sized one.
		if !(t.IsArray() && ut.IsArray() && t.SameElementType(ut) && (t.IsUnsizedArray() || ut.IsUnsizedArray())) {
			fail("Types must match:")
		}
	}
	if q.Storage != uq.Storage {
		fail("Storage qualifiers must match:")
	}
	if q.Precision != uq.Precision {
		fail("Precision qualifiers must match:")
	}
	if !crossStage && q.Invariant != uq.Invariant {
		fail("Presence of invariant qualifier must match:")
	}
	if !crossStage && q.Precise != uq.Precise {
		fail("Presence of precise qualifier must match:")
	}
	if q.Centroid != uq.Centroid || q.Smooth != uq.Smooth || q.Flat != uq.Flat ||
		q.Sample != uq.Sample || q.Patch != uq.Patch || q.NoPerspective != uq.NoPerspective {
		fail("Interpolation and auxiliary storage qualifiers must match:")
	}
	if q.Coherent != uq.Coherent || q.Volatile != uq.Volatile || q.Restrict != uq.Restrict ||
		q.ReadOnly != uq.ReadOnly || q.WriteOnly != uq.WriteOnly {
		fail("Memory qualifiers must match:")
	}
	if q.Matrix != uq.Matrix || q.Packing != uq.Packing || q.Location != uq.Location ||
		q.Component != uq.Component || q.Index != uq.Index || q.Binding != uq.Binding ||
		(q.HasBinding() && q.Offset != uq.Offset) {
		fail("Layout qualification must match:")
	}

	if !writeTypeComparison && len(symbol.ConstArray) > 0 && len(unitSymbol.ConstArray) > 0 &&
		!symbol.ConstArray.Equal(unitSymbol.ConstArray) {
		in.Error("Initializers must match:")
		in.sink.Info(SourceLoc{}, "    "+symbol.Name)
	}

	if writeTypeComparison {
		in.sink.Info(SourceLoc{}, fmt.Sprintf("    %s: %q versus %q", symbol.Name, t.CompleteString(), ut.CompleteString()))
	}
}

// sameShape compares types ignoring qualifiers.
func sameShape(a, b *Type) bool { return KeyOf(a) == KeyOf(b) }

// FinalCheck runs the whole-program checks once every unit is merged, and
// settles defaults the program left unset.
func (in *Intermediate) FinalCheck(keepUncalled bool) error {
	if in.treeRoot == nil {
		return ErrNoTree
	}

	if in.numEntryPoints < 1 {
		if in.source == SourceGLSL {
			in.Error("Missing entry point: Each stage requires one entry point")
		} else {
			in.Warn("Entry point not found")
		}
	}
	if in.numPushConstants > 1 {
		in.Error("Only one push_constant block is allowed per stage")
	}

	in.CheckCallGraphCycles()
	in.CheckCallGraphBodies(keepUncalled)

	in.inOutLocationCheck()

	if in.invocations == LayoutNotSet {
		in.invocations = 1
	}

	if in.InIoAccessed("gl_ClipDistance") && in.InIoAccessed("gl_ClipVertex") {
		in.Error("Can only use one of gl_ClipDistance or gl_ClipVertex (gl_ClipDistance is preferred)")
	}
	if in.InIoAccessed("gl_CullDistance") && in.InIoAccessed("gl_ClipVertex") {
		in.Error("Can only use one of gl_CullDistance or gl_ClipVertex (gl_ClipDistance is preferred)")
	}
	if in.userOutputUsed() && (in.InIoAccessed("gl_FragColor") || in.InIoAccessed("gl_FragData")) {
		in.Error("Cannot use gl_FragColor or gl_FragData when using user-defined outputs")
	}
	if in.InIoAccessed("gl_FragColor") && in.InIoAccessed("gl_FragData") {
		in.Error("Cannot use both gl_FragColor and gl_FragData")
	}

	in.finalizeXfbBuffers()

	switch in.stage {
	case StageTessControl:
		if in.vertices == LayoutNotSet {
			in.Error("At least one shader must specify an output layout(vertices=...)")
		}
	case StageTessEvaluation:
		if in.source == SourceGLSL {
			if in.inputPrimitive == GeometryNone {
				in.Error("At least one shader must specify an input layout primitive")
			}
			if in.vertexSpacing == SpacingNone {
				in.vertexSpacing = SpacingEqual
			}
			if in.vertexOrder == OrderNone {
				in.vertexOrder = OrderCcw
			}
		}
	case StageGeometry:
		if in.inputPrimitive == GeometryNone {
			in.Error("At least one shader must specify an input layout primitive")
		}
		if in.outputPrimitive == GeometryNone {
			in.Error("At least one shader must specify an output layout primitive")
		}
		if in.vertices == LayoutNotSet {
			in.Error("At least one shader must specify a layout(max_vertices = value)")
		}
	case StageFragment:
		if in.postDepthCoverage && !in.earlyFragmentTests {
			in.Error("post_depth_coverage requires early_fragment_tests")
		}
	}

	// Unsized arrays adopt the size implied by their constant indexing;
	// variably indexed ones stay runtime sized.
	Inspect(in.treeRoot, func(n Node) bool {
		if s, ok := n.(*Symbol); ok {
			adoptImplicitArraySizes(s.Type())
		}
		return true
	})

	log.Debugf("final check of %s stage: %d errors", in.stage, in.numErrors)
	return nil
}

func adoptImplicitArraySizes(t *Type) {
	if t.IsArray() && t.Arrays.IsOuterUnsized() && !t.Arrays.VariablyIndexed {
		t.Arrays.SetOuterSize(max(t.Arrays.ImplicitSize, 1))
	}
	for _, m := range t.Members {
		adoptImplicitArraySizes(m.Type)
	}
}

func (in *Intermediate) finalizeXfbBuffers() {
	for b := range in.xfbBuffers {
		buf := &in.xfbBuffers[b]
		if buf.ContainsDouble {
			buf.ImplicitStride = roundToPow2(buf.ImplicitStride, 8)
		}

		if buf.Stride != LayoutNotSet && buf.ImplicitStride > buf.Stride {
			in.Error("xfb_stride is too small to hold all buffer entries:")
			in.sink.Error(SourceLoc{}, fmt.Sprintf("    xfb_buffer %d, xfb_stride %d, minimum stride needed: %d", b, buf.Stride, buf.ImplicitStride))
		}
		if buf.Stride == LayoutNotSet {
			buf.Stride = buf.ImplicitStride
		}

		if buf.ContainsDouble && buf.Stride%8 != 0 {
			in.Error("xfb_stride must be multiple of 8 for buffer holding a double:")
			in.sink.Error(SourceLoc{}, fmt.Sprintf("    xfb_buffer %d, xfb_stride %d", b, buf.Stride))
		} else if buf.Stride%4 != 0 {
			in.Error("xfb_stride must be multiple of 4:")
			in.sink.Error(SourceLoc{}, fmt.Sprintf("    xfb_buffer %d, xfb_stride %d", b, buf.Stride))
		}

		limit := in.resources.MaxTransformFeedbackInterleavedComponents
		if buf.Stride > 4*limit {
			in.Error("xfb_stride is too large:")
			in.sink.Error(SourceLoc{}, fmt.Sprintf("    xfb_buffer %d, components (1/4 stride) needed are %d, gl_MaxTransformFeedbackInterleavedComponents is %d", b, buf.Stride/4, limit))
		}
		if buf.Stride > 0 && b >= in.resources.MaxTransformFeedbackBuffers {
			in.Error(fmt.Sprintf("xfb_buffer %d is too large: gl_MaxTransformFeedbackBuffers is %d", b, in.resources.MaxTransformFeedbackBuffers))
		}
	}
}

// inOutLocationCheck rebuilds the in and out location tables from the
// linker objects of the whole program, reporting aliasing, and applies
// the ES rule on unlocated fragment outputs.
func (in *Intermediate) inOutLocationCheck() {
	objects := in.LinkerObjects()
	if objects == nil {
		return
	}

	in.usedIo[IoIn] = nil
	in.usedIo[IoOut] = nil

	numFragOut := 0
	fragOutWithNoLocation := false
	for _, n := range objects.Seq {
		s := AsSymbol(n)
		if s == nil {
			continue
		}
		q := QualifierOf(s)
		if in.stage == StageFragment && q.Storage == StorageVaryingOut && q.BuiltIn == BuiltInNone {
			numFragOut++
			if !q.HasLocation() {
				fragOutWithNoLocation = true
			}
		}
		if !(q.IsPipeInput() || q.IsPipeOutput()) || !q.HasLocation() || q.BuiltIn != BuiltInNone {
			continue
		}
		loc, typeCollision := in.AddUsedLocation(q, s.Type())
		switch {
		case loc < 0:
		case typeCollision:
			in.Error(fmt.Sprintf("declarations sharing location %d must have the same basic type:", loc))
			in.sink.Info(SourceLoc{}, "    "+s.Name)
		default:
			in.Error(fmt.Sprintf("overlapping use of location %d:", loc))
			in.sink.Info(SourceLoc{}, "    "+s.Name)
		}
	}

	if in.IsES() && numFragOut > 1 && fragOutWithNoLocation {
		in.Error("when more than one fragment shader output, all must have location qualifiers")
	}
}

// userOutputUsed reports an accessed output that is not a built-in.
func (in *Intermediate) userOutputUsed() bool {
	objects := in.LinkerObjects()
	if objects == nil {
		return false
	}
	for _, n := range objects.Seq {
		s := AsSymbol(n)
		if s != nil && QualifierOf(s).Storage == StorageVaryingOut &&
			!strings.HasPrefix(s.Name, "gl_") && in.InIoAccessed(s.Name) {
			return true
		}
	}
	return false
}
