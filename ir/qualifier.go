package ir

import (
	"fmt"
	"strings"
)

// LayoutNotSet marks an unset integer layout value.
const LayoutNotSet = -1

// Qualifier holds storage, precision, interpolation, memory and layout
// qualification of a type.
type Qualifier struct {
	Storage   StorageQualifier
	Precision Precision
	BuiltIn   BuiltIn

	Invariant     bool
	Precise       bool
	Centroid      bool
	Patch         bool
	Sample        bool
	Flat          bool
	Smooth        bool
	NoPerspective bool
	Explicit      bool

	Coherent  bool
	Volatile  bool
	Restrict  bool
	ReadOnly  bool
	WriteOnly bool

	SpecConstant bool

	Location       int
	Component      int
	Index          int
	Set            int
	Binding        int
	Offset         int
	XfbBuffer      int
	XfbStride      int
	XfbOffset      int
	SpecConstantID int

	Packing      LayoutPacking
	Matrix       LayoutMatrix
	PushConstant bool
}

// NewQualifier returns a qualifier for storage with no layout set.
func NewQualifier(storage StorageQualifier) Qualifier {
	q := Qualifier{Storage: storage}
	q.ClearLayout()
	return q
}

// ClearLayout resets every layout field to unset.
func (q *Qualifier) ClearLayout() {
	q.Location = LayoutNotSet
	q.Component = LayoutNotSet
	q.Index = LayoutNotSet
	q.Set = LayoutNotSet
	q.Binding = LayoutNotSet
	q.Offset = LayoutNotSet
	q.XfbBuffer = LayoutNotSet
	q.XfbStride = LayoutNotSet
	q.XfbOffset = LayoutNotSet
	q.SpecConstantID = LayoutNotSet
	q.Packing = PackingNone
	q.Matrix = MatrixNone
	q.PushConstant = false
}

func (q *Qualifier) HasLocation() bool       { return q.Location != LayoutNotSet }
func (q *Qualifier) HasComponent() bool      { return q.Component != LayoutNotSet }
func (q *Qualifier) HasIndex() bool          { return q.Index != LayoutNotSet }
func (q *Qualifier) HasSet() bool            { return q.Set != LayoutNotSet }
func (q *Qualifier) HasBinding() bool        { return q.Binding != LayoutNotSet }
func (q *Qualifier) HasOffset() bool         { return q.Offset != LayoutNotSet }
func (q *Qualifier) HasXfbBuffer() bool      { return q.XfbBuffer != LayoutNotSet }
func (q *Qualifier) HasXfbStride() bool      { return q.XfbStride != LayoutNotSet }
func (q *Qualifier) HasXfbOffset() bool      { return q.XfbOffset != LayoutNotSet }
func (q *Qualifier) HasSpecConstantID() bool { return q.SpecConstantID != LayoutNotSet }

// HasLayout reports whether any layout qualification is present.
func (q *Qualifier) HasLayout() bool {
	return q.HasLocation() || q.HasComponent() || q.HasIndex() || q.HasSet() ||
		q.HasBinding() || q.HasOffset() || q.HasXfbBuffer() || q.HasXfbStride() ||
		q.HasXfbOffset() || q.HasSpecConstantID() || q.Packing != PackingNone ||
		q.Matrix != MatrixNone || q.PushConstant
}

// IsPipeInput reports a shader-stage input.
func (q *Qualifier) IsPipeInput() bool { return q.Storage == StorageVaryingIn }

// IsPipeOutput reports a shader-stage output.
func (q *Qualifier) IsPipeOutput() bool { return q.Storage == StorageVaryingOut }

// IsUniformOrBuffer reports uniform and buffer storage.
func (q *Qualifier) IsUniformOrBuffer() bool {
	return q.Storage == StorageUniform || q.Storage == StorageBuffer
}

// IsIo reports storage that crosses the shader boundary.
func (q *Qualifier) IsIo() bool {
	return q.IsPipeInput() || q.IsPipeOutput() || q.IsUniformOrBuffer()
}

// IsConstant reports compile-time and read-only constants.
func (q *Qualifier) IsConstant() bool {
	return q.Storage == StorageConst || q.Storage == StorageConstReadOnly
}

// IsFrontEndConstant reports a constant whose value is known now.
func (q *Qualifier) IsFrontEndConstant() bool {
	return q.Storage == StorageConst && !q.SpecConstant
}

// IsSpecConstant reports a specialization constant.
func (q *Qualifier) IsSpecConstant() bool { return q.SpecConstant }

// IsInterpolation reports any interpolation qualifier.
func (q *Qualifier) IsInterpolation() bool { return q.Flat || q.Smooth || q.NoPerspective || q.Explicit }

// IsAuxiliary reports centroid, patch or sample.
func (q *Qualifier) IsAuxiliary() bool { return q.Centroid || q.Patch || q.Sample }

// IsMemory reports any memory qualifier.
func (q *Qualifier) IsMemory() bool {
	return q.Coherent || q.Volatile || q.Restrict || q.ReadOnly || q.WriteOnly
}

// IsArrayedIo reports whether declarations with this qualifier carry an
// extra per-vertex outer array dimension in stage.
func (q *Qualifier) IsArrayedIo(stage Stage) bool {
	switch stage {
	case StageGeometry:
		return q.IsPipeInput()
	case StageTessControl:
		return !q.Patch && (q.IsPipeInput() || q.IsPipeOutput())
	case StageTessEvaluation:
		return !q.Patch && q.IsPipeInput()
	}
	return false
}

// MakeTemporary turns the qualifier into a plain temporary, keeping
// precision.
func (q *Qualifier) MakeTemporary() {
	prec := q.Precision
	*q = NewQualifier(StorageTemporary)
	q.Precision = prec
}

// MakeSpecConstant marks the qualifier as a specialization constant.
func (q *Qualifier) MakeSpecConstant() {
	q.Storage = StorageConst
	q.SpecConstant = true
}

// LayoutString renders the layout qualifiers as "layout(...)", or "" when
// none are set.
func (q *Qualifier) LayoutString() string {
	var parts []string
	add := func(name string, v int) {
		if v != LayoutNotSet {
			parts = append(parts, fmt.Sprintf("%s=%d", name, v))
		}
	}
	add("location", q.Location)
	add("component", q.Component)
	add("index", q.Index)
	add("set", q.Set)
	add("binding", q.Binding)
	add("offset", q.Offset)
	add("xfb_buffer", q.XfbBuffer)
	add("xfb_stride", q.XfbStride)
	add("xfb_offset", q.XfbOffset)
	add("constant_id", q.SpecConstantID)
	if q.Packing != PackingNone {
		parts = append(parts, q.Packing.String())
	}
	switch q.Matrix {
	case MatrixRowMajor:
		parts = append(parts, "row_major")
	case MatrixColumnMajor:
		parts = append(parts, "column_major")
	}
	if q.PushConstant {
		parts = append(parts, "push_constant")
	}
	if len(parts) == 0 {
		return ""
	}
	return "layout(" + strings.Join(parts, " ") + ")"
}
