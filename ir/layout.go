package ir

import "fmt"

// Range is an inclusive interval [Start, Last].
type Range struct {
	Start int
	Last  int
}

// Overlap reports whether the closed intervals intersect.
func (r Range) Overlap(o Range) bool {
	return r.Start <= o.Last && o.Start <= r.Last
}

// IoRange is a block of locations and components claimed by one IO
// declaration, tagged with its basic type and index.
type IoRange struct {
	Location  Range
	Component Range
	Basic     BasicType
	Index     int
}

// Overlap reports aliasing: locations and components both intersect and
// the indices are equal.
func (r IoRange) Overlap(o IoRange) bool {
	return r.Location.Overlap(o.Location) && r.Component.Overlap(o.Component) && r.Index == o.Index
}

// OffsetRange is a byte range within one binding, used for atomic
// counters.
type OffsetRange struct {
	Binding Range
	Offset  Range
}

// Overlap reports whether both the bindings and the offsets intersect.
func (r OffsetRange) Overlap(o OffsetRange) bool {
	return r.Binding.Overlap(o.Binding) && r.Offset.Overlap(o.Offset)
}

// XfbBuffer tracks one transform-feedback buffer.
type XfbBuffer struct {
	Ranges         []Range
	Stride         int // LayoutNotSet until declared
	ImplicitStride int
	ContainsDouble bool
}

func newXfbBuffer() XfbBuffer {
	return XfbBuffer{Stride: LayoutNotSet}
}

// IoKind selects one of the used-location tables.
type IoKind uint8

const (
	IoIn IoKind = iota
	IoOut
	IoUniform
	IoBuffer

	usedIoKinds
)

func (k IoKind) String() string {
	switch k {
	case IoIn:
		return "in"
	case IoOut:
		return "out"
	case IoUniform:
		return "uniform"
	case IoBuffer:
		return "buffer"
	}
	return "unknown"
}

// ioKindOf returns the table for q, or false for storage without
// locations.
func ioKindOf(q *Qualifier) (IoKind, bool) {
	switch {
	case q.IsPipeInput():
		return IoIn, true
	case q.IsPipeOutput():
		return IoOut, true
	case q.Storage == StorageUniform:
		return IoUniform, true
	case q.Storage == StorageBuffer:
		return IoBuffer, true
	}
	return 0, false
}

// UsedIo returns the ranges registered in one table.
func (in *Intermediate) UsedIo(kind IoKind) []IoRange { return in.usedIo[kind] }

// UsedAtomics returns the registered atomic-counter ranges.
func (in *Intermediate) UsedAtomics() []OffsetRange { return in.usedAtomics }

// AddUsedLocation claims the locations and components taken by a
// declaration of type t qualified by q. It returns -1 when nothing
// collides, else a location inside the conflict. typeCollision is set when
// the conflicting declarations have different basic types.
func (in *Intermediate) AddUsedLocation(q *Qualifier, t *Type) (collision int, typeCollision bool) {
	kind, ok := ioKindOf(q)
	if !ok {
		return -1, false
	}

	var size int
	if q.IsUniformOrBuffer() {
		if t.IsSizedArray() {
			size = t.CumulativeArraySize()
		} else {
			size = 1
		}
	} else if t.IsArray() && q.IsArrayedIo(in.stage) {
		size = ComputeTypeLocationSize(t.Element(), in.stage)
	} else {
		size = ComputeTypeLocationSize(t, in.stage)
	}

	// A dvec3 in or out spills its last component into the next location.
	if size == 2 && t.Basic == BasicDouble && t.VectorSize == 3 && !t.IsMatrix() &&
		(q.IsPipeInput() || q.IsPipeOutput()) {
		first := IoRange{
			Location:  Range{q.Location, q.Location},
			Component: Range{0, 3},
			Basic:     t.Basic,
		}
		collision, typeCollision = in.checkLocationRange(kind, first)
		if collision >= 0 {
			return collision, typeCollision
		}
		in.usedIo[kind] = append(in.usedIo[kind], first)

		second := IoRange{
			Location:  Range{q.Location + 1, q.Location + 1},
			Component: Range{0, 1},
			Basic:     t.Basic,
		}
		collision, typeCollision = in.checkLocationRange(kind, second)
		if collision < 0 {
			in.usedIo[kind] = append(in.usedIo[kind], second)
		}
		return collision, typeCollision
	}

	r := IoRange{
		Location:  Range{q.Location, q.Location + size - 1},
		Component: Range{0, 3},
		Basic:     t.Basic,
	}
	if !t.IsMatrix() && !t.IsStruct() {
		consumed := t.VectorSize
		if t.Basic == BasicDouble {
			consumed *= 2
		}
		if q.HasComponent() {
			r.Component.Start = q.Component
		}
		r.Component.Last = r.Component.Start + consumed - 1
	}
	if q.HasIndex() {
		r.Index = q.Index
	}

	// Desktop OpenGL vertex inputs may alias.
	collision = -1
	if !(!in.IsES() && in.stage == StageVertex && q.IsPipeInput()) || in.spv.Vulkan > 0 {
		collision, typeCollision = in.checkLocationRange(kind, r)
	}
	if collision < 0 {
		in.usedIo[kind] = append(in.usedIo[kind], r)
	}
	return collision, typeCollision
}

// checkLocationRange compares r against the ranges already in one table.
func (in *Intermediate) checkLocationRange(kind IoKind, r IoRange) (int, bool) {
	for _, used := range in.usedIo[kind] {
		if r.Overlap(used) {
			return max(r.Location.Start, used.Location.Start), r.Basic != used.Basic
		}
	}
	return -1, false
}

// ComputeTypeLocationSize returns the number of IO locations a value of
// type t occupies in stage.
func ComputeTypeLocationSize(t *Type, stage Stage) int {
	if t.IsArray() {
		elem := t.Element()
		if t.Arrays.OuterSize() != 0 {
			return t.OuterArraySize() * ComputeTypeLocationSize(elem, stage)
		}
		return ComputeTypeLocationSize(elem, stage)
	}

	if t.IsStruct() {
		size := 0
		for _, m := range t.Members {
			size += ComputeTypeLocationSize(m.Type, stage)
		}
		return size
	}

	if t.IsMatrix() {
		return t.MatrixCols * ComputeTypeLocationSize(t.Deref(0, false), stage)
	}

	// Double vectors wider than two take two locations, except as vertex
	// inputs.
	if t.IsVector() {
		if stage == StageVertex && t.Qualifier.IsPipeInput() {
			return 1
		}
		if t.Basic == BasicDouble && t.VectorSize > 2 {
			return 2
		}
	}
	return 1
}

// ComputeTypeUniformLocationSize returns the number of uniform locations a
// value of type t occupies.
func ComputeTypeUniformLocationSize(t *Type) int {
	if t.IsArray() {
		elem := t.Element()
		if t.Arrays.OuterSize() != 0 {
			return t.OuterArraySize() * ComputeTypeUniformLocationSize(elem)
		}
		return ComputeTypeUniformLocationSize(elem)
	}
	if t.IsStruct() {
		size := 0
		for _, m := range t.Members {
			size += ComputeTypeUniformLocationSize(m.Type)
		}
		return size
	}
	return 1
}

// AddXfbBufferOffset claims the byte range of an xfb-captured declaration
// in its buffer. The type must carry both xfb_buffer and xfb_offset. It
// returns -1 when nothing collides, else an offset inside the conflict.
// A buffer index outside [0, MaxXfbBuffers) is reported to the info sink
// and claims nothing.
func (in *Intermediate) AddXfbBufferOffset(t *Type) int {
	q := &t.Qualifier
	if !validXfbBuffer(q.XfbBuffer) {
		in.Error(fmt.Sprintf("xfb_buffer %d is out of range: at most %d buffers are supported", q.XfbBuffer, MaxXfbBuffers))
		return -1
	}
	buf := &in.xfbBuffers[q.XfbBuffer]

	size, containsDouble := ComputeTypeXfbSize(t)
	if containsDouble {
		buf.ContainsDouble = true
	}
	buf.ImplicitStride = max(buf.ImplicitStride, q.XfbOffset+size)

	r := Range{q.XfbOffset, q.XfbOffset + size - 1}
	for _, used := range buf.Ranges {
		if r.Overlap(used) {
			return max(r.Start, used.Start)
		}
	}
	buf.Ranges = append(buf.Ranges, r)
	return -1
}

// ComputeTypeXfbSize returns the bytes t takes in an xfb buffer and
// whether it holds a double. Aggregates holding a double are padded to a
// multiple of 8.
func ComputeTypeXfbSize(t *Type) (size int, containsDouble bool) {
	if t.IsArray() {
		elemSize, d := ComputeTypeXfbSize(t.Element())
		return t.OuterArraySize() * elemSize, d
	}

	if t.IsStruct() {
		for _, m := range t.Members {
			memberSize, memberDouble := ComputeTypeXfbSize(m.Type)
			if memberDouble {
				containsDouble = true
				size = roundToPow2(size, 8)
			}
			size += memberSize
		}
		if containsDouble {
			size = roundToPow2(size, 8)
		}
		return size, containsDouble
	}

	var components int
	switch {
	case t.IsMatrix():
		components = t.MatrixCols * t.MatrixRows
	default:
		components = t.VectorSize
	}
	if t.Basic == BasicDouble {
		return 8 * components, true
	}
	return 4 * components, false
}

const baseAlignmentVec4Std140 = 16

// BaseAlignmentScalar returns the alignment and size of one component of
// t.
func BaseAlignmentScalar(t *Type) (alignment, size int) {
	switch t.Basic {
	case BasicInt64, BasicUint64, BasicDouble:
		return 8, 8
	case BasicFloat16, BasicInt16, BasicUint16:
		return 2, 2
	case BasicInt8, BasicUint8:
		return 1, 1
	}
	return 4, 4
}

// BaseAlignment applies the std140 (std140 true) or std430 block layout
// rules to t. stride is set for arrays and matrices.
func BaseAlignment(t *Type, std140, rowMajor bool) (alignment, size, stride int) {
	if t.IsArray() {
		alignment, size, _ = BaseAlignment(t.Element(), std140, rowMajor)
		if std140 {
			alignment = max(baseAlignmentVec4Std140, alignment)
		}
		size = roundToPow2(size, alignment)
		stride = size
		size = stride * t.OuterArraySize()
		return alignment, size, stride
	}

	if t.IsStruct() {
		maxAlignment := 0
		if std140 {
			maxAlignment = baseAlignmentVec4Std140
		}
		for _, m := range t.Members {
			memberRowMajor := rowMajor
			if lm := m.Type.Qualifier.Matrix; lm != MatrixNone {
				memberRowMajor = lm == MatrixRowMajor
			}
			memberAlignment, memberSize, _ := BaseAlignment(m.Type, std140, memberRowMajor)
			maxAlignment = max(maxAlignment, memberAlignment)
			size = roundToPow2(size, memberAlignment)
			size += memberSize
		}
		size = roundToPow2(size, maxAlignment)
		return maxAlignment, size, 0
	}

	if t.IsMatrix() {
		// A column-major matrix is laid out as an array of columns, a
		// row-major one as an array of rows.
		alignment, size, _ = BaseAlignment(t.Deref(0, rowMajor), std140, rowMajor)
		if std140 {
			alignment = max(baseAlignmentVec4Std140, alignment)
		}
		size = roundToPow2(size, alignment)
		stride = size
		if rowMajor {
			size = stride * t.MatrixRows
		} else {
			size = stride * t.MatrixCols
		}
		return alignment, size, stride
	}

	alignment, size = BaseAlignmentScalar(t)
	switch {
	case t.VectorSize == 2:
		return 2 * alignment, 2 * size, 0
	case t.VectorSize > 2:
		return 4 * alignment, t.VectorSize * size, 0
	}
	return alignment, size, 0
}

// ImproperStraddle reports a vector member that crosses a 16-byte
// boundary, or a vector larger than 16 bytes that does not start on one.
func ImproperStraddle(t *Type, size, offset int) bool {
	if !t.IsVector() || t.IsArray() {
		return false
	}
	if size <= 16 {
		return offset/16 != (offset+size-1)/16
	}
	return offset%16 != 0
}

// AddUsedOffsets claims numOffsets bytes at offset within an atomic
// counter binding. It returns -1 when nothing collides, else an offset
// inside the conflict.
func (in *Intermediate) AddUsedOffsets(binding, offset, numOffsets int) int {
	r := OffsetRange{
		Binding: Range{binding, binding},
		Offset:  Range{offset, offset + numOffsets - 1},
	}
	for _, used := range in.usedAtomics {
		if r.Overlap(used) {
			return max(offset, used.Offset.Start)
		}
	}
	in.usedAtomics = append(in.usedAtomics, r)
	return -1
}

// AddUsedConstantID records a specialization-constant id. It returns false
// when the id was already taken.
func (in *Intermediate) AddUsedConstantID(id int) bool {
	if in.usedConstantID.Contains(id) {
		return false
	}
	in.usedConstantID.Add(id)
	return true
}

// UsedConstantIDs returns the taken specialization-constant ids in order.
func (in *Intermediate) UsedConstantIDs() []int {
	vals := in.usedConstantID.Values()
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = v.(int)
	}
	return out
}

func roundToPow2(n, pow2 int) int {
	if pow2 <= 1 {
		return n
	}
	return (n + pow2 - 1) &^ (pow2 - 1)
}
