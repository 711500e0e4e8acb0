package ir

import (
	"fmt"
	"strings"
)

// ArraySizes describes the dimensions of an array type.
type ArraySizes struct {
	// Dims holds one size per dimension, outermost first. Zero is unsized.
	Dims []int

	// ImplicitSize is one more than the largest constant index seen on an
	// unsized outer dimension.
	ImplicitSize int

	// VariablyIndexed is set once the outer dimension is indexed with a
	// non-constant expression.
	VariablyIndexed bool
}

// NewArraySizes returns sizes for the given dimensions, outermost first.
func NewArraySizes(dims ...int) *ArraySizes {
	return &ArraySizes{Dims: append([]int(nil), dims...), ImplicitSize: 1}
}

// NumDims returns the number of dimensions.
func (a *ArraySizes) NumDims() int { return len(a.Dims) }

// OuterSize returns the outermost size, zero if unsized.
func (a *ArraySizes) OuterSize() int { return a.Dims[0] }

// SetOuterSize fixes the outermost size.
func (a *ArraySizes) SetOuterSize(n int) { a.Dims[0] = n }

// CumulativeSize returns the product of all dimensions.
func (a *ArraySizes) CumulativeSize() int {
	size := 1
	for _, d := range a.Dims {
		size *= d
	}
	return size
}

// IsSized reports whether every dimension has a size.
func (a *ArraySizes) IsSized() bool {
	for _, d := range a.Dims {
		if d == 0 {
			return false
		}
	}
	return true
}

// IsOuterUnsized reports an unsized outermost dimension.
func (a *ArraySizes) IsOuterUnsized() bool { return a.Dims[0] == 0 }

// IsInnerUnsized reports an unsized dimension other than the outermost.
func (a *ArraySizes) IsInnerUnsized() bool {
	for _, d := range a.Dims[1:] {
		if d == 0 {
			return true
		}
	}
	return false
}

// UpdateImplicitSize raises ImplicitSize to at least n.
func (a *ArraySizes) UpdateImplicitSize(n int) {
	if n > a.ImplicitSize {
		a.ImplicitSize = n
	}
}

// Clone returns an independent copy.
func (a *ArraySizes) Clone() *ArraySizes {
	if a == nil {
		return nil
	}
	c := *a
	c.Dims = append([]int(nil), a.Dims...)
	return &c
}

// Equal compares dimensions only.
func (a *ArraySizes) Equal(b *ArraySizes) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] {
			return false
		}
	}
	return true
}

// Member is a field of a struct or block type.
type Member struct {
	Name string
	Type *Type
	Loc  SourceLoc
}

// Type is a fully qualified shader type.
//
// VectorSize is 1 for scalars, structs and matrices; matrices use
// MatrixCols and MatrixRows instead.
type Type struct {
	Basic      BasicType
	VectorSize int
	MatrixCols int
	MatrixRows int
	Arrays     *ArraySizes
	Members    []Member
	TypeName   string
	Qualifier  Qualifier
}

// NewScalar returns a scalar type.
func NewScalar(basic BasicType, storage StorageQualifier) *Type {
	return &Type{Basic: basic, VectorSize: 1, Qualifier: NewQualifier(storage)}
}

// NewVector returns a vector type of size components.
func NewVector(basic BasicType, size int, storage StorageQualifier) *Type {
	return &Type{Basic: basic, VectorSize: size, Qualifier: NewQualifier(storage)}
}

// NewMatrix returns a matrix type.
func NewMatrix(basic BasicType, cols, rows int, storage StorageQualifier) *Type {
	return &Type{Basic: basic, VectorSize: 1, MatrixCols: cols, MatrixRows: rows, Qualifier: NewQualifier(storage)}
}

// NewStruct returns a struct type.
func NewStruct(name string, members []Member, storage StorageQualifier) *Type {
	return &Type{Basic: BasicStruct, VectorSize: 1, TypeName: name, Members: members, Qualifier: NewQualifier(storage)}
}

// NewBlock returns an interface block type.
func NewBlock(name string, members []Member, storage StorageQualifier) *Type {
	t := NewStruct(name, members, storage)
	t.Basic = BasicBlock
	return t
}

// Clone returns a copy with independent qualifier and array sizes. Members
// are shared.
func (t *Type) Clone() *Type {
	c := *t
	c.Arrays = t.Arrays.Clone()
	return &c
}

// ArrayOf returns a copy of t made into an array with dims prepended as the
// outer dimensions.
func (t *Type) ArrayOf(dims ...int) *Type {
	c := t.Clone()
	if c.Arrays == nil {
		c.Arrays = NewArraySizes(dims...)
	} else {
		c.Arrays.Dims = append(append([]int(nil), dims...), c.Arrays.Dims...)
	}
	return c
}

func (t *Type) IsArray() bool  { return t.Arrays != nil && len(t.Arrays.Dims) > 0 }
func (t *Type) IsMatrix() bool { return t.MatrixCols > 0 }
func (t *Type) IsVector() bool { return t.VectorSize > 1 && !t.IsMatrix() }
func (t *Type) IsStruct() bool { return t.Basic == BasicStruct || t.Basic == BasicBlock }

// IsScalar reports a non-array scalar.
func (t *Type) IsScalar() bool {
	return !t.IsVector() && !t.IsMatrix() && !t.IsStruct() && !t.IsArray()
}

// IsScalarOrVector reports a non-array scalar or vector.
func (t *Type) IsScalarOrVector() bool {
	return !t.IsMatrix() && !t.IsStruct() && !t.IsArray()
}

// IsSizedArray reports an array with every dimension sized.
func (t *Type) IsSizedArray() bool { return t.IsArray() && t.Arrays.IsSized() }

// IsUnsizedArray reports an array with some dimension unsized.
func (t *Type) IsUnsizedArray() bool { return t.IsArray() && !t.Arrays.IsSized() }

// IsImplicitlySizedArray reports an outer-unsized array whose size is taken
// from its use. Unsized buffer arrays are runtime sized instead.
func (t *Type) IsImplicitlySizedArray() bool {
	return t.IsArray() && t.Arrays.IsOuterUnsized() && t.Qualifier.Storage != StorageBuffer
}

// OuterArraySize returns the outermost array size.
func (t *Type) OuterArraySize() int { return t.Arrays.OuterSize() }

// CumulativeArraySize returns the product of all array dimensions.
func (t *Type) CumulativeArraySize() int { return t.Arrays.CumulativeSize() }

func (t *Type) IsFloatingDomain() bool { return t.Basic.IsFloat() }
func (t *Type) IsIntegerDomain() bool  { return t.Basic.IsInteger() }

// IsOpaque reports samplers, images and atomic counters.
func (t *Type) IsOpaque() bool {
	return t.Basic == BasicSampler || t.Basic == BasicAtomicUint
}

// Contains reports whether pred holds for t or any nested member type.
func (t *Type) Contains(pred func(*Type) bool) bool {
	if pred(t) {
		return true
	}
	if !t.IsStruct() {
		return false
	}
	for _, m := range t.Members {
		if m.Type.Contains(pred) {
			return true
		}
	}
	return false
}

// ContainsBasicType reports whether b appears anywhere in t.
func (t *Type) ContainsBasicType(b BasicType) bool {
	return t.Contains(func(x *Type) bool { return x.Basic == b })
}

// ContainsDouble reports any double component.
func (t *Type) ContainsDouble() bool { return t.ContainsBasicType(BasicDouble) }

// ContainsOpaque reports any opaque member.
func (t *Type) ContainsOpaque() bool { return t.Contains((*Type).IsOpaque) }

// ContainsUnsizedArray reports an unsized array anywhere in t.
func (t *Type) ContainsUnsizedArray() bool { return t.Contains((*Type).IsUnsizedArray) }

// Deref returns the type produced by indexing t once. Arrays lose their
// outer dimension, structs yield member index, matrices yield a column
// (or a row when rowMajor) and vectors yield their scalar.
func (t *Type) Deref(index int, rowMajor bool) *Type {
	switch {
	case t.IsArray():
		c := t.Clone()
		if len(c.Arrays.Dims) == 1 {
			c.Arrays = nil
		} else {
			c.Arrays.Dims = c.Arrays.Dims[1:]
		}
		return c
	case t.IsStruct():
		return t.Members[index].Type
	}
	c := t.Clone()
	switch {
	case t.IsMatrix():
		if rowMajor {
			c.VectorSize = t.MatrixCols
		} else {
			c.VectorSize = t.MatrixRows
		}
		c.MatrixCols, c.MatrixRows = 0, 0
	case t.IsVector():
		c.VectorSize = 1
	}
	return c
}

// Element strips the outer array dimension, or returns t unchanged.
func (t *Type) Element() *Type {
	if !t.IsArray() {
		return t
	}
	return t.Deref(0, false)
}

// ComputeNumComponents counts the scalar components of t, including every
// array element.
func (t *Type) ComputeNumComponents() int {
	var n int
	switch {
	case t.IsStruct():
		for _, m := range t.Members {
			n += m.Type.ComputeNumComponents()
		}
	case t.IsMatrix():
		n = t.MatrixCols * t.MatrixRows
	default:
		n = t.VectorSize
	}
	if t.IsArray() {
		n *= t.CumulativeArraySize()
	}
	return n
}

// SameStructType compares member names and types.
func (t *Type) SameStructType(o *Type) bool {
	if !t.IsStruct() || !o.IsStruct() {
		return !t.IsStruct() && !o.IsStruct()
	}
	if t.TypeName != o.TypeName || len(t.Members) != len(o.Members) {
		return false
	}
	for i := range t.Members {
		if t.Members[i].Name != o.Members[i].Name || !t.Members[i].Type.Equal(o.Members[i].Type) {
			return false
		}
	}
	return true
}

// SameElementType compares everything except arrayness and qualification.
func (t *Type) SameElementType(o *Type) bool {
	return t.Basic == o.Basic && t.SameElementShape(o) && t.SameStructType(o)
}

// SameElementShape compares vector and matrix dimensions.
func (t *Type) SameElementShape(o *Type) bool {
	return t.VectorSize == o.VectorSize && t.MatrixCols == o.MatrixCols && t.MatrixRows == o.MatrixRows
}

// SameArrayness compares array dimensions.
func (t *Type) SameArrayness(o *Type) bool {
	return t.Arrays.Equal(o.Arrays)
}

// Equal reports structural type equality; qualifiers are ignored.
func (t *Type) Equal(o *Type) bool {
	return KeyOf(t) == KeyOf(o)
}

// BasicString returns the unqualified shape, e.g. "3-component vector of
// float".
func (t *Type) BasicString() string {
	var sb strings.Builder
	if t.IsArray() {
		for _, d := range t.Arrays.Dims {
			if d == 0 {
				sb.WriteString("unsized ")
			} else {
				fmt.Fprintf(&sb, "%d-element ", d)
			}
		}
		sb.WriteString("array of ")
	}
	switch {
	case t.IsMatrix():
		fmt.Fprintf(&sb, "%dX%d matrix of ", t.MatrixCols, t.MatrixRows)
	case t.IsVector():
		fmt.Fprintf(&sb, "%d-component vector of ", t.VectorSize)
	}
	sb.WriteString(t.Basic.String())
	if t.IsStruct() {
		sb.WriteString("{")
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.Type.CompleteString())
			sb.WriteString(" ")
			sb.WriteString(m.Name)
		}
		sb.WriteString("}")
	}
	return sb.String()
}

// CompleteString returns qualifiers followed by BasicString.
func (t *Type) CompleteString() string {
	var parts []string
	q := &t.Qualifier
	if l := q.LayoutString(); l != "" {
		parts = append(parts, l)
	}
	if q.Invariant {
		parts = append(parts, "invariant")
	}
	if q.Precise {
		parts = append(parts, "precise")
	}
	if q.Flat {
		parts = append(parts, "flat")
	}
	if q.NoPerspective {
		parts = append(parts, "noperspective")
	}
	if q.Centroid {
		parts = append(parts, "centroid")
	}
	if q.Patch {
		parts = append(parts, "patch")
	}
	if q.Sample {
		parts = append(parts, "sample")
	}
	if q.ReadOnly {
		parts = append(parts, "readonly")
	}
	if q.WriteOnly {
		parts = append(parts, "writeonly")
	}
	if q.SpecConstant {
		parts = append(parts, "specialization-constant")
	}
	parts = append(parts, q.Storage.String())
	if p := q.Precision.String(); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, t.BasicString())
	return strings.Join(parts, " ")
}

func (t *Type) String() string { return t.CompleteString() }
