package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glslUnit(stage Stage) *Intermediate {
	in := NewIntermediate(stage, 450, ProfileCore)
	in.SetSource(SourceGLSL)
	return in
}

func symbol(name string, t *Type) *Symbol {
	return NewSymbol(1, name, t, SourceLoc{Line: 1})
}

func TestAddBinaryMath_VectorTimesScalar(t *testing.T) {
	in := glslUnit(StageFragment)
	v := symbol("v", NewVector(BasicFloat, 4, StorageTemporary))

	n := in.AddBinaryMath(OpMul, v, in.AddIntConstant(2, SourceLoc{Line: 1}, true), SourceLoc{Line: 5})
	b, ok := n.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpVectorTimesScalar, b.Op)
	assert.Equal(t, BasicFloat, BasicOf(b))
	assert.Equal(t, 4, b.Type().VectorSize)
	assert.Equal(t, StorageTemporary, b.Type().Qualifier.Storage)
	assert.Equal(t, 5, b.Loc().Line)

	right := AsConstant(b.Right)
	require.NotNil(t, right)
	assert.Equal(t, BasicFloat, BasicOf(right))
}

func TestAddBinaryMath_LinearAlgebra(t *testing.T) {
	in := glslUnit(StageVertex)
	m := symbol("m", NewMatrix(BasicFloat, 4, 3, StorageTemporary))
	v := symbol("v", NewVector(BasicFloat, 4, StorageTemporary))

	n := in.AddBinaryMath(OpMul, m, v, SourceLoc{})
	b, ok := n.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpMatrixTimesVector, b.Op)
	assert.Equal(t, 3, b.Type().VectorSize)

	// vec4 * mat4x3 needs a vec3.
	assert.Nil(t, in.AddBinaryMath(OpMul, v, m, SourceLoc{}))
}

func TestAddBinaryMath_Folds(t *testing.T) {
	in := glslUnit(StageFragment)
	loc := SourceLoc{Line: 1}

	n := in.AddBinaryMath(OpDiv, in.AddIntConstant(6, loc, true), in.AddIntConstant(0, loc, true), loc)
	c := AsConstant(n)
	require.NotNil(t, c)
	assert.Equal(t, int64(0x7FFFFFFF), c.Value[0].Int())

	n = in.AddBinaryMath(OpAdd, in.AddIntConstant(1, loc, true), in.AddFloatConstant(0.5, BasicFloat, loc, true), loc)
	c = AsConstant(n)
	require.NotNil(t, c)
	assert.Equal(t, BasicFloat, BasicOf(c))
	assert.Equal(t, 1.5, c.Value[0].Float())
}

func TestAddBinaryMath_Rejected(t *testing.T) {
	in := glslUnit(StageFragment)
	b := symbol("b", NewScalar(BasicBool, StorageTemporary))
	f := symbol("f", NewScalar(BasicFloat, StorageTemporary))
	blk := symbol("blk", NewBlock("B", nil, StorageUniform))

	assert.Nil(t, in.AddBinaryMath(OpAdd, b, b, SourceLoc{}))
	assert.Nil(t, in.AddBinaryMath(OpAdd, f, blk, SourceLoc{}))
	assert.Nil(t, in.AddBinaryMath(OpLeftShift, f, f, SourceLoc{}))

	es := NewIntermediate(StageFragment, 310, ProfileES)
	es.SetSource(SourceGLSL)
	i := symbol("i", NewScalar(BasicInt, StorageTemporary))
	assert.Nil(t, es.AddBinaryMath(OpAdd, i, f, SourceLoc{}))
}

func TestAddBinaryMath_SpecConstant(t *testing.T) {
	in := glslUnit(StageCompute)
	st := NewScalar(BasicInt, StorageConst)
	st.Qualifier.MakeSpecConstant()
	k := symbol("k", st)

	n := in.AddBinaryMath(OpAdd, k, in.AddIntConstant(1, SourceLoc{}, true), SourceLoc{})
	require.NotNil(t, n)
	assert.True(t, QualifierOf(n).IsSpecConstant())
}

func TestAddBinaryMath_Precision(t *testing.T) {
	in := glslUnit(StageFragment)
	lo := NewScalar(BasicFloat, StorageTemporary)
	lo.Qualifier.Precision = PrecisionLow
	hi := NewScalar(BasicFloat, StorageTemporary)
	hi.Qualifier.Precision = PrecisionHigh

	n := in.AddBinaryMath(OpAdd, symbol("a", lo), symbol("b", hi), SourceLoc{})
	require.NotNil(t, n)
	assert.Equal(t, PrecisionHigh, QualifierOf(n).Precision)
}

func TestAddAssign(t *testing.T) {
	in := glslUnit(StageFragment)
	f := symbol("f", NewScalar(BasicFloat, StorageTemporary))
	i := symbol("i", NewScalar(BasicInt, StorageTemporary))

	n := in.AddAssign(OpAssign, f, i, SourceLoc{})
	b, ok := n.(*Binary)
	require.True(t, ok)
	assert.Equal(t, BasicFloat, BasicOf(b))
	conv, ok := b.Right.(*Unary)
	require.True(t, ok)
	assert.Equal(t, OpConvert, conv.Op)

	assert.Nil(t, in.AddAssign(OpAssign, i, f, SourceLoc{}))

	v := symbol("v", NewVector(BasicFloat, 3, StorageTemporary))
	n = in.AddAssign(OpMulAssign, v, f, SourceLoc{})
	b, ok = n.(*Binary)
	require.True(t, ok)
	assert.Equal(t, OpVectorTimesScalarAssign, b.Op)
}

func TestAddUnaryMath(t *testing.T) {
	in := glslUnit(StageFragment)
	loc := SourceLoc{Line: 1}

	c := AsConstant(in.AddUnaryMath(OpNegative, in.AddIntConstant(5, loc, true), loc))
	require.NotNil(t, c)
	assert.Equal(t, int64(-5), c.Value[0].Int())

	c = AsConstant(in.AddUnaryMath(OpConstructFloat, in.AddIntConstant(3, loc, true), loc))
	require.NotNil(t, c, "scalar constructors become conversions")
	assert.Equal(t, BasicFloat, BasicOf(c))

	v := symbol("v", NewVector(BasicFloat, 2, StorageTemporary))
	u, ok := in.AddUnaryMath(OpNegative, v, loc).(*Unary)
	require.True(t, ok)
	assert.Equal(t, 2, u.Type().VectorSize)
	assert.Equal(t, StorageTemporary, u.Type().Qualifier.Storage)

	assert.Nil(t, in.AddUnaryMath(OpLogicalNot, v, loc))
	assert.Nil(t, in.AddUnaryMath(OpBitwiseNot, v, loc))
}

func TestAddSelection(t *testing.T) {
	in := glslUnit(StageFragment)
	loc := SourceLoc{Line: 1}

	t.Run("constant", func(t *testing.T) {
		tb := in.AddIntConstant(1, loc, true)
		fb := in.AddIntConstant(2, loc, true)
		assert.Same(t, tb, in.AddSelection(in.AddBoolConstant(true, loc, true), tb, fb, loc))
		assert.Same(t, fb, in.AddSelection(in.AddBoolConstant(false, loc, true), tb, fb, loc))
	})

	t.Run("converted operands", func(t *testing.T) {
		cond := symbol("c", NewScalar(BasicBool, StorageTemporary))
		n := in.AddSelection(cond, symbol("i", NewScalar(BasicInt, StorageTemporary)),
			symbol("f", NewScalar(BasicFloat, StorageTemporary)), loc)
		s, ok := n.(*Selection)
		require.True(t, ok)
		assert.Equal(t, BasicFloat, BasicOf(s))
		assert.True(t, s.ShortCircuit)
	})

	t.Run("statement", func(t *testing.T) {
		cond := symbol("c", NewScalar(BasicBool, StorageTemporary))
		n := in.AddSelection(cond, NewAggregate(OpSequence), NewAggregate(OpSequence), loc)
		s, ok := n.(*Selection)
		require.True(t, ok)
		assert.Equal(t, BasicVoid, BasicOf(s))
	})

	t.Run("vector condition", func(t *testing.T) {
		cond := symbol("c", NewVector(BasicBool, 3, StorageTemporary))
		a := symbol("a", NewVector(BasicFloat, 3, StorageTemporary))
		b := symbol("b", NewVector(BasicFloat, 3, StorageTemporary))
		mix := AsAggregate(in.AddSelection(cond, a, b, loc))
		require.NotNil(t, mix)
		assert.Equal(t, OpMix, mix.Op)
		require.Len(t, mix.Seq, 3)
		assert.Same(t, b, mix.Seq[0])
		assert.Same(t, a, mix.Seq[1])
		assert.Same(t, cond, mix.Seq[2])
	})

	t.Run("mismatched shapes", func(t *testing.T) {
		cond := symbol("c", NewScalar(BasicBool, StorageTemporary))
		a := symbol("a", NewVector(BasicFloat, 3, StorageTemporary))
		b := symbol("b", NewVector(BasicFloat, 2, StorageTemporary))
		assert.Nil(t, in.AddSelection(cond, a, b, loc))
	})
}

func TestAddSelection_HLSLNoShortCircuit(t *testing.T) {
	in := NewIntermediate(StageFragment, 500, ProfileNone)
	in.SetSource(SourceHLSL)
	cond := symbol("c", NewScalar(BasicBool, StorageTemporary))
	s, ok := in.AddSelection(cond, symbol("a", NewScalar(BasicFloat, StorageTemporary)),
		symbol("b", NewScalar(BasicFloat, StorageTemporary)), SourceLoc{}).(*Selection)
	require.True(t, ok)
	assert.False(t, s.ShortCircuit)
}

func TestSwizzleSelectors_Clamp(t *testing.T) {
	var sel SwizzleSelectors[int]
	for i := 0; i < 6; i++ {
		sel.Push(i % 4)
	}
	assert.Equal(t, MaxSwizzleSelectors, sel.Size())
	assert.Equal(t, 3, sel.At(3))
}

func TestAddSwizzle(t *testing.T) {
	in := glslUnit(StageFragment)

	var sel SwizzleSelectors[int]
	sel.Push(2)
	sel.Push(1)
	agg := AddSwizzle(in, &sel, SourceLoc{Line: 2})
	assert.Equal(t, OpSequence, agg.Op)
	require.Len(t, agg.Seq, 2)
	assert.Equal(t, int64(2), AsConstant(agg.Seq[0]).Value[0].Int())

	var msel SwizzleSelectors[MatrixSelector]
	msel.Push(MatrixSelector{Col: 1, Row: 0})
	magg := AddSwizzle(in, &msel, SourceLoc{})
	require.Len(t, magg.Seq, 2)
	assert.Equal(t, int64(1), AsConstant(magg.Seq[0]).Value[0].Int())
	assert.Equal(t, int64(0), AsConstant(magg.Seq[1]).Value[0].Int())
}

func TestAddForLoop(t *testing.T) {
	in := glslUnit(StageFragment)
	loc := SourceLoc{Line: 7}
	body := NewAggregate(OpSequence)
	test := symbol("c", NewScalar(BasicBool, StorageTemporary))

	seq, loop := in.AddForLoop(body, nil, test, nil, true, loc)
	require.NotNil(t, seq)
	assert.Equal(t, OpSequence, seq.Op)
	require.Len(t, seq.Seq, 1)
	assert.Same(t, loop, seq.Seq[0])
	assert.True(t, loop.TestFirst)

	init := symbol("i", NewScalar(BasicInt, StorageTemporary))
	seq, loop = in.AddForLoop(body, init, test, nil, true, loc)
	require.Len(t, seq.Seq, 2)
	assert.Same(t, init, seq.Seq[0])
	assert.Same(t, loop, seq.Seq[1])
}

func TestAddComma(t *testing.T) {
	in := glslUnit(StageFragment)
	a := symbol("a", NewScalar(BasicInt, StorageTemporary))
	b := symbol("b", NewVector(BasicFloat, 2, StorageTemporary))

	n := AsAggregate(in.AddComma(a, b, SourceLoc{}))
	require.NotNil(t, n)
	assert.Equal(t, OpComma, n.Op)
	assert.Equal(t, 2, n.Type().VectorSize)
	assert.Len(t, n.Seq, 2)
}

func TestFindLValueBase(t *testing.T) {
	in := glslUnit(StageFragment)
	arr := symbol("arr", NewVector(BasicFloat, 4, StorageTemporary).ArrayOf(3))
	elem := in.AddIndex(OpIndexDirect, arr, in.AddIntConstant(1, SourceLoc{}, false), SourceLoc{})
	elem.SetType(NewVector(BasicFloat, 4, StorageTemporary))
	comp := in.AddIndex(OpIndexDirect, elem, in.AddIntConstant(2, SourceLoc{}, false), SourceLoc{})

	assert.Same(t, arr, FindLValueBase(elem, false))
	assert.Same(t, arr, FindLValueBase(comp, true))
	assert.Nil(t, FindLValueBase(comp, false), "indexing within a vector")

	sum := in.AddBinaryNode(OpAdd, arr, arr, SourceLoc{})
	assert.Nil(t, FindLValueBase(sum, true))
}

func TestAddBuiltInFunctionCall_Unary(t *testing.T) {
	in := glslUnit(StageFragment)
	scalar := NewScalar(BasicFloat, StorageTemporary)

	c := AsConstant(in.AddBuiltInFunctionCall(SourceLoc{}, OpSqrt, true, in.AddFloatConstant(16, BasicFloat, SourceLoc{}, true), scalar))
	require.NotNil(t, c)
	assert.Equal(t, 4.0, c.Value[0].Float())

	x := symbol("x", scalar)
	u, ok := in.AddBuiltInFunctionCall(SourceLoc{}, OpSqrt, true, x, scalar).(*Unary)
	require.True(t, ok)
	assert.Equal(t, OpSqrt, u.Op)
	assert.Equal(t, BasicFloat, BasicOf(u))
}
