package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarConst(c Const) *ConstantUnion {
	return NewConstantUnion(ConstArray{c}, NewScalar(c.Kind, StorageConst), SourceLoc{Line: 1})
}

func vectorConst(values ...float64) *ConstantUnion {
	arr := make(ConstArray, len(values))
	for i, v := range values {
		arr[i] = ConstFloat(v)
	}
	return NewConstantUnion(arr, NewVector(BasicFloat, len(values), StorageConst), SourceLoc{Line: 1})
}

func floats(c *ConstantUnion) []float64 {
	out := make([]float64, len(c.Value))
	for i, v := range c.Value {
		out[i] = v.Float()
	}
	return out
}

func TestFoldBinary_IntegerDivision(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		l, r  Const
		check func(t *testing.T, c Const)
	}{
		{"int div zero", OpDiv, ConstInt(7), ConstInt(0), func(t *testing.T, c Const) {
			assert.Equal(t, int64(0x7FFFFFFF), c.Int())
		}},
		{"uint div zero", OpDiv, ConstUint(7), ConstUint(0), func(t *testing.T, c Const) {
			assert.Equal(t, uint64(0xFFFFFFFF), c.Uint())
		}},
		{"int64 div zero", OpDiv, ConstInt64(-7), ConstInt64(0), func(t *testing.T, c Const) {
			assert.Equal(t, int64(math.MaxInt64), c.Int())
		}},
		{"min div minus one", OpDiv, ConstInt(math.MinInt32), ConstInt(-1), func(t *testing.T, c Const) {
			assert.Equal(t, int64(math.MinInt32), c.Int())
		}},
		{"mod zero keeps left", OpMod, ConstInt(9), ConstInt(0), func(t *testing.T, c Const) {
			assert.Equal(t, int64(9), c.Int())
		}},
		{"min mod minus one", OpMod, ConstInt(math.MinInt32), ConstInt(-1), func(t *testing.T, c Const) {
			assert.Equal(t, int64(0), c.Int())
		}},
		{"int add wraps", OpAdd, ConstInt(math.MaxInt32), ConstInt(1), func(t *testing.T, c Const) {
			assert.Equal(t, int64(math.MinInt32), c.Int())
		}},
		{"uint sub wraps", OpSub, ConstUint(0), ConstUint(1), func(t *testing.T, c Const) {
			assert.Equal(t, uint64(math.MaxUint32), c.Uint())
		}},
		{"shift", OpLeftShift, ConstInt(1), ConstInt(4), func(t *testing.T, c Const) {
			assert.Equal(t, int64(16), c.Int())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded := FoldBinary(tt.op, scalarConst(tt.l), scalarConst(tt.r))
			require.NotNil(t, folded)
			require.Len(t, folded.Value, 1)
			assert.Equal(t, tt.l.Kind, folded.Value[0].Kind)
			tt.check(t, folded.Value[0])
		})
	}
}

func TestFoldBinary_FloatDivision(t *testing.T) {
	pos := FoldBinary(OpDiv, scalarConst(ConstFloat(1)), scalarConst(ConstFloat(0)))
	require.NotNil(t, pos)
	assert.True(t, math.IsInf(pos.Value[0].Float(), 1))

	neg := FoldBinary(OpDiv, scalarConst(ConstFloat(-2)), scalarConst(ConstFloat(0)))
	require.NotNil(t, neg)
	assert.True(t, math.IsInf(neg.Value[0].Float(), -1))

	nan := FoldBinary(OpDiv, scalarConst(ConstFloat(0)), scalarConst(ConstFloat(0)))
	require.NotNil(t, nan)
	assert.True(t, math.IsNaN(nan.Value[0].Float()))
}

func TestFoldBinary_Smear(t *testing.T) {
	folded := FoldBinary(OpVectorTimesScalar, vectorConst(1, 2, 3), scalarConst(ConstFloat(2)))
	require.NotNil(t, folded)
	assert.Equal(t, []float64{2, 4, 6}, floats(folded))
	assert.Equal(t, 3, folded.Type().VectorSize)

	folded = FoldBinary(OpSub, scalarConst(ConstFloat(10)), vectorConst(1, 2))
	require.NotNil(t, folded)
	assert.Equal(t, []float64{9, 8}, floats(folded))
	assert.Equal(t, 2, folded.Type().VectorSize, "scalar left operand takes the vector type")
	assert.Equal(t, StorageConst, folded.Type().Qualifier.Storage)
}

func TestFoldBinary_MatrixTimesVector(t *testing.T) {
	// Column-major: columns (1, 2) and (3, 4).
	m := NewConstantUnion(ConstArray{ConstFloat(1), ConstFloat(2), ConstFloat(3), ConstFloat(4)},
		NewMatrix(BasicFloat, 2, 2, StorageConst), SourceLoc{Line: 1})

	folded := FoldBinary(OpMatrixTimesVector, m, vectorConst(1, 1))
	require.NotNil(t, folded)
	assert.Equal(t, []float64{4, 6}, floats(folded))
	assert.True(t, folded.Type().IsVector())

	folded = FoldBinary(OpVectorTimesMatrix, vectorConst(1, 1), m)
	require.NotNil(t, folded)
	assert.Equal(t, []float64{3, 7}, floats(folded))

	folded = FoldBinary(OpMatrixTimesMatrix, m, m)
	require.NotNil(t, folded)
	assert.Equal(t, []float64{7, 10, 15, 22}, floats(folded))
}

func TestFoldBinary_Comparisons(t *testing.T) {
	tests := []struct {
		op   Operator
		want bool
	}{
		{OpLessThan, true},
		{OpGreaterThan, false},
		{OpLessThanEqual, true},
		{OpGreaterThanEqual, false},
		{OpEqual, false},
		{OpNotEqual, true},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			folded := FoldBinary(tt.op, scalarConst(ConstInt(1)), scalarConst(ConstInt(2)))
			require.NotNil(t, folded)
			assert.Equal(t, BasicBool, BasicOf(folded))
			assert.Equal(t, tt.want, folded.Value[0].Bool())
		})
	}

	eq := FoldBinary(OpEqual, vectorConst(1, 2), vectorConst(1, 2))
	require.NotNil(t, eq)
	assert.True(t, eq.Value[0].Bool())
}

func TestFoldBinary_Unfoldable(t *testing.T) {
	assert.Nil(t, FoldBinary(OpIndexDirect, vectorConst(1, 2), scalarConst(ConstInt(0))))
	assert.Nil(t, FoldBinary(OpMod, scalarConst(ConstFloat(1)), scalarConst(ConstFloat(2))))
}

func TestFoldUnary(t *testing.T) {
	neg := FoldUnary(OpNegative, scalarConst(ConstInt(5)), NewScalar(BasicInt, StorageTemporary))
	require.NotNil(t, neg)
	assert.Equal(t, int64(-5), neg.Value[0].Int())

	not := FoldUnary(OpBitwiseNot, scalarConst(ConstUint(0)), NewScalar(BasicUint, StorageTemporary))
	require.NotNil(t, not)
	assert.Equal(t, uint64(0xFFFFFFFF), not.Value[0].Uint())

	length := FoldUnary(OpLength, vectorConst(3, 4), NewScalar(BasicFloat, StorageTemporary))
	require.NotNil(t, length)
	assert.Equal(t, []float64{5}, floats(length))

	norm := FoldUnary(OpNormalize, vectorConst(3, 4), NewVector(BasicFloat, 2, StorageTemporary))
	require.NotNil(t, norm)
	assert.InDeltaSlice(t, []float64{0.6, 0.8}, floats(norm), 1e-12)

	conv := FoldUnary(OpConvert, scalarConst(ConstInt(3)), NewScalar(BasicFloat, StorageTemporary))
	require.NotNil(t, conv)
	assert.Equal(t, BasicFloat, conv.Value[0].Kind)
	assert.Equal(t, StorageConst, conv.Type().Qualifier.Storage)

	sign := FoldUnary(OpSign, vectorConst(-2, 0, 7), NewVector(BasicFloat, 3, StorageTemporary))
	require.NotNil(t, sign)
	assert.Equal(t, []float64{-1, 0, 1}, floats(sign))

	assert.Nil(t, FoldUnary(OpLogicalNot, scalarConst(ConstInt(1)), NewScalar(BasicBool, StorageTemporary)))
	assert.Nil(t, FoldUnary(OpSin, scalarConst(ConstInt(1)), NewScalar(BasicInt, StorageTemporary)))
}

func TestFoldConstructor(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	loc := SourceLoc{Line: 2}

	t.Run("matrix diagonal", func(t *testing.T) {
		n := in.SetAggregateOperator(in.AddFloatConstant(2, BasicFloat, loc, true),
			OpConstructMat2x2, NewMatrix(BasicFloat, 2, 2, StorageTemporary), loc)
		c := AsConstant(n)
		require.NotNil(t, c)
		assert.Equal(t, []float64{2, 0, 0, 2}, floats(c))
		for _, v := range c.Value {
			assert.Equal(t, BasicFloat, v.Kind)
		}
	})

	t.Run("vector smear with conversion", func(t *testing.T) {
		n := in.SetAggregateOperator(in.AddIntConstant(3, loc, true),
			OpConstructVec3, NewVector(BasicFloat, 3, StorageTemporary), loc)
		c := AsConstant(n)
		require.NotNil(t, c)
		assert.Equal(t, []float64{3, 3, 3}, floats(c))
		assert.Equal(t, BasicFloat, c.Value[0].Kind)
	})

	t.Run("concatenation", func(t *testing.T) {
		args := in.GrowAggregate(vectorConst(1, 2), in.AddFloatConstant(3, BasicFloat, loc, true), loc)
		args = in.GrowAggregate(args, in.AddIntConstant(4, loc, true), loc)
		n := in.SetAggregateOperator(args, OpConstructVec4, NewVector(BasicFloat, 4, StorageTemporary), loc)
		c := AsConstant(n)
		require.NotNil(t, c)
		assert.Equal(t, []float64{1, 2, 3, 4}, floats(c))
	})

	t.Run("matrix from smaller matrix", func(t *testing.T) {
		m := NewConstantUnion(ConstArray{ConstFloat(1), ConstFloat(2), ConstFloat(3), ConstFloat(4)},
			NewMatrix(BasicFloat, 2, 2, StorageConst), loc)
		n := in.SetAggregateOperator(m, OpConstructMat3x3, NewMatrix(BasicFloat, 3, 3, StorageTemporary), loc)
		c := AsConstant(n)
		require.NotNil(t, c)
		assert.Equal(t, []float64{1, 2, 0, 3, 4, 0, 0, 0, 1}, floats(c))
	})

	t.Run("non-constant argument", func(t *testing.T) {
		s := NewSymbol(1, "x", NewScalar(BasicFloat, StorageTemporary), loc)
		n := in.SetAggregateOperator(s, OpConstructVec3, NewVector(BasicFloat, 3, StorageTemporary), loc)
		agg := AsAggregate(n)
		require.NotNil(t, agg)
		assert.Equal(t, OpConstructVec3, agg.Op)
	})
}

func TestFoldDereference(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	v := vectorConst(1, 2, 3)

	c := in.FoldDereference(v, 1, SourceLoc{Line: 4})
	require.NotNil(t, c)
	assert.Equal(t, []float64{2}, floats(c))
	assert.True(t, c.Type().IsScalar())

	arr := NewConstantUnion(ConstArray{ConstFloat(1), ConstFloat(2), ConstFloat(3), ConstFloat(4)},
		NewVector(BasicFloat, 2, StorageConst).ArrayOf(2), SourceLoc{})
	c = in.FoldDereference(arr, 1, SourceLoc{})
	require.NotNil(t, c)
	assert.Equal(t, []float64{3, 4}, floats(c))
	assert.True(t, c.Type().IsVector())

	s := NewStruct("S", []Member{
		{Name: "a", Type: NewScalar(BasicInt, StorageTemporary)},
		{Name: "b", Type: NewVector(BasicFloat, 2, StorageTemporary)},
	}, StorageConst)
	sc := NewConstantUnion(ConstArray{ConstInt(9), ConstFloat(5), ConstFloat(6)}, s, SourceLoc{})
	c = in.FoldDereference(sc, 1, SourceLoc{})
	require.NotNil(t, c)
	assert.Equal(t, []float64{5, 6}, floats(c))

	assert.Nil(t, in.FoldDereference(v, 5, SourceLoc{}))
}

func TestFoldSwizzle(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	var sel SwizzleSelectors[int]
	sel.Push(3)
	sel.Push(0)
	sel.Push(0)

	c := in.FoldSwizzle(vectorConst(1, 2, 3, 4), &sel, SourceLoc{})
	require.NotNil(t, c)
	assert.Equal(t, []float64{4, 1, 1}, floats(c))
	assert.Equal(t, 3, c.Type().VectorSize)
}

func TestFoldBuiltIn(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	loc := SourceLoc{Line: 1}
	scalar := NewScalar(BasicFloat, StorageTemporary)

	args := in.GrowAggregate(vectorConst(1, 2, 3), vectorConst(4, 5, 6), loc)
	dot := AsConstant(in.SetAggregateOperator(args, OpDot, scalar, loc))
	require.NotNil(t, dot)
	assert.Equal(t, []float64{32}, floats(dot))

	args = in.GrowAggregate(vectorConst(1, 0, 0), vectorConst(0, 1, 0), loc)
	cross := AsConstant(in.SetAggregateOperator(args, OpCross, NewVector(BasicFloat, 3, StorageTemporary), loc))
	require.NotNil(t, cross)
	assert.Equal(t, []float64{0, 0, 1}, floats(cross))

	args = in.GrowAggregate(vectorConst(0, 0), vectorConst(3, 4), loc)
	dist := AsConstant(in.SetAggregateOperator(args, OpDistance, scalar, loc))
	require.NotNil(t, dist)
	assert.Equal(t, []float64{5}, floats(dist))

	args = in.GrowAggregate(vectorConst(-1, 5), in.AddFloatConstant(0, BasicFloat, loc, true), loc)
	args = in.GrowAggregate(args, in.AddFloatConstant(1, BasicFloat, loc, true), loc)
	clamp := AsConstant(in.SetAggregateOperator(args, OpClamp, NewVector(BasicFloat, 2, StorageTemporary), loc))
	require.NotNil(t, clamp)
	assert.Equal(t, []float64{0, 1}, floats(clamp))
}
