package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanImplicitlyPromote(t *testing.T) {
	tests := []struct {
		name     string
		version  int
		profile  Profile
		from, to BasicType
		want     bool
	}{
		{"int to float", 450, ProfileCore, BasicInt, BasicFloat, true},
		{"uint to double", 450, ProfileCore, BasicUint, BasicDouble, true},
		{"float to double", 450, ProfileCore, BasicFloat, BasicDouble, true},
		{"int to uint 4.0", 400, ProfileCore, BasicInt, BasicUint, true},
		{"int to uint 3.3", 330, ProfileCore, BasicInt, BasicUint, false},
		{"float to int", 450, ProfileCore, BasicFloat, BasicInt, false},
		{"bool to float", 450, ProfileCore, BasicBool, BasicFloat, false},
		{"int to int64", 450, ProfileCore, BasicInt, BasicInt64, true},
		{"es never", 310, ProfileES, BasicInt, BasicFloat, false},
		{"110 never", 110, ProfileNone, BasicInt, BasicFloat, false},
		{"same type", 450, ProfileCore, BasicInt, BasicInt, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewIntermediate(StageFragment, tt.version, tt.profile)
			in.SetSource(SourceGLSL)
			assert.Equal(t, tt.want, in.CanImplicitlyPromote(tt.from, tt.to, OpAdd))
		})
	}
}

func TestCanImplicitlyPromote_HLSL(t *testing.T) {
	in := NewIntermediate(StageFragment, 500, ProfileNone)
	in.SetSource(SourceHLSL)

	assert.True(t, in.CanImplicitlyPromote(BasicFloat, BasicInt, OpAssign))
	assert.True(t, in.CanImplicitlyPromote(BasicBool, BasicFloat, OpAdd))
	assert.False(t, in.CanImplicitlyPromote(BasicFloat, BasicInt, OpAdd))
}

func TestConversionDestinationType(t *testing.T) {
	tests := []struct {
		name    string
		version int
		t0, t1  BasicType
		want    BasicType
		ok      bool
	}{
		{"int float", 450, BasicInt, BasicFloat, BasicFloat, true},
		{"float int", 450, BasicFloat, BasicInt, BasicFloat, true},
		{"float double", 450, BasicFloat, BasicDouble, BasicDouble, true},
		{"int uint", 450, BasicInt, BasicUint, BasicUint, true},
		{"uint int", 450, BasicUint, BasicInt, BasicUint, true},
		{"int uint 3.3", 330, BasicInt, BasicUint, 0, false},
		{"int int64", 450, BasicInt, BasicInt64, BasicInt64, true},
		{"uint uint64", 450, BasicUint, BasicUint64, BasicUint64, true},
		{"bool int", 450, BasicBool, BasicInt, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewIntermediate(StageFragment, tt.version, ProfileCore)
			in.SetSource(SourceGLSL)
			res0, res1, ok := in.ConversionDestinationType(tt.t0, tt.t1, OpAdd)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, res0)
				assert.Equal(t, tt.want, res1)
			}
		})
	}
}

func TestConversionDestinationType_ES(t *testing.T) {
	in := NewIntermediate(StageFragment, 310, ProfileES)
	_, _, ok := in.ConversionDestinationType(BasicInt, BasicFloat, OpAdd)
	assert.False(t, ok)
}

func TestAddConversions_Symbols(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	in.SetSource(SourceGLSL)
	i := NewSymbol(1, "i", NewScalar(BasicInt, StorageTemporary), SourceLoc{Line: 3})
	f := NewSymbol(2, "f", NewScalar(BasicFloat, StorageTemporary), SourceLoc{Line: 3})

	left, right := in.AddConversions(OpAdd, i, f)
	require.NotNil(t, left)
	require.NotNil(t, right)

	conv, ok := left.(*Unary)
	require.True(t, ok, "int operand is wrapped in a conversion")
	assert.Equal(t, OpConvert, conv.Op)
	assert.Same(t, i, conv.Operand)
	assert.Equal(t, BasicFloat, BasicOf(conv))
	assert.Equal(t, 3, conv.Loc().Line)
	assert.Same(t, f, right)
}

func TestAddConversions_ConstantsFold(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	in.SetSource(SourceGLSL)
	f := NewSymbol(1, "f", NewScalar(BasicFloat, StorageTemporary), SourceLoc{Line: 1})

	_, right := in.AddConversions(OpMul, f, in.AddIntConstant(2, SourceLoc{Line: 1}, true))
	c := AsConstant(right)
	require.NotNil(t, c, "constant operands are converted in place")
	assert.Equal(t, BasicFloat, BasicOf(c))
	assert.Equal(t, 2.0, c.Value[0].Float())
}

func TestAddConversions_Rejected(t *testing.T) {
	in := NewIntermediate(StageFragment, 310, ProfileES)
	in.SetSource(SourceGLSL)
	i := NewSymbol(1, "i", NewScalar(BasicInt, StorageTemporary), SourceLoc{})
	f := NewSymbol(2, "f", NewScalar(BasicFloat, StorageTemporary), SourceLoc{})

	left, right := in.AddConversions(OpAdd, i, f)
	assert.Nil(t, left)
	assert.Nil(t, right)

	v := NewSymbol(3, "v", NewScalar(BasicVoid, StorageTemporary), SourceLoc{})
	left, _ = in.AddConversions(OpAdd, v, v)
	assert.Nil(t, left)
}

func TestAddConversion_Constructors(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	in.SetSource(SourceGLSL)

	n := in.AddConversion(OpConstructFloat, NewScalar(BasicFloat, StorageTemporary), in.AddIntConstant(-3, SourceLoc{}, true))
	c := AsConstant(n)
	require.NotNil(t, c)
	assert.Equal(t, -3.0, c.Value[0].Float())

	n = in.AddConversion(OpConstructBool, NewScalar(BasicBool, StorageTemporary), in.AddUintConstant(0, SourceLoc{}, true))
	c = AsConstant(n)
	require.NotNil(t, c)
	assert.False(t, c.Value[0].Bool())

	// Implicit assignment narrowing is refused.
	f := NewSymbol(1, "f", NewScalar(BasicFloat, StorageTemporary), SourceLoc{})
	assert.Nil(t, in.AddConversion(OpAssign, NewScalar(BasicInt, StorageTemporary), f))
}

func TestCreateConversion_SpecConstant(t *testing.T) {
	in := NewIntermediate(StageCompute, 450, ProfileCore)
	in.SetSource(SourceGLSL)

	st := NewScalar(BasicInt, StorageConst)
	st.Qualifier.MakeSpecConstant()
	spec := NewSymbol(1, "k", st, SourceLoc{})

	toUint := in.createConversion(BasicUint, spec)
	assert.True(t, QualifierOf(toUint).IsSpecConstant())

	toFloat := in.createConversion(BasicFloat, spec)
	assert.False(t, QualifierOf(toFloat).IsSpecConstant())
}

func TestIsSpecConversion(t *testing.T) {
	assert.True(t, isSpecConversion(BasicInt, BasicBool))
	assert.True(t, isSpecConversion(BasicBool, BasicUint64))
	assert.True(t, isSpecConversion(BasicFloat, BasicDouble))
	assert.True(t, isSpecConversion(BasicDouble, BasicFloat))
	assert.False(t, isSpecConversion(BasicInt, BasicFloat))
}
