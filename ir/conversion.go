package ir

// Extensions consulted by the conversion rules.
const (
	ExtAMDGpuShaderInt16            = "GL_AMD_gpu_shader_int16"
	ExtAMDGpuShaderHalfFloat        = "GL_AMD_gpu_shader_half_float"
	ExtARBGpuShaderInt64            = "GL_ARB_gpu_shader_int64"
	ExtExplicitArithmeticTypes      = "GL_EXT_shader_explicit_arithmetic_types"
	ExtExplicitArithmeticTypesInt8  = "GL_EXT_shader_explicit_arithmetic_types_int8"
	ExtExplicitArithmeticTypesInt16 = "GL_EXT_shader_explicit_arithmetic_types_int16"
	ExtExplicitArithmeticTypesInt32 = "GL_EXT_shader_explicit_arithmetic_types_int32"
	ExtExplicitArithmeticTypesInt64 = "GL_EXT_shader_explicit_arithmetic_types_int64"
	ExtExplicitArithmeticTypesF16   = "GL_EXT_shader_explicit_arithmetic_types_float16"
	ExtExplicitArithmeticTypesF32   = "GL_EXT_shader_explicit_arithmetic_types_float32"
	ExtExplicitArithmeticTypesF64   = "GL_EXT_shader_explicit_arithmetic_types_float64"
)

var explicitArithmeticExtensions = []string{
	ExtExplicitArithmeticTypes,
	ExtExplicitArithmeticTypesInt8,
	ExtExplicitArithmeticTypesInt16,
	ExtExplicitArithmeticTypesInt32,
	ExtExplicitArithmeticTypesInt64,
	ExtExplicitArithmeticTypesF16,
	ExtExplicitArithmeticTypesF32,
	ExtExplicitArithmeticTypesF64,
}

func (in *Intermediate) explicitTypesEnabled() bool {
	for _, ext := range explicitArithmeticExtensions {
		if in.RequestedExtension(ext) {
			return true
		}
	}
	return false
}

func (in *Intermediate) arithmeticInt8Enabled() bool {
	return in.RequestedExtension(ExtExplicitArithmeticTypes) || in.RequestedExtension(ExtExplicitArithmeticTypesInt8)
}

func (in *Intermediate) arithmeticInt16Enabled() bool {
	return in.RequestedExtension(ExtExplicitArithmeticTypes) || in.RequestedExtension(ExtExplicitArithmeticTypesInt16) ||
		in.RequestedExtension(ExtAMDGpuShaderInt16)
}

func (in *Intermediate) arithmeticFloat16Enabled() bool {
	return in.RequestedExtension(ExtExplicitArithmeticTypes) || in.RequestedExtension(ExtExplicitArithmeticTypesF16) ||
		in.RequestedExtension(ExtAMDGpuShaderHalfFloat)
}

// IsIntegralPromotion reports the small-integer to int promotions.
func IsIntegralPromotion(from, to BasicType) bool {
	if to != BasicInt {
		return false
	}
	switch from {
	case BasicInt8, BasicInt16, BasicUint8, BasicUint16:
		return true
	}
	return false
}

// IsFPPromotion reports float16 and float to double.
func IsFPPromotion(from, to BasicType) bool {
	return to == BasicDouble && (from == BasicFloat16 || from == BasicFloat)
}

// IsIntegralConversion reports the implicit integer-to-integer
// conversions. int to uint needs version 400 or HLSL.
func (in *Intermediate) IsIntegralConversion(from, to BasicType) bool {
	switch from {
	case BasicInt8:
		switch to {
		case BasicUint8, BasicInt16, BasicUint16, BasicUint, BasicInt64, BasicUint64:
			return true
		}
	case BasicUint8:
		switch to {
		case BasicInt16, BasicUint16, BasicUint, BasicInt64, BasicUint64:
			return true
		}
	case BasicInt16:
		switch to {
		case BasicUint16, BasicUint, BasicInt64, BasicUint64:
			return true
		}
	case BasicUint16:
		switch to {
		case BasicUint, BasicInt64, BasicUint64:
			return true
		}
	case BasicInt:
		switch to {
		case BasicUint:
			return in.version >= 400 || in.source == SourceHLSL
		case BasicInt64, BasicUint64:
			return true
		}
	case BasicUint:
		return to == BasicInt64 || to == BasicUint64
	case BasicInt64:
		return to == BasicUint64
	}
	return false
}

// IsFPConversion reports float16 to float.
func IsFPConversion(from, to BasicType) bool {
	return from == BasicFloat16 && to == BasicFloat
}

// IsFPIntegralConversion reports the implicit integer-to-floating
// conversions.
func IsFPIntegralConversion(from, to BasicType) bool {
	switch from {
	case BasicInt8, BasicUint8, BasicInt16, BasicUint16:
		return to == BasicFloat16 || to == BasicFloat || to == BasicDouble
	case BasicInt, BasicUint:
		return to == BasicFloat || to == BasicDouble
	case BasicInt64, BasicUint64:
		return to == BasicDouble
	}
	return false
}

// CanImplicitlyPromote reports whether a value of basic type from may be
// converted to to without a cast, in the context of op.
func (in *Intermediate) CanImplicitlyPromote(from, to BasicType, op Operator) bool {
	if in.IsES() || in.version == 110 {
		return false
	}
	if from == to {
		return true
	}

	if in.source == SourceHLSL && hlslConvertible(from) && hlslConvertible(to) {
		switch op {
		case OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign, OpAssign, OpAddAssign,
			OpSubAssign, OpMulAssign, OpVectorTimesScalarAssign, OpMatrixTimesScalarAssign,
			OpDivAssign, OpModAssign, OpReturn, OpFunctionCall, OpLogicalNot, OpLogicalAnd,
			OpLogicalOr, OpLogicalXor, OpConstructStruct:
			return true
		}
	}

	if in.explicitTypesEnabled() {
		return IsIntegralPromotion(from, to) || IsFPPromotion(from, to) ||
			in.IsIntegralConversion(from, to) || IsFPConversion(from, to) ||
			IsFPIntegralConversion(from, to)
	}

	int16 := in.RequestedExtension(ExtAMDGpuShaderInt16)
	half := in.RequestedExtension(ExtAMDGpuShaderHalfFloat)
	hlsl := in.source == SourceHLSL

	switch to {
	case BasicDouble:
		switch from {
		case BasicInt, BasicUint, BasicInt64, BasicUint64, BasicFloat:
			return true
		case BasicInt16, BasicUint16:
			return int16
		case BasicFloat16:
			return half
		}
	case BasicFloat:
		switch from {
		case BasicInt, BasicUint:
			return true
		case BasicBool:
			return hlsl
		case BasicInt16, BasicUint16:
			return int16
		case BasicFloat16:
			return half || hlsl
		}
	case BasicUint:
		switch from {
		case BasicInt:
			return in.version >= 400 || hlsl
		case BasicBool:
			return hlsl
		case BasicInt16, BasicUint16:
			return int16
		}
	case BasicInt:
		switch from {
		case BasicBool:
			return hlsl
		case BasicInt16:
			return int16
		}
	case BasicUint64:
		switch from {
		case BasicInt, BasicUint, BasicInt64:
			return true
		case BasicInt16, BasicUint16:
			return int16
		}
	case BasicInt64:
		switch from {
		case BasicInt:
			return true
		case BasicInt16:
			return int16
		}
	case BasicFloat16:
		switch from {
		case BasicInt16, BasicUint16:
			return int16
		}
	case BasicUint16:
		switch from {
		case BasicInt16:
			return int16
		}
	}
	return false
}

func hlslConvertible(b BasicType) bool {
	switch b {
	case BasicFloat, BasicDouble, BasicInt, BasicUint, BasicBool:
		return true
	}
	return false
}

// integerRank orders integer widths.
func integerRank(b BasicType) int {
	switch b {
	case BasicInt8, BasicUint8:
		return 0
	case BasicInt16, BasicUint16:
		return 1
	case BasicInt, BasicUint:
		return 2
	}
	return 3
}

func correspondingUnsigned(b BasicType) BasicType {
	switch b {
	case BasicInt8:
		return BasicUint8
	case BasicInt16:
		return BasicUint16
	case BasicInt:
		return BasicUint
	}
	return BasicUint64
}

// signedCoversUnsigned reports whether every value of the unsigned type
// fits in the signed one.
func signedCoversUnsigned(signed, unsigned BasicType) bool {
	return integerRank(signed) > integerRank(unsigned)
}

// ConversionDestinationType returns the common basic type two operands of
// op are converted to, or ok false when there is none.
func (in *Intermediate) ConversionDestinationType(t0, t1 BasicType, op Operator) (res0, res1 BasicType, ok bool) {
	if in.IsES() && !in.explicitTypesEnabled() {
		return 0, 0, false
	}

	if in.source == SourceHLSL {
		switch {
		case in.CanImplicitlyPromote(t1, t0, op):
			return t0, t0, true
		case in.CanImplicitlyPromote(t0, t1, op):
			return t1, t1, true
		}
		return 0, 0, false
	}

	for _, fp := range []BasicType{BasicDouble, BasicFloat, BasicFloat16} {
		if (t0 == fp && in.CanImplicitlyPromote(t1, fp, op)) || (t1 == fp && in.CanImplicitlyPromote(t0, fp, op)) {
			return fp, fp, true
		}
	}

	if !t0.IsInteger() || !t1.IsInteger() ||
		!(in.CanImplicitlyPromote(t0, t1, op) || in.CanImplicitlyPromote(t1, t0, op)) {
		return 0, 0, false
	}

	switch {
	case t0.IsUnsigned() == t1.IsUnsigned():
		if integerRank(t0) < integerRank(t1) {
			return t1, t1, true
		}
		return t0, t0, true
	case t0.IsUnsigned() && integerRank(t0) >= integerRank(t1):
		return t0, t0, true
	case t1.IsUnsigned() && integerRank(t1) >= integerRank(t0):
		return t1, t1, true
	case !t0.IsUnsigned():
		if signedCoversUnsigned(t0, t1) {
			return t0, t0, true
		}
		u := correspondingUnsigned(t0)
		return u, u, true
	default:
		if signedCoversUnsigned(t1, t0) {
			return t1, t1, true
		}
		u := correspondingUnsigned(t1)
		return u, u, true
	}
}

// isConversionAllowed rejects void and opaque operands, except where
// opaque values may be passed or assigned.
func (in *Intermediate) isConversionAllowed(op Operator, node Typed) bool {
	switch BasicOf(node) {
	case BasicVoid:
		return false
	case BasicAtomicUint, BasicSampler:
		if op == OpFunction {
			return true
		}
		if in.source == SourceHLSL && BasicOf(node) == BasicSampler {
			return true
		}
		if agg := AsAggregate(node); agg != nil && BasicOf(node) == BasicSampler && op == OpAssign &&
			agg.Op == OpConstructTextureSampler {
			return true
		}
		return false
	}
	return true
}

// AddConversion converts node to the basic type of t as op allows. It
// returns node itself when no conversion is needed and nil when the
// conversion is not allowed. Shape is the caller's concern.
func (in *Intermediate) AddConversion(op Operator, t *Type, node Typed) Typed {
	if !in.isConversionAllowed(op, node) {
		return nil
	}
	if t.Equal(node.Type()) {
		return node
	}
	if t.IsStruct() || node.Type().IsStruct() || t.IsArray() || node.Type().IsArray() {
		return nil
	}

	var promoteTo BasicType
	switch op {
	case OpConstructBool:
		promoteTo = BasicBool
	case OpConstructFloat:
		promoteTo = BasicFloat
	case OpConstructDouble:
		promoteTo = BasicDouble
	case OpConstructFloat16:
		promoteTo = BasicFloat16
	case OpConstructInt8:
		promoteTo = BasicInt8
	case OpConstructUint8:
		promoteTo = BasicUint8
	case OpConstructInt16:
		promoteTo = BasicInt16
	case OpConstructUint16:
		promoteTo = BasicUint16
	case OpConstructInt:
		promoteTo = BasicInt
	case OpConstructUint:
		promoteTo = BasicUint
	case OpConstructInt64:
		promoteTo = BasicInt64
	case OpConstructUint64:
		promoteTo = BasicUint64

	case OpLogicalNot, OpFunctionCall, OpReturn, OpAssign, OpAddAssign, OpSubAssign,
		OpMulAssign, OpVectorTimesScalarAssign, OpMatrixTimesScalarAssign, OpDivAssign,
		OpModAssign, OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign,
		OpAtan, OpClamp, OpCross, OpDistance, OpDot, OpMix, OpMax, OpMin, OpPow,
		OpReflect, OpRefract, OpSmoothStep, OpStep, OpSequence, OpConstructStruct:
		if t.Basic == BasicOf(node) {
			return node
		}
		if !in.CanImplicitlyPromote(BasicOf(node), t.Basic, op) {
			return nil
		}
		promoteTo = t.Basic

	case OpLeftShift, OpRightShift:
		// GLSL shifts only need integer operands. HLSL promotes bool.
		if in.source != SourceHLSL {
			return node
		}
		switch b := BasicOf(node); {
		case b == BasicBool:
			promoteTo = BasicInt
		case b.IsInteger():
			return node
		default:
			return nil
		}

	default:
		if t.Basic == BasicOf(node) {
			return node
		}
		return nil
	}

	if promoteTo == BasicOf(node) {
		return node
	}
	if c := AsConstant(node); c != nil && in.canFoldConversionTo(promoteTo) {
		return in.PromoteConstantUnion(promoteTo, c)
	}
	return in.createConversion(promoteTo, node)
}

// canFoldConversionTo keeps small-width constants unfolded unless their
// arithmetic is enabled.
func (in *Intermediate) canFoldConversionTo(b BasicType) bool {
	switch {
	case b.Is8Bit():
		return in.arithmeticInt8Enabled()
	case b.Is16Bit():
		if b == BasicFloat16 {
			return in.arithmeticFloat16Enabled()
		}
		return in.arithmeticInt16Enabled()
	}
	return true
}

// AddConversions converts both operands of a binary op to their common
// type. Both results are nil when no implicit conversion applies.
func (in *Intermediate) AddConversions(op Operator, node0, node1 Typed) (Typed, Typed) {
	if !in.isConversionAllowed(op, node0) || !in.isConversionAllowed(op, node1) {
		return nil, nil
	}
	t0, t1 := node0.Type(), node1.Type()
	if !t0.Equal(t1) && (t0.IsStruct() || t1.IsStruct() || t0.IsArray() || t1.IsArray()) {
		return nil, nil
	}

	var to0, to1 BasicType
	switch op {
	case OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual, OpEqual, OpNotEqual,
		OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpVectorTimesScalar, OpVectorTimesMatrix, OpMatrixTimesVector, OpMatrixTimesScalar,
		OpAnd, OpInclusiveOr, OpExclusiveOr, OpSequence:
		if t0.Basic == t1.Basic {
			return node0, node1
		}
		var ok bool
		to0, to1, ok = in.ConversionDestinationType(t0.Basic, t1.Basic, op)
		if !ok {
			return nil, nil
		}

	case OpLogicalAnd, OpLogicalOr, OpLogicalXor:
		if in.source != SourceHLSL {
			return node0, node1
		}
		to0, to1 = BasicBool, BasicBool

	case OpLeftShift, OpRightShift:
		if in.source != SourceHLSL {
			if t0.Basic.IsInteger() && t1.Basic.IsInteger() {
				return node0, node1
			}
			return nil, nil
		}
		to0, to1 = t0.Basic, t1.Basic
		if to0 == BasicBool {
			to0 = BasicInt
		}
		if to1 == BasicBool {
			to1 = BasicInt
		}

	default:
		if t0.Equal(t1) {
			return node0, node1
		}
		return nil, nil
	}

	return in.convertTo(to0, node0), in.convertTo(to1, node1)
}

func (in *Intermediate) convertTo(b BasicType, node Typed) Typed {
	if b == BasicOf(node) {
		return node
	}
	if c := AsConstant(node); c != nil {
		return in.PromoteConstantUnion(b, c)
	}
	return in.createConversion(b, node)
}

// createConversion wraps node in a conversion to b, keeping its shape and
// location.
func (in *Intermediate) createConversion(b BasicType, node Typed) Typed {
	src := node.Type()
	t := &Type{
		Basic:      b,
		VectorSize: src.VectorSize,
		MatrixCols: src.MatrixCols,
		MatrixRows: src.MatrixRows,
		Qualifier:  NewQualifier(StorageTemporary),
	}
	conv := &Unary{Op: OpConvert, Operand: node}
	conv.SetType(t)
	conv.SetLoc(node.Loc())

	if src.Qualifier.IsSpecConstant() && isSpecConversion(src.Basic, b) {
		conv.typ.Qualifier.MakeSpecConstant()
	}
	log.Debugf("%s: conversion %s to %s", node.Loc(), src.Basic, b)
	return conv
}

// isSpecConversion reports conversions allowed on specialization
// constants: between integer and bool kinds, and between float and double.
func isSpecConversion(from, to BasicType) bool {
	intOrBool := func(b BasicType) bool { return b.IsInteger() || b == BasicBool }
	if intOrBool(from) && intOrBool(to) {
		return true
	}
	return (from == BasicFloat && to == BasicDouble) || (from == BasicDouble && to == BasicFloat)
}

// PromoteConstantUnion converts every component of a constant to b.
func (in *Intermediate) PromoteConstantUnion(b BasicType, node *ConstantUnion) *ConstantUnion {
	values := make(ConstArray, len(node.Value))
	for i, v := range node.Value {
		values[i] = v.Convert(b)
	}
	t := node.Type().Clone()
	t.Basic = b
	t.Qualifier = NewQualifier(StorageConst)
	return NewConstantUnion(values, t, node.Loc())
}

// AddUniShapeConversion adjusts the shape of node to t for HLSL
// assignments, returns and calls. GLSL nodes are returned unchanged.
func (in *Intermediate) AddUniShapeConversion(op Operator, t *Type, node Typed) Typed {
	if in.source != SourceHLSL {
		return node
	}
	switch op {
	case OpFunctionCall, OpReturn, OpAssign, OpMix:
	case OpMulAssign, OpAddAssign, OpSubAssign, OpDivAssign, OpAndAssign, OpInclusiveOrAssign,
		OpExclusiveOrAssign, OpRightShiftAssign, OpLeftShiftAssign:
		if node.Type().IsScalarOrVector() && node.Type().VectorSize == 1 {
			return node
		}
	default:
		return node
	}
	return in.addShapeConversion(t, node)
}

// AddBiShapeConversion brings HLSL operands of op to a common shape.
func (in *Intermediate) AddBiShapeConversion(op Operator, lhs, rhs Typed) (Typed, Typed) {
	if in.source != SourceHLSL {
		return lhs, rhs
	}

	scalarish := func(n Typed) bool { return n.Type().IsScalarOrVector() && n.Type().VectorSize == 1 }

	switch op {
	case OpMulAssign, OpAssign, OpAddAssign, OpSubAssign, OpDivAssign, OpAndAssign,
		OpInclusiveOrAssign, OpExclusiveOrAssign, OpRightShiftAssign, OpLeftShiftAssign:
		return lhs, in.AddUniShapeConversion(op, lhs.Type(), rhs)
	case OpMul:
		if lhs.Type().IsMatrix() && rhs.Type().IsMatrix() {
			return lhs, rhs
		}
		fallthrough
	case OpAdd, OpSub, OpDiv:
		// Scalar operands stay scalar; the component-wise forms handle them.
		if scalarish(lhs) || scalarish(rhs) {
			return lhs, rhs
		}
	case OpRightShift, OpLeftShift:
		if scalarish(rhs) {
			return lhs, rhs
		}
	case OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual, OpEqual, OpNotEqual,
		OpLogicalAnd, OpLogicalOr, OpLogicalXor, OpAnd, OpInclusiveOr, OpExclusiveOr, OpMix:
	default:
		return lhs, rhs
	}

	if scalarish(lhs) {
		lhs = in.addShapeConversion(rhs.Type(), lhs)
	} else if scalarish(rhs) {
		rhs = in.addShapeConversion(lhs.Type(), rhs)
	}
	lhs = in.addShapeConversion(rhs.Type(), lhs)
	rhs = in.addShapeConversion(lhs.Type(), rhs)
	return lhs, rhs
}

// addShapeConversion rebuilds node with the shape of t through a
// constructor when a shape change is permitted.
func (in *Intermediate) addShapeConversion(t *Type, node Typed) Typed {
	src := node.Type()
	if src.Equal(t) || src.IsStruct() || src.IsArray() || t.IsStruct() || t.IsArray() {
		return node
	}

	ctor := func() Typed {
		nt := t.Clone()
		nt.Basic = src.Basic
		nt.Qualifier = NewQualifier(StorageTemporary)
		return in.SetAggregateOperator(in.MakeAggregate(node), MapTypeToConstructorOp(nt), nt, node.Loc())
	}
	scalarish := src.IsScalarOrVector() && src.VectorSize == 1

	if in.source == SourceHLSL {
		switch {
		case scalarish && t.IsMatrix():
			// The scalar fills every component, not just the diagonal.
			agg := NewAggregate(OpNull)
			for i := 0; i < t.ComputeNumComponents(); i++ {
				agg.Seq = append(agg.Seq, node)
			}
			nt := t.Clone()
			nt.Basic = src.Basic
			nt.Qualifier = NewQualifier(StorageTemporary)
			return in.SetAggregateOperator(agg, MapTypeToConstructorOp(nt), nt, node.Loc())
		case src.IsScalar() != t.IsScalar():
			return ctor()
		case src.IsMatrix() && t.IsMatrix():
			if (src.MatrixCols != t.MatrixCols || src.MatrixRows != t.MatrixRows) &&
				src.MatrixCols >= t.MatrixCols && src.MatrixRows >= t.MatrixRows {
				return ctor()
			}
		case src.IsMatrix() && t.IsVector():
			if t.VectorSize == 4 && src.MatrixCols == 2 && src.MatrixRows == 2 {
				return ctor()
			}
		case src.IsVector() && t.IsVector():
			if src.VectorSize > t.VectorSize {
				return ctor()
			}
		case src.IsVector() && t.IsMatrix():
			if src.VectorSize == 4 && t.MatrixCols == 2 && t.MatrixRows == 2 {
				return ctor()
			}
		}
	}

	if (scalarish && t.IsVector()) || (src.IsVector() && t.IsScalar()) ||
		(src.IsVector() && t.IsVector() && src.VectorSize > t.VectorSize) {
		return ctor()
	}
	return node
}
