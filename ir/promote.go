package ir

// promoteUnary checks the operand of a unary operator and sets the
// result type.
func (in *Intermediate) promoteUnary(node *Unary) bool {
	operand := node.Operand
	b := BasicOf(operand)

	switch node.Op {
	case OpLogicalNot:
		if b != BasicBool {
			converted := in.AddConversion(node.Op, NewScalar(BasicBool, StorageTemporary), operand)
			if converted == nil {
				return false
			}
			node.Operand = converted
			operand = converted
		}
	case OpBitwiseNot:
		if !b.IsInteger() {
			return false
		}
	case OpNegative, OpPostIncrement, OpPostDecrement, OpPreIncrement, OpPreDecrement:
		if !b.IsInteger() && b != BasicFloat && b != BasicFloat16 && b != BasicDouble {
			return false
		}
	default:
		if b != BasicFloat {
			return false
		}
	}

	node.SetType(operand.Type())
	node.typ.Qualifier.MakeTemporary()
	return true
}

// promoteBinary checks the operands of a binary operator, sets the result
// type, and rewrites Mul and MulAssign into their linear-algebra forms.
func (in *Intermediate) promoteBinary(node *Binary) bool {
	op := node.Op
	left, right := node.Left, node.Right
	lt, rt := left.Type(), right.Type()

	// Arrays and structs must match exactly.
	if (lt.IsArray() || rt.IsArray() || lt.Basic == BasicStruct || rt.Basic == BasicStruct) && !lt.Equal(rt) {
		return false
	}

	setType := func(t *Type) {
		node.SetType(t)
		node.typ.Qualifier = NewQualifier(StorageTemporary)
	}
	setType(lt)

	if lt.IsArray() || lt.Basic == BasicStruct || lt.Basic == BasicSampler {
		switch op {
		case OpEqual, OpNotEqual:
			if lt.Basic == BasicSampler {
				return false
			}
			setType(NewScalar(BasicBool, StorageTemporary))
			return true
		case OpAssign:
			return true
		}
		return false
	}

	// HLSL promotes bool operands to int for numeric operators.
	if in.source == SourceHLSL && (lt.Basic == BasicBool || rt.Basic == BasicBool) {
		switch op {
		case OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual,
			OpRightShift, OpLeftShift, OpMod, OpAnd, OpInclusiveOr, OpExclusiveOr,
			OpAdd, OpSub, OpDiv, OpMul:
			if lt.Basic == BasicBool {
				left = in.createConversion(BasicInt, left)
			}
			if rt.Basic == BasicBool {
				right = in.createConversion(BasicInt, right)
			}
			node.Left, node.Right = left, right
			lt, rt = left.Type(), right.Type()
			setType(lt)
		}
	}

	switch op {
	case OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual:
		if lt.Basic == BasicBool {
			return false
		}
		setType(NewVector(BasicBool, lt.VectorSize, StorageTemporary))

	case OpEqual, OpNotEqual:
		if in.source == SourceHLSL {
			width := max(lt.VectorSize, rt.VectorSize)
			if width > 1 {
				if op == OpEqual {
					op = OpVectorEqual
				} else {
					op = OpVectorNotEqual
				}
				node.Op = op
			}
			setType(NewVector(BasicBool, width, StorageTemporary))
		} else {
			setType(NewScalar(BasicBool, StorageTemporary))
		}

	case OpLogicalAnd, OpLogicalOr, OpLogicalXor:
		if lt.Basic != BasicBool || lt.IsMatrix() {
			return false
		}
		if in.source == SourceGLSL && lt.IsVector() {
			return false
		}
		setType(NewVector(BasicBool, lt.VectorSize, StorageTemporary))

	case OpRightShift, OpLeftShift, OpRightShiftAssign, OpLeftShiftAssign,
		OpMod, OpModAssign, OpAnd, OpInclusiveOr, OpExclusiveOr,
		OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign:
		if in.source == SourceHLSL {
			break
		}
		if !lt.Basic.IsInteger() && !rt.Basic.IsInteger() {
			return false
		}
		if lt.IsMatrix() || rt.IsMatrix() {
			return false
		}

	case OpAdd, OpSub, OpDiv, OpMul, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign:
		if lt.Basic == BasicBool || rt.Basic == BasicBool {
			return false
		}
	}

	switch op {
	case OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual,
		OpEqual, OpNotEqual, OpVectorEqual, OpVectorNotEqual,
		OpLogicalAnd, OpLogicalOr, OpLogicalXor:
		return lt.Equal(rt)

	case OpMod, OpModAssign, OpAnd, OpInclusiveOr, OpExclusiveOr,
		OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign,
		OpAdd, OpSub, OpDiv, OpAddAssign, OpSubAssign, OpDivAssign:
		if lt.Equal(rt) {
			return true
		}
		if lt.Basic != rt.Basic {
			return false
		}

	case OpMul, OpMulAssign:
		if lt.Basic != rt.Basic {
			return false
		}
	}

	if lt.IsScalar() && rt.IsScalar() {
		return true
	}
	if lt.IsVector() && rt.IsVector() && lt.VectorSize != rt.VectorSize {
		return false
	}

	basic := lt.Basic
	switch op {
	case OpMul:
		switch {
		case !lt.IsMatrix() && rt.IsMatrix():
			if lt.IsVector() {
				if lt.VectorSize != rt.MatrixRows {
					return false
				}
				node.Op = OpVectorTimesMatrix
				setType(NewVector(basic, rt.MatrixCols, StorageTemporary))
			} else {
				node.Op = OpMatrixTimesScalar
				setType(NewMatrix(basic, rt.MatrixCols, rt.MatrixRows, StorageTemporary))
			}
		case lt.IsMatrix() && !rt.IsMatrix():
			if rt.IsVector() {
				if lt.MatrixCols != rt.VectorSize {
					return false
				}
				node.Op = OpMatrixTimesVector
				setType(NewVector(basic, lt.MatrixRows, StorageTemporary))
			} else {
				node.Op = OpMatrixTimesScalar
			}
		case lt.IsMatrix() && rt.IsMatrix():
			if lt.MatrixCols != rt.MatrixRows {
				return false
			}
			node.Op = OpMatrixTimesMatrix
			setType(NewMatrix(basic, rt.MatrixCols, lt.MatrixRows, StorageTemporary))
		case lt.IsVector() && rt.IsVector():
			// component-wise product
		default:
			node.Op = OpVectorTimesScalar
			if rt.IsVector() {
				setType(NewVector(basic, rt.VectorSize, StorageTemporary))
			}
		}

	case OpMulAssign:
		switch {
		case !lt.IsMatrix() && rt.IsMatrix():
			if !lt.IsVector() || lt.VectorSize != rt.MatrixRows || lt.VectorSize != rt.MatrixCols {
				return false
			}
			node.Op = OpVectorTimesMatrixAssign
		case lt.IsMatrix() && !rt.IsMatrix():
			if rt.IsVector() {
				return false
			}
			node.Op = OpMatrixTimesScalarAssign
		case lt.IsMatrix() && rt.IsMatrix():
			if lt.MatrixCols != rt.MatrixCols || lt.MatrixCols != rt.MatrixRows {
				return false
			}
			node.Op = OpMatrixTimesMatrixAssign
		case lt.IsVector() && rt.IsVector():
			// component-wise product
		default:
			if !lt.IsVector() {
				return false
			}
			node.Op = OpVectorTimesScalarAssign
		}

	case OpRightShift, OpLeftShift, OpRightShiftAssign, OpLeftShiftAssign:
		if rt.IsVector() && (!lt.IsVector() || rt.VectorSize != lt.VectorSize) {
			return false
		}

	case OpAssign:
		if lt.VectorSize != rt.VectorSize || lt.MatrixCols != rt.MatrixCols || lt.MatrixRows != rt.MatrixRows {
			return false
		}
		fallthrough

	case OpAdd, OpSub, OpDiv, OpMod, OpAnd, OpInclusiveOr, OpExclusiveOr,
		OpAddAssign, OpSubAssign, OpDivAssign, OpModAssign,
		OpAndAssign, OpInclusiveOrAssign, OpExclusiveOrAssign:
		if (lt.IsMatrix() && rt.IsVector()) || (lt.IsVector() && rt.IsMatrix()) || lt.Basic != rt.Basic {
			return false
		}
		if lt.IsMatrix() && rt.IsMatrix() && (lt.MatrixCols != rt.MatrixCols || lt.MatrixRows != rt.MatrixRows) {
			return false
		}
		if lt.IsVector() && rt.IsVector() && lt.VectorSize != rt.VectorSize {
			return false
		}
		if rt.IsVector() || rt.IsMatrix() {
			setType(rt)
		}

	default:
		return false
	}

	// The result of an assignment has the type of its left operand.
	if node.Op.IsAssignment() {
		res := node.Type()
		if res.Basic != lt.Basic || res.VectorSize != lt.VectorSize ||
			res.MatrixCols != lt.MatrixCols || res.MatrixRows != lt.MatrixRows {
			return false
		}
	}
	return true
}

// promoteAggregate converts the arguments of an HLSL intrinsic to one
// common argument type. GLSL calls are left alone.
func (in *Intermediate) promoteAggregate(node *Aggregate) bool {
	if in.source != SourceHLSL {
		return true
	}
	switch node.Op {
	case OpAtan, OpClamp, OpCross, OpDistance, OpDot, OpFaceForward, OpFma, OpMod,
		OpMix, OpMax, OpMin, OpPow, OpReflect, OpRefract, OpSmoothStep, OpStep:
	default:
		return true
	}

	args := make([]Typed, len(node.Seq))
	for i, n := range node.Seq {
		t, ok := n.(Typed)
		if !ok {
			return false
		}
		args[i] = t
	}

	converted := make([]Node, len(args))
	for _, target := range args {
		ok := true
		for i, arg := range args {
			c := in.AddConversion(node.Op, target.Type(), arg)
			if c == nil {
				ok = false
				break
			}
			converted[i] = c
		}
		if ok {
			node.Seq = converted
			return true
		}
	}
	return false
}
