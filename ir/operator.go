package ir

// Operator is the operation performed by a tree node.
type Operator uint16

const (
	OpNull Operator = iota
	OpSequence
	OpLinkerObjects
	OpFunctionCall
	OpFunction
	OpParameters
	OpNegative
	OpLogicalNot
	OpVectorLogicalNot
	OpBitwiseNot
	OpPostIncrement
	OpPostDecrement
	OpPreIncrement
	OpPreDecrement
	OpConvert
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpRightShift
	OpLeftShift
	OpAnd
	OpInclusiveOr
	OpExclusiveOr
	OpEqual
	OpNotEqual
	OpVectorEqual
	OpVectorNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual
	OpComma
	OpVectorTimesScalar
	OpVectorTimesMatrix
	OpMatrixTimesVector
	OpMatrixTimesScalar
	OpMatrixTimesMatrix
	OpLogicalOr
	OpLogicalXor
	OpLogicalAnd
	OpIndexDirect
	OpIndexIndirect
	OpIndexDirectStruct
	OpVectorSwizzle
	OpMethod
	OpRadians
	OpDegrees
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpPow
	OpExp
	OpLog
	OpExp2
	OpLog2
	OpSqrt
	OpInverseSqrt
	OpAbs
	OpSign
	OpFloor
	OpTrunc
	OpRound
	OpCeil
	OpFract
	OpMin
	OpMax
	OpClamp
	OpMix
	OpStep
	OpSmoothStep
	OpLength
	OpDistance
	OpDot
	OpCross
	OpNormalize
	OpReflect
	OpRefract
	OpFaceForward
	OpFma
	OpAny
	OpAll
	OpTranspose
	OpDeterminant
	OpMatrixInverse
	OpOuterProduct
	OpArrayLength
	OpEmitVertex
	OpEndPrimitive
	OpBarrier
	OpMemoryBarrier
	OpKill
	OpReturn
	OpBreak
	OpContinue
	OpCase
	OpDefault
	OpConstructGuardStart
	OpConstructInt
	OpConstructUint
	OpConstructInt64
	OpConstructUint64
	OpConstructInt16
	OpConstructUint16
	OpConstructInt8
	OpConstructUint8
	OpConstructBool
	OpConstructFloat
	OpConstructDouble
	OpConstructFloat16
	OpConstructVec2
	OpConstructVec3
	OpConstructVec4
	OpConstructDVec2
	OpConstructDVec3
	OpConstructDVec4
	OpConstructF16Vec2
	OpConstructF16Vec3
	OpConstructF16Vec4
	OpConstructBVec2
	OpConstructBVec3
	OpConstructBVec4
	OpConstructIVec2
	OpConstructIVec3
	OpConstructIVec4
	OpConstructUVec2
	OpConstructUVec3
	OpConstructUVec4
	OpConstructI64Vec2
	OpConstructI64Vec3
	OpConstructI64Vec4
	OpConstructU64Vec2
	OpConstructU64Vec3
	OpConstructU64Vec4
	OpConstructI16Vec2
	OpConstructI16Vec3
	OpConstructI16Vec4
	OpConstructU16Vec2
	OpConstructU16Vec3
	OpConstructU16Vec4
	OpConstructI8Vec2
	OpConstructI8Vec3
	OpConstructI8Vec4
	OpConstructU8Vec2
	OpConstructU8Vec3
	OpConstructU8Vec4
	OpConstructMat2x2
	OpConstructMat2x3
	OpConstructMat2x4
	OpConstructMat3x2
	OpConstructMat3x3
	OpConstructMat3x4
	OpConstructMat4x2
	OpConstructMat4x3
	OpConstructMat4x4
	OpConstructDMat2x2
	OpConstructDMat2x3
	OpConstructDMat2x4
	OpConstructDMat3x2
	OpConstructDMat3x3
	OpConstructDMat3x4
	OpConstructDMat4x2
	OpConstructDMat4x3
	OpConstructDMat4x4
	OpConstructF16Mat2x2
	OpConstructF16Mat2x3
	OpConstructF16Mat2x4
	OpConstructF16Mat3x2
	OpConstructF16Mat3x3
	OpConstructF16Mat3x4
	OpConstructF16Mat4x2
	OpConstructF16Mat4x3
	OpConstructF16Mat4x4
	OpConstructStruct
	OpConstructTextureSampler
	OpConstructGuardEnd
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpVectorTimesMatrixAssign
	OpVectorTimesScalarAssign
	OpMatrixTimesScalarAssign
	OpMatrixTimesMatrixAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpInclusiveOrAssign
	OpExclusiveOrAssign
	OpLeftShiftAssign
	OpRightShiftAssign
)

var operatorNames = map[Operator]string{
	OpNull:                    "null",
	OpSequence:                "Sequence",
	OpLinkerObjects:           "Linker Objects",
	OpFunctionCall:            "Function Call",
	OpFunction:                "Function Definition",
	OpParameters:              "Function Parameters",
	OpNegative:                "Negate value",
	OpLogicalNot:              "Negate conditional",
	OpVectorLogicalNot:        "Negate conditionals",
	OpBitwiseNot:              "Bitwise not",
	OpPostIncrement:           "Post-Increment",
	OpPostDecrement:           "Post-Decrement",
	OpPreIncrement:            "Pre-Increment",
	OpPreDecrement:            "Pre-Decrement",
	OpConvert:                 "Convert",
	OpAdd:                     "add",
	OpSub:                     "subtract",
	OpMul:                     "component-wise multiply",
	OpDiv:                     "divide",
	OpMod:                     "mod",
	OpRightShift:              "right-shift",
	OpLeftShift:               "left-shift",
	OpAnd:                     "bitwise and",
	OpInclusiveOr:             "inclusive-or",
	OpExclusiveOr:             "exclusive-or",
	OpEqual:                   "Compare Equal",
	OpNotEqual:                "Compare Not Equal",
	OpVectorEqual:             "Equal",
	OpVectorNotEqual:          "NotEqual",
	OpLessThan:                "Compare Less Than",
	OpGreaterThan:             "Compare Greater Than",
	OpLessThanEqual:           "Compare Less Than or Equal",
	OpGreaterThanEqual:        "Compare Greater Than or Equal",
	OpComma:                   "Comma",
	OpVectorTimesScalar:       "vector-scale",
	OpVectorTimesMatrix:       "vector-times-matrix",
	OpMatrixTimesVector:       "matrix-times-vector",
	OpMatrixTimesScalar:       "matrix-scale",
	OpMatrixTimesMatrix:       "matrix-multiply",
	OpLogicalOr:               "logical-or",
	OpLogicalXor:              "logical-xor",
	OpLogicalAnd:              "logical-and",
	OpIndexDirect:             "direct index",
	OpIndexIndirect:           "indirect index",
	OpIndexDirectStruct:       "direct index for structure",
	OpVectorSwizzle:           "vector swizzle",
	OpMethod:                  "method",
	OpRadians:                 "radians",
	OpDegrees:                 "degrees",
	OpSin:                     "sine",
	OpCos:                     "cosine",
	OpTan:                     "tangent",
	OpAsin:                    "arc sine",
	OpAcos:                    "arc cosine",
	OpAtan:                    "arc tangent",
	OpPow:                     "pow",
	OpExp:                     "exp",
	OpLog:                     "log",
	OpExp2:                    "exp2",
	OpLog2:                    "log2",
	OpSqrt:                    "sqrt",
	OpInverseSqrt:             "inverse sqrt",
	OpAbs:                     "Absolute value",
	OpSign:                    "Sign",
	OpFloor:                   "Floor",
	OpTrunc:                   "trunc",
	OpRound:                   "round",
	OpCeil:                    "Ceiling",
	OpFract:                   "Fraction",
	OpMin:                     "min",
	OpMax:                     "max",
	OpClamp:                   "clamp",
	OpMix:                     "mix",
	OpStep:                    "step",
	OpSmoothStep:              "smoothstep",
	OpLength:                  "length",
	OpDistance:                "distance",
	OpDot:                     "dot-product",
	OpCross:                   "cross-product",
	OpNormalize:               "normalize",
	OpReflect:                 "reflect",
	OpRefract:                 "refract",
	OpFaceForward:             "face-forward",
	OpFma:                     "fma",
	OpAny:                     "any",
	OpAll:                     "all",
	OpTranspose:               "transpose",
	OpDeterminant:             "determinant",
	OpMatrixInverse:           "inverse",
	OpOuterProduct:            "outer product",
	OpArrayLength:             "array length",
	OpEmitVertex:              "EmitVertex",
	OpEndPrimitive:            "EndPrimitive",
	OpBarrier:                 "Barrier",
	OpMemoryBarrier:           "MemoryBarrier",
	OpKill:                    "Branch: Kill",
	OpReturn:                  "Branch: Return",
	OpBreak:                   "Branch: Break",
	OpContinue:                "Branch: Continue",
	OpCase:                    "case",
	OpDefault:                 "default",
	OpConstructInt:            "Construct int",
	OpConstructUint:           "Construct uint",
	OpConstructInt64:          "Construct int64_t",
	OpConstructUint64:         "Construct uint64_t",
	OpConstructInt16:          "Construct int16_t",
	OpConstructUint16:         "Construct uint16_t",
	OpConstructInt8:           "Construct int8_t",
	OpConstructUint8:          "Construct uint8_t",
	OpConstructBool:           "Construct bool",
	OpConstructFloat:          "Construct float",
	OpConstructDouble:         "Construct double",
	OpConstructFloat16:        "Construct float16_t",
	OpConstructVec2:           "Construct vec2",
	OpConstructVec3:           "Construct vec3",
	OpConstructVec4:           "Construct vec4",
	OpConstructDVec2:          "Construct dvec2",
	OpConstructDVec3:          "Construct dvec3",
	OpConstructDVec4:          "Construct dvec4",
	OpConstructF16Vec2:        "Construct f16vec2",
	OpConstructF16Vec3:        "Construct f16vec3",
	OpConstructF16Vec4:        "Construct f16vec4",
	OpConstructBVec2:          "Construct bvec2",
	OpConstructBVec3:          "Construct bvec3",
	OpConstructBVec4:          "Construct bvec4",
	OpConstructIVec2:          "Construct ivec2",
	OpConstructIVec3:          "Construct ivec3",
	OpConstructIVec4:          "Construct ivec4",
	OpConstructUVec2:          "Construct uvec2",
	OpConstructUVec3:          "Construct uvec3",
	OpConstructUVec4:          "Construct uvec4",
	OpConstructI64Vec2:        "Construct i64vec2",
	OpConstructI64Vec3:        "Construct i64vec3",
	OpConstructI64Vec4:        "Construct i64vec4",
	OpConstructU64Vec2:        "Construct u64vec2",
	OpConstructU64Vec3:        "Construct u64vec3",
	OpConstructU64Vec4:        "Construct u64vec4",
	OpConstructI16Vec2:        "Construct i16vec2",
	OpConstructI16Vec3:        "Construct i16vec3",
	OpConstructI16Vec4:        "Construct i16vec4",
	OpConstructU16Vec2:        "Construct u16vec2",
	OpConstructU16Vec3:        "Construct u16vec3",
	OpConstructU16Vec4:        "Construct u16vec4",
	OpConstructI8Vec2:         "Construct i8vec2",
	OpConstructI8Vec3:         "Construct i8vec3",
	OpConstructI8Vec4:         "Construct i8vec4",
	OpConstructU8Vec2:         "Construct u8vec2",
	OpConstructU8Vec3:         "Construct u8vec3",
	OpConstructU8Vec4:         "Construct u8vec4",
	OpConstructMat2x2:         "Construct mat2x2",
	OpConstructMat2x3:         "Construct mat2x3",
	OpConstructMat2x4:         "Construct mat2x4",
	OpConstructMat3x2:         "Construct mat3x2",
	OpConstructMat3x3:         "Construct mat3x3",
	OpConstructMat3x4:         "Construct mat3x4",
	OpConstructMat4x2:         "Construct mat4x2",
	OpConstructMat4x3:         "Construct mat4x3",
	OpConstructMat4x4:         "Construct mat4x4",
	OpConstructDMat2x2:        "Construct dmat2x2",
	OpConstructDMat2x3:        "Construct dmat2x3",
	OpConstructDMat2x4:        "Construct dmat2x4",
	OpConstructDMat3x2:        "Construct dmat3x2",
	OpConstructDMat3x3:        "Construct dmat3x3",
	OpConstructDMat3x4:        "Construct dmat3x4",
	OpConstructDMat4x2:        "Construct dmat4x2",
	OpConstructDMat4x3:        "Construct dmat4x3",
	OpConstructDMat4x4:        "Construct dmat4x4",
	OpConstructF16Mat2x2:      "Construct f16mat2x2",
	OpConstructF16Mat2x3:      "Construct f16mat2x3",
	OpConstructF16Mat2x4:      "Construct f16mat2x4",
	OpConstructF16Mat3x2:      "Construct f16mat3x2",
	OpConstructF16Mat3x3:      "Construct f16mat3x3",
	OpConstructF16Mat3x4:      "Construct f16mat3x4",
	OpConstructF16Mat4x2:      "Construct f16mat4x2",
	OpConstructF16Mat4x3:      "Construct f16mat4x3",
	OpConstructF16Mat4x4:      "Construct f16mat4x4",
	OpConstructStruct:         "Construct structure",
	OpConstructTextureSampler: "Construct combined texture-sampler",
	OpAssign:                  "move second child to first child",
	OpAddAssign:               "add second child into first child",
	OpSubAssign:               "subtract second child into first child",
	OpMulAssign:               "multiply second child into first child",
	OpVectorTimesMatrixAssign: "matrix mult second child into first child",
	OpVectorTimesScalarAssign: "vector scale second child into first child",
	OpMatrixTimesScalarAssign: "matrix scale second child into first child",
	OpMatrixTimesMatrixAssign: "matrix mult second child into first child",
	OpDivAssign:               "divide second child into first child",
	OpModAssign:               "mod second child into first child",
	OpAndAssign:               "and second child into first child",
	OpInclusiveOrAssign:       "or second child into first child",
	OpExclusiveOrAssign:       "exclusive or second child into first child",
	OpLeftShiftAssign:         "left shift second child into first child",
	OpRightShiftAssign:        "right shift second child into first child",
}

func (op Operator) String() string {
	if s, ok := operatorNames[op]; ok {
		return s
	}
	return "unknown operator"
}

// IsConstructor reports a type-constructor operator.
func (op Operator) IsConstructor() bool {
	return op > OpConstructGuardStart && op < OpConstructGuardEnd
}

// IsAssignment reports an operator that writes its left operand.
func (op Operator) IsAssignment() bool {
	return op >= OpAssign && op <= OpRightShiftAssign
}

// IsIncDec reports the increment and decrement operators.
func (op Operator) IsIncDec() bool {
	return op >= OpPostIncrement && op <= OpPreDecrement
}

// IsComparison reports the relational and equality operators.
func (op Operator) IsComparison() bool {
	return op >= OpEqual && op <= OpGreaterThanEqual
}

type constructorOps struct {
	scalar Operator
	vec2   Operator
	mat2x2 Operator // zero when the type has no matrices
}

var constructorTable = map[BasicType]constructorOps{
	BasicInt:     {OpConstructInt, OpConstructIVec2, 0},
	BasicUint:    {OpConstructUint, OpConstructUVec2, 0},
	BasicInt64:   {OpConstructInt64, OpConstructI64Vec2, 0},
	BasicUint64:  {OpConstructUint64, OpConstructU64Vec2, 0},
	BasicInt16:   {OpConstructInt16, OpConstructI16Vec2, 0},
	BasicUint16:  {OpConstructUint16, OpConstructU16Vec2, 0},
	BasicInt8:    {OpConstructInt8, OpConstructI8Vec2, 0},
	BasicUint8:   {OpConstructUint8, OpConstructU8Vec2, 0},
	BasicBool:    {OpConstructBool, OpConstructBVec2, 0},
	BasicFloat:   {OpConstructFloat, OpConstructVec2, OpConstructMat2x2},
	BasicDouble:  {OpConstructDouble, OpConstructDVec2, OpConstructDMat2x2},
	BasicFloat16: {OpConstructFloat16, OpConstructF16Vec2, OpConstructF16Mat2x2},
}

// MapTypeToConstructorOp returns the constructor operator building t, or
// OpNull when t cannot be constructed. Arrays and structs use
// OpConstructStruct.
func MapTypeToConstructorOp(t *Type) Operator {
	if t.IsStruct() || t.IsArray() {
		if t.Basic == BasicBlock {
			return OpNull
		}
		return OpConstructStruct
	}
	if t.Basic == BasicSampler {
		return OpConstructTextureSampler
	}
	ops, ok := constructorTable[t.Basic]
	if !ok {
		return OpNull
	}
	switch {
	case t.IsMatrix():
		if ops.mat2x2 == 0 || t.MatrixCols < 2 || t.MatrixCols > 4 || t.MatrixRows < 2 || t.MatrixRows > 4 {
			return OpNull
		}
		return ops.mat2x2 + Operator((t.MatrixCols-2)*3+(t.MatrixRows-2))
	case t.IsVector():
		if t.VectorSize > 4 {
			return OpNull
		}
		return ops.vec2 + Operator(t.VectorSize-2)
	}
	return ops.scalar
}
