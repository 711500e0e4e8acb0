package ir

import (
	"math"
)

// arith applies a component-wise arithmetic operator to two constants of
// the same kind.
func arith(op Operator, l, r Const) (Const, bool) {
	k := l.Kind
	switch {
	case k.IsFloat():
		switch op {
		case OpAdd:
			return Const{Kind: k, f: l.f + r.f}, true
		case OpSub:
			return Const{Kind: k, f: l.f - r.f}, true
		case OpMul, OpVectorTimesScalar, OpMatrixTimesScalar:
			return Const{Kind: k, f: l.f * r.f}, true
		case OpDiv:
			return Const{Kind: k, f: floatDiv(l.f, r.f)}, true
		}
		return Const{}, false

	case k == BasicBool:
		switch op {
		case OpLogicalAnd:
			return ConstBool(l.b && r.b), true
		case OpLogicalOr:
			return ConstBool(l.b || r.b), true
		case OpLogicalXor:
			return ConstBool(l.b != r.b), true
		}
		return Const{}, false

	case k.IsUnsigned():
		a, b := l.u, r.Uint()
		var v uint64
		switch op {
		case OpAdd:
			v = a + b
		case OpSub:
			v = a - b
		case OpMul, OpVectorTimesScalar, OpMatrixTimesScalar:
			v = a * b
		case OpDiv:
			if b == 0 {
				v = math.MaxUint64
			} else {
				v = a / b
			}
		case OpMod:
			if b == 0 {
				return l, true
			}
			v = a % b
		case OpRightShift:
			v = a >> b
		case OpLeftShift:
			v = a << b
		case OpAnd:
			v = a & b
		case OpInclusiveOr:
			v = a | b
		case OpExclusiveOr:
			v = a ^ b
		default:
			return Const{}, false
		}
		return Const{Kind: k, u: v}.wrap(), true

	case k.IsInteger():
		a, b := l.i, r.Int()
		var v int64
		switch op {
		case OpAdd:
			v = a + b
		case OpSub:
			v = a - b
		case OpMul, OpVectorTimesScalar, OpMatrixTimesScalar:
			v = a * b
		case OpDiv:
			switch {
			case b == 0:
				v = signedMax(k)
			case b == -1 && a == signedMin(k):
				v = a
			default:
				v = a / b
			}
		case OpMod:
			switch {
			case b == 0:
				return l, true
			case b == -1 && a == signedMin(k):
				v = 0
			default:
				v = a % b
			}
		case OpRightShift:
			v = a >> uint64(b)
		case OpLeftShift:
			v = a << uint64(b)
		case OpAnd:
			v = a & b
		case OpInclusiveOr:
			v = a | b
		case OpExclusiveOr:
			v = a ^ b
		default:
			return Const{}, false
		}
		return Const{Kind: k, i: v}.wrap(), true
	}
	return Const{}, false
}

// floatDiv divides, producing signed infinity or NaN for a zero divisor.
func floatDiv(a, b float64) float64 {
	switch {
	case b != 0:
		return a / b
	case a > 0:
		return math.Inf(1)
	case a < 0:
		return math.Inf(-1)
	}
	return math.NaN()
}

func signedMax(k BasicType) int64 {
	switch k {
	case BasicInt8:
		return math.MaxInt8
	case BasicInt16:
		return math.MaxInt16
	case BasicInt:
		return math.MaxInt32
	}
	return math.MaxInt64
}

func signedMin(k BasicType) int64 {
	switch k {
	case BasicInt8:
		return math.MinInt8
	case BasicInt16:
		return math.MinInt16
	case BasicInt:
		return math.MinInt32
	}
	return math.MinInt64
}

// FoldBinary folds op applied to two constants. It returns nil when op
// cannot be folded.
func FoldBinary(op Operator, left, right *ConstantUnion) *ConstantUnion {
	lt, rt := left.Type(), right.Type()
	returnType := lt.Clone()
	l, r := left.Value, right.Value

	var n int
	switch op {
	case OpMatrixTimesMatrix:
		n = rt.MatrixCols * lt.MatrixRows
	case OpMatrixTimesVector:
		n = lt.MatrixRows
	case OpVectorTimesMatrix:
		n = rt.MatrixCols
	default:
		n = lt.ComputeNumComponents()
		rn := rt.ComputeNumComponents()
		switch {
		case rn == 1 && n > 1:
			r = smear(r[0], n)
		case rn > 1 && n == 1:
			n = rn
			l = smear(l[0], n)
			returnType = rt.Clone()
		}
	}

	out := make(ConstArray, n)
	switch op {
	case OpAdd, OpSub, OpMul, OpVectorTimesScalar, OpMatrixTimesScalar, OpDiv, OpMod,
		OpRightShift, OpLeftShift, OpAnd, OpInclusiveOr, OpExclusiveOr,
		OpLogicalAnd, OpLogicalOr, OpLogicalXor:
		for i := 0; i < n; i++ {
			v, ok := arith(op, l[i], r[i])
			if !ok {
				return nil
			}
			out[i] = v
		}

	case OpMatrixTimesMatrix:
		rows := lt.MatrixRows
		for row := 0; row < rows; row++ {
			for col := 0; col < rt.MatrixCols; col++ {
				sum := 0.0
				for i := 0; i < rt.MatrixRows; i++ {
					sum += l[i*rows+row].Float() * r[col*rt.MatrixRows+i].Float()
				}
				out[col*rows+row] = Const{Kind: lt.Basic, f: sum}
			}
		}
		returnType = NewMatrix(lt.Basic, rt.MatrixCols, rows, StorageConst)

	case OpMatrixTimesVector:
		for i := 0; i < lt.MatrixRows; i++ {
			sum := 0.0
			for j := 0; j < rt.VectorSize; j++ {
				sum += l[j*lt.MatrixRows+i].Float() * r[j].Float()
			}
			out[i] = Const{Kind: lt.Basic, f: sum}
		}
		returnType = NewVector(lt.Basic, lt.MatrixRows, StorageConst)

	case OpVectorTimesMatrix:
		for i := 0; i < rt.MatrixCols; i++ {
			sum := 0.0
			for j := 0; j < lt.VectorSize; j++ {
				sum += l[j].Float() * r[i*rt.MatrixRows+j].Float()
			}
			out[i] = Const{Kind: lt.Basic, f: sum}
		}
		returnType = NewVector(lt.Basic, rt.MatrixCols, StorageConst)

	// Relational operators compare the first component only.
	case OpLessThan:
		out = ConstArray{ConstBool(l[0].Less(r[0]))}
		returnType = NewScalar(BasicBool, StorageConst)
	case OpGreaterThan:
		out = ConstArray{ConstBool(r[0].Less(l[0]))}
		returnType = NewScalar(BasicBool, StorageConst)
	case OpLessThanEqual:
		out = ConstArray{ConstBool(!r[0].Less(l[0]))}
		returnType = NewScalar(BasicBool, StorageConst)
	case OpGreaterThanEqual:
		out = ConstArray{ConstBool(!l[0].Less(r[0]))}
		returnType = NewScalar(BasicBool, StorageConst)
	case OpEqual:
		out = ConstArray{ConstBool(left.Value.Equal(right.Value))}
		returnType = NewScalar(BasicBool, StorageConst)
	case OpNotEqual:
		out = ConstArray{ConstBool(!left.Value.Equal(right.Value))}
		returnType = NewScalar(BasicBool, StorageConst)

	default:
		return nil
	}

	returnType.Qualifier.Storage = StorageConst
	return NewConstantUnion(out, returnType, left.Loc())
}

func smear(c Const, n int) ConstArray {
	out := make(ConstArray, n)
	for i := range out {
		out[i] = c
	}
	return out
}

var unaryFloatFuncs = map[Operator]func(float64) float64{
	OpRadians:     func(x float64) float64 { return x * math.Pi / 180 },
	OpDegrees:     func(x float64) float64 { return x * 180 / math.Pi },
	OpSin:         math.Sin,
	OpCos:         math.Cos,
	OpTan:         math.Tan,
	OpAsin:        math.Asin,
	OpAcos:        math.Acos,
	OpAtan:        math.Atan,
	OpExp:         math.Exp,
	OpLog:         math.Log,
	OpExp2:        math.Exp2,
	OpLog2:        math.Log2,
	OpSqrt:        math.Sqrt,
	OpInverseSqrt: func(x float64) float64 { return 1 / math.Sqrt(x) },
	OpFloor:       math.Floor,
	OpTrunc:       math.Trunc,
	OpRound:       math.Round,
	OpCeil:        math.Ceil,
	OpFract:       func(x float64) float64 { return x - math.Floor(x) },
}

// FoldUnary folds op applied to a constant, producing a value of
// returnType. It returns nil when op cannot be folded.
func FoldUnary(op Operator, operand *ConstantUnion, returnType *Type) *ConstantUnion {
	in := operand.Value
	n := len(in)
	kind := operand.Type().Basic
	var out ConstArray

	switch op {
	case OpLength, OpNormalize:
		sum := 0.0
		for _, c := range in {
			sum += c.Float() * c.Float()
		}
		length := math.Sqrt(sum)
		if op == OpLength {
			out = ConstArray{Const{Kind: kind, f: length}}
			break
		}
		out = make(ConstArray, n)
		for i, c := range in {
			out[i] = Const{Kind: kind, f: c.Float() / length}
		}

	case OpAny, OpAll:
		result := op == OpAll
		for _, c := range in {
			if op == OpAny && c.Bool() {
				result = true
			}
			if op == OpAll && !c.Bool() {
				result = false
			}
		}
		out = ConstArray{ConstBool(result)}

	default:
		out = make(ConstArray, n)
		for i, c := range in {
			v, ok := foldComponent(op, c, returnType.Basic)
			if !ok {
				return nil
			}
			out[i] = v
		}
	}

	t := returnType.Clone()
	t.Qualifier.Storage = StorageConst
	return NewConstantUnion(out, t, operand.Loc())
}

func foldComponent(op Operator, c Const, to BasicType) (Const, bool) {
	k := c.Kind
	switch op {
	case OpConvert:
		return c.Convert(to), true
	case OpNegative:
		switch {
		case k.IsFloat():
			return Const{Kind: k, f: -c.f}, true
		case k.IsUnsigned():
			return Const{Kind: k, u: -c.u}.wrap(), true
		case k.IsInteger():
			return Const{Kind: k, i: -c.i}.wrap(), true
		}
		return Const{}, false
	case OpLogicalNot, OpVectorLogicalNot:
		if k != BasicBool {
			return Const{}, false
		}
		return ConstBool(!c.b), true
	case OpBitwiseNot:
		switch {
		case k.IsUnsigned():
			return Const{Kind: k, u: ^c.u}.wrap(), true
		case k.IsInteger():
			return Const{Kind: k, i: ^c.i}.wrap(), true
		}
		return Const{}, false
	case OpAbs:
		switch {
		case k.IsFloat():
			return Const{Kind: k, f: math.Abs(c.f)}, true
		case k.IsUnsigned():
			return c, true
		case k.IsInteger():
			if c.i < 0 {
				return Const{Kind: k, i: -c.i}.wrap(), true
			}
			return c, true
		}
		return Const{}, false
	case OpSign:
		switch {
		case k.IsFloat():
			switch {
			case c.f > 0:
				return Const{Kind: k, f: 1}, true
			case c.f < 0:
				return Const{Kind: k, f: -1}, true
			}
			return Const{Kind: k, f: 0}, true
		case k.IsUnsigned():
			if c.u > 0 {
				return Const{Kind: k, u: 1}, true
			}
			return Const{Kind: k}, true
		case k.IsInteger():
			switch {
			case c.i > 0:
				return Const{Kind: k, i: 1}, true
			case c.i < 0:
				return Const{Kind: k, i: -1}, true
			}
			return Const{Kind: k}, true
		}
		return Const{}, false
	}

	if f, ok := unaryFloatFuncs[op]; ok && k.IsFloat() {
		return Const{Kind: k, f: f(c.f)}, true
	}
	return Const{}, false
}

// FoldConstructor folds a constructor whose arguments are all constants.
// It returns nil when some argument is not constant.
func (in *Intermediate) FoldConstructor(agg *Aggregate) *ConstantUnion {
	t := agg.Type()
	size := t.ComputeNumComponents()
	out := make(ConstArray, size)
	index := 0

	// Aggregates keep each member's own kind; everything else converts to
	// the constructed basic type.
	convert := !t.IsStruct() && !t.IsArray()
	put := func(i int, c Const) {
		if convert {
			c = c.Convert(t.Basic)
		}
		out[i] = c
	}

	single := len(agg.Seq) == 1
	for _, child := range agg.Seq {
		c := AsConstant(child)
		if c == nil {
			return nil
		}
		ct := c.Type()
		nodeComps := ct.ComputeNumComponents()

		switch {
		case !single:
			// Concatenate the components of every argument.
			for _, v := range c.Value {
				if index >= size {
					break
				}
				put(index, v)
				index++
			}

		case t.IsMatrix() && ct.IsMatrix():
			// Matrix from matrix: copy the overlap, identity elsewhere.
			for col := 0; col < t.MatrixCols; col++ {
				for row := 0; row < t.MatrixRows; row++ {
					target := col*t.MatrixRows + row
					switch {
					case row < ct.MatrixRows && col < ct.MatrixCols:
						put(target, c.Value[col*ct.MatrixRows+row])
					case row == col:
						put(target, ConstDouble(1))
					default:
						put(target, ConstDouble(0))
					}
				}
			}

		case t.IsMatrix() && nodeComps == 1:
			// A lone scalar fills the diagonal.
			for i := 0; i < size; i++ {
				if i%(t.MatrixRows+1) == 0 {
					put(i, c.Value[0])
				} else {
					put(i, ConstDouble(0))
				}
			}

		default:
			for i := 0; i < size; i++ {
				if nodeComps == 1 {
					put(i, c.Value[0])
				} else if i < nodeComps {
					put(i, c.Value[i])
				}
			}
		}
	}

	ct := t.Clone()
	ct.Qualifier.Storage = StorageConst
	return NewConstantUnion(out, ct, agg.Loc())
}

// FoldDereference folds a constant index into a constant array, vector,
// matrix or struct.
func (in *Intermediate) FoldDereference(node *ConstantUnion, index int, loc SourceLoc) *ConstantUnion {
	t := node.Type()
	deref := t.Deref(index, false).Clone()
	deref.Qualifier.Storage = StorageConst
	size := deref.ComputeNumComponents()

	var start int
	if t.IsArray() || !t.IsStruct() {
		start = size * index
	} else {
		for i := 0; i < index; i++ {
			start += t.Members[i].Type.ComputeNumComponents()
		}
	}
	if start+size > len(node.Value) {
		return nil
	}
	return NewConstantUnion(node.Value.Slice(start, size), deref, loc)
}

// FoldSwizzle folds a swizzle of a constant vector.
func (in *Intermediate) FoldSwizzle(node *ConstantUnion, selectors *SwizzleSelectors[int], loc SourceLoc) *ConstantUnion {
	out := make(ConstArray, selectors.Size())
	for i := range out {
		out[i] = node.Value[selectors.At(i)]
	}
	return NewConstantUnion(out, NewVector(BasicOf(node), selectors.Size(), StorageConst), loc)
}

// foldBuiltIn folds a built-in call whose arguments are all constants. It
// returns nil for calls it does not know how to fold.
func foldBuiltIn(agg *Aggregate) *ConstantUnion {
	args := make([]ConstArray, len(agg.Seq))
	argTypes := make([]*Type, len(agg.Seq))
	for i, c := range agg.Seq {
		cu := AsConstant(c)
		args[i] = cu.Value
		argTypes[i] = cu.Type()
	}
	if len(args) == 0 {
		return nil
	}

	kind := agg.Type().Basic
	n := agg.Type().ComputeNumComponents()
	out := make(ConstArray, n)

	// Scalar arguments are smeared across vector ones.
	arg := func(a, comp int) Const {
		if comp >= len(args[a]) {
			comp = len(args[a]) - 1
		}
		return args[a][comp]
	}
	num := func(v float64) Const { return ConstDouble(v).Convert(kind) }

	switch agg.Op {
	case OpDistance, OpDot:
		sum := 0.0
		for i := range args[0] {
			if agg.Op == OpDot {
				sum += args[0][i].Float() * args[1][i].Float()
			} else {
				d := args[1][i].Float() - args[0][i].Float()
				sum += d * d
			}
		}
		if agg.Op == OpDistance {
			sum = math.Sqrt(sum)
		}
		return constResult(agg, ConstArray{Const{Kind: kind, f: sum}})

	case OpCross:
		a, b := args[0], args[1]
		out[0] = Const{Kind: kind, f: a[1].f*b[2].f - a[2].f*b[1].f}
		out[1] = Const{Kind: kind, f: a[2].f*b[0].f - a[0].f*b[2].f}
		out[2] = Const{Kind: kind, f: a[0].f*b[1].f - a[1].f*b[0].f}
		return constResult(agg, out)

	case OpReflect, OpRefract:
		dot := 0.0
		for i := range args[0] {
			dot += args[0][i].Float() * args[1][i].Float()
		}
		if agg.Op == OpReflect {
			for i := range out {
				out[i] = Const{Kind: kind, f: args[0][i].Float() - 2*dot*args[1][i].Float()}
			}
			return constResult(agg, out)
		}
		eta := args[2][0].Float()
		k := 1 - eta*eta*(1-dot*dot)
		for i := range out {
			v := 0.0
			if k >= 0 {
				v = eta*args[0][i].Float() - (eta*dot+math.Sqrt(k))*args[1][i].Float()
			}
			out[i] = Const{Kind: kind, f: v}
		}
		return constResult(agg, out)
	}

	for comp := 0; comp < n; comp++ {
		a0 := arg(0, comp)
		var a1, a2 Const
		if len(args) > 1 {
			a1 = arg(1, comp)
		}
		if len(args) > 2 {
			a2 = arg(2, comp)
		}

		switch agg.Op {
		case OpAtan:
			out[comp] = num(math.Atan2(a0.Float(), a1.Float()))
		case OpPow:
			out[comp] = num(math.Pow(a0.Float(), a1.Float()))
		case OpMin:
			if a1.Less(a0) {
				out[comp] = a1
			} else {
				out[comp] = a0
			}
		case OpMax:
			if a0.Less(a1) {
				out[comp] = a1
			} else {
				out[comp] = a0
			}
		case OpClamp:
			v := a0
			if v.Less(a1) {
				v = a1
			}
			if a2.Less(v) {
				v = a2
			}
			out[comp] = v
		case OpLessThan:
			out[comp] = ConstBool(a0.Less(a1))
		case OpGreaterThan:
			out[comp] = ConstBool(a1.Less(a0))
		case OpLessThanEqual:
			out[comp] = ConstBool(!a1.Less(a0))
		case OpGreaterThanEqual:
			out[comp] = ConstBool(!a0.Less(a1))
		case OpVectorEqual:
			out[comp] = ConstBool(a0.Equal(a1))
		case OpVectorNotEqual:
			out[comp] = ConstBool(!a0.Equal(a1))
		case OpMix:
			if argTypes[2].Basic == BasicBool {
				if a2.Bool() {
					out[comp] = a1
				} else {
					out[comp] = a0
				}
			} else {
				out[comp] = num(a0.Float()*(1-a2.Float()) + a1.Float()*a2.Float())
			}
		case OpStep:
			if a1.Float() < a0.Float() {
				out[comp] = num(0)
			} else {
				out[comp] = num(1)
			}
		case OpSmoothStep:
			t := (a2.Float() - a0.Float()) / (a1.Float() - a0.Float())
			t = math.Max(0, math.Min(1, t))
			out[comp] = num(t * t * (3 - 2*t))
		default:
			return nil
		}
	}
	return constResult(agg, out)
}

func constResult(agg *Aggregate, values ConstArray) *ConstantUnion {
	t := agg.Type().Clone()
	t.Qualifier.Storage = StorageConst
	return NewConstantUnion(values, t, agg.Loc())
}
