package ir

// This file holds the node constructors used while building the tree. A
// nil result from an Add* method means the operation is not valid for its
// operands; the caller reports the error.

// AddSymbol returns a symbol node for a declared variable.
func (in *Intermediate) AddSymbol(v *Variable, loc SourceLoc) *Symbol {
	s := NewSymbol(v.ID, v.Name, v.Type, loc)
	s.ConstArray = v.Const
	return s
}

// AddAnonymousSymbol returns a nameless symbol node of type t.
func (in *Intermediate) AddAnonymousSymbol(t *Type, loc SourceLoc) *Symbol {
	return NewSymbol(0, "", t, loc)
}

// AddConstantUnion returns a constant node of type t.
func (in *Intermediate) AddConstantUnion(values ConstArray, t *Type, loc SourceLoc, literal bool) *ConstantUnion {
	c := NewConstantUnion(values, t, loc)
	c.Literal = literal
	return c
}

func (in *Intermediate) addScalarConstant(c Const, loc SourceLoc, literal bool) *ConstantUnion {
	return in.AddConstantUnion(ConstArray{c}, NewScalar(c.Kind, StorageConst), loc, literal)
}

func (in *Intermediate) AddIntConstant(v int32, loc SourceLoc, literal bool) *ConstantUnion {
	return in.addScalarConstant(ConstInt(v), loc, literal)
}

func (in *Intermediate) AddUintConstant(v uint32, loc SourceLoc, literal bool) *ConstantUnion {
	return in.addScalarConstant(ConstUint(v), loc, literal)
}

func (in *Intermediate) AddInt64Constant(v int64, loc SourceLoc, literal bool) *ConstantUnion {
	return in.addScalarConstant(ConstInt64(v), loc, literal)
}

func (in *Intermediate) AddUint64Constant(v uint64, loc SourceLoc, literal bool) *ConstantUnion {
	return in.addScalarConstant(ConstUint64(v), loc, literal)
}

func (in *Intermediate) AddBoolConstant(v bool, loc SourceLoc, literal bool) *ConstantUnion {
	return in.addScalarConstant(ConstBool(v), loc, literal)
}

// AddFloatConstant returns a floating constant of the given kind, which
// must be float, double or float16.
func (in *Intermediate) AddFloatConstant(v float64, kind BasicType, loc SourceLoc, literal bool) *ConstantUnion {
	return in.addScalarConstant(Const{Kind: kind, f: v}, loc, literal)
}

func (in *Intermediate) AddStringConstant(v string, loc SourceLoc) *ConstantUnion {
	return in.addScalarConstant(ConstString(v), loc, false)
}

// AreAllChildConst reports whether every child of agg is a constant.
func AreAllChildConst(agg *Aggregate) bool {
	for _, n := range agg.Seq {
		if AsConstant(n) == nil {
			return false
		}
	}
	return true
}

// MakeAggregate wraps node in a fresh OpNull aggregate at node's location.
func (in *Intermediate) MakeAggregate(node Node) *Aggregate {
	if isNilNode(node) {
		return nil
	}
	agg := NewAggregate(OpNull)
	agg.Seq = append(agg.Seq, node)
	agg.SetLoc(node.Loc())
	return agg
}

// GrowAggregate appends right to left. left is reused when it is an
// OpNull aggregate; otherwise a new aggregate holding both is made.
func (in *Intermediate) GrowAggregate(left, right Node, loc SourceLoc) *Aggregate {
	leftNil, rightNil := isNilNode(left), isNilNode(right)
	if leftNil && rightNil {
		return nil
	}
	var agg *Aggregate
	if !leftNil {
		agg = AsAggregate(left)
	}
	if agg == nil || agg.Op != OpNull {
		agg = NewAggregate(OpNull)
		if !leftNil {
			agg.Seq = append(agg.Seq, left)
		}
	}
	if !rightNil {
		agg.Seq = append(agg.Seq, right)
	}
	if loc.Line != 0 {
		agg.SetLoc(loc)
	}
	return agg
}

// SetAggregateOperator turns node into an aggregate with operator op and
// type t, wrapping it first unless it already is an OpNull aggregate. The
// result is folded when every child is constant.
func (in *Intermediate) SetAggregateOperator(node Node, op Operator, t *Type, loc SourceLoc) Typed {
	var agg *Aggregate
	if !isNilNode(node) {
		agg = AsAggregate(node)
		if agg == nil || agg.Op != OpNull {
			agg = NewAggregate(OpNull)
			agg.Seq = append(agg.Seq, node)
			if loc.Line == 0 {
				loc = node.Loc()
			}
		}
	} else {
		agg = NewAggregate(OpNull)
	}

	agg.Op = op
	if loc.Line != 0 {
		agg.SetLoc(loc)
	}
	agg.SetType(t)
	return in.foldAggregate(agg)
}

func (in *Intermediate) foldAggregate(agg *Aggregate) Typed {
	if len(agg.Seq) == 0 || !AreAllChildConst(agg) {
		return agg
	}
	if agg.Op.IsConstructor() && agg.Op != OpConstructTextureSampler {
		if c := in.FoldConstructor(agg); c != nil {
			return c
		}
		return agg
	}
	switch agg.Op {
	case OpAtan, OpPow, OpMin, OpMax, OpMix, OpClamp, OpStep, OpSmoothStep,
		OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual,
		OpVectorEqual, OpVectorNotEqual,
		OpDistance, OpDot, OpCross, OpReflect, OpRefract:
		if c := foldBuiltIn(agg); c != nil {
			return c
		}
	}
	return agg
}

func (in *Intermediate) AddUnaryNode(op Operator, child Typed, loc SourceLoc) *Unary {
	u := &Unary{Op: op, Operand: child}
	u.SetType(NewScalar(BasicVoid, StorageTemporary))
	if loc.Line == 0 {
		loc = child.Loc()
	}
	u.SetLoc(loc)
	return u
}

func (in *Intermediate) AddBinaryNode(op Operator, left, right Typed, loc SourceLoc) *Binary {
	b := &Binary{Op: op, Left: left, Right: right}
	b.SetType(NewScalar(BasicVoid, StorageTemporary))
	if loc.Line == 0 {
		loc = left.Loc()
	}
	b.SetLoc(loc)
	return b
}

// AddBinaryMath builds left op right, converting the operands to a common
// type and folding when both are constant.
func (in *Intermediate) AddBinaryMath(op Operator, left, right Typed, loc SourceLoc) Typed {
	if BasicOf(left) == BasicBlock || BasicOf(right) == BasicBlock {
		return nil
	}

	left, right = in.AddConversions(op, left, right)
	if left == nil || right == nil {
		return nil
	}
	left, right = in.AddBiShapeConversion(op, left, right)
	if left == nil || right == nil {
		return nil
	}

	node := in.AddBinaryNode(op, left, right, loc)
	if !in.promoteBinary(node) {
		return nil
	}
	updateBinaryPrecision(node)

	if lc, rc := AsConstant(node.Left), AsConstant(node.Right); lc != nil && rc != nil {
		if folded := FoldBinary(node.Op, lc, rc); folded != nil {
			return folded
		}
	}

	if specConstantPropagates(node.Left, node.Right) && isSpecializationOperation(node) {
		node.typ.Qualifier.MakeSpecConstant()
	}
	return node
}

// AddAssign builds left op= right. Conversions apply to the right side
// only.
func (in *Intermediate) AddAssign(op Operator, left, right Typed, loc SourceLoc) Typed {
	if BasicOf(left) == BasicBlock || BasicOf(right) == BasicBlock {
		return nil
	}
	right = in.AddConversion(op, left.Type(), right)
	if right == nil {
		return nil
	}
	right = in.AddUniShapeConversion(op, left.Type(), right)

	node := in.AddBinaryNode(op, left, right, loc)
	if !in.promoteBinary(node) {
		return nil
	}
	updateBinaryPrecision(node)
	return node
}

// AddIndex builds an indexing node. The caller sets its type.
func (in *Intermediate) AddIndex(op Operator, base, index Typed, loc SourceLoc) *Binary {
	return in.AddBinaryNode(op, base, index, loc)
}

// AddUnaryMath builds op child. Scalar constructor operators become plain
// conversions.
func (in *Intermediate) AddUnaryMath(op Operator, child Typed, loc SourceLoc) Typed {
	if isNilNode(child) || BasicOf(child) == BasicBlock {
		return nil
	}
	t := child.Type()

	switch op {
	case OpLogicalNot:
		if in.source != SourceHLSL &&
			(t.Basic != BasicBool || t.IsMatrix() || t.IsArray() || t.IsVector()) {
			return nil
		}
	case OpPostIncrement, OpPreIncrement, OpPostDecrement, OpPreDecrement, OpNegative:
		if t.Basic == BasicStruct || t.IsArray() {
			return nil
		}
	}

	if b, ok := scalarConstructorBasic[op]; ok {
		nt := &Type{
			Basic:      b,
			VectorSize: t.VectorSize,
			MatrixCols: t.MatrixCols,
			MatrixRows: t.MatrixRows,
			Qualifier:  NewQualifier(StorageTemporary),
		}
		return in.AddConversion(op, nt, child)
	}

	node := in.AddUnaryNode(op, child, loc)
	if !in.promoteUnary(node) {
		return nil
	}
	node.typ.Qualifier.Precision = QualifierOf(node.Operand).Precision

	if c := AsConstant(node.Operand); c != nil {
		if folded := FoldUnary(op, c, node.Type()); folded != nil {
			return folded
		}
	}
	if QualifierOf(node.Operand).IsSpecConstant() && isSpecializationOperation(node) {
		node.typ.Qualifier.MakeSpecConstant()
	}
	return node
}

var scalarConstructorBasic = map[Operator]BasicType{
	OpConstructInt8:    BasicInt8,
	OpConstructUint8:   BasicUint8,
	OpConstructInt16:   BasicInt16,
	OpConstructUint16:  BasicUint16,
	OpConstructInt:     BasicInt,
	OpConstructUint:    BasicUint,
	OpConstructInt64:   BasicInt64,
	OpConstructUint64:  BasicUint64,
	OpConstructBool:    BasicBool,
	OpConstructFloat:   BasicFloat,
	OpConstructDouble:  BasicDouble,
	OpConstructFloat16: BasicFloat16,
}

// AddBuiltInFunctionCall builds a call to a built-in. Unary built-ins
// become unary nodes; the rest become aggregates.
func (in *Intermediate) AddBuiltInFunctionCall(loc SourceLoc, op Operator, unary bool, child Node, returnType *Type) Typed {
	if unary {
		operand, ok := child.(Typed)
		if !ok || isNilNode(operand) {
			return nil
		}
		if c := AsConstant(operand); c != nil {
			if folded := FoldUnary(op, c, returnType); folded != nil {
				return folded
			}
		}
		u := in.AddUnaryNode(op, operand, operand.Loc())
		u.SetType(returnType)
		return u
	}
	node := in.SetAggregateOperator(child, op, returnType, loc)
	if agg := AsAggregate(node); agg != nil && !in.promoteAggregate(agg) {
		return nil
	}
	return node
}

// AddComma builds the sequence left, right, typed as right.
func (in *Intermediate) AddComma(left, right Typed, loc SourceLoc) Typed {
	agg := in.GrowAggregate(left, right, loc)
	agg.Op = OpComma
	agg.SetType(right.Type())
	agg.typ.Qualifier.MakeTemporary()
	return agg
}

// AddMethod builds an unresolved object.name reference of type t.
func (in *Intermediate) AddMethod(object Typed, t *Type, name string, loc SourceLoc) *Method {
	m := &Method{Object: object, Method: name}
	m.SetType(t)
	m.SetLoc(loc)
	return m
}

// AddSelectionStatement builds an if statement. Constant conditions are
// kept so both branches stay visible to later analysis.
func (in *Intermediate) AddSelectionStatement(cond Typed, trueBlock, falseBlock Node, loc SourceLoc) *Selection {
	s := &Selection{Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock, ShortCircuit: true}
	s.SetType(NewScalar(BasicVoid, StorageTemporary))
	s.SetLoc(loc)
	return s
}

// AddSelection builds cond ? trueBlock : falseBlock. Void operands give
// an if statement, a vector condition gives a component-wise mix, and an
// all-constant selection folds to the chosen operand.
func (in *Intermediate) AddSelection(cond, trueBlock, falseBlock Typed, loc SourceLoc) Typed {
	if BasicOf(trueBlock) == BasicVoid && BasicOf(falseBlock) == BasicVoid {
		s := in.AddSelectionStatement(cond, trueBlock, falseBlock, loc)
		s.ShortCircuit = in.source != SourceHLSL
		return s
	}

	trueBlock, falseBlock = in.AddConversions(OpSequence, trueBlock, falseBlock)
	if trueBlock == nil || falseBlock == nil {
		return nil
	}

	if ct := cond.Type(); !(ct.IsScalarOrVector() && ct.VectorSize == 1) {
		target := NewVector(BasicOf(trueBlock), ct.VectorSize, StorageTemporary)
		if tt := trueBlock.Type(); tt.IsScalarOrVector() && tt.VectorSize == 1 {
			trueBlock = in.addShapeConversion(target, trueBlock)
		}
		if ft := falseBlock.Type(); ft.IsScalarOrVector() && ft.VectorSize == 1 {
			falseBlock = in.addShapeConversion(target, falseBlock)
		}
		mix := NewAggregate(OpMix)
		mix.Seq = []Node{falseBlock, trueBlock, cond}
		mix.SetType(target)
		mix.SetLoc(loc)
		return mix
	}

	trueBlock, falseBlock = in.AddBiShapeConversion(OpMix, trueBlock, falseBlock)
	if !trueBlock.Type().Equal(falseBlock.Type()) {
		return nil
	}

	cc, tc, fc := AsConstant(cond), AsConstant(trueBlock), AsConstant(falseBlock)
	if cc != nil && tc != nil && fc != nil {
		if cc.Value[0].Bool() {
			return trueBlock
		}
		return falseBlock
	}

	s := &Selection{Cond: cond, TrueBlock: trueBlock, FalseBlock: falseBlock, ShortCircuit: in.source != SourceHLSL}
	s.SetType(trueBlock.Type())
	s.typ.Qualifier.MakeTemporary()
	s.SetLoc(loc)
	if QualifierOf(cond).IsSpecConstant() && QualifierOf(trueBlock).IsConstant() && QualifierOf(falseBlock).IsConstant() {
		s.typ.Qualifier.MakeSpecConstant()
	}
	return s
}

// AddSwitch builds a switch statement over body.
func (in *Intermediate) AddSwitch(cond Typed, body *Aggregate, loc SourceLoc) *Switch {
	s := &Switch{Cond: cond, Body: body}
	s.SetLoc(loc)
	return s
}

func (in *Intermediate) AddLoop(body Node, test, terminal Typed, testFirst bool, loc SourceLoc) *Loop {
	l := &Loop{Body: body, Test: test, Terminal: terminal, TestFirst: testFirst}
	l.SetLoc(loc)
	return l
}

// AddForLoop builds a for loop and returns the sequence holding its
// initializer followed by the loop itself.
func (in *Intermediate) AddForLoop(body, init Node, test, terminal Typed, testFirst bool, loc SourceLoc) (*Aggregate, *Loop) {
	loop := in.AddLoop(body, test, terminal, testFirst, loc)

	var seq *Aggregate
	if !isNilNode(init) {
		seq = AsAggregate(init)
	}
	if seq == nil {
		if isNilNode(init) {
			seq = NewAggregate(OpNull)
		} else {
			seq = in.MakeAggregate(init)
		}
		seq.SetLoc(loc)
	}
	if seq.Op == OpSequence {
		seq.Op = OpNull
	}
	seq = in.GrowAggregate(seq, loop, SourceLoc{})
	seq.Op = OpSequence
	return seq, loop
}

// AddBranch builds a jump, optionally carrying a value.
func (in *Intermediate) AddBranch(op Operator, expr Typed, loc SourceLoc) *Branch {
	b := &Branch{Op: op, Expr: expr}
	b.SetLoc(loc)
	return b
}

// MaxSwizzleSelectors bounds the number of components of one swizzle.
const MaxSwizzleSelectors = 4

// MatrixSelector picks one component of a matrix.
type MatrixSelector struct {
	Col, Row int
}

// Selector is a swizzle component: a vector index or a matrix element.
type Selector interface {
	int | MatrixSelector
}

// SwizzleSelectors collects swizzle components. Components pushed beyond
// MaxSwizzleSelectors are dropped.
type SwizzleSelectors[T Selector] struct {
	comps [MaxSwizzleSelectors]T
	size  int
}

func (s *SwizzleSelectors[T]) Push(c T) {
	if s.size < MaxSwizzleSelectors {
		s.comps[s.size] = c
		s.size++
	}
}

func (s *SwizzleSelectors[T]) Size() int { return s.size }
func (s *SwizzleSelectors[T]) At(i int) T { return s.comps[i] }

// AddSwizzle builds the OpSequence of constant selectors that forms the
// right operand of a swizzle node.
func AddSwizzle[T Selector](in *Intermediate, sel *SwizzleSelectors[T], loc SourceLoc) *Aggregate {
	agg := NewAggregate(OpSequence)
	agg.SetLoc(loc)
	for i := 0; i < sel.Size(); i++ {
		switch c := any(sel.At(i)).(type) {
		case int:
			agg.Seq = append(agg.Seq, in.AddIntConstant(int32(c), loc, false))
		case MatrixSelector:
			agg.Seq = append(agg.Seq,
				in.AddIntConstant(int32(c.Col), loc, false),
				in.AddIntConstant(int32(c.Row), loc, false))
		}
	}
	return agg
}

// FindLValueBase follows index and swizzle operations down to the base
// of an l-value. It returns nil when node is not an l-value chain, or,
// with swizzleOkay unset, when the chain selects within a vector.
func FindLValueBase(node Typed, swizzleOkay bool) Typed {
	for {
		b, ok := node.(*Binary)
		if !ok {
			return node
		}
		switch b.Op {
		case OpIndexDirect, OpIndexIndirect, OpIndexDirectStruct, OpVectorSwizzle:
		default:
			return nil
		}
		if !swizzleOkay {
			if b.Op == OpVectorSwizzle {
				return nil
			}
			lt := b.Left.Type()
			if (b.Op == OpIndexDirect || b.Op == OpIndexIndirect) && lt.IsScalarOrVector() {
				return nil
			}
		}
		node = b.Left
	}
}

// specConstantPropagates reports whether one operand is a specialization
// constant and the other some kind of constant.
func specConstantPropagates(a, b Typed) bool {
	qa, qb := QualifierOf(a), QualifierOf(b)
	return (qa.IsSpecConstant() && qb.IsConstant()) || (qb.IsSpecConstant() && qa.IsConstant())
}

// isSpecializationOperation reports whether node may be evaluated on
// specialization constants.
func isSpecializationOperation(node Typed) bool {
	var op Operator
	switch n := node.(type) {
	case *Unary:
		op = n.Op
		if op == OpConvert {
			return isSpecConversion(BasicOf(n.Operand), BasicOf(n))
		}
	case *Binary:
		op = n.Op
	default:
		return false
	}

	if node.Type().IsFloatingDomain() {
		switch op {
		case OpIndexDirect, OpIndexIndirect, OpIndexDirectStruct, OpVectorSwizzle:
			return true
		}
		return false
	}
	if b, ok := node.(*Binary); ok {
		if b.Left.Type().IsFloatingDomain() || b.Right.Type().IsFloatingDomain() {
			return false
		}
	}

	switch op {
	case OpIndexDirect, OpIndexIndirect, OpIndexDirectStruct, OpVectorSwizzle,
		OpNegative, OpLogicalNot, OpBitwiseNot,
		OpAdd, OpSub, OpMul, OpVectorTimesScalar, OpDiv, OpMod, OpRightShift, OpLeftShift,
		OpAnd, OpInclusiveOr, OpExclusiveOr, OpLogicalOr, OpLogicalXor, OpLogicalAnd,
		OpEqual, OpNotEqual, OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual:
		return true
	}
	return false
}

func updateBinaryPrecision(b *Binary) {
	switch BasicOf(b) {
	case BasicInt, BasicUint, BasicFloat, BasicFloat16:
		b.typ.Qualifier.Precision = max(QualifierOf(b.Left).Precision, QualifierOf(b.Right).Precision)
	}
}
