package ir

// Node is any node of the intermediate tree.
type Node interface {
	Loc() SourceLoc
	SetLoc(SourceLoc)
}

// Typed is a node that produces a value of some type.
type Typed interface {
	Node
	Type() *Type
	SetType(*Type)
}

type nodeBase struct {
	loc SourceLoc
}

func (n *nodeBase) Loc() SourceLoc       { return n.loc }
func (n *nodeBase) SetLoc(loc SourceLoc) { n.loc = loc }

type typedBase struct {
	nodeBase
	typ *Type
}

func (n *typedBase) Type() *Type { return n.typ }

// SetType stores a private copy of t.
func (n *typedBase) SetType(t *Type) { n.typ = t.Clone() }

// Symbol is a reference to a declared variable.
type Symbol struct {
	typedBase
	ID   int64
	Name string

	// ConstArray holds the value of a front-end constant.
	ConstArray ConstArray

	// ConstSubtree holds the initializer of a specialization constant.
	ConstSubtree Typed
}

// ConstantUnion is a folded constant value.
type ConstantUnion struct {
	typedBase
	Value ConstArray

	// Literal is set for constants written directly in source.
	Literal bool
}

// Unary applies Op to a single operand.
type Unary struct {
	typedBase
	Op      Operator
	Operand Typed
}

// Binary applies Op to two operands.
type Binary struct {
	typedBase
	Op    Operator
	Left  Typed
	Right Typed
}

// Aggregate is an n-ary node: sequences, function definitions and calls,
// constructors and built-in calls.
type Aggregate struct {
	typedBase
	Op  Operator
	Seq []Node

	// Name is the mangled function name for definitions and calls.
	Name        string
	UserDefined bool
}

// Selection is an if statement, or a ?: expression when its type is not
// void.
type Selection struct {
	typedBase
	Cond         Typed
	TrueBlock    Node
	FalseBlock   Node
	ShortCircuit bool
}

// Switch is a switch statement; Body holds case labels and statements.
type Switch struct {
	nodeBase
	Cond Typed
	Body *Aggregate
}

// Loop covers for, while and do-while loops.
type Loop struct {
	nodeBase
	Body      Node
	Test      Typed
	Terminal  Typed
	TestFirst bool
}

// Branch is return, break, continue, discard or a case label.
type Branch struct {
	nodeBase
	Op   Operator
	Expr Typed
}

// Method is an unresolved object.method reference.
type Method struct {
	typedBase
	Object Typed
	Method string
}

// NewSymbol returns a symbol node of type t.
func NewSymbol(id int64, name string, t *Type, loc SourceLoc) *Symbol {
	s := &Symbol{ID: id, Name: name}
	s.SetType(t)
	s.SetLoc(loc)
	return s
}

// NewConstantUnion returns a constant node of type t holding value.
func NewConstantUnion(value ConstArray, t *Type, loc SourceLoc) *ConstantUnion {
	c := &ConstantUnion{Value: value}
	c.SetType(t)
	c.typ.Qualifier.Storage = StorageConst
	c.SetLoc(loc)
	return c
}

// NewAggregate returns an empty aggregate with a void type.
func NewAggregate(op Operator) *Aggregate {
	a := &Aggregate{Op: op}
	a.typ = NewScalar(BasicVoid, StorageTemporary)
	return a
}

// QualifierOf returns the qualifier of a typed node.
func QualifierOf(n Typed) *Qualifier { return &n.Type().Qualifier }

// BasicOf returns the basic type of a typed node.
func BasicOf(n Typed) BasicType { return n.Type().Basic }

// AsConstant returns n as a constant node, or nil.
func AsConstant(n Node) *ConstantUnion {
	c, _ := n.(*ConstantUnion)
	return c
}

// AsAggregate returns n as an aggregate, or nil.
func AsAggregate(n Node) *Aggregate {
	a, _ := n.(*Aggregate)
	return a
}

// AsSymbol returns n as a symbol, or nil.
func AsSymbol(n Node) *Symbol {
	s, _ := n.(*Symbol)
	return s
}
