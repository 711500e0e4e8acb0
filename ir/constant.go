package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Const is a single scalar constant. Signed integers live in i, unsigned
// in u, floating kinds in f; each is kept wrapped to the width of Kind.
type Const struct {
	Kind BasicType
	i    int64
	u    uint64
	f    float64
	b    bool
	s    string
}

func ConstInt(v int32) Const     { return Const{Kind: BasicInt, i: int64(v)} }
func ConstUint(v uint32) Const   { return Const{Kind: BasicUint, u: uint64(v)} }
func ConstInt64(v int64) Const   { return Const{Kind: BasicInt64, i: v} }
func ConstUint64(v uint64) Const { return Const{Kind: BasicUint64, u: v} }
func ConstInt16(v int16) Const   { return Const{Kind: BasicInt16, i: int64(v)} }
func ConstUint16(v uint16) Const { return Const{Kind: BasicUint16, u: uint64(v)} }
func ConstInt8(v int8) Const     { return Const{Kind: BasicInt8, i: int64(v)} }
func ConstUint8(v uint8) Const   { return Const{Kind: BasicUint8, u: uint64(v)} }
func ConstBool(v bool) Const     { return Const{Kind: BasicBool, b: v} }
func ConstFloat(v float64) Const { return Const{Kind: BasicFloat, f: v} }
func ConstDouble(v float64) Const {
	return Const{Kind: BasicDouble, f: v}
}
func ConstFloat16(v float64) Const { return Const{Kind: BasicFloat16, f: v} }
func ConstString(v string) Const   { return Const{Kind: BasicString, s: v} }

// Int returns the value as a signed 64-bit integer.
func (c Const) Int() int64 {
	switch {
	case c.Kind.IsUnsigned():
		return int64(c.u)
	case c.Kind.IsFloat():
		return int64(c.f)
	case c.Kind == BasicBool:
		if c.b {
			return 1
		}
		return 0
	}
	return c.i
}

// Uint returns the value as an unsigned 64-bit integer.
func (c Const) Uint() uint64 {
	switch {
	case c.Kind.IsUnsigned():
		return c.u
	case c.Kind.IsFloat():
		return uint64(c.f)
	case c.Kind == BasicBool:
		if c.b {
			return 1
		}
		return 0
	}
	return uint64(c.i)
}

// Float returns the value as a float64.
func (c Const) Float() float64 {
	switch {
	case c.Kind.IsFloat():
		return c.f
	case c.Kind.IsUnsigned():
		return float64(c.u)
	case c.Kind == BasicBool:
		if c.b {
			return 1
		}
		return 0
	}
	return float64(c.i)
}

// Bool returns the value as a bool; numbers are true when non-zero.
func (c Const) Bool() bool {
	switch {
	case c.Kind == BasicBool:
		return c.b
	case c.Kind.IsFloat():
		return c.f != 0
	case c.Kind.IsUnsigned():
		return c.u != 0
	}
	return c.i != 0
}

// Str returns the value of a string constant.
func (c Const) Str() string { return c.s }

// Convert returns c converted to kind with the usual numeric conversions.
func (c Const) Convert(kind BasicType) Const {
	if c.Kind == kind {
		return c
	}
	switch {
	case kind == BasicBool:
		return ConstBool(c.Bool())
	case kind.IsFloat():
		return Const{Kind: kind, f: c.Float()}
	case kind.IsUnsigned():
		var u uint64
		if c.Kind.IsFloat() && c.f < 0 {
			u = uint64(int64(c.f))
		} else {
			u = c.Uint()
		}
		return Const{Kind: kind, u: u}.wrap()
	case kind.IsInteger():
		return Const{Kind: kind, i: c.Int()}.wrap()
	}
	return c
}

// wrap truncates the payload to the width of Kind.
func (c Const) wrap() Const {
	switch c.Kind {
	case BasicInt:
		c.i = int64(int32(c.i))
	case BasicInt16:
		c.i = int64(int16(c.i))
	case BasicInt8:
		c.i = int64(int8(c.i))
	case BasicUint:
		c.u = uint64(uint32(c.u))
	case BasicUint16:
		c.u = uint64(uint16(c.u))
	case BasicUint8:
		c.u = uint64(uint8(c.u))
	}
	return c
}

// Equal reports equal kind and value.
func (c Const) Equal(o Const) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch {
	case c.Kind == BasicBool:
		return c.b == o.b
	case c.Kind == BasicString:
		return c.s == o.s
	case c.Kind.IsFloat():
		return c.f == o.f
	case c.Kind.IsUnsigned():
		return c.u == o.u
	}
	return c.i == o.i
}

// Less orders two constants of the same numeric kind.
func (c Const) Less(o Const) bool {
	switch {
	case c.Kind.IsFloat():
		return c.f < o.f
	case c.Kind.IsUnsigned():
		return c.u < o.u
	}
	return c.i < o.i
}

func (c Const) String() string {
	switch {
	case c.Kind == BasicBool:
		return strconv.FormatBool(c.b)
	case c.Kind == BasicString:
		return strconv.Quote(c.s)
	case c.Kind.IsFloat():
		if math.IsInf(c.f, 0) || math.IsNaN(c.f) {
			return fmt.Sprint(c.f)
		}
		return strconv.FormatFloat(c.f, 'f', 6, 64)
	case c.Kind.IsUnsigned():
		return strconv.FormatUint(c.u, 10)
	}
	return strconv.FormatInt(c.i, 10)
}

// ConstArray is the flattened component list of a constant value.
type ConstArray []Const

// Equal compares length and every component.
func (a ConstArray) Equal(b ConstArray) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (a ConstArray) Clone() ConstArray {
	return append(ConstArray(nil), a...)
}

// Slice returns size components starting at start.
func (a ConstArray) Slice(start, size int) ConstArray {
	return a[start : start+size].Clone()
}
