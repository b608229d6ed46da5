// types.go
//
// The type universe is a closed tagged variant (spec.md §3.1): primitives,
// fixed/dynamic arrays, maps, structs, and references. Unlike a duck-typed
// engine, equality here is structural-by-construction: two Type values
// describe the same type iff Equal reports true.
package noxy

import "fmt"

type TypeTag int

const (
	TInt TypeTag = iota
	TFloat
	TString
	TBool
	TVoid
	TFixedArray
	TDynamicArray
	TMap
	TStruct
	TRef
	TNull // bottom type of the `null` literal; never a declared type
)

// Type is the universal type carrier. Only the fields relevant to Tag are
// populated; see constructors below.
type Type struct {
	Tag    TypeTag
	Elem   *Type  // FixedArray/DynamicArray/Ref element type
	N      int64  // FixedArray length
	Key    *Type  // Map key type
	Value  *Type  // Map value type
	Struct string // Struct name
}

func Int() Type    { return Type{Tag: TInt} }
func Float() Type  { return Type{Tag: TFloat} }
func Str() Type    { return Type{Tag: TString} }
func Bool() Type   { return Type{Tag: TBool} }
func Void() Type   { return Type{Tag: TVoid} }
func NullT() Type  { return Type{Tag: TNull} }

func FixedArray(elem Type, n int64) Type {
	return Type{Tag: TFixedArray, Elem: &elem, N: n}
}
func DynamicArray(elem Type) Type {
	return Type{Tag: TDynamicArray, Elem: &elem}
}
func MapType(key, value Type) Type {
	return Type{Tag: TMap, Key: &key, Value: &value}
}
func StructType(name string) Type {
	return Type{Tag: TStruct, Struct: name}
}
func RefType(inner Type) Type {
	return Type{Tag: TRef, Elem: &inner}
}

func (t Type) IsRef() bool    { return t.Tag == TRef }
func (t Type) IsStruct() bool { return t.Tag == TStruct }
func (t Type) IsNumeric() bool {
	return t.Tag == TInt || t.Tag == TFloat
}

// Equal reports structural type equality (spec.md §3.1).
func (t Type) Equal(u Type) bool {
	if t.Tag != u.Tag {
		return false
	}
	switch t.Tag {
	case TFixedArray:
		return t.N == u.N && t.Elem.Equal(*u.Elem)
	case TDynamicArray, TRef:
		return t.Elem.Equal(*u.Elem)
	case TMap:
		return t.Key.Equal(*u.Key) && t.Value.Equal(*u.Value)
	case TStruct:
		return t.Struct == u.Struct
	default:
		return true
	}
}

// AssignableTo implements spec.md §3.1's assignment compatibility: T == U,
// or T is the null bottom type and U is a Ref(_).
func (t Type) AssignableTo(u Type) bool {
	if t.Tag == TNull && u.Tag == TRef {
		return true
	}
	return t.Equal(u)
}

// IsHashableKey reports whether t may be a Map key type (spec.md §3.1).
func IsHashableKey(t Type) bool {
	return t.Tag == TInt || t.Tag == TString || t.Tag == TBool
}

func (t Type) String() string {
	switch t.Tag {
	case TInt:
		return "Int"
	case TFloat:
		return "Float"
	case TString:
		return "String"
	case TBool:
		return "Bool"
	case TVoid:
		return "Void"
	case TNull:
		return "null"
	case TFixedArray:
		return fmt.Sprintf("%s[%d]", t.Elem, t.N)
	case TDynamicArray:
		return fmt.Sprintf("%s[]", t.Elem)
	case TMap:
		return fmt.Sprintf("map[%s, %s]", t.Key, t.Value)
	case TStruct:
		return t.Struct
	case TRef:
		return fmt.Sprintf("ref %s", t.Elem)
	default:
		return "?"
	}
}
