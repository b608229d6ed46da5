// value.go
//
// Runtime values mirror the type universe (spec.md §3.2). Heap-allocated
// entities — struct instances, dynamic arrays, maps, fixed arrays — are
// represented as a Go pointer to a heap-allocated struct; that pointer IS
// the handle/identity spec.md talks about (no separate arena/id-table is
// needed in a garbage-collected host language — see DESIGN.md). A Ref(T)
// value simply holds that pointer, or nil for `null`.
package noxy

import "fmt"

type ValueKind int

const (
	VInt ValueKind = iota
	VFloat
	VString
	VBool
	VNull
	VFixedArray
	VDynamicArray
	VMap
	VStruct
	VRef
	VVoid
)

// StructInstance is a heap-allocated record. Its address is its identity.
type StructInstance struct {
	TypeName   string
	Fields     map[string]Value
	FieldTypes map[string]Type // declared type per field, for deep-copy
	Order      []string        // declaration order, for to_str rendering
}

// ArrayObject backs both fixed and dynamic arrays. Fixed is set at
// construction and never changes; Elems grows only when !Fixed.
type ArrayObject struct {
	ElemType Type
	Elems    []Value
	Fixed    bool
}

// MapObject backs a Map(K,V) value. Key uniqueness is an invariant;
// insertion order is tracked for deterministic `keys` snapshots even
// though spec.md says iteration order is not observable — a concrete
// order still makes `keys`/`to_str` deterministic run to run.
type MapObject struct {
	KeyType, ValueType Type
	Entries            map[Value]Value
	Order              []Value
}

// Value is the universal runtime carrier.
type Value struct {
	Kind   ValueKind
	I      int64
	F      float64
	S      string
	B      bool
	Arr    *ArrayObject
	MapV   *MapObject
	Struct *StructInstance
}

func VInt64(i int64) Value    { return Value{Kind: VInt, I: i} }
func VFloat64(f float64) Value { return Value{Kind: VFloat, F: f} }
func VStr(s string) Value     { return Value{Kind: VString, S: s} }
func VBoolv(b bool) Value     { return Value{Kind: VBool, B: b} }
func VNullv() Value           { return Value{Kind: VNull} }
func VVoidv() Value           { return Value{Kind: VVoid} }

// HandleEq compares two heap-allocated values by identity (pointer
// equality), matching spec.md's reference-equality rule.
func HandleEq(a, b Value) bool {
	switch a.Kind {
	case VStruct:
		return b.Kind == VStruct && a.Struct == b.Struct
	case VDynamicArray, VFixedArray:
		return (b.Kind == VDynamicArray || b.Kind == VFixedArray) && a.Arr == b.Arr
	case VMap:
		return b.Kind == VMap && a.MapV == b.MapV
	}
	return false
}

// RefEq implements spec.md testable property 7: ref x == ref x is true,
// ref x == null is false for an existing x, and a nulled ref equals null.
func RefEq(a, b Value) bool {
	aNull := a.Kind == VNull || (a.Kind == VStruct && a.Struct == nil)
	bNull := b.Kind == VNull || (b.Kind == VStruct && b.Struct == nil)
	if aNull || bNull {
		return aNull && bNull
	}
	return a.Struct == b.Struct
}

func zeroValueFor(t Type) Value {
	switch t.Tag {
	case TInt:
		return VInt64(0)
	case TFloat:
		return VFloat64(0)
	case TString:
		return VStr("")
	case TBool:
		return VBoolv(false)
	case TRef:
		return Value{Kind: VStruct, Struct: nil}
	case TFixedArray:
		elems := make([]Value, t.N)
		for i := range elems {
			elems[i] = zeroValueFor(*t.Elem)
		}
		return Value{Kind: VFixedArray, Arr: &ArrayObject{ElemType: *t.Elem, Elems: elems, Fixed: true}}
	case TDynamicArray:
		return Value{Kind: VDynamicArray, Arr: &ArrayObject{ElemType: *t.Elem, Fixed: false}}
	case TMap:
		return Value{Kind: VMap, MapV: &MapObject{KeyType: *t.Key, ValueType: *t.Value, Entries: map[Value]Value{}}}
	case TStruct:
		return Value{Kind: VStruct, Struct: nil}
	default:
		return VNullv()
	}
}

// deepCopy implements the single deep-copy rule spec.md §4.4.3/§9 defines
// once and reuses for by-value struct/container parameters: primitives
// copy by value, Ref fields/elements copy the handle (identity), and
// struct/container interiors recurse.
func deepCopy(v Value) Value {
	switch v.Kind {
	case VStruct:
		if v.Struct == nil {
			return v
		}
		fresh := &StructInstance{
			TypeName:   v.Struct.TypeName,
			Fields:     make(map[string]Value, len(v.Struct.Fields)),
			FieldTypes: v.Struct.FieldTypes,
			Order:      append([]string(nil), v.Struct.Order...),
		}
		for _, name := range v.Struct.Order {
			ft := v.Struct.FieldTypes[name]
			fresh.Fields[name] = deepCopyTyped(v.Struct.Fields[name], ft)
		}
		return Value{Kind: VStruct, Struct: fresh}
	case VFixedArray, VDynamicArray:
		elems := make([]Value, len(v.Arr.Elems))
		for i, e := range v.Arr.Elems {
			elems[i] = deepCopyTyped(e, v.Arr.ElemType)
		}
		return Value{Kind: v.Kind, Arr: &ArrayObject{ElemType: v.Arr.ElemType, Elems: elems, Fixed: v.Arr.Fixed}}
	case VMap:
		entries := make(map[Value]Value, len(v.MapV.Entries))
		order := make([]Value, len(v.MapV.Order))
		copy(order, v.MapV.Order)
		for k, val := range v.MapV.Entries {
			entries[k] = deepCopyTyped(val, v.MapV.ValueType)
		}
		return Value{Kind: VMap, MapV: &MapObject{KeyType: v.MapV.KeyType, ValueType: v.MapV.ValueType, Entries: entries, Order: order}}
	default:
		return v
	}
}

// deepCopyTyped deep-copies v according to declared type t: Ref(T) values
// copy by identity; everything else recurses via deepCopy. This is the
// entry point used at call-argument binding time and by struct-field/array-
// element/map-value copy, where the declared type of the slot is known. A
// fixed/dynamic array value copied into a slot of the other array kind is
// reshaped to match the slot (spec.md §4.4.1 — `zeros`/array literals are
// untyped until bound; the declared type at the binding site decides).
func deepCopyTyped(v Value, t Type) Value {
	if t.Tag == TRef {
		return v // copy the handle, not the target
	}
	switch t.Tag {
	case TStruct, TMap:
		return deepCopy(v)
	case TFixedArray:
		cp := deepCopy(v)
		if cp.Arr != nil {
			cp.Kind = VFixedArray
			cp.Arr.Fixed = true
			cp.Arr.ElemType = *t.Elem
		}
		return cp
	case TDynamicArray:
		cp := deepCopy(v)
		if cp.Arr != nil {
			cp.Kind = VDynamicArray
			cp.Arr.Fixed = false
			cp.Arr.ElemType = *t.Elem
		}
		return cp
	default:
		return v
	}
}

func (v Value) String() string {
	return fmt.Sprintf("Value(kind=%d)", v.Kind)
}
