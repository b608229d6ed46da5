// eval_expr.go
//
// Expression evaluation (spec.md §4.4.1); call dispatch and parameter
// binding (§4.4.3) live in eval_call.go. Kept
// separate from statement execution (interpreter.go) the way the teacher
// splits its evaluator across files by concern.
package noxy

import (
	"strconv"
	"strings"
)

func (ip *Interpreter) eval(sc *Scope, e Expr) (Value, error) {
	switch x := e.(type) {
	case *IntLit:
		return VInt64(x.Val), nil
	case *FloatLit:
		return VFloat64(x.Val), nil
	case *StringLit:
		return VStr(x.Val), nil
	case *BoolLit:
		return VBoolv(x.Val), nil
	case *NullLit:
		return Value{Kind: VStruct, Struct: nil}, nil
	case *FStringExpr:
		return ip.evalFString(sc, x)
	case *Ident:
		b, ok := sc.Lookup(x.Name)
		if !ok {
			return Value{}, rtErr(x.Pos, "undeclared identifier '%s'", x.Name)
		}
		return b.Value, nil
	case *ArrayLit:
		return ip.evalArrayLit(sc, x)
	case *ZerosExpr:
		return ip.evalZeros(sc, x)
	case *RefExpr:
		return ip.evalRef(sc, x)
	case *UnaryExpr:
		return ip.evalUnary(sc, x)
	case *BinaryExpr:
		return ip.evalBinary(sc, x)
	case *FieldAccess:
		return ip.evalFieldAccess(sc, x)
	case *IndexExpr:
		return ip.evalIndex(sc, x)
	case *CallExpr:
		return ip.evalCall(sc, x)
	default:
		return Value{}, rtErr(Pos{}, "unhandled expression %T", e)
	}
}

// evalArrayLit has no fixed/dynamic distinction of its own — the analyzer
// has already validated element count/types against the target context;
// at eval time it always produces a dynamic array, and let-binding into a
// FixedArray slot reshapes it via deepCopyTyped + the Fixed flag set by
// the caller context (execLet/call binding) when the declared type says so.
func (ip *Interpreter) evalArrayLit(sc *Scope, x *ArrayLit) (Value, error) {
	elems := make([]Value, len(x.Elems))
	var elemType Type
	for i, e := range x.Elems {
		v, err := ip.eval(sc, e)
		if err != nil {
			return Value{}, err
		}
		elems[i] = v
		if i == 0 {
			elemType = ip.typeOfValue(v)
		}
	}
	return Value{Kind: VDynamicArray, Arr: &ArrayObject{ElemType: elemType, Elems: elems, Fixed: false}}, nil
}

// typeOfValue infers a runtime Type for a bare value, used only to seed a
// freshly built array literal's ElemType (the analyzer is the source of
// truth for declared types; this is a best-effort runtime fallback for
// REPL/no-typecheck mode).
func (ip *Interpreter) typeOfValue(v Value) Type {
	switch v.Kind {
	case VInt:
		return Int()
	case VFloat:
		return Float()
	case VString:
		return Str()
	case VBool:
		return Bool()
	case VStruct:
		if v.Struct != nil {
			return StructType(v.Struct.TypeName)
		}
		return NullT()
	case VFixedArray:
		return FixedArray(v.Arr.ElemType, int64(len(v.Arr.Elems)))
	case VDynamicArray:
		return DynamicArray(v.Arr.ElemType)
	case VMap:
		return MapType(v.MapV.KeyType, v.MapV.ValueType)
	default:
		return NullT()
	}
}

func (ip *Interpreter) evalZeros(sc *Scope, x *ZerosExpr) (Value, error) {
	n, err := ip.eval(sc, x.N)
	if err != nil {
		return Value{}, err
	}
	if x.MapCtx {
		return Value{Kind: VMap, MapV: &MapObject{KeyType: x.KeyType, ValueType: x.ValueType, Entries: map[Value]Value{}}}, nil
	}
	if n.I < 0 {
		return Value{}, rtErr(x.Pos, "zeros(n) requires n >= 0, got %d", n.I)
	}
	// x.ElemType's zero value is Int() (TInt == 0), which is also the
	// fallback spec.md wants when context is unavailable (--no-typecheck).
	et := x.ElemType
	elems := make([]Value, n.I)
	for i := range elems {
		elems[i] = zeroValueFor(et)
	}
	return Value{Kind: VFixedArray, Arr: &ArrayObject{ElemType: et, Elems: elems, Fixed: true}}, nil
}

// evalRef evaluates the addressable struct-valued target and hands back
// its identity directly: Ref(T) values ARE the struct handle (spec.md
// §3.2/§9 — no separate arena needed in a GC'd host).
func (ip *Interpreter) evalRef(sc *Scope, x *RefExpr) (Value, error) {
	return ip.eval(sc, x.Target)
}

func (ip *Interpreter) evalUnary(sc *Scope, x *UnaryExpr) (Value, error) {
	v, err := ip.eval(sc, x.X)
	if err != nil {
		return Value{}, err
	}
	switch x.Op {
	case MINUS:
		if v.Kind == VFloat {
			return VFloat64(-v.F), nil
		}
		return VInt64(-v.I), nil
	case BANG:
		return VBoolv(!v.B), nil
	}
	return Value{}, rtErr(x.Pos, "unhandled unary operator")
}

func (ip *Interpreter) evalBinary(sc *Scope, x *BinaryExpr) (Value, error) {
	if x.Op == AMP {
		l, err := ip.eval(sc, x.L)
		if err != nil {
			return Value{}, err
		}
		if !l.B {
			return VBoolv(false), nil
		}
		r, err := ip.eval(sc, x.R)
		if err != nil {
			return Value{}, err
		}
		return VBoolv(r.B), nil
	}
	if x.Op == PIPE {
		l, err := ip.eval(sc, x.L)
		if err != nil {
			return Value{}, err
		}
		if l.B {
			return VBoolv(true), nil
		}
		r, err := ip.eval(sc, x.R)
		if err != nil {
			return Value{}, err
		}
		return VBoolv(r.B), nil
	}

	l, err := ip.eval(sc, x.L)
	if err != nil {
		return Value{}, err
	}
	r, err := ip.eval(sc, x.R)
	if err != nil {
		return Value{}, err
	}

	switch x.Op {
	case PLUS:
		if l.Kind == VString {
			return VStr(l.S + r.S), nil
		}
		if l.Kind == VFloat {
			return VFloat64(l.F + r.F), nil
		}
		return VInt64(l.I + r.I), nil
	case MINUS:
		if l.Kind == VFloat {
			return VFloat64(l.F - r.F), nil
		}
		return VInt64(l.I - r.I), nil
	case STAR:
		if l.Kind == VFloat {
			return VFloat64(l.F * r.F), nil
		}
		return VInt64(l.I * r.I), nil
	case SLASH:
		if l.Kind == VFloat {
			return VFloat64(l.F / r.F), nil
		}
		if r.I == 0 {
			return Value{}, rtErr(x.Pos, "division by zero")
		}
		return VInt64(l.I / r.I), nil
	case PCT:
		if r.I == 0 {
			return Value{}, rtErr(x.Pos, "division by zero")
		}
		return VInt64(l.I % r.I), nil
	case LT, GT, LE, GE:
		return VBoolv(compareOrdered(l, r, x.Op)), nil
	case EQ:
		return VBoolv(valuesEqual(l, r)), nil
	case NEQ:
		return VBoolv(!valuesEqual(l, r)), nil
	}
	return Value{}, rtErr(x.Pos, "unhandled binary operator")
}

func compareOrdered(l, r Value, op Kind) bool {
	var cmp int
	switch l.Kind {
	case VFloat:
		switch {
		case l.F < r.F:
			cmp = -1
		case l.F > r.F:
			cmp = 1
		}
	case VString:
		cmp = strings.Compare(l.S, r.S)
	default:
		switch {
		case l.I < r.I:
			cmp = -1
		case l.I > r.I:
			cmp = 1
		}
	}
	switch op {
	case LT:
		return cmp < 0
	case GT:
		return cmp > 0
	case LE:
		return cmp <= 0
	case GE:
		return cmp >= 0
	}
	return false
}

// valuesEqual implements spec.md §3.1's equality rule: same-type value
// equality, plus Ref(T) == null comparisons via identity.
func valuesEqual(l, r Value) bool {
	switch l.Kind {
	case VInt:
		return l.I == r.I
	case VFloat:
		return l.F == r.F
	case VString:
		return l.S == r.S
	case VBool:
		return l.B == r.B
	case VStruct:
		return RefEq(l, r)
	case VFixedArray, VDynamicArray, VMap:
		return HandleEq(l, r)
	default:
		return false
	}
}

func (ip *Interpreter) evalFieldAccess(sc *Scope, x *FieldAccess) (Value, error) {
	// A namespace access (m.field) never evaluates m as an expression — the
	// identifier names an imported module at compile time, not a runtime
	// value (spec.md §4.5).
	if id, ok := x.X.(*Ident); ok {
		if mod, ok := ip.Imports[id.Name]; ok {
			gv, ok := mod.Interp.Global.LookupLocal(x.Field)
			if !ok {
				return Value{}, rtErr(x.Pos, "module '%s' has no exported global '%s'", id.Name, x.Field)
			}
			return gv.Value, nil
		}
	}
	xv, err := ip.eval(sc, x.X)
	if err != nil {
		return Value{}, err
	}
	if xv.Kind != VStruct {
		return Value{}, rtErr(x.Pos, "field access on non-struct value")
	}
	if xv.Struct == nil {
		return Value{}, rtErr(x.Pos, "null reference access")
	}
	v, ok := xv.Struct.Fields[x.Field]
	if !ok {
		return Value{}, rtErr(x.Pos, "struct '%s' has no field '%s'", xv.Struct.TypeName, x.Field)
	}
	return v, nil
}

func (ip *Interpreter) evalIndex(sc *Scope, x *IndexExpr) (Value, error) {
	xv, err := ip.eval(sc, x.X)
	if err != nil {
		return Value{}, err
	}
	iv, err := ip.eval(sc, x.Index)
	if err != nil {
		return Value{}, err
	}
	switch xv.Kind {
	case VFixedArray, VDynamicArray:
		i := iv.I
		if i < 0 || i >= int64(len(xv.Arr.Elems)) {
			return Value{}, rtErr(x.Pos, "index %d out of bounds (length %d)", i, len(xv.Arr.Elems))
		}
		return xv.Arr.Elems[i], nil
	case VString:
		i := iv.I
		runes := []rune(xv.S)
		if i < 0 || i >= int64(len(runes)) {
			return Value{}, rtErr(x.Pos, "index %d out of bounds for string of length %d", i, len(runes))
		}
		return VStr(string(runes[i])), nil
	case VMap:
		v, ok := xv.MapV.Entries[iv]
		if !ok {
			return Value{}, rtErr(x.Pos, "key not present in map")
		}
		return v, nil
	default:
		return Value{}, rtErr(x.Pos, "value is not indexable")
	}
}

// evalFString renders every hole per its format spec and concatenates
// (spec.md §4.1/§4.4.1/§6.2).
func (ip *Interpreter) evalFString(sc *Scope, x *FStringExpr) (Value, error) {
	var b strings.Builder
	for _, c := range x.Chunks {
		if c.Literal {
			b.WriteString(c.Text)
			continue
		}
		v, err := ip.eval(sc, c.Expr)
		if err != nil {
			return Value{}, err
		}
		fs, err := ParseFormatSpec(c.Spec)
		if err != nil {
			return Value{}, rtErr(c.Pos, "%s", err.Error())
		}
		b.WriteString(FormatValue(v, fs, ip.ToStr))
	}
	return VStr(b.String()), nil
}

// ToStr is the canonical rendering used by the print/to_str builtins and
// by bare (untyped) f-string holes (spec.md §6.3).
func (ip *Interpreter) ToStr(v Value) string {
	switch v.Kind {
	case VInt:
		return strconv.FormatInt(v.I, 10)
	case VFloat:
		return strconv.FormatFloat(v.F, 'f', 6, 64)
	case VBool:
		if v.B {
			return "true"
		}
		return "false"
	case VString:
		return v.S
	case VStruct:
		if v.Struct == nil {
			return "null"
		}
		var b strings.Builder
		b.WriteString(v.Struct.TypeName)
		b.WriteByte('(')
		for i, name := range v.Struct.Order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(ip.ToStr(v.Struct.Fields[name]))
		}
		b.WriteByte(')')
		return b.String()
	case VFixedArray, VDynamicArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.Arr.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ip.ToStr(e))
		}
		b.WriteByte(']')
		return b.String()
	case VMap:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range v.MapV.Order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ip.ToStr(k))
			b.WriteString(": ")
			b.WriteString(ip.ToStr(v.MapV.Entries[k]))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return ""
	}
}
