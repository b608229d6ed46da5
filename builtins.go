// builtins.go
//
// The closed built-in function table (spec.md §6.3): print, to_str, to_int,
// to_float, strlen, ord, length, zeros, append, pop, contains, has_key,
// keys, delete. zeros is its own AST node (ZerosExpr) since its result type
// depends on binding context, not its arguments; everything else dispatches
// through callBuiltin below. Unlike the teacher's native-function registry
// (builtin_core.go's RegisterNative + doc strings), there is no host API to
// expose here — the set is small, fixed, and never user-extensible, so a
// single switch keyed by name is simpler than a registration table.
package noxy

var builtinNames = map[string]bool{
	"print": true, "to_str": true, "to_int": true, "to_float": true,
	"strlen": true, "ord": true, "length": true,
	"append": true, "pop": true, "contains": true,
	"has_key": true, "keys": true, "delete": true,
}

func isBuiltin(name string) bool { return builtinNames[name] }

func (ip *Interpreter) callBuiltin(sc *Scope, x *CallExpr) (Value, error) {
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		v, err := ip.eval(sc, a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	switch x.ResolvedName {
	case "print":
		ip.Stdout(ip.ToStr(args[0]) + "\n")
		return VVoidv(), nil

	case "to_str":
		return VStr(ip.ToStr(args[0])), nil

	case "to_int":
		return VInt64(int64(args[0].F)), nil

	case "to_float":
		return VFloat64(float64(args[0].I)), nil

	case "strlen":
		return VInt64(int64(len([]rune(args[0].S)))), nil

	case "ord":
		runes := []rune(args[0].S)
		if len(runes) != 1 {
			return Value{}, rtErr(x.Pos, "'ord' requires a single-character string, got length %d", len(runes))
		}
		return VInt64(int64(runes[0])), nil

	case "length":
		return builtinLength(args[0]), nil

	case "append":
		arr := args[0].Arr
		arr.Elems = append(arr.Elems, deepCopyTyped(args[1], arr.ElemType))
		return VVoidv(), nil

	case "pop":
		arr := args[0].Arr
		if len(arr.Elems) == 0 {
			return Value{}, rtErr(x.Pos, "'pop' on an empty array")
		}
		last := arr.Elems[len(arr.Elems)-1]
		arr.Elems = arr.Elems[:len(arr.Elems)-1]
		return last, nil

	case "contains":
		return VBoolv(builtinContains(args[0], args[1])), nil

	case "has_key":
		_, ok := args[0].MapV.Entries[args[1]]
		return VBoolv(ok), nil

	case "keys":
		m := args[0].MapV
		elems := make([]Value, len(m.Order))
		copy(elems, m.Order)
		return Value{Kind: VDynamicArray, Arr: &ArrayObject{ElemType: m.KeyType, Elems: elems, Fixed: false}}, nil

	case "delete":
		m := args[0].MapV
		key := args[1]
		if _, ok := m.Entries[key]; ok {
			delete(m.Entries, key)
			for i, k := range m.Order {
				if k == key {
					m.Order = append(m.Order[:i], m.Order[i+1:]...)
					break
				}
			}
		}
		return VVoidv(), nil

	default:
		return Value{}, rtErr(x.Pos, "unknown built-in '%s'", x.ResolvedName)
	}
}

func builtinLength(v Value) Value {
	switch v.Kind {
	case VFixedArray, VDynamicArray:
		return VInt64(int64(len(v.Arr.Elems)))
	case VMap:
		return VInt64(int64(len(v.MapV.Order)))
	default:
		return VInt64(0)
	}
}

func builtinContains(arr, needle Value) bool {
	for _, e := range arr.Arr.Elems {
		if valuesEqual(e, needle) {
			return true
		}
	}
	return false
}
