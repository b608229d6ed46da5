// eval_call.go
//
// Call semantics: each argument binds to a fresh local slot in a call
// frame rooted at the global scope, with primitives copied by value,
// structs/containers deep-copied unless the parameter is `ref`, and
// Ref(T) parameters copying the handle.
package noxy

func (ip *Interpreter) evalCall(sc *Scope, x *CallExpr) (Value, error) {
	switch x.ResolvedKind {
	case CallBuiltin:
		return ip.callBuiltin(sc, x)
	case CallStructCtor:
		return ip.callStructCtor(sc, x)
	case CallModuleFunction:
		return ip.callModuleFunction(sc, x)
	case CallFunction:
		fi, ok := ip.Funcs[x.ResolvedName]
		if !ok {
			return Value{}, rtErr(x.Pos, "unresolved call to '%s'", x.ResolvedName)
		}
		return ip.callFunction(sc, fi, x)
	default:
		return Value{}, rtErr(x.Pos, "unresolved call")
	}
}

func (ip *Interpreter) callStructCtor(sc *Scope, x *CallExpr) (Value, error) {
	si, ok := ip.Structs[x.ResolvedName]
	if !ok {
		return Value{}, rtErr(x.Pos, "unknown struct '%s'", x.ResolvedName)
	}
	return ip.callStructCtorFor(sc, si, x.Args)
}

func (ip *Interpreter) callModuleFunction(sc *Scope, x *CallExpr) (Value, error) {
	fa := x.Callee.(*FieldAccess)
	modIdent, ok := fa.X.(*Ident)
	if !ok {
		return Value{}, rtErr(x.Pos, "module call target must be a namespace")
	}
	mod, ok := ip.Imports[modIdent.Name]
	if !ok {
		return Value{}, rtErr(x.Pos, "'%s' is not an imported module", modIdent.Name)
	}
	if si, ok := mod.Interp.Structs[fa.Field]; ok {
		return ip.callStructCtorFor(sc, si, x.Args)
	}
	fi, ok := mod.Interp.Funcs[fa.Field]
	if !ok {
		return Value{}, rtErr(x.Pos, "module has no exported function '%s'", fa.Field)
	}
	return ip.invoke(sc, fi, x.Args, x.Pos, fi.Owner)
}

func (ip *Interpreter) callStructCtorFor(sc *Scope, si *StructInfo, args []Expr) (Value, error) {
	inst := &StructInstance{
		TypeName:   si.Name,
		Fields:     make(map[string]Value, len(si.Fields)),
		FieldTypes: si.FieldTypes,
		Order:      make([]string, len(si.Fields)),
	}
	for i, f := range si.Fields {
		inst.Order[i] = f.Name
		av, err := ip.eval(sc, args[i])
		if err != nil {
			return Value{}, err
		}
		inst.Fields[f.Name] = deepCopyTyped(av, si.FieldTypes[f.Name])
	}
	return Value{Kind: VStruct, Struct: inst}, nil
}

func (ip *Interpreter) callFunction(sc *Scope, fi *FuncInfo, x *CallExpr) (Value, error) {
	return ip.invoke(sc, fi, x.Args, x.Pos, fi.Owner)
}

// invoke implements the by-value/by-ref parameter binding rule and roots
// the callee's frame at the global scope of whichever module declares it
// — no closures over the caller's locals.
func (ip *Interpreter) invoke(sc *Scope, fi *FuncInfo, args []Expr, pos Pos, owner *Interpreter) (Value, error) {
	ip.depth++
	defer func() { ip.depth-- }()
	if ip.depth > maxCallDepth {
		return Value{}, rtErr(pos, "stack overflow")
	}

	rootScope := ip.Global
	calleeIP := ip
	if owner != nil {
		rootScope = owner.Global
		calleeIP = owner
	}
	// Output produced during the call goes to the caller's Stdout, even when
	// the callee's globals belong to another module.
	if calleeIP != ip {
		saved := calleeIP.Stdout
		calleeIP.Stdout = ip.Stdout
		defer func() { calleeIP.Stdout = saved }()
	}
	frame := rootScope.Child()
	for i, pt := range fi.ParamTypes {
		av, err := ip.eval(sc, args[i])
		if err != nil {
			return Value{}, err
		}
		bound := deepCopyTyped(av, pt)
		frame.Declare(fi.ParamNames[i], pt, bound)
	}
	sig, err := calleeIP.execBlock(frame, fi.Decl.Body)
	if err != nil {
		return Value{}, err
	}
	if sig.kind == sigReturn {
		return sig.val, nil
	}
	return VVoidv(), nil
}

// resolveType converts parsed type syntax into the closed Type variant.
// Any name that is not a primitive becomes a struct type of that name; the
// struct table is not consulted here.
func (ip *Interpreter) resolveType(te TypeExpr) Type {
	switch t := te.(type) {
	case nil:
		return Void()
	case *NamedTypeExpr:
		switch t.Name {
		case "int":
			return Int()
		case "float":
			return Float()
		case "string":
			return Str()
		case "bool":
			return Bool()
		case "void":
			return Void()
		default:
			return StructType(t.Name)
		}
	case *FixedArrayTypeExpr:
		return FixedArray(ip.resolveType(t.Elem), t.N)
	case *DynArrayTypeExpr:
		return DynamicArray(ip.resolveType(t.Elem))
	case *MapTypeExpr:
		return MapType(ip.resolveType(t.Key), ip.resolveType(t.Value))
	case *RefTypeExpr:
		return RefType(ip.resolveType(t.Inner))
	default:
		return Void()
	}
}
