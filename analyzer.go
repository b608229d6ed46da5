// analyzer.go
//
// The static analyzer: three passes over the AST — hoisting struct/function
// names, resolving their fields and signatures, then checking bodies and
// sequential top-level statements
// against a chain of type-only scopes — annotating every CallExpr with
// its resolved kind so the evaluator never has to re-derive it. `strict`
// distinguishes a full Analyze from the --no-typecheck registerOnly path:
// both resolve structs/functions/calls/`use` (the evaluator cannot run
// without that bookkeeping), but only strict mode reports TypeErrors.
package noxy

// tscope is the analyzer's type-only counterpart to Scope (env.go): a
// chain of name→Type maps, with no value slot since analysis never
// executes anything.
type tscope struct {
	vars   map[string]Type
	parent *tscope
}

func newT(parent *tscope) *tscope { return &tscope{vars: map[string]Type{}, parent: parent} }
func (t *tscope) child() *tscope  { return newT(t) }

func (t *tscope) declare(name string, ty Type) bool {
	if _, ok := t.vars[name]; ok {
		return false
	}
	t.vars[name] = ty
	return true
}

func (t *tscope) lookup(name string) (Type, bool) {
	for s := t; s != nil; s = s.parent {
		if ty, ok := s.vars[name]; ok {
			return ty, true
		}
	}
	return Type{}, false
}

// actx threads the analyzer's statement-checking context: the enclosing
// type scope, the root scope (to detect top-level-only constructs), the
// expected return type (for `return`), and whether a `break`/`return` is
// currently reachable.
type actx struct {
	ts         *tscope
	top        *tscope
	returnType Type
	inFunc     bool
	inLoop     bool
}

// Analyze runs the full static analyzer and reports the first
// TypeError/ModuleError encountered.
func (ip *Interpreter) Analyze(prog *Program) error {
	return ip.analyze(prog, true)
}

// registerOnly performs the same registration, `use` resolution, and
// call-site annotation as Analyze, but never reports a TypeError — the
// --no-typecheck path still needs struct/function tables and resolved
// call kinds for the evaluator to run at all.
func (ip *Interpreter) registerOnly(prog *Program) error {
	return ip.analyze(prog, false)
}

// RegisterOnly is registerOnly exported for the CLI/REPL driver (cmd/noxy),
// which lives outside this package.
func (ip *Interpreter) RegisterOnly(prog *Program) error {
	return ip.registerOnly(prog)
}

func (ip *Interpreter) analyze(prog *Program, strict bool) error {
	// Pass 1: hoist struct/function names so forward references resolve
	// regardless of declaration order.
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *StructDecl:
			if _, dup := ip.Structs[d.Name]; dup {
				if strict {
					return typeErr(d.Pos, "struct '%s' is already declared", d.Name)
				}
				continue
			}
			ip.Structs[d.Name] = &StructInfo{Name: d.Name, Decl: d}
		case *FuncDecl:
			if _, dup := ip.Funcs[d.Name]; dup {
				if strict {
					return typeErr(d.Pos, "function '%s' is already declared", d.Name)
				}
				continue
			}
			ip.Funcs[d.Name] = &FuncInfo{Name: d.Name, Decl: d, Owner: ip}
		}
	}

	// Pass 2: resolve struct fields and function signatures now that every
	// struct name is known.
	for _, s := range prog.Stmts {
		switch d := s.(type) {
		case *StructDecl:
			if err := ip.resolveStructFields(d, strict); err != nil && strict {
				return err
			}
		case *FuncDecl:
			ip.resolveFuncSignature(d)
		}
	}

	// Pass 3: process `use` and check bodies/sequential top-level statements
	// in source order.
	root := newT(nil)
	top := actx{ts: root, top: root, returnType: Void(), inFunc: false, inLoop: false}
	for _, s := range prog.Stmts {
		if err := ip.checkStmt(top, s, strict); err != nil && strict {
			return err
		}
	}
	return nil
}

// resolveStructFields fills in si.Fields/si.FieldTypes, rejecting a field
// that embeds the struct itself by value — only a `ref SelfName`
// self-reference is legal.
func (ip *Interpreter) resolveStructFields(d *StructDecl, strict bool) error {
	si := ip.Structs[d.Name]
	fields := make([]FieldDecl, len(d.Fields))
	fieldTypes := make(map[string]Type, len(d.Fields))
	for i, f := range d.Fields {
		t := ip.resolveType(f.Type)
		if strict {
			if t.Tag == TStruct && t.Struct == d.Name {
				return typeErr(d.Pos, "field '%s' of struct '%s' cannot embed itself by value; use 'ref %s'", f.Name, d.Name, d.Name)
			}
			if t.Tag == TStruct {
				if _, ok := ip.Structs[t.Struct]; !ok {
					return typeErr(d.Pos, "unknown struct type '%s' for field '%s'", t.Struct, f.Name)
				}
			}
			if err := validateMapKeys(t, d.Pos); err != nil {
				return err
			}
		}
		fields[i] = f
		fieldTypes[f.Name] = t
	}
	si.Fields = fields
	si.FieldTypes = fieldTypes
	return nil
}

func (ip *Interpreter) resolveFuncSignature(d *FuncDecl) {
	fi := ip.Funcs[d.Name]
	paramNames := make([]string, len(d.Params))
	paramTypes := make([]Type, len(d.Params))
	for i, p := range d.Params {
		paramNames[i] = p.Name
		paramTypes[i] = ip.resolveType(p.Type)
	}
	fi.ParamNames = paramNames
	fi.ParamTypes = paramTypes
	fi.Return = ip.resolveType(d.ReturnType)
}

// checkFuncBody type-checks one function's body against its already
// resolved signature, then verifies every control-flow path of a
// non-Void function reaches a `return`.
func (ip *Interpreter) checkFuncBody(top *tscope, fd *FuncDecl, strict bool) error {
	fi := ip.Funcs[fd.Name]
	fc := top.child()
	for i, name := range fi.ParamNames {
		if strict {
			if err := validateMapKeys(fi.ParamTypes[i], fd.Pos); err != nil {
				return err
			}
		}
		if !fc.declare(name, fi.ParamTypes[i]) && strict {
			return typeErr(fd.Pos, "duplicate parameter name '%s' in function '%s'", name, fd.Name)
		}
	}
	if strict {
		if err := validateMapKeys(fi.Return, fd.Pos); err != nil {
			return err
		}
	}
	bodyCtx := actx{ts: fc, top: top, returnType: fi.Return, inFunc: true, inLoop: false}
	for _, s := range fd.Body {
		if err := ip.checkStmt(bodyCtx, s, strict); err != nil {
			if strict {
				return err
			}
			continue
		}
	}
	if strict && fi.Return.Tag != TVoid && !reachableReturns(fd.Body) {
		return typeErr(fd.Pos, "function '%s' does not return '%s' on every path", fd.Name, fi.Return)
	}
	return nil
}

// reachableReturns reports whether every control-flow path through stmts
// ends in a `return`: some statement of the sequence, at any position, must
// be a `return`, an `if` whose both branches return, or a `while true`
// with no escaping `break`.
func reachableReturns(stmts []Stmt) bool {
	for _, s := range stmts {
		switch st := s.(type) {
		case *ReturnStmt:
			return true
		case *IfStmt:
			if st.Else != nil && reachableReturns(st.Then) && reachableReturns(st.Else) {
				return true
			}
		case *WhileStmt:
			if isLiteralTrue(st.Cond) && !containsBreak(st.Body) {
				return true
			}
		}
	}
	return false
}

func isLiteralTrue(e Expr) bool {
	b, ok := e.(*BoolLit)
	return ok && b.Val
}

// containsBreak looks for a `break` that would escape the loop owning
// stmts — it does not recurse into a nested `while`'s body, since that
// loop catches its own breaks.
func containsBreak(stmts []Stmt) bool {
	for _, s := range stmts {
		switch st := s.(type) {
		case *BreakStmt:
			return true
		case *IfStmt:
			if containsBreak(st.Then) || containsBreak(st.Else) {
				return true
			}
		}
	}
	return false
}

// validateMapKeys rejects a Map(K,V) type whose key type isn't one of
// {Int, String, Bool} (spec.md §3.1), recursing into array/map nesting so
// e.g. `map[string, int][]` is checked too.
func validateMapKeys(t Type, pos Pos) error {
	switch t.Tag {
	case TMap:
		if !IsHashableKey(*t.Key) {
			return typeErr(pos, "map key type must be Int, String, or Bool, got %s", *t.Key)
		}
		return validateMapKeys(*t.Value, pos)
	case TFixedArray, TDynamicArray:
		return validateMapKeys(*t.Elem, pos)
	}
	return nil
}

// checkStmt type-checks one statement, used uniformly for both top-level
// statements (c.ts == c.top) and nested block/function bodies.
func (ip *Interpreter) checkStmt(c actx, s Stmt, strict bool) error {
	switch st := s.(type) {
	case *LetStmt:
		t := ip.resolveType(st.Type)
		if strict {
			if err := validateMapKeys(t, st.Pos); err != nil {
				return err
			}
			if _, err := ip.checkExpr(c.ts, st.Init, t); err != nil {
				return err
			}
		}
		if !c.ts.declare(st.Name, t) && strict {
			return typeErr(st.Pos, "'%s' is already declared in this scope", st.Name)
		}
		return nil

	case *GlobalStmt:
		if strict && c.ts != c.top {
			return typeErr(st.Pos, "'global' is only valid at top level")
		}
		t := ip.resolveType(st.Type)
		if strict {
			if err := validateMapKeys(t, st.Pos); err != nil {
				return err
			}
			if _, err := ip.checkExpr(c.top, st.Init, t); err != nil {
				return err
			}
		}
		if !c.top.declare(st.Name, t) && strict {
			return typeErr(st.Pos, "'%s' is already declared", st.Name)
		}
		return nil

	case *AssignStmt:
		if strict {
			lt, err := ip.typeOfLValue(c.ts, st.Target)
			if err != nil {
				return err
			}
			if _, err := ip.checkExpr(c.ts, st.Value, lt); err != nil {
				return err
			}
		}
		return nil

	case *ExprStmt:
		if strict {
			if _, err := ip.typeOf(c.ts, st.X); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		if strict {
			ct, err := ip.typeOf(c.ts, st.Cond)
			if err != nil {
				return err
			}
			if ct.Tag != TBool {
				return typeErr(st.Pos, "'if' condition must be Bool, got %s", ct)
			}
		}
		thenCtx := c
		thenCtx.ts = c.ts.child()
		for _, b := range st.Then {
			if err := ip.checkStmt(thenCtx, b, strict); err != nil {
				if strict {
					return err
				}
			}
		}
		if st.Else != nil {
			elseCtx := c
			elseCtx.ts = c.ts.child()
			for _, b := range st.Else {
				if err := ip.checkStmt(elseCtx, b, strict); err != nil {
					if strict {
						return err
					}
				}
			}
		}
		return nil

	case *WhileStmt:
		if strict {
			ct, err := ip.typeOf(c.ts, st.Cond)
			if err != nil {
				return err
			}
			if ct.Tag != TBool {
				return typeErr(st.Pos, "'while' condition must be Bool, got %s", ct)
			}
		}
		bodyCtx := c
		bodyCtx.ts = c.ts.child()
		bodyCtx.inLoop = true
		for _, b := range st.Body {
			if err := ip.checkStmt(bodyCtx, b, strict); err != nil {
				if strict {
					return err
				}
			}
		}
		return nil

	case *ReturnStmt:
		if strict && !c.inFunc {
			return typeErr(st.Pos, "'return' outside of a function")
		}
		if st.Value == nil {
			if strict && c.returnType.Tag != TVoid {
				return typeErr(st.Pos, "missing return value; function declares '%s'", c.returnType)
			}
			return nil
		}
		if strict {
			if _, err := ip.checkExpr(c.ts, st.Value, c.returnType); err != nil {
				return err
			}
		}
		return nil

	case *BreakStmt:
		if strict && !c.inLoop {
			return typeErr(st.Pos, "'break' outside of a loop")
		}
		return nil

	case *UseStmt:
		if strict && c.ts != c.top {
			return typeErr(st.Pos, "'use' is only valid at top level")
		}
		return ip.processUse(st)

	case *FuncDecl:
		if strict && c.ts != c.top {
			return typeErr(st.Pos, "function declarations are only valid at top level")
		}
		return ip.checkFuncBody(c.top, st, strict)

	case *StructDecl:
		if strict && c.ts != c.top {
			return typeErr(st.Pos, "struct declarations are only valid at top level")
		}
		return nil

	default:
		return nil
	}
}

// --- expression typing -----------------------------------------------------

func (ip *Interpreter) typeOf(ts *tscope, e Expr) (Type, error) {
	switch x := e.(type) {
	case *IntLit:
		return Int(), nil
	case *FloatLit:
		return Float(), nil
	case *StringLit:
		return Str(), nil
	case *BoolLit:
		return Bool(), nil
	case *NullLit:
		return NullT(), nil
	case *FStringExpr:
		return ip.typeOfFString(ts, x)
	case *Ident:
		if t, ok := ts.lookup(x.Name); ok {
			return t, nil
		}
		if t, ok := ip.lookupGlobalType(x.Name); ok {
			return t, nil
		}
		return Type{}, typeErr(x.Pos, "undeclared identifier '%s'", x.Name)
	case *ArrayLit:
		return ip.typeOfArrayLitNoContext(ts, x)
	case *ZerosExpr:
		x.ElemType = Int()
		if _, err := ip.checkExpr(ts, x.N, Int()); err != nil {
			return Type{}, err
		}
		return FixedArray(Int(), 0), nil
	case *RefExpr:
		return ip.typeOfRef(ts, x)
	case *UnaryExpr:
		return ip.typeOfUnary(ts, x)
	case *BinaryExpr:
		return ip.typeOfBinary(ts, x)
	case *FieldAccess:
		return ip.typeOfFieldAccess(ts, x)
	case *IndexExpr:
		return ip.typeOfIndex(ts, x)
	case *CallExpr:
		return ip.typeOfCall(ts, x)
	default:
		return Type{}, typeErr(Pos{}, "unhandled expression %T", e)
	}
}

// lookupGlobalType resolves a name copied into ip.Global by a selective
// import; own not-yet-evaluated top-level bindings live in the analyzer's
// own tscope chain and are found there first.
func (ip *Interpreter) lookupGlobalType(name string) (Type, bool) {
	if b, ok := ip.Global.LookupLocal(name); ok {
		return b.Type, true
	}
	return Type{}, false
}

// checkExpr type-checks e against an expected type, special-casing the two
// forms whose own shape is contextual rather than self-describing: an
// array literal's fixed/dynamic kind and a bare zeros(n)'s element type.
func (ip *Interpreter) checkExpr(ts *tscope, e Expr, expected Type) (Type, error) {
	switch x := e.(type) {
	case *ArrayLit:
		if expected.Tag == TFixedArray {
			if int64(len(x.Elems)) != expected.N {
				return Type{}, typeErr(exprPos(e), "array literal has %d elements, expected %d", len(x.Elems), expected.N)
			}
			for _, el := range x.Elems {
				if _, err := ip.checkExpr(ts, el, *expected.Elem); err != nil {
					return Type{}, err
				}
			}
			return expected, nil
		}
		if expected.Tag == TDynamicArray {
			for _, el := range x.Elems {
				if _, err := ip.checkExpr(ts, el, *expected.Elem); err != nil {
					return Type{}, err
				}
			}
			return expected, nil
		}
	case *ZerosExpr:
		if expected.Tag == TFixedArray || expected.Tag == TDynamicArray {
			x.ElemType = *expected.Elem
			if _, err := ip.checkExpr(ts, x.N, Int()); err != nil {
				return Type{}, err
			}
			return expected, nil
		}
		if expected.Tag == TMap {
			x.MapCtx = true
			x.KeyType = *expected.Key
			x.ValueType = *expected.Value
			if _, err := ip.checkExpr(ts, x.N, Int()); err != nil {
				return Type{}, err
			}
			return expected, nil
		}
	}
	t, err := ip.typeOf(ts, e)
	if err != nil {
		return Type{}, err
	}
	if !t.AssignableTo(expected) {
		return Type{}, typeErr(exprPos(e), "cannot assign '%s' to a slot declared '%s'", t, expected)
	}
	return expected, nil
}

func (ip *Interpreter) typeOfArrayLitNoContext(ts *tscope, x *ArrayLit) (Type, error) {
	if len(x.Elems) == 0 {
		return DynamicArray(Void()), nil
	}
	et, err := ip.typeOf(ts, x.Elems[0])
	if err != nil {
		return Type{}, err
	}
	for _, el := range x.Elems[1:] {
		t, err := ip.typeOf(ts, el)
		if err != nil {
			return Type{}, err
		}
		if !t.Equal(et) {
			return Type{}, typeErr(exprPos(el), "array literal element type mismatch: '%s' vs '%s'", t, et)
		}
	}
	return DynamicArray(et), nil
}

func (ip *Interpreter) typeOfRef(ts *tscope, x *RefExpr) (Type, error) {
	switch x.Target.(type) {
	case *Ident, *FieldAccess, *IndexExpr:
	default:
		return Type{}, typeErr(x.Pos, "'ref' target must be an addressable l-value")
	}
	t, err := ip.typeOf(ts, x.Target)
	if err != nil {
		return Type{}, err
	}
	if t.Tag != TStruct {
		return Type{}, typeErr(x.Pos, "'ref' target must be struct-typed, got %s", t)
	}
	return RefType(t), nil
}

func (ip *Interpreter) typeOfUnary(ts *tscope, x *UnaryExpr) (Type, error) {
	t, err := ip.typeOf(ts, x.X)
	if err != nil {
		return Type{}, err
	}
	switch x.Op {
	case MINUS:
		if t.Tag != TInt && t.Tag != TFloat {
			return Type{}, typeErr(x.Pos, "unary '-' requires Int or Float, got %s", t)
		}
		return t, nil
	case BANG:
		if t.Tag != TBool {
			return Type{}, typeErr(x.Pos, "unary '!' requires Bool, got %s", t)
		}
		return Bool(), nil
	}
	return Type{}, typeErr(x.Pos, "unhandled unary operator")
}

func (ip *Interpreter) typeOfBinary(ts *tscope, x *BinaryExpr) (Type, error) {
	if x.Op == AMP || x.Op == PIPE {
		if _, err := ip.checkExpr(ts, x.L, Bool()); err != nil {
			return Type{}, err
		}
		if _, err := ip.checkExpr(ts, x.R, Bool()); err != nil {
			return Type{}, err
		}
		return Bool(), nil
	}
	lt, err := ip.typeOf(ts, x.L)
	if err != nil {
		return Type{}, err
	}
	rt, err := ip.typeOf(ts, x.R)
	if err != nil {
		return Type{}, err
	}
	switch x.Op {
	case PLUS:
		if lt.Tag == TString && rt.Tag == TString {
			return Str(), nil
		}
		if lt.Tag == TInt && rt.Tag == TInt {
			return Int(), nil
		}
		if lt.Tag == TFloat && rt.Tag == TFloat {
			return Float(), nil
		}
		return Type{}, typeErr(x.Pos, "'+' requires matching Int, Float, or String operands, got %s and %s", lt, rt)
	case MINUS, STAR, SLASH:
		if lt.Tag == TInt && rt.Tag == TInt {
			return Int(), nil
		}
		if lt.Tag == TFloat && rt.Tag == TFloat {
			return Float(), nil
		}
		return Type{}, typeErr(x.Pos, "'%s' requires matching Int or Float operands, got %s and %s", x.Op, lt, rt)
	case PCT:
		if lt.Tag == TInt && rt.Tag == TInt {
			return Int(), nil
		}
		return Type{}, typeErr(x.Pos, "'%%' requires Int operands, got %s and %s", lt, rt)
	case LT, GT, LE, GE:
		if !lt.Equal(rt) || (lt.Tag != TInt && lt.Tag != TFloat && lt.Tag != TString) {
			return Type{}, typeErr(x.Pos, "comparison requires matching Int, Float, or String operands, got %s and %s", lt, rt)
		}
		return Bool(), nil
	case EQ, NEQ:
		if lt.Equal(rt) || (lt.Tag == TNull && rt.Tag == TRef) || (rt.Tag == TNull && lt.Tag == TRef) {
			return Bool(), nil
		}
		return Type{}, typeErr(x.Pos, "'%s' requires matching operand types, got %s and %s", x.Op, lt, rt)
	}
	return Type{}, typeErr(x.Pos, "unhandled binary operator")
}

func (ip *Interpreter) typeOfFieldAccess(ts *tscope, x *FieldAccess) (Type, error) {
	if id, ok := x.X.(*Ident); ok {
		if mod, ok := ip.Imports[id.Name]; ok {
			if b, ok := mod.Interp.Global.LookupLocal(x.Field); ok {
				return b.Type, nil
			}
			return Type{}, typeErr(x.Pos, "module '%s' has no exported global '%s'", id.Name, x.Field)
		}
	}
	t, err := ip.typeOf(ts, x.X)
	if err != nil {
		return Type{}, err
	}
	var structName string
	switch t.Tag {
	case TStruct:
		structName = t.Struct
	case TRef:
		if t.Elem.Tag != TStruct {
			return Type{}, typeErr(x.Pos, "field access requires a struct or ref-to-struct, got %s", t)
		}
		structName = t.Elem.Struct
	default:
		return Type{}, typeErr(x.Pos, "field access requires a struct or ref-to-struct, got %s", t)
	}
	si, ok := ip.Structs[structName]
	if !ok {
		return Type{}, typeErr(x.Pos, "unknown struct '%s'", structName)
	}
	ft, ok := si.FieldTypes[x.Field]
	if !ok {
		return Type{}, typeErr(x.Pos, "struct '%s' has no field '%s'", structName, x.Field)
	}
	return ft, nil
}

func (ip *Interpreter) typeOfIndex(ts *tscope, x *IndexExpr) (Type, error) {
	t, err := ip.typeOf(ts, x.X)
	if err != nil {
		return Type{}, err
	}
	switch t.Tag {
	case TFixedArray, TDynamicArray:
		if _, err := ip.checkExpr(ts, x.Index, Int()); err != nil {
			return Type{}, err
		}
		return *t.Elem, nil
	case TMap:
		if _, err := ip.checkExpr(ts, x.Index, *t.Key); err != nil {
			return Type{}, err
		}
		return *t.Value, nil
	case TString:
		if _, err := ip.checkExpr(ts, x.Index, Int()); err != nil {
			return Type{}, err
		}
		return Str(), nil
	default:
		return Type{}, typeErr(x.Pos, "cannot index into %s", t)
	}
}

func (ip *Interpreter) typeOfFString(ts *tscope, x *FStringExpr) (Type, error) {
	for _, ch := range x.Chunks {
		if ch.Literal {
			continue
		}
		t, err := ip.typeOf(ts, ch.Expr)
		if err != nil {
			return Type{}, err
		}
		fs, err := ParseFormatSpec(ch.Spec)
		if err != nil {
			return Type{}, typeErr(ch.Pos, "%s", err.Error())
		}
		if err := ValidateFormatSpec(fs, t); err != nil {
			return Type{}, typeErr(ch.Pos, "%s", err.Error())
		}
	}
	return Str(), nil
}

func (ip *Interpreter) typeOfLValue(ts *tscope, target Expr) (Type, error) {
	switch t := target.(type) {
	case *Ident:
		if ty, ok := ts.lookup(t.Name); ok {
			return ty, nil
		}
		if ty, ok := ip.lookupGlobalType(t.Name); ok {
			return ty, nil
		}
		return Type{}, typeErr(t.Pos, "undeclared identifier '%s'", t.Name)
	case *FieldAccess:
		return ip.typeOfFieldAccess(ts, t)
	case *IndexExpr:
		return ip.typeOfIndex(ts, t)
	default:
		return Type{}, typeErr(exprPos(target), "invalid assignment target")
	}
}

// --- call resolution ---------------------------------------------------

func (ip *Interpreter) typeOfCall(ts *tscope, x *CallExpr) (Type, error) {
	if fa, ok := x.Callee.(*FieldAccess); ok {
		modIdent, ok := fa.X.(*Ident)
		if !ok {
			return Type{}, typeErr(x.Pos, "module call target must be a namespace")
		}
		mod, ok := ip.Imports[modIdent.Name]
		if !ok {
			return Type{}, typeErr(x.Pos, "'%s' is not an imported module", modIdent.Name)
		}
		if mod.Interp == nil {
			return Type{}, typeErr(x.Pos, "'%s' is a directory module and exports no callable symbols directly", modIdent.Name)
		}
		if si, ok := mod.Interp.Structs[fa.Field]; ok {
			if err := ip.checkCtorArgs(ts, si, x.Args, x.Pos); err != nil {
				return Type{}, err
			}
			x.ResolvedKind = CallModuleFunction
			x.ResolvedName = fa.Field
			return StructType(si.Name), nil
		}
		fi, ok := mod.Interp.Funcs[fa.Field]
		if !ok {
			return Type{}, typeErr(x.Pos, "module '%s' has no exported function '%s'", modIdent.Name, fa.Field)
		}
		if err := ip.checkCallArgs(ts, fi, x.Args, x.Pos); err != nil {
			return Type{}, err
		}
		x.ResolvedKind = CallModuleFunction
		x.ResolvedName = fa.Field
		return fi.Return, nil
	}

	id, ok := x.Callee.(*Ident)
	if !ok {
		return Type{}, typeErr(x.Pos, "call target must be a function, struct, or builtin name")
	}
	if isBuiltin(id.Name) {
		rt, err := ip.checkBuiltinCall(ts, id.Name, x)
		if err != nil {
			return Type{}, err
		}
		x.ResolvedKind = CallBuiltin
		x.ResolvedName = id.Name
		return rt, nil
	}
	if si, ok := ip.Structs[id.Name]; ok {
		if err := ip.checkCtorArgs(ts, si, x.Args, x.Pos); err != nil {
			return Type{}, err
		}
		x.ResolvedKind = CallStructCtor
		x.ResolvedName = id.Name
		return StructType(si.Name), nil
	}
	if fi, ok := ip.Funcs[id.Name]; ok {
		if err := ip.checkCallArgs(ts, fi, x.Args, x.Pos); err != nil {
			return Type{}, err
		}
		x.ResolvedKind = CallFunction
		x.ResolvedName = id.Name
		return fi.Return, nil
	}
	return Type{}, typeErr(x.Pos, "unknown function, struct, or built-in '%s'", id.Name)
}

func (ip *Interpreter) checkCtorArgs(ts *tscope, si *StructInfo, args []Expr, pos Pos) error {
	if len(args) != len(si.Fields) {
		return typeErr(pos, "struct '%s' constructor expects %d argument(s), got %d", si.Name, len(si.Fields), len(args))
	}
	for i, f := range si.Fields {
		if _, err := ip.checkExpr(ts, args[i], si.FieldTypes[f.Name]); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interpreter) checkCallArgs(ts *tscope, fi *FuncInfo, args []Expr, pos Pos) error {
	if len(args) != len(fi.ParamTypes) {
		return typeErr(pos, "function '%s' expects %d argument(s), got %d", fi.Name, len(fi.ParamTypes), len(args))
	}
	for i, pt := range fi.ParamTypes {
		// A 'ref T' parameter also accepts a bare T argument as an implicit
		// reference (spec.md §8 scenario 3; original_source/noxy_types.py:573-583)
		// — the callee still receives the handle, deepCopyTyped only copies
		// when the declared slot type isn't TRef.
		if pt.Tag == TRef {
			if _, err := ip.checkExpr(ts, args[i], *pt.Elem); err == nil {
				continue
			}
		}
		if _, err := ip.checkExpr(ts, args[i], pt); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interpreter) checkBuiltinCall(ts *tscope, name string, x *CallExpr) (Type, error) {
	args := x.Args
	arity := func(n int) error {
		if len(args) != n {
			return typeErr(x.Pos, "'%s' expects %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}
	switch name {
	case "print", "to_str":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		if _, err := ip.typeOf(ts, args[0]); err != nil {
			return Type{}, err
		}
		if name == "print" {
			return Void(), nil
		}
		return Str(), nil
	case "to_int":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		if _, err := ip.checkExpr(ts, args[0], Float()); err != nil {
			return Type{}, err
		}
		return Int(), nil
	case "to_float":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		if _, err := ip.checkExpr(ts, args[0], Int()); err != nil {
			return Type{}, err
		}
		return Float(), nil
	case "strlen", "ord":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		if _, err := ip.checkExpr(ts, args[0], Str()); err != nil {
			return Type{}, err
		}
		return Int(), nil
	case "length":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TFixedArray && t.Tag != TDynamicArray && t.Tag != TMap {
			return Type{}, typeErr(x.Pos, "'length' requires an array or map, got %s", t)
		}
		return Int(), nil
	case "append":
		if err := arity(2); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TDynamicArray {
			return Type{}, typeErr(x.Pos, "'append' requires a dynamic array, got %s", t)
		}
		if _, err := ip.checkExpr(ts, args[1], *t.Elem); err != nil {
			return Type{}, err
		}
		return Void(), nil
	case "pop":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TDynamicArray {
			return Type{}, typeErr(x.Pos, "'pop' requires a dynamic array, got %s", t)
		}
		return *t.Elem, nil
	case "contains":
		if err := arity(2); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TDynamicArray && t.Tag != TFixedArray {
			return Type{}, typeErr(x.Pos, "'contains' requires an array, got %s", t)
		}
		if _, err := ip.checkExpr(ts, args[1], *t.Elem); err != nil {
			return Type{}, err
		}
		return Bool(), nil
	case "has_key":
		if err := arity(2); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TMap {
			return Type{}, typeErr(x.Pos, "'has_key' requires a map, got %s", t)
		}
		if _, err := ip.checkExpr(ts, args[1], *t.Key); err != nil {
			return Type{}, err
		}
		return Bool(), nil
	case "keys":
		if err := arity(1); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TMap {
			return Type{}, typeErr(x.Pos, "'keys' requires a map, got %s", t)
		}
		return DynamicArray(*t.Key), nil
	case "delete":
		if err := arity(2); err != nil {
			return Type{}, err
		}
		t, err := ip.typeOf(ts, args[0])
		if err != nil {
			return Type{}, err
		}
		if t.Tag != TMap {
			return Type{}, typeErr(x.Pos, "'delete' requires a map, got %s", t)
		}
		if _, err := ip.checkExpr(ts, args[1], *t.Key); err != nil {
			return Type{}, err
		}
		return Void(), nil
	}
	return Type{}, typeErr(x.Pos, "unknown built-in '%s'", name)
}
