// interpreter.go
//
// The tree-walking evaluator. Evaluation produces either a Value or one
// of three control signals — sigNormal, sigReturn, sigBreak — modeled as
// explicit data rather than Go panics/exceptions: each loop and each call
// frame inspects the signal returned by execBlock and either consumes it
// or re-propagates it to its own caller.
package noxy

import "fmt"

// StructInfo is the analyzer's registration of a struct declaration:
// ordered fields plus their resolved types.
type StructInfo struct {
	Name       string
	Fields     []FieldDecl
	FieldTypes map[string]Type
	Decl       *StructDecl
}

// FuncInfo is the analyzer's registration of a function declaration.
// Owner is the Interpreter that declared it (stamped once at registration,
// regardless of which module(s) later import it by name) — calls must root
// their frame at Owner.Global so a function's free globals resolve against
// its own module, not whichever module happens to be calling it.
type FuncInfo struct {
	Name       string
	ParamNames []string
	ParamTypes []Type
	Return     Type
	Decl       *FuncDecl
	Owner      *Interpreter
}

// Interpreter holds everything produced by analyzing one source file (or
// module) plus the mutable global scope evaluation writes into. The same
// struct is populated by analyzer.go (registration + type checking) and
// then driven by the eval methods below (execution).
type Interpreter struct {
	File    string
	Structs map[string]*StructInfo
	Funcs   map[string]*FuncInfo
	Imports map[string]*Module // namespace name -> loaded module
	Global  *Scope
	Loader  *Loader
	Stdout  func(string)

	depth int // call-frame depth, for the stack-overflow guard
}

const maxCallDepth = 10000

func NewInterpreter(file string, loader *Loader, stdout func(string)) *Interpreter {
	return &Interpreter{
		File:    file,
		Structs: map[string]*StructInfo{},
		Funcs:   map[string]*FuncInfo{},
		Imports: map[string]*Module{},
		Global:  newScope(nil),
		Loader:  loader,
		Stdout:  stdout,
	}
}

// RunSource lexes, parses, analyzes, and evaluates a complete source file
// in one call — the driver's single entry point.
func RunSource(file, src string, stdout func(string), typecheck bool) error {
	prog, err := ParseFile(file, src)
	if err != nil {
		return err
	}
	loader := NewLoader(".", stdout)
	ip := NewInterpreter(file, loader, stdout)
	if typecheck {
		if err := ip.Analyze(prog); err != nil {
			return err
		}
	} else {
		// --no-typecheck still needs registration (struct/func tables) so
		// the evaluator can resolve constructors and calls; it skips type
		// validation, not bookkeeping.
		if err := ip.registerOnly(prog); err != nil {
			return err
		}
	}
	return ip.Evaluate(prog)
}

// --- control signals ------------------------------------------------------

type signalKind int

const (
	sigNormal signalKind = iota
	sigReturn
	sigBreak
)

type signal struct {
	kind signalKind
	val  Value
}

var normalSignal = signal{kind: sigNormal}

// --- top-level evaluation --------------------------------------------------

// Evaluate executes every top-level statement of prog against ip.Global.
func (ip *Interpreter) Evaluate(prog *Program) error {
	for _, s := range prog.Stmts {
		sig, err := ip.execStmt(ip.Global, s)
		if err != nil {
			return err
		}
		if sig.kind != sigNormal {
			return rtErr(Pos{File: prog.File}, "return/break outside of a function or loop")
		}
	}
	return nil
}

// execBlock runs stmts in scope sc, stopping at the first non-normal
// signal and propagating it to the caller.
func (ip *Interpreter) execBlock(sc *Scope, stmts []Stmt) (signal, error) {
	for _, s := range stmts {
		sig, err := ip.execStmt(sc, s)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNormal {
			return sig, nil
		}
	}
	return normalSignal, nil
}

func (ip *Interpreter) execStmt(sc *Scope, s Stmt) (signal, error) {
	switch st := s.(type) {
	case *LetStmt:
		return normalSignal, ip.execLet(sc, st)
	case *GlobalStmt:
		return normalSignal, ip.execGlobal(st)
	case *AssignStmt:
		return normalSignal, ip.execAssign(sc, st)
	case *ExprStmt:
		_, err := ip.eval(sc, st.X)
		return normalSignal, err
	case *IfStmt:
		return ip.execIf(sc, st)
	case *WhileStmt:
		return ip.execWhile(sc, st)
	case *ReturnStmt:
		if st.Value == nil {
			return signal{kind: sigReturn, val: VVoidv()}, nil
		}
		v, err := ip.eval(sc, st.Value)
		if err != nil {
			return signal{}, err
		}
		return signal{kind: sigReturn, val: v}, nil
	case *BreakStmt:
		return signal{kind: sigBreak}, nil
	case *FuncDecl, *StructDecl:
		// Already registered during analysis; nothing to execute.
		return normalSignal, nil
	case *UseStmt:
		return normalSignal, ip.execUse(sc, st)
	default:
		return normalSignal, fmt.Errorf("unhandled statement %T", s)
	}
}

func (ip *Interpreter) execLet(sc *Scope, st *LetStmt) error {
	v, err := ip.eval(sc, st.Init)
	if err != nil {
		return err
	}
	t := ip.resolveType(st.Type)
	v = deepCopyTyped(v, t)
	if !sc.Declare(st.Name, t, v) {
		return typeErr(st.Pos, "'%s' is already declared in this scope", st.Name)
	}
	return nil
}

func (ip *Interpreter) execGlobal(st *GlobalStmt) error {
	if _, ok := ip.Global.LookupLocal(st.Name); ok {
		return nil // already run (module cached, or duplicate eval pass)
	}
	v, err := ip.eval(ip.Global, st.Init)
	if err != nil {
		return err
	}
	t := ip.resolveType(st.Type)
	v = deepCopyTyped(v, t)
	ip.Global.Declare(st.Name, t, v)
	return nil
}

func (ip *Interpreter) execAssign(sc *Scope, st *AssignStmt) error {
	v, err := ip.eval(sc, st.Value)
	if err != nil {
		return err
	}
	return ip.assignTo(sc, st.Target, v)
}

// assignTo resolves st.Target to a writable slot and stores v there,
// deep-copying according to the slot's declared type.
func (ip *Interpreter) assignTo(sc *Scope, target Expr, v Value) error {
	switch t := target.(type) {
	case *Ident:
		b, ok := sc.Lookup(t.Name)
		if !ok {
			return typeErr(t.Pos, "undeclared identifier '%s'", t.Name)
		}
		b.Value = deepCopyTyped(v, b.Type)
		return nil
	case *FieldAccess:
		inst, ft, err := ip.resolveFieldSlot(sc, t)
		if err != nil {
			return err
		}
		inst.Fields[t.Field] = deepCopyTyped(v, ft)
		return nil
	case *IndexExpr:
		return ip.assignIndex(sc, t, v)
	default:
		return typeErr(exprPos(target), "invalid assignment target")
	}
}

func (ip *Interpreter) resolveFieldSlot(sc *Scope, fa *FieldAccess) (*StructInstance, Type, error) {
	xv, err := ip.eval(sc, fa.X)
	if err != nil {
		return nil, Type{}, err
	}
	if xv.Kind != VStruct {
		return nil, Type{}, rtErr(fa.Pos, "field access on non-struct value")
	}
	if xv.Struct == nil {
		return nil, Type{}, rtErr(fa.Pos, "null reference access")
	}
	ft, ok := xv.Struct.FieldTypes[fa.Field]
	if !ok {
		return nil, Type{}, typeErr(fa.Pos, "struct '%s' has no field '%s'", xv.Struct.TypeName, fa.Field)
	}
	return xv.Struct, ft, nil
}

func (ip *Interpreter) assignIndex(sc *Scope, ix *IndexExpr, v Value) error {
	xv, err := ip.eval(sc, ix.X)
	if err != nil {
		return err
	}
	switch xv.Kind {
	case VFixedArray, VDynamicArray:
		idx, err := ip.eval(sc, ix.Index)
		if err != nil {
			return err
		}
		i := idx.I
		if i < 0 || i >= int64(len(xv.Arr.Elems)) {
			return rtErr(ix.Pos, "index %d out of bounds (length %d)", i, len(xv.Arr.Elems))
		}
		xv.Arr.Elems[i] = deepCopyTyped(v, xv.Arr.ElemType)
		return nil
	case VMap:
		key, err := ip.eval(sc, ix.Index)
		if err != nil {
			return err
		}
		if _, exists := xv.MapV.Entries[key]; !exists {
			xv.MapV.Order = append(xv.MapV.Order, key)
		}
		xv.MapV.Entries[key] = deepCopyTyped(v, xv.MapV.ValueType)
		return nil
	default:
		return rtErr(ix.Pos, "indexed assignment on non-container value")
	}
}

func (ip *Interpreter) execIf(sc *Scope, st *IfStmt) (signal, error) {
	c, err := ip.eval(sc, st.Cond)
	if err != nil {
		return signal{}, err
	}
	if c.B {
		return ip.execBlock(sc.Child(), st.Then)
	}
	if st.Else != nil {
		return ip.execBlock(sc.Child(), st.Else)
	}
	return normalSignal, nil
}

func (ip *Interpreter) execWhile(sc *Scope, st *WhileStmt) (signal, error) {
	for {
		c, err := ip.eval(sc, st.Cond)
		if err != nil {
			return signal{}, err
		}
		if !c.B {
			return normalSignal, nil
		}
		sig, err := ip.execBlock(sc.Child(), st.Body)
		if err != nil {
			return signal{}, err
		}
		switch sig.kind {
		case sigBreak:
			return normalSignal, nil
		case sigReturn:
			return sig, nil
		}
	}
}

func exprPos(e Expr) Pos {
	switch x := e.(type) {
	case *Ident:
		return x.Pos
	case *FieldAccess:
		return x.Pos
	case *IndexExpr:
		return x.Pos
	default:
		return Pos{}
	}
}
