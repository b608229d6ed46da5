// modules.go
//
// The module loader. Resolution walks the `use` path segments against the
// loader's search root, trying a file module first and a directory module
// second. Loading a dependency runs its full pipeline — parse, analyze,
// evaluate — once, eagerly, the first time any `use` reaches it; the
// result is cached by canonical path and reused by every subsequent
// importer, so a module is loaded at most once per import path.
// Combining analysis and evaluation into one Load call is a
// deliberate simplification over running them as separate passes: it is the
// only way for an importer to see both a dependency's static types and its
// real exported values (globals) by the time the importer's own analysis
// needs them, without a third intermediate representation.
package noxy

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Module is a loaded `use` target: a source file (or a directory of source
// files) analyzed and evaluated once. Its Interp carries the exported
// namespace — Funcs, Structs, and Global. Every top-level declaration is
// exported, so no separate export list is tracked. A
// directory module has a nil Interp; its members are reached only through
// loadDirMembers (used by `select *` on a directory).
type Module struct {
	Path   string // canonical absolute path (file or directory)
	Interp *Interpreter
}

// Loader resolves `use` paths under a single search root and caches
// loaded modules by canonical path, so the same path always resolves to
// the same shared Module.
type Loader struct {
	Root    string
	Stdout  func(string) // shared with every module loaded through this loader
	cache   map[string]*Module
	loading map[string]bool // in-progress set, for circular-import detection
}

func NewLoader(root string, stdout func(string)) *Loader {
	return &Loader{
		Root:    root,
		Stdout:  stdout,
		cache:   map[string]*Module{},
		loading: map[string]bool{},
	}
}

// resolve implements the two-step lookup from spec.md §4.5: a file module
// takes precedence over a directory module with the same path.
func (l *Loader) resolve(segs []string) (abs string, isDir bool, found bool) {
	rel := filepath.Join(segs...)
	filePath := filepath.Join(l.Root, rel+".nx")
	if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
		abs, _ = filepath.Abs(filePath)
		return abs, false, true
	}
	dirPath := filepath.Join(l.Root, rel)
	if info, err := os.Stat(dirPath); err == nil && info.IsDir() {
		abs, _ = filepath.Abs(dirPath)
		return abs, true, true
	}
	return "", false, false
}

// Load resolves segs to a file or directory module, loading and caching it
// if this is the first time it's been requested.
func (l *Loader) Load(segs []string, pos Pos) (*Module, error) {
	abs, isDir, found := l.resolve(segs)
	if !found {
		return nil, &ModuleError{Pos: pos, Msg: "module not found: " + strings.Join(segs, ".")}
	}
	if isDir {
		if mod, ok := l.cache[abs]; ok {
			return mod, nil
		}
		mod := &Module{Path: abs}
		l.cache[abs] = mod
		return mod, nil
	}
	return l.loadFile(abs, pos)
}

func (l *Loader) loadFile(abs string, pos Pos) (*Module, error) {
	if mod, ok := l.cache[abs]; ok {
		return mod, nil
	}
	if l.loading[abs] {
		return nil, &ModuleError{Pos: pos, Msg: "circular import: " + abs}
	}
	l.loading[abs] = true
	defer delete(l.loading, abs)

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ModuleError{Pos: pos, Msg: "cannot read module: " + err.Error()}
	}
	prog, err := ParseFile(abs, string(src))
	if err != nil {
		return nil, err
	}
	ip := NewInterpreter(abs, l, l.Stdout)
	if err := ip.Analyze(prog); err != nil {
		return nil, err
	}
	if err := ip.Evaluate(prog); err != nil {
		return nil, err
	}
	mod := &Module{Path: abs, Interp: ip}
	l.cache[abs] = mod
	return mod, nil
}

// loadDirMembers loads every *.nx file directly inside a directory module,
// keyed by file stem, for `use path select *` on a directory (spec.md §4.5).
// Sorted for deterministic load order across platforms.
func (l *Loader) loadDirMembers(dirAbs string, pos Pos) (map[string]*Module, error) {
	entries, err := os.ReadDir(dirAbs)
	if err != nil {
		return nil, &ModuleError{Pos: pos, Msg: "cannot read module directory: " + err.Error()}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".nx") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make(map[string]*Module, len(names))
	for _, name := range names {
		stem := strings.TrimSuffix(name, ".nx")
		mod, err := l.loadFile(filepath.Join(dirAbs, name), pos)
		if err != nil {
			return nil, err
		}
		out[stem] = mod
	}
	return out, nil
}

// leafName is the namespace name a bare `use path` installs (spec.md §4.5
// "import module under its leaf name").
func leafName(segs []string) string {
	return segs[len(segs)-1]
}

// processUse resolves a `use` statement against ip's loader, loading the
// target (eagerly analyzing+evaluating it if not already cached) and
// installing its namespace/symbols into ip per st.Mode. Called once, during
// analysis (ip.Analyze or ip.registerOnly), so the same bindings are
// already present by the time evaluation reaches the UseStmt again; see
// execUse below for what evaluation does with it.
func (ip *Interpreter) processUse(st *UseStmt) error {
	mod, err := ip.Loader.Load(st.Path, st.Pos)
	if err != nil {
		return err
	}

	switch st.Mode {
	case ImportNamespace:
		name := leafName(st.Path)
		if mod.Interp == nil {
			return &ModuleError{Pos: st.Pos, Msg: "'" + name + "' is a directory module; use 'select *' to import it"}
		}
		ip.Imports[name] = mod
		return nil

	case ImportAlias:
		if mod.Interp == nil {
			return &ModuleError{Pos: st.Pos, Msg: "'" + st.Alias + "' is a directory module; use 'select *' to import it"}
		}
		ip.Imports[st.Alias] = mod
		return nil

	case ImportSelect:
		if mod.Interp == nil {
			return &ModuleError{Pos: st.Pos, Msg: "directory module has no selectable top-level symbols"}
		}
		for _, name := range st.Names {
			if err := ip.importSymbol(mod.Interp, name, st.Pos); err != nil {
				return err
			}
		}
		return nil

	case ImportSelectAll:
		if mod.Interp != nil {
			return ip.importAllSymbols(mod.Interp)
		}
		members, err := ip.Loader.loadDirMembers(mod.Path, st.Pos)
		if err != nil {
			return err
		}
		for stem, sub := range members {
			ip.Imports[stem] = sub
		}
		return nil

	default:
		return &ModuleError{Pos: st.Pos, Msg: "unknown import mode"}
	}
}

// importSymbol copies one exported func, struct, or global from src into ip
// (spec.md §4.5 "import listed symbols into current scope").
func (ip *Interpreter) importSymbol(src *Interpreter, name string, pos Pos) error {
	if fi, ok := src.Funcs[name]; ok {
		ip.Funcs[name] = fi
		return nil
	}
	if si, ok := src.Structs[name]; ok {
		ip.Structs[name] = si
		return nil
	}
	if b, ok := src.Global.LookupLocal(name); ok {
		ip.Global.Declare(name, b.Type, b.Value)
		return nil
	}
	return &ModuleError{Pos: pos, Msg: "module has no exported symbol '" + name + "'"}
}

// importAllSymbols copies every exported func, struct, and global from src
// into ip (spec.md §4.5 "import all top-level public symbols").
func (ip *Interpreter) importAllSymbols(src *Interpreter) error {
	for name, fi := range src.Funcs {
		ip.Funcs[name] = fi
	}
	for name, si := range src.Structs {
		ip.Structs[name] = si
	}
	for name, b := range src.Global.vars {
		ip.Global.Declare(name, b.Type, b.Value)
	}
	return nil
}

// execUse runs at evaluation time. processUse already installed everything
// this `use` needs during analysis (or registerOnly). A namespace or alias
// import that is already present returns at once; a `select` import runs
// processUse again, which hits the loader cache (the module is not
// reloaded) and re-copies the same symbols, leaving existing globals as they
// are — the idempotence property spec.md §4.5/testable property 6 requires.
func (ip *Interpreter) execUse(sc *Scope, st *UseStmt) error {
	switch st.Mode {
	case ImportNamespace:
		if _, ok := ip.Imports[leafName(st.Path)]; ok {
			return nil
		}
	case ImportAlias:
		if _, ok := ip.Imports[st.Alias]; ok {
			return nil
		}
	}
	return ip.processUse(st)
}
