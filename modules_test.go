// modules_test.go
package noxy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "noxy-mod-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func writeModule(t *testing.T, dir, relPath, src string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(full, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

func mustRead(t *testing.T, dir, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(b)
}

// runInRoot parses+analyzes+evaluates src as a top-level program whose
// `use` statements resolve against loader's root, sharing one Loader (and
// therefore one module cache) across every call that passes the same one.
func runInRoot(t *testing.T, loader *Loader, file, src string) string {
	t.Helper()
	var out strings.Builder
	prog, err := ParseFile(file, src)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	ip := NewInterpreter(file, loader, func(s string) { out.WriteString(s) })
	if err := ip.Analyze(prog); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if err := ip.Evaluate(prog); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return out.String()
}

// --- spec.md §8 concrete scenario 6: module import --------------------------

func TestModules_SelectImport(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "math.nx", `func add(a: int, b: int) -> int
  return a + b
end`)
	loader := NewLoader(dir, func(string) {})
	got := runInRoot(t, loader, "main.nx", `use math select add
print(to_str(add(2, 3)))`)
	if got != "5\n" {
		t.Fatalf("got %q, want %q", got, "5\n")
	}
}

func TestModules_NamespaceImport(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "math.nx", `func add(a: int, b: int) -> int
  return a + b
end`)
	loader := NewLoader(dir, func(string) {})
	got := runInRoot(t, loader, "main.nx", `use math
print(to_str(math.add(4, 5)))`)
	if got != "9\n" {
		t.Fatalf("got %q, want %q", got, "9\n")
	}
}

func TestModules_AliasImport(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "math.nx", `func add(a: int, b: int) -> int
  return a + b
end`)
	loader := NewLoader(dir, func(string) {})
	got := runInRoot(t, loader, "main.nx", `use math as m
print(to_str(m.add(1, 1)))`)
	if got != "2\n" {
		t.Fatalf("got %q, want %q", got, "2\n")
	}
}

func TestModules_DirectorySelectAll(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "util/a.nx", `func inc(n: int) -> int
  return n + 1
end`)
	writeModule(t, dir, "util/b.nx", `func dec(n: int) -> int
  return n - 1
end`)
	loader := NewLoader(dir, func(string) {})
	got := runInRoot(t, loader, "main.nx", `use util select *
print(to_str(a.inc(1)))
print(to_str(b.dec(1)))`)
	if got != "2\n0\n" {
		t.Fatalf("got %q, want %q", got, "2\n0\n")
	}
}

// --- spec.md testable property 6 / SPEC_FULL decision #2: global-once ------
//
// A module's own top-level statements (including `global` initializers)
// evaluate against the loader's shared stdout, not the importer's — so the
// announce() side effect below is observable exactly once across two
// separate importers sharing one Loader, even though each importer calls
// the imported `touch` itself.

func TestModules_GlobalInImportRunsOnceAcrossTwoImporters(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "counted.nx", `func announce() -> int
  print("init")
  return 0
end
global hits: int = announce()
func touch() -> void
  print("touched")
end`)
	writeModule(t, dir, "a.nx", `use counted select touch
touch()`)
	writeModule(t, dir, "b.nx", `use counted select touch
touch()`)

	var loaderOut strings.Builder
	loader := NewLoader(dir, func(s string) { loaderOut.WriteString(s) })

	outA := runInRoot(t, loader, filepath.Join(dir, "a.nx"), mustRead(t, dir, "a.nx"))
	outB := runInRoot(t, loader, filepath.Join(dir, "b.nx"), mustRead(t, dir, "b.nx"))

	if outA != "touched\n" || outB != "touched\n" {
		t.Fatalf("got a=%q b=%q, want each importer to see its own touch() call", outA, outB)
	}
	if strings.Count(loaderOut.String(), "init") != 1 {
		t.Fatalf("global initializer ran %d times, want exactly 1 (loader output: %q)",
			strings.Count(loaderOut.String(), "init"), loaderOut.String())
	}
}

func TestModules_SameModuleCachedNotReparsed(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "once.nx", `func mark() -> int
  print("loaded")
  return 1
end
global n: int = mark()
func get() -> int
  return n
end`)
	var loaderOut strings.Builder
	loader := NewLoader(dir, func(s string) { loaderOut.WriteString(s) })
	got := runInRoot(t, loader, "main.nx", `use once select get
use once select get
print(to_str(get()))`)
	if got != "1\n" {
		t.Fatalf("got %q, want %q", got, "1\n")
	}
	if strings.Count(loaderOut.String(), "loaded") != 1 {
		t.Fatalf("module top level ran %d times, want exactly 1 (loader output: %q)",
			strings.Count(loaderOut.String(), "loaded"), loaderOut.String())
	}
}

// --- spec.md §4.5: cycle detection ------------------------------------------

func TestModules_CircularImportIsModuleError(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "a.nx", `use b select y
global x: int = 1`)
	writeModule(t, dir, "b.nx", `use a select x
global y: int = 1`)
	loader := NewLoader(dir, func(string) {})

	prog, err := ParseFile("a.nx", mustRead(t, dir, "a.nx"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	ip := NewInterpreter(filepath.Join(dir, "a.nx"), loader, func(string) {})
	err = ip.Analyze(prog)
	if _, ok := err.(*ModuleError); !ok {
		t.Fatalf("got %T (%v), want *ModuleError for circular import", err, err)
	}
}

// --- spec.md §4.5: module not found ------------------------------------------

func TestModules_NotFoundIsModuleError(t *testing.T) {
	dir := withTempDir(t)
	loader := NewLoader(dir, func(string) {})
	prog, err := ParseFile("main.nx", `use nope select add`)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	ip := NewInterpreter("main.nx", loader, func(string) {})
	err = ip.Analyze(prog)
	me, ok := err.(*ModuleError)
	if !ok {
		t.Fatalf("got %T, want *ModuleError", err)
	}
	mustContain(t, me.Msg, "not found")
}

// --- structs and deep-copy semantics survive across a module boundary ------

func TestModules_StructTypeUsableAfterImport(t *testing.T) {
	dir := withTempDir(t)
	writeModule(t, dir, "shapes.nx", `struct Point
  x: int
  y: int
end
func origin() -> Point
  return Point(0, 0)
end`)
	loader := NewLoader(dir, func(string) {})
	got := runInRoot(t, loader, "main.nx", `use shapes select Point, origin
let p: Point = origin()
p.x = 5
print(to_str(p.x))`)
	if got != "5\n" {
		t.Fatalf("got %q, want %q", got, "5\n")
	}
}
