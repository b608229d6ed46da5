// interpreter_test.go
package noxy

import (
	"strings"
	"testing"
)

// runCapture lexes, parses, analyzes, and evaluates src, returning the
// concatenation of everything written via print().
func runCapture(t *testing.T, src string) string {
	t.Helper()
	var out strings.Builder
	if err := RunSource("t.nx", src, func(s string) { out.WriteString(s) }, true); err != nil {
		t.Fatalf("RunSource(%q): %v", src, err)
	}
	return out.String()
}

func runExpectErr(t *testing.T, src string) error {
	t.Helper()
	var out strings.Builder
	err := RunSource("t.nx", src, func(s string) { out.WriteString(s) }, true)
	if err == nil {
		t.Fatalf("expected an error, got none; output:\n%s", out.String())
	}
	return err
}

// --- spec.md §8 concrete scenario 2: fibonacci ------------------------------

func TestEval_Fibonacci(t *testing.T) {
	got := runCapture(t, `func fib(n: int) -> int
  if n < 2 then
    return n
  else
    return fib(n - 1) + fib(n - 2)
  end
end
print(to_str(fib(10)))`)
	if got != "55\n" {
		t.Fatalf("got %q, want %q", got, "55\n")
	}
}

// --- spec.md §8 concrete scenario 3: struct by-value vs by-ref --------------

func TestEval_StructByValueVsByRef(t *testing.T) {
	got := runCapture(t, `struct C
  valor: int
end
func incC(c: C) -> void
  c.valor = c.valor + 1
end
func incR(c: ref C) -> void
  c.valor = c.valor + 1
end
let x: C = C(10)
incC(x)
print(to_str(x.valor))
incR(x)
print(to_str(x.valor))`)
	if got != "10\n11\n" {
		t.Fatalf("got %q, want %q", got, "10\n11\n")
	}
}

// --- spec.md §8 testable property 3/4, spelled out explicitly --------------

func TestEval_ByValueStructIsolatesCaller(t *testing.T) {
	got := runCapture(t, `struct Box
  n: int
end
func zero(b: Box) -> void
  b.n = 0
end
let b: Box = Box(7)
zero(b)
print(to_str(b.n))`)
	if got != "7\n" {
		t.Fatalf("got %q, want %q (by-value struct param must not leak)", got, "7\n")
	}
}

func TestEval_RefStructMutationVisibleToCaller(t *testing.T) {
	got := runCapture(t, `struct Box
  n: int
end
func setTo(b: ref Box, v: int) -> void
  b.n = v
end
let b: Box = Box(7)
setTo(ref b, 99)
print(to_str(b.n))`)
	if got != "99\n" {
		t.Fatalf("got %q, want %q", got, "99\n")
	}
}

// --- spec.md §8 concrete scenario 4: f-string formatting --------------------

func TestEval_FStringHexAndZeroPad(t *testing.T) {
	got := runCapture(t, `let n: int = 42
print(f"{n:05} {n:x}")`)
	if got != "00042 2a\n" {
		t.Fatalf("got %q, want %q", got, "00042 2a\n")
	}
}

func TestEval_FStringFloatPrecision(t *testing.T) {
	got := runCapture(t, `let p: float = 3.14159
print(f"{p:.2f}")`)
	if got != "3.14\n" {
		t.Fatalf("got %q, want %q", got, "3.14\n")
	}
}

func TestEval_FStringRoundTripsToStr(t *testing.T) {
	got := runCapture(t, `let n: int = 7
print(f"{n}")
print(to_str(n))`)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 || lines[0] != lines[1] {
		t.Fatalf("f-string bare hole and to_str diverged: %q", got)
	}
}

func TestEval_EmptyFString(t *testing.T) {
	got := runCapture(t, `print(f"")`)
	if got != "\n" {
		t.Fatalf("got %q, want a bare newline", got)
	}
}

// --- spec.md §8 concrete scenario 5: linked list via ref fields -------------

func TestEval_LinkedListTraversal(t *testing.T) {
	got := runCapture(t, `struct Node
  valor: int
  proximo: ref Node
end
let n3: Node = Node(3, null)
let n2: Node = Node(2, ref n3)
let n1: Node = Node(1, ref n2)
let cur: ref Node = ref n1
while cur != null do
  print(to_str(cur.valor))
  cur = cur.proximo
end`)
	if got != "1\n2\n3\n" {
		t.Fatalf("got %q, want %q", got, "1\n2\n3\n")
	}
}

// --- spec.md §8 concrete scenario 1: arrays are passed by value -------------
// (SPEC_FULL.md open-question #1: fixed arrays deep-copy like everything
// else; a function parameter must be `ref`-wrapped to mutate the caller's
// array in place.)

func TestEval_ArrayParamIsByValue(t *testing.T) {
	got := runCapture(t, `func zeroFirst(a: int[3]) -> void
  a[0] = 0
end
let a: int[3] = [1, 2, 3]
zeroFirst(a)
print(to_str(a))`)
	if got != "[1, 2, 3]\n" {
		t.Fatalf("got %q, want caller's array unchanged", got)
	}
}

func TestEval_RefBoxedArrayMutatesInPlace(t *testing.T) {
	got := runCapture(t, `struct Box
  arr: int[3]
end
func zeroFirst(b: ref Box) -> void
  b.arr[0] = 0
end
let b: Box = Box([1, 2, 3])
zeroFirst(ref b)
print(to_str(b.arr))`)
	if got != "[0, 2, 3]\n" {
		t.Fatalf("got %q, want first element zeroed through the ref wrapper", got)
	}
}

// --- built-ins: containers ---------------------------------------------------

func TestEval_DynamicArrayAppendPopContains(t *testing.T) {
	got := runCapture(t, `let a: int[] = []
append(a, 1)
append(a, 2)
append(a, 3)
print(to_str(contains(a, 2)))
print(to_str(pop(a)))
print(to_str(a))`)
	if got != "true\n3\n[1, 2]\n" {
		t.Fatalf("got %q, want %q", got, "true\n3\n[1, 2]\n")
	}
}

func TestEval_MapHasKeyKeysDelete(t *testing.T) {
	got := runCapture(t, `let m: map[string, int] = zeros(0)
m["a"] = 1
m["b"] = 2
print(to_str(has_key(m, "a")))
print(to_str(length(m)))
delete(m, "a")
print(to_str(has_key(m, "a")))`)
	if got != "true\n2\nfalse\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEval_ZerosZeroLength(t *testing.T) {
	got := runCapture(t, `let a: int[0] = zeros(0)
print(to_str(length(a)))`)
	if got != "0\n" {
		t.Fatalf("got %q, want %q", got, "0\n")
	}
}

// --- spec.md §8 testable property 8: short-circuit --------------------------

func TestEval_LogicalAndShortCircuits(t *testing.T) {
	got := runCapture(t, `func sideEffect() -> bool
  print("evaluated")
  return true
end
let r: bool = false & sideEffect()
print(to_str(r))`)
	if got != "false\n" {
		t.Fatalf("side-effecting operand of '&' must not run when lhs is false; got %q", got)
	}
}

func TestEval_LogicalOrShortCircuits(t *testing.T) {
	got := runCapture(t, `func sideEffect() -> bool
  print("evaluated")
  return true
end
let r: bool = true | sideEffect()
print(to_str(r))`)
	if got != "true\n" {
		t.Fatalf("side-effecting operand of '|' must not run when lhs is true; got %q", got)
	}
}

// --- spec.md §8 boundary cases: runtime errors -------------------------------

func TestEval_DivisionByZeroIsRuntimeError(t *testing.T) {
	err := runExpectErr(t, `let a: int = 1
let b: int = 0
print(to_str(a / b))`)
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got %T, want *RuntimeError", err)
	}
}

func TestEval_NegativeIndexIsRuntimeError(t *testing.T) {
	err := runExpectErr(t, `let a: int[3] = [1, 2, 3]
print(to_str(a[-1]))`)
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got %T, want *RuntimeError", err)
	}
}

func TestEval_OutOfBoundsIndexIsRuntimeError(t *testing.T) {
	err := runExpectErr(t, `let a: int[3] = [1, 2, 3]
print(to_str(a[3]))`)
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got %T, want *RuntimeError", err)
	}
}

func TestEval_MissingMapKeyOnReadIsRuntimeError(t *testing.T) {
	err := runExpectErr(t, `let m: map[string, int] = zeros(0)
print(to_str(m["missing"]))`)
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got %T, want *RuntimeError", err)
	}
}

func TestEval_NegativeStringIndexIsRuntimeError(t *testing.T) {
	err := runExpectErr(t, `let s: string = "abc"
print(s[-1])`)
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("got %T, want *RuntimeError", err)
	}
}

// --- spec.md testable property 7: reference equality -----------------------

func TestEval_RefEquality(t *testing.T) {
	got := runCapture(t, `struct C
  n: int
end
let x: C = C(1)
let r1: ref C = ref x
let r2: ref C = ref x
print(to_str(r1 == r2))
print(to_str(r1 == null))
r1 = null
print(to_str(r1 == null))`)
	if got != "true\nfalse\ntrue\n" {
		t.Fatalf("got %q, want %q", got, "true\nfalse\ntrue\n")
	}
}

// --- arithmetic / string semantics ------------------------------------------

func TestEval_StringConcatenation(t *testing.T) {
	got := runCapture(t, `let s: string = "foo" + "bar"
print(s)`)
	if got != "foobar\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEval_ModSignFollowsDividend(t *testing.T) {
	got := runCapture(t, `print(to_str(-7 % 2))`)
	if got != "-1\n" {
		t.Fatalf("got %q, want %q (mod sign follows the dividend)", got, "-1\n")
	}
}

func TestEval_WhileBreak(t *testing.T) {
	got := runCapture(t, `let i: int = 0
while true do
  i = i + 1
  if i == 3 then
    break
  end
end
print(to_str(i))`)
	if got != "3\n" {
		t.Fatalf("got %q, want %q", got, "3\n")
	}
}

func TestEval_StructToStrRendersFields(t *testing.T) {
	got := runCapture(t, `struct Point
  x: int
  y: int
end
let p: Point = Point(1, 2)
print(to_str(p))`)
	if got != "Point(x=1, y=2)\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEval_ToIntTruncatesTowardZero(t *testing.T) {
	got := runCapture(t, `print(to_str(to_int(3.9)))
print(to_str(to_int(-3.9)))`)
	if got != "3\n-3\n" {
		t.Fatalf("got %q, want %q", got, "3\n-3\n")
	}
}
