package logic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchBindsPatternVariables(t *testing.T) {
	pattern := NewStatement("isa", Var("x"), Const("block"))
	target := NewStatement("isa", Const("cube"), Const("block"))

	b, ok := Match(pattern, target)
	if !ok {
		t.Fatal("Expected match")
	}

	want := Bindings{{Variable: "x", Value: Const("cube")}}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchBindsTargetVariables(t *testing.T) {
	pattern := NewStatement("on", Const("a"), Const("b"))
	target := NewStatement("on", Var("x"), Const("b"))

	b, ok := Match(pattern, target)
	if !ok {
		t.Fatal("Expected match")
	}
	if v, _ := b.Lookup("x"); v != Const("a") {
		t.Errorf("Expected ?x bound to a, got %v", v)
	}
}

func TestMatchFailures(t *testing.T) {
	tests := []struct {
		name    string
		pattern Statement
		target  Statement
	}{
		{"predicate", NewStatement("p", Const("a")), NewStatement("q", Const("a"))},
		{"arity", NewStatement("p", Const("a")), NewStatement("p", Const("a"), Const("b"))},
		{"constant", NewStatement("p", Const("a")), NewStatement("p", Const("b"))},
		{"inconsistent", NewStatement("p", Var("x"), Var("x")), NewStatement("p", Const("a"), Const("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if b, ok := Match(tt.pattern, tt.target); ok {
				t.Errorf("Expected no match, got %v", b)
			}
		})
	}
}

func TestMatchRepeatedVariable(t *testing.T) {
	pattern := NewStatement("p", Var("x"), Var("x"))

	if _, ok := Match(pattern, NewStatement("p", Const("a"), Const("a"))); !ok {
		t.Error("Expected (p ?x ?x) to match (p a a)")
	}
}

func TestMatchZeroArity(t *testing.T) {
	b, ok := Match(NewStatement("raining"), NewStatement("raining"))
	if !ok {
		t.Fatal("Expected match")
	}
	if b == nil || len(b) != 0 {
		t.Errorf("Expected empty non-nil bindings, got %#v", b)
	}
}

func TestInstantiate(t *testing.T) {
	s := NewStatement("grounded", Var("x"), Var("y"))
	b := Bindings{{Variable: "x", Value: Const("cube")}}

	got := Instantiate(s, b)
	want := NewStatement("grounded", Const("cube"), Var("y"))
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// input untouched
	if !s.Terms[0].Variable {
		t.Error("Instantiate mutated its input")
	}
}

func TestKeyIgnoresVariableNames(t *testing.T) {
	a := Key(NewStatement("p", Var("x"), Const("a")), NewStatement("q", Var("x")))
	b := Key(NewStatement("p", Var("y"), Const("a")), NewStatement("q", Var("y")))
	if a != b {
		t.Errorf("Expected alpha-equivalent keys to match: %s vs %s", a, b)
	}

	c := Key(NewStatement("p", Var("x"), Const("a")), NewStatement("q", Var("z")))
	if a == c {
		t.Error("Expected different variable sharing to change the key")
	}
}

func TestKeyDistinguishesConstantsFromVariables(t *testing.T) {
	if Key(NewStatement("p", Const("x"))) == Key(NewStatement("p", Var("x"))) {
		t.Error("Constant and variable must not share a key")
	}
}

func TestStatementString(t *testing.T) {
	s := NewStatement("isa", Var("x"), Const("block"))
	if got := s.String(); got != "(isa ?x block)" {
		t.Errorf("Unexpected rendering: %s", got)
	}
	if s.IsGround() {
		t.Error("Statement with a variable is not ground")
	}
	if diff := cmp.Diff([]string{"x"}, s.Variables()); diff != "" {
		t.Errorf("Variables mismatch (-want +got):\n%s", diff)
	}
}

func TestExactKeyKeepsSpelling(t *testing.T) {
	distinct := []Statement{
		NewStatement("p", Var("x")),
		NewStatement("p", Var("y")),
		NewStatement("p", Const("?x")),
		NewStatement("p", Const("a b")),
		NewStatement("p", Const("a"), Const("b")),
	}

	seen := make(map[string]Statement)
	for _, s := range distinct {
		k := ExactKey(s)
		if prev, ok := seen[k]; ok {
			t.Errorf("%#v and %#v share exact key %s", prev, s, k)
		}
		seen[k] = s
	}

	if ExactKey(NewStatement("p", Var("x"))) != ExactKey(NewStatement("p", Var("x"))) {
		t.Error("Identical statements should share an exact key")
	}
}

func TestRenameApart(t *testing.T) {
	s := NewStatement("p", Var("x"), Var("x_1"), Var("y"), Var("x"))
	taken := map[string]bool{"x": true}

	got := RenameApart(s, taken)

	want := NewStatement("p", Var("x_2"), Var("x_1"), Var("y"), Var("x_2"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenameApart mismatch (-want +got):\n%s", diff)
	}
	if s.Terms[0] != Var("x") {
		t.Error("RenameApart modified its input")
	}
}

func TestRenameApartMakesMatchNameIndependent(t *testing.T) {
	lhs := NewStatement("p", Const("a"), Var("x"))
	taken := VariableSet(lhs)

	for _, name := range []string{"x", "z"} {
		fact := NewStatement("p", Var(name), Const("b"))

		b, ok := Match(RenameApart(fact, taken), lhs)
		if !ok {
			t.Fatalf("(p ?%s b) should match (p a ?x)", name)
		}
		if v, _ := b.Lookup("x"); v != Const("b") {
			t.Errorf("(p ?%s b): expected ?x bound to b, got %v", name, b)
		}
	}
}
