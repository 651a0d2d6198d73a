// Package logic holds the statement model shared by the knowledge base and
// the reader: flat statements over constants and variables, plus the
// match/instantiate primitives used for forward chaining.
package logic

import (
	"strconv"
	"strings"
)

// Term is a single statement argument: a constant or a variable.
type Term struct {
	Name     string
	Variable bool
}

// Const returns a constant term
func Const(name string) Term {
	return Term{Name: name}
}

// Var returns a variable term. The name is given without the leading '?'.
func Var(name string) Term {
	return Term{Name: name, Variable: true}
}

func (t Term) String() string {
	if t.Variable {
		return "?" + t.Name
	}
	return t.Name
}

// Statement is a predicate applied to an ordered list of terms,
// e.g. (isa cube block)
type Statement struct {
	Predicate string
	Terms     []Term
}

// NewStatement builds a statement from a predicate and its terms
func NewStatement(predicate string, terms ...Term) Statement {
	return Statement{Predicate: predicate, Terms: terms}
}

// String renders the statement in reader syntax: (pred a ?x)
func (s Statement) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(s.Predicate)
	for _, t := range s.Terms {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports exact structural equality, variable names included.
func (s Statement) Equal(o Statement) bool {
	if s.Predicate != o.Predicate || len(s.Terms) != len(o.Terms) {
		return false
	}
	for i := range s.Terms {
		if s.Terms[i] != o.Terms[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no memory with s.
func (s Statement) Clone() Statement {
	terms := make([]Term, len(s.Terms))
	copy(terms, s.Terms)
	return Statement{Predicate: s.Predicate, Terms: terms}
}

// IsGround reports whether the statement contains no variables.
func (s Statement) IsGround() bool {
	for _, t := range s.Terms {
		if t.Variable {
			return false
		}
	}
	return true
}

// Variables returns the distinct variable names in order of first occurrence.
func (s Statement) Variables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range s.Terms {
		if t.Variable && !seen[t.Name] {
			seen[t.Name] = true
			out = append(out, t.Name)
		}
	}
	return out
}

// Key returns a canonical structural key for a sequence of statements.
// Variables are numbered by first occurrence across the whole sequence, so
// two sequences that differ only in variable naming share a key.
func Key(stmts ...Statement) string {
	var b strings.Builder
	vars := make(map[string]int)
	for i, s := range stmts {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(strconv.Quote(s.Predicate))
		b.WriteByte('(')
		for j, t := range s.Terms {
			if j > 0 {
				b.WriteByte(',')
			}
			if !t.Variable {
				b.WriteString(strconv.Quote(t.Name))
				continue
			}
			n, ok := vars[t.Name]
			if !ok {
				n = len(vars)
				vars[t.Name] = n
			}
			b.WriteByte('?')
			b.WriteString(strconv.Itoa(n))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ExactKey encodes statements without canonicalizing variables: two
// sequences share a key only if they are spelled identically.
func ExactKey(stmts ...Statement) string {
	var b strings.Builder
	for i, s := range stmts {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(strconv.Quote(s.Predicate))
		b.WriteByte('(')
		for j, t := range s.Terms {
			if j > 0 {
				b.WriteByte(',')
			}
			if t.Variable {
				b.WriteByte('?')
			}
			b.WriteString(strconv.Quote(t.Name))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// VariableSet returns the names of all variables used in stmts.
func VariableSet(stmts ...Statement) map[string]bool {
	set := make(map[string]bool)
	for _, s := range stmts {
		for _, t := range s.Terms {
			if t.Variable {
				set[t.Name] = true
			}
		}
	}
	return set
}

// RenameApart returns a copy of s in which every variable named in taken is
// replaced by a fresh name (name_1, name_2, ...) found neither in taken nor
// in s. Other variables keep their names.
func RenameApart(s Statement, taken map[string]bool) Statement {
	out := s.Clone()
	used := VariableSet(s)
	renames := make(map[string]string)

	for i, t := range out.Terms {
		if !t.Variable || !taken[t.Name] {
			continue
		}
		fresh, ok := renames[t.Name]
		if !ok {
			for n := 1; ; n++ {
				fresh = t.Name + "_" + strconv.Itoa(n)
				if !taken[fresh] && !used[fresh] {
					break
				}
			}
			used[fresh] = true
			renames[t.Name] = fresh
		}
		out.Terms[i] = Var(fresh)
	}
	return out
}
