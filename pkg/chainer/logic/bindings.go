package logic

import "strings"

// Binding associates a variable name with the term it is bound to
type Binding struct {
	Variable string
	Value    Term
}

// Bindings is an ordered binding set produced by Match.
type Bindings []Binding

// Lookup returns the term bound to the named variable.
func (b Bindings) Lookup(name string) (Term, bool) {
	for _, bd := range b {
		if bd.Variable == name {
			return bd.Value, true
		}
	}
	return Term{}, false
}

// Map returns the bindings as variable name -> rendered term.
func (b Bindings) Map() map[string]string {
	out := make(map[string]string, len(b))
	for _, bd := range b {
		out[bd.Variable] = bd.Value.String()
	}
	return out
}

func (b Bindings) String() string {
	parts := make([]string, len(b))
	for i, bd := range b {
		parts[i] = "?" + bd.Variable + ": " + bd.Value.String()
	}
	return strings.Join(parts, ", ")
}

// bind records name -> val, failing if name is already bound elsewhere
func (b Bindings) bind(name string, val Term) (Bindings, bool) {
	if cur, ok := b.Lookup(name); ok {
		return b, cur == val
	}
	return append(b, Binding{Variable: name, Value: val}), true
}

// Match unifies pattern against target term by term. A variable on either
// side is bound to the opposite term; two constants must be identical.
// Both sides share one binding set. The returned bindings are non-nil on
// success, even when nothing was bound.
func Match(pattern, target Statement) (Bindings, bool) {
	if pattern.Predicate != target.Predicate || len(pattern.Terms) != len(target.Terms) {
		return nil, false
	}

	b := Bindings{}
	for i, p := range pattern.Terms {
		t := target.Terms[i]
		var ok bool
		switch {
		case p.Variable:
			b, ok = b.bind(p.Name, t)
		case t.Variable:
			b, ok = b.bind(t.Name, p)
		default:
			ok = p.Name == t.Name
		}
		if !ok {
			return nil, false
		}
	}
	return b, true
}

// Instantiate substitutes bound variables in s. Unbound variables are kept.
func Instantiate(s Statement, b Bindings) Statement {
	terms := make([]Term, len(s.Terms))
	for i, t := range s.Terms {
		if t.Variable {
			if v, ok := b.Lookup(t.Name); ok {
				terms[i] = v
				continue
			}
		}
		terms[i] = t
	}
	return Statement{Predicate: s.Predicate, Terms: terms}
}
