package kb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/chainer/pkg/chainer/internalerr"
	"github.com/cognicore/chainer/pkg/chainer/logic"
)

// Kind distinguishes facts from rules
type Kind int

const (
	KindFact Kind = iota
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindFact:
		return "fact"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Item is a Fact or a Rule.
type Item interface {
	Kind() Kind
	String() string

	key() string
	validate() error
	clone() Item
}

// ID is the stable handle of a stored item. IDs are ULIDs drawn from a
// per-knowledge-base monotonic source, so they sort in insertion order.
type ID = ulid.ULID

// Support is one justification: the fact and rule a derived item came from
type Support struct {
	Fact ID
	Rule ID
}

// Fact wraps a single statement
type Fact struct {
	Statement logic.Statement
}

// NewFact builds a fact from a predicate and its terms
func NewFact(predicate string, terms ...logic.Term) Fact {
	return Fact{Statement: logic.NewStatement(predicate, terms...)}
}

func (f Fact) Kind() Kind     { return KindFact }
func (f Fact) String() string { return f.Statement.String() }
func (f Fact) key() string    { return logic.Key(f.Statement) }
func (f Fact) clone() Item    { return Fact{Statement: f.Statement.Clone()} }

func (f Fact) validate() error {
	return validateStatement(f.Statement)
}

// Rule is a conjunction of statements (LHS) implying a single statement (RHS).
type Rule struct {
	LHS []logic.Statement
	RHS logic.Statement
}

// NewRule builds a rule
func NewRule(lhs []logic.Statement, rhs logic.Statement) Rule {
	return Rule{LHS: lhs, RHS: rhs}
}

func (r Rule) Kind() Kind { return KindRule }

// String renders the rule in reader syntax: ((p ?x) (q ?x)) -> (r ?x)
func (r Rule) String() string {
	parts := make([]string, len(r.LHS))
	for i, s := range r.LHS {
		parts[i] = s.String()
	}
	return "(" + strings.Join(parts, " ") + ") -> " + r.RHS.String()
}

func (r Rule) key() string {
	stmts := make([]logic.Statement, 0, len(r.LHS)+1)
	stmts = append(stmts, r.LHS...)
	stmts = append(stmts, r.RHS)
	return strconv.Itoa(len(r.LHS)) + "|" + logic.Key(stmts...)
}

func (r Rule) clone() Item {
	lhs := make([]logic.Statement, len(r.LHS))
	for i, s := range r.LHS {
		lhs[i] = s.Clone()
	}
	return Rule{LHS: lhs, RHS: r.RHS.Clone()}
}

func (r Rule) validate() error {
	if len(r.LHS) == 0 {
		return fmt.Errorf("%w: rule has an empty left-hand side", internalerr.ErrInvalidInput)
	}
	for _, s := range r.LHS {
		if err := validateStatement(s); err != nil {
			return err
		}
	}
	return validateStatement(r.RHS)
}

func validateStatement(s logic.Statement) error {
	if s.Predicate == "" {
		return fmt.Errorf("%w: statement has no predicate", internalerr.ErrInvalidInput)
	}
	for i, t := range s.Terms {
		if t.Name == "" {
			return fmt.Errorf("%w: %s term %d is empty", internalerr.ErrInvalidInput, s.Predicate, i)
		}
	}
	return nil
}

// normalize dereferences pointer items, validates, and returns a private copy.
func normalize(item Item) (Item, error) {
	switch it := item.(type) {
	case *Fact:
		if it == nil {
			return nil, fmt.Errorf("%w: nil fact", internalerr.ErrInvalidInput)
		}
		item = *it
	case *Rule:
		if it == nil {
			return nil, fmt.Errorf("%w: nil rule", internalerr.ErrInvalidInput)
		}
		item = *it
	case nil:
		return nil, fmt.Errorf("%w: nil item", internalerr.ErrInvalidInput)
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return item.clone(), nil
}

// Entry is a read-only snapshot of a stored item and its justifications.
type Entry struct {
	ID            ID
	Item          Item
	Asserted      bool
	SupportedBy   []Support
	SupportsFacts []ID
	SupportsRules []ID
}

// Fact returns the entry's fact, if it holds one
func (e Entry) Fact() (Fact, bool) {
	f, ok := e.Item.(Fact)
	return f, ok
}

// Rule returns the entry's rule, if it holds one
func (e Entry) Rule() (Rule, bool) {
	r, ok := e.Item.(Rule)
	return r, ok
}

// record is the canonical stored form of an item
type record struct {
	id            ID
	item          Item
	key           string
	asserted      bool
	supportedBy   []Support
	supportsFacts []ID
	supportsRules []ID

	// set while the record is being physically removed; cascades skip it
	removing bool
}

func (r *record) fact() Fact { return r.item.(Fact) }
func (r *record) rule() Rule { return r.item.(Rule) }

func (r *record) entry() Entry {
	return Entry{
		ID:            r.id,
		Item:          r.item.clone(),
		Asserted:      r.asserted,
		SupportedBy:   append([]Support(nil), r.supportedBy...),
		SupportsFacts: append([]ID(nil), r.supportsFacts...),
		SupportsRules: append([]ID(nil), r.supportsRules...),
	}
}

func (e Entry) clone() Entry {
	e.Item = e.Item.clone()
	e.SupportedBy = append([]Support(nil), e.SupportedBy...)
	e.SupportsFacts = append([]ID(nil), e.SupportsFacts...)
	e.SupportsRules = append([]ID(nil), e.SupportsRules...)
	return e
}

func (r *record) hasSupport(s Support) bool {
	for _, have := range r.supportedBy {
		if have == s {
			return true
		}
	}
	return false
}

// reliesOn reports whether any remaining justification references id
func (r *record) reliesOn(id ID) bool {
	for _, s := range r.supportedBy {
		if s.Fact == id || s.Rule == id {
			return true
		}
	}
	return false
}

func appendUnique(ids []ID, id ID) []ID {
	for _, have := range ids {
		if have == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []ID, id ID) []ID {
	for i, have := range ids {
		if have == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
