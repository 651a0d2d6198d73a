// Package kb implements a forward-chaining knowledge base with truth
// maintenance.
//
// Asserting a fact pairs it with every stored rule (and a rule with every
// stored fact). Each pair whose fact matches the rule's first conjunct yields
// either a new fact (single-conjunct rule) or a new, shorter rule; derived
// items are asserted in turn until nothing new follows. Every derived item
// records the (fact, rule) pairs that produced it, and retraction walks those
// links backwards: an item loses the pairs that referenced the retracted item
// and is removed itself once it is neither asserted nor supported.
//
// Equal items are stored once. Facts compare by statement and rules by
// (lhs, rhs), with variables compared by position rather than name.
package kb

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/chainer/pkg/chainer/internalerr"
	"github.com/cognicore/chainer/pkg/chainer/logic"
)

// Answer is one Ask result: the bindings of a match and the fact matched
type Answer struct {
	Bindings logic.Bindings
	Fact     Entry
}

// pending is a (fact, rule) pair waiting for an inference step
type pending struct {
	fact ID
	rule ID
}

// KnowledgeBase stores canonical facts and rules with their justifications.
// It is safe for concurrent use; every assert and retract cascade runs under
// one write lock.
type KnowledgeBase struct {
	mu      sync.RWMutex
	records map[ID]*record
	index   map[string]ID
	facts   []ID
	rules   []ID
	queue   []pending

	ie      engine
	entropy *ulid.MonotonicEntropy
	log     *zap.Logger
	metrics *metrics
	cache   *lru.Cache[string, []Answer]
}

// New creates a knowledge base and asserts the initial facts, then rules.
func New(facts []Fact, rules []Rule, opts ...Option) (*KnowledgeBase, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := newMetrics(o.registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	kb := &KnowledgeBase{
		records: make(map[ID]*record),
		index:   make(map[string]ID),
		entropy: ulid.Monotonic(rand.Reader, 0),
		log:     o.logger,
		metrics: m,
	}

	if o.cacheSize > 0 {
		kb.cache, err = lru.New[string, []Answer](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("query cache: %w", err)
		}
	}

	for _, f := range facts {
		if err := kb.Assert(f); err != nil {
			return nil, err
		}
	}
	for _, r := range rules {
		if err := kb.Assert(r); err != nil {
			return nil, err
		}
	}

	return kb, nil
}

// Assert adds externally supplied knowledge and runs forward chaining to
// completion. Re-asserting a derived item marks it asserted.
func (kb *KnowledgeBase) Assert(item Item) error {
	item, err := normalize(item)
	if err != nil {
		return err
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.log.Info("Asserting", zap.Stringer("kind", item.Kind()), zap.Stringer("item", item))
	kb.metrics.asserted(item.Kind())

	kb.add(item, nil)
	kb.drain()
	kb.invalidate()
	return nil
}

// add stores item, or merges it into the equal stored item.
// A nil support marks an external assertion.
func (kb *KnowledgeBase) add(item Item, support *Support) *record {
	key := item.key()

	if id, ok := kb.index[key]; ok {
		rec := kb.records[id]
		if support == nil {
			if !rec.asserted {
				kb.log.Debug("Marking derived item asserted", zap.Stringer("item", rec.item))
			}
			rec.asserted = true
		} else if !rec.hasSupport(*support) {
			rec.supportedBy = append(rec.supportedBy, *support)
			kb.log.Debug("Adding support", zap.Stringer("item", rec.item), zap.Int("supports", len(rec.supportedBy)))
		}
		return rec
	}

	rec := &record{
		id:       ulid.MustNew(ulid.Now(), kb.entropy),
		item:     item,
		key:      key,
		asserted: support == nil,
	}
	if support != nil {
		rec.supportedBy = []Support{*support}
	}

	kb.log.Debug("Adding", zap.Stringer("kind", item.Kind()), zap.Stringer("item", item), zap.Stringer("id", rec.id))

	kb.records[rec.id] = rec
	kb.index[key] = rec.id

	switch item.Kind() {
	case KindFact:
		kb.facts = append(kb.facts, rec.id)
		for _, rid := range kb.rules {
			kb.queue = append(kb.queue, pending{fact: rec.id, rule: rid})
		}
	case KindRule:
		kb.rules = append(kb.rules, rec.id)
		for _, fid := range kb.facts {
			kb.queue = append(kb.queue, pending{fact: fid, rule: rec.id})
		}
	}
	kb.metrics.stored(item.Kind())

	return rec
}

// drain runs queued inference steps until none remain. Steps may enqueue
// more pairs; each (fact, rule) pair is enqueued once, by whichever of the
// two was stored last.
func (kb *KnowledgeBase) drain() {
	for len(kb.queue) > 0 {
		p := kb.queue[0]
		kb.queue = kb.queue[1:]

		f, r := kb.records[p.fact], kb.records[p.rule]
		if f == nil || r == nil {
			continue
		}
		kb.ie.step(f, r, kb)
	}
	kb.queue = nil
}

// Retract removes an asserted item. An item with no remaining support is
// removed together with everything that depended on it alone; an asserted
// item that is also derived is only demoted to derived. Retracting an item
// that is not stored, or one that is derived but not asserted, does nothing.
func (kb *KnowledgeBase) Retract(item Item) error {
	item, err := normalize(item)
	if err != nil {
		return err
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.log.Info("Retracting", zap.Stringer("kind", item.Kind()), zap.Stringer("item", item))

	id, ok := kb.index[item.key()]
	if !ok {
		kb.log.Debug("Retract target not stored", zap.Stringer("item", item))
		return nil
	}

	rec := kb.records[id]
	kb.metrics.retracted(rec.item.Kind())
	kb.retract(rec)
	kb.invalidate()
	return nil
}

func (kb *KnowledgeBase) retract(rec *record) {
	switch {
	case len(rec.supportedBy) == 0:
		kb.remove(rec)
	case rec.asserted:
		rec.asserted = false
		kb.metrics.demoted(rec.item.Kind())
		kb.log.Debug("Demoting to derived", zap.Stringer("item", rec.item), zap.Int("supports", len(rec.supportedBy)))
	}
}

// remove strips rec out of its dependents' justifications, then deletes it.
// Precondition: rec has no support left.
func (kb *KnowledgeBase) remove(rec *record) {
	rec.removing = true

	deps := make([]ID, 0, len(rec.supportsFacts)+len(rec.supportsRules))
	deps = append(deps, rec.supportsFacts...)
	deps = append(deps, rec.supportsRules...)
	for _, id := range deps {
		if dep := kb.records[id]; dep != nil {
			kb.retractDependent(dep, rec)
		}
	}

	delete(kb.records, rec.id)
	delete(kb.index, rec.key)
	if rec.item.Kind() == KindFact {
		kb.facts = removeID(kb.facts, rec.id)
	} else {
		kb.rules = removeID(kb.rules, rec.id)
	}

	kb.metrics.removed(rec.item.Kind())
	kb.log.Debug("Removed", zap.Stringer("kind", rec.item.Kind()), zap.Stringer("item", rec.item))
}

// retractDependent drops every justification of dep that references
// removed, and retracts dep once it is unsupported and not asserted.
func (kb *KnowledgeBase) retractDependent(dep, removed *record) {
	if dep.removing {
		return
	}

	var kept, stripped []Support
	for _, s := range dep.supportedBy {
		if s.Fact == removed.id || s.Rule == removed.id {
			stripped = append(stripped, s)
			continue
		}
		kept = append(kept, s)
	}
	dep.supportedBy = kept

	// The surviving half of each stripped pair no longer supports dep,
	// unless another pair still runs through it.
	for _, s := range stripped {
		for _, partner := range []ID{s.Fact, s.Rule} {
			if partner == removed.id || dep.reliesOn(partner) {
				continue
			}
			if p := kb.records[partner]; p != nil {
				kb.unlinkDependent(p, dep)
			}
		}
	}

	if len(dep.supportedBy) == 0 && !dep.asserted {
		kb.retract(dep)
	}
}

func (kb *KnowledgeBase) unlinkDependent(supporter, dep *record) {
	if dep.item.Kind() == KindFact {
		supporter.supportsFacts = removeID(supporter.supportsFacts, dep.id)
	} else {
		supporter.supportsRules = removeID(supporter.supportsRules, dep.id)
	}
}

// Ask matches a query fact against every stored fact, in insertion order.
// Only facts are valid queries; anything else yields no answers and an
// error wrapping internalerr.ErrInvalidQuery. Ask never mutates the
// knowledge base.
//
// Variables of a stored fact that clash with the query's are renamed apart
// before matching, so bindings may mention names such as ?x_1.
func (kb *KnowledgeBase) Ask(query Item) ([]Answer, error) {
	q, err := asQuery(query)
	if err != nil {
		kb.log.Warn("Invalid ask", zap.Error(err))
		kb.metrics.asked(false)
		return nil, err
	}
	kb.metrics.asked(true)

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	kb.log.Info("Asking", zap.Stringer("query", q.Statement))

	cacheKey := logic.ExactKey(q.Statement)
	if kb.cache != nil {
		if answers, ok := kb.cache.Get(cacheKey); ok {
			return copyAnswers(answers), nil
		}
	}

	taken := logic.VariableSet(q.Statement)
	var answers []Answer
	for _, id := range kb.facts {
		rec := kb.records[id]
		stored := logic.RenameApart(rec.fact().Statement, taken)
		if b, ok := logic.Match(q.Statement, stored); ok {
			answers = append(answers, Answer{Bindings: b, Fact: rec.entry()})
		}
	}

	if kb.cache != nil {
		kb.cache.Add(cacheKey, answers)
	}
	return copyAnswers(answers), nil
}

// copyAnswers deep-copies answers so callers never share memory with the cache
func copyAnswers(answers []Answer) []Answer {
	if len(answers) == 0 {
		return nil
	}
	out := make([]Answer, len(answers))
	for i, a := range answers {
		out[i] = Answer{
			Bindings: append(logic.Bindings{}, a.Bindings...),
			Fact:     a.Fact.clone(),
		}
	}
	return out
}

func asQuery(query Item) (Fact, error) {
	var f Fact
	switch q := query.(type) {
	case Fact:
		f = q
	case *Fact:
		if q == nil {
			return Fact{}, fmt.Errorf("%w: nil fact", internalerr.ErrInvalidQuery)
		}
		f = *q
	case nil:
		return Fact{}, fmt.Errorf("%w: nil query", internalerr.ErrInvalidQuery)
	default:
		return Fact{}, fmt.Errorf("%w: %T is not a fact", internalerr.ErrInvalidQuery, query)
	}
	if err := f.validate(); err != nil {
		return Fact{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidQuery, err)
	}
	return f, nil
}

func (kb *KnowledgeBase) invalidate() {
	if kb.cache != nil {
		kb.cache.Purge()
	}
}

// Facts returns snapshots of all stored facts in insertion order
func (kb *KnowledgeBase) Facts() []Entry {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.entries(kb.facts)
}

// Rules returns snapshots of all stored rules in insertion order
func (kb *KnowledgeBase) Rules() []Entry {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.entries(kb.rules)
}

func (kb *KnowledgeBase) entries(ids []ID) []Entry {
	out := make([]Entry, len(ids))
	for i, id := range ids {
		out[i] = kb.records[id].entry()
	}
	return out
}

// Lookup returns the stored item equal to item.
func (kb *KnowledgeBase) Lookup(item Item) (Entry, bool) {
	item, err := normalize(item)
	if err != nil {
		return Entry{}, false
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	id, ok := kb.index[item.key()]
	if !ok {
		return Entry{}, false
	}
	return kb.records[id].entry(), true
}

// Get returns the stored item with the given ID.
func (kb *KnowledgeBase) Get(id ID) (Entry, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	rec, ok := kb.records[id]
	if !ok {
		return Entry{}, false
	}
	return rec.entry(), true
}

// Len returns the number of stored facts and rules
func (kb *KnowledgeBase) Len() (facts, rules int) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.facts), len(kb.rules)
}

func (kb *KnowledgeBase) String() string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Knowledge Base:\n")
	for _, id := range kb.facts {
		b.WriteString(kb.records[id].item.String())
		b.WriteByte('\n')
	}
	for _, id := range kb.rules {
		b.WriteString(kb.records[id].item.String())
		b.WriteByte('\n')
	}
	return b.String()
}
