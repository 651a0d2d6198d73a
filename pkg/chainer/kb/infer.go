package kb

import (
	"go.uber.org/zap"

	"github.com/cognicore/chainer/pkg/chainer/logic"
)

// engine performs single forward-chaining steps. It holds no state; all
// effects go through the knowledge base it is handed.
type engine struct{}

// step matches f against the first conjunct of r. On success it derives a
// fact (single-conjunct rule) or a rule over the remaining conjuncts, with
// (f, r) as its justification, and links the result back to f and r.
//
// The fact's variables are renamed apart from the rule's first, so the
// result does not depend on how either side spells its variables.
func (engine) step(f, r *record, kb *KnowledgeBase) {
	fact, rule := f.fact(), r.rule()

	taken := logic.VariableSet(rule.LHS...)
	for _, v := range rule.RHS.Variables() {
		taken[v] = true
	}

	b, ok := logic.Match(logic.RenameApart(fact.Statement, taken), rule.LHS[0])
	if !ok {
		return
	}

	kb.log.Debug("Inferring",
		zap.Stringer("fact", fact),
		zap.Stringer("rule", rule),
		zap.Stringer("bindings", b))

	support := Support{Fact: f.id, Rule: r.id}

	if len(rule.LHS) > 1 {
		lhs := make([]logic.Statement, 0, len(rule.LHS)-1)
		for _, s := range rule.LHS[1:] {
			lhs = append(lhs, logic.Instantiate(s, b))
		}
		derived := kb.add(Rule{LHS: lhs, RHS: logic.Instantiate(rule.RHS, b)}, &support)

		f.supportsRules = appendUnique(f.supportsRules, derived.id)
		r.supportsRules = appendUnique(r.supportsRules, derived.id)
		kb.metrics.derived(KindRule)
		return
	}

	derived := kb.add(Fact{Statement: logic.Instantiate(rule.RHS, b)}, &support)

	f.supportsFacts = appendUnique(f.supportsFacts, derived.id)
	r.supportsFacts = appendUnique(r.supportsFacts, derived.id)
	kb.metrics.derived(KindFact)
}
