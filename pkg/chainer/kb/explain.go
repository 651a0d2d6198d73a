package kb

import (
	"fmt"
	"strings"

	"github.com/cognicore/chainer/pkg/chainer/internalerr"
)

// Explain renders the justification tree of a stored item:
//
//	fact (grounded cube) DERIVED
//	  SUPPORTED BY
//	    fact (isa cube block) ASSERTED
//	    rule ((isa ?x block)) -> (grounded ?x) ASSERTED
//
// Items already shown higher up the same branch are marked CYCLE and not
// expanded again. A derived item that appears a second time elsewhere in the
// tree is marked (see above) instead of being expanded twice.
func (kb *KnowledgeBase) Explain(item Item) (string, error) {
	item, err := normalize(item)
	if err != nil {
		return "", err
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	id, ok := kb.index[item.key()]
	if !ok {
		return "", fmt.Errorf("explain %s: %w", item, internalerr.ErrNotFound)
	}

	var b strings.Builder
	kb.explain(&b, kb.records[id], 0, make(map[ID]bool), make(map[ID]bool))
	return b.String(), nil
}

func (kb *KnowledgeBase) explain(b *strings.Builder, rec *record, depth int, onPath, shown map[ID]bool) {
	indent := strings.Repeat("  ", depth)

	status := "DERIVED"
	if rec.asserted {
		status = "ASSERTED"
	}

	if onPath[rec.id] {
		fmt.Fprintf(b, "%s%s %s CYCLE\n", indent, rec.item.Kind(), rec.item)
		return
	}
	if shown[rec.id] && len(rec.supportedBy) > 0 {
		fmt.Fprintf(b, "%s%s %s (see above)\n", indent, rec.item.Kind(), rec.item)
		return
	}
	fmt.Fprintf(b, "%s%s %s %s\n", indent, rec.item.Kind(), rec.item, status)
	shown[rec.id] = true

	onPath[rec.id] = true
	defer delete(onPath, rec.id)

	for _, s := range rec.supportedBy {
		fmt.Fprintf(b, "%s  SUPPORTED BY\n", indent)
		for _, id := range []ID{s.Fact, s.Rule} {
			if dep, ok := kb.records[id]; ok {
				kb.explain(b, dep, depth+2, onPath, shown)
			}
		}
	}
}
