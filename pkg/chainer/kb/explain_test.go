package kb

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cognicore/chainer/pkg/chainer/internalerr"
)

func TestExplain(t *testing.T) {
	kb := chainKB(t)
	mustAssert(t, kb, fact("p", "a"))

	out, err := kb.Explain(fact("s", "a"))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	want := `fact (s a) DERIVED
  SUPPORTED BY
    fact (q a) DERIVED
      SUPPORTED BY
        fact (p a) ASSERTED
        rule ((p ?x)) -> (q ?x) ASSERTED
    rule ((q ?x)) -> (s ?x) ASSERTED
`
	if out != want {
		t.Errorf("Unexpected explanation:\n%s", out)
	}
}

func TestExplainCycle(t *testing.T) {
	kb := mustNew(t, nil, []Rule{
		rule(stmt("q", "?x"), stmt("p", "?x")),
		rule(stmt("p", "?x"), stmt("q", "?x")),
	})
	mustAssert(t, kb, fact("p", "a"))

	out, err := kb.Explain(fact("p", "a"))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !strings.Contains(out, "fact (p a) CYCLE") {
		t.Errorf("Expected the loop back to (p a) to be marked:\n%s", out)
	}
}

func TestExplainSharedSupport(t *testing.T) {
	kb := mustNew(t, nil, []Rule{
		rule(stmt("q", "?x"), stmt("p", "?x")),
		rule(stmt("r", "?x"), stmt("q", "?x")),
		rule(stmt("s", "?x"), stmt("q", "?x")),
		rule(stmt("t", "?x"), stmt("r", "?x"), stmt("s", "?x")),
	})
	mustAssert(t, kb, fact("p", "a"))

	out, err := kb.Explain(fact("t", "a"))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	// (q a) supports both (r a) and (s a) but is expanded once
	if n := strings.Count(out, "fact (q a) DERIVED"); n != 1 {
		t.Errorf("Expected (q a) expanded once, got %d times:\n%s", n, out)
	}
	if n := strings.Count(out, "fact (q a) (see above)"); n != 1 {
		t.Errorf("Expected one back-reference to (q a), got %d:\n%s", n, out)
	}
}

func TestExplainNotFound(t *testing.T) {
	kb := mustNew(t, nil, nil)

	_, err := kb.Explain(fact("p", "a"))
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	kb := mustNew(t, nil, []Rule{
		rule(stmt("q", "?x"), stmt("p", "?x")),
		rule(stmt("s", "?x"), stmt("q", "?x")),
	}, WithMetrics(reg))

	mustAssert(t, kb, fact("p", "a"))

	if got := testutil.ToFloat64(kb.metrics.asserts.WithLabelValues("rule")); got != 2 {
		t.Errorf("Expected 2 rule asserts, got %v", got)
	}
	if got := testutil.ToFloat64(kb.metrics.derivations.WithLabelValues("fact")); got != 2 {
		t.Errorf("Expected 2 fact derivations, got %v", got)
	}
	if got := testutil.ToFloat64(kb.metrics.items.WithLabelValues("fact")); got != 3 {
		t.Errorf("Expected 3 stored facts, got %v", got)
	}

	mustRetract(t, kb, fact("p", "a"))

	if got := testutil.ToFloat64(kb.metrics.removals.WithLabelValues("fact")); got != 3 {
		t.Errorf("Expected 3 fact removals, got %v", got)
	}
	if got := testutil.ToFloat64(kb.metrics.items.WithLabelValues("fact")); got != 0 {
		t.Errorf("Expected no stored facts, got %v", got)
	}

	kb.Ask(fact("p", "?x"))
	kb.Ask(rule(stmt("q", "?x"), stmt("p", "?x")))
	if got := testutil.ToFloat64(kb.metrics.asks); got != 2 {
		t.Errorf("Expected 2 asks, got %v", got)
	}
	if got := testutil.ToFloat64(kb.metrics.invalidAsks); got != 1 {
		t.Errorf("Expected 1 invalid ask, got %v", got)
	}
}

func TestMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	mustNew(t, nil, nil, WithMetrics(reg))

	if _, err := New(nil, nil, WithMetrics(reg)); err == nil {
		t.Error("Expected second registration on the same registry to fail")
	}
}
