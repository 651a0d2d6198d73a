package main

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/chainer/pkg/chainer/export"
	"github.com/cognicore/chainer/pkg/chainer/kb"
	"github.com/cognicore/chainer/pkg/chainer/reader"
)

const helpText = `Commands:
  assert <item>     add a fact "(p a)" or rule "((p ?x)) -> (q ?x)"
  retract <item>    remove an item; dependents cascade
  ask <statement>   list facts matching a pattern, e.g. (p ?x)
  why <item>        show what supports an item
  dump              list every fact and rule
  stats             item counts (and metrics, if enabled)
  help              this text
  quit              leave the session
`

// session executes REPL commands against one knowledge base
type session struct {
	kb       *kb.KnowledgeBase
	registry *prometheus.Registry
}

// exec runs one command line and returns its printable result
func (s *session) exec(line string) (string, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "assert":
		item, err := reader.ParseItem(arg)
		if err != nil {
			return "", err
		}
		if err := s.kb.Assert(item); err != nil {
			return "", err
		}
		return "ok\n", nil

	case "retract":
		item, err := reader.ParseItem(arg)
		if err != nil {
			return "", err
		}
		e, ok := s.kb.Lookup(item)
		if !ok {
			return "not found\n", nil
		}
		if !e.Asserted {
			return "not asserted (derived only), nothing to retract\n", nil
		}
		if err := s.kb.Retract(item); err != nil {
			return "", err
		}
		if _, ok := s.kb.Lookup(item); ok {
			return "no longer asserted, still derived\n", nil
		}
		return "ok\n", nil

	case "ask":
		st, err := reader.ParseStatement(arg)
		if err != nil {
			return "", err
		}
		answers, err := s.kb.Ask(kb.Fact{Statement: st})
		if err != nil {
			return "", err
		}
		return formatAnswers(answers), nil

	case "why":
		item, err := reader.ParseItem(arg)
		if err != nil {
			return "", err
		}
		return s.kb.Explain(item)

	case "dump":
		var b strings.Builder
		for _, e := range append(s.kb.Facts(), s.kb.Rules()...) {
			b.WriteString(export.Line(e))
			b.WriteByte('\n')
		}
		return b.String(), nil

	case "stats":
		return s.stats()

	case "help", "?":
		return helpText, nil
	}

	return "", fmt.Errorf("unknown command %q (try 'help')", cmd)
}

func formatAnswers(answers []kb.Answer) string {
	if len(answers) == 0 {
		return "no\n"
	}

	var b strings.Builder
	for _, a := range answers {
		if len(a.Bindings) == 0 {
			fmt.Fprintf(&b, "yes: %s\n", a.Fact.Item)
			continue
		}
		fmt.Fprintf(&b, "%s  [%s]\n", a.Bindings, a.Fact.Item)
	}
	return b.String()
}

func (s *session) stats() (string, error) {
	facts, rules := s.kb.Len()
	out := fmt.Sprintf("facts: %d\nrules: %d\n", facts, rules)
	if s.registry == nil {
		return out, nil
	}

	families, err := s.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	var b strings.Builder
	b.WriteString(out)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(&b, "%s: %g\n", name, v)
		}
	}
	return b.String(), nil
}
