// Package reader turns the textual knowledge format into kb items.
//
// Format, one item per line:
//
//	# comment
//	fact: (isa cube block)
//	rule: ((isa ?x block) (on ?x table)) -> (grounded ?x)
//
// Terms starting with '?' are variables. Text after '#' is ignored.
// The "fact:" / "rule:" prefixes are optional; a line containing "->" is
// read as a rule.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cognicore/chainer/pkg/chainer/internalerr"
	"github.com/cognicore/chainer/pkg/chainer/kb"
	"github.com/cognicore/chainer/pkg/chainer/logic"
)

const arrow = "->"

// Parse reads items from r, one per line
func Parse(r io.Reader) ([]kb.Item, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0

	var items []kb.Item
	for scanner.Scan() {
		lineNum++
		line := stripComment(scanner.Text())

		// Skip empty lines and comments
		if line == "" {
			continue
		}

		item, err := ParseItem(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	return items, scanner.Err()
}

// LoadFile reads a knowledge file. Files ending in .yaml or .yml are read
// with LoadYAML, anything else with Parse.
func LoadFile(path string) ([]kb.Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ParseItem parses a single fact or rule
func ParseItem(s string) (kb.Item, error) {
	s = strings.TrimSpace(s)

	switch {
	case hasPrefixFold(s, "fact:"):
		st, err := ParseStatement(s[len("fact:"):])
		if err != nil {
			return nil, err
		}
		return kb.Fact{Statement: st}, nil
	case hasPrefixFold(s, "rule:"):
		return ParseRule(s[len("rule:"):])
	case strings.Contains(s, arrow):
		return ParseRule(s)
	}

	st, err := ParseStatement(s)
	if err != nil {
		return nil, err
	}
	return kb.Fact{Statement: st}, nil
}

// ParseStatement parses "(pred t1 t2 ...)"
func ParseStatement(s string) (logic.Statement, error) {
	toks, err := tokenize(s)
	if err != nil {
		return logic.Statement{}, err
	}
	p := &parser{toks: toks}

	st, err := p.statement()
	if err != nil {
		return logic.Statement{}, err
	}
	if !p.done() {
		return logic.Statement{}, p.errorf("unexpected %q after statement", p.peek())
	}
	return st, nil
}

// ParseRule parses "((lhs1) (lhs2) ...) -> (rhs)"
func ParseRule(s string) (kb.Rule, error) {
	toks, err := tokenize(s)
	if err != nil {
		return kb.Rule{}, err
	}
	p := &parser{toks: toks}

	if err := p.expect("("); err != nil {
		return kb.Rule{}, err
	}

	var lhs []logic.Statement
	for p.peek() == "(" {
		st, err := p.statement()
		if err != nil {
			return kb.Rule{}, err
		}
		lhs = append(lhs, st)
	}
	if len(lhs) == 0 {
		return kb.Rule{}, p.errorf("rule needs at least one condition")
	}
	if err := p.expect(")"); err != nil {
		return kb.Rule{}, err
	}
	if err := p.expect(arrow); err != nil {
		return kb.Rule{}, err
	}

	rhs, err := p.statement()
	if err != nil {
		return kb.Rule{}, err
	}
	if !p.done() {
		return kb.Rule{}, p.errorf("unexpected %q after rule", p.peek())
	}

	return kb.Rule{LHS: lhs, RHS: rhs}, nil
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *parser) next() string {
	tok := p.peek()
	if tok != "" {
		p.pos++
	}
	return tok
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) expect(tok string) error {
	if got := p.next(); got != tok {
		if got == "" {
			return p.errorf("expected %q, got end of input", tok)
		}
		return p.errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", internalerr.ErrParse, fmt.Sprintf(format, args...))
}

func (p *parser) statement() (logic.Statement, error) {
	if err := p.expect("("); err != nil {
		return logic.Statement{}, err
	}

	pred := p.next()
	switch {
	case pred == "" || pred == "(" || pred == ")" || pred == arrow:
		return logic.Statement{}, p.errorf("missing predicate")
	case strings.HasPrefix(pred, "?"):
		return logic.Statement{}, p.errorf("predicate %q cannot be a variable", pred)
	}

	var terms []logic.Term
	for {
		tok := p.next()
		switch tok {
		case ")":
			return logic.NewStatement(pred, terms...), nil
		case "":
			return logic.Statement{}, p.errorf("missing ')' in (%s", pred)
		case "(", arrow:
			return logic.Statement{}, p.errorf("unexpected %q inside (%s", tok, pred)
		}

		if strings.HasPrefix(tok, "?") {
			if len(tok) == 1 {
				return logic.Statement{}, p.errorf("variable without a name in (%s", pred)
			}
			terms = append(terms, logic.Var(tok[1:]))
			continue
		}
		terms = append(terms, logic.Const(tok))
	}
}

// tokenize splits s into "(", ")", "->" and atoms. Commas count as space.
func tokenize(s string) ([]string, error) {
	var toks []string
	var atom strings.Builder

	flush := func() {
		if atom.Len() > 0 {
			toks = append(toks, atom.String())
			atom.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == '-' && i+1 < len(runes) && runes[i+1] == '>':
			flush()
			toks = append(toks, arrow)
			i++
		case unicode.IsSpace(r) || r == ',':
			flush()
		case r == '#':
			return nil, fmt.Errorf("%w: unexpected '#'", internalerr.ErrParse)
		default:
			atom.WriteRune(r)
		}
	}
	flush()

	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty input", internalerr.ErrParse)
	}
	return toks, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
