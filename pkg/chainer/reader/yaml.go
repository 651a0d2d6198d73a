package reader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/chainer/pkg/chainer/kb"
)

// Document is the YAML form of a knowledge file.
//
// Expected format:
//
//	facts:
//	  - (isa cube block)
//	rules:
//	  - ((isa ?x block)) -> (grounded ?x)
type Document struct {
	Facts []string `yaml:"facts"`
	Rules []string `yaml:"rules"`
}

// LoadYAML loads facts and rules from a YAML file
func LoadYAML(path string) ([]kb.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	items, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ParseYAML parses a YAML knowledge document. Facts come before rules in
// the result.
func ParseYAML(data []byte) ([]kb.Item, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	items := make([]kb.Item, 0, len(doc.Facts)+len(doc.Rules))
	for i, s := range doc.Facts {
		st, err := ParseStatement(s)
		if err != nil {
			return nil, fmt.Errorf("facts[%d]: %w", i, err)
		}
		items = append(items, kb.Fact{Statement: st})
	}
	for i, s := range doc.Rules {
		r, err := ParseRule(s)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		items = append(items, r)
	}

	return items, nil
}

// Split separates items into facts and rules, keeping their order.
func Split(items []kb.Item) ([]kb.Fact, []kb.Rule) {
	var facts []kb.Fact
	var rules []kb.Rule
	for _, it := range items {
		switch v := it.(type) {
		case kb.Fact:
			facts = append(facts, v)
		case kb.Rule:
			rules = append(rules, v)
		}
	}
	return facts, rules
}
