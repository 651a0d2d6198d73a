package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/chainer/pkg/chainer/kb"
	"github.com/cognicore/chainer/pkg/chainer/logic"
)

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}

	if comp.Logger == nil {
		t.Error("Should have logger")
	}
	if comp.KB == nil {
		t.Fatal("Should have knowledge base (empty)")
	}
	if facts, rules := comp.KB.Len(); facts != 0 || rules != 0 {
		t.Errorf("Expected empty KB, got %d facts %d rules", facts, rules)
	}
	if comp.Registry != nil {
		t.Error("Metrics registry should be nil when metrics are disabled")
	}
}

func TestLoaderNonExistentConfig(t *testing.T) {
	loader := Loader{ConfigPath: "/nonexistent/chainer.yaml"}

	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent config")
	}
}

func TestLoaderNonExistentKnowledge(t *testing.T) {
	loader := Loader{KnowledgePaths: []string{"/nonexistent/blocks.kb"}}

	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent knowledge file")
	}
}

func TestLoaderBadLogLevelOverride(t *testing.T) {
	loader := Loader{LogLevel: "chatty"}

	if _, err := loader.Load(); err == nil {
		t.Error("Should error on invalid log level override")
	}
}

func TestLoaderValidFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// knowledge referenced from the config, relative to it
	kbPath := filepath.Join(tmpDir, "blocks.kb")
	os.WriteFile(kbPath, []byte("fact: (isa cube block)\nrule: ((isa ?x block) (on ?x table)) -> (grounded ?x)\n"), 0644)

	// knowledge given directly
	extraPath := filepath.Join(tmpDir, "extra.yaml")
	os.WriteFile(extraPath, []byte("facts:\n  - (on cube table)\n"), 0644)

	cfgPath := filepath.Join(tmpDir, "chainer.yaml")
	os.WriteFile(cfgPath, []byte("knowledge:\n  files: [blocks.kb]\nquery_cache_size: 16\nmetrics: true\n"), 0644)

	loader := Loader{
		ConfigPath:     cfgPath,
		KnowledgePaths: []string{extraPath},
		LogLevel:       "error",
	}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Valid files should load: %v", err)
	}

	if comp.Config.Log.Level != "error" {
		t.Errorf("Expected log level override, got %q", comp.Config.Log.Level)
	}
	if comp.Registry == nil {
		t.Error("Expected metrics registry when metrics are enabled")
	}

	answers, err := comp.KB.Ask(kb.NewFact("grounded", logic.Var("x")))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("Expected (grounded cube) to be derived across files, got %d answers", len(answers))
	}

	families, err := comp.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected knowledge base metrics to be registered")
	}
}
