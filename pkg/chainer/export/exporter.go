package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/chainer/pkg/chainer/kb"
)

// ItemWriter persists rendered knowledge to a destination (file, stdout, etc.).
type ItemWriter interface {
	WriteItems(ctx context.Context, content string) error
}

// StreamWriter writes rendered knowledge to an io.Writer
type StreamWriter struct {
	W io.Writer
}

func (w StreamWriter) WriteItems(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(w.W, content)
	return err
}

// Exporter renders knowledge base entries in reader syntax, so the output
// can be loaded again with reader.Parse.
//
// The "derived" annotation is only a comment. Reloading a full export
// asserts every item, derived ones included, so they no longer disappear
// when their supports are retracted. Use AssertedOnly for output meant to
// be reloaded.
type Exporter struct {
	Writer ItemWriter

	// AssertedOnly skips derived items; reloading the output then
	// re-derives them.
	AssertedOnly bool
}

func (e *Exporter) Export(ctx context.Context, entries []kb.Entry) error {
	if e.Writer == nil {
		return fmt.Errorf("exporter: nil writer")
	}
	var b strings.Builder
	for _, entry := range entries {
		if e.AssertedOnly && !entry.Asserted {
			continue
		}
		b.WriteString(Line(entry))
		b.WriteByte('\n')
	}
	return e.Writer.WriteItems(ctx, b.String())
}

// ExportKB writes every fact, then every rule, of k.
func (e *Exporter) ExportKB(ctx context.Context, k *kb.KnowledgeBase) error {
	return e.Export(ctx, append(k.Facts(), k.Rules()...))
}

// Line renders one entry, e.g.
//
//	fact: (q a)  # derived, 1 support
func Line(entry kb.Entry) string {
	line := fmt.Sprintf("%s: %s", entry.Item.Kind(), entry.Item)

	n := len(entry.SupportedBy)
	switch {
	case entry.Asserted && n == 0:
		return line
	case entry.Asserted:
		return fmt.Sprintf("%s  # asserted, %d %s", line, n, plural(n))
	default:
		return fmt.Sprintf("%s  # derived, %d %s", line, n, plural(n))
	}
}

func plural(n int) string {
	if n == 1 {
		return "support"
	}
	return "supports"
}
