package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosuda/parley/internal/responder"
)

// Local runs the responder engines in-process, for single-binary setups and
// tests.
type Local struct {
	registry *responder.Registry
}

var _ Generator = (*Local)(nil)

func NewLocal(registry *responder.Registry) *Local {
	return &Local{registry: registry}
}

func (l *Local) Generate(ctx context.Context, tenantID, text string, opts Options) (*Reply, error) {
	engine, err := l.registry.Select(opts.Provider)
	if err != nil {
		return nil, fmt.Errorf("generator.Local.Generate: %w: %w", ErrGenerator, err)
	}

	reply, err := engine.Reply(ctx, text, tenantID, opts.Slow)
	if err != nil {
		return nil, fmt.Errorf("generator.Local.Generate: %s: %w: %w", engine.Name(), ErrGenerator, err)
	}

	return &Reply{
		Text: reply,
		Metadata: map[string]any{
			"providedBy": engine.Name(),
			"wordCount":  len(strings.Fields(reply)),
		},
	}, nil
}
