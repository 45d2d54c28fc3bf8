// Package generator calls the reply-generation service on behalf of the
// gateway.
package generator

import (
	"context"
	"errors"
)

// ErrGenerator marks any failure to obtain a reply: transport errors,
// non-success statuses, undecodable responses and engine errors alike.
var ErrGenerator = errors.New("generator: reply generation failed") //nolint:gochecknoglobals // sentinel error

// Options tune a single generation request.
type Options struct {
	// Provider selects the reply engine; empty uses the responder's default.
	Provider string
	// Slow asks for a longer multi-sentence reply.
	Slow bool
}

// Reply is a generated answer.
type Reply struct {
	Text     string
	Metadata map[string]any
}

// Generator produces a reply for a tenant's message.
type Generator interface {
	Generate(ctx context.Context, tenantID, text string, opts Options) (*Reply, error)
}
