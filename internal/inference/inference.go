// Package inference implements the tiered natural-language inference
// chain: a rule-based engine, a local LLM tier (Ollama), and a cloud LLM
// tier (Anthropic), composed so the cheapest engine that can resolve a
// command always wins.
package inference

import (
	"context"

	"github.com/zeroclaw-io/fleetdiag/internal/protocol"
	"github.com/zeroclaw-io/fleetdiag/internal/tools"
)

// minConfidence is the floor an LLM-sourced ParsedIntent must clear to be
// trusted; below it the engine reports no result rather than a shaky one.
const minConfidence = 0.3

// Engine resolves free-text operator input into a ParsedIntent. A nil,
// nil return means this engine couldn't resolve the text with enough
// confidence, not that an error occurred — engines never return an error
// for "didn't understand it", only for truly unexpected failures the
// chain should still treat as a pass-through to the next tier.
type Engine interface {
	Parse(ctx context.Context, text string, catalog []tools.Info) (*protocol.ParsedIntent, error)
}

// TieredEngine is an Engine paired with the tier recorded when it wins.
type TieredEngine struct {
	Tier   protocol.InferenceTier
	Engine Engine
}

// Chain tries each engine in order and returns the first non-nil result,
// recording which tier produced it.
type Chain struct {
	engines []TieredEngine
}

// NewChain builds a Chain that tries engines in the given order.
func NewChain(engines ...TieredEngine) *Chain {
	return &Chain{engines: engines}
}

// Resolve runs the chain against text, returning the first engine's
// ParsedIntent with its tier attached, or (nil, "", nil) if every engine
// in the chain declined.
func (c *Chain) Resolve(ctx context.Context, text string, catalog []tools.Info) (*protocol.ParsedIntent, protocol.InferenceTier, error) {
	for _, te := range c.engines {
		intent, err := te.Engine.Parse(ctx, text, catalog)
		if err != nil {
			continue
		}
		if intent != nil {
			return intent, te.Tier, nil
		}
	}
	return nil, "", nil
}
