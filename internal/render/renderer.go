// Package render walks an article's content blocks and produces the
// viewer-facing rendering, substituting locked placeholders for premium
// blocks the viewer is not entitled to see.
//
// The one hard correctness property here: a denied premium block's payload
// must never appear in the output, serialized or otherwise. The content
// source is expected to redact premium payloads server-side for under-tier
// requests already; this renderer is a second, defense-in-depth gate.
package render

import (
	"fmt"
	"log/slog"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/domain"
)

// NodeState classifies the outcome of rendering one block.
type NodeState string

const (
	// StateRendered means the block's real content is in the node.
	StateRendered NodeState = "rendered"
	// StateLocked means the viewer was denied and got a placeholder.
	StateLocked NodeState = "locked"
	// StateEmpty means the block could not be rendered (unknown kind,
	// missing payload) and contributes an empty node, not an abort.
	StateEmpty NodeState = "empty"
)

// Node is the rendering of a single content block.
// Exactly one of Block or Locked is set for rendered and locked nodes;
// empty nodes carry neither.
type Node struct {
	// Key is derived from the block's position so ordering and any
	// client-side rendering side effects stay stable across re-renders.
	Key    string             `json:"key"`
	State  NodeState          `json:"state"`
	Block  *domain.Block      `json:"block,omitempty"`
	Locked *LockedPlaceholder `json:"locked,omitempty"`
}

// LockedPlaceholder is the non-leaking substitute for a denied premium
// block. It carries a human-readable reason and upgrade affordance, and
// nothing derived from the gated payload.
type LockedPlaceholder struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	CallToAction string                `json:"call_to_action"`
	RequiredTier domain.MembershipTier `json:"required_tier"`
}

// tierDisplayNames are the reader-facing names used in locked placeholders.
var tierDisplayNames = map[domain.MembershipTier]string{
	domain.TierOne:   "Tier 1",
	domain.TierTwo:   "Tier 2",
	domain.TierThree: "Tier 3",
}

func newLockedPlaceholder(required domain.MembershipTier) *LockedPlaceholder {
	name := tierDisplayNames[required]
	if name == "" {
		name = "a paid membership"
	}
	return &LockedPlaceholder{
		Title:        "Members-only content",
		Description:  fmt.Sprintf("This section requires %s.", name),
		CallToAction: "Upgrade to keep reading",
		RequiredTier: required,
	}
}

// Renderer produces viewer-facing nodes from content blocks.
// It holds no per-block cache: every call re-evaluates access from scratch,
// so a tier change mid-session takes effect on the next render.
type Renderer struct {
	evaluator *access.Evaluator
	logger    *slog.Logger
}

// NewRenderer creates a renderer backed by the given evaluator.
func NewRenderer(evaluator *access.Evaluator, logger *slog.Logger) *Renderer {
	return &Renderer{
		evaluator: evaluator,
		logger:    logger,
	}
}

// RenderArticle renders every block of the article in document order.
// The output always has exactly one node per input block; locked and empty
// blocks count as one node each. An empty article yields an empty slice.
func (r *Renderer) RenderArticle(article *domain.Article, viewer domain.Viewer) []Node {
	nodes := make([]Node, 0, len(article.Content))
	for i := range article.Content {
		key := fmt.Sprintf("b%d", i)
		nodes = append(nodes, r.renderBlock(&article.Content[i], viewer, key))
	}
	return nodes
}

// RenderBlock renders a single block for the viewer.
func (r *Renderer) RenderBlock(block *domain.Block, viewer domain.Viewer) Node {
	return r.renderBlock(block, viewer, "b0")
}

func (r *Renderer) renderBlock(block *domain.Block, viewer domain.Viewer, key string) Node {
	if block == nil {
		return Node{Key: key, State: StateEmpty}
	}

	if !block.Kind.IsKnown() {
		// Unknown kinds are isolated per block: render nothing, keep going.
		if r.logger != nil {
			r.logger.Warn("unknown content block kind, rendering nothing",
				"kind", string(block.Kind),
				"key", key,
			)
		}
		return Node{Key: key, State: StateEmpty}
	}

	if block.Kind != domain.BlockPremium {
		return Node{Key: key, State: StateRendered, Block: block}
	}

	return r.renderPremium(block, viewer, key)
}

// renderPremium gates a premium block and, when allowed, renders its payload
// under a derived key. The denied path constructs the placeholder without
// ever touching block.Payload.
func (r *Renderer) renderPremium(block *domain.Block, viewer domain.Viewer, key string) Node {
	required := block.EffectiveRequiredTier()

	if !r.evaluator.CanAccessTier(viewer, required) {
		return Node{Key: key, State: StateLocked, Locked: newLockedPlaceholder(required)}
	}

	payload := block.Payload
	if payload == nil {
		if r.logger != nil {
			r.logger.Warn("premium block has no payload", "key", key)
		}
		return Node{Key: key, State: StateEmpty}
	}

	// Premium nesting is exactly one level. A premium payload inside a
	// premium block violates that invariant, and we treat it as content the
	// viewer is not authorized for rather than trusting malformed nesting.
	if payload.Kind == domain.BlockPremium {
		if r.logger != nil {
			r.logger.Warn("premium block nested inside premium block, locking",
				"key", key,
			)
		}
		return Node{Key: key, State: StateLocked, Locked: newLockedPlaceholder(payload.EffectiveRequiredTier())}
	}

	return r.renderBlock(payload, viewer, key+".inner")
}
