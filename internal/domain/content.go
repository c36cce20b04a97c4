package domain

// BlockKind identifies the variant of a content block.
// The set is closed: renderers must match exhaustively and treat anything
// outside it as an unknown block, not a crash and not a full-content leak.
type BlockKind string

const (
	// BlockParagraph is a plain text paragraph.
	BlockParagraph BlockKind = "paragraph"
	// BlockHeading is a section heading with a level.
	BlockHeading BlockKind = "heading"
	// BlockImage is an image with source and alt text.
	BlockImage BlockKind = "image"
	// BlockQuote is a quotation with optional attribution.
	BlockQuote BlockKind = "quote"
	// BlockCode is a code sample with optional language.
	BlockCode BlockKind = "code"
	// BlockList is an ordered or unordered list of items.
	BlockList BlockKind = "list"
	// BlockEmbed is an external embed referenced by URL.
	BlockEmbed BlockKind = "embed"
	// BlockCallout is a highlighted note with a style.
	BlockCallout BlockKind = "callout"
	// BlockDivider is a horizontal separator with no payload.
	BlockDivider BlockKind = "divider"
	// BlockPremium wraps exactly one nested block behind a tier requirement.
	// It is the single gating variant; every other kind is self-contained.
	BlockPremium BlockKind = "premium"
)

// knownBlockKinds is the closed set of renderable kinds.
var knownBlockKinds = map[BlockKind]bool{
	BlockParagraph: true,
	BlockHeading:   true,
	BlockImage:     true,
	BlockQuote:     true,
	BlockCode:      true,
	BlockList:      true,
	BlockEmbed:     true,
	BlockCallout:   true,
	BlockDivider:   true,
	BlockPremium:   true,
}

// IsKnown reports whether k is one of the closed set of block kinds.
func (k BlockKind) IsKnown() bool {
	return knownBlockKinds[k]
}

// Block is one renderable unit of an article.
// It is a tagged union: Kind selects the variant and determines which of the
// remaining fields are meaningful. Fields irrelevant to a kind are left zero.
type Block struct {
	Kind BlockKind `json:"kind"`

	// Text carries the body for paragraph, heading, quote, code, and callout.
	Text string `json:"text,omitempty"`

	// Level is the heading level (1-6), heading only.
	Level int `json:"level,omitempty"`

	// Language is the syntax highlighting hint, code only.
	Language string `json:"language,omitempty"`

	// URL is the source for image and embed blocks.
	URL string `json:"url,omitempty"`

	// Alt is the image alt text.
	Alt string `json:"alt,omitempty"`

	// Caption is the image caption.
	Caption string `json:"caption,omitempty"`

	// Attribution credits the source of a quote.
	Attribution string `json:"attribution,omitempty"`

	// Items are the entries of a list block.
	Items []string `json:"items,omitempty"`

	// Ordered selects numbered vs. bulleted lists.
	Ordered bool `json:"ordered,omitempty"`

	// Provider names the embed source (e.g. "youtube").
	Provider string `json:"provider,omitempty"`

	// Style selects the callout presentation (e.g. "info", "warning").
	Style string `json:"style,omitempty"`

	// RequiredTier is the tier needed to view a premium block's payload.
	// Empty means the lowest paid tier.
	RequiredTier MembershipTier `json:"required_tier,omitempty"`

	// Payload is the single block wrapped by a premium block.
	// Nesting is exactly one level: a payload must not itself be premium.
	Payload *Block `json:"payload,omitempty"`
}

// EffectiveRequiredTier returns the tier a premium block demands.
// Content ingested without an explicit tier defaults to the lowest paid
// tier, matching how inline premium gating behaved before the tier field
// became explicit.
func (b *Block) EffectiveRequiredTier() MembershipTier {
	if !b.RequiredTier.IsValid() || b.RequiredTier == TierFree {
		return TierOne
	}
	return b.RequiredTier
}

// IsPremium reports whether the block is the gating variant.
func (b *Block) IsPremium() bool {
	return b.Kind == BlockPremium
}
