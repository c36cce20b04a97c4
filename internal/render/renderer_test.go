package render

import (
	"encoding/json/v2"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() *Renderer {
	return NewRenderer(access.NewEvaluator(nil, nil), nil)
}

func freeViewer() domain.Viewer {
	return domain.Viewer{UserID: "user-free", Role: domain.RoleUser, Tier: domain.TierFree}
}

func tierViewer(tier domain.MembershipTier) domain.Viewer {
	return domain.Viewer{UserID: "user-paid", Role: domain.RoleUser, Tier: tier}
}

func premium(tier domain.MembershipTier, payload domain.Block) domain.Block {
	return domain.Block{Kind: domain.BlockPremium, RequiredTier: tier, Payload: &payload}
}

func paragraph(text string) domain.Block {
	return domain.Block{Kind: domain.BlockParagraph, Text: text}
}

func TestRenderArticle_FreeViewerGetsLockedPlaceholder(t *testing.T) {
	// [paragraph("A"), premium(tier1, paragraph("B")), paragraph("C")]
	// -> [Rendered("A"), Locked(tier1), Rendered("C")]
	article := &domain.Article{Content: []domain.Block{
		paragraph("A"),
		premium(domain.TierOne, paragraph("B")),
		paragraph("C"),
	}}

	nodes := newTestRenderer().RenderArticle(article, freeViewer())

	require.Len(t, nodes, 3)
	assert.Equal(t, StateRendered, nodes[0].State)
	assert.Equal(t, "A", nodes[0].Block.Text)
	assert.Equal(t, StateLocked, nodes[1].State)
	assert.Nil(t, nodes[1].Block)
	assert.Equal(t, domain.TierOne, nodes[1].Locked.RequiredTier)
	assert.Equal(t, StateRendered, nodes[2].State)
	assert.Equal(t, "C", nodes[2].Block.Text)
}

func TestRenderArticle_EntitledViewerSeesPayload(t *testing.T) {
	article := &domain.Article{Content: []domain.Block{
		premium(domain.TierOne, paragraph("B")),
	}}

	nodes := newTestRenderer().RenderArticle(article, tierViewer(domain.TierTwo))

	require.Len(t, nodes, 1)
	assert.Equal(t, StateRendered, nodes[0].State)
	assert.Equal(t, "B", nodes[0].Block.Text)
	assert.Equal(t, "b0.inner", nodes[0].Key, "nested payload gets a derived key")
}

func TestRenderArticle_OrderAndLengthPreserved(t *testing.T) {
	var blocks []domain.Block
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			blocks = append(blocks, premium(domain.TierThree, paragraph(fmt.Sprintf("gated-%d", i))))
		} else {
			blocks = append(blocks, paragraph(fmt.Sprintf("open-%d", i)))
		}
	}
	article := &domain.Article{Content: blocks}

	nodes := newTestRenderer().RenderArticle(article, freeViewer())

	require.Len(t, nodes, len(blocks))
	for i, node := range nodes {
		assert.Equal(t, fmt.Sprintf("b%d", i), node.Key)
		if i%3 == 0 {
			assert.Equal(t, StateLocked, node.State)
		} else {
			assert.Equal(t, fmt.Sprintf("open-%d", i), node.Block.Text)
		}
	}
}

func TestRenderArticle_EmptyArticle(t *testing.T) {
	nodes := newTestRenderer().RenderArticle(&domain.Article{}, freeViewer())

	assert.Empty(t, nodes)
}

func TestRenderBlock_UnknownKindRendersNothing(t *testing.T) {
	article := &domain.Article{Content: []domain.Block{
		paragraph("before"),
		{Kind: "hologram", Text: "mystery"},
		paragraph("after"),
	}}

	nodes := newTestRenderer().RenderArticle(article, freeViewer())

	require.Len(t, nodes, 3, "unknown kind must not abort the article")
	assert.Equal(t, StateEmpty, nodes[1].State)
	assert.Nil(t, nodes[1].Block)
}

func TestRenderBlock_NestedPremiumLocksEvenForTopTier(t *testing.T) {
	// Nesting deeper than one level violates the content invariant; treat
	// the inner premium as unauthorized regardless of viewer tier.
	inner := premium(domain.TierOne, paragraph("deep secret"))
	block := domain.Block{
		Kind:         domain.BlockPremium,
		RequiredTier: domain.TierOne,
		Payload:      &inner,
	}

	node := newTestRenderer().RenderBlock(&block, tierViewer(domain.TierThree))

	assert.Equal(t, StateLocked, node.State)
	assert.Nil(t, node.Block)
}

func TestRenderBlock_PremiumWithoutPayloadIsEmpty(t *testing.T) {
	block := domain.Block{Kind: domain.BlockPremium, RequiredTier: domain.TierOne}

	node := newTestRenderer().RenderBlock(&block, tierViewer(domain.TierThree))

	assert.Equal(t, StateEmpty, node.State)
}

func TestRenderBlock_DefaultPremiumTierIsLowestPaid(t *testing.T) {
	block := domain.Block{Kind: domain.BlockPremium, Payload: &domain.Block{Kind: domain.BlockParagraph, Text: "x"}}

	r := newTestRenderer()

	assert.Equal(t, StateLocked, r.RenderBlock(&block, freeViewer()).State)
	assert.Equal(t, StateRendered, r.RenderBlock(&block, tierViewer(domain.TierOne)).State)
}

func TestRenderBlock_LockedOutputNeverContainsPayload(t *testing.T) {
	// Property test: random payload text must not survive into the
	// serialized locked node in any form.
	rng := rand.New(rand.NewSource(42))
	r := newTestRenderer()

	for i := 0; i < 200; i++ {
		secret := randomSecret(rng)
		payload := domain.Block{
			Kind:    domain.BlockParagraph,
			Text:    secret,
			Caption: "caption-" + secret,
		}
		block := premium(domain.TierTwo, payload)

		node := r.RenderBlock(&block, tierViewer(domain.TierOne))
		require.Equal(t, StateLocked, node.State)

		serialized, err := json.Marshal(node)
		require.NoError(t, err)
		assert.NotContains(t, string(serialized), secret,
			"locked output leaked payload content")
	}
}

func TestRenderArticle_TierChangeReevaluatesFromScratch(t *testing.T) {
	article := &domain.Article{Content: []domain.Block{
		premium(domain.TierTwo, paragraph("members only")),
	}}
	r := newTestRenderer()

	before := r.RenderArticle(article, tierViewer(domain.TierOne))
	after := r.RenderArticle(article, tierViewer(domain.TierTwo))

	assert.Equal(t, StateLocked, before[0].State)
	assert.Equal(t, StateRendered, after[0].State)
}

const secretAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSecret(rng *rand.Rand) string {
	var sb strings.Builder
	sb.WriteString("secret-")
	for i := 0; i < 24; i++ {
		sb.WriteByte(secretAlphabet[rng.Intn(len(secretAlphabet))])
	}
	return sb.String()
}
