package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apogeepress/apogee-server/internal/access"
	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/render"
	"github.com/apogeepress/apogee-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupArticleTest creates an article service with temporary storage.
func setupArticleTest(t *testing.T) (*ArticleService, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "apogee-article-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	renderer := render.NewRenderer(access.NewEvaluator(nil, nil), nil)
	svc := NewArticleService(s, renderer, nil)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return svc, cleanup
}

func authorViewer() domain.Viewer {
	return domain.Viewer{UserID: "user_author1", Role: domain.RoleAuthor, Tier: domain.TierFree}
}

func editorViewer() domain.Viewer {
	return domain.Viewer{UserID: "user_editor1", Role: domain.RoleEditor, Tier: domain.TierFree}
}

func readerViewer(tier domain.MembershipTier) domain.Viewer {
	return domain.Viewer{UserID: "user_reader1", Role: domain.RoleUser, Tier: tier}
}

// premiumArticleContent is a draft body with a tier2-gated section in the middle.
func premiumArticleContent() []domain.Block {
	return []domain.Block{
		{Kind: domain.BlockHeading, Text: "Starship Launch Window", Level: 1},
		{Kind: domain.BlockParagraph, Text: "The next launch window opens Tuesday."},
		{
			Kind:         domain.BlockPremium,
			RequiredTier: domain.TierTwo,
			Payload: &domain.Block{
				Kind: domain.BlockParagraph,
				Text: "Exclusive: telemetry from the static fire.",
			},
		},
	}
}

func TestArticleService_CreateArticle_Success(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	article, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:    "starship-launch-window",
		Title:   "Starship Launch Window",
		Summary: "When the next window opens.",
		Tags:    []string{"launches"},
		Content: premiumArticleContent(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, article.ID)
	assert.Equal(t, "user_author1", article.AuthorID)
	assert.False(t, article.Published)
	assert.Nil(t, article.PublishedAt)
}

func TestArticleService_CreateArticle_RequiresAuthorRole(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	_, err := svc.CreateArticle(context.Background(), readerViewer(domain.TierThree), CreateArticleRequest{
		Slug:  "not-allowed",
		Title: "Not Allowed",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "author role")
}

func TestArticleService_CreateArticle_DuplicateSlug(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	req := CreateArticleRequest{
		Slug:  "starship-launch-window",
		Title: "Starship Launch Window",
	}

	_, err := svc.CreateArticle(ctx, authorViewer(), req)
	require.NoError(t, err)

	_, err = svc.CreateArticle(ctx, authorViewer(), req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

func TestArticleService_GetArticle_BySlugAndByID(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:    "starship-launch-window",
		Title:   "Starship Launch Window",
		Content: premiumArticleContent(),
	})
	require.NoError(t, err)

	_, err = svc.PublishArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)

	byID, err := svc.GetArticle(ctx, readerViewer(domain.TierFree), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.Article.ID)

	bySlug, err := svc.GetArticle(ctx, readerViewer(domain.TierFree), "starship-launch-window")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.Article.ID)
}

func TestArticleService_GetArticle_PremiumRedactedForFreeViewer(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:    "starship-launch-window",
		Title:   "Starship Launch Window",
		Content: premiumArticleContent(),
	})
	require.NoError(t, err)

	_, err = svc.PublishArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)

	view, err := svc.GetArticle(ctx, readerViewer(domain.TierFree), created.ID)
	require.NoError(t, err)

	// Metadata never carries content; blocks carry the rendering
	assert.Nil(t, view.Article.Content)
	require.Len(t, view.Blocks, 3)

	assert.Equal(t, render.StateRendered, view.Blocks[0].State)
	assert.Equal(t, render.StateRendered, view.Blocks[1].State)
	assert.Equal(t, render.StateLocked, view.Blocks[2].State)
	assert.Nil(t, view.Blocks[2].Block)
	require.NotNil(t, view.Blocks[2].Locked)
	assert.Equal(t, domain.TierTwo, view.Blocks[2].Locked.RequiredTier)
}

func TestArticleService_GetArticle_PremiumVisibleAtTier(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:    "starship-launch-window",
		Title:   "Starship Launch Window",
		Content: premiumArticleContent(),
	})
	require.NoError(t, err)

	_, err = svc.PublishArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)

	view, err := svc.GetArticle(ctx, readerViewer(domain.TierTwo), created.ID)
	require.NoError(t, err)

	require.Len(t, view.Blocks, 3)
	last := view.Blocks[2]
	assert.Equal(t, render.StateRendered, last.State)
	require.NotNil(t, last.Block)
	assert.Equal(t, "Exclusive: telemetry from the static fire.", last.Block.Text)
}

func TestArticleService_GetArticle_DraftHiddenFromReaders(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "draft-only",
		Title: "Draft Only",
	})
	require.NoError(t, err)

	// Readers get not-found, not forbidden: drafts do not exist for them
	_, err = svc.GetArticle(ctx, readerViewer(domain.TierThree), created.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	// The author still sees their own draft
	view, err := svc.GetArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.Article.ID)

	// So does an editor
	view, err = svc.GetArticle(ctx, editorViewer(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.Article.ID)
}

func TestArticleService_GetArticle_NotFound(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	_, err := svc.GetArticle(context.Background(), readerViewer(domain.TierFree), "no-such-article")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestArticleService_ListArticles_PublishedOnlyForReaders(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	published, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "published-piece",
		Title: "Published Piece",
	})
	require.NoError(t, err)
	_, err = svc.PublishArticle(ctx, authorViewer(), published.ID)
	require.NoError(t, err)

	_, err = svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "draft-piece",
		Title: "Draft Piece",
	})
	require.NoError(t, err)

	list, err := svc.ListArticles(ctx, readerViewer(domain.TierFree), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)
	assert.Nil(t, list[0].Content) // summaries never carry content

	// Editors see drafts too
	list, err = svc.ListArticles(ctx, editorViewer(), "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestArticleService_ListArticles_AuthorSeesOwnDrafts(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "my-draft",
		Title: "My Draft",
	})
	require.NoError(t, err)

	otherAuthor := domain.Viewer{UserID: "user_author2", Role: domain.RoleAuthor, Tier: domain.TierFree}
	_, err = svc.CreateArticle(ctx, otherAuthor, CreateArticleRequest{
		Slug:  "their-draft",
		Title: "Their Draft",
	})
	require.NoError(t, err)

	list, err := svc.ListArticles(ctx, authorViewer(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "my-draft", list[0].Slug)
}

func TestArticleService_ListArticles_TagFilter(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	tagged, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "tagged-piece",
		Title: "Tagged Piece",
		Tags:  []string{"launches", "starship"},
	})
	require.NoError(t, err)
	_, err = svc.PublishArticle(ctx, authorViewer(), tagged.ID)
	require.NoError(t, err)

	other, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "other-piece",
		Title: "Other Piece",
		Tags:  []string{"rovers"},
	})
	require.NoError(t, err)
	_, err = svc.PublishArticle(ctx, authorViewer(), other.ID)
	require.NoError(t, err)

	list, err := svc.ListArticles(ctx, readerViewer(domain.TierFree), "starship")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "tagged-piece", list[0].Slug)
}

func TestArticleService_UpdateArticle_OwnerOnly(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "update-me",
		Title: "Update Me",
	})
	require.NoError(t, err)

	newTitle := "Updated Title"

	// Another author cannot edit it
	otherAuthor := domain.Viewer{UserID: "user_author2", Role: domain.RoleAuthor, Tier: domain.TierFree}
	_, err = svc.UpdateArticle(ctx, otherAuthor, created.ID, UpdateArticleRequest{Title: &newTitle})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot edit")

	// The owner can
	updated, err := svc.UpdateArticle(ctx, authorViewer(), created.ID, UpdateArticleRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)

	// An editor can edit anyone's article
	editorTitle := "Editor Title"
	updated, err = svc.UpdateArticle(ctx, editorViewer(), created.ID, UpdateArticleRequest{Title: &editorTitle})
	require.NoError(t, err)
	assert.Equal(t, "Editor Title", updated.Title)
}

func TestArticleService_PublishArticle_SetsTimestampOnce(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "publish-me",
		Title: "Publish Me",
	})
	require.NoError(t, err)

	first, err := svc.PublishArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, first.PublishedAt)

	// Republishing is a no-op and keeps the original timestamp
	second, err := svc.PublishArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PublishedAt, second.PublishedAt)
}

func TestArticleService_DeleteArticle(t *testing.T) {
	svc, cleanup := setupArticleTest(t)
	defer cleanup()

	ctx := context.Background()

	created, err := svc.CreateArticle(ctx, authorViewer(), CreateArticleRequest{
		Slug:  "delete-me",
		Title: "Delete Me",
	})
	require.NoError(t, err)

	// Readers cannot delete
	err = svc.DeleteArticle(ctx, readerViewer(domain.TierThree), created.ID)
	assert.Error(t, err)

	err = svc.DeleteArticle(ctx, authorViewer(), created.ID)
	require.NoError(t, err)

	_, err = svc.GetArticle(ctx, authorViewer(), created.ID)
	assert.Error(t, err)
}
