package store

import (
	"context"
	"testing"
	"time"

	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticle(id, slug string, published bool) *domain.Article {
	a := &domain.Article{
		ID:        id,
		Slug:      slug,
		Title:     "Starship Flight Test Recap",
		Summary:   "What we learned from the latest launch.",
		AuthorID:  "user-author",
		Tags:      []string{"launches"},
		Published: published,
		Content: []domain.Block{
			{Kind: domain.BlockParagraph, Text: "The vehicle cleared the tower."},
		},
	}
	a.InitTimestamps()
	if published {
		now := time.Now().UTC()
		a.PublishedAt = &now
	}
	return a
}

func TestArticles_CreateAndGetBySlug(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	article := testArticle("article-1", "starship-recap", true)
	require.NoError(t, store.Articles.Create(ctx, article.ID, article))

	retrieved, err := store.GetArticleBySlug(ctx, "starship-recap")
	require.NoError(t, err)
	assert.Equal(t, article.ID, retrieved.ID)
	assert.Len(t, retrieved.Content, 1)

	_, err = store.GetArticleBySlug(ctx, "no-such-slug")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticles_SlugConflict(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Articles.Create(ctx, "article-1", testArticle("article-1", "same-slug", true)))

	err := store.Articles.Create(ctx, "article-2", testArticle("article-2", "same-slug", true))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestListArticles_PublishedOnly(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Articles.Create(ctx, "article-1", testArticle("article-1", "published-one", true)))
	require.NoError(t, store.Articles.Create(ctx, "article-2", testArticle("article-2", "draft-one", false)))

	published, err := store.ListArticles(ctx, ArticleFilter{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "article-1", published[0].ID)

	all, err := store.ListArticles(ctx, ArticleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListArticles_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	older := testArticle("article-1", "older", true)
	past := time.Now().UTC().Add(-48 * time.Hour)
	older.PublishedAt = &past

	newer := testArticle("article-2", "newer", true)

	require.NoError(t, store.Articles.Create(ctx, older.ID, older))
	require.NoError(t, store.Articles.Create(ctx, newer.ID, newer))

	articles, err := store.ListArticles(ctx, ArticleFilter{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "article-2", articles[0].ID)
	assert.Equal(t, "article-1", articles[1].ID)
}

func TestListArticles_FilterByAuthorAndTag(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	mine := testArticle("article-1", "mine", true)
	mine.AuthorID = "user-me"
	mine.Tags = []string{"launches", "starship"}

	theirs := testArticle("article-2", "theirs", true)
	theirs.AuthorID = "user-them"

	require.NoError(t, store.Articles.Create(ctx, mine.ID, mine))
	require.NoError(t, store.Articles.Create(ctx, theirs.ID, theirs))

	byAuthor, err := store.ListArticles(ctx, ArticleFilter{AuthorID: "user-me"})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "article-1", byAuthor[0].ID)

	byTag, err := store.ListArticles(ctx, ArticleFilter{Tag: "starship"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "article-1", byTag[0].ID)
}

func TestArticles_UpdatePreservesSlugIndex(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	article := testArticle("article-1", "original-slug", true)
	require.NoError(t, store.Articles.Create(ctx, article.ID, article))

	article.Slug = "renamed-slug"
	require.NoError(t, store.Articles.Update(ctx, article.ID, article))

	retrieved, err := store.GetArticleBySlug(ctx, "renamed-slug")
	require.NoError(t, err)
	assert.Equal(t, "article-1", retrieved.ID)

	_, err = store.GetArticleBySlug(ctx, "original-slug")
	assert.ErrorIs(t, err, ErrNotFound)
}
