package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/render"
)

// launchArticleBody is a draft with one premium section gated at tier2.
func launchArticleBody() CreateArticleRequest {
	return CreateArticleRequest{
		Slug:    "starliner-window",
		Title:   "Starliner Launch Window Opens",
		Summary: "What to watch for during the countdown.",
		Tags:    []string{"launches"},
		Content: []domain.Block{
			{Kind: domain.BlockHeading, Text: "Countdown", Level: 2},
			{Kind: domain.BlockParagraph, Text: "The window opens at dawn."},
			{
				Kind:         domain.BlockPremium,
				RequiredTier: domain.TierTwo,
				Payload: &domain.Block{
					Kind: domain.BlockParagraph,
					Text: "Our sources say the hold at T-4 is planned.",
				},
			},
		},
	}
}

// createPublishedArticle creates and publishes a draft as the given author
// token, returning the article summary.
func createPublishedArticle(t *testing.T, server *Server, token string, body CreateArticleRequest) ArticleSummary {
	t.Helper()

	w := doRequest(t, server, http.MethodPost, "/api/v1/articles", token, body)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var created ArticleSummary
	decodeData(t, w, &created)

	w = doRequest(t, server, http.MethodPost, "/api/v1/articles/"+created.ID+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var published ArticleSummary
	decodeData(t, w, &published)
	require.True(t, published.Published)

	return published
}

func TestCreateArticle_RequiresAuthorRole(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, readerToken := createUserWithToken(t, server, "reader@example.com", domain.RoleUser, domain.TierThree)

	// Anonymous callers are rejected outright.
	w := doRequest(t, server, http.MethodPost, "/api/v1/articles", "", launchArticleBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A paying reader still cannot author.
	w = doRequest(t, server, http.MethodPost, "/api/v1/articles", readerToken, launchArticleBody())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateArticle_DuplicateSlug(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)

	w := doRequest(t, server, http.MethodPost, "/api/v1/articles", authorToken, launchArticleBody())
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, server, http.MethodPost, "/api/v1/articles", authorToken, launchArticleBody())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetArticle_PremiumLockedForAnonymous(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)
	article := createPublishedArticle(t, server, authorToken, launchArticleBody())

	w := doRequest(t, server, http.MethodGet, "/api/v1/articles/"+article.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var view ArticleViewResponse
	decodeData(t, w, &view)

	require.Len(t, view.Blocks, 3)
	assert.Equal(t, render.StateRendered, view.Blocks[0].State)
	assert.Equal(t, render.StateRendered, view.Blocks[1].State)

	locked := view.Blocks[2]
	assert.Equal(t, render.StateLocked, locked.State)
	assert.Nil(t, locked.Block, "locked node must not carry gated content")
	require.NotNil(t, locked.Locked)
	assert.Equal(t, domain.TierTwo, locked.Locked.RequiredTier)
	assert.NotContains(t, w.Body.String(), "T-4", "gated text must never reach the wire")
}

func TestGetArticle_PremiumVisibleAtTier(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)
	article := createPublishedArticle(t, server, authorToken, launchArticleBody())

	_, memberToken := createUserWithToken(t, server, "member@example.com", domain.RoleUser, domain.TierTwo)

	w := doRequest(t, server, http.MethodGet, "/api/v1/articles/"+article.Slug, memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view ArticleViewResponse
	decodeData(t, w, &view)

	require.Len(t, view.Blocks, 3)
	premium := view.Blocks[2]
	assert.Equal(t, render.StateRendered, premium.State)
	require.NotNil(t, premium.Block)
	assert.Equal(t, "Our sources say the hold at T-4 is planned.", premium.Block.Text)
}

func TestGetArticle_DraftHiddenFromReaders(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)

	w := doRequest(t, server, http.MethodPost, "/api/v1/articles", authorToken, launchArticleBody())
	require.Equal(t, http.StatusOK, w.Code)

	var draft ArticleSummary
	decodeData(t, w, &draft)

	// Anonymous callers get a 404, not a 403: drafts do not exist publicly.
	w = doRequest(t, server, http.MethodGet, "/api/v1/articles/"+draft.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The author still sees their own draft.
	w = doRequest(t, server, http.MethodGet, "/api/v1/articles/"+draft.Slug, authorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListArticles_PublishedOnly(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)

	createPublishedArticle(t, server, authorToken, launchArticleBody())

	draftBody := launchArticleBody()
	draftBody.Slug = "mars-sample-return"
	draftBody.Title = "Mars Sample Return Update"
	w := doRequest(t, server, http.MethodPost, "/api/v1/articles", authorToken, draftBody)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Articles []ArticleSummary `json:"articles"`
	}

	// Anonymous feed shows only the published article.
	w = doRequest(t, server, http.MethodGet, "/api/v1/articles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &list)
	require.Len(t, list.Articles, 1)
	assert.Equal(t, "starliner-window", list.Articles[0].Slug)

	// The author's own feed includes their draft.
	w = doRequest(t, server, http.MethodGet, "/api/v1/articles", authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &list)
	assert.Len(t, list.Articles, 2)
}

func TestUpdateArticle_OwnershipEnforced(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)
	_, rivalToken := createUserWithToken(t, server, "rival@example.com", domain.RoleAuthor, domain.TierFree)
	_, editorToken := createUserWithToken(t, server, "editor@example.com", domain.RoleEditor, domain.TierFree)

	article := createPublishedArticle(t, server, authorToken, launchArticleBody())

	newTitle := "Starliner Window Slips a Day"
	update := UpdateArticleRequest{Title: &newTitle}

	// Another author cannot edit someone else's article.
	w := doRequest(t, server, http.MethodPatch, "/api/v1/articles/"+article.ID, rivalToken, update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An editor can.
	w = doRequest(t, server, http.MethodPatch, "/api/v1/articles/"+article.ID, editorToken, update)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var updated ArticleSummary
	decodeData(t, w, &updated)
	assert.Equal(t, newTitle, updated.Title)
}

func TestDeleteArticle(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, authorToken := createUserWithToken(t, server, "author@example.com", domain.RoleAuthor, domain.TierFree)
	article := createPublishedArticle(t, server, authorToken, launchArticleBody())

	w := doRequest(t, server, http.MethodDelete, "/api/v1/articles/"+article.ID, authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doRequest(t, server, http.MethodGet, "/api/v1/articles/"+article.Slug, authorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
