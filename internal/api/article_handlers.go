package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/apogeepress/apogee-server/internal/domain"
	"github.com/apogeepress/apogee-server/internal/render"
	"github.com/apogeepress/apogee-server/internal/service"
)

func (s *Server) registerArticleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listArticles",
		Method:      http.MethodGet,
		Path:        "/api/v1/articles",
		Summary:     "List articles",
		Description: "Returns article summaries, newest first. Summaries never include body content.",
		Tags:        []string{"Articles"},
	}, s.handleListArticles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getArticle",
		Method:      http.MethodGet,
		Path:        "/api/v1/articles/{idOrSlug}",
		Summary:     "Get rendered article",
		Description: "Returns an article rendered for the caller's tier. Premium sections the caller is not entitled to come back as locked placeholders.",
		Tags:        []string{"Articles"},
	}, s.handleGetArticle)

	huma.Register(s.api, huma.Operation{
		OperationID: "createArticle",
		Method:      http.MethodPost,
		Path:        "/api/v1/articles",
		Summary:     "Create article draft",
		Description: "Creates a new draft owned by the caller. Requires the author role.",
		Tags:        []string{"Articles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateArticle)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateArticle",
		Method:      http.MethodPatch,
		Path:        "/api/v1/articles/{id}",
		Summary:     "Update article",
		Description: "Applies edits to an article the caller owns or moderates.",
		Tags:        []string{"Articles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateArticle)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishArticle",
		Method:      http.MethodPost,
		Path:        "/api/v1/articles/{id}/publish",
		Summary:     "Publish article",
		Description: "Makes a draft publicly visible.",
		Tags:        []string{"Articles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishArticle)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteArticle",
		Method:      http.MethodDelete,
		Path:        "/api/v1/articles/{id}",
		Summary:     "Delete article",
		Tags:        []string{"Articles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteArticle)
}

// === DTOs ===

// ArticleSummary contains tier-independent article metadata.
type ArticleSummary struct {
	ID          string     `json:"id" doc:"Article ID"`
	Slug        string     `json:"slug" doc:"URL slug"`
	Title       string     `json:"title" doc:"Title"`
	Summary     string     `json:"summary,omitempty" doc:"Short summary"`
	AuthorID    string     `json:"author_id" doc:"Author user ID"`
	Tags        []string   `json:"tags,omitempty" doc:"Topic tags"`
	Published   bool       `json:"published" doc:"Whether the article is public"`
	PublishedAt *time.Time `json:"published_at,omitempty" doc:"Publication time"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time  `json:"updated_at" doc:"Last edit time"`
}

// ArticleListOutput wraps the article list for Huma.
type ArticleListOutput struct {
	Body struct {
		Articles []ArticleSummary `json:"articles" doc:"Article summaries, newest first"`
	}
}

// ListArticlesInput carries list filters.
type ListArticlesInput struct {
	Tag string `query:"tag" doc:"Filter by tag"`
}

// ArticleViewResponse is an article rendered for the caller.
type ArticleViewResponse struct {
	Article ArticleSummary `json:"article" doc:"Article metadata"`
	Blocks  []render.Node  `json:"blocks" doc:"Rendered content blocks in document order"`
}

// ArticleViewOutput wraps the rendered article for Huma.
type ArticleViewOutput struct {
	Body ArticleViewResponse
}

// GetArticleInput identifies one article.
type GetArticleInput struct {
	IDOrSlug string `path:"idOrSlug" doc:"Article ID or slug"`
}

// CreateArticleRequest is the request body for creating a draft.
type CreateArticleRequest struct {
	Slug    string         `json:"slug" validate:"required,min=3,max=200" doc:"URL slug, unique"`
	Title   string         `json:"title" validate:"required,max=300" doc:"Title"`
	Summary string         `json:"summary,omitempty" validate:"max=1000" doc:"Short summary"`
	Tags    []string       `json:"tags,omitempty" doc:"Topic tags"`
	Content []domain.Block `json:"content,omitempty" doc:"Content blocks"`
}

// CreateArticleInput wraps the create request for Huma.
type CreateArticleInput struct {
	Body CreateArticleRequest
}

// ArticleOutput wraps article metadata for Huma.
type ArticleOutput struct {
	Body ArticleSummary
}

// UpdateArticleRequest is the request body for editing an article.
// Absent fields stay unchanged.
type UpdateArticleRequest struct {
	Title   *string        `json:"title,omitempty" validate:"omitempty,max=300" doc:"New title"`
	Summary *string        `json:"summary,omitempty" validate:"omitempty,max=1000" doc:"New summary"`
	Tags    []string       `json:"tags,omitempty" doc:"Replacement tag set"`
	Content []domain.Block `json:"content,omitempty" doc:"Replacement content blocks"`
}

// UpdateArticleInput wraps the update request for Huma.
type UpdateArticleInput struct {
	ID   string `path:"id" doc:"Article ID or slug"`
	Body UpdateArticleRequest
}

// ArticleIDInput identifies one article by ID.
type ArticleIDInput struct {
	ID string `path:"id" doc:"Article ID or slug"`
}

// === Handlers ===

func (s *Server) handleListArticles(ctx context.Context, input *ListArticlesInput) (*ArticleListOutput, error) {
	articles, err := s.services.Article.ListArticles(ctx, GetViewer(ctx), input.Tag)
	if err != nil {
		return nil, err
	}

	out := &ArticleListOutput{}
	out.Body.Articles = make([]ArticleSummary, 0, len(articles))
	for _, a := range articles {
		out.Body.Articles = append(out.Body.Articles, mapArticleSummary(a))
	}

	return out, nil
}

func (s *Server) handleGetArticle(ctx context.Context, input *GetArticleInput) (*ArticleViewOutput, error) {
	view, err := s.services.Article.GetArticle(ctx, GetViewer(ctx), input.IDOrSlug)
	if err != nil {
		return nil, err
	}

	return &ArticleViewOutput{
		Body: ArticleViewResponse{
			Article: mapArticleSummary(&view.Article),
			Blocks:  view.Blocks,
		},
	}, nil
}

func (s *Server) handleCreateArticle(ctx context.Context, input *CreateArticleInput) (*ArticleOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	article, err := s.services.Article.CreateArticle(ctx, viewer, service.CreateArticleRequest{
		Slug:    input.Body.Slug,
		Title:   input.Body.Title,
		Summary: input.Body.Summary,
		Tags:    input.Body.Tags,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ArticleOutput{Body: mapArticleSummary(article)}, nil
}

func (s *Server) handleUpdateArticle(ctx context.Context, input *UpdateArticleInput) (*ArticleOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	article, err := s.services.Article.UpdateArticle(ctx, viewer, input.ID, service.UpdateArticleRequest{
		Title:   input.Body.Title,
		Summary: input.Body.Summary,
		Tags:    input.Body.Tags,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ArticleOutput{Body: mapArticleSummary(article)}, nil
}

func (s *Server) handlePublishArticle(ctx context.Context, input *ArticleIDInput) (*ArticleOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	article, err := s.services.Article.PublishArticle(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &ArticleOutput{Body: mapArticleSummary(article)}, nil
}

func (s *Server) handleDeleteArticle(ctx context.Context, input *ArticleIDInput) (*MessageOutput, error) {
	viewer, err := RequireViewer(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Article.DeleteArticle(ctx, viewer, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Article deleted"}}, nil
}

// === Helpers ===

func mapArticleSummary(a *domain.Article) ArticleSummary {
	return ArticleSummary{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Summary:     a.Summary,
		AuthorID:    a.AuthorID,
		Tags:        a.Tags,
		Published:   a.Published,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
