package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apogeepress/apogee-server/internal/domain"
	domainerrors "github.com/apogeepress/apogee-server/internal/errors"
	"github.com/apogeepress/apogee-server/internal/id"
	"github.com/apogeepress/apogee-server/internal/render"
	"github.com/apogeepress/apogee-server/internal/store"
)

// ArticleService handles article publishing and tier-gated reading.
// All premium gating happens server-side: a response never carries content
// the requesting viewer is not entitled to.
type ArticleService struct {
	store    *store.Store
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewArticleService creates a new article service.
func NewArticleService(store *store.Store, renderer *render.Renderer, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// ArticleView is an article prepared for a specific viewer: metadata plus
// the rendered block list with premium content resolved or locked.
type ArticleView struct {
	Article domain.Article `json:"article"` // metadata only, Content stripped
	Blocks  []render.Node  `json:"blocks"`
}

// CreateArticleRequest contains a new article draft.
type CreateArticleRequest struct {
	Slug    string         `json:"slug" validate:"required,min=3,max=200"`
	Title   string         `json:"title" validate:"required,max=300"`
	Summary string         `json:"summary" validate:"max=1000"`
	Tags    []string       `json:"tags"`
	Content []domain.Block `json:"content"`
}

// UpdateArticleRequest carries edits to an existing article.
type UpdateArticleRequest struct {
	Title   *string        `json:"title" validate:"omitempty,max=300"`
	Summary *string        `json:"summary" validate:"omitempty,max=1000"`
	Tags    []string       `json:"tags"`
	Content []domain.Block `json:"content"`
}

// ListArticles returns article summaries, newest first. Content is never
// included in listings. Regular viewers see published articles only;
// authors additionally see their own drafts, moderators see everything.
func (s *ArticleService) ListArticles(ctx context.Context, viewer domain.Viewer, tag string) ([]*domain.Article, error) {
	filter := store.ArticleFilter{PublishedOnly: true, Tag: tag}
	if viewer.Role == domain.RoleEditor || viewer.Role == domain.RoleAdmin {
		filter.PublishedOnly = false
	}

	articles, err := s.store.ListArticles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	// Authors see their own drafts alongside the published feed.
	if filter.PublishedOnly && viewer.Role == domain.RoleAuthor {
		drafts, err := s.store.ListArticles(ctx, store.ArticleFilter{AuthorID: viewer.UserID, Tag: tag})
		if err != nil {
			return nil, fmt.Errorf("list own drafts: %w", err)
		}
		for _, d := range drafts {
			if !d.Published {
				articles = append(articles, d)
			}
		}
	}

	summaries := make([]*domain.Article, 0, len(articles))
	for _, a := range articles {
		meta := a.Metadata()
		summaries = append(summaries, &meta)
	}

	return summaries, nil
}

// GetArticle renders an article for the viewer, looked up by ID or slug.
// Premium blocks the viewer's tier does not cover come back as locked
// placeholders; their payload never leaves the server.
func (s *ArticleService) GetArticle(ctx context.Context, viewer domain.Viewer, idOrSlug string) (*ArticleView, error) {
	article, err := s.findArticle(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	// Drafts are visible to their author and to moderators only.
	if !article.Published && !s.canEdit(viewer, article) {
		return nil, domainerrors.NotFound("article not found")
	}

	view := &ArticleView{
		Article: article.Metadata(),
		Blocks:  s.renderer.RenderArticle(article, viewer),
	}

	return view, nil
}

// CreateArticle creates a new draft owned by the viewer.
// Requires the author role or better.
func (s *ArticleService) CreateArticle(ctx context.Context, viewer domain.Viewer, req CreateArticleRequest) (*domain.Article, error) {
	if !viewer.Role.CanAuthor() {
		return nil, domainerrors.Forbidden("authoring requires the author role")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	articleID, err := id.Generate("article")
	if err != nil {
		return nil, fmt.Errorf("generate article ID: %w", err)
	}

	article := &domain.Article{
		ID:       articleID,
		Slug:     req.Slug,
		Title:    req.Title,
		Summary:  req.Summary,
		AuthorID: viewer.UserID,
		Tags:     req.Tags,
		Content:  req.Content,
	}
	article.InitTimestamps()

	if err := s.store.Articles.Create(ctx, articleID, article); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("slug %q is already in use", req.Slug)
		}
		return nil, fmt.Errorf("create article: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Article created", "article_id", articleID, "author_id", viewer.UserID)
	}

	return article, nil
}

// UpdateArticle applies edits to an article the viewer may edit.
func (s *ArticleService) UpdateArticle(ctx context.Context, viewer domain.Viewer, articleID string, req UpdateArticleRequest) (*domain.Article, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	article, err := s.findArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(viewer, article) {
		return nil, domainerrors.Forbidden("you cannot edit this article")
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Summary != nil {
		article.Summary = *req.Summary
	}
	if req.Tags != nil {
		article.Tags = req.Tags
	}
	if req.Content != nil {
		article.Content = req.Content
	}
	article.Touch()

	if err := s.store.Articles.Update(ctx, article.ID, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	return article, nil
}

// PublishArticle makes a draft publicly visible.
func (s *ArticleService) PublishArticle(ctx context.Context, viewer domain.Viewer, articleID string) (*domain.Article, error) {
	article, err := s.findArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(viewer, article) {
		return nil, domainerrors.Forbidden("you cannot publish this article")
	}
	if article.Published {
		return article, nil
	}

	now := time.Now().UTC()
	article.Published = true
	article.PublishedAt = &now
	article.Touch()

	if err := s.store.Articles.Update(ctx, article.ID, article); err != nil {
		return nil, fmt.Errorf("publish article: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Article published", "article_id", article.ID)
	}

	return article, nil
}

// DeleteArticle removes an article the viewer may edit.
func (s *ArticleService) DeleteArticle(ctx context.Context, viewer domain.Viewer, articleID string) error {
	article, err := s.findArticle(ctx, articleID)
	if err != nil {
		return err
	}
	if !s.canEdit(viewer, article) {
		return domainerrors.Forbidden("you cannot delete this article")
	}

	if err := s.store.Articles.Delete(ctx, article.ID); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	return nil
}

// findArticle looks up an article by ID first, then by slug.
func (s *ArticleService) findArticle(ctx context.Context, idOrSlug string) (*domain.Article, error) {
	article, err := s.store.Articles.Get(ctx, idOrSlug)
	if err == nil {
		return article, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get article: %w", err)
	}

	article, err = s.store.GetArticleBySlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("article not found")
		}
		return nil, fmt.Errorf("get article by slug: %w", err)
	}
	return article, nil
}

// canEdit reports whether the viewer owns the article or moderates the site.
func (s *ArticleService) canEdit(viewer domain.Viewer, article *domain.Article) bool {
	if viewer.Role.CanModerate() {
		return true
	}
	return viewer.Role.CanAuthor() && article.AuthorID == viewer.UserID
}
