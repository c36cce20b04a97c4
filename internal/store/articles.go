package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// ArticleFilter narrows ListArticles results.
type ArticleFilter struct {
	// PublishedOnly excludes drafts.
	PublishedOnly bool
	// AuthorID limits results to one author when non-empty.
	AuthorID string
	// Tag limits results to articles carrying the tag when non-empty.
	Tag string
}

// GetArticleBySlug retrieves an article by its URL slug.
func (s *Store) GetArticleBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return s.Articles.GetByIndex(ctx, "slug", slug)
}

// ListArticles returns articles matching the filter, newest first.
// Drafts sort by creation time; published articles by publication time.
func (s *Store) ListArticles(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error) {
	var articles []*domain.Article

	for article, err := range s.Articles.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list articles: %w", err)
		}

		if filter.PublishedOnly && !article.Published {
			continue
		}
		if filter.AuthorID != "" && article.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Tag != "" && !hasTag(article, filter.Tag) {
			continue
		}

		articles = append(articles, article)
	}

	sort.Slice(articles, func(i, j int) bool {
		return sortTime(articles[i]).After(sortTime(articles[j]))
	})

	return articles, nil
}

func hasTag(a *domain.Article, tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortTime(a *domain.Article) time.Time {
	if a.Published && a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}
