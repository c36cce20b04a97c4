package domain

import "time"

// Article is an ordered sequence of content blocks plus tier-independent
// metadata. Articles are authored by the content-management collaborator and
// read-only to the access engine; block order is insertion order and must be
// preserved through rendering.
type Article struct {
	Timestamps
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	AuthorID    string     `json:"author_id"`
	Tags        []string   `json:"tags,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     []Block    `json:"content"`
}

// HasPremiumContent reports whether any top-level block is gated.
func (a *Article) HasPremiumContent() bool {
	for i := range a.Content {
		if a.Content[i].IsPremium() {
			return true
		}
	}
	return false
}

// Metadata returns a copy of the article without its content blocks.
// Summaries are tier-independent and safe for any viewer.
func (a *Article) Metadata() Article {
	meta := *a
	meta.Content = nil
	return meta
}
