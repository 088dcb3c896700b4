package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Suggestion limits.
const (
	DefaultSuggestLimit = 5
	MaxSuggestLimit     = 20
)

// TagCatalog lists the tags that can be suggested.
type TagCatalog interface {
	ListTags(ctx context.Context) ([]string, error)
}

// TagSuggester completes partially typed tags from the tags already in use.
//
// Results come in three tiers, each appended after the previous one with
// duplicates dropped: fuzzy matches ranked by score, plain substring matches,
// then acronym matches ("ml" for "machine-learning").
type TagSuggester struct {
	catalog TagCatalog
	logger  *slog.Logger
}

// NewTagSuggester creates a new tag suggester.
func NewTagSuggester(catalog TagCatalog, logger *slog.Logger) *TagSuggester {
	return &TagSuggester{
		catalog: catalog,
		logger:  orDiscard(logger),
	}
}

// Suggest returns at most limit tags for query. limit <= 0 selects
// DefaultSuggestLimit. An empty query yields an empty list.
func (s *TagSuggester) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	limit = min(limit, MaxSuggestLimit)

	tags, err := s.catalog.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	add := func(tag string) bool {
		if _, dup := seen[tag]; !dup {
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
		return len(out) >= limit
	}

	for _, m := range fuzzy.Find(query, tags) {
		if add(m.Str) {
			return out, nil
		}
	}
	for _, t := range tags {
		if strings.Contains(t, query) && add(t) {
			return out, nil
		}
	}
	for _, t := range tags {
		if strings.HasPrefix(acronym(t), query) && add(t) {
			return out, nil
		}
	}

	s.logger.Debug("Tag suggestions", "query", query, "results", len(out))
	return out, nil
}

// acronym joins the first rune of every part of tag, splitting on the
// separators tags use in place of spaces.
func acronym(tag string) string {
	parts := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	var b strings.Builder
	for _, p := range parts {
		r, _ := utf8.DecodeRuneInString(p)
		b.WriteRune(r)
	}
	return b.String()
}
