package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosuda/ghostmode/internal/domain"
)

var ErrUnknownContentKind = errors.New("activity: unknown content kind")

// Catalog lists stored content items for the content moderation view.
type Catalog struct {
	content *ContentSource
	ads     *BodyContactSource
	opts    Options
	now     func() time.Time
}

func NewCatalog(content *ContentSource, ads *BodyContactSource, opts Options) *Catalog {
	return &Catalog{content: content, ads: ads, opts: opts, now: time.Now}
}

// Items lists one content kind, or every kind when kind is empty, newest first.
func (c *Catalog) Items(ctx context.Context, kind domain.ContentKind, term string) ([]domain.ContentItem, error) {
	kinds := append(domain.MediaKinds(), domain.ContentAd)
	if kind != "" {
		if !kind.Valid() {
			return nil, fmt.Errorf("activity.Catalog.Items: %w: %q", ErrUnknownContentKind, kind)
		}
		kinds = []domain.ContentKind{kind}
	}

	f := domain.ActivityFilter{Limit: c.opts.Limit, Search: term}
	if c.opts.Window > 0 {
		f.Since = c.now().Add(-c.opts.Window)
	}

	out := make([]domain.ContentItem, 0)
	for _, k := range kinds {
		var (
			items []domain.ContentItem
			err   error
		)
		if k == domain.ContentAd {
			items, err = c.ads.FetchItems(ctx, f)
		} else {
			items, err = c.content.FetchItems(ctx, k, f)
		}
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if itemMatches(it, term) {
				out = append(out, it)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func itemMatches(it domain.ContentItem, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(it.CreatorUsername), term) ||
		strings.Contains(strings.ToLower(it.Content), term)
}
