package normalize

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/mmcdole/gofeed"

	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/update"
)

// Normalizer converts raw RSS/Atom documents into canonical records. Entries
// missing a title or link, or carrying no parseable date, are dropped and
// counted rather than propagated.
type Normalizer struct {
	gofeedParser *gofeed.Parser
	sanitizer    *Sanitizer
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		gofeedParser: gofeed.NewParser(),
		sanitizer:    NewSanitizer(),
	}
}

// Run parses one feed document for the given source. The second return value
// is the number of entries skipped as malformed.
func (n *Normalizer) Run(data []byte, src sources.Source, maxItems int) ([]update.Update, int, error) {
	feed, err := n.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse feed: %w", err)
	}

	base := resolveBase(feed.Link, src.URL)

	skipped := 0
	updates := make([]update.Update, 0, len(feed.Items))
	for _, item := range feed.Items {
		if maxItems > 0 && len(updates) >= maxItems {
			break
		}

		u, ok := n.normalizeItem(item, src, base)
		if !ok {
			skipped++
			continue
		}
		updates = append(updates, u)
	}

	return updates, skipped, nil
}

func (n *Normalizer) normalizeItem(item *gofeed.Item, src sources.Source, base *url.URL) (update.Update, bool) {
	title := n.sanitizer.Run(item.Title)
	if title == "" {
		return update.Update{}, false
	}

	link := absoluteLink(item.Link, base)
	if link == "" {
		return update.Update{}, false
	}

	if item.PublishedParsed == nil && item.UpdatedParsed == nil {
		return update.Update{}, false
	}
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	description := n.sanitizer.Run(item.Description)
	if description == "" {
		description = n.sanitizer.Run(item.Content)
	}

	u := update.Update{
		ID:            update.ComputeID(link, src.Name, title),
		Title:         title,
		Description:   description,
		Link:          link,
		PublishedDate: published.UTC(),
		Source:        src.Name,
	}
	u.Signature = update.ComputeSignature(u.Title, u.Description, u.Link, u.PublishedDate)

	return u, true
}

// resolveBase picks the URL relative entry links resolve against: the feed's
// own channel link when present, the fetch URL otherwise.
func resolveBase(feedLink, sourceURL string) *url.URL {
	for _, candidate := range []string{feedLink, sourceURL} {
		if candidate == "" {
			continue
		}
		if base, err := url.Parse(candidate); err == nil && base.IsAbs() {
			return base
		}
	}
	return nil
}

func absoluteLink(link string, base *url.URL) string {
	if link == "" {
		return ""
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
