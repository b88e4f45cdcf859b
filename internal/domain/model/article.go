package model

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
)

// SearchResult is one page returned by a prefix search.
// Index is the upstream relevance rank, lower is better.
type SearchResult struct {
	PageID      int64
	Title       string
	Index       int
	Description string
	Thumbnail   *Thumbnail
}

// Thumbnail is either complete or absent.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// RandomArticleRef points at a random article either by title or by resolved URL.
type RandomArticleRef struct {
	Title string
	URL   string
}

// Link returns the resolved URL when present, otherwise builds one from the title.
func (r RandomArticleRef) Link(articleBase string) string {
	if r.URL != "" {
		return r.URL
	}
	return ArticleURL(articleBase, r.Title)
}

// ArticleURL builds the canonical article link the way MediaWiki spells it:
// spaces become underscores, every path segment is escaped.
func ArticleURL(articleBase, title string) string {
	segs := strings.Split(strings.ReplaceAll(title, " ", "_"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return articleBase + strings.Join(segs, "/")
}

// TitleFromPath reverses ArticleURL for the part after the article base.
func TitleFromPath(escaped string) (string, error) {
	raw, err := url.PathUnescape(escaped)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(raw, "_", " "), nil
}

// PageIDString is the inline result id for a page.
func PageIDString(id int64) string { return strconv.FormatInt(id, 10) }

// UTF16Len measures s the way Telegram measures entity offsets and lengths.
func UTF16Len(s string) int { return len(utf16.Encode([]rune(s))) }
