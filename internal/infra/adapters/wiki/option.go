package wiki

import (
	"net/http"

	"github.com/rs/zerolog"
)

// RandomMode selects how RandomArticle talks to the wiki.
type RandomMode string

const (
	// RandomList asks api.php for list=random in the main namespace.
	RandomList RandomMode = "list"
	// RandomRedirect requests Special:Random and reads the Location header.
	RandomRedirect RandomMode = "redirect"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for api.php calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAPIURL sets the api.php endpoint.
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

// WithArticleBase sets the prefix article titles are appended to.
func WithArticleBase(u string) Option {
	return func(c *Client) { c.articleBase = u }
}

// WithUserAgent sets the User-Agent header; Wikimedia rejects anonymous clients.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithSearchLimit caps the number of search hits.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithThumbSize sets the requested thumbnail size in pixels.
func WithThumbSize(px int) Option {
	return func(c *Client) {
		if px > 0 {
			c.thumbSize = px
		}
	}
}

// WithRandomMode picks the random article strategy.
func WithRandomMode(m RandomMode) Option {
	return func(c *Client) { c.randomMode = m }
}

// WithLogger sets the logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
