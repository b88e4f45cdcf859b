// File: internal/infra/adapters/wiki/client.go
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"wikiukbot/internal/config"
	"wikiukbot/internal/domain"
	"wikiukbot/internal/domain/model"
	"wikiukbot/internal/domain/ports/adapter"
	"wikiukbot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.WikiClient = (*Client)(nil)

// maxBodyBytes bounds how much of an api.php response is read.
const maxBodyBytes = 4 << 20

// Client talks to a MediaWiki api.php endpoint. It keeps no state between calls.
type Client struct {
	httpClient  *http.Client
	noRedirect  *http.Client
	apiURL      string
	articleBase string
	userAgent   string
	searchLimit int
	thumbSize   int
	randomMode  RandomMode
	log         *zerolog.Logger
}

// NewClient creates a client for Ukrainian Wikipedia unless options say otherwise.
func NewClient(opts ...Option) *Client {
	nop := zerolog.Nop()
	c := &Client{
		httpClient:  &http.Client{Timeout: 8 * time.Second},
		apiURL:      "https://uk.wikipedia.org/w/api.php",
		articleBase: "https://uk.wikipedia.org/wiki/",
		userAgent:   "wikiukbot/1.0",
		searchLimit: 15,
		thumbSize:   120,
		randomMode:  RandomList,
		log:         &nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	nr := *c.httpClient
	nr.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	c.noRedirect = &nr
	return c
}

// NewFromConfig wires a client from the wiki config section.
func NewFromConfig(cfg config.WikiConfig, logger *zerolog.Logger) *Client {
	return NewClient(
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithAPIURL(cfg.APIURL),
		WithArticleBase(cfg.ArticleBase),
		WithUserAgent(cfg.UserAgent),
		WithSearchLimit(cfg.SearchLimit),
		WithThumbSize(cfg.ThumbSize),
		WithRandomMode(RandomMode(cfg.RandomMode)),
		WithLogger(logger),
	)
}

// ArticleBase is the prefix used for article links.
func (c *Client) ArticleBase() string { return c.articleBase }

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type searchResponse struct {
	Query *struct {
		Pages []searchPage `json:"pages"`
	} `json:"query"`
}

type searchPage struct {
	PageID      int64      `json:"pageid"`
	Title       string     `json:"title"`
	Index       int        `json:"index"`
	Description string     `json:"description"`
	Thumbnail   *thumbnail `json:"thumbnail"`
}

type thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type randomResponse struct {
	Query *struct {
		Random []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
}

// Search runs a prefix search and returns hits ordered by upstream rank.
// API documentation: https://www.mediawiki.org/wiki/API:Prefixsearch
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	start := time.Now()
	res, err := c.search(ctx, query)
	c.observe("search", start, err)
	return res, err
}

func (c *Client) search(ctx context.Context, query string) ([]model.SearchResult, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"pageprops|pageimages|description"},
		"generator":     {"prefixsearch"},
		"ppprop":        {"displaytitle"},
		"piprop":        {"thumbnail"},
		"pithumbsize":   {strconv.Itoa(c.thumbSize)},
		"redirects":     {""},
		"gpssearch":     {query},
		"gpslimit":      {strconv.Itoa(c.searchLimit)},
		"gpsnamespace":  {"0"},
	}

	var body searchResponse
	if err := c.callAPI(ctx, params, &body); err != nil {
		return nil, err
	}
	// no hits: MediaWiki omits "query" altogether
	if body.Query == nil || len(body.Query.Pages) == 0 {
		return []model.SearchResult{}, nil
	}

	results := make([]model.SearchResult, 0, len(body.Query.Pages))
	for _, p := range body.Query.Pages {
		if p.PageID <= 0 || strings.TrimSpace(p.Title) == "" {
			return nil, &domain.UpstreamError{
				Reason: domain.ReasonMalformed,
				Detail: fmt.Sprintf("page without id or title (pageid=%d)", p.PageID),
			}
		}
		r := model.SearchResult{
			PageID:      p.PageID,
			Title:       p.Title,
			Index:       p.Index,
			Description: p.Description,
		}
		if t := p.Thumbnail; t != nil && t.Source != "" {
			r.Thumbnail = &model.Thumbnail{URL: t.Source, Width: t.Width, Height: t.Height}
		}
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, nil
}

// RandomArticle returns a random main-namespace article using the configured mode.
func (c *Client) RandomArticle(ctx context.Context) (model.RandomArticleRef, error) {
	start := time.Now()
	var (
		ref model.RandomArticleRef
		err error
	)
	if c.randomMode == RandomRedirect {
		ref, err = c.randomByRedirect(ctx)
	} else {
		ref, err = c.randomByList(ctx)
	}
	c.observe("random", start, err)
	return ref, err
}

func (c *Client) randomByList(ctx context.Context) (model.RandomArticleRef, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"list":          {"random"},
		"rnnamespace":   {"0"},
		"rnlimit":       {"1"},
	}
	var body randomResponse
	if err := c.callAPI(ctx, params, &body); err != nil {
		return model.RandomArticleRef{}, err
	}
	if body.Query == nil || len(body.Query.Random) == 0 || body.Query.Random[0].Title == "" {
		return model.RandomArticleRef{}, &domain.UpstreamError{
			Reason: domain.ReasonMalformed,
			Detail: "no random page in response",
		}
	}
	return model.RandomArticleRef{Title: body.Query.Random[0].Title}, nil
}

func (c *Client) randomByRedirect(ctx context.Context) (model.RandomArticleRef, error) {
	base, err := url.Parse(c.articleBase)
	if err != nil {
		return model.RandomArticleRef{}, fmt.Errorf("article base: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.articleBase+"Special:Random", nil)
	if err != nil {
		return model.RandomArticleRef{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return model.RandomArticleRef{}, &domain.UpstreamError{Reason: domain.ReasonTransport, Err: err}
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusFound {
		reason := domain.ReasonRedirect
		if resp.StatusCode >= 400 {
			reason = domain.ReasonHTTPStatus
		}
		return model.RandomArticleRef{}, &domain.UpstreamError{
			Reason:     reason,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Detail:     "expected 302 from Special:Random",
		}
	}

	loc, err := resp.Location()
	if err != nil {
		return model.RandomArticleRef{}, &domain.UpstreamError{
			Reason: domain.ReasonRedirect, Status: resp.StatusCode, Detail: "missing Location header",
		}
	}
	rest, ok := strings.CutPrefix(loc.EscapedPath(), base.EscapedPath())
	if loc.Scheme != base.Scheme || loc.Host != base.Host || !ok || rest == "" {
		return model.RandomArticleRef{}, &domain.UpstreamError{
			Reason: domain.ReasonRedirect, Status: resp.StatusCode,
			Detail: fmt.Sprintf("location %q is outside %s", loc.String(), c.articleBase),
		}
	}
	title, err := model.TitleFromPath(rest)
	if err != nil {
		return model.RandomArticleRef{}, &domain.UpstreamError{
			Reason: domain.ReasonRedirect, Status: resp.StatusCode, Detail: "undecodable location", Err: err,
		}
	}
	return model.RandomArticleRef{Title: title, URL: loc.String()}, nil
}

// callAPI performs one GET against api.php and decodes the body into out.
// An "error" object wins over the HTTP status, since MediaWiki reports most
// failures with 200.
func (c *Client) callAPI(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Reason: domain.ReasonTransport, Err: err}
	}
	defer drain(resp.Body)

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	var envelope struct {
		Error *apiError `json:"error"`
	}
	if readErr == nil && json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		return &domain.UpstreamError{
			Reason: domain.ReasonAPI,
			Status: resp.StatusCode,
			Code:   envelope.Error.Code,
			Info:   envelope.Error.Info,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamError{
			Reason:     domain.ReasonHTTPStatus,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}
	if readErr != nil {
		return &domain.UpstreamError{Reason: domain.ReasonTransport, Err: readErr}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.UpstreamError{
			Reason: domain.ReasonMalformed, Status: resp.StatusCode, Detail: "undecodable body", Err: err,
		}
	}
	return nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	result := "ok"
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		result = string(ue.Reason)
	} else if err != nil {
		result = "error"
	}
	metrics.ObserveWikiRequest(op, result, time.Since(start))
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Dur("duration", time.Since(start)).Msg("wiki request failed")
	}
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, maxBodyBytes))
	_ = rc.Close()
}
