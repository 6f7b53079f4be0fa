// Package dictionary implements the external word lookup provider on top of
// Cambridge Dictionary's HTML pages.
package dictionary

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/resilience"
)

const (
	defaultBaseURL   = "https://dictionary.cambridge.org"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var (
	selDefinition  = cascadia.MustCompile("div.def.ddef_d.db")
	selExample     = cascadia.MustCompile("div.examp.dexamp")
	selTranslation = cascadia.MustCompile("span.trans.dtrans.dtrans-se")
)

// Client scrapes monolingual definitions/examples and English-Turkish
// translations. Every failure it returns is classified for the resilient
// caller wrapping it.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		logger:    logger,
	}
}

// Lookup fetches everything the dictionary knows about a normalized word.
// A missing translation page is tolerated: the monolingual result is
// returned with empty translations.
func (c *Client) Lookup(ctx context.Context, word string) (entities.WordKnowledge, error) {
	slug := strings.ReplaceAll(word, " ", "-")

	doc, err := c.fetch(ctx, c.baseURL+"/dictionary/english/"+slug)
	if err != nil {
		return entities.WordKnowledge{}, fmt.Errorf("lookup %q: %w", word, err)
	}

	kn := entities.WordKnowledge{
		Definitions: collectText(doc, selDefinition, ":"),
		Examples:    collectText(doc, selExample, ""),
	}

	trDoc, err := c.fetch(ctx, c.baseURL+"/dictionary/english-turkish/"+slug)
	if err != nil {
		c.logger.Debug("translation lookup failed",
			zap.String("word", word),
			zap.Error(err),
		)
		return kn, nil
	}
	kn.Translations = collectText(trDoc, selTranslation, "")

	return kn, nil
}

func (c *Client) fetch(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, resilience.Malformed(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.Transient(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("parse response: %w", err))
	}
	return doc, nil
}

// classifyStatus maps an HTTP status to the failure taxonomy. 404 is not an
// error here: the dictionary serves a search page and the selectors simply
// match nothing, which the cache layer reports as an unknown word.
func classifyStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code < 400 || code == http.StatusNotFound:
		return nil
	case code == http.StatusTooManyRequests:
		wait := 30 * time.Second
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		return resilience.RateLimited(fmt.Errorf("dictionary: status %d", code), wait)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return resilience.Unauthorized(fmt.Errorf("dictionary: status %d", code))
	case code == http.StatusRequestTimeout || code >= 500:
		return resilience.Transient(fmt.Errorf("dictionary: status %d", code))
	default:
		return resilience.Malformed(fmt.Errorf("dictionary: status %d", code))
	}
}

// collectText extracts the trimmed text of every node matching sel, in
// document order, dropping empties. trailing is additionally stripped from
// the right edge (definitions end with a colon on the source pages).
func collectText(doc *html.Node, sel cascadia.Matcher, trailing string) []string {
	var out []string
	for _, n := range cascadia.QueryAll(doc, sel) {
		text := strings.TrimSpace(nodeText(n))
		if trailing != "" {
			text = strings.TrimRight(text, trailing)
			text = strings.TrimSpace(text)
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
