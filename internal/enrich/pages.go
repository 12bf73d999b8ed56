package enrich

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/logger"
)

const (
	// excerptLimit caps the plain text kept per page.
	excerptLimit = 1500
	// bodyLimit caps how much of a response is read at all.
	bodyLimit = 256 * 1024
)

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// FetchExcerpts fetches up to maxPages tab URLs and reduces each response to
// a short plain-text excerpt for Tier 2 analysis. Entirely best effort:
// unreachable or non-HTML pages are skipped, never reported as errors.
func FetchExcerpts(ctx context.Context, tabs []api.Tab, maxPages int, log logger.Logger) []PageExcerpt {
	httpc := &http.Client{Timeout: 10 * time.Second}

	var excerpts []PageExcerpt
	for _, tab := range tabs {
		if len(excerpts) >= maxPages {
			break
		}
		text, err := fetchPageText(ctx, httpc, tab.URL)
		if err != nil {
			log.Debug("page fetch skipped",
				logger.String("url", tab.URL), logger.Error(err))
			continue
		}
		if text == "" {
			continue
		}
		excerpts = append(excerpts, PageExcerpt{URL: tab.URL, Text: text})
	}
	return excerpts
}

func fetchPageText(ctx context.Context, httpc *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }() // safe to ignore

	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return "", err
	}
	return StripHTML(string(body)), nil
}

// StripHTML crudely reduces an HTML document to whitespace-normalized text,
// truncated to the excerpt limit. Good enough for prompt context; this is
// not a parser.
func StripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if len(text) > excerptLimit {
		text = text[:excerptLimit]
	}
	return text
}
