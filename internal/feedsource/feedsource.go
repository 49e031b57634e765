// Package feedsource fetches and parses RSS/Atom/JSON feeds over HTTP,
// grounded on _examples/original_source/update.py's use of Python's
// feedparser (conditional GET, 301/304 handling, bozo tolerance) and
// enriched with github.com/mmcdole/gofeed for the actual parsing, the
// way _examples/other_examples's rogue_planet fetcher pairs a thin HTTP
// layer with a dedicated feed-parsing library.
package feedsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Document is the normalised result of polling one feed URL, mirroring
// the feedparser return value's fields that update_group_from_feed
// inspects (spec.md §6 "Poll Result").
type Document struct {
	// Status is the HTTP status code of the final response actually
	// parsed (0 if the request never reached the server).
	Status int
	// Href is the feed's URL after following a permanent (301)
	// redirect; callers must persist this back into the group's
	// config.Href when it differs from the href requested.
	Href string
	// ETag/Modified are the caching validators to store for the next
	// poll's conditional GET.
	ETag     string
	Modified string

	// Bozo mirrors feedparser's "well-formedness" flag: true if the
	// feed was malformed but gofeed still managed to extract
	// something from it.
	Bozo    bool
	BozoErr error

	// Feed is nil when the response was 304 Not Modified, or when the
	// transport/parse failed outright.
	Feed *gofeed.Feed
}

// NotModified reports whether the poll found nothing new (HTTP 304).
func (d *Document) NotModified() bool {
	return d.Status == http.StatusNotModified
}

// NewHTTPClient returns an http.Client tuned for feed polling: it does
// not auto-follow redirects (CheckRedirect stops at the first hop) so
// Fetch can see a permanent (301) redirect and record its target.
// Fetch follows only 301 itself; a response with any other redirect
// status is not followed.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func doRequest(ctx context.Context, client *http.Client, href, etag, modified, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, fmt.Errorf("feedsource: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if modified != "" {
		req.Header.Set("If-Modified-Since", modified)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feedsource: GET %s: %w", href, err)
	}
	return resp, nil
}

// Fetch performs one conditional-GET poll of href, following at most
// one permanent (301) redirect and updating Document.Href to match
// (spec.md §4.E.3 "Redirect handling"). A transport-level error (DNS,
// connection refused, timeout) is returned as the error value, for the
// caller to fold into failed_polls accounting; a malformed-but-parsed
// feed instead sets Bozo/BozoErr with Feed still populated, matching
// feedparser's distinction between hard and soft failures.
func Fetch(ctx context.Context, client *http.Client, href, etag, modified, userAgent string) (*Document, error) {
	resp, err := doRequest(ctx, client, href, etag, modified, userAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := &Document{Status: resp.StatusCode, Href: href, ETag: resp.Header.Get("ETag"), Modified: resp.Header.Get("Last-Modified")}

	if resp.StatusCode == http.StatusMovedPermanently {
		location := resp.Header.Get("Location")
		if location == "" {
			doc.Bozo = true
			doc.BozoErr = fmt.Errorf("feedsource: 301 response with no Location header")
			return doc, nil
		}
		if u, err := resp.Location(); err == nil {
			location = u.String()
		}
		doc.Href = location
		resp2, err := doRequest(ctx, client, location, etag, modified, userAgent)
		if err != nil {
			return doc, err
		}
		defer resp2.Body.Close()
		doc.Status = resp2.StatusCode
		doc.ETag = resp2.Header.Get("ETag")
		doc.Modified = resp2.Header.Get("Last-Modified")
		if resp2.StatusCode == http.StatusNotModified {
			return doc, nil
		}
		parseInto(doc, resp2.Body)
		return doc, nil
	}

	if resp.StatusCode == http.StatusNotModified {
		return doc, nil
	}

	parseInto(doc, resp.Body)
	return doc, nil
}

func parseInto(doc *Document, r io.Reader) {
	feed, err := gofeed.NewParser().Parse(r)
	doc.Feed = feed
	if err != nil {
		doc.Bozo = true
		doc.BozoErr = err
	}
}
