package feedsource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// typeGoodness ranks <link rel="alternate"> MIME types the way
// admin.py's LinkParser did, preferring Atom over RSS over bare XML.
var typeGoodness = map[string]int{
	"application/atom+xml": 3,
	"application/rss+xml":  2,
	"application/json":     1,
	"text/xml":             0,
	"application/xml":      0,
}

// Autodiscover fetches pageURL as an HTML document and returns the
// best feed link advertised via <link rel="alternate"> autodiscovery
// tags, resolved to an absolute URL. It returns an error if the page
// has no such link.
func Autodiscover(ctx context.Context, client *http.Client, pageURL, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("feedsource: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("feedsource: GET %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("feedsource: parse HTML %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("feedsource: parse base URL %s: %w", pageURL, err)
	}

	bestGoodness := -1
	bestHref := ""
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, sel *goquery.Selection) {
		typ, _ := sel.Attr("type")
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		goodness, known := typeGoodness[typ]
		if !known {
			return
		}
		if goodness <= bestGoodness {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		bestGoodness = goodness
		bestHref = base.ResolveReference(ref).String()
	})

	if bestHref == "" {
		return "", fmt.Errorf("feedsource: no feed autodiscovery link found on %s", pageURL)
	}
	return bestHref, nil
}

// FindFeed implements admin.py's find_feed: try href directly as a
// feed; if that fails, treat it as an HTML page and look for a single
// hop of autodiscovery. It never recurses past that one hop.
func FindFeed(ctx context.Context, client *http.Client, href, userAgent string) (string, error) {
	doc, err := Fetch(ctx, client, href, "", "", userAgent)
	if err == nil && doc.Feed != nil && !doc.Bozo && len(doc.Feed.Items) > 0 {
		return doc.Href, nil
	}

	discovered, derr := Autodiscover(ctx, client, href, userAgent)
	if derr != nil {
		if err != nil {
			return "", fmt.Errorf("feedsource: %s is not a feed (%w) and autodiscovery failed (%v)", href, err, derr)
		}
		return "", fmt.Errorf("feedsource: %s parsed with no entries and autodiscovery failed: %w", href, derr)
	}

	verifyDoc, verr := Fetch(ctx, client, discovered, "", "", userAgent)
	if verr != nil || verifyDoc.Feed == nil {
		return "", fmt.Errorf("feedsource: autodiscovered link %s did not parse as a feed", discovered)
	}
	return discovered, nil
}
