package host

import (
	"context"
	"net/http"
	"net/url"
)

// commitsPreviewAccept is the Accept header the search/commits endpoint
// requires on GitHub-Enterprise instances that still gate it behind a
// preview media type.
const commitsPreviewAccept = "application/vnd.github.cloak-preview+json"

// SearchIssues executes a search/issues query (which covers both issues and
// pull requests) for one page, throttled against the shared search minimum
// interval and quota awareness.
func (c *Client) SearchIssues(ctx context.Context, query string, page int) (SearchResult[WireSearchItem], error) {
	var result SearchResult[WireSearchItem]
	q := url.Values{"q": {query}, "per_page": {"100"}}
	if page > 0 {
		q.Set("page", itoa(page))
	}

	err := c.throttledSearch(ctx, func() (*http.Response, error) {
		body, resp, reqErr := c.doRequest(ctx, http.MethodGet, "/search/issues", q, "")
		if reqErr != nil {
			return resp, reqErr
		}
		return resp, decodeJSON(body, &result)
	})
	return result, err
}

// SearchCommits executes a search/commits query for one page.
func (c *Client) SearchCommits(ctx context.Context, query string, page int) (SearchResult[WireCommitSearchItem], error) {
	var result SearchResult[WireCommitSearchItem]
	q := url.Values{"q": {query}, "per_page": {"100"}}
	if page > 0 {
		q.Set("page", itoa(page))
	}

	err := c.throttledSearch(ctx, func() (*http.Response, error) {
		body, resp, reqErr := c.doRequest(ctx, http.MethodGet, "/search/commits", q, commitsPreviewAccept)
		if reqErr != nil {
			return resp, reqErr
		}
		return resp, decodeJSON(body, &result)
	})
	return result, err
}
