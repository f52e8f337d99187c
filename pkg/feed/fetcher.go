package feed

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/feedpost/pkg/domain"
)

// FetchError describes a failed feed fetch. Transient errors (network,
// timeout, server-side status) are expected to clear by the next cycle,
// non-transient ones indicate a malformed feed payload.
type FetchError struct {
	URL       string
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "malformed"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPFetcher fetches RSS/Atom feeds via HTTP and normalizes them into entries
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a new feed fetcher
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch retrieves the feed's current entries, newest first, capped at the
// feed's fetch limit. Never retries internally, retry happens on the next
// scheduled cycle.
func (f *HTTPFetcher) Fetch(ctx context.Context, fd domain.Feed) ([]domain.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fd.URL, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: fd.URL, Transient: false, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	addBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: fd.URL, Transient: true, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, &FetchError{URL: fd.URL, Transient: transient,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: fd.URL, Transient: false, Err: fmt.Errorf("parse feed: %w", err)}
	}

	entries := make([]domain.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry := domain.Entry{
			Title: item.Title,
			Link:  item.Link,
			Body:  item.Description,
		}
		if entry.Body == "" {
			entry.Body = item.Content
		}

		// id falls back to link, then feed+title for feeds without GUIDs
		switch {
		case item.GUID != "":
			entry.ID = item.GUID
		case item.Link != "":
			entry.ID = item.Link
		default:
			entry.ID = fmt.Sprintf("%s-%s", parsed.Title, item.Title)
		}

		if item.PublishedParsed != nil {
			entry.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			entry.Published = *item.UpdatedParsed
		}

		entries = append(entries, entry)
	}

	normalizeOrder(entries)

	if fd.FetchLimit > 0 && len(entries) > fd.FetchLimit {
		entries = entries[:fd.FetchLimit]
	}

	return entries, nil
}

// normalizeOrder sorts entries newest first by publish time. Applied only
// when every entry carries a timestamp, otherwise the source order is
// trusted as-is to avoid shuffling feeds that rely on document order.
func normalizeOrder(entries []domain.Entry) {
	for _, e := range entries {
		if e.Published.IsZero() {
			return
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Published.After(entries[j].Published)
	})
}
