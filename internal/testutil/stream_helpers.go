package testutil

import (
	"context"
	"net/url"
	"sync"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/models"
)

// StreamCollector records streams and subtitles emitted by a provider.
// This is a test helper and should not be used in production code.
type StreamCollector struct {
	mu        sync.Mutex
	Streams   []models.StreamCandidate
	Subtitles []models.SubtitleRef
}

// OnStream appends s to the collected streams
func (c *StreamCollector) OnStream(s models.StreamCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Streams = append(c.Streams, s)
}

// OnSubtitle appends s to the collected subtitles
func (c *StreamCollector) OnSubtitle(s models.SubtitleRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Subtitles = append(c.Subtitles, s)
}

// URLs returns the collected stream URLs in emission order
func (c *StreamCollector) URLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls := make([]string, len(c.Streams))
	for i, s := range c.Streams {
		urls[i] = s.StreamURL
	}
	return urls
}

// CollectStreams consumes a stream result channel into a slice, returning
// the first error. This is a test helper and should not be used in production code.
func CollectStreams(ctx context.Context, stream <-chan models.StreamResult[models.StreamCandidate]) ([]models.StreamCandidate, error) {
	var streams []models.StreamCandidate
	for {
		select {
		case result, ok := <-stream:
			if !ok {
				return streams, nil
			}
			if result.Err != nil {
				return nil, result.Err
			}
			streams = append(streams, result.Value)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// FakeFetcher serves canned bodies keyed by URL and records every request.
// This is a test helper and should not be used in production code.
type FakeFetcher struct {
	mu       sync.Mutex
	Pages    map[string]string
	Errors   map[string]error
	Requests []string
	Forms    []url.Values
}

// NewFakeFetcher creates a FakeFetcher serving pages
func NewFakeFetcher(pages map[string]string) *FakeFetcher {
	return &FakeFetcher{Pages: pages, Errors: map[string]error{}}
}

// Get implements client.Fetcher
func (f *FakeFetcher) Get(ctx context.Context, rawURL string, _ ...client.RequestOption) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, rawURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.Errors[rawURL]; ok {
		return nil, err
	}
	body, ok := f.Pages[rawURL]
	if !ok {
		return nil, &apperrors.UpstreamError{URL: rawURL, StatusCode: 404}
	}
	return []byte(body), nil
}

// PostForm implements client.Fetcher
func (f *FakeFetcher) PostForm(ctx context.Context, rawURL string, form url.Values, opts ...client.RequestOption) ([]byte, error) {
	f.mu.Lock()
	f.Forms = append(f.Forms, form)
	f.mu.Unlock()
	return f.Get(ctx, rawURL, opts...)
}

// Requested reports whether rawURL was fetched
func (f *FakeFetcher) Requested(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Requests {
		if r == rawURL {
			return true
		}
	}
	return false
}
