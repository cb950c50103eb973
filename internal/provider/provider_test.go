package provider

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
	"github.com/Belphemur/AnimeProviders/internal/client"
	"github.com/Belphemur/AnimeProviders/internal/models"
)

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Get(_ context.Context, rawURL string, _ ...client.RequestOption) ([]byte, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, &apperrors.UpstreamError{URL: rawURL, StatusCode: 500}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) PostForm(ctx context.Context, rawURL string, _ url.Values, opts ...client.RequestOption) ([]byte, error) {
	return f.Get(ctx, rawURL, opts...)
}

type stubProvider struct{ id string }

func (s stubProvider) ID() string   { return s.id }
func (s stubProvider) Name() string { return strings.ToUpper(s.id) }
func (s stubProvider) Lang() string { return "es" }
func (s stubProvider) MainPage(context.Context) ([]models.CatalogShelf, error) {
	return nil, nil
}
func (s stubProvider) Search(context.Context, string) ([]models.CatalogEntry, error) {
	return nil, nil
}
func (s stubProvider) Load(context.Context, string) (*models.DetailRecord, error) {
	return nil, nil
}
func (s stubProvider) LoadLinks(context.Context, string, SubtitleCallback, StreamCallback) (models.LinkSummary, error) {
	return models.LinkSummary{}, nil
}

// parseLines turns "a\nb" into one entry per line
func parseLines(body []byte) ([]models.CatalogEntry, error) {
	var entries []models.CatalogEntry
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		if line != "" {
			entries = append(entries, models.CatalogEntry{Title: line})
		}
	}
	return entries, nil
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(stubProvider{"a"}, stubProvider{"b"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if p, err := r.Get("b"); err != nil || p.ID() != "b" {
		t.Errorf("Get(b) = %v, %v", p, err)
	}
	if _, err := r.Get("zzz"); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list := r.List()
	if len(list) != 2 || list[0].ID() != "a" || list[1].ID() != "b" {
		t.Errorf("List() order wrong: %v", list)
	}

	if err := r.Add(stubProvider{"a"}); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
	if _, err := NewRegistry(stubProvider{"x"}, stubProvider{"x"}); err == nil {
		t.Error("expected NewRegistry to reject duplicates")
	}
}

func TestRegister_Factories(t *testing.T) {
	Register("unit-stub", func(opts Options) Provider { return stubProvider{"unit-stub"} })

	found := false
	for _, id := range RegisteredIDs() {
		if id == "unit-stub" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unit-stub to be registered")
	}

	p, err := New("unit-stub", Options{})
	if err != nil || p.ID() != "unit-stub" {
		t.Errorf("New() = %v, %v", p, err)
	}
	if _, err := New("missing", Options{}); !errors.Is(err, &apperrors.ErrNotFound{}) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("unit-stub", func(opts Options) Provider { return stubProvider{"unit-stub"} })
}

func TestForEach_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 20)

	err := ForEach(context.Background(), 3, items, func(ctx context.Context, i int, _ int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestForEach_FirstErrorCancels(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(context.Background(), 1, []int{1, 2, 3}, func(ctx context.Context, i int, v int) error {
		if v == 1 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestMap_KeepsOrderAndErrors(t *testing.T) {
	results, errs := Map(context.Background(), 2, []int{1, 2, 3, 4}, func(ctx context.Context, i int, v int) (int, error) {
		if v == 3 {
			return 0, errors.New("three")
		}
		return v * 10, nil
	})
	want := []int{10, 20, 0, 40}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
	}
	if errs[2] == nil || errs[0] != nil {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestEmitter_SerialisesCallbacks(t *testing.T) {
	var active atomic.Int32
	var overlapped atomic.Bool
	var count int

	em := NewEmitter(nil, func(models.StreamCandidate) {
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
		count++
		time.Sleep(time.Millisecond)
		active.Add(-1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			em.Stream(models.StreamCandidate{})
		}()
	}
	wg.Wait()

	if overlapped.Load() {
		t.Error("stream callback was invoked concurrently")
	}
	if count != 10 || em.Summary().Emitted != 10 {
		t.Errorf("count = %d, emitted = %d, want 10", count, em.Summary().Emitted)
	}
	em.Subtitle(models.SubtitleRef{})
}

func TestLoadShelves_Partial(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://site/a": "one\ntwo",
		"http://site/c": "",
	}}
	opts := Options{Fetcher: fetcher}.WithDefaults("http://site")

	shelves, err := LoadShelves(context.Background(), opts, "test", []ShelfSource{
		{Label: "A", URL: "http://site/a", Parse: parseLines},
		{Label: "B", URL: "http://site/b", Parse: parseLines},
		{Label: "C", URL: "http://site/c", Parse: parseLines},
	})
	if err != nil {
		t.Fatalf("LoadShelves failed: %v", err)
	}
	if len(shelves) != 3 {
		t.Fatalf("expected 3 shelves, got %d", len(shelves))
	}
	if shelves[0].Label != "A" || len(shelves[0].Entries) != 2 {
		t.Errorf("shelf A = %+v", shelves[0])
	}
	if shelves[1].Label != "B" || shelves[1].Entries == nil || len(shelves[1].Entries) != 0 {
		t.Errorf("failed shelf B should be empty, got %+v", shelves[1])
	}
}

func TestLoadShelves_Strict(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"http://site/a": "one"}}
	opts := Options{Fetcher: fetcher, Strict: true}.WithDefaults("http://site")

	_, err := LoadShelves(context.Background(), opts, "test", []ShelfSource{
		{Label: "A", URL: "http://site/a", Parse: parseLines},
		{Label: "B", URL: "http://site/b", Parse: parseLines},
	})
	if !errors.Is(err, &apperrors.UpstreamError{}) {
		t.Errorf("expected UpstreamError, got %v", err)
	}
}

func TestLoadShelves_EmptyCatalog(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"http://site/a": ""}}
	opts := Options{Fetcher: fetcher}.WithDefaults("http://site")

	_, err := LoadShelves(context.Background(), opts, "test", []ShelfSource{
		{Label: "A", URL: "http://site/a", Parse: parseLines},
		{Label: "B", URL: "http://site/b", Parse: parseLines},
	})
	if !errors.Is(err, apperrors.ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestResolveAll(t *testing.T) {
	resolve := func(ctx context.Context, c string) error {
		if c == "bad" {
			return errors.New("unresolvable")
		}
		return nil
	}

	t.Run("partial counts failures", func(t *testing.T) {
		em := NewEmitter(nil, nil)
		opts := Options{}.WithDefaults("http://site")
		if err := ResolveAll(context.Background(), opts, "test", em, []string{"a", "bad", "b"}, resolve); err != nil {
			t.Fatalf("ResolveAll failed: %v", err)
		}
		s := em.Summary()
		if s.Candidates != 3 || s.Failed != 1 {
			t.Errorf("summary = %+v", s)
		}
	})

	t.Run("strict aborts", func(t *testing.T) {
		em := NewEmitter(nil, nil)
		opts := Options{Strict: true}.WithDefaults("http://site")
		if err := ResolveAll(context.Background(), opts, "test", em, []string{"a", "bad"}, resolve); err == nil {
			t.Fatal("expected strict policy to surface the failure")
		}
	})
}
