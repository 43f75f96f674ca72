package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

// fakeSearcher 模拟搜索服务
type fakeSearcher struct {
	resp *search.Response
	err  error
	req  *search.Request
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	f.req = req
	return f.resp, f.err
}

func TestFetch(t *testing.T) {
	s := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{Title: "Wildfire losses mount", URL: "https://www.reuters.com/a", Content: "<p>Insured &amp; uninsured losses</p>", PublishedDate: "2024-05-01"},
		{Title: "dup", URL: "https://www.reuters.com/a", Content: "dup"},
		{Title: "no url", URL: "", Content: "dropped"},
		{Title: "", URL: "https://example.com/news/2024/04/30/storm-report", Content: "Storm report"},
	}}}

	f := New(s, Options{MaxContentLen: 5000})
	rng := query.Recent(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), 2)
	got, err := f.Fetch(context.Background(), "(climate change)", 10, rng)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if s.req.StartDate != "2024-04-30" || s.req.EndDate != "2024-05-02" || s.req.Topic != "news" {
		t.Errorf("request = %+v", s.req)
	}
	if len(got) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(got))
	}

	a := got[0]
	if a.Source != "reuters.com" {
		t.Errorf("Source = %q", a.Source)
	}
	if a.Snippet != "Insured & uninsured losses" {
		t.Errorf("Snippet = %q", a.Snippet)
	}
	if a.PublishedDate == nil || a.PublishedDate.Format(time.DateOnly) != "2024-05-01" {
		t.Errorf("PublishedDate = %v", a.PublishedDate)
	}

	b := got[1]
	if b.Title != "storm-report" {
		t.Errorf("Title fallback = %q", b.Title)
	}
	if b.PublishedDate == nil || b.PublishedDate.Format(time.DateOnly) != "2024-04-30" {
		t.Errorf("PublishedDate from URL = %v", b.PublishedDate)
	}
}

func TestFetch_UpstreamUnavailable(t *testing.T) {
	f := New(&fakeSearcher{err: errors.New("dial tcp: timeout")}, Options{})
	got, err := f.Fetch(context.Background(), "q", 5, nil)
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Fatalf("Fetch() error = %v, want ErrUpstreamUnavailable", err)
	}
	if len(got) != 0 {
		t.Errorf("articles = %v, want none", got)
	}
}

func TestFetch_FullText(t *testing.T) {
	s := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{Title: "Short", URL: "https://example.com/short", Content: "tiny"},
	}}}

	var calls int
	f := New(s, Options{FetchFullText: true, MinContentLen: 100, MaxContentLen: 20}).
		WithFullText(func(url string, timeout time.Duration) (string, error) {
			calls++
			return "<article>" + strings.Repeat("long body ", 10) + "</article>", nil
		})

	got, err := f.Fetch(context.Background(), "q", 5, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("full text calls = %d, want 1", calls)
	}
	if len([]rune(got[0].Content)) != 20 || !strings.HasPrefix(got[0].Content, "long body") {
		t.Errorf("Content = %q", got[0].Content)
	}
	if got[0].Snippet != "tiny" {
		t.Errorf("Snippet = %q", got[0].Snippet)
	}
}

func TestFetch_MaxResults(t *testing.T) {
	s := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{Title: "a", URL: "https://e.com/a"},
		{Title: "b", URL: "https://e.com/b"},
		{Title: "c", URL: "https://e.com/c"},
	}}}
	got, err := New(s, Options{}).Fetch(context.Background(), "q", 2, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestFetch_BlankURL(t *testing.T) {
	s := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{Title: "blank", URL: "  "},
		{Title: "a", URL: " https://e.com/a "},
		{Title: "a dup", URL: "https://e.com/a"},
	}}}
	got, err := New(s, Options{}).Fetch(context.Background(), "q", 5, nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://e.com/a" {
		t.Errorf("got %+v", got)
	}
}
