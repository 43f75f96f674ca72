package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Insurance Wire</title>
  <item>
    <title>Reinsurance rates climb after hurricane season</title>
    <link>https://wire.example/reinsurance</link>
    <description>Carriers report higher insured loss estimates.</description>
    <pubDate>Wed, 01 May 2024 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Local football results</title>
    <link>https://wire.example/football</link>
    <description>Nothing to see here.</description>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Old reinsurance story</title>
    <link>https://wire.example/old</link>
    <description>reinsurance</description>
    <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	c := NewClient([]string{srv.URL, srv.URL + "/missing-is-still-rss"}, 5)
	resp, err := c.Search(context.Background(), &search.Request{
		Query:     "(insured loss OR reinsurance)",
		StartDate: "2024-04-30",
		EndDate:   "2024-05-02",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// 两个订阅源返回相同内容，各命中一条
	if len(resp.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2: %+v", len(resp.Results), resp.Results)
	}
	r := resp.Results[0]
	if r.URL != "https://wire.example/reinsurance" || r.PublishedDate != "2024-05-01T09:00:00Z" {
		t.Errorf("result = %+v", r)
	}
}

func TestClient_AllFeedsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient([]string{srv.URL}, 5)
	if _, err := c.Search(context.Background(), &search.Request{Query: "x"}); err == nil {
		t.Fatal("Search() expected error when every feed fails")
	}
}

func TestClient_NoFeeds(t *testing.T) {
	if _, err := NewClient(nil, 0).Search(context.Background(), &search.Request{}); err == nil {
		t.Fatal("Search() expected error without feeds")
	}
}
