package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	var got SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tv-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"q","results":[
			{"title":"Floods hit Europe","url":"https://example.com/a","content":"insured loss","score":0.9,"published_date":"2024-05-01"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("tv-key", WithBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), &search.Request{Query: "(climate change)", MaxResults: 3, StartDate: "2024-05-01"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got.Query != "(climate change)" || got.MaxResults != 3 || got.Topic != "news" || got.SearchDepth != "basic" {
		t.Errorf("request = %+v", got)
	}
	if got.StartDate != "2024-05-01" {
		t.Errorf("StartDate = %q", got.StartDate)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "https://example.com/a" || resp.Results[0].PublishedDate != "2024-05-01" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestClient_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("tv-key", WithBaseURL(srv.URL))
	if _, err := c.Search(context.Background(), &search.Request{Query: "x"}); err == nil {
		t.Fatal("Search() expected error on 429")
	}
}
