package factory

import (
	"fmt"
	"testing"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
)

func TestNewSearcher(t *testing.T) {
	tests := []struct {
		name     string
		search   config.SearchConfig
		wantType string
		wantErr  bool
	}{
		{"implicit tavily", config.SearchConfig{Tavily: config.TavilyConfig{APIKey: "k"}}, "*tavily.Client", false},
		{"searxng", config.SearchConfig{Provider: "searxng", SearXNG: config.SearXNGConfig{BaseURL: "http://localhost:8080"}}, "*searxng.Client", false},
		{"rss", config.SearchConfig{Provider: "rss", RSS: config.RSSConfig{Feeds: []string{"http://x/feed"}}}, "*rss.Client", false},
		{"missing everything", config.SearchConfig{}, "", true},
		{"tavily without key", config.SearchConfig{Provider: "tavily"}, "", true},
		{"searxng without url", config.SearchConfig{Provider: "searxng"}, "", true},
		{"rss without feeds", config.SearchConfig{Provider: "rss"}, "", true},
		{"unknown", config.SearchConfig{Provider: "bing"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSearcher(&config.Config{Search: tt.search})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewSearcher() expected error, got %T", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSearcher() error = %v", err)
			}
			if got := fmt.Sprintf("%T", s); got != tt.wantType {
				t.Errorf("type = %s, want %s", got, tt.wantType)
			}
		})
	}
}
