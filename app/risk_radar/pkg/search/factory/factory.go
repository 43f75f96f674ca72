package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/rss"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/searxng"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("search provider not configured")
		}
		provider = "tavily"
	}

	switch provider {
	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Search.Tavily.APIKey,
			tavily.WithTimeout(time.Duration(cfg.Pipeline.FetchTimeout)*time.Second)), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil

	case "rss":
		if len(cfg.Search.RSS.Feeds) == 0 {
			return nil, fmt.Errorf("rss feeds are missing")
		}
		return rss.NewClient(cfg.Search.RSS.Feeds, cfg.Search.RSS.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
