// Package rss 以 RSS 订阅源作为搜索服务：拉取订阅源并按关键词本地过滤
package rss

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

// Client RSS 搜索客户端
type Client struct {
	feeds   []string
	timeout time.Duration
	parser  *gofeed.Parser
}

// NewClient timeout 单位为秒，作用于每个订阅源
func NewClient(feeds []string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{feeds: feeds, timeout: t, parser: gofeed.NewParser()}
}

var _ search.Searcher = (*Client)(nil)

// Search 拉取所有订阅源，返回标题或描述命中任一关键词的条目
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if len(c.feeds) == 0 {
		return nil, errors.New("rss: no feeds configured")
	}

	terms := query.Terms(req.Query)
	var (
		results []search.Result
		failed  int
		lastErr error
	)
	for _, feedURL := range c.feeds {
		feedCtx, cancel := context.WithTimeout(ctx, c.timeout)
		feed, err := c.parser.ParseURLWithContext(feedURL, feedCtx)
		cancel()
		if err != nil {
			failed++
			lastErr = err
			logger.Log.Warnf("解析 RSS 失败 [%s]: %v", feedURL, err)
			continue
		}

		for _, item := range feed.Items {
			if item.Link == "" || !matches(item, terms) || !inRange(item, req.StartDate, req.EndDate) {
				continue
			}
			results = append(results, toResult(item))
			if req.MaxResults > 0 && len(results) >= req.MaxResults {
				return &search.Response{Results: results}, nil
			}
		}
	}

	if failed == len(c.feeds) {
		return nil, fmt.Errorf("rss: all %d feeds failed: %w", failed, lastErr)
	}
	return &search.Response{Results: results}, nil
}

func matches(item *gofeed.Item, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, t := range terms {
		if strings.Contains(text, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func inRange(item *gofeed.Item, start, end string) bool {
	if item.PublishedParsed == nil {
		return true
	}
	day := item.PublishedParsed.Format(time.DateOnly)
	if start != "" && day < start {
		return false
	}
	if end != "" && day > end {
		return false
	}
	return true
}

func toResult(item *gofeed.Item) search.Result {
	content := item.Description
	if item.Content != "" {
		content = item.Content
	}
	var published string
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.Format(time.RFC3339)
	}
	return search.Result{
		Title:         item.Title,
		URL:           item.Link,
		Content:       content,
		PublishedDate: published,
	}
}
