// Package fetcher 调用搜索服务并把搜索结果整理为 RawArticle
package fetcher

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search"
)

// FullTextFunc 抓取原文正文
type FullTextFunc func(url string, timeout time.Duration) (string, error)

// Options 抓取参数
type Options struct {
	Topic         string
	MinContentLen int           // 正文短于该长度时尝试抓取原文
	MaxContentLen int           // 截断长度
	FetchFullText bool          // 是否抓取原文
	FetchTimeout  time.Duration // 原文抓取超时
}

// Fetcher 原始文章抓取器
type Fetcher struct {
	searcher search.Searcher
	opts     Options
	fullText FullTextFunc
}

// New 创建抓取器，原文抓取默认使用 readability
func New(searcher search.Searcher, opts Options) *Fetcher {
	if opts.Topic == "" {
		opts.Topic = "news"
	}
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	return &Fetcher{searcher: searcher, opts: opts, fullText: readabilityText}
}

// WithFullText 替换原文抓取实现
func (f *Fetcher) WithFullText(fn FullTextFunc) *Fetcher {
	f.fullText = fn
	return f
}

// Fetch 执行搜索并返回去重后的文章；搜索失败时返回 ErrUpstreamUnavailable
func (f *Fetcher) Fetch(ctx context.Context, q string, maxResults int, rng *query.DateRange) ([]model.RawArticle, error) {
	resp, err := f.searcher.Search(ctx, &search.Request{
		Query:      q,
		Topic:      f.opts.Topic,
		MaxResults: maxResults,
		StartDate:  rng.StartDate(),
		EndDate:    rng.EndDate(),
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w: %w", q, model.ErrUpstreamUnavailable, err)
	}
	logger.Log.Debugf("搜索成功 [%s]: %s", q, gson.ToString(resp))

	seen := make(map[string]bool, len(resp.Results))
	articles := make([]model.RawArticle, 0, len(resp.Results))
	for _, item := range resp.Results {
		item.URL = strings.TrimSpace(item.URL)
		if item.URL == "" || seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		articles = append(articles, f.toArticle(item))
		if maxResults > 0 && len(articles) >= maxResults {
			break
		}
	}
	return articles, nil
}

func (f *Fetcher) toArticle(item search.Result) model.RawArticle {
	snippet := CleanText(item.Content)
	content := snippet
	if item.RawContent != "" {
		content = CleanText(item.RawContent)
	}

	// 摘要太短时尝试抓取原文
	if f.opts.FetchFullText && f.fullText != nil && len(content) < f.opts.MinContentLen {
		fetched, err := f.fullText(item.URL, f.opts.FetchTimeout)
		if err != nil {
			logger.Log.Warnf("原文抓取失败，使用搜索摘要 [%s]: %v", item.URL, err)
		} else if cleaned := CleanText(fetched); len(cleaned) > len(content) {
			content = cleaned
		}
	}
	content = truncate(content, f.opts.MaxContentLen)

	title := item.Title
	if title == "" {
		title = path.Base(item.URL)
	}
	if title == "" || title == "/" || title == "." {
		title = "No Title"
	}

	published := ParsePublished(item.PublishedDate)
	if published == nil {
		published = ExtractBestDate(item.URL, title, content)
	}

	return model.RawArticle{
		Title:         title,
		URL:           item.URL,
		Snippet:       snippet,
		PublishedDate: published,
		Source:        SourceFromURL(item.URL),
		Content:       content,
	}
}

func readabilityText(url string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(url, timeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
