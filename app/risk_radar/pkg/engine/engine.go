// Package engine 串联查询、抓取、实体识别、富化与归一化
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/enrich"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/fetcher"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	dm "github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/ner"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/normalize"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/search/factory"
)

// ArticleFetcher 按查询串抓取文章
type ArticleFetcher interface {
	Fetch(ctx context.Context, q string, maxResults int, rng *query.DateRange) ([]dm.RawArticle, error)
}

// Enricher 为单篇文章请求 LLM 富化
type Enricher interface {
	Enrich(ctx context.Context, a dm.RawArticle) (*dm.Enrichment, error)
}

// EntityExtractor 从正文识别地点与机构
type EntityExtractor interface {
	Extract(ctx context.Context, text string) ner.Result
}

// RecordCache 已富化记录的缓存，未命中时 Get 返回 nil, nil
type RecordCache interface {
	Get(ctx context.Context, url string) (*dm.EnrichedRecord, error)
	Set(ctx context.Context, rec dm.EnrichedRecord) error
}

// RecordSink 记录落库
type RecordSink interface {
	SaveRecords(ctx context.Context, runID string, recs []dm.EnrichedRecord) error
}

// Deps 引擎依赖；Cache 与 Sink 可以为空
type Deps struct {
	Fetcher    ArticleFetcher
	Enricher   Enricher
	Extractor  EntityExtractor
	Normalizer *normalize.Normalizer
	Cache      RecordCache
	Sink       RecordSink
}

// Engine 核心处理引擎
type Engine struct {
	Deps
	maxResults   int
	lookbackDays int
}

// New 用给定依赖创建引擎
func New(deps Deps) *Engine {
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New(nil)
	}
	if deps.Extractor == nil {
		deps.Extractor = ner.NewExtractor(nil)
	}
	return &Engine{Deps: deps, maxResults: 10, lookbackDays: 1}
}

// NewEngine 按配置创建引擎实例，cache 与 sink 可以为 nil
func NewEngine(ctx context.Context, cfg *config.Config, cache RecordCache, sink RecordSink) (*Engine, error) {
	// 初始化 LLM
	temperature := cfg.LLM.Temperature
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: &temperature,
		Timeout:     time.Duration(cfg.LLM.Timeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	// 初始化限流器
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)

	// 初始化搜索客户端
	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	e := New(Deps{
		Fetcher: fetcher.New(searcher, fetcher.Options{
			MinContentLen: cfg.Pipeline.MinContentLen,
			MaxContentLen: cfg.Pipeline.MaxContentLen,
			FetchFullText: cfg.Pipeline.FetchFullText,
			FetchTimeout:  time.Duration(cfg.Pipeline.FetchTimeout) * time.Second,
		}),
		Enricher:   enrich.NewRequester(chatModel, limiter),
		Extractor:  ner.NewExtractor(nil),
		Normalizer: normalize.New(cfg.TrustedSources),
		Cache:      cache,
		Sink:       sink,
	})
	e.maxResults = cfg.Pipeline.MaxResults
	e.lookbackDays = cfg.Pipeline.LookbackDays
	return e, nil
}

// RunOptions 运行选项
type RunOptions struct {
	RunID            string
	Domains          []string
	Range            *query.DateRange // 为空时取最近 lookbackDays 天
	ProgressCallback func(status string, progress int)
}

// DomainResult 单个领域的处理情况
type DomainResult struct {
	Domain   string
	Query    string
	Articles int
	Err      error // 搜索失败时非空，该领域结果为空
}

// Result 一次运行的输出表
type Result struct {
	RunID   string
	Range   *query.DateRange
	Records []dm.EnrichedRecord
	Domains []DomainResult
}

// Run 依次处理每个领域和每篇文章；单个领域或文章失败不会中断整批
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if len(opts.Domains) == 0 {
		return nil, fmt.Errorf("no domains provided")
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	rng := opts.Range
	if rng == nil {
		rng = query.Recent(time.Now(), e.lookbackDays)
	}
	progress := func(status string, p int) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(status, p)
		}
	}

	logger.Log.Infof("开始运行 [%s]，包含 %d 个领域", opts.RunID, len(opts.Domains))
	progress("starting", 0)

	res := &Result{RunID: opts.RunID, Range: rng}
	seen := make(map[string]bool)

	for i, domain := range opts.Domains {
		q := query.Build(domain, rng)
		dr := DomainResult{Domain: domain, Query: q}

		articles, err := e.Fetcher.Fetch(ctx, q, e.maxResults, rng)
		if err != nil {
			logger.Log.Errorf("搜索领域失败 [%s]: %v", domain, err)
			dr.Err = err
			res.Domains = append(res.Domains, dr)
			continue
		}

		for _, a := range articles {
			a.URL = strings.TrimSpace(a.URL)
			if a.URL == "" || seen[a.URL] {
				continue
			}
			seen[a.URL] = true
			res.Records = append(res.Records, e.process(ctx, domain, a))
			dr.Articles++
		}
		if dr.Articles == 0 {
			logger.Log.Warnf("领域 [%s] 未找到有效文章", domain)
		}
		res.Domains = append(res.Domains, dr)

		progress(fmt.Sprintf("processed domain: %s", domain), 10+int(float64(i+1)/float64(len(opts.Domains))*80))
	}

	if e.Sink != nil {
		if err := e.Sink.SaveRecords(ctx, res.RunID, res.Records); err != nil {
			logger.Log.Errorf("保存记录失败: %v", err)
		}
	}

	progress("completed", 100)
	logger.Log.Infof("运行 [%s] 完成，共 %d 条记录", res.RunID, len(res.Records))
	return res, nil
}

// process 单篇文章：缓存 -> 实体识别 + 富化 -> 归一化；总是返回一条记录
func (e *Engine) process(ctx context.Context, domain string, a dm.RawArticle) dm.EnrichedRecord {
	if e.Cache != nil {
		if rec, err := e.Cache.Get(ctx, a.URL); err != nil {
			logger.Log.Warnf("读取缓存失败 [%s]: %v", a.URL, err)
		} else if rec != nil {
			logger.Log.Debugf("命中缓存 [%s]", a.URL)
			// 记录归属本次产生它的领域
			rec.Query = domain
			return *rec
		}
	}

	ents := e.Extractor.Extract(ctx, a.Text())

	enr, err := e.Enricher.Enrich(ctx, a)
	cacheable := err == nil
	switch {
	case errors.Is(err, dm.ErrEnrichmentParse):
		logger.Log.Warnf("富化结果解析失败，字段置空 [%s]: %v", a.URL, err)
	case err != nil:
		logger.Log.Errorf("富化请求失败，字段置空 [%s]: %v", a.URL, err)
	}
	if enr == nil {
		enr = &dm.Enrichment{}
	}
	enr.Article = a

	rec := e.Normalizer.Normalize(enr, normalize.Extras{
		Location:      ents.Location,
		Organizations: ents.Organizations,
		Query:         domain,
	})

	if e.Cache != nil && cacheable {
		if err := e.Cache.Set(ctx, rec); err != nil {
			logger.Log.Warnf("写入缓存失败 [%s]: %v", a.URL, err)
		}
	}
	return rec
}
