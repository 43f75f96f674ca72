// Package enrich 调用 LLM 为文章生成结构化的风险字段
package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	dm "github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

// ChatModel LLM 服务，eino 的 ChatModel 满足该接口
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Requester 富化请求器
type Requester struct {
	cm         ChatModel
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// Option 请求器选项
type Option func(*Requester)

// WithRetry 设置 429 重试次数与初始退避
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(r *Requester) {
		r.maxRetries = maxRetries
		r.baseDelay = baseDelay
	}
}

// NewRequester limiter 为 nil 时不限流
func NewRequester(cm ChatModel, limiter *rate.Limiter, opts ...Option) *Requester {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	r := &Requester{cm: cm, limiter: limiter, maxRetries: 3, baseDelay: 2 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enrich 为一篇文章请求富化字段。
// 返回值总是非 nil 且携带原文；LLM 调用失败返回 ErrUpstreamUnavailable，
// 回复无法解析返回 ErrEnrichmentParse，两种情况下 LLM 字段均为缺失
func (r *Requester) Enrich(ctx context.Context, a dm.RawArticle) (*dm.Enrichment, error) {
	reply, err := r.generate(ctx, BuildPrompt(a))
	if err != nil {
		return &dm.Enrichment{Article: a}, fmt.Errorf("enrich %s: %w: %w", a.URL, dm.ErrUpstreamUnavailable, err)
	}

	enr, err := ParseReply(reply)
	enr.Article = a
	if err != nil {
		return enr, fmt.Errorf("enrich %s: %w", a.URL, err)
	}
	return enr, nil
}

// generate 调用 LLM，429 时指数退避重试
func (r *Requester) generate(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: prompt},
	}

	var lastErr error
	for i := 0; i <= r.maxRetries; i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("limiter wait error: %w", err)
		}

		resp, err := r.cm.Generate(ctx, messages)
		if err == nil {
			if resp == nil {
				return "", fmt.Errorf("empty llm response")
			}
			return resp.Content, nil
		}

		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err
		if i == r.maxRetries {
			break
		}
		delay := r.baseDelay * time.Duration(1<<i)
		logger.Log.Warnf("触发 429 限流，等待 %v 后重试 (%d/%d)...", delay, i+1, r.maxRetries)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
