package model

import "errors"

var (
	// ErrUpstreamUnavailable 外部服务（搜索、NER、LLM）调用失败或超时
	ErrUpstreamUnavailable = errors.New("risk_radar: upstream unavailable")

	// ErrEnrichmentParse LLM 回复无法解析为约定的结构
	ErrEnrichmentParse = errors.New("risk_radar: enrichment parse error")
)
