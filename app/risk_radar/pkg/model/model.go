package model

import (
	"strings"
	"time"
)

// RawArticle 搜索返回并清洗后的原始文章，创建后不再修改
type RawArticle struct {
	Title         string
	URL           string
	Snippet       string
	PublishedDate *time.Time
	Source        string // URL 主机名（去掉 www.）
	Content       string // 清洗后的正文，用于 NER 和 LLM 分析
}

// Text 返回用于实体识别的文本
func (a RawArticle) Text() string {
	if a.Content != "" {
		return a.Content
	}
	return strings.TrimSpace(a.Title + ". " + a.Snippet)
}

// Reference 外部参考来源
type Reference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Enrichment 一篇文章的富化结果：原文信息加上 LLM 返回的自由文本字段，
// 归一化之前任意 LLM 字段都可能缺失
type Enrichment struct {
	Article         RawArticle
	Summary         *string
	Stakeholders    []string
	FinancialImpact *string
	Sentiment       *string
	Domain          *string
	Recommendation  *string
	References      []Reference
}

// Empty 所有 LLM 字段都缺失时返回 true
func (e *Enrichment) Empty() bool {
	if e == nil {
		return true
	}
	return e.Summary == nil && len(e.Stakeholders) == 0 && e.FinancialImpact == nil &&
		e.Sentiment == nil && e.Domain == nil && e.Recommendation == nil && len(e.References) == 0
}

// EnrichedRecord 归一化后的结构化风险记录
type EnrichedRecord struct {
	Title           string         `json:"title"`
	URL             string         `json:"url"`
	Source          string         `json:"source"`
	Query           string         `json:"query,omitempty"`
	PublishedDate   *time.Time     `json:"published_date,omitempty"`
	Location        *string        `json:"location,omitempty"`
	DomainCategory  DomainCategory `json:"domain_category"`
	Sentiment       Sentiment      `json:"sentiment"`
	FinancialImpact *string        `json:"financial_impact,omitempty"`
	Summary         string         `json:"summary"`
	Stakeholders    []string       `json:"stakeholders"`
	Recommendation  *string        `json:"recommendation,omitempty"`
	References      []Reference    `json:"references,omitempty"`
}

// StrPtr 返回去除首尾空白后的字符串指针，空串返回 nil
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref 缺失时返回空串
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
