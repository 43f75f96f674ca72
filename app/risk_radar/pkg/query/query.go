// Package query 将风险领域转换为搜索服务的查询语句
package query

import (
	"strings"
	"time"
)

// DomainKeywords 各风险领域对应的搜索关键词
var DomainKeywords = map[string][]string{
	"Climate Risk":       {"climate change", "climate risk insurance", "natural catastrophe"},
	"InsurTech":          {"insurtech", "insurance technology", "insurance AI"},
	"Regulatory Update":  {"insurance regulation", "solvency regulation", "insurance compliance"},
	"Insurance Exposure": {"insured loss", "reinsurance", "loss ratio", "insurance market"},
}

// DateRange 闭区间日期过滤
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Recent 返回以 now 结尾、回溯 days 天的区间
func Recent(now time.Time, days int) *DateRange {
	if days < 1 {
		days = 1
	}
	return &DateRange{Start: now.AddDate(0, 0, -days), End: now}
}

// StartDate YYYY-MM-DD
func (r *DateRange) StartDate() string {
	if r == nil {
		return ""
	}
	return r.Start.Format(time.DateOnly)
}

// EndDate YYYY-MM-DD
func (r *DateRange) EndDate() string {
	if r == nil {
		return ""
	}
	return r.End.Format(time.DateOnly)
}

// Contains 判断时间是否落在区间内（按天比较）
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	day := t.Format(time.DateOnly)
	return day >= r.StartDate() && day <= r.EndDate()
}

// Keywords 返回领域关键词，未知领域使用领域名本身
func Keywords(domain string) []string {
	domain = strings.TrimSpace(domain)
	for label, kws := range DomainKeywords {
		if strings.EqualFold(label, domain) {
			return kws
		}
	}
	if domain == "" {
		return nil
	}
	return []string{domain}
}

// Build 组合领域关键词与日期过滤条件
//
// 例如 "Climate Risk" + 最近一天:
//
//	(climate change OR climate risk insurance OR natural catastrophe) AND (May 2, 2024 OR May 1, 2024 OR this week)
func Build(domain string, rng *DateRange) string {
	q := "(" + strings.Join(Keywords(domain), " OR ") + ")"
	if rng == nil {
		return q
	}
	const layout = "January 2, 2006"
	return q + " AND (" + rng.End.Format(layout) + " OR " + rng.Start.Format(layout) + " OR this week)"
}

// Terms 从 Build 生成的查询中取出关键词部分，用于本地匹配
func Terms(q string) []string {
	q = strings.TrimSpace(q)
	if strings.HasPrefix(q, "(") {
		if end := strings.Index(q, ")"); end > 0 {
			q = q[1:end]
		}
	}
	var terms []string
	for _, t := range strings.Split(q, " OR ") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
