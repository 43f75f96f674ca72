// Package report 为看板和 HTML 报告整理记录：分组、按时间过滤和统计
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
)

const (
	UnknownLocation = "Unknown Location"
	Unclassified    = "Unclassified"
	trendingLimit   = 5
)

// Period 看板时间段选项
type Period struct {
	Label string `json:"label"`
	Hours int    `json:"hours"` // 0 表示当天零点起
}

// Periods 可选时间段，第一个为默认
var Periods = []Period{
	{"Today", 0},
	{"Last 1 Hour", 1},
	{"Last 12 Hours", 12},
	{"Last 24 Hours", 24},
	{"Last 2 Days", 48},
	{"Last 5 Days", 120},
	{"Last 1 Month", 720},
}

// PeriodRange 返回时间段对应的区间，label 为空时取默认时间段
func PeriodRange(label string, now time.Time) (*query.DateRange, error) {
	if label == "" {
		label = Periods[0].Label
	}
	for _, p := range Periods {
		if p.Label != label {
			continue
		}
		if p.Hours == 0 {
			y, m, d := now.Date()
			return &query.DateRange{Start: time.Date(y, m, d, 0, 0, 0, 0, now.Location()), End: now}, nil
		}
		return &query.DateRange{Start: now.Add(-time.Duration(p.Hours) * time.Hour), End: now}, nil
	}
	return nil, fmt.Errorf("unknown period %q", label)
}

// FilterByRange 保留发布时间落在 [Start, End] 内的记录（精确到时刻）；rng 为 nil 时不过滤，无发布时间的记录被排除
func FilterByRange(recs []model.EnrichedRecord, rng *query.DateRange) []model.EnrichedRecord {
	if rng == nil {
		return recs
	}
	out := make([]model.EnrichedRecord, 0, len(recs))
	for _, r := range recs {
		if r.PublishedDate != nil && !r.PublishedDate.Before(rng.Start) && !r.PublishedDate.After(rng.End) {
			out = append(out, r)
		}
	}
	return out
}

// LocationLabel 地点缺失时显示 Unknown Location
func LocationLabel(loc *string) string {
	if loc == nil || *loc == "" {
		return UnknownLocation
	}
	return *loc
}

// CategoryLabel Other 在展示层显示为 Unclassified
func CategoryLabel(c model.DomainCategory) string {
	if c == model.CategoryOther {
		return Unclassified
	}
	return c.String()
}

var icons = map[model.Sentiment]string{
	model.SentimentCritical: "🔴",
	model.SentimentHighRisk: "🟠",
	model.SentimentLowRisk:  "🟢",
	model.SentimentNeutral:  "🔵",
}

var colors = map[model.Sentiment]string{
	model.SentimentCritical: "red",
	model.SentimentHighRisk: "orange",
	model.SentimentLowRisk:  "green",
	model.SentimentNeutral:  "blue",
}

// Icon 严重程度图标
func Icon(s model.Sentiment) string {
	if i, ok := icons[s]; ok {
		return i
	}
	return "📰"
}

// Color 严重程度颜色
func Color(s model.Sentiment) string {
	if c, ok := colors[s]; ok {
		return c
	}
	return "gray"
}

// GroupByCategory 按分类分组，保持记录原有顺序
func GroupByCategory(recs []model.EnrichedRecord) map[model.DomainCategory][]model.EnrichedRecord {
	out := make(map[model.DomainCategory][]model.EnrichedRecord)
	for _, r := range recs {
		out[r.DomainCategory] = append(out[r.DomainCategory], r)
	}
	return out
}

// GroupByLocation 按地点分组，缺失地点归入 Unknown Location
func GroupByLocation(recs []model.EnrichedRecord) map[string][]model.EnrichedRecord {
	out := make(map[string][]model.EnrichedRecord)
	for _, r := range recs {
		loc := LocationLabel(r.Location)
		out[loc] = append(out[loc], r)
	}
	return out
}

// GroupBySentiment 按严重程度分组
func GroupBySentiment(recs []model.EnrichedRecord) map[model.Sentiment][]model.EnrichedRecord {
	out := make(map[model.Sentiment][]model.EnrichedRecord)
	for _, r := range recs {
		out[r.Sentiment] = append(out[r.Sentiment], r)
	}
	return out
}

// Count 一个标签的计数
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color,omitempty"`
}

// LocationSeverity 地点与严重程度的组合计数
type LocationSeverity struct {
	Location  string          `json:"location"`
	Sentiment model.Sentiment `json:"sentiment"`
	Count     int             `json:"count"`
	Color     string          `json:"color"`
}

// Stats 看板统计
type Stats struct {
	Total           int                `json:"total"`
	ByCategory      []Count            `json:"by_category"`
	BySentiment     []Count            `json:"by_sentiment"`
	SeverityMap     []LocationSeverity `json:"severity_map"`
	Trending        []TrendItem        `json:"trending"`
	CriticalRegions []string           `json:"critical_regions"`
}

// TrendItem 高严重度新闻条目
type TrendItem struct {
	Icon          string          `json:"icon"`
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	Sentiment     model.Sentiment `json:"sentiment"`
	PublishedDate *time.Time      `json:"published_date,omitempty"`
}

// Summarize 计算分类、严重程度、地点分布与高严重度列表
func Summarize(recs []model.EnrichedRecord) Stats {
	st := Stats{Total: len(recs), CriticalRegions: []string{}}

	byCat := GroupByCategory(recs)
	for _, c := range model.Categories {
		if n := len(byCat[c]); n > 0 {
			st.ByCategory = append(st.ByCategory, Count{Label: CategoryLabel(c), Count: n})
		}
	}
	sort.SliceStable(st.ByCategory, func(i, j int) bool { return st.ByCategory[i].Count > st.ByCategory[j].Count })

	bySent := GroupBySentiment(recs)
	for _, s := range model.Sentiments {
		if n := len(bySent[s]); n > 0 {
			st.BySentiment = append(st.BySentiment, Count{Label: s.String(), Count: n, Color: Color(s)})
		}
	}

	st.SeverityMap = severityMap(recs)
	for _, ls := range st.SeverityMap {
		if ls.Sentiment == model.SentimentCritical && ls.Location != UnknownLocation {
			st.CriticalRegions = append(st.CriticalRegions, ls.Location)
		}
	}

	for _, r := range recs {
		if len(st.Trending) == trendingLimit {
			break
		}
		if r.Sentiment.Severe() {
			st.Trending = append(st.Trending, TrendItem{
				Icon:          Icon(r.Sentiment),
				Title:         r.Title,
				URL:           r.URL,
				Sentiment:     r.Sentiment,
				PublishedDate: r.PublishedDate,
			})
		}
	}
	return st
}

func severityMap(recs []model.EnrichedRecord) []LocationSeverity {
	type key struct {
		loc string
		s   model.Sentiment
	}
	counts := make(map[key]int)
	var order []key
	for _, r := range recs {
		k := key{LocationLabel(r.Location), r.Sentiment}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].loc != order[j].loc {
			return order[i].loc < order[j].loc
		}
		return order[i].s > order[j].s
	})
	out := make([]LocationSeverity, 0, len(order))
	for _, k := range order {
		out = append(out, LocationSeverity{Location: k.loc, Sentiment: k.s, Count: counts[k], Color: Color(k.s)})
	}
	return out
}
