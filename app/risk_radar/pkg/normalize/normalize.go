// Package normalize 把 LLM 自由文本收敛为固定 schema 的风险记录
package normalize

import (
	"net/url"
	"sort"
	"strings"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

// Extras 富化之外的补充信息
type Extras struct {
	Location      *string
	Organizations []string // 无 LLM 干系人时使用
	Query         string   // 产生该文章的风险领域
}

// Normalizer 记录归一化器
type Normalizer struct {
	trusted []trustedSource
}

type trustedSource struct {
	name    string
	domains []string
}

// New trusted 为机构名到域名列表的映射，例如 "IPCC" -> ["ipcc.ch"]
func New(trusted map[string][]string) *Normalizer {
	names := make([]string, 0, len(trusted))
	for name := range trusted {
		names = append(names, name)
	}
	sort.Strings(names)

	n := &Normalizer{}
	for _, name := range names {
		n.trusted = append(n.trusted, trustedSource{name: name, domains: trusted[name]})
	}
	return n
}

// Normalize 生成类型完整的记录；enr 为 nil 时按全部字段缺失处理
func (n *Normalizer) Normalize(enr *model.Enrichment, ex Extras) model.EnrichedRecord {
	if enr == nil {
		enr = &model.Enrichment{}
	}
	a := enr.Article

	rec := model.EnrichedRecord{
		Title:           strings.TrimSpace(a.Title),
		URL:             a.URL,
		Source:          a.Source,
		Query:           strings.TrimSpace(ex.Query),
		PublishedDate:   a.PublishedDate,
		Location:        trimPtr(ex.Location),
		FinancialImpact: trimPtr(enr.FinancialImpact),
		Summary:         model.Deref(trimPtr(enr.Summary)),
		Recommendation:  trimPtr(enr.Recommendation),
	}

	domainText := model.Deref(enr.Domain)
	rec.DomainCategory, _ = CategoryOf(domainText)

	if enr.Sentiment != nil {
		rec.Sentiment, _ = SentimentOf(*enr.Sentiment)
	} else {
		// 没有 Sentiment 时只认分类文本中的严重措辞，其余一律 Neutral
		rec.Sentiment, _ = SeverityOf(domainText)
	}

	rec.Stakeholders = dedupStrings(enr.Stakeholders)
	if len(rec.Stakeholders) == 0 {
		rec.Stakeholders = dedupStrings(ex.Organizations)
	}

	rec.References = dedupReferences(append(append([]model.Reference{}, enr.References...), n.trustedReferences(a.URL)...))
	return rec
}

// Renormalize 对已归一化的记录再做一次归一化，结果与输入一致
func (n *Normalizer) Renormalize(rec model.EnrichedRecord) model.EnrichedRecord {
	domain := rec.DomainCategory.String()
	sentiment := rec.Sentiment.String()
	enr := &model.Enrichment{
		Article: model.RawArticle{
			Title:         rec.Title,
			URL:           rec.URL,
			Source:        rec.Source,
			PublishedDate: rec.PublishedDate,
		},
		Summary:         model.StrPtr(rec.Summary),
		Stakeholders:    rec.Stakeholders,
		FinancialImpact: rec.FinancialImpact,
		Sentiment:       &sentiment,
		Domain:          &domain,
		Recommendation:  rec.Recommendation,
		References:      rec.References,
	}
	return n.Normalize(enr, Extras{Location: rec.Location, Query: rec.Query})
}

// trustedReferences 文章来自可信机构时追加该机构的参考
func (n *Normalizer) trustedReferences(rawURL string) []model.Reference {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	var refs []model.Reference
	for _, ts := range n.trusted {
		for _, d := range ts.domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d != "" && (host == d || strings.HasSuffix(host, "."+d)) {
				refs = append(refs, model.Reference{Name: ts.name, URL: "https://" + d})
				break
			}
		}
	}
	return refs
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return model.StrPtr(*s)
}

// dedupStrings 去空白、忽略大小写去重，保持顺序；结果非 nil
func dedupStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(it)
		if it == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func dedupReferences(refs []model.Reference) []model.Reference {
	var out []model.Reference
	seen := make(map[model.Reference]bool, len(refs))
	for _, r := range refs {
		r = model.Reference{Name: strings.TrimSpace(r.Name), URL: strings.TrimSpace(r.URL)}
		if (r.Name == "" && r.URL == "") || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
