package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

// llmReply JSON 回复；字段使用 RawMessage 以兼容字符串和数组两种写法
type llmReply struct {
	Summary         json.RawMessage `json:"summary"`
	Stakeholders    json.RawMessage `json:"stakeholders"`
	KeyStakeholders json.RawMessage `json:"key_stakeholders"`
	FinancialImpact json.RawMessage `json:"financial_impact"`
	Sentiment       json.RawMessage `json:"sentiment"`
	Severity        json.RawMessage `json:"severity"`
	Domain          json.RawMessage `json:"domain"`
	Category        json.RawMessage `json:"category"`
	Recommendation  json.RawMessage `json:"recommendation"`
	References      json.RawMessage `json:"references"`
}

// 小节标签到字段的映射，小写
var sectionAliases = map[string]string{
	"summary":             "summary",
	"stakeholders":        "stakeholders",
	"key stakeholders":    "stakeholders",
	"financial impact":    "financial_impact",
	"sentiment":           "sentiment",
	"severity":            "sentiment",
	"domain":              "domain",
	"category":            "domain",
	"domain category":     "domain",
	"recommendation":      "recommendation",
	"references":          "references",
	"external references": "references",
}

var (
	sectionLine = regexp.MustCompile(`(?i)^[\s>#*\-\d.]*\**\s*(summary|key stakeholders|stakeholders|financial[ _]impact|sentiment|severity|domain category|domain|category|recommendation|external references|references)\s*\**\s*[:：]\s*\**\s*(.*)$`)
	urlRe       = regexp.MustCompile(`https?://[^\s)\]>"]+`)
	bulletRe    = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
)

// 视为缺失的占位值
var placeholders = map[string]bool{
	"": true, "n/a": true, "na": true, "none": true, "null": true,
	"not specified": true, "unknown": true, "-": true,
}

// ParseReply 把 LLM 回复解析为富化字段。
// 优先按 JSON 解析，失败时按 "Label: value" 小节解析；一个字段都没有时返回 ErrEnrichmentParse
func ParseReply(reply string) (*model.Enrichment, error) {
	clean := stripFences(reply)

	// 小节文本中可能夹带 {...} 片段，JSON 没有已知字段时继续按小节解析
	if enr, ok := parseJSON(clean); ok && !enr.Empty() {
		return enr, nil
	}

	enr := parseSections(clean)
	if enr.Empty() {
		return &model.Enrichment{}, fmt.Errorf("%w: no labeled sections in reply", model.ErrEnrichmentParse)
	}
	return enr, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseJSON(s string) (*model.Enrichment, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var r llmReply
	if err := json.Unmarshal([]byte(s[start:end+1]), &r); err != nil {
		return nil, false
	}

	enr := &model.Enrichment{
		Summary:         rawText(r.Summary),
		Stakeholders:    rawList(firstRaw(r.Stakeholders, r.KeyStakeholders)),
		FinancialImpact: rawText(r.FinancialImpact),
		Sentiment:       rawText(firstRaw(r.Sentiment, r.Severity)),
		Domain:          rawText(firstRaw(r.Domain, r.Category)),
		Recommendation:  rawText(r.Recommendation),
		References:      rawReferences(r.References),
	}
	return enr, true
}

func firstRaw(vals ...json.RawMessage) json.RawMessage {
	for _, v := range vals {
		if len(bytes.TrimSpace(v)) > 0 && string(bytes.TrimSpace(v)) != "null" {
			return v
		}
	}
	return nil
}

// rawText 字符串直接取值，数组用 "; " 拼接，其余类型保留原始 JSON
func rawText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return textValue(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return textValue(strings.Join(list, "; "))
	}
	return textValue(string(raw))
}

func rawList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanList(list)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return splitList(s)
	}
	return nil
}

func rawReferences(raw json.RawMessage) []model.Reference {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var refs []model.Reference
	if err := json.Unmarshal(raw, &refs); err == nil {
		out := refs[:0]
		for _, r := range refs {
			r.Name, r.URL = strings.TrimSpace(r.Name), strings.TrimSpace(r.URL)
			if r.Name != "" || r.URL != "" {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return referencesFromLines(list)
	}
	return nil
}

func parseSections(s string) *model.Enrichment {
	sections := make(map[string][]string)
	var current string
	for _, line := range strings.Split(s, "\n") {
		if m := sectionLine.FindStringSubmatch(line); m != nil {
			current = sectionAliases[normalizeLabel(m[1])]
			if _, seen := sections[current]; !seen {
				sections[current] = nil
			}
			if v := strings.TrimSpace(strings.Trim(m[2], "*")); v != "" {
				sections[current] = append(sections[current], v)
			}
			continue
		}
		if current != "" && strings.TrimSpace(line) != "" {
			sections[current] = append(sections[current], strings.TrimSpace(line))
		}
	}

	text := func(key string) *string {
		lines, ok := sections[key]
		if !ok {
			return nil
		}
		return textValue(strings.Join(lines, "\n"))
	}

	enr := &model.Enrichment{
		Summary:         text("summary"),
		FinancialImpact: text("financial_impact"),
		Sentiment:       text("sentiment"),
		Domain:          text("domain"),
		Recommendation:  text("recommendation"),
	}
	if lines := sections["stakeholders"]; len(lines) == 1 {
		enr.Stakeholders = splitList(lines[0])
	} else {
		enr.Stakeholders = cleanList(lines)
	}
	enr.References = referencesFromLines(sections["references"])
	return enr
}

func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.ReplaceAll(label, "_", " ")
}

func textValue(s string) *string {
	s = strings.TrimSpace(s)
	if placeholders[strings.ToLower(s)] {
		return nil
	}
	return &s
}

func splitList(s string) []string {
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	return cleanList(strings.Split(s, sep))
}

func cleanList(items []string) []string {
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(bulletRe.ReplaceAllString(it, ""))
		if !placeholders[strings.ToLower(it)] {
			out = append(out, it)
		}
	}
	return out
}

// referencesFromLines 解析 "IPCC - https://..." 形式的行
func referencesFromLines(lines []string) []model.Reference {
	var refs []model.Reference
	for _, line := range lines {
		line = bulletRe.ReplaceAllString(line, "")
		u := urlRe.FindString(line)
		name := strings.TrimSpace(strings.Trim(strings.Replace(line, u, "", 1), " -:–()[]"))
		if u == "" && placeholders[strings.ToLower(name)] {
			continue
		}
		refs = append(refs, model.Reference{Name: name, URL: u})
	}
	return refs
}
