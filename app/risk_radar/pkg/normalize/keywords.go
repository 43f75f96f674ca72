package normalize

import (
	"regexp"
	"strings"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

// CategoryKeywords 分类关键词表，按顺序匹配，先命中者优先
var CategoryKeywords = []CategoryRule{
	{model.CategoryClimateRisk, []string{
		"climate", "climate risk", "climate change", "wildfire", "wildfires", "flood", "floods",
		"flooding", "hurricane", "hurricanes", "storm", "storms", "drought", "heatwave",
		"emissions", "environmental",
	}},
	{model.CategoryInsurTech, []string{
		"insurtech", "technology", "tech", "ai", "digital", "startup", "blockchain", "iot",
		"automation", "fintech",
	}},
	{model.CategoryRegulatoryUpdate, []string{
		"regulatory", "regulation", "regulations", "regulator", "regulators", "compliance",
		"legislation", "legislative", "law", "laws", "fine", "fines", "supervisory", "solvency",
		"regulatory update",
	}},
	{model.CategoryInsuranceExposure, []string{
		"insurance exposure", "exposure", "exposures", "insured loss", "insured losses", "claims",
		"underwriting", "reinsurance", "loss ratio", "premium", "premiums",
	}},
	{model.CategoryOther, []string{"other", "uncategorized", "unclassified"}},
}

// SentimentKeywords 严重程度关键词表，从高到低匹配
var SentimentKeywords = []SentimentRule{
	{model.SentimentCritical, []string{
		"critical", "severe", "severely", "major", "catastrophic", "catastrophe", "extreme",
		"emergency", "crisis", "devastating",
	}},
	{model.SentimentHighRisk, []string{
		"high risk", "high", "negative", "significant", "elevated", "serious", "caution", "warning",
	}},
	{model.SentimentLowRisk, []string{
		"low risk", "low", "positive", "minor", "minimal", "limited", "stable",
	}},
	{model.SentimentNeutral, []string{"neutral", "moderate", "mixed"}},
}

// CategoryRule 一个分类及其关键词
type CategoryRule struct {
	Category model.DomainCategory
	Keywords []string
}

// SentimentRule 一个严重程度及其关键词
type SentimentRule struct {
	Sentiment model.Sentiment
	Keywords  []string
}

var (
	categoryMatchers  = compileCategories(CategoryKeywords)
	sentimentMatchers = compileSentiments(SentimentKeywords)
)

type categoryMatcher struct {
	category model.DomainCategory
	re       *regexp.Regexp
}

type sentimentMatcher struct {
	sentiment model.Sentiment
	re        *regexp.Regexp
}

func compileCategories(rules []CategoryRule) []categoryMatcher {
	out := make([]categoryMatcher, 0, len(rules))
	for _, r := range rules {
		out = append(out, categoryMatcher{r.Category, wordsRegexp(r.Keywords)})
	}
	return out
}

func compileSentiments(rules []SentimentRule) []sentimentMatcher {
	out := make([]sentimentMatcher, 0, len(rules))
	for _, r := range rules {
		out = append(out, sentimentMatcher{r.Sentiment, wordsRegexp(r.Keywords)})
	}
	return out
}

// wordsRegexp 整词、忽略大小写；短语内的空白可以是任意空白或连字符
func wordsRegexp(words []string) *regexp.Regexp {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		parts := strings.Fields(w)
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		alts = append(alts, strings.Join(parts, `[\s\-]+`))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// CategoryOf 把自由文本映射到分类，未命中返回 CategoryOther 与 false
func CategoryOf(text string) (model.DomainCategory, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.CategoryOther, false
	}
	if c, ok := parseCategoryFold(text); ok {
		return c, true
	}
	for _, m := range categoryMatchers {
		if m.re.MatchString(text) {
			return m.category, true
		}
	}
	return model.CategoryOther, false
}

// SentimentOf 把自由文本映射到严重程度，未命中返回 SentimentNeutral 与 false
func SentimentOf(text string) (model.Sentiment, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.SentimentNeutral, false
	}
	if s, ok := parseSentimentFold(text); ok {
		return s, true
	}
	for _, m := range sentimentMatchers {
		if m.re.MatchString(text) {
			return m.sentiment, true
		}
	}
	return model.SentimentNeutral, false
}

// SeverityOf 只识别 Critical 一档的严重措辞，用于 Sentiment 缺失时参考分类文本
func SeverityOf(text string) (model.Sentiment, bool) {
	for _, m := range sentimentMatchers {
		if m.sentiment == model.SentimentCritical && m.re.MatchString(text) {
			return model.SentimentCritical, true
		}
	}
	return model.SentimentNeutral, false
}

func parseCategoryFold(text string) (model.DomainCategory, bool) {
	for _, c := range model.Categories {
		if strings.EqualFold(c.String(), text) {
			return c, true
		}
	}
	return model.CategoryOther, false
}

func parseSentimentFold(text string) (model.Sentiment, bool) {
	for _, s := range model.Sentiments {
		if strings.EqualFold(s.String(), text) {
			return s, true
		}
	}
	return model.SentimentNeutral, false
}
