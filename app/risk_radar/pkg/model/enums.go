package model

import (
	"encoding/json"
	"fmt"
)

// DomainCategory 文章风险主题的固定分类
type DomainCategory int

const (
	CategoryOther DomainCategory = iota
	CategoryClimateRisk
	CategoryInsurTech
	CategoryRegulatoryUpdate
	CategoryInsuranceExposure
)

// Categories 所有分类，按展示顺序排列
var Categories = []DomainCategory{
	CategoryClimateRisk,
	CategoryInsurTech,
	CategoryRegulatoryUpdate,
	CategoryInsuranceExposure,
	CategoryOther,
}

var categoryLabels = map[DomainCategory]string{
	CategoryClimateRisk:       "Climate Risk",
	CategoryInsurTech:         "InsurTech",
	CategoryRegulatoryUpdate:  "Regulatory Update",
	CategoryInsuranceExposure: "Insurance Exposure",
	CategoryOther:             "Other",
}

func (c DomainCategory) String() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return fmt.Sprintf("DomainCategory(%d)", int(c))
}

// Valid 是否是固定枚举之一
func (c DomainCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c DomainCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *DomainCategory) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := ParseCategoryLabel(s)
	if !ok {
		return fmt.Errorf("unknown domain category %q", s)
	}
	*c = v
	return nil
}

// ParseCategoryLabel 精确匹配展示标签
func ParseCategoryLabel(s string) (DomainCategory, bool) {
	for c, l := range categoryLabels {
		if l == s {
			return c, true
		}
	}
	return CategoryOther, false
}

// Sentiment 文章风险严重程度
type Sentiment int

const (
	SentimentNeutral Sentiment = iota
	SentimentLowRisk
	SentimentHighRisk
	SentimentCritical
)

// Sentiments 所有严重程度，从高到低
var Sentiments = []Sentiment{
	SentimentCritical,
	SentimentHighRisk,
	SentimentLowRisk,
	SentimentNeutral,
}

var sentimentLabels = map[Sentiment]string{
	SentimentLowRisk:  "Low Risk",
	SentimentHighRisk: "High Risk",
	SentimentCritical: "Critical",
	SentimentNeutral:  "Neutral",
}

func (s Sentiment) String() string {
	if l, ok := sentimentLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("Sentiment(%d)", int(s))
}

// Valid 是否是固定枚举之一
func (s Sentiment) Valid() bool {
	_, ok := sentimentLabels[s]
	return ok
}

// Severe High Risk 与 Critical 视为高严重度
func (s Sentiment) Severe() bool {
	return s == SentimentHighRisk || s == SentimentCritical
}

func (s Sentiment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Sentiment) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	v, ok := ParseSentimentLabel(str)
	if !ok {
		return fmt.Errorf("unknown sentiment %q", str)
	}
	*s = v
	return nil
}

// ParseSentimentLabel 精确匹配展示标签
func ParseSentimentLabel(str string) (Sentiment, bool) {
	for s, l := range sentimentLabels {
		if l == str {
			return s, true
		}
	}
	return SentimentNeutral, false
}
