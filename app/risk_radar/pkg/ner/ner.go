// Package ner 从文章正文中识别地点与机构
package ner

import (
	"context"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
)

// EntityType 实体类型
type EntityType string

const (
	TypeLocation     EntityType = "LOC"
	TypeOrganization EntityType = "ORG"
	TypePerson       EntityType = "PERSON"
	TypeOther        EntityType = "OTHER"
)

// Entity 一段被识别出的文本
type Entity struct {
	Text string
	Type EntityType
}

// Recognizer 实体识别服务
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// ProseRecognizer 基于 prose 内置模型的实体识别。
// prose 只输出 GPE 与 PERSON，机构名会被标成其中之一，这里再按机构词表改标为 ORG
type ProseRecognizer struct{}

var _ Recognizer = ProseRecognizer{}

// Recognize 实现 Recognizer
func (ProseRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	ents := doc.Entities()
	out := make([]Entity, 0, len(ents))
	for _, e := range ents {
		typ := labelType(e.Label)
		if isOrganization(e.Text) {
			typ = TypeOrganization
		}
		out = append(out, Entity{Text: e.Text, Type: typ})
	}
	return out, nil
}

func labelType(label string) EntityType {
	switch label {
	case "GPE", "LOC":
		return TypeLocation
	case "ORG":
		return TypeOrganization
	case "PERSON":
		return TypePerson
	default:
		return TypeOther
	}
}

// knownOrganizations 常见保险、再保险与监管机构，小写
var knownOrganizations = map[string]bool{
	"allianz": true, "axa": true, "generali": true, "chubb": true, "aig": true, "aviva": true,
	"zurich insurance": true, "lloyd's": true, "lloyds": true, "metlife": true, "prudential": true,
	"berkshire hathaway": true, "eiopa": true, "naic": true, "iais": true, "ipcc": true,
	"tnfd": true, "fema": true, "noaa": true, "european commission": true, "federal reserve": true,
}

// orgSuffixes 机构名的结尾词，小写
var orgSuffixes = map[string]bool{
	"re": true, "inc": true, "corp": true, "corporation": true, "group": true, "plc": true,
	"ag": true, "se": true, "ltd": true, "llc": true, "company": true, "commission": true,
	"authority": true, "agency": true, "bank": true, "insurance": true, "assurance": true,
	"reinsurance": true, "holdings": true, "association": true, "council": true, "institute": true,
	"ministry": true, "department": true,
}

// isOrganization 按词表判断实体是否为机构
func isOrganization(text string) bool {
	name := strings.ToLower(strings.TrimSpace(text))
	name = strings.TrimPrefix(name, "the ")
	if name == "" {
		return false
	}
	if knownOrganizations[name] {
		return true
	}
	words := strings.Fields(name)
	if len(words) < 2 {
		return false
	}
	return orgSuffixes[strings.TrimRight(words[len(words)-1], ".,")]
}

// Extractor 在 Recognizer 之上给出地点和机构
type Extractor struct {
	recognizer Recognizer
}

// NewExtractor recognizer 为 nil 时使用 prose
func NewExtractor(r Recognizer) *Extractor {
	if r == nil {
		r = ProseRecognizer{}
	}
	return &Extractor{recognizer: r}
}

// Result 一篇文章的实体抽取结果
type Result struct {
	Location      *string
	Organizations []string
}

// Extract 只调用一次 Recognizer，同时给出地点与机构
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	ents, ok := e.recognize(ctx, text)
	if !ok {
		return Result{}
	}
	return Result{Location: firstLocation(ents), Organizations: organizations(ents)}
}

// Location 返回第一个地点实体；识别失败或没有地点时返回 nil
func (e *Extractor) Location(ctx context.Context, text string) *string {
	return e.Extract(ctx, text).Location
}

// Organizations 返回去重后的机构实体，保持出现顺序
func (e *Extractor) Organizations(ctx context.Context, text string) []string {
	return e.Extract(ctx, text).Organizations
}

func firstLocation(ents []Entity) *string {
	for _, ent := range ents {
		if ent.Type != TypeLocation {
			continue
		}
		if s := strings.TrimSpace(ent.Text); s != "" {
			return &s
		}
	}
	return nil
}

func organizations(ents []Entity) []string {
	seen := make(map[string]bool)
	var orgs []string
	for _, ent := range ents {
		s := strings.TrimSpace(ent.Text)
		key := strings.ToLower(s)
		if ent.Type != TypeOrganization || s == "" || seen[key] {
			continue
		}
		seen[key] = true
		orgs = append(orgs, s)
	}
	return orgs
}

func (e *Extractor) recognize(ctx context.Context, text string) ([]Entity, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	ents, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		logger.Log.Warnf("实体识别失败，地点视为缺失: %v", err)
		return nil, false
	}
	return ents, true
}
