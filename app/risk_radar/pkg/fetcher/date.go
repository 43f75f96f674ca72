package fetcher

import (
	"regexp"
	"strings"
	"time"
)

// 搜索结果自带的发布时间格式
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.DateOnly,
}

// 正文中出现的日期
var datePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`20\d{2}[-/]\d{2}[-/]\d{2}`), []string{"2006-01-02", "2006/01/02"}},
	{regexp.MustCompile(`\d{1,2} [A-Z][a-z]+ 20\d{2}`), []string{"2 January 2006", "2 Jan 2006"}},
	{regexp.MustCompile(`[A-Z][a-z]+ \d{1,2}, 20\d{2}`), []string{"January 2, 2006", "Jan 2, 2006"}},
}

// ParsePublished 解析搜索结果的发布时间，失败返回 nil
func ParsePublished(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ExtractBestDate 依次在 URL、标题、正文中查找日期
func ExtractBestDate(texts ...string) *time.Time {
	for _, text := range texts {
		for _, p := range datePatterns {
			for _, m := range p.re.FindAllString(text, -1) {
				for _, layout := range p.layouts {
					if t, err := time.Parse(layout, m); err == nil {
						return &t
					}
				}
			}
		}
	}
	return nil
}
