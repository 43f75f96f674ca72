package fetcher

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern   = regexp.MustCompile(`http\S+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// CleanText 去掉 HTML 标签与链接，做 NFKD 归一化并合并空白
func CleanText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err == nil {
		doc.Find("script,style,noscript").Remove()
		var sb strings.Builder
		for _, n := range doc.Nodes {
			collectText(n, &sb)
		}
		text = sb.String()
	}

	text = urlPattern.ReplaceAllString(text, "")
	text = norm.NFKD.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) || unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, text)

	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// collectText 按文档顺序收集文本节点，标签之间补一个空格
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode {
		sb.WriteByte(' ')
	}
}

// SourceFromURL 返回去掉 www. 的主机名
func SourceFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// truncate 按 rune 截断，避免切断多字节字符
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
