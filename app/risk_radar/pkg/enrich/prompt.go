package enrich

import (
	"fmt"
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

const maxPromptContent = 3000

const systemPrompt = "You are a JSON generator. Output only a JSON object, without markdown fences or commentary."

const promptTpl = `You are an expert AI analyst at a global insurance firm. Analyze the article below and produce a structured summary for risk analysts and decision-makers in the insurance industry.

Cover, clearly and concisely:
1. Main issue or event (wildfire, flood, policy change, regulation update, insurtech development, ...).
2. Date and location of the event.
3. Key stakeholders: companies, organizations, governments or individuals directly involved or affected.
4. Impact on the insurance and reinsurance business, including underwriting practices and exposure.
5. Regulatory or policy changes.
6. Financial and economic implications: losses, premium adjustments, claims impact.
7. Technological implications, if any.
8. Environmental and social impact, if any.
9. One actionable recommendation for insurance analysts.
10. Authoritative external references with name and full URL.

Return exactly this JSON shape:
{
  "summary": "structured summary covering the points above",
  "stakeholders": ["stakeholder 1", "stakeholder 2"],
  "financial_impact": "financial and economic implications",
  "sentiment": "one of: Low Risk, High Risk, Critical, Neutral",
  "domain": "one of: Climate Risk, InsurTech, Regulatory Update, Insurance Exposure, Other",
  "recommendation": "actionable recommendation",
  "references": [{"name": "IPCC", "url": "https://www.ipcc.ch/report/ar6/syr/"}]
}

Use only the article content below:

Title: %s
URL: %s
Date: %s
Source: %s
Content: %s`

// BuildPrompt 生成嵌入文章内容的固定模板
func BuildPrompt(a model.RawArticle) string {
	date := "unknown"
	if a.PublishedDate != nil {
		date = a.PublishedDate.Format(time.DateOnly)
	}
	content := a.Content
	if content == "" {
		content = a.Snippet
	}
	if r := []rune(content); len(r) > maxPromptContent {
		content = string(r[:maxPromptContent])
	}
	return fmt.Sprintf(promptTpl, a.Title, a.URL, date, a.Source, content)
}
