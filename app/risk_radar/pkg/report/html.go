package report

import (
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
)

// Data 用于模板渲染的数据
type Data struct {
	Date    string
	RunID   string
	Period  string
	Range   *query.DateRange
	Records []model.EnrichedRecord
	Stats   Stats
}

// NewData 过滤区间内的记录并计算统计；rng 为 nil 时使用全部记录
func NewData(runID, period string, rng *query.DateRange, recs []model.EnrichedRecord, now time.Time) Data {
	recs = FilterByRange(recs, rng)
	return Data{
		Date:    now.Format(time.DateOnly),
		RunID:   runID,
		Period:  period,
		Range:   rng,
		Records: recs,
		Stats:   Summarize(recs),
	}
}

var funcs = template.FuncMap{
	"icon":     Icon,
	"color":    Color,
	"location": LocationLabel,
	"category": CategoryLabel,
	"deref":    model.Deref,
	"date": func(t *time.Time) string {
		if t == nil {
			return "unknown date"
		}
		return t.Format(time.DateOnly)
	},
}

var tpl = template.Must(template.New("report").Funcs(funcs).Parse(htmlTpl))

// Render 渲染 HTML 报告
func Render(w io.Writer, data Data) error {
	return tpl.Execute(w, data)
}

// WriteFile 渲染到文件，必要时创建目录
func WriteFile(path string, data Data) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Render(f, data)
}

const htmlTpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Risk Radar | Insurance News</title>
    <style>
        :root {
            --primary-color: #2563eb;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 960px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 32px; padding: 20px 0; }
        h1 { font-size: 2.2rem; margin: 0 0 10px 0; }
        .date-info, .meta { color: var(--text-secondary); font-size: 0.9rem; }
        .card {
            background: var(--card-bg);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 20px 24px;
            margin-bottom: 20px;
        }
        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); gap: 20px; }
        .stats ul { list-style: none; padding: 0; margin: 0; }
        .tag { display: inline-block; padding: 2px 10px; border-radius: 999px; font-size: 0.8rem; background: #eff6ff; color: var(--primary-color); }
        .alert { color: #b91c1c; font-weight: 600; }
        .ok { color: #15803d; }
        a { color: var(--primary-color); text-decoration: none; }
        h3 { margin: 16px 0 4px; font-size: 1rem; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>Risk Radar</h1>
        <div class="date-info">{{.Date}}{{if .Period}} · {{.Period}}{{end}} · {{.Stats.Total}} articles</div>
    </header>

    <section class="card">
        <h2>Analytics Overview</h2>
        <div class="stats">
            <div>
                <h3>Trending News (High Severity)</h3>
                <ul>
                {{range .Stats.Trending}}<li>{{.Icon}} <a href="{{.URL}}">{{.Title}}</a> ({{date .PublishedDate}})</li>
                {{else}}<li class="meta">No high severity news.</li>{{end}}
                </ul>
            </div>
            <div>
                <h3>Sentiment Distribution</h3>
                <ul>{{range .Stats.BySentiment}}<li><span style="color: {{.Color}}">●</span> {{.Label}}: {{.Count}}</li>{{end}}</ul>
                <h3>Top Risk Categories</h3>
                <ul>{{range .Stats.ByCategory}}<li>{{.Label}}: {{.Count}}</li>{{end}}</ul>
            </div>
            <div>
                <h3>Severity Map</h3>
                <ul>{{range .Stats.SeverityMap}}<li><span style="color: {{.Color}}">●</span> {{.Location}} · {{.Sentiment}} · {{.Count}}</li>{{end}}</ul>
                <h3>Analyst Recommendations</h3>
                {{if .Stats.CriticalRegions}}<p class="alert">Immediate attention needed on: {{range $i, $r := .Stats.CriticalRegions}}{{if $i}}, {{end}}{{$r}}{{end}}</p>
                {{else}}<p class="ok">No immediate critical alerts.</p>{{end}}
            </div>
        </div>
    </section>

    {{range .Records}}
    <article class="card">
        <h2>{{icon .Sentiment}} <a href="{{.URL}}" target="_blank">{{.Title}}</a></h2>
        <div class="meta">
            {{if .Source}}{{.Source}} · {{end}}{{date .PublishedDate}} · {{location .Location}}
        </div>
        <p><span class="tag">{{category .DomainCategory}}</span> <span class="tag" style="color: {{color .Sentiment}}">{{.Sentiment}}</span></p>
        <h3>Summary</h3>
        <p>{{if .Summary}}{{.Summary}}{{else}}<span class="meta">No summary available.</span>{{end}}</p>
        {{with .FinancialImpact}}<h3>Financial Impact</h3><p>{{deref .}}</p>{{end}}
        {{with .Recommendation}}<h3>Recommendation</h3><p>{{deref .}}</p>{{end}}
        {{if .Stakeholders}}<h3>Stakeholders</h3><p>{{range $i, $s := .Stakeholders}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}
        {{if .References}}<h3>References</h3>
        <ul>{{range .References}}<li>{{if .URL}}<a href="{{.URL}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</li>{{end}}</ul>{{end}}
    </article>
    {{else}}
    <p class="meta">No articles found for the selected period.</p>
    {{end}}
</div>
</body>
</html>
`
