package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/query"
)

var now = time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func records() []model.EnrichedRecord {
	return []model.EnrichedRecord{
		{Title: "Hurricane", URL: "u1", PublishedDate: at(30 * time.Minute), Location: model.StrPtr("Florida"),
			DomainCategory: model.CategoryClimateRisk, Sentiment: model.SentimentCritical, Summary: "s1"},
		{Title: "Flood", URL: "u2", PublishedDate: at(3 * time.Hour), Location: model.StrPtr("Florida"),
			DomainCategory: model.CategoryClimateRisk, Sentiment: model.SentimentHighRisk},
		{Title: "AI claims", URL: "u3", PublishedDate: at(30 * time.Hour),
			DomainCategory: model.CategoryInsurTech, Sentiment: model.SentimentLowRisk},
		{Title: "Fine", URL: "u4", PublishedDate: at(10 * 24 * time.Hour), Location: model.StrPtr("Germany"),
			DomainCategory: model.CategoryRegulatoryUpdate, Sentiment: model.SentimentCritical},
		{Title: "No date", URL: "u5", DomainCategory: model.CategoryOther, Sentiment: model.SentimentNeutral},
	}
}

func urls(recs []model.EnrichedRecord) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.URL)
	}
	return out
}

func TestPeriodRange(t *testing.T) {
	tests := []struct {
		label string
		want  []string
	}{
		{"", []string{"u1", "u2"}},
		{"Today", []string{"u1", "u2"}},
		{"Last 1 Hour", []string{"u1"}},
		{"Last 24 Hours", []string{"u1", "u2"}},
		{"Last 2 Days", []string{"u1", "u2", "u3"}},
		{"Last 1 Month", []string{"u1", "u2", "u3", "u4"}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rng, err := PeriodRange(tt.label, now)
			if err != nil {
				t.Fatalf("PeriodRange() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, urls(FilterByRange(records(), rng))); diff != "" {
				t.Errorf("FilterByRange mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := PeriodRange("Last Century", now); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestFilterByRange_Nil(t *testing.T) {
	if got := FilterByRange(records(), nil); len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestGroupBy(t *testing.T) {
	recs := records()

	byLoc := GroupByLocation(recs)
	if len(byLoc["Florida"]) != 2 || len(byLoc[UnknownLocation]) != 2 || len(byLoc["Germany"]) != 1 {
		t.Errorf("GroupByLocation = %v", byLoc)
	}
	byCat := GroupByCategory(recs)
	if diff := cmp.Diff([]string{"u1", "u2"}, urls(byCat[model.CategoryClimateRisk])); diff != "" {
		t.Errorf("GroupByCategory mismatch (-want +got):\n%s", diff)
	}
	bySent := GroupBySentiment(recs)
	if len(bySent[model.SentimentCritical]) != 2 {
		t.Errorf("GroupBySentiment = %v", bySent)
	}
}

func TestSummarize(t *testing.T) {
	st := Summarize(records())

	if st.Total != 5 {
		t.Errorf("Total = %d", st.Total)
	}
	wantCat := []Count{
		{Label: "Climate Risk", Count: 2},
		{Label: "InsurTech", Count: 1},
		{Label: "Regulatory Update", Count: 1},
		{Label: Unclassified, Count: 1},
	}
	if diff := cmp.Diff(wantCat, st.ByCategory); diff != "" {
		t.Errorf("ByCategory mismatch (-want +got):\n%s", diff)
	}
	wantSent := []Count{
		{Label: "Critical", Count: 2, Color: "red"},
		{Label: "High Risk", Count: 1, Color: "orange"},
		{Label: "Low Risk", Count: 1, Color: "green"},
		{Label: "Neutral", Count: 1, Color: "blue"},
	}
	if diff := cmp.Diff(wantSent, st.BySentiment); diff != "" {
		t.Errorf("BySentiment mismatch (-want +got):\n%s", diff)
	}
	if len(st.Trending) != 3 || st.Trending[0].Icon != "🔴" || st.Trending[1].Title != "Flood" {
		t.Errorf("Trending = %+v", st.Trending)
	}
	if diff := cmp.Diff([]string{"Florida", "Germany"}, st.CriticalRegions); diff != "" {
		t.Errorf("CriticalRegions mismatch (-want +got):\n%s", diff)
	}
	if st.SeverityMap[0].Location != "Florida" || st.SeverityMap[0].Sentiment != model.SentimentCritical {
		t.Errorf("SeverityMap = %+v", st.SeverityMap)
	}
}

func TestSummarize_TrendingLimit(t *testing.T) {
	var recs []model.EnrichedRecord
	for i := 0; i < 8; i++ {
		recs = append(recs, model.EnrichedRecord{URL: string(rune('a' + i)), Sentiment: model.SentimentHighRisk})
	}
	if got := len(Summarize(recs).Trending); got != trendingLimit {
		t.Errorf("len(Trending) = %d, want %d", got, trendingLimit)
	}
}

func TestRender(t *testing.T) {
	rng := &query.DateRange{Start: now.AddDate(0, -1, 0), End: now}
	data := NewData("run-1", "Last 1 Month", rng, records(), now)

	var buf bytes.Buffer
	if err := Render(&buf, data); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, s := range []string{"Hurricane", "Unknown Location", "Immediate attention needed on: Florida, Germany", "Last 1 Month", "No summary available."} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q", s)
		}
	}
	if strings.Contains(out, "No date") {
		t.Error("record without date should be filtered out")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "index.html")
	if err := WriteFile(path, NewData("", "", nil, nil, now)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "No articles found") {
		t.Error("empty report should say no articles")
	}
}
