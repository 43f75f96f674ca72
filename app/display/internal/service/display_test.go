package service

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/risk_radar/app/display/internal/domain"
	"github.com/iWorld-y/risk_radar/app/display/internal/usecase"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

type stubRepo struct {
	recs []model.EnrichedRecord
}

func (s *stubRepo) ListRecords(ctx context.Context, f domain.RecordFilter) ([]model.EnrichedRecord, error) {
	var out []model.EnrichedRecord
	for _, r := range s.recs {
		if f.Category != nil && r.DomainCategory != *f.Category {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Now()
	repo := &stubRepo{recs: []model.EnrichedRecord{
		{Title: "Wildfire losses", URL: "https://a", PublishedDate: &now, DomainCategory: model.CategoryClimateRisk,
			Sentiment: model.SentimentCritical, Location: model.StrPtr("California")},
		{Title: "Insurer launches app", URL: "https://b", PublishedDate: &now, DomainCategory: model.CategoryInsurTech,
			Sentiment: model.SentimentLowRisk},
	}}
	svc := NewDisplayService(usecase.NewRecordUseCase(repo, log.DefaultLogger), log.DefaultLogger)

	srv := http.NewServer()
	r := srv.Route("/v1")
	r.GET("/records", svc.ListRecords)
	r.GET("/stats", svc.GetStats)
	srv.HandleFunc("/dashboard", svc.Dashboard)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, rawURL string) (*nethttp.Response, []byte) {
	t.Helper()
	resp, err := nethttp.Get(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestListRecords(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/v1/records?category="+url.QueryEscape("Climate Risk"))
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var reply ListRecordsReply
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}
	if reply.Period != "Today" || reply.Total != 1 || reply.Records[0].URL != "https://a" {
		t.Errorf("reply = %+v", reply)
	}
	if reply.Records[0].DomainCategory != model.CategoryClimateRisk {
		t.Errorf("category = %v", reply.Records[0].DomainCategory)
	}
}

func TestListRecords_BadRequest(t *testing.T) {
	ts := newTestServer(t)
	for _, q := range []string{"category=Weather", "limit=-1", "period=Forever"} {
		resp, body := get(t, ts.URL+"/v1/records?"+q)
		if resp.StatusCode != nethttp.StatusBadRequest {
			t.Errorf("%s: status = %d, body = %s", q, resp.StatusCode, body)
		}
	}
}

func TestGetStats(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/v1/stats?period="+url.QueryEscape("Last 24 Hours"))
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var reply StatsReply
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Period != "Last 24 Hours" || reply.Stats.Total != 2 || len(reply.Periods) != 7 {
		t.Errorf("reply = %+v", reply)
	}
	if len(reply.Stats.CriticalRegions) != 1 || reply.Stats.CriticalRegions[0] != "California" {
		t.Errorf("CriticalRegions = %v", reply.Stats.CriticalRegions)
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/dashboard")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, s := range []string{"Wildfire losses", "Unknown Location", "Immediate attention needed on: California"} {
		if !strings.Contains(string(body), s) {
			t.Errorf("dashboard missing %q", s)
		}
	}

	resp, _ = get(t, ts.URL+"/dashboard?limit=abc")
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestParseQuery(t *testing.T) {
	q, err := parseQuery(url.Values{"category": {"InsurTech"}, "limit": {"5"}}.Get)
	if err != nil {
		t.Fatal(err)
	}
	if q.Period != "Today" || q.Category == nil || *q.Category != model.CategoryInsurTech || q.Limit != 5 {
		t.Errorf("parseQuery() = %+v", q)
	}
	if _, err := parseQuery(url.Values{"limit": {"x"}}.Get); !errors.IsBadRequest(err) {
		t.Errorf("err = %v, want BadRequest", err)
	}
}
