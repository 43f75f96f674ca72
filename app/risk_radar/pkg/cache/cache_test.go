package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

type memKV struct {
	data   map[string]string
	ttl    time.Duration
	getErr error
}

func (m *memKV) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	m.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRecordCache(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string]string{}}
	c := newRecordCache(kv, time.Hour)

	got, err := c.Get(ctx, "https://example.com/a")
	if err != nil || got != nil {
		t.Fatalf("Get() on miss = %v, %v", got, err)
	}

	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rec := model.EnrichedRecord{
		Title:          "Floods",
		URL:            "https://example.com/a",
		PublishedDate:  &d,
		Location:       model.StrPtr("Germany"),
		DomainCategory: model.CategoryClimateRisk,
		Sentiment:      model.SentimentHighRisk,
		Summary:        "summary",
		Stakeholders:   []string{"Allianz"},
	}
	if err := c.Set(ctx, rec); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if kv.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", kv.ttl)
	}

	got, err = c.Get(ctx, rec.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(&rec, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordCache_Errors(t *testing.T) {
	ctx := context.Background()

	c := newRecordCache(&memKV{data: map[string]string{}, getErr: errors.New("connection refused")}, time.Hour)
	if _, err := c.Get(ctx, "u"); err == nil {
		t.Error("expected redis error")
	}

	c = newRecordCache(&memKV{data: map[string]string{Key("u"): "not json"}}, time.Hour)
	if _, err := c.Get(ctx, "u"); err == nil {
		t.Error("expected decode error")
	}
}

func TestKey(t *testing.T) {
	a, b := Key("https://a"), Key("https://b")
	if a == b || !strings.HasPrefix(a, keyPrefix) {
		t.Errorf("Key() = %q, %q", a, b)
	}
}
