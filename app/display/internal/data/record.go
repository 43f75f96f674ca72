package data

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sort"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/risk_radar/app/display/internal/domain"
	"github.com/iWorld-y/risk_radar/app/display/internal/repo"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/storage"
)

type recordRepo struct {
	data *Data
	log  *log.Helper
}

func NewRecordRepo(data *Data, logger log.Logger) repo.RecordRepo {
	return &recordRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *recordRepo) ListRecords(ctx context.Context, f domain.RecordFilter) ([]model.EnrichedRecord, error) {
	if r.data.store != nil {
		sf := storage.Filter{Start: f.Start, End: f.End, Category: f.Category}
		if f.Limit > 0 {
			sf.Limit = uint64(f.Limit)
		}
		return r.data.store.ListRecords(ctx, sf)
	}

	recs, err := r.readFile()
	if err != nil {
		return nil, err
	}
	return filterRecords(recs, f), nil
}

// readFile 文件尚未生成时视为没有记录
func (r *recordRepo) readFile() ([]model.EnrichedRecord, error) {
	b, err := os.ReadFile(r.data.recordsFile)
	if errors.Is(err, os.ErrNotExist) {
		r.log.Warnf("records file %s not found", r.data.recordsFile)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []model.EnrichedRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// filterRecords 与 storage.ListRecords 相同的语义：区间过滤、分类过滤、发布时间倒序
func filterRecords(recs []model.EnrichedRecord, f domain.RecordFilter) []model.EnrichedRecord {
	out := make([]model.EnrichedRecord, 0, len(recs))
	for _, rec := range recs {
		if f.Category != nil && rec.DomainCategory != *f.Category {
			continue
		}
		if f.Start != nil || f.End != nil {
			if rec.PublishedDate == nil {
				continue
			}
			if f.Start != nil && rec.PublishedDate.Before(*f.Start) {
				continue
			}
			if f.End != nil && rec.PublishedDate.After(*f.End) {
				continue
			}
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].PublishedDate, out[j].PublishedDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
