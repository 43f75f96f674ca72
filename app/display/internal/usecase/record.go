package usecase

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/risk_radar/app/display/internal/domain"
	"github.com/iWorld-y/risk_radar/app/display/internal/repo"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/report"
)

// RecordUseCase 看板业务逻辑
type RecordUseCase struct {
	repo repo.RecordRepo
	log  *log.Helper
	now  func() time.Time
}

// NewRecordUseCase 创建看板业务逻辑实例
func NewRecordUseCase(repo repo.RecordRepo, logger log.Logger) *RecordUseCase {
	return &RecordUseCase{repo: repo, log: log.NewHelper(logger), now: time.Now}
}

// List 列出时间段内的记录
func (uc *RecordUseCase) List(ctx context.Context, q domain.RecordQuery) ([]model.EnrichedRecord, error) {
	rng, err := report.PeriodRange(q.Period, uc.now())
	if err != nil {
		return nil, errors.BadRequest("INVALID_PERIOD", err.Error())
	}
	return uc.repo.ListRecords(ctx, domain.RecordFilter{
		Start:    &rng.Start,
		End:      &rng.End,
		Category: q.Category,
		Limit:    q.Limit,
	})
}

// Overview 时间段内的记录与统计，统计不受 Limit 影响
func (uc *RecordUseCase) Overview(ctx context.Context, q domain.RecordQuery) (*domain.Overview, error) {
	limit := q.Limit
	q.Limit = 0
	recs, err := uc.List(ctx, q)
	if err != nil {
		return nil, err
	}
	period := q.Period
	if period == "" {
		period = report.Periods[0].Label
	}
	ov := &domain.Overview{
		Period:  period,
		Periods: report.Periods,
		Records: recs,
		Stats:   report.Summarize(recs),
	}
	if limit > 0 && len(ov.Records) > limit {
		ov.Records = ov.Records[:limit]
	}
	uc.log.Debugf("overview %s: %d records", period, len(recs))
	return ov, nil
}
