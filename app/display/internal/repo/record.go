package repo

import (
	"context"

	"github.com/iWorld-y/risk_radar/app/display/internal/domain"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

// RecordRepo 记录仓库接口
type RecordRepo interface {
	// ListRecords 按发布时间倒序返回满足条件的记录
	ListRecords(ctx context.Context, f domain.RecordFilter) ([]model.EnrichedRecord, error)
}
