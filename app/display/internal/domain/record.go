package domain

import (
	"time"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/report"
)

// RecordQuery 看板查询条件
type RecordQuery struct {
	Period   string // 时间段标签，为空时取 Today
	Category *model.DomainCategory
	Limit    int
}

// RecordFilter 仓库层过滤条件
type RecordFilter struct {
	Start    *time.Time
	End      *time.Time
	Category *model.DomainCategory
	Limit    int
}

// Overview 一个时间段内的记录与统计
type Overview struct {
	Period  string
	Periods []report.Period
	Records []model.EnrichedRecord
	Stats   report.Stats
}
