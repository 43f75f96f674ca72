package service

import (
	"context"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/risk_radar/app/display/internal/domain"
	"github.com/iWorld-y/risk_radar/app/display/internal/usecase"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/report"
)

const (
	OperationListRecords = "/risk_radar.display.v1.Display/ListRecords"
	OperationGetStats    = "/risk_radar.display.v1.Display/GetStats"
)

type DisplayService struct {
	uc  *usecase.RecordUseCase
	log *log.Helper
}

func NewDisplayService(uc *usecase.RecordUseCase, logger log.Logger) *DisplayService {
	return &DisplayService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// ListRecordsReply GET /v1/records 的返回
type ListRecordsReply struct {
	Period  string                 `json:"period"`
	Total   int                    `json:"total"`
	Records []model.EnrichedRecord `json:"records"`
}

// StatsReply GET /v1/stats 的返回
type StatsReply struct {
	Period  string          `json:"period"`
	Periods []report.Period `json:"periods"`
	Stats   report.Stats    `json:"stats"`
}

func (s *DisplayService) ListRecords(ctx http.Context) error {
	q, err := parseQuery(ctx.Query().Get)
	if err != nil {
		return err
	}
	http.SetOperation(ctx, OperationListRecords)
	h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
		recs, err := s.uc.List(ctx, req.(domain.RecordQuery))
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []model.EnrichedRecord{}
		}
		return &ListRecordsReply{Period: q.Period, Total: len(recs), Records: recs}, nil
	})
	out, err := h(ctx, q)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

func (s *DisplayService) GetStats(ctx http.Context) error {
	q, err := parseQuery(ctx.Query().Get)
	if err != nil {
		return err
	}
	http.SetOperation(ctx, OperationGetStats)
	h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
		ov, err := s.uc.Overview(ctx, req.(domain.RecordQuery))
		if err != nil {
			return nil, err
		}
		return &StatsReply{Period: ov.Period, Periods: ov.Periods, Stats: ov.Stats}, nil
	})
	out, err := h(ctx, q)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

// Dashboard 渲染 HTML 看板
func (s *DisplayService) Dashboard(w nethttp.ResponseWriter, r *nethttp.Request) {
	q, err := parseQuery(r.URL.Query().Get)
	if err == nil {
		err = s.renderDashboard(r.Context(), w, q)
	}
	if err != nil {
		se := errors.FromError(err)
		s.log.Errorf("render dashboard: %v", err)
		nethttp.Error(w, se.Message, int(se.Code))
	}
}

func (s *DisplayService) renderDashboard(ctx context.Context, w nethttp.ResponseWriter, q domain.RecordQuery) error {
	ov, err := s.uc.Overview(ctx, q)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return report.Render(w, report.Data{
		Date:    time.Now().Format(time.DateOnly),
		Period:  ov.Period,
		Records: ov.Records,
		Stats:   ov.Stats,
	})
}

// parseQuery 解析 period、category、limit 参数，period 缺省为 Today
func parseQuery(get func(string) string) (domain.RecordQuery, error) {
	q := domain.RecordQuery{Period: get("period")}
	if q.Period == "" {
		q.Period = report.Periods[0].Label
	}
	if v := get("category"); v != "" {
		c, ok := model.ParseCategoryLabel(v)
		if !ok {
			return q, errors.BadRequest("INVALID_CATEGORY", "unknown category: "+v)
		}
		q.Category = &c
	}
	if v := get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, errors.BadRequest("INVALID_LIMIT", "limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}
