// Package storage 把富化记录写入 Postgres，并为看板提供查询
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
)

const table = "enriched_records"

const schema = `CREATE TABLE IF NOT EXISTS enriched_records (
	url TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	title TEXT NOT NULL,
	source TEXT,
	query TEXT,
	published_date TIMESTAMPTZ,
	location TEXT,
	domain_category TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	financial_impact TEXT,
	summary TEXT,
	stakeholders TEXT[],
	recommendation TEXT,
	refs JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
)`

var columns = []string{
	"url", "run_id", "title", "source", "query", "published_date", "location",
	"domain_category", "sentiment", "financial_impact", "summary", "stakeholders",
	"recommendation", "refs",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Storage Postgres 记录存储
type Storage struct {
	db *sql.DB
}

// NewStorage 打开连接并建表
func NewStorage(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRecords 在一个事务内按 URL upsert 本次运行的记录
func (s *Storage) SaveRecords(ctx context.Context, runID string, recs []model.EnrichedRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		query, args, err := upsertQuery(runID, rec)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build upsert %s: %w", rec.URL, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w: %v", err, rerr)
			}
			return fmt.Errorf("upsert %s: %w", rec.URL, err)
		}
	}
	return tx.Commit()
}

// Filter 查询条件；零值字段不参与过滤
type Filter struct {
	Start    *time.Time
	End      *time.Time
	Category *model.DomainCategory
	Limit    uint64
}

// ListRecords 按发布时间倒序返回记录
func (s *Storage) ListRecords(ctx context.Context, f Filter) ([]model.EnrichedRecord, error) {
	query, args, err := listQuery(f)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var recs []model.EnrichedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return recs, nil
}

func upsertQuery(runID string, rec model.EnrichedRecord) (string, []interface{}, error) {
	refs, err := json.Marshal(rec.References)
	if err != nil {
		return "", nil, err
	}
	return psql.Insert(table).
		Columns(columns...).
		Values(
			rec.URL, runID, rec.Title, rec.Source, rec.Query, nullTime(rec.PublishedDate), nullString(rec.Location),
			rec.DomainCategory.String(), rec.Sentiment.String(), nullString(rec.FinancialImpact), rec.Summary,
			pq.StringArray(rec.Stakeholders), nullString(rec.Recommendation), string(refs),
		).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			query = EXCLUDED.query,
			published_date = EXCLUDED.published_date,
			location = EXCLUDED.location,
			domain_category = EXCLUDED.domain_category,
			sentiment = EXCLUDED.sentiment,
			financial_impact = EXCLUDED.financial_impact,
			summary = EXCLUDED.summary,
			stakeholders = EXCLUDED.stakeholders,
			recommendation = EXCLUDED.recommendation,
			refs = EXCLUDED.refs,
			updated_at = NOW()`).
		ToSql()
}

func listQuery(f Filter) (string, []interface{}, error) {
	b := psql.Select(columns...).From(table).OrderBy("published_date DESC NULLS LAST", "url")
	if f.Start != nil {
		b = b.Where(sq.GtOrEq{"published_date": *f.Start})
	}
	if f.End != nil {
		b = b.Where(sq.LtOrEq{"published_date": *f.End})
	}
	if f.Category != nil {
		b = b.Where(sq.Eq{"domain_category": f.Category.String()})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	return b.ToSql()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (model.EnrichedRecord, error) {
	var (
		rec                                       model.EnrichedRecord
		runID, category, sentiment                string
		source, query, summary                    sql.NullString
		location, financialImpact, recommendation sql.NullString
		published                                 sql.NullTime
		stakeholders                              pq.StringArray
		refs                                      []byte
	)
	err := row.Scan(&rec.URL, &runID, &rec.Title, &source, &query, &published, &location,
		&category, &sentiment, &financialImpact, &summary, &stakeholders, &recommendation, &refs)
	if err != nil {
		return rec, err
	}

	rec.Source, rec.Query, rec.Summary = source.String, query.String, summary.String
	rec.Location = ptrString(location)
	rec.FinancialImpact = ptrString(financialImpact)
	rec.Recommendation = ptrString(recommendation)
	if published.Valid {
		t := published.Time
		rec.PublishedDate = &t
	}
	rec.Stakeholders = []string(stakeholders)
	if rec.Stakeholders == nil {
		rec.Stakeholders = []string{}
	}
	// 库中的标签都由本包写入，未知值按 Other/Neutral 处理
	rec.DomainCategory, _ = model.ParseCategoryLabel(category)
	rec.Sentiment, _ = model.ParseSentimentLabel(sentiment)
	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &rec.References); err != nil {
			return rec, fmt.Errorf("decode refs: %w", err)
		}
	}
	return rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func ptrString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
