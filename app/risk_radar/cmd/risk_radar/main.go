package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/cache"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/engine"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/model"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/report"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/storage"
)

var flagconf string

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置错误: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动风险雷达...")

	ctx := context.Background()

	// 如果配置了数据库信息，则尝试连接
	var sink engine.RecordSink
	if cfg.DB.Host != "" {
		store, err := storage.NewStorage(ctx, cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅生成 HTML 文件。", err)
		} else {
			defer store.Close()
			sink = store
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 富化结果缓存
	var recordCache engine.RecordCache
	if rc, err := cache.New(ctx, cfg.Redis); err != nil {
		logger.Log.Warnf("无法连接 Redis: %v. 不启用缓存。", err)
	} else if rc != nil {
		recordCache = rc
		logger.Log.Infof("已启用富化缓存，TTL %ds", cfg.Redis.TTL)
	}

	// 3. 初始化引擎
	eng, err := engine.NewEngine(ctx, cfg, recordCache, sink)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	// 4. 运行
	res, err := eng.Run(ctx, engine.RunOptions{
		RunID:   uuid.NewString(),
		Domains: cfg.Domains,
		ProgressCallback: func(status string, progress int) {
			logger.Log.Infof("[%3d%%] %s", progress, status)
		},
	})
	if err != nil {
		logger.Log.Fatalf("运行失败: %v", err)
	}
	for _, d := range res.Domains {
		if d.Err != nil {
			logger.Log.Warnf("领域 [%s] 无结果: %v", d.Domain, d.Err)
		}
	}

	// 5. 生成 HTML 与 JSON
	if err := report.WriteFile(cfg.Output, report.NewData(res.RunID, "", nil, res.Records, time.Now())); err != nil {
		logger.Log.Fatalf("生成 HTML 失败: %v", err)
	}
	jsonPath := filepath.Join(filepath.Dir(cfg.Output), "records.json")
	if err := writeRecords(jsonPath, res.Records); err != nil {
		logger.Log.Errorf("写入 JSON 失败: %v", err)
	}
	logger.Log.Infof("报告已生成: %s (%d 条记录)", cfg.Output, len(res.Records))
}

func writeRecords(path string, recs []model.EnrichedRecord) error {
	if recs == nil {
		recs = []model.EnrichedRecord{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
