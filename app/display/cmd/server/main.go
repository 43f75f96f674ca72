package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/risk_radar/app/display/internal/conf"
	"github.com/iWorld-y/risk_radar/app/display/internal/data"
	"github.com/iWorld-y/risk_radar/app/display/internal/server"
	"github.com/iWorld-y/risk_radar/app/display/internal/service"
	"github.com/iWorld-y/risk_radar/app/display/internal/usecase"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "display"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/display/configs/config.yaml", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}

// initApp 手动组装各层依赖
func initApp(cs *conf.Server, cd *conf.Data, logger log.Logger) (*kratos.App, func(), error) {
	d, cleanup, err := data.NewData(cd, logger)
	if err != nil {
		return nil, nil, err
	}
	recordRepo := data.NewRecordRepo(d, logger)
	recordUseCase := usecase.NewRecordUseCase(recordRepo, logger)
	displayService := service.NewDisplayService(recordUseCase, logger)
	httpServer := server.NewHTTPServer(cs, displayService, logger)
	return newApp(logger, httpServer), cleanup, nil
}

func main() {
	flag.Parse()
	// 初始化日志记录器，包含时间戳、调用者信息、服务ID等上下文
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	// 初始化配置加载器
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	// 扫描配置到 Bootstrap 结构体
	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	app, cleanup, err := initApp(bc.Server, bc.Data, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
