package data

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/risk_radar/app/display/internal/conf"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/config"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/storage"
)

type Data struct {
	store       *storage.Storage
	recordsFile string
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil {
		return nil, nil, fmt.Errorf("data config is missing")
	}

	d := &Data{recordsFile: c.RecordsFile}
	if db := c.Database; db != nil && db.Host != "" {
		store, err := storage.NewStorage(context.Background(), config.DBConfig{
			Host:     db.Host,
			Port:     int(db.Port),
			User:     db.User,
			Password: db.Password,
			Name:     db.Name,
		})
		if err != nil {
			return nil, nil, err
		}
		d.store = store
		helper.Infof("reading records from postgres %s/%s", db.Host, db.Name)
	} else if d.recordsFile == "" {
		return nil, nil, fmt.Errorf("neither database nor records_file is configured")
	} else {
		helper.Infof("reading records from %s", d.recordsFile)
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.store != nil {
			d.store.Close()
		}
	}
	return d, cleanup, nil
}
