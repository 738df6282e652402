package lib

import (
	"context"
	"fmt"

	"github.com/theleywin/devconnector/src/config"
	"github.com/theleywin/devconnector/src/store"
	"github.com/theleywin/devconnector/src/store/mongostore"
	"github.com/theleywin/devconnector/src/store/pgstore"
	"github.com/theleywin/devconnector/src/store/sqlstore"
)

// ConnectDB opens the document store selected by DB_DRIVER
func ConnectDB(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlstore.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := pgstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
