package cmd

import (
	"context"
	"fmt"

	"github.com/ollivarila/wsk2/internal/api/handler"
	"github.com/ollivarila/wsk2/internal/core/ports"
	mongodb "github.com/ollivarila/wsk2/internal/infrastructure/db/mongo"
	"github.com/ollivarila/wsk2/internal/infrastructure/db/sqlstore"
	"github.com/ollivarila/wsk2/internal/pkg/config"
)

// stores is the selected persistence backend.
type stores struct {
	users  ports.UserRepository
	cats   ports.CatRepository
	checks map[string]handler.HealthCheck
	close  func(ctx context.Context) error
}

// openStores connects to the backend named by STORE_BACKEND and makes sure
// its indexes or schema exist.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendSQL:
		db, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.SQL.Driver, DSN: cfg.SQL.DSN})
		if err != nil {
			return nil, err
		}
		if err := sqlstore.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("driver", cfg.SQL.Driver).Msg("connected to sql store")
		return &stores{
			users:  sqlstore.NewUserRepository(db),
			cats:   sqlstore.NewCatRepository(db),
			checks: map[string]handler.HealthCheck{"sql": db.PingContext},
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongodb.NewUserRepository(db)
		cats := mongodb.NewCatRepository(db)
		if err := mongodb.EnsureIndexes(ctx, users, cats); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &stores{
			users: users,
			cats:  cats,
			checks: map[string]handler.HealthCheck{
				"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			close: client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
