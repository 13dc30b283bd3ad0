package stations

import (
	"context"
	"fmt"

	"github.com/travigo/countdown/pkg/config"
)

// Open connects the store backend selected in the configuration
func Open(ctx context.Context, cfg config.StationsConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMongoDB:
		return OpenMongo(ctx, cfg.MongoDB.Connection, cfg.MongoDB.Database)
	case config.BackendSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown stations backend %q", cfg.Backend)
	}
}
