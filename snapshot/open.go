package snapshot

import (
	"context"
	"fmt"

	"github.com/eringen/markpost/post"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

// Open returns the snapshot target for driver. For the file drivers dsn is a
// path; for postgres it is a connection URL.
func Open(ctx context.Context, driver, dsn string) (post.Snapshotter, error) {
	var (
		target post.Snapshotter
		err    error
	)
	switch driver {
	case DriverSQLite, "":
		target, err = OpenSQLite(dsn)
	case DriverJSON:
		target, err = NewJSONFile(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("snapshot: postgres driver needs a database url")
		}
		target, err = OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("snapshot: unknown driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", driver, err)
	}
	return target, nil
}
