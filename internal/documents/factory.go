package documents

import (
	"fmt"

	"go.uber.org/zap"
)

// Open returns the Store selected by driver. The memory driver ignores dsn.
func Open(driver, dsn string, autoMigrate bool, logger *zap.Logger) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres", "sqlite":
		return NewGormStore(GormConfig{
			Driver:      driver,
			DSN:         dsn,
			AutoMigrate: autoMigrate,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported documents driver %q", driver)
	}
}
