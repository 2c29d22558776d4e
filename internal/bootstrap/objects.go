package bootstrap

import (
	"context"
	"fmt"

	"github.com/atelier-arq/atelier-backend/config"
	"github.com/atelier-arq/atelier-backend/internal/files/storage"
)

// NewObjectStore opens the file backend selected by STORAGE_DRIVER.
func NewObjectStore(ctx context.Context, cfg *config.StorageConfig) (storage.ObjectStore, error) {
	switch cfg.Driver {
	case "local":
		return storage.NewLocal(cfg.Dir)
	case "s3":
		return storage.NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
