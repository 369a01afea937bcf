package storage

import (
	"fmt"

	"docvault/internal/config"
)

// New selects and constructs the configured storage backend. The choice is an
// environment-driven configuration concern (STORAGE_BACKEND); the rest of the
// application only sees the Storage interface.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocal(cfg.LocalDir)
	case "minio":
		return NewMinIO(cfg.MinIO)
	case "sftp":
		return NewSFTP(cfg.SFTP)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
