package storage

import (
	"context"
	"errors"
	"io"
)

// Package storage contains the file storage abstraction and its backend
// implementations (local disk, S3-compatible object store, SFTP). The service
// layer only depends on the Storage interface; backend selection is an
// environment-driven configuration concern handled by the factory.

// ErrNotFound is returned by Retrieve when a location handle does not resolve
// to a stored object. Backends wrap their native not-found errors into this
// sentinel so callers can distinguish a missing object from a transient
// backend failure.
var ErrNotFound = errors.New("storage: object not found")

// Storage is the uniform save/retrieve/delete contract over byte content.
//
// Location handles returned by Save are opaque, backend-specific strings,
// stable and sufficient for later retrieval and deletion. Callers are
// responsible for pre-randomizing names to avoid collisions; Save must never
// silently overwrite a colliding name where the backend can detect it.
type Storage interface {
	// Save persists content under a backend-chosen path derived from name and
	// returns the location handle. A failed save must not leave a location
	// that Retrieve can resolve.
	Save(ctx context.Context, r io.Reader, name string, size int64) (string, error)

	// Retrieve streams the content stored under location. The returned reader
	// is restartable per call, not resumable mid-stream. Returns ErrNotFound
	// if the handle does not resolve.
	Retrieve(ctx context.Context, location string) (io.ReadCloser, error)

	// Delete removes the object under location. It is idempotent: deleting a
	// missing handle reports found=false rather than an error. Backends that
	// cannot distinguish a missing object (the object-store variant) report
	// found=true; that asymmetry is documented per backend, not unified.
	Delete(ctx context.Context, location string) (found bool, err error)
}
