package lifecycle

import (
	"context"

	"github.com/typetester/font-tester-backend/internal/font/storage"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Migrator prepares the durable schema for font metadata
type Migrator interface {
	AutoMigrate(models ...interface{}) error
}

// CacheFlusher drops every cache entry the font registry owns
type CacheFlusher interface {
	FlushCache(ctx context.Context)
}

// Manager handles service provisioning and teardown. Activation is idempotent
// and runs on every boot; deactivation removes stored files and cached state
// but never drops the metadata table.
type Manager struct {
	store    storage.Store
	migrator Migrator
	flusher  CacheFlusher
	models   []interface{}
	logger   *logger.Logger
}

func NewManager(store storage.Store, migrator Migrator, flusher CacheFlusher, models []interface{}, log *logger.Logger) *Manager {
	return &Manager{
		store:    store,
		migrator: migrator,
		flusher:  flusher,
		models:   models,
		logger:   log,
	}
}

// Activate ensures the storage root and the metadata schema exist
func (m *Manager) Activate(ctx context.Context) error {
	if err := m.store.EnsureRoot(ctx); err != nil {
		return err
	}

	if err := m.migrator.AutoMigrate(m.models...); err != nil {
		return err
	}

	m.logger.Info("font service activated")
	return nil
}

// Deactivate removes every stored font file and flushes the cache. Metadata
// rows survive so a later activation restores the service without data loss
// beyond the files themselves.
func (m *Manager) Deactivate(ctx context.Context) error {
	removeErr := m.store.RemoveRoot(ctx)
	if removeErr != nil {
		m.logger.Error("failed to remove font storage root", zap.Error(removeErr))
	}

	// Root removal can fail after deleting part of the tree. The cache is
	// flushed regardless so no entry keeps pointing at a file that is gone.
	m.flusher.FlushCache(ctx)

	if removeErr != nil {
		return removeErr
	}

	m.logger.Info("font service deactivated")
	return nil
}
