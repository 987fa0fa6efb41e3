// Package storage coordinates the BadgerHold-backed storage areas.
package storage

import (
	"fmt"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/storage/ledgerdb"
	"github.com/finaflow/finaflow/internal/storage/profiledb"
)

// Manager implements interfaces.StorageManager over the two storage areas:
// profile (accounts, profiles, system KV) and ledger (transactions, budgets).
type Manager struct {
	profiles *profiledb.Store
	ledger   *ledgerdb.Store
	logger   *common.Logger
}

// NewManager opens all storage areas from config.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	profiles, err := profiledb.NewStore(logger, config.Storage.Profile.Path)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	ledger, err := ledgerdb.NewStore(logger, config.Storage.Ledger.Path)
	if err != nil {
		profiles.Close()
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	return &Manager{
		profiles: profiles,
		ledger:   ledger,
		logger:   logger,
	}, nil
}

// ProfileStore returns the profile storage area.
func (m *Manager) ProfileStore() interfaces.ProfileStore {
	return m.profiles
}

// LedgerStore returns the ledger storage area.
func (m *Manager) LedgerStore() interfaces.LedgerStore {
	return m.ledger
}

// Close shuts down all storage areas. The first error wins; remaining areas
// are still closed.
func (m *Manager) Close() error {
	var firstErr error
	if m.profiles != nil {
		if err := m.profiles.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.profiles = nil
	}
	if m.ledger != nil {
		if err := m.ledger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.ledger = nil
	}
	return firstErr
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
