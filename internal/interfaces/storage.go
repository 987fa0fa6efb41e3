// Package interfaces defines service contracts for FinaFlow
package interfaces

import (
	"context"

	"github.com/finaflow/finaflow/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	ProfileStore() ProfileStore
	LedgerStore() LedgerStore

	// Lifecycle
	Close() error
}

// ProfileStore manages user accounts, profiles, and system-level KV.
type ProfileStore interface {
	// User accounts
	GetUser(ctx context.Context, username string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Persona-bearing profiles
	GetProfile(ctx context.Context, profileID string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	DeleteProfile(ctx context.Context, profileID string) error
	ListProfiles(ctx context.Context) ([]*models.UserProfile, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// LedgerStore supplies the immutable transaction and budget records. The
// dashboard core only reads from it; writes exist for import and demo
// seeding.
type LedgerStore interface {
	GetTransactions(ctx context.Context, profileID string) ([]models.Transaction, error)
	GetBudgets(ctx context.Context, profileID string) ([]models.Budget, error)

	PutTransactions(ctx context.Context, profileID string, transactions []models.Transaction) error
	PutBudgets(ctx context.Context, profileID string, budgets []models.Budget) error

	// SeedDemo loads the demo ledger for a profile when it has no records yet.
	SeedDemo(ctx context.Context, profileID string) error

	Close() error
}
