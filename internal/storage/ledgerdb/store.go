// Package ledgerdb implements LedgerStore using BadgerHold.
// Transactions and budgets are stored as one record set per profile; the
// dashboard core treats them as immutable input.
package ledgerdb

import (
	"context"
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
)

// Store implements interfaces.LedgerStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

const (
	txPrefix     = "transactions\x00"
	budgetPrefix = "budgets\x00"
)

// transactionSet is the stored per-profile transaction list.
type transactionSet struct {
	ProfileID    string               `json:"profile_id"`
	Transactions []models.Transaction `json:"transactions"`
}

// budgetSet is the stored per-profile budget list.
type budgetSet struct {
	ProfileID string          `json:"profile_id"`
	Budgets   []models.Budget `json:"budgets"`
}

// NewStore creates a new LedgerStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("LedgerDB opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) GetTransactions(_ context.Context, profileID string) ([]models.Transaction, error) {
	var set transactionSet
	if err := s.db.Get(txPrefix+profileID, &set); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transactions for profile '%s': %w", profileID, err)
	}
	return set.Transactions, nil
}

func (s *Store) GetBudgets(_ context.Context, profileID string) ([]models.Budget, error) {
	var set budgetSet
	if err := s.db.Get(budgetPrefix+profileID, &set); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get budgets for profile '%s': %w", profileID, err)
	}
	return set.Budgets, nil
}

func (s *Store) PutTransactions(_ context.Context, profileID string, transactions []models.Transaction) error {
	for i := range transactions {
		t := &transactions[i]
		if t.ID == "" {
			return fmt.Errorf("transaction %d: id is required", i)
		}
		if !t.Category.Valid() {
			return fmt.Errorf("transaction '%s': unknown category '%s'", t.ID, t.Category)
		}
		if !t.Status.Valid() {
			return fmt.Errorf("transaction '%s': unknown status '%s'", t.ID, t.Status)
		}
	}
	set := &transactionSet{ProfileID: profileID, Transactions: transactions}
	if err := s.db.Upsert(txPrefix+profileID, set); err != nil {
		return fmt.Errorf("failed to put transactions for profile '%s': %w", profileID, err)
	}
	s.logger.Debug().
		Str("profile_id", profileID).
		Int("count", len(transactions)).
		Msg("Transactions stored")
	return nil
}

func (s *Store) PutBudgets(_ context.Context, profileID string, budgets []models.Budget) error {
	for i := range budgets {
		b := &budgets[i]
		if !b.Category.Valid() {
			return fmt.Errorf("budget %d: unknown category '%s'", i, b.Category)
		}
		if b.Limit <= 0 {
			return fmt.Errorf("budget '%s': limit must be positive", b.Category)
		}
		if b.Spent < 0 {
			return fmt.Errorf("budget '%s': spent must be non-negative", b.Category)
		}
	}
	set := &budgetSet{ProfileID: profileID, Budgets: budgets}
	if err := s.db.Upsert(budgetPrefix+profileID, set); err != nil {
		return fmt.Errorf("failed to put budgets for profile '%s': %w", profileID, err)
	}
	return nil
}

// SeedDemo loads the demo ledger for a profile when it has no records yet.
func (s *Store) SeedDemo(ctx context.Context, profileID string) error {
	existing, err := s.GetTransactions(ctx, profileID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if err := s.PutTransactions(ctx, profileID, DemoTransactions()); err != nil {
		return err
	}
	if err := s.PutBudgets(ctx, profileID, DemoBudgets()); err != nil {
		return err
	}
	s.logger.Info().Str("profile_id", profileID).Msg("Demo ledger seeded")
	return nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements LedgerStore
var _ interfaces.LedgerStore = (*Store)(nil)
