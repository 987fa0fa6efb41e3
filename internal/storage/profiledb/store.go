// Package profiledb implements ProfileStore using BadgerHold.
// It manages user accounts, persona-bearing profiles, and system-level KV.
package profiledb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
)

// Store implements interfaces.ProfileStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// Key prefixes keep the three record kinds in distinct namespaces within
// the single BadgerHold store.
const (
	userPrefix    = "user\x00"
	profilePrefix = "profile\x00"
	kvPrefix      = "kv\x00"
)

// systemKV is a stored system key-value pair.
type systemKV struct {
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	DateTime time.Time `json:"datetime"`
}

// NewStore creates a new ProfileStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("ProfileDB opened")
	return &Store{db: db, logger: logger}, nil
}

// --- User accounts ---

func (s *Store) GetUser(_ context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.Get(userPrefix+username, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user '%s' not found", username)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", username, err)
	}
	return &user, nil
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	if err := s.db.Upsert(userPrefix+user.Username, user); err != nil {
		return fmt.Errorf("failed to save user '%s': %w", user.Username, err)
	}
	s.logger.Debug().Str("username", user.Username).Msg("User saved")
	return nil
}

func (s *Store) DeleteUser(_ context.Context, username string) error {
	if err := s.db.Delete(userPrefix+username, models.User{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete user '%s': %w", username, err)
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	var users []models.User
	if err := s.db.Find(&users, nil); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	sort.Strings(names)
	return names, nil
}

// --- Profiles ---

func (s *Store) GetProfile(_ context.Context, profileID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.Get(profilePrefix+profileID, &profile); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("profile '%s' not found", profileID)
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", profileID, err)
	}
	return &profile, nil
}

func (s *Store) SaveProfile(_ context.Context, profile *models.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if err := s.db.Upsert(profilePrefix+profile.ID, profile); err != nil {
		return fmt.Errorf("failed to save profile '%s': %w", profile.ID, err)
	}
	s.logger.Debug().
		Str("profile_id", profile.ID).
		Str("persona", string(profile.Persona)).
		Msg("Profile saved")
	return nil
}

func (s *Store) DeleteProfile(_ context.Context, profileID string) error {
	if err := s.db.Delete(profilePrefix+profileID, models.UserProfile{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete profile '%s': %w", profileID, err)
	}
	return nil
}

func (s *Store) ListProfiles(_ context.Context) ([]*models.UserProfile, error) {
	var all []models.UserProfile
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	result := make([]*models.UserProfile, 0, len(all))
	for i := range all {
		p := all[i]
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- System key-value ---

func (s *Store) GetSystemKV(_ context.Context, key string) (string, error) {
	var kv systemKV
	if err := s.db.Get(kvPrefix+key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get system kv '%s': %w", key, err)
	}
	return kv.Value, nil
}

func (s *Store) SetSystemKV(_ context.Context, key, value string) error {
	kv := &systemKV{Key: key, Value: value, DateTime: time.Now()}
	if err := s.db.Upsert(kvPrefix+key, kv); err != nil {
		return fmt.Errorf("failed to set system kv '%s': %w", key, err)
	}
	return nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ensure Store implements ProfileStore
var _ interfaces.ProfileStore = (*Store)(nil)
