// Package profile manages persona-bearing profiles and the dashboard
// configuration derived from them.
package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/policy"
)

// Service implements profile management over a ProfileStore. New profiles
// are seeded with the demo ledger so generation has records to work with.
type Service struct {
	profiles interfaces.ProfileStore
	ledger   interfaces.LedgerStore
	table    *policy.Table
	logger   *common.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPolicyTable overrides the default persona policy table.
func WithPolicyTable(t *policy.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithLogger sets the service logger.
func WithLogger(l *common.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a profile service.
func NewService(profiles interfaces.ProfileStore, ledger interfaces.LedgerStore, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		ledger:   ledger,
		table:    policy.Default(),
		logger:   common.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ interfaces.ProfileService = (*Service)(nil)

// CreateProfile stores a new profile with its dashboard configuration
// derived from the persona.
func (s *Service) CreateProfile(ctx context.Context, name string, persona models.Persona) (*models.UserProfile, error) {
	config, err := s.table.DashboardConfig(persona)
	if err != nil {
		return nil, fmt.Errorf("failed to derive dashboard config: %w", err)
	}

	profile := &models.UserProfile{
		ID:              uuid.New().String(),
		Name:            name,
		Persona:         persona,
		DashboardConfig: config,
	}

	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if err := s.ledger.SeedDemo(ctx, profile.ID); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("Failed to seed demo ledger")
	}

	s.logger.Info().
		Str("profile_id", profile.ID).
		Str("persona", string(persona)).
		Msg("Profile created")

	return profile, nil
}

// GetProfile retrieves a profile by ID.
func (s *Service) GetProfile(ctx context.Context, profileID string) (*models.UserProfile, error) {
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// SetPersona switches a profile's persona and re-derives its dashboard
// configuration from the policy table. Any customization of the widget set
// is replaced by the new persona's defaults.
func (s *Service) SetPersona(ctx context.Context, profileID string, persona models.Persona) (*models.UserProfile, error) {
	config, err := s.table.DashboardConfig(persona)
	if err != nil {
		return nil, fmt.Errorf("failed to derive dashboard config: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Persona = persona
	profile.DashboardConfig = config

	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info().
		Str("profile_id", profileID).
		Str("persona", string(persona)).
		Msg("Persona updated")

	return profile, nil
}

// ListProfiles returns all stored profiles.
func (s *Service) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// DeleteProfile removes a profile.
func (s *Service) DeleteProfile(ctx context.Context, profileID string) error {
	if err := s.profiles.DeleteProfile(ctx, profileID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	s.logger.Info().Str("profile_id", profileID).Msg("Profile deleted")
	return nil
}
