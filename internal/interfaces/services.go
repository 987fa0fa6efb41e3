// Package interfaces defines service contracts for FinaFlow
package interfaces

import (
	"context"

	"github.com/finaflow/finaflow/internal/models"
)

// DashboardService runs the persona-driven generation pipeline.
type DashboardService interface {
	// Generate produces a fresh DashboardOutput for the profile. Provider
	// and validation failures are absorbed into the deterministic fallback;
	// only configuration errors (unknown persona) surface to the caller.
	Generate(ctx context.Context, profile *models.UserProfile) (*models.DashboardResult, error)

	// Current returns the profile's latest produced dashboard, or a pending
	// snapshot when no generation has completed yet.
	Current(profileID string) DashboardSnapshot

	// Invalidate drops the profile's cached dashboard, returning it to the
	// pending state until the next generation completes.
	Invalidate(profileID string)

	// Project filters an output down to the populated slots that are active
	// for the profile, preserving active-widget order.
	Project(output *models.DashboardOutput, activeWidgets []models.WidgetType) []ProjectedWidget
}

// DashboardSnapshot is the two-phase produce/replace view of a profile's
// dashboard: Pending carries a placeholder until the first Ready value
// arrives; each completed generation atomically replaces the previous one.
type DashboardSnapshot struct {
	Status      SnapshotStatus          `json:"status"`
	Placeholder string                  `json:"placeholder,omitempty"`
	Result      *models.DashboardResult `json:"result,omitempty"`
}

// SnapshotStatus is the dashboard holder phase.
type SnapshotStatus string

// Snapshot status constants
const (
	SnapshotPending SnapshotStatus = "pending"
	SnapshotReady   SnapshotStatus = "ready"
)

// ProjectedWidget is one displayable slot after active-widget filtering.
type ProjectedWidget struct {
	Type    models.WidgetType `json:"type"`
	Payload interface{}       `json:"payload"`
}

// ProfileService manages personas and their derived dashboard configuration.
type ProfileService interface {
	// CreateProfile stores a new profile, deriving ActiveWidgets and Layout
	// from the persona via the policy table.
	CreateProfile(ctx context.Context, name string, persona models.Persona) (*models.UserProfile, error)

	// GetProfile retrieves a profile by ID.
	GetProfile(ctx context.Context, profileID string) (*models.UserProfile, error)

	// SetPersona changes the persona and re-derives the dashboard config.
	SetPersona(ctx context.Context, profileID string, persona models.Persona) (*models.UserProfile, error)

	// ListProfiles returns all stored profiles.
	ListProfiles(ctx context.Context) ([]*models.UserProfile, error)

	// DeleteProfile removes a profile.
	DeleteProfile(ctx context.Context, profileID string) error
}
