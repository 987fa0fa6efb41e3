// Package dashboard implements the persona-driven generation pipeline:
// policy lookup, instruction building, external generation, strict
// validation, and the deterministic fallback that absorbs every provider
// failure.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/policy"
	"github.com/finaflow/finaflow/internal/schema"
)

// Service orchestrates dashboard generation. The generator client may be
// nil, in which case every request resolves through the fallback path.
type Service struct {
	generator   interfaces.GeneratorClient
	ledger      interfaces.LedgerStore
	table       *policy.Table
	temperature float32
	holder      *holder
	logger      *common.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator sets the external generator client.
func WithGenerator(g interfaces.GeneratorClient) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithPolicyTable overrides the default persona policy table.
func WithPolicyTable(t *policy.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithTemperature sets the generator sampling temperature.
func WithTemperature(t float32) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

// WithLogger sets the service logger.
func WithLogger(l *common.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a dashboard service over the given ledger store.
func NewService(ledger interfaces.LedgerStore, opts ...Option) *Service {
	s := &Service{
		ledger:      ledger,
		table:       policy.Default(),
		temperature: 0.3,
		holder:      newHolder(),
		logger:      common.NewDefaultLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ interfaces.DashboardService = (*Service)(nil)

// Generate runs the full pipeline for a profile. The only error it returns
// is a configuration error from the policy lookup; generator and validation
// failures are absorbed into the fallback, so a nil error always carries a
// complete result.
func (s *Service) Generate(ctx context.Context, profile *models.UserProfile) (*models.DashboardResult, error) {
	rec, err := s.table.ForPersona(profile.Persona)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve persona policy: %w", err)
	}

	seq := s.holder.nextToken()

	transactions, budgets := s.loadLedger(ctx, profile.ID)

	output, source := s.produce(ctx, profile, rec, transactions, budgets)
	pruneToActive(output, profile.DashboardConfig.ActiveWidgets)

	result := &models.DashboardResult{
		Output:      output,
		Source:      source,
		Persona:     profile.Persona,
		GeneratedAt: s.now().UTC(),
		RequestSeq:  seq,
	}

	if !s.holder.publish(profile.ID, result) {
		s.logger.Debug().
			Str("profile_id", profile.ID).
			Uint64("seq", seq).
			Msg("Discarding stale generation result")
	}

	s.logger.Info().
		Str("profile_id", profile.ID).
		Str("persona", string(profile.Persona)).
		Str("source", string(source)).
		Uint64("seq", seq).
		Msg("Dashboard generation complete")

	return result, nil
}

// Current returns the latest published dashboard for a profile, or a
// pending snapshot when nothing has been produced yet.
func (s *Service) Current(profileID string) interfaces.DashboardSnapshot {
	return s.holder.snapshot(profileID)
}

// Invalidate drops the cached dashboard, returning the profile to the
// pending state until the next generation completes.
func (s *Service) Invalidate(profileID string) {
	s.holder.drop(profileID)
}

// loadLedger reads the profile's financial records. Read failures degrade
// to empty slices so generation always proceeds.
func (s *Service) loadLedger(ctx context.Context, profileID string) ([]models.Transaction, []models.Budget) {
	transactions, err := s.ledger.GetTransactions(ctx, profileID)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("Failed to load transactions, using empty set")
		transactions = nil
	}
	budgets, err := s.ledger.GetBudgets(ctx, profileID)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("Failed to load budgets, using empty set")
		budgets = nil
	}
	return transactions, budgets
}

// produce tries the generator path once, then falls back. There is no
// retry: one failed attempt of any kind resolves through the synthesizer.
func (s *Service) produce(ctx context.Context, profile *models.UserProfile, rec policy.Record, transactions []models.Transaction, budgets []models.Budget) (*models.DashboardOutput, models.GenerationSource) {
	if s.generator == nil {
		return Synthesize(profile, transactions, budgets), models.SourceFallback
	}

	instructions, err := BuildInstructions(profile, rec, transactions, budgets)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("Instruction build failed, using fallback")
		return Synthesize(profile, transactions, budgets), models.SourceFallback
	}

	raw, err := s.generator.GenerateDashboard(ctx, instructions, schema.Descriptor(), s.temperature)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("Generator request failed, using fallback")
		return Synthesize(profile, transactions, budgets), models.SourceFallback
	}

	output, err := schema.Validate(schema.RepairEnvelope(raw))
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("Generator output failed validation, using fallback")
		return Synthesize(profile, transactions, budgets), models.SourceFallback
	}

	return output, models.SourceGenerator
}

// pruneToActive clears output slots that are not in the profile's active
// widget set. A well-behaved generator never populates them, but the
// output is untrusted until proven otherwise.
func pruneToActive(output *models.DashboardOutput, activeWidgets []models.WidgetType) {
	active := make(map[models.WidgetType]bool, len(activeWidgets))
	for _, w := range activeWidgets {
		active[w] = true
	}
	if !active[models.WidgetSummary] {
		output.Summary = nil
	}
	if !active[models.WidgetTransactions] {
		output.Transactions = nil
	}
	if !active[models.WidgetChart] {
		output.Chart = nil
	}
	if !active[models.WidgetBudget] {
		output.Budget = nil
	}
	if !active[models.WidgetAlerts] {
		output.Alerts = nil
	}
}
