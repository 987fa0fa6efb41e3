package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/policy"
	"github.com/finaflow/finaflow/internal/storage/ledgerdb"
)

// mockLedger is an in-memory LedgerStore for pipeline tests.
type mockLedger struct {
	transactions []models.Transaction
	budgets      []models.Budget
	txErr        error
	budgetErr    error
}

func (m *mockLedger) GetTransactions(ctx context.Context, profileID string) ([]models.Transaction, error) {
	return m.transactions, m.txErr
}

func (m *mockLedger) GetBudgets(ctx context.Context, profileID string) ([]models.Budget, error) {
	return m.budgets, m.budgetErr
}

func (m *mockLedger) PutTransactions(ctx context.Context, profileID string, transactions []models.Transaction) error {
	m.transactions = transactions
	return nil
}

func (m *mockLedger) PutBudgets(ctx context.Context, profileID string, budgets []models.Budget) error {
	m.budgets = budgets
	return nil
}

func (m *mockLedger) SeedDemo(ctx context.Context, profileID string) error { return nil }
func (m *mockLedger) Close() error                                         { return nil }

// mockGenerator returns a scripted response and counts invocations.
type mockGenerator struct {
	response json.RawMessage
	err      error
	calls    int
}

func (m *mockGenerator) GenerateDashboard(ctx context.Context, instructions string, outputSchema *genai.Schema, temperature float32) (json.RawMessage, error) {
	m.calls++
	return m.response, m.err
}

func demoLedger() *mockLedger {
	return &mockLedger{
		transactions: ledgerdb.DemoTransactions(),
		budgets:      ledgerdb.DemoBudgets(),
	}
}

func auditorProfile() *models.UserProfile {
	config, err := policy.Default().DashboardConfig(models.PersonaAuditor)
	if err != nil {
		panic(err)
	}
	return &models.UserProfile{
		ID:              "profile-auditor",
		Name:            "Ana",
		Persona:         models.PersonaAuditor,
		DashboardConfig: config,
	}
}

func relaxedProfile() *models.UserProfile {
	config, err := policy.Default().DashboardConfig(models.PersonaRelaxed)
	if err != nil {
		panic(err)
	}
	return &models.UserProfile{
		ID:              "profile-relaxed",
		Name:            "Bruno",
		Persona:         models.PersonaRelaxed,
		DashboardConfig: config,
	}
}

func generatorCandidate() json.RawMessage {
	return json.RawMessage(`{
		"summary": {"sentiment": "danger", "title": "Leisure overshoot", "message": "One large purchase dominates.", "total_amount": 1266.10},
		"transactions": {"transactions": [
			{"id": "t5", "date": "2026-08-20", "merchant": "Apple Store", "amount": -1200, "category": "Leisure", "status": "completed"}
		]},
		"chart": {"title": "Spending", "data": [{"name": "Leisure", "value": 1200}]},
		"budget": {"budgets": [{"category": "Leisure", "spent": 1250, "limit": 300, "percentage": 417}]},
		"alerts": {"alerts": [{"id": "a1", "severity": "danger", "emoji": "!", "title": "Leisure", "message": "950 over"}]}
	}`)
}

func TestGenerate_GeneratorPath(t *testing.T) {
	gen := &mockGenerator{response: generatorCandidate()}
	svc := NewService(demoLedger(), WithGenerator(gen))

	result, err := svc.Generate(context.Background(), auditorProfile())
	require.NoError(t, err)
	assert.Equal(t, models.SourceGenerator, result.Source)
	assert.Equal(t, models.PersonaAuditor, result.Persona)
	assert.Equal(t, 1, gen.calls)
	require.NotNil(t, result.Output.Summary)
	assert.Equal(t, models.SentimentDanger, result.Output.Summary.Sentiment)
	require.NotNil(t, result.Output.Budget)
	assert.Equal(t, 417, result.Output.Budget.Budgets[0].Percentage)
}

func TestGenerate_GeneratorErrorFallsBackWithoutRetry(t *testing.T) {
	gen := &mockGenerator{err: errors.New("quota exhausted")}
	svc := NewService(demoLedger(), WithGenerator(gen))

	result, err := svc.Generate(context.Background(), auditorProfile())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, result.Source)
	assert.Equal(t, 1, gen.calls, "a failed attempt must not be retried")
	require.NotNil(t, result.Output.Transactions)
	assert.NotEmpty(t, result.Output.Transactions.Transactions)
}

func TestGenerate_InvalidCandidateFallsBack(t *testing.T) {
	gen := &mockGenerator{response: json.RawMessage(`{"summary": {"sentiment": "ecstatic", "title": "x", "message": "y"}}`)}
	svc := NewService(demoLedger(), WithGenerator(gen))

	result, err := svc.Generate(context.Background(), auditorProfile())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, result.Source)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerate_ArrayWrappedSlotIsRepaired(t *testing.T) {
	candidate := json.RawMessage(`{
		"summary": [{"sentiment": "healthy", "title": "All fine", "message": "Nothing to report."}]
	}`)
	gen := &mockGenerator{response: candidate}
	svc := NewService(demoLedger(), WithGenerator(gen))

	result, err := svc.Generate(context.Background(), auditorProfile())
	require.NoError(t, err)
	assert.Equal(t, models.SourceGenerator, result.Source)
	require.NotNil(t, result.Output.Summary)
	assert.Equal(t, "All fine", result.Output.Summary.Title)
}

func TestGenerate_NilGeneratorUsesFallback(t *testing.T) {
	svc := NewService(demoLedger())

	result, err := svc.Generate(context.Background(), relaxedProfile())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, result.Source)
}

func TestGenerate_UnknownPersonaIsFatal(t *testing.T) {
	svc := NewService(demoLedger())
	profile := &models.UserProfile{ID: "p1", Name: "X", Persona: models.Persona("gambler")}

	result, err := svc.Generate(context.Background(), profile)
	require.Error(t, err)
	assert.Nil(t, result)

	var unknown *policy.ErrUnknownPersona
	assert.True(t, errors.As(err, &unknown))

	snap := svc.Current("p1")
	assert.Equal(t, interfaces.SnapshotPending, snap.Status, "a failed request must not publish")
}

func TestGenerate_PrunesInactiveSlots(t *testing.T) {
	// The candidate populates every slot; relaxed only activates three.
	gen := &mockGenerator{response: generatorCandidate()}
	svc := NewService(demoLedger(), WithGenerator(gen))
	profile := relaxedProfile()

	result, err := svc.Generate(context.Background(), profile)
	require.NoError(t, err)
	assert.NotNil(t, result.Output.Summary)
	assert.NotNil(t, result.Output.Chart)
	assert.NotNil(t, result.Output.Budget)
	assert.Nil(t, result.Output.Transactions, "suppressed slot must be pruned")
	assert.Nil(t, result.Output.Alerts, "suppressed slot must be pruned")
}

func TestGenerate_LedgerReadFailureDegradesToEmpty(t *testing.T) {
	ledger := &mockLedger{txErr: errors.New("disk gone"), budgetErr: errors.New("disk gone")}
	svc := NewService(ledger)

	result, err := svc.Generate(context.Background(), auditorProfile())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, result.Source)
	require.NotNil(t, result.Output.Transactions)
	assert.Empty(t, result.Output.Transactions.Transactions)
	require.NotNil(t, result.Output.Budget)
	assert.Empty(t, result.Output.Budget.Budgets)
}

func TestCurrent_PendingThenReady(t *testing.T) {
	svc := NewService(demoLedger())
	profile := auditorProfile()

	snap := svc.Current(profile.ID)
	assert.Equal(t, interfaces.SnapshotPending, snap.Status)
	assert.NotEmpty(t, snap.Placeholder)
	assert.Nil(t, snap.Result)

	_, err := svc.Generate(context.Background(), profile)
	require.NoError(t, err)

	snap = svc.Current(profile.ID)
	assert.Equal(t, interfaces.SnapshotReady, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Empty(t, snap.Placeholder)
}

func TestCurrent_EachGenerationReplacesThePrevious(t *testing.T) {
	svc := NewService(demoLedger())
	profile := auditorProfile()

	first, err := svc.Generate(context.Background(), profile)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), profile)
	require.NoError(t, err)
	assert.Greater(t, second.RequestSeq, first.RequestSeq)

	snap := svc.Current(profile.ID)
	require.NotNil(t, snap.Result)
	assert.Equal(t, second.RequestSeq, snap.Result.RequestSeq)
}

func TestInvalidate_ReturnsToPending(t *testing.T) {
	svc := NewService(demoLedger())
	profile := auditorProfile()

	_, err := svc.Generate(context.Background(), profile)
	require.NoError(t, err)
	svc.Invalidate(profile.ID)

	snap := svc.Current(profile.ID)
	assert.Equal(t, interfaces.SnapshotPending, snap.Status)
}

func TestHolder_StaleResultIsDiscarded(t *testing.T) {
	h := newHolder()
	older := h.nextToken()
	newer := h.nextToken()

	require.True(t, h.publish("p1", &models.DashboardResult{RequestSeq: newer}))
	assert.False(t, h.publish("p1", &models.DashboardResult{RequestSeq: older}),
		"a slow older generation must not overwrite a newer result")

	snap := h.snapshot("p1")
	require.NotNil(t, snap.Result)
	assert.Equal(t, newer, snap.Result.RequestSeq)
}

func TestHolder_SnapshotsAreIsolatedPerProfile(t *testing.T) {
	h := newHolder()
	seq := h.nextToken()
	require.True(t, h.publish("p1", &models.DashboardResult{RequestSeq: seq}))

	assert.Equal(t, interfaces.SnapshotReady, h.snapshot("p1").Status)
	assert.Equal(t, interfaces.SnapshotPending, h.snapshot("p2").Status)
}

func TestGenerate_ConcurrentRequestsSettleOnOneResult(t *testing.T) {
	svc := NewService(demoLedger())
	profile := auditorProfile()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := svc.Generate(context.Background(), profile)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	snap := svc.Current(profile.ID)
	require.Equal(t, interfaces.SnapshotReady, snap.Status)
	require.NotNil(t, snap.Result)

	// Whatever interleaving occurred, the published result is complete and
	// no later Generate call can be shadowed by an earlier sequence.
	for _, w := range profile.DashboardConfig.ActiveWidgets {
		assert.NotNil(t, snap.Result.Output.Slot(w), fmt.Sprintf("slot %s missing", w))
	}
}
