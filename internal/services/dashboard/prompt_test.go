package dashboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/policy"
	"github.com/finaflow/finaflow/internal/storage/ledgerdb"
)

func TestBuildInstructions_Deterministic(t *testing.T) {
	profile := auditorProfile()
	rec, err := policy.Default().ForPersona(profile.Persona)
	require.NoError(t, err)
	transactions := ledgerdb.DemoTransactions()
	budgets := ledgerdb.DemoBudgets()

	first, err := BuildInstructions(profile, rec, transactions, budgets)
	require.NoError(t, err)
	second, err := BuildInstructions(profile, rec, transactions, budgets)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildInstructions_EmbedsAllRecordsVerbatim(t *testing.T) {
	profile := auditorProfile()
	rec, err := policy.Default().ForPersona(profile.Persona)
	require.NoError(t, err)
	transactions := ledgerdb.DemoTransactions()
	budgets := ledgerdb.DemoBudgets()

	instructions, err := BuildInstructions(profile, rec, transactions, budgets)
	require.NoError(t, err)

	for _, tx := range transactions {
		assert.Contains(t, instructions, tx.ID)
		assert.Contains(t, instructions, tx.Merchant)
	}
	for _, b := range budgets {
		assert.Contains(t, instructions, string(b.Category))
	}
	// No summarization: the record counts are stated.
	assert.Contains(t, instructions, "all 7 records")
	assert.Contains(t, instructions, "all 3 records")
}

func TestBuildInstructions_CarriesPersonaPolicy(t *testing.T) {
	for _, persona := range models.Personas() {
		rec, err := policy.Default().ForPersona(persona)
		require.NoError(t, err)
		config, err := policy.Default().DashboardConfig(persona)
		require.NoError(t, err)
		profile := &models.UserProfile{
			ID:              "p-" + string(persona),
			Name:            "Test",
			Persona:         persona,
			DashboardConfig: config,
		}

		instructions, err := BuildInstructions(profile, rec, nil, nil)
		require.NoError(t, err)

		assert.Contains(t, instructions, strings.ToUpper(string(persona)))
		assert.Contains(t, instructions, rec.FormatRules.ToneDescriptor)
		for _, w := range config.ActiveWidgets {
			assert.Contains(t, instructions, string(w))
		}
		for _, w := range rec.FormatRules.SuppressWidgets {
			assert.Contains(t, instructions, string(w))
		}
	}
}

func TestBuildInstructions_DistinctAcrossPersonas(t *testing.T) {
	transactions := ledgerdb.DemoTransactions()
	budgets := ledgerdb.DemoBudgets()
	seen := map[string]models.Persona{}

	for _, persona := range models.Personas() {
		rec, err := policy.Default().ForPersona(persona)
		require.NoError(t, err)
		config, err := policy.Default().DashboardConfig(persona)
		require.NoError(t, err)
		profile := &models.UserProfile{ID: "p1", Name: "Same", Persona: persona, DashboardConfig: config}

		instructions, err := BuildInstructions(profile, rec, transactions, budgets)
		require.NoError(t, err)
		if prev, dup := seen[instructions]; dup {
			t.Fatalf("personas %s and %s produced identical instructions", prev, persona)
		}
		seen[instructions] = persona
	}
}
