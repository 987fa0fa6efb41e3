package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/storage/ledgerdb"
)

func TestProject_IntersectionOfPopulatedAndActive(t *testing.T) {
	svc := NewService(demoLedger())
	output := &models.DashboardOutput{
		Summary: &models.ExpenseSummary{Sentiment: models.SentimentHealthy, Title: "t", Message: "m"},
		Chart:   &models.PieChart{Data: []models.PieSlice{}},
		Alerts:  &models.Alerts{Alerts: []models.Alert{}},
	}

	widgets := svc.Project(output, []models.WidgetType{models.WidgetSummary, models.WidgetChart, models.WidgetBudget})

	require.Len(t, widgets, 2)
	assert.Equal(t, models.WidgetSummary, widgets[0].Type)
	assert.Equal(t, models.WidgetChart, widgets[1].Type)
}

func TestProject_PreservesActiveWidgetOrder(t *testing.T) {
	svc := NewService(demoLedger())
	profile := auditorProfile()
	output := Synthesize(profile, ledgerdb.DemoTransactions(), ledgerdb.DemoBudgets())

	widgets := svc.Project(output, profile.DashboardConfig.ActiveWidgets)

	require.Len(t, widgets, len(profile.DashboardConfig.ActiveWidgets))
	for i, w := range profile.DashboardConfig.ActiveWidgets {
		assert.Equal(t, w, widgets[i].Type)
	}
}

func TestProject_SuppressedSlotsNeverEmitted(t *testing.T) {
	// Even a fully populated output yields nothing for inactive widgets.
	svc := NewService(demoLedger())
	output := Synthesize(auditorProfile(), ledgerdb.DemoTransactions(), ledgerdb.DemoBudgets())
	profile := relaxedProfile()

	widgets := svc.Project(output, profile.DashboardConfig.ActiveWidgets)

	for _, pw := range widgets {
		assert.True(t, profile.DashboardConfig.HasWidget(pw.Type))
		assert.NotEqual(t, models.WidgetTransactions, pw.Type)
		assert.NotEqual(t, models.WidgetAlerts, pw.Type)
	}
}

func TestProject_EmptySkippedNotPadded(t *testing.T) {
	svc := NewService(demoLedger())

	widgets := svc.Project(&models.DashboardOutput{}, models.WidgetTypes())
	assert.Empty(t, widgets)

	widgets = svc.Project(nil, models.WidgetTypes())
	assert.Empty(t, widgets)
}
