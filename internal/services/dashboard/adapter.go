package dashboard

import (
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
)

// Project returns the displayable widgets for an output: the intersection
// of populated slots and the active widget set, in active-widget order.
// Widgets without a payload are skipped entirely, never emitted empty.
func (s *Service) Project(output *models.DashboardOutput, activeWidgets []models.WidgetType) []interfaces.ProjectedWidget {
	widgets := []interfaces.ProjectedWidget{}
	if output == nil {
		return widgets
	}
	for _, w := range activeWidgets {
		payload := output.Slot(w)
		if payload == nil {
			continue
		}
		widgets = append(widgets, interfaces.ProjectedWidget{
			Type:    w,
			Payload: payload,
		})
	}
	return widgets
}
