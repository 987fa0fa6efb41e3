// Package policy maps personas to widget, layout, and formatting rules.
//
// The table is resolved once at orchestrator construction and injected, so
// tests can substitute alternate tables. It is a total function over the
// closed persona enum: an unknown persona is a configuration error, never a
// silent default.
package policy

import (
	"fmt"

	"github.com/finaflow/finaflow/internal/models"
)

// ErrUnknownPersona marks a persona value outside the closed enum or a table
// missing an entry for it. It indicates a programming/deployment defect, not
// transient unavailability, and is never absorbed by the fallback path.
type ErrUnknownPersona struct {
	Persona models.Persona
}

func (e *ErrUnknownPersona) Error() string {
	return fmt.Sprintf("no policy for persona '%s'", e.Persona)
}

// FormatRules carries per-persona tone and formatting constraints.
type FormatRules struct {
	// RoundingPrecision is the number of decimal places shown to the user.
	RoundingPrecision int
	// SuppressWidgets lists widget types the persona must never display,
	// even when the generator populated them.
	SuppressWidgets []models.WidgetType
	// ToneDescriptor guides the generator's language register.
	ToneDescriptor string
}

// Suppresses reports whether the widget is in the suppression set.
func (r FormatRules) Suppresses(w models.WidgetType) bool {
	for _, s := range r.SuppressWidgets {
		if s == w {
			return true
		}
	}
	return false
}

// Record is the policy for one persona.
type Record struct {
	DefaultWidgets []models.WidgetType
	DefaultLayout  models.Layout
	FormatRules    FormatRules
}

// Table maps each persona to its policy record.
type Table struct {
	records map[models.Persona]Record
}

// NewTable builds a table from explicit records. Used by tests and by
// deployments that override the canonical policy.
func NewTable(records map[models.Persona]Record) *Table {
	copied := make(map[models.Persona]Record, len(records))
	for p, r := range records {
		copied[p] = r
	}
	return &Table{records: copied}
}

// Default returns the canonical policy table.
//
// relaxed hides the transaction grid and alerts entirely; auditor sees
// everything at full precision; spender is goal-driven and skips the
// retrospective chart and raw transaction list.
func Default() *Table {
	return NewTable(map[models.Persona]Record{
		models.PersonaRelaxed: {
			DefaultWidgets: []models.WidgetType{models.WidgetSummary, models.WidgetChart, models.WidgetBudget},
			DefaultLayout:  models.LayoutGrid2,
			FormatRules: FormatRules{
				RoundingPrecision: 0,
				SuppressWidgets:   []models.WidgetType{models.WidgetTransactions, models.WidgetAlerts},
				ToneDescriptor:    "empathetic, reassuring, qualitative",
			},
		},
		models.PersonaAuditor: {
			DefaultWidgets: []models.WidgetType{models.WidgetTransactions, models.WidgetBudget, models.WidgetChart, models.WidgetAlerts, models.WidgetSummary},
			DefaultLayout:  models.LayoutGrid3,
			FormatRules: FormatRules{
				RoundingPrecision: 2,
				SuppressWidgets:   nil,
				ToneDescriptor:    "technical, exact, no embellishment",
			},
		},
		models.PersonaSpender: {
			DefaultWidgets: []models.WidgetType{models.WidgetBudget, models.WidgetSummary, models.WidgetAlerts},
			DefaultLayout:  models.LayoutList,
			FormatRules: FormatRules{
				RoundingPrecision: 0,
				SuppressWidgets:   []models.WidgetType{models.WidgetTransactions, models.WidgetChart},
				ToneDescriptor:    "motivational, goal-oriented, action-driven",
			},
		},
	})
}

// ForPersona returns the record for a persona, or ErrUnknownPersona when the
// table has no entry.
func (t *Table) ForPersona(p models.Persona) (Record, error) {
	rec, ok := t.records[p]
	if !ok {
		return Record{}, &ErrUnknownPersona{Persona: p}
	}
	return rec, nil
}

// DashboardConfig derives the persona's dashboard configuration from the
// table.
func (t *Table) DashboardConfig(p models.Persona) (models.DashboardConfig, error) {
	rec, err := t.ForPersona(p)
	if err != nil {
		return models.DashboardConfig{}, err
	}
	widgets := make([]models.WidgetType, len(rec.DefaultWidgets))
	copy(widgets, rec.DefaultWidgets)
	return models.DashboardConfig{
		ActiveWidgets: widgets,
		Layout:        rec.DefaultLayout,
	}, nil
}
