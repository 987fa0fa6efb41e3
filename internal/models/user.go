package models

import "fmt"

// Persona is the closed-enum user archetype that drives all downstream
// formatting and widget-suppression decisions.
type Persona string

// Persona constants
const (
	PersonaRelaxed Persona = "relaxed"
	PersonaAuditor Persona = "auditor"
	PersonaSpender Persona = "spender"
)

// Personas lists all valid personas.
func Personas() []Persona {
	return []Persona{PersonaRelaxed, PersonaAuditor, PersonaSpender}
}

// Valid reports whether the persona is one of the known values.
func (p Persona) Valid() bool {
	return p == PersonaRelaxed || p == PersonaAuditor || p == PersonaSpender
}

// WidgetType names one section of dashboard output.
type WidgetType string

// Widget type constants
const (
	WidgetSummary      WidgetType = "summary"
	WidgetTransactions WidgetType = "transactions"
	WidgetChart        WidgetType = "chart"
	WidgetBudget       WidgetType = "budget"
	WidgetAlerts       WidgetType = "alerts"
)

// WidgetTypes lists all valid widget types in canonical order.
func WidgetTypes() []WidgetType {
	return []WidgetType{WidgetSummary, WidgetTransactions, WidgetChart, WidgetBudget, WidgetAlerts}
}

// Valid reports whether the widget type is one of the known values.
func (w WidgetType) Valid() bool {
	switch w {
	case WidgetSummary, WidgetTransactions, WidgetChart, WidgetBudget, WidgetAlerts:
		return true
	}
	return false
}

// Layout is the dashboard arrangement derived from the persona.
type Layout string

// Layout constants
const (
	LayoutGrid2 Layout = "grid-2"
	LayoutGrid3 Layout = "grid-3"
	LayoutList  Layout = "list"
)

// Valid reports whether the layout is one of the known values.
func (l Layout) Valid() bool {
	return l == LayoutGrid2 || l == LayoutGrid3 || l == LayoutList
}

// DashboardConfig is derived from the persona via the policy table.
type DashboardConfig struct {
	ActiveWidgets []WidgetType `json:"active_widgets"`
	Layout        Layout       `json:"layout"`
}

// HasWidget reports whether the widget type is in the active set.
func (c *DashboardConfig) HasWidget(w WidgetType) bool {
	for _, active := range c.ActiveWidgets {
		if active == w {
			return true
		}
	}
	return false
}

// UserProfile is the persona-bearing profile the orchestrator reads.
type UserProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Persona         Persona         `json:"persona"`
	DashboardConfig DashboardConfig `json:"dashboard_config"`
}

// Validate checks the profile's closed-enum fields.
func (p *UserProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if !p.Persona.Valid() {
		return fmt.Errorf("unknown persona '%s'", p.Persona)
	}
	for _, w := range p.DashboardConfig.ActiveWidgets {
		if !w.Valid() {
			return fmt.Errorf("unknown widget type '%s'", w)
		}
	}
	return nil
}

// User represents an account stored in finaflow-server.
type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	ProfileID    string `json:"profile_id,omitempty"`
}
