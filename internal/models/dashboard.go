package models

import "time"

// Sentiment summarizes financial state for display emphasis.
type Sentiment string

// Sentiment constants
const (
	SentimentHealthy Sentiment = "healthy"
	SentimentWarning Sentiment = "warning"
	SentimentDanger  Sentiment = "danger"
)

// Valid reports whether the sentiment is one of the known values.
func (s Sentiment) Valid() bool {
	return s == SentimentHealthy || s == SentimentWarning || s == SentimentDanger
}

// AlertSeverity grades an alert entry.
type AlertSeverity string

// Alert severity constants
const (
	SeverityDanger  AlertSeverity = "danger"
	SeverityWarning AlertSeverity = "warning"
	SeverityInfo    AlertSeverity = "info"
)

// Valid reports whether the severity is one of the known values.
func (s AlertSeverity) Valid() bool {
	return s == SeverityDanger || s == SeverityWarning || s == SeverityInfo
}

// ExpenseSummary is the "summary" widget payload.
type ExpenseSummary struct {
	Sentiment   Sentiment `json:"sentiment"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	TotalAmount *float64  `json:"total_amount,omitempty"`
}

// TransactionList is the "transactions" widget payload.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

// PieSlice is one named segment of the category chart.
type PieSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PieChart is the "chart" widget payload.
type PieChart struct {
	Title string     `json:"title,omitempty"`
	Data  []PieSlice `json:"data"`
}

// BudgetEntry is one row of the budget progress widget. Percentage is
// round(spent/limit*100) and is never clamped; over-budget rows exceed 100.
type BudgetEntry struct {
	Category   Category `json:"category"`
	Spent      float64  `json:"spent"`
	Limit      float64  `json:"limit"`
	Percentage int      `json:"percentage"`
}

// BudgetProgress is the "budget" widget payload.
type BudgetProgress struct {
	Budgets []BudgetEntry `json:"budgets"`
}

// Alert is one entry of the alerts widget.
type Alert struct {
	ID       string        `json:"id"`
	Severity AlertSeverity `json:"severity"`
	Emoji    string        `json:"emoji"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
}

// Alerts is the "alerts" widget payload.
type Alerts struct {
	Alerts []Alert `json:"alerts"`
}

// DashboardOutput is the generation result: one optional slot per widget
// type. A fresh instance is constructed on every generation request and
// never mutated in place.
type DashboardOutput struct {
	Summary      *ExpenseSummary  `json:"summary,omitempty"`
	Transactions *TransactionList `json:"transactions,omitempty"`
	Chart        *PieChart        `json:"chart,omitempty"`
	Budget       *BudgetProgress  `json:"budget,omitempty"`
	Alerts       *Alerts          `json:"alerts,omitempty"`
}

// Slot returns the payload for a widget type, or nil when absent. The
// returned value is always a typed pointer or nil.
func (o *DashboardOutput) Slot(w WidgetType) interface{} {
	switch w {
	case WidgetSummary:
		if o.Summary != nil {
			return o.Summary
		}
	case WidgetTransactions:
		if o.Transactions != nil {
			return o.Transactions
		}
	case WidgetChart:
		if o.Chart != nil {
			return o.Chart
		}
	case WidgetBudget:
		if o.Budget != nil {
			return o.Budget
		}
	case WidgetAlerts:
		if o.Alerts != nil {
			return o.Alerts
		}
	}
	return nil
}

// PopulatedSlots returns the widget types with a non-nil payload, in
// canonical widget order.
func (o *DashboardOutput) PopulatedSlots() []WidgetType {
	var slots []WidgetType
	for _, w := range WidgetTypes() {
		if o.Slot(w) != nil {
			slots = append(slots, w)
		}
	}
	return slots
}

// GenerationSource records which path produced a dashboard.
type GenerationSource string

// Generation source constants
const (
	SourceGenerator GenerationSource = "generator"
	SourceFallback  GenerationSource = "fallback"
)

// DashboardResult is a produced dashboard plus its provenance.
type DashboardResult struct {
	Output      *DashboardOutput `json:"output"`
	Source      GenerationSource `json:"source"`
	Persona     Persona          `json:"persona"`
	GeneratedAt time.Time        `json:"generated_at"`
	RequestSeq  uint64           `json:"request_seq"`
}
