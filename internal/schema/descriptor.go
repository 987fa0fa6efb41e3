// Package schema defines the dashboard output contract: the bit-exact
// generation schema handed to the external generator, and the validator that
// accepts or rejects candidate outputs against it.
package schema

import (
	"google.golang.org/genai"

	"github.com/finaflow/finaflow/internal/models"
)

// Field names of the five top-level widget slots. These, together with the
// enum value sets below, are the wire contract with the generator. Changing
// any of them breaks schema-constrained generation.
const (
	FieldSummary      = "summary"
	FieldTransactions = "transactions"
	FieldChart        = "chart"
	FieldBudget       = "budget"
	FieldAlerts       = "alerts"
)

func categoryEnum() []string {
	cats := models.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

var (
	sentimentEnum = []string{"healthy", "warning", "danger"}
	statusEnum    = []string{"pending", "completed"}
	severityEnum  = []string{"danger", "warning", "info"}
)

// Descriptor builds the generation schema for a DashboardOutput. Every slot
// is optional at the top level; inside a present slot every field is
// required unless noted.
func Descriptor() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: "Persona-adapted dashboard content. Populate every widget; the server filters display.",
		Properties: map[string]*genai.Schema{
			FieldSummary:      summarySchema(),
			FieldTransactions: transactionListSchema(),
			FieldChart:        pieChartSchema(),
			FieldBudget:       budgetProgressSchema(),
			FieldAlerts:       alertsSchema(),
		},
	}
}

func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sentiment": {
				Type:        genai.TypeString,
				Enum:        sentimentEnum,
				Description: "Overall financial state. healthy=green, warning=amber, danger=red.",
			},
			"title":   {Type: genai.TypeString, Description: "Short, direct headline."},
			"message": {Type: genai.TypeString, Description: "One or two sentences, tone adapted to the persona."},
			"total_amount": {
				Type:        genai.TypeNumber,
				Description: "Optional total associated with the summary (e.g. total spent).",
			},
		},
		Required: []string{"sentiment", "title", "message"},
	}
}

func transactionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":       {Type: genai.TypeString},
			"date":     {Type: genai.TypeString},
			"merchant": {Type: genai.TypeString},
			"amount":   {Type: genai.TypeNumber},
			"category": {Type: genai.TypeString, Enum: categoryEnum()},
			"status":   {Type: genai.TypeString, Enum: statusEnum},
		},
		Required: []string{"id", "date", "merchant", "amount", "category", "status"},
	}
}

func transactionListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transactions": {
				Type:        genai.TypeArray,
				Items:       transactionSchema(),
				Description: "Filtered transactions to display. Use only records from the supplied context.",
			},
		},
		Required: []string{"transactions"},
	}
}

func pieChartSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"data": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  {Type: genai.TypeString},
						"value": {Type: genai.TypeNumber},
					},
					Required: []string{"name", "value"},
				},
				Description: "Chart segments. Negative amounts are presented as positive values.",
			},
		},
		Required: []string{"data"},
	}
}

func budgetProgressSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"budgets": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": {Type: genai.TypeString, Enum: categoryEnum()},
						"spent":    {Type: genai.TypeNumber},
						"limit":    {Type: genai.TypeNumber},
						"percentage": {
							Type:        genai.TypeInteger,
							Description: "round(spent/limit*100); values above 100 are valid and must not be clamped.",
						},
					},
					Required: []string{"category", "spent", "limit", "percentage"},
				},
			},
		},
		Required: []string{"budgets"},
	}
}

func alertsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"alerts": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":       {Type: genai.TypeString},
						"severity": {Type: genai.TypeString, Enum: severityEnum},
						"emoji":    {Type: genai.TypeString},
						"title":    {Type: genai.TypeString},
						"message":  {Type: genai.TypeString},
					},
					Required: []string{"id", "severity", "emoji", "title", "message"},
				},
			},
		},
		Required: []string{"alerts"},
	}
}
