package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/finaflow/finaflow/internal/models"
)

// fallbackTransactionLimit caps the transaction slot in synthesized output.
const fallbackTransactionLimit = 5

// Synthesize deterministically derives a DashboardOutput from the raw
// financial records, populating exactly the profile's active widgets. It has
// no external dependency and no failure mode: an empty or malformed ledger
// degrades to empty-but-well-typed payloads.
func Synthesize(profile *models.UserProfile, transactions []models.Transaction, budgets []models.Budget) *models.DashboardOutput {
	out := &models.DashboardOutput{}

	for _, w := range profile.DashboardConfig.ActiveWidgets {
		switch w {
		case models.WidgetSummary:
			out.Summary = synthesizeSummary(transactions, budgets)
		case models.WidgetTransactions:
			out.Transactions = synthesizeTransactions(transactions)
		case models.WidgetChart:
			out.Chart = synthesizeChart(transactions)
		case models.WidgetBudget:
			out.Budget = synthesizeBudget(budgets)
		case models.WidgetAlerts:
			out.Alerts = synthesizeAlerts(budgets)
		}
	}

	return out
}

// totalSpend sums the absolute value of all expense transactions.
func totalSpend(transactions []models.Transaction) float64 {
	total := 0.0
	for i := range transactions {
		if transactions[i].Amount < 0 {
			total += -transactions[i].Amount
		}
	}
	return total
}

func synthesizeSummary(transactions []models.Transaction, budgets []models.Budget) *models.ExpenseSummary {
	spend := totalSpend(transactions)

	sentiment := models.SentimentHealthy
	title := "Spending on track"
	message := "Your spending is within every budget."

	var overBudget []models.Category
	nearLimit := false
	for i := range budgets {
		b := &budgets[i]
		if b.Spent > b.Limit {
			overBudget = append(overBudget, b.Category)
		} else if b.Limit > 0 && b.Spent/b.Limit >= 0.8 {
			nearLimit = true
		}
	}

	if len(overBudget) > 0 {
		names := make([]string, len(overBudget))
		for i, c := range overBudget {
			names[i] = string(c)
		}
		sentiment = models.SentimentDanger
		title = "Budget exceeded"
		message = fmt.Sprintf("Spending exceeds the budget in: %s.", strings.Join(names, ", "))
	} else if nearLimit {
		sentiment = models.SentimentWarning
		title = "Approaching a limit"
		message = "At least one budget is above 80% of its limit."
	}

	return &models.ExpenseSummary{
		Sentiment:   sentiment,
		Title:       title,
		Message:     message,
		TotalAmount: &spend,
	}
}

func synthesizeTransactions(transactions []models.Transaction) *models.TransactionList {
	limit := fallbackTransactionLimit
	if len(transactions) < limit {
		limit = len(transactions)
	}
	list := make([]models.Transaction, limit)
	copy(list, transactions[:limit])
	return &models.TransactionList{Transactions: list}
}

func synthesizeChart(transactions []models.Transaction) *models.PieChart {
	byCategory := map[string]float64{}
	for i := range transactions {
		t := &transactions[i]
		if t.Amount >= 0 {
			continue
		}
		byCategory[string(t.Category)] += -t.Amount
	}

	slices := make([]models.PieSlice, 0, len(byCategory))
	for name, value := range byCategory {
		slices = append(slices, models.PieSlice{Name: name, Value: value})
	}
	// Deterministic order: largest first, name as tiebreaker
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Name < slices[j].Name
	})

	if slices == nil {
		slices = []models.PieSlice{}
	}
	return &models.PieChart{Title: "Spending by Category", Data: slices}
}

func synthesizeBudget(budgets []models.Budget) *models.BudgetProgress {
	entries := make([]models.BudgetEntry, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		pct := 0
		if b.Limit > 0 {
			pct = int(math.Round(b.Spent / b.Limit * 100))
		}
		entries = append(entries, models.BudgetEntry{
			Category:   b.Category,
			Spent:      b.Spent,
			Limit:      b.Limit,
			Percentage: pct,
		})
	}
	return &models.BudgetProgress{Budgets: entries}
}

func synthesizeAlerts(budgets []models.Budget) *models.Alerts {
	alerts := []models.Alert{}
	for i := range budgets {
		b := &budgets[i]
		overage := b.Overage()
		if overage <= 0 {
			continue
		}
		category := strings.ToLower(string(b.Category))
		alerts = append(alerts, models.Alert{
			ID:       fmt.Sprintf("overage-%s", category),
			Severity: models.SeverityDanger,
			Emoji:    "⚠️",
			Title:    fmt.Sprintf("%s budget exceeded", b.Category),
			Message:  fmt.Sprintf("Spending in %s is %.2f over the %.2f limit.", b.Category, overage, b.Limit),
		})
	}
	for i := range budgets {
		b := &budgets[i]
		if b.Spent > b.Limit || b.Limit <= 0 {
			continue
		}
		if b.Spent/b.Limit >= 0.8 {
			category := strings.ToLower(string(b.Category))
			alerts = append(alerts, models.Alert{
				ID:       fmt.Sprintf("nearlimit-%s", category),
				Severity: models.SeverityWarning,
				Emoji:    "💡",
				Title:    fmt.Sprintf("%s budget almost used", b.Category),
				Message:  fmt.Sprintf("Spending in %s is at %.0f%% of its limit.", b.Category, b.Spent/b.Limit*100),
			})
		}
	}
	return &models.Alerts{Alerts: alerts}
}
