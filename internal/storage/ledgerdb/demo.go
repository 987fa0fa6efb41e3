package ledgerdb

import (
	"time"

	"github.com/finaflow/finaflow/internal/models"
)

// daysAgo returns an ISO date offset days before today.
func daysAgo(offset int) string {
	return time.Now().AddDate(0, 0, -offset).Format("2006-01-02")
}

func boolPtr(b bool) *bool { return &b }

// DemoTransactions returns the demo ledger: a salary credit, rideshare
// debits, one large leisure purchase, and recurring coffee buys. Enough
// variety to exercise every widget.
func DemoTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: "t1", Date: daysAgo(2), Merchant: "Empresa Tech S.A.", Amount: 2500, Category: models.CategoryIncome, Status: models.StatusCompleted, IsRecurring: boolPtr(true)},
		{ID: "t2", Date: daysAgo(1), Merchant: "Uber Trip", Amount: -15.50, Category: models.CategoryTransport, Status: models.StatusCompleted},
		{ID: "t3", Date: daysAgo(1), Merchant: "Uber Trip", Amount: -12.20, Category: models.CategoryTransport, Status: models.StatusCompleted},
		{ID: "t4", Date: daysAgo(2), Merchant: "Uber Trip", Amount: -28.00, Category: models.CategoryTransport, Status: models.StatusCompleted},
		{ID: "t5", Date: daysAgo(3), Merchant: "Apple Store", Amount: -1200, Category: models.CategoryLeisure, Status: models.StatusCompleted},
		{ID: "t6", Date: daysAgo(0), Merchant: "Starbucks", Amount: -5.50, Category: models.CategoryFood, Status: models.StatusPending},
		{ID: "t7", Date: daysAgo(1), Merchant: "Starbucks", Amount: -4.90, Category: models.CategoryFood, Status: models.StatusCompleted, IsRecurring: boolPtr(true)},
	}
}

// DemoBudgets returns the demo budgets: Transport at 75%, Food at 30%, and
// Leisure heavily over budget to exercise the alert path.
func DemoBudgets() []models.Budget {
	return []models.Budget{
		{Category: models.CategoryTransport, Limit: 200, Spent: 150, Currency: "USD"},
		{Category: models.CategoryFood, Limit: 400, Spent: 120, Currency: "USD"},
		{Category: models.CategoryLeisure, Limit: 300, Spent: 1250, Currency: "USD"},
	}
}
