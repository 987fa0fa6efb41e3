// Package models defines the data contracts for FinaFlow
package models

// Category is the closed set of transaction/budget categories.
type Category string

// Category constants
const (
	CategoryHousing   Category = "Housing"
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryLeisure   Category = "Leisure"
	CategoryIncome    Category = "Income"
	CategorySavings   Category = "Savings"
	CategoryHealth    Category = "Health"
)

// Categories lists all valid categories in canonical order.
func Categories() []Category {
	return []Category{
		CategoryHousing,
		CategoryFood,
		CategoryTransport,
		CategoryLeisure,
		CategoryIncome,
		CategorySavings,
		CategoryHealth,
	}
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryHousing, CategoryFood, CategoryTransport, CategoryLeisure,
		CategoryIncome, CategorySavings, CategoryHealth:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

// Transaction status constants
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Transaction is an immutable ledger record. Amount is signed:
// negative = expense, positive = income.
type Transaction struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"` // ISO 8601 (YYYY-MM-DD)
	Merchant    string            `json:"merchant"`
	Amount      float64           `json:"amount"`
	Category    Category          `json:"category"`
	Status      TransactionStatus `json:"status"`
	IsRecurring *bool             `json:"is_recurring,omitempty"`
}

// IsExpense reports whether the transaction is a debit.
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}

// Budget is a per-category spending envelope. Spent exceeding Limit is a
// valid, meaningful state, not an error.
type Budget struct {
	Category Category `json:"category"`
	Limit    float64  `json:"limit"`
	Spent    float64  `json:"spent"`
	Currency string   `json:"currency"`
}

// Overage returns the amount spent beyond the limit, or 0 when within budget.
func (b *Budget) Overage() float64 {
	if b.Spent > b.Limit {
		return b.Spent - b.Limit
	}
	return 0
}

// UtilizationPct returns spent/limit as a percentage. The value is not
// clamped; over-budget entries exceed 100.
func (b *Budget) UtilizationPct() float64 {
	if b.Limit <= 0 {
		return 0
	}
	return b.Spent / b.Limit * 100
}
