package domain

// Transaction is a single income or expense entry.
type Transaction struct {
	ID         int     `json:"id"`
	UserID     int     `json:"user_id"`
	TypeID     int     `json:"type_id"`
	CategoryID *int    `json:"category_id"`
	Date       Date    `json:"date"`
	Value      float64 `json:"value"`
	Comment    *string `json:"comment"`
}

// CommentText returns the comment or "".
func (t Transaction) CommentText() string {
	if t.Comment == nil {
		return ""
	}
	return *t.Comment
}

// TransactionInput is the payload for creating or updating a transaction.
type TransactionInput struct {
	TypeID     int     `json:"type_id" validate:"required,gt=0"`
	CategoryID *int    `json:"category_id" validate:"omitempty,gt=0"`
	Date       Date    `json:"date" validate:"required"`
	Value      float64 `json:"value" validate:"gt=0"`
	Comment    *string `json:"comment" validate:"omitempty,max=500"`
}

// Summary totals a set of transactions by direction.
type Summary struct {
	Income   float64
	Expenses float64
	Balance  float64
}

// Summarize totals transactions using types to tell income from expenses.
// Transactions of unknown types are skipped.
func Summarize(transactions []Transaction, types []Type) Summary {
	names := TypeNames(types)
	var s Summary
	for _, t := range transactions {
		switch names[t.TypeID] {
		case TypeIncome:
			s.Income += t.Value
		case TypeExpense:
			s.Expenses += t.Value
		}
	}
	s.Balance = s.Income - s.Expenses
	return s
}
