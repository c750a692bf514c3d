package domain

// TypeName classifies money movement.
type TypeName string

const (
	TypeIncome  TypeName = "income"
	TypeExpense TypeName = "expense"
)

// Type is a transaction type defined by the backend.
type Type struct {
	ID   int      `json:"id"`
	Name TypeName `json:"name"`
}

// TypeNames maps type IDs to their names.
func TypeNames(types []Type) map[int]TypeName {
	m := make(map[int]TypeName, len(types))
	for _, t := range types {
		m[t.ID] = t.Name
	}
	return m
}
