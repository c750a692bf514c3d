package domain

// Goal is a savings or spending target over a date window.
type Goal struct {
	ID          int     `json:"id"`
	UserID      int     `json:"user_id"`
	TypeID      int     `json:"type_id"`
	CategoryID  *int    `json:"category_id"`
	Name        string  `json:"name"`
	StartDate   Date    `json:"start_date"`
	EndDate     Date    `json:"end_date"`
	TargetValue float64 `json:"target_value"`
}

// GoalInput is the payload for creating or updating a goal.
// EndDate must be strictly after StartDate.
type GoalInput struct {
	TypeID      int     `json:"type_id" validate:"required,gt=0"`
	CategoryID  *int    `json:"category_id" validate:"omitempty,gt=0"`
	Name        string  `json:"name" validate:"required,max=100"`
	StartDate   Date    `json:"start_date" validate:"required"`
	EndDate     Date    `json:"end_date" validate:"required"`
	TargetValue float64 `json:"target_value" validate:"gt=0"`
}

// GoalProgress is how far the matching transactions have moved toward a goal.
type GoalProgress struct {
	Current float64
	Target  float64
	Percent float64
	Reached bool
}

// Matches reports whether t counts toward g: same type, same category when
// the goal has one, dated strictly inside the goal window.
func (g Goal) Matches(t Transaction) bool {
	if t.TypeID != g.TypeID {
		return false
	}
	if g.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *g.CategoryID) {
		return false
	}
	return t.Date.After(g.StartDate) && t.Date.Before(g.EndDate)
}

// Filters returns the transaction query selecting the goal window.
func (g Goal) Filters() TransactionFilters {
	start, end := g.StartDate, g.EndDate
	f := TransactionFilters{
		TypeIDs:    []int{g.TypeID},
		DateAfter:  &start,
		DateBefore: &end,
	}
	if g.CategoryID != nil {
		f.CategoryIDs = []int{*g.CategoryID}
	}
	return f
}

// Progress sums the transactions matching g.
func Progress(g Goal, transactions []Transaction) GoalProgress {
	p := GoalProgress{Target: g.TargetValue}
	for _, t := range transactions {
		if g.Matches(t) {
			p.Current += t.Value
		}
	}
	if p.Target > 0 {
		p.Percent = p.Current / p.Target * 100
	}
	p.Reached = p.Target > 0 && p.Current >= p.Target
	return p
}
