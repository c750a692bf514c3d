package domain

// Category groups transactions of one type under a user-chosen name.
type Category struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	TypeID int    `json:"type_id"`
	Name   string `json:"name"`
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	TypeID int    `json:"type_id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,max=100"`
}

// CategoryNames maps category IDs to their names.
func CategoryNames(categories []Category) map[int]string {
	m := make(map[int]string, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Name
	}
	return m
}
