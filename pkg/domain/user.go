package domain

// User is a registered account as returned by the backend.
type User struct {
	ID     int    `json:"id"`
	Email  string `json:"email"`
	RoleID int    `json:"role_id"`
}

// Credentials is the email/password pair used to register and log in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserUpdate is the payload for PUT /users/{id}.
type UserUpdate struct {
	Email    string `json:"email" validate:"required,email"`
	RoleID   int    `json:"role_id" validate:"required,gt=0"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserFilters narrows GET /users.
type UserFilters struct {
	RoleIDs []int
	Emails  []string
}
