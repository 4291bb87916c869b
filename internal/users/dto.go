package users

import "time"

// CreateRequest is the body of POST /users and POST /auth/register.
type CreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=120"`
}

// UpdateRequest is the body of PATCH /users/:id; absent fields are kept.
type UpdateRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Name     *string `json:"name" validate:"omitempty,max=120"`
}

// Response is the public user shape.
type Response struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToResponse maps a user to its public shape.
func ToResponse(u User) Response {
	return Response{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}
