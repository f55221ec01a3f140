package request

import "userdir/internal/core/domain"

// UserRequest is the body of POST and PUT /api/users. ID is only sent by PUT.
type UserRequest struct {
	ID       string     `json:"id,omitempty"`
	FullName string     `json:"fullName"`
	Email    string     `json:"email"`
	Age      domain.Age `json:"age"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
}
