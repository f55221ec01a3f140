package response

import "userdir/internal/core/domain"

type UserResponse struct {
	ID       string     `json:"id"`
	FullName string     `json:"fullName"`
	Email    string     `json:"email"`
	Age      domain.Age `json:"age"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the flat body returned for every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
