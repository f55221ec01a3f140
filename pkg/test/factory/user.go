package factory

import (
	"fmt"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"

	"userdir/internal/core/domain"
)

// NewUser builds a T populated with random data. When T has the user record
// fields, they are filled with values that pass the form rules unless
// overridden by customData.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	data := map[string]any{
		"FullName": "Jane Doe",
		"Email":    fmt.Sprintf("jane.%s@example.com", uuid.NewString()[:8]),
		"Age":      domain.NewAge(30),
		"Gender":   "Female",
		"Address":  "221B Baker Street, London",
	}

	for _, custom := range customData {
		for key, value := range custom {
			data[key] = value
		}
	}

	return instance.Build(data)
}
