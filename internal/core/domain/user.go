package domain

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

var Genders = []Gender{Male, Female, Other}

// User is one row of the users table. Only ID is guaranteed by the service;
// every other field is stored exactly as the client sent it.
type User struct {
	ID       string
	FullName string
	Email    string
	Age      Age
	Gender   string
	Address  string
}

func (u *User) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"fullName": u.FullName,
		"email":    u.Email,
		"age":      u.Age,
		"gender":   u.Gender,
		"address":  u.Address,
	}
}
