package view

import (
	"time"

	"userdir/internal/core/domain"
)

const NotificationTTL = 3 * time.Second

const (
	MsgUserAdded     = "User added successfully!"
	MsgUserUpdated   = "User updated successfully!"
	MsgUserDeleted   = "User deleted successfully!"
	MsgSaveFailed    = "Error saving user data"
	MsgDeleteFailed  = "Error deleting user"
	MsgLoadFailedLog = "Error fetching users"
)

type Field string

const (
	FieldFullName Field = "fullName"
	FieldEmail    Field = "email"
	FieldAge      Field = "age"
	FieldGender   Field = "gender"
	FieldAddress  Field = "address"
)

var Fields = []Field{FieldFullName, FieldEmail, FieldAge, FieldGender, FieldAddress}

// Form holds the raw input strings exactly as typed.
type Form struct {
	FullName string `json:"fullName" form:"fullName" validate:"min=3"`
	Email    string `json:"email" form:"email" validate:"email_shape"`
	Age      string `json:"age" form:"age" validate:"adult"`
	Gender   string `json:"gender" form:"gender" validate:"required"`
	Address  string `json:"address" form:"address" validate:"min=10"`
}

type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

type Notification struct {
	ID      int              `json:"id"`
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}

// State is everything the page shows. Update never mutates a State in place.
type State struct {
	Users        []domain.User    `json:"users"`
	Form         Form             `json:"form"`
	Errors       map[Field]string `json:"errors"`
	EditingID    string           `json:"editingId"`
	Loading      bool             `json:"loading"`
	Saving       bool             `json:"saving"`
	Deleting     int              `json:"deleting"`
	Notification *Notification    `json:"notification"`

	lastNotificationID int
}

func NewState() State {
	return State{
		Users:  []domain.User{},
		Errors: map[Field]string{},
	}
}

func (s State) Editing() bool {
	return s.EditingID != ""
}

// Pending reports whether something on the page will change without user input.
func (s State) Pending() bool {
	return s.Loading || s.Saving || s.Deleting > 0 || s.Notification != nil
}

func (s State) clone() State {
	c := s
	c.Users = append([]domain.User(nil), s.Users...)
	if c.Users == nil {
		c.Users = []domain.User{}
	}

	c.Errors = make(map[Field]string, len(s.Errors))
	for k, v := range s.Errors {
		c.Errors[k] = v
	}

	if s.Notification != nil {
		n := *s.Notification
		c.Notification = &n
	}

	return c
}

// Msg is a user action or the result of an effect.
type Msg interface{ isMsg() }

type Init struct{}

type SetField struct {
	Field Field
	Value string
}

// Submit validates and saves the form. A non-nil Form replaces the current
// inputs first, so a whole form post is applied as one step.
type Submit struct {
	Form *Form
}

type Edit struct{ ID string }

type CancelEdit struct{}

type Delete struct{ ID string }

type DismissNotification struct{ ID int }

type UsersLoaded struct{ Users []domain.User }

type UsersLoadFailed struct{ Err error }

type UserSaved struct {
	User    domain.User
	Updated bool
}

type SaveFailed struct{ Err error }

type UserDeleted struct{ ID string }

type DeleteFailed struct{ Err error }

func (Init) isMsg()                {}
func (SetField) isMsg()            {}
func (Submit) isMsg()              {}
func (Edit) isMsg()                {}
func (CancelEdit) isMsg()          {}
func (Delete) isMsg()              {}
func (DismissNotification) isMsg() {}
func (UsersLoaded) isMsg()         {}
func (UsersLoadFailed) isMsg()     {}
func (UserSaved) isMsg()           {}
func (SaveFailed) isMsg()          {}
func (UserDeleted) isMsg()         {}
func (DeleteFailed) isMsg()        {}

// Effect is a side effect requested by Update and carried out by a Program.
type Effect interface{ isEffect() }

type FetchUsers struct{}

type CreateUser struct{ User domain.User }

type UpdateUser struct{ User domain.User }

type DeleteUser struct{ ID string }

type ScheduleDismiss struct {
	ID    int
	After time.Duration
}

type CancelDismiss struct{ ID int }

type LogError struct {
	Message string
	Err     error
}

func (FetchUsers) isEffect()      {}
func (CreateUser) isEffect()      {}
func (UpdateUser) isEffect()      {}
func (DeleteUser) isEffect()      {}
func (ScheduleDismiss) isEffect() {}
func (CancelDismiss) isEffect()   {}
func (LogError) isEffect()        {}
