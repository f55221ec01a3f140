package view

import (
	"userdir/internal/core/domain"
)

var formValidator = NewFormValidator()

// Update applies msg to s and returns the next state together with the
// effects the runtime must perform. It has no side effects of its own.
func Update(s State, msg Msg) (State, []Effect) {
	next := s.clone()

	switch m := msg.(type) {
	case Init:
		next.Loading = true
		return next, []Effect{FetchUsers{}}

	case UsersLoaded:
		next.Loading = false
		next.Users = append([]domain.User{}, m.Users...)
		return next, nil

	case UsersLoadFailed:
		next.Loading = false
		return next, []Effect{LogError{Message: MsgLoadFailedLog, Err: m.Err}}

	case SetField:
		setField(&next.Form, m.Field, m.Value)
		return next, nil

	case Submit:
		if m.Form != nil {
			next.Form = *m.Form
		}
		return submit(next)

	case UserSaved:
		next.Saving = false
		if m.Updated {
			for i := range next.Users {
				if next.Users[i].ID == m.User.ID {
					next.Users[i] = m.User
				}
			}
		} else {
			next.Users = append(next.Users, m.User)
		}

		next.Form = Form{}
		next.Errors = map[Field]string{}
		next.EditingID = ""

		message := MsgUserAdded
		if m.Updated {
			message = MsgUserUpdated
		}

		return notify(next, message, KindSuccess)

	case SaveFailed:
		next.Saving = false
		return notify(next, MsgSaveFailed, KindError)

	case Edit:
		for _, u := range next.Users {
			if u.ID == m.ID {
				next.Form = formFromUser(u)
				next.Errors = map[Field]string{}
				next.EditingID = u.ID
				break
			}
		}
		return next, nil

	case CancelEdit:
		next.Form = Form{}
		next.Errors = map[Field]string{}
		next.EditingID = ""
		return next, nil

	case Delete:
		next.Deleting++
		return next, []Effect{DeleteUser{ID: m.ID}}

	case UserDeleted:
		next.Deleting = max(next.Deleting-1, 0)
		kept := make([]domain.User, 0, len(next.Users))
		for _, u := range next.Users {
			if u.ID != m.ID {
				kept = append(kept, u)
			}
		}
		next.Users = kept
		return notify(next, MsgUserDeleted, KindSuccess)

	case DeleteFailed:
		next.Deleting = max(next.Deleting-1, 0)
		return notify(next, MsgDeleteFailed, KindError)

	case DismissNotification:
		if next.Notification != nil && next.Notification.ID == m.ID {
			next.Notification = nil
		}
		return next, nil
	}

	return s, nil
}

func submit(s State) (State, []Effect) {
	if s.Saving {
		return s, nil
	}

	s.Errors = formValidator.Validate(s.Form)
	if len(s.Errors) > 0 {
		return s, nil
	}

	age, _ := ParseAge(s.Form.Age)
	user := domain.User{
		FullName: s.Form.FullName,
		Email:    s.Form.Email,
		Age:      domain.NewAge(age),
		Gender:   s.Form.Gender,
		Address:  s.Form.Address,
	}

	s.Saving = true

	if s.Editing() {
		user.ID = s.EditingID
		return s, []Effect{UpdateUser{User: user}}
	}

	return s, []Effect{CreateUser{User: user}}
}

// notify replaces the current notification and moves the dismissal timer to the new one.
func notify(s State, message string, kind NotificationKind) (State, []Effect) {
	var effects []Effect

	if s.Notification != nil {
		effects = append(effects, CancelDismiss{ID: s.Notification.ID})
	}

	s.lastNotificationID++
	s.Notification = &Notification{
		ID:      s.lastNotificationID,
		Message: message,
		Kind:    kind,
	}

	return s, append(effects, ScheduleDismiss{ID: s.Notification.ID, After: NotificationTTL})
}

func setField(form *Form, field Field, value string) {
	switch field {
	case FieldFullName:
		form.FullName = value
	case FieldEmail:
		form.Email = value
	case FieldAge:
		form.Age = value
	case FieldGender:
		form.Gender = value
	case FieldAddress:
		form.Address = value
	}
}

func formFromUser(u domain.User) Form {
	return Form{
		FullName: u.FullName,
		Email:    u.Email,
		Age:      u.Age.String(),
		Gender:   u.Gender,
		Address:  u.Address,
	}
}
