package view

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

const MinimumAge = 18

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var fieldMessages = map[Field]string{
	FieldFullName: "Name must be at least 3 characters long",
	FieldEmail:    "Please enter a valid email address",
	FieldAge:      "Age must be 18 or older",
	FieldGender:   "Please select a gender",
	FieldAddress:  "Address must be at least 10 characters long",
}

// FormValidator checks a Form with every rule and reports all failures at once.
type FormValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewFormValidator() *FormValidator {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})

	v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		age, err := ParseAge(fl.Field().String())
		return err == nil && age >= MinimumAge
	})

	for field, message := range fieldMessages {
		trans.Add(string(field), message, true)
	}

	byField := func(ut ut.Translator, fe validator.FieldError) string {
		msg, err := ut.T(fe.Field())
		if err != nil {
			return fe.Error()
		}
		return msg
	}

	for _, tag := range []string{"min", "required", "email_shape", "adult"} {
		v.RegisterTranslation(tag, trans, func(ut.Translator) error { return nil }, byField)
	}

	return &FormValidator{validate: v, trans: trans}
}

// Validate returns one message per failing field; an empty map means the form may be sent.
func (fv *FormValidator) Validate(form Form) map[Field]string {
	errs := map[Field]string{}

	err := fv.validate.Struct(form)
	if err == nil {
		return errs
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs
	}

	for _, fe := range validationErrors {
		errs[Field(fe.Field())] = fe.Translate(fv.trans)
	}

	return errs
}

// ParseAge reads the age input as a base-10 integer.
func ParseAge(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}
