package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Age is the age field as the JSON token the client sent ("30", "\"30\"",
// "20.5"...). It is stored and echoed unchanged; the column type of the
// store decides what it accepts. The zero value means absent or null.
type Age string

func NewAge(years int) Age {
	return Age(strconv.Itoa(years))
}

// Int returns whole years when the token is an integer or a string holding one.
func (a Age) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(a.String()))
	return n, err == nil
}

// String returns the token without JSON quoting.
func (a Age) String() string {
	if strings.HasPrefix(string(a), `"`) {
		var s string
		if err := json.Unmarshal([]byte(a), &s); err == nil {
			return s
		}
	}

	return string(a)
}

func (a Age) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}

	if !json.Valid([]byte(a)) {
		return json.Marshal(string(a))
	}

	return []byte(a), nil
}

func (a *Age) UnmarshalJSON(data []byte) error {
	token := bytes.TrimSpace(data)
	if bytes.Equal(token, []byte("null")) {
		*a = ""
		return nil
	}

	*a = Age(token)
	return nil
}

// Value hands the store the decoded JSON scalar: integers as int64, other
// numbers as float64, strings unquoted, anything else as its raw text.
func (a Age) Value() (driver.Value, error) {
	s := string(a)

	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, `"`):
		return a.String(), nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	return s, nil
}

func (a *Age) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ""
	case int64:
		*a = Age(strconv.FormatInt(v, 10))
	case int:
		*a = Age(strconv.Itoa(v))
	case float64:
		*a = Age(strconv.FormatFloat(v, 'f', -1, 64))
	case []byte:
		*a = ageFromText(string(v))
	case string:
		*a = ageFromText(v)
	default:
		return fmt.Errorf("cannot scan %T into Age", src)
	}

	return nil
}

func ageFromText(text string) Age {
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return Age(text)
	}

	quoted, _ := json.Marshal(text)
	return Age(quoted)
}
