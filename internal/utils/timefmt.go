package utils

import (
	"strings"
	"time"
	"unicode"
)

// Time layouts used across the API.  Clients submit and see timestamps in
// the display layout ("February 16, 2024 12:12:12", 24-hour clock); the
// database stores them in the DB layout in UTC.  The two never mix: every
// boundary conversion goes through the helpers below.
const (
	DisplayTimeLayout = "January 2, 2006 15:04:05"
	DBTimeLayout      = "2006-01-02 15:04:05"
)

// ParseDisplayTime parses a client-supplied "Month DD, YYYY HH:mm:ss"
// string into a UTC time.Time.  Both padded ("January 02") and unpadded
// day numbers are accepted.
func ParseDisplayTime(s string) (time.Time, error) {
	t, err := time.Parse(DisplayTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDisplayTime renders a DB timestamp string for presentation as
// "Month DD, YYYY HH:mm:ss".  Unparseable input is returned unchanged so a
// malformed row never breaks a listing response.
func FormatDisplayTime(dbValue string) string {
	t, err := time.Parse(DBTimeLayout, dbValue)
	if err != nil {
		return dbValue
	}
	return t.Format("January 02, 2006 15:04:05")
}

// ToDBTime converts a time.Time to the DB timestamp string in UTC.
func ToDBTime(t time.Time) string {
	return t.UTC().Format(DBTimeLayout)
}

// IsAlphanumeric reports whether s is non-empty and contains only letters
// and digits.  Room codes such as "A102" must satisfy this.
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
