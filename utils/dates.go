// utils/dates.go
package utils

import "time"

const DateLayout = "2006-01-02"

// ParseDate accepts only zero-padded calendar dates such as 2024-01-31.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return FormatDate(time.Now().In(loc))
}
