package main

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{
		errors: make(map[string]string),
	}
}

func (v *validator) toError() error {
	if v == nil {
		return errors.New("")
	}
	data, err := json.Marshal(v.errors)
	if err != nil {
		return err
	}
	return errors.New(string(data))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) != 0
}

func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) checkEmail(email string) {
	v.checkCond(email != "", "email", "must be provided")
	v.checkCond(emailRegexp.Match([]byte(email)), "email", "must be a valid email address")
}

func (v *validator) checkPassword(password string) {
	v.checkCond(password != "", "password", "must be provided")
	v.checkCond(len(password) <= 72, "password", "must be atmost 72 characters long")
}

var (
	errInvalidDateTime = errors.New("Invalid date format. Use ISO 8601.")
	errInvalidDay      = errors.New("Invalid date (expected YYYY-MM-DD)")
	errInvalidClock    = errors.New("Invalid time (use HH:MM)")
)

// Layouts carrying an offset come first; a match there means the input was
// zone-aware and must be collapsed to local wall-clock time.
var zonedLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseDateTime parses an ISO-8601 timestamp into a naive local time. Input
// with a UTC designator or offset is converted to the local zone first, then
// the offset is dropped.
func parseDateTime(s string) (localTime, error) {
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return newLocalTime(t.In(time.Local)), nil
		}
	}
	for _, layout := range naiveLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return newLocalTime(t), nil
		}
	}
	return localTime{}, errInvalidDateTime
}

// parseDay parses a YYYY-MM-DD calendar date.
func parseDay(s string) (calDate, error) {
	t, err := time.Parse(calDateLayout, s)
	if err != nil {
		return calDate{}, errInvalidDay
	}
	return newCalDate(t), nil
}

// parseClock parses HH:MM into an (hour, minute) pair.
func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, errInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errInvalidClock
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, errInvalidClock
	}
	return h, m, nil
}
