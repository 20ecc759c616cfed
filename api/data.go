package main

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const (
	localTimeLayout = "2006-01-02T15:04:05"
	calDateLayout   = "2006-01-02"
)

// localTime is a wall-clock timestamp with no offset. Values are always
// anchored in time.Local; JSON and the database never carry a zone.
type localTime struct {
	time.Time
}

func newLocalTime(t time.Time) localTime {
	return localTime{time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)}
}

func (t localTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(localTimeLayout) + `"`), nil
}

func (t *localTime) Scan(src any) error {
	v, ok := src.(time.Time)
	if !ok {
		return fmt.Errorf("cannot scan %T into localTime", src)
	}
	*t = newLocalTime(v)
	return nil
}

func (t localTime) Value() (driver.Value, error) {
	return t.Time, nil
}

// calDate is a calendar date with no time of day.
type calDate struct {
	time.Time
}

func newCalDate(t time.Time) calDate {
	return calDate{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)}
}

func (d calDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(calDateLayout) + `"`), nil
}

func (d calDate) Value() (driver.Value, error) {
	return d.Time, nil
}

type user struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
	IsActive     bool   `json:"-"`
}

type event struct {
	ID     int       `json:"id"`
	Title  string    `json:"title"`
	Start  localTime `json:"start"`
	End    localTime `json:"end"`
	AllDay bool      `json:"allDay"`
	Color  *string   `json:"color"`
	Notes  *string   `json:"notes"`
	UserID int       `json:"user_id"`
}

type task struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Done   bool     `json:"done"`
	Date   *calDate `json:"date"`
	UserID int      `json:"user_id"`
}

type feedEntry struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Start    localTime `json:"start"`
	End      localTime `json:"end"`
	AllDay   bool      `json:"allDay"`
	Color    *string   `json:"color"`
	Notes    *string   `json:"notes"`
	UserID   int       `json:"user_id"`
	IsTask   bool      `json:"isTask"`
	TaskDone bool      `json:"taskDone"`
}
