package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxEventTitleLength = 150
	maxEventNotesLength = 500
)

var errEventNotFound = errors.New("Event not found")

func (app *application) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	events, err := app.storage.getEventsForUser(userID)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (app *application) createEventHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	var input struct {
		Title  string  `json:"title"`
		Start  string  `json:"start"`
		End    string  `json:"end"`
		AllDay bool    `json:"allDay"`
		Color  *string `json:"color"`
		Notes  *string `json:"notes"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(input.Title)
	v := newValidator()
	v.checkCond(title != "", "title", "must be provided")
	v.checkCond(utf8.RuneCountInString(title) <= maxEventTitleLength, "title", "must be atmost 150 characters")
	v.checkCond(input.Start != "", "start", "must be provided")
	v.checkCond(input.End != "", "end", "must be provided")
	v.checkCond(input.Notes == nil || utf8.RuneCountInString(*input.Notes) <= maxEventNotesLength, "notes", "must be atmost 500 characters")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	start, err := parseDateTime(input.Start)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	end, err := parseDateTime(input.End)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if !end.After(start.Time) {
		writeError(w, errors.New("end must be greater than start"), http.StatusBadRequest)
		return
	}

	if app.config.events.overlapCheck {
		overlaps, err := app.storage.eventOverlaps(userID, start, end, 0)
		if err != nil {
			log.Println(err)
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		if overlaps {
			writeError(w, errors.New("Event overlaps with another one"), http.StatusConflict)
			return
		}
	}

	e := &event{
		Title:  title,
		Start:  start,
		End:    end,
		AllDay: input.AllDay,
		Color:  input.Color,
		Notes:  input.Notes,
		UserID: userID,
	}
	err = app.storage.insertEvent(e)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// applyEventPatch merges a partial update into e. Key presence matters: an
// absent field keeps its value, an explicit null clears color/notes. It
// reports whether start or end was touched, in which case the resulting pair
// has already been validated.
func applyEventPatch(e *event, input map[string]json.RawMessage) (bool, error) {
	if raw, ok := input["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return false, errors.New("title must be a string")
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return false, errors.New("Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxEventTitleLength {
			return false, errors.New("title must be atmost 150 characters")
		}
		e.Title = title
	}

	touchedRange := false
	if raw, ok := input["start"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, errInvalidDateTime
		}
		start, err := parseDateTime(s)
		if err != nil {
			return false, err
		}
		e.Start = start
		touchedRange = true
	}
	if raw, ok := input["end"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, errInvalidDateTime
		}
		end, err := parseDateTime(s)
		if err != nil {
			return false, err
		}
		e.End = end
		touchedRange = true
	}
	if touchedRange && !e.End.After(e.Start.Time) {
		return false, errors.New("end must be greater than start")
	}

	if raw, ok := input["allDay"]; ok {
		var allDay bool
		if err := json.Unmarshal(raw, &allDay); err != nil {
			return false, errors.New("allDay must be a boolean")
		}
		e.AllDay = allDay
	}
	if raw, ok := input["color"]; ok {
		var color *string
		if err := json.Unmarshal(raw, &color); err != nil {
			return false, errors.New("color must be a string")
		}
		e.Color = color
	}
	if raw, ok := input["notes"]; ok {
		var notes *string
		if err := json.Unmarshal(raw, &notes); err != nil {
			return false, errors.New("notes must be a string")
		}
		if notes != nil && utf8.RuneCountInString(*notes) > maxEventNotesLength {
			return false, errors.New("notes must be atmost 500 characters")
		}
		e.Notes = notes
	}
	return touchedRange, nil
}

func (app *application) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errEventNotFound, http.StatusNotFound)
		return
	}
	e, err := app.storage.getEventByID(userID, id)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if e == nil {
		writeError(w, errEventNotFound, http.StatusNotFound)
		return
	}

	var input map[string]json.RawMessage
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	touchedRange, err := applyEventPatch(e, input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if touchedRange && app.config.events.overlapCheck {
		overlaps, err := app.storage.eventOverlaps(userID, e.Start, e.End, e.ID)
		if err != nil {
			log.Println(err)
			writeError(w, errInternal, http.StatusInternalServerError)
			return
		}
		if overlaps {
			writeError(w, errors.New("Event overlaps with another one"), http.StatusConflict)
			return
		}
	}

	err = app.storage.updateEvent(e)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (app *application) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errEventNotFound, http.StatusNotFound)
		return
	}
	deleted, err := app.storage.deleteEvent(userID, id)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeError(w, errEventNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
}

// buildEventBatch expands an inclusive day range into one event per day, each
// spanning the same time-of-day window.
func buildEventBatch(userID int, title string, startDay, endDay calDate, startHour, startMin, endHour, endMin int, color, notes *string) []event {
	events := []event{}
	for cur := startDay.Time; !cur.After(endDay.Time); cur = cur.AddDate(0, 0, 1) {
		start := time.Date(cur.Year(), cur.Month(), cur.Day(), startHour, startMin, 0, 0, time.Local)
		end := time.Date(cur.Year(), cur.Month(), cur.Day(), endHour, endMin, 0, 0, time.Local)
		events = append(events, event{
			Title:  title,
			Start:  localTime{start},
			End:    localTime{end},
			AllDay: false,
			Color:  color,
			Notes:  notes,
			UserID: userID,
		})
	}
	return events
}

func (app *application) createEventBatchHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	var input struct {
		Title     string  `json:"title"`
		StartDay  string  `json:"startDay"`
		EndDay    string  `json:"endDay"`
		StartTime string  `json:"startTime"`
		EndTime   string  `json:"endTime"`
		Color     *string `json:"color"`
		Notes     *string `json:"notes"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(input.Title)
	v := newValidator()
	v.checkCond(title != "", "title", "must be provided")
	v.checkCond(utf8.RuneCountInString(title) <= maxEventTitleLength, "title", "must be atmost 150 characters")
	v.checkCond(input.StartDay != "", "startDay", "must be provided")
	v.checkCond(input.EndDay != "", "endDay", "must be provided")
	v.checkCond(input.StartTime != "", "startTime", "must be provided")
	v.checkCond(input.EndTime != "", "endTime", "must be provided")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	startHour, startMin, err := parseClock(input.StartTime)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	endHour, endMin, err := parseClock(input.EndTime)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if endHour < startHour || (endHour == startHour && endMin <= startMin) {
		writeError(w, errors.New("endTime must be greater than startTime"), http.StatusBadRequest)
		return
	}

	startDay, err := parseDay(input.StartDay)
	if err != nil {
		writeError(w, errors.New("Days must be YYYY-MM-DD"), http.StatusBadRequest)
		return
	}
	endDay, err := parseDay(input.EndDay)
	if err != nil {
		writeError(w, errors.New("Days must be YYYY-MM-DD"), http.StatusBadRequest)
		return
	}
	if endDay.Before(startDay.Time) {
		writeError(w, errors.New("endDay must be >= startDay"), http.StatusBadRequest)
		return
	}

	events := buildEventBatch(userID, title, startDay, endDay, startHour, startMin, endHour, endMin, input.Color, input.Notes)
	err = app.storage.insertEventBatch(events)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, events)
}
