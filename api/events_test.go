package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestApplication() *application {
	var cfg config
	cfg.env = "test"
	cfg.jwtSecret = "test-secret"
	cfg.cors.trustedOrigins = []string{"*"}
	return &application{config: cfg}
}

func authedRequest(method, target, body string, userID int) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(context.WithValue(r.Context(), userIDContextKey, userID))
}

func TestBuildEventBatch(t *testing.T) {
	startDay, _ := parseDay("2024-01-01")
	endDay, _ := parseDay("2024-01-03")
	events := buildEventBatch(7, "Standup", startDay, endDay, 9, 0, 10, 0, nil, nil)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, e := range events {
		wantStart := time.Date(2024, 1, 1+i, 9, 0, 0, 0, time.Local)
		wantEnd := time.Date(2024, 1, 1+i, 10, 0, 0, 0, time.Local)
		if !e.Start.Equal(wantStart) {
			t.Errorf("event %d start: got %v, want %v", i, e.Start.Time, wantStart)
		}
		if !e.End.Equal(wantEnd) {
			t.Errorf("event %d end: got %v, want %v", i, e.End.Time, wantEnd)
		}
		if e.Title != "Standup" {
			t.Errorf("event %d title: got %q", i, e.Title)
		}
		if e.AllDay {
			t.Errorf("event %d should not be all-day", i)
		}
		if e.UserID != 7 {
			t.Errorf("event %d user: got %d, want 7", i, e.UserID)
		}
	}
}

func TestBuildEventBatchSingleDay(t *testing.T) {
	day, _ := parseDay("2024-02-29")
	events := buildEventBatch(1, "Leap", day, day, 23, 0, 23, 30, nil, nil)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
}

func TestCreateEventRejectsInvertedRange(t *testing.T) {
	app := newTestApplication()
	body := `{"title":"Meeting","start":"2024-01-02T10:00:00","end":"2024-01-02T09:00:00"}`
	r := authedRequest(http.MethodPost, "/api/events", body, 1)
	w := httptest.NewRecorder()
	app.createEventHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateEventRejectsMissingFields(t *testing.T) {
	app := newTestApplication()
	bodies := []string{
		`{"start":"2024-01-02T10:00:00","end":"2024-01-02T11:00:00"}`,
		`{"title":"   ","start":"2024-01-02T10:00:00","end":"2024-01-02T11:00:00"}`,
		`{"title":"Meeting"}`,
		`{"title":"Meeting","start":"bogus","end":"2024-01-02T11:00:00"}`,
	}
	for _, body := range bodies {
		r := authedRequest(http.MethodPost, "/api/events", body, 1)
		w := httptest.NewRecorder()
		app.createEventHandler(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: got status %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func patchInput(fields map[string]string) map[string]json.RawMessage {
	input := map[string]json.RawMessage{}
	for k, v := range fields {
		input[k] = json.RawMessage(v)
	}
	return input
}

func baseEvent() event {
	color := "#ff0000"
	notes := "bring slides"
	return event{
		ID:     3,
		Title:  "Dentist",
		Start:  localTime{time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)},
		End:    localTime{time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)},
		AllDay: false,
		Color:  &color,
		Notes:  &notes,
		UserID: 1,
	}
}

func TestApplyEventPatchNotesOnly(t *testing.T) {
	e := baseEvent()
	want := e

	touched, err := applyEventPatch(&e, patchInput(map[string]string{"notes": `"x"`}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if touched {
		t.Error("notes-only patch must not touch the time range")
	}
	if e.Notes == nil || *e.Notes != "x" {
		t.Errorf("notes: got %v, want x", e.Notes)
	}
	if e.Title != want.Title {
		t.Errorf("title changed: got %q, want %q", e.Title, want.Title)
	}
	if !e.Start.Equal(want.Start.Time) || !e.End.Equal(want.End.Time) {
		t.Errorf("time range changed: got %v-%v, want %v-%v", e.Start.Time, e.End.Time, want.Start.Time, want.End.Time)
	}
	if e.AllDay != want.AllDay {
		t.Error("allDay changed")
	}
	if e.Color == nil || *e.Color != *want.Color {
		t.Errorf("color changed: got %v, want %v", e.Color, *want.Color)
	}
}

func TestApplyEventPatchNullClearsColorAndNotes(t *testing.T) {
	e := baseEvent()
	_, err := applyEventPatch(&e, patchInput(map[string]string{"color": `null`, "notes": `null`}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Color != nil {
		t.Errorf("color: got %v, want cleared", *e.Color)
	}
	if e.Notes != nil {
		t.Errorf("notes: got %v, want cleared", *e.Notes)
	}
}

func TestApplyEventPatchStartRevalidatedAgainstRetainedEnd(t *testing.T) {
	e := baseEvent()
	// start moved past the retained 10:00 end
	_, err := applyEventPatch(&e, patchInput(map[string]string{"start": `"2024-01-02T11:00:00"`}))
	if err == nil {
		t.Fatal("expected error for start past retained end, got nil")
	}

	e = baseEvent()
	touched, err := applyEventPatch(&e, patchInput(map[string]string{"start": `"2024-01-02T09:30:00"`}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !touched {
		t.Error("start patch must report the range as touched")
	}
	if !e.End.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)) {
		t.Errorf("end changed: got %v", e.End.Time)
	}
}

func TestApplyEventPatchRejectsBadFields(t *testing.T) {
	cases := []map[string]string{
		{"title": `""`},
		{"title": `42`},
		{"start": `"bogus"`},
		{"end": `"2024-01-02T08:00:00"`},
		{"allDay": `"yes"`},
	}
	for _, fields := range cases {
		e := baseEvent()
		if _, err := applyEventPatch(&e, patchInput(fields)); err == nil {
			t.Errorf("fields %v: expected error, got nil", fields)
		}
	}
}

func TestEventTitleLimitCountsRunes(t *testing.T) {
	// 150 two-byte runes is 300 bytes but still within the limit
	title := strings.Repeat("é", maxEventTitleLength)
	e := baseEvent()
	_, err := applyEventPatch(&e, patchInput(map[string]string{"title": `"` + title + `"`}))
	if err != nil {
		t.Fatalf("%d-rune title rejected: %v", maxEventTitleLength, err)
	}
	if e.Title != title {
		t.Error("title not applied")
	}

	e = baseEvent()
	over := strings.Repeat("é", maxEventTitleLength+1)
	if _, err := applyEventPatch(&e, patchInput(map[string]string{"title": `"` + over + `"`})); err == nil {
		t.Errorf("%d-rune title accepted", maxEventTitleLength+1)
	}
}

func TestCreateEventBatchRejectsBadInput(t *testing.T) {
	app := newTestApplication()
	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"startDay":"2024-01-01","endDay":"2024-01-03","startTime":"09:00","endTime":"10:00"}`},
		{"bad time", `{"title":"X","startDay":"2024-01-01","endDay":"2024-01-03","startTime":"9am","endTime":"10:00"}`},
		{"inverted times", `{"title":"X","startDay":"2024-01-01","endDay":"2024-01-03","startTime":"10:00","endTime":"10:00"}`},
		{"bad day", `{"title":"X","startDay":"01-01-2024","endDay":"2024-01-03","startTime":"09:00","endTime":"10:00"}`},
		{"inverted days", `{"title":"X","startDay":"2024-01-03","endDay":"2024-01-01","startTime":"09:00","endTime":"10:00"}`},
	}
	for _, c := range cases {
		r := authedRequest(http.MethodPost, "/api/events/batch", c.body, 1)
		w := httptest.NewRecorder()
		app.createEventBatchHandler(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want %d", c.name, w.Code, http.StatusBadRequest)
		}
	}
}
