package main

import (
	"log"
	"net/http"
	"time"
)

const (
	taskDoneColor    = "#6c9c7b"
	taskPendingColor = "#9aa0a6"
)

func feedEntryFromEvent(e event) feedEntry {
	return feedEntry{
		ID:       e.ID,
		Title:    e.Title,
		Start:    e.Start,
		End:      e.End,
		AllDay:   e.AllDay,
		Color:    e.Color,
		Notes:    e.Notes,
		UserID:   e.UserID,
		IsTask:   false,
		TaskDone: false,
	}
}

// feedEntryFromTask projects a dated task to a synthetic all-day entry
// spanning [date, date+1day). The caller must not pass an undated task.
func feedEntryFromTask(t task) feedEntry {
	start := t.Date.Time
	color := taskPendingColor
	if t.Done {
		color = taskDoneColor
	}
	return feedEntry{
		ID:       t.ID,
		Title:    t.Title,
		Start:    localTime{start},
		End:      localTime{start.AddDate(0, 0, 1)},
		AllDay:   true,
		Color:    &color,
		Notes:    nil,
		UserID:   t.UserID,
		IsTask:   true,
		TaskDone: t.Done,
	}
}

// buildFeed concatenates the events block (already start asc) and the tasks
// block (already id desc). The two blocks are deliberately not merged into a
// single chronological order.
func buildFeed(events []event, tasks []task) []feedEntry {
	feed := []feedEntry{}
	for _, e := range events {
		feed = append(feed, feedEntryFromEvent(e))
	}
	for _, t := range tasks {
		if t.Date == nil {
			continue
		}
		feed = append(feed, feedEntryFromTask(t))
	}
	return feed
}

func (app *application) getCalendarHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)

	var from, to *time.Time
	if s := r.URL.Query().Get("from"); s != "" {
		day, err := parseDay(s)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		from = &day.Time
	}
	if s := r.URL.Query().Get("to"); s != "" {
		day, err := parseDay(s)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		// inclusive at day granularity
		end := day.AddDate(0, 0, 1)
		to = &end
	}

	events, err := app.storage.getEventsInRange(userID, from, to)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	tasks, err := app.storage.getTasksInRange(userID, from, to)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, buildFeed(events, tasks))
}
