package main

import (
	"testing"
	"time"
)

func TestFeedEntryFromEvent(t *testing.T) {
	color := "#ff0000"
	e := event{
		ID:     3,
		Title:  "Dentist",
		Start:  localTime{time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)},
		End:    localTime{time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local)},
		Color:  &color,
		UserID: 1,
	}
	fe := feedEntryFromEvent(e)
	if fe.IsTask || fe.TaskDone {
		t.Error("event entries must not be tagged as tasks")
	}
	if fe.Color == nil || *fe.Color != color {
		t.Error("event color must pass through")
	}
}

func TestFeedEntryFromTask(t *testing.T) {
	date := newCalDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local))
	tk := task{ID: 5, Title: "Buy milk", Done: false, Date: &date, UserID: 1}

	fe := feedEntryFromTask(tk)
	if !fe.IsTask {
		t.Error("task entry must be tagged isTask")
	}
	if fe.TaskDone {
		t.Error("pending task must not be taskDone")
	}
	if !fe.AllDay {
		t.Error("task entry must be all-day")
	}
	wantStart := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)
	if !fe.Start.Equal(wantStart) {
		t.Errorf("start: got %v, want %v", fe.Start.Time, wantStart)
	}
	if !fe.End.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("end: got %v, want next midnight", fe.End.Time)
	}
	if fe.Color == nil || *fe.Color != taskPendingColor {
		t.Errorf("pending color: got %v, want %s", fe.Color, taskPendingColor)
	}
	if fe.Notes != nil {
		t.Error("task entries carry no notes")
	}

	tk.Done = true
	fe = feedEntryFromTask(tk)
	if !fe.TaskDone {
		t.Error("done task must be taskDone")
	}
	if fe.Color == nil || *fe.Color != taskDoneColor {
		t.Errorf("done color: got %v, want %s", fe.Color, taskDoneColor)
	}
}

func TestBuildFeedKeepsBlocksUnmerged(t *testing.T) {
	events := []event{
		{ID: 1, Title: "A", Start: localTime{time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)}, End: localTime{time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)}},
		{ID: 2, Title: "B", Start: localTime{time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)}, End: localTime{time.Date(2024, 1, 3, 10, 0, 0, 0, time.Local)}},
	}
	d1 := newCalDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local))
	tasks := []task{
		{ID: 9, Title: "later", Date: &d1},
		{ID: 4, Title: "earlier", Date: &d1},
		{ID: 5, Title: "undated"},
	}

	feed := buildFeed(events, tasks)
	if len(feed) != 4 {
		t.Fatalf("got %d entries, want 4 (undated task excluded)", len(feed))
	}
	// events block first, in the order given, then tasks block
	wantIDs := []int{1, 2, 9, 4}
	for i, want := range wantIDs {
		if feed[i].ID != want {
			t.Errorf("entry %d: got id %d, want %d", i, feed[i].ID, want)
		}
	}
	if feed[1].IsTask {
		t.Error("entry 1 should be an event")
	}
	if !feed[2].IsTask {
		t.Error("entry 2 should be a task")
	}
}

func TestBuildFeedEmpty(t *testing.T) {
	feed := buildFeed(nil, nil)
	if feed == nil {
		t.Fatal("feed must be an empty slice, not nil, so it serializes as []")
	}
	if len(feed) != 0 {
		t.Fatalf("got %d entries, want 0", len(feed))
	}
}
