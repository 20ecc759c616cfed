package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxTaskTitleLength = 200

var errTaskNotFound = errors.New("Task not found")

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)

	var filter *calDate
	if d := r.URL.Query().Get("date"); d != "" {
		day, err := parseDay(d)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		filter = &day
	}

	tasks, err := app.storage.getTasksForUser(userID, filter)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	var input struct {
		Title string  `json:"title"`
		Done  bool    `json:"done"`
		Date  *string `json:"date"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(input.Title)
	v := newValidator()
	v.checkCond(title != "", "title", "must be provided")
	v.checkCond(utf8.RuneCountInString(title) <= maxTaskTitleLength, "title", "must be atmost 200 characters")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	var date *calDate
	if input.Date != nil && *input.Date != "" {
		day, err := parseDay(*input.Date)
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		date = &day
	}

	t := &task{
		Title:  title,
		Done:   input.Done,
		Date:   date,
		UserID: userID,
	}
	err = app.storage.insertTask(t)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// applyTaskPatch merges a partial update into t. An absent key keeps its
// value; an explicit null or "" for date clears it.
func applyTaskPatch(t *task, input map[string]json.RawMessage) error {
	if raw, ok := input["title"]; ok {
		var title string
		if err := json.Unmarshal(raw, &title); err != nil {
			return errors.New("title must be a string")
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return errors.New("Title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxTaskTitleLength {
			return errors.New("title must be atmost 200 characters")
		}
		t.Title = title
	}

	if raw, ok := input["done"]; ok {
		var done bool
		if err := json.Unmarshal(raw, &done); err != nil {
			return errors.New("done must be a boolean")
		}
		t.Done = done
	}

	if raw, ok := input["date"]; ok {
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil {
			return errInvalidDay
		}
		if s == nil || *s == "" {
			t.Date = nil
		} else {
			day, err := parseDay(*s)
			if err != nil {
				return err
			}
			t.Date = &day
		}
	}
	return nil
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errTaskNotFound, http.StatusNotFound)
		return
	}
	t, err := app.storage.getTaskByID(userID, id)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if t == nil {
		writeError(w, errTaskNotFound, http.StatusNotFound)
		return
	}

	var input map[string]json.RawMessage
	err = json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	err = applyTaskPatch(t, input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	err = app.storage.updateTask(t)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) toggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errTaskNotFound, http.StatusNotFound)
		return
	}
	t, err := app.storage.toggleTask(userID, id)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if t == nil {
		writeError(w, errTaskNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errTaskNotFound, http.StatusNotFound)
		return
	}
	deleted, err := app.storage.deleteTask(userID, id)
	if err != nil {
		log.Println(err)
		writeError(w, errInternal, http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeError(w, errTaskNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
}
