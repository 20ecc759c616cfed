package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

type storage struct {
	db *sql.DB
}

func newStorage(db *sql.DB) *storage {
	return &storage{
		db: db,
	}
}

func (s *storage) getUserByEmail(email string) (*user, error) {
	query := `SELECT id, email, password_hash, is_active
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, email)
	var u user
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getUserByID(id int) (*user, error) {
	query := `SELECT id, email, password_hash, is_active
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var u user
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) insertUser(u *user) error {
	query := `INSERT INTO users (email, password_hash, is_active)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.IsActive)
	return row.Scan(&u.ID)
}

// deleteUser removes the user and everything they own in one transaction.
func (s *storage) deleteUser(u *user) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, u.ID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM events WHERE user_id = $1`, u.ID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, u.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

const eventColumns = `id, title, start_at, end_at, all_day, color, notes, user_id`

func scanEvent(row interface{ Scan(...any) error }, e *event) error {
	return row.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.AllDay, &e.Color, &e.Notes, &e.UserID)
}

func (s *storage) getEventsForUser(userID int) ([]event, error) {
	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE user_id = $1
			  ORDER BY start_at ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []event{}
	for rows.Next() {
		var e event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// getEventsInRange returns the user's events with start_at in [from, to),
// ordered by start ascending. Nil bounds are open.
func (s *storage) getEventsInRange(userID int, from, to *time.Time) ([]event, error) {
	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE user_id = $1
			    AND ($2::timestamp IS NULL OR start_at >= $2)
			    AND ($3::timestamp IS NULL OR start_at < $3)
			  ORDER BY start_at ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []event{}
	for rows.Next() {
		var e event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *storage) getEventByID(userID, id int) (*event, error) {
	query := `SELECT ` + eventColumns + `
			  FROM events
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var e event
	err := scanEvent(s.db.QueryRowContext(ctx, query, id, userID), &e)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &e, nil
}

func (s *storage) insertEvent(e *event) error {
	query := `INSERT INTO events (title, start_at, end_at, all_day, color, notes, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, e.Title, e.Start, e.End, e.AllDay, e.Color, e.Notes, e.UserID)
	return row.Scan(&e.ID)
}

// insertEventBatch persists all events or none.
func (s *storage) insertEventBatch(events []event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO events (title, start_at, end_at, all_day, color, notes, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	for i := range events {
		e := &events[i]
		row := tx.QueryRowContext(ctx, query, e.Title, e.Start, e.End, e.AllDay, e.Color, e.Notes, e.UserID)
		if err := row.Scan(&e.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *storage) updateEvent(e *event) error {
	query := `UPDATE events
			  SET title = $1, start_at = $2, end_at = $3, all_day = $4, color = $5, notes = $6
			  WHERE id = $7 AND user_id = $8`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, e.Title, e.Start, e.End, e.AllDay, e.Color, e.Notes, e.ID, e.UserID)
	return err
}

func (s *storage) deleteEvent(userID, id int) (bool, error) {
	query := `DELETE FROM events
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// eventOverlaps reports whether [start, end) intersects any of the user's
// events, excluding excludeID when non-zero. There is a race window between
// this check and the subsequent insert; callers accept it.
func (s *storage) eventOverlaps(userID int, start, end localTime, excludeID int) (bool, error) {
	query := `SELECT EXISTS (
			    SELECT 1 FROM events
			    WHERE user_id = $1 AND start_at < $2 AND end_at > $3 AND id != $4
			  )`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var exists bool
	err := s.db.QueryRowContext(ctx, query, userID, end, start, excludeID).Scan(&exists)
	return exists, err
}

const taskColumns = `id, title, done, due_date, user_id`

func scanTask(row interface{ Scan(...any) error }, t *task) error {
	var due sql.NullTime
	if err := row.Scan(&t.ID, &t.Title, &t.Done, &due, &t.UserID); err != nil {
		return err
	}
	if due.Valid {
		d := newCalDate(due.Time)
		t.Date = &d
	} else {
		t.Date = nil
	}
	return nil
}

func taskDateValue(t *task) any {
	if t.Date == nil {
		return nil
	}
	return t.Date.Time
}

// getTasksForUser returns the user's tasks ordered by id descending. A
// non-nil date restricts to tasks due exactly that day.
func (s *storage) getTasksForUser(userID int, date *calDate) ([]task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_id = $1
			    AND ($2::date IS NULL OR due_date = $2)
			  ORDER BY id DESC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var filter any
	if date != nil {
		filter = date.Time
	}
	rows, err := s.db.QueryContext(ctx, query, userID, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		var t task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// getTasksInRange returns the user's dated tasks with due_date in [from, to),
// ordered by id descending. Nil bounds are open; undated tasks never match.
func (s *storage) getTasksInRange(userID int, from, to *time.Time) ([]task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_id = $1
			    AND ($2::date IS NULL OR due_date >= $2)
			    AND ($3::date IS NULL OR due_date < $3)
			  ORDER BY id DESC`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		var t task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *storage) getTaskByID(userID, id int) (*task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var t task
	err := scanTask(s.db.QueryRowContext(ctx, query, id, userID), &t)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) insertTask(t *task) error {
	query := `INSERT INTO tasks (title, done, due_date, user_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, t.Title, t.Done, taskDateValue(t), t.UserID)
	return row.Scan(&t.ID)
}

func (s *storage) updateTask(t *task) error {
	query := `UPDATE tasks
			  SET title = $1, done = $2, due_date = $3
			  WHERE id = $4 AND user_id = $5`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, t.Title, t.Done, taskDateValue(t), t.ID, t.UserID)
	return err
}

// toggleTask flips done against the stored value in a single statement and
// returns the updated row, or nil if the task does not exist.
func (s *storage) toggleTask(userID, id int) (*task, error) {
	query := `UPDATE tasks
			  SET done = NOT done
			  WHERE id = $1 AND user_id = $2
			  RETURNING ` + taskColumns
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var t task
	err := scanTask(s.db.QueryRowContext(ctx, query, id, userID), &t)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) deleteTask(userID, id int) (bool, error) {
	query := `DELETE FROM tasks
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
