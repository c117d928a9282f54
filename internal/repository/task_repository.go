package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/willianramosdev-stack/todoApp/internal/model"
)

// TaskRepo persists rows of the 'tasks' table. All queries filter by
// user_id in addition to id, so a task owned by someone else is
// indistinguishable from an absent one.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskColumns = "id,user_id,title,description,priority,status,due_date,completed_at,created_at,updated_at"

// Create inserts a task and returns its ID. Status and CompletedAt are
// taken from t; callers set the PENDING default.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (user_id, title, description, priority, status, due_date) VALUES (?,?,?,?,?,?)",
		t.UserID, t.Title, t.Description, t.Priority, t.Status, t.DueDate)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetForUser fetches one task owned by userID.
func (r *TaskRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Task, error) {
	var t model.Task
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=? AND user_id=? LIMIT 1",
		id, userID).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority,
		&t.Status, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

// ListForUser returns all tasks owned by userID matching every supplied
// filter, newest first by the chosen sort key.
func (r *TaskRepo) ListForUser(ctx context.Context, userID uint64, f TaskFilter) ([]model.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id=?"
	args := []interface{}{userID}
	if f.Status != "" {
		query += " AND status=?"
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		query += " AND priority=?"
		args = append(args, f.Priority)
	}
	if f.DueDate != nil {
		query += " AND DATE(due_date)=DATE(?)"
		args = append(args, *f.DueDate)
	}
	if f.SortBy == "dueDate" {
		query += " ORDER BY due_date DESC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority,
			&t.Status, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Replace overwrites the four core fields of a task. Status and
// CompletedAt are untouched; callers verify existence beforehand.
func (r *TaskRepo) Replace(ctx context.Context, id, userID uint64, title, description, priority string, dueDate *time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, priority=?, due_date=? WHERE id=? AND user_id=?",
		title, description, priority, dueDate, id, userID)
	return err
}

// Patch applies only the fields present in p. DueDateSet with a nil
// DueDate clears the deadline; an unset DueDateSet leaves it alone.
func (r *TaskRepo) Patch(ctx context.Context, id, userID uint64, p TaskPatch) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	if p.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *p.Title)
	}
	if p.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *p.Description)
	}
	if p.Priority != nil {
		sets = append(sets, "priority=?")
		args = append(args, *p.Priority)
	}
	if p.DueDateSet {
		sets = append(sets, "due_date=?")
		args = append(args, p.DueDate)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id=? AND user_id=?", args...)
	return err
}

// SetStatus updates the lifecycle state. completed_at is set exactly when
// the new status is DONE and cleared on any other transition.
func (r *TaskRepo) SetStatus(ctx context.Context, id, userID uint64, status string) error {
	var completedAt *time.Time
	if status == model.StatusDone {
		now := time.Now().UTC()
		completedAt = &now
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET status=?, completed_at=? WHERE id=? AND user_id=?",
		status, completedAt, id, userID)
	return err
}
