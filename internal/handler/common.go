package handler

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/willianramosdev-stack/todoApp/internal/middleware"
	"github.com/willianramosdev-stack/todoApp/internal/model"
)

// currentUserID returns the authenticated user's id placed in the context
// by the JWTAuth middleware. Handlers behind the middleware can rely on it
// being present; a zero value means the route was misconfigured.
func currentUserID(c echo.Context) uint64 {
	if v, ok := c.Get(middleware.UserIDKey).(uint64); ok {
		return v
	}
	return 0
}

// taskResp is the JSON shape of a task in every response.
type taskResp struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTaskResp(t model.Task) taskResp {
	return taskResp{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResps(ts []model.Task) []taskResp {
	out := make([]taskResp, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskResp(t))
	}
	return out
}

// parseDueDate interprets a raw dueDate JSON value. It returns the parsed
// time (nil for an explicit null) and whether the value was usable. Both
// RFC 3339 timestamps and plain yyyy-mm-dd dates are accepted.
func parseDueDate(raw json.RawMessage) (*time.Time, bool) {
	s := string(raw)
	if s == "null" {
		return nil, true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, false
	}
	if t, err := time.Parse(time.RFC3339, str); err == nil {
		t = t.UTC()
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return &t, true
	}
	return nil, false
}
