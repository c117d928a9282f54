package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/willianramosdev-stack/todoApp/internal/cache"
	"github.com/willianramosdev-stack/todoApp/internal/model"
	"github.com/willianramosdev-stack/todoApp/internal/repository"
)

// TaskHandler implements task CRUD, filtered listing and status
// transitions. Every operation is scoped to the authenticated caller;
// the store treats a foreign task id as absent, so these handlers can
// answer 404 without an explicit ownership check of their own.
type TaskHandler struct {
	Tasks repository.TaskStore
	Cache *cache.TaskCache
}

func NewTaskHandler(t repository.TaskStore, c *cache.TaskCache) *TaskHandler {
	return &TaskHandler{Tasks: t, Cache: c}
}

// ----- DTOs -----

type createTaskReq struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	DueDate     json.RawMessage `json:"dueDate"`
}

// replaceTaskReq requires every core field to be present; pointers (and the
// raw dueDate) record presence.
type replaceTaskReq struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	DueDate     json.RawMessage `json:"dueDate"`
}

// patchTaskReq applies only the supplied fields. The raw dueDate
// distinguishes "dueDate": null (clear the deadline) from an omitted key.
type patchTaskReq struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	DueDate     json.RawMessage `json:"dueDate"`
}

type statusReq struct {
	Status string `json:"status"`
}

func validTitle(t string) bool       { return len(t) >= 1 && len(t) <= 120 }
func validDescription(d string) bool { return len(d) <= 2000 }

// Create: persist a new task owned by the caller. Status always starts as
// PENDING regardless of the payload.
func (h *TaskHandler) Create(c echo.Context) error {
	uid := currentUserID(c)
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if !validTitle(req.Title) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be 1-120 characters"})
	}
	if !validDescription(req.Description) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 2000 characters"})
	}
	if !model.ValidPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be LOW, MEDIUM or HIGH"})
	}
	var due *time.Time
	if len(req.DueDate) > 0 {
		parsed, ok := parseDueDate(req.DueDate)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate"})
		}
		due = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Tasks.Create(ctx, &model.Task{
		UserID:      uid,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      model.StatusPending,
		DueDate:     due,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}
	created, err := h.Tasks.GetForUser(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}
	h.invalidate(ctx, uid)
	return c.JSON(http.StatusCreated, toTaskResp(created))
}

// List: return the caller's tasks matching all supplied filters, ordered
// descending by the chosen sort key. The unfiltered default listing is
// served from Redis when possible.
func (h *TaskHandler) List(c echo.Context) error {
	uid := currentUserID(c)

	var f repository.TaskFilter
	if s := c.QueryParam("status"); s != "" {
		if !model.ValidStatus(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
		f.Status = s
	}
	if p := c.QueryParam("priority"); p != "" {
		if !model.ValidPriority(p) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority filter"})
		}
		f.Priority = p
	}
	if d := c.QueryParam("dueDate"); d != "" {
		raw, _ := json.Marshal(d)
		parsed, ok := parseDueDate(raw)
		if !ok || parsed == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate filter"})
		}
		f.DueDate = parsed
	}
	switch sort := c.QueryParam("sort"); sort {
	case "", "createdAt":
		f.SortBy = "createdAt"
	case "dueDate":
		f.SortBy = "dueDate"
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sort must be dueDate or createdAt"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cacheable := f.Status == "" && f.Priority == "" && f.DueDate == nil && f.SortBy == "createdAt"
	if cacheable {
		if cached, err := h.Cache.GetList(ctx, uid); err == nil && cached != nil {
			return c.JSON(http.StatusOK, toTaskResps(cached))
		}
	}

	tasks, err := h.Tasks.ListForUser(ctx, uid, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tasks failed"})
	}
	if cacheable {
		if err := h.Cache.SetList(ctx, uid, tasks); err != nil {
			log.Printf("task cache: set failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, toTaskResps(tasks))
}

// Get: fetch one of the caller's tasks by id.
func (h *TaskHandler) Get(c echo.Context) error {
	uid := currentUserID(c)
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tasks.GetForUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Replace: full overwrite of the four core fields. All of them, dueDate
// included, must be present in the payload.
func (h *TaskHandler) Replace(c echo.Context) error {
	uid := currentUserID(c)
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	var req replaceTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == nil || req.Description == nil || req.Priority == nil || len(req.DueDate) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, description, priority and dueDate are required"})
	}
	title := strings.TrimSpace(*req.Title)
	if !validTitle(title) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be 1-120 characters"})
	}
	if !validDescription(*req.Description) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 2000 characters"})
	}
	if !model.ValidPriority(*req.Priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be LOW, MEDIUM or HIGH"})
	}
	due, ok := parseDueDate(req.DueDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Tasks.GetForUser(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Tasks.Replace(ctx, id, uid, title, *req.Description, *req.Priority, due); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}
	return h.respondUpdated(c, ctx, id, uid)
}

// Patch: apply only the fields present in the payload.
func (h *TaskHandler) Patch(c echo.Context) error {
	uid := currentUserID(c)
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	var req patchTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var p repository.TaskPatch
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if !validTitle(title) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must be 1-120 characters"})
		}
		p.Title = &title
	}
	if req.Description != nil {
		if !validDescription(*req.Description) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "description must be at most 2000 characters"})
		}
		p.Description = req.Description
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "priority must be LOW, MEDIUM or HIGH"})
		}
		p.Priority = req.Priority
	}
	if len(req.DueDate) > 0 {
		due, ok := parseDueDate(req.DueDate)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate"})
		}
		p.DueDate = due
		p.DueDateSet = true
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Tasks.GetForUser(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Tasks.Patch(ctx, id, uid, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}
	return h.respondUpdated(c, ctx, id, uid)
}

// PatchStatus: set the lifecycle state. completedAt becomes non-null
// exactly when the new status is DONE.
func (h *TaskHandler) PatchStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be PENDING, IN_PROGRESS, DONE or CANCELED"})
	}
	return h.setStatus(c, req.Status)
}

// Complete: shorthand for PatchStatus(id, DONE).
func (h *TaskHandler) Complete(c echo.Context) error {
	return h.setStatus(c, model.StatusDone)
}

func (h *TaskHandler) setStatus(c echo.Context, status string) error {
	uid := currentUserID(c)
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Tasks.GetForUser(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Tasks.SetStatus(ctx, id, uid, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}
	return h.respondUpdated(c, ctx, id, uid)
}

// respondUpdated re-reads the task after a mutation, drops the caller's
// cached listing and returns the fresh record.
func (h *TaskHandler) respondUpdated(c echo.Context, ctx context.Context, id, uid uint64) error {
	t, err := h.Tasks.GetForUser(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	h.invalidate(ctx, uid)
	return c.JSON(http.StatusOK, toTaskResp(t))
}

func (h *TaskHandler) invalidate(ctx context.Context, uid uint64) {
	if err := h.Cache.InvalidateUser(ctx, uid); err != nil {
		log.Printf("task cache: invalidate failed: %v", err)
	}
}

func taskID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
