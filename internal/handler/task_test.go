package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/willianramosdev-stack/todoApp/internal/model"
)

func newTaskFixture() (*TaskHandler, *fakeTaskStore) {
	store := newFakeTaskStore()
	return NewTaskHandler(store, noopCache()), store
}

func createTask(t *testing.T, h *TaskHandler, uid uint64, body string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h.Create, http.MethodPost, "/v1/tasks", body, asUser(uid))
}

func TestCreateTaskDefaults(t *testing.T) {
	h, _ := newTaskFixture()
	rec := createTask(t, h, 1,
		`{"title":"write report","description":"quarterly numbers","priority":"HIGH","dueDate":"2026-09-15T00:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != model.StatusPending {
		t.Errorf("status = %v, want PENDING", body["status"])
	}
	if body["completedAt"] != nil {
		t.Errorf("completedAt = %v, want null", body["completedAt"])
	}
	if body["userId"] != float64(1) {
		t.Errorf("userId = %v, want 1", body["userId"])
	}
	if body["dueDate"] == nil {
		t.Error("dueDate lost")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	h, _ := newTaskFixture()
	longTitle := make([]byte, 121)
	for i := range longTitle {
		longTitle[i] = 'x'
	}
	cases := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":"","description":"d","priority":"LOW"}`},
		{"title too long", `{"title":"` + string(longTitle) + `","description":"d","priority":"LOW"}`},
		{"bad priority", `{"title":"t","description":"d","priority":"URGENT"}`},
		{"bad dueDate", `{"title":"t","description":"d","priority":"LOW","dueDate":"tomorrow"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := createTask(t, h, 1, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetTaskOwnership(t *testing.T) {
	h, _ := newTaskFixture()
	createTask(t, h, 1, `{"title":"mine","description":"","priority":"LOW"}`)

	// Owner sees the task.
	rec := do(t, h.Get, http.MethodGet, "/v1/tasks/1", "", asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get status = %d, want 200", rec.Code)
	}

	// Another user gets a 404, not a 403: existence must not leak.
	rec = do(t, h.Get, http.MethodGet, "/v1/tasks/1", "", asUser(2), withParam("id", "1"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get status = %d, want 404", rec.Code)
	}

	// Absent id behaves identically.
	rec = do(t, h.Get, http.MethodGet, "/v1/tasks/99", "", asUser(1), withParam("id", "99"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("absent get status = %d, want 404", rec.Code)
	}
}

func TestListFiltersAndOwnership(t *testing.T) {
	h, store := newTaskFixture()
	createTask(t, h, 1, `{"title":"low","description":"","priority":"LOW"}`)
	createTask(t, h, 1, `{"title":"high","description":"","priority":"HIGH"}`)
	createTask(t, h, 2, `{"title":"other","description":"","priority":"HIGH"}`)

	rec := do(t, h.List, http.MethodGet, "/v1/tasks?priority=HIGH", "", asUser(1))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var list []map[string]interface{}
	mustDecodeList(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(list), list)
	}
	if list[0]["title"] != "high" || list[0]["userId"] != float64(1) {
		t.Errorf("unexpected task: %v", list[0])
	}
	if store.listFilter.Priority != model.PriorityHigh {
		t.Errorf("priority filter not passed through: %+v", store.listFilter)
	}
	if store.listFilter.SortBy != "createdAt" {
		t.Errorf("default sort = %q, want createdAt", store.listFilter.SortBy)
	}
}

func TestListRejectsBadFilters(t *testing.T) {
	h, _ := newTaskFixture()
	for _, target := range []string{
		"/v1/tasks?status=NOPE",
		"/v1/tasks?priority=URGENT",
		"/v1/tasks?sort=title",
		"/v1/tasks?dueDate=tomorrow",
	} {
		rec := do(t, h.List, http.MethodGet, target, "", asUser(1))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestReplaceRequiresAllCoreFields(t *testing.T) {
	h, _ := newTaskFixture()
	createTask(t, h, 1, `{"title":"t","description":"d","priority":"LOW"}`)

	rec := do(t, h.Replace, http.MethodPut, "/v1/tasks/1",
		`{"title":"new","description":"d","priority":"LOW"}`, // dueDate missing
		asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("partial replace status = %d, want 400", rec.Code)
	}

	rec = do(t, h.Replace, http.MethodPut, "/v1/tasks/1",
		`{"title":"new","description":"nd","priority":"HIGH","dueDate":null}`,
		asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("full replace status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["title"] != "new" || body["priority"] != model.PriorityHigh || body["dueDate"] != nil {
		t.Errorf("replace result: %v", body)
	}
}

func TestPatchDistinguishesNullFromOmitted(t *testing.T) {
	h, _ := newTaskFixture()
	createTask(t, h, 1,
		`{"title":"t","description":"d","priority":"LOW","dueDate":"2026-09-15T00:00:00Z"}`)

	// Omitted dueDate leaves the deadline alone.
	rec := do(t, h.Patch, http.MethodPatch, "/v1/tasks/1",
		`{"title":"renamed"}`, asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["title"] != "renamed" {
		t.Errorf("title = %v", body["title"])
	}
	if body["dueDate"] == nil {
		t.Error("omitted dueDate was cleared")
	}

	// Explicit null clears it.
	rec = do(t, h.Patch, http.MethodPatch, "/v1/tasks/1",
		`{"dueDate":null}`, asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if body["dueDate"] != nil {
		t.Errorf("explicit null did not clear dueDate: %v", body["dueDate"])
	}
	if body["title"] != "renamed" {
		t.Errorf("patch touched an omitted field: %v", body["title"])
	}
}

func TestStatusTransitionsDriveCompletedAt(t *testing.T) {
	h, _ := newTaskFixture()
	createTask(t, h, 1, `{"title":"t","description":"d","priority":"LOW"}`)

	rec := do(t, h.PatchStatus, http.MethodPatch, "/v1/tasks/1/status",
		`{"status":"DONE"}`, asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != model.StatusDone || body["completedAt"] == nil {
		t.Errorf("DONE transition: %v", body)
	}

	// Moving away from DONE clears completedAt.
	rec = do(t, h.PatchStatus, http.MethodPatch, "/v1/tasks/1/status",
		`{"status":"PENDING"}`, asUser(1), withParam("id", "1"))
	body = decodeBody(t, rec)
	if body["status"] != model.StatusPending || body["completedAt"] != nil {
		t.Errorf("PENDING transition: %v", body)
	}

	// Unknown status is a validation error.
	rec = do(t, h.PatchStatus, http.MethodPatch, "/v1/tasks/1/status",
		`{"status":"ARCHIVED"}`, asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", rec.Code)
	}
}

func TestCompleteShorthand(t *testing.T) {
	h, _ := newTaskFixture()
	createTask(t, h, 1, `{"title":"t","description":"d","priority":"LOW"}`)

	rec := do(t, h.Complete, http.MethodPatch, "/v1/tasks/1/complete", "",
		asUser(1), withParam("id", "1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != model.StatusDone || body["completedAt"] == nil {
		t.Errorf("complete: %v", body)
	}

	// Completing someone else's task is a 404.
	rec = do(t, h.Complete, http.MethodPatch, "/v1/tasks/1/complete", "",
		asUser(2), withParam("id", "1"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign complete = %d, want 404", rec.Code)
	}
}
