package handler

// In-memory store fakes used across the handler tests. Each fake exposes
// function fields so a test can override exactly the calls it cares about;
// unset fields fall back to a small in-memory implementation good enough
// for the happy path.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/willianramosdev-stack/todoApp/internal/cache"
	"github.com/willianramosdev-stack/todoApp/internal/config"
	"github.com/willianramosdev-stack/todoApp/internal/middleware"
	"github.com/willianramosdev-stack/todoApp/internal/model"
	"github.com/willianramosdev-stack/todoApp/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		Env:              "test",
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTTLMin:     480,
		RefreshTTLDays:   7,
		BcryptCost:       bcrypt.MinCost,
		ResetOTPTTLMin:   15,
	}
}

// --- user store fake ---

type fakeUserStore struct {
	nextID  uint64
	byID    map[uint64]model.User
	byEmail map[string]uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byID: map[uint64]model.User{}, byEmail: map[string]uint64{}}
}

func (f *fakeUserStore) Create(_ context.Context, fullName string, age int, email, passwordHash string) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	id := f.nextID
	f.nextID++
	now := time.Now().UTC()
	f.byID[id] = model.User{ID: id, FullName: fullName, Age: age, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	f.byEmail[email] = id
	return id, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return f.byID[id], nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uint64, upd repository.UserUpdate) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Email != nil {
		if other, exists := f.byEmail[*upd.Email]; exists && other != id {
			return repository.ErrEmailExists
		}
		delete(f.byEmail, u.Email)
		u.Email = *upd.Email
		f.byEmail[u.Email] = id
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Age != nil {
		u.Age = *upd.Age
	}
	u.UpdatedAt = time.Now().UTC()
	f.byID[id] = u
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.byID[id] = u
	return nil
}

// --- token store fake ---

type fakeTokenStore struct {
	rows map[string]model.RefreshToken // keyed by hash
	// revokeErr, when set, is returned by RevokeByHash before any mutation.
	revokeErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[string]model.RefreshToken{}}
}

func (f *fakeTokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.rows[tokenHash] = model.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp}
	return nil
}

func (f *fakeTokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	row, ok := f.rows[tokenHash]
	if !ok || row.RevokedAt != nil || time.Now().UTC().After(row.ExpiresAt) {
		return 0, repository.ErrNotFound
	}
	return row.UserID, nil
}

func (f *fakeTokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if row, ok := f.rows[tokenHash]; ok && row.RevokedAt == nil {
		now := time.Now().UTC()
		row.RevokedAt = &now
		f.rows[tokenHash] = row
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	now := time.Now().UTC()
	for h, row := range f.rows {
		if row.UserID == userID && row.RevokedAt == nil {
			row.RevokedAt = &now
			f.rows[h] = row
		}
	}
	return nil
}

func (f *fakeTokenStore) activeCount(userID uint64) int {
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID && row.RevokedAt == nil {
			n++
		}
	}
	return n
}

// --- reset store fake ---

type fakeResetStore struct {
	users  *fakeUserStore
	nextID uint64
	rows   []model.PasswordResetToken
}

func newFakeResetStore(users *fakeUserStore) *fakeResetStore {
	return &fakeResetStore{users: users, nextID: 1}
}

func (f *fakeResetStore) CreateReset(_ context.Context, userID uint64, code string, expiresAt time.Time) error {
	f.rows = append(f.rows, model.PasswordResetToken{
		ID: f.nextID, UserID: userID, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now().UTC(),
	})
	f.nextID++
	return nil
}

func (f *fakeResetStore) Redeem(ctx context.Context, code, newPasswordHash string) error {
	now := time.Now().UTC()
	for i := len(f.rows) - 1; i >= 0; i-- {
		row := f.rows[i]
		if row.Code == code && !row.Used && row.ExpiresAt.After(now) {
			f.rows[i].Used = true
			return f.users.UpdatePassword(ctx, row.UserID, newPasswordHash)
		}
	}
	return repository.ErrResetInvalid
}

// --- task store fake ---

type fakeTaskStore struct {
	nextID uint64
	rows   map[uint64]model.Task
	// listFilter records the last filter passed to ListForUser.
	listFilter repository.TaskFilter
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, rows: map[uint64]model.Task{}}
}

func (f *fakeTaskStore) Create(_ context.Context, t *model.Task) (uint64, error) {
	id := f.nextID
	f.nextID++
	now := time.Now().UTC()
	stored := *t
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.rows[id] = stored
	return id, nil
}

func (f *fakeTaskStore) GetForUser(_ context.Context, id, userID uint64) (model.Task, error) {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return model.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTaskStore) ListForUser(_ context.Context, userID uint64, filter repository.TaskFilter) ([]model.Task, error) {
	f.listFilter = filter
	out := make([]model.Task, 0)
	for _, t := range f.rows {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) Replace(_ context.Context, id, userID uint64, title, description, priority string, dueDate *time.Time) error {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	t.Title, t.Description, t.Priority, t.DueDate = title, description, priority, dueDate
	t.UpdatedAt = time.Now().UTC()
	f.rows[id] = t
	return nil
}

func (f *fakeTaskStore) Patch(_ context.Context, id, userID uint64, p repository.TaskPatch) error {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDateSet {
		t.DueDate = p.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	f.rows[id] = t
	return nil
}

func (f *fakeTaskStore) SetStatus(_ context.Context, id, userID uint64, status string) error {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	t.Status = status
	if status == model.StatusDone {
		now := time.Now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = time.Now().UTC()
	f.rows[id] = t
	return nil
}

// --- request plumbing ---

type ctxOption func(echo.Context)

func asUser(id uint64) ctxOption {
	return func(c echo.Context) { c.Set(middleware.UserIDKey, id) }
}

func withParam(name, value string) ctxOption {
	return func(c echo.Context) {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
}

func withCookie(name, value string) ctxOption {
	return func(c echo.Context) {
		c.Request().AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func withHeader(name, value string) ctxOption {
	return func(c echo.Context) { c.Request().Header.Set(name, value) }
}

// do runs a handler against a synthetic JSON request.
func do(t *testing.T, h echo.HandlerFunc, method, target, body string, opts ...ctxOption) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	reader := strings.NewReader(body)
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for _, opt := range opts {
		opt(c)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func mustDecodeList(t *testing.T, rec *httptest.ResponseRecorder, into *[]map[string]interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode list %q: %v", rec.Body.String(), err)
	}
}

func noopCache() *cache.TaskCache { return cache.NewTaskCache(nil, 0) }
