package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	dom "github.com/alpaslanpro/todo-app/internal/domain"
	"github.com/alpaslanpro/todo-app/internal/dto"
	"github.com/alpaslanpro/todo-app/internal/handlers"
	"github.com/alpaslanpro/todo-app/internal/repo"
	"github.com/alpaslanpro/todo-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

type memRepo struct {
	todos  map[int64]dom.Todo
	nextID int64
	clock  time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		todos: map[int64]dom.Todo{},
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memRepo) Create(_ context.Context, title string, description *string) (dom.Todo, error) {
	m.nextID++
	now := m.tick()
	t := dom.Todo{
		ID: m.nextID, Title: title, Description: description,
		Status: dom.StatusNew, CreatedAt: now, UpdatedAt: now,
	}
	m.todos[t.ID] = t
	return t, nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (dom.Todo, error) {
	t, ok := m.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memRepo) List(_ context.Context, p repo.ListParams) (int64, []dom.Todo, error) {
	var filtered []dom.Todo
	for _, t := range m.todos {
		if p.Status != nil && t.Status != *p.Status {
			continue
		}
		filtered = append(filtered, t)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i].CreatedAt, filtered[j].CreatedAt
		if p.SortColumn == "updated_at" {
			a, b = filtered[i].UpdatedAt, filtered[j].UpdatedAt
		}
		if !a.Equal(b) {
			if p.Desc {
				return a.After(b)
			}
			return a.Before(b)
		}
		return filtered[i].ID < filtered[j].ID
	})
	total := int64(len(filtered))
	if p.Offset >= len(filtered) {
		return total, nil, nil
	}
	filtered = filtered[p.Offset:]
	if p.Limit < len(filtered) {
		filtered = filtered[:p.Limit]
	}
	return total, filtered, nil
}

func (m *memRepo) Update(_ context.Context, id int64, patch repo.UpdatePatch) (dom.Todo, error) {
	t, ok := m.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.DescriptionSet {
		t.Description = patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = m.tick()
	m.todos[id] = t
	return t, nil
}

func (m *memRepo) SetStatus(_ context.Context, id int64, status dom.Status) (dom.Todo, error) {
	t, ok := m.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	t.Status = status
	t.UpdatedAt = m.tick()
	m.todos[id] = t
	return t, nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.todos[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.todos, id)
	return nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewTodoHandler(service.NewTodoService(newMemRepo()))
	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PUT("/todos/:id", h.Update)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
	api.POST("/todos/:id/complete", h.Complete)
	api.POST("/todos/:id/in-progress", h.InProgress)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeTodo(t *testing.T, w *httptest.ResponseRecorder) dto.TodoResponse {
	t.Helper()
	var resp dto.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode todo response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) dto.ListTodosResponse {
	t.Helper()
	var resp dto.ListTodosResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return resp
}

func TestCreateTodo(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	w := doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"Buy milk"}`)
	assert.Equal(http.StatusCreated, w.Code)
	assert.Equal("/api/v1/todos/1", w.Header().Get("Location"))

	resp := decodeTodo(t, w)
	assert.Equal(int64(1), resp.ID)
	assert.Equal("Buy milk", resp.Title)
	assert.Equal("new", resp.Status)
	assert.Nil(resp.Description)
	assert.Equal(resp.CreatedAt, resp.UpdatedAt)

	// description must serialize as explicit null
	assert.Contains(w.Body.String(), `"description":null`)
}

func TestCreateTodoMissingTitle(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	w := doRequest(r, http.MethodPost, "/api/v1/todos", `{"description":"no title"}`)
	assert.Equal(http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"   "}`)
	assert.Equal(http.StatusBadRequest, w.Code)
}

func TestCreateTodoIgnoresCallerStatus(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	w := doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"sneaky","status":"completed"}`)
	assert.Equal(http.StatusCreated, w.Code)
	assert.Equal("new", decodeTodo(t, w).Status)
}

func TestListEmptyEnvelope(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	w := doRequest(r, http.MethodGet, "/api/v1/todos", "")
	assert.Equal(http.StatusOK, w.Code)

	resp := decodeList(t, w)
	assert.Equal(int64(0), resp.Total)
	assert.Equal(20, resp.Limit)
	assert.Equal(0, resp.Offset)
	assert.NotNil(resp.Data)
	assert.Len(resp.Data, 0)

	// data must be [] on the wire, not null
	assert.Contains(w.Body.String(), `"data":[]`)
}

func TestListQueryValidation(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	for _, path := range []string{
		"/api/v1/todos?status=archived",
		"/api/v1/todos?sortBy=title",
		"/api/v1/todos?order=sideways",
		"/api/v1/todos?limit=0",
		"/api/v1/todos?limit=-5",
		"/api/v1/todos?offset=-1",
	} {
		w := doRequest(r, http.MethodGet, path, "")
		assert.Equal(http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestListFilterAndTotal(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	for _, title := range []string{"one", "two", "three"} {
		w := doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"`+title+`"}`)
		assert.Equal(http.StatusCreated, w.Code)
	}
	assert.Equal(http.StatusOK, doRequest(r, http.MethodPost, "/api/v1/todos/2/in-progress", "").Code)
	assert.Equal(http.StatusOK, doRequest(r, http.MethodPost, "/api/v1/todos/3/complete", "").Code)

	w := doRequest(r, http.MethodGet, "/api/v1/todos?status=completed", "")
	assert.Equal(http.StatusOK, w.Code)
	resp := decodeList(t, w)
	assert.Equal(int64(1), resp.Total)
	assert.Len(resp.Data, 1)
	assert.Equal("completed", resp.Data[0].Status)

	// total reflects the filtered count even when limit truncates the page
	w = doRequest(r, http.MethodGet, "/api/v1/todos?limit=1", "")
	resp = decodeList(t, w)
	assert.Equal(int64(3), resp.Total)
	assert.Len(resp.Data, 1)
	assert.Equal(1, resp.Limit)
}

func TestListDefaultSortNewestFirst(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"older"}`)
	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"newer"}`)

	resp := decodeList(t, doRequest(r, http.MethodGet, "/api/v1/todos", ""))
	assert.Equal("newer", resp.Data[0].Title)
	assert.Equal("older", resp.Data[1].Title)

	resp = decodeList(t, doRequest(r, http.MethodGet, "/api/v1/todos?order=asc", ""))
	assert.Equal("older", resp.Data[0].Title)
}

func TestGetTodo(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"task","description":"details"}`)

	w := doRequest(r, http.MethodGet, "/api/v1/todos/1", "")
	assert.Equal(http.StatusOK, w.Code)
	resp := decodeTodo(t, w)
	assert.Equal("task", resp.Title)
	assert.Equal("details", *resp.Description)

	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodGet, "/api/v1/todos/99", "").Code)
	assert.Equal(http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/v1/todos/abc", "").Code)
}

func TestUpdateTodo(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"task","description":"details"}`)

	w := doRequest(r, http.MethodPatch, "/api/v1/todos/1", `{"title":"renamed"}`)
	assert.Equal(http.StatusOK, w.Code)
	resp := decodeTodo(t, w)
	assert.Equal("renamed", resp.Title)
	assert.Equal("details", *resp.Description)
	assert.Equal("new", resp.Status)

	// PUT routes to the same partial update
	w = doRequest(r, http.MethodPut, "/api/v1/todos/1", `{"status":"in_progress"}`)
	assert.Equal(http.StatusOK, w.Code)
	resp = decodeTodo(t, w)
	assert.Equal("in_progress", resp.Status)
	assert.Equal("renamed", resp.Title)
}

func TestUpdateTodoValidation(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"task"}`)

	assert.Equal(http.StatusBadRequest, doRequest(r, http.MethodPatch, "/api/v1/todos/1", `{}`).Code)
	assert.Equal(http.StatusBadRequest, doRequest(r, http.MethodPatch, "/api/v1/todos/1", `{"status":"done"}`).Code)
	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodPatch, "/api/v1/todos/99", `{"title":"x"}`).Code)
}

func TestDeleteTodo(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"task"}`)

	w := doRequest(r, http.MethodDelete, "/api/v1/todos/1", "")
	assert.Equal(http.StatusNoContent, w.Code)
	assert.Empty(w.Body.String())

	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodDelete, "/api/v1/todos/1", "").Code)
	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodGet, "/api/v1/todos/1", "").Code)
}

func TestTransitionEndpoints(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"task"}`)

	w := doRequest(r, http.MethodPost, "/api/v1/todos/1/complete", "")
	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("completed", decodeTodo(t, w).Status)

	w = doRequest(r, http.MethodPost, "/api/v1/todos/1/in-progress", "")
	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("in_progress", decodeTodo(t, w).Status)

	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodPost, "/api/v1/todos/42/complete", "").Code)
	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodPost, "/api/v1/todos/42/in-progress", "").Code)
}

// Full lifecycle: create, complete, delete, get.
func TestTodoLifecycle(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := newTestRouter()

	w := doRequest(r, http.MethodPost, "/api/v1/todos", `{"title":"Buy milk"}`)
	assert.Equal(http.StatusCreated, w.Code)
	created := decodeTodo(t, w)
	assert.Equal("new", created.Status)
	assert.Nil(created.Description)

	w = doRequest(r, http.MethodPost, "/api/v1/todos/1/complete", "")
	assert.Equal(http.StatusOK, w.Code)
	completed := decodeTodo(t, w)
	assert.Equal("completed", completed.Status)
	assert.True(completed.UpdatedAt.After(created.UpdatedAt))

	assert.Equal(http.StatusNoContent, doRequest(r, http.MethodDelete, "/api/v1/todos/1", "").Code)
	assert.Equal(http.StatusNotFound, doRequest(r, http.MethodGet, "/api/v1/todos/1", "").Code)
}
