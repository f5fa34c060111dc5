package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/alpaslanpro/todo-app/internal/domain"
	"github.com/alpaslanpro/todo-app/internal/repo"
	"github.com/alpaslanpro/todo-app/internal/utils"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("todo not found")
	ErrTitleRequired = errors.New("title must not be empty")
	ErrInvalidStatus = errors.New("status must be one of new, in_progress, completed")
	ErrEmptyUpdate   = errors.New("at least one field must be provided")
	ErrInvalidSort   = errors.New("invalid sort parameters")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListQuery carries raw list parameters as the caller sent them. Zero
// values mean "use the default".
type ListQuery struct {
	Limit  int
	Offset int
	Status string // "" = no filter
	SortBy string // "createdAt" | "updatedAt"
	Order  string // "asc" | "desc"
}

// ListResult is the envelope content: the filtered total plus the page,
// with the limit/offset actually applied.
type ListResult struct {
	Total  int64
	Limit  int
	Offset int
	Todos  []dom.Todo
}

type TodoService struct {
	repo repo.TodoRepo
}

func NewTodoService(r repo.TodoRepo) *TodoService {
	return &TodoService{repo: r}
}

// Create persists a new todo. Status always starts at "new"; the caller
// cannot choose it. An empty description is stored as NULL.
func (s *TodoService) Create(ctx context.Context, title string, description *string) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Todo{}, ErrTitleRequired
	}
	return s.repo.Create(ctx, title, trimDescription(description))
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}

func (s *TodoService) List(ctx context.Context, q ListQuery) (ListResult, error) {
	p, err := normalizeListQuery(q)
	if err != nil {
		return ListResult{}, err
	}
	total, todos, err := s.repo.List(ctx, p)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Total: total, Limit: p.Limit, Offset: p.Offset, Todos: todos}, nil
}

// Update applies a partial update: nil fields are left unchanged. An
// update that supplies no fields at all is rejected.
func (s *TodoService) Update(ctx context.Context, id int64, title, description, status *string) (dom.Todo, error) {
	if title == nil && description == nil && status == nil {
		return dom.Todo{}, ErrEmptyUpdate
	}
	patch := repo.UpdatePatch{}
	if title != nil {
		v := strings.TrimSpace(*title)
		if v == "" {
			return dom.Todo{}, ErrTitleRequired
		}
		patch.Title = &v
	}
	if description != nil {
		patch.Description = trimDescription(description)
		patch.DescriptionSet = true
	}
	if status != nil {
		st, ok := dom.ParseStatus(*status)
		if !ok {
			return dom.Todo{}, ErrInvalidStatus
		}
		patch.Status = &st
	}
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		if utils.IsPGCheckViolation(err) {
			return dom.Todo{}, ErrInvalidStatus
		}
		return dom.Todo{}, err
	}
	return t, nil
}

// Complete sets status to completed regardless of the current value.
func (s *TodoService) Complete(ctx context.Context, id int64) (dom.Todo, error) {
	return s.setStatus(ctx, id, dom.StatusCompleted)
}

// MarkInProgress sets status to in_progress regardless of the current value.
func (s *TodoService) MarkInProgress(ctx context.Context, id int64) (dom.Todo, error) {
	return s.setStatus(ctx, id, dom.StatusInProgress)
}

func (s *TodoService) setStatus(ctx context.Context, id int64, status dom.Status) (dom.Todo, error) {
	t, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func normalizeListQuery(q ListQuery) (repo.ListParams, error) {
	p := repo.ListParams{Limit: q.Limit, Offset: q.Offset}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if q.Status != "" {
		st, ok := dom.ParseStatus(q.Status)
		if !ok {
			return repo.ListParams{}, ErrInvalidStatus
		}
		p.Status = &st
	}
	switch q.SortBy {
	case "", "createdAt":
		p.SortColumn = "created_at"
	case "updatedAt":
		p.SortColumn = "updated_at"
	default:
		return repo.ListParams{}, ErrInvalidSort
	}
	switch q.Order {
	case "", "desc":
		p.Desc = true
	case "asc":
		p.Desc = false
	default:
		return repo.ListParams{}, ErrInvalidSort
	}
	return p, nil
}

func trimDescription(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil
	}
	return &v
}
