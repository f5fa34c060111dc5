package repo

import (
	"context"
	"fmt"

	dom "github.com/alpaslanpro/todo-app/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = "id, title, description, status, created_at, updated_at"

// ListParams describe a filtered, sorted, paginated page request.
// SortColumn must be "created_at" or "updated_at" (anything else falls
// back to created_at).
type ListParams struct {
	Status     *dom.Status
	SortColumn string
	Desc       bool
	Limit      int
	Offset     int
}

// UpdatePatch carries the fields of a partial update. Nil pointer means
// "leave unchanged". Description uses an explicit set flag so the caller
// can clear it to NULL.
type UpdatePatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Status         *dom.Status
}

type TodoRepo interface {
	Create(ctx context.Context, title string, description *string) (dom.Todo, error)
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	List(ctx context.Context, p ListParams) (total int64, todos []dom.Todo, err error)
	Update(ctx context.Context, id int64, patch UpdatePatch) (dom.Todo, error)
	SetStatus(ctx context.Context, id int64, status dom.Status) (dom.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, title string, description *string) (dom.Todo, error) {
	query := `
		INSERT INTO todos (title, description)
		VALUES ($1, $2)
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query, title, description))
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	return scanTodo(r.db.QueryRow(ctx, query, id))
}

// List runs the count and the page query in one read-only transaction so
// total and data come from the same snapshot.
func (r *PGTodoRepo) List(ctx context.Context, p ListParams) (int64, []dom.Todo, error) {
	where := ""
	args := []any{}
	if p.Status != nil {
		where = " WHERE status = $1"
		args = append(args, string(*p.Status))
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback(ctx)

	var total int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM todos"+where, args...).Scan(&total); err != nil {
		return 0, nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM todos%s %s LIMIT $%d OFFSET $%d",
		todoColumns, where, orderClause(p), len(args)+1, len(args)+2)
	rows, err := tx.Query(ctx, query, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var list []dom.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return 0, nil, err
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}
	return total, list, nil
}

// Update applies the patch in a single conditional UPDATE; there is no
// prior existence read, so concurrent updates cannot be lost between a
// check and a write. Missing rows surface as pgx.ErrNoRows.
func (r *PGTodoRepo) Update(ctx context.Context, id int64, patch UpdatePatch) (dom.Todo, error) {
	query := `
		UPDATE todos
		SET title = COALESCE($2, title),
		    description = CASE WHEN $3 THEN $4 ELSE description END,
		    status = COALESCE($5, status),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + todoColumns
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	return scanTodo(r.db.QueryRow(ctx, query, id, patch.Title, patch.DescriptionSet, patch.Description, status))
}

func (r *PGTodoRepo) SetStatus(ctx context.Context, id int64, status dom.Status) (dom.Todo, error) {
	query := `
		UPDATE todos SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query, id, string(status)))
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// orderClause always appends id ASC as a secondary key so pages stay
// stable when the sort column has duplicate timestamps.
func orderClause(p ListParams) string {
	col := "created_at"
	if p.SortColumn == "updated_at" {
		col = "updated_at"
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return "ORDER BY " + col + " " + dir + ", id ASC"
}

func scanTodo(row pgx.Row) (dom.Todo, error) {
	var t dom.Todo
	var status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return dom.Todo{}, err
	}
	t.Status = dom.Status(status)
	return t, nil
}
