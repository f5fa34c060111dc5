package dto

import "time"

type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateTodoRequest is a partial update: nil means "leave unchanged".
type UpdateTodoRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      *string `json:"status" binding:"omitempty,oneof=new in_progress completed"`
}

// ListTodosQuery binds GET /todos query parameters. Invalid enum values
// and out-of-range numbers are rejected at binding time with 400.
type ListTodosQuery struct {
	Limit  int    `form:"limit,default=20" binding:"min=1"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Status string `form:"status" binding:"omitempty,oneof=new in_progress completed"`
	SortBy string `form:"sortBy,default=createdAt" binding:"oneof=createdAt updatedAt"`
	Order  string `form:"order,default=desc" binding:"oneof=asc desc"`
}

// TodoResponse uses camelCase field names on the wire; the store model
// stays snake_case. Description serializes as null when unset.
type TodoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListTodosResponse is the pagination envelope. Total is the filtered
// count before pagination, not the page size.
type ListTodosResponse struct {
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Data   []TodoResponse `json:"data"`
}
