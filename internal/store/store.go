// Package store defines the port every entity backend implements.
package store

import (
	"context"
	"errors"

	"flathub/internal/core"
)

// ErrNotFound is returned when a referenced id does not exist. Handlers
// map it to 404; everything else is a 500.
var ErrNotFound = errors.New("not found")

// Store is keyed, process-lifetime storage for every entity type. Ids are
// assigned per type, starting at 1, strictly increasing and never reused,
// even after deletion. Create operations stamp creation timestamps where
// the entity carries one. Update operations merge partial fields without
// semantic validation; that is the caller's job.
//
// CreateActivity exists on the interface but is only invoked by the
// service layer's post-mutation recorder in normal flow.
type Store interface {
	Flatmates(ctx context.Context) ([]core.Flatmate, error)
	Flatmate(ctx context.Context, id int64) (core.Flatmate, error)
	CreateFlatmate(ctx context.Context, n core.NewFlatmate) (core.Flatmate, error)

	Tasks(ctx context.Context) ([]core.Task, error)
	Task(ctx context.Context, id int64) (core.Task, error)
	CreateTask(ctx context.Context, n core.NewTask) (core.Task, error)
	UpdateTask(ctx context.Context, id int64, u core.TaskUpdate) (core.Task, error)

	GroceryItems(ctx context.Context) ([]core.GroceryItem, error)
	GroceryItem(ctx context.Context, id int64) (core.GroceryItem, error)
	CreateGroceryItem(ctx context.Context, n core.NewGroceryItem) (core.GroceryItem, error)
	UpdateGroceryItem(ctx context.Context, id int64, u core.GroceryItemUpdate) (core.GroceryItem, error)
	// DeleteGroceryItem reports whether a record was actually removed;
	// deleting an absent id is false, not an error.
	DeleteGroceryItem(ctx context.Context, id int64) (bool, error)

	Expenses(ctx context.Context) ([]core.Expense, error)
	Expense(ctx context.Context, id int64) (core.Expense, error)
	CreateExpense(ctx context.Context, n core.NewExpense) (core.Expense, error)

	// ExpenseShares returns all shares, or only those of one expense when
	// expenseID is non-nil.
	ExpenseShares(ctx context.Context, expenseID *int64) ([]core.ExpenseShare, error)
	CreateExpenseShare(ctx context.Context, n core.NewExpenseShare) (core.ExpenseShare, error)
	UpdateExpenseShare(ctx context.Context, id int64, u core.ExpenseShareUpdate) (core.ExpenseShare, error)

	// Activities returns the feed newest first, truncated to limit.
	Activities(ctx context.Context, limit int) ([]core.Activity, error)
	CreateActivity(ctx context.Context, n core.NewActivity) (core.Activity, error)
}
