// Package services orchestrates mutations against the store and owns the
// activity-log side effect.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flathub/internal/core"
	"flathub/internal/store"
)

// ActivityHook is notified after an activity has been recorded. Hooks run
// best-effort: a failing hook never fails the mutation that triggered it.
type ActivityHook interface {
	ActivityRecorded(ctx context.Context, a core.Activity)
}

// Household implements the mutation operations of the dashboard. Every
// mutation goes to the store first; the activity side effect is an
// explicit post-mutation step rather than something buried in the store,
// so composite operations share one recording path.
type Household struct {
	store store.Store
	hooks []ActivityHook
}

func NewHousehold(st store.Store, hooks ...ActivityHook) *Household {
	return &Household{store: st, hooks: hooks}
}

// recordActivity appends a feed entry and notifies hooks. The mutation
// that triggered it has already been persisted, so a failing append is
// logged and swallowed rather than surfaced to the caller.
func (h *Household) recordActivity(ctx context.Context, n core.NewActivity) {
	a, err := h.store.CreateActivity(ctx, n)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record activity",
			"type", n.Type, "user_id", n.UserID, "error", err)
		return
	}
	for _, hook := range h.hooks {
		hook.ActivityRecorded(ctx, a)
	}
}

// Reads are plain passthroughs.

func (h *Household) Flatmates(ctx context.Context) ([]core.Flatmate, error) {
	return h.store.Flatmates(ctx)
}

func (h *Household) Tasks(ctx context.Context) ([]core.Task, error) {
	return h.store.Tasks(ctx)
}

func (h *Household) GroceryItems(ctx context.Context) ([]core.GroceryItem, error) {
	return h.store.GroceryItems(ctx)
}

func (h *Household) Expenses(ctx context.Context) ([]core.Expense, error) {
	return h.store.Expenses(ctx)
}

func (h *Household) ExpenseShares(ctx context.Context, expenseID *int64) ([]core.ExpenseShare, error) {
	return h.store.ExpenseShares(ctx, expenseID)
}

func (h *Household) Activities(ctx context.Context, limit int) ([]core.Activity, error) {
	return h.store.Activities(ctx, limit)
}

// CreateTask stores the task and logs a task_created activity attributed
// to the creator.
func (h *Household) CreateTask(ctx context.Context, n core.NewTask) (core.Task, error) {
	if err := n.Validate(); err != nil {
		return core.Task{}, err
	}
	t, err := h.store.CreateTask(ctx, n)
	if err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	h.recordActivity(ctx, core.NewActivity{
		Type:        core.ActivityTaskCreated,
		Description: fmt.Sprintf("created task: %s", t.Title),
		UserID:      t.CreatedBy,
	})
	return t, nil
}

// CompleteTask marks a task done and logs a task_completed activity
// attributed to completedBy. The flatmate id is not validated against the
// flatmate collection. Re-completing an already-completed task is allowed:
// it overwrites the completion metadata and appends another activity.
func (h *Household) CompleteTask(ctx context.Context, id, completedBy int64) (core.Task, error) {
	completed := true
	now := time.Now()
	t, err := h.store.UpdateTask(ctx, id, core.TaskUpdate{
		Completed:   &completed,
		CompletedAt: &now,
		CompletedBy: &completedBy,
	})
	if err != nil {
		return core.Task{}, err
	}
	h.recordActivity(ctx, core.NewActivity{
		Type:        core.ActivityTaskCompleted,
		Description: fmt.Sprintf("completed %s", t.Title),
		UserID:      completedBy,
	})
	return t, nil
}

// CreateGroceryItem stores the item and logs a grocery_added activity
// attributed to the adder.
func (h *Household) CreateGroceryItem(ctx context.Context, n core.NewGroceryItem) (core.GroceryItem, error) {
	if err := n.Validate(); err != nil {
		return core.GroceryItem{}, err
	}
	g, err := h.store.CreateGroceryItem(ctx, n)
	if err != nil {
		return core.GroceryItem{}, fmt.Errorf("create grocery item: %w", err)
	}
	h.recordActivity(ctx, core.NewActivity{
		Type:        core.ActivityGroceryAdded,
		Description: fmt.Sprintf("added %s to grocery list", g.Name),
		UserID:      g.AddedBy,
	})
	return g, nil
}

// UpdateGroceryItem and DeleteGroceryItem have no activity side effect.

func (h *Household) UpdateGroceryItem(ctx context.Context, id int64, u core.GroceryItemUpdate) (core.GroceryItem, error) {
	return h.store.UpdateGroceryItem(ctx, id, u)
}

func (h *Household) DeleteGroceryItem(ctx context.Context, id int64) (bool, error) {
	return h.store.DeleteGroceryItem(ctx, id)
}

// CreateExpense stores the expense and logs an expense_paid activity
// attributed to the payer. The activity says "paid" even though creating
// an expense marks no share as paid; that wording is long-established and
// the feed rendering depends on it.
func (h *Household) CreateExpense(ctx context.Context, n core.NewExpense) (core.Expense, error) {
	if err := n.Validate(); err != nil {
		return core.Expense{}, err
	}
	e, err := h.store.CreateExpense(ctx, n)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	h.recordActivity(ctx, core.NewActivity{
		Type:        core.ActivityExpensePaid,
		Description: fmt.Sprintf("paid $%s for %s", e.Amount, e.Description),
		UserID:      e.PaidBy,
	})
	return e, nil
}

// CreateExpenseWithShares creates the expense, then appends each share
// individually. The two steps are not transactional: a share failing
// validation partway leaves the expense and the earlier shares in place
// with no rollback.
func (h *Household) CreateExpenseWithShares(ctx context.Context, n core.NewExpense, shares []core.NewExpenseShare) (core.Expense, error) {
	e, err := h.CreateExpense(ctx, n)
	if err != nil {
		return core.Expense{}, err
	}
	for _, sh := range shares {
		sh.ExpenseID = e.ID
		if err := sh.Validate(); err != nil {
			return core.Expense{}, err
		}
		if _, err := h.store.CreateExpenseShare(ctx, sh); err != nil {
			return core.Expense{}, fmt.Errorf("create expense share: %w", err)
		}
	}
	return e, nil
}

// CreateExpenseShare is a plain insert; the parent expense is not checked.
func (h *Household) CreateExpenseShare(ctx context.Context, n core.NewExpenseShare) (core.ExpenseShare, error) {
	if err := n.Validate(); err != nil {
		return core.ExpenseShare{}, err
	}
	return h.store.CreateExpenseShare(ctx, n)
}

// UpdateExpenseShare is used to toggle the paid flag.
func (h *Household) UpdateExpenseShare(ctx context.Context, id int64, u core.ExpenseShareUpdate) (core.ExpenseShare, error) {
	return h.store.UpdateExpenseShare(ctx, id, u)
}

// DashboardStats recomputes the aggregate block from full entity lists.
func (h *Household) DashboardStats(ctx context.Context) (core.DashboardStats, error) {
	tasks, err := h.store.Tasks(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("load tasks: %w", err)
	}
	flatmates, err := h.store.Flatmates(ctx)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("load flatmates: %w", err)
	}
	shares, err := h.store.ExpenseShares(ctx, nil)
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("load shares: %w", err)
	}
	return core.ComputeDashboardStats(tasks, len(flatmates), shares, time.Now()), nil
}

// FlatmateBalance reports the net unpaid amount for one flatmate. The
// flatmate must exist; the shares themselves are not cross-checked.
func (h *Household) FlatmateBalance(ctx context.Context, flatmateID int64) (core.FlatmateBalance, error) {
	if _, err := h.store.Flatmate(ctx, flatmateID); err != nil {
		return core.FlatmateBalance{}, err
	}
	shares, err := h.store.ExpenseShares(ctx, nil)
	if err != nil {
		return core.FlatmateBalance{}, fmt.Errorf("load shares: %w", err)
	}
	return core.ComputeFlatmateBalance(flatmateID, shares), nil
}
