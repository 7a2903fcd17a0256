package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"flathub/internal/core"
	"flathub/internal/store"
	"flathub/internal/store/memory"
)

type captureHook struct {
	seen []core.Activity
}

func (c *captureHook) ActivityRecorded(_ context.Context, a core.Activity) {
	c.seen = append(c.seen, a)
}

func newHousehold() (*Household, *captureHook) {
	hook := &captureHook{}
	return NewHousehold(memory.New(), hook), hook
}

func validTask() core.NewTask {
	return core.NewTask{
		Title:     "Clean Kitchen",
		Category:  core.CategoryCleaning,
		DueDate:   time.Now().Add(2 * time.Hour),
		CreatedBy: 1,
	}
}

func TestCreateTaskRecordsActivity(t *testing.T) {
	ctx := context.Background()
	h, hook := newHousehold()

	task, err := h.CreateTask(ctx, validTask())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("new task should be incomplete: %+v", task)
	}

	feed, _ := h.Activities(ctx, 10)
	if len(feed) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(feed))
	}
	a := feed[0]
	if a.Type != core.ActivityTaskCreated || a.UserID != 1 {
		t.Fatalf("unexpected activity: %+v", a)
	}
	if a.Description != "created task: Clean Kitchen" {
		t.Fatalf("unexpected description: %q", a.Description)
	}
	if len(hook.seen) != 1 || hook.seen[0].ID != a.ID {
		t.Fatalf("hook not notified with stored activity: %+v", hook.seen)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	ctx := context.Background()
	h, hook := newHousehold()

	bad := validTask()
	bad.Title = ""
	if _, err := h.CreateTask(ctx, bad); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if len(hook.seen) != 0 {
		t.Fatalf("failed create must not record activity")
	}
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()
	h, _ := newHousehold()

	task, _ := h.CreateTask(ctx, validTask())

	done, err := h.CompleteTask(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || done.CompletedBy == nil || *done.CompletedBy != 2 {
		t.Fatalf("completion metadata not set: %+v", done)
	}

	feed, _ := h.Activities(ctx, 10)
	// task_created plus task_completed.
	if len(feed) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(feed))
	}
	if feed[0].Type != core.ActivityTaskCompleted || feed[0].UserID != 2 {
		t.Fatalf("unexpected newest activity: %+v", feed[0])
	}
	if feed[0].Description != "completed Clean Kitchen" {
		t.Fatalf("unexpected description: %q", feed[0].Description)
	}
}

func TestCompleteTaskUnknownID(t *testing.T) {
	ctx := context.Background()
	h, hook := newHousehold()

	if _, err := h.CompleteTask(ctx, 42, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(hook.seen) != 0 {
		t.Fatalf("failed completion must not record activity")
	}
}

func TestRecompleteTaskAppendsAgain(t *testing.T) {
	ctx := context.Background()
	h, _ := newHousehold()

	task, _ := h.CreateTask(ctx, validTask())
	first, _ := h.CompleteTask(ctx, task.ID, 2)

	// There is no idempotence guard: completing again succeeds, overwrites
	// the metadata and appends a second task_completed activity.
	second, err := h.CompleteTask(ctx, task.ID, 3)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if *second.CompletedBy != 3 {
		t.Fatalf("completion metadata not overwritten: %+v", second)
	}
	if !second.CompletedAt.After(*first.CompletedAt) && !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completedAt went backwards")
	}

	feed, _ := h.Activities(ctx, 10)
	completed := 0
	for _, a := range feed {
		if a.Type == core.ActivityTaskCompleted {
			completed++
		}
	}
	if completed != 2 {
		t.Fatalf("expected 2 task_completed activities, got %d", completed)
	}
}

func TestCreateGroceryItemRecordsActivity(t *testing.T) {
	ctx := context.Background()
	h, _ := newHousehold()

	item, err := h.CreateGroceryItem(ctx, core.NewGroceryItem{Name: "Milk (2L)", AddedBy: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	feed, _ := h.Activities(ctx, 10)
	if len(feed) != 1 || feed[0].Type != core.ActivityGroceryAdded {
		t.Fatalf("expected one grocery_added activity, got %+v", feed)
	}
	if feed[0].Description != "added Milk (2L) to grocery list" {
		t.Fatalf("unexpected description: %q", feed[0].Description)
	}

	// Update and delete are silent.
	done := true
	if _, err := h.UpdateGroceryItem(ctx, item.ID, core.GroceryItemUpdate{Completed: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok, _ := h.DeleteGroceryItem(ctx, item.ID); !ok {
		t.Fatalf("delete should succeed")
	}
	feed, _ = h.Activities(ctx, 10)
	if len(feed) != 1 {
		t.Fatalf("update/delete must not add activities, got %d", len(feed))
	}
}

func TestCreateExpenseRecordsPaidActivity(t *testing.T) {
	ctx := context.Background()
	h, _ := newHousehold()

	_, err := h.CreateExpense(ctx, core.NewExpense{
		Description: "groceries",
		Amount:      core.Money{Cents: 3450},
		Category:    core.ExpenseGroceries,
		PaidBy:      4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	feed, _ := h.Activities(ctx, 10)
	if len(feed) != 1 || feed[0].Type != core.ActivityExpensePaid {
		t.Fatalf("expected one expense_paid activity, got %+v", feed)
	}
	if feed[0].Description != "paid $34.50 for groceries" {
		t.Fatalf("unexpected description: %q", feed[0].Description)
	}
}

func TestCreateExpenseWithSharesNonAtomic(t *testing.T) {
	ctx := context.Background()
	h, _ := newHousehold()

	good := core.NewExpenseShare{FlatmateID: 1, Amount: core.Money{Cents: 1000}, Paid: true}
	bad := core.NewExpenseShare{FlatmateID: 0, Amount: core.Money{Cents: 1000}}

	_, err := h.CreateExpenseWithShares(ctx, core.NewExpense{
		Description: "dinner",
		Amount:      core.Money{Cents: 3000},
		Category:    core.ExpenseOther,
		PaidBy:      1,
	}, []core.NewExpenseShare{good, bad})
	if !errors.Is(err, core.ErrMissingFlatmate) {
		t.Fatalf("expected share validation error, got %v", err)
	}

	// No rollback: the expense and the first share persist.
	expenses, _ := h.Expenses(ctx)
	if len(expenses) != 1 {
		t.Fatalf("expected expense to persist, got %d", len(expenses))
	}
	shares, _ := h.ExpenseShares(ctx, nil)
	if len(shares) != 1 {
		t.Fatalf("expected the first share to persist, got %d", len(shares))
	}
	if shares[0].ExpenseID != expenses[0].ID {
		t.Fatalf("share not linked to created expense: %+v", shares[0])
	}
}

func TestFlatmateBalance(t *testing.T) {
	ctx := context.Background()
	h := NewHousehold(memory.NewSeeded())

	e, _ := h.CreateExpense(ctx, core.NewExpense{
		Description: "utilities",
		Amount:      core.Money{Cents: 2500},
		Category:    core.ExpenseUtilities,
		PaidBy:      1,
	})
	h.CreateExpenseShare(ctx, core.NewExpenseShare{ExpenseID: e.ID, FlatmateID: 2, Amount: core.Money{Cents: 500}})
	h.CreateExpenseShare(ctx, core.NewExpenseShare{ExpenseID: e.ID, FlatmateID: 2, Amount: core.Money{Cents: 750}})

	b, err := h.FlatmateBalance(ctx, 2)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.Status != core.BalanceOwes || b.Amount != "12.50" {
		t.Fatalf("expected owes 12.50, got %s %s", b.Status, b.Amount)
	}

	b, _ = h.FlatmateBalance(ctx, 3)
	if b.Status != core.BalanceEven || b.Amount != "0.00" {
		t.Fatalf("expected even 0.00, got %s %s", b.Status, b.Amount)
	}

	if _, err := h.FlatmateBalance(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown flatmate, got %v", err)
	}
}
