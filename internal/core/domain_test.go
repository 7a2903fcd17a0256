package core

import (
	"errors"
	"testing"
	"time"
)

func validNewTask() NewTask {
	return NewTask{
		Title:     "Clean Kitchen",
		Category:  CategoryCleaning,
		DueDate:   time.Now().Add(2 * time.Hour),
		CreatedBy: 1,
	}
}

func TestNewTaskValidate(t *testing.T) {
	if err := validNewTask().Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*NewTask)
		want   error
	}{
		{"empty title", func(n *NewTask) { n.Title = "  " }, ErrEmptyTitle},
		{"bad category", func(n *NewTask) { n.Category = "laundry" }, ErrInvalidCategory},
		{"zero due date", func(n *NewTask) { n.DueDate = time.Time{} }, ErrZeroDueDate},
		{"missing creator", func(n *NewTask) { n.CreatedBy = 0 }, ErrMissingFlatmate},
	}
	for _, tc := range cases {
		n := validNewTask()
		tc.mutate(&n)
		if err := n.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestNewExpenseValidate(t *testing.T) {
	valid := NewExpense{
		Description: "Groceries",
		Amount:      Money{Cents: 3450},
		Category:    ExpenseGroceries,
		PaidBy:      1,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	bad := valid
	bad.Amount = Money{Cents: -1}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	bad = valid
	bad.Category = "fun"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}

	// Zero amounts are allowed; "non-negative" is the only constraint.
	zero := valid
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount rejected: %v", err)
	}
}

func TestNewGroceryItemValidate(t *testing.T) {
	if err := (NewGroceryItem{Name: "Milk (2L)", AddedBy: 3}).Validate(); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}
	if err := (NewGroceryItem{Name: "", AddedBy: 3}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (NewGroceryItem{Name: "Bread"}).Validate(); !errors.Is(err, ErrMissingFlatmate) {
		t.Fatalf("expected ErrMissingFlatmate, got %v", err)
	}
}

func TestNewExpenseShareValidate(t *testing.T) {
	// The parent expense id is deliberately not checked.
	if err := (NewExpenseShare{ExpenseID: 999, FlatmateID: 1, Amount: Money{Cents: 100}}).Validate(); err != nil {
		t.Fatalf("share with unknown expense rejected: %v", err)
	}
	if err := (NewExpenseShare{FlatmateID: 0, Amount: Money{Cents: 100}}).Validate(); !errors.Is(err, ErrMissingFlatmate) {
		t.Fatalf("expected ErrMissingFlatmate, got %v", err)
	}
}
