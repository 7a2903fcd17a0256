package core

import (
	"errors"
	"strings"
	"time"
)

// Task categories. The dashboard only knows these three.
const (
	CategoryCleaning  = "cleaning"
	CategoryGroceries = "groceries"
	CategoryGarbage   = "garbage"
)

// Expense categories.
const (
	ExpenseGroceries = "groceries"
	ExpenseUtilities = "utilities"
	ExpenseHousehold = "household"
	ExpenseOther     = "other"
)

// Activity types. Activities are append-only; they are produced as a
// byproduct of mutations, never created directly by API callers.
const (
	ActivityTaskCreated   = "task_created"
	ActivityTaskCompleted = "task_completed"
	ActivityGroceryAdded  = "grocery_added"
	ActivityExpensePaid   = "expense_paid"
)

type (
	// Flatmate is a household member. Immutable after creation.
	Flatmate struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Initials string `json:"initials"`
		Color    string `json:"color"`
	}

	// Task is a shared chore. CompletedAt and CompletedBy are set together
	// on completion and stay set; there is no un-complete transition.
	Task struct {
		ID          int64      `json:"id"`
		Title       string     `json:"title"`
		Description *string    `json:"description"`
		Category    string     `json:"category"`
		AssignedTo  *int64     `json:"assignedTo"`
		DueDate     time.Time  `json:"dueDate"`
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completedAt"`
		CompletedBy *int64     `json:"completedBy"`
		CreatedBy   int64      `json:"createdBy"`
		CreatedAt   time.Time  `json:"createdAt"`
	}

	// GroceryItem is an entry on the shared grocery list.
	GroceryItem struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Quantity  *string   `json:"quantity"`
		Completed bool      `json:"completed"`
		AddedBy   int64     `json:"addedBy"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Expense is a shared payment made by one flatmate. Immutable after
	// creation; who owes what lives in the expense shares.
	Expense struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		PaidBy      int64     `json:"paidBy"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// ExpenseShare is one flatmate's portion of an expense, with its own
	// paid flag independent of the parent expense.
	ExpenseShare struct {
		ID         int64 `json:"id"`
		ExpenseID  int64 `json:"expenseId"`
		FlatmateID int64 `json:"flatmateId"`
		Amount     Money `json:"amount"`
		Paid       bool  `json:"paid"`
	}

	// Activity is an immutable feed entry describing a past mutation.
	Activity struct {
		ID          int64     `json:"id"`
		Type        string    `json:"type"`
		Description string    `json:"description"`
		UserID      int64     `json:"userId"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

// Creation inputs. Ids and creation timestamps are always assigned by the
// store, never accepted from callers.
type (
	NewFlatmate struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Initials string `json:"initials"`
		Color    string `json:"color"`
	}

	NewTask struct {
		Title       string    `json:"title"`
		Description *string   `json:"description"`
		Category    string    `json:"category"`
		AssignedTo  *int64    `json:"assignedTo"`
		DueDate     time.Time `json:"dueDate"`
		CreatedBy   int64     `json:"createdBy"`
	}

	NewGroceryItem struct {
		Name     string  `json:"name"`
		Quantity *string `json:"quantity"`
		AddedBy  int64   `json:"addedBy"`
	}

	NewExpense struct {
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		PaidBy      int64  `json:"paidBy"`
	}

	NewExpenseShare struct {
		ExpenseID  int64 `json:"expenseId"`
		FlatmateID int64 `json:"flatmateId"`
		Amount     Money `json:"amount"`
		Paid       bool  `json:"paid"`
	}

	NewActivity struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		UserID      int64  `json:"userId"`
	}
)

// Partial updates. Nil fields are left untouched by the store.
type (
	TaskUpdate struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Category    *string    `json:"category"`
		AssignedTo  *int64     `json:"assignedTo"`
		DueDate     *time.Time `json:"dueDate"`
		Completed   *bool      `json:"completed"`
		CompletedAt *time.Time `json:"completedAt"`
		CompletedBy *int64     `json:"completedBy"`
	}

	GroceryItemUpdate struct {
		Name      *string `json:"name"`
		Quantity  *string `json:"quantity"`
		Completed *bool   `json:"completed"`
	}

	ExpenseShareUpdate struct {
		Amount *Money `json:"amount"`
		Paid   *bool  `json:"paid"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrMissingFlatmate  = errors.New("missing flatmate reference")
	ErrZeroDueDate      = errors.New("due date is required")
	ErrEmptyEmail       = errors.New("empty email")
)

func (f NewFlatmate) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(f.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

func (t NewTask) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	switch t.Category {
	case CategoryCleaning, CategoryGroceries, CategoryGarbage:
	default:
		return ErrInvalidCategory
	}
	if t.DueDate.IsZero() {
		return ErrZeroDueDate
	}
	if t.CreatedBy <= 0 {
		return ErrMissingFlatmate
	}
	return nil
}

func (g NewGroceryItem) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.AddedBy <= 0 {
		return ErrMissingFlatmate
	}
	return nil
}

func (e NewExpense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	switch e.Category {
	case ExpenseGroceries, ExpenseUtilities, ExpenseHousehold, ExpenseOther:
	default:
		return ErrInvalidCategory
	}
	if e.PaidBy <= 0 {
		return ErrMissingFlatmate
	}
	return nil
}

// Validate checks a share in isolation. Whether the parent expense exists
// is deliberately not checked here; the store does not enforce it either.
func (s NewExpenseShare) Validate() error {
	if s.FlatmateID <= 0 {
		return ErrMissingFlatmate
	}
	if s.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
