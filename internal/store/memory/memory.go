// Package memory is the default in-memory backend. Data lives for the
// process lifetime only; a restart starts over from the seed data.
package memory

import (
	"context"
	"sync"
	"time"

	"flathub/internal/core"
	"flathub/internal/store"
)

// Store keeps one map and one id counter per entity type. A single mutex
// guards everything; operations are plain map mutations, so no partial
// failure state is possible.
type Store struct {
	mu sync.Mutex

	flatmates map[int64]core.Flatmate
	tasks     map[int64]core.Task
	groceries map[int64]core.GroceryItem
	expenses  map[int64]core.Expense
	shares    map[int64]core.ExpenseShare
	activity  map[int64]core.Activity

	// Insertion order per type; maps alone do not preserve it.
	flatmateIDs []int64
	taskIDs     []int64
	groceryIDs  []int64
	expenseIDs  []int64
	shareIDs    []int64
	activityIDs []int64

	nextFlatmateID int64
	nextTaskID     int64
	nextGroceryID  int64
	nextExpenseID  int64
	nextShareID    int64
	nextActivityID int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		flatmates:      make(map[int64]core.Flatmate),
		tasks:          make(map[int64]core.Task),
		groceries:      make(map[int64]core.GroceryItem),
		expenses:       make(map[int64]core.Expense),
		shares:         make(map[int64]core.ExpenseShare),
		activity:       make(map[int64]core.Activity),
		nextFlatmateID: 1,
		nextTaskID:     1,
		nextGroceryID:  1,
		nextExpenseID:  1,
		nextShareID:    1,
		nextActivityID: 1,
	}
}

// NewSeeded returns a store preloaded with the fixed household sample
// data the dashboard starts from on every boot.
func NewSeeded() *Store {
	s := New()
	s.seed(time.Now())
	return s
}

func (s *Store) seed(now time.Time) {
	ctx := context.Background()

	for _, f := range []core.NewFlatmate{
		{Name: "Alex Johnson", Email: "alex@example.com", Initials: "AJ", Color: "#3B82F6"},
		{Name: "Sarah Miller", Email: "sarah@example.com", Initials: "SM", Color: "#10B981"},
		{Name: "Mike Wilson", Email: "mike@example.com", Initials: "MW", Color: "#8B5CF6"},
		{Name: "Emma Thompson", Email: "emma@example.com", Initials: "ET", Color: "#F59E0B"},
	} {
		s.CreateFlatmate(ctx, f)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	one, two, three := int64(1), int64(2), int64(3)

	for _, t := range []core.NewTask{
		{Title: "Clean Kitchen", Category: core.CategoryCleaning, AssignedTo: &one, DueDate: today.Add(14 * time.Hour), CreatedBy: 1},
		{Title: "Grocery Shopping", Category: core.CategoryGroceries, AssignedTo: &two, DueDate: today.Add(18 * time.Hour), CreatedBy: 2},
		{Title: "Take Out Garbage", Category: core.CategoryGarbage, AssignedTo: &three, DueDate: today.Add(32 * time.Hour), CreatedBy: 3},
	} {
		s.CreateTask(ctx, t)
	}

	for _, g := range []struct {
		item core.NewGroceryItem
		done bool
	}{
		{core.NewGroceryItem{Name: "Milk (2L)", AddedBy: 3}, false},
		{core.NewGroceryItem{Name: "Bread", AddedBy: 2}, false},
		{core.NewGroceryItem{Name: "Bananas", AddedBy: 4}, true},
		{core.NewGroceryItem{Name: "Toilet Paper", AddedBy: 1}, false},
	} {
		created, _ := s.CreateGroceryItem(ctx, g.item)
		if g.done {
			done := true
			s.UpdateGroceryItem(ctx, created.ID, core.GroceryItemUpdate{Completed: &done})
		}
	}

	// Seed feed entries predate startup so fresh activity sorts above them.
	for _, a := range []struct {
		activity core.NewActivity
		age      time.Duration
	}{
		{core.NewActivity{Type: core.ActivityTaskCompleted, Description: "completed Vacuum Living Room", UserID: 2}, 2 * time.Hour},
		{core.NewActivity{Type: core.ActivityGroceryAdded, Description: "added Milk, Bread, Eggs to grocery list", UserID: 3}, 4 * time.Hour},
		{core.NewActivity{Type: core.ActivityExpensePaid, Description: "paid $34.50 for groceries", UserID: 4}, 24 * time.Hour},
	} {
		created, _ := s.CreateActivity(ctx, a.activity)
		backdated := created
		backdated.CreatedAt = now.Add(-a.age)
		s.mu.Lock()
		s.activity[created.ID] = backdated
		s.mu.Unlock()
	}
}

// Flatmates

func (s *Store) Flatmates(context.Context) ([]core.Flatmate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Flatmate, 0, len(s.flatmateIDs))
	for _, id := range s.flatmateIDs {
		out = append(out, s.flatmates[id])
	}
	return out, nil
}

func (s *Store) Flatmate(_ context.Context, id int64) (core.Flatmate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flatmates[id]
	if !ok {
		return core.Flatmate{}, store.ErrNotFound
	}
	return f, nil
}

func (s *Store) CreateFlatmate(_ context.Context, n core.NewFlatmate) (core.Flatmate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := core.Flatmate{
		ID:       s.nextFlatmateID,
		Name:     n.Name,
		Email:    n.Email,
		Initials: n.Initials,
		Color:    n.Color,
	}
	s.nextFlatmateID++
	s.flatmates[f.ID] = f
	s.flatmateIDs = append(s.flatmateIDs, f.ID)
	return f, nil
}

// Tasks

func (s *Store) Tasks(context.Context) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Task, 0, len(s.taskIDs))
	for _, id := range s.taskIDs {
		out = append(out, s.tasks[id])
	}
	return out, nil
}

func (s *Store) Task(_ context.Context, id int64) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return core.Task{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTask(_ context.Context, n core.NewTask) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Task{
		ID:          s.nextTaskID,
		Title:       n.Title,
		Description: n.Description,
		Category:    n.Category,
		AssignedTo:  n.AssignedTo,
		DueDate:     n.DueDate,
		CreatedBy:   n.CreatedBy,
		CreatedAt:   time.Now(),
	}
	s.nextTaskID++
	s.tasks[t.ID] = t
	s.taskIDs = append(s.taskIDs, t.ID)
	return t, nil
}

func (s *Store) UpdateTask(_ context.Context, id int64, u core.TaskUpdate) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return core.Task{}, store.ErrNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.AssignedTo != nil {
		t.AssignedTo = u.AssignedTo
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.CompletedAt != nil {
		t.CompletedAt = u.CompletedAt
	}
	if u.CompletedBy != nil {
		t.CompletedBy = u.CompletedBy
	}
	s.tasks[id] = t
	return t, nil
}

// Grocery items

func (s *Store) GroceryItems(context.Context) ([]core.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.GroceryItem, 0, len(s.groceryIDs))
	for _, id := range s.groceryIDs {
		out = append(out, s.groceries[id])
	}
	return out, nil
}

func (s *Store) GroceryItem(_ context.Context, id int64) (core.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groceries[id]
	if !ok {
		return core.GroceryItem{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) CreateGroceryItem(_ context.Context, n core.NewGroceryItem) (core.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := core.GroceryItem{
		ID:        s.nextGroceryID,
		Name:      n.Name,
		Quantity:  n.Quantity,
		AddedBy:   n.AddedBy,
		CreatedAt: time.Now(),
	}
	s.nextGroceryID++
	s.groceries[g.ID] = g
	s.groceryIDs = append(s.groceryIDs, g.ID)
	return g, nil
}

func (s *Store) UpdateGroceryItem(_ context.Context, id int64, u core.GroceryItemUpdate) (core.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groceries[id]
	if !ok {
		return core.GroceryItem{}, store.ErrNotFound
	}
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Quantity != nil {
		g.Quantity = u.Quantity
	}
	if u.Completed != nil {
		g.Completed = *u.Completed
	}
	s.groceries[id] = g
	return g, nil
}

func (s *Store) DeleteGroceryItem(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groceries[id]; !ok {
		return false, nil
	}
	delete(s.groceries, id)
	for i, gid := range s.groceryIDs {
		if gid == id {
			s.groceryIDs = append(s.groceryIDs[:i], s.groceryIDs[i+1:]...)
			break
		}
	}
	return true, nil
}

// Expenses

func (s *Store) Expenses(context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenseIDs))
	for _, id := range s.expenseIDs {
		out = append(out, s.expenses[id])
	}
	return out, nil
}

func (s *Store) Expense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(_ context.Context, n core.NewExpense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := core.Expense{
		ID:          s.nextExpenseID,
		Description: n.Description,
		Amount:      n.Amount,
		Category:    n.Category,
		PaidBy:      n.PaidBy,
		CreatedAt:   time.Now(),
	}
	s.nextExpenseID++
	s.expenses[e.ID] = e
	s.expenseIDs = append(s.expenseIDs, e.ID)
	return e, nil
}

// Expense shares

func (s *Store) ExpenseShares(_ context.Context, expenseID *int64) ([]core.ExpenseShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseShare, 0, len(s.shareIDs))
	for _, id := range s.shareIDs {
		sh := s.shares[id]
		if expenseID != nil && sh.ExpenseID != *expenseID {
			continue
		}
		out = append(out, sh)
	}
	return out, nil
}

func (s *Store) CreateExpenseShare(_ context.Context, n core.NewExpenseShare) (core.ExpenseShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := core.ExpenseShare{
		ID:         s.nextShareID,
		ExpenseID:  n.ExpenseID,
		FlatmateID: n.FlatmateID,
		Amount:     n.Amount,
		Paid:       n.Paid,
	}
	s.nextShareID++
	s.shares[sh.ID] = sh
	s.shareIDs = append(s.shareIDs, sh.ID)
	return sh, nil
}

func (s *Store) UpdateExpenseShare(_ context.Context, id int64, u core.ExpenseShareUpdate) (core.ExpenseShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shares[id]
	if !ok {
		return core.ExpenseShare{}, store.ErrNotFound
	}
	if u.Amount != nil {
		sh.Amount = *u.Amount
	}
	if u.Paid != nil {
		sh.Paid = *u.Paid
	}
	s.shares[id] = sh
	return sh, nil
}

// Activities

func (s *Store) Activities(_ context.Context, limit int) ([]core.Activity, error) {
	s.mu.Lock()
	all := make([]core.Activity, 0, len(s.activityIDs))
	for _, id := range s.activityIDs {
		all = append(all, s.activity[id])
	}
	s.mu.Unlock()

	sorted := core.SortActivitiesDesc(all)
	// A non-positive limit returns everything, same as the sqlite store.
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (s *Store) CreateActivity(_ context.Context, n core.NewActivity) (core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := core.Activity{
		ID:          s.nextActivityID,
		Type:        n.Type,
		Description: n.Description,
		UserID:      n.UserID,
		CreatedAt:   time.Now(),
	}
	s.nextActivityID++
	s.activity[a.ID] = a
	s.activityIDs = append(s.activityIDs, a.ID)
	return a, nil
}
