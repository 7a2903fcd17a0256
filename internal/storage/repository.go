// Package storage is the SQLite backend. It persists the same entities the
// memory store holds, one table per type, with amounts stored as integer
// cents and timestamps as RFC 3339 text.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"flathub/internal/cache"
	"flathub/internal/core"
	"flathub/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB

	// Flatmates are immutable after creation, so cached lookups never go
	// stale. Balance reads hit this on every request.
	flatmates *cache.LRUCache[core.Flatmate]
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:        db,
		flatmates: cache.NewLRUCache[core.Flatmate](256, time.Hour),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Timestamps are stored as RFC 3339 text so rows stay readable in the
// sqlite shell. The fractional part is fixed width, otherwise string
// ordering on created_at would be wrong.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func decodeNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func decodeNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func encodeNullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func decodeNullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}

// Flatmates

func (r *SQLiteRepository) Flatmates(ctx context.Context) ([]core.Flatmate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, initials, color FROM flatmates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list flatmates: %w", err)
	}
	defer rows.Close()

	var out []core.Flatmate
	for rows.Next() {
		var f core.Flatmate
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Initials, &f.Color); err != nil {
			return nil, fmt.Errorf("scan flatmate: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Flatmate(ctx context.Context, id int64) (core.Flatmate, error) {
	key := strconv.FormatInt(id, 10)
	if f, ok := r.flatmates.Get(key); ok {
		return f, nil
	}

	var f core.Flatmate
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, initials, color FROM flatmates WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Email, &f.Initials, &f.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Flatmate{}, store.ErrNotFound
	}
	if err != nil {
		return core.Flatmate{}, fmt.Errorf("get flatmate: %w", err)
	}

	r.flatmates.Set(key, f)
	return f, nil
}

func (r *SQLiteRepository) CreateFlatmate(ctx context.Context, n core.NewFlatmate) (core.Flatmate, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO flatmates (name, email, initials, color) VALUES (?, ?, ?, ?)`,
		n.Name, n.Email, n.Initials, n.Color)
	if err != nil {
		return core.Flatmate{}, fmt.Errorf("create flatmate: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Flatmate{}, fmt.Errorf("flatmate id: %w", err)
	}

	f := core.Flatmate{ID: id, Name: n.Name, Email: n.Email, Initials: n.Initials, Color: n.Color}
	r.flatmates.Set(strconv.FormatInt(id, 10), f)
	return f, nil
}

// Tasks

const taskColumns = `id, title, description, category, assigned_to, due_date,
	completed, completed_at, completed_by, created_by, created_at`

func scanTask(scan func(dest ...any) error) (core.Task, error) {
	var (
		t           core.Task
		description sql.NullString
		assignedTo  sql.NullInt64
		dueDate     string
		completedAt sql.NullString
		completedBy sql.NullInt64
		createdAt   string
	)
	err := scan(&t.ID, &t.Title, &description, &t.Category, &assignedTo, &dueDate,
		&t.Completed, &completedAt, &completedBy, &t.CreatedBy, &createdAt)
	if err != nil {
		return core.Task{}, err
	}
	t.Description = decodeNullString(description)
	t.AssignedTo = decodeNullInt(assignedTo)
	t.CompletedBy = decodeNullInt(completedBy)
	if t.DueDate, err = decodeTime(dueDate); err != nil {
		return core.Task{}, err
	}
	if t.CompletedAt, err = decodeNullTime(completedAt); err != nil {
		return core.Task{}, err
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Task{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) Tasks(ctx context.Context) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []core.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Task(ctx context.Context, id int64) (core.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, store.ErrNotFound
	}
	if err != nil {
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, n core.NewTask) (core.Task, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, category, assigned_to, due_date, completed, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		n.Title, encodeNullString(n.Description), n.Category, encodeNullInt(n.AssignedTo),
		encodeTime(n.DueDate), n.CreatedBy, encodeTime(now))
	if err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Task{}, fmt.Errorf("task id: %w", err)
	}
	return r.Task(ctx, id)
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, id int64, u core.TaskUpdate) (core.Task, error) {
	t, err := r.Task(ctx, id)
	if err != nil {
		return core.Task{}, err
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

	_, err = r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, category = ?, assigned_to = ?,
		 due_date = ?, completed = ?, completed_at = ?, completed_by = ? WHERE id = ?`,
		t.Title, encodeNullString(t.Description), t.Category, encodeNullInt(t.AssignedTo),
		encodeTime(t.DueDate), t.Completed, encodeNullTime(t.CompletedAt),
		encodeNullInt(t.CompletedBy), id)
	if err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// Grocery items

func (r *SQLiteRepository) GroceryItems(ctx context.Context) ([]core.GroceryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, quantity, completed, added_by, created_at FROM grocery_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	defer rows.Close()

	var out []core.GroceryItem
	for rows.Next() {
		g, err := scanGroceryItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan grocery item: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGroceryItem(scan func(dest ...any) error) (core.GroceryItem, error) {
	var (
		g         core.GroceryItem
		quantity  sql.NullString
		createdAt string
	)
	if err := scan(&g.ID, &g.Name, &quantity, &g.Completed, &g.AddedBy, &createdAt); err != nil {
		return core.GroceryItem{}, err
	}
	g.Quantity = decodeNullString(quantity)
	var err error
	if g.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.GroceryItem{}, err
	}
	return g, nil
}

func (r *SQLiteRepository) GroceryItem(ctx context.Context, id int64) (core.GroceryItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, quantity, completed, added_by, created_at FROM grocery_items WHERE id = ?`, id)
	g, err := scanGroceryItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.GroceryItem{}, store.ErrNotFound
	}
	if err != nil {
		return core.GroceryItem{}, fmt.Errorf("get grocery item: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGroceryItem(ctx context.Context, n core.NewGroceryItem) (core.GroceryItem, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO grocery_items (name, quantity, completed, added_by, created_at) VALUES (?, ?, 0, ?, ?)`,
		n.Name, encodeNullString(n.Quantity), n.AddedBy, encodeTime(now))
	if err != nil {
		return core.GroceryItem{}, fmt.Errorf("create grocery item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.GroceryItem{}, fmt.Errorf("grocery item id: %w", err)
	}
	return r.GroceryItem(ctx, id)
}

func (r *SQLiteRepository) UpdateGroceryItem(ctx context.Context, id int64, u core.GroceryItemUpdate) (core.GroceryItem, error) {
	g, err := r.GroceryItem(ctx, id)
	if err != nil {
		return core.GroceryItem{}, err
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

	_, err = r.db.ExecContext(ctx,
		`UPDATE grocery_items SET name = ?, quantity = ?, completed = ? WHERE id = ?`,
		g.Name, encodeNullString(g.Quantity), g.Completed, id)
	if err != nil {
		return core.GroceryItem{}, fmt.Errorf("update grocery item: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGroceryItem(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM grocery_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete grocery item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete grocery item: %w", err)
	}
	return n > 0, nil
}

// Expenses

func (r *SQLiteRepository) Expenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, category, paid_by, created_at FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanExpense(scan func(dest ...any) error) (core.Expense, error) {
	var (
		e         core.Expense
		cents     int64
		createdAt string
	)
	if err := scan(&e.ID, &e.Description, &cents, &e.Category, &e.PaidBy, &createdAt); err != nil {
		return core.Expense{}, err
	}
	e.Amount = core.Money{Cents: cents}
	var err error
	if e.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) Expense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, category, paid_by, created_at FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, n core.NewExpense) (core.Expense, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (description, amount_cents, category, paid_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.Description, n.Amount.Cents, n.Category, n.PaidBy, encodeTime(now))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	return r.Expense(ctx, id)
}

// Expense shares

func (r *SQLiteRepository) ExpenseShares(ctx context.Context, expenseID *int64) ([]core.ExpenseShare, error) {
	query := `SELECT id, expense_id, flatmate_id, amount_cents, paid FROM expense_shares`
	args := []any{}
	if expenseID != nil {
		query += ` WHERE expense_id = ?`
		args = append(args, *expenseID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expense shares: %w", err)
	}
	defer rows.Close()

	var out []core.ExpenseShare
	for rows.Next() {
		var (
			s     core.ExpenseShare
			cents int64
		)
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.FlatmateID, &cents, &s.Paid); err != nil {
			return nil, fmt.Errorf("scan expense share: %w", err)
		}
		s.Amount = core.Money{Cents: cents}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateExpenseShare(ctx context.Context, n core.NewExpenseShare) (core.ExpenseShare, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_shares (expense_id, flatmate_id, amount_cents, paid) VALUES (?, ?, ?, ?)`,
		n.ExpenseID, n.FlatmateID, n.Amount.Cents, n.Paid)
	if err != nil {
		return core.ExpenseShare{}, fmt.Errorf("create expense share: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseShare{}, fmt.Errorf("expense share id: %w", err)
	}
	return core.ExpenseShare{ID: id, ExpenseID: n.ExpenseID, FlatmateID: n.FlatmateID, Amount: n.Amount, Paid: n.Paid}, nil
}

func (r *SQLiteRepository) UpdateExpenseShare(ctx context.Context, id int64, u core.ExpenseShareUpdate) (core.ExpenseShare, error) {
	var (
		s     core.ExpenseShare
		cents int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, expense_id, flatmate_id, amount_cents, paid FROM expense_shares WHERE id = ?`, id).
		Scan(&s.ID, &s.ExpenseID, &s.FlatmateID, &cents, &s.Paid)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseShare{}, store.ErrNotFound
	}
	if err != nil {
		return core.ExpenseShare{}, fmt.Errorf("get expense share: %w", err)
	}
	s.Amount = core.Money{Cents: cents}

	if u.Amount != nil {
		s.Amount = *u.Amount
	}
	if u.Paid != nil {
		s.Paid = *u.Paid
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE expense_shares SET amount_cents = ?, paid = ? WHERE id = ?`,
		s.Amount.Cents, s.Paid, id)
	if err != nil {
		return core.ExpenseShare{}, fmt.Errorf("update expense share: %w", err)
	}
	return s, nil
}

// Activities

func (r *SQLiteRepository) Activities(ctx context.Context, limit int) ([]core.Activity, error) {
	// A non-positive limit returns everything, same as the memory store.
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, description, user_id, created_at FROM activities
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		var (
			a         core.Activity
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &a.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if a.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateActivity(ctx context.Context, n core.NewActivity) (core.Activity, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (type, description, user_id, created_at) VALUES (?, ?, ?, ?)`,
		n.Type, n.Description, n.UserID, encodeTime(now))
	if err != nil {
		return core.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Activity{}, fmt.Errorf("activity id: %w", err)
	}
	return core.Activity{ID: id, Type: n.Type, Description: n.Description, UserID: n.UserID, CreatedAt: now}, nil
}

// AppendActivity archives an already-recorded activity. Deduplication is
// keyed on the publisher-assigned message id: activity ids restart with
// the process on the memory backend, so the same id can legitimately
// arrive twice across runs. A redelivered message carries the same
// message id and is ignored; a message without one is always appended.
func (r *SQLiteRepository) AppendActivity(ctx context.Context, messageID string, a core.Activity) error {
	var mid *string
	if messageID != "" {
		mid = &messageID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO activities (type, description, user_id, created_at, message_id) VALUES (?, ?, ?, ?, ?)`,
		a.Type, a.Description, a.UserID, encodeTime(a.CreatedAt), encodeNullString(mid))
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Activity already archived", "message_id", messageID)
		return nil
	}

	slog.InfoContext(ctx, "Activity archived",
		"message_id", messageID,
		"activity_type", a.Type,
		"description", a.Description)
	return nil
}
