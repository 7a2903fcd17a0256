package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flathub/internal/core"
	"flathub/internal/log"
	"flathub/internal/services"
	"flathub/internal/store/memory"
)

func newTestServer(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	st := memory.New()
	household := services.NewHousehold(st)
	srv := NewServer("127.0.0.1:0", household, 10, 10000, log.New(log.DefaultConfig()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return st, srv.Handler()
}

func doRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedFlatmate(t *testing.T, st *memory.Store, name string) core.Flatmate {
	t.Helper()
	f, err := st.CreateFlatmate(context.Background(), core.NewFlatmate{
		Name:     name,
		Email:    name + "@flat.test",
		Initials: strings.ToUpper(name[:1]),
		Color:    "#0ea5e9",
	})
	if err != nil {
		t.Fatalf("seed flatmate: %v", err)
	}
	return f
}

func TestHealthEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(handler, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestGetFlatmates(t *testing.T) {
	st, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodGet, "/api/flatmates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty collection = %q, want []", got)
	}

	seedFlatmate(t, st, "alex")
	rec = doRequest(handler, http.MethodGet, "/api/flatmates", "")
	flatmates := decodeBody[[]core.Flatmate](t, rec)
	if len(flatmates) != 1 || flatmates[0].Name != "alex" {
		t.Errorf("flatmates = %+v, want one named alex", flatmates)
	}
}

func TestCreateTask(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/tasks",
		`{"title":"Clean Kitchen","category":"cleaning","dueDate":"2026-03-12T18:00:00Z","createdBy":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	task := decodeBody[core.Task](t, rec)
	if task.ID != 1 || task.Title != "Clean Kitchen" || task.Completed {
		t.Errorf("task = %+v", task)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	_, handler := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":"","category":"cleaning","dueDate":"2026-03-12T18:00:00Z","createdBy":1}`},
		{"bad category", `{"title":"x","category":"laundry","dueDate":"2026-03-12T18:00:00Z","createdBy":1}`},
		{"missing due date", `{"title":"x","category":"cleaning","createdBy":1}`},
		{"missing creator", `{"title":"x","category":"cleaning","dueDate":"2026-03-12T18:00:00Z"}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodPost, "/api/tasks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCompleteTask(t *testing.T) {
	_, handler := newTestServer(t)

	doRequest(handler, http.MethodPost, "/api/tasks",
		`{"title":"Take Out Garbage","category":"garbage","dueDate":"2026-03-12T18:00:00Z","createdBy":1}`)

	rec := doRequest(handler, http.MethodPatch, "/api/tasks/1/complete", `{"completedBy":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	task := decodeBody[core.Task](t, rec)
	if !task.Completed || task.CompletedAt == nil || task.CompletedBy == nil || *task.CompletedBy != 2 {
		t.Errorf("task = %+v, want completed by 2", task)
	}
}

func TestCompleteTaskMissingBody(t *testing.T) {
	_, handler := newTestServer(t)

	doRequest(handler, http.MethodPost, "/api/tasks",
		`{"title":"x","category":"cleaning","dueDate":"2026-03-12T18:00:00Z","createdBy":1}`)

	rec := doRequest(handler, http.MethodPatch, "/api/tasks/1/complete", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// A zero completer id is as good as a missing one.
	rec = doRequest(handler, http.MethodPatch, "/api/tasks/1/complete", `{"completedBy":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero completedBy status = %d, want 400", rec.Code)
	}
}

func TestCompleteTaskNotFound(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPatch, "/api/tasks/99/complete", `{"completedBy":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGroceryItemLifecycle(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/grocery-items",
		`{"name":"Milk","quantity":"2L","addedBy":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	item := decodeBody[core.GroceryItem](t, rec)
	if item.ID != 1 || item.Completed {
		t.Fatalf("item = %+v", item)
	}

	rec = doRequest(handler, http.MethodPatch, "/api/grocery-items/1", `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", rec.Code, rec.Body.String())
	}
	item = decodeBody[core.GroceryItem](t, rec)
	if !item.Completed {
		t.Errorf("item not completed after patch: %+v", item)
	}

	rec = doRequest(handler, http.MethodDelete, "/api/grocery-items/1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", rec.Code)
	}
	confirmation := decodeBody[map[string]string](t, rec)
	if confirmation["message"] != "Grocery item deleted" {
		t.Errorf("delete body = %+v, want confirmation message", confirmation)
	}

	rec = doRequest(handler, http.MethodDelete, "/api/grocery-items/1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateExpenseWithSplit(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"groceries","amount":"30.00","category":"groceries","paidBy":1},"splitAmong":[1,2,3]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	expense := decodeBody[core.Expense](t, rec)
	if expense.ID != 1 || expense.Amount.Cents != 3000 {
		t.Fatalf("expense = %+v", expense)
	}

	rec = doRequest(handler, http.MethodGet, "/api/expense-shares?expenseId=1", "")
	shares := decodeBody[[]core.ExpenseShare](t, rec)
	if len(shares) != 3 {
		t.Fatalf("shares = %+v, want 3", shares)
	}
	for _, sh := range shares {
		if sh.Amount.Cents != 1000 {
			t.Errorf("share %d amount = %d cents, want 1000", sh.FlatmateID, sh.Amount.Cents)
		}
		if sh.Paid != (sh.FlatmateID == 1) {
			t.Errorf("share %d paid = %v", sh.FlatmateID, sh.Paid)
		}
	}
}

func TestCreateExpenseExplicitShares(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"internet","amount":"40.00","category":"utilities","paidBy":2},"shares":[{"flatmateId":1,"amount":"20.00"},{"flatmateId":2,"amount":"20.00","paid":true}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(handler, http.MethodGet, "/api/expense-shares", "")
	shares := decodeBody[[]core.ExpenseShare](t, rec)
	if len(shares) != 2 {
		t.Fatalf("shares = %+v, want 2", shares)
	}
	if shares[0].ExpenseID != 1 || shares[1].ExpenseID != 1 {
		t.Errorf("shares not linked to expense 1: %+v", shares)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"","amount":"10.00","category":"other","paidBy":1}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateExpenseShare(t *testing.T) {
	_, handler := newTestServer(t)

	doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"rent","amount":"100.00","category":"household","paidBy":1},"splitAmong":[1,2]}`)

	rec := doRequest(handler, http.MethodPatch, "/api/expense-shares/2", `{"paid":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	share := decodeBody[core.ExpenseShare](t, rec)
	if !share.Paid {
		t.Errorf("share = %+v, want paid", share)
	}
}

func TestActivitiesFeed(t *testing.T) {
	_, handler := newTestServer(t)

	doRequest(handler, http.MethodPost, "/api/tasks",
		`{"title":"Clean Kitchen","category":"cleaning","dueDate":"2026-03-12T18:00:00Z","createdBy":1}`)
	doRequest(handler, http.MethodPost, "/api/grocery-items", `{"name":"Bread","addedBy":2}`)
	doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"groceries","amount":"34.50","category":"groceries","paidBy":3}}`)

	rec := doRequest(handler, http.MethodGet, "/api/activities", "")
	activities := decodeBody[[]core.Activity](t, rec)
	if len(activities) != 3 {
		t.Fatalf("activities = %+v, want 3", activities)
	}
	if activities[0].Description != "paid $34.50 for groceries" {
		t.Errorf("newest activity = %q", activities[0].Description)
	}
	if activities[2].Description != "created task: Clean Kitchen" {
		t.Errorf("oldest activity = %q", activities[2].Description)
	}

	rec = doRequest(handler, http.MethodGet, "/api/activities?limit=1", "")
	activities = decodeBody[[]core.Activity](t, rec)
	if len(activities) != 1 {
		t.Errorf("limited feed length = %d, want 1", len(activities))
	}

	rec = doRequest(handler, http.MethodGet, "/api/activities?limit=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", rec.Code)
	}
}

func TestDashboardStats(t *testing.T) {
	st, handler := newTestServer(t)
	seedFlatmate(t, st, "alex")
	seedFlatmate(t, st, "sarah")

	doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"groceries","amount":"25.00","category":"groceries","paidBy":1},"shares":[{"flatmateId":2,"amount":"12.50"}]}`)

	rec := doRequest(handler, http.MethodGet, "/api/dashboard/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	stats := decodeBody[core.DashboardStats](t, rec)
	if stats.ActiveFlatmates != 2 {
		t.Errorf("ActiveFlatmates = %d, want 2", stats.ActiveFlatmates)
	}
	if stats.GroceryBalance != "12.50" {
		t.Errorf("GroceryBalance = %q, want 12.50", stats.GroceryBalance)
	}
}

func TestFlatmateBalanceEndpoint(t *testing.T) {
	st, handler := newTestServer(t)
	f := seedFlatmate(t, st, "mike")

	doRequest(handler, http.MethodPost, "/api/expenses",
		`{"expense":{"description":"utilities","amount":"15.00","category":"utilities","paidBy":2},"shares":[{"flatmateId":1,"amount":"5.00"},{"flatmateId":1,"amount":"7.50"}]}`)

	rec := doRequest(handler, http.MethodGet, "/api/flatmates/1/balance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	balance := decodeBody[core.FlatmateBalance](t, rec)
	if balance.FlatmateID != f.ID || balance.Status != core.BalanceOwes || balance.Amount != "12.50" {
		t.Errorf("balance = %+v, want owes 12.50", balance)
	}

	rec = doRequest(handler, http.MethodGet, "/api/flatmates/42/balance", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown flatmate status = %d, want 404", rec.Code)
	}
}
