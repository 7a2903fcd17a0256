package http

import (
	"net/http"
	"strconv"

	"flathub/internal/core"
)

// createExpenseRequest is the POST /api/expenses body. Shares may be given
// explicitly, or computed server-side by listing flatmate ids in
// splitAmong, in which case the total is split equally and the payer's
// share starts out paid.
type createExpenseRequest struct {
	Expense    core.NewExpense        `json:"expense"`
	Shares     []core.NewExpenseShare `json:"shares"`
	SplitAmong []int64                `json:"splitAmong"`
}

func (s *Server) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.household.Expenses(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	s.respondJSON(w, r, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	shares := req.Shares
	if len(shares) == 0 && len(req.SplitAmong) > 0 {
		for _, draft := range core.SplitEqually(req.Expense.Amount, req.Expense.PaidBy, req.SplitAmong) {
			shares = append(shares, core.NewExpenseShare{
				FlatmateID: draft.FlatmateID,
				Amount:     draft.Amount,
				Paid:       draft.Paid,
			})
		}
	}

	expense, err := s.household.CreateExpenseWithShares(r.Context(), req.Expense, shares)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusCreated, expense)
}

func (s *Server) handleGetExpenseShares(w http.ResponseWriter, r *http.Request) {
	var expenseID *int64
	if raw := r.URL.Query().Get("expenseId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(w, r, http.StatusBadRequest, "invalid expenseId")
			return
		}
		expenseID = &id
	}

	shares, err := s.household.ExpenseShares(r.Context(), expenseID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if shares == nil {
		shares = []core.ExpenseShare{}
	}
	s.respondJSON(w, r, http.StatusOK, shares)
}

func (s *Server) handleUpdateExpenseShare(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid expense share id")
		return
	}

	var u core.ExpenseShareUpdate
	if ok, msg := s.decodeJSON(r, &u); !ok {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	share, err := s.household.UpdateExpenseShare(r.Context(), id, u)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, share)
}
