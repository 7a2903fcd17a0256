package http

import (
	"net/http"

	"flathub/internal/core"
)

// Collection reads always return a JSON array, never null.

func (s *Server) handleGetFlatmates(w http.ResponseWriter, r *http.Request) {
	flatmates, err := s.household.Flatmates(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if flatmates == nil {
		flatmates = []core.Flatmate{}
	}
	s.respondJSON(w, r, http.StatusOK, flatmates)
}

func (s *Server) handleFlatmateBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid flatmate id")
		return
	}
	balance, err := s.household.FlatmateBalance(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, balance)
}

func (s *Server) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.household.Tasks(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []core.Task{}
	}
	s.respondJSON(w, r, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var n core.NewTask
	if ok, msg := s.decodeJSON(r, &n); !ok {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}
	task, err := s.household.CreateTask(r.Context(), n)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid task id")
		return
	}

	var body struct {
		CompletedBy *int64 `json:"completedBy"`
	}
	if ok, msg := s.decodeJSON(r, &body); !ok {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}
	if body.CompletedBy == nil || *body.CompletedBy <= 0 {
		s.respondError(w, r, http.StatusBadRequest, "completedBy is required")
		return
	}

	task, err := s.household.CompleteTask(r.Context(), id, *body.CompletedBy)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, task)
}

func (s *Server) handleGetGroceryItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.household.GroceryItems(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.GroceryItem{}
	}
	s.respondJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleCreateGroceryItem(w http.ResponseWriter, r *http.Request) {
	var n core.NewGroceryItem
	if ok, msg := s.decodeJSON(r, &n); !ok {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}
	item, err := s.household.CreateGroceryItem(r.Context(), n)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleUpdateGroceryItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid grocery item id")
		return
	}

	var u core.GroceryItemUpdate
	if ok, msg := s.decodeJSON(r, &u); !ok {
		s.respondError(w, r, http.StatusBadRequest, msg)
		return
	}

	item, err := s.household.UpdateGroceryItem(r.Context(), id, u)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteGroceryItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid grocery item id")
		return
	}

	deleted, err := s.household.DeleteGroceryItem(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if !deleted {
		s.respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	s.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Grocery item deleted"})
}
