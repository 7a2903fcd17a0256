package core

import (
	"sort"
	"time"
)

// DashboardStats is the aggregate block shown at the top of the dashboard.
// Every field is recomputed from the full entity lists on each read; there
// is no incremental maintenance.
type DashboardStats struct {
	TasksToday        int    `json:"tasksToday"`
	OverdueTasks      int    `json:"overdueTasks"`
	CompletedThisWeek int    `json:"completedThisWeek"`
	ActiveFlatmates   int    `json:"activeFlatmates"`
	GroceryBalance    string `json:"groceryBalance"`
}

// Balance classification for a single flatmate.
const (
	BalanceOwes = "owes"
	BalanceEven = "even"
	BalancePaid = "paid"
)

// FlatmateBalance is the net unpaid amount a flatmate owes, derived at
// read time from their expense shares.
type FlatmateBalance struct {
	FlatmateID int64  `json:"flatmateId"`
	Status     string `json:"status"`
	Amount     string `json:"amount"`
}

// ComputeDashboardStats scans the current tasks and shares.
//
// "Today" is the local calendar day of now: a task due at 23:59 yesterday
// is overdue, one due at 00:01 today counts as due today. The completed
// window starts at local midnight seven days ago. GroceryBalance sums all
// unpaid shares regardless of expense category; the name is historical.
func ComputeDashboardStats(tasks []Task, flatmateCount int, shares []ExpenseShare, now time.Time) DashboardStats {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.Add(24 * time.Hour)
	weekStart := today.Add(-7 * 24 * time.Hour)

	stats := DashboardStats{ActiveFlatmates: flatmateCount}

	for _, t := range tasks {
		switch {
		case !t.Completed && !t.DueDate.Before(today) && t.DueDate.Before(tomorrow):
			stats.TasksToday++
		case !t.Completed && t.DueDate.Before(today):
			stats.OverdueTasks++
		}
		if t.Completed && t.CompletedAt != nil && !t.CompletedAt.Before(weekStart) {
			stats.CompletedThisWeek++
		}
	}

	var owedCents int64
	for _, s := range shares {
		if !s.Paid {
			owedCents += s.Amount.Cents
		}
	}
	stats.GroceryBalance = Money{Cents: owedCents}.String()

	return stats
}

// ComputeFlatmateBalance sums a flatmate's unpaid shares and classifies
// the result. The negative branch cannot occur while shares are always
// non-negative, but the classification keeps it for forward compatibility.
func ComputeFlatmateBalance(flatmateID int64, shares []ExpenseShare) FlatmateBalance {
	var owedCents int64
	for _, s := range shares {
		if s.FlatmateID == flatmateID && !s.Paid {
			owedCents += s.Amount.Cents
		}
	}

	b := FlatmateBalance{FlatmateID: flatmateID}
	switch {
	case owedCents > 0:
		b.Status = BalanceOwes
		b.Amount = Money{Cents: owedCents}.String()
	case owedCents == 0:
		b.Status = BalanceEven
		b.Amount = "0.00"
	default:
		b.Status = BalancePaid
		b.Amount = Money{Cents: -owedCents}.String()
	}
	return b
}

// SortActivitiesDesc orders a copy of the feed newest first. Entries with
// the same timestamp fall back to descending id, so activities recorded in
// the same instant still read newest first.
func SortActivitiesDesc(activities []Activity) []Activity {
	out := append([]Activity(nil), activities...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
