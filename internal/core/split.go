package core

import "math"

// ShareDraft is one flatmate's computed portion of an expense before it is
// persisted as an ExpenseShare.
type ShareDraft struct {
	FlatmateID int64
	Amount     Money
	Paid       bool
}

// SplitEqually divides a total equally among the selected flatmates,
// rounding each share to whole cents half-up. The payer's share is marked
// paid at creation; everyone else starts unpaid.
//
// An empty selection is not an error: the whole amount becomes a single
// unsplit share belonging to the payer.
func SplitEqually(total Money, paidBy int64, flatmateIDs []int64) []ShareDraft {
	if len(flatmateIDs) == 0 {
		return []ShareDraft{{FlatmateID: paidBy, Amount: total, Paid: true}}
	}

	perShare := int64(math.Round(float64(total.Cents) / float64(len(flatmateIDs))))
	drafts := make([]ShareDraft, 0, len(flatmateIDs))
	for _, id := range flatmateIDs {
		drafts = append(drafts, ShareDraft{
			FlatmateID: id,
			Amount:     Money{Cents: perShare},
			Paid:       id == paidBy,
		})
	}
	return drafts
}
