// Package workflow models the borrow lifecycle and the precondition checks
// derived from it. Services consult this package before touching the
// database so every rule lives in exactly one place.
package workflow

import "epersmip-backend/internal/core/domain"

// Status is the lifecycle state of a borrow record. The literals are the
// wire values the frontend displays.
type Status string

const (
	StatusMenunggu     Status = "menunggu"     // waiting for admin approval
	StatusDipinjam     Status = "dipinjam"     // active loan
	StatusDikembalikan Status = "dikembalikan" // returned, terminal
	StatusDitolak      Status = "ditolak"      // rejected, terminal
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusMenunggu, StatusDipinjam, StatusDikembalikan, StatusDitolak:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDikembalikan || s == StatusDitolak
}

// transitions is the closed transition table:
//
//	menunggu → dipinjam (approve) | ditolak (reject)
//	dipinjam → dikembalikan (return)
var transitions = map[Status][]Status{
	StatusMenunggu: {StatusDipinjam, StatusDitolak},
	StatusDipinjam: {StatusDikembalikan},
}

// CanTransition reports whether from → to is a legal transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one transition.
func NextStatuses(s Status) []Status {
	return transitions[s]
}

// RestoresStock reports whether entering s hands the copy back to the shelf.
// The decrement at borrow time is a reservation, so both terminal states
// restore it.
func RestoresStock(s Status) bool {
	return s == StatusDikembalikan || s == StatusDitolak
}

// Action is a transition trigger a caller may be offered.
type Action string

const (
	ActionApprove Action = "approve" // menunggu → dipinjam, admin
	ActionReject  Action = "reject"  // menunggu → ditolak, admin
	ActionReturn  Action = "return"  // dipinjam → dikembalikan, borrower or admin
)

// AllowedActions returns the actions role may trigger on a borrow in status
// s. A UI must never render a control outside this set.
func AllowedActions(s Status, role string) []Action {
	switch s {
	case StatusMenunggu:
		if role == domain.RoleAdmin {
			return []Action{ActionApprove, ActionReject}
		}
	case StatusDipinjam:
		return []Action{ActionReturn}
	}
	return nil
}

// Decision is the result of a typed precondition check. Reason carries the
// domain error code when Allowed is false.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision { return Decision{Allowed: true} }

func deny(code string) Decision { return Decision{Reason: code} }

// CanBorrow decides whether a user may open a new borrow. open is the status
// of the user's current non-terminal borrow, if any. Borrowing is a student
// operation; admins manage loans, they do not hold them.
func CanBorrow(role string, isActive bool, open *Status, stock int) Decision {
	if role == domain.RoleAdmin {
		return deny(domain.CodeBorrowAdmin)
	}
	if !isActive {
		return deny(domain.CodeUserInactive)
	}
	if open != nil {
		if *open == StatusMenunggu {
			return deny(domain.CodeBorrowPendingExists)
		}
		return deny(domain.CodeBorrowActiveExists)
	}
	if stock <= 0 {
		return deny(domain.CodeBookOutOfStock)
	}
	return allow()
}

// CanReview decides whether a user may create a review for a book, given the
// statuses of all their borrows of that book. An existing review switches the
// client to edit mode, so creation is denied outright.
func CanReview(role string, history []Status, hasReview bool) Decision {
	if role == domain.RoleAdmin {
		return deny(domain.CodeReviewAdmin)
	}
	if hasReview {
		return deny(domain.CodeReviewExists)
	}
	for _, s := range history {
		if s == StatusDikembalikan {
			return allow()
		}
	}
	return deny(domain.CodeReviewNotReturned)
}
