package services

import "fmt"

// Status is the closed enumeration of submission states. The transition
// table below is the single source of truth for which moves are legal;
// no call site compares status strings on its own.
type Status string

const (
	StatusDraft                 Status = "draft"
	StatusSubmitted             Status = "submitted"
	StatusReturnedForFormatting Status = "returned_for_formatting"
	StatusInitialReview         Status = "initial_review"
	StatusUnderReview           Status = "under_review"
	StatusRevisionRequired      Status = "revision_required"
	StatusRevised               Status = "revised"
	StatusAccepted              Status = "accepted"
	StatusPaymentPending        Status = "payment_pending"
	StatusRejected              Status = "rejected"
	StatusPublished             Status = "published"
	StatusWithdrawn             Status = "withdrawn"
)

// AllStatuses lists every defined state.
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusReturnedForFormatting,
	StatusInitialReview,
	StatusUnderReview,
	StatusRevisionRequired,
	StatusRevised,
	StatusAccepted,
	StatusPaymentPending,
	StatusRejected,
	StatusPublished,
	StatusWithdrawn,
}

// transitions maps each state to the states it may legally move to.
// Withdrawal is reachable from every non-terminal state; Rejected keeps
// only the withdrawal edge (an author may formally withdraw a rejected
// manuscript before resubmitting elsewhere).
var transitions = map[Status][]Status{
	StatusDraft:                 {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:             {StatusInitialReview, StatusReturnedForFormatting, StatusUnderReview, StatusRejected, StatusWithdrawn},
	StatusReturnedForFormatting: {StatusSubmitted, StatusWithdrawn},
	StatusInitialReview:         {StatusUnderReview, StatusReturnedForFormatting, StatusRejected, StatusWithdrawn},
	StatusUnderReview:           {StatusAccepted, StatusRejected, StatusRevisionRequired, StatusWithdrawn},
	StatusRevisionRequired:      {StatusRevised, StatusWithdrawn},
	StatusRevised:               {StatusAccepted, StatusRejected, StatusUnderReview, StatusWithdrawn},
	StatusAccepted:              {StatusPaymentPending, StatusPublished, StatusWithdrawn},
	StatusPaymentPending:        {StatusAccepted, StatusWithdrawn},
	StatusRejected:              {StatusWithdrawn},
	StatusPublished:             {},
	StatusWithdrawn:             {},
}

// Valid reports whether s is one of the defined states.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition consults the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", validationf("unknown status %q", raw)
	}
	return s, nil
}

// Decision is an editorial decision value.
type Decision string

const (
	DecisionAccept           Decision = "accept"
	DecisionReject           Decision = "reject"
	DecisionRevisionRequired Decision = "revision_required"
)

// StatusForDecision maps a decision to the resulting state. Pure mapping,
// no hidden state.
func StatusForDecision(d Decision) (Status, error) {
	switch d {
	case DecisionAccept:
		return StatusAccepted, nil
	case DecisionReject:
		return StatusRejected, nil
	case DecisionRevisionRequired:
		return StatusRevisionRequired, nil
	default:
		return "", validationf("unknown decision %q", string(d))
	}
}

// ScreeningOutcome is the result of initial editorial screening.
type ScreeningOutcome string

const (
	ScreeningProceed ScreeningOutcome = "proceed"
	ScreeningReject  ScreeningOutcome = "reject"
	ScreeningReturn  ScreeningOutcome = "return_for_formatting"
)

func (o ScreeningOutcome) valid() bool {
	switch o {
	case ScreeningProceed, ScreeningReject, ScreeningReturn:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

func statusPtr(s Status) *string {
	v := string(s)
	return &v
}

// describeTransition builds the human description stored on the timeline.
func describeTransition(from, to Status) string {
	return fmt.Sprintf("status changed from %s to %s", from, to)
}
