// internal/workflow/domain.go
package workflow

import (
	"time"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// Kind is the lending operation a workflow drives.
type Kind string

const (
	KindIssue  Kind = "issue"
	KindReturn Kind = "return"
	KindRenew  Kind = "renew"
)

// State is the workflow's position in the lending state machine.
type State string

const (
	// StateSelecting gathers entities and parameters until the
	// readiness predicate holds.
	StateSelecting State = "selecting"
	// StateReadyToConfirm means the readiness predicate holds and the
	// confirmation gate may be opened.
	StateReadyToConfirm State = "ready-to-confirm"
	// StateConfirming presents the pending operation snapshot; the
	// only exits are confirm (submit) and cancel.
	StateConfirming State = "confirming"
	// StateSubmitting means exactly one mutating request is in
	// flight. Submit controls stay disabled here.
	StateSubmitting State = "submitting"
	// StateSucceeded holds the committed transaction from the backend.
	StateSucceeded State = "succeeded"
	// StateFailed holds the failure message. Returning to confirmation
	// is not automatic; the user restarts the confirm step.
	StateFailed State = "failed"
)

// DefaultLoanDays is added to the issue date (or current due date, for
// renewals) to propose a due date. Both are user-overridable.
const DefaultLoanDays = 30

// Selection is the transient pairing of chosen entities and workflow
// parameters. It lives exactly as long as the workflow that owns it
// and is never shared across views.
type Selection struct {
	Book        *api.Book
	User        *api.User
	Transaction *api.Transaction

	IssueDate  time.Time
	DueDate    time.Time
	NewDueDate time.Time
	Notes      string

	// ActiveBorrows is the selected user's active-borrow count. A
	// failed auxiliary fetch degrades to 0, it never blocks the
	// workflow.
	ActiveBorrows int
}

// Summary is the snapshot shown at the confirmation gate.
type Summary struct {
	Kind            Kind
	BookTitle       string
	AccessionNumber string
	UserFullName    string
	EmployeeID      string
	IssueDate       time.Time
	DueDate         time.Time
	NewDueDate      time.Time
	Notes           string
}

// pending is the payload frozen when the confirmation gate opens. It
// is discarded on cancel, success, and failure alike.
type pending struct {
	issue  *api.IssueRequest
	ret    *api.ReturnRequest
	renew  *api.RenewRequest
	window Summary
}
