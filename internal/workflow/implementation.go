// internal/workflow/implementation.go
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// Workflow is the state machine driving one lending operation from
// entity selection through the confirmation gate to backend commit.
// One instance per view; create a fresh one per operation and discard
// it on navigation away.
type Workflow struct {
	mu      sync.Mutex
	kind    Kind
	backend Backend
	logger  api.Logger
	now     func() time.Time

	state   State
	sel     Selection
	pending *pending
	result  *api.Transaction
	failure string
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger api.Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

// WithClock overrides the time source. Tests use this to pin "today".
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// New creates a workflow of the given kind in the Selecting state.
// Issue workflows start with issueDate = today and dueDate = today
// plus DefaultLoanDays.
func New(kind Kind, backend Backend, opts ...Option) *Workflow {
	w := &Workflow{
		kind:    kind,
		backend: backend,
		now:     time.Now,
		state:   StateSelecting,
	}
	for _, opt := range opts {
		opt(w)
	}
	if kind == KindIssue {
		today := api.DateOnly(w.now())
		w.sel.IssueDate = today
		w.sel.DueDate = today.AddDate(0, 0, DefaultLoanDays)
	}
	return w
}

// Kind returns the workflow's operation.
func (w *Workflow) Kind() Kind { return w.kind }

// State returns the current machine state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Selection returns a copy of the current selection.
func (w *Workflow) Selection() Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel
}

// Result returns the committed transaction after a successful submit.
func (w *Workflow) Result() (*api.Transaction, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result, w.result != nil
}

// FailureMessage returns the user-visible message of the last failed
// submit, empty otherwise.
func (w *Workflow) FailureMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

// SelectBook chooses the book to issue, replacing any prior choice.
func (w *Workflow) SelectBook(book api.Book) error {
	if w.kind != KindIssue {
		return fmt.Errorf("%s workflow does not select books", w.kind)
	}
	if !book.Issuable() {
		return fmt.Errorf("book %q is not available for issue", book.Title)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireSelecting(); err != nil {
		return err
	}
	w.sel.Book = &book
	w.recomputeReadiness()
	return nil
}

// SelectUser chooses the borrower, replacing any prior choice, and
// fetches their active-borrow count. A failed count fetch degrades to
// a displayed count of 0 and is not an error.
func (w *Workflow) SelectUser(ctx context.Context, user api.User) error {
	if w.kind != KindIssue {
		return fmt.Errorf("%s workflow does not select users", w.kind)
	}
	if !user.Borrowable() {
		return fmt.Errorf("user %q is not active", user.FullName)
	}

	w.mu.Lock()
	if err := w.requireSelecting(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.sel.User = &user
	w.sel.ActiveBorrows = 0
	w.recomputeReadiness()
	w.mu.Unlock()

	count, err := w.backend.ActiveBorrows(ctx, user.ID)
	if err != nil {
		w.logWarnOnce("active-borrows fetch failed", err, user.ID)
		count = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sel.User != nil && w.sel.User.ID == user.ID {
		w.sel.ActiveBorrows = count
	}
	return nil
}

// SelectTransaction chooses the transaction to return or renew,
// replacing any prior choice. Only open transactions are eligible.
// Renew workflows propose a new due date of current due date plus
// DefaultLoanDays.
func (w *Workflow) SelectTransaction(txn api.Transaction) error {
	if w.kind == KindIssue {
		return fmt.Errorf("issue workflow does not select transactions")
	}
	if !txn.Open() {
		return fmt.Errorf("transaction %s is not eligible for %s (status %s)", txn.ID, w.kind, txn.Status)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireSelecting(); err != nil {
		return err
	}
	w.sel.Transaction = &txn

	if w.kind == KindRenew {
		if due, err := api.ParseDate(txn.DueDate); err == nil {
			w.sel.NewDueDate = api.DateOnly(due).AddDate(0, 0, DefaultLoanDays)
		}
	}
	w.recomputeReadiness()
	return nil
}

// ClearBook removes the selected book.
func (w *Workflow) ClearBook() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Book = nil
	w.recomputeReadiness()
}

// ClearUser removes the selected user and its borrow count.
func (w *Workflow) ClearUser() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.User = nil
	w.sel.ActiveBorrows = 0
	w.recomputeReadiness()
}

// ClearTransaction removes the selected transaction.
func (w *Workflow) ClearTransaction() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Transaction = nil
	w.sel.NewDueDate = time.Time{}
	w.recomputeReadiness()
}

// SetIssueDate overrides the issue date.
func (w *Workflow) SetIssueDate(d time.Time) error {
	if w.kind != KindIssue {
		return fmt.Errorf("%s workflow has no issue date", w.kind)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if d.IsZero() {
		w.sel.IssueDate = time.Time{}
	} else {
		w.sel.IssueDate = api.DateOnly(d)
	}
	w.recomputeReadiness()
	return nil
}

// SetDueDate overrides the proposed due date.
func (w *Workflow) SetDueDate(d time.Time) error {
	if w.kind != KindIssue {
		return fmt.Errorf("%s workflow has no due date parameter", w.kind)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if d.IsZero() {
		w.sel.DueDate = time.Time{}
	} else {
		w.sel.DueDate = api.DateOnly(d)
	}
	w.recomputeReadiness()
	return nil
}

// SetNewDueDate overrides the renewal due date. Dates before today
// (date-only comparison) are rejected here, at the picker boundary;
// nothing re-validates the value at submission time.
func (w *Workflow) SetNewDueDate(d time.Time) error {
	if w.kind != KindRenew {
		return fmt.Errorf("%s workflow has no renewal due date", w.kind)
	}
	if d.IsZero() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.sel.NewDueDate = time.Time{}
		w.recomputeReadiness()
		return nil
	}
	day := api.DateOnly(d)
	// Calendar-day comparison. The picked date and the clock may carry
	// different locations, so comparing time instants would shift the
	// boundary by the offset.
	if api.FormatWire(day) < api.FormatWire(w.now()) {
		return fmt.Errorf("new due date %s is before today", api.FormatWire(day))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.NewDueDate = day
	w.recomputeReadiness()
	return nil
}

// SetNotes records the transaction notes.
func (w *Workflow) SetNotes(notes string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Notes = notes
}

// Ready reports whether the workflow-specific readiness predicate
// holds: issue needs book, user, issue date, and due date; return
// needs a transaction; renew needs a transaction and a new due date.
func (w *Workflow) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready()
}

func (w *Workflow) ready() bool {
	switch w.kind {
	case KindIssue:
		return w.sel.Book != nil && w.sel.User != nil && !w.sel.IssueDate.IsZero() && !w.sel.DueDate.IsZero()
	case KindReturn:
		return w.sel.Transaction != nil
	case KindRenew:
		return w.sel.Transaction != nil && !w.sel.NewDueDate.IsZero()
	}
	return false
}

// recomputeReadiness moves between Selecting and ReadyToConfirm as the
// predicate flips. Later states are never changed here. Callers hold
// the lock.
func (w *Workflow) recomputeReadiness() {
	if w.state != StateSelecting && w.state != StateReadyToConfirm {
		return
	}
	if w.ready() {
		w.state = StateReadyToConfirm
	} else {
		w.state = StateSelecting
	}
}

func (w *Workflow) requireSelecting() error {
	if w.state != StateSelecting && w.state != StateReadyToConfirm {
		return fmt.Errorf("cannot change selection in state %s", w.state)
	}
	return nil
}

// BeginConfirm opens the confirmation gate: the pending payload is
// frozen from the current selection and a snapshot is returned for
// display. Submission stays blocked until Submit is called.
func (w *Workflow) BeginConfirm() (Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReadyToConfirm {
		return Summary{}, fmt.Errorf("cannot confirm in state %s", w.state)
	}

	summary := Summary{Kind: w.kind, Notes: w.sel.Notes}
	pend := &pending{}

	switch w.kind {
	case KindIssue:
		summary.BookTitle = w.sel.Book.Title
		summary.AccessionNumber = w.sel.Book.AccessionNumber
		summary.UserFullName = w.sel.User.FullName
		summary.EmployeeID = w.sel.User.EmployeeID
		summary.IssueDate = w.sel.IssueDate
		summary.DueDate = w.sel.DueDate
		pend.issue = &api.IssueRequest{
			BookID:    w.sel.Book.ID,
			UserID:    w.sel.User.ID,
			IssueDate: api.FormatWire(w.sel.IssueDate),
			DueDate:   api.FormatWire(w.sel.DueDate),
		}
	case KindReturn:
		summary.BookTitle = w.sel.Transaction.BookTitle
		summary.UserFullName = w.sel.Transaction.UserFullName
		pend.ret = &api.ReturnRequest{
			TransactionID:    w.sel.Transaction.ID,
			TransactionNotes: w.sel.Notes,
		}
	case KindRenew:
		summary.BookTitle = w.sel.Transaction.BookTitle
		summary.UserFullName = w.sel.Transaction.UserFullName
		summary.NewDueDate = w.sel.NewDueDate
		pend.renew = &api.RenewRequest{
			TransactionID:    w.sel.Transaction.ID,
			NewDueDate:       api.FormatWire(w.sel.NewDueDate),
			TransactionNotes: w.sel.Notes,
		}
	}

	pend.window = summary
	w.pending = pend
	w.state = StateConfirming
	return summary, nil
}

// Cancel closes the confirmation gate, discarding the pending payload
// but keeping the underlying selection intact.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateConfirming {
		return fmt.Errorf("cannot cancel in state %s", w.state)
	}
	w.pending = nil
	w.recomputeReadinessFromConfirm()
	return nil
}

func (w *Workflow) recomputeReadinessFromConfirm() {
	if w.ready() {
		w.state = StateReadyToConfirm
	} else {
		w.state = StateSelecting
	}
}

// Submit issues exactly one mutating request from the pending payload.
// On 2xx the server's transaction becomes the record used for receipts
// and success display. On any failure the message is surfaced via
// FailureMessage and the pending payload is cleared; re-submitting
// requires going through the confirmation gate again.
func (w *Workflow) Submit(ctx context.Context) (*api.Transaction, error) {
	w.mu.Lock()
	if w.state != StateConfirming || w.pending == nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("cannot submit in state %s", w.state)
	}
	pend := w.pending
	w.state = StateSubmitting
	w.mu.Unlock()

	var txn *api.Transaction
	var err error
	switch {
	case pend.issue != nil:
		txn, err = w.backend.IssueBook(ctx, *pend.issue)
	case pend.ret != nil:
		txn, err = w.backend.ReturnBook(ctx, *pend.ret)
	case pend.renew != nil:
		txn, err = w.backend.RenewBook(ctx, *pend.renew)
	default:
		err = fmt.Errorf("empty pending payload")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = nil

	if err != nil {
		w.state = StateFailed
		w.failure = api.UserMessage(err)
		if w.logger != nil {
			w.logger.Error("lending operation failed", "kind", string(w.kind), "error", err.Error())
		}
		return nil, err
	}

	w.state = StateSucceeded
	w.result = txn
	w.failure = ""
	if w.logger != nil {
		w.logger.Info("lending operation committed", "kind", string(w.kind), "transaction_id", txn.ID)
	}
	return txn, nil
}

// Retry reopens the selection flow after a failed submit, keeping the
// selection so the user can restart the confirm step.
func (w *Workflow) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateFailed {
		return fmt.Errorf("cannot retry in state %s", w.state)
	}
	w.failure = ""
	w.recomputeReadinessFromConfirm()
	return nil
}

// Reset discards everything and starts a fresh operation of the same
// kind, with issue/due dates re-defaulted.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sel = Selection{}
	w.pending = nil
	w.result = nil
	w.failure = ""
	w.state = StateSelecting
	if w.kind == KindIssue {
		today := api.DateOnly(w.now())
		w.sel.IssueDate = today
		w.sel.DueDate = today.AddDate(0, 0, DefaultLoanDays)
	}
}

func (w *Workflow) logWarnOnce(msg string, err error, userID string) {
	if w.logger != nil {
		w.logger.Warn(msg, "user_id", userID, "error", err.Error())
	}
}
