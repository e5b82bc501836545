// internal/workflow/implementation_test.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

var fixedNow = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

type fakeBackend struct {
	issueCalls  atomic.Int64
	returnCalls atomic.Int64
	renewCalls  atomic.Int64

	lastIssue  api.IssueRequest
	lastReturn api.ReturnRequest
	lastRenew  api.RenewRequest

	txn        *api.Transaction
	err        error
	borrows    int
	borrowsErr error
}

func (f *fakeBackend) IssueBook(_ context.Context, req api.IssueRequest) (*api.Transaction, error) {
	f.issueCalls.Add(1)
	f.lastIssue = req
	return f.txn, f.err
}

func (f *fakeBackend) ReturnBook(_ context.Context, req api.ReturnRequest) (*api.Transaction, error) {
	f.returnCalls.Add(1)
	f.lastReturn = req
	return f.txn, f.err
}

func (f *fakeBackend) RenewBook(_ context.Context, req api.RenewRequest) (*api.Transaction, error) {
	f.renewCalls.Add(1)
	f.lastRenew = req
	return f.txn, f.err
}

func (f *fakeBackend) ActiveBorrows(_ context.Context, _ string) (int, error) {
	return f.borrows, f.borrowsErr
}

func availableBook() api.Book {
	return api.Book{
		ID:              "book-1",
		AccessionNumber: "ACC-0042",
		Title:           "The Go Programming Language",
		BookStatus:      api.BookAvailable,
		BookType:        api.BookGeneral,
	}
}

func activeUser() api.User {
	return api.User{
		ID:         "user-1",
		EmployeeID: "EMP100",
		FullName:   "Priya Nair",
		UserStatus: api.UserActive,
	}
}

func openTransaction() api.Transaction {
	return api.Transaction{
		ID:           "txn-1",
		BookID:       "book-1",
		BookTitle:    "The Go Programming Language",
		UserID:       "user-1",
		UserFullName: "Priya Nair",
		Status:       api.TxnActive,
		IssueDate:    "2025-03-01",
		DueDate:      "2025-03-31",
	}
}

func clock() Option { return WithClock(func() time.Time { return fixedNow }) }

func TestIssueDefaultsDates(t *testing.T) {
	wf := New(KindIssue, &fakeBackend{}, clock())

	sel := wf.Selection()
	assert.Equal(t, "2025-03-10", api.FormatWire(sel.IssueDate))
	assert.Equal(t, "2025-04-09", api.FormatWire(sel.DueDate))
	assert.Equal(t, StateSelecting, wf.State())
}

func TestIssueReadinessNeedsAllFourInputs(t *testing.T) {
	wf := New(KindIssue, &fakeBackend{borrows: 2}, clock())
	ctx := context.Background()

	assert.False(t, wf.Ready())

	require.NoError(t, wf.SelectBook(availableBook()))
	assert.False(t, wf.Ready())
	assert.Equal(t, StateSelecting, wf.State())

	require.NoError(t, wf.SelectUser(ctx, activeUser()))
	assert.True(t, wf.Ready())
	assert.Equal(t, StateReadyToConfirm, wf.State())
	assert.Equal(t, 2, wf.Selection().ActiveBorrows)

	// Removing a required date drops readiness again.
	require.NoError(t, wf.SetDueDate(time.Time{}))
	assert.False(t, wf.Ready())
	assert.Equal(t, StateSelecting, wf.State())

	require.NoError(t, wf.SetDueDate(fixedNow.AddDate(0, 0, 14)))
	assert.Equal(t, StateReadyToConfirm, wf.State())

	wf.ClearUser()
	assert.False(t, wf.Ready())
	assert.Zero(t, wf.Selection().ActiveBorrows)
}

func TestIssueRejectsIneligibleSelections(t *testing.T) {
	wf := New(KindIssue, &fakeBackend{}, clock())

	reference := availableBook()
	reference.BookType = api.BookReference
	assert.Error(t, wf.SelectBook(reference))

	issued := availableBook()
	issued.BookStatus = api.BookIssued
	assert.Error(t, wf.SelectBook(issued))

	suspended := activeUser()
	suspended.UserStatus = api.UserSuspended
	assert.Error(t, wf.SelectUser(context.Background(), suspended))

	assert.Error(t, wf.SelectTransaction(openTransaction()))
}

func TestActiveBorrowsFetchFailureDegradesToZero(t *testing.T) {
	backend := &fakeBackend{borrows: 7, borrowsErr: errors.New("boom")}
	wf := New(KindIssue, backend, clock())

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(context.Background(), activeUser()))

	assert.Zero(t, wf.Selection().ActiveBorrows)
	assert.True(t, wf.Ready(), "count fetch failure must not block the workflow")
}

func TestIssueHappyPath(t *testing.T) {
	committed := openTransaction()
	backend := &fakeBackend{txn: &committed}
	wf := New(KindIssue, backend, clock())
	ctx := context.Background()

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(ctx, activeUser()))
	wf.SetNotes("issued at the front desk")

	summary, err := wf.BeginConfirm()
	require.NoError(t, err)
	assert.Equal(t, StateConfirming, wf.State())
	assert.Equal(t, "The Go Programming Language", summary.BookTitle)
	assert.Equal(t, "ACC-0042", summary.AccessionNumber)
	assert.Equal(t, "Priya Nair", summary.UserFullName)
	assert.Equal(t, "EMP100", summary.EmployeeID)

	txn, err := wf.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, wf.State())
	assert.Equal(t, "txn-1", txn.ID)

	require.EqualValues(t, 1, backend.issueCalls.Load())
	assert.Equal(t, api.IssueRequest{
		BookID:    "book-1",
		UserID:    "user-1",
		IssueDate: "2025-03-10",
		DueDate:   "2025-04-09",
	}, backend.lastIssue)

	result, ok := wf.Result()
	require.True(t, ok)
	assert.Equal(t, &committed, result)
}

func TestCancelKeepsSelectionAndDiscardsPayload(t *testing.T) {
	wf := New(KindIssue, &fakeBackend{}, clock())
	ctx := context.Background()

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(ctx, activeUser()))

	_, err := wf.BeginConfirm()
	require.NoError(t, err)
	require.NoError(t, wf.Cancel())

	assert.Equal(t, StateReadyToConfirm, wf.State())
	assert.NotNil(t, wf.Selection().Book)
	assert.NotNil(t, wf.Selection().User)

	// Submit without reopening the gate is refused.
	_, err = wf.Submit(ctx)
	assert.Error(t, err)
}

func TestSubmitFailureSurfacesServerMessage(t *testing.T) {
	backend := &fakeBackend{err: &api.Error{StatusCode: 400, Message: "Book ACC-0042 is not available for issue"}}
	wf := New(KindIssue, backend, clock())
	ctx := context.Background()

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(ctx, activeUser()))
	_, err := wf.BeginConfirm()
	require.NoError(t, err)

	_, err = wf.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, StateFailed, wf.State())
	assert.Equal(t, "Book ACC-0042 is not available for issue", wf.FailureMessage())

	// The pending payload is gone; a bare resubmit cannot happen.
	_, err = wf.Submit(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 1, backend.issueCalls.Load())

	// Retry reopens the flow with the selection intact.
	require.NoError(t, wf.Retry())
	assert.Equal(t, StateReadyToConfirm, wf.State())
	assert.Empty(t, wf.FailureMessage())
}

func TestSubmitTransportFailureShowsGenericMessage(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	wf := New(KindIssue, backend, clock())
	ctx := context.Background()

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(ctx, activeUser()))
	_, err := wf.BeginConfirm()
	require.NoError(t, err)

	_, err = wf.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, api.GenericFailureMessage, wf.FailureMessage())
}

func TestReturnWorkflow(t *testing.T) {
	committed := openTransaction()
	committed.Status = api.TxnCompleted
	backend := &fakeBackend{txn: &committed}
	wf := New(KindReturn, backend, clock())

	closed := openTransaction()
	closed.Status = api.TxnCompleted
	assert.Error(t, wf.SelectTransaction(closed), "closed transactions are not returnable")

	require.NoError(t, wf.SelectTransaction(openTransaction()))
	assert.True(t, wf.Ready())
	wf.SetNotes("slightly worn cover")

	_, err := wf.BeginConfirm()
	require.NoError(t, err)
	txn, err := wf.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, api.TxnCompleted, txn.Status)
	assert.Equal(t, api.ReturnRequest{
		TransactionID:    "txn-1",
		TransactionNotes: "slightly worn cover",
	}, backend.lastReturn)
}

func TestRenewProposesDueDatePlusThirtyDays(t *testing.T) {
	wf := New(KindRenew, &fakeBackend{}, clock())

	require.NoError(t, wf.SelectTransaction(openTransaction()))
	assert.Equal(t, "2025-04-30", api.FormatWire(wf.Selection().NewDueDate))
	assert.True(t, wf.Ready())
}

func TestRenewDateOnlyGuardsAgainstThePast(t *testing.T) {
	overdue := openTransaction()
	overdue.Status = api.TxnOverdue
	overdue.DueDate = "2025-02-20"

	backend := &fakeBackend{txn: &overdue}
	wf := New(KindRenew, backend, clock())
	require.NoError(t, wf.SelectTransaction(overdue))

	assert.Error(t, wf.SetNewDueDate(fixedNow.AddDate(0, 0, -1)))

	// Today passes the picker check even though it precedes nothing
	// but the old due date; the value is not re-validated at submit.
	require.NoError(t, wf.SetNewDueDate(fixedNow))
	_, err := wf.BeginConfirm()
	require.NoError(t, err)
	_, err = wf.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", backend.lastRenew.NewDueDate)
}

func TestRenewGuardComparesCalendarDaysAcrossLocations(t *testing.T) {
	backend := &fakeBackend{}

	// Clock running west of UTC, still on March 10 locally. A picked
	// date parsed in UTC names the same calendar day and must pass,
	// even though the UTC instant is earlier than local midnight.
	local := time.FixedZone("UTC-7", -7*60*60)
	wf := New(KindRenew, backend, WithClock(func() time.Time {
		return time.Date(2025, 3, 10, 0, 30, 0, 0, local)
	}))
	require.NoError(t, wf.SelectTransaction(openTransaction()))

	picked, err := time.Parse(api.WireDate, "2025-03-10")
	require.NoError(t, err)
	require.NoError(t, wf.SetNewDueDate(picked))
	assert.Equal(t, "2025-03-10", api.FormatWire(wf.Selection().NewDueDate))

	// The previous calendar day is still rejected regardless of zone.
	assert.Error(t, wf.SetNewDueDate(time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)))

	// Mirror case: clock east of UTC on March 11 while UTC is still on
	// March 10. The picked UTC date is a day behind and must fail.
	east := time.FixedZone("UTC+13", 13*60*60)
	wf = New(KindRenew, backend, WithClock(func() time.Time {
		return time.Date(2025, 3, 11, 1, 0, 0, 0, east)
	}))
	require.NoError(t, wf.SelectTransaction(openTransaction()))
	assert.Error(t, wf.SetNewDueDate(picked))
}

func TestRenewalCountComesFromTheServer(t *testing.T) {
	renewed := openTransaction()
	renewed.RenewalCount = 3
	renewed.DueDate = "2025-05-15"

	backend := &fakeBackend{txn: &renewed}
	wf := New(KindRenew, backend, clock())

	require.NoError(t, wf.SelectTransaction(openTransaction()))
	require.NoError(t, wf.SetNewDueDate(fixedNow.AddDate(0, 0, 20)))

	_, err := wf.BeginConfirm()
	require.NoError(t, err)
	txn, err := wf.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, txn.RenewalCount)
	assert.Equal(t, "2025-05-15", txn.DueDate)
	assert.EqualValues(t, 1, backend.renewCalls.Load())
}

func TestSelectionFrozenWhileConfirming(t *testing.T) {
	wf := New(KindIssue, &fakeBackend{}, clock())
	ctx := context.Background()

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(ctx, activeUser()))
	_, err := wf.BeginConfirm()
	require.NoError(t, err)

	other := availableBook()
	other.ID = "book-2"
	assert.Error(t, wf.SelectBook(other))

	_, err = wf.BeginConfirm()
	assert.Error(t, err, "the gate cannot be opened twice")
}

func TestResetStartsFresh(t *testing.T) {
	committed := openTransaction()
	backend := &fakeBackend{txn: &committed}
	wf := New(KindIssue, backend, clock())
	ctx := context.Background()

	require.NoError(t, wf.SelectBook(availableBook()))
	require.NoError(t, wf.SelectUser(ctx, activeUser()))
	_, err := wf.BeginConfirm()
	require.NoError(t, err)
	_, err = wf.Submit(ctx)
	require.NoError(t, err)

	wf.Reset()
	assert.Equal(t, StateSelecting, wf.State())
	sel := wf.Selection()
	assert.Nil(t, sel.Book)
	assert.Nil(t, sel.User)
	assert.Equal(t, "2025-03-10", api.FormatWire(sel.IssueDate))
	_, ok := wf.Result()
	assert.False(t, ok)
}

func TestKindMismatchesAreRejected(t *testing.T) {
	ret := New(KindReturn, &fakeBackend{}, clock())
	assert.Error(t, ret.SelectBook(availableBook()))
	assert.Error(t, ret.SelectUser(context.Background(), activeUser()))
	assert.Error(t, ret.SetIssueDate(fixedNow))
	assert.Error(t, ret.SetNewDueDate(fixedNow))

	issue := New(KindIssue, &fakeBackend{}, clock())
	assert.Error(t, issue.SetNewDueDate(fixedNow))
}

func TestSubmitCountsStayExact(t *testing.T) {
	committed := openTransaction()
	backend := &fakeBackend{txn: &committed}
	wf := New(KindReturn, backend, clock())

	require.NoError(t, wf.SelectTransaction(openTransaction()))
	for i := 0; i < 3; i++ {
		_, err := wf.BeginConfirm()
		if err != nil {
			break
		}
		_, err = wf.Submit(context.Background())
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, backend.returnCalls.Load(),
		fmt.Sprintf("exactly one request expected, got %d", backend.returnCalls.Load()))
}
