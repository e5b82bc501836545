// internal/search/provider_test.go
package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

type stubBackend struct {
	mu      sync.Mutex
	queries []string

	calls atomic.Int64
	books []api.Book
	users []api.User
	txns  []api.Transaction
	page  *api.Pagination
	err   error

	// block, when set, holds SearchBooks until released.
	block chan struct{}
}

func (s *stubBackend) SearchBooks(_ context.Context, query string, _, _ int, _, _ string) ([]api.Book, *api.Pagination, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.queries = append(s.queries, query)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	return s.books, s.page, s.err
}

func (s *stubBackend) SearchUsers(_ context.Context, query string) ([]api.User, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	return s.users, s.err
}

func (s *stubBackend) SearchTransactions(_ context.Context, query string, _, _ int, _, _ string) ([]api.Transaction, *api.Pagination, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	return s.txns, s.page, s.err
}

func (s *stubBackend) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

type capture struct {
	mu      sync.Mutex
	results []Results
	errors  []string
}

func (c *capture) onResults(r Results) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *capture) onError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
}

func (c *capture) latest() (Results, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return Results{}, false
	}
	return c.results[len(c.results)-1], true
}

func (c *capture) waitForResult(t *testing.T) Results {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r, ok := c.latest(); ok {
			return r
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no result delivered in time")
	return Results{}
}

func newTestProvider(backend Backend, cap *capture, opts Config) *Provider {
	cfg := opts
	if cfg.Debounce == 0 {
		cfg.Debounce = 20 * time.Millisecond
	}
	cfg.OnResults = cap.onResults
	cfg.OnError = cap.onError
	return New(backend, cfg)
}

func TestRapidKeystrokesCoalesceIntoOneRequest(t *testing.T) {
	backend := &stubBackend{books: []api.Book{{ID: "b1", Title: "Go", BookStatus: api.BookAvailable}}}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook})
	defer p.Close()

	for _, q := range []string{"g", "go", "gol", "gola", "golan", "golang"} {
		p.SetQuery(q)
		time.Sleep(2 * time.Millisecond)
	}

	r := cap.waitForResult(t)
	assert.Equal(t, "golang", r.Query)
	assert.EqualValues(t, 1, backend.calls.Load(), "only the final keystroke may reach the network")
	assert.Equal(t, []string{"golang"}, backend.seen())
}

func TestEmptyQueryResolvesWithoutNetwork(t *testing.T) {
	backend := &stubBackend{}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook})
	defer p.Close()

	p.SetQuery("   ")
	r := cap.waitForResult(t)

	assert.Empty(t, r.Books)
	assert.Zero(t, backend.calls.Load())
}

func TestSubMinimumQueryResolvesWithoutNetwork(t *testing.T) {
	backend := &stubBackend{}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindUser, MinLength: 3})
	defer p.Close()

	p.SetQuery("ab")
	r := cap.waitForResult(t)

	assert.Empty(t, r.Users)
	assert.Zero(t, backend.calls.Load())
}

func TestStaleResponseNeverOverwritesNewerQuery(t *testing.T) {
	release := make(chan struct{})
	backend := &stubBackend{
		books: []api.Book{{ID: "slow", Title: "Slow Result", BookStatus: api.BookAvailable}},
		block: release,
	}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook, Debounce: time.Millisecond})
	defer p.Close()

	p.SetQuery("first")
	// Wait until the slow request is actually in flight.
	require.Eventually(t, func() bool { return backend.calls.Load() == 1 }, time.Second, time.Millisecond)

	// A newer query supersedes it, then the slow response lands.
	p.SetQuery("")
	second := cap.waitForResult(t)
	assert.Equal(t, "", second.Query)

	close(release)
	time.Sleep(50 * time.Millisecond)

	r, ok := cap.latest()
	require.True(t, ok)
	assert.Equal(t, "", r.Query, "the superseded response must be discarded")
	assert.Empty(t, r.Books)
}

func TestSearchFailureDeliversEmptyResultsAndMessage(t *testing.T) {
	backend := &stubBackend{err: &api.Error{StatusCode: 500, Message: "search is down"}}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook})
	defer p.Close()

	p.SetQuery("databases")
	r := cap.waitForResult(t)

	assert.Empty(t, r.Books)
	cap.mu.Lock()
	defer cap.mu.Unlock()
	require.Len(t, cap.errors, 1)
	assert.Equal(t, "search is down", cap.errors[0])
}

func TestTransportFailureShowsGenericMessage(t *testing.T) {
	backend := &stubBackend{err: context.DeadlineExceeded}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook})
	defer p.Close()

	p.SetQuery("anything")
	cap.waitForResult(t)

	cap.mu.Lock()
	defer cap.mu.Unlock()
	require.Len(t, cap.errors, 1)
	assert.Equal(t, api.GenericFailureMessage, cap.errors[0])
}

func TestFiltersDropIneligibleEntities(t *testing.T) {
	backend := &stubBackend{books: []api.Book{
		{ID: "b1", Title: "Circulating", BookStatus: api.BookAvailable, BookType: api.BookGeneral},
		{ID: "b2", Title: "Reference Only", BookStatus: api.BookAvailable, BookType: api.BookReference},
		{ID: "b3", Title: "Already Out", BookStatus: api.BookIssued, BookType: api.BookGeneral},
	}}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook, Filter: IssuableBooks})
	defer p.Close()

	p.SetQuery("anything")
	r := cap.waitForResult(t)

	require.Len(t, r.Books, 1)
	assert.Equal(t, "b1", r.Books[0].ID)
}

func TestSetPageBypassesDebounce(t *testing.T) {
	backend := &stubBackend{
		books: []api.Book{{ID: "b1", Title: "Go", BookStatus: api.BookAvailable}},
		page:  &api.Pagination{TotalElements: 12, TotalPages: 3, CurrentPage: 1, PageSize: 5},
	}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook, Debounce: time.Hour})
	defer p.Close()

	p.SetQuery("go")
	p.SetPage(1)

	r := cap.waitForResult(t)
	require.NotNil(t, r.Pagination)
	assert.Equal(t, 1, r.Pagination.CurrentPage)
	assert.EqualValues(t, 1, backend.calls.Load(), "the debounced keystroke fetch must be superseded")
}

func TestCloseSuppressesLateDeliveries(t *testing.T) {
	release := make(chan struct{})
	backend := &stubBackend{
		books: []api.Book{{ID: "b1", Title: "Go", BookStatus: api.BookAvailable}},
		block: release,
	}
	cap := &capture{}
	p := newTestProvider(backend, cap, Config{Kind: KindBook, Debounce: time.Millisecond})

	p.SetQuery("go")
	require.Eventually(t, func() bool { return backend.calls.Load() == 1 }, time.Second, time.Millisecond)

	p.Close()
	close(release)
	time.Sleep(50 * time.Millisecond)

	_, ok := cap.latest()
	assert.False(t, ok, "a closed provider must not deliver")
}

func TestFilterHelpers(t *testing.T) {
	r := &Results{
		Users: []api.User{
			{ID: "u1", UserStatus: api.UserActive},
			{ID: "u2", UserStatus: api.UserSuspended},
			{ID: "u3", UserStatus: api.UserExpired},
		},
		Transactions: []api.Transaction{
			{ID: "t1", Status: api.TxnActive},
			{ID: "t2", Status: api.TxnOverdue},
			{ID: "t3", Status: api.TxnCompleted},
		},
	}

	ActiveUsers(r)
	require.Len(t, r.Users, 1)
	assert.Equal(t, "u1", r.Users[0].ID)

	OpenTransactions(r)
	require.Len(t, r.Transactions, 2)
	assert.Equal(t, "t1", r.Transactions[0].ID)
	assert.Equal(t, "t2", r.Transactions[1].ID)
}
