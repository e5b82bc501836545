// internal/search/provider.go
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// Backend is the slice of the API client the provider needs.
type Backend interface {
	SearchBooks(ctx context.Context, query string, page, size int, sortBy, sortDir string) ([]api.Book, *api.Pagination, error)
	SearchUsers(ctx context.Context, query string) ([]api.User, error)
	SearchTransactions(ctx context.Context, query string, page, size int, sortBy, sortDir string) ([]api.Transaction, *api.Pagination, error)
}

// Kind selects which entity a provider searches.
type Kind string

const (
	KindBook        Kind = "book"
	KindUser        Kind = "user"
	KindTransaction Kind = "transaction"
)

// Results is one projection of a query onto the backend. Exactly one
// of the entity slices is populated, matching the provider's kind.
type Results struct {
	Query        string
	Books        []api.Book
	Users        []api.User
	Transactions []api.Transaction
	Pagination   *api.Pagination
}

// Config describes one provider.
type Config struct {
	Kind Kind

	// Debounce is how long input must pause before a request is
	// issued. Defaults to 300ms.
	Debounce time.Duration

	// MinLength is the minimum query length (in runes, after
	// trimming) that triggers a network call. Shorter queries yield
	// an immediate empty result set. Zero means any non-empty query
	// searches.
	MinLength int

	// PageSize bounds each result page. Defaults to 5, the size the
	// lending workflows display.
	PageSize int

	// Filter post-processes results before delivery, e.g. dropping
	// non-issuable books. Nil keeps everything.
	Filter func(*Results)

	// OnResults receives the freshest results. Superseded responses
	// are discarded before this is called.
	OnResults func(Results)

	// OnError receives a user-visible message when a search fails.
	// The result set delivered alongside a failure is always empty.
	OnError func(message string)
}

// Provider is a debounced, cancelable query-to-results projection.
// Every keystroke supersedes whatever came before it: pending timers
// are stopped and in-flight responses are discarded by token, so the
// displayed results always belong to the latest query by issuance
// order, never by completion order.
type Provider struct {
	mu      sync.Mutex
	backend Backend
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc

	query  string
	latest uint64
	timer  *time.Timer
}

// New creates a provider. Close it when the owning view goes away so
// in-flight fetches stop updating it.
func New(backend Backend, cfg Config) *Provider {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Provider{
		backend: backend,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close cancels any in-flight fetch and stops pending timers. State
// updates after Close are suppressed.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.latest++
	p.cancel()
}

// SetQuery records a keystroke. The debounce timer restarts, so a
// rapid sequence of calls within the debounce window issues exactly
// one request, for the final query. Empty and sub-minimum queries
// resolve immediately to an empty result set without a network call.
func (p *Provider) SetQuery(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.query = query
	p.latest++
	token := p.latest

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len([]rune(trimmed)) < p.cfg.MinLength {
		go p.deliver(token, Results{Query: query}, "")
		return
	}

	p.timer = time.AfterFunc(p.cfg.Debounce, func() {
		p.fetch(token, trimmed, 0)
	})
}

// SetPage fetches another page of the current query immediately, with
// no debounce. Page changes supersede pending keystroke fetches.
func (p *Provider) SetPage(page int) {
	p.mu.Lock()
	trimmed := strings.TrimSpace(p.query)
	p.latest++
	token := p.latest
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()

	if trimmed == "" || len([]rune(trimmed)) < p.cfg.MinLength {
		p.deliver(token, Results{Query: p.query}, "")
		return
	}
	go p.fetch(token, trimmed, page)
}

// fetch issues one backend request for the given token and delivers
// its outcome, unless the token has been superseded meanwhile.
func (p *Provider) fetch(token uint64, query string, page int) {
	results := Results{Query: query}
	var err error

	switch p.cfg.Kind {
	case KindUser:
		results.Users, err = p.backend.SearchUsers(p.ctx, query)
	case KindTransaction:
		results.Transactions, results.Pagination, err = p.backend.SearchTransactions(p.ctx, query, page, p.cfg.PageSize, "", "")
	default:
		results.Books, results.Pagination, err = p.backend.SearchBooks(p.ctx, query, page, p.cfg.PageSize, "", "")
	}

	if err != nil {
		p.deliver(token, Results{Query: query}, api.UserMessage(err))
		return
	}

	if p.cfg.Filter != nil {
		p.cfg.Filter(&results)
	}
	p.deliver(token, results, "")
}

// deliver applies an outcome if and only if token is still the latest.
// Stale responses, including those racing a Close, are dropped here.
func (p *Provider) deliver(token uint64, results Results, errMsg string) {
	p.mu.Lock()
	stale := token != p.latest
	p.mu.Unlock()
	if stale {
		return
	}

	if errMsg != "" {
		if p.cfg.OnError != nil {
			p.cfg.OnError(errMsg)
		}
		if p.cfg.OnResults != nil {
			p.cfg.OnResults(results)
		}
		return
	}
	if p.cfg.OnResults != nil {
		p.cfg.OnResults(results)
	}
}

// IssuableBooks drops books that cannot be issued: anything not
// AVAILABLE, and reference-only copies.
func IssuableBooks(r *Results) {
	kept := r.Books[:0]
	for _, b := range r.Books {
		if b.Issuable() {
			kept = append(kept, b)
		}
	}
	r.Books = kept
}

// ActiveUsers drops accounts that cannot borrow.
func ActiveUsers(r *Results) {
	kept := r.Users[:0]
	for _, u := range r.Users {
		if u.Borrowable() {
			kept = append(kept, u)
		}
	}
	r.Users = kept
}

// OpenTransactions keeps only transactions still eligible for a
// return or a renewal (status ACTIVE or OVERDUE).
func OpenTransactions(r *Results) {
	kept := r.Transactions[:0]
	for _, t := range r.Transactions {
		if t.Open() {
			kept = append(kept, t)
		}
	}
	r.Transactions = kept
}
