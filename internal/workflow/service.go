// internal/workflow/service.go
package workflow

import (
	"context"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// Backend is the slice of the API client the workflows need: the three
// mutating endpoints plus the auxiliary active-borrows count.
type Backend interface {
	IssueBook(ctx context.Context, req api.IssueRequest) (*api.Transaction, error)
	ReturnBook(ctx context.Context, req api.ReturnRequest) (*api.Transaction, error)
	RenewBook(ctx context.Context, req api.RenewRequest) (*api.Transaction, error)
	ActiveBorrows(ctx context.Context, userID string) (int, error)
}
