// internal/api/transactions.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SearchBooks queries the catalog. Sorting defaults to title ASC when
// sortBy/sortDir are empty, matching the issue workflow's search.
func (c *Client) SearchBooks(ctx context.Context, query string, page, size int, sortBy, sortDir string) ([]Book, *Pagination, error) {
	if sortBy == "" {
		sortBy = "title"
	}
	if sortDir == "" {
		sortDir = "ASC"
	}

	var books []Book
	pagination, err := c.search(ctx, "/books/search", searchParams(query, page, size, sortBy, sortDir), &books)
	if err != nil {
		return nil, nil, err
	}
	return books, pagination, nil
}

// GetBook fetches one catalog record by its internal identifier.
func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	var book Book
	if _, err := c.get(ctx, "/books/"+url.PathEscape(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// SearchUsers queries user accounts.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	params := url.Values{}
	params.Set("query", query)

	var users []User
	if _, err := c.search(ctx, "/users/search", params, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user account by its internal identifier.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if _, err := c.get(ctx, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchTransactions queries lending transactions. Sorting defaults to
// issueDate DESC when sortBy/sortDir are empty.
func (c *Client) SearchTransactions(ctx context.Context, query string, page, size int, sortBy, sortDir string) ([]Transaction, *Pagination, error) {
	if sortBy == "" {
		sortBy = "issueDate"
	}
	if sortDir == "" {
		sortDir = "DESC"
	}

	var txns []Transaction
	pagination, err := c.search(ctx, "/transactions/search", searchParams(query, page, size, sortBy, sortDir), &txns)
	if err != nil {
		return nil, nil, err
	}
	return txns, pagination, nil
}

// GetTransaction fetches one lending transaction by identifier.
func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	var txn Transaction
	if _, err := c.get(ctx, "/transactions/"+url.PathEscape(id), nil, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// ActiveBorrows returns the number of ACTIVE or OVERDUE transactions
// attributed to the user.
func (c *Client) ActiveBorrows(ctx context.Context, userID string) (int, error) {
	var count int
	if _, err := c.get(ctx, "/transactions/user/"+url.PathEscape(userID)+"/active-borrows", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// IssueBook commits an issue operation. Exactly one request per call;
// there is no client-side deduplication of resubmissions.
func (c *Client) IssueBook(ctx context.Context, req IssueRequest) (*Transaction, error) {
	if req.BookID == "" || req.UserID == "" {
		return nil, fmt.Errorf("issue requires both bookId and userId")
	}

	var txn Transaction
	if _, err := c.do(ctx, http.MethodPost, "/transactions/issue", nil, req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// ReturnBook commits a return operation.
func (c *Client) ReturnBook(ctx context.Context, req ReturnRequest) (*Transaction, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("return requires a transactionId")
	}

	var txn Transaction
	if _, err := c.do(ctx, http.MethodPost, "/transactions/return", nil, req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// RenewBook commits a renew operation.
func (c *Client) RenewBook(ctx context.Context, req RenewRequest) (*Transaction, error) {
	if req.TransactionID == "" || req.NewDueDate == "" {
		return nil, fmt.Errorf("renew requires a transactionId and a newDueDate")
	}

	var txn Transaction
	if _, err := c.do(ctx, http.MethodPost, "/transactions/renew", nil, req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func searchParams(query string, page, size int, sortBy, sortDir string) url.Values {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	params.Set("sortBy", sortBy)
	params.Set("sortDir", sortDir)
	return params
}
