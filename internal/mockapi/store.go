// internal/mockapi/store.go
package mockapi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// MaxRenewals caps how often a single loan may be renewed.
const MaxRenewals = 3

var (
	errNotFound = errors.New("not found")
)

// badRequest is a store-level validation failure that the handler maps
// to a 400 with the message verbatim.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

type account struct {
	user         api.User
	passwordHash []byte
}

// Store is the in-memory state behind the development server. All
// access goes through the mutex; there is no persistence.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	accounts map[string]*account // keyed by username (employeeId)
	books    map[string]*api.Book
	txns     map[string]*api.Transaction
}

// NewStore creates an empty store.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		accounts: make(map[string]*account),
		books:    make(map[string]*api.Book),
		txns:     make(map[string]*api.Transaction),
	}
}

// Seed loads a small fixture set: one super admin, one admin, a couple
// of members, and a handful of books.
func (s *Store) Seed() error {
	users := []struct {
		employeeID, fullName, email, password string
		role                                  api.UserRole
		status                                api.UserStatus
	}{
		{"EMP001", "Asha Verma", "asha.verma@example.org", "changeme", api.RoleSuperAdmin, api.UserActive},
		{"EMP002", "Daniel Okoye", "daniel.okoye@example.org", "changeme", api.RoleAdmin, api.UserActive},
		{"EMP100", "Priya Nair", "priya.nair@example.org", "changeme", api.RoleMember, api.UserActive},
		{"EMP101", "Marco Silva", "marco.silva@example.org", "changeme", api.RoleMember, api.UserActive},
		{"EMP102", "Lena Hoffmann", "lena.hoffmann@example.org", "changeme", api.RoleMember, api.UserSuspended},
	}
	for _, u := range users {
		if _, err := s.AddUser(api.User{
			EmployeeID: u.employeeID,
			FullName:   u.fullName,
			Email:      u.email,
			UserRole:   u.role,
			UserStatus: u.status,
		}, u.password); err != nil {
			return err
		}
	}

	books := []api.Book{
		{AccessionNumber: "ACC-0001", ISBN: "9780134190440", Title: "The Go Programming Language", AuthorPrimary: "Alan A. A. Donovan", Publisher: "Addison-Wesley", BookStatus: api.BookAvailable, BookType: api.BookGeneral, TotalCopies: 1, AvailableCopies: 1},
		{AccessionNumber: "ACC-0002", ISBN: "9781491973899", Title: "Designing Data-Intensive Applications", AuthorPrimary: "Martin Kleppmann", Publisher: "O'Reilly", BookStatus: api.BookAvailable, BookType: api.BookGeneral, TotalCopies: 1, AvailableCopies: 1},
		{AccessionNumber: "ACC-0003", ISBN: "9780201633610", Title: "Design Patterns", AuthorPrimary: "Erich Gamma", Publisher: "Addison-Wesley", BookStatus: api.BookAvailable, BookType: api.BookReference, TotalCopies: 1, AvailableCopies: 1},
		{AccessionNumber: "ACC-0004", ISBN: "9780135957059", Title: "The Pragmatic Programmer", AuthorPrimary: "David Thomas", Publisher: "Addison-Wesley", BookStatus: api.BookIssued, BookType: api.BookGeneral, TotalCopies: 1, AvailableCopies: 0},
	}
	for _, b := range books {
		if _, err := s.AddBook(b); err != nil {
			return err
		}
	}
	return nil
}

// AddUser registers an account. The employee id doubles as the login
// username and must be unique.
func (s *Store) AddUser(u api.User, password string) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(strings.TrimSpace(u.EmployeeID))
	if key == "" {
		return nil, badRequest{"employeeId is required"}
	}
	if _, exists := s.accounts[key]; exists {
		return nil, badRequest{fmt.Sprintf("employeeId %s already exists", u.EmployeeID)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u.ID = uuid.NewString()
	u.EmployeeID = key
	s.accounts[key] = &account{user: u, passwordHash: hash}
	return &u, nil
}

// Authenticate checks the username/password pair and returns the
// matched account.
func (s *Store) Authenticate(username, password string) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToUpper(strings.TrimSpace(username))]
	if !ok {
		return nil, badRequest{"Invalid username or password"}
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, badRequest{"Invalid username or password"}
	}
	user := acc.user
	return &user, nil
}

// AddBook registers a catalog record. Accession numbers are unique.
func (s *Store) AddBook(b api.Book) (*api.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBookLocked(b)
}

func (s *Store) addBookLocked(b api.Book) (*api.Book, error) {
	acc := strings.TrimSpace(b.AccessionNumber)
	if acc == "" {
		return nil, badRequest{"accessionNumber is required"}
	}
	for _, existing := range s.books {
		if existing.AccessionNumber == acc {
			return nil, badRequest{fmt.Sprintf("accessionNumber %s already exists", acc)}
		}
	}

	b.ID = uuid.NewString()
	b.AccessionNumber = acc
	if b.BookStatus == "" {
		b.BookStatus = api.BookAvailable
	}
	if b.BookType == "" {
		b.BookType = api.BookGeneral
	}
	if b.TotalCopies == 0 {
		b.TotalCopies = 1
		b.AvailableCopies = 1
	}
	s.books[b.ID] = &b
	copied := b
	return &copied, nil
}

// GetBook returns a copy of the book with the given id.
func (s *Store) GetBook(id string) (*api.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *b
	return &copied, nil
}

// GetUserByID returns a copy of the user with the given id.
func (s *Store) GetUserByID(id string) (*api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.userByIDLocked(id)
	if acc == nil {
		return nil, errNotFound
	}
	user := acc.user
	return &user, nil
}

func (s *Store) userByIDLocked(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

// GetTransaction returns a copy of the transaction with the given id.
func (s *Store) GetTransaction(id string) (*api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *t
	return &copied, nil
}

// SearchBooks returns books matching the query, sorted and paged.
func (s *Store) SearchBooks(query string, page, size int, sortDir string) ([]api.Book, *api.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var matched []api.Book
	for _, b := range s.books {
		if q == "" || containsAny(q, b.Title, b.AuthorPrimary, b.AccessionNumber, b.ISBN) {
			matched = append(matched, *b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if strings.EqualFold(sortDir, "DESC") {
			return matched[i].Title > matched[j].Title
		}
		return matched[i].Title < matched[j].Title
	})
	paged, pagination := pageSlice(matched, page, size)
	return paged, pagination
}

// SearchUsers returns users matching the query.
func (s *Store) SearchUsers(query string) []api.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var matched []api.User
	for _, acc := range s.accounts {
		u := acc.user
		if q == "" || containsAny(q, u.FullName, u.EmployeeID, u.Email) {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].FullName < matched[j].FullName })
	return matched
}

// SearchTransactions returns transactions matching the query, sorted
// by issue date and paged.
func (s *Store) SearchTransactions(query string, page, size int, sortDir string) ([]api.Transaction, *api.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var matched []api.Transaction
	for _, t := range s.txns {
		if q == "" || containsAny(q, t.BookTitle, t.BookAccessionNumber, t.UserFullName, t.ID) {
			matched = append(matched, *t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if strings.EqualFold(sortDir, "ASC") {
			return matched[i].IssueDate < matched[j].IssueDate
		}
		return matched[i].IssueDate > matched[j].IssueDate
	})
	paged, pagination := pageSlice(matched, page, size)
	return paged, pagination
}

// ActiveBorrows counts the user's open loans.
func (s *Store) ActiveBorrows(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.txns {
		if t.UserID == userID && t.Open() {
			count++
		}
	}
	return count
}

// Issue records a new loan and updates the book and user state.
func (s *Store) Issue(req api.IssueRequest, issuedBy *api.User) (*api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[req.BookID]
	if !ok {
		return nil, badRequest{"Book not found"}
	}
	borrower := s.userByIDLocked(req.UserID)
	if borrower == nil {
		return nil, badRequest{"User not found"}
	}
	if !book.Issuable() {
		return nil, badRequest{fmt.Sprintf("Book %s is not available for issue", book.AccessionNumber)}
	}
	if !borrower.user.Borrowable() {
		return nil, badRequest{fmt.Sprintf("User %s is not eligible to borrow", borrower.user.EmployeeID)}
	}
	if _, err := time.Parse(api.WireDate, req.IssueDate); err != nil {
		return nil, badRequest{"issueDate must be yyyy-MM-dd"}
	}
	if _, err := time.Parse(api.WireDate, req.DueDate); err != nil {
		return nil, badRequest{"dueDate must be yyyy-MM-dd"}
	}

	txn := &api.Transaction{
		ID:                  uuid.NewString(),
		BookID:              book.ID,
		BookTitle:           book.Title,
		BookAccessionNumber: book.AccessionNumber,
		UserID:              borrower.user.ID,
		UserFullName:        borrower.user.FullName,
		TransactionType:     api.TxnIssue,
		Status:              api.TxnActive,
		IssueDate:           req.IssueDate,
		DueDate:             req.DueDate,
	}
	if issuedBy != nil {
		txn.IssuedByUserID = issuedBy.ID
		txn.IssuedByUserFullName = issuedBy.FullName
	}

	book.AvailableCopies--
	if book.AvailableCopies <= 0 {
		book.BookStatus = api.BookIssued
	}
	borrower.user.BooksIssued++
	s.txns[txn.ID] = txn

	copied := *txn
	return &copied, nil
}

// Return closes an open loan and releases the book.
func (s *Store) Return(req api.ReturnRequest, returnedTo *api.User) (*api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.txns[req.TransactionID]
	if !ok {
		return nil, badRequest{"Transaction not found"}
	}
	if !txn.Open() {
		return nil, badRequest{fmt.Sprintf("Transaction is already %s", txn.Status)}
	}

	txn.Status = api.TxnCompleted
	txn.ReturnDate = s.now().Format(api.WireDate)
	if req.TransactionNotes != "" {
		txn.TransactionNotes = req.TransactionNotes
	}
	if returnedTo != nil {
		txn.ReturnedToUserID = returnedTo.ID
	}

	if book, ok := s.books[txn.BookID]; ok {
		book.AvailableCopies++
		if book.AvailableCopies > 0 && book.BookStatus == api.BookIssued {
			book.BookStatus = api.BookAvailable
		}
	}
	if borrower := s.userByIDLocked(txn.UserID); borrower != nil && borrower.user.BooksIssued > 0 {
		borrower.user.BooksIssued--
	}

	copied := *txn
	return &copied, nil
}

// Renew extends an open loan's due date.
func (s *Store) Renew(req api.RenewRequest) (*api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.txns[req.TransactionID]
	if !ok {
		return nil, badRequest{"Transaction not found"}
	}
	if !txn.Open() {
		return nil, badRequest{fmt.Sprintf("Transaction is already %s", txn.Status)}
	}
	if txn.RenewalCount >= MaxRenewals {
		return nil, badRequest{fmt.Sprintf("Maximum of %d renewals reached", MaxRenewals)}
	}
	newDue, err := time.Parse(api.WireDate, req.NewDueDate)
	if err != nil {
		return nil, badRequest{"newDueDate must be yyyy-MM-dd"}
	}
	currentDue, err := time.Parse(api.WireDate, txn.DueDate)
	if err == nil && !newDue.After(currentDue) {
		return nil, badRequest{"newDueDate must be after the current due date"}
	}

	txn.DueDate = req.NewDueDate
	txn.RenewalCount++
	if req.TransactionNotes != "" {
		txn.TransactionNotes = req.TransactionNotes
	}

	copied := *txn
	return &copied, nil
}

// ImportBooks ingests a books CSV. Rows that fail validation, such as
// a duplicate accession number, are reported by identifier; the rest
// are committed.
func (s *Store) ImportBooks(r io.Reader) (*api.ImportResult, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, badRequest{err.Error()}
	}
	col := columnIndex(header)

	result := &api.ImportResult{FailedRecordIdentifiers: []string{}}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		book := api.Book{
			AccessionNumber: field(row, col, "accessionNumber"),
			ISBN:            field(row, col, "isbn"),
			Title:           field(row, col, "title"),
			AuthorPrimary:   field(row, col, "authorPrimary"),
			Publisher:       field(row, col, "publisher"),
			BookType:        api.BookType(field(row, col, "bookType")),
		}
		if _, err := s.addBookLocked(book); err != nil {
			result.FailedImports++
			result.FailedRecordIdentifiers = append(result.FailedRecordIdentifiers, identifier(book.AccessionNumber, row))
			continue
		}
		result.SuccessfulImports++
	}
	result.Message = importMessage("books", result)
	return result, nil
}

// ImportUsers ingests a users CSV. Duplicate employee ids fail per row.
func (s *Store) ImportUsers(r io.Reader) (*api.ImportResult, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, badRequest{err.Error()}
	}
	col := columnIndex(header)

	result := &api.ImportResult{FailedRecordIdentifiers: []string{}}
	for _, row := range rows {
		user := api.User{
			EmployeeID: field(row, col, "employeeId"),
			FullName:   field(row, col, "fullName"),
			Email:      field(row, col, "email"),
			Department: field(row, col, "department"),
			UserRole:   api.RoleMember,
			UserStatus: api.UserActive,
		}
		if _, err := s.AddUser(user, "changeme"); err != nil {
			result.FailedImports++
			result.FailedRecordIdentifiers = append(result.FailedRecordIdentifiers, identifier(user.EmployeeID, row))
			continue
		}
		result.SuccessfulImports++
	}
	result.Message = importMessage("users", result)
	return result, nil
}

// ImportTransactions ingests a transactions CSV of historical loans.
// Referenced books and users resolve by bookId/userId, the columns of
// the production export, with accessionNumber/employeeId accepted as
// fallbacks; rows that reference unknown records fail.
func (s *Store) ImportTransactions(r io.Reader) (*api.ImportResult, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, badRequest{err.Error()}
	}
	col := columnIndex(header)

	result := &api.ImportResult{FailedRecordIdentifiers: []string{}}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		book := s.importBookRefLocked(row, col)
		acc := s.importUserRefLocked(row, col)
		if book == nil || acc == nil {
			result.FailedImports++
			ref := field(row, col, "bookId")
			if ref == "" {
				ref = field(row, col, "accessionNumber")
			}
			result.FailedRecordIdentifiers = append(result.FailedRecordIdentifiers, identifier(ref, row))
			continue
		}

		txn := &api.Transaction{
			ID:                  uuid.NewString(),
			BookID:              book.ID,
			BookTitle:           book.Title,
			BookAccessionNumber: book.AccessionNumber,
			UserID:              acc.user.ID,
			UserFullName:        acc.user.FullName,
			TransactionType:     api.TransactionType(field(row, col, "transactionType")),
			Status:              api.TransactionStatus(field(row, col, "status")),
			IssueDate:           field(row, col, "issueDate"),
			DueDate:             field(row, col, "dueDate"),
			ReturnDate:          field(row, col, "returnDate"),
			TransactionNotes:    field(row, col, "transactionNotes"),
		}
		if txn.TransactionType == "" {
			txn.TransactionType = api.TxnIssue
		}
		if txn.Status == "" {
			txn.Status = api.TxnCompleted
		}
		s.txns[txn.ID] = txn
		result.SuccessfulImports++
	}
	result.Message = importMessage("transactions", result)
	return result, nil
}

func (s *Store) importBookRefLocked(row []string, col map[string]int) *api.Book {
	if id := field(row, col, "bookId"); id != "" {
		if b, ok := s.books[id]; ok {
			return b
		}
	}
	if accession := field(row, col, "accessionNumber"); accession != "" {
		for _, b := range s.books {
			if b.AccessionNumber == accession {
				return b
			}
		}
	}
	return nil
}

func (s *Store) importUserRefLocked(row []string, col map[string]int) *account {
	if id := field(row, col, "userId"); id != "" {
		if acc := s.userByIDLocked(id); acc != nil {
			return acc
		}
	}
	if employeeID := strings.ToUpper(field(row, col, "employeeId")); employeeID != "" {
		if acc, ok := s.accounts[employeeID]; ok {
			return acc
		}
	}
	return nil
}

func readCSV(r io.Reader) ([][]string, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}
	return all[1:], all[0], nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func identifier(key string, row []string) string {
	if key != "" {
		return key
	}
	if len(row) > 0 {
		return row[0]
	}
	return "(blank row)"
}

func importMessage(kind string, result *api.ImportResult) string {
	if result.FailedImports == 0 {
		return fmt.Sprintf("Imported %d %s.", result.SuccessfulImports, kind)
	}
	return fmt.Sprintf("Imported %d %s, %d failed.", result.SuccessfulImports, kind, result.FailedImports)
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func pageSlice[T any](items []T, page, size int) ([]T, *api.Pagination) {
	if size < 1 {
		size = 5
	}
	if page < 0 {
		page = 0
	}
	total := len(items)
	totalPages := (total + size - 1) / size

	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return items[start:end], &api.Pagination{
		TotalElements: int64(total),
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      size,
	}
}
