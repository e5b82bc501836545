// internal/api/domain.go
package api

// BookStatus is the lifecycle status of a physical book copy.
type BookStatus string

const (
	BookAvailable   BookStatus = "AVAILABLE"
	BookIssued      BookStatus = "ISSUED"
	BookLost        BookStatus = "LOST"
	BookDamaged     BookStatus = "DAMAGED"
	BookUnderRepair BookStatus = "UNDER_REPAIR"
	BookUnavailable BookStatus = "UNAVAILABLE"
)

// BookType distinguishes circulating stock from reference-only copies.
type BookType string

const (
	BookGeneral   BookType = "GENERAL"
	BookReference BookType = "REFERENCE"
)

// Book is the catalog record as returned by the backend. The accession
// number is the human-facing unique key; ID is the internal identifier.
type Book struct {
	ID                   string     `json:"id"`
	AccessionNumber      string     `json:"accessionNumber"`
	ISBN                 string     `json:"isbn,omitempty"`
	Title                string     `json:"title"`
	Subtitle             string     `json:"subtitle,omitempty"`
	AuthorPrimary        string     `json:"authorPrimary"`
	AuthorSecondary      string     `json:"authorSecondary,omitempty"`
	Publisher            string     `json:"publisher,omitempty"`
	PublicationYear      string     `json:"publicationYear,omitempty"`
	Edition              string     `json:"edition,omitempty"`
	Language             string     `json:"language,omitempty"`
	ClassificationNumber string     `json:"classificationNumber,omitempty"`
	LocationShelf        string     `json:"locationShelf,omitempty"`
	LocationRack         string     `json:"locationRack,omitempty"`
	BookCondition        string     `json:"bookCondition,omitempty"`
	BookStatus           BookStatus `json:"bookStatus"`
	BookType             BookType   `json:"bookType"`
	TotalCopies          int        `json:"totalCopies"`
	AvailableCopies      int        `json:"availableCopies"`
	Notes                string     `json:"notes,omitempty"`
}

// Issuable reports whether the book may be selected for issuance:
// only AVAILABLE, non-reference copies circulate.
func (b Book) Issuable() bool {
	return b.BookStatus == BookAvailable && b.BookType != BookReference
}

// UserRole gates which console operations an account may perform.
type UserRole string

const (
	RoleMember     UserRole = "MEMBER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// UserStatus is the lifecycle status of a user account.
type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
	UserExpired   UserStatus = "EXPIRED"
)

// User is a library account. EmployeeID is the human-facing unique key.
type User struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Division    string     `json:"division,omitempty"`
	Department  string     `json:"department,omitempty"`
	Designation string     `json:"designation,omitempty"`
	UserRole    UserRole   `json:"userRole"`
	UserStatus  UserStatus `json:"userStatus"`
	BooksIssued int        `json:"booksIssued"`
}

// Borrowable reports whether the account may be selected as a borrower.
func (u User) Borrowable() bool {
	return u.UserStatus == UserActive
}

// TransactionType is the kind of lending operation a transaction records.
type TransactionType string

const (
	TxnIssue        TransactionType = "ISSUE"
	TxnReturn       TransactionType = "RETURN"
	TxnRenew        TransactionType = "RENEW"
	TxnLostReport   TransactionType = "LOST_REPORT"
	TxnDamageReport TransactionType = "DAMAGE_REPORT"
)

// TransactionStatus is the lifecycle status of a lending transaction.
type TransactionStatus string

const (
	TxnActive    TransactionStatus = "ACTIVE"
	TxnOverdue   TransactionStatus = "OVERDUE"
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnRenewed   TransactionStatus = "RENEWED"
	TxnCancelled TransactionStatus = "CANCELLED"
)

// Transaction is a lending record. Book/user display fields are
// denormalized copies supplied by the backend; the id references are
// authoritative. Dates are ISO-8601 strings as received on the wire,
// parse them with ParseDate before display formatting.
type Transaction struct {
	ID                   string            `json:"id"`
	BookID               string            `json:"bookId"`
	BookTitle            string            `json:"bookTitle,omitempty"`
	BookAccessionNumber  string            `json:"bookAccessionNumber,omitempty"`
	UserID               string            `json:"userId"`
	UserFullName         string            `json:"userFullName,omitempty"`
	TransactionType      TransactionType   `json:"transactionType"`
	Status               TransactionStatus `json:"status"`
	IssueDate            string            `json:"issueDate"`
	DueDate              string            `json:"dueDate"`
	ReturnDate           string            `json:"returnDate,omitempty"`
	RenewalCount         int               `json:"renewalCount"`
	IssuedByUserID       string            `json:"issuedByUserId,omitempty"`
	IssuedByUserFullName string            `json:"issuedByUserFullName,omitempty"`
	ReturnedToUserID     string            `json:"returnedToUserId,omitempty"`
	TransactionNotes     string            `json:"transactionNotes,omitempty"`
}

// Open reports whether the transaction is still eligible for a return
// or a renewal.
func (t Transaction) Open() bool {
	return t.Status == TxnActive || t.Status == TxnOverdue
}

// Pagination is the envelope's pagination block.
type Pagination struct {
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	CurrentPage   int   `json:"currentPage"`
	PageSize      int   `json:"pageSize"`
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages-1 }

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool { return p.CurrentPage > 0 }

// Profile is the signed-in account as returned by /auth/me.
type Profile struct {
	ID                        string   `json:"id"`
	FullName                  string   `json:"fullName"`
	EmployeeID                string   `json:"employeeId"`
	Email                     string   `json:"email"`
	Department                string   `json:"department,omitempty"`
	Division                  string   `json:"division,omitempty"`
	UserRole                  UserRole `json:"userRole"`
	UserStatus                string   `json:"userStatus"`
	ExpirationDate            string   `json:"expirationDate,omitempty"`
	CurrentBorrowedBooksCount int      `json:"currentBorrowedBooksCount"`
}

// ImportResult is the backend's aggregate outcome of a CSV import.
// Immutable once produced; partial failures are a mixed-outcome
// report, not an error.
type ImportResult struct {
	SuccessfulImports       int      `json:"successfulImports"`
	FailedImports           int      `json:"failedImports"`
	FailedRecordIdentifiers []string `json:"failedRecordIdentifiers"`
	Message                 string   `json:"message"`
}

// IssueRequest is the payload of POST /transactions/issue.
// Dates are yyyy-MM-dd, no time component.
type IssueRequest struct {
	BookID    string `json:"bookId"`
	UserID    string `json:"userId"`
	IssueDate string `json:"issueDate"`
	DueDate   string `json:"dueDate"`
}

// ReturnRequest is the payload of POST /transactions/return.
type ReturnRequest struct {
	TransactionID    string `json:"transactionId"`
	TransactionNotes string `json:"transactionNotes,omitempty"`
}

// RenewRequest is the payload of POST /transactions/renew.
type RenewRequest struct {
	TransactionID    string `json:"transactionId"`
	NewDueDate       string `json:"newDueDate"`
	TransactionNotes string `json:"transactionNotes,omitempty"`
}
