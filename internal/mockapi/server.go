// internal/mockapi/server.go

// Package mockapi is a self-contained development backend speaking the
// same wire protocol as the production ShelfWise API: enveloped JSON
// responses, bearer-token auth, and the lending business rules the
// console workflows depend on. It keeps everything in memory.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

type ctxKey int

const userKey ctxKey = 0

// Server is the HTTP surface over a Store.
type Server struct {
	store     *Store
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	faults    *Faults
}

// NewServer creates a server. A zero tokenTTL defaults to one hour.
func NewServer(store *Store, jwtSecret string, tokenTTL time.Duration) *Server {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &Server{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       store.now,
	}
}

// WithFaults enables fault injection on every route.
func (s *Server) WithFaults(f *Faults) *Server {
	s.faults = f
	return s
}

// Handler builds the router. All routes live under /api/v1.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.faults != nil {
		r.Use(s.faults.Middleware)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)

			r.Get("/books/search", s.handleSearchBooks)
			r.Get("/books/{id}", s.handleGetBook)

			r.Get("/users/search", s.handleSearchUsers)
			r.Get("/users/{id}", s.handleGetUser)

			r.Get("/transactions/search", s.handleSearchTransactions)
			r.Get("/transactions/{id}", s.handleGetTransaction)
			r.Get("/transactions/user/{id}/active-borrows", s.handleActiveBorrows)
			r.Post("/transactions/issue", s.handleIssue)
			r.Post("/transactions/return", s.handleReturn)
			r.Post("/transactions/renew", s.handleRenew)

			r.Post("/import/{kind}", s.handleImport)
		})
	})

	return r
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(user *api.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: string(user.UserRole),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// authenticate rejects requests without a valid bearer token and puts
// the account on the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims := &tokenClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil || !parsed.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		user, err := s.store.GetUserByID(claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeData(w, http.StatusOK, "Login successful", api.AuthTokens{AccessToken: token}, nil)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	// Tokens are stateless; logout is client-side discard.
	writeData(w, http.StatusOK, "Logged out", nil, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	profile := api.Profile{
		ID:                        user.ID,
		FullName:                  user.FullName,
		EmployeeID:                user.EmployeeID,
		Email:                     user.Email,
		Department:                user.Department,
		Division:                  user.Division,
		UserRole:                  user.UserRole,
		UserStatus:                string(user.UserStatus),
		CurrentBorrowedBooksCount: s.store.ActiveBorrows(user.ID),
	}
	writeData(w, http.StatusOK, "OK", profile, nil)
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	books, pagination := s.store.SearchBooks(r.URL.Query().Get("query"), page, size, r.URL.Query().Get("sortDir"))
	if books == nil {
		books = []api.Book{}
	}
	writeData(w, http.StatusOK, "OK", books, pagination)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.store.GetBook(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	writeData(w, http.StatusOK, "OK", book, nil)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users := s.store.SearchUsers(r.URL.Query().Get("query"))
	if users == nil {
		users = []api.User{}
	}
	writeData(w, http.StatusOK, "OK", users, nil)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeData(w, http.StatusOK, "OK", user, nil)
}

func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	txns, pagination := s.store.SearchTransactions(r.URL.Query().Get("query"), page, size, r.URL.Query().Get("sortDir"))
	if txns == nil {
		txns = []api.Transaction{}
	}
	writeData(w, http.StatusOK, "OK", txns, pagination)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := s.store.GetTransaction(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeData(w, http.StatusOK, "OK", txn, nil)
}

func (s *Server) handleActiveBorrows(w http.ResponseWriter, r *http.Request) {
	count := s.store.ActiveBorrows(chi.URLParam(r, "id"))
	writeData(w, http.StatusOK, "OK", count, nil)
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	if !requireLendingRole(w, r) {
		return
	}

	var req api.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := s.store.Issue(req, requestUser(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Book issued successfully", txn, nil)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	if !requireLendingRole(w, r) {
		return
	}

	var req api.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := s.store.Return(req, requestUser(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Book returned successfully", txn, nil)
}

func (s *Server) handleRenew(w http.ResponseWriter, r *http.Request) {
	if !requireLendingRole(w, r) {
		return
	}

	var req api.RenewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := s.store.Renew(req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Book renewed successfully", txn, nil)
}

// handleImport answers with a bare ImportResult, not an envelope,
// matching the production import endpoints.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requireLendingRole(w, r) {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	var result *api.ImportResult
	switch api.ImportKind(chi.URLParam(r, "kind")) {
	case api.ImportBooks:
		result, err = s.store.ImportBooks(file)
	case api.ImportUsers:
		result, err = s.store.ImportUsers(file)
	case api.ImportTransactions:
		result, err = s.store.ImportTransactions(file)
	default:
		writeError(w, http.StatusNotFound, "Unknown import kind")
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func requireLendingRole(w http.ResponseWriter, r *http.Request) bool {
	user := requestUser(r)
	if user == nil || (user.UserRole != api.RoleAdmin && user.UserRole != api.RoleSuperAdmin) {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return false
	}
	return true
}

func withUser(ctx context.Context, user *api.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func requestUser(r *http.Request) *api.User {
	user, _ := r.Context().Value(userKey).(*api.User)
	return user
}

// envelope mirrors the production response shape.
type envelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       any             `json:"data,omitempty"`
	Timestamp  string          `json:"timestamp"`
	Pagination *api.Pagination `json:"pagination,omitempty"`
}

func writeData(w http.ResponseWriter, status int, message string, data any, pagination *api.Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Status:     "success",
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Pagination: pagination,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Status:    "error",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	var br badRequest
	if errors.As(err, &br) {
		writeError(w, http.StatusBadRequest, br.Error())
		return
	}
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size < 1 {
		size = 5
	}
	return page, size
}
