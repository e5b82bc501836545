// internal/session/session.go

// Package session holds the signed-in account state shared by the
// console views. It is an injected service with an explicit lifecycle
// (initialize on start, clear on logout) rather than a package-level
// singleton, so workflows can be tested against a fake provider.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// ErrNotSignedIn is returned by operations that need an authenticated
// session.
var ErrNotSignedIn = errors.New("not signed in")

// Backend is the slice of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (*api.AuthTokens, error)
	Me(ctx context.Context) (*api.Profile, error)
	Logout(ctx context.Context) error
}

// Claims is the slice of the access token the console inspects
// locally: role and expiry. The token is validated by the backend on
// every request; the console never holds the signing key and only
// reads unverified claims for display and gating.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated-user state for one console run.
// Safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	backend Backend

	profile       *api.Profile
	authenticated bool
	claims        *Claims
}

// New creates a signed-out session.
func New(backend Backend) *Session {
	return &Session{backend: backend}
}

// Initialize restores the session from an existing server-side
// credential by fetching /auth/me. A 401/403 (and, as in the original
// console, a 500 from the profile route) means "not signed in" and is
// not an error; anything else is.
func (s *Session) Initialize(ctx context.Context) error {
	profile, err := s.backend.Me(ctx)
	if err != nil {
		s.clear()
		var apiErr *api.Error
		if errors.As(err, &apiErr) && (apiErr.Unauthenticated() || apiErr.StatusCode == 500) {
			return nil
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.authenticated = true
	return nil
}

// Login authenticates and loads the account profile. On any failure
// the session is left signed out.
func (s *Session) Login(ctx context.Context, username, password string) error {
	tokens, err := s.backend.Login(ctx, username, password)
	if err != nil {
		s.clear()
		return err
	}

	claims := parseClaims(tokens.AccessToken)

	profile, err := s.backend.Me(ctx)
	if err != nil {
		s.clear()
		return fmt.Errorf("signed in but failed to fetch profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.claims = claims
	s.authenticated = true
	return nil
}

// InspectToken records the unverified claims of a restored access
// token so its expiry is displayable alongside the profile. It does
// not sign the session in; Initialize does that.
func (s *Session) InspectToken(token string) {
	claims := parseClaims(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = claims
}

func parseClaims(token string) *Claims {
	if token == "" {
		return nil
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// Logout invalidates the server session. Local state is cleared even
// when the server call fails, matching the original console.
func (s *Session) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)
	s.clear()
	return err
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.claims = nil
	s.authenticated = false
}

// Profile returns the signed-in account, if any.
func (s *Session) Profile() (*api.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.authenticated
}

// Role returns the signed-in account's role, or "" when signed out.
func (s *Session) Role() api.UserRole {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated || s.profile == nil {
		return ""
	}
	return s.profile.UserRole
}

// CanManageLending reports whether the account may run issue, return,
// and renew workflows (admins and super admins only).
func (s *Session) CanManageLending() bool {
	role := s.Role()
	return role == api.RoleAdmin || role == api.RoleSuperAdmin
}

// CanImport reports whether the account may use the data import
// pipeline (admins and super admins only).
func (s *Session) CanImport() bool {
	return s.CanManageLending()
}

// RequireLendingAccess returns ErrNotSignedIn when signed out and a
// descriptive error when the role is insufficient.
func (s *Session) RequireLendingAccess() error {
	if _, ok := s.Profile(); !ok {
		return ErrNotSignedIn
	}
	if !s.CanManageLending() {
		return fmt.Errorf("role %s may not manage lending operations", s.Role())
	}
	return nil
}

// TokenExpiry returns the access token's expiry when known.
func (s *Session) TokenExpiry() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return s.claims.ExpiresAt.Time, true
}
