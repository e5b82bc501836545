// internal/session/session_test.go
package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

type fakeAuth struct {
	loginErr  error
	meErr     error
	logoutErr error

	token   string
	profile *api.Profile

	logoutCalls int
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (*api.AuthTokens, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.AuthTokens{AccessToken: f.token}, nil
}

func (f *fakeAuth) Me(_ context.Context) (*api.Profile, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.profile, nil
}

func (f *fakeAuth) Logout(_ context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func adminProfile() *api.Profile {
	return &api.Profile{
		ID:         "u-admin",
		FullName:   "Daniel Okoye",
		EmployeeID: "EMP002",
		UserRole:   api.RoleAdmin,
	}
}

func signedToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginLoadsProfileAndClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	backend := &fakeAuth{token: signedToken(t, "ADMIN", exp), profile: adminProfile()}
	s := New(backend)

	require.NoError(t, s.Login(context.Background(), "EMP002", "changeme"))

	profile, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Daniel Okoye", profile.FullName)
	assert.Equal(t, api.RoleAdmin, s.Role())

	expiry, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, expiry.Equal(exp))
}

func TestInspectTokenExposesExpiryOfRestoredTokens(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	s := New(&fakeAuth{})

	s.InspectToken(signedToken(t, "ADMIN", exp))
	expiry, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, expiry.Equal(exp))

	// Inspection alone does not sign the session in.
	_, signedIn := s.Profile()
	assert.False(t, signedIn)

	s.InspectToken("not-a-jwt")
	_, ok = s.TokenExpiry()
	assert.False(t, ok)
}

func TestLoginFailureLeavesSessionSignedOut(t *testing.T) {
	backend := &fakeAuth{loginErr: &api.Error{StatusCode: 401, Message: "Invalid username or password"}}
	s := New(backend)

	require.Error(t, s.Login(context.Background(), "EMP002", "wrong"))
	_, ok := s.Profile()
	assert.False(t, ok)
	assert.Empty(t, s.Role())
}

func TestProfileFetchFailureAfterLoginSignsOut(t *testing.T) {
	backend := &fakeAuth{token: "token", meErr: errors.New("me is down")}
	s := New(backend)

	require.Error(t, s.Login(context.Background(), "EMP002", "changeme"))
	_, ok := s.Profile()
	assert.False(t, ok)
}

func TestInitializeRestoresExistingSession(t *testing.T) {
	backend := &fakeAuth{profile: adminProfile()}
	s := New(backend)

	require.NoError(t, s.Initialize(context.Background()))
	profile, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "EMP002", profile.EmployeeID)
}

func TestInitializeTreatsAuthFailuresAsSignedOut(t *testing.T) {
	for _, status := range []int{401, 403, 500} {
		backend := &fakeAuth{meErr: &api.Error{StatusCode: status, Message: "no"}}
		s := New(backend)

		require.NoError(t, s.Initialize(context.Background()), "status %d", status)
		_, ok := s.Profile()
		assert.False(t, ok)
	}
}

func TestInitializeSurfacesTransportFailures(t *testing.T) {
	backend := &fakeAuth{meErr: errors.New("connection refused")}
	s := New(backend)

	assert.Error(t, s.Initialize(context.Background()))
}

func TestLogoutClearsLocalStateEvenOnServerFailure(t *testing.T) {
	backend := &fakeAuth{profile: adminProfile(), logoutErr: errors.New("server gone")}
	s := New(backend)
	require.NoError(t, s.Initialize(context.Background()))

	err := s.Logout(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, backend.logoutCalls)
	_, ok := s.Profile()
	assert.False(t, ok)
}

func TestRoleGating(t *testing.T) {
	tests := []struct {
		role      api.UserRole
		canManage bool
	}{
		{api.RoleMember, false},
		{api.RoleAdmin, true},
		{api.RoleSuperAdmin, true},
	}

	for _, tt := range tests {
		profile := adminProfile()
		profile.UserRole = tt.role
		s := New(&fakeAuth{profile: profile})
		require.NoError(t, s.Initialize(context.Background()))

		assert.Equal(t, tt.canManage, s.CanManageLending(), "role %s", tt.role)
		assert.Equal(t, tt.canManage, s.CanImport(), "role %s", tt.role)
		if tt.canManage {
			assert.NoError(t, s.RequireLendingAccess())
		} else {
			assert.Error(t, s.RequireLendingAccess())
		}
	}
}

func TestRequireLendingAccessWhenSignedOut(t *testing.T) {
	s := New(&fakeAuth{meErr: &api.Error{StatusCode: 401}})
	require.NoError(t, s.Initialize(context.Background()))

	err := s.RequireLendingAccess()
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
