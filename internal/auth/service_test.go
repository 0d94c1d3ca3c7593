package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapos/backend-pos/internal/common"
	"github.com/yusapos/backend-pos/internal/domain"
	"github.com/yusapos/backend-pos/internal/store/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPIN("123456")
	require.NoError(t, err)
	st := memory.New()
	st.SeedUser(domain.User{ID: "usr-1", Username: "siti", FullName: "Siti", Role: domain.RoleCashier, PINHash: hash})

	svc, err := NewService(Config{Store: st, Secret: "test-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func TestLoginAndParseToken(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(context.Background(), "Siti", "123456")
	require.NoError(t, err)
	assert.Equal(t, "siti", result.User.Username)
	assert.NotEmpty(t, result.AccessToken)

	identity, err := svc.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", identity.ID)
	assert.Equal(t, "Siti", identity.Name)
	assert.Equal(t, domain.RoleCashier, identity.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name     string
		username string
		pin      string
	}{
		{name: "wrong pin", username: "siti", pin: "000000"},
		{name: "unknown user", username: "ghost", pin: "123456"},
		{name: "empty pin", username: "siti", pin: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.username, tc.pin)
			var appErr *common.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
		})
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(context.Background(), "siti", "123456")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err = svc.ParseAccessToken(result.AccessToken)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ParseAccessToken("not-a-token")
	assert.Error(t, err)
	_, err = svc.ParseAccessToken("")
	assert.Error(t, err)
}

func TestRequireAuthAndRole(t *testing.T) {
	svc := newTestService(t)
	mw := Middleware{Service: svc}

	var reached bool
	protected := mw.RequireAuth(RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})))

	// no token
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// cashier token against an admin-only route
	result, err := svc.Login(context.Background(), "siti", "123456")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)

	// cashier-level route succeeds
	cashierOnly := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := common.IdentityFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, "usr-1", identity.ID)
		reached = true
	}))
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	cashierOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}
