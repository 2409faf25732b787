package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harmonie-studio/tunesync/internal/transport"
)

type resolverFunc func(ctx context.Context, token string) (transport.Identity, error)

func (f resolverFunc) ResolveIdentity(ctx context.Context, token string) (transport.Identity, error) {
	return f(ctx, token)
}

func staticResolver(identities map[string]transport.Identity) resolverFunc {
	return func(_ context.Context, token string) (transport.Identity, error) {
		identity, ok := identities[token]
		if !ok {
			return transport.Identity{}, transport.ErrUnauthorized
		}
		return identity, nil
	}
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := transport.IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(identity.UserID))
	})
}

func TestAuthMiddleware(t *testing.T) {
	resolver := staticResolver(map[string]transport.Identity{
		"teacher-token": {UserID: "u1", Teacher: true},
	})
	handler := transport.AuthMiddleware(resolver)(echoIdentity())

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", authHeader: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid token", authHeader: "Bearer teacher-token", wantStatus: http.StatusOK, wantBody: "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequireOperator(t *testing.T) {
	resolver := staticResolver(map[string]transport.Identity{
		"admin-token":   {UserID: "admin1", Admin: true},
		"teacher-token": {UserID: "teacher1", Teacher: true},
		"student-token": {UserID: "student1"},
	})
	handler := transport.AuthMiddleware(resolver)(transport.RequireOperator(echoIdentity()))

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "admin passes", token: "admin-token", wantStatus: http.StatusOK},
		{name: "teacher passes", token: "teacher-token", wantStatus: http.StatusOK},
		{name: "student forbidden", token: "student-token", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireOperator_NoIdentity(t *testing.T) {
	handler := transport.RequireOperator(echoIdentity())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
