package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/declanlscott/printdesk-sub002/internal/utils"
	"github.com/declanlscott/printdesk-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	handler := newTestHandler(&fakePuller{}, &fakePusher{}, &fakeSubscriber{})

	var gotPrincipal models.Principal
	protected := handler.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := utils.GetPrincipalFromContext(r.Context())
		require.True(t, ok)
		gotPrincipal = principal
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: bearerFor(t, models.Principal{UserID: "u1", TenantID: "tenant-1", Role: models.RoleManager}),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Bearer",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong sign key",
			authHeader: func() string {
				token, err := utils.GenerateJWTToken(testIssuer, models.Principal{UserID: "u1", TenantID: "tenant-1"}, time.Hour, "other-key")
				require.NoError(t, err)
				return "Bearer " + token
			}(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong issuer",
			authHeader: func() string {
				token, err := utils.GenerateJWTToken("impostor", models.Principal{UserID: "u1", TenantID: "tenant-1"}, time.Hour, testSignKey)
				require.NoError(t, err)
				return "Bearer " + token
			}(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authHeader: func() string {
				token, err := utils.GenerateJWTToken(testIssuer, models.Principal{UserID: "u1", TenantID: "tenant-1"}, time.Nanosecond, testSignKey)
				require.NoError(t, err)
				return "Bearer " + token
			}(),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/replicache/pull", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.Equal(t, "u1", gotPrincipal.UserID)
	assert.Equal(t, models.RoleManager, gotPrincipal.Role)
}
