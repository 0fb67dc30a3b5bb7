package crmtests

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/grabovoi-crm/api-contract-tests/harness"
)

const (
	adminEmail    = "admin@grabovoi.com"
	adminPassword = "admin123"
)

// smtpTolerance: the backend reports email_sent=false when the SMTP relay is
// unreachable, which is an environmental condition, not an API defect.
func smtpTolerance(detail string) harness.Tolerance {
	return harness.Tolerance{Name: "smtp-unavailable", Detail: detail}
}

func DoAuthTests(t *T) {
	t.Run("admin login stores bearer token", func(t *T) {
		passed, body := t.Client().RunTest(
			"Admin Login", http.MethodPost, "/api/login", 200,
			map[string]string{"email": adminEmail, "password": adminPassword}, nil)
		require.True(t, passed, "login request did not return 200")

		token := body.GetByKey("access_token").StringValue()
		require.NotEmpty(t, token, "login response did not contain access_token")
		t.Client().SetToken(token)
	})

	t.Run("token authenticates the current-user endpoint", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Current User", http.MethodGet, "/api/auth/me", 200, nil, nil)
		require.True(t, passed)
		assert.Equal(t, adminEmail, body.GetByKey("email").StringValue())
	})

	t.Run("unauthenticated access is rejected and token survives", func(t *T) {
		t.requireToken()
		saved := t.Client().Token()

		t.Client().WithoutAuth(func() {
			passed, _ := t.Client().RunTest(
				"Contacts Without Auth", http.MethodGet, "/api/contacts", 401, nil, nil)
			assert.True(t, passed, "protected endpoint did not return 401 without a token")
		})

		require.Equal(t, saved, t.Client().Token(), "bearer token was not restored")
	})

	t.Run("registration triggers verification email", func(t *T) {
		uniqueID := uuid.New().String()[:8]
		email := fmt.Sprintf("apitest_%s@grabovoi-test.com", uniqueID)
		t.env.fixtureUserEmail = email

		passed, body := t.Client().RunTest(
			"Register User", http.MethodPost, "/api/register", 200,
			map[string]string{
				"username": "apitest_" + uniqueID,
				"email":    email,
				"password": "ApiTestPassword123!",
				"name":     "API Test User",
			}, nil)
		require.True(t, passed)

		if !body.GetByKey("email_sent").BoolValue() {
			t.Client().NoteTolerance(smtpTolerance("registration accepted but verification email was not sent"))
		}
	})

	t.Run("resend verification accepts the fixture user", func(t *T) {
		if t.env.fixtureUserEmail == "" {
			t.SkipWithReason("registration scenario did not create a user")
		}
		passed, body := t.Client().RunTest(
			"Resend Verification", http.MethodPost, "/api/resend-verification", 200,
			map[string]string{"email": t.env.fixtureUserEmail}, nil)
		require.True(t, passed)

		if !body.GetByKey("email_sent").BoolValue() {
			t.Client().NoteTolerance(smtpTolerance("resend accepted but email was not sent"))
		}
	})

	t.Run("forgot password accepts the fixture user", func(t *T) {
		if t.env.fixtureUserEmail == "" {
			t.SkipWithReason("registration scenario did not create a user")
		}
		passed, _ := t.Client().RunTest(
			"Forgot Password", http.MethodPost, "/api/forgot-password", 200,
			map[string]string{"email": t.env.fixtureUserEmail}, nil)
		assert.True(t, passed)
	})

	t.Run("verify-email rejects an unissued token", func(t *T) {
		passed, body := t.Client().RunTest(
			"Verify Email With Unknown Token", http.MethodPost, "/api/verify-email", 400,
			map[string]string{"token": randomURLSafeToken(32)}, nil)
		require.True(t, passed, "unissued verification token was not rejected with 400")

		detail := strings.ToLower(errorDetail(body))
		assert.True(t,
			strings.Contains(detail, "invalid") || strings.Contains(detail, "expired"),
			"rejection message %q does not mention invalid or expired", detail)
	})

	t.Run("email settings are readable", func(t *T) {
		t.requireToken()
		passed, body := t.Client().RunTest(
			"Email Settings", http.MethodGet, "/api/email-settings", 200, nil, nil)
		require.True(t, passed)
		assert.NotEmpty(t, body.GetByKey("smtp_server").StringValue(),
			"email settings did not include an SMTP server")
	})
}

// randomURLSafeToken builds a syntactically valid verification token of n
// random bytes, URL-safe base64 without padding.
func randomURLSafeToken(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// errorDetail pulls the human-readable message out of an error payload,
// whichever of the common keys the backend used.
func errorDetail(body ldvalue.Value) string {
	for _, key := range []string{"detail", "error", "message"} {
		if s := body.GetByKey(key).StringValue(); s != "" {
			return s
		}
	}
	return body.JSONString()
}
