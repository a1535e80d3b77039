package garmin

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestClient_Login(t *testing.T) {
	m := newMockGarmin(t)
	c := m.client()

	username, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if username != mockUsername {
		t.Errorf("Login returned username %q, want %q", username, mockUsername)
	}
	if got := c.User.DisplayName(); got != mockDisplayName {
		t.Errorf("DisplayName = %q, want %q", got, mockDisplayName)
	}
	if got := c.User.Username(); got != mockUsername {
		t.Errorf("Username = %q, want %q", got, mockUsername)
	}
	if got := m.loginCount(); got != 1 {
		t.Errorf("expected 1 credential POST, got %d", got)
	}
}

func TestClient_Login_MissingCSRF(t *testing.T) {
	m := newMockGarmin(t)
	m.dropCSRF = true
	c := m.client()

	_, err := c.Login(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if got := m.loginCount(); got != 0 {
		t.Errorf("credentials were posted despite the missing CSRF token (%d POSTs)", got)
	}
}

func TestClient_Login_MissingSSOCookie(t *testing.T) {
	m := newMockGarmin(t)
	m.dropGUID = true
	c := m.client()

	_, err := c.Login(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if authErr.StatusCode != http.StatusBadRequest {
		t.Errorf("AuthError status = %d, want %d", authErr.StatusCode, http.StatusBadRequest)
	}
}

func TestClient_Logout_KeepsLocalState(t *testing.T) {
	m := newMockGarmin(t)
	c := m.client()

	if _, err := c.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// Local session state survives logout; only the server side ends.
	if got := c.User.DisplayName(); got != mockDisplayName {
		t.Errorf("DisplayName after logout = %q, want %q", got, mockDisplayName)
	}
	if got := c.User.Username(); got != mockUsername {
		t.Errorf("Username after logout = %q, want %q", got, mockUsername)
	}
}

func TestClient_TicketParams(t *testing.T) {
	c := NewClient("user@example.com", "secret")
	params := c.ticketParams(mockSSOHostname)

	if got := params.Get("gauthHost"); got != mockSSOHostname {
		t.Errorf("gauthHost = %q, want %q", got, mockSSOHostname)
	}
	if got := params.Get("clientId"); got != "GarminConnect" {
		t.Errorf("clientId = %q, want GarminConnect", got)
	}
	if got := params.Get("service"); got != "https://connect.garmin.com/modern/" {
		t.Errorf("service = %q, want the modern base URL", got)
	}
	if got := len(params); got != 36 {
		t.Errorf("expected the fixed set of 36 ticket parameters, got %d", got)
	}
}

func TestCSRFPattern(t *testing.T) {
	testCases := []struct {
		name string
		page string
		want string
	}{
		{
			name: "standard hidden input",
			page: `<input type="hidden" name="_csrf" value="abc123DEF" />`,
			want: "abc123DEF",
		},
		{
			name: "extra whitespace",
			page: `<input type="hidden" name="_csrf"  value="tok42" />`,
			want: "tok42",
		},
		{
			name: "absent",
			page: `<html><body>login unavailable</body></html>`,
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := csrfPattern.FindStringSubmatch(tc.page)
			if tc.want == "" {
				if m != nil {
					t.Errorf("expected no match, got %q", m[1])
				}
				return
			}
			if m == nil {
				t.Fatalf("expected match %q, got none", tc.want)
			}
			if m[1] != tc.want {
				t.Errorf("matched %q, want %q", m[1], tc.want)
			}
		})
	}
}
