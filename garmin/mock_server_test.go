package garmin

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	mockCSRFToken   = "mockCsrf123"
	mockDisplayName = "mock-display-name"
	mockUsername    = "mock@example.com"
	mockSSOHostname = "https://sso.garmin.com"
)

// mockGarmin is a fake Garmin Connect backend. It implements the full
// SSO handshake (hostname resolution, login page with CSRF input,
// credential POST issuing the GARMIN-SSO-GUID cookie, current-user
// info) and lets each test register the data routes it exercises.
type mockGarmin struct {
	t      *testing.T
	mux    *http.ServeMux
	server *httptest.Server

	// dropCSRF serves a login page without the hidden CSRF input.
	dropCSRF bool
	// dropGUID omits the GARMIN-SSO-GUID cookie from the credential
	// POST response, simulating rejected credentials.
	dropGUID bool

	mu       sync.Mutex
	logins   int
	requests int
}

func newMockGarmin(t *testing.T) *mockGarmin {
	t.Helper()

	m := &mockGarmin{t: t, mux: http.NewServeMux()}

	m.mux.HandleFunc("/modern/auth/hostname", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"host": "` + mockSSOHostname + `"}`))
	})

	m.mux.HandleFunc("/sso/login", m.handleSSO)

	m.mux.HandleFunc("/modern/currentuser-service/user/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"displayName": "` + mockDisplayName + `", "username": "` + mockUsername + `"}`))
	})

	m.mux.HandleFunc("/modern/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests++
		m.mu.Unlock()
		m.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(m.server.Close)

	return m
}

func (m *mockGarmin) handleSSO(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if got := r.URL.Query().Get("gauthHost"); got != mockSSOHostname {
			m.t.Errorf("sso ticket request gauthHost = %q, want %q", got, mockSSOHostname)
		}
		w.Header().Set("Content-Type", "text/html")
		if m.dropCSRF {
			_, _ = w.Write([]byte(`<html><body>down for maintenance</body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body>
			<form method="post">
				<input type="hidden" name="_csrf" value="` + mockCSRFToken + `" />
			</form>
		</body></html>`))

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			m.t.Errorf("parse credential form: %v", err)
		}
		if got := r.PostForm.Get("_csrf"); got != mockCSRFToken {
			m.t.Errorf("credential POST csrf = %q, want %q", got, mockCSRFToken)
		}
		if r.PostForm.Get("username") == "" || r.PostForm.Get("password") == "" {
			m.t.Error("credential POST missing username or password")
		}
		if r.Header.Get("Referer") == "" {
			m.t.Error("credential POST missing Referer header")
		}

		m.mu.Lock()
		m.logins++
		m.mu.Unlock()

		if !m.dropGUID {
			http.SetCookie(w, &http.Cookie{Name: ssoGUIDCookie, Value: "mock-guid"})
		}
		w.WriteHeader(http.StatusOK)

	default:
		m.t.Errorf("unexpected method %s on sso login endpoint", r.Method)
	}
}

// handle registers an extra data route on the fake backend.
func (m *mockGarmin) handle(pattern string, h http.HandlerFunc) {
	m.mux.HandleFunc(pattern, h)
}

// loginCount reports how many credential POSTs the backend has seen.
func (m *mockGarmin) loginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logins
}

// requestCount reports how many requests of any kind the backend has
// seen.
func (m *mockGarmin) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// client returns a Client wired to the fake backend.
func (m *mockGarmin) client(opts ...Option) *Client {
	base := []Option{
		WithConnectURL(m.server.URL),
		WithSSOURL(m.server.URL + "/sso/login"),
		WithRateLimiting(false),
	}
	return NewClient(mockUsername, "hunter2", append(base, opts...)...)
}
