package web_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gameaccounts/internal/factory"
	"github.com/mcoot/gameaccounts/internal/services/oauth"
	"github.com/mcoot/gameaccounts/internal/services/session"
	"github.com/mcoot/gameaccounts/internal/web"
)

// fakeGitHub answers token, user and emails requests like GitHub does
type fakeGitHub struct {
	server *httptest.Server
	calls  atomic.Int32
	// userID is the id returned by /user
	userID atomic.Int64
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{}
	f.userID.Store(583231)

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer","scope":"user:email"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         f.userID.Load(),
			"login":      "octocat",
			"avatar_url": "https://avatars.githubusercontent.com/u/583231",
		})
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"email":"octo@example.com","primary":true,"verified":true}]`))
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) config() oauth.ProviderConfig {
	return oauth.ProviderConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/github/callback",
		AuthURL:      "https://github.example/login/oauth/authorize",
		TokenURL:     f.server.URL + "/token",
		UserInfoURL:  f.server.URL + "/user",
		EmailsURL:    f.server.URL + "/emails",
	}
}

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t        *testing.T
	handler  http.Handler
	app      *factory.TestApp
	provider *fakeGitHub
	cookies  *cookieJar
	// remoteAddr is the client address of every request
	remoteAddr string
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := newFakeGitHub(t)
	app := factory.NewTestAppWithProviders(map[string]oauth.ProviderConfig{
		"github": provider.config(),
	}, provider.server.Client())
	require.NoError(t, app.Store.Init(t.Context()))

	router := web.NewRouter(web.RouterConfig{
		Logger:       logger,
		Identity:     app.Identity,
		Sessions:     app.Sessions,
		Signer:       app.Signer,
		Broker:       app.Broker,
		Clock:        app.Clock,
		Random:       app.Random,
		DashboardURL: "/dashboard",
		LoginURL:     "/login",
	})

	return &webTestServer{
		t:          t,
		handler:    router,
		app:        app,
		provider:   provider,
		cookies:    newCookieJar(),
		remoteAddr: "192.0.2.10:52000",
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = ts.remoteAddr
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// followRedirect follows a local redirect response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected a redirect")
	return ts.get(location)
}

// startOAuth begins the GitHub flow and returns the state sent to the provider
func (ts *webTestServer) startOAuth() string {
	ts.t.Helper()
	rr := ts.get("/auth/github")
	require.Equal(ts.t, http.StatusFound, rr.Code)

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(ts.t, err)
	state := location.Query().Get("state")
	require.NotEmpty(ts.t, state)
	return state
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	assert.Contains(t, doc.Find(selector).Text(), text, "selector %q", selector)
}

func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	assert.Positive(t, doc.Find(selector).Length(), "expected element %q", selector)
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies[session.CookieName]
	return ok
}
