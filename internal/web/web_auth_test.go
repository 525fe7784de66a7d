package web_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerForm(nickname string) url.Values {
	return url.Values{
		"nickname": {nickname},
		"email":    {nickname + "@example.com"},
		"password": {"secret123"},
	}
}

func TestRegister(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/auth/register", registerForm("Alice"))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "nav .nickname", "Alice")
	assertContainsText(t, doc, ".friends", "No friends yet")

	account, err := ts.app.Identity.FindByIP(t.Context(), "192.0.2.10")
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.Nickname)
}

func TestRegisterDuplicateNickname(t *testing.T) {
	ts := newWebTestServer(t)
	rr := ts.post("/auth/register", registerForm("Alice"))
	require.Equal(t, "/dashboard", rr.Header().Get("Location"))

	// Second browser on another network
	ts.cookies = newCookieJar()
	ts.remoteAddr = "192.0.2.11:52000"

	rr = ts.post("/auth/register", registerForm("alice"))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?error=nickname_taken", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".error", "already taken")
}

func TestRegisterSameAddress(t *testing.T) {
	ts := newWebTestServer(t)
	ts.post("/auth/register", registerForm("alice"))
	ts.post("/auth/logout", nil)

	rr := ts.post("/auth/register", registerForm("bob"))
	assert.Equal(t, "/login?error=address_taken", rr.Header().Get("Location"))

	accounts, err := ts.app.Identity.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestRegisterInvalidInput(t *testing.T) {
	ts := newWebTestServer(t)

	form := registerForm("alice")
	form.Set("password", "short")
	rr := ts.post("/auth/register", form)
	assert.Equal(t, "/login?error=invalid_input", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())
}

func TestLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.post("/auth/register", registerForm("alice"))
	ts.post("/auth/logout", nil)
	require.False(t, ts.cookies.hasSession())

	rr := ts.post("/auth/login", url.Values{"nickname": {"ALICE"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	rr = ts.post("/auth/login", url.Values{"nickname": {"alice"}, "password": {"wrong-password"}})
	assert.Equal(t, "/login?error=invalid_credentials", rr.Header().Get("Location"))
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	ts := newWebTestServer(t)

	// Without a session
	rr := ts.post("/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	// With a session, twice
	ts.post("/auth/register", registerForm("alice"))
	require.Equal(t, 1, ts.app.Sessions.Count())

	rr = ts.post("/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, ts.app.Sessions.Count())
	assert.False(t, ts.cookies.hasSession())

	rr = ts.post("/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestCurrentUserUnauthenticated(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/api/user")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	ts.post("/auth/register", registerForm("alice"))
	rr = ts.get("/api/user")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"provider":null`)
	assert.NotContains(t, rr.Body.String(), "credential")

	// Expired session
	ts.app.MockClock.Advance(24 * time.Hour)
	rr = ts.get("/api/user")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDashboardRequiresSession(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestLoginPage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/login?error=oauth_failed")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "a.provider[href='/auth/github']")
	assertContainsElement(t, doc, "form[action='/auth/login']")
	assertContainsElement(t, doc, "form[action='/auth/register']")
	assertContainsText(t, doc, ".error", "Sign-in with the provider failed")

	// Signed-in users skip the login page
	ts.post("/auth/register", registerForm("alice"))
	rr = ts.get("/login")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
}

func TestLoginPagePrefillsNicknameForAddress(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/login")
	require.Equal(t, http.StatusOK, rr.Code)
	value, _ := parseHTML(rr.Body).Find("#login input[name='nickname']").Attr("value")
	assert.Empty(t, value)

	ts.post("/auth/register", registerForm("j.doe"))
	ts.post("/auth/logout", nil)

	rr = ts.get("/login")
	require.Equal(t, http.StatusOK, rr.Code)
	value, _ = parseHTML(rr.Body).Find("#login input[name='nickname']").Attr("value")
	assert.Equal(t, "j.doe", value)

	// Another address sees an empty form
	ts.remoteAddr = "198.51.100.77:40000"
	rr = ts.get("/login")
	require.Equal(t, http.StatusOK, rr.Code)
	value, _ = parseHTML(rr.Body).Find("#login input[name='nickname']").Attr("value")
	assert.Empty(t, value)
}

func TestRegisterRejectsUnroutableNickname(t *testing.T) {
	ts := newWebTestServer(t)

	for _, nickname := range []string{"a/b", "me"} {
		rr := ts.post("/auth/register", registerForm(nickname))
		assert.Equal(t, http.StatusSeeOther, rr.Code, nickname)
		assert.Equal(t, "/login?error=invalid_input", rr.Header().Get("Location"), nickname)
	}
	assert.False(t, ts.cookies.hasSession())
}
