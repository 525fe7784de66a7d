package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameaccounts/internal/config"
	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/session"
	"github.com/mcoot/gameaccounts/internal/storage/httpdoc"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.Store.Init(s.ctx))
}

func (s *IntegrationSuite) register(nickname, ip string) *model.Account {
	account, err := s.app.Identity.ResolveDirect(s.ctx, identity.Registration{
		Nickname: nickname,
		Password: "correct horse",
		IP:       ip,
	})
	s.Require().NoError(err)
	return account
}

// Test: register, log in, play, befriend, delete
func (s *IntegrationSuite) TestAccountLifecycle() {
	alice := s.register("Alice", "10.0.0.1")
	bob := s.register("bob", "10.0.0.2")

	// Login by nickname is case-insensitive
	account, err := s.app.Identity.Authenticate(s.ctx, "ALICE", "correct horse")
	s.Require().NoError(err)
	s.Equal(alice.ID, account.ID)

	sess, err := s.app.Sessions.Create(account, "", "")
	s.Require().NoError(err)

	// Results update stats and winRate together
	_, err = s.app.Identity.RecordResult(s.ctx, alice.ID, model.OutcomeWin)
	s.Require().NoError(err)
	updated, err := s.app.Identity.RecordResult(s.ctx, alice.ID, model.OutcomeLoss)
	s.Require().NoError(err)
	s.Equal(2, updated.Stats.GamesPlayed)
	s.Equal(50, updated.Stats.WinRate)

	// Friend request and acceptance
	_, err = s.app.Identity.AddFriend(s.ctx, alice.ID, "Bob")
	s.Require().NoError(err)
	_, err = s.app.Identity.AcceptFriend(s.ctx, bob.ID, "alice")
	s.Require().NoError(err)

	// The session resolves to the current account document
	_, current, err := s.app.Sessions.Validate(s.ctx, sess.Handle)
	s.Require().NoError(err)
	s.Require().Len(current.Friends, 1)
	s.Equal(model.FriendAccepted, current.Friends[0].Status)

	// Deleting the account invalidates the session
	s.Require().NoError(s.app.Identity.DeleteAccount(s.ctx, alice.ID))
	_, _, err = s.app.Sessions.Validate(s.ctx, sess.Handle)
	s.ErrorIs(err, session.ErrUnauthenticated)

	// Bob keeps a dangling reference to alice
	bobNow, err := s.app.Identity.Get(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(bobNow.Friends, 1)
	s.Equal("alice", bobNow.Friends[0].Nickname)
}

// Test: sessions expire after their duration
func (s *IntegrationSuite) TestSessionExpiry() {
	alice := s.register("alice", "10.0.0.1")
	sess, err := s.app.Sessions.Create(alice, "", "")
	s.Require().NoError(err)

	s.app.MockClock.Advance(24*time.Hour - time.Second)
	_, _, err = s.app.Sessions.Validate(s.ctx, sess.Handle)
	s.Require().NoError(err)

	s.app.MockClock.Advance(time.Second)
	_, _, err = s.app.Sessions.Validate(s.ctx, sess.Handle)
	s.ErrorIs(err, session.ErrUnauthenticated)
}

// Test: concurrent federated logins for one identity create one account
func (s *IntegrationSuite) TestConcurrentFederatedResolve() {
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account, err := s.app.Identity.ResolveFederated(s.ctx, "github", "42", identity.Profile{
				NicknameCandidates: []string{"octocat"},
			})
			if err == nil {
				ids[i] = account.ID
			}
		}(i)
	}
	wg.Wait()

	accounts, err := s.app.Identity.List(s.ctx)
	s.Require().NoError(err)
	s.Len(accounts, 1)
	for _, id := range ids {
		s.Equal(accounts[0].ID, id)
	}
}

// Test: the memory snapshot survives a restart
func (s *IntegrationSuite) TestMemorySnapshotRoundTrip() {
	path := filepath.Join(s.T().TempDir(), "accounts.json")
	cfg := Config{
		StorageType:   config.StorageMemory,
		SnapshotPath:  path,
		SessionSecret: TestSessionSecret,
	}

	app, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	s.Require().NoError(app.Store.Init(s.ctx))
	_, err = app.Identity.ResolveFederated(s.ctx, "discord", "99", identity.Profile{
		NicknameCandidates: []string{"Demo User"},
	})
	s.Require().NoError(err)
	s.Require().NoError(app.Store.Teardown(s.ctx))

	_, err = os.Stat(path)
	s.Require().NoError(err)

	restarted, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	s.Require().NoError(restarted.Store.Init(s.ctx))
	account, err := restarted.Identity.GetByNickname(s.ctx, "demo_user")
	s.Require().NoError(err)
	s.Equal("discord", account.Provider)
}

// countingTransport counts requests sent through it
type countingTransport struct {
	calls atomic.Int32
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

// Test: the http backend sends document requests through the configured client
func (s *IntegrationSuite) TestHTTPBackendUsesConfiguredClient() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer server.Close()

	transport := &countingTransport{}
	app, err := New(s.ctx, Config{
		StorageType:   config.StorageHTTP,
		HTTPConfig:    &httpdoc.Config{Endpoint: server.URL},
		SessionSecret: TestSessionSecret,
		HTTPClient:    &http.Client{Transport: transport},
	})
	s.Require().NoError(err)

	s.Require().NoError(app.Store.Init(s.ctx))
	s.Equal(int32(1), transport.calls.Load())
}

// Test: factory rejects bad settings
func (s *IntegrationSuite) TestNewRejectsBadConfig() {
	_, err := New(s.ctx, Config{StorageType: "floppy", SessionSecret: TestSessionSecret})
	s.Error(err)

	_, err = New(s.ctx, Config{SessionSecret: []byte("short")})
	s.Error(err)
}

// Test: FromConfig keeps only providers with credentials
func (s *IntegrationSuite) TestFromConfig() {
	cfg := config.Default()
	cfg.Session.Secret = string(TestSessionSecret)
	cfg.OAuth.GitHub = config.ProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost/auth/github/callback",
	}

	fc := FromConfig(cfg, nil)
	s.Len(fc.OAuthConfig.Providers, 1)
	s.Contains(fc.OAuthConfig.Providers, "github")

	app, err := New(s.ctx, fc)
	s.Require().NoError(err)
	s.Equal([]string{"github"}, app.Broker.Providers())
}
