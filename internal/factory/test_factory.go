package factory

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gameaccounts/internal/dependencies/mocks"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/oauth"
	"github.com/mcoot/gameaccounts/internal/storage/memory"
	"github.com/mcoot/gameaccounts/internal/testutil"
)

// TestSessionSecret signs cookies in test apps
var TestSessionSecret = []byte("test-secret-test-secret-test-secret!")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Memory is the backend under the account store
	Memory *memory.Storage

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and no OAuth providers
func NewTestApp() *TestApp {
	return NewTestAppWithProviders(nil, nil)
}

// NewTestAppWithProviders creates a test App whose broker talks to the
// given provider endpoints, usually httptest servers
func NewTestAppWithProviders(providers map[string]oauth.ProviderConfig, client *http.Client) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	oauthCfg := oauth.DefaultConfig()
	if providers != nil {
		oauthCfg.Providers = providers
	}

	app, err := newWithDependencies(store, mockClock, mockRandom, Config{
		IdentityConfig: identity.Config{BcryptCost: bcrypt.MinCost},
		SessionSecret:  TestSessionSecret,
		OAuthConfig:    oauthCfg,
		HTTPClient:     client,
	}, testutil.NopLogger())
	if err != nil {
		panic("test app wiring failed: " + err.Error())
	}

	return &TestApp{
		App:        app,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
