package factory

import (
	"time"

	"github.com/partyup/partyup/internal/dependencies/mocks"
	"github.com/partyup/partyup/internal/services/identity"
	"github.com/partyup/partyup/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked
// dependencies. Session tokens come from MockRandom, so tests must queue
// one string per expected registration.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, identity.DefaultConfig(), []byte("test-secret"))

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
