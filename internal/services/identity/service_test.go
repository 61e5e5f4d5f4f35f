package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/partyup/partyup/internal/dependencies/mocks"
	"github.com/partyup/partyup/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.random.QueueString("token-1", "token-2", "token-3")
	s.service = New(memory.New(), s.clock, s.random, Config{SessionDuration: time.Hour})
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterCreatesUserAndSession() {
	session, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal("token-1", session.Token)
	s.NotEmpty(session.UserID)

	user, err := s.service.GetUser(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("Alice", user.Name)
	s.Equal(session.UserID, user.ID)
}

func (s *ServiceSuite) TestRegisterNameTooShort() {
	_, err := s.service.Register(s.ctx, "Al")
	s.ErrorIs(err, ErrInvalidDisplayName)
}

func (s *ServiceSuite) TestRegisterNameTooLong() {
	_, err := s.service.Register(s.ctx, strings.Repeat("a", 129))
	s.ErrorIs(err, ErrInvalidDisplayName)
}

func (s *ServiceSuite) TestRegisterNameAtLimits() {
	_, err := s.service.Register(s.ctx, "Bob")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, strings.Repeat("a", 128))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestDuplicateDisplayNamesAllowed() {
	first, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)

	second, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)
	s.NotEqual(first.UserID, second.UserID)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("nonexistent")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionExpired() {
	session, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestTouchUpdatesLastSeen() {
	session, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Minute)
	s.Require().NoError(s.service.Touch(s.ctx, session.UserID))

	user, err := s.service.GetUser(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(s.clock.CurrentTime, user.LastSeen)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	session, err := s.service.Register(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)
	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}
