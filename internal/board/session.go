package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
)

// MsgPasswordMismatch is shown when sign-up passwords differ.
const MsgPasswordMismatch = "Passwords do not match"

// Affordances are the session-dependent controls of the page chrome.
type Affordances struct {
	Unlock      bool
	NewTask     bool
	ManageUsers bool
	SignIn      bool
	SignOut     bool
	DisplayName string
}

// SessionController owns the viewer identity.
type SessionController struct {
	api    API
	logger *log.Logger

	mu          sync.Mutex
	session     models.Session
	locked      bool
	established func(context.Context)
	cleared     func()
}

// NewSessionController creates a signed-out controller. established runs
// after a session is confirmed and cleared after it is dropped.
func NewSessionController(a API, logger *log.Logger, established func(context.Context), cleared func()) *SessionController {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SessionController{api: a, logger: logger, established: established, cleared: cleared}
}

// Probe asks the server whether a session exists. Any failure counts as
// signed out; an app lock refusal also marks the controller locked.
func (s *SessionController) Probe(ctx context.Context) models.Session {
	sess, err := s.api.Session(ctx)
	s.setLocked(api.IsLocked(err))
	if err != nil {
		s.logger.WithError(err).Debug("session probe failed")
		s.clear()
		return models.Session{}
	}
	if !sess.Authenticated {
		s.clear()
		return models.Session{}
	}
	s.establish(ctx, sess)
	return sess
}

// Unlock passes the server's app lock and probes again.
func (s *SessionController) Unlock(ctx context.Context, password string) error {
	if err := s.api.Unlock(ctx, password); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	s.setLocked(false)
	s.Probe(ctx)
	return nil
}

// Locked reports whether the server refused the last probe with its app lock.
func (s *SessionController) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *SessionController) setLocked(v bool) {
	s.mu.Lock()
	s.locked = v
	s.mu.Unlock()
}

// SignIn authenticates by full name. On failure the identity is unchanged.
func (s *SessionController) SignIn(ctx context.Context, fullName, password string) (models.Session, error) {
	sess, err := s.api.SignIn(ctx, strings.TrimSpace(fullName), password)
	if err != nil {
		if api.IsLocked(err) {
			s.setLocked(true)
		}
		return models.Session{}, fmt.Errorf("sign in: %w", err)
	}
	sess.Authenticated = true
	s.establish(ctx, sess)
	return sess, nil
}

// SignUp registers a user. Mismatched passwords are rejected without a request.
func (s *SessionController) SignUp(ctx context.Context, fullName, password, confirm string) error {
	if password != confirm {
		return invalid(FieldConfirmPassword, MsgPasswordMismatch)
	}
	if err := s.api.SignUp(ctx, strings.TrimSpace(fullName), password, confirm); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// SignOut ends the session. Local state is cleared whatever the server answers.
func (s *SessionController) SignOut(ctx context.Context) {
	if err := s.api.SignOut(ctx); err != nil {
		s.logger.WithError(err).Debug("sign out request failed")
	}
	s.clear()
}

// Current returns the viewer identity.
func (s *SessionController) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Affordances derives the chrome controls from the current identity.
func (s *SessionController) Affordances() Affordances {
	if s.Locked() {
		return Affordances{Unlock: true}
	}
	sess := s.Current()
	if !sess.Authenticated {
		return Affordances{SignIn: true}
	}
	return Affordances{
		NewTask:     true,
		ManageUsers: true,
		SignOut:     true,
		DisplayName: sess.DisplayName,
	}
}

func (s *SessionController) establish(ctx context.Context, sess models.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	if s.established != nil {
		s.established(ctx)
	}
}

func (s *SessionController) clear() {
	s.mu.Lock()
	s.session = models.Session{}
	s.mu.Unlock()
	if s.cleared != nil {
		s.cleared()
	}
}
