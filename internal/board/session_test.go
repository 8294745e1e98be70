package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestSession(f *fakeAPI) (*SessionController, *int, *int) {
	logger, _ := test.NewNullLogger()
	var established, cleared int
	s := NewSessionController(f, logger,
		func(context.Context) { established++ },
		func() { cleared++ },
	)
	return s, &established, &cleared
}

func TestProbe_Authenticated(t *testing.T) {
	f := newFakeAPI()
	f.session = models.Session{Authenticated: true, UserID: 3, DisplayName: "Ada Lovelace"}
	s, established, _ := newTestSession(f)

	got := s.Probe(context.Background())
	if !got.Authenticated || got.UserID != 3 {
		t.Errorf("Unexpected session: %+v", got)
	}
	if *established != 1 {
		t.Errorf("Expected initial load triggered once, got %d", *established)
	}
	aff := s.Affordances()
	if !aff.NewTask || !aff.ManageUsers || !aff.SignOut || aff.SignIn || aff.DisplayName != "Ada Lovelace" {
		t.Errorf("Unexpected affordances: %+v", aff)
	}
}

func TestProbe_FailureClears(t *testing.T) {
	f := newFakeAPI()
	f.fail("Session", &api.NetworkError{Op: "GET", Err: errors.New("down")})
	s, established, cleared := newTestSession(f)

	got := s.Probe(context.Background())
	if got.Authenticated {
		t.Error("Expected probe failure to count as signed out")
	}
	if *established != 0 || *cleared != 1 {
		t.Errorf("Expected board cleared, got established=%d cleared=%d", *established, *cleared)
	}
	aff := s.Affordances()
	if aff.NewTask || aff.ManageUsers || !aff.SignIn {
		t.Errorf("Unexpected affordances: %+v", aff)
	}
}

func TestSignIn_FailureKeepsIdentity(t *testing.T) {
	f := newFakeAPI()
	f.fail("SignIn", &api.APIError{Status: 401, Message: "Credenziali non valide"})
	s, established, _ := newTestSession(f)

	if _, err := s.SignIn(context.Background(), "Ada Lovelace", "nope"); err == nil {
		t.Fatal("Expected sign-in failure")
	}
	if s.Current().Authenticated || *established != 0 {
		t.Error("Expected identity unchanged after failed sign-in")
	}
}

func TestSignIn_Idempotent(t *testing.T) {
	f := newFakeAPI()
	s, established, _ := newTestSession(f)
	ctx := context.Background()

	a, _ := s.SignIn(ctx, " Ada Lovelace ", "secret1")
	b, _ := s.SignIn(ctx, "Ada Lovelace", "secret1")
	if a != b {
		t.Errorf("Expected identical sessions, got %+v and %+v", a, b)
	}
	if a.DisplayName != "Ada Lovelace" {
		t.Errorf("Expected trimmed name, got %q", a.DisplayName)
	}
	if *established != 2 {
		t.Errorf("Expected a load per sign-in, got %d", *established)
	}
}

func TestSignUp_MismatchNoRequest(t *testing.T) {
	f := newFakeAPI()
	s, _, _ := newTestSession(f)

	err := s.SignUp(context.Background(), "Ada Lovelace", "secret1", "secret2")
	if Message(err, "") != MsgPasswordMismatch {
		t.Errorf("Expected mismatch message, got %v", err)
	}
	if f.count("SignUp") != 0 {
		t.Error("Expected no request on password mismatch")
	}
}

func TestSignOut_BestEffort(t *testing.T) {
	f := newFakeAPI()
	f.session = models.Session{Authenticated: true, UserID: 1}
	s, _, cleared := newTestSession(f)
	ctx := context.Background()
	s.Probe(ctx)

	f.fail("SignOut", &api.NetworkError{Op: "POST", Err: errors.New("down")})
	s.SignOut(ctx)
	if s.Current().Authenticated {
		t.Error("Expected local identity cleared despite server failure")
	}
	if *cleared != 1 {
		t.Errorf("Expected board cleared once, got %d", *cleared)
	}
}

func TestProbe_AppLock(t *testing.T) {
	f := newFakeAPI()
	f.appPassword = "open sesame"
	f.session = models.Session{Authenticated: true, UserID: 3, DisplayName: "Ada Lovelace"}
	s, established, _ := newTestSession(f)
	ctx := context.Background()

	if s.Probe(ctx).Authenticated {
		t.Fatal("Expected a locked probe to count as signed out")
	}
	if !s.Locked() {
		t.Fatal("Expected controller locked")
	}
	if aff := s.Affordances(); !aff.Unlock || aff.SignIn {
		t.Errorf("Expected only the unlock affordance, got %+v", aff)
	}

	err := s.Unlock(ctx, "wrong")
	if got := Message(err, MsgUnlockFailed); got != "Wrong app password" {
		t.Errorf("Expected server message, got %q", got)
	}
	if !s.Locked() {
		t.Error("Expected controller to stay locked")
	}

	if err := s.Unlock(ctx, "open sesame"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if s.Locked() {
		t.Error("Expected controller unlocked")
	}
	if !s.Current().Authenticated || *established != 1 {
		t.Errorf("Expected session established behind the lock, got %+v", s.Current())
	}
}
