package board

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
)

func TestListUsers_FailureLoggedAndSurfaced(t *testing.T) {
	f := newFakeAPI()
	f.fail("ListUsers", &api.NetworkError{Op: "GET /api/users", Err: errors.New("down")})
	logger, hook := test.NewNullLogger()
	a := NewAdminFlow(f, logger)

	if _, err := a.ListUsers(context.Background()); err == nil {
		t.Fatal("Expected list failure")
	}
	if a.ListError() != MsgUsersFailed {
		t.Errorf("Expected %q, got %q", MsgUsersFailed, a.ListError())
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Errorf("Expected failure logged at error level, got %+v", entry)
	}
}

func TestEntries_TagsViewer(t *testing.T) {
	f := newFakeAPI()
	f.users = []models.DirectoryUser{{ID: 1, Name: "Ada Lovelace"}, {ID: 2, Name: "Grace Hopper"}}
	logger, _ := test.NewNullLogger()
	a := NewAdminFlow(f, logger)
	_, _ = a.ListUsers(context.Background())

	entries := a.Entries(models.Session{Authenticated: true, UserID: 1})
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if !entries[0].Self || entries[0].Label != "Ada Lovelace (Me)" {
		t.Errorf("Expected viewer tagged, got %+v", entries[0])
	}
	if entries[1].Self {
		t.Error("Expected other user untagged")
	}

	opts := a.AssignableUsers(models.Session{Authenticated: true, UserID: 1})
	if len(opts) != 2 || opts[0].Label != SelfLabel || opts[0].Value != "" || opts[1].Value != "2" {
		t.Errorf("Unexpected assignee options: %+v", opts)
	}
}

func TestConfirmDelete_FailureKeepsPending(t *testing.T) {
	f := newFakeAPI()
	f.users = []models.DirectoryUser{{ID: 2, Name: "Grace Hopper"}}
	f.fail("DeleteUser", &api.APIError{Status: 403, Message: "Password amministratore errata"})
	logger, _ := test.NewNullLogger()
	a := NewAdminFlow(f, logger)

	a.RequestDelete(2)
	if f.count("DeleteUser") != 0 {
		t.Fatal("Expected no request on RequestDelete")
	}
	if err := a.ConfirmDelete(context.Background(), a.Pending(), "wrong"); err == nil {
		t.Fatal("Expected delete failure")
	}
	if a.Pending() != 2 {
		t.Errorf("Expected pending target kept, got %d", a.Pending())
	}
	if f.lastAdminPass != "wrong" {
		t.Errorf("Expected password forwarded, got %q", f.lastAdminPass)
	}
}

func TestConfirmDelete_SuccessClearsAndRefreshes(t *testing.T) {
	f := newFakeAPI()
	f.users = []models.DirectoryUser{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Grace"}}
	logger, _ := test.NewNullLogger()
	a := NewAdminFlow(f, logger)

	a.RequestDelete(2)
	if err := a.ConfirmDelete(context.Background(), 2, "admin"); err != nil {
		t.Fatalf("ConfirmDelete failed: %v", err)
	}
	if a.Pending() != 0 {
		t.Error("Expected pending target cleared")
	}
	if f.count("ListUsers") != 1 || len(a.Users()) != 1 {
		t.Errorf("Expected directory refreshed to 1 user, got %d", len(a.Users()))
	}
}

func TestConfirmDelete_NoTarget(t *testing.T) {
	f := newFakeAPI()
	logger, _ := test.NewNullLogger()
	a := NewAdminFlow(f, logger)
	if err := a.ConfirmDelete(context.Background(), 0, "admin"); !errors.Is(err, ErrNoPendingDeletion) {
		t.Errorf("Expected ErrNoPendingDeletion, got %v", err)
	}
	if f.count("DeleteUser") != 0 {
		t.Error("Expected no request without target")
	}
}
