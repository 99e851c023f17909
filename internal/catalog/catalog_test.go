package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

type fakeBackend struct {
	sessions  []model.Session
	listErr   error
	renameErr error
	deleteErr error
	renamed   map[string]string
	deleted   []string
}

func (f *fakeBackend) ListSessions(context.Context) ([]model.Session, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Session(nil), f.sessions...), nil
}

func (f *fakeBackend) RenameSession(_ context.Context, id, name string) (model.SessionDetail, error) {
	if f.renameErr != nil {
		return model.SessionDetail{}, f.renameErr
	}
	if f.renamed == nil {
		f.renamed = map[string]string{}
	}
	f.renamed[id] = name
	return model.SessionDetail{Session: model.Session{ID: id, Name: name}}, nil
}

func (f *fakeBackend) DeleteSession(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func loaded(t *testing.T, b *fakeBackend) *Catalog {
	t.Helper()
	c := New(b, Options{})
	c.Update(c.Refresh()())
	if !c.Loaded() || len(c.Sessions()) != len(b.sessions) {
		t.Fatalf("refresh did not load sessions: %+v", c.Sessions())
	}
	return c
}

func threeSessions() *fakeBackend {
	return &fakeBackend{sessions: []model.Session{
		{ID: "c", Name: "Thursday"},
		{ID: "b", Name: "Wednesday"},
		{ID: "a", Name: "Tuesday"},
	}}
}

func TestRefreshError(t *testing.T) {
	c := New(&fakeBackend{listErr: errors.New("offline")}, Options{})
	cmd := c.Refresh()
	if !c.Loading() {
		t.Fatalf("expected loading")
	}
	c.Update(cmd())
	if c.Loading() || c.Loaded() || c.Err() == nil {
		t.Fatalf("expected error state, got loaded=%v err=%v", c.Loaded(), c.Err())
	}
}

func TestStaleRefreshIgnored(t *testing.T) {
	b := threeSessions()
	c := New(b, Options{})
	first := c.Refresh()
	b.sessions = b.sessions[:1]
	second := c.Refresh()
	c.Update(second())
	c.Update(first())
	if len(c.Sessions()) != 1 {
		t.Fatalf("stale refresh overwrote list: %+v", c.Sessions())
	}
}

func TestRenameAppliesImmediately(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	cmd := c.Rename("b", "  Hump day ")
	if cmd == nil {
		t.Fatalf("expected command")
	}
	if s, _, _ := c.Find("b"); s.Name != "Hump day" {
		t.Fatalf("expected optimistic name, got %q", s.Name)
	}
	c.Update(cmd())
	if s, _, _ := c.Find("b"); s.Name != "Hump day" {
		t.Fatalf("expected committed name, got %q", s.Name)
	}
	if b.renamed["b"] != "Hump day" {
		t.Fatalf("backend not called: %+v", b.renamed)
	}
	if n := c.Notice(); n == nil || n.Error {
		t.Fatalf("expected success notice, got %+v", n)
	}
}

func TestRenameNoops(t *testing.T) {
	c := loaded(t, threeSessions())
	if c.Rename("b", "   ") != nil {
		t.Fatalf("blank name should be ignored")
	}
	if c.Rename("b", "Wednesday") != nil {
		t.Fatalf("unchanged name should be ignored")
	}
	if c.Rename("zzz", "X") != nil {
		t.Fatalf("unknown session should be ignored")
	}
}

func TestRenameFailureReverts(t *testing.T) {
	b := threeSessions()
	b.renameErr = errors.New("boom")
	c := loaded(t, b)
	cmd := c.Rename("a", "Race day")
	c.Update(cmd())
	if s, _, _ := c.Find("a"); s.Name != "Tuesday" {
		t.Fatalf("expected revert, got %q", s.Name)
	}
	if n := c.Notice(); n == nil || !n.Error {
		t.Fatalf("expected error notice, got %+v", n)
	}
}

func TestRenameRevertSkippedWhenNameMovedOn(t *testing.T) {
	b := threeSessions()
	b.renameErr = errors.New("boom")
	c := loaded(t, b)
	first := c.Rename("a", "One")
	b.renameErr = nil
	second := c.Rename("a", "Two")

	failed := first()
	c.Update(second())
	c.Update(failed)
	if s, _, _ := c.Find("a"); s.Name != "Two" {
		t.Fatalf("late failure clobbered newer name: %q", s.Name)
	}
}

func TestDeleteRemovesImmediately(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	cmd := c.Delete("b")
	if _, _, ok := c.Find("b"); ok {
		t.Fatalf("expected optimistic removal")
	}
	c.Update(cmd())
	if len(c.Sessions()) != 2 || len(b.deleted) != 1 {
		t.Fatalf("unexpected state: %+v deleted=%v", c.Sessions(), b.deleted)
	}
	if c.Delete("b") != nil {
		t.Fatalf("deleting a missing session should be a no-op")
	}
}

func TestDeleteFailureRestoresPosition(t *testing.T) {
	b := threeSessions()
	b.deleteErr = errors.New("locked")
	c := loaded(t, b)
	cmd := c.Delete("b")
	c.Update(cmd())
	got := c.Sessions()
	if len(got) != 3 || got[1].ID != "b" {
		t.Fatalf("expected session restored at index 1, got %+v", got)
	}
	if n := c.Notice(); n == nil || !n.Error {
		t.Fatalf("expected error notice, got %+v", n)
	}
	c.ClearNotice()
	if c.Notice() != nil {
		t.Fatalf("notice not cleared")
	}
}

func TestDeleteFailureAfterRefreshDoesNotDuplicate(t *testing.T) {
	b := threeSessions()
	b.deleteErr = errors.New("locked")
	c := loaded(t, b)
	cmd := c.Delete("a")
	c.Update(c.Refresh()())
	c.Update(cmd())
	if len(c.Sessions()) != 3 {
		t.Fatalf("expected no duplicate, got %+v", c.Sessions())
	}
}

func TestRefreshStartedBeforeRenameIsDropped(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	stale := c.Refresh()
	cmd := c.Rename("b", "Regatta")
	if c.Loading() {
		t.Fatalf("expected the earlier refresh to be superseded")
	}
	c.Update(stale())
	if s, _, _ := c.Find("b"); s.Name != "Regatta" {
		t.Fatalf("stale refresh undid the rename: %q", s.Name)
	}
	c.Update(cmd())
	if s, _, _ := c.Find("b"); s.Name != "Regatta" {
		t.Fatalf("expected server name after success, got %q", s.Name)
	}
}

func TestRenameSuccessReappliedOverOldName(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	cmd := c.Rename("b", "Regatta")
	// A refresh that read the list before the rename reached the server.
	c.Update(c.Refresh()())
	if s, _, _ := c.Find("b"); s.Name != "Wednesday" {
		t.Fatalf("expected refreshed old name, got %q", s.Name)
	}
	c.Update(cmd())
	if s, _, _ := c.Find("b"); s.Name != "Regatta" {
		t.Fatalf("expected rename re-applied, got %q", s.Name)
	}
}

func TestOlderRenameSuccessDoesNotOverrideNewer(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	first := c.Rename("a", "One")
	second := c.Rename("a", "Tuesday")
	older := first()
	c.Update(older)
	if s, _, _ := c.Find("a"); s.Name != "Tuesday" {
		t.Fatalf("older success overrode newer rename: %q", s.Name)
	}
	c.Update(second())
	if s, _, _ := c.Find("a"); s.Name != "Tuesday" {
		t.Fatalf("expected Tuesday, got %q", s.Name)
	}
}

func TestRefreshStartedBeforeDeleteIsDropped(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	stale := c.Refresh()
	cmd := c.Delete("a")
	c.Update(stale())
	if _, _, ok := c.Find("a"); ok {
		t.Fatalf("stale refresh brought the deleted session back")
	}
	c.Update(cmd())
	if len(c.Sessions()) != 2 {
		t.Fatalf("expected two sessions, got %+v", c.Sessions())
	}
}

func TestDeleteSuccessRemovesSessionListedAgain(t *testing.T) {
	b := threeSessions()
	c := loaded(t, b)
	cmd := c.Delete("a")
	c.Update(c.Refresh()())
	if _, _, ok := c.Find("a"); !ok {
		t.Fatalf("expected the refresh to list a again")
	}
	c.Update(cmd())
	if _, _, ok := c.Find("a"); ok || len(c.Sessions()) != 2 {
		t.Fatalf("expected a removed after delete succeeded, got %+v", c.Sessions())
	}
}
