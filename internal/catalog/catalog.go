// Package catalog keeps the session list shown by the browser. Rename
// and delete are applied to the list immediately and rolled back when
// the server rejects them.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arin-jaff/peach-data-tool/internal/logging"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const defaultTimeout = 15 * time.Second

// Backend is the session side of the telemetry API.
type Backend interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	RenameSession(ctx context.Context, id, name string) (model.SessionDetail, error)
	DeleteSession(ctx context.Context, id string) error
}

// Notice is a one-line message about the last mutation.
type Notice struct {
	Text  string
	Error bool
}

// ListedMsg carries a refreshed session list.
type ListedMsg struct {
	gen      uint64
	Sessions []model.Session
	Err      error
}

// RenamedMsg carries the outcome of a rename.
type RenamedMsg struct {
	ID       string
	Name     string
	Previous string
	Updated  model.SessionDetail
	Err      error
}

// DeletedMsg carries the outcome of a delete.
type DeletedMsg struct {
	Session model.Session
	Index   int
	Err     error
}

// Options configures a Catalog.
type Options struct {
	Timeout time.Duration
	Logger  *logging.Logger
}

// Catalog is the session list plus the bookkeeping for in-flight mutations.
type Catalog struct {
	backend Backend
	timeout time.Duration
	log     *logging.Logger

	gen      uint64
	loaded   bool
	loading  bool
	err      error
	sessions []model.Session
	notice   *Notice
	// renaming maps a session id to the newest name sent for it.
	renaming map[string]string
}

// New creates an empty catalog.
func New(backend Backend, opts Options) *Catalog {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Catalog{
		backend:  backend,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		renaming: make(map[string]string),
	}
}

// Sessions returns the current list, newest first.
func (c *Catalog) Sessions() []model.Session { return c.sessions }

// Loaded reports whether at least one refresh has completed.
func (c *Catalog) Loaded() bool { return c.loaded }

// Loading reports whether a refresh is in flight.
func (c *Catalog) Loading() bool { return c.loading }

// Err returns the last refresh error.
func (c *Catalog) Err() error { return c.err }

// Notice returns the last mutation notice, or nil.
func (c *Catalog) Notice() *Notice { return c.notice }

// ClearNotice drops the current notice.
func (c *Catalog) ClearNotice() { c.notice = nil }

// Find returns the session with id and its position in the list.
func (c *Catalog) Find(id string) (model.Session, int, bool) {
	for i, s := range c.sessions {
		if s.ID == id {
			return s, i, true
		}
	}
	return model.Session{}, -1, false
}

// Refresh reloads the list. A newer refresh supersedes an older one.
func (c *Catalog) Refresh() tea.Cmd {
	c.gen++
	c.loading = true
	gen, backend, timeout := c.gen, c.backend, c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sessions, err := backend.ListSessions(ctx)
		return ListedMsg{gen: gen, Sessions: sessions, Err: err}
	}
}

// Rename applies the new name at once and sends it to the server. It
// returns nil when the name is blank, unchanged or the session is unknown.
func (c *Catalog) Rename(id, name string) tea.Cmd {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	s, idx, ok := c.Find(id)
	if !ok || s.Name == name {
		return nil
	}
	previous := s.Name
	c.sessions[idx].Name = name
	c.renaming[id] = name
	c.notice = nil
	c.dropPendingRefresh()
	backend, timeout := c.backend, c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		updated, err := backend.RenameSession(ctx, id, name)
		return RenamedMsg{ID: id, Name: name, Previous: previous, Updated: updated, Err: err}
	}
}

// Delete removes the session from the list at once and asks the server
// to delete it.
func (c *Catalog) Delete(id string) tea.Cmd {
	s, idx, ok := c.Find(id)
	if !ok {
		return nil
	}
	c.sessions = append(c.sessions[:idx:idx], c.sessions[idx+1:]...)
	c.notice = nil
	c.dropPendingRefresh()
	backend, timeout := c.backend, c.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := backend.DeleteSession(ctx, id)
		return DeletedMsg{Session: s, Index: idx, Err: err}
	}
}

// Update commits results of Refresh, Rename and Delete.
func (c *Catalog) Update(msg tea.Msg) {
	switch msg := msg.(type) {
	case ListedMsg:
		if msg.gen != c.gen {
			return
		}
		c.loading = false
		if msg.Err != nil {
			c.err = fmt.Errorf("failed to load sessions: %w", msg.Err)
			c.log.Warnf("%v", c.err)
			return
		}
		c.err = nil
		c.loaded = true
		c.sessions = msg.Sessions
		if c.sessions == nil {
			c.sessions = []model.Session{}
		}
	case RenamedMsg:
		s, idx, ok := c.Find(msg.ID)
		if msg.Err != nil {
			c.log.Warnf("rename %s: %v", msg.ID, msg.Err)
			c.notice = &Notice{Text: "Failed to rename session: " + msg.Err.Error(), Error: true}
			if c.renaming[msg.ID] == msg.Name {
				delete(c.renaming, msg.ID)
			}
			if ok && s.Name == msg.Name {
				c.sessions[idx].Name = msg.Previous
			}
			return
		}
		if c.renaming[msg.ID] == msg.Name {
			delete(c.renaming, msg.ID)
			name := msg.Updated.Name
			if name == "" {
				name = msg.Name
			}
			if ok {
				c.sessions[idx].Name = name
			}
		}
		c.notice = &Notice{Text: fmt.Sprintf("Renamed to %q", msg.Name)}
	case DeletedMsg:
		if msg.Err != nil {
			c.log.Warnf("delete %s: %v", msg.Session.ID, msg.Err)
			c.notice = &Notice{Text: "Failed to delete session: " + msg.Err.Error(), Error: true}
			if _, _, ok := c.Find(msg.Session.ID); !ok {
				c.restore(msg.Session, msg.Index)
			}
			return
		}
		if _, idx, ok := c.Find(msg.Session.ID); ok {
			c.sessions = append(c.sessions[:idx:idx], c.sessions[idx+1:]...)
		}
		c.notice = &Notice{Text: fmt.Sprintf("Deleted %q", msg.Session.Name)}
	}
}

// dropPendingRefresh discards an in-flight refresh, which may have read
// the list before the server saw a mutation.
func (c *Catalog) dropPendingRefresh() {
	if c.loading {
		c.gen++
		c.loading = false
	}
}

func (c *Catalog) restore(s model.Session, idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(c.sessions) {
		idx = len(c.sessions)
	}
	c.sessions = append(c.sessions, model.Session{})
	copy(c.sessions[idx+1:], c.sessions[idx:])
	c.sessions[idx] = s
}
