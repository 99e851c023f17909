package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/fetch"
	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/sample"
	"github.com/arin-jaff/peach-data-tool/internal/stats"
)

// bundleBackend serves a generated bundle from memory.
type bundleBackend struct {
	detail     model.SessionDetail
	pieces     map[string]model.BundlePiece
	sessionErr error
	strokesErr error
	renameErr  error
	sessions   []model.Session
}

func newBundleBackend(opts sample.Options) *bundleBackend {
	b := sample.Bundle(opts)
	detail := model.SessionDetail{Session: model.Session{ID: "s1", Name: b.Name, BoatSeats: b.BoatSeats}}
	for _, a := range b.Athletes {
		detail.Athletes = append(detail.Athletes, model.Athlete{
			ID: fmt.Sprintf("a%d", a.SeatPosition), SessionID: "s1", SeatPosition: a.SeatPosition, Name: a.Name,
		})
	}
	pieces := map[string]model.BundlePiece{}
	for _, p := range b.Pieces {
		id := fmt.Sprintf("p%d", p.PieceNumber)
		detail.Pieces = append(detail.Pieces, model.Piece{ID: id, SessionID: "s1", PieceNumber: p.PieceNumber, Name: p.Name})
		pieces[id] = p
	}
	return &bundleBackend{detail: detail, pieces: pieces, sessions: []model.Session{detail.Session}}
}

func (b *bundleBackend) GetSession(context.Context, string) (model.SessionDetail, error) {
	if b.sessionErr != nil {
		return model.SessionDetail{}, b.sessionErr
	}
	return b.detail, nil
}

func (b *bundleBackend) GetStrokes(_ context.Context, pieceID string) ([]model.StrokeMetric, error) {
	if b.strokesErr != nil {
		return nil, b.strokesErr
	}
	return b.pieces[pieceID].Strokes, nil
}

func (b *bundleBackend) GetPieceAverages(_ context.Context, pieceID string) (model.PieceAverages, error) {
	for _, p := range b.detail.Pieces {
		if p.ID == pieceID {
			return stats.PieceAverages(p, b.detail.Athletes, b.pieces[pieceID].Strokes), nil
		}
	}
	return model.PieceAverages{}, errors.New("unknown piece")
}

func (b *bundleBackend) GetForceCurve(_ context.Context, pieceID string, n int) (model.ForceCurve, error) {
	data := b.pieces[pieceID].Periodic[:20]
	return model.ForceCurve{StrokeNumber: n, DataPoints: len(data), Data: data}, nil
}

func (b *bundleBackend) ListSessions(context.Context) ([]model.Session, error) {
	return b.sessions, nil
}

func (b *bundleBackend) RenameSession(_ context.Context, id, name string) (model.SessionDetail, error) {
	if b.renameErr != nil {
		return model.SessionDetail{}, b.renameErr
	}
	return model.SessionDetail{Session: model.Session{ID: id, Name: name}}, nil
}

func (b *bundleBackend) DeleteSession(context.Context, string) error { return nil }

func (b *bundleBackend) ListAthletes(context.Context) ([]model.GlobalAthlete, error) {
	return []model.GlobalAthlete{{ID: "g1", Name: "Ada Lane", SessionCount: 1}}, nil
}

func (b *bundleBackend) GetAthleteTrends(_ context.Context, id string) (model.AthleteTrends, error) {
	return model.AthleteTrends{
		Athlete: model.GlobalAthlete{ID: id, Name: "Ada Lane"},
		DataPoints: []model.AthleteTrendPoint{
			{SessionName: "Mon", SeatPosition: 1, AvgPower: model.Float(210)},
			{SessionName: "Tue", SeatPosition: 1, AvgPower: model.Float(215)},
		},
	}, nil
}

func loadedOrchestrator(t *testing.T, b *bundleBackend) *fetch.Orchestrator {
	t.Helper()
	o := fetch.New(b, dashboard.New(), fetch.Options{})
	o.Drive(o.LoadSession("s1"))
	if o.Session() == nil || len(o.Strokes()) == 0 || o.ForceCurve() == nil {
		t.Fatalf("expected a fully loaded dashboard")
	}
	return o
}

func TestRenderPanelsInRegistryOrder(t *testing.T) {
	o := loadedOrchestrator(t, newBundleBackend(sample.Options{Seats: 4, Pieces: 2, Strokes: 6}))
	out := RenderPanels(o, RenderOptions{Width: 100})
	labels := []string{"Piece Summary", "Power", "Effective Length", "Catch & Finish Angles", "Boat Speed & Rating", "Force Curve"}
	last := -1
	for _, label := range labels {
		idx := strings.Index(out, label)
		if idx < 0 || idx < last {
			t.Fatalf("panel %q missing or out of order:\n%s", label, out)
		}
		last = idx
	}
	if !strings.Contains(out, "Piece 1: Warmup") || !strings.Contains(out, "Ada Lane") {
		t.Fatalf("expected piece header and roster in summary:\n%s", out)
	}
	if !strings.Contains(out, "stroke 1, 20 samples") {
		t.Fatalf("expected force curve caption:\n%s", out)
	}
}

func TestRenderPanelsRespectsHiddenAndOrder(t *testing.T) {
	o := loadedOrchestrator(t, newBundleBackend(sample.Options{Seats: 2, Pieces: 1, Strokes: 4}))
	st := o.State()
	st.Panels.TogglePanel(model.PanelPower)
	st.Panels.MovePanelUp(model.PanelForceCurve)
	out := RenderPanels(o, RenderOptions{Width: 80})
	if strings.Contains(out, "Power\n") {
		t.Fatalf("hidden panel rendered:\n%s", out)
	}
	if strings.Index(out, "Force Curve") > strings.Index(out, "Boat Speed & Rating") {
		t.Fatalf("moved panel not rendered earlier:\n%s", out)
	}
}

func TestRenderPanelsSessionError(t *testing.T) {
	b := newBundleBackend(sample.Options{})
	b.sessionErr = errors.New("gone")
	o := fetch.New(b, dashboard.New(), fetch.Options{})
	o.Drive(o.LoadSession("s1"))
	if out := RenderPanels(o, RenderOptions{}); !strings.Contains(out, "failed to load session: gone") {
		t.Fatalf("expected session error, got %q", out)
	}
}

func TestDashboardKeysMoveCursorAndSwitchPiece(t *testing.T) {
	b := newBundleBackend(sample.Options{Seats: 2, Pieces: 2, Strokes: 5})
	d := newDashboardView(b, dashboard.New(), fetch.Options{})
	d.setSize(80, 30)
	d.orch.Drive(d.orch.LoadSession("s1"))

	cmd := d.update(tea.KeyMsg{Type: tea.KeyRight})
	if d.state.Cursor.Current() != 2 {
		t.Fatalf("expected cursor on stroke 2, got %d", d.state.Cursor.Current())
	}
	if cmd == nil {
		t.Fatalf("expected a force curve request after moving the cursor")
	}
	d.orch.Drive(cmd)
	if d.orch.ForceCurve() == nil || d.orch.ForceCurve().StrokeNumber != 2 {
		t.Fatalf("expected force curve for stroke 2")
	}

	d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("$")})
	if d.state.Cursor.Current() != 5 {
		t.Fatalf("expected last stroke, got %d", d.state.Cursor.Current())
	}

	if d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")}) != nil {
		t.Fatalf("switching before the first piece should be a no-op")
	}
	d.orch.Drive(d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")}))
	if d.orch.PieceID() != "p2" || d.state.Cursor.Current() != 1 {
		t.Fatalf("expected piece 2 with cursor reset, got %q at %d", d.orch.PieceID(), d.state.Cursor.Current())
	}
}

func TestFailedPieceSwitchKeepsLoadedTabActive(t *testing.T) {
	b := newBundleBackend(sample.Options{Seats: 2, Pieces: 2, Strokes: 5})
	d := newDashboardView(b, dashboard.New(), fetch.Options{})
	d.setSize(80, 30)
	d.orch.Drive(d.orch.LoadSession("s1"))

	b.strokesErr = errors.New("offline")
	d.orch.Drive(d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")}))
	if d.orch.SelectedPiece() != "p2" || d.orch.PieceID() != "p1" {
		t.Fatalf("expected p2 requested and p1 kept, got %q / %q", d.orch.SelectedPiece(), d.orch.PieceID())
	}
	if got := d.activePiece(); got != "p1" {
		t.Fatalf("expected the loaded piece highlighted, got %q", got)
	}
}

func TestDashboardSeatToggle(t *testing.T) {
	b := newBundleBackend(sample.Options{Seats: 2, Pieces: 1, Strokes: 3})
	d := newDashboardView(b, dashboard.NewWithOptions(dashboard.Options{Seats: 2}), fetch.Options{})
	d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if d.state.Selection.Selected(2) {
		t.Fatalf("expected seat 2 deselected")
	}
	d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	if d.state.Selection.Selected(7) {
		t.Fatalf("seat outside the boat should not be toggled")
	}
	d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if d.state.Selection.ShowCrewAverage() {
		t.Fatalf("expected crew average off")
	}
}

func TestPanelConfigMode(t *testing.T) {
	d := newDashboardView(newBundleBackend(sample.Options{}), dashboard.New(), fetch.Options{})
	d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if !d.configuring {
		t.Fatalf("expected panel config mode")
	}
	d.update(tea.KeyMsg{Type: tea.KeyDown})
	d.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if d.state.Panels.IsVisible(model.PanelPower) {
		t.Fatalf("expected power panel hidden")
	}
	d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("K")})
	if d.state.Panels.All()[0].ID != model.PanelPower || d.panelIndex != 0 {
		t.Fatalf("expected power moved to the top, index %d", d.panelIndex)
	}
	d.update(tea.KeyMsg{Type: tea.KeyEsc})
	if d.configuring {
		t.Fatalf("expected config mode closed")
	}
}

func TestSessionsRenameRevertsOnFailure(t *testing.T) {
	b := newBundleBackend(sample.Options{Name: "Outing"})
	b.renameErr = errors.New("read only")
	m := NewModel(b, Options{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(m.sessions.cat.Refresh()())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.sessions.mode != modeRename {
		t.Fatalf("expected rename mode")
	}
	m.sessions.input.SetValue("Renamed")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.sessions.cat.Sessions()[0].Name; got != "Renamed" {
		t.Fatalf("expected optimistic rename, got %q", got)
	}
	m.Update(cmd())
	if got := m.sessions.cat.Sessions()[0].Name; got != "Outing" {
		t.Fatalf("expected revert, got %q", got)
	}
	if !strings.Contains(m.View(), "Failed to rename session") {
		t.Fatalf("expected failure notice in view")
	}
}

func TestOpenSessionFromBrowser(t *testing.T) {
	b := newBundleBackend(sample.Options{Seats: 2, Pieces: 1, Strokes: 3})
	m := NewModel(b, Options{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.sessions.cat.Refresh()())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd = m.Update(cmd())
	if m.screen != screenDashboard || m.dash == nil {
		t.Fatalf("expected dashboard screen")
	}
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		_, cmd = m.Update(msg)
	}
	if m.dash.orch.PieceID() != "p1" {
		t.Fatalf("expected first piece loaded")
	}
	if !strings.Contains(m.View(), "Piece Summary") {
		t.Fatalf("expected dashboard content in view")
	}
}

func TestAthletesScreen(t *testing.T) {
	m := NewModel(newBundleBackend(sample.Options{}), Options{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	_, cmd := m.Update(showScreenMsg{screen: screenAthletes})
	m.Update(cmd())
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	out := m.View()
	if !strings.Contains(out, "Trends: Ada Lane") || !strings.Contains(out, "Avg power") {
		t.Fatalf("expected trends in view:\n%s", out)
	}
}

type listAthletes struct {
	athletes []model.GlobalAthlete
}

func (l *listAthletes) ListAthletes(context.Context) ([]model.GlobalAthlete, error) {
	return append([]model.GlobalAthlete(nil), l.athletes...), nil
}

func (l *listAthletes) GetAthleteTrends(_ context.Context, id string) (model.AthleteTrends, error) {
	return model.AthleteTrends{Athlete: model.GlobalAthlete{ID: id, Name: id}}, nil
}

func TestOlderAthleteListIgnored(t *testing.T) {
	b := &listAthletes{athletes: []model.GlobalAthlete{{ID: "g1", Name: "Ada Lane"}}}
	v := newAthletesView(b, time.Second)
	older := v.refresh()
	oldMsg := older()

	b.athletes = append(b.athletes, model.GlobalAthlete{ID: "g2", Name: "Ben Ortiz", Squad: model.String("Varsity")})
	v.handle(v.refresh()())
	v.handle(oldMsg)

	if len(v.athletes) != 2 || v.athletes[1].Squad == nil {
		t.Fatalf("older list overwrote newer one: %+v", v.athletes)
	}
	if v.loading {
		t.Fatalf("expected refresh finished")
	}
}

func TestOlderTrendsForSameAthleteIgnored(t *testing.T) {
	v := newAthletesView(&listAthletes{}, time.Second)
	first := v.loadTrends("g1")()
	second := v.loadTrends("g1")
	v.handle(first)
	if v.trends != nil {
		t.Fatalf("superseded trends were committed")
	}
	v.handle(second())
	if v.trends == nil || v.trends.Athlete.ID != "g1" {
		t.Fatalf("expected current trends, got %+v", v.trends)
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int64]string{0: "0:00.0", 61500: "1:01.5", -5: "0:00.0", 599900: "9:59.9"}
	for in, want := range cases {
		if got := formatClock(in); got != want {
			t.Fatalf("formatClock(%d) = %q, want %q", in, got, want)
		}
	}
}
