// Package fetch drives the three dependent load stages of a dashboard:
// session, piece and stroke. Requests run as bubbletea commands; results
// come back as messages and are committed only by Orchestrator.Update,
// which drops any result that a newer trigger has superseded.
package fetch

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/arin-jaff/peach-data-tool/internal/dashboard"
	"github.com/arin-jaff/peach-data-tool/internal/logging"
	"github.com/arin-jaff/peach-data-tool/internal/model"
)

const defaultTimeout = 15 * time.Second

// Stage identifies a load scope. Lower stages depend on higher ones.
type Stage int

const (
	StageSession Stage = iota
	StagePiece
	StageStroke
	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageSession:
		return "session"
	case StagePiece:
		return "piece"
	case StageStroke:
		return "force curve"
	default:
		return "unknown"
	}
}

// Backend is the read side of the telemetry API.
type Backend interface {
	GetSession(ctx context.Context, id string) (model.SessionDetail, error)
	GetStrokes(ctx context.Context, pieceID string) ([]model.StrokeMetric, error)
	GetPieceAverages(ctx context.Context, pieceID string) (model.PieceAverages, error)
	GetForceCurve(ctx context.Context, pieceID string, strokeNumber int) (model.ForceCurve, error)
}

// SessionLoadedMsg carries a session stage result.
type SessionLoadedMsg struct {
	gen     uint64
	ID      string
	Session model.SessionDetail
	Err     error
}

// PieceLoadedMsg carries the joint strokes and averages result.
type PieceLoadedMsg struct {
	gen      uint64
	PieceID  string
	Strokes  []model.StrokeMetric
	Averages model.PieceAverages
	Err      error
}

// ForceCurveLoadedMsg carries a stroke stage result.
type ForceCurveLoadedMsg struct {
	gen     uint64
	PieceID string
	Index   int
	Curve   model.ForceCurve
	Err     error
}

type strokeKey struct {
	pieceID string
	index   int
}

// Options configures an Orchestrator.
type Options struct {
	Timeout time.Duration
	Logger  *logging.Logger
}

// Orchestrator owns the loaded data of one dashboard view.
type Orchestrator struct {
	backend Backend
	state   *dashboard.State
	timeout time.Duration
	log     *logging.Logger

	gen     [stageCount]uint64
	cancel  [stageCount]context.CancelFunc
	loading [stageCount]bool
	errs    [stageCount]error

	sessionID     string
	session       *model.SessionDetail
	selectedPiece string
	pieceID       string
	strokes       []model.StrokeMetric
	averages      *model.PieceAverages
	forceCurve    *model.ForceCurve
	lastStroke    *strokeKey
}

// New creates an orchestrator that commits into state.
func New(backend Backend, state *dashboard.State, opts Options) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Orchestrator{
		backend: backend,
		state:   state,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
}

// State returns the dashboard state the orchestrator commits into.
func (o *Orchestrator) State() *dashboard.State { return o.state }

// Session returns the committed session, or nil.
func (o *Orchestrator) Session() *model.SessionDetail { return o.session }

// SessionID returns the id of the most recently requested session.
func (o *Orchestrator) SessionID() string { return o.sessionID }

// PieceID returns the committed piece id.
func (o *Orchestrator) PieceID() string { return o.pieceID }

// SelectedPiece returns the most recently requested piece id.
func (o *Orchestrator) SelectedPiece() string { return o.selectedPiece }

// Strokes returns the committed strokes of the current piece.
func (o *Orchestrator) Strokes() []model.StrokeMetric { return o.strokes }

// Averages returns the committed averages of the current piece, or nil.
func (o *Orchestrator) Averages() *model.PieceAverages { return o.averages }

// ForceCurve returns the committed force curve, or nil.
func (o *Orchestrator) ForceCurve() *model.ForceCurve { return o.forceCurve }

// Err returns the last error of a stage.
func (o *Orchestrator) Err(stage Stage) error { return o.errs[stage] }

// Loading reports whether a stage has a request in flight.
func (o *Orchestrator) Loading(stage Stage) bool { return o.loading[stage] }

// Busy reports whether any stage is loading.
func (o *Orchestrator) Busy() bool {
	for _, l := range o.loading {
		if l {
			return true
		}
	}
	return false
}

// CurrentStroke returns the stroke under the cursor, or nil.
func (o *Orchestrator) CurrentStroke() *model.StrokeMetric {
	idx := o.state.Cursor.Current() - 1
	if idx < 0 || idx >= len(o.strokes) {
		return nil
	}
	return &o.strokes[idx]
}

// begin supersedes stage and every stage below it and returns a fresh
// context and generation for the new request. Superseding the stroke
// stage from above also forgets the last stroke request, so a failed
// session or piece load can resync the cursor's stroke.
func (o *Orchestrator) begin(stage Stage) (context.Context, uint64) {
	if stage < StageStroke {
		o.lastStroke = nil
	}
	for s := stage; s < stageCount; s++ {
		o.gen[s]++
		if o.cancel[s] != nil {
			o.cancel[s]()
			o.cancel[s] = nil
		}
		o.loading[s] = false
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel[stage] = cancel
	o.loading[stage] = true
	return ctx, o.gen[stage]
}

// accept reports whether a result is current and closes its request.
func (o *Orchestrator) accept(stage Stage, gen uint64) bool {
	if gen != o.gen[stage] {
		o.log.Debugf("dropping stale %s result (generation %d, current %d)", stage, gen, o.gen[stage])
		return false
	}
	if o.cancel[stage] != nil {
		o.cancel[stage]()
		o.cancel[stage] = nil
	}
	o.loading[stage] = false
	return true
}

// LoadSession starts the session stage.
func (o *Orchestrator) LoadSession(id string) tea.Cmd {
	ctx, gen := o.begin(StageSession)
	o.sessionID = id
	backend, timeout := o.backend, o.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		detail, err := backend.GetSession(ctx, id)
		return SessionLoadedMsg{gen: gen, ID: id, Session: detail, Err: err}
	}
}

// SelectPiece starts the piece stage. Strokes and averages are fetched
// concurrently and delivered together.
func (o *Orchestrator) SelectPiece(pieceID string) tea.Cmd {
	ctx, gen := o.begin(StagePiece)
	o.selectedPiece = pieceID
	backend, timeout := o.backend, o.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var (
			strokes  []model.StrokeMetric
			averages model.PieceAverages
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			strokes, err = backend.GetStrokes(gctx, pieceID)
			return err
		})
		g.Go(func() error {
			var err error
			averages, err = backend.GetPieceAverages(gctx, pieceID)
			return err
		})
		if err := g.Wait(); err != nil {
			return PieceLoadedMsg{gen: gen, PieceID: pieceID, Err: err}
		}
		return PieceLoadedMsg{gen: gen, PieceID: pieceID, Strokes: strokes, Averages: averages}
	}
}

// SyncStroke starts the stroke stage for the cursor position. It returns
// nil when there is nothing to load or the same stroke was already requested.
func (o *Orchestrator) SyncStroke() tea.Cmd {
	cur := o.CurrentStroke()
	if cur == nil {
		return nil
	}
	key := strokeKey{pieceID: o.pieceID, index: o.state.Cursor.Current()}
	if o.lastStroke != nil && *o.lastStroke == key {
		return nil
	}
	o.lastStroke = &key
	ctx, gen := o.begin(StageStroke)
	backend, timeout := o.backend, o.timeout
	strokeNumber := cur.StrokeNumber
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		curve, err := backend.GetForceCurve(ctx, key.pieceID, strokeNumber)
		return ForceCurveLoadedMsg{gen: gen, PieceID: key.pieceID, Index: key.index, Curve: curve, Err: err}
	}
}

// RetryStroke forgets the last stroke request so SyncStroke runs again.
func (o *Orchestrator) RetryStroke() tea.Cmd {
	o.lastStroke = nil
	return o.SyncStroke()
}

// Update commits stage results. Other messages are ignored.
func (o *Orchestrator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SessionLoadedMsg:
		if !o.accept(StageSession, msg.gen) {
			return nil
		}
		if msg.Err != nil {
			o.errs[StageSession] = fmt.Errorf("failed to load session: %w", msg.Err)
			o.log.Warnf("%v", o.errs[StageSession])
			return o.SyncStroke()
		}
		detail := msg.Session
		o.session = &detail
		for s := StageSession; s < stageCount; s++ {
			o.errs[s] = nil
		}
		o.clearPiece()
		if len(detail.Pieces) == 0 {
			return nil
		}
		return o.SelectPiece(detail.Pieces[0].ID)
	case PieceLoadedMsg:
		if !o.accept(StagePiece, msg.gen) {
			return nil
		}
		if msg.Err != nil {
			o.errs[StagePiece] = fmt.Errorf("failed to load piece: %w", msg.Err)
			o.log.Warnf("%v", o.errs[StagePiece])
			return o.SyncStroke()
		}
		averages := msg.Averages
		o.pieceID = msg.PieceID
		o.strokes = msg.Strokes
		o.averages = &averages
		o.forceCurve = nil
		o.lastStroke = nil
		o.errs[StagePiece] = nil
		o.errs[StageStroke] = nil
		o.state.Cursor.SetTotalStrokes(len(msg.Strokes))
		o.state.Cursor.SetCurrentStroke(1)
		return o.SyncStroke()
	case ForceCurveLoadedMsg:
		if !o.accept(StageStroke, msg.gen) {
			return nil
		}
		if msg.Err != nil {
			o.errs[StageStroke] = fmt.Errorf("failed to load force curve: %w", msg.Err)
			o.log.Warnf("%v", o.errs[StageStroke])
			return nil
		}
		curve := msg.Curve
		o.forceCurve = &curve
		o.errs[StageStroke] = nil
	}
	return nil
}

// Drive runs a command chain to completion on the calling goroutine.
func (o *Orchestrator) Drive(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		cmd = o.Update(msg)
	}
}

func (o *Orchestrator) clearPiece() {
	o.pieceID = ""
	o.selectedPiece = ""
	o.strokes = nil
	o.averages = nil
	o.forceCurve = nil
	o.lastStroke = nil
	o.state.Cursor.SetTotalStrokes(0)
	o.state.Cursor.SetCurrentStroke(1)
}
