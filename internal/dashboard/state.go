package dashboard

// State is the view state owned by one dashboard instance. It is
// created per view and never persisted.
type State struct {
	Cursor    Cursor
	Selection Selection
	Panels    Panels
}

// Options seeds a new State.
type Options struct {
	Seats        int
	CrewAverage  *bool
	PanelOrder   []string
	HiddenPanels []string
}

// New returns the default state: every seat selected, crew average on,
// all panels in default order and the cursor on stroke 1.
func New() *State {
	return NewWithOptions(Options{})
}

// NewWithOptions returns a fresh state seeded from configuration.
func NewWithOptions(opts Options) *State {
	st := &State{
		Cursor:    NewCursor(),
		Selection: NewSelection(opts.Seats),
		Panels:    PanelsFromConfig(opts.PanelOrder, opts.HiddenPanels),
	}
	if opts.CrewAverage != nil && !*opts.CrewAverage {
		st.Selection.ToggleCrewAverage()
	}
	return st
}
