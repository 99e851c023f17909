package dashboard

import (
	"strings"

	"github.com/arin-jaff/peach-data-tool/internal/model"
)

var defaultPanels = []model.PanelConfig{
	{ID: model.PanelSummary, Label: "Piece Summary", Visible: true},
	{ID: model.PanelPower, Label: "Power", Visible: true},
	{ID: model.PanelEffectiveLength, Label: "Effective Length", Visible: true},
	{ID: model.PanelAngles, Label: "Catch & Finish Angles", Visible: true},
	{ID: model.PanelSpeed, Label: "Boat Speed & Rating", Visible: true},
	{ID: model.PanelForceCurve, Label: "Force Curve", Visible: true},
}

// Panels is the ordered panel registry. The order covers every panel,
// hidden ones included, and drives both rendering and the config menu.
type Panels struct {
	list []model.PanelConfig
}

// NewPanels returns the default panel set, all visible.
func NewPanels() Panels {
	return Panels{list: append([]model.PanelConfig(nil), defaultPanels...)}
}

// PanelsFromConfig builds a registry from configured ids. Listed ids come
// first in the given order; unknown or repeated ids are ignored and the
// remaining panels follow in default order. Ids in hidden start hidden.
func PanelsFromConfig(order, hidden []string) Panels {
	byID := make(map[model.PanelID]model.PanelConfig, len(defaultPanels))
	for _, p := range defaultPanels {
		byID[p.ID] = p
	}
	used := make(map[model.PanelID]bool, len(defaultPanels))
	list := make([]model.PanelConfig, 0, len(defaultPanels))
	for _, raw := range order {
		id := model.PanelID(strings.TrimSpace(raw))
		p, ok := byID[id]
		if !ok || used[id] {
			continue
		}
		used[id] = true
		list = append(list, p)
	}
	for _, p := range defaultPanels {
		if !used[p.ID] {
			list = append(list, p)
		}
	}
	panels := Panels{list: list}
	for _, raw := range hidden {
		id := model.PanelID(strings.TrimSpace(raw))
		if idx := panels.index(id); idx >= 0 {
			panels.list[idx].Visible = false
		}
	}
	return panels
}

// All returns every panel in order.
func (p *Panels) All() []model.PanelConfig {
	return append([]model.PanelConfig(nil), p.list...)
}

// Visible returns the panels to render, in order.
func (p *Panels) Visible() []model.PanelConfig {
	out := make([]model.PanelConfig, 0, len(p.list))
	for _, panel := range p.list {
		if panel.Visible {
			out = append(out, panel)
		}
	}
	return out
}

// Hidden returns the hidden panels, in order.
func (p *Panels) Hidden() []model.PanelConfig {
	out := make([]model.PanelConfig, 0, len(p.list))
	for _, panel := range p.list {
		if !panel.Visible {
			out = append(out, panel)
		}
	}
	return out
}

// IsVisible reports whether a panel is shown.
func (p *Panels) IsVisible(id model.PanelID) bool {
	idx := p.index(id)
	return idx >= 0 && p.list[idx].Visible
}

// TogglePanel flips visibility without moving the panel.
func (p *Panels) TogglePanel(id model.PanelID) {
	if idx := p.index(id); idx >= 0 {
		p.list[idx].Visible = !p.list[idx].Visible
	}
}

// MovePanelUp swaps a panel with its predecessor; no-op for the first panel.
func (p *Panels) MovePanelUp(id model.PanelID) {
	idx := p.index(id)
	if idx <= 0 {
		return
	}
	p.list[idx-1], p.list[idx] = p.list[idx], p.list[idx-1]
}

// MovePanelDown swaps a panel with its successor; no-op for the last panel.
func (p *Panels) MovePanelDown(id model.PanelID) {
	idx := p.index(id)
	if idx < 0 || idx >= len(p.list)-1 {
		return
	}
	p.list[idx], p.list[idx+1] = p.list[idx+1], p.list[idx]
}

func (p *Panels) index(id model.PanelID) int {
	for i, panel := range p.list {
		if panel.ID == id {
			return i
		}
	}
	return -1
}
