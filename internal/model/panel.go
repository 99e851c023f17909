package model

// PanelID identifies a dashboard chart panel.
type PanelID string

// Panel kinds, in default display order.
const (
	PanelSummary         PanelID = "summary"
	PanelPower           PanelID = "power"
	PanelEffectiveLength PanelID = "effectiveLength"
	PanelAngles          PanelID = "angles"
	PanelSpeed           PanelID = "speed"
	PanelForceCurve      PanelID = "forceCurve"
)

// PanelConfig is one entry of the panel registry.
type PanelConfig struct {
	ID      PanelID
	Label   string
	Visible bool
}
