package overlay

import "github.com/Carmen-Shannon/oxy-fx/common"

// Panel styling.
var (
	PanelBackground = common.RGBA(0.1, 0.1, 0.1, 0.85)
	PanelBorder     = common.RGBA(0.4, 0.4, 0.4, 1)
	PanelTitleBar   = common.RGBA(0.15, 0.15, 0.15, 0.95)
)

const (
	panelBorderWidth = 1
	panelTitleHeight = 22
)

// PanelBuilder configures a panel before it is drawn.
type PanelBuilder struct {
	list       *DrawList
	bounds     Rect
	background common.Color
	border     *common.Color
	title      string
}

// Panel starts a panel at the given rectangle with the default background and border.
//
// Parameters:
//   - x, y, w, h: the panel rectangle in pixels
//
// Returns:
//   - *PanelBuilder: the builder; call Draw to record it
func (d *DrawList) Panel(x, y, w, h float32) *PanelBuilder {
	border := PanelBorder
	return &PanelBuilder{
		list:       d,
		bounds:     Rect{x, y, w, h},
		background: PanelBackground,
		border:     &border,
	}
}

// Background overrides the fill color.
func (p *PanelBuilder) Background(c common.Color) *PanelBuilder {
	p.background = c
	return p
}

// Border overrides the border color.
func (p *PanelBuilder) Border(c common.Color) *PanelBuilder {
	p.border = &c
	return p
}

// NoBorder removes the border.
func (p *PanelBuilder) NoBorder() *PanelBuilder {
	p.border = nil
	return p
}

// Title adds a title bar with white text.
func (p *PanelBuilder) Title(text string) *PanelBuilder {
	p.title = text
	return p
}

// Draw records the panel: background, then border, then title bar and title text.
func (p *PanelBuilder) Draw() {
	b := p.bounds
	d := p.list

	d.Rect(b.X, b.Y, b.W, b.H, p.background)
	if p.border != nil {
		c := *p.border
		d.Rect(b.X, b.Y, b.W, panelBorderWidth, c)
		d.Rect(b.X, b.Y+b.H-panelBorderWidth, b.W, panelBorderWidth, c)
		d.Rect(b.X, b.Y, panelBorderWidth, b.H, c)
		d.Rect(b.X+b.W-panelBorderWidth, b.Y, panelBorderWidth, b.H, c)
	}
	if p.title != "" {
		d.Rect(b.X, b.Y, b.W, panelTitleHeight, PanelTitleBar)
		d.Text(b.X+8, b.Y+4, p.title, common.White)
	}
}
