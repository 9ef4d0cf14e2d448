package ui

import "github.com/charmbracelet/lipgloss"

// Tooltip is the single floating label of the viewer. It shows the display
// name of the hovered node (or the focused node, which keeps its label while
// focused) at a fixed anchor: horizontally centered, on the row just above
// the graph viewport. It never follows the cursor or the node's live
// position, so the eye always finds it in the same place.
type Tooltip struct {
	visible bool
	text    string
}

// Show sets the tooltip text and makes it visible.
func (t *Tooltip) Show(text string) {
	t.text = text
	t.visible = true
}

// Hide makes the tooltip invisible. Safe to call when already hidden.
func (t *Tooltip) Hide() {
	t.visible = false
}

// Visible reports whether the tooltip is shown.
func (t *Tooltip) Visible() bool {
	return t.visible
}

// Text returns the current tooltip text, meaningful only while visible.
func (t *Tooltip) Text() string {
	return t.text
}

// View renders the tooltip line for a viewport of the given width: the
// styled label centered horizontally, or an empty line when hidden. The
// caller places this at the anchored row; returning a line either way keeps
// the viewport height stable.
func (t *Tooltip) View(theme Theme, width int) string {
	if !t.visible || width <= 0 {
		return ""
	}
	label := theme.Tooltip.Render(truncate(t.text, width-2))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, label)
}
