package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/hpc-uk/netview/internal/datasource"
	"github.com/hpc-uk/netview/pkg/debug"
)

// Panel names follow the report page convention: each node's detail panel is
// "<name>-scaling" and the benchmark time-series panel is the fixed
// "timeseries-div".
const TimeseriesPanelName = "timeseries-div"

// ScalingPanelName derives the detail panel name for a node display name.
func ScalingPanelName(node string) string {
	return node + "-scaling"
}

// Panel is a named collapsible region below the graph viewport.
type Panel interface {
	Name() string
	Open()
	Close()
	IsOpen() bool
	SetSize(width, height int)
	View(t Theme) string
}

// Registry resolves panel names to panels. The interaction model requests
// panels by derived name; a name with no registered panel is a diagnostic
// and a no-op, never an error.
type Registry struct {
	panels map[string]Panel
}

// NewRegistry returns an empty panel registry.
func NewRegistry() *Registry {
	return &Registry{panels: make(map[string]Panel)}
}

// Register adds a panel under its own name, replacing any previous panel
// with that name.
func (r *Registry) Register(p Panel) {
	r.panels[p.Name()] = p
}

// Open opens the named panel and reports whether it existed. Unknown names
// are logged and skipped.
func (r *Registry) Open(name string) bool {
	p, ok := r.panels[name]
	if !ok {
		debug.Log("panel %q not registered, skipping open", name)
		return false
	}
	p.Open()
	return true
}

// Close closes the named panel if it exists.
func (r *Registry) Close(name string) {
	if p, ok := r.panels[name]; ok {
		p.Close()
	}
}

// CloseAll closes every registered panel.
func (r *Registry) CloseAll() {
	for _, p := range r.panels {
		p.Close()
	}
}

// OpenPanels returns the currently open panels in stable name order.
func (r *Registry) OpenPanels() []Panel {
	var open []Panel
	for _, p := range r.panels {
		if p.IsOpen() {
			open = append(open, p)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Name() < open[j].Name() })
	return open
}

// SetSize resizes all registered panels.
func (r *Registry) SetSize(width, height int) {
	for _, p := range r.panels {
		p.SetSize(width, height)
	}
}

// DetailPanel renders one node's markdown description inside a viewport.
// Content is rendered with glamour lazily, on first open at a known width.
type DetailPanel struct {
	name     string
	title    string
	markdown string

	open     bool
	width    int
	height   int
	rendered bool
	vp       viewport.Model
}

// NewDetailPanel builds the detail panel for a node. The panel name is the
// derived "<name>-scaling" identifier; title is the display name.
func NewDetailPanel(nodeName, markdown string) *DetailPanel {
	return &DetailPanel{
		name:     ScalingPanelName(nodeName),
		title:    nodeName,
		markdown: markdown,
	}
}

func (p *DetailPanel) Name() string { return p.name }

func (p *DetailPanel) Open() { p.open = true }

func (p *DetailPanel) Close() { p.open = false }

func (p *DetailPanel) IsOpen() bool { return p.open }

// SetSize sets the panel's outer dimensions. A width change invalidates the
// rendered markdown so word wrap tracks the terminal.
func (p *DetailPanel) SetSize(width, height int) {
	if width != p.width {
		p.rendered = false
	}
	p.width = width
	p.height = height
}

// ScrollDown scrolls the description viewport.
func (p *DetailPanel) ScrollDown(lines int) {
	p.vp.LineDown(lines)
}

// ScrollUp scrolls the description viewport.
func (p *DetailPanel) ScrollUp(lines int) {
	p.vp.LineUp(lines)
}

func (p *DetailPanel) View(t Theme) string {
	if !p.open || p.width <= 4 || p.height <= 2 {
		return ""
	}
	p.render()
	title := t.PanelTitle.Render(truncate(p.title, p.width-4))
	body := joinLines(title, p.vp.View())
	return t.Panel.Width(p.width - 2).Render(body)
}

func (p *DetailPanel) render() {
	innerWidth := p.width - 4
	innerHeight := p.height - 3 // border rows and title
	if innerHeight < 1 {
		innerHeight = 1
	}
	if !p.rendered {
		content := strings.TrimRight(p.renderMarkdown(innerWidth), "\n")
		p.vp = viewport.New(innerWidth, innerHeight)
		p.vp.SetContent(content)
		p.rendered = true
		return
	}
	p.vp.Width = innerWidth
	p.vp.Height = innerHeight
}

func (p *DetailPanel) renderMarkdown(width int) string {
	if strings.TrimSpace(p.markdown) == "" {
		return "(no description)"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return p.markdown
	}
	out, err := r.Render(p.markdown)
	if err != nil {
		return p.markdown
	}
	return out
}

// TimeseriesPanel renders benchmark series from the perflog store as
// sparklines. An empty series list is valid: the panel opens and says so
// instead of failing, since a missing perflog is not an error.
type TimeseriesPanel struct {
	series []datasource.Series

	open   bool
	width  int
	height int
}

// NewTimeseriesPanel builds the time-series panel over the loaded series.
func NewTimeseriesPanel(series []datasource.Series) *TimeseriesPanel {
	return &TimeseriesPanel{series: series}
}

func (p *TimeseriesPanel) Name() string { return TimeseriesPanelName }

func (p *TimeseriesPanel) Open() { p.open = true }

func (p *TimeseriesPanel) Close() { p.open = false }

func (p *TimeseriesPanel) IsOpen() bool { return p.open }

func (p *TimeseriesPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetSeries replaces the panel's series, e.g. after a live reload.
func (p *TimeseriesPanel) SetSeries(series []datasource.Series) {
	p.series = series
}

func (p *TimeseriesPanel) View(t Theme) string {
	if !p.open || p.width <= 4 || p.height <= 2 {
		return ""
	}
	innerWidth := p.width - 4
	maxRows := p.height - 3
	if maxRows < 1 {
		maxRows = 1
	}

	lines := []string{t.PanelTitle.Render("benchmark history")}
	if len(p.series) == 0 {
		lines = append(lines, t.MutedText.Render("no perflog data"))
	}
	nameWidth := 0
	for _, s := range p.series {
		if w := runewidth.StringWidth(s.Name); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > innerWidth/3 {
		nameWidth = innerWidth / 3
	}
	for i, s := range p.series {
		if i >= maxRows {
			lines = append(lines, t.MutedText.Render(fmt.Sprintf("… %d more", len(p.series)-maxRows)))
			break
		}
		lines = append(lines, p.seriesLine(t, s, nameWidth, innerWidth))
	}
	return t.Panel.Width(p.width - 2).Render(strings.Join(lines, "\n"))
}

func (p *TimeseriesPanel) seriesLine(t Theme, s datasource.Series, nameWidth, innerWidth int) string {
	name := runewidth.FillRight(truncate(s.Name, nameWidth), nameWidth)
	last := ""
	if n := len(s.Points); n > 0 {
		last = fmt.Sprintf(" %.3g", s.Points[n-1].Y)
		if s.Unit != "" {
			last += " " + s.Unit
		}
	}
	// Widths are terminal cells, not bytes: CJK names and units are wide.
	sparkWidth := innerWidth - nameWidth - 1 - runewidth.StringWidth(last)
	if sparkWidth < 1 {
		sparkWidth = 1
	}
	ys := make([]float64, len(s.Points))
	for i, pt := range s.Points {
		ys[i] = pt.Y
	}
	return t.SecondaryText.Render(name) + " " +
		t.PrimaryBold.Render(Sparkline(ys, sparkWidth)) +
		t.MutedText.Render(last)
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
