package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hpc-uk/netview/internal/datasource"
	"github.com/hpc-uk/netview/pkg/analysis"
	"github.com/hpc-uk/netview/pkg/config"
	"github.com/hpc-uk/netview/pkg/export"
	"github.com/hpc-uk/netview/pkg/loader"
	"github.com/hpc-uk/netview/pkg/model"
	"github.com/hpc-uk/netview/pkg/physics"
	"github.com/hpc-uk/netview/pkg/render"
	"github.com/hpc-uk/netview/pkg/watcher"
)

// Logical drawing surface. The canvas projects this fixed coordinate space
// onto however many terminal cells are available, so the layout is the same
// at any window size and matches the snapshot exporter's output.
const (
	logicalWidth  = 900
	logicalHeight = 600
)

const (
	headerRows   = 1
	tooltipRows  = 1
	footerRows   = 1
	sidebarWidth = 28
	panelHeight  = 9

	// minimum window before the sidebar is worth drawing
	sidebarMinWidth = sidebarWidth + 40

	statusTTL = 4 * time.Second
)

// SimStepMsg is posted by the simulation driver after each step that moved
// the layout. Update responds by projecting the new positions into the scene.
type SimStepMsg struct{}

// FileChangedMsg is posted when the watched network document changes on disk.
type FileChangedMsg struct{}

type reloadedMsg struct {
	graph *model.Graph
	err   error
}

type snapshotDoneMsg struct {
	path string
	err  error
}

type statusClearMsg struct{ seq int }

// dragState tracks one in-flight mouse gesture. node is set on press over a
// node; active flips on the first motion while held, turning the click
// candidate into a drag.
type dragState struct {
	node   int
	active bool
}

// Options configures a Model beyond the document itself.
type Options struct {
	Config   config.Config
	DataPath string
	Series   []datasource.Series
	Watcher  *watcher.Watcher
	Theme    *Theme
}

// Model is the viewer's bubbletea model. It owns every piece of interaction
// state: the focus, the hover target, the drag gesture, the tooltip and the
// panel registry. The physics driver ticks on its own goroutine and posts
// SimStepMsg; everything else happens on the Update goroutine.
type Model struct {
	theme Theme
	cfg   config.Config

	dataPath string
	graph    *model.Graph
	adj      *analysis.Adjacency
	stats    *analysis.Stats

	params physics.Params
	tick   time.Duration
	sim    *physics.Simulation
	driver *physics.Driver
	send   func(tea.Msg)

	scene  *render.Scene
	canvas *render.Canvas
	watch  *watcher.Watcher

	focus  FocusState
	hover  int
	cursor int
	drag   dragState

	tooltip    Tooltip
	panels     *Registry
	timeseries *TimeseriesPanel

	showNodeList  bool
	showMouseHelp bool
	showHelp      bool

	width, height        int
	graphCols, graphRows int
	ready                bool

	statusMsg string
	statusSeq int
}

// NewModel builds the viewer for a validated document. The simulation driver
// is created but not started; call StartDriver once the program exists.
func NewModel(g *model.Graph, opts Options) *Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	params := simParams(opts.Config.Simulation)
	tick := physics.DefaultTickInterval
	if ms := opts.Config.Simulation.TickMillis; ms > 0 {
		tick = time.Duration(ms) * time.Millisecond
	}

	sim := physics.New(g, params)

	m := &Model{
		theme:    theme,
		cfg:      opts.Config,
		dataPath: opts.DataPath,
		graph:    g,
		adj:      analysis.BuildAdjacency(g),
		stats:    analysis.Analyze(g),
		params:   params,
		tick:     tick,
		sim:      sim,
		driver:   physics.NewDriver(sim, tick),
		scene:    render.NewScene(g, render.DefaultConfig()),
		canvas:   render.NewCanvas(80, 24, logicalWidth, logicalHeight),
		watch:    opts.Watcher,

		hover: NoNode,
		drag:  dragState{node: NoNode},

		showNodeList:  opts.Config.UI.NodeList == nil || *opts.Config.UI.NodeList,
		showMouseHelp: opts.Config.UI.MouseHelp == nil || *opts.Config.UI.MouseHelp,

		timeseries: NewTimeseriesPanel(opts.Series),
	}
	m.panels = m.buildRegistry()
	m.scene.Sync(m.sim.Sync())
	return m
}

// simParams maps the user configuration onto the simulation defaults. Zero
// config values keep the built-in tuning.
func simParams(sc config.SimulationConfig) physics.Params {
	bounds := physics.Rect{Width: logicalWidth, Height: logicalHeight}
	p := physics.DefaultParams(bounds)
	if sc.Charge != 0 {
		p.Charge = sc.Charge
	}
	if sc.LinkDistanceMajor > 0 || sc.LinkDistance > 0 {
		major, other := sc.LinkDistanceMajor, sc.LinkDistance
		if major <= 0 {
			major = physics.DefaultLinkDistance(model.CategoryMajor)
		}
		if other <= 0 {
			other = physics.DefaultLinkDistance(model.CategoryMinor)
		}
		p.LinkDistance = func(c model.Category) float64 {
			if c == model.CategoryMajor {
				return major
			}
			return other
		}
	}
	return p
}

// buildRegistry registers one detail panel per node plus the time-series
// panel, preserving the previous time-series panel so reloads keep its open
// state and data.
func (m *Model) buildRegistry() *Registry {
	r := NewRegistry()
	for _, n := range m.graph.Nodes {
		r.Register(NewDetailPanel(n.Name, nodeMarkdown(n)))
	}
	r.Register(m.timeseries)
	return r
}

// nodeMarkdown builds the detail panel body: the document's description
// plus the node's aliases, which the report generator records for apps
// known under more than one name.
func nodeMarkdown(n model.Node) string {
	md := n.Description
	if len(n.Aliases) > 0 {
		alias := "_Also known as: " + strings.Join(n.Aliases, ", ") + "_"
		if md == "" {
			md = alias
		} else {
			md += "\n\n" + alias
		}
	}
	return md
}

// StartDriver wires the simulation driver to the running program and starts
// it. send is typically (*tea.Program).Send.
func (m *Model) StartDriver(send func(tea.Msg)) error {
	m.send = send
	m.driver.OnStep(func() { send(SimStepMsg{}) })
	return m.driver.Start()
}

// StopDriver stops the simulation goroutine. Idempotent.
func (m *Model) StopDriver() {
	m.driver.Stop()
}

// Focus exposes the current focus state for the render path and tests.
func (m *Model) Focus() FocusState { return m.focus }

// TooltipText returns the visible tooltip text, or "" when hidden.
func (m *Model) TooltipText() string {
	if !m.tooltip.Visible() {
		return ""
	}
	return m.tooltip.Text()
}

// Scene exposes the render scene for tests.
func (m *Model) Scene() *render.Scene { return m.scene }

// Panels exposes the panel registry for tests.
func (m *Model) Panels() *Registry { return m.panels }

func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	ch := m.watch.Changed()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return FileChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case SimStepMsg:
		m.scene.Sync(m.sim.Sync())
		return m, nil

	case FileChangedMsg:
		return m, tea.Batch(m.reloadCmd(), m.waitForChange())

	case reloadedMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("reload failed: %v (keeping previous document)", msg.err))
		}
		m.applyGraph(msg.graph)
		return m, m.setStatus(fmt.Sprintf("document reloaded: %d nodes, %d edges", len(m.graph.Nodes), len(m.graph.Edges)))

	case snapshotDoneMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("snapshot failed: %v", msg.err))
		}
		return m, m.setStatus("snapshot written to " + msg.path)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// graph viewport origin in window cells
func (m *Model) graphOrigin() (col, row int) {
	return 0, headerRows + tooltipRows
}

func (m *Model) hitTest(x, y int) int {
	x0, y0 := m.graphOrigin()
	col, row := x-x0, y-y0
	if col < 0 || row < 0 || col >= m.graphCols || row >= m.graphRows {
		return NoNode
	}
	return m.canvas.NodeAt(col, row)
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionMotion:
		if m.drag.node != NoNode && msg.Button == tea.MouseButtonLeft {
			m.dragTo(msg.X, msg.Y)
			return m, nil
		}
		m.setHover(m.hitTest(msg.X, msg.Y))
		return m, nil

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if hit := m.hitTest(msg.X, msg.Y); hit != NoNode {
				m.drag = dragState{node: hit}
			}
		case tea.MouseButtonWheelUp:
			m.scrollOpenDetail(-2)
		case tea.MouseButtonWheelDown:
			m.scrollOpenDetail(2)
		}
		return m, nil

	case tea.MouseActionRelease:
		gesture := m.drag
		m.drag = dragState{node: NoNode}
		if gesture.node == NoNode {
			return m, nil
		}
		if gesture.active {
			// Drag end: release the pin no matter where the pointer is.
			m.sim.Unpin(gesture.node)
			return m, nil
		}
		m.applyClick(gesture.node)
		return m, nil
	}
	return m, nil
}

// dragTo pins the dragged node at the pointer's logical position. The cell
// is clamped to the viewport so dragging past the edge parks the node at the
// boundary instead of losing the gesture.
func (m *Model) dragTo(x, y int) {
	m.drag.active = true
	x0, y0 := m.graphOrigin()
	col := clampInt(x-x0, 0, m.graphCols-1)
	row := clampInt(y-y0, 0, m.graphRows-1)
	lx, ly := m.canvas.ToLogical(col, row)
	m.sim.Pin(m.drag.node, lx, ly)
	m.scene.Sync(m.sim.Sync())
}

// setHover applies pointer-enter/leave. While focused, hover is tracked (for
// the copy key) but tooltips and hover panels are suppressed; the focused
// node keeps its label.
func (m *Model) setHover(hit int) {
	if hit == m.hover {
		return
	}
	m.hover = hit
	if m.focus.IsFocused() {
		return
	}
	if hit == NoNode {
		m.tooltip.Hide()
		return
	}
	n := m.graph.Nodes[hit]
	m.tooltip.Show(n.Name)
	if m.graph.TimeseriesNode != "" && n.Name == m.graph.TimeseriesNode {
		m.panels.Open(TimeseriesPanelName)
		m.layout()
	}
}

// applyClick runs the focus transition for a click on node n and drives the
// render layer and panel bridge accordingly. At most one node is focused at
// a time: clicking m while n is focused defocuses n first.
func (m *Model) applyClick(n int) {
	if n < 0 || n >= len(m.graph.Nodes) {
		return
	}
	prev := m.focus
	m.focus = m.focus.Click(n)
	m.cursor = n

	if prev.IsFocused() {
		m.panels.Close(ScalingPanelName(m.graph.Nodes[prev.Index()].Name))
	}
	if m.focus.IsFocused() {
		i := m.focus.Index()
		m.scene.ApplyHighlight(i, m.adj)
		m.tooltip.Show(m.graph.Nodes[i].Name)
		m.panels.Open(ScalingPanelName(m.graph.Nodes[i].Name))
	} else {
		m.scene.ResetHighlight()
		m.tooltip.Hide()
	}
	m.layout()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "tab", "right", "down", "j":
		m.moveCursor(1)
		return m, nil

	case "shift+tab", "left", "up", "k":
		m.moveCursor(-1)
		return m, nil

	case "enter", " ":
		m.applyClick(m.cursor)
		return m, nil

	case "esc":
		if m.focus.IsFocused() {
			m.applyClick(m.focus.Index())
			return m, nil
		}
		m.panels.CloseAll()
		m.layout()
		return m, nil

	case "y":
		return m, m.copyNodeName()

	case "s":
		return m, m.snapshotCmd()

	case "r":
		m.sim.Reheat()
		return m, m.setStatus("layout reheated")

	case "t":
		if m.timeseries.IsOpen() {
			m.panels.Close(TimeseriesPanelName)
		} else {
			m.panels.Open(TimeseriesPanelName)
		}
		m.layout()
		return m, nil

	case "l":
		m.showNodeList = !m.showNodeList
		m.layout()
		return m, nil
	}
	return m, nil
}

// moveCursor steps the keyboard cursor through the ranked node order so tab
// walks the list panel top to bottom.
func (m *Model) moveCursor(delta int) {
	ranked := m.stats.RankedIndices()
	if len(ranked) == 0 {
		return
	}
	at := 0
	for i, idx := range ranked {
		if idx == m.cursor {
			at = i
			break
		}
	}
	at = (at + delta + len(ranked)) % len(ranked)
	m.cursor = ranked[at]
}

// copyNodeName copies the most specific node under consideration: focused,
// else hovered, else the keyboard cursor.
func (m *Model) copyNodeName() tea.Cmd {
	idx := m.cursor
	if m.hover != NoNode {
		idx = m.hover
	}
	if m.focus.IsFocused() {
		idx = m.focus.Index()
	}
	if idx < 0 || idx >= len(m.graph.Nodes) {
		return nil
	}
	name := m.graph.Nodes[idx].Name
	if err := clipboard.WriteAll(name); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard unavailable: %v", err))
	}
	return m.setStatus(fmt.Sprintf("copied %q", name))
}

func (m *Model) snapshotCmd() tea.Cmd {
	path := fmt.Sprintf("netview-%s.svg", time.Now().Format("20060102-150405"))
	g := m.graph
	params := m.params
	return func() tea.Msg {
		err := export.SaveSnapshot(export.SnapshotOptions{
			Path:   path,
			Title:  "network snapshot",
			Graph:  g,
			Width:  logicalWidth,
			Height: logicalHeight,
			Params: &params,
		})
		return snapshotDoneMsg{path: path, err: err}
	}
}

func (m *Model) reloadCmd() tea.Cmd {
	path := m.dataPath
	return func() tea.Msg {
		g, err := loader.LoadGraph(path)
		return reloadedMsg{graph: g, err: err}
	}
}

// applyGraph swaps in a reloaded document: rebuild the derived structures,
// restart the simulation from a fresh seed (the reheat), and carry the focus
// across by name when the node still exists.
func (m *Model) applyGraph(g *model.Graph) {
	m.driver.Stop()

	focusName := ""
	if m.focus.IsFocused() {
		focusName = m.graph.Nodes[m.focus.Index()].Name
	}

	m.graph = g
	m.adj = analysis.BuildAdjacency(g)
	m.stats = analysis.Analyze(g)
	m.scene = render.NewScene(g, render.DefaultConfig())
	m.sim = physics.New(g, m.params)
	m.driver = physics.NewDriver(m.sim, m.tick)
	m.panels = m.buildRegistry()

	m.hover = NoNode
	m.drag = dragState{node: NoNode}
	if m.cursor >= len(g.Nodes) {
		m.cursor = 0
	}

	m.focus = Idle()
	m.tooltip.Hide()
	if i := g.NodeIndex(focusName); focusName != "" && i >= 0 {
		m.focus = FocusedOn(i)
		m.scene.ApplyHighlight(i, m.adj)
		m.tooltip.Show(focusName)
		m.panels.Open(ScalingPanelName(focusName))
	}

	m.scene.Sync(m.sim.Sync())
	m.layout()

	if m.send != nil {
		m.driver.OnStep(func() { m.send(SimStepMsg{}) })
		if err := m.driver.Start(); err != nil {
			m.statusMsg = fmt.Sprintf("simulation restart failed: %v", err)
		}
	}
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.statusMsg = s
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func (m *Model) scrollOpenDetail(lines int) {
	for _, p := range m.panels.OpenPanels() {
		if dp, ok := p.(*DetailPanel); ok {
			if lines > 0 {
				dp.ScrollDown(lines)
			} else {
				dp.ScrollUp(-lines)
			}
			return
		}
	}
}

// layout recomputes the cell budget for the graph viewport from the window
// size and the open panels, and resizes the canvas to match.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	cols := m.width
	if m.sidebarVisible() {
		cols = m.width - sidebarWidth
	}
	rows := m.height - headerRows - tooltipRows - footerRows
	rows -= len(m.panels.OpenPanels()) * panelHeight
	if cols < 20 {
		cols = 20
	}
	if rows < 4 {
		rows = 4
	}
	m.graphCols, m.graphRows = cols, rows
	m.canvas.Resize(cols, rows, logicalWidth, logicalHeight)
	m.panels.SetSize(m.width, panelHeight)
	m.ready = true
}

func (m *Model) sidebarVisible() bool {
	return m.showNodeList && m.width >= sidebarMinWidth
}

func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.tooltip.View(m.theme, m.graphCols))
	b.WriteByte('\n')

	graph := m.canvas.Render(m.scene)
	if m.sidebarVisible() {
		graph = lipgloss.JoinHorizontal(lipgloss.Top, graph, m.sidebarView())
	}
	b.WriteString(graph)

	for _, p := range m.panels.OpenPanels() {
		b.WriteByte('\n')
		b.WriteString(p.View(m.theme))
	}

	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) headerView() string {
	title := m.theme.Header.Render("nv")
	info := fmt.Sprintf(" %s  %d nodes · %d edges · %d components",
		m.dataPath, len(m.graph.Nodes), len(m.graph.Edges), m.stats.Components)
	if !m.sim.Converged() {
		info += fmt.Sprintf(" · settling %.0f%%", (1-m.sim.Alpha())*100)
	}
	return title + m.theme.SecondaryText.Render(truncate(info, m.width-4))
}

func (m *Model) sidebarView() string {
	ranked := m.stats.RankedIndices()
	lines := make([]string, 0, m.graphRows)
	lines = append(lines, m.theme.PanelTitle.Render(padRight("nodes by rank", sidebarWidth-2)))
	for _, idx := range ranked {
		if len(lines) >= m.graphRows {
			break
		}
		lines = append(lines, m.sidebarLine(idx))
	}
	for len(lines) < m.graphRows {
		lines = append(lines, strings.Repeat(" ", sidebarWidth))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) sidebarLine(idx int) string {
	n := m.graph.Nodes[idx]
	marker := "  "
	if idx == m.cursor {
		marker = "▸ "
	}
	label := fmt.Sprintf("%s%s %d", marker, truncate(n.Name, sidebarWidth-8), m.stats.Degree[idx])
	label = padRight(label, sidebarWidth-2)
	switch {
	case m.focus.Is(idx):
		return m.theme.ListFocused.Render(label)
	case idx == m.cursor:
		return m.theme.ListCursor.Render(label)
	default:
		return m.theme.Base.Render(label)
	}
}

func (m *Model) footerView() string {
	if m.statusMsg != "" {
		return m.theme.StatusBar.Render(truncate(m.statusMsg, m.width-1))
	}
	hints := "tab cursor · enter focus · y copy · s snapshot · ? help · q quit"
	if m.showMouseHelp {
		hints = "hover inspect · click focus · drag move · " + hints
	}
	return m.theme.StatusBar.Render(truncate(hints, m.width-1))
}

func (m *Model) helpView() string {
	rows := [][2]string{
		{"hover", "show a node's name; the hub node also opens benchmark history"},
		{"click", "focus a node and highlight its neighborhood"},
		{"click again", "release focus and restore resting opacities"},
		{"drag", "pin a node to the pointer; release frees it"},
		{"tab / arrows", "move the cursor through ranked nodes"},
		{"enter / space", "toggle focus on the cursor node"},
		{"esc", "release focus, then close panels"},
		{"y", "copy the current node name"},
		{"s", "save an SVG snapshot of the layout"},
		{"t", "toggle the benchmark history panel"},
		{"r", "reheat the layout"},
		{"l", "toggle the node list"},
		{"?", "close this help"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("nv keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(m.theme.HelpKey.Render(padRight(r[0], 14)))
		b.WriteString(m.theme.HelpDesc.Render(r[1]))
		b.WriteByte('\n')
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
