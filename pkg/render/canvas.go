package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Canvas rasterizes a Scene onto a fixed grid of terminal cells. One canvas
// is reused across frames: every Render repaints the whole grid from the
// scene, so no stale state survives between ticks.
//
// Logical scene coordinates map linearly onto the grid; the caller chooses
// the logical bounds (usually sized so one cell is roughly square on screen).
type Canvas struct {
	cols, rows    int
	width, height float64

	cells []cell
	hits  []int
}

type cell struct {
	ch      rune
	color   string
	opacity float64
	focused bool
}

// NewCanvas creates a canvas of cols x rows cells covering the logical
// width x height rectangle.
func NewCanvas(cols, rows int, width, height float64) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows, width, height)
	return c
}

// Resize replaces the grid. Existing content is discarded; the next Render
// repaints everything anyway.
func (c *Canvas) Resize(cols, rows int, width, height float64) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.cols, c.rows = cols, rows
	c.width, c.height = width, height
	c.cells = make([]cell, cols*rows)
	c.hits = make([]int, cols*rows)
	for i := range c.hits {
		c.hits[i] = NoFocus
	}
}

// Size returns the grid dimensions in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// ToLogical converts a cell coordinate to scene coordinates (cell center).
func (c *Canvas) ToLogical(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * c.width / float64(c.cols),
		(float64(row) + 0.5) * c.height / float64(c.rows)
}

func (c *Canvas) toCell(x, y float64) (int, int) {
	col := int(x / c.width * float64(c.cols))
	row := int(y / c.height * float64(c.rows))
	if col < 0 {
		col = 0
	} else if col >= c.cols {
		col = c.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= c.rows {
		row = c.rows - 1
	}
	return col, row
}

// NodeAt returns the node index drawn at the given cell, or NoFocus. This is
// the hit test behind hover and click.
func (c *Canvas) NodeAt(col, row int) int {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return NoFocus
	}
	return c.hits[row*c.cols+col]
}

// Render repaints the grid from the scene and returns the styled frame.
// Edges first, nodes on top, matching the z-order of the report page.
func (c *Canvas) Render(s *Scene) string {
	for i := range c.cells {
		c.cells[i] = cell{ch: ' '}
		c.hits[i] = NoFocus
	}

	for i := range s.Edges {
		c.drawEdge(&s.Edges[i])
	}
	for i := range s.Nodes {
		c.drawNode(i, &s.Nodes[i])
	}

	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.ch == ' ' {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(cellStyle(cl).Render(string(cl.ch)))
		}
	}
	return b.String()
}

func cellStyle(cl cell) lipgloss.Style {
	st := lipgloss.NewStyle()
	if cl.color != "" {
		st = st.Foreground(lipgloss.Color(cl.color))
	}
	switch {
	case cl.focused:
		st = st.Bold(true).Underline(false)
	case cl.opacity >= 0.95:
		st = st.Bold(true)
	case cl.opacity < 0.5:
		st = st.Faint(true)
	}
	return st
}

func (c *Canvas) drawEdge(e *EdgePrim) {
	x1, y1 := c.toCell(e.X1, e.Y1)
	x2, y2 := c.toCell(e.X2, e.Y2)

	ch := '·'
	if e.Width > 1.5 {
		ch = '•'
	}

	// Bresenham between the two endpoint cells.
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		c.put(x1, y1, cell{ch: ch, opacity: e.Opacity}, NoFocus)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *Canvas) drawNode(idx int, n *NodePrim) {
	col, row := c.toCell(n.X, n.Y)

	// Cell footprint scales with the primitive radius. Terminal cells are
	// roughly twice as tall as wide, so the footprint is an ellipse.
	rx := int(n.Radius * float64(c.cols) / c.width)
	ry := rx / 2
	if rx < 0 {
		rx = 0
	}

	body := cell{ch: '●', color: n.Fill, opacity: n.Opacity, focused: n.Focused}
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if rx > 0 {
				nx := float64(dx) / float64(rx)
				ny := 0.0
				if ry > 0 {
					ny = float64(dy) / float64(ry)
				} else if dy != 0 {
					continue
				}
				if nx*nx+ny*ny > 1 {
					continue
				}
			} else if dx != 0 || dy != 0 {
				continue
			}
			c.put(col+dx, row+dy, body, idx)
		}
	}

	center := body
	if n.Focused {
		center.ch = '◉'
	}
	c.put(col, row, center, idx)
}

func (c *Canvas) put(col, row int, cl cell, hit int) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	i := row*c.cols + col
	c.cells[i] = cl
	if hit != NoFocus {
		c.hits[i] = hit
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
