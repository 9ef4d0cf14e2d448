// Package export renders static snapshots of the network: the same scene the
// TUI animates, run headlessly to convergence and written as SVG or PNG for
// embedding in reports.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/hpc-uk/netview/pkg/model"
	"github.com/hpc-uk/netview/pkg/physics"
	"github.com/hpc-uk/netview/pkg/render"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path     string       // Output path; format inferred from extension when Format empty
	Format   string       // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string       // Optional title rendered above the graph
	Graph    *model.Graph // Validated network document
	Width    int          // Logical canvas width; defaults to 900
	Height   int          // Logical canvas height; defaults to 600
	MaxSteps int          // Simulation step budget; defaults to 3000
	Params   *physics.Params
	Scene    *render.Config
}

// SaveSnapshot lays the network out and renders it. The simulation runs to
// convergence (or the step budget) before anything is drawn, so snapshots of
// the same document are reproducible.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Graph == nil || len(opts.Graph.Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	scene := layoutScene(&opts)

	switch format {
	case "svg":
		return renderSVG(opts, scene)
	case "png":
		return renderPNG(opts, scene)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

const (
	defaultWidth    = 900
	defaultHeight   = 600
	defaultMaxSteps = 3000
	headerHeight    = 48
)

func layoutScene(opts *SnapshotOptions) *render.Scene {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}

	bounds := physics.Rect{Width: float64(opts.Width), Height: float64(opts.Height)}
	params := physics.DefaultParams(bounds)
	if opts.Params != nil {
		params = *opts.Params
		params.Bounds = bounds
	}
	sim := physics.New(opts.Graph, params)
	sim.RunToConvergence(opts.MaxSteps)

	sceneCfg := render.DefaultConfig()
	if opts.Scene != nil {
		sceneCfg = *opts.Scene
	}
	scene := render.NewScene(opts.Graph, sceneCfg)
	scene.Sync(sim.Sync())
	scene.ResetHighlight()
	return scene
}

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorEdge     = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorFallback = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
)

func renderSVG(opts SnapshotOptions, scene *render.Scene) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, opts, scene)
}

func renderSVGToWriter(w io.Writer, opts SnapshotOptions, scene *render.Scene) error {
	width := opts.Width
	height := opts.Height + headerHeight
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Rect(0, 0, width, headerHeight, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Benchmark network"
	}
	canvas.Text(16, 22, title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(16, 40,
		fmt.Sprintf("nodes: %d  edges: %d", len(scene.Nodes), len(scene.Edges)),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for i := range scene.Edges {
		e := &scene.Edges[i]
		canvas.Line(int(e.X1), int(e.Y1)+headerHeight, int(e.X2), int(e.Y2)+headerHeight,
			fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:%.2f",
				css(colorEdge), e.Width, e.Opacity))
	}
	for i := range scene.Nodes {
		n := &scene.Nodes[i]
		canvas.Circle(int(n.X), int(n.Y)+headerHeight, int(n.Radius),
			fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:1",
				fillOrDefault(n.Fill), n.Opacity, css(colorStroke)))
	}

	canvas.End()
	return nil
}

func renderPNG(opts SnapshotOptions, scene *render.Scene) error {
	width := opts.Width
	height := opts.Height + headerHeight
	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRectangle(0, 0, float64(width), headerHeight)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Benchmark network"
	}
	dc.SetColor(colorText)
	dc.DrawStringAnchored(title, 16, 20, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(
		fmt.Sprintf("nodes: %d  edges: %d", len(scene.Nodes), len(scene.Edges)),
		16, 38, 0, 0.5)

	for i := range scene.Edges {
		e := &scene.Edges[i]
		dc.SetRGBA(
			float64(colorEdge.R)/255, float64(colorEdge.G)/255,
			float64(colorEdge.B)/255, e.Opacity)
		dc.SetLineWidth(e.Width)
		dc.DrawLine(e.X1, e.Y1+headerHeight, e.X2, e.Y2+headerHeight)
		dc.Stroke()
	}
	for i := range scene.Nodes {
		n := &scene.Nodes[i]
		fill := parseHex(n.Fill)
		dc.SetRGBA(float64(fill.R)/255, float64(fill.G)/255, float64(fill.B)/255, n.Opacity)
		dc.DrawCircle(n.X, n.Y+headerHeight, n.Radius)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1)
		dc.DrawCircle(n.X, n.Y+headerHeight, n.Radius)
		dc.Stroke()
	}

	return dc.SavePNG(opts.Path)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func fillOrDefault(hex string) string {
	if strings.HasPrefix(hex, "#") && (len(hex) == 7 || len(hex) == 4) {
		return hex
	}
	return css(colorFallback)
}

// parseHex decodes a #rrggbb token; anything else gets the fallback color.
func parseHex(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return colorFallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return colorFallback
	}
	return color.RGBA{r, g, b, 0xff}
}
