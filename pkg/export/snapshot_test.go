package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpc-uk/netview/pkg/testutil"
)

func TestSaveSnapshotSVG(t *testing.T) {
	g := testutil.GenerateGraph(3, 3)
	path := filepath.Join(t.TempDir(), "network.svg")

	err := SaveSnapshot(SnapshotOptions{
		Path:  path,
		Title: "test network",
		Graph: g,
	})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Error("output is not an SVG document")
	}
	if got := strings.Count(svg, "<circle"); got != len(g.Nodes) {
		t.Errorf("SVG has %d circles, want one per node (%d)", got, len(g.Nodes))
	}
	if got := strings.Count(svg, "<line"); got != len(g.Edges) {
		t.Errorf("SVG has %d lines, want one per edge (%d)", got, len(g.Edges))
	}
	if !strings.Contains(svg, "test network") {
		t.Error("title missing from SVG")
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	g := testutil.GenerateGraph(2, 2)
	path := filepath.Join(t.TempDir(), "network.png")

	if err := SaveSnapshot(SnapshotOptions{Path: path, Graph: g}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not a PNG file")
	}
}

func TestSaveSnapshotInfersFormat(t *testing.T) {
	g := testutil.GenerateGraph(2, 1)
	base := filepath.Join(t.TempDir(), "network")

	if err := SaveSnapshot(SnapshotOptions{Path: base, Graph: g}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Error("extensionless path should default to .svg")
	}
}

func TestSaveSnapshotRejectsEmptyGraph(t *testing.T) {
	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg"}); err == nil {
		t.Fatal("expected error for empty graph")
	}
}

func TestSaveSnapshotRejectsBadFormat(t *testing.T) {
	g := testutil.GenerateGraph(2, 1)
	err := SaveSnapshot(SnapshotOptions{Path: "x.gif", Format: "gif", Graph: g})
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	g1 := testutil.GenerateGraph(3, 2)
	g2 := testutil.GenerateGraph(3, 2)
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.svg")
	p2 := filepath.Join(dir, "b.svg")

	if err := SaveSnapshot(SnapshotOptions{Path: p1, Graph: g1}); err != nil {
		t.Fatal(err)
	}
	if err := SaveSnapshot(SnapshotOptions{Path: p2, Graph: g2}); err != nil {
		t.Fatal(err)
	}

	a, _ := os.ReadFile(p1)
	b, _ := os.ReadFile(p2)
	if string(a) != string(b) {
		t.Error("same document produced different snapshots")
	}
}
