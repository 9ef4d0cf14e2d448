package testutil

import (
	"fmt"

	"github.com/hpc-uk/netview/pkg/model"
)

// Palette used for generated nodes; mirrors the category-10 tokens the
// report build assigns.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// GenerateGraph builds a deterministic synthetic network: `majors` hub nodes
// in a ring, each with `minorsPerMajor` members attached. Shapes match the
// real document (cluster/app/compiler hubs with concrete members) closely
// enough for layout and render tests.
func GenerateGraph(majors, minorsPerMajor int) *model.Graph {
	g := &model.Graph{}
	for i := 0; i < majors; i++ {
		g.Nodes = append(g.Nodes, model.Node{
			Name:     fmt.Sprintf("major-%d", i),
			Category: model.CategoryMajor,
			Color:    palette[i%len(palette)],
			Degree:   minorsPerMajor + 2,
		})
	}
	for i := 0; i < majors; i++ {
		next := (i + 1) % majors
		if next != i {
			g.Edges = append(g.Edges, model.Edge{
				Source:   fmt.Sprintf("major-%d", i),
				Target:   fmt.Sprintf("major-%d", next),
				Category: model.CategoryMajor,
			})
		}
		for j := 0; j < minorsPerMajor; j++ {
			name := fmt.Sprintf("minor-%d-%d", i, j)
			g.Nodes = append(g.Nodes, model.Node{
				Name:     name,
				Category: model.CategoryMinor,
				Color:    palette[(i+j)%len(palette)],
				Degree:   1,
			})
			g.Edges = append(g.Edges, model.Edge{
				Source: fmt.Sprintf("major-%d", i),
				Target: name,
			})
		}
	}
	g.Reindex()
	return g
}
