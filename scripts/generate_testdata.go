//go:build ignore

// generate_testdata.go creates sample network documents for manual testing
// and benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/network/small.json   (4 hubs, 6 members each)
//   tests/testdata/network/medium.json  (10 hubs, 20 members each)
//   tests/testdata/network/large.json   (25 hubs, 40 members each)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/hpc-uk/netview/pkg/model"
	"github.com/hpc-uk/netview/pkg/testutil"
)

type datasetSpec struct {
	name           string
	majors         int
	minorsPerMajor int
	desc           string
}

var datasets = []datasetSpec{
	{"small", 4, 6, "a handful of hubs, quick to eyeball"},
	{"medium", 10, 20, "typical report size"},
	{"large", 25, 40, "stress layout and hit-testing"},
}

func main() {
	outputDir := "tests/testdata/network"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		g := testutil.GenerateGraph(ds.majors, ds.minorsPerMajor)
		path := filepath.Join(outputDir, ds.name+".json")
		if err := writeDocument(path, g); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d nodes, %d edges): %s\n", path, len(g.Nodes), len(g.Edges), ds.desc)
	}
}

func writeDocument(path string, g *model.Graph) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
