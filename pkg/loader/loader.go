// Package loader locates and decodes the network document consumed by the
// viewer. The document is the node-link JSON emitted by the report build
// (one object with "nodes" and "links" arrays); it is read exactly once at
// startup and on watcher-triggered reloads.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/hpc-uk/netview/pkg/model"
)

// DataEnvVar overrides the network document path when set.
const DataEnvVar = "NETVIEW_DATA"

// PreferredDataNames defines the lookup order when no explicit path is given.
var PreferredDataNames = []string{
	filepath.Join("assets", "network.json"),
	"network.json",
}

// FindDataPath resolves the network document path. An explicit path wins,
// then NETVIEW_DATA, then the preferred names relative to dir (cwd if empty).
func FindDataPath(explicit, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(DataEnvVar); env != "" {
		return env, nil
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	for _, name := range PreferredDataNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Size() > 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no network document found under %s (tried %v)", dir, PreferredDataNames)
}

// LoadGraph reads and validates the network document at path. Any failure
// here is fatal to startup: the visualization must not run on a document it
// cannot trust.
func LoadGraph(path string) (*model.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open network document: %w", err)
	}
	defer file.Close()

	g, err := ParseGraph(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ParseGraph decodes and validates a node-link document from a reader.
// Handles a UTF-8 BOM, which some report generators prepend.
func ParseGraph(r io.Reader) (*model.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read network document: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var g model.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("malformed network document: %w", err)
	}

	g.Reindex()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network document: %w", err)
	}
	return &g, nil
}
