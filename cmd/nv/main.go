package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hpc-uk/netview/internal/datasource"
	"github.com/hpc-uk/netview/pkg/config"
	"github.com/hpc-uk/netview/pkg/export"
	"github.com/hpc-uk/netview/pkg/loader"
	"github.com/hpc-uk/netview/pkg/model"
	"github.com/hpc-uk/netview/pkg/ui"
	"github.com/hpc-uk/netview/pkg/version"
	"github.com/hpc-uk/netview/pkg/watcher"
)

func main() {
	dataFlag := flag.String("data", "", "Path to the network document (overrides NETVIEW_DATA and config)")
	perflogFlag := flag.String("perflog", "", "Path to the perflog SQLite database with benchmark series")
	snapshotFlag := flag.String("snapshot", "", "Render a snapshot to the given path and exit (interactive prompt when empty)")
	formatFlag := flag.String("format", "", "Snapshot format: svg or png (inferred from path when empty)")
	titleFlag := flag.String("title", "", "Title rendered above the snapshot")
	noWatch := flag.Bool("no-watch", false, "Disable live reload of the network document")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: nv [options]")
		fmt.Println("\nAn interactive viewer for benchmark network documents.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("nv %s\n", version.Version)
		os.Exit(0)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}

	explicit := *dataFlag
	if explicit == "" {
		explicit = cfg.DataPath
	}
	cwd, _ := os.Getwd()
	dataPath, err := loader.FindDataPath(explicit, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "No network document found: %v\n", err)
		os.Exit(1)
	}

	g, err := loader.LoadGraph(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", dataPath, err)
		os.Exit(1)
	}

	if snapshotRequested() {
		os.Exit(runSnapshot(g, *snapshotFlag, *formatFlag, *titleFlag))
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal; use --snapshot for non-interactive rendering")
		os.Exit(1)
	}

	// Adaptive colors follow the detected terminal background unless the
	// config forces a side.
	switch cfg.UI.Theme {
	case "light":
		lipgloss.DefaultRenderer().SetHasDarkBackground(false)
	case "dark":
		lipgloss.DefaultRenderer().SetHasDarkBackground(true)
	}

	series := loadSeries(*perflogFlag, cfg)

	var w *watcher.Watcher
	if !*noWatch {
		w, err = watcher.New(dataPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload unavailable: %v\n", err)
		} else if err := w.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: live reload unavailable: %v\n", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	m := ui.NewModel(g, ui.Options{
		Config:   cfg,
		DataPath: dataPath,
		Series:   series,
		Watcher:  w,
	})
	defer m.StopDriver()

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running network viewer: %v\n", err)
		os.Exit(1)
	}
}

// snapshotRequested reports whether --snapshot was given at all, including
// with an empty value (which triggers the interactive prompt).
func snapshotRequested() bool {
	requested := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "snapshot" {
			requested = true
		}
	})
	return requested
}

func runSnapshot(g *model.Graph, path, format, title string) int {
	if path == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "--snapshot needs a path when stdin is not a terminal")
			return 2
		}
		res, err := export.RunSnapshotWizard("network.svg")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot cancelled: %v\n", err)
			return 1
		}
		path, format = res.Path, res.Format
	}

	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:   path,
		Format: format,
		Title:  title,
		Graph:  g,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
		return 1
	}
	fmt.Printf("Snapshot written to %s\n", path)
	return 0
}

// loadSeries opens the perflog store and loads every series up front. A
// missing or unreadable store is not fatal: the time-series panel simply
// stays empty.
func loadSeries(flagPath string, cfg config.Config) []datasource.Series {
	path := flagPath
	if path == "" {
		path = cfg.PerflogPath
	}
	if path == "" {
		return nil
	}

	store, err := datasource.OpenPerflog(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: perflog unavailable: %v\n", err)
		return nil
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	series, err := store.LoadAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: perflog unreadable: %v\n", err)
		return nil
	}
	return series
}

func runTUIProgram(m *ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if err := m.StartDriver(p.Send); err != nil {
		return err
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
