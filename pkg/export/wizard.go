package export

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult carries the answers from the interactive snapshot prompt.
type WizardResult struct {
	Path   string
	Format string
}

// RunSnapshotWizard asks for an output path and format. Used when --snapshot
// is given without a value on an interactive terminal.
func RunSnapshotWizard(defaultPath string) (WizardResult, error) {
	if defaultPath == "" {
		defaultPath = "network.svg"
	}
	res := WizardResult{Path: defaultPath, Format: "svg"}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output path").
				Description("Where to write the snapshot").
				Value(&res.Path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Format").
				Options(
					huh.NewOption("SVG (scalable, embeds in reports)", "svg"),
					huh.NewOption("PNG (raster)", "png"),
				).
				Value(&res.Format),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return WizardResult{}, err
	}
	return res, nil
}
