package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/output"
)

// Build information, set at link time.
//
//nolint:gochecknoglobals // Set via -ldflags at build time
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// versionCmd shows build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter != nil && formatter.Format() == output.FormatJSON {
		payload := struct {
			Version   string `json:"version"`
			Commit    string `json:"commit"`
			BuildDate string `json:"build_date"`
			GoVersion string `json:"go_version"`
		}{version, commit, buildDate, runtime.Version()}
		return writeJSON(w, payload)
	}

	out(w, "nebula %s\n", version)
	out(w, "  commit: %s\n", commit)
	out(w, "  built:  %s\n", buildDate)
	out(w, "  go:     %s\n", runtime.Version())
	return nil
}
