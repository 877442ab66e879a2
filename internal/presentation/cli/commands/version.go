package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/igoakulov/tokker/internal/presentation/cli/output"
)

// VersionInfo holds version information for JSON output.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version, build information, and platform details for tok.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}

func runVersion(short bool) error {
	// Version runs without app initialization, so it builds its own
	// formatter from the global flags alone
	json := globalFlags.Output == "json"

	formatter := output.NewFormatter(
		output.WithColor(!json && !globalFlags.NoColor && output.IsColorSupported()),
	)

	if short {
		if json {
			return formatter.JSON(map[string]string{"version": Version})
		}
		formatter.Println("%s", Version)
		return nil
	}

	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if json {
		return formatter.JSON(info)
	}

	formatter.Println("%s", formatter.Bold("Tokker"))
	formatter.Println("%s", "──────")
	formatter.Println("  %s  %s", formatter.Dim("Version:"), info.Version)
	formatter.Println("  %s  %s", formatter.Dim("Git Commit:"), info.GitCommit)
	formatter.Println("  %s  %s", formatter.Dim("Build Date:"), info.BuildDate)
	formatter.Println("  %s  %s", formatter.Dim("Go Version:"), info.GoVersion)
	formatter.Println("  %s  %s", formatter.Dim("Platform:"), info.Platform)

	return nil
}
