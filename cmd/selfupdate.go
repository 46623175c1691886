package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// repositorySlug is the GitHub repository releases are published from
const repositorySlug = "osherai/bullhorn-mcp"

// newSelfUpdateCmd creates the self-update command
func newSelfUpdateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "selfupdate",
		Short: "Update bullhorn-mcp to the latest release",
		Long: `Check GitHub for a newer release of bullhorn-mcp and replace the
current binary with it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check for a newer release without installing it")

	return cmd
}

// runSelfUpdate checks for and optionally installs the latest release
func runSelfUpdate(cmd *cobra.Command, dryRun bool) error {
	ctx := cmd.Context()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repositorySlug)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("Current version %s is the latest\n", version)
		return nil
	}

	fmt.Printf("Found newer version: %s (current: %s)\n", latest.Version(), version)
	if dryRun {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("Successfully updated to version %s\n", latest.Version())
	return nil
}
