package cmd

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repositorySlug = "s0up4200/px6ctl"

var (
	checkUpdate bool
	applyUpdate bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for updates",
	// No config or API key is needed to report the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&checkUpdate, "check", false, "check GitHub for a newer release")
	versionCmd.Flags().BoolVar(&applyUpdate, "update", false, "download and install the latest release")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "px6ctl %s (built %s)\n", version, buildTime)

	if !checkUpdate && !applyUpdate {
		return nil
	}

	ctx := cmd.Context()
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repositorySlug))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		fmt.Fprintln(out, "No release found for this platform")
		return nil
	}

	newer, err := updateAvailable(version, latest.Version())
	if err != nil {
		if applyUpdate {
			return fmt.Errorf("cannot update a development build: %w", err)
		}
		fmt.Fprintf(out, "Latest release: %s\n", latest.Version())
		return nil
	}
	if !newer {
		fmt.Fprintln(out, "✓ px6ctl is up to date")
		return nil
	}

	fmt.Fprintf(out, "New version available: %s\n", latest.Version())
	if !applyUpdate {
		fmt.Fprintln(out, "Run 'px6ctl version --update' to install it")
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(out, "✓ Updated to %s\n", latest.Version())
	return nil
}

// updateAvailable reports whether latest is newer than current
func updateAvailable(current, latest string) (bool, error) {
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return false, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	lat, err := semver.ParseTolerant(latest)
	if err != nil {
		return false, fmt.Errorf("invalid release version %q: %w", latest, err)
	}
	return lat.GT(cur), nil
}
