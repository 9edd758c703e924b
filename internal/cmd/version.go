package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X".
var (
	Version = "0.3.0"
	Commit  = ""
)

var versionCmd = &cobra.Command{
	Use:     "version",
	GroupID: GroupDiag,
	Short:   "Print version information",
	Args:    cobra.NoArgs,
	RunE:    runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	out := cmd.OutOrStdout()
	if commit != "" {
		_, err := fmt.Fprintf(out, "saiten %s (%s)\n", Version, commit)
		return err
	}
	_, err := fmt.Fprintf(out, "saiten %s\n", Version)
	return err
}

// vcsRevision returns the short VCS revision stamped by the Go toolchain.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}
