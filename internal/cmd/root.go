// Package cmd provides CLI commands for the saiten tool.
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoshitsu/saiten/internal/style"
)

var rootCmd = &cobra.Command{
	Use:     "saiten",
	Short:   "saiten - class form grading ledger",
	Version: Version,
	Long: `saiten turns class form responses into a Roster and a GradeBook workbook.

It deduplicates students from the form log (or reads the official roster
master), counts one form submission per student per day, and scores every
student on attendance and learning out of 100. Edit the GradeBook inputs in
Excel and run 'saiten recompute' to refresh the scores.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Global flags shared by every command.
var (
	configPath  string
	columnsPath string
	eventsPath  string
)

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		// Check for silent exit (scripting commands that signal status via exit code)
		if code, ok := IsSilentExit(err); ok {
			return code
		}
		style.PrintError("%v", err)
		return 1
	}
	return 0
}

// Command group IDs - used by subcommands to organize help output
const (
	GroupGrade   = "grade"
	GroupInspect = "inspect"
	GroupDiag    = "diag"
)

func init() {
	// Define command groups (order determines help output order)
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGrade, Title: "Grading:"},
		&cobra.Group{ID: GroupInspect, Title: "Inspection:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)

	rootCmd.SetHelpCommandGroupID(GroupDiag)
	rootCmd.SetCompletionCommandGroupID(GroupDiag)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Grading config file (.toml/.yaml; default $SAITEN_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&columnsPath, "columns", "",
		"Column hint file (.toml/.yaml; default $SAITEN_COLUMNS)")
	rootCmd.PersistentFlags().StringVar(&eventsPath, "events", "",
		"Append a JSONL audit trail of this run to FILE (default $SAITEN_EVENTS)")
}

// SilentExit is an error that carries an exit code and prints nothing.
// Check-style commands use it to report status to scripts.
type SilentExit struct {
	Code int
}

func (e *SilentExit) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// NewSilentExit returns an error that makes Execute exit with code.
func NewSilentExit(code int) error {
	return &SilentExit{Code: code}
}

// IsSilentExit reports whether err is a SilentExit and returns its code.
func IsSilentExit(err error) (int, bool) {
	var se *SilentExit
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
