/*
saiten builds the grading ledger for a class from its form responses.

It reads a combined form log (or the official roster master plus a form
log), produces a Roster of students and a GradeBook scored out of 100, and
writes both to one Excel workbook. Instructors fill in the GradeBook inputs and
run recompute to refresh the scores.

Usage:

	saiten <command> [arguments]

Common commands:

	saiten build      Build Roster and GradeBook from a form log
	saiten registry   Build from the official roster master
	saiten recompute  Recompute scores after editing a GradeBook
	saiten columns    Show which column each role resolves to
	saiten mail       Print the result line for each student

See 'saiten help <command>' for more information on a specific command.
*/
package main

import (
	"os"

	"github.com/kyoshitsu/saiten/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
