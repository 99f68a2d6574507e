// Command glowprofile drives the profile questionnaire from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/glowprofile/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
