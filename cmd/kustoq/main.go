// Command kustoq renders KQL from query definitions and templates.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/kustoq/internal/cli"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Commands report
// their own failures; anything else (unknown flags, wrong argument counts)
// is printed here.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return cli.GetExitCode(err)
}
