// Command arec runs the active record demo, scenario suites and mapping
// introspection against SQLite.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/arec/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.GetExitCode(err))
}
