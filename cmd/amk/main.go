// Command amk compiles microkinetic reaction networks to Maple worksheets.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/amk/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return cli.ExitSuccess
	}

	// Commands report their own failures; anything else is a usage error.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	return exitErr.Code
}
