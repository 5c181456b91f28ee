package main

import (
	"fmt"
	"os"

	"github.com/alberdingk-thijm/Timepiece/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "timepiece: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
