package main

import (
	"fmt"
	"os"

	"github.com/Shubz284/biryani-house/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.Describe(err))
		os.Exit(cli.GetExitCode(err))
	}
}
