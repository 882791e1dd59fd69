// Package main provides the mrdoc CLI entry point.
// mrdoc books doctors and talks to MedBot, the MrDoc healthcare assistant.
package main

import (
	"errors"
	"fmt"
	"os"

	"mrdoc/cmd/mrdoc/internal/cli"
)

func main() {
	app := cli.NewApp()
	if err := app.CreateRootCommand().Execute(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
